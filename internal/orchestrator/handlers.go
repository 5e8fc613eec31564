package orchestrator

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/ziadkadry99/infrachat/internal/analyzer"
	"github.com/ziadkadry99/infrachat/internal/audit"
	"github.com/ziadkadry99/infrachat/internal/infra"
	"github.com/ziadkadry99/infrachat/internal/knowledge"
	"github.com/ziadkadry99/infrachat/internal/patterns"
	"github.com/ziadkadry99/infrachat/internal/requirements"
)

var (
	planSuggestions = []string{
		"Answer the question above, or say \"proceed with defaults\"",
		"Change the target at any time, e.g. \"switch to azure\" or \"make it multi-cloud\"",
	}
	fallbackSuggestions = []string{
		"Ask about a specific tool, e.g. \"what is terraform?\"",
		"Describe what you want to build, e.g. \"create a serverless API on AWS\"",
		"Ask \"what can you do?\" to see what I support",
	}
)

func (o *Orchestrator) handleCasual(ctx context.Context, t *turn) (*outcome, error) {
	out := &outcome{text: casualReply(t), confidence: 0.9, success: true}
	if m := o.findPattern(ctx, t); m != nil && casualCategory(m.Pattern.Category) {
		out.text = m.Pattern.Template
		out.pattern = m
	}
	if t.analysis.Intent == analyzer.IntentGreeting && t.hasHistory() {
		out.text = "Welcome back! " + out.text
	}
	if t.collecting() {
		if _, n := t.req.CurrentQuestion(); n > 0 {
			out.text += "\n\nWhen you're ready, here is where we left off:\n" + t.req.FormatQuestion(n-1)
		}
	}
	return out, nil
}

func casualCategory(category string) bool {
	switch category {
	case "greeting", "social", "conversation", "personal":
		return true
	}
	return false
}

func casualReply(t *turn) string {
	switch t.analysis.Intent {
	case analyzer.IntentGreeting:
		return "Hello! I help plan, provision and troubleshoot cloud infrastructure. What are you working on?"
	case analyzer.IntentSocial:
		return "You're welcome! Let me know if there is anything else I can help with."
	case analyzer.IntentConversation:
		return "Doing well, thanks for asking. What infrastructure are we working on today?"
	case analyzer.IntentPersonal:
		return "I'm infrachat, a rule-based assistant for planning and operating cloud infrastructure."
	}
	return "Could you tell me a bit more? For example, describe the system you want to build or the tool you have a question about."
}

// handleCreation builds a new plan and starts collecting its requirements.
func (o *Orchestrator) handleCreation(ctx context.Context, t *turn) (*outcome, error) {
	plan := o.plans.Analyze(t.text, o.preferences(t))

	res, err := o.collector.Start(ctx, t.sessionID, plan)
	if err != nil {
		o.logKind(t, KindPersistenceUnavailable, err).Warn("requirements collection not persisted")
		res = requirements.NewSession(t.sessionID, plan).Start(o.now())
	}
	o.recordEvent(ctx, t, audit.Entry{
		Action:   audit.ActionPlanCreated,
		Subject:  string(plan.Environment),
		Summary:  fmt.Sprintf("%s on %s", plan.Pattern, plan.Environment),
		Success:  true,
		NewValue: string(plan.Pattern),
	})

	conf := 0.85
	if plan.Pattern == infra.PatternUnknown {
		conf = 0.6
	}
	return &outcome{
		text:        infra.Summary(plan) + "\n" + res.Message,
		confidence:  conf,
		success:     true,
		suggestions: planSuggestions,
	}, nil
}

// preferences resolves the environment a new plan falls back to: the
// session's previous plan first, then the stored user preference.
func (o *Orchestrator) preferences(t *turn) infra.Preferences {
	if t.hasPlan() && t.req.Plan.Environment != infra.EnvUnknown {
		return infra.Preferences{PreferredEnvironment: t.req.Plan.Environment}
	}
	if env := t.convo.Preferences["preferred_environment"]; env != "" {
		return infra.Preferences{PreferredEnvironment: infra.ParseEnvironment(env)}
	}
	return infra.Preferences{}
}

// handleRequirements answers questions, applies defaults and mutates the
// session's plan.
func (o *Orchestrator) handleRequirements(ctx context.Context, t *turn) (*outcome, error) {
	if m := answerCommand.FindStringSubmatch(t.text); m != nil {
		n, _ := strconv.Atoi(m[1])
		res, err := o.collector.Answer(ctx, t.sessionID, n, m[2])
		if err != nil {
			return nil, wrap(KindPersistenceUnavailable, "answer question", err)
		}
		o.recordCompletion(ctx, t, res)
		return requirementsOutcome(res, ""), nil
	}
	if analyzer.ContainsAny(t.text, defaultsPhrases) {
		res, err := o.collector.ProceedWithDefaults(ctx, t.sessionID)
		if err != nil {
			return nil, wrap(KindPersistenceUnavailable, "proceed with defaults", err)
		}
		o.recordCompletion(ctx, t, res)
		return requirementsOutcome(res, ""), nil
	}
	if !t.hasPlan() {
		return nil, nil
	}

	sess := t.req
	wasCollecting := t.collecting()
	changes := o.plans.UpdatePlan(sess.Plan, t.text)
	// Only a pattern or environment change restructures the plan; wording
	// like "I want python" is still an answer.
	structural := false
	var changeText string
	if len(changes) > 0 {
		if err := o.collector.ApplyPlanUpdate(ctx, sess); err != nil {
			return nil, wrap(KindPersistenceUnavailable, "update plan", err)
		}
		var lines []string
		for _, c := range changes {
			o.recordEvent(ctx, t, audit.Entry{
				Action:        audit.ActionPlanUpdated,
				Subject:       c.Field,
				Summary:       c.Describe(),
				Success:       true,
				PreviousValue: c.From,
				NewValue:      c.To,
			})
			lines = append(lines, "- "+c.Describe())
			if c.Field == "pattern" || c.Field == "environment" {
				structural = true
			}
		}
		changeText = "Updated the plan:\n" + strings.Join(lines, "\n")
		if structural {
			changeText += "\n\n" + infra.Summary(sess.Plan)
		}
	}

	// Free text during a collection answers the current question unless it
	// restructured the plan.
	if wasCollecting && !structural {
		res, err := o.collector.AnswerCurrent(ctx, t.sessionID, t.text)
		if err != nil {
			return nil, wrap(KindPersistenceUnavailable, "answer current question", err)
		}
		o.recordCompletion(ctx, t, res)
		return requirementsOutcome(res, changeText), nil
	}

	if changeText == "" {
		return nil, nil
	}
	out := &outcome{text: changeText, confidence: 0.85, success: true, suggestions: planSuggestions}
	if q, n := sess.CurrentQuestion(); q != nil {
		out.text += "\n" + sess.FormatQuestion(n-1)
	} else {
		out.suggestions = []string{"Say \"generate terraform\" to produce code for the updated plan"}
	}
	return out, nil
}

func requirementsOutcome(res requirements.Result, prefix string) *outcome {
	if !res.Success {
		text := "I couldn't record that: " + res.Error + "."
		if res.Suggestion != "" {
			text += " " + res.Suggestion
		}
		if prefix != "" {
			text = prefix + "\n\n" + text
		}
		return &outcome{text: text, confidence: 0.3, success: false, suggestions: []string{res.Suggestion}}
	}

	text := res.Message
	if prefix != "" {
		text = prefix + "\n\n" + text
	}
	out := &outcome{text: text, confidence: 0.85, success: true, suggestions: planSuggestions}
	if res.IsComplete {
		out.suggestions = res.NextSteps
	}
	return out
}

// handleProceed completes any open collection with defaults and generates
// code for the session's plan.
func (o *Orchestrator) handleProceed(ctx context.Context, t *turn) (*outcome, error) {
	if !t.hasPlan() {
		return nil, nil
	}
	var prefix string
	if t.collecting() {
		res, err := o.collector.ProceedWithDefaults(ctx, t.sessionID)
		if err != nil {
			o.logKind(t, KindPersistenceUnavailable, err).Warn("defaults not persisted")
		} else {
			prefix = res.Message
			o.recordCompletion(ctx, t, res)
		}
	}
	return o.generate(ctx, t, t.req.Plan, prefix)
}

// handleCodeGeneration renders code for the session's plan, or for a plan
// derived from the utterance when there is none.
func (o *Orchestrator) handleCodeGeneration(ctx context.Context, t *turn) (*outcome, error) {
	if o.toolProvider("generate") == "" {
		return nil, nil
	}
	var plan *infra.Plan
	if t.hasPlan() {
		plan = t.req.Plan
	} else {
		plan = o.plans.Analyze(t.text, o.preferences(t))
	}
	return o.generate(ctx, t, plan, "")
}

func (o *Orchestrator) generate(ctx context.Context, t *turn, plan *infra.Plan, prefix string) (*outcome, error) {
	name := o.toolProvider("generate")
	if name == "" {
		text := infra.Summary(plan) + "\nCode generation is not available in this deployment."
		if prefix != "" {
			text = prefix + "\n\n" + text
		}
		return &outcome{text: text, confidence: 0.6, success: true}, nil
	}

	resp, err := o.broker.ExecuteTool(ctx, name, knowledge.ToolRequest{
		Tool:  "generate",
		Query: t.text,
		Plan:  plan,
		Write: o.writeArtifacts,
	})
	if err != nil {
		return nil, wrap(KindPluginFailure, "generate", err)
	}
	written, _ := resp.Extra["path"].(string)
	o.recordEvent(ctx, t, audit.Entry{
		Action:   audit.ActionCodeGenerated,
		Subject:  string(plan.Environment),
		Summary:  fmt.Sprintf("%s generated code for %s on %s", name, plan.Pattern, plan.Environment),
		Success:  resp.Success,
		NewValue: written,
	})
	out := toolOutcome(name, resp)
	if prefix != "" {
		out.text = prefix + "\n\n" + out.text
	}
	if out.success {
		out.suggestions = []string{
			"Say \"run terraform init\" and then \"terraform plan\" to check the code",
			"Ask to change the plan, e.g. \"switch to gcp\", and generate again",
		}
	}
	return out, nil
}

// toolProvider returns the first registered provider offering tool.
func (o *Orchestrator) toolProvider(tool string) string {
	for _, p := range o.broker.Providers() {
		exec, ok := p.(knowledge.ToolExecutor)
		if !ok || !p.Capability().ToolExecution {
			continue
		}
		for _, name := range exec.Tools() {
			if name == tool {
				return p.Name()
			}
		}
	}
	return ""
}

// handleCommand runs the tool named in the utterance on the most confident
// tool provider, defaulting to "describe".
func (o *Orchestrator) handleCommand(ctx context.Context, t *turn) (*outcome, error) {
	p, ok := o.broker.SelectTool(t.analysis)
	if !ok {
		return nil, nil
	}
	exec := p.(knowledge.ToolExecutor)
	tool := "describe"
	for _, name := range exec.Tools() {
		if t.analysis.HasKeyword(name) {
			tool = name
			break
		}
	}

	req := knowledge.ToolRequest{Tool: tool, Query: t.text}
	if t.hasPlan() {
		req.Plan = t.req.Plan
	}
	resp, err := o.broker.ExecuteTool(ctx, p.Name(), req)
	if err != nil {
		return nil, wrap(KindPluginFailure, "execute "+tool, err)
	}
	o.recordEvent(ctx, t, audit.Entry{
		Action:  audit.ActionToolExecuted,
		Subject: p.Name() + " " + tool,
		Summary: fmt.Sprintf("ran %s on %s", tool, p.Name()),
		Success: resp.Success,
	})
	return toolOutcome(p.Name(), resp), nil
}

// recordCompletion audits a collection that just finished.
func (o *Orchestrator) recordCompletion(ctx context.Context, t *turn, res requirements.Result) {
	if !res.Success || !res.IsComplete {
		return
	}
	o.recordEvent(ctx, t, audit.Entry{
		Action:  audit.ActionRequirementsCompleted,
		Summary: fmt.Sprintf("%d requirements collected", res.TotalQuestions),
		Success: true,
	})
}

// recordEvent appends an audit entry for the turn. Failures are logged and
// never affect the reply.
func (o *Orchestrator) recordEvent(ctx context.Context, t *turn, e audit.Entry) {
	if o.audit == nil {
		return
	}
	e.SessionID = t.sessionID
	e.ActorID = t.userID
	if err := o.audit.Log(ctx, e); err != nil {
		o.logKind(t, KindPersistenceUnavailable, err).Warn("audit entry not recorded")
	}
}

func toolOutcome(provider string, resp knowledge.Response) *outcome {
	text := resp.Content
	if text == "" {
		text = fmt.Sprintf("The %s tool did not return a result.", provider)
		if msg, ok := resp.Extra["error"].(string); ok {
			text = fmt.Sprintf("The %s tool failed: %s", provider, msg)
		}
	}
	return &outcome{
		text:       text,
		confidence: resp.Confidence,
		success:    resp.Success,
		plugins:    []string{provider},
	}
}

// handleKnowledge combines the best catalog pattern with provider knowledge.
func (o *Orchestrator) handleKnowledge(ctx context.Context, t *turn) (*outcome, error) {
	out := &outcome{success: true}
	var parts []string

	if m := o.findPattern(ctx, t); m != nil {
		parts = append(parts, m.Pattern.Template)
		out.pattern = m
		out.confidence = m.Confidence / 100
	}
	for _, r := range o.broker.GetCombinedKnowledge(ctx, t.analysis, o.maxProviders) {
		if !r.Success || r.Content == "" {
			continue
		}
		parts = append(parts, r.Content)
		out.plugins = append(out.plugins, r.Source)
		out.confidence = max(out.confidence, r.Confidence)
	}

	if len(parts) == 0 {
		out.text = "I don't have a specific answer for that yet."
		if earlier := o.relatedQuery(ctx, t); earlier != "" {
			out.text += fmt.Sprintf(" It sounds related to your earlier question %q; could you add a little more detail?", earlier)
		}
		out.confidence = 0.3
		out.suggestions = fallbackSuggestions
		return out, nil
	}
	out.text = strings.Join(parts, "\n\n")
	if t.analysis.Intent == analyzer.IntentTroubleshooting {
		out.suggestions = []string{"Share the exact error output for a more specific answer"}
	}
	return out, nil
}

func (o *Orchestrator) relatedQuery(ctx context.Context, t *turn) string {
	if !t.hasHistory() {
		return ""
	}
	rel, err := o.memory.GetRelevantContext(ctx, t.text, t.sessionID)
	if err != nil {
		o.logKind(t, KindPersistenceUnavailable, err).Warn("relevant context unavailable")
		return ""
	}
	if len(rel.RelatedTurns) == 0 {
		return ""
	}
	return rel.RelatedTurns[len(rel.RelatedTurns)-1].Query
}

// findPattern returns the accepted catalog match, logging store failures.
func (o *Orchestrator) findPattern(ctx context.Context, t *turn) *patterns.Match {
	m, err := o.matcher.FindBestMatch(ctx, t.analysis.Keywords, t.analysis.Intent)
	if err != nil {
		o.logKind(t, KindPersistenceUnavailable, err).Warn("pattern catalog unavailable")
		return nil
	}
	return m
}

func (o *Orchestrator) logKind(t *turn, kind Kind, err error) *logrus.Entry {
	return o.log.WithFields(logrus.Fields{
		"session_id": t.sessionID,
		"kind":       kind,
		"error":      err,
	})
}
