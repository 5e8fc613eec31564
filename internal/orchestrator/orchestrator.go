// Package orchestrator routes each utterance through a fixed-precedence chain
// of handlers, composes the reply and records the interaction in session
// memory.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ziadkadry99/infrachat/internal/analyzer"
	"github.com/ziadkadry99/infrachat/internal/audit"
	"github.com/ziadkadry99/infrachat/internal/infra"
	"github.com/ziadkadry99/infrachat/internal/knowledge"
	"github.com/ziadkadry99/infrachat/internal/memory"
	"github.com/ziadkadry99/infrachat/internal/patterns"
	"github.com/ziadkadry99/infrachat/internal/requirements"
)

// DefaultMaxQueryLength bounds the stored utterance when Deps leaves it unset.
const DefaultMaxQueryLength = 4000

// QueryAnalyzer analyzes one utterance.
type QueryAnalyzer interface {
	Analyze(text string) analyzer.Analysis
}

// Auditor records plan and provisioning events.
type Auditor interface {
	Log(ctx context.Context, entry audit.Entry) error
}

// Deps are the components an Orchestrator routes between.
type Deps struct {
	Analyzer     QueryAnalyzer
	Patterns     *patterns.Store
	Memory       *memory.Store
	Broker       *knowledge.Broker
	Plans        *infra.Analyzer
	Requirements *requirements.Collector
	// Audit is optional; nil disables the audit trail.
	Audit Auditor
	Log   logrus.FieldLogger

	// MaxProviders caps the knowledge providers queried per utterance.
	MaxProviders   int
	MaxQueryLength int
	// WriteArtifacts lets code generation write files to the provisioner's
	// working directory.
	WriteArtifacts bool
}

// Orchestrator is the conversation engine.
type Orchestrator struct {
	analyzer       QueryAnalyzer
	patterns       *patterns.Store
	matcher        *patterns.Matcher
	memory         *memory.Store
	broker         *knowledge.Broker
	plans          *infra.Analyzer
	collector      *requirements.Collector
	audit          Auditor
	log            logrus.FieldLogger
	maxProviders   int
	maxQueryLength int
	writeArtifacts bool
	routes         []Route
	now            func() time.Time
}

// New creates an orchestrator.
func New(d Deps) *Orchestrator {
	o := &Orchestrator{
		analyzer:       d.Analyzer,
		patterns:       d.Patterns,
		matcher:        patterns.NewMatcher(d.Patterns),
		memory:         d.Memory,
		broker:         d.Broker,
		plans:          d.Plans,
		collector:      d.Requirements,
		audit:          d.Audit,
		log:            d.Log,
		maxProviders:   d.MaxProviders,
		maxQueryLength: d.MaxQueryLength,
		writeArtifacts: d.WriteArtifacts,
		now:            func() time.Time { return time.Now().UTC() },
	}
	if o.maxProviders <= 0 {
		o.maxProviders = knowledge.DefaultMaxProviders
	}
	if o.maxQueryLength <= 0 {
		o.maxQueryLength = DefaultMaxQueryLength
	}
	o.routes = o.defaultRoutes()
	return o
}

// PlanAnalyzer returns the plan analyzer used for creation requests.
func (o *Orchestrator) PlanAnalyzer() *infra.Analyzer { return o.plans }

// ProcessQuery answers one utterance. It never fails: every error, including
// a panic, becomes a structured response with success=false.
func (o *Orchestrator) ProcessQuery(ctx context.Context, text, sessionID, userID string) (resp Response) {
	start := o.now()
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	defer func() {
		if r := recover(); r != nil {
			err := &Error{Kind: KindPipelineFailure, Op: "process query", Err: fmt.Errorf("panic: %v", r)}
			resp = o.failure(err, sessionID, start)
		}
	}()

	resp, err := o.process(ctx, text, sessionID, userID, start)
	if err != nil {
		return o.failure(err, sessionID, start)
	}
	return resp
}

func (o *Orchestrator) process(ctx context.Context, text, sessionID, userID string, start time.Time) (Response, error) {
	text = strings.TrimSpace(text)
	if !utf8.ValidString(text) {
		text = strings.ToValidUTF8(text, " ")
	}
	if utf8.RuneCountInString(text) > o.maxQueryLength {
		text = string([]rune(text)[:o.maxQueryLength])
	}
	log := o.log.WithField("session_id", sessionID)

	if text == "" {
		return Response{
			Success:      true,
			ResponseText: "I didn't catch a question there. What would you like to work on?",
			Confidence:   0.1,
			Intent:       string(analyzer.IntentGeneral),
			Complexity:   string(analyzer.ComplexityBeginner),
			Sources:      []string{"base_patterns"},
			PluginsUsed:  []string{},
			Suggestions:  fallbackSuggestions,
			SessionID:    sessionID,
			Timestamp:    start,
		}, nil
	}

	a, err := o.analyze(text)
	if err != nil {
		log.WithError(err).Error("query analysis failed")
		resp := o.compose(&turn{text: text, sessionID: sessionID, userID: userID, convo: emptyContext(sessionID, userID)},
			&outcome{
				text:        "Thanks, I've noted that, but I couldn't interpret it fully. Could you rephrase it?",
				confidence:  0.2,
				success:     true,
				suggestions: fallbackSuggestions,
			}, "", start)
		resp.Intent = string(analyzer.IntentGeneral)
		return resp, nil
	}

	t := &turn{
		text:      text,
		words:     strings.Fields(text),
		sessionID: sessionID,
		userID:    userID,
		analysis:  a,
		convo:     o.conversation(ctx, log, sessionID, userID),
		req:       o.requirementsSession(ctx, log, sessionID),
	}

	for _, route := range o.routes {
		if !route.Match(t) {
			continue
		}
		out, err := route.Handle(ctx, t)
		if err != nil {
			return Response{}, err
		}
		if out == nil {
			log.WithField("route", route.Name).Debug("route declined")
			continue
		}

		log.WithFields(logrus.Fields{
			"route":      route.Name,
			"intent":     a.Intent,
			"confidence": out.confidence,
		}).Debug("query routed")
		resp := o.compose(t, out, route.Name, start)
		o.record(ctx, log, t, out, resp)
		return resp, nil
	}
	return Response{}, &Error{Kind: KindPipelineFailure, Op: "route", Err: errors.New("no route accepted the query")}
}

// analyze runs the query analyzer, converting a panic into an analysis error.
func (o *Orchestrator) analyze(text string) (a analyzer.Analysis, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &Error{Kind: KindAnalysisFailure, Op: "analyze", Err: fmt.Errorf("panic: %v", r)}
		}
	}()
	return o.analyzer.Analyze(text), nil
}

func emptyContext(sessionID, userID string) *memory.ConversationContext {
	return &memory.ConversationContext{SessionID: sessionID, UserID: userID, Preferences: map[string]string{}}
}

// conversation loads the session's context. Failures degrade to an empty
// context.
func (o *Orchestrator) conversation(ctx context.Context, log logrus.FieldLogger, sessionID, userID string) *memory.ConversationContext {
	cc, err := o.memory.GetConversationContext(ctx, sessionID)
	if err != nil {
		log.WithFields(logrus.Fields{"kind": KindPersistenceUnavailable, "error": err}).Warn("conversation context unavailable")
		return emptyContext(sessionID, userID)
	}
	if cc.Preferences == nil {
		cc.Preferences = map[string]string{}
	}
	// A new session has no stored user yet; use the caller's.
	if cc.UserID == "" && userID != "" {
		cc.UserID = userID
		prefs, err := o.memory.GetPreferences(ctx, userID)
		if err != nil {
			log.WithFields(logrus.Fields{"kind": KindPersistenceUnavailable, "error": err}).Warn("user preferences unavailable")
		}
		for k, v := range prefs {
			cc.Preferences[k] = v
		}
	}
	return cc
}

func (o *Orchestrator) requirementsSession(ctx context.Context, log logrus.FieldLogger, sessionID string) *requirements.Session {
	sess, err := o.collector.Session(ctx, sessionID)
	if err != nil {
		log.WithFields(logrus.Fields{"kind": KindPersistenceUnavailable, "error": err}).Warn("requirements state unavailable")
		return nil
	}
	return sess
}

// compose builds the response. Sources always include the base patterns,
// then conversation memory when history existed, then the plugins used.
func (o *Orchestrator) compose(t *turn, out *outcome, route string, start time.Time) Response {
	sources := []string{"base_patterns"}
	if t.hasHistory() {
		sources = append(sources, "conversation_memory")
	}
	plugins := []string{}
	for _, p := range out.plugins {
		if !contains(plugins, p) {
			plugins = append(plugins, p)
			sources = append(sources, p)
		}
	}
	suggestions := out.suggestions
	if suggestions == nil {
		suggestions = []string{}
	}

	complexity := string(t.analysis.Complexity)
	if complexity == "" {
		complexity = string(analyzer.ComplexityBeginner)
	}
	return Response{
		Success:        out.success,
		ResponseText:   out.text,
		Confidence:     min(1.0, max(0, out.confidence)),
		Intent:         string(t.analysis.Intent),
		Complexity:     complexity,
		Sources:        sources,
		ContextUsed:    t.hasHistory(),
		PluginsUsed:    plugins,
		Suggestions:    suggestions,
		ResponseTimeMS: o.now().Sub(start).Milliseconds(),
		Timestamp:      start,
		SessionID:      t.sessionID,
		Route:          route,
	}
}

// record writes the interaction to memory and credits a used pattern.
// Failures are logged.
func (o *Orchestrator) record(ctx context.Context, log logrus.FieldLogger, t *turn, out *outcome, resp Response) {
	var focus string
	if tools := t.analysis.Context.ToolsMentioned; len(tools) > 0 {
		focus = tools[0]
	}
	_, err := o.memory.AddInteraction(ctx, memory.Interaction{
		SessionID:       t.sessionID,
		UserID:          t.userID,
		Query:           t.text,
		Response:        resp.ResponseText,
		Intent:          resp.Intent,
		Confidence:      resp.Confidence,
		Success:         resp.Success,
		TechnologyFocus: focus,
		Complexity:      resp.Complexity,
	})
	if err != nil {
		log.WithFields(logrus.Fields{"kind": KindPersistenceUnavailable, "error": err}).Warn("interaction not recorded")
	}

	if out.pattern != nil {
		if err := o.patterns.UpdateUsage(ctx, out.pattern.Pattern.ID, true); err != nil {
			log.WithFields(logrus.Fields{"kind": KindPersistenceUnavailable, "error": err}).Warn("pattern usage not updated")
		}
	}
}

// failure is the safe response for an unrecoverable pipeline error.
func (o *Orchestrator) failure(err error, sessionID string, start time.Time) Response {
	kind := KindPipelineFailure
	var oe *Error
	if errors.As(err, &oe) {
		kind = oe.Kind
	}
	o.log.WithFields(logrus.Fields{"session_id": sessionID, "kind": kind, "error": err}).Error("query processing failed")

	return Response{
		Success:      false,
		ResponseText: "Sorry, something went wrong while processing your request. Please try rephrasing it.",
		Confidence:   0,
		Intent:       "error",
		Complexity:   string(analyzer.ComplexityBeginner),
		Sources:      []string{"base_patterns"},
		PluginsUsed:  []string{},
		Suggestions: []string{
			"Rephrase your request with a little more detail",
			"Ask \"what can you do?\" to see what I support",
			"Describe the infrastructure you want, e.g. \"create a serverless API on AWS\"",
		},
		ResponseTimeMS: o.now().Sub(start).Milliseconds(),
		Timestamp:      start,
		SessionID:      sessionID,
	}
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
