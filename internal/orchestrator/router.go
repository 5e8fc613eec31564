package orchestrator

import (
	"context"
	"regexp"
	"strings"

	"github.com/ziadkadry99/infrachat/internal/analyzer"
	"github.com/ziadkadry99/infrachat/internal/infra"
)

// Route is one step of the routing chain. Handle may return a nil outcome to
// decline, passing the utterance to the next route.
type Route struct {
	Name   string
	Match  func(t *turn) bool
	Handle func(ctx context.Context, t *turn) (*outcome, error)
}

var (
	casualIntents = map[analyzer.Intent]bool{
		analyzer.IntentGreeting:     true,
		analyzer.IntentSocial:       true,
		analyzer.IntentConversation: true,
		analyzer.IntentPersonal:     true,
	}

	creationVerbs = []string{
		"create", "build", "deploy", "provision", "set up", "setup", "spin up", "launch",
		"design", "make", "need a", "need an", "stand up",
	}
	infrastructureNouns = []string{
		"infrastructure", "architecture", "application", "app", "api", "website", "platform",
		"cluster", "environment", "backend", "service", "system", "stack", "server", "database",
		"pipeline", "network", "deployment",
	}

	defaultsPhrases = []string{
		"proceed with defaults", "use defaults", "use the defaults", "use default", "go with defaults",
		"skip the questions", "skip questions", "defaults please",
	}
	proceedVerbs = map[string]bool{
		"proceed": true, "continue": true, "generate": true, "build": true, "deploy": true,
	}

	codeGenKeywords = []string{
		"generate", "code", "hcl", "template", "script", "write",
	}
	codeGenTargets = []string{
		"infrastructure", "terraform", "plan", "iac", "config", "configuration", "module",
		"aws", "azure", "gcp", "cloud", "serverless", "microservices", "kubernetes", "stack",
	}

	commandKeywords = []string{
		"run", "execute", "apply", "init", "plan", "destroy", "validate", "describe",
	}
	serviceKeywords = []string{
		"ec2", "s3", "lambda", "rds", "dynamodb", "vpc", "iam", "eks", "ecs", "aks", "gke",
		"cloudfront", "route53", "sqs", "sns",
	}

	answerCommand = regexp.MustCompile(`(?i)^\s*answer\s+(\d+)\s*[:.\-]?\s*(.*)$`)
)

// defaultRoutes returns the routing chain in precedence order.
func (o *Orchestrator) defaultRoutes() []Route {
	return []Route{
		{Name: RouteCasual, Match: isCasual, Handle: o.handleCasual},
		{Name: RouteInfrastructureCreation, Match: isInfrastructureCreation, Handle: o.handleCreation},
		{Name: RouteRequirements, Match: o.isRequirements, Handle: o.handleRequirements},
		{Name: RouteProceed, Match: isProceed, Handle: o.handleProceed},
		{Name: RouteCodeGeneration, Match: isCodeGeneration, Handle: o.handleCodeGeneration},
		{Name: RouteCommandExecution, Match: isCommandExecution, Handle: o.handleCommand},
		{Name: RouteKnowledge, Match: func(*turn) bool { return true }, Handle: o.handleKnowledge},
	}
}

// Routes returns the route names in precedence order.
func (o *Orchestrator) Routes() []string {
	names := make([]string, len(o.routes))
	for i, r := range o.routes {
		names[i] = r.Name
	}
	return names
}

func hasTechnicalKeyword(a analyzer.Analysis) bool {
	for _, k := range a.Keywords {
		if analyzer.IsTechnicalTerm(k) {
			return true
		}
	}
	return false
}

func isRequirementsCommand(text string) bool {
	return answerCommand.MatchString(text) || analyzer.ContainsAny(text, defaultsPhrases)
}

// isCasual matches small talk without technical content, and very short
// utterances outside a requirements collection that no later route claims
// ("proceed", "plan").
func isCasual(t *turn) bool {
	if hasTechnicalKeyword(t.analysis) {
		return false
	}
	if casualIntents[t.analysis.Intent] {
		return true
	}
	if len(t.words) > 2 || t.collecting() || isRequirementsCommand(t.text) {
		return false
	}
	return !isProceed(t) && !isCodeGeneration(t) && !isCommandExecution(t)
}

// isInfrastructureCreation needs a creation verb and an infrastructure noun
// or pattern. While a plan exists, change requests are left to the
// requirements route.
func isInfrastructureCreation(t *turn) bool {
	if isRequirementsCommand(t.text) {
		return false
	}
	if t.hasPlan() && infra.MentionsPlanChange(t.text) {
		return false
	}
	if !analyzer.ContainsAny(t.text, creationVerbs) {
		return false
	}
	return analyzer.ContainsAny(t.text, infrastructureNouns) || infra.MentionsPattern(t.text)
}

func isQuestion(t *turn) bool {
	if strings.HasSuffix(strings.TrimSpace(t.text), "?") {
		return true
	}
	switch t.analysis.Intent {
	case analyzer.IntentInformationRequest, analyzer.IntentCapabilityInquiry, analyzer.IntentHelpRequest:
		return true
	}
	return false
}

// isRequirements matches explicit answers and defaults, free-text answers
// while a collection is active, and change requests against an existing plan.
func (o *Orchestrator) isRequirements(t *turn) bool {
	if isRequirementsCommand(t.text) {
		return true
	}
	if !t.hasPlan() || isQuestion(t) {
		return false
	}
	if len(o.plans.UpdatePlan(t.req.Plan.Clone(), t.text)) > 0 {
		return true
	}
	return t.collecting() && !isProceed(t)
}

// isProceed matches short go-ahead phrasing.
func isProceed(t *turn) bool {
	if analyzer.ContainsAny(t.text, defaultsPhrases) {
		return false
	}
	if strings.Contains(strings.ToLower(t.text), "go ahead") {
		return true
	}
	if len(t.words) == 0 || len(t.words) > 4 {
		return false
	}
	first := strings.ToLower(strings.Trim(t.words[0], ".,!?"))
	return proceedVerbs[first]
}

func isCodeGeneration(t *turn) bool {
	return analyzer.ContainsAny(t.text, codeGenKeywords) && analyzer.ContainsAny(t.text, codeGenTargets)
}

func isCommandExecution(t *turn) bool {
	switch t.analysis.Intent {
	case analyzer.IntentInformationRequest, analyzer.IntentCapabilityInquiry:
		return false
	}
	for _, k := range t.analysis.Keywords {
		for _, c := range commandKeywords {
			if k == c {
				return true
			}
		}
		for _, s := range serviceKeywords {
			if k == s {
				return true
			}
		}
	}
	return false
}
