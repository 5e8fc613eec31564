// Package infra detects infrastructure shapes and targets in free text,
// derives typed requirements and clarification questions, estimates cost and
// mutates plans in response to follow-up requests.
package infra

import (
	"fmt"
	"strings"

	"github.com/ziadkadry99/infrachat/internal/analyzer"
)

// Analyzer builds and mutates infrastructure plans.
type Analyzer struct {
	fallback Environment
}

// NewAnalyzer creates a plan analyzer. fallback is the environment used when
// neither the text nor the caller's preferences name one; an invalid value
// falls back to DefaultEnvironment.
func NewAnalyzer(fallback Environment) *Analyzer {
	if fallback == EnvUnknown || ParseEnvironment(string(fallback)) == EnvUnknown {
		fallback = DefaultEnvironment
	}
	return &Analyzer{fallback: fallback}
}

// Analyze creates a new plan from an infrastructure-creation request.
func (a *Analyzer) Analyze(text string, prefs Preferences) *Plan {
	pattern := DetectPattern(text)
	env := a.DetectEnvironment(text, prefs)

	plan := &Plan{
		Pattern:                   pattern,
		Environment:               env,
		Requirements:              DeriveRequirements(pattern, env),
		Questions:                 GenerateQuestions(pattern),
		CostEstimate:              EstimateCost(pattern),
		SecurityRecommendations:   append([]string(nil), defaultSecurity...),
		DeploymentRecommendations: append([]string(nil), deploymentByPattern[pattern]...),
		OriginalRequest:           text,
	}
	applyTierSignals(plan, text)
	return plan
}

// DetectPattern returns the first pattern whose keywords appear in text.
func DetectPattern(text string) Pattern {
	for _, entry := range patternKeywords {
		if analyzer.ContainsAny(text, entry.phrases) {
			return entry.pattern
		}
	}
	return PatternUnknown
}

// MentionsPattern reports whether text names any architecture pattern.
func MentionsPattern(text string) bool {
	return DetectPattern(text) != PatternUnknown
}

// MentionsPlanChange reports whether text asks to change an existing plan's
// pattern ("switch to", "make it", ...).
func MentionsPlanChange(text string) bool {
	return analyzer.ContainsAny(text, patternChangePhrases)
}

// DetectEnvironment resolves the target environment: hybrid phrases first,
// then the first provider mentioned, then the preferred environment, then
// the analyzer's fallback.
func (a *Analyzer) DetectEnvironment(text string, prefs Preferences) Environment {
	if analyzer.ContainsAny(text, hybridPhrases) {
		return EnvHybrid
	}
	for _, entry := range providerPhrases {
		if analyzer.ContainsAny(text, entry.phrases) {
			return entry.env
		}
	}
	if prefs.PreferredEnvironment != "" && prefs.PreferredEnvironment != EnvUnknown &&
		ParseEnvironment(string(prefs.PreferredEnvironment)) != EnvUnknown {
		return prefs.PreferredEnvironment
	}
	return a.fallback
}

// singleProvider returns the provider when exactly one is mentioned.
func singleProvider(text string) (Environment, bool) {
	var found []Environment
	for _, entry := range providerPhrases {
		if analyzer.ContainsAny(text, entry.phrases) {
			found = append(found, entry.env)
		}
	}
	if len(found) != 1 {
		return "", false
	}
	return found[0], true
}

// ServiceName maps a generic service type onto its name in env. Hybrid names
// join the aws, azure and gcp names.
func ServiceName(serviceType string, env Environment) string {
	names, ok := serviceNames[serviceType]
	if !ok {
		return serviceType
	}
	switch env {
	case EnvHybrid:
		return names[EnvAWS] + " / " + names[EnvAzure] + " / " + names[EnvGCP]
	case EnvAWS, EnvAzure, EnvGCP, EnvOnPremise:
		return names[env]
	default:
		return serviceType
	}
}

// DeriveRequirements builds the pattern's requirement list for env.
func DeriveRequirements(p Pattern, env Environment) []Requirement {
	templates, ok := requirementsByPattern[p]
	if !ok {
		templates = requirementsByPattern[PatternUnknown]
	}
	reqs := make([]Requirement, 0, len(templates))
	for _, t := range templates {
		reqs = append(reqs, Requirement{
			Component:   t.component,
			ServiceType: t.serviceType,
			Service:     ServiceName(t.serviceType, env),
			Purpose:     t.purpose,
			Priority:    t.priority,
		})
	}
	return reqs
}

// GenerateQuestions returns the pattern-specific questions followed by the
// common ones. The result does not share memory with the tables.
func GenerateQuestions(p Pattern) []Question {
	specific, ok := questionsByPattern[p]
	if !ok {
		specific = questionsByPattern[PatternUnknown]
	}
	questions := make([]Question, 0, len(specific)+len(commonQuestions))
	for _, q := range append(append([]Question(nil), specific...), commonQuestions...) {
		q.Options = append([]string(nil), q.Options...)
		questions = append(questions, q)
	}
	return questions
}

// EstimateCost returns the monthly cost range for a pattern.
func EstimateCost(p Pattern) string {
	if cost, ok := costByPattern[p]; ok {
		return cost
	}
	return costByPattern[PatternUnknown]
}

// UpdatePlan scans text for independent signal groups and overwrites the
// matching plan fields in place. Rules run in a fixed order and a later rule
// overwrites an earlier one in the same call. Requirements are recomputed
// whenever the pattern or environment changed.
func (a *Analyzer) UpdatePlan(plan *Plan, text string) []Change {
	var changes []Change
	prevPattern, prevEnv := plan.Pattern, plan.Environment

	if analyzer.ContainsAny(text, hybridPhrases) {
		changes = setEnvironment(plan, EnvHybrid, changes)
	} else if env, ok := singleProvider(text); ok {
		changes = setEnvironment(plan, env, changes)
	}

	if analyzer.ContainsAny(text, patternChangePhrases) {
		if p := DetectPattern(text); p != PatternUnknown && p != plan.Pattern {
			changes = append(changes, Change{Field: "pattern", From: string(plan.Pattern), To: string(p)})
			plan.Pattern = p
			plan.Questions = GenerateQuestions(p)
			plan.DeploymentRecommendations = append([]string(nil), deploymentByPattern[p]...)
			changes = setCost(plan, EstimateCost(p), changes)
		}
	}

	changes = append(changes, applyTierSignals(plan, text)...)

	if plan.Pattern != prevPattern || plan.Environment != prevEnv {
		plan.Requirements = DeriveRequirements(plan.Pattern, plan.Environment)
	}
	return changes
}

// applyTierSignals applies the budget, compliance, security and performance
// rules in order.
func applyTierSignals(plan *Plan, text string) []Change {
	var changes []Change
	if analyzer.ContainsAny(text, budgetPhrases) {
		changes = setCost(plan, costBudget, changes)
	}
	if analyzer.ContainsAny(text, enterpriseCostPhrases) {
		changes = setCost(plan, costEnterprise, changes)
	}
	if analyzer.ContainsAny(text, compliancePhrases) {
		changes = setSecurity(plan, "compliance", complianceSecurity, changes)
	}
	if analyzer.ContainsAny(text, enterpriseSecurityPhrases) {
		changes = setSecurity(plan, "enterprise", enterpriseSecurity, changes)
	}
	if analyzer.ContainsAny(text, performancePhrases) {
		changes = setCost(plan, costPerformance, changes)
	}
	return changes
}

func setEnvironment(plan *Plan, env Environment, changes []Change) []Change {
	if plan.Environment == env {
		return changes
	}
	changes = append(changes, Change{Field: "environment", From: string(plan.Environment), To: string(env)})
	plan.Environment = env
	return changes
}

func setCost(plan *Plan, cost string, changes []Change) []Change {
	if plan.CostEstimate == cost {
		return changes
	}
	changes = append(changes, Change{Field: "cost_estimate", From: plan.CostEstimate, To: cost})
	plan.CostEstimate = cost
	return changes
}

func setSecurity(plan *Plan, tier string, list []string, changes []Change) []Change {
	from := securityTier(plan.SecurityRecommendations)
	if from == tier {
		return changes
	}
	changes = append(changes, Change{Field: "security_recommendations", From: from, To: tier})
	plan.SecurityRecommendations = append([]string(nil), list...)
	return changes
}

func securityTier(list []string) string {
	if len(list) == 0 {
		return "none"
	}
	switch list[0] {
	case complianceSecurity[0]:
		return "compliance"
	case enterpriseSecurity[0]:
		return "enterprise"
	case defaultSecurity[0]:
		return "standard"
	}
	return "custom"
}

// Describe renders a change for a reply.
func (c Change) Describe() string {
	field := strings.ReplaceAll(c.Field, "_", " ")
	return fmt.Sprintf("%s: %s -> %s", field, c.From, c.To)
}
