package infra

import (
	"strings"
	"testing"
)

func TestDetectPattern(t *testing.T) {
	tests := []struct {
		input string
		want  Pattern
	}{
		{"create a serverless API", PatternServerless},
		{"build microservices for payments", PatternMicroservices},
		{"I need a three-tier web application", PatternThreeTier},
		{"set up a kafka pipeline", PatternEventDriven},
		{"deploy my docker containers", PatternContainerBased},
		{"run my monolith on a vm", PatternMonolithic},
		{"create some infrastructure", PatternUnknown},
		// serverless is checked before containers
		{"lambda functions that call docker", PatternServerless},
		// short keywords need word boundaries
		{"ecstatic vmware users", PatternUnknown},
	}
	for _, tt := range tests {
		if got := DetectPattern(tt.input); got != tt.want {
			t.Errorf("DetectPattern(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestDetectEnvironment(t *testing.T) {
	a := NewAnalyzer(EnvAWS)
	tests := []struct {
		input string
		prefs Preferences
		want  Environment
	}{
		{"deploy on aws and azure", Preferences{}, EnvHybrid},
		{"a multi-cloud setup", Preferences{}, EnvHybrid},
		{"host it on azure", Preferences{}, EnvAzure},
		{"use google cloud", Preferences{}, EnvGCP},
		{"run it in our datacenter", Preferences{}, EnvOnPremise},
		// aws is declared before azure
		{"amazon or microsoft", Preferences{}, EnvAWS},
		{"create a web app", Preferences{PreferredEnvironment: EnvGCP}, EnvGCP},
		{"create a web app", Preferences{PreferredEnvironment: "mars"}, EnvAWS},
		{"create a web app", Preferences{}, EnvAWS},
	}
	for _, tt := range tests {
		if got := a.DetectEnvironment(tt.input, tt.prefs); got != tt.want {
			t.Errorf("DetectEnvironment(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}

	if got := NewAnalyzer(EnvAzure).DetectEnvironment("create a web app", Preferences{}); got != EnvAzure {
		t.Errorf("configured fallback ignored: %q", got)
	}
	if got := NewAnalyzer("bogus").DetectEnvironment("create a web app", Preferences{}); got != DefaultEnvironment {
		t.Errorf("invalid fallback not replaced: %q", got)
	}
}

func TestAnalyze(t *testing.T) {
	plan := NewAnalyzer(EnvAWS).Analyze("Create a serverless API on AWS", Preferences{})

	if plan.Pattern != PatternServerless || plan.Environment != EnvAWS {
		t.Fatalf("plan = %s/%s", plan.Pattern, plan.Environment)
	}
	if plan.CostEstimate != "$50-500/month" {
		t.Errorf("cost = %q", plan.CostEstimate)
	}
	if plan.Requirements[0].Service != "AWS Lambda" {
		t.Errorf("first requirement = %+v", plan.Requirements[0])
	}
	if len(plan.Questions) != len(questionsByPattern[PatternServerless])+len(commonQuestions) {
		t.Errorf("questions = %d", len(plan.Questions))
	}
	last := plan.Questions[len(plan.Questions)-1]
	if last.ID != "compliance" || last.Default != "none" {
		t.Errorf("common questions missing: %+v", last)
	}
	if plan.OriginalRequest != "Create a serverless API on AWS" {
		t.Errorf("original request = %q", plan.OriginalRequest)
	}
}

func TestAnalyzeAppliesTierSignals(t *testing.T) {
	plan := NewAnalyzer(EnvAWS).Analyze("create a hipaa compliant web app on a budget", Preferences{})
	if plan.CostEstimate != costBudget {
		t.Errorf("cost = %q, want budget tier", plan.CostEstimate)
	}
	if securityTier(plan.SecurityRecommendations) != "compliance" {
		t.Errorf("security = %v", plan.SecurityRecommendations)
	}
}

func TestUpdatePlanToHybridRemapsEveryService(t *testing.T) {
	a := NewAnalyzer(EnvAWS)
	plan := a.Analyze("create a microservices platform on aws", Preferences{})
	before := make([]string, len(plan.Requirements))
	for i, r := range plan.Requirements {
		before[i] = r.Service
	}

	changes := a.UpdatePlan(plan, "actually make it multi-cloud")
	if plan.Environment != EnvHybrid {
		t.Fatalf("environment = %q, want hybrid", plan.Environment)
	}
	if len(changes) != 1 || changes[0].Field != "environment" || changes[0].From != "aws" || changes[0].To != "hybrid" {
		t.Errorf("changes = %+v", changes)
	}
	for i, r := range plan.Requirements {
		if r.Service == before[i] {
			t.Errorf("requirement %s kept stale name %q", r.Component, r.Service)
		}
		names := serviceNames[r.ServiceType]
		want := names[EnvAWS] + " / " + names[EnvAzure] + " / " + names[EnvGCP]
		if r.Service != want {
			t.Errorf("requirement %s = %q, want %q", r.Component, r.Service, want)
		}
	}
}

func TestUpdatePlanSingleProvider(t *testing.T) {
	a := NewAnalyzer(EnvAWS)
	plan := a.Analyze("create a serverless app across clouds", Preferences{})
	if plan.Environment != EnvHybrid {
		t.Fatalf("environment = %q", plan.Environment)
	}

	a.UpdatePlan(plan, "let's keep it on gcp only")
	if plan.Environment != EnvGCP {
		t.Errorf("environment = %q, want gcp", plan.Environment)
	}
	if plan.Requirements[0].Service != "Google Cloud Functions" {
		t.Errorf("requirements not recomputed: %+v", plan.Requirements[0])
	}

	// Two providers without a hybrid phrase leave the environment alone.
	a.UpdatePlan(plan, "compare azure or aws pricing")
	if plan.Environment != EnvGCP {
		t.Errorf("environment changed on ambiguous text: %q", plan.Environment)
	}
}

func TestUpdatePlanPatternChange(t *testing.T) {
	a := NewAnalyzer(EnvAWS)
	plan := a.Analyze("create a serverless API on aws", Preferences{})

	// A pattern keyword alone is not a change request.
	if changes := a.UpdatePlan(plan, "does kubernetes matter here"); len(changes) != 0 {
		t.Errorf("unexpected changes: %+v", changes)
	}

	changes := a.UpdatePlan(plan, "switch to kubernetes containers")
	if plan.Pattern != PatternContainerBased {
		t.Fatalf("pattern = %q", plan.Pattern)
	}
	if plan.CostEstimate != "$400-4,000/month" {
		t.Errorf("cost not reset to pattern default: %q", plan.CostEstimate)
	}
	if plan.Questions[0].ID != "container_count" {
		t.Errorf("questions not regenerated: %s", plan.Questions[0].ID)
	}
	if plan.Requirements[0].Service != "Amazon EKS" {
		t.Errorf("requirements not recomputed: %+v", plan.Requirements[0])
	}
	fields := []string{}
	for _, c := range changes {
		fields = append(fields, c.Field)
	}
	if strings.Join(fields, ",") != "pattern,cost_estimate" {
		t.Errorf("changes = %v", fields)
	}
}

func TestUpdatePlanLastWriterWins(t *testing.T) {
	a := NewAnalyzer(EnvAWS)
	plan := a.Analyze("create a web app", Preferences{})

	a.UpdatePlan(plan, "keep it on a budget but with disaster recovery")
	if plan.CostEstimate != costPerformance {
		t.Errorf("cost = %q, want performance tier to overwrite budget", plan.CostEstimate)
	}

	a.UpdatePlan(plan, "we need hipaa compliance and zero trust")
	if securityTier(plan.SecurityRecommendations) != "enterprise" {
		t.Errorf("security tier = %q, want enterprise", securityTier(plan.SecurityRecommendations))
	}
}

func TestUpdatePlanKeepsQuestionsOnEnvironmentChange(t *testing.T) {
	a := NewAnalyzer(EnvAWS)
	plan := a.Analyze("create a web app", Preferences{})
	plan.Questions[0].Default = "marker"

	a.UpdatePlan(plan, "host it on azure")
	if plan.Questions[0].Default != "marker" {
		t.Error("questions regenerated on an environment-only change")
	}
}

func TestTablesAreExhaustive(t *testing.T) {
	for _, p := range Patterns {
		if _, ok := requirementsByPattern[p]; !ok {
			t.Errorf("no requirements for %s", p)
		}
		if _, ok := questionsByPattern[p]; !ok {
			t.Errorf("no questions for %s", p)
		}
		if _, ok := costByPattern[p]; !ok {
			t.Errorf("no cost for %s", p)
		}
		if _, ok := deploymentByPattern[p]; !ok {
			t.Errorf("no deployment recommendations for %s", p)
		}
		for _, r := range requirementsByPattern[p] {
			names, ok := serviceNames[r.serviceType]
			if !ok {
				t.Errorf("%s: unknown service type %s", p, r.serviceType)
				continue
			}
			for _, env := range []Environment{EnvAWS, EnvAzure, EnvGCP, EnvOnPremise} {
				if names[env] == "" {
					t.Errorf("%s has no %s name", r.serviceType, env)
				}
			}
		}
	}
}

func TestQuestionIDsUnique(t *testing.T) {
	for _, p := range Patterns {
		seen := map[string]bool{}
		for _, q := range GenerateQuestions(p) {
			if seen[q.ID] {
				t.Errorf("%s: duplicate question id %s", p, q.ID)
			}
			seen[q.ID] = true
		}
	}
}

func TestGenerateQuestionsDoesNotAliasTables(t *testing.T) {
	qs := GenerateQuestions(PatternServerless)
	qs[0].Options[0] = "mutated"
	if questionsByPattern[PatternServerless][0].Options[0] == "mutated" {
		t.Error("GenerateQuestions shares option slices with the table")
	}
}

func TestRenderTerraform(t *testing.T) {
	a := NewAnalyzer(EnvAWS)

	plan := a.Analyze("create a serverless API on aws", Preferences{})
	out, err := RenderTerraform(plan)
	if err != nil {
		t.Fatalf("RenderTerraform: %v", err)
	}
	for _, want := range []string{`provider "aws"`, `source = "hashicorp/aws"`, `variable "aws_region"`, `module "compute"`, `service = "AWS Lambda"`} {
		if !strings.Contains(out, want) {
			t.Errorf("aws output missing %q:\n%s", want, out)
		}
	}

	plan = a.Analyze("multi-cloud event-driven system", Preferences{})
	out, err = RenderTerraform(plan)
	if err != nil {
		t.Fatalf("RenderTerraform: %v", err)
	}
	for _, want := range []string{`provider "aws"`, `provider "azurerm"`, `provider "google"`, `variable "project_id"`, "features {}"} {
		if !strings.Contains(out, want) {
			t.Errorf("hybrid output missing %q:\n%s", want, out)
		}
	}

	plan = a.Analyze("monolith on bare metal", Preferences{})
	out, _ = RenderTerraform(plan)
	if strings.Contains(out, "provider \"") {
		t.Errorf("on-premise output should have no provider block:\n%s", out)
	}

	if _, err := RenderTerraform(nil); err == nil {
		t.Error("expected error for nil plan")
	}
}

func TestTerraformIdent(t *testing.T) {
	tests := map[string]string{
		"load_balancer": "load_balancer",
		"Service Mesh":  "service_mesh",
		"3tier":         "_3tier",
		"":              "component",
	}
	for in, want := range tests {
		if got := terraformIdent(in); got != want {
			t.Errorf("terraformIdent(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSummary(t *testing.T) {
	plan := NewAnalyzer(EnvAWS).Analyze("create a web app on azure", Preferences{})
	s := Summary(plan)
	for _, want := range []string{"three-tier on azure", "Azure SQL Database", "Estimated cost"} {
		if !strings.Contains(s, want) {
			t.Errorf("summary missing %q:\n%s", want, s)
		}
	}
}

func TestCloneIsDeep(t *testing.T) {
	plan := NewAnalyzer(EnvAWS).Analyze("create a serverless api", Preferences{})
	c := plan.Clone()

	NewAnalyzer(EnvAWS).UpdatePlan(c, "make it multi-cloud and hipaa compliant")
	c.Questions[0].Options[0] = "mutated"

	if plan.Environment != EnvAWS {
		t.Errorf("original environment = %q, want aws", plan.Environment)
	}
	if plan.Requirements[0].Service == c.Requirements[0].Service {
		t.Errorf("original requirement changed with clone: %q", plan.Requirements[0].Service)
	}
	if plan.Questions[0].Options[0] == "mutated" {
		t.Error("clone shares question options with original")
	}
	if securityTier(plan.SecurityRecommendations) != "standard" {
		t.Errorf("original security tier = %q", securityTier(plan.SecurityRecommendations))
	}
}

func TestMentionsPlanChange(t *testing.T) {
	if !MentionsPlanChange("let's switch to microservices") {
		t.Error("expected plan change")
	}
	if MentionsPlanChange("what region should I pick") {
		t.Error("unexpected plan change")
	}
	if !MentionsPattern("an event-driven pipeline") || MentionsPattern("a database") {
		t.Error("MentionsPattern mismatch")
	}
}
