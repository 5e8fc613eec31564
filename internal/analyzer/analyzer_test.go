package analyzer

import (
	"math"
	"strings"
	"testing"
)

func newTestAnalyzer(t *testing.T) *Analyzer {
	t.Helper()
	a, err := New(Options{CacheSize: 16, MaxQueryLength: 200})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return a
}

func TestClassifyIntent(t *testing.T) {
	tests := []struct {
		input string
		want  Intent
	}{
		{"Hi, what can you do?", IntentCapabilityInquiry},
		{"Hello! What are your capabilities?", IntentCapabilityInquiry},
		{"Hello!", IntentGreeting},
		{"hey there", IntentGreeting},
		{"What is Docker?", IntentInformationRequest},
		{"How do I install Docker?", IntentCommandRequest},
		{"My container is not working", IntentTroubleshooting},
		{"Can you help me with terraform", IntentHelpRequest},
		{"thanks a lot", IntentSocial},
		{"what do you mean by that", IntentClarification},
		{"how are you today", IntentConversation},
		{"who are you", IntentPersonal},
		{"ship this thing", IntentGeneral},
		{"", IntentGeneral},
	}
	for _, tt := range tests {
		if got := ClassifyIntent(tt.input); got != tt.want {
			t.Errorf("ClassifyIntent(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestCapabilityBeatsGreeting(t *testing.T) {
	greetings := []string{"hi", "hello", "hey", "good morning"}
	capabilities := []string{"what can you do", "what are your capabilities", "how can you help"}
	for _, g := range greetings {
		for _, c := range capabilities {
			text := g + ", " + c + "?"
			if got := ClassifyIntent(text); got != IntentCapabilityInquiry {
				t.Errorf("ClassifyIntent(%q) = %q, want capability_inquiry", text, got)
			}
		}
	}
}

func TestExtractKeywords(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"Hi, what can you do?", []string{"hi", "what", "can", "you", "do"}},
		{"How do I install Docker? Docker!", []string{"do", "install", "docker"}},
		{"Deploy a multi-region, highly-available API", []string{"deploy", "multi-region", "highly-available", "api"}},
		{"the a of", []string{}},
	}
	for _, tt := range tests {
		got := ExtractKeywords(tt.input)
		if strings.Join(got, ",") != strings.Join(tt.want, ",") {
			t.Errorf("ExtractKeywords(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestAssessComplexity(t *testing.T) {
	tests := []struct {
		input string
		want  Complexity
	}{
		{"What is Docker?", ComplexityBeginner},
		{"configure nginx ingress for my cluster", ComplexityIntermediate},
		{"design a disaster recovery strategy across regions", ComplexityAdvanced},
		{"terraform state lock", ComplexityBeginner},
		{"my pods keep restarting every few minutes overnight", ComplexityIntermediate},
	}
	for _, tt := range tests {
		if got := AssessComplexity(tt.input); got != tt.want {
			t.Errorf("AssessComplexity(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestExtractContext(t *testing.T) {
	ctx := ExtractContext([]string{"deploy", "docker", "aws", "terraform"})
	wantDomains := "cloud,containers,iac"
	if strings.Join(ctx.TechnicalDomains, ",") != wantDomains {
		t.Errorf("domains = %v, want %s", ctx.TechnicalDomains, wantDomains)
	}
	if strings.Join(ctx.ToolsMentioned, ",") != "docker,aws,terraform" {
		t.Errorf("tools = %v", ctx.ToolsMentioned)
	}
	if ctx.ActionType != ActionCreate {
		t.Errorf("action = %q, want create", ctx.ActionType)
	}

	ctx = ExtractContext([]string{"remove", "list"})
	// create has no verb here; read is checked before delete.
	if ctx.ActionType != ActionRead {
		t.Errorf("action = %q, want read", ctx.ActionType)
	}
}

func TestAnalyzeConfidence(t *testing.T) {
	a := newTestAnalyzer(t)
	tests := []struct {
		input string
		want  float64
	}{
		// intent + two keywords
		{"Hi, what can you do?", 0.8},
		// general intent, single non-technical keyword
		{"banana", 0.5},
		// command intent + tools + action + keywords, capped
		{"How do I deploy docker on aws?", 1.0},
	}
	for _, tt := range tests {
		got := a.Analyze(tt.input).Confidence
		if math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("Analyze(%q).Confidence = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestAnalyzeCachesAndTruncates(t *testing.T) {
	a := newTestAnalyzer(t)
	first := a.Analyze("What is Kubernetes?")
	second := a.Analyze("  What is Kubernetes?  ")
	if first.Intent != second.Intent || a.CacheLen() != 1 {
		t.Errorf("expected one cached analysis, got %d", a.CacheLen())
	}

	long := strings.Repeat("aws ", 1000)
	analysis := a.Analyze(long)
	if len(analysis.Keywords) != 1 || analysis.Keywords[0] != "aws" {
		t.Errorf("unexpected keywords for long input: %v", analysis.Keywords)
	}
}

func TestAnalyzeWithoutCache(t *testing.T) {
	a, err := New(Options{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	a.Analyze("hello")
	if a.CacheLen() != 0 {
		t.Errorf("expected no cache, got %d entries", a.CacheLen())
	}
}
