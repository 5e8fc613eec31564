package analyzer

// intentRule pairs an intent with the phrases that signal it.
type intentRule struct {
	intent  Intent
	phrases []string
}

// intentRules is checked in order; the first intent with a matching phrase
// wins. capability_inquiry must stay ahead of greeting so "hi, what can you
// do?" is not read as a plain greeting.
var intentRules = []intentRule{
	{IntentCapabilityInquiry, []string{
		"what can you do", "what do you do", "what are your capabilities", "your capabilities",
		"what can you help", "how can you help", "what are you capable", "what do you support",
	}},
	{IntentHelpRequest, []string{
		"help me", "i need help", "can you help", "could you help", "assist me", "need assistance",
	}},
	{IntentTroubleshooting, []string{
		"not working", "doesn't work", "does not work", "error", "failed", "failing", "broken",
		"issue", "problem", "crash", "debug", "troubleshoot", "stuck",
	}},
	{IntentInformationRequest, []string{
		"what is", "what are", "what's the difference", "difference between", "explain",
		"tell me about", "describe", "why ",
	}},
	{IntentCommandRequest, []string{
		"how do i", "how to", "how can i", "install", "configure", "set up", "setup",
		"create", "deploy", "provision", "build",
	}},
	{IntentSocial, []string{
		"thank", "appreciate", "great job", "awesome", "goodbye", "bye", "see you",
	}},
	{IntentClarification, []string{
		"what do you mean", "can you clarify", "i don't understand", "i do not understand",
		"clarify", "elaborate", "more detail",
	}},
	{IntentConversation, []string{
		"how are you", "how's it going", "how is it going", "what's up", "nice to meet",
	}},
	{IntentGreeting, []string{
		"hello", "hi", "hey", "good morning", "good afternoon", "good evening", "greetings",
	}},
	{IntentPersonal, []string{
		"who are you", "your name", "are you a bot", "are you human", "who made you",
	}},
}

// complexityRules is checked in order beginner, intermediate, advanced.
var complexityRules = []struct {
	level      Complexity
	indicators []string
}{
	{ComplexityBeginner, []string{
		"what is", "how do i", "beginner", "new to", "basic", "simple", "getting started",
		"introduction", "explain",
	}},
	{ComplexityIntermediate, []string{
		"configure", "set up", "setup", "deploy", "integrate", "best practice", "optimize",
		"automate",
	}},
	{ComplexityAdvanced, []string{
		"architecture", "scalability", "high availability", "multi-region", "disaster recovery",
		"performance tuning", "security hardening", "microservices", "multi-cloud", "zero downtime",
	}},
}

// technologyCategory maps a technical domain to its vocabulary.
type technologyCategory struct {
	domain string
	terms  []string
}

// technologyTable is ordered; technical_domains are reported in this order.
var technologyTable = []technologyCategory{
	{"cloud", []string{"aws", "azure", "gcp", "cloud", "ec2", "s3", "lambda", "amazon", "google"}},
	{"containers", []string{"docker", "kubernetes", "k8s", "container", "containers", "pod", "pods", "helm", "eks", "aks", "gke", "ecs"}},
	{"iac", []string{"terraform", "ansible", "pulumi", "cloudformation", "iac", "bicep"}},
	{"cicd", []string{"jenkins", "github", "gitlab", "ci", "cd", "pipeline", "pipelines", "argocd"}},
	{"databases", []string{"mysql", "postgres", "postgresql", "mongodb", "redis", "database", "databases", "rds", "dynamodb", "sql"}},
	{"monitoring", []string{"prometheus", "grafana", "monitoring", "logging", "datadog", "metrics", "alerts"}},
	{"networking", []string{"vpc", "dns", "load-balancer", "loadbalancer", "cdn", "network", "networking", "subnet", "firewall"}},
	{"security", []string{"iam", "security", "encryption", "vault", "ssl", "tls", "compliance"}},
}

// actionTable maps CRUD action types to their verbs, in precedence order.
var actionTable = []struct {
	action string
	verbs  []string
}{
	{ActionCreate, []string{"create", "build", "make", "deploy", "provision", "setup", "generate", "add", "launch"}},
	{ActionRead, []string{"show", "list", "get", "view", "describe", "check", "read", "display"}},
	{ActionUpdate, []string{"update", "modify", "change", "edit", "upgrade", "scale", "configure", "switch"}},
	{ActionDelete, []string{"delete", "remove", "destroy", "terminate", "drop", "teardown"}},
}

// capabilityWords survive stop-word removal so capability questions keep
// enough keywords to be matched against the catalog.
var capabilityWords = map[string]bool{
	"can": true, "do": true, "help": true, "hi": true, "hello": true, "what": true, "you": true,
}

var stopWords = map[string]bool{
	"a": true, "an": true, "the": true, "is": true, "are": true, "was": true, "were": true,
	"be": true, "been": true, "being": true, "to": true, "of": true, "and": true, "or": true,
	"but": true, "in": true, "on": true, "at": true, "for": true, "with": true, "about": true,
	"as": true, "by": true, "from": true, "into": true, "it": true, "its": true, "this": true,
	"that": true, "these": true, "those": true, "i": true, "me": true, "my": true, "we": true,
	"our": true, "you": true, "your": true, "he": true, "she": true, "they": true, "them": true,
	"what": true, "which": true, "who": true, "whom": true, "how": true, "why": true,
	"when": true, "where": true, "can": true, "could": true, "would": true, "should": true,
	"will": true, "shall": true, "do": true, "does": true, "did": true, "have": true,
	"has": true, "had": true, "not": true, "no": true, "so": true, "if": true, "then": true,
	"than": true, "there": true, "here": true, "just": true, "also": true, "very": true,
	"please": true, "hi": true, "hello": true, "help": true, "want": true, "need": true,
	"some": true, "any": true, "all": true, "am": true, "up": true, "let": true, "us": true,
}

// technicalTerms is the union of all technology table vocabularies.
var technicalTerms = func() map[string]bool {
	terms := make(map[string]bool)
	for _, cat := range technologyTable {
		for _, term := range cat.terms {
			terms[term] = true
		}
	}
	return terms
}()

// IsTechnicalTerm reports whether word is in the fixed technology vocabulary.
func IsTechnicalTerm(word string) bool {
	return technicalTerms[word]
}
