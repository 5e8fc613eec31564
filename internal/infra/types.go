package infra

// Pattern is the architectural shape of a requested system.
type Pattern string

const (
	PatternServerless     Pattern = "serverless"
	PatternMicroservices  Pattern = "microservices"
	PatternThreeTier      Pattern = "three-tier"
	PatternEventDriven    Pattern = "event-driven"
	PatternContainerBased Pattern = "container-based"
	PatternMonolithic     Pattern = "monolithic"
	PatternUnknown        Pattern = "unknown"
)

// Patterns lists every pattern in detection order, followed by PatternUnknown.
var Patterns = []Pattern{
	PatternServerless, PatternMicroservices, PatternThreeTier, PatternEventDriven,
	PatternContainerBased, PatternMonolithic, PatternUnknown,
}

// Valid reports whether p is a known pattern.
func (p Pattern) Valid() bool {
	for _, known := range Patterns {
		if p == known {
			return true
		}
	}
	return false
}

// Environment is the deployment target of a plan.
type Environment string

const (
	EnvAWS       Environment = "aws"
	EnvAzure     Environment = "azure"
	EnvGCP       Environment = "gcp"
	EnvOnPremise Environment = "on-premise"
	EnvHybrid    Environment = "hybrid"
	EnvUnknown   Environment = "unknown"
)

// DefaultEnvironment is used when neither the text nor prior context names one.
const DefaultEnvironment = EnvAWS

// Environments lists every environment.
var Environments = []Environment{EnvAWS, EnvAzure, EnvGCP, EnvOnPremise, EnvHybrid, EnvUnknown}

// ParseEnvironment maps a string onto an Environment, returning EnvUnknown
// for anything unrecognized.
func ParseEnvironment(s string) Environment {
	for _, e := range Environments {
		if Environment(s) == e {
			return e
		}
	}
	return EnvUnknown
}

// Priority tags for requirements and questions.
const (
	PriorityHigh   = "high"
	PriorityMedium = "medium"
	PriorityLow    = "low"
)

// Requirement is one component the plan needs. ServiceType is the generic
// type; Service is its name in the plan's environment.
type Requirement struct {
	Component   string `json:"component"`
	ServiceType string `json:"service_type"`
	Service     string `json:"service"`
	Purpose     string `json:"purpose"`
	Priority    string `json:"priority"`
}

// Question is a clarification question asked during requirements collection.
type Question struct {
	ID       string   `json:"id"`
	Text     string   `json:"text"`
	Category string   `json:"category"`
	Required bool     `json:"required"`
	Options  []string `json:"options,omitempty"`
	Default  string   `json:"default,omitempty"`
	Priority string   `json:"priority"`
}

// Plan is a structured infrastructure plan. It is created by Analyze and
// mutated in place by UpdatePlan.
type Plan struct {
	Pattern                   Pattern       `json:"pattern"`
	Environment               Environment   `json:"environment"`
	Requirements              []Requirement `json:"requirements"`
	Questions                 []Question    `json:"questions"`
	CostEstimate              string        `json:"cost_estimate"`
	SecurityRecommendations   []string      `json:"security_recommendations"`
	DeploymentRecommendations []string      `json:"deployment_recommendations"`
	OriginalRequest           string        `json:"original_request"`
}

// Preferences carries prior context into plan analysis.
type Preferences struct {
	PreferredEnvironment Environment
}

// Change describes one field overwritten by UpdatePlan.
type Change struct {
	Field string `json:"field"`
	From  string `json:"from"`
	To    string `json:"to"`
}

// Clone returns a deep copy of the plan.
func (p *Plan) Clone() *Plan {
	c := *p
	c.Requirements = append([]Requirement(nil), p.Requirements...)
	c.Questions = make([]Question, len(p.Questions))
	for i, q := range p.Questions {
		q.Options = append([]string(nil), q.Options...)
		c.Questions[i] = q
	}
	c.SecurityRecommendations = append([]string(nil), p.SecurityRecommendations...)
	c.DeploymentRecommendations = append([]string(nil), p.DeploymentRecommendations...)
	return &c
}
