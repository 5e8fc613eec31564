package analyzer

// Intent is the coarse purpose of an utterance.
type Intent string

const (
	IntentCapabilityInquiry  Intent = "capability_inquiry"
	IntentHelpRequest        Intent = "help_request"
	IntentTroubleshooting    Intent = "troubleshooting"
	IntentInformationRequest Intent = "information_request"
	IntentCommandRequest     Intent = "command_request"
	IntentSocial             Intent = "social"
	IntentClarification      Intent = "clarification"
	IntentConversation       Intent = "conversation"
	IntentGreeting           Intent = "greeting"
	IntentPersonal           Intent = "personal"
	IntentGeneral            Intent = "general"
)

// Complexity is the assessed expertise level an utterance is pitched at.
type Complexity string

const (
	ComplexityBeginner     Complexity = "beginner"
	ComplexityIntermediate Complexity = "intermediate"
	ComplexityAdvanced     Complexity = "advanced"
)

// Action types derived from CRUD verbs.
const (
	ActionCreate = "create"
	ActionRead   = "read"
	ActionUpdate = "update"
	ActionDelete = "delete"
)

// Context holds the technical context extracted from keywords.
type Context struct {
	TechnicalDomains []string `json:"technical_domains"`
	ToolsMentioned   []string `json:"tools_mentioned"`
	ActionType       string   `json:"action_type,omitempty"`
}

// Analysis is the result of analyzing one utterance. It is created fresh per
// utterance and must not be mutated after creation.
type Analysis struct {
	Keywords   []string   `json:"keywords"`
	Intent     Intent     `json:"intent"`
	Complexity Complexity `json:"complexity"`
	Context    Context    `json:"context"`
	Confidence float64    `json:"confidence"`
}

// HasKeyword reports whether word is among the extracted keywords.
func (a Analysis) HasKeyword(word string) bool {
	for _, k := range a.Keywords {
		if k == word {
			return true
		}
	}
	return false
}
