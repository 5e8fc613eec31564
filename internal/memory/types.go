package memory

import "time"

// Defaults for history and profile windows.
const (
	DefaultMaxTurns        = 10
	maxTopics              = 20
	maxSatisfactionHistory = 10
	recentWindow           = 3
)

// Turn is one stored query/response exchange. Turns are immutable once
// appended except for the satisfaction score recorded by feedback.
type Turn struct {
	ID              string    `json:"id"`
	SessionID       string    `json:"session_id"`
	UserID          string    `json:"user_id,omitempty"`
	Timestamp       time.Time `json:"timestamp"`
	Query           string    `json:"query"`
	Response        string    `json:"response"`
	Intent          string    `json:"intent"`
	Confidence      float64   `json:"confidence"`
	Success         bool      `json:"success"`
	TechnologyFocus string    `json:"technology_focus,omitempty"`
	Satisfaction    *float64  `json:"satisfaction,omitempty"`
}

// Interaction is the input to AddInteraction.
type Interaction struct {
	SessionID       string
	UserID          string
	Query           string
	Response        string
	Intent          string
	Confidence      float64
	Success         bool
	TechnologyFocus string
	// Complexity, when set, becomes the profile's expertise level.
	Complexity string
}

// Profile is the per-user state derived from conversation turns.
type Profile struct {
	UserID                string    `json:"user_id"`
	PreferredTechnologies []string  `json:"preferred_technologies"`
	ExpertiseLevel        string    `json:"expertise_level"`
	InteractionStyle      string    `json:"interaction_style"`
	Topics                []string  `json:"topics"`
	LastActive            time.Time `json:"last_active"`
	TotalInteractions     int       `json:"total_interactions"`
	SatisfactionHistory   []float64 `json:"satisfaction_history"`
}

func newProfile(userID string) *Profile {
	return &Profile{
		UserID:                userID,
		PreferredTechnologies: []string{},
		ExpertiseLevel:        "beginner",
		InteractionStyle:      "conversational",
		Topics:                []string{},
		SatisfactionHistory:   []float64{},
	}
}

// ConversationContext is everything known about a session.
type ConversationContext struct {
	SessionID         string            `json:"session_id"`
	UserID            string            `json:"user_id,omitempty"`
	History           []Turn            `json:"history"`
	Profile           *Profile          `json:"profile"`
	Preferences       map[string]string `json:"preferences"`
	CurrentTopic      string            `json:"current_topic,omitempty"`
	ContextConfidence float64           `json:"context_confidence"`
}

// RelevantContext holds the earlier turns related to a new query.
type RelevantContext struct {
	RelatedTurns []Turn   `json:"related_turns"`
	CurrentTopic string   `json:"current_topic,omitempty"`
	Profile      *Profile `json:"profile"`
}

// CleanupReport summarizes CleanupOldData.
type CleanupReport struct {
	TurnsDeleted    int64 `json:"turns_deleted"`
	SessionsDeleted int64 `json:"sessions_deleted"`
	ProfilesDeleted int64 `json:"profiles_deleted"`
}
