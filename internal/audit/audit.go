package audit

import (
	"errors"
	"time"
)

// ErrNotFound is returned by GetByID for an unknown entry.
var ErrNotFound = errors.New("audit entry not found")

// Action describes what was done.
type Action string

const (
	ActionPlanCreated           Action = "plan_created"
	ActionPlanUpdated           Action = "plan_updated"
	ActionRequirementsCompleted Action = "requirements_completed"
	ActionCodeGenerated         Action = "code_generated"
	ActionToolExecuted          Action = "tool_executed"
)

// Entry is a single audit trail record. Entries are append-only.
type Entry struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	SessionID string    `json:"session_id"`
	// ActorID is the user id, empty for anonymous sessions.
	ActorID string `json:"actor_id,omitempty"`
	Action  Action `json:"action"`
	// Subject is what the action applied to: a plan field, a provider or a
	// tool name.
	Subject       string `json:"subject,omitempty"`
	Summary       string `json:"summary"`
	Success       bool   `json:"success"`
	PreviousValue string `json:"previous_value,omitempty"`
	NewValue      string `json:"new_value,omitempty"`
}
