package requirements

import (
	"time"

	"github.com/ziadkadry99/infrachat/internal/infra"
)

// Answer is one recorded response to a clarification question.
type Answer struct {
	QuestionID string    `json:"question_id"`
	Answer     string    `json:"answer"`
	Category   string    `json:"category"`
	Timestamp  time.Time `json:"timestamp"`
}

// Session is the requirements-collection state for one conversation. Cursor
// is the zero-based index of the question awaiting an answer.
type Session struct {
	SessionID string      `json:"session_id"`
	Plan      *infra.Plan `json:"plan"`
	Answers   []Answer    `json:"answers"`
	Cursor    int         `json:"cursor"`
	Completed bool        `json:"completed"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// Result is the outcome of a state transition. Failures are reported through
// Success, Error and Suggestion rather than Go errors.
type Result struct {
	Success              bool     `json:"success"`
	Message              string   `json:"message"`
	QuestionNumber       int      `json:"question_number,omitempty"`
	TotalQuestions       int      `json:"total_questions"`
	IsComplete           bool     `json:"is_complete"`
	CompletionPercentage float64  `json:"completion_percentage"`
	NextSteps            []string `json:"next_steps,omitempty"`
	Error                string   `json:"error,omitempty"`
	Suggestion           string   `json:"suggestion,omitempty"`
}

// ValidationReport describes the health of a collection without failing.
type ValidationReport struct {
	Valid           bool     `json:"valid"`
	Issues          []string `json:"issues"`
	Warnings        []string `json:"warnings"`
	Recommendations []string `json:"recommendations"`
}

// Status is a snapshot of a session for display.
type Status struct {
	SessionID            string            `json:"session_id"`
	Active               bool              `json:"active"`
	Completed            bool              `json:"completed"`
	CompletionPercentage float64           `json:"completion_percentage"`
	CurrentQuestion      *infra.Question   `json:"current_question,omitempty"`
	QuestionNumber       int               `json:"question_number,omitempty"`
	Answers              map[string]string `json:"answers"`
	Plan                 *infra.Plan       `json:"plan,omitempty"`
	Validation           ValidationReport  `json:"validation"`
}

// defaultAnswer is recorded for questions without a declared default.
const defaultAnswer = "standard"

var completionNextSteps = []string{
	"Say \"generate terraform\" to produce the infrastructure code",
	"Ask to change the pattern, provider, budget or security level at any time",
	"Say \"plan\" to run a Terraform plan against the generated code",
}
