package orchestrator

import (
	"time"

	"github.com/ziadkadry99/infrachat/internal/analyzer"
	"github.com/ziadkadry99/infrachat/internal/memory"
	"github.com/ziadkadry99/infrachat/internal/patterns"
	"github.com/ziadkadry99/infrachat/internal/requirements"
)

// Response is the structured reply to one utterance.
type Response struct {
	Success        bool      `json:"success"`
	ResponseText   string    `json:"response_text"`
	Confidence     float64   `json:"confidence"`
	Intent         string    `json:"intent"`
	Complexity     string    `json:"complexity"`
	Sources        []string  `json:"sources"`
	ContextUsed    bool      `json:"context_used"`
	PluginsUsed    []string  `json:"plugins_used"`
	Suggestions    []string  `json:"suggestions"`
	ResponseTimeMS int64     `json:"response_time_ms"`
	Timestamp      time.Time `json:"timestamp"`
	SessionID      string    `json:"session_id"`
	Route          string    `json:"route,omitempty"`
}

// Route names in precedence order.
const (
	RouteCasual                 = "casual"
	RouteInfrastructureCreation = "infrastructure_creation"
	RouteRequirements           = "requirements"
	RouteProceed                = "proceed"
	RouteCodeGeneration         = "code_generation"
	RouteCommandExecution       = "command_execution"
	RouteKnowledge              = "knowledge"
)

// turn is the per-utterance state shared by route predicates and handlers.
type turn struct {
	text      string
	words     []string
	sessionID string
	userID    string
	analysis  analyzer.Analysis
	convo     *memory.ConversationContext
	// req is the stored requirements session, if any; it may be complete.
	req *requirements.Session
}

func (t *turn) hasHistory() bool { return len(t.convo.History) > 0 }

func (t *turn) collecting() bool {
	return t.req != nil && t.req.Plan != nil && !t.req.Completed
}

func (t *turn) hasPlan() bool { return t.req != nil && t.req.Plan != nil }

// outcome is what a handler produced.
type outcome struct {
	text        string
	confidence  float64
	success     bool
	plugins     []string
	suggestions []string
	pattern     *patterns.Match
}
