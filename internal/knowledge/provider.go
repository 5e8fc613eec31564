// Package knowledge selects, ranks and queries pluggable knowledge providers.
package knowledge

import (
	"context"

	"github.com/ziadkadry99/infrachat/internal/analyzer"
	"github.com/ziadkadry99/infrachat/internal/infra"
)

// Capability describes what a provider handles. A provider is eligible for a
// query when its CanHandle confidence reaches Threshold.
type Capability struct {
	Name          string   `json:"name"`
	Keywords      []string `json:"keywords"`
	Threshold     float64  `json:"threshold"`
	ToolExecution bool     `json:"tool_execution"`
}

// Response is one provider's answer.
type Response struct {
	Success    bool           `json:"success"`
	Content    string         `json:"content"`
	Confidence float64        `json:"confidence"`
	Source     string         `json:"source"`
	Extra      map[string]any `json:"extra,omitempty"`
}

// Provider is a pluggable source of domain knowledge.
type Provider interface {
	Name() string
	Capability() Capability
	// CanHandle returns the provider's confidence in [0,1] for the query.
	CanHandle(a analyzer.Analysis) float64
	GetKnowledge(ctx context.Context, a analyzer.Analysis) (Response, error)
}

// ToolRequest asks a tool-executing provider to run one tool.
type ToolRequest struct {
	Tool  string
	Query string
	Plan  *infra.Plan
	Args  []string
	// Write persists generated artifacts where the provider supports it.
	Write bool
}

// ToolExecutor is implemented by providers that can run tools.
type ToolExecutor interface {
	Tools() []string
	ExecuteTool(ctx context.Context, req ToolRequest) (Response, error)
}

// KeywordConfidence scores a query against a keyword list: 0 without a hit,
// 0.5 for one hit and 0.15 more per extra hit, capped at 1.
func KeywordConfidence(keywords []string, a analyzer.Analysis) float64 {
	hits := 0
	for _, k := range keywords {
		if a.HasKeyword(k) {
			hits++
		}
	}
	if hits == 0 {
		return 0
	}
	return min(1.0, 0.5+0.15*float64(hits-1))
}
