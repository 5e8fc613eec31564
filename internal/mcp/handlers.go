package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/sirupsen/logrus"

	"github.com/ziadkadry99/infrachat/internal/infra"
	"github.com/ziadkadry99/infrachat/internal/memory"
	"github.com/ziadkadry99/infrachat/internal/orchestrator"
	"github.com/ziadkadry99/infrachat/internal/requirements"
)

// handleProcessQuery runs one utterance through the engine. A failed
// pipeline still produces a normal tool result: the safe response carries
// its own rephrasing suggestions.
func (s *Server) handleProcessQuery(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := request.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: query"), nil
	}

	resp := s.engine.ProcessQuery(ctx, query,
		request.GetString("session_id", ""),
		request.GetString("user_id", ""))

	return mcp.NewToolResultText(formatResponse(resp)), nil
}

// handleAnalyzeInfrastructure analyzes a request into a plan without touching
// any session state.
func (s *Server) handleAnalyzeInfrastructure(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := request.RequireString("request")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: request"), nil
	}

	prefs := infra.Preferences{PreferredEnvironment: infra.ParseEnvironment(request.GetString("environment", ""))}
	plan := s.engine.PlanAnalyzer().Analyze(text, prefs)

	switch format := request.GetString("format", "summary"); format {
	case "summary":
		return mcp.NewToolResultText(infra.Summary(plan)), nil
	case "json":
		return jsonResult(plan)
	case "terraform":
		hcl, err := infra.RenderTerraform(plan)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("rendering terraform failed: %v", err)), nil
		}
		return mcp.NewToolResultText(hcl), nil
	default:
		return mcp.NewToolResultError(fmt.Sprintf("unknown format %q", format)), nil
	}
}

// handleGetRequirementsStatus returns the collection status as JSON.
func (s *Server) handleGetRequirementsStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: session_id"), nil
	}

	status, err := s.collector.Status(ctx, sessionID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("loading requirements failed: %v", err)), nil
	}
	return jsonResult(status)
}

// handleAnswerRequirement answers a numbered question, or the current one
// when no number is given.
func (s *Server) handleAnswerRequirement(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: session_id"), nil
	}
	answer, err := request.RequireString("answer")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: answer"), nil
	}

	var res requirements.Result
	if n := request.GetInt("question_number", 0); n > 0 {
		res, err = s.collector.Answer(ctx, sessionID, n, answer)
	} else {
		res, err = s.collector.AnswerCurrent(ctx, sessionID, answer)
	}
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("recording answer failed: %v", err)), nil
	}
	if !res.Success {
		msg := res.Error
		if res.Suggestion != "" {
			msg += "\n" + res.Suggestion
		}
		return mcp.NewToolResultError(msg), nil
	}
	return mcp.NewToolResultText(res.Message), nil
}

// handleGetConversationContext returns the session's stored context as JSON.
func (s *Server) handleGetConversationContext(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: session_id"), nil
	}

	cc, err := s.memory.GetConversationContext(ctx, sessionID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("loading context failed: %v", err)), nil
	}
	if len(cc.History) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("No conversation history for session %q.", sessionID)), nil
	}
	return jsonResult(cc)
}

func (s *Server) handleSetPreference(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	userID, err := request.RequireString("user_id")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: user_id"), nil
	}
	key, err := request.RequireString("key")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: key"), nil
	}
	value, err := request.RequireString("value")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: value"), nil
	}

	if err := s.memory.UpdatePreference(ctx, userID, key, value); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("saving preference failed: %v", err)), nil
	}
	s.log.WithFields(logrus.Fields{"user_id": userID, "key": key}).Debug("preference set via mcp")
	return mcp.NewToolResultText(fmt.Sprintf("Saved %s = %q for %s.", key, value, userID)), nil
}

func (s *Server) handleRecordFeedback(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: session_id"), nil
	}
	score, err := request.RequireFloat("score")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: score"), nil
	}

	if err := s.memory.RecordSatisfaction(ctx, sessionID, score); err != nil {
		if errors.Is(err, memory.ErrNoTurns) {
			return mcp.NewToolResultError(fmt.Sprintf("session %q has no answers to rate yet", sessionID)), nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("recording feedback failed: %v", err)), nil
	}
	return mcp.NewToolResultText("Feedback recorded."), nil
}

// formatResponse renders an engine response as text for an AI client: the
// reply first, then the metadata it needs to continue the session.
func formatResponse(resp orchestrator.Response) string {
	var sb strings.Builder
	sb.WriteString(resp.ResponseText)
	sb.WriteString("\n\n---\n")
	sb.WriteString(fmt.Sprintf("Session: %s\n", resp.SessionID))
	sb.WriteString(fmt.Sprintf("Success: %t\n", resp.Success))
	sb.WriteString(fmt.Sprintf("Intent: %s (confidence %.2f)\n", resp.Intent, resp.Confidence))
	if len(resp.Sources) > 0 {
		sb.WriteString(fmt.Sprintf("Sources: %s\n", strings.Join(resp.Sources, ", ")))
	}
	if len(resp.Suggestions) > 0 {
		sb.WriteString("Suggestions:\n")
		for _, s := range resp.Suggestions {
			sb.WriteString(fmt.Sprintf("- %s\n", s))
		}
	}
	return sb.String()
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encoding result failed: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
