package orchestrator

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ziadkadry99/infrachat/internal/infra"
)

// QueryRequest is the body of POST /api/query.
type QueryRequest struct {
	Query     string `json:"query"`
	SessionID string `json:"session_id"`
	UserID    string `json:"user_id"`
}

type analyzePlanRequest struct {
	Text        string `json:"text"`
	Environment string `json:"environment"`
}

// RegisterRoutes mounts the conversation API routes.
func RegisterRoutes(r chi.Router, o *Orchestrator) {
	r.Post("/api/query", handleQuery(o))
	r.Post("/api/plans/analyze", handleAnalyzePlan(o))
	r.Get("/api/routes", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(o.Routes())
	})
}

// handleQuery always answers 200 with a structured response once the body
// decodes; utterance problems are reported inside the response.
func handleQuery(o *Orchestrator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req QueryRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
			return
		}

		resp := o.ProcessQuery(r.Context(), req.Query, req.SessionID, req.UserID)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}
}

// handleAnalyzePlan analyzes a request into a plan without starting a
// collection.
func handleAnalyzePlan(o *Orchestrator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req analyzePlanRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Text == "" {
			http.Error(w, `{"error":"text is required"}`, http.StatusBadRequest)
			return
		}

		prefs := infra.Preferences{PreferredEnvironment: infra.ParseEnvironment(req.Environment)}
		plan := o.PlanAnalyzer().Analyze(req.Text, prefs)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(plan)
	}
}
