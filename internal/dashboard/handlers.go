package dashboard

import (
	"encoding/json"
	"net/http"

	"github.com/ziadkadry99/infrachat/internal/knowledge"
	"github.com/ziadkadry99/infrachat/internal/memory"
)

// statsResponse is the JSON response for the stats endpoint.
type statsResponse struct {
	TotalSessions int                        `json:"total_sessions"`
	TotalPatterns int                        `json:"total_patterns"`
	Providers     map[string]knowledge.Stats `json:"providers"`
}

// recentResponse is the JSON response for the recent activity endpoint.
type recentResponse struct {
	Turns []memory.Turn `json:"turns"`
}

const recentLimit = 10

func (d *Dashboard) handleStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	sessions, err := d.memory.CountSessions(ctx)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	total, err := d.patterns.Count(ctx)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	providers := map[string]knowledge.Stats{}
	if d.broker != nil {
		providers = d.broker.Stats()
	}

	writeJSON(w, http.StatusOK, statsResponse{
		TotalSessions: sessions,
		TotalPatterns: total,
		Providers:     providers,
	})
}

func (d *Dashboard) handleRecent(w http.ResponseWriter, r *http.Request) {
	turns, err := d.memory.Recent(r.Context(), recentLimit)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, recentResponse{Turns: turns})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
