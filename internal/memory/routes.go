package memory

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes mounts the session memory API routes.
func RegisterRoutes(r chi.Router, store *Store) {
	r.Get("/api/sessions/{id}/context", handleContext(store))
	r.Post("/api/sessions/{id}/feedback", handleFeedback(store))
	r.Get("/api/users/{id}/profile", handleProfile(store))
	r.Put("/api/users/{id}/preferences", handlePreferences(store))
}

func handleContext(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cc, err := store.GetConversationContext(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(cc)
	}
}

type feedbackRequest struct {
	Satisfaction float64 `json:"satisfaction"`
}

func handleFeedback(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req feedbackRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
			return
		}
		if req.Satisfaction < 0 || req.Satisfaction > 1 {
			http.Error(w, `{"error":"satisfaction must be between 0 and 1"}`, http.StatusBadRequest)
			return
		}

		err := store.RecordSatisfaction(r.Context(), chi.URLParam(r, "id"), req.Satisfaction)
		if errors.Is(err, ErrNoTurns) {
			http.Error(w, `{"error":"session has no turns"}`, http.StatusNotFound)
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": "recorded"})
	}
}

func handleProfile(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := store.GetProfile(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(p)
	}
}

func handlePreferences(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := chi.URLParam(r, "id")
		var prefs map[string]string
		if err := json.NewDecoder(r.Body).Decode(&prefs); err != nil {
			http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
			return
		}
		if len(prefs) == 0 {
			http.Error(w, `{"error":"at least one preference is required"}`, http.StatusBadRequest)
			return
		}

		for k, v := range prefs {
			if err := store.UpdatePreference(r.Context(), userID, k, v); err != nil {
				writeError(w, http.StatusInternalServerError, err.Error())
				return
			}
		}

		all, err := store.GetPreferences(r.Context(), userID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(all)
	}
}

// writeError writes a JSON error body; msg may carry driver text with quotes.
func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
