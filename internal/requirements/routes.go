package requirements

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes mounts the requirements collection API routes.
func RegisterRoutes(r chi.Router, c *Collector) {
	r.Route("/api/sessions/{id}/requirements", func(r chi.Router) {
		r.Get("/", handleStatus(c))
		r.Post("/answer", handleAnswer(c))
		r.Post("/defaults", handleDefaults(c))
	})
}

func handleStatus(c *Collector) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status, err := c.Status(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(status)
	}
}

type answerRequest struct {
	QuestionNumber int    `json:"question_number"`
	Answer         string `json:"answer"`
}

func handleAnswer(c *Collector) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req answerRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
			return
		}

		res, err := c.Answer(r.Context(), chi.URLParam(r, "id"), req.QuestionNumber, req.Answer)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeResult(w, res)
	}
}

func handleDefaults(c *Collector) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := c.ProceedWithDefaults(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeResult(w, res)
	}
}

// writeResult reports state errors as 422 with the structured result body.
func writeResult(w http.ResponseWriter, res Result) {
	w.Header().Set("Content-Type", "application/json")
	if !res.Success {
		w.WriteHeader(http.StatusUnprocessableEntity)
	}
	json.NewEncoder(w).Encode(res)
}

// writeError writes a JSON error body; msg may carry driver text with quotes.
func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
