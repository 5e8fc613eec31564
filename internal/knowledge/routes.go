package knowledge

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
)

type providerInfo struct {
	Capability
	Stats Stats `json:"stats"`
}

// RegisterRoutes mounts the knowledge endpoints.
func RegisterRoutes(r chi.Router, b *Broker) {
	r.Get("/api/knowledge/stats", func(w http.ResponseWriter, r *http.Request) {
		stats := b.Stats()
		var out []providerInfo
		for _, p := range b.Providers() {
			out = append(out, providerInfo{Capability: p.Capability(), Stats: stats[p.Name()]})
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(out)
	})
}
