package dashboard

import (
	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/ziadkadry99/infrachat/internal/knowledge"
	"github.com/ziadkadry99/infrachat/internal/memory"
	"github.com/ziadkadry99/infrachat/internal/orchestrator"
	"github.com/ziadkadry99/infrachat/internal/patterns"
	"github.com/ziadkadry99/infrachat/internal/requirements"
)

// Dashboard provides the browser chat UI and its live WebSocket channel.
type Dashboard struct {
	orchestrator *orchestrator.Orchestrator
	memory       *memory.Store
	patterns     *patterns.Store
	broker       *knowledge.Broker
	collector    *requirements.Collector
	log          logrus.FieldLogger
}

// Deps are the components the dashboard reads from.
type Deps struct {
	Orchestrator *orchestrator.Orchestrator
	Memory       *memory.Store
	Patterns     *patterns.Store
	Broker       *knowledge.Broker
	Requirements *requirements.Collector
	Log          logrus.FieldLogger
}

// New creates a new Dashboard.
func New(d Deps) *Dashboard {
	return &Dashboard{
		orchestrator: d.Orchestrator,
		memory:       d.Memory,
		patterns:     d.Patterns,
		broker:       d.Broker,
		collector:    d.Requirements,
		log:          d.Log,
	}
}

// RegisterRoutes mounts all dashboard routes onto the given router.
func (d *Dashboard) RegisterRoutes(r chi.Router) {
	r.Get("/", d.ServeIndex)
	r.Get("/api/dashboard/stats", d.handleStats)
	r.Get("/api/dashboard/recent", d.handleRecent)
	r.Get("/ws/chat", d.handleWebSocket)
}
