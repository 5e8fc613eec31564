package knowledge

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/ziadkadry99/infrachat/internal/analyzer"
)

// DefaultMaxProviders is the number of providers queried per request.
const DefaultMaxProviders = 3

// Stats are running per-provider counters.
type Stats struct {
	Queries        int     `json:"queries"`
	Successes      int     `json:"successes"`
	MeanConfidence float64 `json:"mean_confidence"`
}

// Candidate is an eligible provider with its confidence for a query.
type Candidate struct {
	Provider   Provider
	Confidence float64
}

// Broker routes queries to registered providers.
type Broker struct {
	mu        sync.Mutex
	providers []Provider
	stats     map[string]*Stats
	log       logrus.FieldLogger
}

// NewBroker creates an empty broker.
func NewBroker(log logrus.FieldLogger) *Broker {
	return &Broker{stats: make(map[string]*Stats), log: log}
}

// Register adds a provider. Names must be unique.
func (b *Broker) Register(p Provider) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, existing := range b.providers {
		if existing.Name() == p.Name() {
			return fmt.Errorf("provider %q already registered", p.Name())
		}
	}
	b.providers = append(b.providers, p)
	b.stats[p.Name()] = &Stats{}
	return nil
}

// Providers returns the registered providers in registration order.
func (b *Broker) Providers() []Provider {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Provider(nil), b.providers...)
}

// Select returns the eligible providers for a query, most confident first.
// Equal confidences keep registration order.
func (b *Broker) Select(a analyzer.Analysis) []Candidate {
	var candidates []Candidate
	for _, p := range b.Providers() {
		conf, ok := b.canHandle(p, a)
		if ok && conf >= p.Capability().Threshold {
			candidates = append(candidates, Candidate{Provider: p, Confidence: conf})
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Confidence > candidates[j].Confidence
	})
	return candidates
}

// SelectTool returns the most confident eligible provider that executes tools.
func (b *Broker) SelectTool(a analyzer.Analysis) (Provider, bool) {
	for _, c := range b.Select(a) {
		if _, ok := c.Provider.(ToolExecutor); ok && c.Provider.Capability().ToolExecution {
			return c.Provider, true
		}
	}
	return nil, false
}

// GetCombinedKnowledge queries the top limit eligible providers. A provider
// that fails or panics yields a failed response with confidence 0.
func (b *Broker) GetCombinedKnowledge(ctx context.Context, a analyzer.Analysis, limit int) []Response {
	if limit <= 0 {
		limit = DefaultMaxProviders
	}
	candidates := b.Select(a)
	if len(candidates) > limit {
		candidates = candidates[:limit]
	}

	responses := make([]Response, 0, len(candidates))
	for _, c := range candidates {
		resp := b.call(c.Provider.Name(), func() (Response, error) {
			return c.Provider.GetKnowledge(ctx, a)
		})
		responses = append(responses, resp)
	}
	return responses
}

// ExecuteTool runs a tool on the named provider.
func (b *Broker) ExecuteTool(ctx context.Context, providerName string, req ToolRequest) (Response, error) {
	var target Provider
	for _, p := range b.Providers() {
		if p.Name() == providerName {
			target = p
			break
		}
	}
	if target == nil {
		return Response{}, fmt.Errorf("provider %q not registered", providerName)
	}
	exec, ok := target.(ToolExecutor)
	if !ok || !target.Capability().ToolExecution {
		return Response{}, fmt.Errorf("provider %q does not execute tools", providerName)
	}

	return b.call(providerName, func() (Response, error) {
		return exec.ExecuteTool(ctx, req)
	}), nil
}

// call runs fn with panic isolation and records stats.
func (b *Broker) call(name string, fn func() (Response, error)) (resp Response) {
	defer func() {
		if r := recover(); r != nil {
			b.log.WithFields(logrus.Fields{"provider": name, "panic": r}).Error("knowledge provider panicked")
			resp = failed(name, fmt.Sprintf("provider panicked: %v", r))
		}
		b.record(name, resp)
	}()

	resp, err := fn()
	if err != nil {
		b.log.WithFields(logrus.Fields{"provider": name, "error": err}).Warn("knowledge provider failed")
		return failed(name, err.Error())
	}
	if resp.Source == "" {
		resp.Source = name
	}
	return resp
}

// canHandle reports ok=false when the provider panics; such a provider is
// never eligible, whatever its threshold.
func (b *Broker) canHandle(p Provider, a analyzer.Analysis) (conf float64, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			b.log.WithFields(logrus.Fields{"provider": p.Name(), "panic": r}).Error("knowledge provider panicked in CanHandle")
			conf, ok = 0, false
		}
	}()
	return p.CanHandle(a), true
}

func (b *Broker) record(name string, resp Response) {
	b.mu.Lock()
	defer b.mu.Unlock()
	s, ok := b.stats[name]
	if !ok {
		s = &Stats{}
		b.stats[name] = s
	}
	s.Queries++
	if resp.Success {
		s.Successes++
	}
	s.MeanConfidence += (resp.Confidence - s.MeanConfidence) / float64(s.Queries)
}

// Stats returns a copy of the per-provider statistics.
func (b *Broker) Stats() map[string]Stats {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make(map[string]Stats, len(b.stats))
	for name, s := range b.stats {
		out[name] = *s
	}
	return out
}

func failed(source, msg string) Response {
	return Response{
		Success:    false,
		Confidence: 0,
		Source:     source,
		Extra:      map[string]any{"error": msg},
	}
}
