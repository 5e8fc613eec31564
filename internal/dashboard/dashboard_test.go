package dashboard

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/ziadkadry99/infrachat/internal/analyzer"
	"github.com/ziadkadry99/infrachat/internal/db"
	"github.com/ziadkadry99/infrachat/internal/infra"
	"github.com/ziadkadry99/infrachat/internal/knowledge"
	"github.com/ziadkadry99/infrachat/internal/logging"
	"github.com/ziadkadry99/infrachat/internal/memory"
	"github.com/ziadkadry99/infrachat/internal/orchestrator"
	"github.com/ziadkadry99/infrachat/internal/patterns"
	"github.com/ziadkadry99/infrachat/internal/progress"
	"github.com/ziadkadry99/infrachat/internal/requirements"
)

func setupTest(t *testing.T) (*Dashboard, *memory.Store) {
	t.Helper()

	database, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("opening test db: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	ps := patterns.NewStore(database)
	if _, err := patterns.Seed(context.Background(), ps, progress.Nop{}); err != nil {
		t.Fatalf("seeding patterns: %v", err)
	}
	qa, err := analyzer.New(analyzer.Options{CacheSize: 16})
	if err != nil {
		t.Fatal(err)
	}
	broker := knowledge.NewBroker(logging.Discard())
	if err := broker.Register(knowledge.NewInfrastructureProvider()); err != nil {
		t.Fatal(err)
	}

	mem := memory.NewStore(database, memory.DefaultMaxTurns)
	collector := requirements.NewCollector(requirements.NewStore(database), logging.Discard())
	o := orchestrator.New(orchestrator.Deps{
		Analyzer:     qa,
		Patterns:     ps,
		Memory:       mem,
		Broker:       broker,
		Plans:        infra.NewAnalyzer(infra.EnvAWS),
		Requirements: collector,
		Log:          logging.Discard(),
	})

	d := New(Deps{
		Orchestrator: o,
		Memory:       mem,
		Patterns:     ps,
		Broker:       broker,
		Requirements: collector,
		Log:          logging.Discard(),
	})
	return d, mem
}

func setupRouter(d *Dashboard) chi.Router {
	r := chi.NewRouter()
	d.RegisterRoutes(r)
	return r
}

func dial(t *testing.T, r chi.Router) *websocket.Conn {
	t.Helper()
	server := httptest.NewServer(r)
	t.Cleanup(server.Close)

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws/chat"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("websocket dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func roundTrip(t *testing.T, conn *websocket.Conn, msg chatRequest) chatResponse {
	t.Helper()
	if err := conn.WriteJSON(msg); err != nil {
		t.Fatalf("write: %v", err)
	}
	var resp chatResponse
	if err := conn.ReadJSON(&resp); err != nil {
		t.Fatalf("read: %v", err)
	}
	return resp
}

func TestStatsEndpoint(t *testing.T) {
	d, mem := setupTest(t)
	r := setupRouter(d)
	ctx := t.Context()

	mem.AddInteraction(ctx, memory.Interaction{SessionID: "s1", Query: "hello"})
	mem.AddInteraction(ctx, memory.Interaction{SessionID: "s2", Query: "hi"})

	req := httptest.NewRequest(http.MethodGet, "/api/dashboard/stats", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var stats statsResponse
	if err := json.NewDecoder(w.Body).Decode(&stats); err != nil {
		t.Fatalf("decoding stats: %v", err)
	}

	if stats.TotalSessions != 2 {
		t.Errorf("expected 2 sessions, got %d", stats.TotalSessions)
	}
	if stats.TotalPatterns != len(patterns.Catalog) {
		t.Errorf("expected %d patterns, got %d", len(patterns.Catalog), stats.TotalPatterns)
	}
}

func TestRecentEndpointLimits(t *testing.T) {
	d, mem := setupTest(t)
	r := setupRouter(d)
	ctx := t.Context()

	for i := 0; i < 15; i++ {
		mem.AddInteraction(ctx, memory.Interaction{SessionID: "s1", Query: "question"})
	}

	req := httptest.NewRequest(http.MethodGet, "/api/dashboard/recent", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var recent recentResponse
	if err := json.NewDecoder(w.Body).Decode(&recent); err != nil {
		t.Fatalf("decoding recent: %v", err)
	}
	if len(recent.Turns) != memory.DefaultMaxTurns {
		t.Errorf("expected %d turns, got %d", memory.DefaultMaxTurns, len(recent.Turns))
	}
}

func TestWebSocketUpgrade(t *testing.T) {
	d, _ := setupTest(t)
	r := setupRouter(d)

	server := httptest.NewServer(r)
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws/chat"
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("websocket dial: %v", err)
	}
	defer conn.Close()

	if resp.StatusCode != http.StatusSwitchingProtocols {
		t.Fatalf("expected 101, got %d", resp.StatusCode)
	}
}

func TestWebSocketMessage(t *testing.T) {
	d, _ := setupTest(t)
	conn := dial(t, setupRouter(d))

	resp := roundTrip(t, conn, chatRequest{Type: "message", Content: "Hello!"})
	if resp.Type != "response" {
		t.Fatalf("expected response type, got %q (%s)", resp.Type, resp.Content)
	}
	if resp.SessionID == "" {
		t.Error("expected a generated session id")
	}
	if resp.Reply == nil || !resp.Reply.Success || resp.Reply.Intent != "greeting" {
		t.Errorf("reply = %+v", resp.Reply)
	}
	if resp.Content != resp.Reply.ResponseText {
		t.Errorf("content %q does not match reply text", resp.Content)
	}

	next := roundTrip(t, conn, chatRequest{Type: "message", SessionID: resp.SessionID, Content: "What is Kubernetes?"})
	if next.SessionID != resp.SessionID {
		t.Errorf("session id changed: %q -> %q", resp.SessionID, next.SessionID)
	}
	if !next.Reply.ContextUsed {
		t.Error("expected the second turn to use conversation context")
	}
}

func TestWebSocketStatus(t *testing.T) {
	d, _ := setupTest(t)
	conn := dial(t, setupRouter(d))

	resp := roundTrip(t, conn, chatRequest{Type: "message", SessionID: "ws-1", Content: "Create a serverless API on AWS"})
	if resp.Type != "response" {
		t.Fatalf("expected response type, got %q", resp.Type)
	}

	status := roundTrip(t, conn, chatRequest{Type: "status", SessionID: "ws-1"})
	if status.Type != "status" || status.Status == nil {
		t.Fatalf("status response = %+v", status)
	}
	if !status.Status.Active || status.Status.QuestionNumber != 1 {
		t.Errorf("status = %+v", status.Status)
	}
}

func TestWebSocketStatusRequiresSession(t *testing.T) {
	d, _ := setupTest(t)
	conn := dial(t, setupRouter(d))

	resp := roundTrip(t, conn, chatRequest{Type: "status"})
	if resp.Type != "error" || !strings.Contains(resp.Content, "session_id is required") {
		t.Errorf("resp = %+v", resp)
	}
}

func TestWebSocketEmptyContent(t *testing.T) {
	d, _ := setupTest(t)
	conn := dial(t, setupRouter(d))

	resp := roundTrip(t, conn, chatRequest{Type: "message", Content: ""})
	if resp.Type != "error" {
		t.Errorf("expected error type, got %q", resp.Type)
	}
	if !strings.Contains(resp.Content, "content is required") {
		t.Errorf("expected content error, got %q", resp.Content)
	}
}

func TestWebSocketUnknownType(t *testing.T) {
	d, _ := setupTest(t)
	conn := dial(t, setupRouter(d))

	resp := roundTrip(t, conn, chatRequest{Type: "unknown", Content: "hello"})
	if resp.Type != "error" {
		t.Errorf("expected error type, got %q", resp.Type)
	}
	if !strings.Contains(resp.Content, "unknown message type") {
		t.Errorf("expected unknown type error, got %q", resp.Content)
	}
}

func TestWebSocketInvalidJSON(t *testing.T) {
	d, _ := setupTest(t)
	conn := dial(t, setupRouter(d))

	if err := conn.WriteMessage(websocket.TextMessage, []byte("{not json")); err != nil {
		t.Fatalf("write: %v", err)
	}
	var resp chatResponse
	if err := conn.ReadJSON(&resp); err != nil {
		t.Fatalf("read: %v", err)
	}
	if resp.Type != "error" || resp.Content != "invalid message format" {
		t.Errorf("resp = %+v", resp)
	}
}

func TestServeIndex(t *testing.T) {
	d, _ := setupTest(t)
	r := setupRouter(d)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.Contains(ct, "text/html") {
		t.Errorf("expected text/html content type, got %q", ct)
	}
	if !strings.Contains(w.Body.String(), "<title>infrachat</title>") {
		t.Error("expected HTML to contain the infrachat title")
	}
}
