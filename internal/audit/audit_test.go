package audit

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ziadkadry99/infrachat/internal/db"
)

func setupStore(t *testing.T) *Store {
	t.Helper()
	database, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return NewStore(database)
}

func TestLogAndGetByID(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	entry := Entry{
		ID:            "test-1",
		SessionID:     "s1",
		ActorID:       "alice",
		Action:        ActionPlanUpdated,
		Subject:       "database",
		Summary:       "database: rds -> dynamodb",
		Success:       true,
		PreviousValue: "rds",
		NewValue:      "dynamodb",
	}

	if err := store.Log(ctx, entry); err != nil {
		t.Fatalf("Log: %v", err)
	}

	got, err := store.GetByID(ctx, "test-1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}

	if got.SessionID != "s1" {
		t.Errorf("SessionID = %q, want %q", got.SessionID, "s1")
	}
	if got.ActorID != "alice" {
		t.Errorf("ActorID = %q, want %q", got.ActorID, "alice")
	}
	if got.Action != ActionPlanUpdated {
		t.Errorf("Action = %q, want %q", got.Action, ActionPlanUpdated)
	}
	if got.Subject != "database" {
		t.Errorf("Subject = %q, want %q", got.Subject, "database")
	}
	if !got.Success {
		t.Error("Success = false, want true")
	}
	if got.PreviousValue != "rds" || got.NewValue != "dynamodb" {
		t.Errorf("values = %q -> %q", got.PreviousValue, got.NewValue)
	}
	if got.Timestamp.IsZero() {
		t.Error("Timestamp should be set")
	}
}

func TestLogGeneratesUUID(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	if err := store.Log(ctx, Entry{Action: ActionCodeGenerated, Summary: "terraform for aws"}); err != nil {
		t.Fatalf("Log: %v", err)
	}

	entries, err := store.Query(ctx, QueryFilter{})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	if entries[0].ID == "" {
		t.Error("expected generated ID")
	}
}

func TestLogRequiresAction(t *testing.T) {
	store := setupStore(t)
	if err := store.Log(context.Background(), Entry{Summary: "no action"}); err == nil {
		t.Error("expected error for missing action")
	}
}

func TestGetByIDNotFound(t *testing.T) {
	store := setupStore(t)
	_, err := store.GetByID(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestQueryFilter(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	seed := []Entry{
		{ID: "a1", SessionID: "s1", ActorID: "alice", Action: ActionPlanCreated, Subject: "aws", Success: true},
		{ID: "a2", SessionID: "s1", ActorID: "alice", Action: ActionPlanUpdated, Subject: "database", Success: true},
		{ID: "a3", SessionID: "s2", ActorID: "bob", Action: ActionToolExecuted, Subject: "terraform", Success: false},
		{ID: "a4", SessionID: "s2", Action: ActionCodeGenerated, Subject: "aws", Success: true},
	}
	for _, e := range seed {
		if err := store.Log(ctx, e); err != nil {
			t.Fatalf("Log %s: %v", e.ID, err)
		}
	}

	tests := []struct {
		name   string
		filter QueryFilter
		want   int
	}{
		{"all", QueryFilter{}, 4},
		{"by session", QueryFilter{SessionID: "s1"}, 2},
		{"by actor", QueryFilter{ActorID: "bob"}, 1},
		{"by action", QueryFilter{Action: ActionPlanUpdated}, 1},
		{"by subject", QueryFilter{Subject: "aws"}, 2},
		{"combined", QueryFilter{SessionID: "s2", Subject: "aws"}, 1},
		{"limit", QueryFilter{Limit: 3}, 3},
		{"offset", QueryFilter{Limit: 3, Offset: 2}, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entries, err := store.Query(ctx, tt.filter)
			if err != nil {
				t.Fatalf("Query: %v", err)
			}
			if len(entries) != tt.want {
				t.Errorf("got %d entries, want %d", len(entries), tt.want)
			}
		})
	}
}

func TestQueryTimeRangeNewestFirst(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	for i, id := range []string{"old", "mid", "new"} {
		if err := store.Log(ctx, Entry{
			ID:        id,
			Action:    ActionPlanUpdated,
			Timestamp: base.Add(time.Duration(i) * time.Hour),
		}); err != nil {
			t.Fatalf("Log: %v", err)
		}
	}

	since := base.Add(30 * time.Minute)
	entries, err := store.Query(ctx, QueryFilter{Since: &since})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	if entries[0].ID != "new" || entries[1].ID != "mid" {
		t.Errorf("order = %s, %s; want new, mid", entries[0].ID, entries[1].ID)
	}

	until := base.Add(30 * time.Minute)
	entries, err = store.Query(ctx, QueryFilter{Until: &until})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(entries) != 1 || entries[0].ID != "old" {
		t.Errorf("until query = %+v", entries)
	}
}

func TestDeleteBefore(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	store.Log(ctx, Entry{ID: "stale", Action: ActionPlanCreated, Timestamp: now.Add(-48 * time.Hour)})
	store.Log(ctx, Entry{ID: "fresh", Action: ActionPlanCreated, Timestamp: now})

	n, err := store.DeleteBefore(ctx, now.Add(-24*time.Hour))
	if err != nil {
		t.Fatalf("DeleteBefore: %v", err)
	}
	if n != 1 {
		t.Errorf("deleted %d, want 1", n)
	}

	if _, err := store.GetByID(ctx, "stale"); !errors.Is(err, ErrNotFound) {
		t.Errorf("stale entry still present: %v", err)
	}
	if _, err := store.GetByID(ctx, "fresh"); err != nil {
		t.Errorf("fresh entry missing: %v", err)
	}
}

func setupRouter(t *testing.T) (chi.Router, *Store) {
	t.Helper()
	store := setupStore(t)
	r := chi.NewRouter()
	RegisterRoutes(r, store)
	return r, store
}

func TestHTTPQuery(t *testing.T) {
	r, store := setupRouter(t)
	ctx := context.Background()

	store.Log(ctx, Entry{ID: "h1", SessionID: "s1", Action: ActionPlanCreated})
	store.Log(ctx, Entry{ID: "h2", SessionID: "s2", Action: ActionToolExecuted})

	req := httptest.NewRequest(http.MethodGet, "/api/audit/?session_id=s2", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}

	var entries []Entry
	if err := json.NewDecoder(w.Body).Decode(&entries); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(entries) != 1 || entries[0].ID != "h2" {
		t.Errorf("entries = %+v", entries)
	}
}

func TestHTTPQueryEmpty(t *testing.T) {
	r, _ := setupRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/audit/", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var entries []Entry
	if err := json.NewDecoder(w.Body).Decode(&entries); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if entries == nil || len(entries) != 0 {
		t.Errorf("entries = %v, want empty array", entries)
	}
}

func TestHTTPGetByID(t *testing.T) {
	r, store := setupRouter(t)
	store.Log(context.Background(), Entry{ID: "g1", Action: ActionCodeGenerated, Subject: "aws"})

	tests := []struct {
		name string
		path string
		want int
	}{
		{"found", "/api/audit/g1", http.StatusOK},
		{"missing", "/api/audit/nope", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			if w.Code != tt.want {
				t.Errorf("status = %d, want %d", w.Code, tt.want)
			}
		})
	}
}

func TestHTTPErrorBodyIsJSON(t *testing.T) {
	database, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	r := chi.NewRouter()
	RegisterRoutes(r, NewStore(database))
	database.Close()

	req := httptest.NewRequest(http.MethodGet, "/api/audit/", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
	var body map[string]string
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("error body is not JSON: %v", err)
	}
	if body["error"] == "" {
		t.Error("expected an error message")
	}
}

func TestWriteErrorEscapesQuotes(t *testing.T) {
	w := httptest.NewRecorder()
	writeError(w, http.StatusBadRequest, `near "FROM": syntax error`)

	var body map[string]string
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["error"] != `near "FROM": syntax error` {
		t.Errorf("error = %q", body["error"])
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}
}
