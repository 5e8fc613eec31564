package memory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ziadkadry99/infrachat/internal/db"
)

func setupTestStore(t *testing.T, maxTurns int) *Store {
	t.Helper()
	database, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return NewStore(database, maxTurns)
}

func TestAddInteractionRoundTrip(t *testing.T) {
	store := setupTestStore(t, 10)
	ctx := context.Background()

	_, err := store.AddInteraction(ctx, Interaction{
		SessionID: "s1", UserID: "u1",
		Query: "What is Docker?", Response: "Docker packages apps.",
		Intent: "information_request", Confidence: 0.9, Success: true,
		TechnologyFocus: "containers",
	})
	if err != nil {
		t.Fatalf("AddInteraction: %v", err)
	}

	cc, err := store.GetConversationContext(ctx, "s1")
	if err != nil {
		t.Fatalf("GetConversationContext: %v", err)
	}
	if len(cc.History) != 1 {
		t.Fatalf("history len = %d, want 1", len(cc.History))
	}
	got := cc.History[0]
	if got.Query != "What is Docker?" || got.Response != "Docker packages apps." ||
		got.Intent != "information_request" || got.Confidence != 0.9 || !got.Success {
		t.Errorf("round trip mismatch: %+v", got)
	}
	if cc.UserID != "u1" || cc.Profile.UserID != "u1" {
		t.Errorf("profile not keyed by user: %+v", cc.Profile)
	}
}

func TestHistoryTrimmedToMostRecent(t *testing.T) {
	store := setupTestStore(t, 10)
	ctx := context.Background()

	for i := 1; i <= 15; i++ {
		_, err := store.AddInteraction(ctx, Interaction{
			SessionID: "s1", Query: fmt.Sprintf("query %d", i), Intent: "general", Success: true,
		})
		if err != nil {
			t.Fatalf("AddInteraction %d: %v", i, err)
		}
	}

	cc, err := store.GetConversationContext(ctx, "s1")
	if err != nil {
		t.Fatalf("GetConversationContext: %v", err)
	}
	if len(cc.History) != 10 {
		t.Fatalf("history len = %d, want 10", len(cc.History))
	}
	for i, turn := range cc.History {
		want := fmt.Sprintf("query %d", i+6)
		if turn.Query != want {
			t.Errorf("history[%d] = %q, want %q", i, turn.Query, want)
		}
	}
}

func TestProfileUpdates(t *testing.T) {
	store := setupTestStore(t, 10)
	ctx := context.Background()

	store.AddInteraction(ctx, Interaction{SessionID: "s1", UserID: "u1", Query: "deploy kubernetes cluster", TechnologyFocus: "containers", Complexity: "intermediate"})
	store.AddInteraction(ctx, Interaction{SessionID: "s1", UserID: "u1", Query: "kubernetes ingress", TechnologyFocus: "containers", Complexity: "advanced"})
	store.AddInteraction(ctx, Interaction{SessionID: "s1", UserID: "u1", Query: "aws lambda", TechnologyFocus: "cloud"})

	p, err := store.GetProfile(ctx, "u1")
	if err != nil {
		t.Fatalf("GetProfile: %v", err)
	}
	if p.TotalInteractions != 3 {
		t.Errorf("total = %d, want 3", p.TotalInteractions)
	}
	if strings.Join(p.PreferredTechnologies, ",") != "containers,cloud" {
		t.Errorf("technologies = %v", p.PreferredTechnologies)
	}
	if p.ExpertiseLevel != "advanced" {
		t.Errorf("expertise = %q, want advanced", p.ExpertiseLevel)
	}
	// Only words longer than three characters, deduplicated.
	if strings.Join(p.Topics, ",") != "deploy,kubernetes,cluster,ingress,lambda" {
		t.Errorf("topics = %v", p.Topics)
	}
}

func TestTopicsCapped(t *testing.T) {
	store := setupTestStore(t, 10)
	ctx := context.Background()

	var words []string
	for i := 0; i < 25; i++ {
		words = append(words, fmt.Sprintf("topic%02d", i))
	}
	store.AddInteraction(ctx, Interaction{SessionID: "s1", Query: strings.Join(words, " ")})

	p, _ := store.GetProfile(ctx, "s1")
	if len(p.Topics) != 20 {
		t.Fatalf("topics len = %d, want 20", len(p.Topics))
	}
	if p.Topics[0] != "topic05" || p.Topics[19] != "topic24" {
		t.Errorf("oldest topics not dropped first: %v", p.Topics)
	}
}

func TestCurrentTopicAndConfidence(t *testing.T) {
	tests := []struct {
		name     string
		intents  []string
		success  []bool
		topic    string
		wantConf float64
	}{
		{"empty", nil, nil, "", 0},
		{"single", []string{"greeting"}, []bool{true}, "greeting", 1.0},
		{"most frequent of last three", []string{"help_request", "troubleshooting", "greeting", "troubleshooting"}, []bool{true, false, true, true}, "troubleshooting", 2.0/3.0 + 0.2},
		{"tie goes to first seen", []string{"social", "greeting", "help_request"}, []bool{false, false, false}, "social", 0.2},
		{"short history bonus", []string{"general"}, []bool{false}, "general", 0.1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var history []Turn
			for i, intent := range tt.intents {
				history = append(history, Turn{Intent: intent, Success: tt.success[i]})
			}
			if got := currentTopic(history); got != tt.topic {
				t.Errorf("currentTopic = %q, want %q", got, tt.topic)
			}
			if got := contextConfidence(history); math.Abs(got-tt.wantConf) > 1e-9 {
				t.Errorf("contextConfidence = %v, want %v", got, tt.wantConf)
			}
		})
	}
}

func TestRelated(t *testing.T) {
	tests := []struct {
		a, b string
		want bool
	}{
		{"deploy docker on aws", "docker on aws please", true},
		{"deploy docker", "docker docker", false},
		{"Terraform state, locking", "terraform STATE", true},
		{"hello", "goodbye", false},
	}
	for _, tt := range tests {
		if got := Related(tt.a, tt.b); got != tt.want {
			t.Errorf("Related(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestGetRelevantContext(t *testing.T) {
	store := setupTestStore(t, 10)
	ctx := context.Background()

	store.AddInteraction(ctx, Interaction{SessionID: "s1", Query: "create kubernetes cluster on gcp"})
	store.AddInteraction(ctx, Interaction{SessionID: "s1", Query: "what is a vpc"})

	rc, err := store.GetRelevantContext(ctx, "scale my kubernetes cluster", "s1")
	if err != nil {
		t.Fatalf("GetRelevantContext: %v", err)
	}
	if len(rc.RelatedTurns) != 1 || rc.RelatedTurns[0].Query != "create kubernetes cluster on gcp" {
		t.Errorf("related = %+v", rc.RelatedTurns)
	}
}

func TestPreferences(t *testing.T) {
	store := setupTestStore(t, 10)
	ctx := context.Background()

	if err := store.UpdatePreference(ctx, "u1", "preferred_environment", "azure"); err != nil {
		t.Fatalf("UpdatePreference: %v", err)
	}
	if err := store.UpdatePreference(ctx, "u1", "preferred_environment", "gcp"); err != nil {
		t.Fatalf("UpdatePreference: %v", err)
	}
	if err := store.UpdatePreference(ctx, "u1", "expertise_level", "advanced"); err != nil {
		t.Fatalf("UpdatePreference: %v", err)
	}

	prefs, _ := store.GetPreferences(ctx, "u1")
	if prefs["preferred_environment"] != "gcp" {
		t.Errorf("preference not overwritten: %v", prefs)
	}
	p, _ := store.GetProfile(ctx, "u1")
	if p.ExpertiseLevel != "advanced" {
		t.Errorf("expertise preference not applied to profile: %q", p.ExpertiseLevel)
	}
	if err := store.UpdatePreference(ctx, "", "k", "v"); err == nil {
		t.Error("expected error for empty user id")
	}
}

func TestRecordSatisfaction(t *testing.T) {
	store := setupTestStore(t, 10)
	ctx := context.Background()

	if err := store.RecordSatisfaction(ctx, "empty", 0.5); !errors.Is(err, ErrNoTurns) {
		t.Errorf("err = %v, want ErrNoTurns", err)
	}

	store.AddInteraction(ctx, Interaction{SessionID: "s1", Query: "first"})
	store.AddInteraction(ctx, Interaction{SessionID: "s1", Query: "second"})
	for i := 0; i < 12; i++ {
		if err := store.RecordSatisfaction(ctx, "s1", 0.8); err != nil {
			t.Fatalf("RecordSatisfaction: %v", err)
		}
	}

	cc, _ := store.GetConversationContext(ctx, "s1")
	if cc.History[0].Satisfaction != nil {
		t.Error("satisfaction should only attach to the latest turn")
	}
	if cc.History[1].Satisfaction == nil || *cc.History[1].Satisfaction != 0.8 {
		t.Errorf("latest satisfaction = %v", cc.History[1].Satisfaction)
	}
	if len(cc.Profile.SatisfactionHistory) != 10 {
		t.Errorf("satisfaction history len = %d, want 10", len(cc.Profile.SatisfactionHistory))
	}
	if err := store.RecordSatisfaction(ctx, "s1", 1.5); err == nil {
		t.Error("expected error for out-of-range score")
	}
}

func TestCleanupOldData(t *testing.T) {
	store := setupTestStore(t, 10)
	ctx := context.Background()

	old := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return old }
	store.AddInteraction(ctx, Interaction{SessionID: "stale", UserID: "u-old", Query: "old question"})
	store.AddInteraction(ctx, Interaction{SessionID: "mixed", UserID: "u-mixed", Query: "old mixed"})

	recent := old.Add(60 * 24 * time.Hour)
	store.now = func() time.Time { return recent }
	store.AddInteraction(ctx, Interaction{SessionID: "mixed", UserID: "u-mixed", Query: "new mixed"})

	report, err := store.CleanupOldData(ctx, 30*24*time.Hour)
	if err != nil {
		t.Fatalf("CleanupOldData: %v", err)
	}
	if report.TurnsDeleted != 2 || report.SessionsDeleted != 1 || report.ProfilesDeleted != 1 {
		t.Errorf("report = %+v", report)
	}

	cc, _ := store.GetConversationContext(ctx, "mixed")
	if len(cc.History) != 1 || cc.History[0].Query != "new mixed" {
		t.Errorf("mixed history = %+v", cc.History)
	}
	p, _ := store.GetProfile(ctx, "u-old")
	if p.TotalInteractions != 0 {
		t.Error("stale profile was not removed")
	}
}

func TestRecentAndCountSessions(t *testing.T) {
	store := setupTestStore(t, 10)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i, sid := range []string{"a", "b", "a"} {
		ts := base.Add(time.Duration(i) * time.Minute)
		store.now = func() time.Time { return ts }
		store.AddInteraction(ctx, Interaction{SessionID: sid, Query: fmt.Sprintf("q%d", i)})
	}

	recent, err := store.Recent(ctx, 2)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(recent) != 2 || recent[0].Query != "q2" || recent[1].Query != "q1" {
		t.Errorf("recent = %+v", recent)
	}

	n, err := store.CountSessions(ctx)
	if err != nil {
		t.Fatalf("CountSessions: %v", err)
	}
	if n != 2 {
		t.Errorf("CountSessions = %d, want 2", n)
	}
}

func TestRoutes(t *testing.T) {
	store := setupTestStore(t, 10)
	ctx := context.Background()
	store.AddInteraction(ctx, Interaction{SessionID: "s1", UserID: "u1", Query: "hello", Intent: "greeting", Success: true})

	r := chi.NewRouter()
	RegisterRoutes(r, store)

	req := httptest.NewRequest(http.MethodGet, "/api/sessions/s1/context", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("context status = %d", w.Code)
	}
	var cc ConversationContext
	json.NewDecoder(w.Body).Decode(&cc)
	if len(cc.History) != 1 || cc.CurrentTopic != "greeting" {
		t.Errorf("context = %+v", cc)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/sessions/s1/feedback", strings.NewReader(`{"satisfaction":0.9}`))
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("feedback status = %d, body = %s", w.Code, w.Body.String())
	}

	req = httptest.NewRequest(http.MethodPost, "/api/sessions/s1/feedback", strings.NewReader(`{"satisfaction":3}`))
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("invalid feedback status = %d, want 400", w.Code)
	}

	req = httptest.NewRequest(http.MethodPut, "/api/users/u1/preferences", strings.NewReader(`{"preferred_environment":"azure"}`))
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	var prefs map[string]string
	json.NewDecoder(w.Body).Decode(&prefs)
	if prefs["preferred_environment"] != "azure" {
		t.Errorf("preferences = %v", prefs)
	}
}
