package memory

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"

	"github.com/ziadkadry99/infrachat/internal/db"
)

// ErrNoTurns is returned when feedback targets a session without history.
var ErrNoTurns = errors.New("session has no turns")

// Store persists session history, preferences and user profiles.
type Store struct {
	db       *db.DB
	maxTurns int
	now      func() time.Time
}

// NewStore creates a memory store keeping at most maxTurns turns per session.
// A non-positive maxTurns uses DefaultMaxTurns.
func NewStore(database *db.DB, maxTurns int) *Store {
	if maxTurns <= 0 {
		maxTurns = DefaultMaxTurns
	}
	return &Store{
		db:       database,
		maxTurns: maxTurns,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// profileKey identifies whose profile a session feeds.
func profileKey(userID, sessionID string) string {
	if userID != "" {
		return userID
	}
	return sessionID
}

// AddInteraction appends a turn, trims the session to the newest maxTurns
// turns and updates the user's profile.
func (s *Store) AddInteraction(ctx context.Context, in Interaction) (*Turn, error) {
	if in.SessionID == "" {
		return nil, fmt.Errorf("adding interaction: session id is required")
	}
	now := s.now()
	turn := Turn{
		ID:              uuid.New().String(),
		SessionID:       in.SessionID,
		UserID:          in.UserID,
		Timestamp:       now,
		Query:           in.Query,
		Response:        in.Response,
		Intent:          in.Intent,
		Confidence:      in.Confidence,
		Success:         in.Success,
		TechnologyFocus: in.TechnologyFocus,
	}
	if turn.Intent == "" {
		turn.Intent = "general"
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO sessions (session_id, user_id, started_at, last_activity) VALUES (?, ?, ?, ?)
		 ON CONFLICT(session_id) DO UPDATE SET
		   last_activity = excluded.last_activity,
		   user_id = CASE WHEN excluded.user_id != '' THEN excluded.user_id ELSE sessions.user_id END`,
		in.SessionID, in.UserID, now, now)
	if err != nil {
		return nil, fmt.Errorf("touching session: %w", err)
	}

	var seq int64
	if err := tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(seq), 0) + 1 FROM conversation_history WHERE session_id = ?`, in.SessionID,
	).Scan(&seq); err != nil {
		return nil, fmt.Errorf("reading turn sequence: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO conversation_history (id, seq, session_id, user_id, query, response, intent, confidence, success, technology_focus, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		turn.ID, seq, turn.SessionID, turn.UserID, turn.Query, turn.Response, turn.Intent,
		turn.Confidence, boolToInt(turn.Success), turn.TechnologyFocus, now)
	if err != nil {
		return nil, fmt.Errorf("inserting turn: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`DELETE FROM conversation_history WHERE session_id = ? AND seq <= ?`,
		in.SessionID, seq-int64(s.maxTurns))
	if err != nil {
		return nil, fmt.Errorf("trimming history: %w", err)
	}

	key := profileKey(in.UserID, in.SessionID)
	profile, err := loadProfile(ctx, tx, key)
	if err != nil {
		return nil, err
	}
	applyTurn(profile, in, now)
	if err := saveProfile(ctx, tx, profile); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing interaction: %w", err)
	}
	return &turn, nil
}

// applyTurn folds one interaction into a profile.
func applyTurn(p *Profile, in Interaction, now time.Time) {
	p.LastActive = now
	p.TotalInteractions++

	if in.TechnologyFocus != "" && !contains(p.PreferredTechnologies, in.TechnologyFocus) {
		p.PreferredTechnologies = append(p.PreferredTechnologies, in.TechnologyFocus)
	}
	if in.Complexity != "" {
		p.ExpertiseLevel = in.Complexity
	}

	for _, w := range words(in.Query) {
		if len(w) > 3 && !contains(p.Topics, w) {
			p.Topics = append(p.Topics, w)
		}
	}
	if len(p.Topics) > maxTopics {
		p.Topics = p.Topics[len(p.Topics)-maxTopics:]
	}
}

// GetConversationContext returns the session's history (oldest first), the
// user's profile and preferences, the current topic and a context confidence.
func (s *Store) GetConversationContext(ctx context.Context, sessionID string) (*ConversationContext, error) {
	history, err := s.history(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	var userID string
	err = s.db.QueryRowContext(ctx, `SELECT user_id FROM sessions WHERE session_id = ?`, sessionID).Scan(&userID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("reading session: %w", err)
	}

	key := profileKey(userID, sessionID)
	profile, err := loadProfile(ctx, s.db, key)
	if err != nil {
		return nil, err
	}
	prefs, err := s.GetPreferences(ctx, key)
	if err != nil {
		return nil, err
	}

	return &ConversationContext{
		SessionID:         sessionID,
		UserID:            userID,
		History:           history,
		Profile:           profile,
		Preferences:       prefs,
		CurrentTopic:      currentTopic(history),
		ContextConfidence: contextConfidence(history),
	}, nil
}

func (s *Store) history(ctx context.Context, sessionID string) ([]Turn, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+turnColumns+` FROM conversation_history WHERE session_id = ? ORDER BY seq ASC`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("loading history: %w", err)
	}
	defer rows.Close()
	return scanTurns(rows)
}

// Recent returns the latest turns across all sessions, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Turn, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+turnColumns+` FROM conversation_history ORDER BY created_at DESC, seq DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("loading recent turns: %w", err)
	}
	defer rows.Close()
	return scanTurns(rows)
}

// CountSessions returns the number of known sessions.
func (s *Store) CountSessions(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sessions`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting sessions: %w", err)
	}
	return n, nil
}

const turnColumns = `id, session_id, user_id, query, response, intent, confidence, success, technology_focus, satisfaction, created_at`

func scanTurns(rows *sql.Rows) ([]Turn, error) {
	turns := []Turn{}
	for rows.Next() {
		var t Turn
		var success int
		var satisfaction sql.NullFloat64
		if err := rows.Scan(&t.ID, &t.SessionID, &t.UserID, &t.Query, &t.Response, &t.Intent,
			&t.Confidence, &success, &t.TechnologyFocus, &satisfaction, &t.Timestamp); err != nil {
			return nil, fmt.Errorf("scanning turn: %w", err)
		}
		t.Success = success != 0
		if satisfaction.Valid {
			v := satisfaction.Float64
			t.Satisfaction = &v
		}
		turns = append(turns, t)
	}
	return turns, rows.Err()
}

// currentTopic is the most frequent intent among the last three turns; ties
// go to the intent seen first.
func currentTopic(history []Turn) string {
	recent := lastN(history, recentWindow)
	counts := make(map[string]int)
	var order []string
	for _, t := range recent {
		if counts[t.Intent] == 0 {
			order = append(order, t.Intent)
		}
		counts[t.Intent]++
	}
	best := ""
	for _, intent := range order {
		if best == "" || counts[intent] > counts[best] {
			best = intent
		}
	}
	return best
}

// contextConfidence is the recent success rate plus a history-length bonus
// of up to 0.2, capped at 1.
func contextConfidence(history []Turn) float64 {
	if len(history) == 0 {
		return 0
	}
	recent := lastN(history, recentWindow)
	successes := 0
	for _, t := range recent {
		if t.Success {
			successes++
		}
	}
	score := float64(successes)/float64(len(recent)) + min(float64(len(history))/10, 0.2)
	return min(score, 1.0)
}

// UpdatePreference stores a user preference. The expertise_level and
// interaction_style keys also update the profile.
func (s *Store) UpdatePreference(ctx context.Context, userID, key, value string) error {
	if userID == "" || key == "" {
		return fmt.Errorf("updating preference: user id and key are required")
	}
	now := s.now()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO user_preferences (user_id, key, value, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(user_id, key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		userID, key, value, now)
	if err != nil {
		return fmt.Errorf("updating preference: %w", err)
	}

	if key != "expertise_level" && key != "interaction_style" {
		return nil
	}
	profile, err := loadProfile(ctx, s.db, userID)
	if err != nil {
		return err
	}
	if key == "expertise_level" {
		profile.ExpertiseLevel = value
	} else {
		profile.InteractionStyle = value
	}
	profile.LastActive = now
	return saveProfile(ctx, s.db, profile)
}

// GetPreferences returns all stored preferences for a user.
func (s *Store) GetPreferences(ctx context.Context, userID string) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key, value FROM user_preferences WHERE user_id = ?`, userID)
	if err != nil {
		return nil, fmt.Errorf("loading preferences: %w", err)
	}
	defer rows.Close()

	prefs := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, fmt.Errorf("scanning preference: %w", err)
		}
		prefs[k] = v
	}
	return prefs, rows.Err()
}

// GetProfile returns the stored profile for a user, or a fresh default one.
func (s *Store) GetProfile(ctx context.Context, userID string) (*Profile, error) {
	return loadProfile(ctx, s.db, userID)
}

// GetRelevantContext returns the session turns sharing at least two words
// with query.
func (s *Store) GetRelevantContext(ctx context.Context, query, sessionID string) (*RelevantContext, error) {
	cc, err := s.GetConversationContext(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	related := []Turn{}
	for _, t := range cc.History {
		if Related(query, t.Query) {
			related = append(related, t)
		}
	}
	return &RelevantContext{
		RelatedTurns: related,
		CurrentTopic: cc.CurrentTopic,
		Profile:      cc.Profile,
	}, nil
}

// Related reports whether two queries share at least two words.
func Related(a, b string) bool {
	set := make(map[string]bool)
	for _, w := range words(a) {
		set[w] = true
	}
	shared := 0
	seen := make(map[string]bool)
	for _, w := range words(b) {
		if set[w] && !seen[w] {
			seen[w] = true
			shared++
			if shared >= 2 {
				return true
			}
		}
	}
	return false
}

// RecordSatisfaction attaches a satisfaction score to the session's latest
// turn and appends it to the user's satisfaction history.
func (s *Store) RecordSatisfaction(ctx context.Context, sessionID string, score float64) error {
	if score < 0 || score > 1 {
		return fmt.Errorf("recording satisfaction: score %.2f outside [0,1]", score)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var turnID, userID string
	err = tx.QueryRowContext(ctx,
		`SELECT id, user_id FROM conversation_history WHERE session_id = ? ORDER BY seq DESC LIMIT 1`, sessionID,
	).Scan(&turnID, &userID)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("recording satisfaction for %s: %w", sessionID, ErrNoTurns)
	}
	if err != nil {
		return fmt.Errorf("finding latest turn: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `UPDATE conversation_history SET satisfaction = ? WHERE id = ?`, score, turnID); err != nil {
		return fmt.Errorf("updating satisfaction: %w", err)
	}

	profile, err := loadProfile(ctx, tx, profileKey(userID, sessionID))
	if err != nil {
		return err
	}
	profile.SatisfactionHistory = append(profile.SatisfactionHistory, score)
	if len(profile.SatisfactionHistory) > maxSatisfactionHistory {
		profile.SatisfactionHistory = profile.SatisfactionHistory[len(profile.SatisfactionHistory)-maxSatisfactionHistory:]
	}
	if err := saveProfile(ctx, tx, profile); err != nil {
		return err
	}
	return tx.Commit()
}

// CleanupOldData removes turns older than maxAge, sessions left without
// turns and profiles inactive for longer than maxAge.
func (s *Store) CleanupOldData(ctx context.Context, maxAge time.Duration) (CleanupReport, error) {
	var report CleanupReport
	cutoff := s.now().Add(-maxAge)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return report, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `DELETE FROM conversation_history WHERE created_at < ?`, cutoff)
	if err != nil {
		return report, fmt.Errorf("deleting old turns: %w", err)
	}
	report.TurnsDeleted, _ = res.RowsAffected()

	res, err = tx.ExecContext(ctx,
		`DELETE FROM sessions WHERE session_id NOT IN (SELECT DISTINCT session_id FROM conversation_history)`)
	if err != nil {
		return report, fmt.Errorf("deleting empty sessions: %w", err)
	}
	report.SessionsDeleted, _ = res.RowsAffected()

	res, err = tx.ExecContext(ctx, `DELETE FROM user_profiles WHERE last_active < ?`, cutoff)
	if err != nil {
		return report, fmt.Errorf("deleting stale profiles: %w", err)
	}
	report.ProfilesDeleted, _ = res.RowsAffected()

	if err := tx.Commit(); err != nil {
		return report, fmt.Errorf("committing cleanup: %w", err)
	}
	return report, nil
}

func loadProfile(ctx context.Context, q querier, userID string) (*Profile, error) {
	var raw string
	err := q.QueryRowContext(ctx, `SELECT profile FROM user_profiles WHERE user_id = ?`, userID).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return newProfile(userID), nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading profile: %w", err)
	}

	p := newProfile(userID)
	if err := json.Unmarshal([]byte(raw), p); err != nil {
		return nil, fmt.Errorf("decoding profile %s: %w", userID, err)
	}
	return p, nil
}

func saveProfile(ctx context.Context, q querier, p *Profile) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encoding profile: %w", err)
	}
	_, err = q.ExecContext(ctx,
		`INSERT INTO user_profiles (user_id, profile, last_active) VALUES (?, ?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET profile = excluded.profile, last_active = excluded.last_active`,
		p.UserID, string(data), p.LastActive)
	if err != nil {
		return fmt.Errorf("saving profile: %w", err)
	}
	return nil
}

// words splits text into lower-cased words, dropping punctuation.
func words(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '-'
	})
}

func lastN(history []Turn, n int) []Turn {
	if len(history) <= n {
		return history
	}
	return history[len(history)-n:]
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
