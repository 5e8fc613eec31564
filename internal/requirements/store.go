package requirements

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ziadkadry99/infrachat/internal/db"
	"github.com/ziadkadry99/infrachat/internal/infra"
)

// Store persists requirements sessions in requirements_collection.
type Store struct {
	db *db.DB
}

// NewStore creates a new requirements store.
func NewStore(database *db.DB) *Store {
	return &Store{db: database}
}

// Save writes the full session snapshot.
func (s *Store) Save(ctx context.Context, sess *Session) error {
	plan, err := json.Marshal(sess.Plan)
	if err != nil {
		return fmt.Errorf("encoding plan snapshot: %w", err)
	}
	answers, err := json.Marshal(sess.Answers)
	if err != nil {
		return fmt.Errorf("encoding answers: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO requirements_collection (session_id, plan_snapshot, answers, cursor, completed, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(session_id) DO UPDATE SET
		   plan_snapshot = excluded.plan_snapshot,
		   answers = excluded.answers,
		   cursor = excluded.cursor,
		   completed = excluded.completed,
		   updated_at = excluded.updated_at`,
		sess.SessionID, string(plan), string(answers), sess.Cursor, sess.Completed, sess.UpdatedAt)
	if err != nil {
		return fmt.Errorf("saving requirements session: %w", err)
	}
	return nil
}

// Load returns the stored session, or nil, nil when none exists.
func (s *Store) Load(ctx context.Context, sessionID string) (*Session, error) {
	var planJSON, answersJSON string
	sess := &Session{SessionID: sessionID}

	err := s.db.QueryRowContext(ctx,
		`SELECT plan_snapshot, answers, cursor, completed, updated_at
		 FROM requirements_collection WHERE session_id = ?`, sessionID,
	).Scan(&planJSON, &answersJSON, &sess.Cursor, &sess.Completed, &sess.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading requirements session: %w", err)
	}

	var plan *infra.Plan
	if err := json.Unmarshal([]byte(planJSON), &plan); err != nil {
		return nil, fmt.Errorf("decoding plan snapshot: %w", err)
	}
	sess.Plan = plan
	if err := json.Unmarshal([]byte(answersJSON), &sess.Answers); err != nil {
		return nil, fmt.Errorf("decoding answers: %w", err)
	}
	if sess.Answers == nil {
		sess.Answers = []Answer{}
	}
	return sess, nil
}

// Delete removes a session's collection state.
func (s *Store) Delete(ctx context.Context, sessionID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM requirements_collection WHERE session_id = ?`, sessionID); err != nil {
		return fmt.Errorf("deleting requirements session: %w", err)
	}
	return nil
}

// DeleteOrphaned removes collections whose session no longer exists.
func (s *Store) DeleteOrphaned(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM requirements_collection WHERE session_id NOT IN (SELECT session_id FROM sessions)`)
	if err != nil {
		return 0, fmt.Errorf("deleting orphaned requirements: %w", err)
	}
	return res.RowsAffected()
}
