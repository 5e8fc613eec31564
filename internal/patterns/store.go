package patterns

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ziadkadry99/infrachat/internal/db"
)

// Store manages persistence of catalog patterns.
type Store struct {
	db *db.DB
}

// NewStore creates a new pattern store.
func NewStore(database *db.DB) *Store {
	return &Store{db: database}
}

func splitKeywords(keywords string) []string {
	return strings.Fields(strings.ToLower(keywords))
}

// AddPattern upserts a pattern keyed by (category, keywords). An existing
// entry keeps its id and usage statistics; template and confidence are
// overwritten.
func (s *Store) AddPattern(ctx context.Context, p Pattern) (*Pattern, error) {
	p.Category = strings.TrimSpace(p.Category)
	p.Keywords = strings.Join(splitKeywords(p.Keywords), " ")
	if p.Category == "" || p.Keywords == "" || p.Template == "" {
		return nil, fmt.Errorf("%w: category, keywords and template are required", ErrInvalidPattern)
	}
	if p.Confidence < 0 || p.Confidence > 100 {
		return nil, fmt.Errorf("%w: confidence %.1f outside [0,100]", ErrInvalidPattern, p.Confidence)
	}
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	now := time.Now().UTC()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO patterns (id, category, keywords, template, confidence, usage_count, success_count, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, 0, 0, ?, ?)
		 ON CONFLICT(category, keywords) DO UPDATE SET
		   template = excluded.template,
		   confidence = excluded.confidence,
		   updated_at = excluded.updated_at`,
		p.ID, p.Category, p.Keywords, p.Template, p.Confidence, now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("upserting pattern: %w", err)
	}

	row := s.db.QueryRowContext(ctx,
		`SELECT id, category, keywords, template, confidence, usage_count, success_count, created_at, updated_at
		 FROM patterns WHERE category = ? AND keywords = ?`, p.Category, p.Keywords)
	stored, err := scanPattern(row)
	if err != nil {
		return nil, fmt.Errorf("reading upserted pattern: %w", err)
	}
	return stored, nil
}

// Get retrieves a pattern by id. Returns nil, nil when it does not exist.
func (s *Store) Get(ctx context.Context, id string) (*Pattern, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, category, keywords, template, confidence, usage_count, success_count, created_at, updated_at
		 FROM patterns WHERE id = ?`, id)
	p, err := scanPattern(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting pattern: %w", err)
	}
	return p, nil
}

// List returns every pattern ordered by stored confidence descending.
func (s *Store) List(ctx context.Context) ([]Pattern, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, category, keywords, template, confidence, usage_count, success_count, created_at, updated_at
		 FROM patterns ORDER BY confidence DESC, created_at ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("listing patterns: %w", err)
	}
	defer rows.Close()

	var result []Pattern
	for rows.Next() {
		p, err := scanPattern(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning pattern: %w", err)
		}
		result = append(result, *p)
	}
	return result, rows.Err()
}

// Count returns the number of stored patterns.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM patterns`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting patterns: %w", err)
	}
	return n, nil
}

// UpdateUsage increments usage_count and, on success, success_count.
func (s *Store) UpdateUsage(ctx context.Context, id string, success bool) error {
	inc := 0
	if success {
		inc = 1
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE patterns SET usage_count = usage_count + 1, success_count = success_count + ?, updated_at = ?
		 WHERE id = ?`, inc, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("updating pattern usage: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating pattern usage: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("updating pattern usage %s: %w", id, ErrNotFound)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPattern(row scanner) (*Pattern, error) {
	var p Pattern
	if err := row.Scan(&p.ID, &p.Category, &p.Keywords, &p.Template, &p.Confidence,
		&p.UsageCount, &p.SuccessCount, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}
