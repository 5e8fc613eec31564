package patterns

import (
	"errors"
	"time"
)

// Pattern is a scored response template in the catalog. Keywords is a
// space-delimited keyword set; Confidence is the base confidence in [0,100].
type Pattern struct {
	ID           string    `json:"id"`
	Category     string    `json:"category"`
	Keywords     string    `json:"keywords"`
	Template     string    `json:"template"`
	Confidence   float64   `json:"confidence"`
	UsageCount   int       `json:"usage_count"`
	SuccessCount int       `json:"success_count"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// KeywordSet returns the pattern keywords as a set.
func (p Pattern) KeywordSet() map[string]bool {
	set := make(map[string]bool)
	for _, k := range splitKeywords(p.Keywords) {
		set[k] = true
	}
	return set
}

// Match is the accepted best pattern for a query. Confidence is the pattern's
// stored base confidence, not the computed Score.
type Match struct {
	Pattern    Pattern `json:"pattern"`
	Score      float64 `json:"score"`
	Confidence float64 `json:"confidence"`
}

// MatchThreshold is the score a pattern must exceed to be returned.
const MatchThreshold = 30.0

var (
	// ErrNotFound is returned when a pattern id does not exist.
	ErrNotFound = errors.New("pattern not found")
	// ErrInvalidPattern is returned for patterns missing required fields or
	// carrying a confidence outside [0,100].
	ErrInvalidPattern = errors.New("invalid pattern")
)
