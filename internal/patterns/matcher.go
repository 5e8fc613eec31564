package patterns

import (
	"context"
	"fmt"

	"github.com/ziadkadry99/infrachat/internal/analyzer"
)

// intentCategory maps analyzer intents onto catalog categories.
var intentCategory = map[analyzer.Intent]string{
	analyzer.IntentCapabilityInquiry:  "capabilities",
	analyzer.IntentHelpRequest:        "help",
	analyzer.IntentTroubleshooting:    "troubleshooting",
	analyzer.IntentInformationRequest: "information",
	analyzer.IntentCommandRequest:     "commands",
	analyzer.IntentSocial:             "social",
	analyzer.IntentClarification:      "clarification",
	analyzer.IntentConversation:       "conversation",
	analyzer.IntentGreeting:           "greeting",
	analyzer.IntentPersonal:           "personal",
}

// CategoryFor returns the catalog category an intent maps to, if any.
func CategoryFor(intent analyzer.Intent) (string, bool) {
	c, ok := intentCategory[intent]
	return c, ok
}

// Lister provides catalog patterns ordered by stored confidence descending.
type Lister interface {
	List(ctx context.Context) ([]Pattern, error)
}

// Matcher scores catalog patterns against analyzed queries.
type Matcher struct {
	source Lister
}

// NewMatcher creates a matcher over the given pattern source.
func NewMatcher(source Lister) *Matcher {
	return &Matcher{source: source}
}

// Score computes keyword_score + category_bonus + success_bonus, capped at 100.
func Score(p Pattern, keywords map[string]bool, intent analyzer.Intent) float64 {
	patternKeywords := p.KeywordSet()

	var keywordScore float64
	if len(patternKeywords) > 0 {
		overlap := 0
		for k := range patternKeywords {
			if keywords[k] {
				overlap++
			}
		}
		keywordScore = float64(overlap)/float64(len(patternKeywords))*80 + float64(overlap)*20
		if keywordScore > 80 {
			keywordScore = 80
		}
	}

	var categoryBonus float64
	if c, ok := intentCategory[intent]; ok && c == p.Category {
		categoryBonus = 15
	}

	successBonus := 2.5
	if p.UsageCount > 0 {
		successBonus = float64(p.SuccessCount) / float64(p.UsageCount) * 5
	}

	score := keywordScore + categoryBonus + successBonus
	if score > 100 {
		score = 100
	}
	return score
}

// FindBestMatch returns the highest scoring pattern whose score exceeds
// MatchThreshold, or nil. Ties keep the earlier, higher-confidence pattern.
func (m *Matcher) FindBestMatch(ctx context.Context, keywords []string, intent analyzer.Intent) (*Match, error) {
	catalog, err := m.source.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading pattern catalog: %w", err)
	}

	set := make(map[string]bool, len(keywords))
	for _, k := range keywords {
		set[k] = true
	}

	var best *Pattern
	bestScore := 0.0
	for i := range catalog {
		score := Score(catalog[i], set, intent)
		if best == nil || score > bestScore {
			best = &catalog[i]
			bestScore = score
		}
	}

	if best == nil || bestScore <= MatchThreshold {
		return nil, nil
	}
	return &Match{Pattern: *best, Score: bestScore, Confidence: best.Confidence}, nil
}
