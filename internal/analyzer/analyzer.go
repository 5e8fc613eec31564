// Package analyzer turns raw utterances into keywords, an intent, a
// complexity level and a confidence score. Everything here is deterministic.
package analyzer

import (
	"fmt"
	"strings"
	"unicode"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Options configures an Analyzer.
type Options struct {
	// CacheSize is the number of memoized analyses; 0 disables memoization.
	CacheSize int
	// MaxQueryLength truncates longer input (in runes); 0 means unlimited.
	MaxQueryLength int
}

// Analyzer is a stateless query analyzer with an optional memo cache.
type Analyzer struct {
	cache  *lru.Cache[string, Analysis]
	maxLen int
}

// New creates an Analyzer.
func New(opts Options) (*Analyzer, error) {
	a := &Analyzer{maxLen: opts.MaxQueryLength}
	if opts.CacheSize > 0 {
		cache, err := lru.New[string, Analysis](opts.CacheSize)
		if err != nil {
			return nil, fmt.Errorf("creating analysis cache: %w", err)
		}
		a.cache = cache
	}
	return a, nil
}

// Analyze extracts keywords, intent, complexity, context and confidence.
func (a *Analyzer) Analyze(text string) Analysis {
	text = a.truncate(strings.TrimSpace(text))

	if a.cache != nil {
		if cached, ok := a.cache.Get(text); ok {
			return cached
		}
	}

	keywords := ExtractKeywords(text)
	intent := ClassifyIntent(text)
	ctx := ExtractContext(keywords)

	analysis := Analysis{
		Keywords:   keywords,
		Intent:     intent,
		Complexity: AssessComplexity(text),
		Context:    ctx,
		Confidence: scoreConfidence(intent, ctx, keywords),
	}

	if a.cache != nil {
		a.cache.Add(text, analysis)
	}
	return analysis
}

// CacheLen returns the number of memoized analyses.
func (a *Analyzer) CacheLen() int {
	if a.cache == nil {
		return 0
	}
	return a.cache.Len()
}

func (a *Analyzer) truncate(text string) string {
	if a.maxLen <= 0 {
		return text
	}
	runes := []rune(text)
	if len(runes) <= a.maxLen {
		return text
	}
	return string(runes[:a.maxLen])
}

// normalize lower-cases text and replaces punctuation, except hyphens, with spaces.
func normalize(text string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), r == '-':
			return unicode.ToLower(r)
		default:
			return ' '
		}
	}, text)
}

// ExtractKeywords returns the de-duplicated keywords of text in order of first
// occurrence.
func ExtractKeywords(text string) []string {
	words := strings.Fields(normalize(text))
	seen := make(map[string]bool, len(words))
	keywords := make([]string, 0, len(words))

	for _, w := range words {
		w = strings.Trim(w, "-")
		if len(w) < 2 || seen[w] {
			continue
		}
		if stopWords[w] && !technicalTerms[w] && !capabilityWords[w] {
			continue
		}
		seen[w] = true
		keywords = append(keywords, w)
	}
	return keywords
}

// containsPhrase matches phrases by substring containment. Phrases shorter
// than four characters ("hi", "bye") must sit on word boundaries, otherwise
// "this" would read as a greeting.
func containsPhrase(lower, padded, phrase string) bool {
	if len(phrase) < 4 {
		return strings.Contains(padded, " "+phrase+" ")
	}
	return strings.Contains(lower, phrase)
}

// ContainsAny reports whether text contains any of phrases, using the same
// matching rules as intent classification.
func ContainsAny(text string, phrases []string) bool {
	lower := strings.ToLower(text)
	padded := " " + strings.Join(strings.Fields(normalize(text)), " ") + " "
	for _, p := range phrases {
		if containsPhrase(lower, padded, p) {
			return true
		}
	}
	return false
}

// ClassifyIntent returns the first intent, in priority order, with a phrase
// contained in text. Defaults to IntentGeneral.
func ClassifyIntent(text string) Intent {
	for _, rule := range intentRules {
		if ContainsAny(text, rule.phrases) {
			return rule.intent
		}
	}
	return IntentGeneral
}

// AssessComplexity checks the indicator sets in order and falls back to word count.
func AssessComplexity(text string) Complexity {
	for _, rule := range complexityRules {
		if ContainsAny(text, rule.indicators) {
			return rule.level
		}
	}
	if len(strings.Fields(text)) <= 5 {
		return ComplexityBeginner
	}
	return ComplexityIntermediate
}

// ExtractContext maps keywords onto the technology and action tables.
func ExtractContext(keywords []string) Context {
	set := make(map[string]bool, len(keywords))
	for _, k := range keywords {
		set[k] = true
	}

	ctx := Context{
		TechnicalDomains: []string{},
		ToolsMentioned:   []string{},
	}

	for _, cat := range technologyTable {
		matched := false
		for _, term := range cat.terms {
			if set[term] {
				matched = true
				break
			}
		}
		if matched {
			ctx.TechnicalDomains = append(ctx.TechnicalDomains, cat.domain)
		}
	}

	for _, k := range keywords {
		if technicalTerms[k] {
			ctx.ToolsMentioned = append(ctx.ToolsMentioned, k)
		}
	}

	for _, entry := range actionTable {
		for _, verb := range entry.verbs {
			if set[verb] {
				ctx.ActionType = entry.action
				return ctx
			}
		}
	}
	return ctx
}

func scoreConfidence(intent Intent, ctx Context, keywords []string) float64 {
	score := 0.5
	if intent != IntentGeneral {
		score += 0.2
	}
	if len(ctx.ToolsMentioned) > 0 {
		score += 0.2
	}
	if ctx.ActionType != "" {
		score += 0.1
	}
	if len(keywords) >= 2 {
		score += 0.1
	}
	if score > 1.0 {
		score = 1.0
	}
	return score
}
