// Package phonetic matches misheard dictation against vocabulary terms using
// Double Metaphone encoding combined with Jaro-Winkler similarity.
//
// Matching runs in two stages:
//
//  1. Phonetic candidate filtering: Double Metaphone codes are computed for
//     each word of the input and of every term. A term whose codes overlap
//     the input's becomes a phonetic candidate and is accepted above the
//     phonetic threshold (default 0.70).
//
//  2. Fuzzy fallback: when no phonetic candidate qualifies, pure
//     Jaro-Winkler similarity is tested against every term with the higher
//     fuzzy threshold (default 0.85).
//
// Multi-word terms ("endoplasmic reticulum") are compared on the full
// phrase, on the phrase with spaces removed ("mito kondria" against
// "mitochondria") and word by word when both sides have the same number of
// words.
package phonetic

import (
	"strings"

	"github.com/antzucaro/matchr"
)

const (
	defaultPhoneticThreshold = 0.70
	defaultFuzzyThreshold    = 0.85
)

// Option is a functional option for configuring a [Matcher].
type Option func(*Matcher)

// WithPhoneticThreshold sets the minimum Jaro-Winkler score for a
// phonetically matched term. Default: 0.70.
func WithPhoneticThreshold(threshold float64) Option {
	return func(m *Matcher) {
		m.phoneticThreshold = threshold
	}
}

// WithFuzzyThreshold sets the minimum Jaro-Winkler score when no phonetic
// candidate exists. Default: 0.85.
func WithFuzzyThreshold(threshold float64) Option {
	return func(m *Matcher) {
		m.fuzzyThreshold = threshold
	}
}

// Matcher is read-only after construction and safe for concurrent use.
type Matcher struct {
	phoneticThreshold float64
	fuzzyThreshold    float64
}

// New returns a [Matcher] configured with opts.
func New(opts ...Option) *Matcher {
	m := &Matcher{
		phoneticThreshold: defaultPhoneticThreshold,
		fuzzyThreshold:    defaultFuzzyThreshold,
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

// preparedTerm caches everything about a term that does not depend on the
// input.
type preparedTerm struct {
	term   string
	lower  string
	tokens []string
	concat string
	codes  map[string]struct{}
}

// TermSet is a list of terms prepared once for repeated matching.
type TermSet struct {
	terms    []preparedTerm
	maxWords int
}

// Prepare computes the phonetic codes of terms. Blank terms are skipped.
func Prepare(terms []string) *TermSet {
	ts := &TermSet{}
	for _, t := range terms {
		lower := strings.ToLower(strings.TrimSpace(t))
		if lower == "" {
			continue
		}
		tokens := strings.Fields(lower)
		ts.terms = append(ts.terms, preparedTerm{
			term:   t,
			lower:  lower,
			tokens: tokens,
			concat: strings.Join(tokens, ""),
			codes:  codesForTokens(tokens),
		})
		ts.maxWords = max(ts.maxWords, len(tokens))
	}
	return ts
}

// MaxWords returns the word count of the longest term, or 0 for an empty set.
func (ts *TermSet) MaxWords() int {
	return ts.maxWords
}

// Len returns the number of prepared terms.
func (ts *TermSet) Len() int {
	return len(ts.terms)
}

// Match finds the term most similar to phrase. When matched is false,
// corrected equals phrase and confidence is 0.
func (m *Matcher) Match(phrase string, terms []string) (corrected string, confidence float64, matched bool) {
	return m.MatchPrepared(phrase, Prepare(terms))
}

// MatchPrepared is [Matcher.Match] against a prepared [TermSet]. The
// returned term keeps its original casing.
func (m *Matcher) MatchPrepared(phrase string, ts *TermSet) (corrected string, confidence float64, matched bool) {
	lower := strings.ToLower(strings.TrimSpace(phrase))
	if ts == nil || len(ts.terms) == 0 || lower == "" {
		return phrase, 0, false
	}
	tokens := strings.Fields(lower)
	codes := codesForTokens(tokens)
	concat := strings.Join(tokens, "")

	var (
		best         string
		bestScore    float64
		bestPhonetic bool
	)
	for _, pt := range ts.terms {
		if !comparableLength(concat, pt.concat) {
			continue
		}
		score := similarity(tokens, lower, concat, pt)
		if codesOverlap(codes, pt.codes) {
			if score >= m.phoneticThreshold && (!bestPhonetic || score > bestScore) {
				best, bestScore, bestPhonetic = pt.term, score, true
			}
		} else if !bestPhonetic && score >= m.fuzzyThreshold && score > bestScore {
			best, bestScore = pt.term, score
		}
	}

	if best == "" {
		return phrase, 0, false
	}
	return best, bestScore, true
}

// comparableLength rejects windows much longer or shorter than the term.
// Jaro-Winkler rewards a shared prefix, so without this gate "okafer said
// hello" would still score well against "okafor".
func comparableLength(input, term string) bool {
	diff := len(input) - len(term)
	if diff < 0 {
		diff = -diff
	}
	return diff <= max(2, len(term)/3)
}

// codesForTokens returns the union of the Double Metaphone codes of tokens.
// Empty codes are left out.
func codesForTokens(tokens []string) map[string]struct{} {
	codes := make(map[string]struct{}, len(tokens)*2)
	for _, t := range tokens {
		p, s := matchr.DoubleMetaphone(t)
		if p != "" {
			codes[p] = struct{}{}
		}
		if s != "" {
			codes[s] = struct{}{}
		}
	}
	return codes
}

func codesOverlap(a, b map[string]struct{}) bool {
	if len(a) > len(b) {
		a, b = b, a
	}
	for code := range a {
		if _, ok := b[code]; ok {
			return true
		}
	}
	return false
}

// similarity is the best Jaro-Winkler score over the full phrase, the
// phrase without spaces and, for equal word counts, the mean word-by-word
// score. Matching a single word of a longer term is intentionally not
// considered: "tower" alone must not become "Tower of London".
func similarity(tokens []string, full, concat string, pt preparedTerm) float64 {
	score := matchr.JaroWinkler(full, pt.lower, false)

	if len(tokens) > 1 || len(pt.tokens) > 1 {
		if s := matchr.JaroWinkler(concat, pt.concat, false); s > score {
			score = s
		}
	}

	if len(tokens) > 1 && len(tokens) == len(pt.tokens) {
		var sum float64
		for i := range tokens {
			sum += matchr.JaroWinkler(tokens[i], pt.tokens[i], false)
		}
		if s := sum / float64(len(tokens)); s > score {
			score = s
		}
	}
	return score
}
