package transcript

import (
	"context"
	"strings"
	"unicode"

	"github.com/MrWong99/voxedit/internal/transcript/phonetic"
	"github.com/MrWong99/voxedit/internal/vocab"
)

// Option is a functional option for configuring a [Corrector].
type Option func(*Corrector)

// WithPhoneticMatcher sets the matcher for the phonetic stage. Without one
// only alias lookup runs.
func WithPhoneticMatcher(m PhoneticMatcher) Option {
	return func(c *Corrector) {
		c.phonetic = m
	}
}

// WithKnownWords sets a predicate for words that are already spelled
// correctly. A window consisting only of known words is never corrected
// phonetically, which keeps ordinary English from being pulled towards a
// similar-sounding term.
func WithKnownWords(known func(word string) bool) Option {
	return func(c *Corrector) {
		c.known = known
	}
}

// Corrector is the [Pipeline] implementation. It is safe for concurrent use.
type Corrector struct {
	phonetic PhoneticMatcher
	known    func(string) bool
}

var _ Pipeline = (*Corrector)(nil)

// NewCorrector returns a Corrector configured with opts.
func NewCorrector(opts ...Option) *Corrector {
	c := &Corrector{}
	for _, o := range opts {
		o(c)
	}
	return c
}

// token is one whitespace-separated piece of the utterance split into the
// punctuation around it and the word itself.
type token struct {
	lead, core, trail string
}

func splitToken(s string) token {
	isWord := func(r rune) bool { return unicode.IsLetter(r) || unicode.IsDigit(r) }
	start := strings.IndexFunc(s, isWord)
	if start < 0 {
		return token{lead: s}
	}
	end := strings.LastIndexFunc(s, isWord) + 1
	return token{lead: s[:start], core: s[start:end], trail: s[end:]}
}

// Correct replaces misheard vocabulary in utterance.
//
// At every position windows of up to the longest term or alias length are
// tried, longest first, so multi-word terms beat partial single-word hits.
// A window matches when it equals an alias (case-insensitive) or, failing
// that, when the phonetic matcher accepts it. Punctuation around a window
// is kept. The corrected text is re-joined with single spaces.
func (c *Corrector) Correct(ctx context.Context, utterance string, terms []vocab.Term) (*Result, error) {
	res := &Result{
		Original:    utterance,
		Corrected:   utterance,
		Corrections: []Correction{},
	}
	fields := strings.Fields(utterance)
	if len(fields) == 0 || len(terms) == 0 {
		return res, nil
	}

	aliases := make(map[string]string)
	canon := make([]string, 0, len(terms))
	maxWords := 1
	for _, t := range terms {
		canon = append(canon, t.Term)
		maxWords = max(maxWords, len(strings.Fields(t.Term)))
		for _, a := range t.Aliases {
			key := normalizePhrase(a)
			if key == "" {
				continue
			}
			if _, dup := aliases[key]; !dup {
				aliases[key] = t.Term
			}
			maxWords = max(maxWords, len(strings.Fields(key)))
		}
	}

	var match func(string) (string, float64, bool)
	if pm, ok := c.phonetic.(*phonetic.Matcher); ok {
		ts := phonetic.Prepare(canon)
		match = func(p string) (string, float64, bool) { return pm.MatchPrepared(p, ts) }
	} else if c.phonetic != nil {
		match = func(p string) (string, float64, bool) { return c.phonetic.Match(p, canon) }
	}

	tokens := make([]token, len(fields))
	for i, f := range fields {
		tokens[i] = splitToken(f)
	}

	var out []string
	changed := false
	for i := 0; i < len(tokens); {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		n, corr, ok := c.matchAt(tokens[i:], maxWords, aliases, match)
		if !ok {
			out = append(out, fields[i])
			i++
			continue
		}
		first, last := tokens[i], tokens[i+n-1]
		out = append(out, first.lead+corr.Corrected+last.trail)
		res.Corrections = append(res.Corrections, corr)
		changed = true
		i += n
	}

	if changed {
		res.Corrected = strings.Join(out, " ")
	}
	return res, nil
}

// matchAt tries windows starting at tokens[0], longest first. Windows with
// punctuation inside them (other than at the outer edges) are not tried,
// so a correction never swallows a sentence break.
func (c *Corrector) matchAt(tokens []token, maxWords int, aliases map[string]string, match func(string) (string, float64, bool)) (int, Correction, bool) {
	for n := min(maxWords, len(tokens)); n >= 1; n-- {
		window := tokens[:n]
		if !cleanWindow(window) {
			continue
		}
		words := make([]string, n)
		for i, t := range window {
			words[i] = t.core
		}
		phrase := strings.Join(words, " ")

		if term, ok := aliases[normalizePhrase(phrase)]; ok {
			return n, Correction{Original: phrase, Corrected: term, Confidence: 1, Method: MethodAlias}, true
		}
		if match == nil || c.allKnown(words) {
			continue
		}
		if term, conf, ok := match(phrase); ok && term != phrase {
			return n, Correction{Original: phrase, Corrected: term, Confidence: conf, Method: MethodPhonetic}, true
		}
	}
	return 0, Correction{}, false
}

func cleanWindow(window []token) bool {
	for i, t := range window {
		if t.core == "" {
			return false
		}
		if i > 0 && t.lead != "" {
			return false
		}
		if i < len(window)-1 && t.trail != "" {
			return false
		}
	}
	return true
}

func (c *Corrector) allKnown(words []string) bool {
	if c.known == nil {
		return false
	}
	for _, w := range words {
		if !c.known(w) {
			return false
		}
	}
	return true
}

func normalizePhrase(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}
