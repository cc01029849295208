// Package spell flags misspelled words in segmented text and proposes ranked
// suggestions. It never changes the text: correcting a word is always left
// to the user.
//
// A [Checker] combines an embedded English word list with rule-based
// acceptance (inflections, possessives, numbers, names and hyphenated
// compounds). Words the user chose to keep are tracked per document in a
// [Session].
package spell

import (
	"github.com/MrWong99/voxedit/internal/text/segment"
)

// Error is a word the checker did not accept.
type Error struct {
	Word        string   `json:"word"`
	CharStart   int      `json:"charStart"`
	CharEnd     int      `json:"charEnd"`
	WordIndex   int      `json:"wordIndex"`
	Suggestions []string `json:"suggestions"`
}

// Result is the outcome of [Checker.Check].
type Result struct {
	Errors []Error `json:"errors"`
}

// Checker is read-only after [New] and safe for concurrent use.
type Checker struct {
	dict           *dictionary
	maxSuggestions int
	extra          [][]string
}

// Option configures a [Checker].
type Option func(*Checker)

// WithMaxSuggestions caps the number of suggestions per error. Values below
// one are ignored.
func WithMaxSuggestions(n int) Option {
	return func(c *Checker) {
		if n > 0 {
			c.maxSuggestions = n
		}
	}
}

// WithExtraWords adds words to the built-in dictionary. It may be given
// several times.
func WithExtraWords(words ...string) Option {
	return func(c *Checker) {
		c.extra = append(c.extra, words)
	}
}

// New builds a Checker from the embedded word list and opts.
func New(opts ...Option) *Checker {
	c := &Checker{maxSuggestions: DefaultMaxSuggestions}
	for _, o := range opts {
		o(c)
	}
	c.dict = newDictionary(append([][]string{builtinWords()}, c.extra...)...)
	c.extra = nil
	return c
}

// DictionarySize returns the number of distinct dictionary entries.
func (c *Checker) DictionarySize() int {
	return c.dict.size()
}

// CheckWord reports whether word is accepted on its own, outside any
// sentence context.
func (c *Checker) CheckWord(word string) bool {
	return c.accepts(word, false)
}

// Check flags every word of st that is neither accepted nor ignored by sess.
// sess may be nil. Errors are in document order.
func (c *Checker) Check(st segment.SegmentedText, sess *Session) Result {
	res := Result{Errors: []Error{}}
	for _, s := range st.Sentences {
		for i, w := range s.Words {
			if sess.IsIgnored(w.Word) || c.accepts(w.Word, i == 0) {
				continue
			}
			suggestions := c.Suggest(w.Word)
			if suggestions == nil {
				suggestions = []string{}
			}
			res.Errors = append(res.Errors, Error{
				Word:        w.Word,
				CharStart:   w.CharStart,
				CharEnd:     w.CharEnd,
				WordIndex:   w.WordIndex,
				Suggestions: suggestions,
			})
		}
	}
	return res
}
