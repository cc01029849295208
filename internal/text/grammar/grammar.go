// Package grammar runs rule-based grammar checks over segmented text. Like
// the spell checker it only flags problems and never rewrites the document.
package grammar

import (
	"cmp"
	"fmt"
	"regexp"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/MrWong99/voxedit/internal/text/segment"
)

// ErrorType classifies a grammar [Error].
type ErrorType string

const (
	TypeCapitalization ErrorType = "capitalization"
	TypePunctuation    ErrorType = "punctuation"
	TypeRepeatedWord   ErrorType = "repeated-word"
	TypeSpacing        ErrorType = "spacing"
	TypeMissingSpace   ErrorType = "missing-space"
)

// NoSentence is the SentenceID of errors found by document-wide scans.
const NoSentence = -1

// Error is one grammar problem. The span covers the offending characters of
// [segment.SegmentedText.OriginalText].
type Error struct {
	Type       ErrorType `json:"type"`
	Message    string    `json:"message"`
	CharStart  int       `json:"charStart"`
	CharEnd    int       `json:"charEnd"`
	SentenceID int       `json:"sentenceId"`
}

// Result is the outcome of a check. Errors are ordered by CharStart, then
// by Type.
type Result struct {
	Errors []Error `json:"errors"`
}

// Checker is immutable after [New] and safe for concurrent use.
type Checker struct {
	flagUnterminated bool
}

// Option configures a [Checker].
type Option func(*Checker)

// WithUnterminatedCheck enables the missing-terminal-punctuation rule.
//
// It is off by default because the last sentence of a document is usually
// the one still being dictated. Even when enabled, [Checker.Check] leaves the
// last sentence alone; only [Checker.CheckFinal] looks at it.
func WithUnterminatedCheck(enabled bool) Option {
	return func(c *Checker) {
		c.flagUnterminated = enabled
	}
}

// New returns a Checker configured by opts.
func New(opts ...Option) *Checker {
	c := &Checker{}
	for _, o := range opts {
		o(c)
	}
	return c
}

var defaultChecker = New()

// Check runs the default checker over st.
func Check(st segment.SegmentedText) Result {
	return defaultChecker.Check(st)
}

// Check runs every enabled rule over st, treating the last sentence as
// possibly unfinished.
func (c *Checker) Check(st segment.SegmentedText) Result {
	return c.check(st, false)
}

// CheckFinal is [Checker.Check] for text the user has finished dictating.
func (c *Checker) CheckFinal(st segment.SegmentedText) Result {
	return c.check(st, true)
}

func (c *Checker) check(st segment.SegmentedText, final bool) Result {
	errs := []Error{}
	text := st.OriginalText

	for i, s := range st.Sentences {
		errs = appendCapitalization(errs, text, s)
		errs = appendRepeatedWords(errs, s)

		last := i == len(st.Sentences)-1
		if c.flagUnterminated && (!last || final) {
			errs = appendUnterminated(errs, text, s)
		}
	}
	errs = appendMultipleSpaces(errs, text)
	errs = appendMissingSpaces(errs, text)

	slices.SortStableFunc(errs, func(a, b Error) int {
		return cmp.Or(cmp.Compare(a.CharStart, b.CharStart), cmp.Compare(a.Type, b.Type))
	})
	return Result{Errors: errs}
}

func appendCapitalization(errs []Error, text string, s segment.Sentence) []Error {
	raw := text[s.SentenceStart:s.SentenceEnd]
	for off, r := range raw {
		if unicode.IsSpace(r) {
			continue
		}
		if unicode.IsLower(r) {
			start := s.SentenceStart + off
			errs = append(errs, Error{
				Type:       TypeCapitalization,
				Message:    "Sentence should start with a capital letter",
				CharStart:  start,
				CharEnd:    start + utf8.RuneLen(r),
				SentenceID: s.SentenceID,
			})
		}
		break
	}
	return errs
}

func appendRepeatedWords(errs []Error, s segment.Sentence) []Error {
	for i := 1; i < len(s.Words); i++ {
		prev, cur := s.Words[i-1], s.Words[i]
		if !strings.EqualFold(prev.Word, cur.Word) {
			continue
		}
		errs = append(errs, Error{
			Type:       TypeRepeatedWord,
			Message:    fmt.Sprintf("Repeated word %q", cur.Word),
			CharStart:  cur.CharStart,
			CharEnd:    cur.CharEnd,
			SentenceID: s.SentenceID,
		})
	}
	return errs
}

func appendUnterminated(errs []Error, text string, s segment.Sentence) []Error {
	raw := text[s.SentenceStart:s.SentenceEnd]
	r, size := utf8.DecodeLastRuneInString(raw)
	if size == 0 || strings.ContainsRune(".!?", r) {
		return errs
	}
	return append(errs, Error{
		Type:       TypePunctuation,
		Message:    "Sentence is missing terminal punctuation",
		CharStart:  s.SentenceEnd - size,
		CharEnd:    s.SentenceEnd,
		SentenceID: s.SentenceID,
	})
}

func appendMultipleSpaces(errs []Error, text string) []Error {
	for i := 0; i < len(text); {
		if text[i] != ' ' {
			i++
			continue
		}
		j := i
		for j < len(text) && text[j] == ' ' {
			j++
		}
		if j-i >= 2 {
			errs = append(errs, Error{
				Type:       TypeSpacing,
				Message:    "Multiple spaces",
				CharStart:  i,
				CharEnd:    j,
				SentenceID: NoSentence,
			})
		}
		i = j
	}
	return errs
}

// excludedMissingSpace matches decimals and initialisms such as "U.S".
var excludedMissingSpace = regexp.MustCompile(`\d\.\d|[A-Z]\.[A-Z]`)

func appendMissingSpaces(errs []Error, text string) []Error {
	for i := 0; i+1 < len(text); i++ {
		if !strings.ContainsRune(".!?,;:", rune(text[i])) || !isLetter(text[i+1]) {
			continue
		}
		window := text[max(0, i-5):i+2]
		if excludedMissingSpace.MatchString(window) || dottedAbbreviation(text, i) {
			continue
		}
		errs = append(errs, Error{
			Type:       TypeMissingSpace,
			Message:    fmt.Sprintf("Missing space after %q", text[i]),
			CharStart:  i,
			CharEnd:    i + 2,
			SentenceID: NoSentence,
		})
	}
	return errs
}

// dottedAbbreviation reports whether the character at i is one of the inner
// periods of a dotted abbreviation such as "e.g." or "i.e.".
func dottedAbbreviation(text string, i int) bool {
	if text[i] != '.' {
		return false
	}
	k := i
	for k > 0 && (isLetter(text[k-1]) || text[k-1] == '.') {
		k--
	}
	before := strings.Trim(text[k:i], ".")
	if strings.Contains(before, ".") && segment.IsAbbreviation(before) {
		return true
	}
	f := i + 1
	for f < len(text) && isLetter(text[f]) {
		f++
	}
	return before != "" && segment.IsAbbreviation(before+"."+text[i+1:f])
}

func isLetter(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}
