// Package edit applies voice editing commands to document text.
//
// Every function is pure: it takes the whole document and returns a new one.
// Targets are matched literally and case-insensitively. When a target occurs
// several times the rightmost occurrence is edited, because spoken commands
// usually refer to what was just dictated; [Result.MatchCount] tells the
// caller how many candidates there were.
package edit

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/MrWong99/voxedit/internal/voicecmd"
)

var (
	// ErrNotFound is returned when the target does not occur in the text.
	ErrNotFound = errors.New("edit: target not found")

	// ErrNotMutating is returned by [Apply] for commands that are not
	// resolved by this package (scratch, undo, word count, ...).
	ErrNotMutating = errors.New("edit: command does not edit text")
)

// Result describes a successful edit.
type Result struct {
	NewText string `json:"newText"`

	// MatchCount is the number of occurrences of the target. Values above
	// one mean the edit was ambiguous and the last occurrence was used.
	MatchCount int `json:"matchCount"`

	// Position is the byte offset in the input text where the edit took
	// place: the start of the replaced, deleted or capitalized match, or the
	// insertion point.
	Position int `json:"position"`
}

// CapitalizeResult is a [Result] plus the word as it now reads.
type CapitalizeResult struct {
	Result
	Word string `json:"word"`
}

// findLast returns the span of the rightmost case-insensitive literal match
// of target and the total number of matches.
func findLast(text, target string) (start, end, count int, err error) {
	if target == "" {
		return 0, 0, 0, ErrNotFound
	}
	re, err := regexp.Compile(`(?i)` + regexp.QuoteMeta(target))
	if err != nil {
		return 0, 0, 0, fmt.Errorf("edit: compile target %q: %w", target, err)
	}
	locs := re.FindAllStringIndex(text, -1)
	if len(locs) == 0 {
		return 0, 0, 0, ErrNotFound
	}
	last := locs[len(locs)-1]
	return last[0], last[1], len(locs), nil
}

// Replace substitutes the last occurrence of target with replacement. When
// the matched text starts with an upper-case letter and replacement starts
// with a lower-case one, the replacement's first letter is upper-cased.
func Replace(text, target, replacement string) (Result, error) {
	start, end, count, err := findLast(text, target)
	if err != nil {
		return Result{}, err
	}

	first, _ := utf8.DecodeRuneInString(text[start:end])
	repFirst, size := utf8.DecodeRuneInString(replacement)
	if unicode.IsUpper(first) && unicode.IsLower(repFirst) {
		replacement = string(unicode.ToUpper(repFirst)) + replacement[size:]
	}

	return Result{
		NewText:    text[:start] + replacement + text[end:],
		MatchCount: count,
		Position:   start,
	}, nil
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// Delete removes the last occurrence of target. Afterwards every run of
// whitespace in the document, newlines included, becomes a single space and
// the document is trimmed.
func Delete(text, target string) (Result, error) {
	start, end, count, err := findLast(text, target)
	if err != nil {
		return Result{}, err
	}
	out := whitespaceRun.ReplaceAllString(text[:start]+text[end:], " ")
	return Result{
		NewText:    strings.TrimSpace(out),
		MatchCount: count,
		Position:   start,
	}, nil
}

// Insert puts payload directly before or after the last occurrence of
// anchor, separated from it by one space.
func Insert(text, anchor, payload string, pos voicecmd.Position) (Result, error) {
	if pos != voicecmd.Before && pos != voicecmd.After {
		return Result{}, fmt.Errorf("edit: invalid insert position %q", pos)
	}
	start, end, count, err := findLast(text, anchor)
	if err != nil {
		return Result{}, err
	}

	res := Result{MatchCount: count}
	if pos == voicecmd.Before {
		res.NewText = text[:start] + payload + " " + text[start:]
		res.Position = start
	} else {
		res.NewText = text[:end] + " " + payload + text[end:]
		res.Position = end
	}
	return res, nil
}

var wordToken = regexp.MustCompile(`\b\w+\b`)

// Capitalize upper-cases the first letter of the last occurrence of target.
// With an empty target it capitalizes the last word of the document instead.
func Capitalize(text, target string) (CapitalizeResult, error) {
	var start, end, count int
	if target == "" {
		locs := wordToken.FindAllStringIndex(text, -1)
		if len(locs) == 0 {
			return CapitalizeResult{}, ErrNotFound
		}
		last := locs[len(locs)-1]
		start, end, count = last[0], last[1], 1
	} else {
		var err error
		start, end, count, err = findLast(text, target)
		if err != nil {
			return CapitalizeResult{}, err
		}
	}

	word := capitalizeFirstLetter(text[start:end])
	return CapitalizeResult{
		Result: Result{
			NewText:    text[:start] + word + text[end:],
			MatchCount: count,
			Position:   start,
		},
		Word: word,
	}, nil
}

func capitalizeFirstLetter(s string) string {
	for i, r := range s {
		if unicode.IsLetter(r) {
			return s[:i] + string(unicode.ToUpper(r)) + s[i+utf8.RuneLen(r):]
		}
	}
	return s
}

// Apply dispatches a mutating command to the matching function. Commands
// for which [voicecmd.Mutating] is false yield [ErrNotMutating].
func Apply(text string, cmd voicecmd.Command) (Result, error) {
	switch c := cmd.(type) {
	case voicecmd.Replace:
		return Replace(text, c.Target, c.Replacement)
	case voicecmd.Delete:
		return Delete(text, c.Target)
	case voicecmd.Insert:
		return Insert(text, c.Anchor, c.Text, c.Position)
	case voicecmd.Capitalize:
		res, err := Capitalize(text, c.Target)
		return res.Result, err
	}
	return Result{}, ErrNotMutating
}
