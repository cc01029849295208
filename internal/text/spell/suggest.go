package spell

import (
	"slices"
	"strings"

	"github.com/MrWong99/voxedit/internal/text/phonetic"
)

// DefaultMaxSuggestions is used when no [WithMaxSuggestions] option is given.
const DefaultMaxSuggestions = 5

// lengthWindow bounds how far a dictionary entry's length may differ from
// the misspelled word to be considered at all.
const lengthWindow = 3

// Injected-candidate priorities. Any injected candidate outranks every
// edit-distance candidate regardless of score.
const (
	scoreLetterSwap = 0
	scoreDigraph    = 1
	scoreSuffix     = 2
)

type rewrite struct {
	from, to string
	// suffix restricts the rewrite to the end of the word.
	suffix bool
}

// letterSwaps are single letters commonly confused in dictation and OCR'd
// handwriting. Each pair is applied in both directions.
var letterSwaps = [][2]byte{
	{'b', 'd'}, {'p', 'q'}, {'m', 'w'}, {'n', 'u'}, {'6', '9'},
	{'a', 'e'}, {'i', 'e'}, {'o', 'a'}, {'c', 'k'}, {'s', 'c'},
	{'f', 'v'}, {'t', 'd'}, {'g', 'j'},
}

// digraphRewrites are spellings that sound alike. Applied in both directions.
var digraphRewrites = []rewrite{
	{from: "ph", to: "f"},
	{from: "ough", to: "off"},
	{from: "ough", to: "uff"},
	{from: "tion", to: "shun"},
	{from: "ck", to: "k"},
	{from: "ight", to: "ite"},
	{from: "ei", to: "ie"},
	{from: "ance", to: "ence"},
	{from: "able", to: "ible"},
	{from: "er", to: "or"},
	{from: "ar", to: "er"},
}

// suffixRewrites are ending confusions. Applied in both directions.
var suffixRewrites = []rewrite{
	{from: "ie", to: "ei"},
	{from: "ible", to: "able"},
	{from: "ence", to: "ance"},
	{from: "ant", to: "ent"},
	{from: "er", to: "or", suffix: true},
	{from: "ise", to: "ize", suffix: true},
	{from: "our", to: "or", suffix: true},
}

type candidate struct {
	word     string
	injected bool
	score    int
}

func (a candidate) less(b candidate) bool {
	if a.injected != b.injected {
		return a.injected
	}
	return a.score < b.score
}

// Suggest returns ranked replacement suggestions for word, best first. The
// result is empty for words without any plausible candidate. Suggestions
// follow the case of word when it is Title-case or all upper case.
func (c *Checker) Suggest(word string) []string {
	lower := strings.ToLower(word)
	if lower == "" {
		return nil
	}

	var cands []candidate
	add := func(w string, injected bool, score int) {
		if w != lower {
			cands = append(cands, candidate{word: w, injected: injected, score: score})
		}
	}

	for _, w := range c.letterSwapCandidates(lower) {
		add(w, true, scoreLetterSwap)
	}
	for _, w := range c.rewriteCandidates(lower, digraphRewrites) {
		add(w, true, scoreDigraph)
	}
	for _, w := range c.rewriteCandidates(lower, suffixRewrites) {
		add(w, true, scoreSuffix)
	}

	threshold := distanceThreshold(len(lower))
	soundex := phonetic.Soundex(lower)
	key := phonetic.Key(lower)
	c.dict.withinLength(len(lower), lengthWindow, func(entry string) {
		d := phonetic.Distance(lower, entry)
		if d > threshold {
			return
		}
		add(entry, false, rankScore(lower, entry, d, soundex, key))
	})

	best := make(map[string]int, len(cands))
	var unique []candidate
	for _, cand := range cands {
		i, seen := best[cand.word]
		if !seen {
			best[cand.word] = len(unique)
			unique = append(unique, cand)
			continue
		}
		if cand.less(unique[i]) {
			unique[i] = cand
		}
	}

	slices.SortStableFunc(unique, func(a, b candidate) int {
		switch {
		case a.less(b):
			return -1
		case b.less(a):
			return 1
		}
		return 0
	})
	if len(unique) > c.maxSuggestions {
		unique = unique[:c.maxSuggestions]
	}

	out := make([]string, len(unique))
	for i, cand := range unique {
		out[i] = matchCase(word, cand.word)
	}
	return out
}

// distanceThreshold is the largest edit distance accepted for a word of
// length n.
func distanceThreshold(n int) int {
	switch {
	case n <= 4:
		return 1
	case n <= 6:
		return 2
	default:
		return 3
	}
}

func rankScore(word, entry string, distance int, soundex, key string) int {
	score := distance * 10
	if soundex != "" && soundex == phonetic.Soundex(entry) {
		score -= 5
	}
	if key != "" && key == phonetic.Key(entry) {
		score -= 5
	}
	if word[0] == entry[0] {
		score -= 3
	}
	if len(word) >= 2 && len(entry) >= 2 && word[len(word)-2:] == entry[len(entry)-2:] {
		score -= 2
	}
	return score
}

func (c *Checker) letterSwapCandidates(word string) []string {
	var out []string
	buf := []byte(word)
	for i := range buf {
		orig := buf[i]
		for _, pair := range letterSwaps {
			for _, dir := range [2][2]byte{pair, {pair[1], pair[0]}} {
				if orig != dir[0] {
					continue
				}
				buf[i] = dir[1]
				if w := string(buf); c.dict.has(w) {
					out = append(out, w)
				}
			}
		}
		buf[i] = orig
	}
	return out
}

func (c *Checker) rewriteCandidates(word string, table []rewrite) []string {
	var out []string
	try := func(w string) {
		if w != word && c.dict.has(w) {
			out = append(out, w)
		}
	}
	for _, rw := range table {
		for _, dir := range [2][2]string{{rw.from, rw.to}, {rw.to, rw.from}} {
			from, to := dir[0], dir[1]
			if rw.suffix {
				if stem, ok := strings.CutSuffix(word, from); ok {
					try(stem + to)
				}
				continue
			}
			for i := 0; ; {
				j := strings.Index(word[i:], from)
				if j < 0 {
					break
				}
				at := i + j
				try(word[:at] + to + word[at+len(from):])
				i = at + 1
			}
			try(strings.ReplaceAll(word, from, to))
		}
	}
	return out
}

// matchCase copies the capitalisation pattern of orig onto the lowercase
// suggestion s.
func matchCase(orig, s string) string {
	switch {
	case len(orig) > 1 && strings.ToUpper(orig) == orig && strings.ToLower(orig) != orig:
		return strings.ToUpper(s)
	case orig != "" && orig[0] >= 'A' && orig[0] <= 'Z':
		return strings.ToUpper(s[:1]) + s[1:]
	}
	return s
}
