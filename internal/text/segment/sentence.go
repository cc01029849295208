package segment

import "strings"

// abbreviations are tokens whose trailing period does not end a sentence.
// Entries are lowercase and stored without the final period.
var abbreviations = map[string]struct{}{
	"mr": {}, "mrs": {}, "ms": {}, "dr": {}, "prof": {}, "sr": {}, "jr": {},
	"vs": {}, "etc": {}, "inc": {}, "ltd": {}, "st": {}, "ave": {}, "blvd": {},
	"rd": {}, "jan": {}, "feb": {}, "mar": {}, "apr": {}, "jun": {}, "jul": {},
	"aug": {}, "sep": {}, "sept": {}, "oct": {}, "nov": {}, "dec": {},
	"i.e": {}, "e.g": {}, "cf": {}, "al": {}, "no": {},
}

// IsAbbreviation reports whether token (with or without a trailing period)
// is a known abbreviation. The comparison is case-insensitive.
func IsAbbreviation(token string) bool {
	token = strings.TrimSuffix(strings.ToLower(token), ".")
	_, ok := abbreviations[token]
	return ok
}

type span struct {
	start, end int
}

// splitSentences returns the sentence spans of an already normalized text.
// A run of '.', '!' and '?' closes a sentence unless the first '.' belongs to
// an abbreviation or sits between two digits. Whitespace between sentences
// belongs to neither span. Trailing text without terminal punctuation forms
// the final sentence.
func splitSentences(text string) []span {
	var spans []span

	start := skipSpace(text, 0)
	i := start
	for i < len(text) {
		c := text[i]
		if !isTerminal(c) {
			i++
			continue
		}
		if c == '.' && (followsAbbreviation(text, i) || isDecimalPoint(text, i)) {
			i++
			continue
		}

		j := i
		for j < len(text) && isTerminal(text[j]) {
			j++
		}
		spans = append(spans, span{start: start, end: j})
		start = skipSpace(text, j)
		i = start
	}

	if start < len(text) {
		end := len(text)
		for end > start && isSpace(text[end-1]) {
			end--
		}
		if end > start {
			spans = append(spans, span{start: start, end: end})
		}
	}
	return spans
}

// followsAbbreviation reports whether the period at text[dot] terminates an
// abbreviation. Dotted forms such as "e.g." are recognised at both periods
// by extending the token forward over a following letter run.
func followsAbbreviation(text string, dot int) bool {
	k := dot
	for k > 0 && (isLetter(text[k-1]) || text[k-1] == '.') {
		k--
	}
	token := strings.TrimLeft(text[k:dot], ".")
	if token == "" {
		return false
	}
	if IsAbbreviation(token) {
		return true
	}

	f := dot + 1
	for f < len(text) && isLetter(text[f]) {
		f++
	}
	if f > dot+1 {
		return IsAbbreviation(token + "." + text[dot+1:f])
	}
	return false
}

func isDecimalPoint(text string, dot int) bool {
	return dot > 0 && dot+1 < len(text) && isDigit(text[dot-1]) && isDigit(text[dot+1])
}

func skipSpace(text string, i int) int {
	for i < len(text) && isSpace(text[i]) {
		i++
	}
	return i
}

func isTerminal(c byte) bool { return c == '.' || c == '!' || c == '?' }
func isSpace(c byte) bool    { return c == ' ' || c == '\n' }
func isDigit(c byte) bool    { return c >= '0' && c <= '9' }

func isLetter(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}
