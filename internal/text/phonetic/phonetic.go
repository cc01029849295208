// Package phonetic provides the string-similarity measures used to rank
// spelling suggestions: Levenshtein edit distance, Soundex codes, and a
// simplified Metaphone-style pronunciation key.
//
// Edit distance and Soundex come from github.com/antzucaro/matchr. [Key] is
// a deliberately small pronunciation key rather than full Metaphone: it only
// needs to group common misspellings such as "fone"/"phone" or "tst"/"test".
package phonetic

import (
	"strings"

	"github.com/antzucaro/matchr"
)

// Distance returns the Levenshtein edit distance between a and b.
func Distance(a, b string) int {
	return matchr.Levenshtein(a, b)
}

// Soundex returns the four-character Soundex code of word. Non-letters are
// ignored; a word without letters has the empty code.
func Soundex(word string) string {
	letters := lettersOnly(word)
	if letters == "" {
		return ""
	}
	return matchr.Soundex(letters)
}

// SameSoundex reports whether a and b share a non-empty Soundex code.
func SameSoundex(a, b string) bool {
	ca := Soundex(a)
	return ca != "" && ca == Soundex(b)
}

// digraphs are rewritten left to right before any single-letter rule.
var digraphs = []struct{ from, to string }{
	{"tch", "x"},
	{"sch", "sk"},
	{"ph", "f"},
	{"ck", "k"},
	{"sh", "x"},
	{"ch", "x"},
	{"th", "0"},
	{"wh", "w"},
	{"gh", "g"},
	{"dg", "j"},
	{"qu", "kw"},
}

// Key returns a simplified Metaphone-like pronunciation key for word:
//
//  1. lowercase, letters only;
//  2. silent initial pairs (kn, gn, pn, wr) lose their first letter;
//  3. consonant digraphs are normalized (ph→f, ck→k, sh/ch→x, th→0, …);
//  4. c before e/i/y sounds like s, otherwise like k; x→ks, z→s, q→k;
//  5. vowels (and y) after the first letter are dropped, an initial vowel
//     becomes 'a';
//  6. runs of the same letter collapse to one.
func Key(word string) string {
	w := lettersOnly(strings.ToLower(word))
	if w == "" {
		return ""
	}

	for _, p := range []string{"kn", "gn", "pn", "wr"} {
		if strings.HasPrefix(w, p) {
			w = w[1:]
			break
		}
	}

	var b strings.Builder
	for i := 0; i < len(w); {
		if to, n := matchDigraph(w[i:]); n > 0 {
			b.WriteString(to)
			i += n
			continue
		}
		c := w[i]
		switch c {
		case 'c':
			if i+1 < len(w) && strings.IndexByte("eiy", w[i+1]) >= 0 {
				b.WriteByte('s')
			} else {
				b.WriteByte('k')
			}
		case 'x':
			b.WriteString("ks")
		case 'z':
			b.WriteByte('s')
		case 'q':
			b.WriteByte('k')
		default:
			b.WriteByte(c)
		}
		i++
	}
	spelled := b.String()

	out := make([]byte, 0, len(spelled))
	for i := 0; i < len(spelled); i++ {
		c := spelled[i]
		if isVowel(c) || c == 'y' && i > 0 {
			if i > 0 {
				continue
			}
			c = 'a'
		}
		if len(out) > 0 && out[len(out)-1] == c {
			continue
		}
		out = append(out, c)
	}
	return string(out)
}

// SameKey reports whether a and b share a non-empty pronunciation key.
func SameKey(a, b string) bool {
	ka := Key(a)
	return ka != "" && ka == Key(b)
}

func matchDigraph(s string) (string, int) {
	for _, d := range digraphs {
		if strings.HasPrefix(s, d.from) {
			return d.to, len(d.from)
		}
	}
	return "", 0
}

func isVowel(c byte) bool {
	return strings.IndexByte("aeiou", c) >= 0
}

func lettersOnly(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' {
			return r
		}
		return -1
	}, s)
}
