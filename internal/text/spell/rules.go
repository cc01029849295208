package spell

import "strings"

// suffixes are tried in this order when reducing an inflected word to a
// dictionary stem.
var suffixes = []string{
	"ness", "ment", "tion", "sion", "less", "ing", "est", "ful",
	"ed", "er", "ly", "es", "s",
}

// contractionSuffixes may follow any known word ("John'll", "dog'd").
var contractionSuffixes = []string{"'ll", "'ve", "'re", "'d", "n't"}

// maxStripDepth bounds how many suffixes are removed in a row, enough for
// "carefully" -> "careful" -> "care".
const maxStripDepth = 2

// accepts applies the acceptance rules to one token. Every sentence starts
// with a capital, so at sentenceInitial a capitalised unknown word only
// passes as a proper noun when it is not one edit away from a dictionary
// word ("John" passes, "Ths" does not).
func (c *Checker) accepts(word string, sentenceInitial bool) bool {
	if len(word) <= 1 {
		return true
	}
	if isNumeric(word) || isOrdinal(word) {
		return true
	}

	lower := strings.ToLower(word)
	if c.known(lower) {
		return true
	}
	if base, ok := strings.CutSuffix(lower, "'s"); ok && c.known(base) {
		return true
	}
	for _, suf := range contractionSuffixes {
		if base, ok := strings.CutSuffix(lower, suf); ok && base != "" && c.known(base) {
			return true
		}
	}

	if name := strings.TrimSuffix(word, "'s"); looksLikeProperNoun(word) || looksLikeProperNoun(name) {
		if !sentenceInitial || !c.nearKnown(strings.ToLower(name)) {
			return true
		}
	}

	if strings.Contains(word, "-") {
		for part := range strings.SplitSeq(word, "-") {
			if part == "" || !c.accepts(part, false) {
				return false
			}
		}
		return true
	}
	return false
}

// known reports whether a lowercase word is in the dictionary directly or
// after suffix stripping.
func (c *Checker) known(lower string) bool {
	return c.dict.has(lower) || c.stripsToKnown(lower, maxStripDepth)
}

func (c *Checker) stripsToKnown(word string, depth int) bool {
	if depth == 0 {
		return false
	}
	for _, suf := range suffixes {
		stem, ok := strings.CutSuffix(word, suf)
		if !ok || len(stem) < 2 {
			continue
		}
		for _, cand := range stemCandidates(stem, suf) {
			if c.dict.has(cand) || c.stripsToKnown(cand, depth-1) {
				return true
			}
		}
	}
	return false
}

// stemCandidates lists the spellings a stem may have had before suffix was
// attached: the bare stem, a restored silent e ("making"), an undoubled
// final consonant ("running"), y turned into i ("happiness") and the usual
// -tion/-sion bases ("creation", "decision").
// nearKnown reports whether a dictionary word is reachable from lower by one
// dropped or extra letter, or by one of the injected rewrites.
func (c *Checker) nearKnown(lower string) bool {
	if len(c.letterSwapCandidates(lower)) > 0 ||
		len(c.rewriteCandidates(lower, digraphRewrites)) > 0 ||
		len(c.rewriteCandidates(lower, suffixRewrites)) > 0 {
		return true
	}
	var near bool
	c.dict.withinLength(len(lower), 1, func(entry string) {
		if !near && oneIndel(lower, entry) {
			near = true
		}
	})
	return near
}

// oneIndel reports whether a and b differ by exactly one inserted letter.
func oneIndel(a, b string) bool {
	if len(a) > len(b) {
		a, b = b, a
	}
	if len(b)-len(a) != 1 {
		return false
	}
	i := 0
	for i < len(a) && a[i] == b[i] {
		i++
	}
	return a[i:] == b[i+1:]
}

func stemCandidates(stem, suffix string) []string {
	cands := []string{stem}
	last := stem[len(stem)-1]

	switch suffix {
	case "ing", "ed", "er", "est":
		cands = append(cands, stem+"e")
		if n := len(stem); n >= 3 && stem[n-1] == stem[n-2] && isConsonant(last) {
			cands = append(cands, stem[:n-1])
		}
	case "tion":
		cands = append(cands, stem+"e", stem+"t", stem+"te")
	case "sion":
		cands = append(cands, stem+"d", stem+"de", stem+"se", stem+"s")
	}

	if last == 'i' {
		switch suffix {
		case "es", "ed", "er", "est", "ness", "ly", "ful", "less", "ment":
			cands = append(cands, stem[:len(stem)-1]+"y")
		}
	}
	return cands
}

func isNumeric(word string) bool {
	for i := 0; i < len(word); i++ {
		if word[i] < '0' || word[i] > '9' {
			return false
		}
	}
	return word != ""
}

// isOrdinal matches "1st", "22nd", "103rd", "4TH".
func isOrdinal(word string) bool {
	if len(word) < 3 {
		return false
	}
	digits, suf := word[:len(word)-2], strings.ToLower(word[len(word)-2:])
	if !isNumeric(digits) {
		return false
	}
	switch suf {
	case "st", "nd", "rd", "th":
		return true
	}
	return false
}

// looksLikeProperNoun reports a capital first letter followed only by
// lowercase letters.
func looksLikeProperNoun(word string) bool {
	if len(word) < 2 || word[0] < 'A' || word[0] > 'Z' {
		return false
	}
	for i := 1; i < len(word); i++ {
		if word[i] < 'a' || word[i] > 'z' {
			return false
		}
	}
	return true
}

func isConsonant(c byte) bool {
	return c >= 'a' && c <= 'z' && !strings.ContainsRune("aeiou", rune(c))
}
