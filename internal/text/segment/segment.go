// Package segment splits dictated text into sentences and words.
//
// Every offset produced by this package is a byte offset into the
// normalized form of the input (see [Normalize]), which is returned as
// [SegmentedText.OriginalText]. Words only ever contain ASCII letters,
// digits, apostrophes and hyphens, so for word spans byte offsets and
// character offsets coincide.
//
// Segmentation is a pure function: identical input always yields identical
// output and no state is kept between calls. Callers recompute the
// segmentation after every edit rather than patching a previous result.
package segment

import "strings"

// Word is a single token of the normalized text.
type Word struct {
	// Word is the token text, exactly OriginalText[CharStart:CharEnd].
	Word string `json:"word"`

	// CharStart is the inclusive start offset.
	CharStart int `json:"charStart"`

	// CharEnd is the exclusive end offset. Always greater than CharStart.
	CharEnd int `json:"charEnd"`

	// WordIndex is the 0-based position of the word in the whole document.
	WordIndex int `json:"wordIndex"`

	// SentenceID is the ID of the [Sentence] that owns the word.
	SentenceID int `json:"sentenceId"`
}

// Sentence is a contiguous span of the normalized text ending in terminal
// punctuation, or the trailing text of a document still being dictated.
type Sentence struct {
	SentenceID    int    `json:"sentenceId"`
	SentenceStart int    `json:"sentenceStart"`
	SentenceEnd   int    `json:"sentenceEnd"`
	Text          string `json:"text"`
	Words         []Word `json:"words"`
}

// SegmentedText is the immutable result of [Segment].
type SegmentedText struct {
	Sentences []Sentence `json:"sentences"`
	AllWords  []Word     `json:"allWords"`

	// OriginalText is the normalized text all offsets refer to. It is not
	// necessarily byte-identical to the string passed to [Segment].
	OriginalText string `json:"originalText"`
}

// Segment normalizes text and splits it into sentences and words.
//
// Empty or whitespace-only input yields a SegmentedText with no sentences,
// no words and an empty OriginalText.
func Segment(text string) SegmentedText {
	normalized := Normalize(text)
	if strings.TrimSpace(normalized) == "" {
		return SegmentedText{
			Sentences: []Sentence{},
			AllWords:  []Word{},
		}
	}

	spans := splitSentences(normalized)
	st := SegmentedText{
		Sentences:    make([]Sentence, 0, len(spans)),
		AllWords:     []Word{},
		OriginalText: normalized,
	}

	nextIndex := 0
	for id, sp := range spans {
		words := tokenize(normalized, sp.start, sp.end, id, nextIndex)
		nextIndex += len(words)
		st.Sentences = append(st.Sentences, Sentence{
			SentenceID:    id,
			SentenceStart: sp.start,
			SentenceEnd:   sp.end,
			Text:          normalized[sp.start:sp.end],
			Words:         words,
		})
		st.AllWords = append(st.AllWords, words...)
	}
	return st
}

// WordCount returns the number of words in the document.
func (st SegmentedText) WordCount() int {
	return len(st.AllWords)
}

// SentenceCount returns the number of sentences in the document.
func (st SegmentedText) SentenceCount() int {
	return len(st.Sentences)
}

// LastSentence returns the final sentence of the document. ok is false for
// an empty document.
func (st SegmentedText) LastSentence() (s Sentence, ok bool) {
	if len(st.Sentences) == 0 {
		return Sentence{}, false
	}
	return st.Sentences[len(st.Sentences)-1], true
}

// SentenceAt returns the sentence whose span contains offset.
func (st SegmentedText) SentenceAt(offset int) (Sentence, bool) {
	for _, s := range st.Sentences {
		if offset >= s.SentenceStart && offset < s.SentenceEnd {
			return s, true
		}
	}
	return Sentence{}, false
}

// WordAt returns the word whose span contains offset.
func (st SegmentedText) WordAt(offset int) (Word, bool) {
	for _, w := range st.AllWords {
		if offset >= w.CharStart && offset < w.CharEnd {
			return w, true
		}
	}
	return Word{}, false
}

// tokenize scans text[start:end] for words. A word is a run of ASCII
// letters or digits, optionally joined to further runs by a single
// apostrophe or hyphen ("don't", "well-known").
func tokenize(text string, start, end, sentenceID, firstIndex int) []Word {
	words := []Word{}
	i := start
	for i < end {
		if !isAlnum(text[i]) {
			i++
			continue
		}
		j := i
		for {
			for j < end && isAlnum(text[j]) {
				j++
			}
			if j+1 < end && isJoiner(text[j]) && isAlnum(text[j+1]) {
				j++
				continue
			}
			break
		}
		words = append(words, Word{
			Word:       text[i:j],
			CharStart:  i,
			CharEnd:    j,
			WordIndex:  firstIndex + len(words),
			SentenceID: sentenceID,
		})
		i = j
	}
	return words
}

func isAlnum(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9'
}

func isJoiner(c byte) bool {
	return c == '\'' || c == '-'
}
