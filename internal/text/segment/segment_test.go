package segment_test

import (
	"strings"
	"testing"

	"github.com/MrWong99/voxedit/internal/text/segment"
)

// corpus is shared by the invariant tests below.
var corpus = []string{
	"",
	"   \t  ",
	"hello world",
	"Hello world. This is fine.",
	"Dr. Smith went to Washington. He arrived at 3.30 p.m. on Friday!",
	"Wait... what?! Really?",
	"I don't think it's well-known. Is it?",
	"mid dictation without punctuation",
	"Line one.\nLine two.\n\nLine three",
	"tabs\tand odd   spacing\u200b here.\x01 Done.",
	"e.g. this should stay together. i.e. so should this.",
	"Trailing space after end.   ",
	"Numbers like 1st and 42 count too.",
	"Ms. Jones vs. Mr. Brown, etc. are in the no. 5 slot.",
}

func TestSegment_Empty(t *testing.T) {
	t.Parallel()

	for _, in := range []string{"", "   ", "\t\u200b\n  "} {
		st := segment.Segment(in)
		if st.OriginalText != "" {
			t.Errorf("Segment(%q).OriginalText = %q, want empty", in, st.OriginalText)
		}
		if len(st.Sentences) != 0 || len(st.AllWords) != 0 {
			t.Errorf("Segment(%q): got %d sentences, %d words, want none", in, len(st.Sentences), len(st.AllWords))
		}
	}
}

func TestSegment_NoTerminalPunctuationIsOneSentence(t *testing.T) {
	t.Parallel()

	st := segment.Segment("this is still being dictated")
	if got := st.SentenceCount(); got != 1 {
		t.Fatalf("SentenceCount = %d, want 1", got)
	}
	s := st.Sentences[0]
	if s.Text != "this is still being dictated" {
		t.Errorf("sentence text = %q", s.Text)
	}
	if got := st.WordCount(); got != 5 {
		t.Errorf("WordCount = %d, want 5", got)
	}
}

func TestSegment_SentenceBoundaries(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want []string
	}{
		{
			name: "two sentences",
			in:   "Hello world. This is fine.",
			want: []string{"Hello world.", "This is fine."},
		},
		{
			name: "abbreviations do not split",
			in:   "Dr. Smith met Mrs. Jones. They talked.",
			want: []string{"Dr. Smith met Mrs. Jones.", "They talked."},
		},
		{
			name: "consecutive terminal punctuation is one boundary",
			in:   "Wait... what?! Really?",
			want: []string{"Wait...", "what?!", "Really?"},
		},
		{
			name: "dotted abbreviations",
			in:   "Use a tool e.g. a hammer. Done.",
			want: []string{"Use a tool e.g. a hammer.", "Done."},
		},
		{
			name: "decimal numbers",
			in:   "It costs 3.50 today. Cheap.",
			want: []string{"It costs 3.50 today.", "Cheap."},
		},
		{
			name: "trailing fragment",
			in:   "First one. second one is still",
			want: []string{"First one.", "second one is still"},
		},
		{
			name: "trailing whitespace excluded",
			in:   "End.   ",
			want: []string{"End."},
		},
		{
			name: "case-insensitive abbreviation",
			in:   "See ETC. for details.",
			want: []string{"See ETC. for details."},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			st := segment.Segment(tc.in)
			var got []string
			for _, s := range st.Sentences {
				got = append(got, s.Text)
			}
			if strings.Join(got, "|") != strings.Join(tc.want, "|") {
				t.Errorf("sentences = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestSegment_Words(t *testing.T) {
	t.Parallel()

	st := segment.Segment("I don't think well-known words--or 'quotes'--split. Ok?")
	var got []string
	for _, w := range st.AllWords {
		got = append(got, w.Word)
	}
	want := []string{"I", "don't", "think", "well-known", "words", "or", "quotes", "split", "Ok"}
	if strings.Join(got, " ") != strings.Join(want, " ") {
		t.Fatalf("words = %q, want %q", got, want)
	}

	last := st.AllWords[len(st.AllWords)-1]
	if last.SentenceID != 1 {
		t.Errorf("last word SentenceID = %d, want 1", last.SentenceID)
	}
}

func TestNormalize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in, want string
	}{
		{"a  b", "a b"},
		{"a\t\tb", "a b"},
		{"a\u200bb", "ab"},
		{"\ufeffstart", "start"},
		{"a \x01 b", "a b"},
		{"keep\nnewlines\n\nhere", "keep\nnewlines\n\nhere"},
		{"a \n b", "a \n b"},
		{"del\x7fete", "delete"},
		{"café", "café"},
	}
	for _, tc := range tests {
		if got := segment.Normalize(tc.in); got != tc.want {
			t.Errorf("Normalize(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestSegment_NormalizationIsFixedPoint(t *testing.T) {
	t.Parallel()

	for _, in := range corpus {
		first := segment.Segment(in).OriginalText
		second := segment.Segment(first).OriginalText
		if first != second {
			t.Errorf("normalization not idempotent for %q: %q then %q", in, first, second)
		}
	}
}

func TestSegment_OffsetInvariant(t *testing.T) {
	t.Parallel()

	for _, in := range corpus {
		st := segment.Segment(in)
		for _, w := range st.AllWords {
			if w.CharStart < 0 || w.CharStart >= w.CharEnd || w.CharEnd > len(st.OriginalText) {
				t.Errorf("%q: word %+v has invalid span", in, w)
				continue
			}
			if got := st.OriginalText[w.CharStart:w.CharEnd]; got != w.Word {
				t.Errorf("%q: slice(%d,%d) = %q, want %q", in, w.CharStart, w.CharEnd, got, w.Word)
			}
		}
	}
}

func TestSegment_SentenceCoverage(t *testing.T) {
	t.Parallel()

	for _, in := range corpus {
		st := segment.Segment(in)
		prevEnd := 0
		for i, s := range st.Sentences {
			if s.SentenceID != i {
				t.Errorf("%q: sentence %d has id %d", in, i, s.SentenceID)
			}
			if s.SentenceStart < prevEnd {
				t.Errorf("%q: sentence %d overlaps previous (start %d < %d)", in, i, s.SentenceStart, prevEnd)
			}
			if s.SentenceEnd <= s.SentenceStart {
				t.Errorf("%q: sentence %d is empty", in, i)
			}
			if gap := st.OriginalText[prevEnd:s.SentenceStart]; strings.TrimSpace(gap) != "" {
				t.Errorf("%q: non-whitespace %q between sentences", in, gap)
			}
			for _, w := range s.Words {
				if w.SentenceID != s.SentenceID {
					t.Errorf("%q: word %q tagged %d inside sentence %d", in, w.Word, w.SentenceID, s.SentenceID)
				}
				if w.CharStart < s.SentenceStart || w.CharEnd > s.SentenceEnd {
					t.Errorf("%q: word %q outside its sentence", in, w.Word)
				}
			}
			prevEnd = s.SentenceEnd
		}
		if rest := st.OriginalText[prevEnd:]; strings.TrimSpace(rest) != "" {
			t.Errorf("%q: text %q not covered by any sentence", in, rest)
		}
	}
}

func TestSegment_WordOrdering(t *testing.T) {
	t.Parallel()

	for _, in := range corpus {
		st := segment.Segment(in)
		for i, w := range st.AllWords {
			if w.WordIndex != i {
				t.Errorf("%q: AllWords[%d].WordIndex = %d", in, i, w.WordIndex)
			}
			if i > 0 && w.CharStart < st.AllWords[i-1].CharEnd {
				t.Errorf("%q: word %d starts before previous word ends", in, i)
			}
		}
	}
}

func TestSegment_Deterministic(t *testing.T) {
	t.Parallel()

	in := corpus[4]
	a, b := segment.Segment(in), segment.Segment(in)
	if len(a.AllWords) != len(b.AllWords) || a.OriginalText != b.OriginalText {
		t.Fatal("Segment is not deterministic")
	}
	for i := range a.AllWords {
		if a.AllWords[i] != b.AllWords[i] {
			t.Fatalf("word %d differs: %+v vs %+v", i, a.AllWords[i], b.AllWords[i])
		}
	}
}

func TestSegmentedText_Lookups(t *testing.T) {
	t.Parallel()

	st := segment.Segment("One two. Three four.")
	last, ok := st.LastSentence()
	if !ok || last.Text != "Three four." {
		t.Fatalf("LastSentence = %q, %v", last.Text, ok)
	}
	s, ok := st.SentenceAt(2)
	if !ok || s.SentenceID != 0 {
		t.Errorf("SentenceAt(2) = %+v, %v; want sentence 0", s, ok)
	}
	if _, ok := st.SentenceAt(8); ok {
		t.Error("SentenceAt(8) should fall between sentences")
	}
	w, ok := st.WordAt(10)
	if !ok || w.Word != "Three" {
		t.Errorf("WordAt(10) = %q, %v; want Three", w.Word, ok)
	}
	if _, ok := segment.Segment("").LastSentence(); ok {
		t.Error("LastSentence on empty text should report false")
	}
}

func TestIsAbbreviation(t *testing.T) {
	t.Parallel()

	for _, tok := range []string{"Dr", "dr.", "E.G", "i.e.", "Sept", "NO"} {
		if !segment.IsAbbreviation(tok) {
			t.Errorf("IsAbbreviation(%q) = false, want true", tok)
		}
	}
	for _, tok := range []string{"doctor", "eg", "x"} {
		if segment.IsAbbreviation(tok) {
			t.Errorf("IsAbbreviation(%q) = true, want false", tok)
		}
	}
}
