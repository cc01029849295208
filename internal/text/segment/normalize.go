package segment

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Normalize prepares raw transcribed text for segmentation:
//
//   - zero-width characters (U+200B–U+200D, U+FEFF) are removed,
//   - control characters other than whitespace are removed,
//   - every run of whitespace that is not a newline becomes one space,
//   - newlines are kept as they are,
//   - the result is composed to Unicode NFC.
//
// Normalize is a fixed point: Normalize(Normalize(s)) == Normalize(s).
// Control characters are dropped before whitespace is collapsed so that a
// control character sitting between two spaces cannot leave a double space
// behind.
func Normalize(text string) string {
	var b strings.Builder
	b.Grow(len(text))

	pendingSpace := false
	flush := func() {
		if pendingSpace {
			b.WriteByte(' ')
			pendingSpace = false
		}
	}

	for _, r := range text {
		switch {
		case isZeroWidth(r):
		case r == '\n':
			flush()
			b.WriteByte('\n')
		case unicode.IsSpace(r):
			pendingSpace = true
		case isStrippedControl(r):
		default:
			flush()
			b.WriteRune(r)
		}
	}
	flush()

	return norm.NFC.String(b.String())
}

func isZeroWidth(r rune) bool {
	return r >= 0x200B && r <= 0x200D || r == 0xFEFF
}

// isStrippedControl reports the C0 controls and DEL that carry no
// whitespace meaning (0x00–0x08, 0x0E–0x1F, 0x7F), plus any other Unicode
// control character. Tab, CR, VT and FF are whitespace and get collapsed.
func isStrippedControl(r rune) bool {
	switch {
	case r <= 0x08, r >= 0x0E && r <= 0x1F, r == 0x7F:
		return true
	}
	return unicode.IsControl(r)
}
