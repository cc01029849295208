// Package vocab manages the custom vocabulary of a dictation user: names,
// places and course terms that a general English dictionary does not know.
//
// Vocabulary terms serve two purposes. Their words are added to the spell
// checker's dictionary so they are not flagged, and their aliases (the ways
// a speech recogniser tends to mishear them) drive phonetic correction of
// dictated text in the transcript package.
//
// Vocabularies are loaded from YAML files ([LoadFile], [LoadFromReader]) and
// kept in a [Store]. All store operations are safe for concurrent use.
package vocab

import "strings"

// Term is one vocabulary entry.
type Term struct {
	// ID is a unique identifier. Auto-generated if empty on Add.
	ID string `yaml:"id,omitempty" json:"id"`

	// Term is the canonical spelling, e.g. "Mitochondria".
	Term string `yaml:"term" json:"term"`

	// Kind classifies the term. Empty means [KindTerm].
	Kind Kind `yaml:"kind,omitempty" json:"kind,omitempty"`

	// Aliases are known mis-transcriptions of the term, e.g. "my toe
	// con dria". They are never added to the dictionary.
	Aliases []string `yaml:"aliases,omitempty" json:"aliases,omitempty"`

	// Tags are searchable labels such as a course name.
	Tags []string `yaml:"tags,omitempty" json:"tags,omitempty"`
}

// Kind classifies a vocabulary [Term].
type Kind string

const (
	// KindTerm is a subject-specific word or phrase.
	KindTerm Kind = "term"

	// KindPerson is a person's name.
	KindPerson Kind = "person"

	// KindPlace is a geographic name.
	KindPlace Kind = "place"

	// KindOrganization is a company, school or other organisation.
	KindOrganization Kind = "organization"
)

// IsValid reports whether k is a recognised kind. The empty kind is valid
// and means [KindTerm].
func (k Kind) IsValid() bool {
	switch k {
	case "", KindTerm, KindPerson, KindPlace, KindOrganization:
		return true
	}
	return false
}

// DictionaryWords returns the lowercase words that make up the canonical
// spellings of terms, split on whitespace and hyphens. Aliases are
// deliberately left out: they are misspellings.
func DictionaryWords(terms []Term) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, t := range terms {
		fields := strings.FieldsFunc(t.Term, func(r rune) bool {
			return r == ' ' || r == '-' || r == '\t'
		})
		for _, f := range fields {
			w := strings.ToLower(strings.Trim(f, ".,;:!?\"()"))
			if w == "" {
				continue
			}
			if _, ok := seen[w]; ok {
				continue
			}
			seen[w] = struct{}{}
			out = append(out, w)
		}
	}
	return out
}
