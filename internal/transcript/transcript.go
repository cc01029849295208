// Package transcript corrects misheard vocabulary in dictated utterances
// before they are appended to a document.
//
// Speech recognisers are good at common English and poor at names and
// course terms: "Okafor" arrives as "okafer", "mitochondria" as "my toe con
// dria". A [Corrector] fixes such spans against the user's vocabulary in two
// ways: exact alias lookup first, then phonetic matching.
//
// Each [Correction] records the method and confidence that produced it, so
// callers can show and roll back substitutions. The spell checker never uses
// this package; only dictation does.
package transcript

import (
	"context"

	"github.com/MrWong99/voxedit/internal/vocab"
)

// Correction methods.
const (
	MethodAlias    = "alias"
	MethodPhonetic = "phonetic"
)

// Correction captures a single substitution.
type Correction struct {
	// Original is the text as dictated.
	Original string `json:"original"`

	// Corrected is the vocabulary term that replaced it.
	Corrected string `json:"corrected"`

	// Confidence is in [0, 1]. Alias hits are always 1.
	Confidence float64 `json:"confidence"`

	// Method is [MethodAlias] or [MethodPhonetic].
	Method string `json:"method"`
}

// Result is the output of [Pipeline.Correct].
type Result struct {
	// Original is the utterance as received.
	Original string `json:"original"`

	// Corrected is the utterance with all substitutions applied.
	Corrected string `json:"corrected"`

	// Corrections lists the substitutions in text order. An empty, non-nil
	// slice means nothing was changed.
	Corrections []Correction `json:"corrections"`
}

// Pipeline corrects utterances against a vocabulary. Implementations must
// be safe for concurrent use.
type Pipeline interface {
	Correct(ctx context.Context, utterance string, terms []vocab.Term) (*Result, error)
}

// PhoneticMatcher resolves a phrase to the most similar entry of terms.
// When matched is false, corrected equals phrase and confidence is 0.
type PhoneticMatcher interface {
	Match(phrase string, terms []string) (corrected string, confidence float64, matched bool)
}
