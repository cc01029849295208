package transcript_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/MrWong99/voxedit/internal/transcript"
	"github.com/MrWong99/voxedit/internal/transcript/phonetic"
	"github.com/MrWong99/voxedit/internal/vocab"
)

var biology = []vocab.Term{
	{Term: "Mitochondria", Aliases: []string{"my toe con dria"}},
	{Term: "Okafor", Kind: vocab.KindPerson},
	{Term: "endoplasmic reticulum"},
}

// knownWords stands in for a dictionary lookup.
func knownWords(w string) bool {
	switch strings.ToLower(w) {
	case "the", "is", "my", "toe", "con", "professor", "said", "hello", "and":
		return true
	}
	return false
}

func TestCorrector_Alias(t *testing.T) {
	t.Parallel()

	c := transcript.NewCorrector()
	res, err := c.Correct(context.Background(), "the my toe con dria is big.", biology)
	if err != nil {
		t.Fatalf("Correct: %v", err)
	}
	if res.Corrected != "the Mitochondria is big." {
		t.Errorf("Corrected = %q", res.Corrected)
	}
	if len(res.Corrections) != 1 {
		t.Fatalf("Corrections = %+v, want 1", res.Corrections)
	}
	got := res.Corrections[0]
	if got.Original != "my toe con dria" || got.Corrected != "Mitochondria" || got.Method != transcript.MethodAlias || got.Confidence != 1 {
		t.Errorf("correction = %+v", got)
	}
}

func TestCorrector_Phonetic(t *testing.T) {
	t.Parallel()

	c := transcript.NewCorrector(
		transcript.WithPhoneticMatcher(phonetic.New()),
		transcript.WithKnownWords(knownWords),
	)
	res, err := c.Correct(context.Background(), "Professor okafer said hello.", biology)
	if err != nil {
		t.Fatalf("Correct: %v", err)
	}
	if res.Corrected != "Professor Okafor said hello." {
		t.Errorf("Corrected = %q", res.Corrected)
	}
	if len(res.Corrections) != 1 || res.Corrections[0].Method != transcript.MethodPhonetic {
		t.Errorf("Corrections = %+v", res.Corrections)
	}
}

func TestCorrector_KeepsPunctuation(t *testing.T) {
	t.Parallel()

	c := transcript.NewCorrector(transcript.WithPhoneticMatcher(phonetic.New()), transcript.WithKnownWords(knownWords))
	res, err := c.Correct(context.Background(), `"okafer," and the end`, biology)
	if err != nil {
		t.Fatal(err)
	}
	if res.Corrected != `"Okafor," and the end` {
		t.Errorf("Corrected = %q", res.Corrected)
	}
}

func TestCorrector_NoChange(t *testing.T) {
	t.Parallel()

	c := transcript.NewCorrector(transcript.WithPhoneticMatcher(phonetic.New()), transcript.WithKnownWords(knownWords))
	in := "hello   the  is"
	res, err := c.Correct(context.Background(), in, biology)
	if err != nil {
		t.Fatal(err)
	}
	if res.Corrected != in {
		t.Errorf("unchanged text rewritten to %q", res.Corrected)
	}
	if res.Corrections == nil || len(res.Corrections) != 0 {
		t.Errorf("Corrections = %#v, want empty non-nil", res.Corrections)
	}

	res, err = c.Correct(context.Background(), "okafer", nil)
	if err != nil || res.Corrected != "okafer" {
		t.Errorf("no vocabulary: %q, %v", res.Corrected, err)
	}
}

func TestCorrector_AliasNeedsWholeWindow(t *testing.T) {
	t.Parallel()

	c := transcript.NewCorrector()
	// A sentence break inside the alias prevents the substitution.
	res, err := c.Correct(context.Background(), "my toe. con dria", biology)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Corrections) != 0 {
		t.Errorf("Corrections = %+v, want none", res.Corrections)
	}
}

func TestCorrector_Canceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := transcript.NewCorrector().Correct(ctx, "some words here", biology)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

type stubMatcher struct{}

func (stubMatcher) Match(phrase string, terms []string) (string, float64, bool) {
	if phrase == "zork" {
		return terms[0], 0.9, true
	}
	return phrase, 0, false
}

func TestCorrector_CustomMatcher(t *testing.T) {
	t.Parallel()

	c := transcript.NewCorrector(transcript.WithPhoneticMatcher(stubMatcher{}))
	res, err := c.Correct(context.Background(), "a zork b", biology)
	if err != nil {
		t.Fatal(err)
	}
	if res.Corrected != "a Mitochondria b" {
		t.Errorf("Corrected = %q", res.Corrected)
	}
}
