package document

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/MrWong99/voxedit/internal/config"
	"github.com/MrWong99/voxedit/internal/observe"
	"github.com/MrWong99/voxedit/internal/text/grammar"
	"github.com/MrWong99/voxedit/internal/text/spell"
	"github.com/MrWong99/voxedit/internal/transcript"
	"github.com/MrWong99/voxedit/internal/transcript/phonetic"
	"github.com/MrWong99/voxedit/internal/vocab"
	"github.com/MrWong99/voxedit/internal/voicecmd"
)

// Toolkit bundles the read-only components every session shares. A
// [Manager] swaps the whole toolkit atomically when configuration or
// vocabulary change, so sessions never observe a half-updated set.
type Toolkit struct {
	Analyzer *Analyzer
	Parser   *voicecmd.Parser

	// Corrector rewrites final dictation toward Terms. Nil disables
	// correction.
	Corrector transcript.Pipeline
	Terms     []vocab.Term
}

// BuildToolkit assembles a toolkit from cfg. Dictionary files named in cfg
// are read from disk; terms join the spell dictionary and, when
// cfg.Vocabulary.CorrectDictation is set, drive dictation correction.
func BuildToolkit(cfg *config.Config, terms []vocab.Term, m *observe.Metrics) (*Toolkit, error) {
	spellOpts := []spell.Option{spell.WithMaxSuggestions(cfg.Spell.MaxSuggestions)}
	for _, path := range cfg.Spell.DictionaryFiles {
		words, err := spell.LoadWordFile(path)
		if err != nil {
			return nil, fmt.Errorf("document: dictionary %q: %w", path, err)
		}
		spellOpts = append(spellOpts, spell.WithExtraWords(words...))
	}
	if len(terms) > 0 {
		spellOpts = append(spellOpts, spell.WithExtraWords(vocab.DictionaryWords(terms)...))
	}
	sc := spell.New(spellOpts...)
	gc := grammar.New(grammar.WithUnterminatedCheck(cfg.Grammar.FlagUnterminated))

	var analyzerOpts []AnalyzerOption
	if m != nil {
		analyzerOpts = append(analyzerOpts, WithMetrics(m))
	}

	kit := &Toolkit{
		Analyzer: NewAnalyzer(sc, gc, analyzerOpts...),
		Parser:   voicecmd.NewParser(),
		Terms:    terms,
	}
	if cfg.Vocabulary.CorrectDictation && len(terms) > 0 {
		kit.Corrector = transcript.NewCorrector(
			transcript.WithPhoneticMatcher(phonetic.New(
				phonetic.WithPhoneticThreshold(cfg.Vocabulary.PhoneticThreshold),
				phonetic.WithFuzzyThreshold(cfg.Vocabulary.FuzzyThreshold),
			)),
			transcript.WithKnownWords(func(w string) bool {
				return sc.CheckWord(strings.ToLower(w))
			}),
		)
	}

	slog.Debug("document: toolkit built",
		"dictionary_size", sc.DictionarySize(),
		"terms", len(terms),
		"correct_dictation", kit.Corrector != nil,
	)
	return kit, nil
}

// DefaultToolkit returns a toolkit with default settings and no vocabulary.
func DefaultToolkit() *Toolkit {
	return &Toolkit{
		Analyzer: NewAnalyzer(nil, nil),
		Parser:   voicecmd.NewParser(),
	}
}
