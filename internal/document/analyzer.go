package document

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/MrWong99/voxedit/internal/observe"
	"github.com/MrWong99/voxedit/internal/text/grammar"
	"github.com/MrWong99/voxedit/internal/text/segment"
	"github.com/MrWong99/voxedit/internal/text/spell"
)

// Analysis is the full text analysis of one document state. All offsets
// refer to Segmented.OriginalText.
type Analysis struct {
	Segmented     segment.SegmentedText `json:"segmented"`
	Spelling      spell.Result          `json:"spelling"`
	Grammar       grammar.Result        `json:"grammar"`
	WordCount     int                   `json:"wordCount"`
	SentenceCount int                   `json:"sentenceCount"`

	// Duration is the wall time the analysis took.
	Duration time.Duration `json:"-"`
}

// AnalyzerOption configures an [Analyzer].
type AnalyzerOption func(*Analyzer)

// WithMetrics records analysis latencies and error counts on m.
func WithMetrics(m *observe.Metrics) AnalyzerOption {
	return func(a *Analyzer) {
		a.metrics = m
	}
}

// Analyzer segments a document and runs the spell and grammar checkers over
// it. It is read-only after construction and safe for concurrent use.
type Analyzer struct {
	spell   *spell.Checker
	grammar *grammar.Checker
	metrics *observe.Metrics
}

// NewAnalyzer returns an Analyzer using the given checkers. Nil checkers are
// replaced by ones with default settings.
func NewAnalyzer(sc *spell.Checker, gc *grammar.Checker, opts ...AnalyzerOption) *Analyzer {
	if sc == nil {
		sc = spell.New()
	}
	if gc == nil {
		gc = grammar.New()
	}
	a := &Analyzer{spell: sc, grammar: gc}
	for _, o := range opts {
		o(a)
	}
	return a
}

// Spell returns the spell checker used by a.
func (a *Analyzer) Spell() *spell.Checker { return a.spell }

// Analyze segments text, then spell checks and grammar checks the result
// concurrently. ignored may be nil. final marks the document as complete so
// that the last sentence is held to the same rules as the others.
func (a *Analyzer) Analyze(ctx context.Context, text string, ignored *spell.Session, final bool) (*Analysis, error) {
	ctx, span := observe.StartSpan(ctx, "document.Analyze")
	defer span.End()

	start := time.Now()
	st := segment.Segment(text)
	if a.metrics != nil {
		observe.ObserveSince(ctx, a.metrics.SegmentDuration, start)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("document: analyze: %w", err)
	}

	var (
		spelling spell.Result
		gram     grammar.Result
	)
	eg, egCtx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		began := time.Now()
		spelling = a.spell.Check(st, ignored)
		if a.metrics != nil {
			observe.ObserveSince(egCtx, a.metrics.SpellDuration, began)
			a.metrics.RecordSpellingErrors(egCtx, len(spelling.Errors))
		}
		return nil
	})

	eg.Go(func() error {
		began := time.Now()
		if final {
			gram = a.grammar.CheckFinal(st)
		} else {
			gram = a.grammar.Check(st)
		}
		if a.metrics != nil {
			observe.ObserveSince(egCtx, a.metrics.GrammarDuration, began)
			for _, e := range gram.Errors {
				a.metrics.RecordGrammarError(egCtx, string(e.Type))
			}
		}
		return nil
	})

	if err := eg.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("document: analyze: %w", err)
	}

	return &Analysis{
		Segmented:     st,
		Spelling:      spelling,
		Grammar:       gram,
		WordCount:     st.WordCount(),
		SentenceCount: st.SentenceCount(),
		Duration:      time.Since(start),
	}, nil
}
