package document_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/MrWong99/voxedit/internal/config"
	"github.com/MrWong99/voxedit/internal/document"
	"github.com/MrWong99/voxedit/internal/observe"
	"github.com/MrWong99/voxedit/internal/text/grammar"
	"github.com/MrWong99/voxedit/internal/text/spell"
)

func newTestMetrics(t *testing.T) (*observe.Metrics, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })
	m, err := observe.NewMetrics(mp)
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}
	return m, reader
}

// sumOf returns the total of all data points of the int64 sum metric name.
func sumOf(t *testing.T, reader *sdkmetric.ManualReader, name string) int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Collect: %v", err)
	}
	var total int64
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			if !ok {
				t.Fatalf("metric %q is not an int64 sum", name)
			}
			for _, dp := range sum.DataPoints {
				total += dp.Value
			}
		}
	}
	return total
}

func TestManager_Lifecycle(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	met, reader := newTestMetrics(t)
	m := document.NewManager(nil, document.WithManagerMetrics(met))

	a, err := m.Create(ctx)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	b, err := m.Create(ctx)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if a.ID() == b.ID() || len(a.ID()) != 32 {
		t.Fatalf("ids %q and %q", a.ID(), b.ID())
	}
	if m.Len() != 2 || len(m.IDs()) != 2 {
		t.Errorf("Len = %d, IDs = %v", m.Len(), m.IDs())
	}

	got, err := m.Get(a.ID())
	if err != nil || got != a {
		t.Fatalf("Get = %v, %v", got, err)
	}

	if err := m.Close(ctx, a.ID()); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if _, err := m.Get(a.ID()); !errors.Is(err, document.ErrSessionNotFound) {
		t.Errorf("Get closed = %v, want ErrSessionNotFound", err)
	}
	if err := m.Close(ctx, a.ID()); !errors.Is(err, document.ErrSessionNotFound) {
		t.Errorf("double Close = %v, want ErrSessionNotFound", err)
	}
	if got := sumOf(t, reader, "voxedit.active_sessions"); got != 1 {
		t.Errorf("active sessions = %d, want 1", got)
	}

	if n := m.CloseAll(ctx); n != 1 {
		t.Errorf("CloseAll = %d, want 1", n)
	}
	if got := sumOf(t, reader, "voxedit.active_sessions"); got != 0 {
		t.Errorf("active sessions after CloseAll = %d, want 0", got)
	}
}

func TestManager_MaxSessions(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	m := document.NewManager(nil, document.WithMaxSessions(1))
	if _, err := m.Create(ctx); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := m.Create(ctx); !errors.Is(err, document.ErrTooManySessions) {
		t.Errorf("second Create = %v, want ErrTooManySessions", err)
	}
}

func TestManager_HistoryLimit(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	m := document.NewManager(nil, document.WithHistoryLimit(2))
	s, _ := m.Create(ctx)
	for _, text := range []string{"a", "b", "c", "d"} {
		s.SetText(text)
	}
	execute(t, s, "undo")
	execute(t, s, "undo")
	if out := execute(t, s, "undo"); out.Message != document.MsgNothingToUndo {
		t.Errorf("third undo = %+v, want history exhausted", out)
	}
	if s.Text() != "b" {
		t.Errorf("text = %q, want b", s.Text())
	}
}

func TestManager_SetToolkitReachesOpenSessions(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	m := document.NewManager(nil)
	s, _ := m.Create(ctx)
	s.SetText("The zyxwv is here.")

	a, _ := s.Analyze(ctx, false)
	if len(a.Spelling.Errors) != 1 {
		t.Fatalf("errors before = %+v", a.Spelling.Errors)
	}

	m.SetToolkit(&document.Toolkit{
		Analyzer: document.NewAnalyzer(spell.New(spell.WithExtraWords("zyxwv")), grammar.New()),
		Parser:   m.Toolkit().Parser,
	})
	a, _ = s.Analyze(ctx, false)
	if len(a.Spelling.Errors) != 0 {
		t.Errorf("errors after toolkit swap = %+v", a.Spelling.Errors)
	}

	m.SetToolkit(nil)
	if m.Toolkit() == nil {
		t.Error("SetToolkit(nil) cleared the toolkit")
	}
}

func TestManager_Concurrent(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	m := document.NewManager(nil)
	var wg sync.WaitGroup
	for range 20 {
		wg.Go(func() {
			s, err := m.Create(ctx)
			if err != nil {
				t.Error(err)
				return
			}
			if _, err := s.Dictate(ctx, "hello there", true); err != nil {
				t.Error(err)
			}
			_, _ = s.Execute(ctx, "capitalize hello", document.Selection{})
			_ = m.Close(ctx, s.ID())
		})
	}
	wg.Wait()
	if m.Len() != 0 {
		t.Errorf("Len = %d, want 0", m.Len())
	}
}

func TestBuildToolkit_DictionaryFiles(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "extra.txt")
	if err := os.WriteFile(path, []byte("# course words\nzyxwv\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg := config.Default()
	cfg.Spell.DictionaryFiles = []string{path}

	kit, err := document.BuildToolkit(cfg, nil, nil)
	if err != nil {
		t.Fatalf("BuildToolkit: %v", err)
	}
	if !kit.Analyzer.Spell().CheckWord("zyxwv") {
		t.Error("dictionary file word not accepted")
	}

	cfg.Spell.DictionaryFiles = []string{filepath.Join(t.TempDir(), "missing.txt")}
	if _, err := document.BuildToolkit(cfg, nil, nil); err == nil {
		t.Error("expected error for missing dictionary file")
	}
}

func TestAnalyzer_Metrics(t *testing.T) {
	t.Parallel()

	met, reader := newTestMetrics(t)
	a := document.NewAnalyzer(nil, nil, document.WithMetrics(met))

	res, err := a.Analyze(context.Background(), "ths is  wrong wrong", nil, false)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if got := sumOf(t, reader, "voxedit.spelling.errors"); got != int64(len(res.Spelling.Errors)) {
		t.Errorf("spelling metric = %d, want %d", got, len(res.Spelling.Errors))
	}
	if got := sumOf(t, reader, "voxedit.grammar.errors"); got != int64(len(res.Grammar.Errors)) || got == 0 {
		t.Errorf("grammar metric = %d, want %d", got, len(res.Grammar.Errors))
	}
}

func TestAnalyzer_Canceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := document.NewAnalyzer(nil, nil).Analyze(ctx, "Hello.", nil, false); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestAnalyzer_FinalFlagsLastSentence(t *testing.T) {
	t.Parallel()

	a := document.NewAnalyzer(nil, grammar.New(grammar.WithUnterminatedCheck(true)))
	ctx := context.Background()

	live, _ := a.Analyze(ctx, "Done here. Still going", nil, false)
	final, _ := a.Analyze(ctx, "Done here. Still going", nil, true)
	if len(final.Grammar.Errors) != len(live.Grammar.Errors)+1 {
		t.Errorf("final %d errors, live %d; want one more when final", len(final.Grammar.Errors), len(live.Grammar.Errors))
	}
}
