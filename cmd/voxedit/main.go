// Command voxedit is the main entry point for the voxedit dictation server.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/MrWong99/voxedit/internal/config"
	"github.com/MrWong99/voxedit/internal/document"
	"github.com/MrWong99/voxedit/internal/observe"
	"github.com/MrWong99/voxedit/internal/server"
	"github.com/MrWong99/voxedit/internal/vocab"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	// ── CLI flags ──────────────────────────────────────────────────────────────
	configPath := flag.String("config", "config.yaml", "path to the YAML configuration file")
	flag.Parse()

	// ── Load configuration ────────────────────────────────────────────────────
	cfg, watchConfig, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "voxedit: %v\n", err)
		return 1
	}

	// ── Logger ────────────────────────────────────────────────────────────────
	var level slog.LevelVar
	level.Set(cfg.Server.LogLevel.SlogLevel())
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: &level})))

	slog.Info("voxedit starting",
		"version", version,
		"config", *configPath,
		"listen_addr", cfg.Server.ListenAddr,
		"log_level", cfg.Server.LogLevel,
	)
	if !watchConfig {
		slog.Warn("config file not found, using defaults", "config", *configPath)
	}

	// ── Signal context ────────────────────────────────────────────────────────
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── Telemetry ─────────────────────────────────────────────────────────────
	providers, err := observe.InitProvider(ctx, observe.ProviderConfig{
		ServiceName:    cfg.Telemetry.ServiceName,
		ServiceVersion: version,
	})
	if err != nil {
		slog.Error("failed to initialise telemetry", "err", err)
		return 1
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := providers.Shutdown(shutdownCtx); err != nil {
			slog.Warn("telemetry shutdown error", "err", err)
		}
	}()
	metrics := observe.DefaultMetrics()

	// ── Text core ─────────────────────────────────────────────────────────────
	kit, err := loadToolkit(ctx, cfg, metrics)
	if err != nil {
		slog.Error("failed to build toolkit", "err", err)
		return 1
	}
	sessions := document.NewManager(kit,
		document.WithHistoryLimit(cfg.History.Limit),
		document.WithMaxSessions(cfg.Server.MaxSessions),
		document.WithManagerMetrics(metrics),
	)
	srv := server.New(cfg.Server, sessions, server.WithMetrics(metrics))

	printStartupSummary(cfg, kit)

	// ── Run ───────────────────────────────────────────────────────────────────
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return srv.Run(gctx) })

	if watchConfig {
		watcher, err := config.NewWatcher(*configPath, func(old, new *config.Config) {
			applyConfigChange(gctx, old, new, &level, sessions, metrics)
		})
		if err != nil {
			slog.Error("failed to start config watcher", "err", err)
			stop()
			_ = g.Wait()
			return 1
		}
		g.Go(func() error { return watcher.Run(gctx) })
	}

	slog.Info("server ready, press Ctrl+C to shut down")
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("run error", "err", err)
		return 1
	}
	slog.Info("goodbye")
	return 0
}

// loadConfig reads the configuration at path. A missing file yields the
// defaults and watch == false.
func loadConfig(path string) (cfg *config.Config, watch bool, err error) {
	cfg, err = config.Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return config.Default(), false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return cfg, true, nil
}

// loadToolkit reads the vocabulary file named in cfg, if any, and builds the
// shared toolkit from it.
func loadToolkit(ctx context.Context, cfg *config.Config, m *observe.Metrics) (*document.Toolkit, error) {
	var terms []vocab.Term
	if path := cfg.Vocabulary.File; path != "" {
		vf, err := vocab.LoadFile(path)
		if err != nil {
			return nil, err
		}
		store := vocab.NewMemStore()
		if _, err := vocab.Import(ctx, store, vf); err != nil {
			return nil, err
		}
		if terms, err = store.List(ctx, vocab.ListOptions{}); err != nil {
			return nil, err
		}
		slog.Info("vocabulary loaded", "file", path, "name", vf.Vocabulary.Name, "terms", len(terms))
	}
	return document.BuildToolkit(cfg, terms, m)
}

// applyConfigChange is the hot-reload callback. The log level is applied
// directly; spell, grammar and vocabulary changes rebuild the toolkit.
func applyConfigChange(ctx context.Context, old, new *config.Config, level *slog.LevelVar, sessions *document.Manager, m *observe.Metrics) {
	d := config.Diff(old, new)

	if d.LogLevelChanged {
		level.Set(d.NewLogLevel.SlogLevel())
		slog.Info("log level changed", "level", d.NewLogLevel)
	}
	if d.Reload() {
		kit, err := loadToolkit(ctx, new, m)
		if err != nil {
			slog.Error("config reload failed, keeping previous toolkit", "err", err)
		} else {
			sessions.SetToolkit(kit)
		}
	}
	if len(d.RestartRequired) > 0 {
		slog.Warn("some settings only apply after a restart", "settings", d.RestartRequired)
	}
}

// ── Startup summary ───────────────────────────────────────────────────────────

func printStartupSummary(cfg *config.Config, kit *document.Toolkit) {
	fmt.Println("╔═══════════════════════════════════════╗")
	fmt.Println("║        voxedit, startup summary       ║")
	fmt.Println("╠═══════════════════════════════════════╣")
	fmt.Printf("║  Listen addr     : %-19s ║\n", cfg.Server.ListenAddr)
	fmt.Printf("║  Dictionary      : %-19d ║\n", kit.Analyzer.Spell().DictionarySize())
	fmt.Printf("║  Vocabulary terms: %-19d ║\n", len(kit.Terms))
	fmt.Printf("║  Correction      : %-19s ║\n", onOff(kit.Corrector != nil))
	fmt.Printf("║  History limit   : %-19d ║\n", cfg.History.Limit)
	if cfg.Server.MaxSessions > 0 {
		fmt.Printf("║  Max sessions    : %-19d ║\n", cfg.Server.MaxSessions)
	} else {
		fmt.Printf("║  Max sessions    : %-19s ║\n", "(unlimited)")
	}
	fmt.Println("╚═══════════════════════════════════════╝")
}

func onOff(b bool) string {
	if b {
		return "enabled"
	}
	return "disabled"
}
