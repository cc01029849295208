package main

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/MrWong99/voxedit/internal/config"
	"github.com/MrWong99/voxedit/internal/document"
)

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	cfg, watch, err := loadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if watch {
		t.Error("missing file must not be watched")
	}
	if cfg.Server.ListenAddr != config.DefaultListenAddr {
		t.Errorf("listen_addr = %q", cfg.Server.ListenAddr)
	}
}

func TestLoadConfig_InvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("server:\n  log_level: loud\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, _, err := loadConfig(path); err == nil {
		t.Error("expected validation error")
	}
}

func TestLoadToolkit_Vocabulary(t *testing.T) {
	dir := t.TempDir()
	vocabPath := filepath.Join(dir, "vocab.yaml")
	data := "terms:\n  - term: Mitochondria\n    aliases: [\"my toe con dria\"]\n"
	if err := os.WriteFile(vocabPath, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := config.Default()
	cfg.Vocabulary.File = vocabPath
	cfg.Vocabulary.CorrectDictation = true

	kit, err := loadToolkit(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("loadToolkit: %v", err)
	}
	if len(kit.Terms) != 1 || kit.Corrector == nil {
		t.Errorf("toolkit terms = %d, corrector = %v", len(kit.Terms), kit.Corrector != nil)
	}
	if !kit.Analyzer.Spell().CheckWord("mitochondria") {
		t.Error("vocabulary term missing from dictionary")
	}

	cfg.Vocabulary.File = filepath.Join(dir, "missing.yaml")
	if _, err := loadToolkit(context.Background(), cfg, nil); err == nil {
		t.Error("expected error for missing vocabulary file")
	}
}

func TestApplyConfigChange(t *testing.T) {
	ctx := context.Background()
	old := config.Default()
	sessions := document.NewManager(nil)
	before := sessions.Toolkit()

	var level slog.LevelVar
	next := config.Default()
	next.Server.LogLevel = config.LogDebug
	applyConfigChange(ctx, old, next, &level, sessions, nil)
	if level.Level() != slog.LevelDebug {
		t.Errorf("level = %v, want debug", level.Level())
	}
	if sessions.Toolkit() != before {
		t.Error("log level change rebuilt the toolkit")
	}

	next.Spell.MaxSuggestions = 2
	applyConfigChange(ctx, old, next, &level, sessions, nil)
	if sessions.Toolkit() == before {
		t.Error("spell change did not rebuild the toolkit")
	}

	broken := config.Default()
	broken.Spell.DictionaryFiles = []string{filepath.Join(t.TempDir(), "gone.txt")}
	kept := sessions.Toolkit()
	applyConfigChange(ctx, next, broken, &level, sessions, nil)
	if sessions.Toolkit() != kept {
		t.Error("failed reload replaced the toolkit")
	}
}
