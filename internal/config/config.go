// Package config provides the configuration schema, loader, validation and
// hot-reload watcher for the voxedit server.
package config

import (
	"log/slog"
	"time"
)

// LogLevel controls log verbosity for the voxedit server.
type LogLevel string

const (
	LogDebug LogLevel = "debug"
	LogInfo  LogLevel = "info"
	LogWarn  LogLevel = "warn"
	LogError LogLevel = "error"
)

// IsValid reports whether l is a recognised log level.
func (l LogLevel) IsValid() bool {
	switch l {
	case LogDebug, LogInfo, LogWarn, LogError:
		return true
	}
	return false
}

// SlogLevel maps l to the matching [slog.Level]. Unknown or empty levels map
// to [slog.LevelInfo].
func (l LogLevel) SlogLevel() slog.Level {
	switch l {
	case LogDebug:
		return slog.LevelDebug
	case LogWarn:
		return slog.LevelWarn
	case LogError:
		return slog.LevelError
	}
	return slog.LevelInfo
}

// Defaults applied by [ApplyDefaults] to zero-valued fields.
const (
	DefaultListenAddr        = ":8080"
	DefaultShutdownTimeout   = 10 * time.Second
	DefaultMaxRequestBytes   = 1 << 20
	DefaultMaxSuggestions    = 5
	DefaultHistoryLimit      = 100
	DefaultPhoneticThreshold = 0.70
	DefaultFuzzyThreshold    = 0.85
	DefaultServiceName       = "voxedit"
)

// Config is the root configuration structure for voxedit.
// It is typically loaded from a YAML file using [Load] or [LoadFromReader].
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Spell      SpellConfig      `yaml:"spell"`
	Grammar    GrammarConfig    `yaml:"grammar"`
	History    HistoryConfig    `yaml:"history"`
	Vocabulary VocabularyConfig `yaml:"vocabulary"`
	Telemetry  TelemetryConfig  `yaml:"telemetry"`
}

// ServerConfig holds network and logging settings.
type ServerConfig struct {
	// ListenAddr is the TCP address the server listens on (e.g., ":8080").
	ListenAddr string `yaml:"listen_addr"`

	// LogLevel controls verbosity. It is hot-reloadable.
	LogLevel LogLevel `yaml:"log_level"`

	// ShutdownTimeout bounds graceful shutdown, e.g. "10s".
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// MaxRequestBytes caps JSON request bodies.
	MaxRequestBytes int64 `yaml:"max_request_bytes"`

	// MaxSessions caps concurrently open editing sessions. Zero means no
	// limit.
	MaxSessions int `yaml:"max_sessions"`

	// TLS configures TLS for the server. When nil, the server runs plain HTTP.
	TLS *TLSConfig `yaml:"tls"`
}

// TLSConfig holds TLS certificate paths for enabling HTTPS.
type TLSConfig struct {
	CertFile string `yaml:"cert_file"`
	KeyFile  string `yaml:"key_file"`
}

// SpellConfig configures the spell checker.
type SpellConfig struct {
	// MaxSuggestions caps the suggestions returned per misspelling.
	MaxSuggestions int `yaml:"max_suggestions"`

	// DictionaryFiles are extra newline-separated word lists merged into the
	// built-in dictionary.
	DictionaryFiles []string `yaml:"dictionary_files"`
}

// GrammarConfig configures the grammar checker.
type GrammarConfig struct {
	// FlagUnterminated enables the missing terminal punctuation rule.
	FlagUnterminated bool `yaml:"flag_unterminated"`
}

// HistoryConfig configures per-session undo history.
type HistoryConfig struct {
	Limit int `yaml:"limit"`
}

// VocabularyConfig configures the custom vocabulary and dictation correction.
type VocabularyConfig struct {
	// File is an optional YAML vocabulary file. Its terms join the spell
	// dictionary and drive dictation correction.
	File string `yaml:"file"`

	// CorrectDictation rewrites final dictated utterances toward vocabulary
	// terms before they are appended.
	CorrectDictation bool `yaml:"correct_dictation"`

	// PhoneticThreshold is the minimum Jaro-Winkler score for a phonetic match.
	PhoneticThreshold float64 `yaml:"phonetic_threshold"`

	// FuzzyThreshold is the minimum Jaro-Winkler score without a phonetic match.
	FuzzyThreshold float64 `yaml:"fuzzy_threshold"`
}

// TelemetryConfig configures OpenTelemetry resource attributes.
type TelemetryConfig struct {
	ServiceName string `yaml:"service_name"`
}

// ApplyDefaults fills zero-valued fields of cfg with their defaults.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.ListenAddr == "" {
		cfg.Server.ListenAddr = DefaultListenAddr
	}
	if cfg.Server.LogLevel == "" {
		cfg.Server.LogLevel = LogInfo
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = DefaultShutdownTimeout
	}
	if cfg.Server.MaxRequestBytes == 0 {
		cfg.Server.MaxRequestBytes = DefaultMaxRequestBytes
	}
	if cfg.Spell.MaxSuggestions == 0 {
		cfg.Spell.MaxSuggestions = DefaultMaxSuggestions
	}
	if cfg.History.Limit == 0 {
		cfg.History.Limit = DefaultHistoryLimit
	}
	if cfg.Vocabulary.PhoneticThreshold == 0 {
		cfg.Vocabulary.PhoneticThreshold = DefaultPhoneticThreshold
	}
	if cfg.Vocabulary.FuzzyThreshold == 0 {
		cfg.Vocabulary.FuzzyThreshold = DefaultFuzzyThreshold
	}
	if cfg.Telemetry.ServiceName == "" {
		cfg.Telemetry.ServiceName = DefaultServiceName
	}
}

// Default returns a config with every default applied.
func Default() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}
