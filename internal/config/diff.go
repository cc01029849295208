package config

import "slices"

// ConfigDiff describes what changed between two configs.
type ConfigDiff struct {
	LogLevelChanged bool
	NewLogLevel     LogLevel

	// SpellChanged is set when suggestions or dictionary files changed.
	SpellChanged bool

	// GrammarChanged is set when grammar rules were toggled.
	GrammarChanged bool

	// VocabularyChanged is set when the vocabulary file or correction
	// settings changed.
	VocabularyChanged bool

	// RestartRequired lists settings that changed but only take effect after
	// a restart, by their YAML path.
	RestartRequired []string
}

// Reload reports whether the analysis stack (spell, grammar or vocabulary)
// has to be rebuilt.
func (d ConfigDiff) Reload() bool {
	return d.SpellChanged || d.GrammarChanged || d.VocabularyChanged
}

// Diff compares old and new configs and returns what changed.
func Diff(old, new *Config) ConfigDiff {
	d := ConfigDiff{}

	if old.Server.LogLevel != new.Server.LogLevel {
		d.LogLevelChanged = true
		d.NewLogLevel = new.Server.LogLevel
	}

	d.SpellChanged = old.Spell.MaxSuggestions != new.Spell.MaxSuggestions ||
		!slices.Equal(old.Spell.DictionaryFiles, new.Spell.DictionaryFiles)
	d.GrammarChanged = old.Grammar != new.Grammar
	d.VocabularyChanged = old.Vocabulary != new.Vocabulary

	if old.Server.ListenAddr != new.Server.ListenAddr {
		d.RestartRequired = append(d.RestartRequired, "server.listen_addr")
	}
	if !tlsEqual(old.Server.TLS, new.Server.TLS) {
		d.RestartRequired = append(d.RestartRequired, "server.tls")
	}
	if old.Server.MaxSessions != new.Server.MaxSessions {
		d.RestartRequired = append(d.RestartRequired, "server.max_sessions")
	}
	if old.History != new.History {
		d.RestartRequired = append(d.RestartRequired, "history.limit")
	}
	if old.Telemetry != new.Telemetry {
		d.RestartRequired = append(d.RestartRequired, "telemetry")
	}

	return d
}

func tlsEqual(a, b *TLSConfig) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
