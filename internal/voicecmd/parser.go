// Package voicecmd classifies spoken editing utterances ("replace cat with
// dog", "scratch that", "read back") into typed commands.
//
// Classification is an ordered table of patterns; the first pattern that
// matches wins and anything else becomes [Unknown]. Phrase-only commands
// such as "undo" come before the payload-carrying ones so they can never be
// swallowed by a broader pattern.
package voicecmd

import (
	"log/slog"
	"regexp"
	"strings"
)

// Pattern pairs a compiled regex with the constructor for its command.
type Pattern struct {
	// Name is a human-readable label for logging.
	Name string

	// Regex is matched against the cleaned utterance. It must be anchored.
	Regex *regexp.Regexp

	// Build turns the submatches of Regex into a command. matches is the
	// full slice from Regex.FindStringSubmatch with payloads trimmed.
	Build func(matches []string) Command
}

// Parser classifies utterances. It is immutable and safe for concurrent use.
type Parser struct {
	patterns []Pattern
}

// NewParser returns a Parser with the built-in pattern table.
func NewParser() *Parser {
	return &Parser{patterns: defaultPatterns()}
}

var defaultParser = NewParser()

// Parse classifies utterance with the built-in pattern table.
func Parse(utterance string) Command {
	return defaultParser.Parse(utterance)
}

// Parse classifies utterance. Matching is case-insensitive; payloads keep the
// case they were spoken with. Surrounding whitespace and one trailing '.',
// '!' or '?' (as appended by most speech engines) are ignored.
func (p *Parser) Parse(utterance string) Command {
	cleaned := clean(utterance)
	if cleaned == "" {
		return Unknown{Utterance: utterance}
	}

	for _, pat := range p.patterns {
		matches := pat.Regex.FindStringSubmatch(cleaned)
		if matches == nil {
			continue
		}
		for i := 1; i < len(matches); i++ {
			matches[i] = strings.TrimSpace(matches[i])
		}
		cmd := pat.Build(matches)
		slog.Debug("voicecmd: command parsed",
			"pattern", pat.Name,
			"type", cmd.Type(),
			"text", cleaned,
		)
		return cmd
	}

	slog.Debug("voicecmd: no command matched", "text", cleaned)
	return Unknown{Utterance: utterance}
}

// Patterns returns the pattern names in classification order.
func (p *Parser) Patterns() []string {
	names := make([]string, len(p.patterns))
	for i, pat := range p.patterns {
		names[i] = pat.Name
	}
	return names
}

func clean(utterance string) string {
	s := strings.TrimSpace(utterance)
	if n := len(s); n > 0 && strings.IndexByte(".!?", s[n-1]) >= 0 {
		s = strings.TrimSpace(s[:n-1])
	}
	return s
}

func phrase(name, expr string, cmd Command) Pattern {
	return Pattern{
		Name:  name,
		Regex: regexp.MustCompile(`(?i)^(?:` + expr + `)$`),
		Build: func([]string) Command { return cmd },
	}
}

// defaultPatterns returns the built-in table in classification order.
func defaultPatterns() []Pattern {
	return []Pattern{
		phrase("undo", `undo(?:\s+(?:that|it|last(?:\s+change)?))?`, Undo{}),
		phrase("redo", `redo(?:\s+(?:that|it|last(?:\s+change)?))?`, Redo{}),
		phrase("scratch", `scratch(?:\s+that)?`, Scratch{}),
		phrase("word-count", `word\s+count|count\s+(?:the\s+)?words|how\s+many\s+words(?:\s+(?:is\s+it|are\s+there|have\s+i\s+written))?|what(?:'s|\s+is)\s+the\s+word\s+count`, WordCount{}),
		phrase("read-stop", `stop(?:\s+reading)?`, Read{Kind: ReadStop}),
		phrase("read-back", `read\s+(?:back|that(?:\s+back)?|(?:the\s+)?last\s+sentence)`, Read{Kind: ReadBack}),
		phrase("read-all", `read\s+(?:all|everything|(?:the\s+)?(?:whole\s+)?document|it\s+all)`, Read{Kind: ReadAll}),
		phrase("read-selection", `read\s+(?:the\s+)?(?:selection|selected(?:\s+text)?)`, Read{Kind: ReadSelection}),
		phrase("capitalize-last", `(?:capitalize|caps)(?:\s+that)?`, Capitalize{}),
		{
			Name:  "capitalize",
			Regex: regexp.MustCompile(`(?i)^(?:capitalize|caps)\s+(.+)$`),
			Build: func(m []string) Command { return Capitalize{Target: m[1]} },
		},
		replacePattern("replace-with", `replace`, `with`),
		replacePattern("change-to", `change`, `to`),
		replacePattern("swap-for", `swap`, `for`),
		replacePattern("make-say", `make`, `say`),
		replacePattern("substitute-with", `substitute`, `with`),
		{
			Name:  "delete",
			Regex: regexp.MustCompile(`(?i)^(?:delete|remove|erase)\s+(.+)$`),
			Build: func(m []string) Command { return Delete{Target: m[1]} },
		},
		{
			Name:  "insert",
			Regex: regexp.MustCompile(`(?i)^(?:insert|add)\s+(.+?)\s+(after|before)\s+(.+)$`),
			Build: func(m []string) Command {
				return Insert{Text: m[1], Anchor: m[3], Position: Position(strings.ToLower(m[2]))}
			},
		},
	}
}

func replacePattern(name, verb, joiner string) Pattern {
	return Pattern{
		Name:  name,
		Regex: regexp.MustCompile(`(?i)^` + verb + `\s+(.+?)\s+` + joiner + `\s+(.+)$`),
		Build: func(m []string) Command { return Replace{Target: m[1], Replacement: m[2]} },
	}
}
