package spell

import (
	"slices"
	"strings"
	"sync"
)

// Session is the per-document "add to dictionary" list. Ignored words are
// suppressed for the lifetime of the session and are never persisted; they
// are only cleared by [Session.Reset].
//
// A nil *Session ignores nothing. The zero value is ready to use. All methods
// are safe for concurrent use.
type Session struct {
	mu    sync.RWMutex
	words map[string]struct{}
}

// NewSession returns an empty ignore set.
func NewSession() *Session {
	return &Session{words: make(map[string]struct{})}
}

// Ignore adds word to the set. Matching is case-insensitive.
func (s *Session) Ignore(word string) {
	key := strings.ToLower(strings.TrimSpace(word))
	if key == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.words == nil {
		s.words = make(map[string]struct{})
	}
	s.words[key] = struct{}{}
}

// IsIgnored reports whether word was added with [Session.Ignore].
func (s *Session) IsIgnored(word string) bool {
	if s == nil {
		return false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.words[strings.ToLower(word)]
	return ok
}

// Reset forgets every ignored word.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	clear(s.words)
}

// Words returns the ignored words in sorted order.
func (s *Session) Words() []string {
	if s == nil {
		return nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.words))
	for w := range s.words {
		out = append(out, w)
	}
	slices.Sort(out)
	return out
}
