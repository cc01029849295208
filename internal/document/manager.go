// Package document ties the text core together into editing sessions.
//
// A [Session] owns one document: its text, undo history, spell-check ignore
// list and the most recent dictated fragment. It accepts transcript
// fragments through [Session.Dictate] and spoken commands through
// [Session.Execute], and analyses itself on demand.
//
// A [Manager] creates and tracks sessions by ID and holds the shared
// [Toolkit] (analyzer, command parser, vocabulary corrector), which can be
// swapped at runtime when configuration is reloaded.
package document

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/MrWong99/voxedit/internal/history"
	"github.com/MrWong99/voxedit/internal/observe"
)

var (
	// ErrSessionNotFound is returned for an unknown or closed session ID.
	ErrSessionNotFound = errors.New("document: session not found")

	// ErrTooManySessions is returned by [Manager.Create] when the session
	// limit is reached.
	ErrTooManySessions = errors.New("document: too many sessions")
)

// ManagerOption configures a [Manager].
type ManagerOption func(*Manager)

// WithHistoryLimit sets the undo depth of new sessions.
func WithHistoryLimit(n int) ManagerOption {
	return func(m *Manager) {
		if n > 0 {
			m.historyLimit = n
		}
	}
}

// WithMaxSessions caps the number of open sessions. Zero means unlimited.
func WithMaxSessions(n int) ManagerOption {
	return func(m *Manager) {
		if n >= 0 {
			m.maxSessions = n
		}
	}
}

// WithManagerMetrics reports the active session gauge and per-session
// command and dictation counters on met.
func WithManagerMetrics(met *observe.Metrics) ManagerOption {
	return func(m *Manager) {
		m.metrics = met
	}
}

// Manager tracks open sessions. All methods are safe for concurrent use.
type Manager struct {
	kit          atomic.Pointer[Toolkit]
	historyLimit int
	maxSessions  int
	metrics      *observe.Metrics

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewManager returns a Manager sharing kit among its sessions. A nil kit is
// replaced by [DefaultToolkit].
func NewManager(kit *Toolkit, opts ...ManagerOption) *Manager {
	if kit == nil {
		kit = DefaultToolkit()
	}
	m := &Manager{
		historyLimit: history.DefaultLimit,
		sessions:     make(map[string]*Session),
	}
	m.kit.Store(kit)
	for _, o := range opts {
		o(m)
	}
	return m
}

// Toolkit returns the toolkit currently in use.
func (m *Manager) Toolkit() *Toolkit {
	return m.kit.Load()
}

// SetToolkit replaces the shared toolkit. Open sessions pick it up on their
// next operation.
func (m *Manager) SetToolkit(kit *Toolkit) {
	if kit == nil {
		return
	}
	m.kit.Store(kit)
	slog.Info("document: toolkit replaced", "sessions", m.Len())
}

// Create opens a new empty session.
func (m *Manager) Create(ctx context.Context) (*Session, error) {
	id, err := newID()
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	if m.maxSessions > 0 && len(m.sessions) >= m.maxSessions {
		m.mu.Unlock()
		return nil, fmt.Errorf("%w (limit %d)", ErrTooManySessions, m.maxSessions)
	}
	s := newSession(id, m.Toolkit, m.historyLimit, m.metrics)
	m.sessions[id] = s
	m.mu.Unlock()

	if m.metrics != nil {
		m.metrics.ActiveSessions.Add(ctx, 1)
	}
	observe.Logger(observe.WithSession(ctx, id)).Info("document: session created")
	return s, nil
}

// Get returns the open session with the given ID.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrSessionNotFound, id)
	}
	return s, nil
}

// Close removes the session with the given ID.
func (m *Manager) Close(ctx context.Context, id string) error {
	m.mu.Lock()
	_, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %q", ErrSessionNotFound, id)
	}
	if m.metrics != nil {
		m.metrics.ActiveSessions.Add(ctx, -1)
	}
	observe.Logger(observe.WithSession(ctx, id)).Info("document: session closed")
	return nil
}

// CloseAll removes every session and returns how many were open.
func (m *Manager) CloseAll(ctx context.Context) int {
	m.mu.Lock()
	n := len(m.sessions)
	clear(m.sessions)
	m.mu.Unlock()

	if m.metrics != nil && n > 0 {
		m.metrics.ActiveSessions.Add(ctx, int64(-n))
	}
	return n
}

// Len returns the number of open sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// IDs returns the IDs of all open sessions in sorted order.
func (m *Manager) IDs() []string {
	m.mu.RLock()
	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	m.mu.RUnlock()
	slices.Sort(ids)
	return ids
}

// newID returns a random 128-bit hex string.
func newID() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("document: generate session id: %w", err)
	}
	return hex.EncodeToString(b), nil
}
