package vocab

import (
	"cmp"
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"slices"
	"sync"
)

var _ Store = (*MemStore)(nil)

// MemStore is an in-memory [Store]. The zero value is ready to use.
type MemStore struct {
	mu    sync.RWMutex
	terms map[string]Term
}

// NewMemStore returns an empty [MemStore].
func NewMemStore() *MemStore {
	return &MemStore{terms: make(map[string]Term)}
}

// Add implements [Store.Add].
func (s *MemStore) Add(ctx context.Context, term Term) (Term, error) {
	if err := Validate(term); err != nil {
		return Term{}, fmt.Errorf("vocab: invalid term %q: %w", term.Term, err)
	}
	if term.ID == "" {
		id, err := generateID()
		if err != nil {
			return Term{}, fmt.Errorf("vocab: generate id: %w", err)
		}
		term.ID = id
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.terms == nil {
		s.terms = make(map[string]Term)
	}
	if _, exists := s.terms[term.ID]; exists {
		return Term{}, ErrDuplicateID
	}
	s.terms[term.ID] = term
	return term, nil
}

// Get implements [Store.Get].
func (s *MemStore) Get(ctx context.Context, id string) (Term, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.terms[id]
	if !ok {
		return Term{}, ErrNotFound
	}
	return t, nil
}

// List implements [Store.List].
func (s *MemStore) List(ctx context.Context, opts ListOptions) ([]Term, error) {
	s.mu.RLock()
	result := make([]Term, 0, len(s.terms))
	for _, t := range s.terms {
		if matchesOpts(t, opts) {
			result = append(result, t)
		}
	}
	s.mu.RUnlock()

	slices.SortFunc(result, func(a, b Term) int {
		return cmp.Or(cmp.Compare(a.Term, b.Term), cmp.Compare(a.ID, b.ID))
	})
	return result, nil
}

// Update implements [Store.Update].
func (s *MemStore) Update(ctx context.Context, term Term) error {
	if err := Validate(term); err != nil {
		return fmt.Errorf("vocab: invalid term %q: %w", term.Term, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.terms[term.ID]; !ok {
		return ErrNotFound
	}
	s.terms[term.ID] = term
	return nil
}

// Remove implements [Store.Remove].
func (s *MemStore) Remove(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.terms[id]; !ok {
		return ErrNotFound
	}
	delete(s.terms, id)
	return nil
}

// BulkImport implements [Store.BulkImport].
func (s *MemStore) BulkImport(ctx context.Context, terms []Term) (int, error) {
	count := 0
	for _, t := range terms {
		if err := ctx.Err(); err != nil {
			return count, err
		}
		if _, err := s.Add(ctx, t); err != nil {
			return count, fmt.Errorf("vocab: bulk import at index %d (term %q): %w", count, t.Term, err)
		}
		count++
	}
	return count, nil
}

// Len returns the number of stored terms.
func (s *MemStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.terms)
}

// generateID returns 32 random hex characters.
func generateID() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

func matchesOpts(t Term, opts ListOptions) bool {
	if opts.Kind != "" && cmp.Or(t.Kind, KindTerm) != opts.Kind {
		return false
	}
	for _, want := range opts.Tags {
		if !slices.Contains(t.Tags, want) {
			return false
		}
	}
	return true
}
