package vocab

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get, Update and Remove when the term does not exist.
var ErrNotFound = errors.New("vocab: term not found")

// ErrDuplicateID is returned by Add when a term with the same ID already exists.
var ErrDuplicateID = errors.New("vocab: term with that ID already exists")

// Store manages vocabulary terms. Implementations must be safe for
// concurrent use.
type Store interface {
	// Add stores a new term, generating an ID when the term has none.
	// Returns [ErrDuplicateID] if a term with the same non-empty ID exists.
	Add(ctx context.Context, term Term) (Term, error)

	// Get retrieves a term by ID.
	Get(ctx context.Context, id string) (Term, error)

	// List returns the terms matching opts, ordered by Term then ID.
	List(ctx context.Context, opts ListOptions) ([]Term, error)

	// Update replaces an existing term.
	Update(ctx context.Context, term Term) error

	// Remove deletes a term by ID.
	Remove(ctx context.Context, id string) error

	// BulkImport adds terms one by one and returns how many were added
	// before the first error.
	BulkImport(ctx context.Context, terms []Term) (int, error)
}

// ListOptions narrows the result set of [Store.List]. All non-zero fields
// are applied as AND conditions.
type ListOptions struct {
	// Kind restricts results to one kind. Terms with an empty kind count as
	// [KindTerm].
	Kind Kind

	// Tags restricts results to terms carrying all of these tags.
	Tags []string
}
