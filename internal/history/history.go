// Package history keeps bounded undo/redo snapshots of a document's text.
package history

import "sync"

// DefaultLimit is the number of undo steps kept when New is given a
// non-positive limit.
const DefaultLimit = 100

// Stack is a bounded undo/redo history of text snapshots. The oldest undo
// entries are dropped once the limit is reached. All methods are safe for
// concurrent use.
type Stack struct {
	mu    sync.Mutex
	limit int
	undo  []string
	redo  []string
}

// New returns an empty Stack holding at most limit undo snapshots.
func New(limit int) *Stack {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Stack{limit: limit}
}

// Push records snapshot, the text as it was before a change. Any redo
// history is discarded.
func (s *Stack) Push(snapshot string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.undo = s.pushBounded(s.undo, snapshot)
	s.redo = s.redo[:0]
}

// Undo returns the previous snapshot and remembers current for [Stack.Redo].
// ok is false when there is nothing to undo.
func (s *Stack) Undo(current string) (prev string, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.undo) == 0 {
		return "", false
	}
	prev = s.undo[len(s.undo)-1]
	s.undo = s.undo[:len(s.undo)-1]
	s.redo = s.pushBounded(s.redo, current)
	return prev, true
}

// Redo returns the most recently undone text and remembers current for
// [Stack.Undo]. ok is false when there is nothing to redo.
func (s *Stack) Redo(current string) (next string, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.redo) == 0 {
		return "", false
	}
	next = s.redo[len(s.redo)-1]
	s.redo = s.redo[:len(s.redo)-1]
	s.undo = s.pushBounded(s.undo, current)
	return next, true
}

// CanUndo reports whether [Stack.Undo] would succeed.
func (s *Stack) CanUndo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.undo) > 0
}

// CanRedo reports whether [Stack.Redo] would succeed.
func (s *Stack) CanRedo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.redo) > 0
}

// Len returns the number of undo snapshots.
func (s *Stack) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.undo)
}

// Limit returns the maximum number of undo snapshots.
func (s *Stack) Limit() int {
	return s.limit
}

// Reset drops all history.
func (s *Stack) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.undo = nil
	s.redo = nil
}

func (s *Stack) pushBounded(stack []string, v string) []string {
	stack = append(stack, v)
	if over := len(stack) - s.limit; over > 0 {
		stack = append(stack[:0], stack[over:]...)
	}
	return stack
}
