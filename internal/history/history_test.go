package history_test

import (
	"fmt"
	"sync"
	"testing"

	"github.com/MrWong99/voxedit/internal/history"
)

func TestStack_UndoRedo(t *testing.T) {
	t.Parallel()

	h := history.New(10)
	if h.CanUndo() || h.CanRedo() {
		t.Fatal("new stack should be empty")
	}
	if _, ok := h.Undo("x"); ok {
		t.Fatal("Undo on empty stack succeeded")
	}

	// Edits: "" -> "a" -> "ab".
	h.Push("")
	h.Push("a")
	current := "ab"

	prev, ok := h.Undo(current)
	if !ok || prev != "a" {
		t.Fatalf("Undo = %q, %v; want a", prev, ok)
	}
	current = prev

	prev, ok = h.Undo(current)
	if !ok || prev != "" {
		t.Fatalf("second Undo = %q, %v; want empty", prev, ok)
	}
	current = prev

	next, ok := h.Redo(current)
	if !ok || next != "a" {
		t.Fatalf("Redo = %q, %v; want a", next, ok)
	}
	current = next

	next, ok = h.Redo(current)
	if !ok || next != "ab" {
		t.Fatalf("second Redo = %q, %v; want ab", next, ok)
	}
	if h.CanRedo() {
		t.Error("redo stack should be exhausted")
	}
	if h.Len() != 2 {
		t.Errorf("Len = %d, want 2", h.Len())
	}
}

func TestStack_PushClearsRedo(t *testing.T) {
	t.Parallel()

	h := history.New(0)
	if h.Limit() != history.DefaultLimit {
		t.Errorf("Limit = %d, want default %d", h.Limit(), history.DefaultLimit)
	}
	h.Push("one")
	if _, ok := h.Undo("two"); !ok {
		t.Fatal("Undo failed")
	}
	if !h.CanRedo() {
		t.Fatal("expected redo entry")
	}
	h.Push("one")
	if h.CanRedo() {
		t.Error("Push should discard redo history")
	}
}

func TestStack_Bounded(t *testing.T) {
	t.Parallel()

	h := history.New(3)
	for i := range 5 {
		h.Push(fmt.Sprint(i))
	}
	if h.Len() != 3 {
		t.Fatalf("Len = %d, want 3", h.Len())
	}
	var got []string
	for h.CanUndo() {
		prev, _ := h.Undo("")
		got = append(got, prev)
	}
	if fmt.Sprint(got) != "[4 3 2]" {
		t.Errorf("undo order = %v, want [4 3 2]", got)
	}
}

func TestStack_Reset(t *testing.T) {
	t.Parallel()

	h := history.New(5)
	h.Push("a")
	h.Undo("b")
	h.Reset()
	if h.CanUndo() || h.CanRedo() || h.Len() != 0 {
		t.Error("Reset did not clear history")
	}
}

func TestStack_Concurrent(t *testing.T) {
	t.Parallel()

	h := history.New(1000)
	var wg sync.WaitGroup
	for i := range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range 10 {
				h.Push(fmt.Sprint(i, j))
			}
		}()
	}
	wg.Wait()
	if h.Len() != 100 {
		t.Errorf("Len = %d, want 100", h.Len())
	}
}
