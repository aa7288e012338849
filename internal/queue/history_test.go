package queue

import (
	"testing"

	"github.com/llehouerou/crest/internal/store"
)

func snapshot(ids ...string) store.Snapshot {
	return store.NewSnapshot(tracks(ids...), 0)
}

func TestHistory_PushPop(t *testing.T) {
	h := NewHistory(3)

	if h.CanUndo() {
		t.Error("fresh history should have nothing to undo")
	}

	h.Push(snapshot("a", "b"))
	h.Push(snapshot("c"))

	if h.Depth() != 2 {
		t.Errorf("Depth() = %d, want 2", h.Depth())
	}

	s, ok := h.Pop()
	if !ok {
		t.Fatal("Pop should succeed")
	}
	if len(s.Tracks) != 1 || s.Tracks[0].ID != "c" {
		t.Errorf("popped snapshot = %v, want [c]", s.IDs())
	}

	s, ok = h.Pop()
	if !ok || len(s.Tracks) != 2 {
		t.Errorf("second pop = %v ok=%v, want [a b]", s.IDs(), ok)
	}

	if _, ok := h.Pop(); ok {
		t.Error("Pop on empty history should fail")
	}
}

func TestHistory_Bounded(t *testing.T) {
	h := NewHistory(3)

	h.Push(snapshot("1"))
	h.Push(snapshot("2"))
	h.Push(snapshot("3"))
	h.Push(snapshot("4"))

	if h.Depth() != 3 {
		t.Errorf("Depth() = %d, want 3", h.Depth())
	}

	// Oldest snapshot fell off; most recent comes back first.
	s, _ := h.Pop()
	if s.Tracks[0].ID != "4" {
		t.Errorf("first pop = %s, want 4", s.Tracks[0].ID)
	}
	h.Pop()
	s, _ = h.Pop()
	if s.Tracks[0].ID != "2" {
		t.Errorf("last pop = %s, want 2", s.Tracks[0].ID)
	}
}

func TestHistory_SkipsEmpty(t *testing.T) {
	h := NewHistory(3)

	h.Push(store.Snapshot{})

	if h.CanUndo() {
		t.Error("empty snapshot should not be retained")
	}
}

func TestSameTracks(t *testing.T) {
	s := snapshot("a", "b")

	if !SameTracks(s, []string{"a", "b"}) {
		t.Error("identical id sequences should match")
	}
	if SameTracks(s, []string{"b", "a"}) {
		t.Error("different order should not match")
	}
	if SameTracks(s, []string{"a"}) {
		t.Error("different length should not match")
	}
}
