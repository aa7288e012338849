package queue

import (
	"slices"

	"github.com/llehouerou/crest/internal/store"
)

// DefaultHistoryDepth is the number of prior queue snapshots retained.
const DefaultHistoryDepth = 3

// History is a bounded undo stack of queue snapshots, pushed immediately
// before any operation that replaces the queue wholesale. Restoring pops;
// it never re-pushes the replaced queue, so undo cannot oscillate.
type History struct {
	snaps []store.Snapshot
	max   int
}

// NewHistory creates a history retaining up to max snapshots.
func NewHistory(max int) *History {
	if max <= 0 {
		max = DefaultHistoryDepth
	}
	return &History{max: max}
}

// Push prepends a snapshot and trims to the retention bound. Empty
// snapshots are skipped: restoring to nothing is not a useful undo.
func (h *History) Push(s store.Snapshot) {
	if len(s.Tracks) == 0 {
		return
	}
	h.snaps = append([]store.Snapshot{s}, h.snaps...)
	if len(h.snaps) > h.max {
		h.snaps = h.snaps[:h.max]
	}
}

// Pop removes and returns the most recent snapshot.
func (h *History) Pop() (store.Snapshot, bool) {
	if len(h.snaps) == 0 {
		return store.Snapshot{}, false
	}
	s := h.snaps[0]
	h.snaps = h.snaps[1:]
	return s, true
}

// CanUndo reports whether a snapshot is available.
func (h *History) CanUndo() bool {
	return len(h.snaps) > 0
}

// Depth returns the number of retained snapshots.
func (h *History) Depth() int {
	return len(h.snaps)
}

// SameTracks reports whether the snapshot's id sequence matches the given
// track list. Used to skip undo pushes when a replacement is not a
// material change.
func SameTracks(s store.Snapshot, ids []string) bool {
	return slices.Equal(s.IDs(), ids)
}
