package playback

import (
	"github.com/llehouerou/crest/internal/catalog"
	"github.com/llehouerou/crest/internal/queue"
	"github.com/llehouerou/crest/internal/store"
)

// replaceQueueLocked overwrites the queue wholesale: pushes the outgoing
// queue onto undo history when it is a material change, clears the mix
// cursor (replacement by a non-mix operation invalidates pagination), and
// persists the result.
func (s *Session) replaceQueueLocked(tracks []catalog.Track, startAt int) {
	s.pushUndoLocked(tracks)
	s.queue.Replace(tracks, startAt)
	s.clearCursorLocked()
	s.saveCurrentLocked()
	s.emitQueueLocked()
}

// pushUndoLocked snapshots the current queue before a wholesale
// replacement. Skipped when the queue is empty or the incoming tracks are
// the same id sequence.
func (s *Session) pushUndoLocked(incoming []catalog.Track) {
	if s.queue.IsEmpty() {
		return
	}
	snap := store.NewSnapshot(s.queue.Tracks(), s.queue.CurrentIndex())
	ids := make([]string, len(incoming))
	for i, t := range incoming {
		ids[i] = t.ID
	}
	if queue.SameTracks(snap, ids) {
		return
	}
	s.history.Push(snap)
}

func (s *Session) clearCursorLocked() {
	s.mixCursor = ""
	s.mixSource = ""
}

// InsertAfterCurrent inserts tracks right after the current one. Purely
// additive: no undo push, cursor untouched.
func (s *Session) InsertAfterCurrent(tracks []catalog.Track) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(tracks) == 0 {
		return
	}
	s.queue.InsertAfterCurrent(tracks)
	s.saveCurrentLocked()
	s.emitQueueLocked()
}

// Append adds tracks to the end of the queue.
func (s *Session) Append(tracks []catalog.Track) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(tracks) == 0 {
		return
	}
	s.queue.Append(tracks...)
	s.saveCurrentLocked()
	s.emitQueueLocked()
}

// RemoveTracks deletes every queued track whose id is in ids.
func (s *Session) RemoveTracks(ids []string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(ids) == 0 {
		return
	}
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	s.queue.Remove(set)
	s.saveCurrentLocked()
	s.emitQueueLocked()
}

// Reorder rebuilds the queue in the given id order.
func (s *Session) Reorder(order []string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.queue.ReorderByIDs(order)
	s.saveCurrentLocked()
	s.emitQueueLocked()
}

// MoveTracks performs a drag-style move. Moves that touch the current
// index are rejected as no-ops: displacing the now-playing track mid-drag
// is disallowed rather than auto-corrected.
func (s *Session) MoveTracks(indices []int, to int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.queue.Move(indices, to) {
		s.logger.Debug("rejecting move touching current track", "indices", indices, "to", to)
		return false
	}
	s.saveCurrentLocked()
	s.emitQueueLocked()
	return true
}

// ShuffleQueue randomly permutes the queue, pinning the current track at
// the top. A pure reorder: no undo push.
func (s *Session) ShuffleQueue() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.queue.Len() <= 1 {
		return
	}
	s.queue.Shuffle(s.rng)
	s.saveCurrentLocked()
	s.emitQueueLocked()
}

// ClearKeepingCurrent reduces the queue to just the current track.
func (s *Session) ClearKeepingCurrent() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.queue.ClearKeepingCurrent()
	s.clearCursorLocked()
	s.saveCurrentLocked()
	s.emitQueueLocked()
}

// ClearQueue empties the queue entirely, pushing the outgoing state onto
// undo history first.
func (s *Session) ClearQueue() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pushUndoLocked(nil)
	s.queue.Clear()
	s.clearCursorLocked()
	s.saveCurrentLocked()
	s.emitQueueLocked()
}
