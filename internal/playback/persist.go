package playback

import (
	"fmt"

	"github.com/llehouerou/crest/internal/store"
)

// saveCurrentLocked persists a snapshot of the live queue. An empty queue
// deletes the stored snapshot instead so no empty-queue artifact remains.
// Write failures are logged, never surfaced.
func (s *Session) saveCurrentLocked() {
	if s.blob == nil {
		return
	}

	if s.queue.IsEmpty() {
		if err := s.blob.DeleteBlob(store.KeyCurrentQueue); err != nil {
			s.logger.Warn("deleting queue snapshot failed", "error", err)
		}
		return
	}

	snap := store.NewSnapshot(s.queue.Tracks(), s.queue.CurrentIndex())
	data, err := snap.Encode()
	if err != nil {
		s.logger.Warn("encoding queue snapshot failed", "error", err)
		return
	}
	if err := s.blob.WriteBlob(store.KeyCurrentQueue, data); err != nil {
		s.logger.Warn("writing queue snapshot failed", "error", err)
	}
}

// LoadSaved restores the persisted queue snapshot, if any. Meant to run
// once at startup, before the session is handed to the UI; the restored
// index is clamped into the restored list's bounds.
func (s *Session) LoadSaved() error {
	if s.blob == nil {
		return nil
	}

	data, err := s.blob.ReadBlob(store.KeyCurrentQueue)
	if err != nil {
		return fmt.Errorf("read queue snapshot: %w", err)
	}
	if data == nil {
		return nil
	}

	snap, err := store.DecodeSnapshot(data)
	if err != nil {
		return fmt.Errorf("decode queue snapshot: %w", err)
	}
	if len(snap.Tracks) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.queue.Replace(snap.TrackList(), snap.CurrentIndex)
	s.emitQueueLocked()
	return nil
}

// RestorePrevious pops the most recent undo snapshot and applies it as
// the live queue. It never re-pushes the replaced queue, so repeated
// restores walk back through history instead of oscillating.
func (s *Session) RestorePrevious() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, ok := s.history.Pop()
	if !ok {
		return false
	}

	s.queue.Replace(snap.TrackList(), snap.CurrentIndex)
	s.clearCursorLocked()
	s.saveCurrentLocked()
	s.emitQueueLocked()
	return true
}
