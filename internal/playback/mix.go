package playback

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/llehouerou/crest/internal/catalog"
)

// StartMix fetches the initial batch of an algorithmic mix, replaces the
// queue with a shuffled copy of it, stores the continuation cursor, and
// starts playback. The catalog returns a personalized-but-deterministic
// order per session; shuffling the client copy gives variety across
// repeated invocations.
func (s *Session) StartMix(playlistID, startTrackID string) error {
	batch, err := s.catalog.MixBatch(s.ctx, playlistID, startTrackID)
	if err != nil {
		s.logger.Warn("mix fetch failed", "playlist", playlistID, "error", err)
		s.emitError("mix_fetch", err)
		return fmt.Errorf("fetch mix batch: %w", err)
	}
	if len(batch.Tracks) == 0 {
		return fmt.Errorf("fetch mix batch: %w", catalog.ErrContract)
	}

	tracks := make([]catalog.Track, len(batch.Tracks))
	copy(tracks, batch.Tracks)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.rng.Shuffle(len(tracks), func(i, j int) {
		tracks[i], tracks[j] = tracks[j], tracks[i]
	})

	s.pushUndoLocked(tracks)
	s.queue.Replace(tracks, 0)
	s.mixCursor = batch.Cursor
	s.mixSource = playlistID
	s.saveCurrentLocked()
	s.emitQueueLocked()
	s.playCurrentLocked()
	return nil
}

// StartTrackRadio seeds the queue with the given track, starts playing it
// immediately, then fills in similar tracks in the background. The fill
// is discarded if the user navigated away from the seed while it was in
// flight.
func (s *Session) StartTrackRadio(seed catalog.Track) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.replaceQueueLocked([]catalog.Track{seed}, 0)
	s.playCurrentLocked()
	s.bg.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.bg.Done()

		tracks, err := s.catalog.RadioBatch(s.ctx, seed.ID)

		s.mu.Lock()
		defer s.mu.Unlock()

		if err != nil {
			s.logger.Warn("radio fetch failed", "seed", seed.ID, "error", err)
			s.emitError("radio_fetch", err)
			return
		}
		if s.closed {
			return
		}

		// The result only applies if the seed is still what's playing.
		cur, ok := s.queue.Current()
		if !ok || cur.ID != seed.ID {
			s.logger.Debug("discarding stale radio batch", "seed", seed.ID)
			return
		}

		rebuilt := make([]catalog.Track, 0, len(tracks)+1)
		rebuilt = append(rebuilt, cur)
		for _, t := range tracks {
			if t.ID == seed.ID {
				continue
			}
			rebuilt = append(rebuilt, t)
		}

		// Seed pinned at 0, playback uninterrupted: no undo push, no reload.
		s.queue.Replace(rebuilt, 0)
		s.saveCurrentLocked()
		s.emitQueueLocked()
	}()
}

// maybeFetchMoreLocked starts an asynchronous continuation fetch when the
// queue is running low. The in-flight guard makes overlapping triggers
// drop out here instead of queueing.
func (s *Session) maybeFetchMoreLocked() {
	if s.mixCursor == "" || s.fetchInFlight {
		return
	}
	if s.queue.RemainingAfterCurrent() > s.prefetchThreshold {
		return
	}

	s.fetchInFlight = true
	cursor := s.mixCursor
	fetchID := uuid.NewString()
	s.logger.Debug("continuation fetch started", "fetch_id", fetchID)

	s.bg.Add(1)
	go func() {
		defer s.bg.Done()

		batch, err := s.catalog.MixContinuation(s.ctx, cursor)

		s.mu.Lock()
		defer s.mu.Unlock()
		s.fetchInFlight = false

		if err != nil {
			s.logger.Warn("continuation fetch failed", "fetch_id", fetchID, "error", err)
			s.emitError("continuation_fetch", err)
			return
		}
		if s.closed || s.mixCursor != cursor {
			s.logger.Debug("discarding stale continuation", "fetch_id", fetchID)
			return
		}
		s.applyContinuationLocked(batch)
	}()
}

// fetchContinuationSyncLocked performs one continuation fetch while the
// caller waits, releasing the session lock for the duration of the
// network call. Returns whether new tracks were appended. Used by Next()
// at the tail of a mix queue.
func (s *Session) fetchContinuationSyncLocked() bool {
	if s.mixCursor == "" || s.fetchInFlight {
		return false
	}

	s.fetchInFlight = true
	cursor := s.mixCursor
	fetchID := uuid.NewString()

	s.mu.Unlock()
	batch, err := s.catalog.MixContinuation(s.ctx, cursor)
	s.mu.Lock()

	s.fetchInFlight = false
	if err != nil {
		s.logger.Warn("continuation fetch failed", "fetch_id", fetchID, "error", err)
		s.emitError("continuation_fetch", err)
		return false
	}
	if s.closed || s.mixCursor != cursor {
		s.logger.Debug("discarding stale continuation", "fetch_id", fetchID)
		return false
	}
	return s.applyContinuationLocked(batch) > 0
}

// applyContinuationLocked merges a continuation batch into the queue:
// tracks already present (by id) are filtered out, the remainder is
// appended, and the cursor is replaced with the response's. An absent
// response cursor terminates the mix. Returns the number of appended
// tracks.
func (s *Session) applyContinuationLocked(batch catalog.MixBatch) int {
	fresh := make([]catalog.Track, 0, len(batch.Tracks))
	seen := make(map[string]struct{}, len(batch.Tracks))
	for _, t := range batch.Tracks {
		if s.queue.ContainsID(t.ID) {
			continue
		}
		if _, dup := seen[t.ID]; dup {
			continue
		}
		seen[t.ID] = struct{}{}
		fresh = append(fresh, t)
	}

	if len(fresh) > 0 {
		s.queue.Append(fresh...)
		s.saveCurrentLocked()
		s.emitQueueLocked()
	}
	s.mixCursor = batch.Cursor
	return len(fresh)
}
