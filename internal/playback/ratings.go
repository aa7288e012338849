package playback

import (
	"github.com/llehouerou/crest/internal/catalog"
)

// SetRating rates a queued track with toggle semantics: selecting the
// rating it already has reverts it to neutral. The change is applied
// locally first and rolled back if the catalog confirm fails for any
// reason, cancellation included.
func (s *Session) SetRating(trackID string, desired catalog.Rating) {
	s.mu.Lock()

	if s.closed {
		s.mu.Unlock()
		return
	}

	idx := s.queue.IndexOfID(trackID)
	if idx < 0 {
		s.logger.Debug("rating for track not in queue", "track", trackID)
		s.mu.Unlock()
		return
	}
	t, _ := s.queue.At(idx)

	previous := t.Rating
	attempted := desired
	if previous == desired {
		attempted = catalog.RatingNeutral
	}
	if attempted == previous {
		s.mu.Unlock()
		return
	}

	// Optimistic apply.
	updated := t
	updated.Rating = attempted
	s.queue.ReplaceAt(idx, updated)
	s.emitRating(updated)
	s.bg.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.bg.Done()

		err := s.catalog.SetRating(s.ctx, trackID, attempted)
		if err == nil {
			return
		}

		s.logger.Warn("rating confirm failed, rolling back", "track", trackID, "error", err)
		s.emitError("rating", err)

		s.mu.Lock()
		defer s.mu.Unlock()
		i := s.queue.IndexOfID(trackID)
		if i < 0 {
			return
		}
		cur, _ := s.queue.At(i)
		if cur.Rating != attempted {
			// Someone re-rated while the confirm was in flight; their
			// state wins over our rollback.
			return
		}
		cur.Rating = previous
		s.queue.ReplaceAt(i, cur)
		s.emitRating(cur)
	}()
}

// ToggleLibrary flips a queued track's library membership using the
// mutation token matching the intended direction. Without a usable token
// the call is a logged no-op. On success the token pair is stale, so a
// metadata re-fetch is scheduled to obtain a fresh one; on failure the
// membership flag reverts.
func (s *Session) ToggleLibrary(trackID string) {
	s.mu.Lock()

	if s.closed {
		s.mu.Unlock()
		return
	}

	idx := s.queue.IndexOfID(trackID)
	if idx < 0 {
		s.logger.Debug("library toggle for track not in queue", "track", trackID)
		s.mu.Unlock()
		return
	}
	t, _ := s.queue.At(idx)

	var token string
	if t.Tokens != nil {
		if t.InLibrary {
			token = t.Tokens.Remove
		} else {
			token = t.Tokens.Add
		}
	}
	if token == "" {
		s.logger.Warn("library toggle without matching token", "track", trackID, "in_library", t.InLibrary)
		s.mu.Unlock()
		return
	}

	previous := t.InLibrary

	// Optimistic apply; the token pair is spent either way.
	updated := t
	updated.InLibrary = !previous
	updated.Tokens = nil
	s.queue.ReplaceAt(idx, updated)
	s.emitRating(updated)
	s.bg.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.bg.Done()

		err := s.catalog.MutateLibrary(s.ctx, token)

		if err != nil {
			s.logger.Warn("library mutate failed, rolling back", "track", trackID, "error", err)
			s.emitError("library", err)

			s.mu.Lock()
			defer s.mu.Unlock()
			i := s.queue.IndexOfID(trackID)
			if i < 0 {
				return
			}
			cur, _ := s.queue.At(i)
			cur.InLibrary = previous
			cur.Tokens = t.Tokens
			s.queue.ReplaceAt(i, cur)
			s.emitRating(cur)
			return
		}

		// The server swapped the token pair; only a fresh fetch yields a
		// pair valid for the next toggle.
		s.refetchTrack(trackID)
	}()
}

// refetchTrack replaces a queued track wholesale with fresh catalog
// metadata, if it is still queued when the fetch lands.
func (s *Session) refetchTrack(trackID string) {
	fresh, err := s.catalog.Track(s.ctx, trackID)
	if err != nil {
		s.logger.Warn("track refetch failed", "track", trackID, "error", err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.queue.IndexOfID(trackID)
	if i < 0 {
		return
	}
	s.queue.ReplaceAt(i, fresh)
	s.emitRating(fresh)
}
