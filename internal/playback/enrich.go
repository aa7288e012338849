package playback

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// StartEnrichment launches the background metadata sweep: every interval
// it scans the queue for tracks with incomplete metadata and refetches
// them one at a time with a small inter-request delay. The sweep is
// cancellable as a unit and checks cancellation between items, not just
// at sweep start. Calling it twice restarts the sweep.
func (s *Session) StartEnrichment() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	if s.enrichCancel != nil {
		s.enrichCancel()
	}
	ctx, cancel := context.WithCancel(s.ctx)
	s.enrichCancel = cancel
	interval := s.enrichInterval
	s.mu.Unlock()

	s.bg.Add(1)
	go func() {
		defer s.bg.Done()

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.sweepOnce(ctx)
			}
		}
	}()
}

// StopEnrichment cancels the running sweep, if any.
func (s *Session) StopEnrichment() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.enrichCancel != nil {
		s.enrichCancel()
		s.enrichCancel = nil
	}
}

func (s *Session) sweepOnce(ctx context.Context) {
	s.mu.Lock()
	var pending []string
	for _, t := range s.queue.Tracks() {
		if t.Incomplete() {
			pending = append(pending, t.ID)
		}
	}
	delay := s.enrichDelay
	s.mu.Unlock()

	if len(pending) == 0 {
		return
	}

	sweepID := uuid.NewString()
	s.logger.Debug("enrichment sweep", "sweep_id", sweepID, "pending", len(pending))

	for _, id := range pending {
		if ctx.Err() != nil {
			return
		}

		fresh, err := s.catalog.Track(ctx, id)
		if err != nil {
			s.logger.Warn("enrichment fetch failed", "sweep_id", sweepID, "track", id, "error", err)
			continue
		}

		s.mu.Lock()
		// The queue may have changed while fetching; only replace a
		// track that is still present.
		if i := s.queue.IndexOfID(id); i >= 0 {
			s.queue.ReplaceAt(i, fresh)
			s.emitQueueLocked()
		}
		s.mu.Unlock()

		select {
		case <-ctx.Done():
			return
		case <-time.After(delay):
		}
	}
}
