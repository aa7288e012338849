package playback

import (
	"fmt"
	"time"

	"github.com/llehouerou/crest/internal/bridge"
	"github.com/llehouerou/crest/internal/catalog"
)

// driftWindow is the remaining-time threshold below which the session
// arms itself to recognize an engine-driven track change.
const driftWindow = 2 * time.Second

// HandleEvent applies one bridge event. Events arrive in emission order
// on a single delivery channel; the engine's reports are authoritative
// for playing/paused/buffering/ended.
func (s *Session) HandleEvent(ev bridge.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch e := ev.(type) {
	case bridge.ElementReady:
		// Engine finished loading; issue the initial play attempt.
		s.engine.Play()
	case bridge.StateUpdate:
		s.handleStateUpdateLocked(e)
	case bridge.NavigationError:
		s.setStateLocked(StateErrored, e.Message)
	case bridge.PlayerError:
		s.setStateLocked(StateErrored, fmt.Sprintf("engine error %d", e.Code))
	default:
		s.logger.Warn("unhandled bridge event", "event", fmt.Sprintf("%T", ev))
	}
}

func (s *Session) handleStateUpdateLocked(e bridge.StateUpdate) {
	if e.Volume > 0 {
		s.volume = e.Volume
	}

	if s.detectDriftLocked(e) {
		// The update describes a track the session just rejected; none
		// of its timing or state applies to the re-asserted one.
		return
	}

	s.position = e.Position
	if e.Duration > 0 {
		s.duration = e.Duration
	}
	s.emitPositionLocked()

	// Arm drift detection when the track is about to run out. Zero or
	// absent duration never counts as nearing the end.
	if e.Duration > 0 && e.Duration-e.Position < driftWindow {
		s.nearingEnd = true
	}

	switch e.State {
	case bridge.EnginePlaying:
		s.setStateLocked(StatePlaying, "")
	case bridge.EnginePaused:
		s.setStateLocked(StatePaused, "")
	case bridge.EngineBuffering:
		s.setStateLocked(StateBuffering, "")
	case bridge.EngineEnded:
		// Only the explicit ended code means the track finished; zero
		// position or duration by itself never does.
		s.setStateLocked(StateEnded, "")
		s.nearingEnd = false
		s.nextLocked()
	case bridge.EngineUnknown:
		// Timing-only update.
	}
}

// detectDriftLocked reconciles engine-driven autoplay with the queue.
// When the previous track was nearing its end and the engine now reports
// a different title, the engine advanced on its own: if it advanced to
// our expected next track we just move the index to stay in sync, and if
// it went somewhere else we force our own Next() to re-assert queue
// order. Either way the confirmed track change resets rating and library
// status pending a re-fetch.
//
// Returns true when a re-asserting next() was forced: the triggering
// update then describes a rejected track and must not be applied.
func (s *Session) detectDriftLocked(e bridge.StateUpdate) bool {
	if !s.nearingEnd || e.Title == "" {
		return false
	}
	cur, ok := s.queue.Current()
	if !ok || e.Title == cur.Title {
		return false
	}

	s.nearingEnd = false

	next, hasNext := s.queue.At(s.queue.CurrentIndex() + 1)
	if hasNext && e.Title == next.Title {
		// Engine advanced exactly as the queue expects; follow it
		// without re-triggering playback. The update's timing belongs to
		// the track now current, so the caller keeps applying it.
		s.queue.Advance()
		s.resetCurrentStatusLocked()
		s.saveCurrentLocked()
		s.emitTrackLocked()
		s.maybeFetchMoreLocked()
		return false
	}

	s.logger.Info("engine autoplay drifted from queue, re-asserting",
		"engine_title", e.Title, "expected", func() string {
			if hasNext {
				return next.Title
			}
			return ""
		}())
	s.nextLocked()
	return true
}

// resetCurrentStatusLocked clears rating/library status on the track the
// engine advanced into; fresh values arrive with the next metadata fetch.
func (s *Session) resetCurrentStatusLocked() {
	t, ok := s.queue.Current()
	if !ok {
		return
	}
	t.Rating = catalog.RatingNeutral
	t.InLibrary = false
	t.Tokens = nil
	s.queue.ReplaceAt(s.queue.CurrentIndex(), t)
}
