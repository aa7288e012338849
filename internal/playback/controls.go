package playback

import (
	"time"

	"github.com/llehouerou/crest/internal/catalog"
)

// previousRestartThreshold is how far into a track Previous() restarts it
// instead of going back one.
const previousRestartThreshold = 3 * time.Second

// Play replaces the queue with the single given track and starts it.
// Calling it with the track already playing is a no-op.
func (s *Session) Play(t catalog.Track) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if cur, ok := s.queue.Current(); ok && cur.ID == t.ID &&
		(s.state == StatePlaying || s.state == StateLoading || s.state == StateBuffering) {
		return
	}

	s.replaceQueueLocked([]catalog.Track{t}, 0)
	s.playCurrentLocked()
}

// PlayQueue replaces the queue with the given tracks and starts playback
// at the clamped start index.
func (s *Session) PlayQueue(tracks []catalog.Track, startAt int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(tracks) == 0 {
		s.logger.Debug("ignoring PlayQueue with no tracks")
		return
	}

	s.replaceQueueLocked(tracks, startAt)
	s.playCurrentLocked()
}

// Pause asks the engine to pause. A no-op unless currently playing or
// buffering; the state change itself arrives back as a bridge event.
func (s *Session) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StatePlaying && s.state != StateBuffering {
		return
	}
	s.engine.Pause()
}

// Resume asks the engine to resume paused playback.
func (s *Session) Resume() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StatePaused {
		return
	}
	s.engine.Play()
}

// Stop halts playback and returns to idle. The queue and current index
// are preserved so playback can be picked up again.
func (s *Session) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateIdle {
		return
	}
	s.engine.Pause()
	s.position = 0
	s.nearingEnd = false
	s.setStateLocked(StateIdle, "")
}

// Seek moves playback to the given position, clamped to non-negative.
func (s *Session) Seek(to time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.queue.IsEmpty() {
		return
	}
	if to < 0 {
		to = 0
	}
	s.engine.Seek(to)
	s.position = to
	s.nearingEnd = false
	s.emitPositionLocked()
}

// SetVolume sets the engine volume, clamped into 0..1.
func (s *Session) SetVolume(v float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	s.engine.SetVolume(v)
	s.volume = v
}

// Next advances playback according to repeat/shuffle policy. At the end
// of a mix queue it performs one synchronous continuation fetch and only
// advances if new tracks actually arrived; at the end of a plain queue it
// is a deliberate no-op.
func (s *Session) Next() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextLocked()
}

func (s *Session) nextLocked() {
	if s.queue.IsEmpty() {
		return
	}

	if s.repeat == RepeatOne {
		s.engine.Seek(0)
		s.engine.Play()
		s.position = 0
		s.nearingEnd = false
		s.emitPositionLocked()
		return
	}

	if s.shuffle {
		s.queue.SetCurrent(s.rng.IntN(s.queue.Len()))
		s.playCurrentLocked()
		s.saveCurrentLocked()
		s.maybeFetchMoreLocked()
		return
	}

	if s.queue.Advance() {
		s.playCurrentLocked()
		s.saveCurrentLocked()
		s.maybeFetchMoreLocked()
		return
	}

	if s.repeat == RepeatAll {
		s.queue.SetCurrent(0)
		s.playCurrentLocked()
		s.saveCurrentLocked()
		return
	}

	if s.mixCursor != "" {
		// Fetch first, advance only if tracks were appended; otherwise the
		// index would run into a still-empty tail.
		if s.fetchContinuationSyncLocked() && s.queue.Advance() {
			s.playCurrentLocked()
			s.saveCurrentLocked()
		}
		return
	}

	// End of queue, nothing to advance into.
}

// Previous restarts the current track when more than a few seconds in,
// otherwise steps back one. There is no wraparound at the head.
func (s *Session) Previous() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.queue.IsEmpty() {
		return
	}

	if s.position > previousRestartThreshold {
		s.restartCurrentLocked()
		return
	}

	if s.queue.CurrentIndex() > 0 {
		s.queue.SetCurrent(s.queue.CurrentIndex() - 1)
		s.playCurrentLocked()
		s.saveCurrentLocked()
		return
	}

	s.restartCurrentLocked()
}

// JumpTo moves playback to the track at the given index. Out-of-bounds
// indices are logged no-ops.
func (s *Session) JumpTo(index int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.queue.SetCurrent(index) {
		s.logger.Debug("rejecting jump to invalid index", "index", index, "len", s.queue.Len())
		return
	}
	s.playCurrentLocked()
	s.saveCurrentLocked()
	s.maybeFetchMoreLocked()
}

func (s *Session) restartCurrentLocked() {
	s.engine.Seek(0)
	s.engine.Play()
	s.position = 0
	s.nearingEnd = false
	s.emitPositionLocked()
}

// playCurrentLocked loads the current track into the engine. The engine
// acknowledges with elementReady, which triggers the actual play command.
func (s *Session) playCurrentLocked() {
	t, ok := s.queue.Current()
	if !ok {
		return
	}
	s.nearingEnd = false
	s.position = 0
	s.duration = t.Duration
	s.setStateLocked(StateLoading, "")
	s.engine.Load(t.MediaID)
	s.emitTrackLocked()
}
