package playback

import (
	"io"
	"log/slog"
	"math/rand/v2"
	"slices"
	"testing"
	"time"

	"github.com/llehouerou/crest/internal/bridge"
	"github.com/llehouerou/crest/internal/catalog"
	"github.com/llehouerou/crest/internal/store"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestSession(t *testing.T) (*Session, *bridge.MockEngine, *catalog.Mock, *store.Memory) {
	t.Helper()

	eng := bridge.NewMockEngine()
	cat := catalog.NewMock()
	mem := store.NewMemory()
	s := New(Options{
		Engine:      eng,
		Catalog:     cat,
		Store:       mem,
		Logger:      testLogger(),
		EnrichDelay: time.Millisecond,
		Rand:        rand.New(rand.NewPCG(1, 2)),
	})
	t.Cleanup(func() { _ = s.Close() })
	return s, eng, cat, mem
}

func trk(id string) catalog.Track {
	return catalog.Track{
		ID:      id,
		MediaID: "m-" + id,
		Title:   "Title " + id,
		Artists: []string{"Artist"},
	}
}

func trks(ids ...string) []catalog.Track {
	out := make([]catalog.Track, len(ids))
	for i, id := range ids {
		out[i] = trk(id)
	}
	return out
}

func playingUpdate(pos, dur time.Duration) bridge.StateUpdate {
	return bridge.StateUpdate{State: bridge.EnginePlaying, Position: pos, Duration: dur}
}

func queueIDs(s *Session) []string {
	tracks := s.QueueTracks()
	ids := make([]string, len(tracks))
	for i, t := range tracks {
		ids[i] = t.ID
	}
	return ids
}

func TestPlayQueue_LoadsAndPlays(t *testing.T) {
	s, eng, _, _ := newTestSession(t)

	s.PlayQueue(trks("a", "b"), 0)

	if s.State() != StateLoading {
		t.Errorf("State() = %v, want Loading", s.State())
	}
	if got := eng.LoadCalls(); !slices.Equal(got, []string{"m-a"}) {
		t.Errorf("LoadCalls() = %v, want [m-a]", got)
	}

	// Engine acknowledges readiness; the initial play attempt follows.
	s.HandleEvent(bridge.ElementReady{})
	if eng.PlayCalls() != 1 {
		t.Errorf("PlayCalls() = %d, want 1", eng.PlayCalls())
	}

	s.HandleEvent(playingUpdate(0, time.Minute))
	if s.State() != StatePlaying {
		t.Errorf("State() = %v, want Playing", s.State())
	}
}

func TestPlayQueue_EmptyIgnored(t *testing.T) {
	s, eng, _, _ := newTestSession(t)

	s.PlayQueue(nil, 0)

	if s.State() != StateIdle {
		t.Errorf("State() = %v, want Idle", s.State())
	}
	if len(eng.LoadCalls()) != 0 {
		t.Error("empty PlayQueue should not touch the engine")
	}
}

func TestPlay_SameTrackIdempotent(t *testing.T) {
	s, eng, _, _ := newTestSession(t)

	s.Play(trk("a"))
	s.HandleEvent(bridge.ElementReady{})
	s.HandleEvent(playingUpdate(0, time.Minute))

	s.Play(trk("a"))

	if got := eng.LoadCalls(); len(got) != 1 {
		t.Errorf("LoadCalls() = %v, want a single load", got)
	}
	if s.State() != StatePlaying {
		t.Errorf("State() = %v, want Playing", s.State())
	}
}

func TestPause_Idempotent(t *testing.T) {
	s, eng, _, _ := newTestSession(t)

	s.PlayQueue(trks("a"), 0)
	s.HandleEvent(playingUpdate(0, time.Minute))

	s.Pause()
	if eng.PauseCalls() != 1 {
		t.Errorf("PauseCalls() = %d, want 1", eng.PauseCalls())
	}

	// Engine confirms; pausing again is a no-op.
	s.HandleEvent(bridge.StateUpdate{State: bridge.EnginePaused, Duration: time.Minute})
	s.Pause()
	if eng.PauseCalls() != 1 {
		t.Errorf("PauseCalls() = %d after second Pause, want 1", eng.PauseCalls())
	}
}

func TestResume_OnlyWhenPaused(t *testing.T) {
	s, eng, _, _ := newTestSession(t)

	s.PlayQueue(trks("a"), 0)
	s.HandleEvent(bridge.ElementReady{})
	plays := eng.PlayCalls()

	// Not paused: no-op.
	s.Resume()
	if eng.PlayCalls() != plays {
		t.Error("Resume while not paused should not hit the engine")
	}

	s.HandleEvent(bridge.StateUpdate{State: bridge.EnginePaused, Duration: time.Minute})
	s.Resume()
	if eng.PlayCalls() != plays+1 {
		t.Errorf("PlayCalls() = %d, want %d", eng.PlayCalls(), plays+1)
	}
}

func TestStop_PreservesQueue(t *testing.T) {
	s, _, _, _ := newTestSession(t)

	s.PlayQueue(trks("a", "b", "c"), 1)
	s.HandleEvent(playingUpdate(10*time.Second, time.Minute))

	s.Stop()

	if s.State() != StateIdle {
		t.Errorf("State() = %v, want Idle", s.State())
	}
	if s.QueueLen() != 3 || s.QueueIndex() != 1 {
		t.Errorf("queue = %d tracks index %d, want 3/1", s.QueueLen(), s.QueueIndex())
	}
}

func TestNext_AdvancesThenStopsAtTail(t *testing.T) {
	s, eng, _, _ := newTestSession(t)

	s.PlayQueue(trks("a", "b"), 0)

	s.Next()
	if s.QueueIndex() != 1 {
		t.Errorf("QueueIndex() = %d, want 1", s.QueueIndex())
	}
	if got := eng.LoadCalls(); !slices.Equal(got, []string{"m-a", "m-b"}) {
		t.Errorf("LoadCalls() = %v", got)
	}

	// At the tail with no repeat, no shuffle, no cursor: deliberate no-op.
	s.Next()
	if s.QueueIndex() != 1 {
		t.Errorf("QueueIndex() = %d after tail Next, want 1", s.QueueIndex())
	}
	if len(eng.LoadCalls()) != 2 {
		t.Errorf("LoadCalls() = %v, want no further loads", eng.LoadCalls())
	}
}

func TestNext_RepeatOne(t *testing.T) {
	s, eng, _, _ := newTestSession(t)

	s.PlayQueue(trks("a", "b"), 0)
	s.SetRepeatMode(RepeatOne)
	loads := len(eng.LoadCalls())

	s.Next()

	if s.QueueIndex() != 0 {
		t.Errorf("QueueIndex() = %d, want 0", s.QueueIndex())
	}
	if len(eng.LoadCalls()) != loads {
		t.Error("repeat-one Next should not reload media")
	}
	if got := eng.SeekCalls(); len(got) != 1 || got[0] != 0 {
		t.Errorf("SeekCalls() = %v, want [0]", got)
	}
	if eng.PlayCalls() != 1 {
		t.Errorf("PlayCalls() = %d, want 1", eng.PlayCalls())
	}
}

func TestNext_RepeatAllWraps(t *testing.T) {
	s, eng, _, _ := newTestSession(t)

	s.PlayQueue(trks("a", "b"), 1)
	s.SetRepeatMode(RepeatAll)

	s.Next()

	if s.QueueIndex() != 0 {
		t.Errorf("QueueIndex() = %d, want 0 (wrapped)", s.QueueIndex())
	}
	if got := eng.LoadCalls(); got[len(got)-1] != "m-a" {
		t.Errorf("last load = %s, want m-a", got[len(got)-1])
	}
}

func TestNext_Shuffle(t *testing.T) {
	s, eng, _, _ := newTestSession(t)

	s.PlayQueue(trks("a", "b", "c"), 0)
	s.SetShuffle(true)
	loads := len(eng.LoadCalls())

	s.Next()

	if idx := s.QueueIndex(); idx < 0 || idx >= 3 {
		t.Errorf("QueueIndex() = %d, out of bounds", idx)
	}
	if len(eng.LoadCalls()) != loads+1 {
		t.Errorf("LoadCalls() = %v, want one more load", eng.LoadCalls())
	}
}

func TestPrevious_RestartsWhenPastThreshold(t *testing.T) {
	s, eng, _, _ := newTestSession(t)

	s.PlayQueue(trks("a", "b"), 1)
	s.HandleEvent(playingUpdate(10*time.Second, time.Minute))
	loads := len(eng.LoadCalls())

	s.Previous()

	if s.QueueIndex() != 1 {
		t.Errorf("QueueIndex() = %d, want 1 (restart, not step back)", s.QueueIndex())
	}
	if len(eng.LoadCalls()) != loads {
		t.Error("restart should not reload media")
	}
	if got := eng.SeekCalls(); len(got) != 1 || got[0] != 0 {
		t.Errorf("SeekCalls() = %v, want [0]", got)
	}
}

func TestPrevious_StepsBack(t *testing.T) {
	s, eng, _, _ := newTestSession(t)

	s.PlayQueue(trks("a", "b"), 1)
	s.HandleEvent(playingUpdate(time.Second, time.Minute))

	s.Previous()

	if s.QueueIndex() != 0 {
		t.Errorf("QueueIndex() = %d, want 0", s.QueueIndex())
	}
	if got := eng.LoadCalls(); got[len(got)-1] != "m-a" {
		t.Errorf("last load = %s, want m-a", got[len(got)-1])
	}
}

func TestPrevious_AtHeadRestarts(t *testing.T) {
	s, eng, _, _ := newTestSession(t)

	s.PlayQueue(trks("a", "b"), 0)
	s.HandleEvent(playingUpdate(time.Second, time.Minute))

	s.Previous()

	// No wraparound to the queue's end.
	if s.QueueIndex() != 0 {
		t.Errorf("QueueIndex() = %d, want 0", s.QueueIndex())
	}
	if got := eng.SeekCalls(); len(got) != 1 || got[0] != 0 {
		t.Errorf("SeekCalls() = %v, want [0]", got)
	}
}

func TestJumpTo_InvalidIndexIgnored(t *testing.T) {
	s, eng, _, _ := newTestSession(t)

	s.PlayQueue(trks("a", "b"), 0)
	loads := len(eng.LoadCalls())

	s.JumpTo(7)

	if s.QueueIndex() != 0 {
		t.Errorf("QueueIndex() = %d, want 0", s.QueueIndex())
	}
	if len(eng.LoadCalls()) != loads {
		t.Error("invalid jump should not touch the engine")
	}
}

func TestSeek_ClampsNegative(t *testing.T) {
	s, eng, _, _ := newTestSession(t)

	s.PlayQueue(trks("a"), 0)
	s.Seek(-5 * time.Second)

	if got := eng.SeekCalls(); len(got) != 1 || got[0] != 0 {
		t.Errorf("SeekCalls() = %v, want [0]", got)
	}
	if s.Position() != 0 {
		t.Errorf("Position() = %v, want 0", s.Position())
	}
}

func TestSetVolume_Clamps(t *testing.T) {
	s, eng, _, _ := newTestSession(t)

	s.SetVolume(1.7)
	s.SetVolume(-0.3)

	if got := eng.VolumeCalls(); !slices.Equal(got, []float64{1, 0}) {
		t.Errorf("VolumeCalls() = %v, want [1 0]", got)
	}
}

func TestEndedEvent_AutoAdvances(t *testing.T) {
	s, eng, _, _ := newTestSession(t)

	s.PlayQueue(trks("a", "b"), 0)

	s.HandleEvent(bridge.StateUpdate{State: bridge.EngineEnded, Position: time.Minute, Duration: time.Minute})

	if s.QueueIndex() != 1 {
		t.Errorf("QueueIndex() = %d, want 1", s.QueueIndex())
	}
	if got := eng.LoadCalls(); got[len(got)-1] != "m-b" {
		t.Errorf("last load = %s, want m-b", got[len(got)-1])
	}
}

func TestSubscribe_ReceivesStateChanges(t *testing.T) {
	s, _, _, _ := newTestSession(t)
	sub := s.Subscribe()

	s.PlayQueue(trks("a"), 0)

	select {
	case e := <-sub.StateChanged:
		if e.Current != StateLoading {
			t.Errorf("StateChange.Current = %v, want Loading", e.Current)
		}
	default:
		t.Error("expected a StateChange event")
	}

	select {
	case e := <-sub.TrackChanged:
		if e.Current.ID != "a" {
			t.Errorf("TrackChange.Current.ID = %s, want a", e.Current.ID)
		}
	default:
		t.Error("expected a TrackChange event")
	}
}

func TestCycleRepeatMode(t *testing.T) {
	s, _, _, _ := newTestSession(t)

	if got := s.CycleRepeatMode(); got != RepeatAll {
		t.Errorf("first cycle = %v, want All", got)
	}
	if got := s.CycleRepeatMode(); got != RepeatOne {
		t.Errorf("second cycle = %v, want One", got)
	}
	if got := s.CycleRepeatMode(); got != RepeatOff {
		t.Errorf("third cycle = %v, want Off", got)
	}
}
