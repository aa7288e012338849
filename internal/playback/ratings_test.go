package playback

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/llehouerou/crest/internal/bridge"
	"github.com/llehouerou/crest/internal/catalog"
)

func trackByID(t *testing.T, s *Session, id string) catalog.Track {
	t.Helper()
	for _, tr := range s.QueueTracks() {
		if tr.ID == id {
			return tr
		}
	}
	t.Fatalf("track %s not in queue", id)
	return catalog.Track{}
}

func TestSetRating_AppliesOptimistically(t *testing.T) {
	s, _, cat, _ := newTestSession(t)
	s.PlayQueue(trks("a", "b"), 0)

	s.SetRating("a", catalog.RatingLiked)

	// Visible immediately, before the catalog confirms.
	if got := trackByID(t, s, "a").Rating; got != catalog.RatingLiked {
		t.Errorf("Rating = %v, want Liked", got)
	}

	s.bg.Wait()

	if got := trackByID(t, s, "a").Rating; got != catalog.RatingLiked {
		t.Errorf("Rating after confirm = %v, want Liked", got)
	}
	calls := cat.RatingCalls()
	if len(calls) != 1 || calls[0] != (catalog.RatingCall{TrackID: "a", Rating: catalog.RatingLiked}) {
		t.Errorf("RatingCalls() = %v", calls)
	}
}

func TestSetRating_TogglesBackToNeutral(t *testing.T) {
	s, _, cat, _ := newTestSession(t)
	liked := trk("a")
	liked.Rating = catalog.RatingLiked
	s.PlayQueue([]catalog.Track{liked}, 0)

	// Selecting the rating a track already has reverts it.
	s.SetRating("a", catalog.RatingLiked)
	s.bg.Wait()

	if got := trackByID(t, s, "a").Rating; got != catalog.RatingNeutral {
		t.Errorf("Rating = %v, want Neutral", got)
	}
	calls := cat.RatingCalls()
	if len(calls) != 1 || calls[0].Rating != catalog.RatingNeutral {
		t.Errorf("RatingCalls() = %v, want one Neutral call", calls)
	}
}

func TestSetRating_NoOpWhenUnchanged(t *testing.T) {
	s, _, cat, _ := newTestSession(t)
	s.PlayQueue(trks("a"), 0)

	s.SetRating("a", catalog.RatingNeutral)
	s.bg.Wait()

	if len(cat.RatingCalls()) != 0 {
		t.Error("rating a track with its current value should not hit the catalog")
	}
}

func TestSetRating_RollsBackOnFailure(t *testing.T) {
	s, _, cat, _ := newTestSession(t)
	cat.SetRatingError(errors.New("backend down"))
	s.PlayQueue(trks("a"), 0)

	s.SetRating("a", catalog.RatingDisliked)

	if got := trackByID(t, s, "a").Rating; got != catalog.RatingDisliked {
		t.Errorf("optimistic Rating = %v, want Disliked", got)
	}

	s.bg.Wait()

	if got := trackByID(t, s, "a").Rating; got != catalog.RatingNeutral {
		t.Errorf("Rating after rollback = %v, want Neutral", got)
	}
}

func TestSetRating_RollsBackOnCancellation(t *testing.T) {
	s, _, cat, _ := newTestSession(t)
	block := cat.BlockRating()
	defer close(block)
	s.PlayQueue(trks("a"), 0)

	// Confirm is held open; teardown cancels it mid-flight.
	s.SetRating("a", catalog.RatingLiked)
	if got := trackByID(t, s, "a").Rating; got != catalog.RatingLiked {
		t.Fatalf("optimistic Rating = %v, want Liked", got)
	}

	if err := s.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	// Cancellation is a failure like any other: rolled back before Close
	// returned.
	if got := trackByID(t, s, "a").Rating; got != catalog.RatingNeutral {
		t.Errorf("Rating after cancellation = %v, want Neutral", got)
	}
}

func TestSetRating_AfterCloseIsNoOp(t *testing.T) {
	s, _, cat, _ := newTestSession(t)
	s.PlayQueue(trks("a"), 0)

	if err := s.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	s.SetRating("a", catalog.RatingLiked)

	if len(cat.RatingCalls()) != 0 {
		t.Error("rating on a closed session should not hit the catalog")
	}
	if got := trackByID(t, s, "a").Rating; got != catalog.RatingNeutral {
		t.Errorf("Rating = %v, want unchanged", got)
	}
}

func TestSetRating_UnknownTrackIgnored(t *testing.T) {
	s, _, cat, _ := newTestSession(t)
	s.PlayQueue(trks("a"), 0)

	s.SetRating("ghost", catalog.RatingLiked)
	s.bg.Wait()

	if len(cat.RatingCalls()) != 0 {
		t.Error("rating a track not in the queue should be a no-op")
	}
}

func TestToggleLibrary_NoTokenIsNoOp(t *testing.T) {
	s, _, cat, _ := newTestSession(t)
	s.PlayQueue(trks("a"), 0) // no tokens attached

	s.ToggleLibrary("a")
	s.bg.Wait()

	if len(cat.LibraryCalls()) != 0 {
		t.Error("toggle without a token should not hit the catalog")
	}
	if trackByID(t, s, "a").InLibrary {
		t.Error("membership should be unchanged")
	}
}

func TestToggleLibrary_AddAndRefetch(t *testing.T) {
	s, _, cat, _ := newTestSession(t)

	tr := trk("a")
	tr.Tokens = &catalog.LibraryTokens{Add: "tok-add"}
	s.PlayQueue([]catalog.Track{tr}, 0)

	// The refetch after a successful mutation returns a fresh token pair.
	fresh := trk("a")
	fresh.InLibrary = true
	fresh.Tokens = &catalog.LibraryTokens{Remove: "tok-remove"}
	cat.SetTrack(fresh)

	s.ToggleLibrary("a")

	// Optimistic: membership flipped, spent token pair dropped.
	got := trackByID(t, s, "a")
	if !got.InLibrary {
		t.Error("InLibrary should flip immediately")
	}
	if got.Tokens != nil {
		t.Error("token pair should be dropped while the mutation is in flight")
	}

	s.bg.Wait()

	if calls := cat.LibraryCalls(); len(calls) != 1 || calls[0] != "tok-add" {
		t.Errorf("LibraryCalls() = %v, want [tok-add]", calls)
	}
	got = trackByID(t, s, "a")
	if !got.InLibrary {
		t.Error("InLibrary should remain set after confirm")
	}
	if got.Tokens == nil || got.Tokens.Remove != "tok-remove" {
		t.Errorf("Tokens = %+v, want fresh pair from refetch", got.Tokens)
	}
}

func TestToggleLibrary_RemoveUsesRemoveToken(t *testing.T) {
	s, _, cat, _ := newTestSession(t)

	tr := trk("a")
	tr.InLibrary = true
	tr.Tokens = &catalog.LibraryTokens{Add: "tok-add", Remove: "tok-remove"}
	s.PlayQueue([]catalog.Track{tr}, 0)
	cat.SetTrack(trk("a"))

	s.ToggleLibrary("a")
	s.bg.Wait()

	if calls := cat.LibraryCalls(); len(calls) != 1 || calls[0] != "tok-remove" {
		t.Errorf("LibraryCalls() = %v, want [tok-remove]", calls)
	}
}

func TestToggleLibrary_RollsBackOnFailure(t *testing.T) {
	s, _, cat, _ := newTestSession(t)
	cat.SetLibraryError(errors.New("backend down"))

	tr := trk("a")
	tr.Tokens = &catalog.LibraryTokens{Add: "tok-add"}
	s.PlayQueue([]catalog.Track{tr}, 0)

	s.ToggleLibrary("a")
	s.bg.Wait()

	got := trackByID(t, s, "a")
	if got.InLibrary {
		t.Error("InLibrary should revert after a failed mutation")
	}
	if got.Tokens == nil || got.Tokens.Add != "tok-add" {
		t.Errorf("Tokens = %+v, want original pair restored", got.Tokens)
	}
	if len(cat.TrackCalls()) != 0 {
		t.Error("no refetch should happen after a failed mutation")
	}
}

func TestToggleLibrary_RollsBackOnCancellation(t *testing.T) {
	s, _, cat, _ := newTestSession(t)
	block := cat.BlockLibrary()
	defer close(block)

	tr := trk("a")
	tr.Tokens = &catalog.LibraryTokens{Add: "tok-add"}
	s.PlayQueue([]catalog.Track{tr}, 0)

	s.ToggleLibrary("a")
	if !trackByID(t, s, "a").InLibrary {
		t.Fatal("InLibrary should flip immediately")
	}

	if err := s.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	got := trackByID(t, s, "a")
	if got.InLibrary {
		t.Error("InLibrary should revert after cancellation")
	}
	if got.Tokens == nil || got.Tokens.Add != "tok-add" {
		t.Errorf("Tokens = %+v, want original pair restored", got.Tokens)
	}
}

func TestMetadataRefresh_UpdatesIncompleteTracks(t *testing.T) {
	s, _, cat, _ := newTestSession(t)

	complete := trk("b")
	complete.Duration = 3 * time.Minute
	complete.Kind = catalog.KindStandard
	s.PlayQueue([]catalog.Track{trk("a"), complete}, 0) // a has no duration/kind yet

	fresh := trk("a")
	fresh.Duration = 2 * time.Minute
	fresh.Kind = catalog.KindAudioOnly
	cat.SetTrack(fresh)

	s.sweepOnce(t.Context())

	got := trackByID(t, s, "a")
	if got.Duration != 2*time.Minute || got.Kind != catalog.KindAudioOnly {
		t.Errorf("track a = %+v, want enriched metadata", got)
	}
	// Complete tracks are left alone.
	if calls := cat.TrackCalls(); len(calls) != 1 || calls[0] != "a" {
		t.Errorf("TrackCalls() = %v, want [a]", calls)
	}
}

func TestSweep_StopsOnCancellation(t *testing.T) {
	s, _, cat, _ := newTestSession(t)
	s.PlayQueue(trks("a", "b"), 0) // both incomplete

	ctx, cancel := context.WithCancel(t.Context())
	cancel()
	s.sweepOnce(ctx)

	if len(cat.TrackCalls()) != 0 {
		t.Error("cancelled sweep should fetch nothing")
	}
}

func TestStartEnrichment_RunsPeriodically(t *testing.T) {
	eng := bridge.NewMockEngine()
	cat := catalog.NewMock()
	s := New(Options{
		Engine:         eng,
		Catalog:        cat,
		Logger:         testLogger(),
		EnrichInterval: 5 * time.Millisecond,
		EnrichDelay:    time.Millisecond,
	})
	defer s.Close()

	s.PlayQueue(trks("a"), 0)
	fresh := trk("a")
	fresh.Duration = time.Minute
	fresh.Kind = catalog.KindStandard
	cat.SetTrack(fresh)

	s.StartEnrichment()
	waitUntil(t, func() bool { return len(cat.TrackCalls()) > 0 })
	s.StopEnrichment()
}
