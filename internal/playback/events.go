package playback

import (
	"time"

	"github.com/llehouerou/crest/internal/catalog"
)

// StateChange is emitted when playback state changes.
type StateChange struct {
	Previous State
	Current  State
	Message  string // set when Current is StateErrored
}

// TrackChange is emitted when the current track changes, whether by user
// navigation, automatic advance, or engine-driven drift correction.
type TrackChange struct {
	Current catalog.Track
	Index   int
}

// QueueChange is emitted when the queue contents change.
type QueueChange struct {
	Tracks []catalog.Track
	Index  int
}

// ModeChange is emitted when repeat or shuffle mode changes.
type ModeChange struct {
	RepeatMode RepeatMode
	Shuffle    bool
}

// PositionChange is emitted when position or duration updates arrive.
type PositionChange struct {
	Position time.Duration
	Duration time.Duration
}

// RatingChange is emitted when a track's rating or library status
// changes, including optimistic applies and their rollbacks.
type RatingChange struct {
	TrackID   string
	Rating    catalog.Rating
	InLibrary bool
}

// ErrorEvent is emitted when an internal operation fails.
type ErrorEvent struct {
	Operation string // e.g., "mix_fetch", "rating"
	Err       error
}
