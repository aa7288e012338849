// Package catalog defines the track model and the remote catalog service
// boundary: metadata lookups, mix/radio batches with continuation cursors,
// and rating/library mutations.
package catalog

import (
	"strings"
	"time"
)

// Kind describes what the rendering engine can do with a track's media.
type Kind int

const (
	KindUnknown Kind = iota
	KindStandard
	KindAudioOnly
	KindUserGenerated
	KindPodcastEpisode
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindStandard:
		return "standard"
	case KindAudioOnly:
		return "audio_only"
	case KindUserGenerated:
		return "user_generated"
	case KindPodcastEpisode:
		return "podcast_episode"
	default:
		return "unknown"
	}
}

// Rating is the user's rating of a track.
type Rating int

const (
	RatingNeutral Rating = iota
	RatingLiked
	RatingDisliked
)

// String returns the rating name.
func (r Rating) String() string {
	switch r {
	case RatingLiked:
		return "liked"
	case RatingDisliked:
		return "disliked"
	default:
		return "neutral"
	}
}

// LibraryTokens holds the opaque credential pair the catalog returns for
// toggling library membership. Each token is good for one direction; the
// pair is swapped server-side after a successful mutation, so a fresh
// metadata fetch is needed before the next toggle.
type LibraryTokens struct {
	Add    string
	Remove string
}

// Track is an immutable description of a track. Richer metadata replaces
// the whole value, it is never patched in place.
type Track struct {
	ID           string // stable identifier
	MediaID      string // opaque id understood by the engine and the catalog
	Title        string
	Artists      []string
	Album        string
	Duration     time.Duration // 0 = unknown, populated lazily
	ThumbnailURL string
	Kind         Kind
	Rating       Rating
	InLibrary    bool
	Tokens       *LibraryTokens
}

// ArtistLine returns the display string for the track's artists.
func (t Track) ArtistLine() string {
	return strings.Join(t.Artists, ", ")
}

// Incomplete reports whether the track still needs a metadata fetch.
// Used by the enrichment sweep to pick candidates.
func (t Track) Incomplete() bool {
	return t.Duration == 0 || t.Kind == KindUnknown
}

// MixBatch is one page of an algorithmically generated queue.
// An empty Cursor means the mix has no further pages.
type MixBatch struct {
	Tracks []Track
	Cursor string
}
