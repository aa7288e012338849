package catalog

import (
	"context"
	"errors"
)

// ErrAuthExpired is returned when the catalog rejects the session's
// credentials. It is not retried locally; the caller must surface it to a
// re-auth flow.
var ErrAuthExpired = errors.New("catalog: auth expired")

// ErrContract is returned when a catalog response does not match the
// expected shape. Treated as a fetch failure: logged, operation abandoned.
var ErrContract = errors.New("catalog: unexpected response shape")

// Service defines the catalog contract for dependency injection and testing.
// All calls may fail with network, authorization, or server-side errors;
// none of them is retried inside the orchestration core.
type Service interface {
	// Track fetches full metadata for a single track.
	Track(ctx context.Context, id string) (Track, error)

	// MixBatch fetches the first page of a mix queue for a playlist,
	// optionally anchored at a start track.
	MixBatch(ctx context.Context, playlistID, startTrackID string) (MixBatch, error)

	// MixContinuation fetches the next page for a continuation cursor.
	MixContinuation(ctx context.Context, cursor string) (MixBatch, error)

	// RadioBatch fetches tracks similar to the seed track.
	RadioBatch(ctx context.Context, seedID string) ([]Track, error)

	// SetRating records a rating for a track.
	SetRating(ctx context.Context, trackID string, rating Rating) error

	// MutateLibrary applies a library add/remove using the given token.
	MutateLibrary(ctx context.Context, token string) error
}
