package catalog

import (
	"context"
	"sync"
)

// Mock is a test double for Service.
type Mock struct {
	mu sync.Mutex

	tracks map[string]Track

	mixBatch        MixBatch
	mixErr          error
	continuations   []MixBatch
	continuationErr error
	radioTracks     []Track
	radioErr        error
	ratingErr       error
	libraryErr      error
	trackErr        error

	trackCalls        []string
	mixCalls          []string
	continuationCalls []string
	radioCalls        []string
	ratingCalls       []RatingCall
	libraryCalls      []string

	// Block channels, when set, are closed by the test to release the
	// corresponding call. Rating and library blocks honor the caller's
	// context and return ctx.Err() on cancellation.
	blockRadio        chan struct{}
	blockContinuation chan struct{}
	blockRating       chan struct{}
	blockLibrary      chan struct{}
}

// RatingCall records one SetRating invocation.
type RatingCall struct {
	TrackID string
	Rating  Rating
}

// NewMock creates a new mock catalog for testing.
func NewMock() *Mock {
	return &Mock{tracks: make(map[string]Track)}
}

func (m *Mock) Track(_ context.Context, id string) (Track, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.trackCalls = append(m.trackCalls, id)
	if m.trackErr != nil {
		return Track{}, m.trackErr
	}
	if t, ok := m.tracks[id]; ok {
		return t, nil
	}
	return Track{}, ErrContract
}

func (m *Mock) MixBatch(_ context.Context, playlistID, _ string) (MixBatch, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mixCalls = append(m.mixCalls, playlistID)
	if m.mixErr != nil {
		return MixBatch{}, m.mixErr
	}
	return m.mixBatch, nil
}

func (m *Mock) MixContinuation(_ context.Context, cursor string) (MixBatch, error) {
	m.mu.Lock()
	m.continuationCalls = append(m.continuationCalls, cursor)
	block := m.blockContinuation
	err := m.continuationErr
	var batch MixBatch
	if err == nil && len(m.continuations) > 0 {
		batch = m.continuations[0]
		m.continuations = m.continuations[1:]
	}
	m.mu.Unlock()

	if block != nil {
		<-block
	}
	if err != nil {
		return MixBatch{}, err
	}
	return batch, nil
}

func (m *Mock) RadioBatch(_ context.Context, seedID string) ([]Track, error) {
	m.mu.Lock()
	m.radioCalls = append(m.radioCalls, seedID)
	block := m.blockRadio
	tracks := m.radioTracks
	err := m.radioErr
	m.mu.Unlock()

	if block != nil {
		<-block
	}
	return tracks, err
}

func (m *Mock) SetRating(ctx context.Context, trackID string, rating Rating) error {
	m.mu.Lock()
	m.ratingCalls = append(m.ratingCalls, RatingCall{TrackID: trackID, Rating: rating})
	block := m.blockRating
	err := m.ratingErr
	m.mu.Unlock()

	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return err
}

func (m *Mock) MutateLibrary(ctx context.Context, token string) error {
	m.mu.Lock()
	m.libraryCalls = append(m.libraryCalls, token)
	block := m.blockLibrary
	err := m.libraryErr
	m.mu.Unlock()

	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return err
}

// Test helpers

func (m *Mock) SetTrack(t Track) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tracks[t.ID] = t
}

func (m *Mock) SetTrackError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.trackErr = err
}

func (m *Mock) SetMixBatch(b MixBatch) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mixBatch = b
}

func (m *Mock) SetMixError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mixErr = err
}

// QueueContinuation appends a batch to be returned by the next
// MixContinuation call (FIFO).
func (m *Mock) QueueContinuation(b MixBatch) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.continuations = append(m.continuations, b)
}

func (m *Mock) SetContinuationError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.continuationErr = err
}

func (m *Mock) SetRadioTracks(tracks []Track) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.radioTracks = tracks
}

func (m *Mock) SetRadioError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.radioErr = err
}

// BlockRadio makes RadioBatch block until the returned channel is closed.
func (m *Mock) BlockRadio() chan struct{} {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blockRadio = make(chan struct{})
	return m.blockRadio
}

// BlockContinuation makes MixContinuation block until the returned
// channel is closed.
func (m *Mock) BlockContinuation() chan struct{} {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blockContinuation = make(chan struct{})
	return m.blockContinuation
}

// UnblockContinuation clears the continuation block for subsequent calls.
func (m *Mock) UnblockContinuation() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blockContinuation = nil
}

// BlockRating makes SetRating block until the returned channel is closed
// or the call's context is cancelled.
func (m *Mock) BlockRating() chan struct{} {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blockRating = make(chan struct{})
	return m.blockRating
}

// BlockLibrary makes MutateLibrary block until the returned channel is
// closed or the call's context is cancelled.
func (m *Mock) BlockLibrary() chan struct{} {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blockLibrary = make(chan struct{})
	return m.blockLibrary
}

func (m *Mock) SetRatingError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ratingErr = err
}

func (m *Mock) SetLibraryError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.libraryErr = err
}

func (m *Mock) TrackCalls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.trackCalls...)
}

func (m *Mock) ContinuationCalls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.continuationCalls...)
}

func (m *Mock) RadioCalls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.radioCalls...)
}

func (m *Mock) RatingCalls() []RatingCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]RatingCall(nil), m.ratingCalls...)
}

func (m *Mock) LibraryCalls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.libraryCalls...)
}

// Verify Mock implements Service at compile time.
var _ Service = (*Mock)(nil)
