// Package playback owns the playback state machine and everything that
// hangs off it: queue mutations with undo and persistence, mix
// continuation fetching, rating/library sync, bridge event handling, and
// the background metadata enrichment sweep.
//
// All queue and state mutations are serialized through the session mutex.
// Asynchronous completions (catalog fetches, enrichment) re-acquire the
// mutex and re-validate that their triggering context is still relevant
// before applying anything; stale results are discarded silently.
package playback

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/llehouerou/crest/internal/bridge"
	"github.com/llehouerou/crest/internal/catalog"
	"github.com/llehouerou/crest/internal/config"
	"github.com/llehouerou/crest/internal/queue"
	"github.com/llehouerou/crest/internal/store"
)

// Options configures a Session. Engine and Catalog are required; a nil
// Store disables persistence and a nil Logger falls back to slog.Default().
type Options struct {
	Engine  bridge.Engine
	Catalog catalog.Service
	Store   store.Blob
	Logger  *slog.Logger

	PrefetchThreshold int           // fetch more when remaining <= threshold (default 10)
	HistoryDepth      int           // undo snapshots retained (default 3)
	Volume            float64       // initial volume (default 1.0)
	EnrichInterval    time.Duration // enrichment sweep period (default 30s)
	EnrichDelay       time.Duration // delay between enrichment fetches (default 250ms)

	Rand *rand.Rand // deterministic source for tests; nil uses a seeded PCG
}

// OptionsFromConfig maps loaded configuration onto session options.
// Engine, Catalog, and Store still have to be set by the caller.
func OptionsFromConfig(cfg *config.Config) Options {
	pc := cfg.GetPlayerConfig()
	ec := cfg.GetEnrichmentConfig()
	return Options{
		PrefetchThreshold: pc.PrefetchThreshold,
		HistoryDepth:      pc.HistoryDepth,
		Volume:            pc.Volume,
		EnrichInterval:    time.Duration(ec.IntervalSeconds) * time.Second,
		EnrichDelay:       time.Duration(ec.RequestDelayMs) * time.Millisecond,
	}
}

// Session is the playback orchestration core.
type Session struct {
	mu sync.Mutex

	queue   *queue.Queue
	history *queue.History
	engine  bridge.Engine
	catalog catalog.Service
	blob    store.Blob
	logger  *slog.Logger
	rng     *rand.Rand

	state  State
	errMsg string

	position time.Duration
	duration time.Duration
	volume   float64

	repeat  RepeatMode
	shuffle bool

	// Set when the engine reports less than driftWindow remaining; used
	// to recognize an engine-driven track change on the next update.
	nearingEnd bool

	mixCursor     string
	mixSource     string
	fetchInFlight bool

	prefetchThreshold int
	enrichInterval    time.Duration
	enrichDelay       time.Duration
	enrichCancel      context.CancelFunc

	ctx    context.Context
	cancel context.CancelFunc
	bg     sync.WaitGroup
	closed bool

	subs   []*Subscription
	subsMu sync.RWMutex
}

// New creates a new playback session.
func New(opts Options) *Session {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.PrefetchThreshold <= 0 {
		opts.PrefetchThreshold = 10
	}
	if opts.HistoryDepth <= 0 {
		opts.HistoryDepth = queue.DefaultHistoryDepth
	}
	if opts.Volume <= 0 || opts.Volume > 1 {
		opts.Volume = 1.0
	}
	if opts.EnrichInterval <= 0 {
		opts.EnrichInterval = 30 * time.Second
	}
	if opts.EnrichDelay <= 0 {
		opts.EnrichDelay = 250 * time.Millisecond
	}
	if opts.Rand == nil {
		now := uint64(time.Now().UnixNano())
		opts.Rand = rand.New(rand.NewPCG(now, now>>32))
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Session{
		queue:             queue.New(),
		history:           queue.NewHistory(opts.HistoryDepth),
		engine:            opts.Engine,
		catalog:           opts.Catalog,
		blob:              opts.Store,
		logger:            opts.Logger,
		rng:               opts.Rand,
		volume:            opts.Volume,
		prefetchThreshold: opts.PrefetchThreshold,
		enrichInterval:    opts.EnrichInterval,
		enrichDelay:       opts.EnrichDelay,
		ctx:               ctx,
		cancel:            cancel,
	}
}

// State returns the current playback state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// ErrorMessage returns the message attached to an Errored state.
func (s *Session) ErrorMessage() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.errMsg
}

// Position returns the last reported playback position.
func (s *Session) Position() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.position
}

// Duration returns the last reported track duration.
func (s *Session) Duration() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.duration
}

// Volume returns the current volume (0..1).
func (s *Session) Volume() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.volume
}

// CurrentTrack returns the current track. ok is false on an empty queue.
func (s *Session) CurrentTrack() (t catalog.Track, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queue.Current()
}

// QueueTracks returns a copy of the queue contents.
func (s *Session) QueueTracks() []catalog.Track {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queue.Tracks()
}

// QueueIndex returns the current queue index.
func (s *Session) QueueIndex() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queue.CurrentIndex()
}

// QueueLen returns the number of queued tracks.
func (s *Session) QueueLen() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queue.Len()
}

// RepeatMode returns the current repeat mode.
func (s *Session) RepeatMode() RepeatMode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.repeat
}

// SetRepeatMode sets the repeat mode.
func (s *Session) SetRepeatMode(mode RepeatMode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.repeat == mode {
		return
	}
	s.repeat = mode
	s.emitMode()
}

// CycleRepeatMode advances Off -> All -> One -> Off and returns the new
// mode.
func (s *Session) CycleRepeatMode() RepeatMode {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.repeat {
	case RepeatOff:
		s.repeat = RepeatAll
	case RepeatAll:
		s.repeat = RepeatOne
	default:
		s.repeat = RepeatOff
	}
	s.emitMode()
	return s.repeat
}

// Shuffle returns whether shuffle mode is enabled.
func (s *Session) Shuffle() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.shuffle
}

// SetShuffle enables or disables shuffle mode.
func (s *Session) SetShuffle(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.shuffle == enabled {
		return
	}
	s.shuffle = enabled
	s.emitMode()
}

// ToggleShuffle flips shuffle mode and returns the new value.
func (s *Session) ToggleShuffle() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.shuffle = !s.shuffle
	s.emitMode()
	return s.shuffle
}

// CanUndo reports whether a prior queue snapshot can be restored.
func (s *Session) CanUndo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.CanUndo()
}

// Subscribe creates a new event subscription.
func (s *Session) Subscribe() *Subscription {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()
	sub := newSubscription()
	s.subs = append(s.subs, sub)
	return sub
}

// Close cancels all background work, waits for it to settle, and closes
// subscriptions. In-flight optimistic mutations observe the cancellation
// as a failure and roll back before Close returns.
func (s *Session) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	if s.enrichCancel != nil {
		s.enrichCancel()
		s.enrichCancel = nil
	}
	s.mu.Unlock()

	s.cancel()
	s.bg.Wait()

	s.subsMu.Lock()
	for _, sub := range s.subs {
		sub.close()
	}
	s.subs = nil
	s.subsMu.Unlock()

	return nil
}

// setStateLocked transitions the playback state and emits the change.
func (s *Session) setStateLocked(next State, msg string) {
	if s.state == next && s.errMsg == msg {
		return
	}
	prev := s.state
	s.state = next
	s.errMsg = msg
	s.emit(func(sub *Subscription) {
		sub.sendState(StateChange{Previous: prev, Current: next, Message: msg})
	})
}

func (s *Session) emit(send func(*Subscription)) {
	s.subsMu.RLock()
	defer s.subsMu.RUnlock()
	for _, sub := range s.subs {
		send(sub)
	}
}

func (s *Session) emitQueueLocked() {
	tracks := s.queue.Tracks()
	index := s.queue.CurrentIndex()
	s.emit(func(sub *Subscription) {
		sub.sendQueue(QueueChange{Tracks: tracks, Index: index})
	})
}

func (s *Session) emitTrackLocked() {
	t, ok := s.queue.Current()
	if !ok {
		return
	}
	index := s.queue.CurrentIndex()
	s.emit(func(sub *Subscription) {
		sub.sendTrack(TrackChange{Current: t, Index: index})
	})
}

func (s *Session) emitPositionLocked() {
	e := PositionChange{Position: s.position, Duration: s.duration}
	s.emit(func(sub *Subscription) {
		sub.sendPosition(e)
	})
}

func (s *Session) emitMode() {
	e := ModeChange{RepeatMode: s.repeat, Shuffle: s.shuffle}
	s.emit(func(sub *Subscription) {
		sub.sendMode(e)
	})
}

func (s *Session) emitRating(t catalog.Track) {
	e := RatingChange{TrackID: t.ID, Rating: t.Rating, InLibrary: t.InLibrary}
	s.emit(func(sub *Subscription) {
		sub.sendRating(e)
	})
}

func (s *Session) emitError(op string, err error) {
	e := ErrorEvent{Operation: op, Err: err}
	s.emit(func(sub *Subscription) {
		sub.sendError(e)
	})
}
