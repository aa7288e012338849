// Package bridge isolates the core from the embedded rendering engine's
// native message format. Inbound frames are decoded into a closed set of
// typed events at this boundary; anything unrecognized is logged and
// dropped, never passed deeper into the core.
package bridge

import "time"

// EngineState is the playback state as reported by the engine. The
// engine's reports are authoritative for these states.
type EngineState int

const (
	EngineUnknown EngineState = iota
	EnginePlaying
	EnginePaused
	EngineBuffering
	EngineEnded
)

// String returns the state name.
func (s EngineState) String() string {
	switch s {
	case EnginePlaying:
		return "playing"
	case EnginePaused:
		return "paused"
	case EngineBuffering:
		return "buffering"
	case EngineEnded:
		return "ended"
	default:
		return "unknown"
	}
}

// Event is a typed message received from the rendering engine.
type Event interface {
	isEvent()
}

// ElementReady signals the engine's player element is ready; the core
// responds with an initial play attempt.
type ElementReady struct{}

// StateUpdate carries the engine's current playback state and timing.
// A zero Position or Duration means "not reported" and must never be
// interpreted as track-ended; only EngineEnded means that.
type StateUpdate struct {
	State    EngineState
	Position time.Duration
	Duration time.Duration
	Volume   float64 // normalized 0..1
	Title    string  // engine-reported current title, if any
}

// NavigationError reports the engine failed to navigate to media.
type NavigationError struct {
	Message string
}

// PlayerError reports an engine-internal playback error.
type PlayerError struct {
	Code int
}

// Log is a diagnostic message from the engine with no state effect.
type Log struct {
	Message string
}

func (ElementReady) isEvent()    {}
func (StateUpdate) isEvent()     {}
func (NavigationError) isEvent() {}
func (PlayerError) isEvent()     {}
func (Log) isEvent()             {}
