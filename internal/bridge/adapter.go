package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// ErrUnknownMessage is returned by Decode for message kinds outside the
// known set. The adapter drops these after logging; they never block or
// crash delivery.
var ErrUnknownMessage = errors.New("bridge: unknown message kind")

// frame is the engine's raw JSON envelope.
type frame struct {
	Type     string  `json:"type"`
	State    string  `json:"state,omitempty"`
	Position float64 `json:"position,omitempty"` // seconds
	Duration float64 `json:"duration,omitempty"` // seconds
	Volume   float64 `json:"volume,omitempty"`   // percent 0..100
	Title    string  `json:"title,omitempty"`
	Message  string  `json:"message,omitempty"`
	Code     int     `json:"code,omitempty"`
}

// Decode parses one raw engine frame into a typed event.
func Decode(raw []byte) (Event, error) {
	var f frame
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("bridge: decode frame: %w", err)
	}

	switch f.Type {
	case "elementReady":
		return ElementReady{}, nil
	case "stateUpdate":
		return StateUpdate{
			State:    decodeState(f.State),
			Position: time.Duration(f.Position * float64(time.Second)),
			Duration: time.Duration(f.Duration * float64(time.Second)),
			Volume:   f.Volume / 100,
			Title:    f.Title,
		}, nil
	case "navigationError":
		return NavigationError{Message: f.Message}, nil
	case "playerError":
		return PlayerError{Code: f.Code}, nil
	case "log":
		return Log{Message: f.Message}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMessage, f.Type)
	}
}

func decodeState(s string) EngineState {
	switch s {
	case "playing":
		return EnginePlaying
	case "paused":
		return EnginePaused
	case "buffering":
		return EngineBuffering
	case "ended":
		return EngineEnded
	default:
		return EngineUnknown
	}
}

// Handler receives decoded events in delivery order.
type Handler interface {
	HandleEvent(Event)
}

// Adapter reads raw frames from a single delivery channel, decodes them,
// and forwards typed events to the handler.
type Adapter struct {
	handler Handler
	logger  *slog.Logger
}

// NewAdapter creates an adapter forwarding to handler. A nil logger uses
// slog.Default().
func NewAdapter(handler Handler, logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Adapter{handler: handler, logger: logger}
}

// Run consumes frames until the channel closes or the context ends.
// Frames that fail to decode are logged and dropped.
func (a *Adapter) Run(ctx context.Context, frames <-chan []byte) {
	for {
		select {
		case <-ctx.Done():
			return
		case raw, ok := <-frames:
			if !ok {
				return
			}
			a.Deliver(raw)
		}
	}
}

// Deliver decodes and forwards a single raw frame.
func (a *Adapter) Deliver(raw []byte) {
	ev, err := Decode(raw)
	if err != nil {
		a.logger.Warn("dropping engine message", "error", err)
		return
	}
	if lg, ok := ev.(Log); ok {
		// Diagnostic only, no state effect.
		a.logger.Debug("engine log", "message", lg.Message)
		return
	}
	a.handler.HandleEvent(ev)
}
