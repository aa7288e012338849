package bridge

import "time"

// Engine defines the commands the core issues to the rendering engine.
// Commands are fire-and-forget: their effects are observed later through
// events, never through a return value.
type Engine interface {
	Load(mediaID string)
	Play()
	Pause()
	Seek(to time.Duration)
	SetVolume(v float64) // 0..1
}
