// ABOUTME: Audio output interface definitions
// ABOUTME: Common contract for sinks the transport binds stream sources to
package player

import (
	"errors"
	"io"
)

// ErrOutputUnavailable marks bind-time failures of the output device
// so the application can surface them as a dismissible notice while
// the transport stays paused.
var ErrOutputUnavailable = errors.New("player: audio output unavailable")

// ErrNoBuffer is returned by playback operations when no recording is
// loaded.
var ErrNoBuffer = errors.New("player: no audio loaded")

// Output represents the process audio device.
type Output interface {
	// Open initializes the device. Calling Open again with the
	// same format is a no-op.
	Open(sampleRate, channels int) error

	// Format returns the rate and channel layout the device was
	// actually opened with.
	Format() (sampleRate, channels int)

	// NewSink attaches a pull-based sample producer to the device.
	NewSink(src io.Reader) (Sink, error)

	// Close releases the device.
	Close() error
}

// Sink is one playable binding on the output device.
type Sink interface {
	Play()
	Pause()
	IsPlaying() bool
	Close() error
}
