// ABOUTME: PCM buffer type shared by the decoder, transport and stream source
// ABOUTME: Immutable interleaved float32 samples plus sample rate and channel count
package audio

import (
	"errors"
	"time"
)

var (
	// ErrChannelLayout is returned for anything other than mono or stereo.
	ErrChannelLayout = errors.New("audio: only mono and stereo are supported")
	// ErrEmptyBuffer is returned when a decoder produced no samples.
	ErrEmptyBuffer = errors.New("audio: buffer holds no samples")
	// ErrRaggedBuffer is returned when the sample count is not a whole number of frames.
	ErrRaggedBuffer = errors.New("audio: sample count is not a multiple of channel count")
	// ErrSampleRate is returned for a non-positive sample rate.
	ErrSampleRate = errors.New("audio: sample rate must be positive")
)

// Buffer is one fully decoded recording. Samples are interleaved
// (L,R,L,R... for stereo) and never mutated after creation, so the
// buffer can be shared freely between the transport and any stream
// source still draining into the output device.
type Buffer struct {
	Samples    []float32 // interleaved, read-only after New
	SampleRate int
	Channels   int
}

// New validates and wraps decoded PCM data.
func New(samples []float32, sampleRate, channels int) (*Buffer, error) {
	if sampleRate <= 0 {
		return nil, ErrSampleRate
	}
	if channels != 1 && channels != 2 {
		return nil, ErrChannelLayout
	}
	if len(samples) == 0 {
		return nil, ErrEmptyBuffer
	}
	if len(samples)%channels != 0 {
		return nil, ErrRaggedBuffer
	}
	return &Buffer{Samples: samples, SampleRate: sampleRate, Channels: channels}, nil
}

// Len returns the total interleaved sample count.
func (b *Buffer) Len() int {
	return len(b.Samples)
}

// Frames returns the number of frames (one sample per channel).
func (b *Buffer) Frames() int {
	return len(b.Samples) / b.Channels
}

// Duration returns the playback length at speed 1.0.
func (b *Buffer) Duration() time.Duration {
	seconds := float64(b.Frames()) / float64(b.SampleRate)
	return time.Duration(seconds * float64(time.Second))
}

// ClampIndex bounds an interleaved index to [0, Len()].
func (b *Buffer) ClampIndex(idx int) int {
	if idx < 0 {
		return 0
	}
	if idx > b.Len() {
		return b.Len()
	}
	return idx
}

// IndexDelta converts a signed seconds offset to a signed interleaved
// sample offset. The frame count is truncated toward zero so +d and -d
// are symmetric, and the result always lands on a frame boundary.
func (b *Buffer) IndexDelta(seconds float64) int {
	frames := int(seconds * float64(b.SampleRate))
	return frames * b.Channels
}
