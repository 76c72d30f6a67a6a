// ABOUTME: Transport owning the authoritative playback position and speed
// ABOUTME: Rebuilds the sink binding on every seek, speed change and resume
package player

import (
	"fmt"
	"math"
	"time"

	"github.com/pedalscribe/pedalscribe/internal/audio"
)

// The device context always opens stereo; mono recordings fan out in
// the stream source, so every binding has the same shape.
const outputChannels = 2

// MinSpeed is the floor for the playback speed factor. A stalled or
// reversed cursor is never permitted.
const MinSpeed = 0.1

// Transport tracks the playback position of the loaded recording and
// drives the output device. It is owned by the UI goroutine and is not
// safe for concurrent callers.
//
// The stream source cannot report its live cursor back from the
// device's pull thread, so while running the transport extrapolates
// the position from a captured (index, wall-clock) pair taken at the
// last rebind. Every mutation tears the old binding down completely
// before a new one is installed.
type Transport struct {
	out Output
	buf *audio.Buffer

	pos     int // resting interleaved index while paused
	speed   float64
	running bool
	sink    Sink

	startIndex int
	startTime  time.Time

	now func() time.Time
}

func NewTransport(out Output) *Transport {
	return &Transport{
		out:   out,
		speed: 1.0,
		now:   time.Now,
	}
}

// Load installs a freshly decoded recording, resetting position and
// speed and discarding any active binding.
func (t *Transport) Load(buf *audio.Buffer) {
	t.teardown()
	t.buf = buf
	t.pos = 0
	t.speed = 1.0
}

// Unload discards the recording and all playback state.
func (t *Transport) Unload() {
	t.teardown()
	t.buf = nil
	t.pos = 0
	t.speed = 1.0
}

// PlayFrom starts playback at an interleaved sample index. On a bind
// failure the transport is left paused with its position unchanged and
// the returned error wraps ErrOutputUnavailable.
func (t *Transport) PlayFrom(index int) error {
	if t.buf == nil {
		return ErrNoBuffer
	}
	index = t.buf.ClampIndex(index)

	// The old binding is fully torn down before the new one is
	// installed; two producers must never fight over the device.
	t.teardown()

	if err := t.out.Open(t.buf.SampleRate, outputChannels); err != nil {
		return fmt.Errorf("opening output: %w", err)
	}
	rate, channels := t.out.Format()
	sink, err := t.out.NewSink(NewStreamSource(t.buf, index, t.speed, rate, channels))
	if err != nil {
		return fmt.Errorf("binding sink: %w", err)
	}
	sink.Play()

	t.sink = sink
	t.pos = index
	t.startIndex = index
	t.startTime = t.now()
	t.running = true
	return nil
}

// Resume continues from the resting position.
func (t *Transport) Resume() error {
	if t.buf == nil {
		return ErrNoBuffer
	}
	if t.running {
		return nil
	}
	return t.PlayFrom(t.pos)
}

// Pause commits the extrapolated position and tears the binding down.
func (t *Transport) Pause() {
	if !t.running {
		return
	}
	t.pos = t.effectiveIndex()
	t.teardown()
}

// Seek moves the position by a signed seconds delta, clamped to the
// buffer bounds. While running the binding is rebuilt at the new
// index; while paused only the resting position moves.
func (t *Transport) Seek(deltaSeconds float64) error {
	if t.buf == nil {
		return nil
	}
	idx := t.buf.ClampIndex(t.effectiveIndex() + t.buf.IndexDelta(deltaSeconds))
	wasRunning := t.running
	t.pos = idx
	if wasRunning {
		return t.PlayFrom(idx)
	}
	return nil
}

// SetSpeed changes the playback speed factor, floored to MinSpeed.
// While running the binding is rebuilt at the current effective index
// so playback continues seamlessly under the new speed.
func (t *Transport) SetSpeed(factor float64) error {
	if math.IsNaN(factor) || factor < MinSpeed {
		factor = MinSpeed
	}
	if t.buf == nil {
		t.speed = factor
		return nil
	}
	idx := t.effectiveIndex()
	wasRunning := t.running
	t.speed = factor
	t.pos = idx
	if wasRunning {
		return t.PlayFrom(idx)
	}
	return nil
}

// PositionSnapshot returns (current, total) frame counts for display
// without mutating any state.
func (t *Transport) PositionSnapshot() (int, int) {
	if t.buf == nil {
		return 0, 0
	}
	return t.effectiveIndex() / t.buf.Channels, t.buf.Frames()
}

// ClampAtEnd detects end of stream. The stream source cannot signal
// completion back, so the tick calls this; once the extrapolated index
// reaches the end it forces a pause pinned to the final sample and
// reports that it fired.
func (t *Transport) ClampAtEnd() bool {
	if t.buf == nil || !t.running {
		return false
	}
	if t.effectiveIndex() < t.buf.Len() {
		return false
	}
	t.teardown()
	t.pos = t.buf.Len()
	return true
}

func (t *Transport) IsPlaying() bool { return t.running }
func (t *Transport) Loaded() bool    { return t.buf != nil }
func (t *Transport) Speed() float64  { return t.speed }

// SampleRate returns the loaded recording's rate, or 0.
func (t *Transport) SampleRate() int {
	if t.buf == nil {
		return 0
	}
	return t.buf.SampleRate
}

func (t *Transport) teardown() {
	if t.sink != nil {
		t.sink.Close()
		t.sink = nil
	}
	t.running = false
}

// effectiveIndex is the live position estimate: the captured start
// index plus whole frames elapsed on the wall clock, scaled by speed.
func (t *Transport) effectiveIndex() int {
	if !t.running {
		return t.pos
	}
	elapsed := t.now().Sub(t.startTime).Seconds()
	frames := int(elapsed * float64(t.buf.SampleRate) * t.speed)
	return t.buf.ClampIndex(t.startIndex + frames*t.buf.Channels)
}
