// ABOUTME: Edge classifier mapping raw pedal codes to transport operations
// ABOUTME: Debounces duplicate edges and drives hold-to-rewind repeats
package control

import (
	"time"

	"github.com/pedalscribe/pedalscribe/internal/pedal"
)

// Transport is the slice of playback control the dispatcher needs.
type Transport interface {
	Loaded() bool
	Pause()
	Resume() error
	Seek(deltaSeconds float64) error
}

// Mapping binds the three logical pedal roles to hardware key codes.
type Mapping struct {
	Left   uint16
	Right  uint16
	Middle uint16
}

// Config wires a dispatcher.
type Config struct {
	Mapping Mapping

	// StartRewindSeconds is the small jump-back applied when the
	// right pedal starts playback.
	StartRewindSeconds float64
	// RewindSeconds is the step applied per hold-repeat of the left
	// pedal.
	RewindSeconds float64
	// HoldInterval is the minimum spacing between hold repeats.
	HoldInterval time.Duration

	Transport Transport
	// OnArchive fires when the middle pedal requests archiving.
	OnArchive func()
	// OnError receives transport failures raised by pedal actions.
	OnError func(err error)
}

// Dispatcher consumes debounced raw events on the UI goroutine. Each
// logical button is a tiny {Released, Pressed} machine; autorepeat
// values never count as state input.
type Dispatcher struct {
	cfg Config

	leftPressed   bool
	rightPressed  bool
	middlePressed bool

	holdActive bool
	lastRepeat time.Time // zero arms an immediate first repeat
}

func NewDispatcher(cfg Config) *Dispatcher {
	return &Dispatcher{cfg: cfg}
}

// HandleEvent classifies one raw (code, value) pair. Values other
// than press/release are ignored; unmapped codes are ignored.
func (d *Dispatcher) HandleEvent(ev pedal.Event, now time.Time) {
	if ev.Value != pedal.ValuePress && ev.Value != pedal.ValueRelease {
		return
	}
	press := ev.Value == pedal.ValuePress

	switch ev.Code {
	case d.cfg.Mapping.Right:
		d.handleRight(press)
	case d.cfg.Mapping.Left:
		d.handleLeft(press)
	case d.cfg.Mapping.Middle:
		d.handleMiddle(press)
	}
}

// handleRight: press rewinds a little and plays, release pauses.
func (d *Dispatcher) handleRight(press bool) {
	if !press {
		d.rightPressed = false
		d.cfg.Transport.Pause()
		return
	}
	if d.rightPressed {
		// Duplicate press without an intervening release.
		return
	}
	d.rightPressed = true
	if !d.cfg.Transport.Loaded() {
		return
	}
	d.report(d.cfg.Transport.Seek(-d.cfg.StartRewindSeconds))
	d.report(d.cfg.Transport.Resume())
}

// handleLeft arms the hold-repeat machine; the first rewind happens
// on the next tick, not on the press itself.
func (d *Dispatcher) handleLeft(press bool) {
	if !press {
		d.leftPressed = false
		d.holdActive = false
		d.lastRepeat = time.Time{}
		return
	}
	if d.leftPressed {
		return
	}
	d.leftPressed = true
	d.holdActive = true
	d.lastRepeat = time.Time{}
}

// handleMiddle pauses and raises an archive request.
func (d *Dispatcher) handleMiddle(press bool) {
	if !press {
		d.middlePressed = false
		return
	}
	if d.middlePressed {
		return
	}
	d.middlePressed = true
	d.cfg.Transport.Pause()
	if d.cfg.OnArchive != nil {
		d.cfg.OnArchive()
	}
}

// Tick performs due hold-repeats. It is driven by the UI refresh
// cadence, so repeats continue while the pedal itself is silent. A
// tick landing exactly on the interval boundary counts as due.
func (d *Dispatcher) Tick(now time.Time) {
	if !d.holdActive {
		return
	}
	if !d.lastRepeat.IsZero() && now.Sub(d.lastRepeat) < d.cfg.HoldInterval {
		return
	}
	d.report(d.cfg.Transport.Seek(-d.cfg.RewindSeconds))
	d.lastRepeat = now
}

// HandleStatus reacts to scanner state changes. A pedal error forces
// an immediate pause and clears all button state: silence is preferred
// over a runaway mapping whose release edge will never arrive.
func (d *Dispatcher) HandleStatus(st pedal.Status) {
	if st.Kind != pedal.StatusError {
		return
	}
	d.cfg.Transport.Pause()
	d.leftPressed = false
	d.rightPressed = false
	d.middlePressed = false
	d.holdActive = false
	d.lastRepeat = time.Time{}
}

func (d *Dispatcher) report(err error) {
	if err != nil && d.cfg.OnError != nil {
		d.cfg.OnError(err)
	}
}
