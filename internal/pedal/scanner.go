// ABOUTME: Background scan/read/reconnect loop for the foot pedal
// ABOUTME: Broadcasts statuses and raw key events on independent channels
package pedal

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
)

const (
	// A pedal may stay unplugged for the whole session; rediscovery
	// retries forever with this fixed backoff.
	defaultBackoff = 2 * time.Second

	// Scanning statuses are idempotent, so while no device is found
	// they are repeated at most once per this interval.
	scanReportInterval = time.Second
)

// Scanner owns the discovery retry loop. It never touches playback
// state; it only produces messages. Both channels are buffered and
// written with non-blocking sends so a stalled consumer can never
// stall the read loop.
type Scanner struct {
	enum       Enumerator
	candidates []Candidate
	backoff    time.Duration
	log        zerolog.Logger

	statuses chan Status
	events   chan Event
}

func NewScanner(enum Enumerator, candidates []Candidate, log zerolog.Logger) *Scanner {
	return &Scanner{
		enum:       enum,
		candidates: candidates,
		backoff:    defaultBackoff,
		log:        log,
		statuses:   make(chan Status, 8),
		events:     make(chan Event, 64),
	}
}

// Statuses delivers connection-state transitions in emission order.
func (s *Scanner) Statuses() <-chan Status { return s.statuses }

// Events delivers raw key transitions in emission order. Autorepeat
// events are filtered out before they reach the channel.
func (s *Scanner) Events() <-chan Event { return s.events }

// Run loops scan -> connect -> read-until-error -> backoff until the
// context is cancelled. It is meant to run on its own goroutine.
func (s *Scanner) Run(ctx context.Context) {
	var lastReport time.Time
	for ctx.Err() == nil {
		if time.Since(lastReport) >= scanReportInterval {
			s.sendStatus(Status{Kind: StatusScanning})
			lastReport = time.Now()
		}

		dev, err := Discover(s.enum, s.candidates)
		if err != nil {
			if !errors.Is(err, ErrNoDevice) {
				s.log.Warn().Err(err).Msg("pedal enumeration failed")
				s.sendStatus(Status{Kind: StatusError, Err: err.Error()})
			}
			s.sleep(ctx)
			continue
		}

		vendor, product := dev.Identity()
		s.sendStatus(Status{
			Kind:    StatusConnected,
			Name:    dev.Name(),
			Path:    dev.Path(),
			Vendor:  vendor,
			Product: product,
		})
		s.log.Info().
			Str("name", dev.Name()).
			Str("path", dev.Path()).
			Msg("pedal connected")

		s.read(ctx, dev)

		// On cancellation the AfterFunc in read already closed the
		// device; closing here would double up.
		if ctx.Err() != nil {
			return
		}
		dev.Close()
		s.sendStatus(Status{Kind: StatusError, Err: "pedal disconnected"})
		s.log.Warn().Msg("pedal disconnected, rescanning")
		lastReport = time.Time{}
		s.sleep(ctx)
	}
}

// read forwards key events until a read error, which is interpreted
// as a disconnect. A dead handle is never retried; the caller rescans
// from the top of the candidate list.
func (s *Scanner) read(ctx context.Context, dev Device) {
	// Unblock the blocking read when the context is cancelled.
	stop := context.AfterFunc(ctx, func() { dev.Close() })
	defer stop()

	for {
		events, err := dev.NextKeyEvents()
		if err != nil {
			return
		}
		for _, ev := range events {
			if ev.Value == ValueAutorepeat {
				continue
			}
			select {
			case s.events <- ev:
			default:
				s.log.Warn().Uint16("code", ev.Code).Msg("event channel full, dropping")
			}
		}
	}
}

func (s *Scanner) sendStatus(st Status) {
	select {
	case s.statuses <- st:
	default:
	}
}

func (s *Scanner) sleep(ctx context.Context) {
	select {
	case <-ctx.Done():
	case <-time.After(s.backoff):
	}
}
