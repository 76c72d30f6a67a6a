// ABOUTME: Oto-based audio output implementation
// ABOUTME: Wraps a single oto context and hands out player sinks
package player

import (
	"fmt"
	"io"

	"github.com/ebitengine/oto/v3"
	"github.com/rs/zerolog"
)

// OtoOutput implements Output on top of ebitengine/oto. Oto allows a
// single context per process, so the context is created on the first
// Open and reused afterwards; the stream source adapts its rate and
// channel layout to whatever the context was opened with.
type OtoOutput struct {
	ctx        *oto.Context
	sampleRate int
	channels   int
	log        zerolog.Logger
}

func NewOtoOutput(log zerolog.Logger) *OtoOutput {
	return &OtoOutput{log: log}
}

func (o *OtoOutput) Open(sampleRate, channels int) error {
	if o.ctx != nil {
		if o.sampleRate != sampleRate || o.channels != channels {
			o.log.Warn().
				Int("have_rate", o.sampleRate).
				Int("want_rate", sampleRate).
				Int("have_channels", o.channels).
				Int("want_channels", channels).
				Msg("oto supports one context per process, reusing existing format")
		}
		return nil
	}

	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: channels,
		Format:       oto.FormatFloat32LE,
	})
	if err != nil {
		return fmt.Errorf("%w: creating context: %v", ErrOutputUnavailable, err)
	}
	<-ready

	o.ctx = ctx
	o.sampleRate = sampleRate
	o.channels = channels
	o.log.Info().Int("rate", sampleRate).Int("channels", channels).Msg("audio output opened")
	return nil
}

func (o *OtoOutput) Format() (int, int) {
	return o.sampleRate, o.channels
}

func (o *OtoOutput) NewSink(src io.Reader) (Sink, error) {
	if o.ctx == nil {
		return nil, fmt.Errorf("%w: output not opened", ErrOutputUnavailable)
	}
	return &otoSink{player: o.ctx.NewPlayer(src)}, nil
}

func (o *OtoOutput) Close() error {
	if o.ctx != nil {
		return o.ctx.Suspend()
	}
	return nil
}

type otoSink struct {
	player *oto.Player
}

func (s *otoSink) Play()           { s.player.Play() }
func (s *otoSink) Pause()          { s.player.Pause() }
func (s *otoSink) IsPlaying() bool { return s.player.IsPlaying() }
func (s *otoSink) Close() error    { return s.player.Close() }
