// ABOUTME: FLAC decoding via mewkiz/flac
// ABOUTME: Interleaves per-subframe samples and scales by bits-per-sample
package decode

import (
	"errors"
	"fmt"
	"io"

	"github.com/mewkiz/flac"

	"github.com/pedalscribe/pedalscribe/internal/audio"
)

func decodeFLAC(r io.Reader) (*audio.Buffer, error) {
	stream, err := flac.New(r)
	if err != nil {
		return nil, fmt.Errorf("flac decoder: %w", err)
	}

	info := stream.Info
	channels := int(info.NChannels)
	if channels != 1 && channels != 2 {
		return nil, audio.ErrChannelLayout
	}
	scale := intScale(int(info.BitsPerSample))

	samples := make([]float32, 0, int(info.NSamples)*channels)
	for {
		frame, err := stream.ParseNext()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("flac frame: %w", err)
		}
		if len(frame.Subframes) != channels {
			return nil, fmt.Errorf("flac frame: channel count changed mid-stream")
		}
		for i := 0; i < frame.Subframes[0].NSamples; i++ {
			for ch := 0; ch < channels; ch++ {
				samples = append(samples, float32(frame.Subframes[ch].Samples[i])/scale)
			}
		}
	}

	return audio.New(samples, int(info.SampleRate), channels)
}
