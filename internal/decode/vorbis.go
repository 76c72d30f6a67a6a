// ABOUTME: Ogg Vorbis decoding via jfreymuth/oggvorbis
// ABOUTME: The decoder already produces interleaved float32 samples
package decode

import (
	"fmt"
	"io"

	"github.com/jfreymuth/oggvorbis"

	"github.com/pedalscribe/pedalscribe/internal/audio"
)

func decodeVorbis(r io.Reader) (*audio.Buffer, error) {
	samples, format, err := oggvorbis.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("vorbis read: %w", err)
	}

	return audio.New(samples, format.SampleRate, format.Channels)
}
