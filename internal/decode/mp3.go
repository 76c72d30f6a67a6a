// ABOUTME: MP3 decoding via hajimehoshi/go-mp3
// ABOUTME: Converts the decoder's int16 LE stereo stream into a float32 buffer
package decode

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/hajimehoshi/go-mp3"

	"github.com/pedalscribe/pedalscribe/internal/audio"
)

// decodeMP3 reads the whole stream. go-mp3 always outputs two channels
// of int16 little-endian regardless of the source layout.
func decodeMP3(r io.Reader) (*audio.Buffer, error) {
	dec, err := mp3.NewDecoder(r)
	if err != nil {
		return nil, fmt.Errorf("mp3 decoder: %w", err)
	}

	raw, err := io.ReadAll(dec)
	if err != nil {
		return nil, fmt.Errorf("mp3 read: %w", err)
	}

	samples := make([]float32, len(raw)/2)
	for i := range samples {
		v := int16(binary.LittleEndian.Uint16(raw[i*2 : i*2+2]))
		samples[i] = float32(v) / 32768
	}

	return audio.New(samples, dec.SampleRate(), 2)
}
