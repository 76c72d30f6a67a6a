// ABOUTME: WAV and AIFF decoding via the go-audio family
// ABOUTME: Scales IntBuffer PCM to normalized float32 by source bit depth
package decode

import (
	"fmt"
	"io"

	"github.com/go-audio/aiff"
	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/pedalscribe/pedalscribe/internal/audio"
)

func decodeWAV(r io.ReadSeeker) (*audio.Buffer, error) {
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("wav: not a valid RIFF/WAVE file")
	}

	pcm, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("wav read: %w", err)
	}

	return fromIntBuffer(pcm, int(dec.BitDepth))
}

func decodeAIFF(r io.ReadSeeker) (*audio.Buffer, error) {
	dec := aiff.NewDecoder(r)
	dec.ReadInfo()
	if dec.NumChans == 0 || dec.SampleRate == 0 {
		return nil, fmt.Errorf("aiff: missing format information")
	}

	format := &goaudio.Format{
		NumChannels: int(dec.NumChans),
		SampleRate:  int(dec.SampleRate),
	}
	out := &goaudio.IntBuffer{Format: format, SourceBitDepth: int(dec.BitDepth)}
	chunk := &goaudio.IntBuffer{
		Format: format,
		Data:   make([]int, 4096*int(dec.NumChans)),
	}
	for {
		n, err := dec.PCMBuffer(chunk)
		if n > 0 {
			out.Data = append(out.Data, chunk.Data[:n]...)
		}
		if err == io.EOF || n == 0 {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("aiff read: %w", err)
		}
	}

	return fromIntBuffer(out, int(dec.BitDepth))
}

// fromIntBuffer normalizes integer PCM to [-1, 1] float32.
func fromIntBuffer(pcm *goaudio.IntBuffer, bitDepth int) (*audio.Buffer, error) {
	if pcm == nil || pcm.Format == nil {
		return nil, fmt.Errorf("empty PCM buffer")
	}
	if bitDepth == 0 {
		bitDepth = pcm.SourceBitDepth
	}
	scale := intScale(bitDepth)

	samples := make([]float32, len(pcm.Data))
	for i, v := range pcm.Data {
		samples[i] = float32(v) / scale
	}

	return audio.New(samples, pcm.Format.SampleRate, pcm.Format.NumChannels)
}
