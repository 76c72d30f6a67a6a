// ABOUTME: Pull-based speed-scaled sample source over a PCM buffer
// ABOUTME: Serves float32 LE frames to the output device via io.Reader
package player

import (
	"encoding/binary"
	"io"
	"math"

	"github.com/pedalscribe/pedalscribe/internal/audio"
)

// StreamSource walks a buffer with a fractional frame cursor and
// linear interpolation. Each call produces frames in the device's
// rate and channel layout; the cursor step folds both the rate
// conversion and the playback speed, so the device never needs to
// change format between files or speed presets.
//
// A source is single-use. The transport builds a fresh one for every
// binding and never rewinds an existing one.
type StreamSource struct {
	buf      *audio.Buffer
	cursor   float64 // fractional source frame index
	step     float64 // source frames advanced per device frame
	channels int     // device channel count

	frame []byte // encoded device frame pending copy-out
	off   int
}

// NewStreamSource starts a source at an interleaved sample index.
// speed must already be floored to a positive value by the caller.
func NewStreamSource(buf *audio.Buffer, startIndex int, speed float64, deviceRate, deviceChannels int) *StreamSource {
	start := buf.ClampIndex(startIndex)
	return &StreamSource{
		buf:      buf,
		cursor:   float64(start / buf.Channels),
		step:     speed * float64(buf.SampleRate) / float64(deviceRate),
		channels: deviceChannels,
	}
}

// Read fills p with little-endian float32 frames. It returns io.EOF
// once the cursor has passed the end of the buffer; the sink stops on
// its own when the stream runs dry.
func (s *StreamSource) Read(p []byte) (int, error) {
	n := 0
	for n < len(p) {
		if s.off == len(s.frame) {
			if !s.next() {
				break
			}
		}
		c := copy(p[n:], s.frame[s.off:])
		n += c
		s.off += c
	}
	if n == 0 {
		return 0, io.EOF
	}
	return n, nil
}

// next encodes one device frame at the current cursor, or reports the
// end of the stream.
func (s *StreamSource) next() bool {
	frames := s.buf.Frames()
	i := int(s.cursor)
	if i >= frames {
		return false
	}
	frac := s.cursor - float64(i)
	j := i + 1
	if j >= frames {
		// Interpolation at the final frame clamps to the last
		// valid frame instead of reading past the buffer.
		j = frames - 1
	}

	if s.frame == nil {
		s.frame = make([]byte, 4*s.channels)
	}
	srcCh := s.buf.Channels
	for c := 0; c < s.channels; c++ {
		sc := c
		if sc >= srcCh {
			// Mono fan-out: every device channel gets the
			// single source channel.
			sc = srcCh - 1
		}
		a := float64(s.buf.Samples[i*srcCh+sc])
		b := float64(s.buf.Samples[j*srcCh+sc])
		v := float32(a*(1-frac) + b*frac)
		binary.LittleEndian.PutUint32(s.frame[c*4:], math.Float32bits(v))
	}

	s.off = 0
	s.cursor += s.step
	return true
}
