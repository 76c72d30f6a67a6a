// ABOUTME: Tests for the speed-scaled stream source
// ABOUTME: Covers interpolation, end-of-stream and channel fan-out
package player

import (
	"encoding/binary"
	"io"
	"math"
	"testing"

	"github.com/pedalscribe/pedalscribe/internal/audio"
)

// readFloats drains the source completely and decodes the frames.
func readFloats(t *testing.T, src *StreamSource) []float32 {
	t.Helper()

	var raw []byte
	chunk := make([]byte, 64)
	for {
		n, err := src.Read(chunk)
		raw = append(raw, chunk[:n]...)
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("Read failed: %v", err)
		}
	}
	if len(raw)%4 != 0 {
		t.Fatalf("stream ended mid-sample: %d bytes", len(raw))
	}

	out := make([]float32, len(raw)/4)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(raw[i*4:]))
	}
	return out
}

func mustBuffer(t *testing.T, samples []float32, rate, channels int) *audio.Buffer {
	t.Helper()
	buf, err := audio.New(samples, rate, channels)
	if err != nil {
		t.Fatalf("audio.New failed: %v", err)
	}
	return buf
}

func TestUnitySpeedPassesSamplesThrough(t *testing.T) {
	in := []float32{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8}
	buf := mustBuffer(t, in, 4, 2)

	got := readFloats(t, NewStreamSource(buf, 0, 1.0, 4, 2))
	if len(got) != len(in) {
		t.Fatalf("expected %d samples, got %d", len(in), len(got))
	}
	for i := range in {
		if got[i] != in[i] {
			t.Errorf("sample %d: expected %v, got %v", i, in[i], got[i])
		}
	}
}

func TestHalfSpeedInterpolatesMidpoints(t *testing.T) {
	buf := mustBuffer(t, []float32{0, 1, 2, 3}, 4, 1)

	got := readFloats(t, NewStreamSource(buf, 0, 0.5, 4, 1))
	want := []float32{0, 0.5, 1, 1.5, 2, 2.5, 3, 3} // final midpoint clamps to last frame
	if len(got) != len(want) {
		t.Fatalf("expected %d samples, got %v", len(want), got)
	}
	for i := range want {
		if math.Abs(float64(got[i]-want[i])) > 1e-6 {
			t.Errorf("sample %d: expected %v, got %v", i, want[i], got[i])
		}
	}
}

func TestDoubleSpeedSkipsFrames(t *testing.T) {
	buf := mustBuffer(t, []float32{0, 1, 2, 3, 4, 5}, 6, 1)

	got := readFloats(t, NewStreamSource(buf, 0, 2.0, 6, 1))
	want := []float32{0, 2, 4}
	if len(got) != len(want) {
		t.Fatalf("expected %d samples, got %v", len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("sample %d: expected %v, got %v", i, want[i], got[i])
		}
	}
}

func TestMonoFansOutToStereoDevice(t *testing.T) {
	buf := mustBuffer(t, []float32{0.25, 0.75}, 2, 1)

	got := readFloats(t, NewStreamSource(buf, 0, 1.0, 2, 2))
	want := []float32{0.25, 0.25, 0.75, 0.75}
	if len(got) != len(want) {
		t.Fatalf("expected %d samples, got %v", len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("sample %d: expected %v, got %v", i, want[i], got[i])
		}
	}
}

func TestRateMismatchFoldsIntoStep(t *testing.T) {
	// Buffer at 4 Hz on an 8 Hz device doubles the frame count.
	buf := mustBuffer(t, []float32{0, 1}, 4, 1)

	got := readFloats(t, NewStreamSource(buf, 0, 1.0, 8, 1))
	want := []float32{0, 0.5, 1, 1} // tail interpolation clamps
	if len(got) != len(want) {
		t.Fatalf("expected %d samples, got %v", len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("sample %d: expected %v, got %v", i, want[i], got[i])
		}
	}
}

func TestStartIndexOffset(t *testing.T) {
	buf := mustBuffer(t, []float32{0, 1, 2, 3}, 4, 1)

	got := readFloats(t, NewStreamSource(buf, 2, 1.0, 4, 1))
	want := []float32{2, 3}
	if len(got) != len(want) {
		t.Fatalf("expected %d samples, got %v", len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("sample %d: expected %v, got %v", i, want[i], got[i])
		}
	}
}

func TestEOFAfterEnd(t *testing.T) {
	buf := mustBuffer(t, []float32{1, 2}, 2, 1)
	src := NewStreamSource(buf, buf.Len(), 1.0, 2, 1)

	n, err := src.Read(make([]byte, 16))
	if n != 0 || err != io.EOF {
		t.Fatalf("expected (0, EOF), got (%d, %v)", n, err)
	}
	// A finished source stays finished.
	n, err = src.Read(make([]byte, 16))
	if n != 0 || err != io.EOF {
		t.Fatalf("expected (0, EOF) on second read, got (%d, %v)", n, err)
	}
}

func TestPartialReadsKeepFrameAlignment(t *testing.T) {
	buf := mustBuffer(t, []float32{0.5, -0.5}, 2, 2)
	src := NewStreamSource(buf, 0, 1.0, 2, 2)

	// Read in 3-byte slivers; the source must carry frame bytes over.
	var raw []byte
	sliver := make([]byte, 3)
	for {
		n, err := src.Read(sliver)
		raw = append(raw, sliver[:n]...)
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("Read failed: %v", err)
		}
	}
	if len(raw) != 8 {
		t.Fatalf("expected 8 bytes, got %d", len(raw))
	}
	if got := math.Float32frombits(binary.LittleEndian.Uint32(raw[0:])); got != 0.5 {
		t.Errorf("expected first sample 0.5, got %v", got)
	}
	if got := math.Float32frombits(binary.LittleEndian.Uint32(raw[4:])); got != -0.5 {
		t.Errorf("expected second sample -0.5, got %v", got)
	}
}
