// ABOUTME: Tests for the application core
// ABOUTME: Uses a mock transport and injected loader, no audio device
package app

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/pedalscribe/pedalscribe/internal/audio"
	"github.com/pedalscribe/pedalscribe/internal/config"
	"github.com/pedalscribe/pedalscribe/internal/pedal"
)

type mockTransport struct {
	buf      *audio.Buffer
	playing  bool
	speed    float64
	pos      int
	seeks    []float64
	unloads  int
	clampHit bool
}

func (m *mockTransport) Load(buf *audio.Buffer) { m.buf = buf; m.pos = 0; m.speed = 1.0 }
func (m *mockTransport) Unload()                { m.buf = nil; m.playing = false; m.unloads++ }
func (m *mockTransport) Pause()                 { m.playing = false }

func (m *mockTransport) Resume() error {
	if m.buf == nil {
		return errors.New("no audio loaded")
	}
	m.playing = true
	return nil
}

func (m *mockTransport) Seek(delta float64) error {
	m.seeks = append(m.seeks, delta)
	return nil
}

func (m *mockTransport) SetSpeed(f float64) error { m.speed = f; return nil }

func (m *mockTransport) PositionSnapshot() (int, int) {
	if m.buf == nil {
		return 0, 0
	}
	return m.pos, m.buf.Frames()
}

func (m *mockTransport) ClampAtEnd() bool {
	hit := m.clampHit
	m.clampHit = false
	return hit
}

func (m *mockTransport) IsPlaying() bool { return m.playing }
func (m *mockTransport) Loaded() bool    { return m.buf != nil }
func (m *mockTransport) Speed() float64  { return m.speed }

func (m *mockTransport) SampleRate() int {
	if m.buf == nil {
		return 0
	}
	return m.buf.SampleRate
}

func testBuffer(t *testing.T) *audio.Buffer {
	t.Helper()
	buf, err := audio.New(make([]float32, 8), 4, 2)
	if err != nil {
		t.Fatal(err)
	}
	return buf
}

// newTestApp wires an app over a mock transport with real channels.
func newTestApp(t *testing.T, tr *mockTransport) (*App, chan pedal.Status, chan pedal.Event) {
	t.Helper()

	statuses := make(chan pedal.Status, 8)
	events := make(chan pedal.Event, 8)
	buf := testBuffer(t)

	a := New(Config{
		Config:    config.Default(),
		Transport: tr,
		Statuses:  statuses,
		Events:    events,
		Logger:    zerolog.Nop(),
		Loader: func(path string) (*audio.Buffer, error) {
			if filepath.Ext(path) == ".bad" {
				return nil, errors.New("corrupt file")
			}
			return buf, nil
		},
	})
	return a, statuses, events
}

func TestOpenFileLoadsAndAppliesPreset(t *testing.T) {
	tr := &mockTransport{}
	a, _, _ := newTestApp(t, tr)

	a.SetSpeedPreset(3) // 1.5x
	if err := a.OpenFile("/takes/memo.wav"); err != nil {
		t.Fatalf("OpenFile failed: %v", err)
	}

	snap := a.Snapshot()
	if !snap.Loaded || snap.FileName != "memo.wav" {
		t.Errorf("unexpected snapshot after open: %+v", snap)
	}
	if tr.speed != 1.5 {
		t.Errorf("expected preset speed 1.5 applied after load, got %v", tr.speed)
	}
}

func TestOpenFileFailureLeavesStateAndNotices(t *testing.T) {
	tr := &mockTransport{}
	a, _, _ := newTestApp(t, tr)

	if err := a.OpenFile("/takes/good.wav"); err != nil {
		t.Fatal(err)
	}
	if err := a.OpenFile("/takes/broken.bad"); err == nil {
		t.Fatal("expected an error for the bad file")
	}

	snap := a.Snapshot()
	if !snap.Loaded {
		t.Error("previous recording was dropped on a failed open")
	}
	if snap.FileName != "good.wav" {
		t.Errorf("file name changed on failed open: %s", snap.FileName)
	}
	if len(snap.Notices) != 1 {
		t.Fatalf("expected one notice, got %d", len(snap.Notices))
	}
	if snap.Notices[0].ID == "" {
		t.Error("notice has no id")
	}
}

func TestTogglePlay(t *testing.T) {
	tr := &mockTransport{}
	a, _, _ := newTestApp(t, tr)

	a.TogglePlay() // nothing loaded: no-op
	if tr.playing {
		t.Fatal("toggle started playback with nothing loaded")
	}

	if err := a.OpenFile("/takes/memo.wav"); err != nil {
		t.Fatal(err)
	}
	a.TogglePlay()
	if !tr.playing {
		t.Error("expected playback running after toggle")
	}
	a.TogglePlay()
	if tr.playing {
		t.Error("expected playback paused after second toggle")
	}
}

func TestPollDrivesDispatcher(t *testing.T) {
	tr := &mockTransport{}
	a, statuses, events := newTestApp(t, tr)
	if err := a.OpenFile("/takes/memo.wav"); err != nil {
		t.Fatal(err)
	}

	// Right pedal press: start-rewind then play.
	events <- pedal.Event{Code: config.DefaultRightCode, Value: pedal.ValuePress}
	a.Poll(time.Unix(0, 0))

	if len(tr.seeks) != 1 || tr.seeks[0] != -1 {
		t.Errorf("expected -1s start rewind via pedal, got %v", tr.seeks)
	}
	if !tr.playing {
		t.Error("expected playback running after right press")
	}

	statuses <- pedal.Status{Kind: pedal.StatusError, Err: "unplugged"}
	a.Poll(time.Unix(1, 0))

	if tr.playing {
		t.Error("expected pause on pedal error")
	}
	snap := a.Snapshot()
	if snap.PedalStatus != "Error: unplugged" {
		t.Errorf("unexpected pedal status %q", snap.PedalStatus)
	}
	found := false
	for _, n := range snap.Notices {
		if n.Text == "Pedal disconnected" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a disconnect notice, got %+v", snap.Notices)
	}
}

func TestNoticesCapped(t *testing.T) {
	tr := &mockTransport{}
	a, _, _ := newTestApp(t, tr)

	for i := 0; i < 5; i++ {
		_ = a.OpenFile("/takes/broken.bad")
	}
	snap := a.Snapshot()
	if len(snap.Notices) != maxNotices {
		t.Errorf("expected %d notices kept, got %d", maxNotices, len(snap.Notices))
	}

	a.DismissNotice()
	if got := len(a.Snapshot().Notices); got != maxNotices-1 {
		t.Errorf("dismiss did not drop a notice: %d", got)
	}
}

func TestArchiveFlow(t *testing.T) {
	tmp := t.TempDir()
	src := filepath.Join(tmp, "memo.wav")
	if err := os.WriteFile(src, []byte("audio"), 0o644); err != nil {
		t.Fatal(err)
	}

	tr := &mockTransport{}
	statuses := make(chan pedal.Status)
	events := make(chan pedal.Event)
	cfg := config.Default()
	cfg.ArchiveDir = filepath.Join(tmp, "archive")

	a := New(Config{
		Config:    cfg,
		Transport: tr,
		Statuses:  statuses,
		Events:    events,
		Logger:    zerolog.Nop(),
		Loader: func(string) (*audio.Buffer, error) {
			return testBuffer(t), nil
		},
	})

	if err := a.OpenFile(src); err != nil {
		t.Fatal(err)
	}
	a.TogglePlay()

	a.RequestArchive()
	if tr.playing {
		t.Error("archive request must pause playback")
	}
	if !a.Snapshot().ArchivePending {
		t.Fatal("expected archive prompt pending")
	}

	a.ConfirmArchive()
	snap := a.Snapshot()
	if snap.ArchivePending || snap.Loaded || snap.FileName != "" {
		t.Errorf("expected unloaded state after archive, got %+v", snap)
	}
	if tr.unloads != 1 {
		t.Errorf("expected transport unloaded once, got %d", tr.unloads)
	}
	if _, err := os.Stat(src); !os.IsNotExist(err) {
		t.Error("source file still present after archive")
	}
	if len(snap.Notices) != 0 {
		t.Errorf("unexpected notices: %+v", snap.Notices)
	}
}

func TestCancelArchiveKeepsFile(t *testing.T) {
	tr := &mockTransport{}
	a, _, _ := newTestApp(t, tr)
	if err := a.OpenFile("/takes/memo.wav"); err != nil {
		t.Fatal(err)
	}

	a.RequestArchive()
	a.CancelArchive()

	snap := a.Snapshot()
	if snap.ArchivePending {
		t.Error("archive prompt still pending after cancel")
	}
	if !snap.Loaded {
		t.Error("cancel unloaded the recording")
	}
}

func TestRequestArchiveWithoutFile(t *testing.T) {
	tr := &mockTransport{}
	a, _, _ := newTestApp(t, tr)

	a.RequestArchive()
	if a.Snapshot().ArchivePending {
		t.Error("archive prompt raised with no file loaded")
	}
}
