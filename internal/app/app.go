// ABOUTME: Application core owning transport, dispatcher and pedal channels
// ABOUTME: All playback mutations funnel through here on the UI goroutine
package app

import (
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/pedalscribe/pedalscribe/internal/archive"
	"github.com/pedalscribe/pedalscribe/internal/audio"
	"github.com/pedalscribe/pedalscribe/internal/config"
	"github.com/pedalscribe/pedalscribe/internal/control"
	"github.com/pedalscribe/pedalscribe/internal/pedal"
)

// maxNotices bounds the dismissible error list; older entries drop off.
const maxNotices = 3

// Transport is the playback surface the app drives. *player.Transport
// implements it.
type Transport interface {
	Load(buf *audio.Buffer)
	Unload()
	Pause()
	Resume() error
	Seek(deltaSeconds float64) error
	SetSpeed(factor float64) error
	PositionSnapshot() (currentFrames, totalFrames int)
	ClampAtEnd() bool
	IsPlaying() bool
	Loaded() bool
	Speed() float64
	SampleRate() int
}

// Notice is one dismissible error message for the UI.
type Notice struct {
	ID   string
	Text string
}

// Snapshot is the immutable view the UI renders each frame.
type Snapshot struct {
	FileName       string
	Loaded         bool
	Playing        bool
	CurrentFrames  int
	TotalFrames    int
	SampleRate     int
	Speed          float64
	SpeedIndex     int
	Speeds         []float64
	PedalStatus    string
	Notices        []Notice
	ArchivePending bool
}

// Config wires an App.
type Config struct {
	Config    config.Config
	Transport Transport
	Statuses  <-chan pedal.Status
	Events    <-chan pedal.Event
	Output    io.Closer // closed on shutdown; may be nil in tests
	Logger    zerolog.Logger

	// Loader decodes a file into a buffer; defaults tests inject
	// fakes, production wires decode.Load.
	Loader func(path string) (*audio.Buffer, error)
}

type App struct {
	cfg        config.Config
	transport  Transport
	dispatcher *control.Dispatcher
	statuses   <-chan pedal.Status
	events     <-chan pedal.Event
	output     io.Closer
	log        zerolog.Logger
	loader     func(path string) (*audio.Buffer, error)

	filePath       string
	pedalStatus    string
	speedIdx       int
	notices        []Notice
	archivePending bool
}

func New(cfg Config) *App {
	a := &App{
		cfg:         cfg.Config,
		transport:   cfg.Transport,
		statuses:    cfg.Statuses,
		events:      cfg.Events,
		output:      cfg.Output,
		log:         cfg.Logger,
		loader:      cfg.Loader,
		pedalStatus: pedal.Status{Kind: pedal.StatusNotStarted}.String(),
		speedIdx:    defaultSpeedIndex(cfg.Config.Speeds),
	}

	a.dispatcher = control.NewDispatcher(control.Config{
		Mapping: control.Mapping{
			Left:   cfg.Config.LeftCode,
			Right:  cfg.Config.RightCode,
			Middle: cfg.Config.MiddleCode,
		},
		StartRewindSeconds: cfg.Config.StartRewindSeconds,
		RewindSeconds:      cfg.Config.RewindSeconds,
		HoldInterval:       time.Duration(cfg.Config.HoldIntervalMs) * time.Millisecond,
		Transport:          cfg.Transport,
		OnArchive:          a.RequestArchive,
		OnError: func(err error) {
			a.pushNotice(fmt.Sprintf("Playback failed: %v", err))
		},
	})
	return a
}

// defaultSpeedIndex prefers the 1.0 preset.
func defaultSpeedIndex(speeds []float64) int {
	for i, s := range speeds {
		if s == 1.0 {
			return i
		}
	}
	return 0
}

// Poll is the per-tick pump: it drains both pedal channels, runs the
// hold-repeat tick and clamps playback at end of stream. The two
// channels are drained independently; a raced status and event carry
// no ordering guarantee between them.
func (a *App) Poll(now time.Time) {
statuses:
	for {
		select {
		case st := <-a.statuses:
			a.pedalStatus = st.String()
			a.dispatcher.HandleStatus(st)
			if st.Kind == pedal.StatusError {
				a.pushNotice("Pedal disconnected")
			}
		default:
			break statuses
		}
	}

events:
	for {
		select {
		case ev := <-a.events:
			a.dispatcher.HandleEvent(ev, now)
		default:
			break events
		}
	}

	a.dispatcher.Tick(now)
	if a.transport.ClampAtEnd() {
		a.log.Debug().Msg("playback reached end of recording")
	}
}

// OpenFile decodes and loads a recording. On failure the previous
// state is untouched and the error surfaces once as a notice.
func (a *App) OpenFile(path string) error {
	buf, err := a.loader(path)
	if err != nil {
		a.pushNotice(fmt.Sprintf("Open failed: %v", err))
		return err
	}

	a.transport.Load(buf)
	a.filePath = path
	a.archivePending = false
	if err := a.transport.SetSpeed(a.cfg.Speeds[a.speedIdx]); err != nil {
		a.pushNotice(fmt.Sprintf("Speed change failed: %v", err))
	}
	a.log.Info().
		Str("file", path).
		Int("rate", buf.SampleRate).
		Int("channels", buf.Channels).
		Msg("recording loaded")
	return nil
}

func (a *App) TogglePlay() {
	if !a.transport.Loaded() {
		return
	}
	if a.transport.IsPlaying() {
		a.transport.Pause()
		return
	}
	if err := a.transport.Resume(); err != nil {
		a.pushNotice(fmt.Sprintf("Playback failed: %v", err))
	}
}

func (a *App) SeekBack() {
	a.seek(-a.cfg.RewindSeconds)
}

func (a *App) SeekForward() {
	a.seek(a.cfg.ForwardSeconds)
}

func (a *App) seek(delta float64) {
	if err := a.transport.Seek(delta); err != nil {
		a.pushNotice(fmt.Sprintf("Seek failed: %v", err))
	}
}

// SetSpeedPreset selects one of the configured speed factors.
func (a *App) SetSpeedPreset(i int) {
	if i < 0 || i >= len(a.cfg.Speeds) {
		return
	}
	a.speedIdx = i
	if err := a.transport.SetSpeed(a.cfg.Speeds[i]); err != nil {
		a.pushNotice(fmt.Sprintf("Speed change failed: %v", err))
	}
}

// RequestArchive pauses playback and asks the UI to confirm. Raised
// by the middle pedal and by the keyboard shortcut alike.
func (a *App) RequestArchive() {
	if a.filePath == "" {
		return
	}
	a.transport.Pause()
	a.archivePending = true
}

// ConfirmArchive moves the current recording into the dated archive
// tree and unloads it.
func (a *App) ConfirmArchive() {
	if a.filePath == "" {
		a.archivePending = false
		return
	}
	dst, err := archive.Move(a.filePath, a.cfg.ArchiveDir, time.Now())
	if err != nil {
		a.pushNotice(fmt.Sprintf("Archive failed: %v", err))
		a.archivePending = false
		return
	}
	a.log.Info().Str("from", a.filePath).Str("to", dst).Msg("recording archived")
	a.transport.Unload()
	a.filePath = ""
	a.archivePending = false
}

func (a *App) CancelArchive() {
	a.archivePending = false
}

// DismissNotice drops the oldest notice.
func (a *App) DismissNotice() {
	if len(a.notices) > 0 {
		a.notices = a.notices[1:]
	}
}

func (a *App) Snapshot() Snapshot {
	cur, total := a.transport.PositionSnapshot()
	name := ""
	if a.filePath != "" {
		name = filepath.Base(a.filePath)
	}
	return Snapshot{
		FileName:       name,
		Loaded:         a.transport.Loaded(),
		Playing:        a.transport.IsPlaying(),
		CurrentFrames:  cur,
		TotalFrames:    total,
		SampleRate:     a.transport.SampleRate(),
		Speed:          a.transport.Speed(),
		SpeedIndex:     a.speedIdx,
		Speeds:         a.cfg.Speeds,
		PedalStatus:    a.pedalStatus,
		Notices:        append([]Notice(nil), a.notices...),
		ArchivePending: a.archivePending,
	}
}

// OpenDir is the starting directory for the open-file prompt.
func (a *App) OpenDir() string {
	return a.cfg.OpenDir
}

func (a *App) Close() error {
	a.transport.Pause()
	a.transport.Unload()
	if a.output != nil {
		return a.output.Close()
	}
	return nil
}

// pushNotice appends a dismissible error, logged exactly once here at
// the point it becomes visible.
func (a *App) pushNotice(text string) {
	a.log.Error().Msg(text)
	a.notices = append(a.notices, Notice{ID: uuid.NewString(), Text: text})
	if len(a.notices) > maxNotices {
		a.notices = a.notices[len(a.notices)-maxNotices:]
	}
}
