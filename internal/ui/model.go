// ABOUTME: Bubbletea model for the dictation player TUI
// ABOUTME: A 33ms tick pumps the app core and re-renders the status view
package ui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/pedalscribe/pedalscribe/internal/app"
)

// tickInterval is the UI cadence that also drives hold-repeat and
// end-of-stream clamping (~30 Hz).
const tickInterval = 33 * time.Millisecond

// Core is the application surface the TUI drives. *app.App implements
// it.
type Core interface {
	Poll(now time.Time)
	Snapshot() app.Snapshot
	OpenFile(path string) error
	TogglePlay()
	SeekBack()
	SeekForward()
	SetSpeedPreset(i int)
	RequestArchive()
	ConfirmArchive()
	CancelArchive()
	DismissNotice()
	OpenDir() string
}

type mode int

const (
	modeMain mode = iota
	modePrompt
	modeConfirm
)

type tickMsg time.Time

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	labelStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("250"))
	noticeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// Model renders the player state and routes keys to the core.
type Model struct {
	core Core

	snap  app.Snapshot
	mode  mode
	input string // open-file prompt line

	width  int
	height int
}

func New(core Core) Model {
	return Model{core: core, snap: core.Snapshot()}
}

func (m Model) Init() tea.Cmd {
	return tick()
}

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		m.core.Poll(time.Time(msg))
		m.snap = m.core.Snapshot()
		// A pedal press can raise the archive prompt between keys.
		if m.snap.ArchivePending && m.mode == modeMain {
			m.mode = modeConfirm
		}
		if !m.snap.ArchivePending && m.mode == modeConfirm {
			m.mode = modeMain
		}
		return m, tick()

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch m.mode {
		case modePrompt:
			return m.handlePromptKey(msg)
		case modeConfirm:
			return m.handleConfirmKey(msg)
		default:
			return m.handleMainKey(msg)
		}
	}

	return m, nil
}

func (m Model) handleMainKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case " ":
		m.core.TogglePlay()
	case "left":
		m.core.SeekBack()
	case "right":
		m.core.SeekForward()
	case "1", "2", "3", "4":
		m.core.SetSpeedPreset(int(msg.String()[0] - '1'))
	case "o":
		m.mode = modePrompt
		m.input = m.core.OpenDir()
		if m.input != "" && !strings.HasSuffix(m.input, "/") {
			m.input += "/"
		}
	case "a":
		m.core.RequestArchive()
		if m.core.Snapshot().ArchivePending {
			m.mode = modeConfirm
		}
	case "d":
		m.core.DismissNotice()
	}
	m.snap = m.core.Snapshot()
	return m, nil
}

func (m Model) handlePromptKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.mode = modeMain
		m.input = ""
	case tea.KeyEnter:
		path := strings.TrimSpace(m.input)
		m.mode = modeMain
		m.input = ""
		if path != "" {
			_ = m.core.OpenFile(path) // failures surface as notices
		}
	case tea.KeyBackspace:
		if len(m.input) > 0 {
			m.input = m.input[:len(m.input)-1]
		}
	case tea.KeyRunes, tea.KeySpace:
		// A space press carries its rune, same as any other key.
		m.input += string(msg.Runes)
	case tea.KeyCtrlC:
		return m, tea.Quit
	}
	m.snap = m.core.Snapshot()
	return m, nil
}

func (m Model) handleConfirmKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "enter":
		m.core.ConfirmArchive()
		m.mode = modeMain
	case "n", "esc":
		m.core.CancelArchive()
		m.mode = modeMain
	case "ctrl+c":
		return m, tea.Quit
	}
	m.snap = m.core.Snapshot()
	return m, nil
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("PedalScribe"))
	b.WriteString("\n\n")

	for _, n := range m.snap.Notices {
		b.WriteString(noticeStyle.Render("! " + n.Text))
		b.WriteString("\n")
	}
	if len(m.snap.Notices) > 0 {
		b.WriteString("\n")
	}

	name := m.snap.FileName
	if name == "" {
		name = "No file loaded"
	}
	b.WriteString(labelStyle.Render("File:  "))
	b.WriteString(valueStyle.Render(name))
	b.WriteString("\n")

	state := "—"
	switch {
	case m.snap.Playing:
		state = "PLAYING"
	case m.snap.Loaded:
		state = "PAUSED"
	}
	b.WriteString(labelStyle.Render("State: "))
	b.WriteString(valueStyle.Render(state))
	b.WriteString("\n")

	cur := frameSeconds(m.snap.CurrentFrames, m.snap.SampleRate)
	total := frameSeconds(m.snap.TotalFrames, m.snap.SampleRate)
	b.WriteString(labelStyle.Render("Time:  "))
	b.WriteString(valueStyle.Render(FormatClock(cur, total)))
	b.WriteString("\n")

	b.WriteString(labelStyle.Render("       "))
	b.WriteString(renderBar(m.snap.CurrentFrames, m.snap.TotalFrames, 40))
	b.WriteString("\n")

	b.WriteString(labelStyle.Render("Speed: "))
	b.WriteString(valueStyle.Render(fmt.Sprintf("%.2fx", m.snap.Speed)))
	b.WriteString("\n")

	b.WriteString(labelStyle.Render("Pedal: "))
	b.WriteString(valueStyle.Render(m.snap.PedalStatus))
	b.WriteString("\n\n")

	switch m.mode {
	case modePrompt:
		b.WriteString(labelStyle.Render("Open file: "))
		b.WriteString(valueStyle.Render(m.input))
		b.WriteString(valueStyle.Render("█"))
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("enter:Load  esc:Cancel"))
	case modeConfirm:
		b.WriteString(labelStyle.Render("Archive the current recording? "))
		b.WriteString(valueStyle.Render("(y/n)"))
		b.WriteString("\n")
	default:
		b.WriteString(helpStyle.Render("space:Play/Pause  ←/→:Seek  1-4:Speed  o:Open  a:Archive  d:Dismiss  q:Quit"))
	}
	b.WriteString("\n")

	return b.String()
}

// renderBar draws a fixed-width progress bar.
func renderBar(value, max, width int) string {
	filled := 0
	if max > 0 {
		filled = (value * width) / max
		if filled > width {
			filled = width
		}
	}
	var bar strings.Builder
	for i := 0; i < width; i++ {
		if i < filled {
			bar.WriteString("█")
		} else {
			bar.WriteString("░")
		}
	}
	return bar.String()
}

// Run starts the program in the alternate screen.
func Run(core Core) error {
	p := tea.NewProgram(New(core), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
