// ABOUTME: zerolog setup writing to a state-dir log file
// ABOUTME: The console writer is optional so the TUI screen stays clean
package logging

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
)

// New builds the process logger. Output goes to
// $XDG_STATE_HOME/pedalscribe/pedalscribe.log (fallback
// ~/.local/state); with verbose set, a console writer on stderr is
// added as well.
func New(verbose bool) zerolog.Logger {
	var writers []io.Writer

	logPath := path()
	if err := os.MkdirAll(filepath.Dir(logPath), 0o755); err == nil {
		if f, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644); err == nil {
			writers = append(writers, f)
		}
	}
	if verbose {
		writers = append(writers, zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
	if len(writers) == 0 {
		// No file and no console requested: keep the logger valid
		// but silent rather than corrupting the TUI.
		writers = append(writers, io.Discard)
	}

	multi := zerolog.MultiLevelWriter(writers...)
	return zerolog.New(multi).With().Timestamp().Caller().Logger()
}

func path() string {
	base := os.Getenv("XDG_STATE_HOME")
	if base == "" {
		base = filepath.Join(os.Getenv("HOME"), ".local", "state")
	}
	return filepath.Join(base, "pedalscribe", "pedalscribe.log")
}
