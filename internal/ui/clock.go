// ABOUTME: Position clock formatting for the status line
// ABOUTME: mm:ss under an hour, hh:mm:ss once the recording reaches one
package ui

import "fmt"

// FormatClock renders "current / total". Both sides switch to the
// hour form together so the line width stays stable during playback.
func FormatClock(currentSecs, totalSecs int) string {
	if totalSecs >= 3600 {
		return fmtHMS(currentSecs) + " / " + fmtHMS(totalSecs)
	}
	return fmtMS(currentSecs) + " / " + fmtMS(totalSecs)
}

func fmtMS(secs int) string {
	return fmt.Sprintf("%02d:%02d", secs/60, secs%60)
}

func fmtHMS(secs int) string {
	return fmt.Sprintf("%02d:%02d:%02d", secs/3600, (secs%3600)/60, secs%60)
}

// frameSeconds converts a frame count to whole seconds.
func frameSeconds(frames, sampleRate int) int {
	if sampleRate <= 0 {
		return 0
	}
	return frames / sampleRate
}
