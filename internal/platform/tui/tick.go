package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// HighlightDoneMsg ends the spawned-tile highlight started by move Seq.
type HighlightDoneMsg struct {
	Seq int
}

// highlightCmd fires HighlightDoneMsg after delay. A zero delay disables
// the highlight.
func highlightCmd(delay time.Duration, seq int) tea.Cmd {
	if delay <= 0 {
		return nil
	}
	return tea.Tick(delay, func(time.Time) tea.Msg {
		return HighlightDoneMsg{Seq: seq}
	})
}
