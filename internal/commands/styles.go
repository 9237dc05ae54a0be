package commands

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/balkashynov/tempo/internal/tui"
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(tui.ColorAccentBright))

	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(tui.ColorSecondaryText))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(tui.ColorError))
)

// formatDuration formats a duration in a human-readable way
func formatDuration(d time.Duration) string {
	if d.Hours() >= 1 {
		return fmt.Sprintf("%.1fh", d.Hours())
	} else if d.Minutes() >= 1 {
		return fmt.Sprintf("%.0fm", d.Minutes())
	} else {
		return fmt.Sprintf("%.0fs", d.Seconds())
	}
}

// formatSeconds renders a raw second count like formatDuration.
func formatSeconds(seconds int64) string {
	return formatDuration(time.Duration(seconds) * time.Second)
}

// truncate shortens s to at most n runes, with an ellipsis.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	if n <= 3 {
		return string(runes[:n])
	}
	return string(runes[:n-3]) + "..."
}
