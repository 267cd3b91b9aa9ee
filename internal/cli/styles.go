package cli

import "github.com/charmbracelet/lipgloss"

// Consistent color scheme for command output
var (
	StyleSuccess   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))            // Green - done
	StyleWarning   = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))            // Yellow - cancelled, needs attention
	StyleError     = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)  // Red bold - failed
	StyleDim       = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))             // Gray
	StyleHighlight = lipgloss.NewStyle().Bold(true)                                  // Bold
	StyleHeader    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14")) // Cyan
)

// GetMessageStyle returns the style for a flash message by its level
// class (Bootstrap alert-* or Django messages tag).
func GetMessageStyle(level string) lipgloss.Style {
	switch level {
	case "success":
		return StyleSuccess
	case "warning", "info":
		return StyleWarning
	case "danger", "error":
		return StyleError
	default:
		return lipgloss.NewStyle()
	}
}
