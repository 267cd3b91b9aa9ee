package tui

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			MarginBottom(1)

	bodyStyle = lipgloss.NewStyle().
			MarginBottom(1)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(1, 3)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("8"))

	// Icon colors
	warningColor = lipgloss.Color("3")  // Yellow
	errorColor   = lipgloss.Color("1")  // Red
	successColor = lipgloss.Color("2")  // Green
	infoColor    = lipgloss.Color("6")  // Cyan
	neutralColor = lipgloss.Color("8")  // Gray
	buttonText   = lipgloss.Color("15") // White

	// Bootstrap palette for button classes without an explicit color
	dangerColor    = lipgloss.Color("#dc3545")
	secondaryColor = lipgloss.Color("#6c757d")
	primaryColor   = lipgloss.Color("#0d6efd")
)

const defaultWidth = 56

// classColor maps a bootstrap button class list to its color.
func classColor(class string) (lipgloss.Color, bool) {
	for _, c := range strings.Fields(class) {
		name := strings.TrimPrefix(c, "btn-outline-")
		name = strings.TrimPrefix(name, "btn-")
		switch name {
		case "danger":
			return dangerColor, true
		case "secondary":
			return secondaryColor, true
		case "primary":
			return primaryColor, true
		}
	}
	return "", false
}

func isOutline(class string) bool {
	return strings.Contains(class, "btn-outline-")
}

// buttonStyle builds the style of a dialog button. An explicit color wins
// over the one implied by class; outline classes color the text instead of
// the background.
func buttonStyle(class, color string, fallback lipgloss.Color, focused bool) lipgloss.Style {
	c := fallback
	if cc, ok := classColor(class); ok {
		c = cc
	}
	if color != "" {
		c = lipgloss.Color(color)
	}

	s := lipgloss.NewStyle().Padding(0, 2)
	if isOutline(class) {
		s = s.Foreground(c).Border(lipgloss.NormalBorder(), false, true).BorderForeground(c)
	} else {
		s = s.Foreground(buttonText).Background(c)
	}
	if focused {
		s = s.Bold(true).Underline(true)
	}
	return s
}

// actionsGap reads the spacing between buttons from a "gap-N" class.
func actionsGap(class string) int {
	for _, c := range strings.Fields(class) {
		if n, err := strconv.Atoi(strings.TrimPrefix(c, "gap-")); err == nil && strings.HasPrefix(c, "gap-") {
			return n
		}
	}
	return 2
}
