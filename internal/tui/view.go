package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/retiroapp/expctl/internal/dialog"
)

func (m Model) View() string {
	if m.done {
		return ""
	}

	width := m.cfg.Width
	if width <= 0 {
		width = defaultWidth
	}
	inner := width - boxStyle.GetHorizontalFrameSize()

	var b strings.Builder
	b.WriteString(m.renderTitle(inner) + "\n")

	if body := m.cfg.Body(); body != "" {
		b.WriteString(bodyStyle.Width(inner).Align(lipgloss.Center).Render(body) + "\n")
	}

	if m.loading {
		b.WriteString(lipgloss.PlaceHorizontal(inner, lipgloss.Center, m.spinner.View()))
	} else if row := m.renderButtons(); row != "" {
		b.WriteString(lipgloss.PlaceHorizontal(inner, lipgloss.Center, row) + "\n\n")
		b.WriteString(lipgloss.PlaceHorizontal(inner, lipgloss.Center, helpStyle.Render(m.helpText())))
	}

	box := boxStyle.BorderForeground(iconColor(m.cfg.Icon)).Render(strings.TrimRight(b.String(), "\n"))
	if m.width > 0 && m.height > 0 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
	}
	return box
}

func (m Model) renderTitle(width int) string {
	title := m.cfg.Title
	if sym := m.cfg.Icon.Symbol(); sym != "" {
		icon := lipgloss.NewStyle().Foreground(iconColor(m.cfg.Icon)).Bold(true).Render(sym)
		title = icon + "  " + title
	}
	return titleStyle.Width(width).Align(lipgloss.Center).Render(title)
}

func (m Model) helpText() string {
	var parts []string
	if m.cfg.ShowConfirmButton {
		parts = append(parts, "y = confirm")
	}
	if m.cfg.ShowCancelButton {
		parts = append(parts, "n = cancel")
	}
	if len(m.buttons()) > 1 {
		parts = append(parts, "tab = switch")
	}
	if m.cfg.Dismissable() {
		var keys []string
		if m.cfg.AllowEscapeKey {
			keys = append(keys, "Esc")
		}
		if m.cfg.AllowOutsideClick {
			keys = append(keys, "q")
		}
		parts = append(parts, strings.Join(keys, "/")+" = close")
	}
	return strings.Join(parts, " | ")
}

func iconColor(icon dialog.Icon) lipgloss.Color {
	switch icon {
	case dialog.IconWarning:
		return warningColor
	case dialog.IconError:
		return errorColor
	case dialog.IconSuccess:
		return successColor
	case dialog.IconInfo, dialog.IconQuestion:
		return infoColor
	}
	return neutralColor
}
