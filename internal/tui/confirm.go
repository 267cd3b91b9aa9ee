package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/retiroapp/expctl/internal/dialog"
)

func (m Model) renderButtons() string {
	order := m.buttons()
	if len(order) == 0 {
		return ""
	}

	gap := strings.Repeat(" ", actionsGap(m.cfg.CustomClass[dialog.ClassActions]))
	rendered := make([]string, 0, len(order)*2)
	for i, b := range order {
		if i > 0 {
			rendered = append(rendered, gap)
		}
		rendered = append(rendered, m.renderButton(b))
	}
	return lipgloss.JoinHorizontal(lipgloss.Center, rendered...)
}

func (m Model) renderButton(b button) string {
	focused := m.focus == b
	switch b {
	case confirmButton:
		style := buttonStyle(m.cfg.CustomClass[dialog.ClassConfirmButton], m.cfg.ConfirmButtonColor, primaryColor, focused)
		return style.Render(dialog.PlainText(m.cfg.ConfirmButtonText))
	default:
		style := buttonStyle(m.cfg.CustomClass[dialog.ClassCancelButton], m.cfg.CancelButtonColor, secondaryColor, focused)
		return style.Render(dialog.PlainText(m.cfg.CancelButtonText))
	}
}
