package tui

import (
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/retiroapp/expctl/internal/dialog"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case showLoadingMsg:
		if m.loading {
			return m, nil
		}
		m.loading = true
		return m, m.spinner.Tick

	case closeMsg:
		return m, tea.Quit

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// A loading dialog only closes through its handle, even on ctrl+c.
	if m.loading {
		return m, nil
	}

	switch msg.String() {
	case "ctrl+c":
		m.interrupted = true
		return m, tea.Quit

	case "esc":
		if m.cfg.AllowEscapeKey {
			return m.resolve(dialog.Dismissed(dialog.DismissEsc))
		}

	case "q":
		// The terminal has no backdrop; q stands in for clicking outside.
		if m.cfg.AllowOutsideClick {
			return m.resolve(dialog.Dismissed(dialog.DismissBackdrop))
		}

	case "y":
		if m.cfg.ShowConfirmButton {
			return m.resolve(dialog.Confirmed())
		}

	case "n":
		if m.cfg.ShowCancelButton {
			return m.resolve(dialog.Dismissed(dialog.DismissCancel))
		}

	case "tab", "shift+tab", "left", "right", "h", "l":
		m.focus = m.nextFocus()

	case "enter", " ":
		if !m.hasButton(m.focus) {
			return m, nil
		}
		if m.focus == confirmButton {
			return m.resolve(dialog.Confirmed())
		}
		return m.resolve(dialog.Dismissed(dialog.DismissCancel))
	}

	return m, nil
}

func (m Model) resolve(r dialog.Result) (tea.Model, tea.Cmd) {
	m.result = r
	m.done = true
	return m, tea.Quit
}

func (m Model) hasButton(b button) bool {
	for _, x := range m.buttons() {
		if x == b {
			return true
		}
	}
	return false
}

func (m Model) nextFocus() button {
	if len(m.buttons()) < 2 {
		return m.focus
	}
	if m.focus == confirmButton {
		return cancelButton
	}
	return confirmButton
}
