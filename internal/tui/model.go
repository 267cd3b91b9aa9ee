package tui

import (
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/retiroapp/expctl/internal/dialog"
)

type button int

const (
	confirmButton button = iota
	cancelButton
)

// Messages sent to a running dialog through its Handle.
type (
	showLoadingMsg struct{}
	closeMsg       struct{}
)

// Model is a single modal dialog.
type Model struct {
	cfg dialog.Config

	focus   button
	loading bool
	spinner spinner.Model

	result      dialog.Result
	done        bool
	interrupted bool

	width  int
	height int
}

// NewModel creates the dialog model for cfg. Focus starts on the confirm
// button when there is one.
func NewModel(cfg dialog.Config) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = s.Style.Foreground(infoColor)

	m := Model{
		cfg:     cfg,
		spinner: s,
	}
	if !cfg.ShowConfirmButton && cfg.ShowCancelButton {
		m.focus = cancelButton
	}
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	if m.loading {
		return m.spinner.Tick
	}
	return nil
}

// Result returns how the dialog was resolved.
func (m Model) Result() dialog.Result {
	return m.result
}

// Done reports whether the user resolved the dialog.
func (m Model) Done() bool {
	return m.done
}

// Loading reports whether the dialog shows its loading indicator.
func (m Model) Loading() bool {
	return m.loading
}

func (m Model) buttons() []button {
	var order []button
	if m.cfg.ShowConfirmButton {
		order = append(order, confirmButton)
	}
	if m.cfg.ShowCancelButton {
		order = append(order, cancelButton)
	}
	if m.cfg.ReverseButtons && len(order) == 2 {
		order[0], order[1] = order[1], order[0]
	}
	return order
}
