package tui

import (
	"context"
	"errors"
	"fmt"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/retiroapp/expctl/internal/dialog"
)

// Presenter shows dialogs as full terminal bubbletea programs.
type Presenter struct {
	options []tea.ProgramOption
}

// NewPresenter returns a Presenter. Program options are applied to every
// dialog, e.g. tea.WithInput for tests.
func NewPresenter(options ...tea.ProgramOption) *Presenter {
	return &Presenter{options: options}
}

func (p *Presenter) program(ctx context.Context, m Model) *tea.Program {
	opts := append([]tea.ProgramOption{tea.WithContext(ctx)}, p.options...)
	return tea.NewProgram(m, opts...)
}

// Fire implements dialog.Presenter.
func (p *Presenter) Fire(ctx context.Context, cfg dialog.Config) (dialog.Result, error) {
	prog := p.program(ctx, NewModel(cfg))

	if cfg.DidOpen != nil {
		h := newProgramHandle(prog)
		h.detached = true
		cfg.DidOpen(h)
	}

	final, err := prog.Run()
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, tea.ErrProgramKilled) {
			return dialog.Result{}, ctxErr
		}
		return dialog.Result{}, fmt.Errorf("dialog failed: %w", err)
	}

	m, ok := final.(Model)
	if !ok {
		return dialog.Result{}, fmt.Errorf("dialog returned unexpected model %T", final)
	}
	if m.interrupted {
		return dialog.Result{}, dialog.ErrInterrupted
	}
	if !m.done {
		return dialog.Dismissed(dialog.DismissClose), nil
	}
	return m.result, nil
}

// Open implements dialog.Presenter. The dialog runs until the returned
// handle is closed.
func (p *Presenter) Open(ctx context.Context, cfg dialog.Config) (dialog.Handle, error) {
	prog := p.program(ctx, NewModel(cfg))
	h := newProgramHandle(prog)

	go func() {
		defer close(h.done)
		_, _ = prog.Run()
	}()

	if cfg.DidOpen != nil {
		cfg.DidOpen(h)
	}
	return h, nil
}

// programHandle drives a running dialog from outside its event loop.
type programHandle struct {
	prog *tea.Program
	done chan struct{}

	// detached handles belong to a program run by Fire; closing one does
	// not wait for it to exit.
	detached bool

	mu     sync.Mutex
	closed bool
}

func newProgramHandle(prog *tea.Program) *programHandle {
	return &programHandle{prog: prog, done: make(chan struct{})}
}

// ShowLoading switches the dialog to its loading indicator.
func (h *programHandle) ShowLoading() {
	go h.prog.Send(showLoadingMsg{})
}

// Close stops the dialog and waits for the terminal to be restored.
func (h *programHandle) Close() {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.closed = true
	h.mu.Unlock()

	if h.detached {
		go h.prog.Send(closeMsg{})
		return
	}
	h.prog.Send(closeMsg{})
	<-h.done
}
