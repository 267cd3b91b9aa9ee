package dialog

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"golang.org/x/term"
)

// ErrInterrupted is returned when the user presses Ctrl+C at a prompt.
var ErrInterrupted = errors.New("interrupted")

var (
	titleColor   = color.New(color.Bold)
	confirmColor = color.New(color.FgHiWhite, color.BgRed, color.Bold)
	cancelColor  = color.New(color.FgHiWhite, color.BgHiBlack)
	warningColor = color.New(color.FgYellow, color.Bold)
)

// Plain presents dialogs as line-oriented prompts. On a terminal a single
// key press answers; otherwise a line is read.
type Plain struct {
	in  io.Reader
	out io.Writer
	fd  int
	tty bool

	lines *bufio.Reader
}

// NewPlain returns a Plain presenter reading from in. When in is a
// terminal, answers are read one key at a time in raw mode.
func NewPlain(in io.Reader, out io.Writer) *Plain {
	p := &Plain{in: in, out: out, fd: -1}
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		p.fd = int(f.Fd())
		p.tty = true
	}
	p.lines = bufio.NewReader(in)
	return p
}

// Fire implements Presenter.
func (p *Plain) Fire(ctx context.Context, cfg Config) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	p.render(cfg)
	if cfg.DidOpen != nil {
		h := p.handle(cfg)
		defer h.Close()
		cfg.DidOpen(h)
	}

	if !cfg.ShowConfirmButton && !cfg.ShowCancelButton {
		return Dismissed(DismissClose), nil
	}

	if p.tty {
		return p.readKey(cfg)
	}
	return p.readLine(cfg)
}

// Open implements Presenter.
func (p *Plain) Open(ctx context.Context, cfg Config) (Handle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p.render(cfg)
	h := p.handle(cfg)
	if cfg.DidOpen != nil {
		cfg.DidOpen(h)
	}
	return h, nil
}

func (p *Plain) render(cfg Config) {
	title := cfg.Title
	if sym := cfg.Icon.Symbol(); sym != "" {
		title = warningColor.Sprint(sym) + "  " + titleColor.Sprint(title)
	} else {
		title = titleColor.Sprint(title)
	}
	fmt.Fprintln(p.out, title)

	if body := cfg.Body(); body != "" {
		fmt.Fprintln(p.out)
		fmt.Fprintln(p.out, body)
	}

	buttons := p.buttons(cfg)
	if buttons != "" {
		fmt.Fprintln(p.out)
		fmt.Fprintln(p.out, buttons)
	}
}

func (p *Plain) buttons(cfg Config) string {
	var confirm, cancel string
	if cfg.ShowConfirmButton {
		confirm = confirmColor.Sprintf(" %s ", PlainText(cfg.ConfirmButtonText)) + " (y)"
	}
	if cfg.ShowCancelButton {
		cancel = cancelColor.Sprintf(" %s ", PlainText(cfg.CancelButtonText)) + " (n)"
	}

	order := []string{confirm, cancel}
	if cfg.ReverseButtons {
		order = []string{cancel, confirm}
	}
	var parts []string
	for _, s := range order {
		if s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, "   ")
}

func (p *Plain) readKey(cfg Config) (Result, error) {
	oldState, err := term.MakeRaw(p.fd)
	if err != nil {
		return Result{}, fmt.Errorf("failed to set raw mode: %w", err)
	}
	defer term.Restore(p.fd, oldState)

	b := make([]byte, 1)
	for {
		if _, err := p.in.Read(b); err != nil {
			return Result{}, fmt.Errorf("failed to read input: %w", err)
		}

		switch key := b[0]; {
		case key == 3:
			fmt.Fprint(p.out, "^C\r\n")
			return Result{}, ErrInterrupted
		case (key == 'y' || key == 'Y' || key == '\r') && cfg.ShowConfirmButton:
			fmt.Fprint(p.out, "y\r\n")
			return Confirmed(), nil
		case (key == 'n' || key == 'N') && cfg.ShowCancelButton:
			fmt.Fprint(p.out, "n\r\n")
			return Dismissed(DismissCancel), nil
		case key == 27 && cfg.AllowEscapeKey:
			fmt.Fprint(p.out, "\r\n")
			return Dismissed(DismissEsc), nil
		}
	}
}

func (p *Plain) readLine(cfg Config) (Result, error) {
	fmt.Fprint(p.out, "> ")
	line, err := p.lines.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return Result{}, fmt.Errorf("failed to read input: %w", err)
	}
	answer := strings.ToLower(strings.TrimSpace(line))

	switch answer {
	case "y", "yes", "s", "si", "sí":
		if cfg.ShowConfirmButton {
			return Confirmed(), nil
		}
	case "n", "no":
		if cfg.ShowCancelButton {
			return Dismissed(DismissCancel), nil
		}
	}
	if errors.Is(err, io.EOF) && answer == "" {
		return Dismissed(DismissClose), nil
	}
	return Dismissed(DismissCancel), nil
}

func (p *Plain) handle(cfg Config) *plainHandle {
	return &plainHandle{out: p.out, text: cfg.Title}
}

type plainHandle struct {
	mu   sync.Mutex
	out  io.Writer
	text string
	spin *spinner.Spinner
}

func (h *plainHandle) ShowLoading() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.spin != nil {
		return
	}
	h.spin = spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(h.out))
	h.spin.Suffix = " " + h.text
	h.spin.Start()
}

func (h *plainHandle) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.spin != nil {
		h.spin.Stop()
		h.spin = nil
	}
}
