package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/retiroapp/expctl/internal/config"
	"github.com/retiroapp/expctl/internal/dialog"
	"github.com/retiroapp/expctl/internal/tui"
)

// presenterForCommand picks how dialogs are shown: the full-screen dialog
// when both ends are a terminal, line prompts otherwise.
func presenterForCommand(cmd *cobra.Command, cfg *config.Config, assumeYes bool) dialog.Presenter {
	in, out := cmd.InOrStdin(), cmd.OutOrStdout()
	plain := dialog.NewPlain(in, out)
	if assumeYes {
		return &autoConfirm{Presenter: plain, out: out}
	}
	if !cfg.Plain && isTerminal(in) && isTerminal(out) {
		return tui.NewPresenter(tea.WithInput(in), tea.WithOutput(out))
	}
	return plain
}

func isTerminal(v any) bool {
	f, ok := v.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// autoConfirm answers every confirmation with yes. Non-blocking dialogs
// are still shown by the wrapped presenter.
type autoConfirm struct {
	dialog.Presenter
	out io.Writer
}

func (a *autoConfirm) Fire(ctx context.Context, cfg dialog.Config) (dialog.Result, error) {
	if err := ctx.Err(); err != nil {
		return dialog.Result{}, err
	}
	if !cfg.ShowConfirmButton {
		return dialog.Dismissed(dialog.DismissClose), nil
	}
	fmt.Fprintf(a.out, "%s %s\n", cfg.Title, StyleDim.Render("(--yes)"))
	return dialog.Confirmed(), nil
}
