package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/retiroapp/expctl/internal/deletion"
	"github.com/retiroapp/expctl/internal/dialog"
	"github.com/retiroapp/expctl/internal/page"
)

type deleteOptions struct {
	label    string
	endpoint string
	rich     bool
	simple   bool
	yes      bool
}

// kindCommands returns one command per record kind, each with a delete
// subcommand.
func kindCommands() []*cobra.Command {
	var cmds []*cobra.Command
	for _, k := range deletion.Kinds {
		parent := &cobra.Command{
			Use:     k.Name,
			Aliases: []string{k.Noun},
			Short:   fmt.Sprintf("Manage %s", k.Name),
		}
		parent.AddCommand(newDeleteCmd(k))
		cmds = append(cmds, parent)
	}
	return cmds
}

func newDeleteCmd(kind deletion.Kind) *cobra.Command {
	opts := &deleteOptions{}
	cmd := &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm", "eliminar"},
		Short:   fmt.Sprintf("Delete a %s after confirmation", kind.Noun),
		Long: fmt.Sprintf(`Delete a %[1]s on the server.

The %[1]s list page (%[2]s) is loaded first and its CSRF token is sent
with the deletion form, exactly as the web interface does. You will be
asked to confirm unless --yes is given. The server may delete related
records too: %[3]s

Examples:
  expctl %[4]s delete 12
  expctl %[4]s delete 12 --label "Ana Pérez" --yes`, kind.Noun, kind.ListPath, kind.Cascade, kind.Name),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDelete(cmd, kind, opts, args[0])
		},
	}

	cmd.Flags().StringVarP(&opts.label, "label", "l", "", "Name shown in the confirmation (default: read from the list page)")
	cmd.Flags().StringVar(&opts.endpoint, "endpoint", "", fmt.Sprintf("Deletion URL prefix (default %q)", kind.Endpoint))
	cmd.Flags().BoolVarP(&opts.yes, "yes", "y", false, "Skip the confirmation prompt")
	if kind.Variant == deletion.Simple {
		cmd.Flags().BoolVar(&opts.rich, "rich", false, "Use the detailed confirmation with a loading indicator")
	} else {
		cmd.Flags().BoolVar(&opts.simple, "simple", false, "Use the short confirmation")
	}
	return cmd
}

func runDelete(cmd *cobra.Command, kind deletion.Kind, opts *deleteOptions, id string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	cfg, err := LoadConfigForCommand()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	log, err := NewLoggerForCommand()
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer log.Sync()

	sess, err := NewSessionForCommand(cmd, cfg, log)
	if err != nil {
		return err
	}

	doc, err := sess.Fetch(ctx, kind.ListPath)
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", kind.ListPath, err)
	}
	if doc.StatusCode >= 400 {
		return fmt.Errorf("failed to load %s: server answered %d", kind.ListPath, doc.StatusCode)
	}

	label := opts.label
	if label == "" {
		if l, ok := doc.LabelFor(id); ok {
			label = l
		} else {
			label = id
		}
	}

	options := []deletion.Option{
		deletion.WithKind(kind),
		deletion.WithTokenField(cfg.TokenField),
		deletion.WithEndpoint(cfg.Endpoint(kind.Name, kind.Endpoint)),
	}
	if opts.endpoint != "" {
		options = append(options, deletion.WithEndpoint(opts.endpoint))
	}
	switch {
	case opts.rich:
		options = append(options, deletion.WithVariant(deletion.Rich))
	case opts.simple:
		options = append(options, deletion.WithVariant(deletion.Simple))
	}

	presenter := presenterForCommand(cmd, cfg, opts.yes)
	helper := deletion.NewHelper(presenter, doc, sess, log)

	outcome, err := helper.ConfirmDeletion(ctx, id, label, options...)
	if errors.Is(err, dialog.ErrInterrupted) {
		return fmt.Errorf("operation cancelled")
	}
	if errors.Is(err, page.ErrTokenMissing) {
		return fmt.Errorf("%s has no %s field; are you logged in? %w", kind.ListPath, cfg.TokenField, err)
	}
	if err != nil {
		return err
	}

	if !outcome.Confirmed {
		fmt.Fprintln(out, StyleWarning.Render("Eliminación cancelada."))
		return nil
	}

	landing := outcome.Landing
	printFlashes(out, landing)
	if landing.StatusCode >= 400 {
		return fmt.Errorf("deleting %s %s failed: server answered %d", kind.Noun, id, landing.StatusCode)
	}
	if len(landing.Flashes()) == 0 {
		fmt.Fprintf(out, "%s %s %s eliminado\n", StyleSuccess.Render("✓"), capitalize(kind.Noun), StyleHighlight.Render(label))
	}
	return nil
}

func printFlashes(w io.Writer, doc *page.Document) {
	for _, m := range doc.Flashes() {
		fmt.Fprintln(w, GetMessageStyle(m.Level).Render(m.Text))
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
