package cli

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/spf13/cobra"

	"github.com/retiroapp/expctl/internal/formcheck"
	"github.com/retiroapp/expctl/internal/page"
	"github.com/retiroapp/expctl/internal/watcher"
)

type formsCheckOptions struct {
	set   []string
	watch bool
}

func newFormsCmd() *cobra.Command {
	formsCmd := &cobra.Command{
		Use:     "forms",
		Aliases: []string{"form"},
		Short:   "Inspect the validated forms of a page",
	}
	formsCmd.AddCommand(newFormsCheckCmd())
	return formsCmd
}

func newFormsCheckCmd() *cobra.Command {
	opts := &formsCheckOptions{}
	cmd := &cobra.Command{
		Use:   "check <file|path>",
		Short: "Validate the forms of a page as the browser would",
		Long: `Load a page and run client-side validation on every form marked
needs-validation, the way the browser does on submit.

The page is read from a local file when one exists at the given path,
otherwise it is fetched from the server. Field values come from the page
and can be overridden with --set. The first visible field is focused and
reported.

Examples:
  expctl forms check crear_gestor.html
  expctl forms check /gestores/crear/ --set rut=12345678-9
  expctl forms check crear_gestor.html --watch`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFormsCheck(cmd, opts, args[0])
		},
	}

	cmd.Flags().StringArrayVar(&opts.set, "set", nil, "Set a field value (name=value), may be repeated")
	cmd.Flags().BoolVarP(&opts.watch, "watch", "w", false, "Check again whenever the page file changes")
	return cmd
}

func runFormsCheck(cmd *cobra.Command, opts *formsCheckOptions, target string) error {
	out := cmd.OutOrStdout()

	values, err := parseSetValues(opts.set)
	if err != nil {
		return err
	}

	if !isLocalFile(target) {
		if opts.watch {
			return fmt.Errorf("--watch needs a local file, got %s", target)
		}
		doc, err := fetchPage(cmd, target)
		if err != nil {
			return err
		}
		return checkForms(out, doc, values)
	}

	if err := checkFile(out, target, values); err != nil {
		return err
	}
	if !opts.watch {
		return nil
	}
	return watchFile(cmd.Context(), out, target, values)
}

func parseSetValues(pairs []string) (url.Values, error) {
	values := url.Values{}
	for _, pair := range pairs {
		name, value, ok := strings.Cut(pair, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid --set %q: expected name=value", pair)
		}
		values.Add(name, value)
	}
	return values, nil
}

func isLocalFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func fetchPage(cmd *cobra.Command, path string) (*page.Document, error) {
	cfg, err := LoadConfigForCommand()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	log, err := NewLoggerForCommand()
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	defer log.Sync()

	sess, err := NewSessionForCommand(cmd, cfg, log)
	if err != nil {
		return nil, err
	}
	doc, err := sess.Fetch(cmd.Context(), path)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	return doc, nil
}

func loadFile(path string) (*page.Document, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(abs)
	if err != nil {
		return nil, fmt.Errorf("failed to open page: %w", err)
	}
	defer f.Close()

	pageURL := url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}
	return page.Load(f, pageURL.String())
}

func checkFile(out io.Writer, path string, values url.Values) error {
	doc, err := loadFile(path)
	if err != nil {
		return err
	}
	return checkForms(out, doc, values)
}

// checkForms reports the focused field and the outcome of submitting
// every validated form of doc with values.
func checkForms(out io.Writer, doc *page.Document, values url.Values) error {
	if title := doc.Title(); title != "" {
		fmt.Fprintln(out, StyleHeader.Render(title))
	}

	if field, ok := formcheck.FocusFirst(doc); ok {
		name, _ := field.Attr("name")
		fmt.Fprintf(out, "Foco: %s %s\n", goquery.NodeName(field), name)
	} else {
		fmt.Fprintln(out, StyleDim.Render("Foco: ningún campo visible"))
	}

	forms := formcheck.Init(doc)
	if len(forms) == 0 {
		fmt.Fprintln(out, StyleDim.Render("Sin formularios con validación."))
		return nil
	}

	for i, f := range forms {
		sub := f.Submit(values)
		fmt.Fprintf(out, "\nFormulario %d (%s %s): ", i+1, f.Method(), f.Action())
		if sub.Submitted {
			fmt.Fprintln(out, StyleSuccess.Render("válido"))
			fmt.Fprintf(out, "  %s\n", StyleDim.Render(sub.Form.Encode()))
			continue
		}
		fmt.Fprintln(out, StyleError.Render(fmt.Sprintf("%d errores", len(sub.Violations))))
		for _, v := range sub.Violations {
			fmt.Fprintf(out, "  - %s\n", v)
		}
	}
	return nil
}

func watchFile(ctx context.Context, out io.Writer, path string, values url.Values) error {
	w, err := watcher.New()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.WatchFile(path); err != nil {
		return err
	}
	w.Start()
	fmt.Fprintln(out, StyleDim.Render("\nObservando "+path+" (Ctrl+C para salir)"))

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-w.Events:
			fmt.Fprintln(out)
			if err := checkFile(out, path, values); err != nil {
				fmt.Fprintln(out, StyleError.Render(err.Error()))
			}
		case err := <-w.Errors:
			return fmt.Errorf("watch failed: %w", err)
		}
	}
}
