package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/retiroapp/expctl/internal/config"
	"github.com/retiroapp/expctl/internal/logging"
	"github.com/retiroapp/expctl/internal/web"
)

// GlobalOptions holds global configuration flags for testing and overrides
type GlobalOptions struct {
	ConfigHome string // Override for ~/.expctl directory
	Server     string // Override for the configured server URL
	Plain      bool   // Use line prompts instead of the full-screen dialog
	Verbose    bool   // Enable debug logging
}

// GlobalOpts holds the parsed global flags (exported for testing)
var GlobalOpts GlobalOptions

// GetConfigOptions returns config.Options based on global flags
func GetConfigOptions() config.Options {
	opts := config.DefaultOptions()
	if GlobalOpts.ConfigHome != "" {
		opts.ConfigHome = GlobalOpts.ConfigHome
	}
	return opts
}

// LoadConfigForCommand loads Config with options from global flags
func LoadConfigForCommand() (*config.Config, error) {
	cfg, err := config.Load(GetConfigOptions())
	if err != nil {
		return nil, err
	}
	if GlobalOpts.Server != "" {
		cfg.Server = strings.TrimRight(GlobalOpts.Server, "/")
	}
	if GlobalOpts.Plain {
		cfg.Plain = true
	}
	return cfg, nil
}

// NewLoggerForCommand builds the logger for the --verbose setting
func NewLoggerForCommand() (*zap.SugaredLogger, error) {
	return logging.New(GlobalOpts.Verbose)
}

// NewSessionForCommand validates cfg and opens a session against its
// server. Credentials, when configured, are used to log in first.
func NewSessionForCommand(cmd *cobra.Command, cfg *config.Config, log *zap.SugaredLogger) (*web.Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	sess, err := web.NewSession(web.Options{
		BaseURL:    cfg.Server,
		Timeout:    cfg.Timeout,
		TokenField: cfg.TokenField,
		Logger:     log,
	})
	if err != nil {
		return nil, err
	}

	if cfg.HasCredentials() {
		if _, err := sess.Login(cmd.Context(), cfg.Username, cfg.Password); err != nil {
			return nil, fmt.Errorf("failed to log in as %s: %w", cfg.Username, err)
		}
		log.Debugw("logged in", "user", cfg.Username)
	}
	return sess, nil
}

// NewRootCmd builds the expctl command tree. Global flags are bound to
// GlobalOpts.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "expctl",
		Short:         "Manage gestores and expedientes of the Retiro expediente application",
		SilenceUsage:  true,
		SilenceErrors: true,
		Long: `expctl drives the Retiro expediente application from the terminal.

Deleting a record asks for confirmation the same way the web interface
does, then posts the deletion form with the page's CSRF token.

Getting started:
- Point expctl at the server: export EXPCTL_SERVER=http://localhost:8000
- Store credentials in ~/.expctl/.env (EXPCTL_USER, EXPCTL_PASS)
- Delete a gestor: expctl gestores delete 12
- Check a saved form page: expctl forms check crear_gestor.html`,
	}

	rootCmd.PersistentFlags().StringVar(&GlobalOpts.ConfigHome, "config-home", "", "Override ~/.expctl directory (for testing)")
	rootCmd.PersistentFlags().StringVar(&GlobalOpts.Server, "server", "", "Server URL (overrides config and "+config.EnvServer+")")
	rootCmd.PersistentFlags().BoolVar(&GlobalOpts.Plain, "plain", false, "Use line prompts instead of the full-screen dialog")
	rootCmd.PersistentFlags().BoolVarP(&GlobalOpts.Verbose, "verbose", "v", false, "Enable debug logging")

	for _, kc := range kindCommands() {
		rootCmd.AddCommand(kc)
	}
	rootCmd.AddCommand(newFormsCmd())
	return rootCmd
}

// Run executes the command line args with the given input and output.
func Run(ctx context.Context, args []string, in io.Reader, out io.Writer) error {
	cmd := NewRootCmd()
	cmd.SetArgs(args)
	cmd.SetIn(in)
	cmd.SetOut(out)
	return cmd.ExecuteContext(ctx)
}

// Execute runs the root command, cancelling it on interrupt
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return NewRootCmd().ExecuteContext(ctx)
}
