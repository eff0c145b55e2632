// Package commands implements the tweeter command-line interface.
package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Sternrassler/tweeter-client/internal/config"
	"github.com/Sternrassler/tweeter-client/pkg/logging"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// options shared by every subcommand, filled in by PersistentPreRunE.
type options struct {
	cfgFile string
	cfg     *config.Config
	logger  zerolog.Logger
}

// Execute runs the root command and exits non-zero on error.
func Execute(version string) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := NewRootCmd()
	root.Version = version
	if err := root.ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "tweeter",
		Short: "Command-line client for the tweeter service",
		Long: `tweeter logs in to a tweeter service and pages through the list of
users an account follows, one page at a time.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.initialize(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.cfgFile, "config", "", "config file (default is ./tweeter.yaml)")
	flags.String("server", "", "tweeter service base URL")
	flags.String("user-agent", "", "User-Agent sent to the service")
	flags.Duration("timeout", 0, "HTTP request timeout")
	flags.String("redis", "", "Redis address for the shared error budget")
	flags.Int("redis-db", 0, "Redis database")
	flags.String("log-level", "", "log level (debug, info, warn, error)")
	flags.String("log-format", "", "log format (console, json)")
	flags.Bool("color", true, "colored console logs")
	flags.String("metrics-addr", "", "serve Prometheus metrics on this address")

	root.AddCommand(newLoginCmd(opts))
	root.AddCommand(newFollowingCmd(opts))

	return root
}

// initialize loads configuration and sets up logging.
func (o *options) initialize(cmd *cobra.Command) error {
	cfg, err := config.Load(o.cfgFile, cmd.Flags())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	o.cfg = cfg

	o.logger = logging.Setup(logging.Config{
		Level:  logging.LogLevel(cfg.Logging.Level),
		Pretty: cfg.Logging.Format == "console",
		Color:  cfg.Logging.Color,
		Output: cmd.ErrOrStderr(),
	})

	return nil
}
