package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/bundle/internal/config"
)

// RootOptions holds global flags for all commands and the state built from
// them before a command runs.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	ConfigPath string

	// Getenv reads environment variables for config lookup and
	// interpolation. Defaults to os.Getenv.
	Getenv func(string) string

	Config *config.Config
	Logger *slog.Logger

	logCloser io.Closer
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the bundle CLI.
// Callers that run it should prefer Execute, which also releases the log
// file when a command fails.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{})
}

// Execute runs the bundle CLI with os.Args.
func Execute() error {
	opts := &RootOptions{}
	return run(opts, newRootCommand(opts))
}

// run executes cmd and tears down what setup built, whether or not the
// command succeeded.
func run(opts *RootOptions, cmd *cobra.Command) error {
	err := cmd.Execute()
	if closeErr := opts.teardown(); closeErr != nil && err == nil {
		err = WrapExitError(ExitFailure, "failed to close log output", closeErr)
	}
	return err
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bundle",
		Short: "Query named column groups",
		Long: `Compile bundle definitions written in CUE into SELECT statements and run
them, assembling each row's bundle values as tuples or maps.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.setup(cmd)
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "path to bundle.yaml (default: $BUNDLE_CONFIG or ./bundle.yaml)")

	// Add subcommands
	cmd.AddCommand(NewSQLCommand(opts))
	cmd.AddCommand(NewQueryCommand(opts))
	cmd.AddCommand(NewSeedCommand(opts))

	return cmd
}

// setup loads configuration and builds the logger. An explicit --format
// wins over the configured output format.
func (opts *RootOptions) setup(cmd *cobra.Command) error {
	getenv := opts.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}

	cfg, err := config.Load(opts.ConfigPath, getenv)
	if err != nil {
		return WrapExitError(ExitCommandError, ErrCodeConfig+": failed to load configuration", err)
	}
	opts.Config = cfg

	if !cmd.Flags().Changed("format") {
		opts.Format = cfg.Output.Format
	}
	if !isValidFormat(opts.Format) {
		return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
	}

	logCfg := cfg.Logging
	if opts.Verbose {
		logCfg.Level = "debug"
	}
	var w io.Writer
	switch logCfg.Output {
	case "", "stderr":
		w = cmd.ErrOrStderr()
	case "stdout":
		w = cmd.OutOrStdout()
	}
	logger, closer, err := config.NewLogger(logCfg, w)
	if err != nil {
		return WrapExitError(ExitCommandError, ErrCodeConfig+": failed to configure logging", err)
	}
	opts.Logger = logger
	opts.logCloser = closer
	return nil
}

func (opts *RootOptions) teardown() error {
	if opts.logCloser == nil {
		return nil
	}
	err := opts.logCloser.Close()
	opts.logCloser = nil
	return err
}

// formatter builds an OutputFormatter for cmd.
func (opts *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   opts.Verbose,
	}
}

// logger returns the configured logger, or a discarding one before setup.
func (opts *RootOptions) logger() *slog.Logger {
	if opts.Logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return opts.Logger
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
