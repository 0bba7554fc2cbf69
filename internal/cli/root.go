package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/roach88/unitgen/internal/synth"
)

// RootOptions holds global flags and configuration for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "text" | "json" | "yaml"
	ConfigFile string
	Workers    int

	// Resolved from configuration in PersistentPreRunE.
	SpecsDir string
	Store    string
	Logger   *zap.Logger
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json", "yaml"}

// NewRootCommand creates the root command for the unitgen CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "unitgen",
		Short: "unitgen - safe unit conversion synthesis for C",
		Long: `Synthesises C conversion functions between unit-typed values and
numeric kinds. Every generated function clamps instead of overflowing,
and every conversion ships with oracle-computed test vectors.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.resolve(cmd)
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (text|json|yaml)")
	cmd.PersistentFlags().StringVar(&opts.ConfigFile, "config", "", "config file (default ./unitgen.yaml)")
	cmd.PersistentFlags().IntVar(&opts.Workers, "workers", synth.DefaultWorkers, "endpoints synthesised concurrently")

	// Add subcommands
	cmd.AddCommand(NewGenerateCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewOracleCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))
	cmd.AddCommand(NewCheckCommand(opts))

	return cmd
}

// Execute runs the CLI and returns the process exit code.
func Execute() int {
	cmd := NewRootCommand()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return GetExitCode(err)
	}
	return ExitSuccess
}

// resolve merges configuration under the flags the user set explicitly
// and builds the logger.
func (o *RootOptions) resolve(cmd *cobra.Command) error {
	cfg, err := LoadConfig(o.ConfigFile)
	if err != nil {
		return WrapExitError(ExitCommandError, "configuration", err)
	}

	flags := cmd.Flags()
	if !flags.Changed("format") {
		o.Format = cfg.Format
	}
	if !flags.Changed("workers") {
		o.Workers = cfg.Workers
	}
	if o.Store == "" {
		o.Store = cfg.Store
	}
	o.SpecsDir = cfg.SpecsDir

	if !isValidFormat(o.Format) {
		return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", o.Format, ValidFormats))
	}
	if o.Workers < 1 {
		return NewExitError(ExitCommandError, fmt.Sprintf("workers must be at least 1, got %d", o.Workers))
	}

	o.Logger = newLogger(o.Verbose, cmd.ErrOrStderr())
	return nil
}

func (o *RootOptions) logger() *zap.Logger {
	if o.Logger == nil {
		return zap.NewNop()
	}
	return o.Logger
}

func (o *RootOptions) synthesizer() *synth.Synthesizer {
	return &synth.Synthesizer{Logger: o.logger(), Workers: o.Workers}
}

// specsDir returns the positional specs directory, falling back to the
// configured one. Empty selects the built-in catalog.
func (o *RootOptions) specsDir(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return o.SpecsDir
}

func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting structured output
		Verbose:   o.Verbose,
	}
}

// newLogger logs at debug level in development format when verbose, and
// warnings only as JSON otherwise. Output goes to w, never stdout.
func newLogger(verbose bool, w io.Writer) *zap.Logger {
	level := zapcore.WarnLevel
	enc := zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	if verbose {
		level = zapcore.DebugLevel
		enc = zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	}
	return zap.New(zapcore.NewCore(enc, zapcore.AddSync(w), level))
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
