package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"github.com/roach88/unitgen/internal/emit"
	"github.com/roach88/unitgen/internal/oracle"
	"github.com/roach88/unitgen/internal/synth"
)

// GenerateOptions holds flags for the generate command.
type GenerateOptions struct {
	*RootOptions
	Output     string   // output directory
	Categories []string // restrict to these categories
}

// CategorySummary describes the conversions of one category.
type CategorySummary struct {
	Name        string   `json:"name" yaml:"name"`
	Strategy    string   `json:"strategy" yaml:"strategy"`
	Units       int      `json:"units" yaml:"units"`
	Conversions int      `json:"conversions" yaml:"conversions"`
	Files       []string `json:"files,omitempty" yaml:"files,omitempty"`
}

// GenerateResult summarises a generate run.
type GenerateResult struct {
	Categories  []CategorySummary `json:"categories" yaml:"categories"`
	Conversions int               `json:"conversions" yaml:"conversions"`
	Output      string            `json:"output,omitempty" yaml:"output,omitempty"`
}

// NewGenerateCommand creates the generate command.
func NewGenerateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &GenerateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "generate [specs-dir]",
		Short: "Synthesise conversion functions",
		Long: `Validate categories and synthesise every conversion between their
unit endpoints and the numeric kinds.

With --output, writes <category>.h, <category>.c and test_<category>.c
per category. The test file asserts the oracle's expected results.

Examples:
  unitgen generate
  unitgen generate ./units -o build/units
  unitgen generate --category distance --category time --format json`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(opts, opts.specsDir(args), cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output directory for C files")
	cmd.Flags().StringSliceVar(&opts.Categories, "category", nil, "only generate these categories")

	return cmd
}

func runGenerate(opts *GenerateOptions, specsDir string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	cats, err := loadCategories(specsDir, opts.Categories)
	if err != nil {
		code, message := errorCode(err)
		return commandError(formatter, code, message)
	}

	results, err := opts.synthesizer().All(cmd.Context(), cats)
	if err != nil {
		if synth.IsInvariantError(err) {
			return commandError(formatter, ErrCodeSynthesis, err.Error())
		}
		code, message := errorCode(err)
		return commandError(formatter, code, message)
	}

	result := GenerateResult{Output: opts.Output}
	for _, r := range results {
		formatter.VerboseLog("Synthesised %s: %d conversion(s)", r.Category.Name, len(r.Conversions))
		summary := CategorySummary{
			Name:        r.Category.Name,
			Strategy:    string(r.Category.Strategy),
			Units:       len(r.Category.Units),
			Conversions: len(r.Conversions),
		}

		if opts.Output != "" {
			files, err := writeCategory(opts, r)
			if err != nil {
				return commandError(formatter, ErrCodeWriteFailed, err.Error())
			}
			summary.Files = files
		}

		result.Categories = append(result.Categories, summary)
		result.Conversions += summary.Conversions
	}

	return outputGenerateSuccess(formatter, result)
}

// writeCategory writes the C files of one category and returns their
// paths in name order.
func writeCategory(opts *GenerateOptions, r *synth.Result) ([]string, error) {
	groups, err := oracle.New(opts.logger()).ForCategory(r.Category)
	if err != nil {
		return nil, fmt.Errorf("oracle for %s: %w", r.Category.Name, err)
	}

	if err := os.MkdirAll(opts.Output, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	files := emit.Files(r, groups)
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)

	paths := make([]string, len(names))
	for i, name := range names {
		path := filepath.Join(opts.Output, name)
		if err := os.WriteFile(path, []byte(files[name]), 0644); err != nil {
			return nil, fmt.Errorf("writing %s: %w", path, err)
		}
		paths[i] = path
	}
	return paths, nil
}

// outputGenerateSuccess outputs the generate summary.
func outputGenerateSuccess(formatter *OutputFormatter, result GenerateResult) error {
	if formatter.Structured() {
		return formatter.Success(result)
	}

	w := formatter.Writer
	fmt.Fprintf(w, "%s Synthesised %d conversion(s) across %d category(ies)\n\n",
		okMark, result.Conversions, len(result.Categories))
	for _, c := range result.Categories {
		fmt.Fprintf(w, "  %s: %s, %d unit(s), %d conversion(s)\n", c.Name, c.Strategy, c.Units, c.Conversions)
	}

	if result.Output != "" {
		files := 0
		for _, c := range result.Categories {
			files += len(c.Files)
		}
		fmt.Fprintf(w, "\nWrote %d file(s) to %s\n", files, result.Output)
	}
	return nil
}
