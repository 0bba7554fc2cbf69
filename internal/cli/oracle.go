package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/unitgen/internal/oracle"
)

// OracleOptions holds flags for the oracle command.
type OracleOptions struct {
	*RootOptions
	Category string
	Function string // only cases of this function
}

// OracleResult holds the test vectors of one category.
type OracleResult struct {
	Category string         `json:"category" yaml:"category"`
	Cases    int            `json:"cases" yaml:"cases"`
	Groups   []oracle.Group `json:"groups" yaml:"groups"`
}

// NewOracleCommand creates the oracle command.
func NewOracleCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &OracleOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "oracle [specs-dir]",
		Short: "Print expected conversion results",
		Long: `Compute the expected result of every conversion of a category on its
boundary inputs, grouped by unit endpoint.

Examples:
  unitgen oracle --category temperature
  unitgen oracle --category distance --function mm_t_to_cm_t
  unitgen oracle ./units --category speed --format yaml`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOracle(opts, opts.specsDir(args), cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Category, "category", "", "category to compute (required)")
	cmd.Flags().StringVar(&opts.Function, "function", "", "only print cases of this function")
	_ = cmd.MarkFlagRequired("category")

	return cmd
}

func runOracle(opts *OracleOptions, specsDir string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	cats, err := loadCategories(specsDir, []string{opts.Category})
	if err != nil {
		code, message := errorCode(err)
		return commandError(formatter, code, message)
	}

	groups, err := oracle.New(opts.logger()).ForCategory(cats[0])
	if err != nil {
		return commandError(formatter, ErrCodeGeneric, err.Error())
	}

	result := OracleResult{Category: opts.Category}
	for _, g := range groups {
		if opts.Function != "" {
			g = filterGroup(g, opts.Function)
			if len(g.Cases) == 0 {
				continue
			}
		}
		result.Groups = append(result.Groups, g)
		result.Cases += len(g.Cases)
	}
	if opts.Function != "" && result.Cases == 0 {
		return commandError(formatter, ErrCodeNotFound, fmt.Sprintf("no cases for function %q in %s", opts.Function, opts.Category))
	}

	return outputOracle(formatter, result)
}

func filterGroup(g oracle.Group, function string) oracle.Group {
	out := oracle.Group{Endpoint: g.Endpoint}
	for _, c := range g.Cases {
		if c.Function == function {
			out.Cases = append(out.Cases, c)
		}
	}
	return out
}

// outputOracle prints the cases as C assertions in text mode.
func outputOracle(formatter *OutputFormatter, result OracleResult) error {
	if formatter.Structured() {
		return formatter.Success(result)
	}

	w := formatter.Writer
	for _, g := range result.Groups {
		fmt.Fprintf(w, "%s:\n", g.Endpoint.TypeName())
		for _, c := range g.Cases {
			fmt.Fprintf(w, "  %s(%s) == %s\n", c.Function, c.Input, c.Expected)
		}
	}
	fmt.Fprintf(w, "\n%d case(s) for %s\n", result.Cases, result.Category)
	return nil
}
