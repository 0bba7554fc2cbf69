package cli

import (
	"errors"
	"fmt"

	"cuelang.org/go/cue"
	"github.com/spf13/cobra"

	"github.com/roach88/unitgen/internal/catalog"
	"github.com/roach88/unitgen/internal/compiler"
	"github.com/roach88/unitgen/internal/ir"
	"github.com/roach88/unitgen/internal/synth"
)

// ValidationIssue is one problem found in a category definition.
type ValidationIssue struct {
	Category string `json:"category,omitempty" yaml:"category,omitempty"`
	Field    string `json:"field" yaml:"field"`
	Code     string `json:"code" yaml:"code"`
	Message  string `json:"message" yaml:"message"`
	Line     int    `json:"line,omitempty" yaml:"line,omitempty"`
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid      bool              `json:"valid" yaml:"valid"`
	Categories []string          `json:"categories" yaml:"categories"`
	Errors     []ValidationIssue `json:"errors,omitempty" yaml:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate [specs-dir]",
		Short: "Validate category definitions",
		Long: `Validate CUE category definitions without writing any output.

Every error of every category is reported, not just the first. Valid
categories are also synthesised once to check that no two conversions
share a signature. Without a specs directory the built-in catalog is
validated.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, rootOpts.specsDir(args), cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, specsDir string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	var value cue.Value
	if specsDir == "" {
		v, err := catalog.Value()
		if err != nil {
			return commandError(formatter, ErrCodeBuildFailed, err.Error())
		}
		value = v
		formatter.VerboseLog("Validating built-in catalog")
	} else {
		loadResult, loadErrors := LoadSpecs(specsDir, LoadModeFailFast)
		if loadResult == nil && len(loadErrors) > 0 {
			code, message := errorCode(loadErrors[0])
			return commandError(formatter, code, message)
		}
		value = loadResult.CUEValue
		formatter.VerboseLog("Found %d CUE file(s) in %s", loadResult.FileCount, specsDir)
	}

	cats, issues := validateAll(opts, value, formatter, cmd)
	names := make([]string, len(cats))
	for i, c := range cats {
		names[i] = c.Name
	}

	if len(issues) > 0 {
		return outputValidationErrors(formatter, names, issues)
	}
	return outputValidateSuccess(formatter, names)
}

// validateAll compiles every category with error collection and
// synthesises the valid ones.
func validateAll(opts *RootOptions, value cue.Value, formatter *OutputFormatter, cmd *cobra.Command) ([]*ir.Category, []ValidationIssue) {
	cats, errs := collectCategories(value, LoadModeCollectAll)

	var issues []ValidationIssue
	for _, err := range errs {
		issues = append(issues, toIssues(err)...)
	}

	var valid []*ir.Category
	s := opts.synthesizer()
	for _, cat := range cats {
		formatter.VerboseLog("Validating category: %s", cat.Name)
		if _, err := s.Category(cmd.Context(), cat); err != nil {
			issues = append(issues, toIssues(err)...)
			continue
		}
		valid = append(valid, cat)
	}
	return valid, issues
}

// toIssues flattens an error from loading or synthesis.
func toIssues(err error) []ValidationIssue {
	var confErr *compiler.ConfigurationError
	if errors.As(err, &confErr) {
		out := make([]ValidationIssue, len(confErr.Errors))
		for i, ve := range confErr.Errors {
			out[i] = ValidationIssue{Category: confErr.Category, Field: ve.Field, Code: ve.Code, Message: ve.Message}
		}
		return out
	}
	var invErr *synth.InvariantError
	if errors.As(err, &invErr) {
		return []ValidationIssue{{
			Category: invErr.Category,
			Field:    invErr.Signature,
			Code:     ErrCodeSynthesis,
			Message:  invErr.Message,
		}}
	}
	var loadErr *LoadError
	if errors.As(err, &loadErr) {
		issue := ValidationIssue{Field: "load", Code: loadErr.Code, Message: loadErr.Message}
		if loadErr.Pos.IsValid() {
			issue.Line = loadErr.Pos.Line()
		}
		return []ValidationIssue{issue}
	}
	return []ValidationIssue{{Field: "load", Code: ErrCodeGeneric, Message: err.Error()}}
}

// outputValidateSuccess outputs successful validation results.
func outputValidateSuccess(formatter *OutputFormatter, names []string) error {
	if formatter.Structured() {
		return formatter.Success(ValidationResult{Valid: true, Categories: names})
	}

	fmt.Fprintf(formatter.Writer, "%s All categories valid (%d)\n", okMark, len(names))
	return nil
}

// outputValidationErrors outputs multiple validation errors.
func outputValidationErrors(formatter *OutputFormatter, names []string, issues []ValidationIssue) error {
	if formatter.Structured() {
		response := CLIResponse{
			Status: "error",
			Data: ValidationResult{
				Valid:      false,
				Categories: names,
				Errors:     issues,
			},
			Error: &CLIError{
				Code:    issues[0].Code,
				Message: issues[0].Message,
			},
		}
		if err := formatter.Encode(response); err != nil {
			return err
		}

		// Validation failures = exit code 1 (check failure)
		return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(issues)))
	}

	// Text format
	fmt.Fprintf(formatter.Writer, "%s Validation failed\n", failMark)
	fmt.Fprintln(formatter.Writer)

	for _, issue := range issues {
		where := issue.Field
		if issue.Category != "" {
			where = issue.Category + "." + issue.Field
		}
		if issue.Line > 0 {
			fmt.Fprintf(formatter.Writer, "line %d\n", issue.Line)
		}
		fmt.Fprintf(formatter.Writer, "  %s: %s: %s\n\n", issue.Code, where, issue.Message)
	}

	// Validation failures = exit code 1 (check failure)
	return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(issues)))
}
