package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/roach88/unitgen/internal/ir"
	"github.com/roach88/unitgen/internal/store"
)

// CheckOptions holds flags for the check command.
type CheckOptions struct {
	*RootOptions
	Force  bool // record the run even when drift was found
	DryRun bool // never record the run
}

// CheckResult holds the drift of every category against the last run.
type CheckResult struct {
	Drift    []store.Drift `json:"drift" yaml:"drift"`
	Drifted  int           `json:"drifted" yaml:"drifted"`
	Recorded bool          `json:"recorded" yaml:"recorded"`
	RunID    string        `json:"run_id,omitempty" yaml:"run_id,omitempty"`
	Seq      int64         `json:"seq,omitempty" yaml:"seq,omitempty"`
}

// NewCheckCommand creates the check command.
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CheckOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "check [specs-dir]",
		Short: "Detect drift in synthesised conversions",
		Long: `Synthesise every category and compare the digest of each conversion
with the last recorded run in the manifest store.

A category is changed when a conversion was added, removed, or its body
changed, and removed when it is no longer defined. New categories are
not drift. The run is recorded when no drift was found, or always with
--force.

Exit codes:
  0 - No drift
  1 - Drift detected
  2 - Command error (invalid specs, unreadable store, etc.)`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(opts, opts.specsDir(args), cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Store, "store", "", "manifest store path (default "+DefaultStorePath+")")
	cmd.Flags().BoolVar(&opts.Force, "force", false, "record the run even when drift is detected")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "compare without recording the run")

	return cmd
}

func runCheck(opts *CheckOptions, specsDir string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	ctx := cmd.Context()
	log := opts.logger()

	storePath := opts.Store
	if storePath == "" {
		storePath = DefaultStorePath
	}

	cats, err := loadCategories(specsDir, nil)
	if err != nil {
		code, message := errorCode(err)
		return commandError(formatter, code, message)
	}

	results, err := opts.synthesizer().All(ctx, cats)
	if err != nil {
		return commandError(formatter, ErrCodeSynthesis, err.Error())
	}

	manifests := make([]*ir.Manifest, len(results))
	for i, r := range results {
		m, err := ir.BuildManifest(r.Category.Name, r.Specs())
		if err != nil {
			return commandError(formatter, ErrCodeGeneric, err.Error())
		}
		manifests[i] = m
	}

	if err := os.MkdirAll(filepath.Dir(storePath), 0755); err != nil {
		return commandError(formatter, ErrCodeStore, fmt.Sprintf("creating store directory: %v", err))
	}
	st, err := store.Open(storePath)
	if err != nil {
		return commandError(formatter, ErrCodeStore, err.Error())
	}
	defer st.Close()

	drift, err := st.Diff(ctx, manifests)
	if err != nil {
		return commandError(formatter, ErrCodeStore, err.Error())
	}

	result := CheckResult{Drift: drift}
	for _, d := range drift {
		if isDrift(d) {
			result.Drifted++
		}
	}

	if !opts.DryRun && (result.Drifted == 0 || opts.Force) {
		run, err := st.RecordRun(ctx, manifests)
		if err != nil {
			return commandError(formatter, ErrCodeStore, err.Error())
		}
		result.Recorded = true
		result.RunID = run.ID
		result.Seq = run.Seq
		log.Debug("recorded run", zap.String("run", run.ID), zap.Int64("seq", run.Seq))
	}

	if err := outputCheck(formatter, result, storePath); err != nil {
		return err
	}
	if result.Drifted > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("drift detected in %d category(ies)", result.Drifted))
	}
	return nil
}

func isDrift(d store.Drift) bool {
	return d.Status == store.StatusChanged || d.Status == store.StatusRemoved
}

func outputCheck(formatter *OutputFormatter, result CheckResult, storePath string) error {
	if formatter.Structured() {
		resp := CLIResponse{Status: "ok", Data: result}
		if result.Drifted > 0 {
			resp.Status = "error"
			resp.Error = &CLIError{
				Code:    "E_DRIFT",
				Message: fmt.Sprintf("drift detected in %d category(ies)", result.Drifted),
			}
		}
		return formatter.Encode(resp)
	}

	w := formatter.Writer
	for _, d := range result.Drift {
		switch d.Status {
		case store.StatusUnchanged:
			fmt.Fprintf(w, "%s %s: unchanged\n", okMark, d.Category)
		case store.StatusNew:
			fmt.Fprintf(w, "%s %s: new\n", warnMark, d.Category)
		case store.StatusRemoved:
			fmt.Fprintf(w, "%s %s: removed\n", failMark, d.Category)
		default:
			fmt.Fprintf(w, "%s %s: changed (%d added, %d removed, %d changed)\n",
				failMark, d.Category, len(d.Added), len(d.Removed), len(d.Changed))
			for _, sig := range d.Changed {
				fmt.Fprintf(w, "    ~ %s\n", sig)
			}
			for _, sig := range d.Added {
				fmt.Fprintf(w, "    + %s\n", sig)
			}
			for _, sig := range d.Removed {
				fmt.Fprintf(w, "    - %s\n", sig)
			}
		}
	}

	fmt.Fprintln(w)
	if result.Recorded {
		fmt.Fprintf(w, "Recorded run %d in %s\n", result.Seq, storePath)
	}
	if result.Drifted == 0 {
		fmt.Fprintf(w, "%s No drift\n", okMark)
	}
	return nil
}
