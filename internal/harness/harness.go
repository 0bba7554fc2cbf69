package harness

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/roach88/unitgen/internal/catalog"
	"github.com/roach88/unitgen/internal/expr"
	"github.com/roach88/unitgen/internal/ir"
	"github.com/roach88/unitgen/internal/numeric"
	"github.com/roach88/unitgen/internal/oracle"
	"github.com/roach88/unitgen/internal/synth"
)

// Harness evaluates scenarios against synthesized conversions.
//
// Conversions are evaluated through their expression trees with C
// semantics, so a check exercises the same code the emitted C function
// contains without a C toolchain.
type Harness struct {
	logger *zap.Logger
	synth  *synth.Synthesizer
	oracle *oracle.Oracle
}

// New creates a harness. A nil logger discards output.
func New(logger *zap.Logger) *Harness {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Harness{
		logger: logger,
		synth:  &synth.Synthesizer{Logger: logger},
		oracle: oracle.New(logger),
	}
}

// Run executes a scenario with a default harness.
func Run(scenario *Scenario) (*Result, error) {
	return New(nil).Run(context.Background(), scenario)
}

// Run executes a scenario and returns the result.
//
// Errors are returned only when the scenario cannot be executed: the
// categories fail to load or a named category does not exist. Failing
// checks are recorded in the result.
func (h *Harness) Run(ctx context.Context, scenario *Scenario) (*Result, error) {
	cats, err := h.load(scenario)
	if err != nil {
		return nil, err
	}

	results := make(map[string]*synth.Result)
	resolve := func(name string) (*synth.Result, error) {
		if r, ok := results[name]; ok {
			return r, nil
		}
		cat, ok := cats[name]
		if !ok {
			return nil, fmt.Errorf("unknown category %q", name)
		}
		r, err := h.synth.Category(ctx, cat)
		if err != nil {
			return nil, err
		}
		results[name] = r
		return r, nil
	}

	result := NewResult()
	for i, c := range scenario.Checks {
		r, err := resolve(c.Category)
		if err != nil {
			return nil, fmt.Errorf("checks[%d]: %w", i, err)
		}
		cr := runCheck(r, c)
		if !cr.Pass {
			result.AddError(fmt.Sprintf("checks[%d]: %s(%s): %s", i, c.Function, c.Input, cr.Reason))
		}
		result.Checks = append(result.Checks, cr)
	}

	for _, name := range scenario.Oracle {
		r, err := resolve(name)
		if err != nil {
			return nil, fmt.Errorf("oracle: %w", err)
		}
		or, errs := runOracle(r)
		for _, e := range errs {
			result.AddError(e)
		}
		result.Oracle = append(result.Oracle, or)
	}

	h.logger.Debug("scenario finished",
		zap.String("scenario", scenario.Name),
		zap.Int("checks", len(result.Checks)),
		zap.Int("errors", len(result.Errors)),
		zap.Bool("pass", result.Pass))
	return result, nil
}

func (h *Harness) load(scenario *Scenario) (map[string]*ir.Category, error) {
	var (
		list []*ir.Category
		err  error
	)
	if scenario.Specs == "" {
		list, err = catalog.Load()
	} else {
		list, err = catalog.LoadDir(scenario.Specs)
	}
	if err != nil {
		return nil, fmt.Errorf("loading categories: %w", err)
	}
	cats := make(map[string]*ir.Category, len(list))
	for _, c := range list {
		cats[c.Name] = c
	}
	return cats, nil
}

func runCheck(r *synth.Result, c Check) CheckResult {
	cr := CheckResult{
		Category: c.Category,
		Function: c.Function,
		Input:    c.Input,
		Expect:   c.Expect,
	}
	conv, ok := r.Lookup(c.Function)
	if !ok {
		cr.Reason = "no such function"
		return cr
	}
	in, err := numeric.ParseLiteral(conv.Spec.Source.Kind, c.Input)
	if err != nil {
		cr.Reason = fmt.Sprintf("input: %v", err)
		return cr
	}
	want, err := numeric.ParseLiteral(conv.Spec.Dest.Kind, c.Expect)
	if err != nil {
		cr.Reason = fmt.Sprintf("expect: %v", err)
		return cr
	}
	got, err := expr.Eval(conv.Tree, expr.Env{conv.Spec.Param: in})
	if err != nil {
		cr.Reason = fmt.Sprintf("evaluation failed: %v", err)
		return cr
	}
	cr.Got = numeric.FormatLiteral(got)
	if !got.Equal(want) {
		cr.Reason = fmt.Sprintf("got %s, want %s", cr.Got, c.Expect)
		return cr
	}
	cr.Pass = true
	return cr
}

func runOracle(r *synth.Result) (OracleResult, []string) {
	or := OracleResult{Category: r.Category.Name, Functions: len(r.Conversions)}
	var errs []string
	for _, conv := range r.Conversions {
		cases, err := oracle.Cases(r.Category, conv.Spec.Source, conv.Spec.Dest)
		if err != nil {
			or.Failures++
			errs = append(errs, fmt.Sprintf("oracle: %s: %v", conv.Spec.Name, err))
			continue
		}
		for _, tc := range cases {
			or.Cases++
			got, err := expr.Eval(conv.Tree, expr.Env{conv.Spec.Param: tc.In})
			if err != nil {
				or.Failures++
				errs = append(errs, fmt.Sprintf("oracle: %s(%s): %v", conv.Spec.Name, tc.Input, err))
				continue
			}
			if !got.Equal(tc.Out) {
				or.Failures++
				errs = append(errs, fmt.Sprintf("oracle: %s(%s): got %s, want %s",
					conv.Spec.Name, tc.Input, numeric.FormatLiteral(got), tc.Expected))
			}
		}
	}
	return or, errs
}
