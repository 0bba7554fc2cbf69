package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/unitgen/internal/ir"
)

// Snapshot captures the observable outcome of a scenario for golden
// comparison.
type Snapshot struct {
	ScenarioName string
	Checks       []CheckResult
	Oracle       []OracleResult
}

// toCanonicalMap converts a Snapshot for ir.MarshalCanonical, which only
// handles maps, slices and primitives.
func (s *Snapshot) toCanonicalMap() map[string]any {
	checks := make([]any, len(s.Checks))
	for i, c := range s.Checks {
		m := map[string]any{
			"category": c.Category,
			"function": c.Function,
			"input":    c.Input,
			"expect":   c.Expect,
			"pass":     c.Pass,
		}
		if c.Got != "" {
			m["got"] = c.Got
		}
		checks[i] = m
	}

	result := map[string]any{
		"scenario_name": s.ScenarioName,
		"checks":        checks,
	}
	if len(s.Oracle) > 0 {
		oracle := make([]any, len(s.Oracle))
		for i, o := range s.Oracle {
			oracle[i] = map[string]any{
				"category":  o.Category,
				"functions": o.Functions,
				"cases":     o.Cases,
				"failures":  o.Failures,
			}
		}
		result["oracle"] = oracle
	}
	return result
}

// MarshalSnapshot renders the snapshot of a result as canonical JSON, the
// content of its golden file.
func MarshalSnapshot(scenarioName string, result *Result) ([]byte, error) {
	snapshot := Snapshot{
		ScenarioName: scenarioName,
		Checks:       result.Checks,
		Oracle:       result.Oracle,
	}
	return ir.MarshalCanonical(snapshot.toCanonicalMap())
}

// RunWithGolden executes a scenario and compares its snapshot against
// testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario) error {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return err
	}
	return AssertGolden(t, scenario.Name, result)
}

// AssertGolden compares an existing result against a golden file without
// re-running the scenario.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	data, err := MarshalSnapshot(scenarioName, result)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, data)
	return nil
}
