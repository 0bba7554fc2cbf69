package harness

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRunWithGolden_Examples(t *testing.T) {
	s, err := LoadScenario("testdata/scenarios/examples.yaml")
	require.NoError(t, err)

	// Regenerate with:
	//   go test ./internal/harness -run TestRunWithGolden_Examples -update
	require.NoError(t, RunWithGolden(t, s))
}

func TestMarshalSnapshot_IncludesOracle(t *testing.T) {
	result := NewResult()
	result.Checks = append(result.Checks, CheckResult{
		Category: "distance", Function: "cm_t_to_mm_t", Input: "2", Expect: "200", Reason: "got 20, want 200",
	})
	result.Oracle = append(result.Oracle, OracleResult{Category: "percentage", Functions: 108, Cases: 900})

	data, err := MarshalSnapshot("mixed", result)
	require.NoError(t, err)
	require.Equal(t,
		`{"checks":[{"category":"distance","expect":"200","function":"cm_t_to_mm_t","input":"2","pass":false}],`+
			`"oracle":[{"cases":900,"category":"percentage","failures":0,"functions":108}],"scenario_name":"mixed"}`,
		string(data))
}
