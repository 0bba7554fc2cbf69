package harness

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestRun_Examples(t *testing.T) {
	s, err := LoadScenario("testdata/scenarios/examples.yaml")
	require.NoError(t, err)

	result, err := New(zaptest.NewLogger(t)).Run(context.Background(), s)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
	require.Len(t, result.Checks, 6)
	assert.Equal(t, "77.0f", result.Checks[3].Got)
	assert.Equal(t, "INT_MAX", result.Checks[5].Got)
}

func TestRun_UserDefinitionsWithOracle(t *testing.T) {
	s, err := LoadScenario("testdata/scenarios/speed.yaml")
	require.NoError(t, err)

	result, err := Run(s)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)

	require.Len(t, result.Oracle, 1)
	o := result.Oracle[0]
	assert.Equal(t, "speed", o.Category)
	// E = 2 units * 4 signs: E(E-1) unit pairs plus 2*E*12 numeric pairs.
	assert.Equal(t, 8*7+2*8*12, o.Functions)
	assert.Positive(t, o.Cases)
	assert.Zero(t, o.Failures)
}

func TestRun_FailingCheck(t *testing.T) {
	s := &Scenario{
		Name:        "failing",
		Description: "wrong expectations",
		Checks: []Check{
			{Category: "distance", Function: "cm_t_to_mm_t", Input: "2", Expect: "200"},
			{Category: "distance", Function: "cm_t_to_furlong_t", Input: "2", Expect: "0"},
			{Category: "distance", Function: "cm_u_to_mm_u", Input: "-1", Expect: "0"},
		},
	}

	result, err := Run(s)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 3)

	assert.Equal(t, "20", result.Checks[0].Got)
	assert.Equal(t, "got 20, want 200", result.Checks[0].Reason)
	assert.Equal(t, "no such function", result.Checks[1].Reason)
	assert.Contains(t, result.Checks[2].Reason, "input")
}

func TestRun_UnknownCategory(t *testing.T) {
	s := &Scenario{
		Name:        "unknown",
		Description: "category missing from the catalog",
		Checks:      []Check{{Category: "luminance", Function: "f", Input: "1", Expect: "1"}},
	}
	_, err := Run(s)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown category "luminance"`)
}

func TestRun_OracleOnly(t *testing.T) {
	s := &Scenario{Name: "pct", Description: "percentage oracle", Oracle: []string{"percentage"}}
	result, err := Run(s)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.Empty(t, result.Checks)
	require.Len(t, result.Oracle, 1)
	assert.Equal(t, 4*3+2*4*12, result.Oracle[0].Functions)
}
