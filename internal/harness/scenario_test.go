package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeScenario(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadScenario_ValidFile(t *testing.T) {
	s, err := LoadScenario("testdata/scenarios/examples.yaml")
	require.NoError(t, err)

	assert.Equal(t, "conversion_examples", s.Name)
	assert.Empty(t, s.Specs)
	require.Len(t, s.Checks, 6)
	assert.Equal(t, Check{Category: "distance", Function: "mm_t_to_cm_t", Input: "25", Expect: "2"}, s.Checks[0])
	assert.Equal(t, "FLT_MAX", s.Checks[5].Input)
}

func TestLoadScenario_ResolvesSpecsRelativeToFile(t *testing.T) {
	s, err := LoadScenario("testdata/scenarios/speed.yaml")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("testdata", "defs"), s.Specs)
	assert.Equal(t, []string{"speed"}, s.Oracle)
}

func TestLoadScenario_UnknownField(t *testing.T) {
	path := writeScenario(t, t.TempDir(), `
name: typo
description: unknown field
checks:
  - category: distance
    function: mm_t_to_cm_t
    input: "1"
    expected: "0"
`)
	_, err := LoadScenario(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse YAML")
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario file")
}

func TestValidateScenario(t *testing.T) {
	check := Check{Category: "distance", Function: "mm_t_to_cm_t", Input: "1", Expect: "0"}
	tests := []struct {
		name     string
		scenario Scenario
		wantErr  string
	}{
		{"missing name", Scenario{Description: "d", Checks: []Check{check}}, "name is required"},
		{"missing description", Scenario{Name: "n", Checks: []Check{check}}, "description is required"},
		{"nothing to run", Scenario{Name: "n", Description: "d"}, "at least one check"},
		{"missing specs dir", Scenario{Name: "n", Description: "d", Specs: "/nonexistent/defs", Checks: []Check{check}}, "specs directory not found"},
		{"check without function", Scenario{Name: "n", Description: "d", Checks: []Check{{Category: "distance", Input: "1", Expect: "0"}}}, "checks[0]: function is required"},
		{"check without expect", Scenario{Name: "n", Description: "d", Checks: []Check{{Category: "distance", Function: "f", Input: "1"}}}, "checks[0]: expect is required"},
		{"empty oracle name", Scenario{Name: "n", Description: "d", Oracle: []string{""}}, "oracle[0]"},
		{"valid", Scenario{Name: "n", Description: "d", Checks: []Check{check}}, ""},
		{"oracle only", Scenario{Name: "n", Description: "d", Oracle: []string{"angle"}}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateScenario(&tt.scenario)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
