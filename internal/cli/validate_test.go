package cli

import (
	"bytes"
	"testing"

	"cuelang.org/go/cue/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/unitgen/internal/compiler"
	"github.com/roach88/unitgen/internal/synth"
)

func TestValidateBuiltinCatalog(t *testing.T) {
	out, err := execute(t, NewValidateCommand(&RootOptions{Format: "text"}))
	require.NoError(t, err)
	assert.Contains(t, out, "✓ All categories valid (7)")
}

func TestValidateValidSpecsJSON(t *testing.T) {
	dir := writeSpecs(t, map[string]string{"speed.cue": speedSpec})

	out, err := execute(t, NewValidateCommand(&RootOptions{Format: "json"}), dir)
	require.NoError(t, err)

	var result ValidationResult
	resp := decodeData(t, out, &result)
	assert.Equal(t, "ok", resp.Status)
	assert.True(t, result.Valid)
	assert.Equal(t, []string{"speed"}, result.Categories)
}

func TestValidateNonExistentDirectory(t *testing.T) {
	out, err := execute(t, NewValidateCommand(&RootOptions{Format: "text"}), "/nonexistent/units")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "Error [E005]")
}

func TestValidateEmptyDirectory(t *testing.T) {
	out, err := execute(t, NewValidateCommand(&RootOptions{Format: "text"}), t.TempDir())
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "E003")
}

const invalidSpecs = `package units

category: scale: {
	strategy: "gradual"
	units: [
		{id: "grams", abbreviation: "g"},
		{id: "kilograms", abbreviation: "kg"},
	]
}

category: pressure: {
	strategy: "formula"
	units: [
		{id: "pascal", abbreviation: "i16"},
		{id: "bar", abbreviation: "bar"},
	]
}
`

func TestValidateCollectsAllErrors(t *testing.T) {
	dir := writeSpecs(t, map[string]string{"bad.cue": invalidSpecs, "speed.cue": speedSpec})

	out, err := execute(t, NewValidateCommand(&RootOptions{Format: "text"}), dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	assert.Contains(t, out, "✗ Validation failed")
	assert.Contains(t, out, compiler.ErrInvalidMultiplier+": scale.units[1].multiplier")
	assert.Contains(t, out, compiler.ErrAbbreviationCollision+": pressure.units[0].abbreviation")
	assert.Contains(t, out, compiler.ErrMissingTransform)
}

func TestValidateInvalidSpecJSON(t *testing.T) {
	dir := writeSpecs(t, map[string]string{"bad.cue": invalidSpecs, "speed.cue": speedSpec})

	out, err := execute(t, NewValidateCommand(&RootOptions{Format: "json"}), dir)
	require.Error(t, err)

	var result ValidationResult
	resp := decodeData(t, out, &result)
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.False(t, result.Valid)
	assert.Equal(t, []string{"speed"}, result.Categories)

	categories := make(map[string]bool)
	for _, issue := range result.Errors {
		categories[issue.Category] = true
	}
	assert.Equal(t, map[string]bool{"scale": true, "pressure": true}, categories)
}

func TestValidateVerboseOutput(t *testing.T) {
	dir := writeSpecs(t, map[string]string{"speed.cue": speedSpec})

	buf := &bytes.Buffer{}
	errBuf := &bytes.Buffer{}
	cmd := NewValidateCommand(&RootOptions{Format: "json", Verbose: true})
	cmd.SetOut(buf)
	cmd.SetErr(errBuf)
	cmd.SetArgs([]string{dir})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), `"valid": true`)
	assert.Contains(t, errBuf.String(), "Validating category: speed")
	assert.NotContains(t, buf.String(), "Validating category")
}

func TestToIssues(t *testing.T) {
	confErr := &compiler.ConfigurationError{
		Category: "scale",
		Errors: []compiler.ValidationError{
			{Field: "units[1].multiplier", Code: compiler.ErrInvalidMultiplier, Message: "needs a multiplier"},
			{Field: "same_zero_point", Code: compiler.ErrZeroPoint, Message: "zero point"},
		},
	}
	issues := toIssues(confErr)
	require.Len(t, issues, 2)
	assert.Equal(t, ValidationIssue{Category: "scale", Field: "units[1].multiplier", Code: "E206", Message: "needs a multiplier"}, issues[0])

	invErr := &synth.InvariantError{
		Code:      synth.ErrCodeDuplicateSignature,
		Message:   "two bodies",
		Category:  "scale",
		Signature: "g_t_to_kg_t(grams_t grams)",
	}
	issues = toIssues(invErr)
	require.Len(t, issues, 1)
	assert.Equal(t, ErrCodeSynthesis, issues[0].Code)
	assert.Equal(t, "g_t_to_kg_t(grams_t grams)", issues[0].Field)

	loadErr := &LoadError{Code: ErrCodeUnits, Message: "bad units", Pos: token.NoPos}
	issues = toIssues(loadErr)
	require.Len(t, issues, 1)
	assert.Equal(t, ValidationIssue{Field: "load", Code: ErrCodeUnits, Message: "bad units"}, issues[0])
}
