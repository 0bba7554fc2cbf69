package catalog

import (
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/unitgen/internal/compiler"
	"github.com/roach88/unitgen/internal/ir"
	"github.com/roach88/unitgen/internal/numeric"
)

func TestLoad(t *testing.T) {
	cats, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"angle", "current", "distance", "intensity", "percentage", "temperature", "time"}, Names())
	for _, c := range cats {
		assert.Empty(t, compiler.Validate(c), c.Name)
	}
}

func TestLookup(t *testing.T) {
	distance, err := Lookup("distance")
	require.NoError(t, err)
	assert.Equal(t, ir.StrategyGradual, distance.Strategy)
	require.Len(t, distance.Units, 3)
	assert.Equal(t, int64(10), distance.Units[1].Multiplier)

	temp, err := Lookup("temperature")
	require.NoError(t, err)
	assert.False(t, temp.SameZeroPoint)
	tr, ok := temp.Transform("kelvin", "fahrenheit")
	require.True(t, ok)
	assert.Equal(t, "celsius", tr.Via)

	tm, err := Lookup("time")
	require.NoError(t, err)
	assert.Equal(t, numeric.Int64, tm.Storage.Kind(numeric.Signed))

	_, err = Lookup("luminance")
	require.Error(t, err)
}

func TestCompileRejectsInvalidDefinition(t *testing.T) {
	fsys := fstest.MapFS{
		"defs/bad.cue": {Data: []byte(`
category: bad: {
	strategy: "formula"
	units: [{id: "a", abbreviation: "a"}, {id: "b", abbreviation: "b"}]
}
`)},
	}
	_, err := compile(fsys, "defs/*.cue")
	require.Error(t, err)
	assert.True(t, compiler.IsConfigurationError(err))
}

func TestValue(t *testing.T) {
	v, err := Value()
	require.NoError(t, err)
	cats, errs := compiler.CompileCategories(v)
	assert.Empty(t, errs)
	assert.Len(t, cats, 7)
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	def := `
category: speed: {
	strategy: "gradual"
	units: [
		{id: "millimetres_per_second", abbreviation: "mmps"},
		{id: "metres_per_second", abbreviation: "mps", multiplier: 1000},
	]
}
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "speed.cue"), []byte(def), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("ignored"), 0o644))

	cats, err := LoadDir(dir)
	require.NoError(t, err)
	require.Len(t, cats, 1)
	assert.Equal(t, "speed", cats[0].Name)
	assert.Equal(t, int64(1000), cats[0].Units[1].Multiplier)

	_, err = LoadDir(t.TempDir())
	require.Error(t, err)
}
