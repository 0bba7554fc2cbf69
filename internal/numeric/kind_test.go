package numeric

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindLimits(t *testing.T) {
	min, max := Int8.Limits()
	assert.Equal(t, int64(-128), min.Int64())
	assert.Equal(t, int64(127), max.Int64())

	min, max = Int64.Limits()
	assert.Equal(t, int64(math.MinInt64), min.Int64())
	assert.Equal(t, int64(math.MaxInt64), max.Int64())

	min, max = Int.Limits()
	assert.Equal(t, int64(math.MinInt32), min.Int64())
	assert.Equal(t, int64(math.MaxInt32), max.Int64())

	min, max = Uint64.Limits()
	assert.Equal(t, uint64(0), min.Uint64())
	assert.Equal(t, uint64(math.MaxUint64), max.Uint64())

	min, max = Float32.Limits()
	assert.Equal(t, -float64(math.MaxFloat32), min.Float64())
	assert.Equal(t, float64(math.MaxFloat32), max.Float64())
}

func TestKindTokens(t *testing.T) {
	assert.Equal(t, "i16", Int16.Abbreviation())
	assert.Equal(t, "u", Uint.Abbreviation())
	assert.Equal(t, "unsigned int", Uint.CType())
	assert.Equal(t, "double", Float64.CType())
	assert.Equal(t, "INT_MAX", Int.MaxMacro())
	assert.Equal(t, "-FLT_MAX", Float32.MinMacro())

	seen := map[string]bool{}
	for _, k := range AllKinds() {
		assert.False(t, seen[k.Abbreviation()], "duplicate abbreviation %s", k.Abbreviation())
		seen[k.Abbreviation()] = true
	}
	assert.Len(t, seen, 12)
}

func TestParseKind(t *testing.T) {
	for _, s := range []string{"int16", "int16_t", "i16"} {
		k, err := ParseKind(s)
		require.NoError(t, err)
		assert.Equal(t, Int16, k)
	}
	k, err := ParseKind("unsigned int")
	require.NoError(t, err)
	assert.Equal(t, Uint, k)

	_, err = ParseKind("int128")
	require.Error(t, err)
}

func TestOrderingWithinGroup(t *testing.T) {
	smaller, err := SmallerThan(Int8, Int64)
	require.NoError(t, err)
	assert.True(t, smaller)

	larger, err := LargerThan(Uint64, Uint16)
	require.NoError(t, err)
	assert.True(t, larger)

	smaller, err = SmallerThan(Int32, Int)
	require.NoError(t, err)
	assert.False(t, smaller)
	larger, err = LargerThan(Int32, Int)
	require.NoError(t, err)
	assert.False(t, larger)

	smaller, err = SmallerThan(Float32, Float64)
	require.NoError(t, err)
	assert.True(t, smaller)
}

func TestOrderingAcrossGroupsFails(t *testing.T) {
	_, err := SmallerThan(Int8, Uint8)
	require.Error(t, err)
	var oe *OrderError
	require.True(t, errors.As(err, &oe))
	assert.Equal(t, Int8, oe.A)
	assert.Equal(t, Uint8, oe.B)

	_, err = LargerThan(Float64, Int64)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not ordered")
}

func TestSigns(t *testing.T) {
	assert.Equal(t, []Sign{Signed, Unsigned, Float, Double}, AllSigns())
	assert.Equal(t, "t", Signed.Token())
	assert.Equal(t, Uint, Unsigned.DefaultKind())

	s, err := ParseSign("d")
	require.NoError(t, err)
	assert.Equal(t, Double, s)

	assert.Equal(t, Signed, SignOf(Int8))
	assert.Equal(t, Unsigned, SignOf(Uint))
	assert.Equal(t, Float, SignOf(Float32))
	assert.Equal(t, Double, SignOf(Float64))
}

func TestStorage(t *testing.T) {
	st := DefaultStorage()
	require.NoError(t, st.Check())
	assert.Equal(t, Int, st.Kind(Signed))

	st.Set(Signed, Int64)
	require.NoError(t, st.Check())
	assert.Equal(t, Int64, st.Kind(Signed))

	st.Set(Unsigned, Int16)
	err := st.Check()
	require.Error(t, err)
	var oe *OrderError
	assert.True(t, errors.As(err, &oe))
}
