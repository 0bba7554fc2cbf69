package strategy

import (
	"math"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/unitgen/internal/expr"
	"github.com/roach88/unitgen/internal/ir"
	"github.com/roach88/unitgen/internal/numeric"
)

func distance() *ir.Category {
	return &ir.Category{
		Name:     "distance",
		Strategy: ir.StrategyGradual,
		Units: []ir.UnitVariant{
			{ID: "millimetres", Abbreviation: "mm"},
			{ID: "centimetres", Abbreviation: "cm", Multiplier: 10},
			{ID: "metres", Abbreviation: "m", Multiplier: 100},
		},
		SameZeroPoint:    true,
		HighestPrecision: "millimetres",
		Storage:          numeric.DefaultStorage(),
	}
}

func temperature() *ir.Category {
	step := func(op, operand string) ir.FormulaStep { return ir.FormulaStep{Op: op, Operand: operand} }
	return &ir.Category{
		Name:     "temperature",
		Strategy: ir.StrategyFormula,
		Units: []ir.UnitVariant{
			{ID: "celsius", Abbreviation: "C"},
			{ID: "fahrenheit", Abbreviation: "F"},
			{ID: "kelvin", Abbreviation: "K"},
		},
		Transforms: []ir.Transform{
			{From: "celsius", To: "fahrenheit", Steps: []ir.FormulaStep{step(ir.OpMul, "1.8"), step(ir.OpAdd, "32")}},
			{From: "fahrenheit", To: "celsius", Steps: []ir.FormulaStep{step(ir.OpSub, "32"), step(ir.OpMul, "5/9")}},
			{From: "celsius", To: "kelvin", Steps: []ir.FormulaStep{step(ir.OpAdd, "273.15")}},
			{From: "kelvin", To: "celsius", Steps: []ir.FormulaStep{step(ir.OpSub, "273.15")}},
			{From: "kelvin", To: "fahrenheit", Via: "celsius"},
			{From: "fahrenheit", To: "kelvin", Via: "celsius"},
		},
		HighestPrecision: "celsius",
		Storage:          numeric.DefaultStorage(),
	}
}

func endpoint(t *testing.T, cat *ir.Category, unit string, s numeric.Sign) ir.Endpoint {
	t.Helper()
	u, ok := cat.Unit(unit)
	require.True(t, ok, unit)
	return ir.UnitEndpoint(u, s, cat.Storage.Kind(s))
}

func build(t *testing.T, cat *ir.Category, src, dst ir.Endpoint) expr.Expr {
	t.Helper()
	e, err := Build(cat, src, dst, expr.Ref{Name: src.Unit, Type: src.Kind})
	require.NoError(t, err)
	return e
}

func eval(t *testing.T, e expr.Expr, name string, v numeric.Value) numeric.Value {
	t.Helper()
	out, err := expr.Eval(e, expr.Env{name: v})
	require.NoError(t, err)
	return out
}

func TestScale(t *testing.T) {
	cat := distance()
	s, err := Scale(cat, "millimetres", "metres")
	require.NoError(t, err)
	assert.Equal(t, int64(1000), s)

	s, err = Scale(cat, "metres", "centimetres")
	require.NoError(t, err)
	assert.Equal(t, int64(100), s)

	s, err = Scale(cat, "metres", "metres")
	require.NoError(t, err)
	assert.Equal(t, int64(1), s)

	_, err = Scale(cat, "millimetres", "furlongs")
	require.Error(t, err)

	cat.Units[2].Multiplier = math.MaxInt64
	_, err = Scale(cat, "millimetres", "metres")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "overflows")
}

func TestScaleIgnoresRepeatedUnits(t *testing.T) {
	cat := distance()
	cat.Units = append(cat.Units[:2:2], cat.Units[1], cat.Units[2])

	s, err := Scale(cat, "millimetres", "metres")
	require.NoError(t, err)
	assert.Equal(t, int64(1000), s)

	s, err = Scale(cat, "centimetres", "metres")
	require.NoError(t, err)
	assert.Equal(t, int64(100), s)
}

func TestGradualDivideSameSign(t *testing.T) {
	cat := distance()
	mm := endpoint(t, cat, "millimetres", numeric.Signed)
	cm := endpoint(t, cat, "centimetres", numeric.Signed)

	e := build(t, cat, mm, cm)
	assert.Equal(t, "((centimetres_t) (millimetres / 10))", expr.Render(e))
	assert.Equal(t, int64(2), eval(t, e, "millimetres", numeric.IntValue(numeric.Int, 25)).Int64())
	assert.Equal(t, int64(-2), eval(t, e, "millimetres", numeric.IntValue(numeric.Int, -25)).Int64())
}

func TestGradualMultiplyClamps(t *testing.T) {
	cat := distance()
	cm := endpoint(t, cat, "centimetres", numeric.Signed)
	mm := endpoint(t, cat, "millimetres", numeric.Signed)

	e := build(t, cat, cm, mm)
	assert.Equal(t,
		"((millimetres_t) ((centimetres > 214748364) ? INT_MAX : ((centimetres < (-214748364)) ? INT_MIN : ((int) (((int64_t) centimetres) * 10LL)))))",
		expr.Render(e))
	assert.Equal(t, int64(20), eval(t, e, "centimetres", numeric.IntValue(numeric.Int, 2)).Int64())
	assert.Equal(t, int64(math.MaxInt32), eval(t, e, "centimetres", numeric.IntValue(numeric.Int, math.MaxInt32)).Int64())
	assert.Equal(t, int64(math.MinInt32), eval(t, e, "centimetres", numeric.IntValue(numeric.Int, math.MinInt32)).Int64())
}

func TestGradualDivideAcrossSigns(t *testing.T) {
	cat := distance()
	mm := endpoint(t, cat, "millimetres", numeric.Signed)
	mU := endpoint(t, cat, "metres", numeric.Unsigned)

	e := build(t, cat, mm, mU)
	assert.Contains(t, expr.Render(e), "((int64_t) millimetres) / 1000LL")
	assert.Equal(t, uint64(0), eval(t, e, "millimetres", numeric.IntValue(numeric.Int, -5000)).Uint64())
	assert.Equal(t, uint64(2147483), eval(t, e, "millimetres", numeric.IntValue(numeric.Int, math.MaxInt32)).Uint64())
}

func TestGradualFloatRoundsAfterDividing(t *testing.T) {
	cat := distance()
	mmF := endpoint(t, cat, "millimetres", numeric.Float)
	cm := endpoint(t, cat, "centimetres", numeric.Signed)

	e := build(t, cat, mmF, cm)
	assert.Equal(t, int64(3), eval(t, e, "millimetres", numeric.FloatValue(numeric.Float32, 25)).Int64())
	assert.Equal(t, int64(-3), eval(t, e, "millimetres", numeric.FloatValue(numeric.Float32, -25)).Int64())
	assert.Equal(t, int64(math.MaxInt32), eval(t, e, "millimetres", numeric.FloatValue(numeric.Float32, math.MaxFloat32)).Int64())
}

func TestGradualIntegerExactAtBoundaries(t *testing.T) {
	cat := distance()
	cat.Storage.Set(numeric.Signed, numeric.Int16)
	cat.Storage.Set(numeric.Unsigned, numeric.Uint64)

	var eps []ir.Endpoint
	for _, ep := range cat.UnitEndpoints() {
		if ep.Kind.IsInteger() {
			eps = append(eps, ep)
		}
	}
	for _, src := range eps {
		for _, dst := range eps {
			if src.Unit == dst.Unit {
				continue
			}
			e := build(t, cat, src, dst)
			scale, err := Scale(cat, src.Unit, dst.Unit)
			require.NoError(t, err)
			coarseToFine := cat.UnitIndex(src.Unit) > cat.UnitIndex(dst.Unit)

			smin, smax := src.Kind.Limits()
			dmin, dmax := dst.Kind.Limits()
			inputs := []*big.Int{smin.BigInt(), smax.BigInt(), big.NewInt(0), big.NewInt(7)}
			if src.Kind.Signed() {
				inputs = append(inputs, big.NewInt(-7))
			}
			for _, in := range inputs {
				want := new(big.Int)
				if coarseToFine {
					want.Mul(in, big.NewInt(scale))
				} else {
					want.Quo(in, big.NewInt(scale))
				}
				if want.Cmp(dmax.BigInt()) > 0 {
					want.Set(dmax.BigInt())
				}
				if want.Cmp(dmin.BigInt()) < 0 {
					want.Set(dmin.BigInt())
				}

				v := intValue(src.Kind, in)
				got := eval(t, e, src.Unit, v)
				assert.Equal(t, 0, got.BigInt().Cmp(want), "%s -> %s at %s: got %v want %s", src, dst, in, got, want)
			}
		}
	}
}

func TestFormulaTemperature(t *testing.T) {
	cat := temperature()
	cT := endpoint(t, cat, "celsius", numeric.Signed)
	kT := endpoint(t, cat, "kelvin", numeric.Signed)
	cF := endpoint(t, cat, "celsius", numeric.Float)
	fF := endpoint(t, cat, "fahrenheit", numeric.Float)

	e := build(t, cat, cT, kT)
	assert.Equal(t, int64(273), eval(t, e, "celsius", numeric.IntValue(numeric.Int, 0)).Int64())
	assert.Equal(t, int64(-27), eval(t, e, "celsius", numeric.IntValue(numeric.Int, -300)).Int64())

	e = build(t, cat, cF, fF)
	assert.Equal(t, "((fahrenheit_f) ((((double) celsius) * 1.8) + 32.0))", expr.Render(e))
	assert.Equal(t, 77.0, eval(t, e, "celsius", numeric.FloatValue(numeric.Float32, 25)).Float64())

	// kelvin -> fahrenheit composes kelvin -> celsius -> fahrenheit.
	kD := endpoint(t, cat, "kelvin", numeric.Double)
	fD := endpoint(t, cat, "fahrenheit", numeric.Double)
	e = build(t, cat, kD, fD)
	assert.Equal(t, "((fahrenheit_d) (((((double) kelvin) - 273.15) * 1.8) + 32.0))", expr.Render(e))
	assert.InDelta(t, 32.0, eval(t, e, "kelvin", numeric.FloatValue(numeric.Float64, 273.15)).Float64(), 1e-9)

	cD := endpoint(t, cat, "celsius", numeric.Double)
	e = build(t, cat, fD, cD)
	assert.Equal(t, "((celsius_d) ((((double) fahrenheit) - 32.0) * (5.0 / 9.0)))", expr.Render(e))
	fiveNinths := 5.0 / 9.0
	assert.Equal(t, 180*fiveNinths, eval(t, e, "fahrenheit", numeric.FloatValue(numeric.Float64, 212)).Float64())
}

func TestFormulaAngleUsesPi(t *testing.T) {
	cat := &ir.Category{
		Name:     "angle",
		Strategy: ir.StrategyFormula,
		Units: []ir.UnitVariant{
			{ID: "degrees", Abbreviation: "deg"},
			{ID: "radians", Abbreviation: "rad"},
		},
		Transforms: []ir.Transform{
			{From: "degrees", To: "radians", Steps: []ir.FormulaStep{{Op: ir.OpMul, Operand: ir.PiOperand}, {Op: ir.OpDiv, Operand: "180"}}},
			{From: "radians", To: "degrees", Steps: []ir.FormulaStep{{Op: ir.OpMul, Operand: "180"}, {Op: ir.OpDiv, Operand: ir.PiOperand}}},
		},
		Storage: numeric.DefaultStorage(),
	}
	degD := endpoint(t, cat, "degrees", numeric.Double)
	radD := endpoint(t, cat, "radians", numeric.Double)
	e := build(t, cat, degD, radD)
	assert.Equal(t, "((radians_d) ((((double) degrees) * M_PI) / 180.0))", expr.Render(e))
	assert.InDelta(t, math.Pi, eval(t, e, "degrees", numeric.FloatValue(numeric.Float64, 180)).Float64(), 1e-12)
}

func TestFormulaMissingTransform(t *testing.T) {
	cat := temperature()
	cat.Transforms = cat.Transforms[:1]
	_, err := Build(cat, endpoint(t, cat, "kelvin", numeric.Double), endpoint(t, cat, "celsius", numeric.Double),
		expr.Ref{Name: "kelvin", Type: numeric.Float64})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no transform kelvin -> celsius")
}

func TestSameUnitChangesSignOnly(t *testing.T) {
	cat := distance()
	mT := endpoint(t, cat, "metres", numeric.Signed)
	mU := endpoint(t, cat, "metres", numeric.Unsigned)
	e := build(t, cat, mT, mU)
	assert.Equal(t, "((metres_u) ((metres < 0) ? 0 : ((unsigned int) metres)))", expr.Render(e))
}
