package oracle

import (
	"errors"
	"fmt"
	"math"
	"math/big"

	"github.com/roach88/unitgen/internal/ir"
	"github.com/roach88/unitgen/internal/numeric"
)

// ErrUndefined marks an input whose converted value C leaves undefined,
// such as a double too large for float. No test case is produced for it.
var ErrUndefined = errors.New("conversion result is undefined")

// maxDepth bounds via compositions.
const maxDepth = 8

// Predict returns the value the conversion from src to dst produces for in.
//
// Integer paths are computed exactly with big integers. Paths through
// double are computed in float64 in the order the generated code performs
// them, rounding after every operation.
func Predict(cat *ir.Category, src, dst ir.Endpoint, in numeric.Value) (numeric.Value, error) {
	if in.Kind() != src.Kind {
		return numeric.Value{}, fmt.Errorf("input %v is not of source kind %s", in, src.Kind)
	}
	if in.IsNaN() {
		return numeric.Value{}, ErrUndefined
	}
	if !src.IsUnit() || !dst.IsUnit() || src.Unit == dst.Unit {
		return convert(in, dst.Kind)
	}

	switch cat.Strategy {
	case ir.StrategyGradual:
		return gradual(cat, src, dst, in)
	case ir.StrategyFormula:
		y, err := transform(cat, src.Unit, dst.Unit, in.Float64(), 0)
		if err != nil {
			return numeric.Value{}, err
		}
		return fromDouble(y, dst.Kind)
	default:
		return numeric.Value{}, fmt.Errorf("category %s: no conversion between units under strategy %q", cat.Name, cat.Strategy)
	}
}

// unitScale walks the units finest first and multiplies the multipliers
// between from and to. A unit id seen before is the same unit and adds no
// step. coarseToFine reports whether from is the coarser unit.
func unitScale(cat *ir.Category, from, to string) (scale *big.Int, coarseToFine, ok bool) {
	scale = big.NewInt(1)
	seen := make(map[string]bool, len(cat.Units))
	inside := false
	for _, u := range cat.Units {
		if seen[u.ID] {
			continue
		}
		seen[u.ID] = true
		if inside {
			scale.Mul(scale, big.NewInt(u.Multiplier))
		}
		if u.ID == from || u.ID == to {
			if inside || from == to {
				return scale, u.ID == from && from != to, true
			}
			inside = true
		}
	}
	return nil, false, false
}

func gradual(cat *ir.Category, src, dst ir.Endpoint, in numeric.Value) (numeric.Value, error) {
	scale, coarseToFine, ok := unitScale(cat, src.Unit, dst.Unit)
	if !ok {
		return numeric.Value{}, fmt.Errorf("category %s: unknown unit in %s -> %s", cat.Name, src.Unit, dst.Unit)
	}

	if src.Kind.IsFloat() || dst.Kind.IsFloat() {
		s := float64(scale.Int64())
		y := in.Float64()
		if coarseToFine {
			y = float64(y * s)
		} else {
			y = float64(y / s)
		}
		return fromDouble(y, dst.Kind)
	}

	x := in.BigInt()
	if coarseToFine {
		x.Mul(x, scale)
	} else {
		x.Quo(x, scale)
	}
	return saturate(x, dst.Kind), nil
}

// transform applies the declared formula from -> to in float64.
func transform(cat *ir.Category, from, to string, y float64, depth int) (float64, error) {
	if depth > maxDepth {
		return 0, fmt.Errorf("category %s: %s -> %s composes too deeply", cat.Name, from, to)
	}
	t, ok := cat.Transform(from, to)
	if !ok {
		return 0, fmt.Errorf("category %s: no transform %s -> %s", cat.Name, from, to)
	}
	if t.Via != "" {
		mid, err := transform(cat, from, t.Via, y, depth+1)
		if err != nil {
			return 0, err
		}
		return transform(cat, t.Via, to, mid, depth+1)
	}
	for _, step := range t.Steps {
		v, err := step.Value()
		if err != nil {
			return 0, err
		}
		switch step.Op {
		case ir.OpAdd:
			y = float64(y + v)
		case ir.OpSub:
			y = float64(y - v)
		case ir.OpMul:
			y = float64(y * v)
		case ir.OpDiv:
			y = float64(y / v)
		default:
			return 0, fmt.Errorf("category %s: unknown operator %q", cat.Name, step.Op)
		}
	}
	return y, nil
}

// convert predicts a plain numeric conversion of in to k.
func convert(in numeric.Value, k numeric.Kind) (numeric.Value, error) {
	if in.Kind().IsFloat() {
		return fromDouble(in.Float64(), k)
	}
	if k.IsInteger() {
		return saturate(in.BigInt(), k), nil
	}
	f := new(big.Float).SetInt(in.BigInt())
	if k == numeric.Float32 {
		v, _ := f.Float32()
		return numeric.FloatValue(k, float64(v)), nil
	}
	v, _ := f.Float64()
	return numeric.FloatValue(k, v), nil
}

// fromDouble predicts converting a floating value to k. Integer targets
// round half away from zero and saturate.
func fromDouble(y float64, k numeric.Kind) (numeric.Value, error) {
	if math.IsNaN(y) {
		return numeric.Value{}, ErrUndefined
	}
	if k.IsInteger() {
		lo, hi := k.Limits()
		switch {
		case math.IsInf(y, 1):
			return hi, nil
		case math.IsInf(y, -1):
			return lo, nil
		}
		r, _ := new(big.Float).SetFloat64(math.Round(y)).Int(nil)
		return saturate(r, k), nil
	}
	if math.IsInf(y, 0) {
		return numeric.Value{}, ErrUndefined
	}
	if k == numeric.Float32 && math.Abs(y) > math.MaxFloat32 {
		return numeric.Value{}, ErrUndefined
	}
	return numeric.FloatValue(k, y), nil
}

// saturate clamps an exact integer into k's range.
func saturate(x *big.Int, k numeric.Kind) numeric.Value {
	lo, hi := k.Limits()
	switch {
	case x.Cmp(lo.BigInt()) < 0:
		return lo
	case x.Cmp(hi.BigInt()) > 0:
		return hi
	case k.Signed():
		return numeric.IntValue(k, x.Int64())
	default:
		return numeric.UintValue(k, x.Uint64())
	}
}
