package oracle

import (
	"errors"
	"fmt"
	"math"
	"math/big"

	"go.uber.org/zap"

	"github.com/roach88/unitgen/internal/ir"
	"github.com/roach88/unitgen/internal/numeric"
)

// Pair is an ordered conversion between two endpoints.
type Pair struct {
	Source ir.Endpoint
	Dest   ir.Endpoint
}

// Name is the function name of the conversion.
func (p Pair) Name() string { return ir.FunctionName(p.Source, p.Dest) }

// Group is the test cases of every conversion touching one unit endpoint:
// those reading it and those producing it from a bare numeric kind.
type Group struct {
	Endpoint ir.Endpoint  `json:"endpoint" yaml:"endpoint"`
	Cases    []ir.TestCase `json:"cases" yaml:"cases"`
}

// Oracle derives literal test cases for a category.
type Oracle struct {
	logger *zap.Logger
}

// New creates an oracle. A nil logger discards output.
func New(logger *zap.Logger) *Oracle {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Oracle{logger: logger}
}

// Pairs returns the conversions touching endpoint e of cat, in a fixed
// order: e to every other unit endpoint, e to every numeric kind, then
// every numeric kind to e.
func Pairs(cat *ir.Category, e ir.Endpoint) []Pair {
	var out []Pair
	for _, d := range cat.UnitEndpoints() {
		if d == e {
			continue
		}
		out = append(out, Pair{Source: e, Dest: d})
	}
	numerics := ir.NumericEndpoints()
	for _, n := range numerics {
		out = append(out, Pair{Source: e, Dest: n})
	}
	for _, n := range numerics {
		out = append(out, Pair{Source: n, Dest: e})
	}
	return out
}

// ForCategory returns the test cases of cat grouped by unit endpoint.
func (o *Oracle) ForCategory(cat *ir.Category) ([]Group, error) {
	var groups []Group
	total, skipped := 0, 0
	for _, e := range cat.UnitEndpoints() {
		g := Group{Endpoint: e}
		for _, p := range Pairs(cat, e) {
			tcs, n, err := cases(cat, p.Source, p.Dest)
			if err != nil {
				return nil, fmt.Errorf("category %s: %s: %w", cat.Name, p.Name(), err)
			}
			skipped += n
			g.Cases = append(g.Cases, tcs...)
		}
		total += len(g.Cases)
		groups = append(groups, g)
	}
	o.logger.Debug("derived test cases",
		zap.String("category", cat.Name),
		zap.Int("groups", len(groups)),
		zap.Int("cases", total),
		zap.Int("undefined", skipped))
	return groups, nil
}

// Cases returns the test cases of the conversion from src to dst.
func Cases(cat *ir.Category, src, dst ir.Endpoint) ([]ir.TestCase, error) {
	out, _, err := cases(cat, src, dst)
	return out, err
}

func cases(cat *ir.Category, src, dst ir.Endpoint) ([]ir.TestCase, int, error) {
	name := ir.FunctionName(src, dst)
	var out []ir.TestCase
	skipped := 0
	for _, in := range Inputs(cat, src, dst) {
		v, err := Predict(cat, src, dst, in)
		if errors.Is(err, ErrUndefined) {
			skipped++
			continue
		}
		if err != nil {
			return nil, 0, err
		}
		out = append(out, ir.TestCase{
			Function: name,
			Index:    len(out),
			Input:    numeric.FormatLiteral(in),
			Expected: numeric.FormatLiteral(v),
			In:       in,
			Out:      v,
		})
	}
	return out, skipped, nil
}

// Inputs returns the source values exercised for a conversion, without
// duplicates: the source limits, the destination limits pulled back into
// the source domain with their neighbours, zero, 5, and -5 when the source
// can hold it.
func Inputs(cat *ir.Category, src, dst ir.Endpoint) []numeric.Value {
	var out []numeric.Value
	seen := make(map[string]bool)
	add := func(v numeric.Value) {
		key := numeric.RawLiteral(v)
		if seen[key] {
			return
		}
		seen[key] = true
		out = append(out, v)
	}

	smin, smax := src.Kind.Limits()
	add(smin)
	add(smax)

	dmin, dmax := dst.Kind.Limits()
	for _, limit := range []numeric.Value{dmin, dmax} {
		for _, v := range around(src.Kind, preimage(cat, src, dst, limit.Big())) {
			add(v)
		}
	}

	add(small(src.Kind, 0))
	add(small(src.Kind, 5))
	if src.Kind.Signed() {
		add(small(src.Kind, -5))
	}
	return out
}

// preimage maps a destination value back to the source unit. Gradual
// scales invert exactly; formula categories use the value unchanged.
func preimage(cat *ir.Category, src, dst ir.Endpoint, v *big.Float) *big.Float {
	if !src.IsUnit() || !dst.IsUnit() || src.Unit == dst.Unit || cat.Strategy != ir.StrategyGradual {
		return v
	}
	s, coarseToFine, ok := unitScale(cat, src.Unit, dst.Unit)
	if !ok {
		return v
	}
	scale := new(big.Float).SetInt(s)
	if coarseToFine {
		return new(big.Float).Quo(v, scale)
	}
	return new(big.Float).Mul(v, scale)
}

// around returns v clamped into k together with its neighbours in k.
func around(k numeric.Kind, v *big.Float) []numeric.Value {
	lo, hi := k.Limits()
	if v.Cmp(lo.Big()) <= 0 {
		return []numeric.Value{lo, next(lo, +1)}
	}
	if v.Cmp(hi.Big()) >= 0 {
		return []numeric.Value{next(hi, -1), hi}
	}
	if k.IsFloat() {
		f, _ := v.Float64()
		c := numeric.FloatValue(k, f)
		return []numeric.Value{next(c, -1), c, next(c, +1)}
	}
	x, _ := v.Int(nil)
	c := fromBig(k, x)
	return []numeric.Value{next(c, -1), c, next(c, +1)}
}

// next returns the neighbour of v in direction dir, staying inside v's
// kind.
func next(v numeric.Value, dir int) numeric.Value {
	k := v.Kind()
	if k.IsFloat() {
		target := math.Inf(dir)
		if k == numeric.Float32 {
			return numeric.FloatValue(k, float64(math.Nextafter32(float32(v.Float64()), float32(target))))
		}
		return numeric.FloatValue(k, math.Nextafter(v.Float64(), target))
	}
	x := v.BigInt()
	x.Add(x, big.NewInt(int64(dir)))
	lo, hi := k.Limits()
	if x.Cmp(lo.BigInt()) < 0 || x.Cmp(hi.BigInt()) > 0 {
		return v
	}
	return fromBig(k, x)
}

func fromBig(k numeric.Kind, x *big.Int) numeric.Value {
	if k.Signed() {
		return numeric.IntValue(k, x.Int64())
	}
	return numeric.UintValue(k, x.Uint64())
}

func small(k numeric.Kind, v int64) numeric.Value {
	switch {
	case k.IsFloat():
		return numeric.FloatValue(k, float64(v))
	case k.Signed():
		return numeric.IntValue(k, v)
	default:
		return numeric.UintValue(k, uint64(v))
	}
}
