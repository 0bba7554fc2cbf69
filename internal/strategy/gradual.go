package strategy

import (
	"fmt"
	"math"
	"math/big"

	"github.com/roach88/unitgen/internal/castgen"
	"github.com/roach88/unitgen/internal/expr"
	"github.com/roach88/unitgen/internal/ir"
	"github.com/roach88/unitgen/internal/numeric"
)

var double = castgen.Of(numeric.Float64)

// Scale returns how many units of the finer of from and to make one of the
// coarser: the product of the multipliers of every distinct unit after the
// finer, up to and including the coarser.
func Scale(cat *ir.Category, from, to string) (int64, error) {
	units := cat.DistinctUnits()
	i, j := cat.UnitIndex(from), cat.UnitIndex(to)
	if i < 0 || j < 0 {
		return 0, fmt.Errorf("category %s: unknown unit in %s -> %s", cat.Name, from, to)
	}
	if i > j {
		i, j = j, i
	}
	scale := int64(1)
	for k := i + 1; k <= j; k++ {
		m := units[k].Multiplier
		if m <= 0 {
			return 0, fmt.Errorf("category %s: unit %s has multiplier %d", cat.Name, units[k].ID, m)
		}
		if scale > math.MaxInt64/m {
			return 0, fmt.Errorf("category %s: scale %s -> %s overflows int64", cat.Name, from, to)
		}
		scale *= m
	}
	return scale, nil
}

// multiply converts a coarser unit to a finer one.
func multiply(src, dst castgen.Operand, x expr.Expr, scale int64) expr.Expr {
	if src.Kind.IsFloat() || dst.Kind.IsFloat() {
		e := expr.Binary{Op: numeric.Mul, L: toDouble(x), R: doubleLit(scale)}
		return castgen.Cast(double, dst, e)
	}

	// Integer to integer: compare the raw value against the largest and
	// smallest inputs whose product fits the destination, then multiply in
	// the 64-bit kind of the destination's signedness.
	wide := numeric.Wide(dst.Kind)
	product := expr.Expr(expr.Binary{
		Op: numeric.Mul,
		L:  expr.NewCast(wide, x),
		R:  expr.NewLit(intValue(wide, big.NewInt(scale))),
	})

	smin, smax := src.Kind.Limits()
	dmin, dmax := dst.Kind.Limits()
	s := big.NewInt(scale)
	hiQ := new(big.Int).Quo(dmax.BigInt(), s)
	loQ := new(big.Int).Quo(dmin.BigInt(), s) // truncation toward zero is ceil for dmin <= 0

	body := expr.Expr(expr.NewCast(dst.Kind, product))
	clamped := false
	if loQ.Cmp(smin.BigInt()) > 0 {
		body = expr.Cond{
			Op:   expr.Less,
			L:    x,
			R:    expr.NewLit(intValue(src.Kind, loQ)),
			Then: expr.NewLit(dmin),
			Else: body,
		}
		clamped = true
	}
	if hiQ.Cmp(smax.BigInt()) < 0 {
		body = expr.Cond{
			Op:   expr.Greater,
			L:    x,
			R:    expr.NewLit(intValue(src.Kind, hiQ)),
			Then: expr.NewLit(dmax),
			Else: body,
		}
		clamped = true
	}
	if !clamped {
		body = product
	}
	return expr.Cast{TypeName: dst.Type, To: dst.Kind, X: body}
}

// divide converts a finer unit to a coarser one. Integer division
// truncates toward zero.
func divide(src, dst castgen.Operand, x expr.Expr, scale int64) expr.Expr {
	if src.Kind.IsFloat() || dst.Kind.IsFloat() {
		e := expr.Binary{Op: numeric.Div, L: toDouble(x), R: doubleLit(scale)}
		return castgen.Cast(double, dst, e)
	}

	s := big.NewInt(scale)
	if src.Kind == dst.Kind {
		if _, max := src.Kind.Limits(); s.Cmp(max.BigInt()) <= 0 {
			q := expr.Binary{Op: numeric.Div, L: x, R: expr.NewLit(intValue(src.Kind, s))}
			return expr.Cast{TypeName: dst.Type, To: dst.Kind, X: q}
		}
	}

	// Divide in the 64-bit kind of the source's signedness, then narrow.
	wide := numeric.Wide(src.Kind)
	q := expr.Binary{Op: numeric.Div, L: expr.NewCast(wide, x), R: expr.NewLit(intValue(wide, s))}
	return castgen.Cast(castgen.Of(wide), dst, q)
}

func toDouble(x expr.Expr) expr.Expr {
	return expr.NewCast(numeric.Float64, x)
}

func doubleLit(scale int64) expr.Lit {
	return expr.NewLit(numeric.FloatValue(numeric.Float64, float64(scale)))
}

// intValue builds an integer value of kind k. v must be representable.
func intValue(k numeric.Kind, v *big.Int) numeric.Value {
	if k.Signed() {
		return numeric.IntValue(k, v.Int64())
	}
	return numeric.UintValue(k, v.Uint64())
}
