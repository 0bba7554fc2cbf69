// Package castgen synthesizes numerically safe conversions between two
// (sign, kind) operands.
//
// The rules are evaluated in order and the first match wins:
//
//  1. Identical kind and sign: plain cast.
//  2. Integer to integer of the same signedness: a wider destination is a
//     plain cast; a narrower or equal one clamps to the destination limits,
//     with the limits rendered in the source domain.
//  3. Signed to unsigned: negatives clamp to zero, values above the
//     destination maximum clamp to it.
//  4. Unsigned to signed: values above the destination maximum clamp to it.
//  5. Integer to float is a plain cast. Float to integer rounds half away
//     from zero, then clamps against the representable bounds just inside
//     the destination limits.
//  6. Float to float: plain cast.
//
// Every branch of a clamp is a value the destination can hold, so the
// emitted code never relies on out-of-range conversions.
package castgen

import (
	"fmt"

	"github.com/roach88/unitgen/internal/expr"
	"github.com/roach88/unitgen/internal/ir"
	"github.com/roach88/unitgen/internal/numeric"
)

// Operand is one side of a conversion. Type is the C spelling used for the
// final cast and may be a unit typedef of Kind.
type Operand struct {
	Sign numeric.Sign
	Kind numeric.Kind
	Type string
}

// Of returns the operand of a bare numeric kind.
func Of(k numeric.Kind) Operand {
	return Operand{Sign: numeric.SignOf(k), Kind: k, Type: k.CType()}
}

// FromEndpoint returns the operand for a conversion endpoint.
func FromEndpoint(e ir.Endpoint) Operand {
	return Operand{Sign: e.Sign, Kind: e.Kind, Type: e.TypeName()}
}

func (o Operand) String() string {
	return fmt.Sprintf("%s(%s)", o.Type, o.Kind)
}

// Rule identifies which safety rule governs a conversion.
type Rule int

const (
	RuleIdentity Rule = iota
	RuleIntWiden
	RuleIntNarrow
	RuleSignedToUnsigned
	RuleUnsignedToSigned
	RuleIntToFloat
	RuleFloatToInt
	RuleFloatToFloat
)

var ruleNames = [...]string{
	RuleIdentity:         "identity",
	RuleIntWiden:         "int-widen",
	RuleIntNarrow:        "int-narrow",
	RuleSignedToUnsigned: "signed-to-unsigned",
	RuleUnsignedToSigned: "unsigned-to-signed",
	RuleIntToFloat:       "int-to-float",
	RuleFloatToInt:       "float-to-int",
	RuleFloatToFloat:     "float-to-float",
}

func (r Rule) String() string {
	if r < 0 || int(r) >= len(ruleNames) {
		return fmt.Sprintf("rule(%d)", int(r))
	}
	return ruleNames[r]
}

// Clamps reports whether the rule may emit range checks.
func (r Rule) Clamps() bool {
	switch r {
	case RuleIntNarrow, RuleSignedToUnsigned, RuleUnsignedToSigned, RuleFloatToInt:
		return true
	}
	return false
}

// Classify returns the rule for converting src to dst. It is total over
// every pair of valid operands.
func Classify(src, dst Operand) Rule {
	s, d := src.Kind, dst.Kind
	switch {
	case s == d && src.Sign == dst.Sign:
		return RuleIdentity
	case s.IsFloat() && d.IsFloat():
		return RuleFloatToFloat
	case s.IsFloat():
		return RuleFloatToInt
	case d.IsFloat():
		return RuleIntToFloat
	case s.Group() == d.Group():
		// Same group, so the comparison cannot fail.
		if wider, _ := numeric.LargerThan(d, s); wider {
			return RuleIntWiden
		}
		return RuleIntNarrow
	case s.Signed():
		return RuleSignedToUnsigned
	default:
		return RuleUnsignedToSigned
	}
}

// Cast builds the expression converting x, an expression of src's kind, to
// dst.
func Cast(src, dst Operand, x expr.Expr) expr.Expr {
	final := func(e expr.Expr) expr.Expr {
		return expr.Cast{TypeName: dst.Type, To: dst.Kind, X: e}
	}

	switch Classify(src, dst) {
	case RuleIntNarrow:
		dmin, dmax := dst.Kind.Limits()
		body := expr.Expr(expr.NewCast(dst.Kind, x))
		if dst.Kind.Signed() {
			body = lowerClamp(x, inSource(src, dmin), dmin, body)
		}
		return final(upperClamp(x, inSource(src, dmax), dmax, body))

	case RuleSignedToUnsigned:
		_, dmax := dst.Kind.Limits()
		body := expr.Expr(expr.NewCast(dst.Kind, x))
		if exceeds(src.Kind, dst.Kind) {
			body = upperClamp(x, inSource(src, dmax), dmax, body)
		}
		zero := expr.NewLit(numeric.IntValue(src.Kind, 0))
		return final(lowerClamp(x, zero, numeric.UintValue(dst.Kind, 0), body))

	case RuleUnsignedToSigned:
		if !exceeds(src.Kind, dst.Kind) {
			return final(x)
		}
		_, dmax := dst.Kind.Limits()
		return final(upperClamp(x, inSource(src, dmax), dmax, expr.NewCast(dst.Kind, x)))

	case RuleFloatToInt:
		return final(floatToInt(src, dst, x))

	default:
		return final(x)
	}
}

// floatToInt rounds x and clamps it. The bounds are the representable
// values of the source kind adjacent to the destination limits on the
// inside, so a rounded value passing both checks converts without
// overflow.
func floatToInt(src, dst Operand, x expr.Expr) expr.Expr {
	r := expr.Call{Func: expr.RoundFunc(src.Kind), Arg: x}
	dmin, dmax := dst.Kind.Limits()

	body := expr.Expr(expr.NewCast(dst.Kind, r))
	if dst.Kind.Signed() {
		lo := numeric.FloatValue(src.Kind, numeric.NextTowardZero(src.Kind, dmin.Convert(src.Kind).Float64()))
		body = lowerClamp(r, expr.NewLit(lo), dmin, body)
	} else {
		body = lowerClamp(r, expr.NewLit(numeric.FloatValue(src.Kind, 0)), dmin, body)
	}
	hi := numeric.FloatValue(src.Kind, numeric.NextTowardZero(src.Kind, dmax.Convert(src.Kind).Float64()))
	return upperClamp(r, expr.NewLit(hi), dmax, body)
}

// inSource renders a destination limit as a literal of the source kind.
// Callers guarantee the limit is representable there.
func inSource(src Operand, limit numeric.Value) expr.Expr {
	return expr.NewCast(src.Kind, expr.NewLit(limit))
}

// exceeds reports whether the maximum of a is greater than the maximum of b.
func exceeds(a, b numeric.Kind) bool {
	_, amax := a.Limits()
	_, bmax := b.Limits()
	return amax.BigInt().Cmp(bmax.BigInt()) > 0
}

func upperClamp(x, bound expr.Expr, limit numeric.Value, otherwise expr.Expr) expr.Expr {
	return expr.Cond{Op: expr.Greater, L: x, R: bound, Then: expr.NewLit(limit), Else: otherwise}
}

func lowerClamp(x, bound expr.Expr, limit numeric.Value, otherwise expr.Expr) expr.Expr {
	return expr.Cond{Op: expr.Less, L: x, R: bound, Then: expr.NewLit(limit), Else: otherwise}
}
