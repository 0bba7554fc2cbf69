package numeric

import (
	"fmt"
	"math"
	"math/big"
)

// Op is a binary arithmetic operator.
type Op byte

const (
	Add Op = '+'
	Sub Op = '-'
	Mul Op = '*'
	Div Op = '/'
)

func (op Op) String() string { return string(op) }

// promote applies the C integer promotions: anything narrower than int is
// computed as int.
func promote(k Kind) Kind {
	if k.IsInteger() && k.Width() < NativeWidth {
		return Int
	}
	return k
}

// Common returns the kind both operands of a binary operation are converted
// to under the usual arithmetic conversions.
func Common(a, b Kind) Kind {
	if a == Float64 || b == Float64 {
		return Float64
	}
	if a == Float32 || b == Float32 {
		return Float32
	}
	a, b = promote(a), promote(b)
	if a.Group() == b.Group() {
		if b.Width() > a.Width() {
			return b
		}
		return a
	}
	s, u := a, b
	if s.Group() == GroupUnsigned {
		s, u = b, a
	}
	if u.Width() >= s.Width() {
		return u
	}
	return s
}

// Apply evaluates a op b after the usual arithmetic conversions. Signed
// overflow and division by zero are reported as errors.
func Apply(op Op, a, b Value) (Value, error) {
	k := Common(a.kind, b.kind)
	x, y := a.Convert(k), b.Convert(k)
	switch k.Group() {
	case GroupFloat:
		return applyFloat(op, k, x.f, y.f)
	case GroupUnsigned:
		return applyUnsigned(op, k, x.u, y.u)
	default:
		return applySigned(op, k, x.i, y.i)
	}
}

func applyFloat(op Op, k Kind, x, y float64) (Value, error) {
	if k == Float32 {
		fx, fy := float32(x), float32(y)
		var r float32
		switch op {
		case Add:
			r = float32(fx + fy)
		case Sub:
			r = float32(fx - fy)
		case Mul:
			r = float32(fx * fy)
		case Div:
			r = float32(fx / fy)
		default:
			return Value{}, fmt.Errorf("unknown operator %q", op)
		}
		return Value{kind: k, f: float64(r)}, nil
	}
	var r float64
	switch op {
	case Add:
		r = float64(x + y)
	case Sub:
		r = float64(x - y)
	case Mul:
		r = float64(x * y)
	case Div:
		r = float64(x / y)
	default:
		return Value{}, fmt.Errorf("unknown operator %q", op)
	}
	return Value{kind: k, f: r}, nil
}

func applyUnsigned(op Op, k Kind, x, y uint64) (Value, error) {
	var r uint64
	switch op {
	case Add:
		r = x + y
	case Sub:
		r = x - y
	case Mul:
		r = x * y
	case Div:
		if y == 0 {
			return Value{}, fmt.Errorf("division by zero")
		}
		r = x / y
	default:
		return Value{}, fmt.Errorf("unknown operator %q", op)
	}
	return Value{kind: k, u: r & mask(k.Width())}, nil
}

func applySigned(op Op, k Kind, x, y int64) (Value, error) {
	bx, by := big.NewInt(x), big.NewInt(y)
	r := new(big.Int)
	switch op {
	case Add:
		r.Add(bx, by)
	case Sub:
		r.Sub(bx, by)
	case Mul:
		r.Mul(bx, by)
	case Div:
		if y == 0 {
			return Value{}, fmt.Errorf("division by zero")
		}
		r.Quo(bx, by)
	default:
		return Value{}, fmt.Errorf("unknown operator %q", op)
	}
	min, max := k.Limits()
	if r.Cmp(min.BigInt()) < 0 || r.Cmp(max.BigInt()) > 0 {
		return Value{}, fmt.Errorf("signed overflow: %d %s %d in %s", x, op, y, k)
	}
	return Value{kind: k, i: r.Int64()}, nil
}

// Compare returns -1, 0 or +1 comparing a and b after the usual arithmetic
// conversions. A NaN operand compares unordered and reports ok=false.
func Compare(a, b Value) (cmp int, ok bool) {
	k := Common(a.kind, b.kind)
	x, y := a.Convert(k), b.Convert(k)
	switch k.Group() {
	case GroupFloat:
		if math.IsNaN(x.f) || math.IsNaN(y.f) {
			return 0, false
		}
		switch {
		case x.f < y.f:
			return -1, true
		case x.f > y.f:
			return 1, true
		}
		return 0, true
	case GroupUnsigned:
		switch {
		case x.u < y.u:
			return -1, true
		case x.u > y.u:
			return 1, true
		}
		return 0, true
	default:
		switch {
		case x.i < y.i:
			return -1, true
		case x.i > y.i:
			return 1, true
		}
		return 0, true
	}
}

// Round rounds half away from zero, keeping the value's kind.
func Round(v Value) Value {
	if !v.kind.IsFloat() {
		return v
	}
	return FloatValue(v.kind, math.Round(v.f))
}
