package numeric

import (
	"fmt"
	"math"
	"math/big"
)

// Value is a scalar of a given kind, following C conversion and arithmetic
// rules closely enough to evaluate synthesised conversion bodies.
type Value struct {
	kind Kind
	i    int64
	u    uint64
	f    float64
}

// IntValue returns a signed value of kind k, wrapped to k's width.
func IntValue(k Kind, v int64) Value {
	return Value{kind: Int64, i: v}.Convert(k)
}

// UintValue returns an unsigned value of kind k, wrapped to k's width.
func UintValue(k Kind, v uint64) Value {
	return Value{kind: Uint64, u: v}.Convert(k)
}

// FloatValue returns a floating point value of kind k.
func FloatValue(k Kind, v float64) Value {
	return Value{kind: Float64, f: v}.Convert(k)
}

// Kind returns the value's kind.
func (v Value) Kind() Kind { return v.kind }

// Int64 returns the signed payload. Only meaningful for signed kinds.
func (v Value) Int64() int64 { return v.i }

// Uint64 returns the unsigned payload. Only meaningful for unsigned kinds.
func (v Value) Uint64() uint64 { return v.u }

// Float64 returns the value as a float64. Exact for float kinds.
func (v Value) Float64() float64 {
	switch v.kind.Group() {
	case GroupSigned:
		return float64(v.i)
	case GroupUnsigned:
		return float64(v.u)
	default:
		return v.f
	}
}

// Big returns the exact value of an integer kind, or of a finite float.
func (v Value) Big() *big.Float {
	switch v.kind.Group() {
	case GroupSigned:
		return new(big.Float).SetInt64(v.i)
	case GroupUnsigned:
		return new(big.Float).SetUint64(v.u)
	default:
		return new(big.Float).SetFloat64(v.f)
	}
}

// BigInt returns the exact value of an integer kind.
func (v Value) BigInt() *big.Int {
	if v.kind.Group() == GroupUnsigned {
		return new(big.Int).SetUint64(v.u)
	}
	return big.NewInt(v.i)
}

// IsNaN reports whether v is a floating point NaN.
func (v Value) IsNaN() bool {
	return v.kind.IsFloat() && math.IsNaN(v.f)
}

// Equal reports whether v and o have the same kind and value.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind.Group() {
	case GroupSigned:
		return v.i == o.i
	case GroupUnsigned:
		return v.u == o.u
	default:
		return v.f == o.f || (math.IsNaN(v.f) && math.IsNaN(o.f))
	}
}

func (v Value) String() string {
	return fmt.Sprintf("%s(%s)", v.kind, FormatLiteral(v))
}

// Convert applies an implicit C conversion to k. Integer targets wrap to
// their width; float to integer conversion truncates and is only meaningful
// when the value is in range (see Cast).
func (v Value) Convert(k Kind) Value {
	out := Value{kind: k}
	switch k.Group() {
	case GroupSigned:
		var raw int64
		switch v.kind.Group() {
		case GroupSigned:
			raw = v.i
		case GroupUnsigned:
			raw = int64(v.u)
		default:
			raw = int64(v.f)
		}
		out.i = wrapSigned(raw, k.Width())
	case GroupUnsigned:
		var raw uint64
		switch v.kind.Group() {
		case GroupSigned:
			raw = uint64(v.i)
		case GroupUnsigned:
			raw = v.u
		default:
			raw = uint64(v.f)
		}
		out.u = raw & mask(k.Width())
	default:
		out.f = toFloat(v, k)
	}
	return out
}

// Cast applies an explicit conversion to k and reports an error when the
// value cannot be represented in k, which in C is undefined or
// implementation-defined behaviour.
func (v Value) Cast(k Kind) (Value, error) {
	if k.IsInteger() {
		if v.kind.IsFloat() {
			if math.IsNaN(v.f) || math.IsInf(v.f, 0) {
				return Value{}, fmt.Errorf("cast of %v to %s is undefined", v, k)
			}
			t := math.Trunc(v.f)
			var lo, hi float64 // hi is exclusive
			if k.Group() == GroupSigned {
				lo = -math.Ldexp(1, k.Width()-1)
				hi = math.Ldexp(1, k.Width()-1)
			} else {
				lo = 0
				hi = math.Ldexp(1, k.Width())
			}
			if t < lo || t >= hi {
				return Value{}, fmt.Errorf("cast of %v to %s is out of range", v, k)
			}
			if k.Group() == GroupSigned {
				return Value{kind: k, i: int64(t)}, nil
			}
			return Value{kind: k, u: uint64(t)}, nil
		}
		min, max := k.Limits()
		b := v.BigInt()
		if b.Cmp(min.BigInt()) < 0 || b.Cmp(max.BigInt()) > 0 {
			return Value{}, fmt.Errorf("cast of %v to %s is out of range", v, k)
		}
		return v.Convert(k), nil
	}
	out := v.Convert(k)
	if v.kind.IsFloat() && !math.IsInf(v.f, 0) && math.IsInf(out.f, 0) {
		return Value{}, fmt.Errorf("cast of %v to %s overflows", v, k)
	}
	return out, nil
}

func toFloat(v Value, k Kind) float64 {
	if k == Float32 {
		switch v.kind.Group() {
		case GroupSigned:
			return float64(float32(v.i))
		case GroupUnsigned:
			return float64(float32(v.u))
		default:
			return float64(float32(v.f))
		}
	}
	switch v.kind.Group() {
	case GroupSigned:
		return float64(v.i)
	case GroupUnsigned:
		return float64(v.u)
	default:
		return v.f
	}
}

func wrapSigned(v int64, width int) int64 {
	if width >= 64 {
		return v
	}
	shift := uint(64 - width)
	return v << shift >> shift
}

func mask(width int) uint64 {
	if width >= 64 {
		return math.MaxUint64
	}
	return uint64(1)<<uint(width) - 1
}

func maxFloat(k Kind) float64 {
	if k == Float32 {
		return math.MaxFloat32
	}
	return math.MaxFloat64
}

// NextTowardZero returns the representable value of kind k adjacent to v in
// the direction of zero. v must already be representable in k.
func NextTowardZero(k Kind, v float64) float64 {
	if v == 0 {
		return 0
	}
	if k == Float32 {
		return float64(math.Nextafter32(float32(v), 0))
	}
	return math.Nextafter(v, 0)
}
