package numeric

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// FormatLiteral renders v as a C literal of its kind. Values equal to the
// kind's limits are rendered as the limit macros.
func FormatLiteral(v Value) string {
	k := v.kind
	min, max := k.Limits()
	switch {
	case v.Equal(max):
		return k.MaxMacro()
	case v.Equal(min):
		return k.MinMacro()
	}
	return RawLiteral(v)
}

// RawLiteral renders v as a C literal without substituting limit macros.
func RawLiteral(v Value) string {
	k := v.kind
	switch k.Group() {
	case GroupSigned:
		s := strconv.FormatInt(v.i, 10)
		if k.Width() == 64 {
			s += "LL"
		}
		return s
	case GroupUnsigned:
		s := strconv.FormatUint(v.u, 10)
		if k.Width() == 64 {
			return s + "ULL"
		}
		return s + "U"
	}
	switch {
	case math.IsNaN(v.f):
		return "NAN"
	case math.IsInf(v.f, 1):
		return "INFINITY"
	case math.IsInf(v.f, -1):
		return "-INFINITY"
	}
	bits := 64
	if k == Float32 {
		bits = 32
	}
	s := strconv.FormatFloat(v.f, 'g', -1, bits)
	if !strings.ContainsAny(s, ".e") {
		s += ".0"
	}
	if k == Float32 {
		s += "f"
	}
	return s
}

// ParseLiteral parses a C literal or limit macro as a value of kind k. The
// value must be representable in k.
func ParseLiteral(k Kind, s string) (Value, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Value{}, fmt.Errorf("empty literal")
	}
	if v, ok := macroValue(s); ok {
		out, err := v.Cast(k)
		if err != nil {
			return Value{}, fmt.Errorf("literal %q: %w", s, err)
		}
		return out, nil
	}
	if k.IsFloat() {
		switch s {
		case "INFINITY":
			return FloatValue(k, math.Inf(1)), nil
		case "-INFINITY":
			return FloatValue(k, math.Inf(-1)), nil
		case "NAN":
			return FloatValue(k, math.NaN()), nil
		}
	}
	body := strings.TrimRight(s, "uUlLfF")
	if body == "" {
		return Value{}, fmt.Errorf("malformed literal %q", s)
	}
	switch k.Group() {
	case GroupSigned:
		n, err := strconv.ParseInt(body, 10, 64)
		if err != nil {
			return Value{}, fmt.Errorf("literal %q is not a signed integer: %w", s, err)
		}
		return IntValue(Int64, n).Cast(k)
	case GroupUnsigned:
		n, err := strconv.ParseUint(body, 10, 64)
		if err != nil {
			return Value{}, fmt.Errorf("literal %q is not an unsigned integer: %w", s, err)
		}
		return UintValue(Uint64, n).Cast(k)
	default:
		bits := 64
		if k == Float32 {
			bits = 32
		}
		f, err := strconv.ParseFloat(body, bits)
		if err != nil {
			return Value{}, fmt.Errorf("literal %q is not a floating point number: %w", s, err)
		}
		return FloatValue(k, f), nil
	}
}

func macroValue(s string) (Value, bool) {
	for _, k := range AllKinds() {
		min, max := k.Limits()
		if s == k.MaxMacro() {
			return max, true
		}
		if s == k.MinMacro() && s != "0" {
			return min, true
		}
	}
	return Value{}, false
}
