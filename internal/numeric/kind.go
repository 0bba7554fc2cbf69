package numeric

import (
	"fmt"
	"strings"
)

// Kind is a primitive numeric representation of the target language.
type Kind int

const (
	Int8 Kind = iota
	Int16
	Int32
	Int64
	Int
	Uint8
	Uint16
	Uint32
	Uint64
	Uint
	Float32
	Float64
)

// NativeWidth is the bit width assumed for the native int and unsigned int
// kinds when reasoning about limits.
const NativeWidth = 32

// Group partitions kinds into the sets within which ordering is defined.
type Group int

const (
	GroupSigned Group = iota
	GroupUnsigned
	GroupFloat
)

func (g Group) String() string {
	switch g {
	case GroupSigned:
		return "signed"
	case GroupUnsigned:
		return "unsigned"
	case GroupFloat:
		return "float"
	default:
		return fmt.Sprintf("group(%d)", int(g))
	}
}

type kindInfo struct {
	name     string
	ctype    string
	abbrev   string
	width    int
	group    Group
	minMacro string
	maxMacro string
}

var kinds = [...]kindInfo{
	Int8:    {"int8", "int8_t", "i8", 8, GroupSigned, "INT8_MIN", "INT8_MAX"},
	Int16:   {"int16", "int16_t", "i16", 16, GroupSigned, "INT16_MIN", "INT16_MAX"},
	Int32:   {"int32", "int32_t", "i32", 32, GroupSigned, "INT32_MIN", "INT32_MAX"},
	Int64:   {"int64", "int64_t", "i64", 64, GroupSigned, "INT64_MIN", "INT64_MAX"},
	Int:     {"int", "int", "i", NativeWidth, GroupSigned, "INT_MIN", "INT_MAX"},
	Uint8:   {"uint8", "uint8_t", "u8", 8, GroupUnsigned, "0", "UINT8_MAX"},
	Uint16:  {"uint16", "uint16_t", "u16", 16, GroupUnsigned, "0", "UINT16_MAX"},
	Uint32:  {"uint32", "uint32_t", "u32", 32, GroupUnsigned, "0", "UINT32_MAX"},
	Uint64:  {"uint64", "uint64_t", "u64", 64, GroupUnsigned, "0", "UINT64_MAX"},
	Uint:    {"uint", "unsigned int", "u", NativeWidth, GroupUnsigned, "0", "UINT_MAX"},
	Float32: {"float32", "float", "f", 32, GroupFloat, "-FLT_MAX", "FLT_MAX"},
	Float64: {"float64", "double", "d", 64, GroupFloat, "-DBL_MAX", "DBL_MAX"},
}

// AllKinds returns every kind in declaration order.
func AllKinds() []Kind {
	out := make([]Kind, 0, len(kinds))
	for k := range kinds {
		out = append(out, Kind(k))
	}
	return out
}

// Valid reports whether k is one of the declared kinds.
func (k Kind) Valid() bool {
	return k >= Int8 && k <= Float64
}

func (k Kind) info() kindInfo {
	if !k.Valid() {
		panic(fmt.Sprintf("numeric: invalid kind %d", int(k)))
	}
	return kinds[k]
}

// String returns the configuration name of the kind (e.g. "int16").
func (k Kind) String() string {
	if !k.Valid() {
		return fmt.Sprintf("kind(%d)", int(k))
	}
	return kinds[k].name
}

// CType returns the C spelling of the kind.
func (k Kind) CType() string { return k.info().ctype }

// Abbreviation returns the short token used in function names.
func (k Kind) Abbreviation() string { return k.info().abbrev }

// Width returns the bit width of the kind.
func (k Kind) Width() int { return k.info().width }

// Group returns the ordering group of the kind.
func (k Kind) Group() Group { return k.info().group }

// Signed reports whether the kind can hold negative values.
func (k Kind) Signed() bool { return k.Group() != GroupUnsigned }

// IsInteger reports whether the kind is a signed or unsigned integer.
func (k Kind) IsInteger() bool { return k.Group() != GroupFloat }

// IsFloat reports whether the kind is a floating point kind.
func (k Kind) IsFloat() bool { return k.Group() == GroupFloat }

// MinMacro returns the literal naming the kind's minimum.
func (k Kind) MinMacro() string { return k.info().minMacro }

// MaxMacro returns the literal naming the kind's maximum.
func (k Kind) MaxMacro() string { return k.info().maxMacro }

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("invalid numeric kind %d", int(k))
	}
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// ParseKind resolves a configuration name, C spelling or abbreviation.
func ParseKind(s string) (Kind, error) {
	s = strings.TrimSpace(s)
	for i, info := range kinds {
		if s == info.name || s == info.ctype || s == info.abbrev {
			return Kind(i), nil
		}
	}
	return 0, fmt.Errorf("unknown numeric kind %q", s)
}

// Limits returns the inclusive minimum and maximum of the kind.
func (k Kind) Limits() (min, max Value) {
	switch k.Group() {
	case GroupSigned:
		hi := int64(uint64(1)<<(k.Width()-1) - 1)
		return IntValue(k, -hi-1), IntValue(k, hi)
	case GroupUnsigned:
		return UintValue(k, 0), UintValue(k, mask(k.Width()))
	default:
		m := maxFloat(k)
		return FloatValue(k, -m), FloatValue(k, m)
	}
}

// OrderError reports an ordering query between kinds of different groups.
type OrderError struct {
	A, B Kind
}

func (e *OrderError) Error() string {
	return fmt.Sprintf("kinds %s (%s) and %s (%s) are not ordered: ordering is only defined within a group",
		e.A, e.A.Group(), e.B, e.B.Group())
}

// SmallerThan reports whether a is strictly narrower than b.
// The order is only defined within a group.
func SmallerThan(a, b Kind) (bool, error) {
	if a.Group() != b.Group() {
		return false, &OrderError{A: a, B: b}
	}
	return a.Width() < b.Width(), nil
}

// LargerThan reports whether a is strictly wider than b.
// The order is only defined within a group.
func LargerThan(a, b Kind) (bool, error) {
	return SmallerThan(b, a)
}

// Wide returns the 64-bit kind of k's group, used as an intermediate domain
// that holds every value of the group.
func Wide(k Kind) Kind {
	switch k.Group() {
	case GroupSigned:
		return Int64
	case GroupUnsigned:
		return Uint64
	default:
		return Float64
	}
}
