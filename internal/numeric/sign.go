package numeric

import (
	"fmt"
	"strings"
)

// Sign is the storage representation of a unit value.
type Sign int

const (
	Signed Sign = iota
	Unsigned
	Float
	Double
)

var signInfo = [...]struct {
	name  string
	token string
	kind  Kind
	group Group
}{
	Signed:   {"signed", "t", Int, GroupSigned},
	Unsigned: {"unsigned", "u", Uint, GroupUnsigned},
	Float:    {"float", "f", Float32, GroupFloat},
	Double:   {"double", "d", Float64, GroupFloat},
}

// AllSigns returns every sign in declaration order.
func AllSigns() []Sign {
	return []Sign{Signed, Unsigned, Float, Double}
}

// Valid reports whether s is one of the declared signs.
func (s Sign) Valid() bool {
	return s >= Signed && s <= Double
}

func (s Sign) String() string {
	if !s.Valid() {
		return fmt.Sprintf("sign(%d)", int(s))
	}
	return signInfo[s].name
}

// Token returns the suffix used in unit type and function names.
func (s Sign) Token() string { return signInfo[s].token }

// DefaultKind returns the kind used when a category does not override it.
func (s Sign) DefaultKind() Kind { return signInfo[s].kind }

// Group returns the kind group a storage kind for s must belong to.
func (s Sign) Group() Group { return signInfo[s].group }

// IsInteger reports whether s is stored as an integer.
func (s Sign) IsInteger() bool { return s == Signed || s == Unsigned }

// MarshalText implements encoding.TextMarshaler.
func (s Sign) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid sign %d", int(s))
	}
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Sign) UnmarshalText(text []byte) error {
	parsed, err := ParseSign(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// ParseSign resolves a sign by name or token.
func ParseSign(str string) (Sign, error) {
	str = strings.TrimSpace(str)
	for i, info := range signInfo {
		if str == info.name || str == info.token {
			return Sign(i), nil
		}
	}
	return 0, fmt.Errorf("unknown sign %q", str)
}

// SignOf returns the sign naturally describing a bare numeric kind.
func SignOf(k Kind) Sign {
	switch {
	case k.Group() == GroupSigned:
		return Signed
	case k.Group() == GroupUnsigned:
		return Unsigned
	case k == Float32:
		return Float
	default:
		return Double
	}
}

// Storage maps each sign to the kind a category stores it in.
type Storage struct {
	Signed   Kind `json:"signed"`
	Unsigned Kind `json:"unsigned"`
	Float    Kind `json:"float"`
	Double   Kind `json:"double"`
}

// DefaultStorage returns the native storage kinds.
func DefaultStorage() Storage {
	return Storage{
		Signed:   Signed.DefaultKind(),
		Unsigned: Unsigned.DefaultKind(),
		Float:    Float.DefaultKind(),
		Double:   Double.DefaultKind(),
	}
}

// Kind resolves the storage kind of s.
func (st Storage) Kind(s Sign) Kind {
	switch s {
	case Signed:
		return st.Signed
	case Unsigned:
		return st.Unsigned
	case Float:
		return st.Float
	default:
		return st.Double
	}
}

// Set overrides the storage kind of s.
func (st *Storage) Set(s Sign, k Kind) {
	switch s {
	case Signed:
		st.Signed = k
	case Unsigned:
		st.Unsigned = k
	case Float:
		st.Float = k
	default:
		st.Double = k
	}
}

// Check verifies every storage kind belongs to its sign's group. The
// comparison against the default kind fails for a kind from another group.
func (st Storage) Check() error {
	for _, s := range AllSigns() {
		k := st.Kind(s)
		if !k.Valid() {
			return fmt.Errorf("%s storage: invalid kind %d", s, int(k))
		}
		if _, err := SmallerThan(k, s.DefaultKind()); err != nil {
			return fmt.Errorf("%s storage: %w", s, err)
		}
	}
	return nil
}
