package ir

import (
	"fmt"

	"github.com/roach88/unitgen/internal/numeric"
)

// Endpoint is one side of a conversion: a unit in a given sign, or a bare
// numeric kind.
type Endpoint struct {
	Unit         string       `json:"unit,omitempty"` // empty for a bare numeric kind
	Abbreviation string       `json:"abbreviation"`
	Sign         numeric.Sign `json:"sign"`
	Kind         numeric.Kind `json:"kind"`
}

// UnitEndpoint builds the endpoint of unit u stored as sign s in kind k.
func UnitEndpoint(u UnitVariant, s numeric.Sign, k numeric.Kind) Endpoint {
	return Endpoint{Unit: u.ID, Abbreviation: u.Abbreviation, Sign: s, Kind: k}
}

// NumericEndpoint builds the endpoint of a bare numeric kind.
func NumericEndpoint(k numeric.Kind) Endpoint {
	return Endpoint{Abbreviation: k.Abbreviation(), Sign: numeric.SignOf(k), Kind: k}
}

// IsUnit reports whether the endpoint is unit-typed.
func (e Endpoint) IsUnit() bool { return e.Unit != "" }

// TypeName is the C type spelling: "{unit}_{sign}" or the numeric C type.
func (e Endpoint) TypeName() string {
	if e.IsUnit() {
		return e.Unit + "_" + e.Sign.Token()
	}
	return e.Kind.CType()
}

// Token is the endpoint's part of a function name. Bare numeric kinds are
// unambiguous without a sign token.
func (e Endpoint) Token() string {
	if e.IsUnit() {
		return e.Abbreviation + "_" + e.Sign.Token()
	}
	return e.Abbreviation
}

func (e Endpoint) String() string { return e.TypeName() }

// FunctionName names the conversion from src to dst.
func FunctionName(src, dst Endpoint) string {
	return src.Token() + "_to_" + dst.Token()
}

// ParamName names the parameter of a conversion: the unit id of whichever
// side is unit-typed, preferring the source.
func ParamName(src, dst Endpoint) string {
	if src.IsUnit() {
		return src.Unit
	}
	if dst.IsUnit() {
		return dst.Unit
	}
	return "value"
}

// ConversionSpec is one synthesised conversion function. Immutable once
// produced.
type ConversionSpec struct {
	ID          string   `json:"id"`
	Category    string   `json:"category"`
	Name        string   `json:"name"`
	Source      Endpoint `json:"source"`
	Dest        Endpoint `json:"dest"`
	SourceType  string   `json:"source_type"`
	DestType    string   `json:"dest_type"`
	Param       string   `json:"param"`
	Declaration string   `json:"declaration"`
	Body        string   `json:"body,omitempty"`
	UniqueName  bool     `json:"unique_name"`
}

// Declaration renders "<dstType> <name>(<srcType> <param>)".
func Declaration(src, dst Endpoint) string {
	return fmt.Sprintf("%s %s(%s %s)", dst.TypeName(), FunctionName(src, dst), src.TypeName(), ParamName(src, dst))
}

// Signature is the declaration without its return type; specs are ordered
// and deduplicated by it.
func (s ConversionSpec) Signature() string {
	return fmt.Sprintf("%s(%s %s)", s.Name, s.SourceType, s.Param)
}

// TestCase is one literal input/expected-output pair for a conversion.
type TestCase struct {
	Function string        `json:"function" yaml:"function"`
	Index    int           `json:"index" yaml:"index"`
	Input    string        `json:"input" yaml:"input"`
	Expected string        `json:"expected" yaml:"expected"`
	In       numeric.Value `json:"-" yaml:"-"`
	Out      numeric.Value `json:"-" yaml:"-"`
}
