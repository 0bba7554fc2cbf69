// Package expr holds the expression trees conversion bodies are built from.
// Trees render to C text and can be evaluated with C semantics, which lets
// tests execute synthesised bodies without a C toolchain.
package expr

import (
	"strings"

	"github.com/roach88/unitgen/internal/numeric"
)

// Expr is a typed C expression.
type Expr interface {
	// Kind is the static numeric kind of the expression.
	Kind() numeric.Kind
	render(b *strings.Builder)
}

// Ref names a parameter.
type Ref struct {
	Name string
	Type numeric.Kind
}

// Lit is a literal with its rendered text and value.
type Lit struct {
	Text  string
	Value numeric.Value
}

// Cast is an explicit conversion. TypeName is the spelling used in C, which
// may be a unit typedef of To.
type Cast struct {
	TypeName string
	To       numeric.Kind
	X        Expr
}

// Call applies a math library function.
type Call struct {
	Func string
	Arg  Expr
}

// Binary is an arithmetic operation.
type Binary struct {
	Op   numeric.Op
	L, R Expr
}

// CmpOp is a relational operator.
type CmpOp string

const (
	Less    CmpOp = "<"
	Greater CmpOp = ">"
)

// Cond selects Then when L Op R holds, Else otherwise.
type Cond struct {
	Op   CmpOp
	L, R Expr
	Then Expr
	Else Expr
}

// NewLit builds a literal rendered with numeric.FormatLiteral.
func NewLit(v numeric.Value) Lit {
	return Lit{Text: numeric.FormatLiteral(v), Value: v}
}

// NewCast casts x to the C spelling of k.
func NewCast(k numeric.Kind, x Expr) Cast {
	return Cast{TypeName: k.CType(), To: k, X: x}
}

func (r Ref) Kind() numeric.Kind  { return r.Type }
func (l Lit) Kind() numeric.Kind  { return l.Value.Kind() }
func (c Cast) Kind() numeric.Kind { return c.To }
func (c Call) Kind() numeric.Kind { return c.Arg.Kind() }

func (b Binary) Kind() numeric.Kind { return numeric.Common(b.L.Kind(), b.R.Kind()) }

func (c Cond) Kind() numeric.Kind { return numeric.Common(c.Then.Kind(), c.Else.Kind()) }

// RoundFunc returns the round-half-away-from-zero function for a float kind.
func RoundFunc(k numeric.Kind) string {
	if k == numeric.Float32 {
		return "roundf"
	}
	return "round"
}
