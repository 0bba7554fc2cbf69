package strategy

import (
	"fmt"

	"github.com/roach88/unitgen/internal/expr"
	"github.com/roach88/unitgen/internal/ir"
	"github.com/roach88/unitgen/internal/numeric"
)

// maxVia bounds the depth of via compositions.
const maxVia = 8

// formula applies the transform from -> to to e, a double expression,
// expanding via compositions. The result is a double expression.
func formula(cat *ir.Category, from, to string, e expr.Expr, depth int) (expr.Expr, error) {
	if depth > maxVia {
		return nil, fmt.Errorf("category %s: transform %s -> %s composes too deeply", cat.Name, from, to)
	}
	t, ok := cat.Transform(from, to)
	if !ok {
		return nil, fmt.Errorf("category %s: no transform %s -> %s", cat.Name, from, to)
	}
	if t.Via != "" {
		mid, err := formula(cat, from, t.Via, e, depth+1)
		if err != nil {
			return nil, err
		}
		return formula(cat, t.Via, to, mid, depth+1)
	}
	for _, step := range t.Steps {
		op, err := step.ArithOp()
		if err != nil {
			return nil, fmt.Errorf("category %s: %s -> %s: %w", cat.Name, from, to, err)
		}
		v, err := step.Value()
		if err != nil {
			return nil, fmt.Errorf("category %s: %s -> %s: %w", cat.Name, from, to, err)
		}
		e = expr.Binary{
			Op: op,
			L:  e,
			R:  expr.Lit{Text: step.Literal(), Value: numeric.FloatValue(numeric.Float64, v)},
		}
	}
	return e, nil
}
