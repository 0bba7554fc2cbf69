// Package strategy builds the expression converting a value between two
// units of the same category.
//
// Gradual categories scale by the product of the multipliers between the
// two units. Formula categories apply the declared steps in double
// precision. In every case the last step is a castgen conversion into the
// destination sign, so overflow and rounding follow the same rules as a
// plain numeric conversion.
package strategy

import (
	"fmt"

	"github.com/roach88/unitgen/internal/castgen"
	"github.com/roach88/unitgen/internal/expr"
	"github.com/roach88/unitgen/internal/ir"
)

// Build returns the expression converting x, a value of src, to dst. Both
// endpoints must be units of cat.
func Build(cat *ir.Category, src, dst ir.Endpoint, x expr.Expr) (expr.Expr, error) {
	i := cat.UnitIndex(src.Unit)
	if i < 0 {
		return nil, fmt.Errorf("category %s: unknown unit %q", cat.Name, src.Unit)
	}
	j := cat.UnitIndex(dst.Unit)
	if j < 0 {
		return nil, fmt.Errorf("category %s: unknown unit %q", cat.Name, dst.Unit)
	}

	from, to := castgen.FromEndpoint(src), castgen.FromEndpoint(dst)
	if i == j {
		return castgen.Cast(from, to, x), nil
	}

	switch cat.Strategy {
	case ir.StrategyGradual:
		scale, err := Scale(cat, src.Unit, dst.Unit)
		if err != nil {
			return nil, err
		}
		if i > j {
			return multiply(from, to, x, scale), nil
		}
		return divide(from, to, x, scale), nil

	case ir.StrategyFormula:
		e, err := formula(cat, src.Unit, dst.Unit, toDouble(x), 0)
		if err != nil {
			return nil, err
		}
		return castgen.Cast(double, to, e), nil

	case ir.StrategySame:
		return nil, fmt.Errorf("category %s: strategy %q has a single unit", cat.Name, cat.Strategy)

	default:
		return nil, fmt.Errorf("category %s: unknown strategy %q", cat.Name, cat.Strategy)
	}
}
