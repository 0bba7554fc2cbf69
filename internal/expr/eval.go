package expr

import (
	"fmt"

	"github.com/roach88/unitgen/internal/numeric"
)

// Env binds parameter names to values.
type Env map[string]numeric.Value

// Eval evaluates e with C semantics. Conversions C leaves undefined, signed
// overflow and division by zero are returned as errors. Only the selected
// branch of a Cond is evaluated.
func Eval(e Expr, env Env) (numeric.Value, error) {
	switch n := e.(type) {
	case Ref:
		v, ok := env[n.Name]
		if !ok {
			return numeric.Value{}, fmt.Errorf("unbound parameter %q", n.Name)
		}
		if v.Kind() != n.Type {
			return v.Cast(n.Type)
		}
		return v, nil
	case Lit:
		return n.Value, nil
	case Cast:
		v, err := Eval(n.X, env)
		if err != nil {
			return numeric.Value{}, err
		}
		out, err := v.Cast(n.To)
		if err != nil {
			return numeric.Value{}, fmt.Errorf("(%s): %w", n.TypeName, err)
		}
		return out, nil
	case Call:
		v, err := Eval(n.Arg, env)
		if err != nil {
			return numeric.Value{}, err
		}
		switch n.Func {
		case "round", "roundf":
			return numeric.Round(v), nil
		default:
			return numeric.Value{}, fmt.Errorf("unknown function %q", n.Func)
		}
	case Binary:
		l, err := Eval(n.L, env)
		if err != nil {
			return numeric.Value{}, err
		}
		r, err := Eval(n.R, env)
		if err != nil {
			return numeric.Value{}, err
		}
		return numeric.Apply(n.Op, l, r)
	case Cond:
		l, err := Eval(n.L, env)
		if err != nil {
			return numeric.Value{}, err
		}
		r, err := Eval(n.R, env)
		if err != nil {
			return numeric.Value{}, err
		}
		c, ok := numeric.Compare(l, r)
		holds := false
		if ok {
			switch n.Op {
			case Less:
				holds = c < 0
			case Greater:
				holds = c > 0
			default:
				return numeric.Value{}, fmt.Errorf("unknown comparison %q", n.Op)
			}
		}
		branch := n.Else
		if holds {
			branch = n.Then
		}
		v, err := Eval(branch, env)
		if err != nil {
			return numeric.Value{}, err
		}
		return v.Convert(n.Kind()), nil
	default:
		return numeric.Value{}, fmt.Errorf("unsupported expression %T", e)
	}
}
