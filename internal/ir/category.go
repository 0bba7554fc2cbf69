package ir

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/roach88/unitgen/internal/numeric"
)

// Strategy selects how values move between the units of a category.
type Strategy string

const (
	// StrategyGradual relates units by positive integer scale factors along
	// a total order, finest first.
	StrategyGradual Strategy = "gradual"

	// StrategyFormula relates every ordered pair of units by an explicit
	// expression evaluated in double precision.
	StrategyFormula Strategy = "formula"

	// StrategySame is a category with a single unit; only the sign changes.
	StrategySame Strategy = "same"
)

// ValidStrategies lists the accepted strategy names.
var ValidStrategies = map[Strategy]bool{
	StrategyGradual: true,
	StrategyFormula: true,
	StrategySame:    true,
}

// UnitVariant is one unit of a category.
type UnitVariant struct {
	ID           string `json:"id"`
	Abbreviation string `json:"abbreviation"`
	Description  string `json:"description,omitempty"`

	// Multiplier is the number of units of the previous (finer) variant in
	// one of this unit. Gradual categories only; zero for the first unit.
	Multiplier int64 `json:"multiplier,omitempty"`
}

// Formula step operators.
const (
	OpAdd = "add"
	OpSub = "sub"
	OpMul = "mul"
	OpDiv = "div"
)

// PiOperand is the symbolic operand for π.
const PiOperand = "M_PI"

// FormulaStep applies one arithmetic operation to the running value. The
// operand is a decimal, PiOperand, or a ratio of two decimals such as
// "5/9", which is emitted as a constant division in double.
type FormulaStep struct {
	Op      string `json:"op"`
	Operand string `json:"operand"`
}

// Value returns the operand as a float64.
func (s FormulaStep) Value() (float64, error) {
	if s.Operand == PiOperand {
		return math.Pi, nil
	}
	num, den, ratio := strings.Cut(s.Operand, "/")
	n, err := parseOperand(num)
	if err != nil || !ratio {
		return n, err
	}
	d, err := parseOperand(den)
	if err != nil {
		return 0, err
	}
	if d == 0 {
		return 0, fmt.Errorf("operand %q divides by zero", s.Operand)
	}
	return n / d, nil
}

func parseOperand(text string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err != nil {
		return 0, fmt.Errorf("operand %q: %w", text, err)
	}
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, fmt.Errorf("operand %q is not finite", text)
	}
	return v, nil
}

// Literal returns the operand spelled as a C double literal.
func (s FormulaStep) Literal() string {
	if s.Operand == PiOperand {
		return s.Operand
	}
	if num, den, ok := strings.Cut(s.Operand, "/"); ok {
		return "(" + doubleLiteral(num) + " / " + doubleLiteral(den) + ")"
	}
	return doubleLiteral(s.Operand)
}

func doubleLiteral(text string) string {
	text = strings.TrimSpace(text)
	if strings.ContainsAny(text, ".eE") {
		return text
	}
	return text + ".0"
}

// ArithOp maps the step operator to a numeric operator.
func (s FormulaStep) ArithOp() (numeric.Op, error) {
	switch s.Op {
	case OpAdd:
		return numeric.Add, nil
	case OpSub:
		return numeric.Sub, nil
	case OpMul:
		return numeric.Mul, nil
	case OpDiv:
		return numeric.Div, nil
	default:
		return 0, fmt.Errorf("unknown formula operator %q", s.Op)
	}
}

// Transform is the formula converting From to To: either explicit Steps,
// or the composition From→Via followed by Via→To.
type Transform struct {
	From  string        `json:"from"`
	To    string        `json:"to"`
	Steps []FormulaStep `json:"steps,omitempty"`
	Via   string        `json:"via,omitempty"`
}

// Category is a measurement family: an ordered unit list plus the strategy
// relating its units.
type Category struct {
	Name             string          `json:"name"`
	Strategy         Strategy        `json:"strategy"`
	Units            []UnitVariant   `json:"units"`
	Transforms       []Transform     `json:"transforms,omitempty"`
	SameZeroPoint    bool            `json:"same_zero_point"`
	HighestPrecision string          `json:"highest_precision"`
	Storage          numeric.Storage `json:"storage"`
}

// UnitIndex returns the position of the unit with the given id among
// DistinctUnits, or -1.
func (c *Category) UnitIndex(id string) int {
	for i, u := range c.DistinctUnits() {
		if u.ID == id {
			return i
		}
	}
	return -1
}

// Unit returns the unit with the given id.
func (c *Category) Unit(id string) (UnitVariant, bool) {
	for _, u := range c.Units {
		if u.ID == id {
			return u, true
		}
	}
	return UnitVariant{}, false
}

// Transform returns the transform declared for the ordered pair.
func (c *Category) Transform(from, to string) (Transform, bool) {
	for _, t := range c.Transforms {
		if t.From == from && t.To == to {
			return t, true
		}
	}
	return Transform{}, false
}

// DistinctUnits returns the units with duplicate ids removed, keeping the
// first occurrence.
func (c *Category) DistinctUnits() []UnitVariant {
	seen := make(map[string]bool, len(c.Units))
	out := make([]UnitVariant, 0, len(c.Units))
	for _, u := range c.Units {
		if seen[u.ID] {
			continue
		}
		seen[u.ID] = true
		out = append(out, u)
	}
	return out
}

// UnitEndpoints returns every (unit, sign) endpoint, unit-major.
func (c *Category) UnitEndpoints() []Endpoint {
	units := c.DistinctUnits()
	out := make([]Endpoint, 0, len(units)*len(numeric.AllSigns()))
	for _, u := range units {
		for _, s := range numeric.AllSigns() {
			out = append(out, UnitEndpoint(u, s, c.Storage.Kind(s)))
		}
	}
	return out
}

// NumericEndpoints returns an endpoint for every bare numeric kind.
func NumericEndpoints() []Endpoint {
	kinds := numeric.AllKinds()
	out := make([]Endpoint, 0, len(kinds))
	for _, k := range kinds {
		out = append(out, NumericEndpoint(k))
	}
	return out
}
