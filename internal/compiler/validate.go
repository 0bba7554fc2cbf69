package compiler

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/roach88/unitgen/internal/ir"
	"github.com/roach88/unitgen/internal/numeric"
)

// Validation error codes (E200-E299)
const (
	ErrCategoryNameEmpty     = "E201" // category name is required
	ErrNoUnits               = "E202" // at least one unit required
	ErrDuplicateUnit         = "E203" // conflicting definitions of one unit id
	ErrAbbreviationCollision = "E204" // abbreviation reused, shadows a numeric kind or contains "_"
	ErrInvalidStrategy       = "E205" // unknown strategy or wrong unit count for it
	ErrInvalidMultiplier     = "E206" // gradual multiplier missing, non-positive, or misplaced
	ErrScaleOverflow         = "E207" // cumulative gradual scale exceeds int64
	ErrMissingTransform      = "E208" // formula pair without a transform
	ErrInvalidTransform      = "E209" // malformed step, bad via, or cycle
	ErrStorageGroup          = "E210" // storage kind outside its sign's group
	ErrHighestPrecision      = "E211" // unknown or misplaced highest-precision unit
	ErrZeroPoint             = "E212" // gradual category with distinct zero points
	ErrInvalidIdentifier     = "E213" // name not usable as a C identifier
)

// ValidationError represents a category validation error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Validate validates a compiled category.
// Returns all errors found (does not fail-fast).
func Validate(cat *ir.Category) []ValidationError {
	var errs []ValidationError
	add := func(field, code, format string, args ...any) {
		errs = append(errs, ValidationError{Field: field, Message: fmt.Sprintf(format, args...), Code: code})
	}

	// E201, E213: category name
	if strings.TrimSpace(cat.Name) == "" {
		add("name", ErrCategoryNameEmpty, "category name is required")
	} else if !identPattern.MatchString(cat.Name) {
		add("name", ErrInvalidIdentifier, "category name %q is not a valid identifier", cat.Name)
	}

	// E202: units
	if len(cat.Units) == 0 {
		add("units", ErrNoUnits, "at least one unit is required")
	}

	errs = append(errs, validateUnits(cat)...)
	units := cat.DistinctUnits()

	// E205: strategy and unit count
	switch {
	case !ir.ValidStrategies[cat.Strategy]:
		add("strategy", ErrInvalidStrategy, "invalid strategy %q, must be \"gradual\", \"formula\", or \"same\"", cat.Strategy)
	case cat.Strategy == ir.StrategySame && len(units) != 1:
		add("strategy", ErrInvalidStrategy, "strategy \"same\" requires exactly one unit, got %d", len(units))
	case cat.Strategy != ir.StrategySame && len(units) == 1:
		add("strategy", ErrInvalidStrategy, "strategy %q requires at least two units; use \"same\"", cat.Strategy)
	}

	// E210: storage kinds stay in their sign's group
	if err := cat.Storage.Check(); err != nil {
		add("storage", ErrStorageGroup, "%v", err)
	}

	// E211: highest precision
	if cat.HighestPrecision != "" {
		i := cat.UnitIndex(cat.HighestPrecision)
		switch {
		case i < 0:
			add("highest_precision", ErrHighestPrecision, "unknown unit %q", cat.HighestPrecision)
		case cat.Strategy == ir.StrategyGradual && i != 0:
			add("highest_precision", ErrHighestPrecision, "gradual categories list the highest-precision unit first, got %q at position %d", cat.HighestPrecision, i)
		}
	}

	if cat.Strategy == ir.StrategyGradual {
		errs = append(errs, validateGradual(cat, units)...)
	} else {
		for i, u := range units {
			if u.Multiplier != 0 {
				add(fmt.Sprintf("units[%d].multiplier", i), ErrInvalidMultiplier, "multiplier is only meaningful for gradual categories")
			}
		}
	}

	if cat.Strategy == ir.StrategyFormula {
		errs = append(errs, validateFormula(cat, units)...)
	} else if len(cat.Transforms) > 0 {
		add("transforms", ErrInvalidTransform, "transforms are only meaningful for formula categories")
	}

	return errs
}

// validateUnits checks identifiers and uniqueness. Exact duplicates of a
// unit are tolerated; the first occurrence wins.
func validateUnits(cat *ir.Category) []ValidationError {
	var errs []ValidationError

	numericAbbrevs := make(map[string]numeric.Kind)
	for _, k := range numeric.AllKinds() {
		numericAbbrevs[k.Abbreviation()] = k
	}

	byID := make(map[string]ir.UnitVariant)
	abbrevOwner := make(map[string]string)
	for i, u := range cat.Units {
		field := fmt.Sprintf("units[%d]", i)

		if !identPattern.MatchString(u.ID) {
			errs = append(errs, ValidationError{Field: field + ".id", Code: ErrInvalidIdentifier,
				Message: fmt.Sprintf("unit id %q is not a valid identifier", u.ID)})
		}
		if !identPattern.MatchString(u.Abbreviation) {
			errs = append(errs, ValidationError{Field: field + ".abbreviation", Code: ErrInvalidIdentifier,
				Message: fmt.Sprintf("abbreviation %q is not a valid identifier", u.Abbreviation)})
		} else if strings.Contains(u.Abbreviation, "_") {
			// "_" separates the parts of a function name.
			errs = append(errs, ValidationError{Field: field + ".abbreviation", Code: ErrAbbreviationCollision,
				Message: fmt.Sprintf("abbreviation %q must not contain '_'", u.Abbreviation)})
		}

		if prev, ok := byID[u.ID]; ok {
			if prev != u {
				errs = append(errs, ValidationError{Field: field + ".id", Code: ErrDuplicateUnit,
					Message: fmt.Sprintf("unit %q is defined twice with different attributes", u.ID)})
			}
			continue
		}
		byID[u.ID] = u

		if k, ok := numericAbbrevs[u.Abbreviation]; ok {
			errs = append(errs, ValidationError{Field: field + ".abbreviation", Code: ErrAbbreviationCollision,
				Message: fmt.Sprintf("abbreviation %q is the abbreviation of %s", u.Abbreviation, k)})
		}
		if owner, ok := abbrevOwner[u.Abbreviation]; ok {
			errs = append(errs, ValidationError{Field: field + ".abbreviation", Code: ErrAbbreviationCollision,
				Message: fmt.Sprintf("abbreviation %q is already used by unit %q", u.Abbreviation, owner)})
		}
		abbrevOwner[u.Abbreviation] = u.ID
	}
	return errs
}

func validateGradual(cat *ir.Category, units []ir.UnitVariant) []ValidationError {
	var errs []ValidationError

	// E212
	if !cat.SameZeroPoint {
		errs = append(errs, ValidationError{Field: "same_zero_point", Code: ErrZeroPoint,
			Message: "gradual categories scale by integer factors and must share a zero point"})
	}

	// E206, E207
	scale := int64(1)
	overflowed := false
	for i, u := range units {
		field := fmt.Sprintf("units[%d].multiplier", i)
		if i == 0 {
			if u.Multiplier != 0 {
				errs = append(errs, ValidationError{Field: field, Code: ErrInvalidMultiplier,
					Message: fmt.Sprintf("the first unit %q is the finest and takes no multiplier", u.ID)})
			}
			continue
		}
		if u.Multiplier <= 0 {
			errs = append(errs, ValidationError{Field: field, Code: ErrInvalidMultiplier,
				Message: fmt.Sprintf("unit %q needs a positive multiplier, got %d", u.ID, u.Multiplier)})
			continue
		}
		if overflowed {
			continue
		}
		if scale > math.MaxInt64/u.Multiplier {
			errs = append(errs, ValidationError{Field: field, Code: ErrScaleOverflow,
				Message: fmt.Sprintf("scale from %q to %q exceeds the int64 range", units[0].ID, u.ID)})
			overflowed = true
			continue
		}
		scale *= u.Multiplier
	}
	return errs
}

func validateFormula(cat *ir.Category, units []ir.UnitVariant) []ValidationError {
	var errs []ValidationError
	add := func(field, code, format string, args ...any) {
		errs = append(errs, ValidationError{Field: field, Message: fmt.Sprintf(format, args...), Code: code})
	}

	known := make(map[string]bool, len(units))
	for _, u := range units {
		known[u.ID] = true
	}

	type pair struct{ from, to string }
	declared := make(map[pair]ir.Transform)
	for i, t := range cat.Transforms {
		field := fmt.Sprintf("transforms[%d]", i)
		if !known[t.From] || !known[t.To] {
			add(field, ErrInvalidTransform, "transform %s -> %s names an unknown unit", t.From, t.To)
			continue
		}
		if t.From == t.To {
			add(field, ErrInvalidTransform, "transform %s -> %s maps a unit to itself", t.From, t.To)
			continue
		}
		if _, dup := declared[pair{t.From, t.To}]; dup {
			add(field, ErrInvalidTransform, "transform %s -> %s is declared twice", t.From, t.To)
			continue
		}
		declared[pair{t.From, t.To}] = t

		hasSteps, hasVia := len(t.Steps) > 0, t.Via != ""
		switch {
		case hasSteps == hasVia:
			add(field, ErrInvalidTransform, "transform %s -> %s needs either steps or via", t.From, t.To)
		case hasVia && (!known[t.Via] || t.Via == t.From || t.Via == t.To):
			add(field+".via", ErrInvalidTransform, "via %q must be a third unit of the category", t.Via)
		}
		for j, step := range t.Steps {
			if _, err := step.ArithOp(); err != nil {
				add(fmt.Sprintf("%s.steps[%d].op", field, j), ErrInvalidTransform, "%v", err)
			}
			v, err := step.Value()
			if err != nil {
				add(fmt.Sprintf("%s.steps[%d].operand", field, j), ErrInvalidTransform, "%v", err)
			} else if step.Op == ir.OpDiv && v == 0 {
				add(fmt.Sprintf("%s.steps[%d].operand", field, j), ErrInvalidTransform, "division by zero")
			}
		}
	}

	// E208: every ordered pair of distinct units
	for _, a := range units {
		for _, b := range units {
			if a.ID == b.ID {
				continue
			}
			if _, ok := declared[pair{a.ID, b.ID}]; !ok {
				add("transforms", ErrMissingTransform, "no transform for %s -> %s", a.ID, b.ID)
			}
		}
	}

	// E209: via compositions must resolve to steps without cycles
	for _, t := range cat.Transforms {
		if t.Via == "" {
			continue
		}
		if err := resolveVia(cat, t.From, t.To, nil); err != nil {
			add("transforms", ErrInvalidTransform, "%v", err)
		}
	}
	return errs
}

var errViaCycle = errors.New("via cycle")

// resolveVia follows via compositions from -> to, failing on a missing
// transform or a cycle.
func resolveVia(cat *ir.Category, from, to string, path []string) error {
	edge := from + " -> " + to
	for _, p := range path {
		if p == edge {
			return fmt.Errorf("%w: %s", errViaCycle, strings.Join(append(path, edge), ", "))
		}
	}
	t, ok := cat.Transform(from, to)
	if !ok {
		return fmt.Errorf("transform %s used by a via composition is not declared", edge)
	}
	if t.Via == "" || t.From == t.Via || t.To == t.Via {
		return nil
	}
	path = append(path, edge)
	if err := resolveVia(cat, from, t.Via, path); err != nil {
		return err
	}
	return resolveVia(cat, t.Via, to, path)
}
