package compiler

import (
	"fmt"
	"strconv"

	"cuelang.org/go/cue"

	"github.com/roach88/unitgen/internal/ir"
	"github.com/roach88/unitgen/internal/numeric"
)

// CompileCategory parses a CUE value into a Category.
// Uses CUE SDK's Go API directly (not CLI subprocess).
//
// The CUE value should be the category struct itself, e.g.:
//
//	ctx := cuecontext.New()
//	v := ctx.CompileString(`category: distance: { ... }`)
//	cat, err := CompileCategory(v.LookupPath(cue.ParsePath("category.distance")))
//
// CompileCategory checks structure only; use Validate or Category for the
// semantic rules.
func CompileCategory(v cue.Value) (*ir.Category, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	cat := &ir.Category{Storage: numeric.DefaultStorage()}

	// Category name is the struct label
	labels := v.Path().Selectors()
	if len(labels) > 0 {
		cat.Name = labels[len(labels)-1].String()
	}

	strategy, err := requiredString(v, "strategy")
	if err != nil {
		return nil, err
	}
	cat.Strategy = ir.Strategy(strategy)

	// same_zero_point defaults to true; formula categories relating offset
	// scales say so explicitly.
	cat.SameZeroPoint = true
	if zp := v.LookupPath(cue.ParsePath("same_zero_point")); zp.Exists() {
		b, err := zp.Bool()
		if err != nil {
			return nil, formatCUEError(err)
		}
		cat.SameZeroPoint = b
	}

	cat.Units, err = parseUnits(v)
	if err != nil {
		return nil, err
	}
	if len(cat.Units) > 0 {
		cat.HighestPrecision = cat.Units[0].ID
	}
	if hp := v.LookupPath(cue.ParsePath("highest_precision")); hp.Exists() {
		s, err := hp.String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		cat.HighestPrecision = s
	}

	if err := parseStorage(v, &cat.Storage); err != nil {
		return nil, err
	}

	cat.Transforms, err = parseTransforms(v)
	if err != nil {
		return nil, err
	}

	return cat, nil
}

// CompileCategories compiles every field of the "category" struct in v,
// in source order. Compile errors are collected rather than returned on
// the first failure.
func CompileCategories(v cue.Value) ([]*ir.Category, []error) {
	catsVal := v.LookupPath(cue.ParsePath("category"))
	if !catsVal.Exists() {
		return nil, []error{&CompileError{Field: "category", Message: "no categories defined", Pos: v.Pos()}}
	}
	iter, err := catsVal.Fields()
	if err != nil {
		return nil, []error{formatCUEError(err)}
	}

	var cats []*ir.Category
	var errs []error
	for iter.Next() {
		cat, err := CompileCategory(iter.Value())
		if err != nil {
			errs = append(errs, fmt.Errorf("category.%s: %w", iter.Label(), err))
			continue
		}
		cats = append(cats, cat)
	}
	return cats, errs
}

// Category compiles and validates a category definition. Validation
// failures are returned as a *ConfigurationError. Exact duplicate units are
// collapsed to their first occurrence.
func Category(v cue.Value) (*ir.Category, error) {
	cat, err := CompileCategory(v)
	if err != nil {
		return nil, err
	}
	if err := Check(cat); err != nil {
		return nil, err
	}
	cat.Units = cat.DistinctUnits()
	return cat, nil
}

// Check validates cat and wraps any failures in a *ConfigurationError.
func Check(cat *ir.Category) error {
	if errs := Validate(cat); len(errs) > 0 {
		return &ConfigurationError{Category: cat.Name, Errors: errs}
	}
	return nil
}

func requiredString(v cue.Value, field string) (string, error) {
	f := v.LookupPath(cue.ParsePath(field))
	if !f.Exists() {
		return "", &CompileError{
			Field:   field,
			Message: field + " is required",
			Pos:     v.Pos(),
		}
	}
	s, err := f.String()
	if err != nil {
		return "", formatCUEError(err)
	}
	return s, nil
}

func optionalString(v cue.Value, field string) (string, error) {
	f := v.LookupPath(cue.ParsePath(field))
	if !f.Exists() {
		return "", nil
	}
	s, err := f.String()
	if err != nil {
		return "", formatCUEError(err)
	}
	return s, nil
}

// parseUnits extracts the ordered unit list.
func parseUnits(v cue.Value) ([]ir.UnitVariant, error) {
	unitsVal := v.LookupPath(cue.ParsePath("units"))
	if !unitsVal.Exists() {
		return nil, &CompileError{
			Field:   "units",
			Message: "units is required",
			Pos:     v.Pos(),
		}
	}
	iter, err := unitsVal.List()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var units []ir.UnitVariant
	for iter.Next() {
		uv := iter.Value()
		var u ir.UnitVariant
		if u.ID, err = requiredString(uv, "id"); err != nil {
			return nil, err
		}
		if u.Abbreviation, err = requiredString(uv, "abbreviation"); err != nil {
			return nil, err
		}
		if u.Description, err = optionalString(uv, "description"); err != nil {
			return nil, err
		}
		if m := uv.LookupPath(cue.ParsePath("multiplier")); m.Exists() {
			n, err := m.Int64()
			if err != nil {
				return nil, &CompileError{
					Field:   "units." + u.ID + ".multiplier",
					Message: fmt.Sprintf("multiplier must be a 64-bit integer: %v", err),
					Pos:     m.Pos(),
				}
			}
			u.Multiplier = n
		}
		units = append(units, u)
	}
	return units, nil
}

// parseStorage applies per-sign storage overrides.
func parseStorage(v cue.Value, st *numeric.Storage) error {
	storageVal := v.LookupPath(cue.ParsePath("storage"))
	if !storageVal.Exists() {
		return nil
	}
	for _, s := range numeric.AllSigns() {
		f := storageVal.LookupPath(cue.ParsePath(s.String()))
		if !f.Exists() {
			continue
		}
		name, err := f.String()
		if err != nil {
			return formatCUEError(err)
		}
		k, err := numeric.ParseKind(name)
		if err != nil {
			return &CompileError{
				Field:   "storage." + s.String(),
				Message: err.Error(),
				Pos:     f.Pos(),
			}
		}
		st.Set(s, k)
	}
	return nil
}

// parseTransforms extracts formula transforms (optional).
func parseTransforms(v cue.Value) ([]ir.Transform, error) {
	tVal := v.LookupPath(cue.ParsePath("transforms"))
	if !tVal.Exists() {
		return nil, nil
	}
	iter, err := tVal.List()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var transforms []ir.Transform
	for iter.Next() {
		tv := iter.Value()
		var t ir.Transform
		if t.From, err = requiredString(tv, "from"); err != nil {
			return nil, err
		}
		if t.To, err = requiredString(tv, "to"); err != nil {
			return nil, err
		}
		if t.Via, err = optionalString(tv, "via"); err != nil {
			return nil, err
		}
		if stepsVal := tv.LookupPath(cue.ParsePath("steps")); stepsVal.Exists() {
			stepIter, err := stepsVal.List()
			if err != nil {
				return nil, formatCUEError(err)
			}
			for stepIter.Next() {
				step, err := parseStep(stepIter.Value())
				if err != nil {
					return nil, err
				}
				t.Steps = append(t.Steps, step)
			}
		}
		transforms = append(transforms, t)
	}
	return transforms, nil
}

// parseStep reads one formula step. The operand may be written as a string
// ("273.15", "M_PI") or as a CUE number; numbers keep their source text.
func parseStep(v cue.Value) (ir.FormulaStep, error) {
	var step ir.FormulaStep
	var err error
	if step.Op, err = requiredString(v, "op"); err != nil {
		return step, err
	}
	operand := v.LookupPath(cue.ParsePath("operand"))
	if !operand.Exists() {
		return step, &CompileError{Field: "operand", Message: "operand is required", Pos: v.Pos()}
	}
	switch operand.Kind() {
	case cue.StringKind:
		step.Operand, err = operand.String()
		if err != nil {
			return step, formatCUEError(err)
		}
	case cue.IntKind, cue.FloatKind, cue.NumberKind:
		data, err := operand.MarshalJSON()
		if err != nil {
			return step, formatCUEError(err)
		}
		if _, err := strconv.ParseFloat(string(data), 64); err != nil {
			return step, &CompileError{Field: "operand", Message: fmt.Sprintf("operand %s is not a number", data), Pos: operand.Pos()}
		}
		step.Operand = string(data)
	default:
		return step, &CompileError{
			Field:   "operand",
			Message: fmt.Sprintf("operand must be a number or string, got %s", operand.Kind()),
			Pos:     operand.Pos(),
		}
	}
	return step, nil
}
