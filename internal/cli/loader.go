package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"
	"cuelang.org/go/cue/token"

	"github.com/roach88/unitgen/internal/catalog"
	"github.com/roach88/unitgen/internal/compiler"
	"github.com/roach88/unitgen/internal/ir"
)

// LoadMode controls how errors are handled during category loading.
type LoadMode int

const (
	// LoadModeFailFast stops on the first error encountered.
	LoadModeFailFast LoadMode = iota
	// LoadModeCollectAll collects all errors before returning.
	LoadModeCollectAll
)

// LoadResult contains the categories loaded from a directory.
type LoadResult struct {
	Categories []*ir.Category
	CUEValue   cue.Value // The raw CUE value for additional processing
	FileCount  int       // Number of CUE files found
}

// LoadError represents an error that occurred during category loading.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos // CUE position if available
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// LoadSpecs loads and compiles the CUE category definitions of a directory.
// Categories that fail to compile or validate are reported as errors and
// left out of the result. If mode is LoadModeFailFast, returns on the first
// error.
func LoadSpecs(dir string, mode LoadMode) (*LoadResult, []error) {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("specs directory not found: %s", dir)}}
	}
	if err != nil {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing specs directory: %v", err)}}
	}
	if !info.IsDir() {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("not a directory: %s", dir)}}
	}

	cueFiles, err := FindCUEFiles(dir)
	if err != nil {
		return nil, []error{&LoadError{Code: ErrCodeScanError, Message: fmt.Sprintf("error scanning directory: %v", err)}}
	}
	if len(cueFiles) == 0 {
		return nil, []error{&LoadError{Code: ErrCodeNoFiles, Message: fmt.Sprintf("no CUE files found in %s", dir)}}
	}

	ctx := cuecontext.New()
	instances := load.Instances([]string{"."}, &load.Config{Dir: dir})
	if len(instances) == 0 {
		return nil, []error{&LoadError{Code: ErrCodeLoadFailed, Message: "no CUE instances loaded"}}
	}
	inst := instances[0]
	if inst.Err != nil {
		return nil, []error{&LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("loading CUE files: %v", inst.Err)}}
	}

	value := ctx.BuildInstance(inst)
	if err := value.Err(); err != nil {
		return nil, []error{&LoadError{Code: ErrCodeBuildFailed, Message: fmt.Sprintf("building CUE value: %v", err)}}
	}

	result := &LoadResult{
		CUEValue:  value,
		FileCount: len(cueFiles),
	}
	var errs []error
	result.Categories, errs = collectCategories(value, mode)
	return result, errs
}

// collectCategories compiles and validates every field of the "category"
// struct in value.
func collectCategories(value cue.Value, mode LoadMode) ([]*ir.Category, []error) {
	catsVal := value.LookupPath(cue.ParsePath("category"))
	if !catsVal.Exists() {
		return nil, []error{&LoadError{Code: ErrCodeGeneric, Message: "no categories found in specs"}}
	}
	iter, err := catsVal.Fields()
	if err != nil {
		return nil, []error{&LoadError{Code: ErrCodeGeneric, Message: fmt.Sprintf("iterating categories: %v", err)}}
	}

	var cats []*ir.Category
	var errs []error
	for iter.Next() {
		cat, err := compiler.Category(iter.Value())
		if err != nil {
			errs = append(errs, convertCompileError(err, "category."+iter.Label()))
			if mode == LoadModeFailFast {
				return cats, errs
			}
			continue
		}
		cats = append(cats, cat)
	}
	return cats, errs
}

// FindCUEFiles returns the .cue files directly inside dir. CUE loads one
// package per directory, so subdirectories are not scanned.
func FindCUEFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".cue" {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	return files, nil
}

// convertCompileError keeps ConfigurationErrors intact and converts
// anything else to a LoadError with position info.
func convertCompileError(err error, context string) error {
	if compiler.IsConfigurationError(err) {
		return err
	}
	var compileErr *compiler.CompileError
	if errors.As(err, &compileErr) {
		return &LoadError{
			Code:    MapFieldToErrorCode(compileErr.Field),
			Message: fmt.Sprintf("%s: %s", context, compileErr.Message),
			Pos:     compileErr.Pos,
		}
	}
	return &LoadError{
		Code:    ErrCodeGeneric,
		Message: fmt.Sprintf("%s: %v", context, err),
	}
}

// loadCategories returns the categories of specsDir, or the built-in
// catalog when specsDir is empty, restricted to names when given.
func loadCategories(specsDir string, names []string) ([]*ir.Category, error) {
	var cats []*ir.Category
	if specsDir == "" {
		all, err := catalog.Load()
		if err != nil {
			return nil, &LoadError{Code: ErrCodeLoadFailed, Message: err.Error()}
		}
		cats = all
	} else {
		res, errs := LoadSpecs(specsDir, LoadModeFailFast)
		if len(errs) > 0 {
			return nil, errs[0]
		}
		cats = res.Categories
	}
	if len(names) == 0 {
		return cats, nil
	}

	byName := make(map[string]*ir.Category, len(cats))
	for _, c := range cats {
		byName[c.Name] = c
	}
	out := make([]*ir.Category, 0, len(names))
	for _, n := range names {
		c, ok := byName[n]
		if !ok {
			return nil, &LoadError{Code: ErrCodeUnknownCategory, Message: fmt.Sprintf("unknown category %q", n)}
		}
		out = append(out, c)
	}
	return out, nil
}

// errorCode returns the CLI code and message for an error.
func errorCode(err error) (string, string) {
	var loadErr *LoadError
	if errors.As(err, &loadErr) {
		return loadErr.Code, loadErr.Message
	}
	var confErr *compiler.ConfigurationError
	if errors.As(err, &confErr) && len(confErr.Errors) > 0 {
		return confErr.Errors[0].Code, confErr.Error()
	}
	return ErrCodeGeneric, err.Error()
}

// Error code constants - unified across all CLI commands.
const (
	ErrCodeGeneric         = "E001" // Generic/unknown error
	ErrCodeScanError       = "E002" // Directory scan error
	ErrCodeNoFiles         = "E003" // No CUE files found
	ErrCodeLoadFailed      = "E004" // CUE load failed
	ErrCodeNotFound        = "E005" // Path not found
	ErrCodeBuildFailed     = "E006" // CUE build failed
	ErrCodeWriteFailed     = "E007" // File write error
	ErrCodeUnknownCategory = "E008" // Category name not defined
	ErrCodeStore           = "E009" // Manifest store error
	ErrCodeSynthesis       = "E010" // Synthesis invariant violated

	// Category definition errors
	ErrCodeDefinition = "E100" // Malformed category definition
	ErrCodeUnits      = "E101" // Malformed units list
	ErrCodeStorage    = "E102" // Malformed storage override
	ErrCodeOperand    = "E103" // Malformed formula operand
)

// MapFieldToErrorCode maps a compiler error field to an error code.
func MapFieldToErrorCode(field string) string {
	switch {
	case strings.HasPrefix(field, "units"):
		return ErrCodeUnits
	case strings.HasPrefix(field, "storage"):
		return ErrCodeStorage
	case field == "operand":
		return ErrCodeOperand
	default:
		return ErrCodeDefinition
	}
}
