// Package catalog holds the built-in unit categories, defined in CUE and
// embedded in the binary.
package catalog

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"

	"github.com/roach88/unitgen/internal/compiler"
	"github.com/roach88/unitgen/internal/ir"
)

//go:embed defs/*.cue
var defs embed.FS

var (
	loadOnce sync.Once
	loaded   []*ir.Category
	loadErr  error
)

// Load returns the built-in categories, validated and sorted by name. The
// definitions are compiled once; callers must not modify the result.
func Load() ([]*ir.Category, error) {
	loadOnce.Do(func() {
		loaded, loadErr = compile(defs, "defs/*.cue")
	})
	return loaded, loadErr
}

// Names returns the names of the built-in categories.
func Names() []string {
	cats, err := Load()
	if err != nil {
		return nil
	}
	names := make([]string, len(cats))
	for i, c := range cats {
		names[i] = c.Name
	}
	return names
}

// Lookup returns the built-in category with the given name.
func Lookup(name string) (*ir.Category, error) {
	cats, err := Load()
	if err != nil {
		return nil, err
	}
	for _, c := range cats {
		if c.Name == name {
			return c, nil
		}
	}
	return nil, fmt.Errorf("unknown category %q", name)
}

// Value returns the unified CUE value of the embedded definitions.
func Value() (cue.Value, error) {
	return build(cuecontext.New(), defs, "defs/*.cue")
}

// LoadDir compiles the .cue files directly inside dir into categories,
// validated and sorted by name. The files are unified as one value, so a
// category may be split across files.
func LoadDir(dir string) ([]*ir.Category, error) {
	return compile(os.DirFS(dir), "*.cue")
}

func build(ctx *cue.Context, fsys fs.FS, pattern string) (cue.Value, error) {
	files, err := fs.Glob(fsys, pattern)
	if err != nil {
		return cue.Value{}, err
	}
	if len(files) == 0 {
		return cue.Value{}, fmt.Errorf("no files match %s", pattern)
	}
	sort.Strings(files)

	v := ctx.CompileString("{}")
	for _, name := range files {
		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			return cue.Value{}, fmt.Errorf("reading %s: %w", name, err)
		}
		f := ctx.CompileBytes(data, cue.Filename(path.Base(name)))
		if err := f.Err(); err != nil {
			return cue.Value{}, fmt.Errorf("compiling %s: %w", name, err)
		}
		v = v.Unify(f)
	}
	if err := v.Err(); err != nil {
		return cue.Value{}, fmt.Errorf("unifying catalog: %w", err)
	}
	return v, nil
}

func compile(fsys fs.FS, pattern string) ([]*ir.Category, error) {
	v, err := build(cuecontext.New(), fsys, pattern)
	if err != nil {
		return nil, err
	}

	iter, err := v.LookupPath(cue.ParsePath("category")).Fields()
	if err != nil {
		return nil, fmt.Errorf("catalog: %w", err)
	}
	var cats []*ir.Category
	for iter.Next() {
		cat, err := compiler.Category(iter.Value())
		if err != nil {
			return nil, fmt.Errorf("catalog: %w", err)
		}
		cats = append(cats, cat)
	}
	sort.Slice(cats, func(i, j int) bool { return cats[i].Name < cats[j].Name })
	return cats, nil
}
