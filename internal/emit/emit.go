// Package emit renders synthesised conversions and oracle test cases as C
// text: a header of typedefs and declarations, a source file of bodies and
// a self-checking test program. Nothing here touches the filesystem.
package emit

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/roach88/unitgen/internal/ir"
	"github.com/roach88/unitgen/internal/oracle"
	"github.com/roach88/unitgen/internal/synth"
)

// Generator accumulates C text with indentation tracking.
type Generator struct {
	buf    *bytes.Buffer
	indent int
}

// NewGenerator creates an empty generator.
func NewGenerator() *Generator {
	return &Generator{buf: &bytes.Buffer{}}
}

func (g *Generator) line(format string, args ...any) {
	if format == "" {
		g.buf.WriteByte('\n')
		return
	}
	g.buf.WriteString(strings.Repeat("    ", g.indent))
	fmt.Fprintf(g.buf, format, args...)
	g.buf.WriteByte('\n')
}

func (g *Generator) banner() {
	g.line("/* Generated by unitgen %s. Do not edit. */", ir.GeneratorVersion)
	g.line("")
}

// String returns the text written so far.
func (g *Generator) String() string { return g.buf.String() }

// HeaderName is the file name of a category's header.
func HeaderName(category string) string { return category + ".h" }

// SourceName is the file name of a category's source file.
func SourceName(category string) string { return category + ".c" }

// TestName is the file name of a category's test program.
func TestName(category string) string { return "test_" + category + ".c" }

// Files renders every file of a category, keyed by file name.
func Files(r *synth.Result, groups []oracle.Group) map[string]string {
	name := r.Category.Name
	specs := r.Specs()
	return map[string]string{
		HeaderName(name): Header(r.Category, specs),
		SourceName(name): Source(r.Category, specs),
		TestName(name):   TestSource(r.Category, groups),
	}
}

// Header renders the typedefs of cat's unit endpoints and a declaration
// per spec.
func Header(cat *ir.Category, specs []ir.ConversionSpec) string {
	g := NewGenerator()
	guard := "UNITGEN_" + strings.ToUpper(cat.Name) + "_H"

	g.banner()
	g.line("#ifndef %s", guard)
	g.line("#define %s", guard)
	g.line("")
	g.line("#include <stdint.h>")
	g.line("")
	for _, e := range cat.UnitEndpoints() {
		g.line("typedef %s %s;", e.Kind.CType(), e.TypeName())
	}
	g.line("")
	for _, s := range specs {
		g.line("%s;", s.Declaration)
	}
	g.line("")
	g.line("#endif /* %s */", guard)
	return g.String()
}

// Source renders a definition per spec. Specs without a body are skipped.
func Source(cat *ir.Category, specs []ir.ConversionSpec) string {
	g := NewGenerator()
	g.banner()
	g.line("#include \"%s\"", HeaderName(cat.Name))
	g.line("")
	g.line("#include <float.h>")
	g.line("#include <limits.h>")
	g.line("#include <math.h>")
	g.line("#include <stdint.h>")
	for _, s := range specs {
		if s.Body == "" {
			continue
		}
		g.line("")
		g.line("%s", s.Declaration)
		g.line("{")
		g.indent++
		g.line("return %s;", s.Body)
		g.indent--
		g.line("}")
	}
	return g.String()
}

// TestSource renders a test program asserting every case, one function
// per group.
func TestSource(cat *ir.Category, groups []oracle.Group) string {
	g := NewGenerator()
	g.banner()
	g.line("#include <assert.h>")
	g.line("#include <float.h>")
	g.line("#include <limits.h>")
	g.line("#include <stdint.h>")
	g.line("")
	g.line("#include \"%s\"", HeaderName(cat.Name))

	for _, grp := range groups {
		g.line("")
		g.line("static void test_%s(void)", grp.Endpoint.TypeName())
		g.line("{")
		g.indent++
		for _, tc := range grp.Cases {
			g.line("assert(%s(%s) == %s);", tc.Function, tc.Input, tc.Expected)
		}
		g.indent--
		g.line("}")
	}

	g.line("")
	g.line("int main(void)")
	g.line("{")
	g.indent++
	for _, grp := range groups {
		g.line("test_%s();", grp.Endpoint.TypeName())
	}
	g.line("return 0;")
	g.indent--
	g.line("}")
	return g.String()
}
