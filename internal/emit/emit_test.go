package emit

import (
	"context"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/unitgen/internal/catalog"
	"github.com/roach88/unitgen/internal/ir"
	"github.com/roach88/unitgen/internal/numeric"
	"github.com/roach88/unitgen/internal/oracle"
	"github.com/roach88/unitgen/internal/synth"
)

func percentage() *ir.Category {
	return &ir.Category{
		Name:     "percentage",
		Strategy: ir.StrategySame,
		Units:    []ir.UnitVariant{{ID: "percent", Abbreviation: "pct"}},
		Storage:  numeric.DefaultStorage(),
	}
}

// fixture returns the two sign-changing conversions of percentage and
// their oracle cases.
func fixture(t *testing.T) (*ir.Category, []ir.ConversionSpec, []oracle.Group) {
	t.Helper()
	cat := percentage()
	eps := cat.UnitEndpoints()
	pT, pU := eps[0], eps[1]

	var specs []ir.ConversionSpec
	var groups []oracle.Group
	for _, p := range [][2]ir.Endpoint{{pT, pU}, {pU, pT}} {
		c, err := synth.Build(cat, p[0], p[1])
		require.NoError(t, err)
		specs = append(specs, c.Spec)

		cases, err := oracle.Cases(cat, p[0], p[1])
		require.NoError(t, err)
		groups = append(groups, oracle.Group{Endpoint: p[0], Cases: cases})
	}
	return cat, specs, groups
}

func golden(t *testing.T) *goldie.Goldie {
	return goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
}

func TestHeaderGolden(t *testing.T) {
	cat, specs, _ := fixture(t)
	golden(t).Assert(t, "percentage_header", []byte(Header(cat, specs)))
}

func TestSourceGolden(t *testing.T) {
	cat, specs, _ := fixture(t)
	golden(t).Assert(t, "percentage_source", []byte(Source(cat, specs)))
}

func TestTestSourceGolden(t *testing.T) {
	cat, _, groups := fixture(t)
	golden(t).Assert(t, "percentage_test", []byte(TestSource(cat, groups)))
}

func TestSourceSkipsDeclarationOnlySpecs(t *testing.T) {
	cat, specs, _ := fixture(t)
	specs[1].Body = ""
	out := Source(cat, specs)
	assert.Contains(t, out, "pct_t_to_pct_u(percent_t percent)\n{")
	assert.NotContains(t, out, "pct_u_to_pct_t")
}

func TestFiles(t *testing.T) {
	cat, err := catalog.Lookup("distance")
	require.NoError(t, err)
	r, err := (&synth.Synthesizer{}).Category(context.Background(), cat)
	require.NoError(t, err)
	groups, err := oracle.New(nil).ForCategory(cat)
	require.NoError(t, err)

	files := Files(r, groups)
	require.Len(t, files, 3)

	header := files["distance.h"]
	assert.True(t, strings.HasSuffix(header, "#endif /* UNITGEN_DISTANCE_H */\n"))
	assert.Contains(t, header, "typedef int millimetres_t;\n")
	assert.Contains(t, header, "centimetres_t mm_t_to_cm_t(millimetres_t millimetres);\n")
	assert.Equal(t, len(r.Conversions), strings.Count(header, ");\n"))

	source := files["distance.c"]
	assert.Equal(t, len(r.Conversions), strings.Count(source, "    return "))
	assert.Contains(t, source, "    return ((centimetres_t) (millimetres / 10));\n")

	test := files["test_distance.c"]
	assert.Contains(t, test, "assert(mm_t_to_cm_t(5) == 0);")
	assert.Contains(t, test, "test_metres_d();\n")
	assert.Equal(t, 12, strings.Count(test, "static void test_"))
}
