package ir

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/unitgen/internal/numeric"
)

func testSpec(body string) ConversionSpec {
	mm := UnitVariant{ID: "millimetres", Abbreviation: "mm"}
	cm := UnitVariant{ID: "centimetres", Abbreviation: "cm", Multiplier: 10}
	src := UnitEndpoint(mm, numeric.Signed, numeric.Int)
	dst := UnitEndpoint(cm, numeric.Signed, numeric.Int)
	return ConversionSpec{
		ID:          SpecID("distance", Declaration(src, dst)),
		Category:    "distance",
		Name:        FunctionName(src, dst),
		Source:      src,
		Dest:        dst,
		SourceType:  src.TypeName(),
		DestType:    dst.TypeName(),
		Param:       ParamName(src, dst),
		Declaration: Declaration(src, dst),
		Body:        body,
	}
}

func TestDigestDeterminism(t *testing.T) {
	a, err := Digest(testSpec("((centimetres_t) (millimetres / 10))"))
	require.NoError(t, err)
	b, err := Digest(testSpec("((centimetres_t) (millimetres / 10))"))
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.Len(t, a, 64, "hex-encoded SHA-256")
}

func TestDigestChangesWithBody(t *testing.T) {
	a := MustDigest(testSpec("((centimetres_t) (millimetres / 10))"))
	b := MustDigest(testSpec("((centimetres_t) (millimetres / 100))"))
	assert.NotEqual(t, a, b)
}

func TestDigestIgnoresDerivedFields(t *testing.T) {
	s := testSpec("x")
	u := s
	u.UniqueName = true
	u.ID = "other"
	assert.Equal(t, MustDigest(s), MustDigest(u))
}

func TestDomainSeparation(t *testing.T) {
	data := []byte(`{"a":1}`)
	assert.NotEqual(t, hashWithDomain(DomainConversion, data), hashWithDomain(DomainManifest, data))
	// The separator keeps domain and payload from running together.
	assert.NotEqual(t, hashWithDomain("ab", []byte("c")), hashWithDomain("a", []byte("bc")))
}

func TestSpecIDStable(t *testing.T) {
	s := testSpec("a")
	id := SpecID(s.Category, s.Declaration)
	assert.Equal(t, id, SpecID(s.Category, s.Declaration))
	assert.NotEqual(t, id, SpecID("length", s.Declaration))

	parsed, err := uuid.Parse(id)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(5), parsed.Version())
}
