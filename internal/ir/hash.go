package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/google/uuid"
)

// Domain prefixes for content-addressed identity. The version suffix
// enables future algorithm migration.
const (
	DomainConversion = "unitgen/conversion/v1"
	DomainManifest   = "unitgen/manifest/v1"
)

// specNamespace scopes the name-based UUIDs of conversion specs.
var specNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/roach88/unitgen/conversion"))

// hashWithDomain computes SHA-256 with domain separation:
// SHA256(domain + 0x00 + data).
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// canonicalSpec is the digest payload of a conversion. The ID and the
// uniqueness flag are derived values and stay out of it.
func canonicalSpec(s ConversionSpec) map[string]any {
	return map[string]any{
		"category":    s.Category,
		"declaration": s.Declaration,
		"body":        s.Body,
	}
}

// Digest computes the content digest of a conversion spec.
func Digest(s ConversionSpec) (string, error) {
	data, err := MarshalCanonical(canonicalSpec(s))
	if err != nil {
		return "", fmt.Errorf("Digest: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainConversion, data), nil
}

// SpecID returns the stable name-based (v5) UUID of a conversion. It
// depends only on the category and the declaration, so it survives body
// changes and lets manifests line up conversions across runs.
func SpecID(category, declaration string) string {
	return uuid.NewSHA1(specNamespace, []byte(category+"\x00"+declaration)).String()
}

// MustDigest is like Digest but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustDigest(s ConversionSpec) string {
	d, err := Digest(s)
	if err != nil {
		panic(err)
	}
	return d
}
