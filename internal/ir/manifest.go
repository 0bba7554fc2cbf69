package ir

import (
	"fmt"
	"sort"
)

// ManifestEntry records the identity of one conversion in a run.
type ManifestEntry struct {
	Signature string `json:"signature"`
	ID        string `json:"id"`
	Digest    string `json:"digest"`
}

// Manifest summarises the conversions synthesised for a category. Two
// runs over the same definitions produce equal manifests.
type Manifest struct {
	Category  string          `json:"category"`
	Version   string          `json:"version"`
	Generator string          `json:"generator"`
	Digest    string          `json:"digest"`
	Entries   []ManifestEntry `json:"entries"`
}

// BuildManifest computes the manifest of a category's conversions. Entries
// are ordered by signature regardless of the input order.
func BuildManifest(category string, specs []ConversionSpec) (*Manifest, error) {
	m := &Manifest{
		Category:  category,
		Version:   ManifestVersion,
		Generator: GeneratorVersion,
		Entries:   make([]ManifestEntry, 0, len(specs)),
	}
	for _, s := range specs {
		d, err := Digest(s)
		if err != nil {
			return nil, fmt.Errorf("manifest %s: %s: %w", category, s.Signature(), err)
		}
		m.Entries = append(m.Entries, ManifestEntry{Signature: s.Signature(), ID: s.ID, Digest: d})
	}
	sort.SliceStable(m.Entries, func(i, j int) bool {
		return m.Entries[i].Signature < m.Entries[j].Signature
	})

	entries := make([]any, len(m.Entries))
	for i, e := range m.Entries {
		entries[i] = map[string]any{
			"signature": e.Signature,
			"digest":    e.Digest,
		}
	}
	data, err := MarshalCanonical(map[string]any{
		"category": category,
		"version":  ManifestVersion,
		"entries":  entries,
	})
	if err != nil {
		return nil, fmt.Errorf("manifest %s: %w", category, err)
	}
	m.Digest = hashWithDomain(DomainManifest, data)
	return m, nil
}

// DiffManifests compares two manifests of the same category and returns
// the signatures added, removed, and changed from old to cur.
func DiffManifests(old, cur *Manifest) (added, removed, changed []string) {
	prev := make(map[string]string, len(old.Entries))
	for _, e := range old.Entries {
		prev[e.Signature] = e.Digest
	}
	seen := make(map[string]bool, len(cur.Entries))
	for _, e := range cur.Entries {
		seen[e.Signature] = true
		d, ok := prev[e.Signature]
		switch {
		case !ok:
			added = append(added, e.Signature)
		case d != e.Digest:
			changed = append(changed, e.Signature)
		}
	}
	for _, e := range old.Entries {
		if !seen[e.Signature] {
			removed = append(removed, e.Signature)
		}
	}
	return added, removed, changed
}
