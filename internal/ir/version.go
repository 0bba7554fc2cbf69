package ir

// Version constants for the manifest schema and the generator.
const (
	// ManifestVersion is the manifest schema version.
	ManifestVersion = "1"

	// GeneratorVersion is the unitgen version stamped into manifests.
	GeneratorVersion = "0.1.0"
)
