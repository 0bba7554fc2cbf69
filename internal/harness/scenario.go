package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Scenario is a set of literal conversion checks loaded from YAML.
type Scenario struct {
	// Name identifies the scenario and names its golden file.
	Name string `yaml:"name"`

	// Description is a human-readable summary.
	Description string `yaml:"description"`

	// Specs is a directory of CUE category definitions. When empty the
	// built-in catalog is used.
	Specs string `yaml:"specs,omitempty"`

	// Checks are evaluated in order against the synthesized conversions.
	Checks []Check `yaml:"checks,omitempty"`

	// Oracle lists categories whose every conversion is evaluated against
	// the oracle's generated cases.
	Oracle []string `yaml:"oracle,omitempty"`
}

// Check calls one conversion with a C literal and compares the result.
type Check struct {
	Category string `yaml:"category"`
	Function string `yaml:"function"`
	Input    string `yaml:"input"`
	Expect   string `yaml:"expect"`
}

// LoadScenario reads and validates a scenario file. A relative specs
// directory is resolved against the directory of the file.
func LoadScenario(path string) (*Scenario, error) {
	return LoadScenarioWithBasePath(path, filepath.Dir(path))
}

// LoadScenarioWithBasePath reads a scenario file, resolving a relative
// specs directory against basePath.
func LoadScenarioWithBasePath(path, basePath string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if scenario.Specs != "" && !filepath.IsAbs(scenario.Specs) && basePath != "" {
		scenario.Specs = filepath.Join(basePath, scenario.Specs)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if len(s.Checks) == 0 && len(s.Oracle) == 0 {
		return fmt.Errorf("at least one check or oracle category is required")
	}

	if s.Specs != "" {
		info, err := os.Stat(s.Specs)
		if err != nil {
			return fmt.Errorf("specs directory not found: %s", s.Specs)
		}
		if !info.IsDir() {
			return fmt.Errorf("specs must be a directory: %s", s.Specs)
		}
	}

	for i, c := range s.Checks {
		switch {
		case c.Category == "":
			return fmt.Errorf("checks[%d]: category is required", i)
		case c.Function == "":
			return fmt.Errorf("checks[%d]: function is required", i)
		case c.Input == "":
			return fmt.Errorf("checks[%d]: input is required", i)
		case c.Expect == "":
			return fmt.Errorf("checks[%d]: expect is required", i)
		}
	}

	for i, name := range s.Oracle {
		if name == "" {
			return fmt.Errorf("oracle[%d]: category name is required", i)
		}
	}

	return nil
}
