package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/viper"

	"github.com/roach88/unitgen/internal/synth"
)

// DefaultStorePath is where check keeps its run manifests.
const DefaultStorePath = ".unitgen/manifest.db"

// Config is the unitgen configuration, read from unitgen.yaml and
// UNITGEN_* environment variables. Flags override it.
type Config struct {
	SpecsDir string `mapstructure:"specs_dir"`
	Workers  int    `mapstructure:"workers"`
	Format   string `mapstructure:"format"`
	Store    string `mapstructure:"store"`
}

// LoadConfig reads the configuration. An empty path looks for unitgen.yaml
// in the working directory, whose absence is not an error.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("specs_dir", "")
	v.SetDefault("workers", synth.DefaultWorkers)
	v.SetDefault("format", "text")
	v.SetDefault("store", DefaultStorePath)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("unitgen")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("UNITGEN")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func validateConfig(cfg *Config) error {
	if cfg.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", cfg.Workers)
	}
	if !isValidFormat(cfg.Format) {
		return fmt.Errorf("invalid format %q: must be one of %v", cfg.Format, ValidFormats)
	}
	if cfg.Store == "" {
		return fmt.Errorf("store path is required")
	}
	return nil
}
