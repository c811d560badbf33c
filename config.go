package sonar

import (
	"fmt"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// Config is the pipeline configuration. Defaults come from DefaultConfig;
// stored overrides are decoded on top of them, field by field, instead of
// merging untyped maps at runtime.
type Config struct {
	// DestRoot is the destination root for compiled artifacts. Outputs land
	// at <DestRoot>/<theme>/<key>.css.
	DestRoot string `yaml:"destination"`

	// Backend selects the registered compiler adapter by name.
	Backend string `yaml:"backend"`

	// Live disables filesystem staleness scanning: an existing artifact
	// with a cache record is trusted until the cache is cleared explicitly.
	// A latency/stability tradeoff for production.
	Live bool `yaml:"live"`

	// Debug emits the normalized source and the compiled output to the log
	// sink at debug level.
	Debug bool `yaml:"debug"`
}

// DefaultConfig returns the configuration applied when no overrides are
// stored.
func DefaultConfig() Config {
	return Config{
		DestRoot: "public/sonar",
		Backend:  "none",
	}
}

// LoadConfig reads YAML overrides from path on top of DefaultConfig.
// A missing file is not an error; defaults apply unchanged.
func LoadConfig(fs afero.Fs, path string) (Config, error) {
	cfg := DefaultConfig()

	exists, err := afero.Exists(fs, path)
	if err != nil {
		return cfg, fmt.Errorf("failed to check config %s: %w", path, err)
	}
	if !exists {
		return cfg, nil
	}

	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return cfg, nil
}
