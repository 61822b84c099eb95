package scenario

import (
	"errors"
	"fmt"
	"os"

	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	"github.com/notargets/quadforest/forest"
)

// LastQuadrant selects the final quadrant of the global sequence as the
// target of the single nonzero partition weight
const LastQuadrant int64 = -1

// Config selects the scenarios to run and the parameters they share
type Config struct {
	// Scenarios are run in order. Empty means DefaultScenarios.
	Scenarios []string `yaml:"scenarios"`

	// Ranks is the number of simulated processes
	Ranks int `yaml:"ranks"`

	// RefineLevel caps refinement; tree t stops at RefineLevel - t%3
	RefineLevel int8 `yaml:"refine_level"`

	// WeightTarget is the global index of the quadrant carrying the only
	// nonzero weight in the skewed partition, or LastQuadrant
	WeightTarget int64 `yaml:"weight_target"`

	// MeshFile is the quadrilateral mesh used by the mesh scenario
	MeshFile string `yaml:"mesh_file,omitempty"`
}

// DefaultConfig returns the configuration used when no file is given
func DefaultConfig() Config {
	return Config{
		Scenarios:    DefaultScenarios(),
		Ranks:        2,
		RefineLevel:  6,
		WeightTarget: LastQuadrant,
	}
}

// LoadConfig reads a YAML configuration. Fields missing from the file keep
// their default values.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if len(cfg.Scenarios) == 0 {
		cfg.Scenarios = DefaultScenarios()
	}
	return cfg, cfg.Validate()
}

var ErrInvalidConfig = errors.New("invalid scenario configuration")

// Validate reports every problem with the configuration
func (c Config) Validate() (err error) {
	if c.Ranks < 1 {
		err = multierr.Append(err, fmt.Errorf("%w: ranks %d", ErrInvalidConfig, c.Ranks))
	}
	if c.RefineLevel < 0 || c.RefineLevel > forest.MaxLevel {
		err = multierr.Append(err, fmt.Errorf("%w: refine level %d outside [0, %d]",
			ErrInvalidConfig, c.RefineLevel, forest.MaxLevel))
	}
	if c.WeightTarget < LastQuadrant {
		err = multierr.Append(err, fmt.Errorf("%w: weight target %d", ErrInvalidConfig, c.WeightTarget))
	}
	for _, name := range c.Scenarios {
		s, ok := registry[name]
		if !ok {
			err = multierr.Append(err, fmt.Errorf("%w: unknown scenario %q", ErrInvalidConfig, name))
			continue
		}
		if s.needsMesh && c.MeshFile == "" {
			err = multierr.Append(err, fmt.Errorf("%w: scenario %q needs a mesh file", ErrInvalidConfig, name))
		}
	}
	return
}

// Marshal renders the configuration as YAML
func (c Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}
