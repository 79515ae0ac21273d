// Package config handles loading and validation of forewarn.yaml project
// configuration. Malformed configuration is a setup-time failure: nothing is
// half-loaded and no graph work begins until validation passes.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/dwsmith1983/forewarn/internal/discretize"
	"github.com/dwsmith1983/forewarn/internal/search"
	"github.com/dwsmith1983/forewarn/pkg/types"
)

// Search parameter defaults.
const (
	DefaultMaxDepth         = 50
	DefaultLookbackWindow   = 50
	DefaultMinPatternLength = 3
	DefaultAStarWeight      = 1.0
	DefaultSampleCap        = 1000
)

// DataConfig describes the historical sensor CSV to ingest.
type DataConfig struct {
	Path            string   `yaml:"path"`
	TimestampColumn string   `yaml:"timestampColumn,omitempty"`
	MachineIDColumn string   `yaml:"machineIdColumn,omitempty"`
	FailureColumn   string   `yaml:"failureColumn,omitempty"`
	SensorColumns   []string `yaml:"sensorColumns,omitempty"`

	// SampleCap bounds the batch size; larger batches are sampled with a
	// failure-biased policy. Zero means DefaultSampleCap, negative disables
	// sampling.
	SampleCap int `yaml:"sampleCap,omitempty"`
}

// GraphConfig configures discretization and state composition.
type GraphConfig struct {
	Discretization         map[string]discretize.Scheme `yaml:"discretization"`
	StateComponents        []string                     `yaml:"stateComponents"`
	MaxSimilarityNeighbors int                          `yaml:"maxSimilarityNeighbors,omitempty"`
}

// SearchParams are the user-tunable search knobs.
type SearchParams struct {
	MaxDepth int `yaml:"maxDepth,omitempty"`

	// LookbackWindow is accepted but not enforced by the current
	// algorithms; it is reserved for a future windowed search.
	LookbackWindow int `yaml:"lookbackWindow,omitempty"`

	MinPatternLength int     `yaml:"minPatternLength,omitempty"`
	Heuristic        string  `yaml:"heuristic,omitempty"`
	AStarWeight      float64 `yaml:"aStarWeight,omitempty"`
}

// Threshold is a per-sensor min/max bound for the rule classifier. Nil
// bounds are unchecked.
type Threshold struct {
	Min *float64 `yaml:"min,omitempty"`
	Max *float64 `yaml:"max,omitempty"`
}

// ClassifierConfig holds global thresholds plus per-equipment overrides.
type ClassifierConfig struct {
	Thresholds map[string]Threshold            `yaml:"thresholds"`
	Equipment  map[string]map[string]Threshold `yaml:"equipment,omitempty"`
}

// StoreConfig configures the SQLite run store.
type StoreConfig struct {
	Path string `yaml:"path"`
}

// Config is the root forewarn.yaml structure.
type Config struct {
	Data       DataConfig          `yaml:"data"`
	Graph      GraphConfig         `yaml:"graph"`
	Search     SearchParams        `yaml:"search"`
	Classifier ClassifierConfig    `yaml:"classifier,omitempty"`
	Alerts     []types.AlertConfig `yaml:"alerts,omitempty"`
	Store      StoreConfig         `yaml:"store,omitempty"`
	OutputDir  string              `yaml:"outputDir,omitempty"`
}

// Load reads and parses forewarn.yaml from the given directory, applying
// defaults and validating before returning.
func Load(dir string) (*Config, error) {
	path := filepath.Join(dir, "forewarn.yaml")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	cfg.ApplyDefaults()
	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return &cfg, nil
}

// ApplyDefaults fills unset search and sampling knobs.
func (c *Config) ApplyDefaults() {
	if c.Search.MaxDepth == 0 {
		c.Search.MaxDepth = DefaultMaxDepth
	}
	if c.Search.LookbackWindow == 0 {
		c.Search.LookbackWindow = DefaultLookbackWindow
	}
	if c.Search.MinPatternLength == 0 {
		c.Search.MinPatternLength = DefaultMinPatternLength
	}
	if c.Search.Heuristic == "" {
		c.Search.Heuristic = search.HeuristicTimeToFailure
	}
	if c.Search.AStarWeight == 0 {
		c.Search.AStarWeight = DefaultAStarWeight
	}
	if c.Data.SampleCap == 0 {
		c.Data.SampleCap = DefaultSampleCap
	}
	if c.OutputDir == "" {
		c.OutputDir = "outputs"
	}
}

// Validate checks the structural invariants the rest of the engine relies on
// without rechecking: bins/labels lengths, strictly increasing boundaries,
// state components backed by schemes, and a known heuristic name.
func Validate(cfg *Config) error {
	if len(cfg.Graph.StateComponents) == 0 {
		return fmt.Errorf("graph.stateComponents must not be empty")
	}

	for sensor, scheme := range cfg.Graph.Discretization {
		if len(scheme.Bins) < 2 {
			return fmt.Errorf("sensor %q: at least two bin boundaries required", sensor)
		}
		if len(scheme.Labels) != len(scheme.Bins)-1 {
			return fmt.Errorf("sensor %q: %d labels for %d boundaries, want %d",
				sensor, len(scheme.Labels), len(scheme.Bins), len(scheme.Bins)-1)
		}
		for i := 1; i < len(scheme.Bins); i++ {
			if scheme.Bins[i] <= scheme.Bins[i-1] {
				return fmt.Errorf("sensor %q: bin boundaries must be strictly increasing", sensor)
			}
		}
	}

	for _, component := range cfg.Graph.StateComponents {
		if _, ok := cfg.Graph.Discretization[component]; !ok {
			return fmt.Errorf("state component %q has no discretization scheme", component)
		}
	}

	if _, err := search.HeuristicByName(cfg.Search.Heuristic); err != nil {
		return err
	}
	if cfg.Search.MaxDepth < 1 {
		return fmt.Errorf("search.maxDepth must be positive")
	}

	for _, ac := range cfg.Alerts {
		switch ac.Type {
		case types.AlertConsole:
		case types.AlertWebhook:
			if ac.URL == "" {
				return fmt.Errorf("webhook alert requires a url")
			}
		case types.AlertFile:
			if ac.Path == "" {
				return fmt.Errorf("file alert requires a path")
			}
		default:
			return fmt.Errorf("unknown alert type %q", ac.Type)
		}
	}

	return nil
}
