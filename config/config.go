package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/incilens-org/incilens/schema"
)

// ============================================================================
// CONFIG — One declarative file for an analysis run
// ============================================================================
// Replaces the per-script constants the raw analyses accumulate: the
// field-rename mapping, population aliases, which dataset file to use
// (an explicit choice here, not a process-global toggle), report sizes.
// ============================================================================

// Config is the full analysis-run configuration.
type Config struct {
	Data       DataConfig       `yaml:"data"`
	Mapping    schema.Mapping   `yaml:"mapping"`
	Population PopulationConfig `yaml:"population"`
	Analysis   AnalysisConfig   `yaml:"analysis"`
	Log        LogConfig        `yaml:"log"`
}

// DataConfig selects the incident dataset.
type DataConfig struct {
	Path string `yaml:"path"`
	// SampleRows > 0 truncates the input to a development-size subset.
	SampleRows int `yaml:"sample_rows"`
}

// PopulationConfig points at the population baseline and carries the
// caller-side alias table for names the baseline spells differently.
type PopulationConfig struct {
	Path    string            `yaml:"path"`
	Aliases map[string]string `yaml:"aliases"`
}

// AnalysisConfig sizes the reports.
type AnalysisConfig struct {
	TopN            int     `yaml:"top_n"`
	TopRegions      int     `yaml:"top_regions"`
	TopTargetTypes  int     `yaml:"top_target_types"`
	MinActorAttacks int     `yaml:"min_actor_attacks"`
	Since           int     `yaml:"since"`
	Scale           float64 `yaml:"scale"`
	FocusCountry    string  `yaml:"focus_country"`
}

// LogConfig configures logrus.
type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// Default returns the configuration used when no file is supplied: the GTD
// column mapping, per-million rates, and the alias spellings the reference
// population dataset is known to need.
func Default() *Config {
	return &Config{
		Mapping: schema.GTDMapping(),
		Population: PopulationConfig{
			Aliases: map[string]string{
				"Russia":      "Russian Federation",
				"South Korea": "Korea, Republic of",
			},
		},
		Analysis: AnalysisConfig{
			TopN:            20,
			TopRegions:      6,
			TopTargetTypes:  8,
			MinActorAttacks: 100,
			Since:           1990,
			Scale:           1_000_000,
		},
		Log: LogConfig{Level: "info"},
	}
}

// Load reads a YAML config file; absent keys keep their default values.
// Unmarshaling into a zero Config keeps a custom mapping from being merged
// with the default one — a file that lists renames replaces them wholesale.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.applyDefaults()
	return cfg, nil
}

// applyDefaults backfills zero values a partial file left out.
func (c *Config) applyDefaults() {
	def := Default()
	if len(c.Mapping.Rename) == 0 {
		c.Mapping = def.Mapping
	}
	if len(c.Population.Aliases) == 0 {
		c.Population.Aliases = def.Population.Aliases
	}
	if c.Analysis.TopN == 0 {
		c.Analysis.TopN = def.Analysis.TopN
	}
	if c.Analysis.TopRegions == 0 {
		c.Analysis.TopRegions = def.Analysis.TopRegions
	}
	if c.Analysis.TopTargetTypes == 0 {
		c.Analysis.TopTargetTypes = def.Analysis.TopTargetTypes
	}
	if c.Analysis.MinActorAttacks == 0 {
		c.Analysis.MinActorAttacks = def.Analysis.MinActorAttacks
	}
	if c.Analysis.Since == 0 {
		c.Analysis.Since = def.Analysis.Since
	}
	if c.Analysis.Scale == 0 {
		c.Analysis.Scale = def.Analysis.Scale
	}
	if c.Log.Level == "" {
		c.Log.Level = def.Log.Level
	}
}
