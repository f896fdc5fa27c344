// Package config reads and writes the ledgerlens.yaml settings file.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ledgerlens-dev/ledgerlens/internal/categorize"
	"github.com/ledgerlens-dev/ledgerlens/internal/cleaner"
	"github.com/ledgerlens-dev/ledgerlens/internal/kpi"
	"github.com/ledgerlens-dev/ledgerlens/internal/pipeline"
)

// Config represents the top-level ledgerlens.yaml configuration.
type Config struct {
	Pipeline PipelineConfig `yaml:"pipeline"`
	// Rules are user-defined categorization rules, evaluated after the
	// built-in list.
	Rules []categorize.Rule `yaml:"rules,omitempty"`
}

// PipelineConfig holds the tunable pipeline thresholds.
type PipelineConfig struct {
	TaxRate           float64 `yaml:"tax_rate"`
	MinNumericRatio   float64 `yaml:"min_numeric_ratio"`
	MinDateRatio      float64 `yaml:"min_date_ratio"`
	RecurringMinCount int     `yaml:"recurring_min_count"`
}

// Load reads a ledgerlens.yaml file from disk. Omitted keys keep their
// default values, so a rules-only file still runs with the standard
// thresholds; an explicit zero (e.g. "tax_rate: 0") is honored.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with the standard thresholds.
func Default() *Config {
	return &Config{
		Pipeline: PipelineConfig{
			TaxRate:           kpi.DefaultTaxRate,
			MinNumericRatio:   0.7,
			MinDateRatio:      0.7,
			RecurringMinCount: categorize.DefaultMinCount,
		},
	}
}

// Options converts the config into pipeline options. User-defined rules run
// after the built-in list so they can only claim rows the defaults leave
// uncategorized.
func (c *Config) Options() pipeline.Options {
	rules := make([]categorize.Rule, 0, len(categorize.DefaultRules)+len(c.Rules))
	rules = append(rules, categorize.DefaultRules...)
	rules = append(rules, c.Rules...)

	opts := pipeline.Options{
		RecurringMinCount: c.Pipeline.RecurringMinCount,
		Cleaner: cleaner.Options{
			MinNumericRatio: c.Pipeline.MinNumericRatio,
			MinDateRatio:    c.Pipeline.MinDateRatio,
		},
		Rules: rules,
	}
	return opts.WithTaxRate(c.Pipeline.TaxRate)
}
