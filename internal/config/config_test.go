package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerlens-dev/ledgerlens/internal/categorize"
)

func TestSaveLoadRoundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledgerlens.yaml")

	cfg := Default()
	cfg.Pipeline.TaxRate = 0.07
	cfg.Rules = []categorize.Rule{
		{Name: "rent", Category: categorize.CategoryCost, Keywords: []string{"miete", "rent"}},
	}
	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.InDelta(t, 0.19, cfg.Pipeline.TaxRate, 0.001)
	assert.InDelta(t, 0.7, cfg.Pipeline.MinNumericRatio, 0.001)
	assert.Equal(t, 3, cfg.Pipeline.RecurringMinCount)
	assert.Empty(t, cfg.Rules)
}

func TestLoadNotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("pipeline: [not a map"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing config")
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yaml")
	require.NoError(t, os.WriteFile(path, []byte("pipeline:\n  tax_rate: 0.2\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.InDelta(t, 0.2, cfg.Pipeline.TaxRate, 0.001)
	// Keys the file does not mention stay at their defaults.
	assert.Equal(t, 3, cfg.Pipeline.RecurringMinCount)
	assert.InDelta(t, 0.7, cfg.Pipeline.MinNumericRatio, 0.001)
}

func TestLoadRulesOnlyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	content := "rules:\n  - name: rent\n    category: cost\n    keywords: [miete]\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Len(t, cfg.Rules, 1)

	// A rules-only file must not zero the VAT math.
	opts := cfg.Options()
	assert.InDelta(t, 0.19, opts.TaxRate, 0.001)
}

func TestLoadExplicitZeroTaxRate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "zero.yaml")
	require.NoError(t, os.WriteFile(path, []byte("pipeline:\n  tax_rate: 0\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Zero(t, cfg.Pipeline.TaxRate)
	assert.Zero(t, cfg.Options().TaxRate)
}

func TestYAMLFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledgerlens.yaml")
	require.NoError(t, Save(path, Default()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	contents := string(data)

	assert.Contains(t, contents, "tax_rate: 0.19")
	assert.Contains(t, contents, "min_numeric_ratio: 0.7")
	assert.Contains(t, contents, "recurring_min_count: 3")
}

func TestOptions(t *testing.T) {
	cfg := Default()
	cfg.Rules = []categorize.Rule{
		{Name: "rent", Category: categorize.CategoryCost, Keywords: []string{"miete"}},
	}

	opts := cfg.Options()
	assert.InDelta(t, 0.19, opts.TaxRate, 0.001)
	assert.Equal(t, 3, opts.RecurringMinCount)
	assert.InDelta(t, 0.7, opts.Cleaner.MinNumericRatio, 0.001)

	// User rules come after the built-ins.
	require.Len(t, opts.Rules, len(categorize.DefaultRules)+1)
	assert.Equal(t, "rent", opts.Rules[len(opts.Rules)-1].Name)
	assert.Equal(t, categorize.DefaultRules[0].Name, opts.Rules[0].Name)
}
