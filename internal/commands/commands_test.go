package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerlens-dev/ledgerlens/internal/config"
)

const sampleCSV = `Buchungsdatum,Verwendungszweck,Betrag,IBAN
05.01.2024,Stripe payout,"1.000,00",DE01
31.01.2024,Gehalt Januar,"-3.000,00",DE01
10.01.2024,REWE Markt,"-54,20",DE01
`

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeSample(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "export.csv")
	require.NoError(t, os.WriteFile(path, []byte(sampleCSV), 0o644))
	return path
}

func TestInitCommand(t *testing.T) {
	dir := t.TempDir()

	out, err := runCommand(t, "init", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote")

	cfg, err := config.Load(filepath.Join(dir, "ledgerlens.yaml"))
	require.NoError(t, err)
	assert.InDelta(t, 0.19, cfg.Pipeline.TaxRate, 0.001)
}

func TestInitCommandRefusesOverwrite(t *testing.T) {
	dir := t.TempDir()

	_, err := runCommand(t, "init", dir)
	require.NoError(t, err)

	_, err = runCommand(t, "init", dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	_, err = runCommand(t, "init", dir, "--force")
	require.NoError(t, err)
}

func TestProcessCommand(t *testing.T) {
	out, err := runCommand(t, "process", writeSample(t))
	require.NoError(t, err)

	assert.Contains(t, out, "mode: bookkeeping (requested auto)")
	assert.Contains(t, out, "revenue:    1000.00")
	assert.Contains(t, out, "payroll:    -3000.00")
	assert.Contains(t, out, "by category:")
}

func TestProcessCommandJSON(t *testing.T) {
	out, err := runCommand(t, "process", writeSample(t), "--json")
	require.NoError(t, err)

	assert.Contains(t, out, `"mode_used": "bookkeeping"`)
	assert.Contains(t, out, `"revenue": "1000"`)
	assert.Contains(t, out, `"run_id"`)
}

func TestProcessCommandInvalidMode(t *testing.T) {
	_, err := runCommand(t, "process", writeSample(t), "--mode", "fast")
	require.Error(t, err)
}

func TestProcessCommandMissingFile(t *testing.T) {
	_, err := runCommand(t, "process", filepath.Join(t.TempDir(), "nope.csv"))
	require.Error(t, err)
}

func TestProcessCommandWithConfig(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "ledgerlens.yaml")
	cfg := config.Default()
	cfg.Pipeline.TaxRate = 0
	require.NoError(t, config.Save(cfgPath, cfg))

	out, err := runCommand(t, "process", writeSample(t), "--config", cfgPath)
	require.NoError(t, err)
	assert.Contains(t, out, "vat amount: 0.00")
}

func TestChartsCommand(t *testing.T) {
	out, err := runCommand(t, "charts", writeSample(t))
	require.NoError(t, err)
	assert.Contains(t, out, "line")
}
