package pipeline

import (
	"github.com/ledgerlens-dev/ledgerlens/internal/cleaner"
	"github.com/ledgerlens-dev/ledgerlens/internal/loader"
	"github.com/ledgerlens-dev/ledgerlens/internal/standardize"
	"github.com/ledgerlens-dev/ledgerlens/internal/table"
)

// ProcessFile loads a CSV or XLSX export and runs the pipeline over it.
func ProcessFile(path string, mode Mode, opts Options) (*Result, error) {
	raw, err := loader.Load(path)
	if err != nil {
		return nil, err
	}
	return Process(raw, mode, opts)
}

// LoadTransactions loads a file, cleans it, and standardizes the core
// bookkeeping columns, without categorization or KPIs.
func LoadTransactions(path string) (*table.Table, error) {
	raw, err := loader.Load(path)
	if err != nil {
		return nil, err
	}
	cleaned, err := cleaner.Clean(raw)
	if err != nil {
		return nil, err
	}
	return standardize.Standardize(cleaned)
}
