//go:build mage

package main

import (
	"fmt"
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const sampleDataset = "datasets/synthetic.json"

// Synth writes a reproducible synthetic dataset to datasets/synthetic.json.
func Synth() error {
	mg.Deps(Init, Build)
	return sh.RunV(filepath.Join(binDir, binName), "synth", "--out", sampleDataset)
}

// Evaluate scores the synthetic dataset, saves the run and exports the
// summary to reports/.
func Evaluate() error {
	mg.Deps(Synth)
	out := filepath.Join("reports", "synthetic.xlsx")
	if err := sh.RunV(filepath.Join(binDir, binName), "evaluate", sampleDataset,
		"--format", "table", "--save", "--export", out); err != nil {
		return err
	}
	fmt.Printf("Exported %s\n", out)
	return nil
}
