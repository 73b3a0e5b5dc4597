// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/citation-eval/internal/dataset"
)

var synthCmd = &cobra.Command{
	Use:   "synth",
	Short: "Generate a synthetic linked dataset",
	Long: `Synth writes a reproducible dataset of fake references with a controlled
mix of outcomes. The rate flags give the share of each non-correct outcome;
the remainder are correct links. Without --out the dataset is printed as
JSON.`,
	Args: cobra.NoArgs,
	RunE: runSynth,
}

func runSynth(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()
	opts := dataset.DefaultSynthOptions()
	opts.Count, _ = flags.GetInt("count")
	opts.Docs, _ = flags.GetInt("docs")
	opts.Seed, _ = flags.GetInt64("seed")
	opts.CorrectNoLinkRate, _ = flags.GetFloat64("no-link-rate")
	opts.IncorrectLinkRate, _ = flags.GetFloat64("wrong-link-rate")
	opts.IncorrectExistsRate, _ = flags.GetFloat64("spurious-link-rate")
	opts.IncorrectMissingRate, _ = flags.GetFloat64("missing-link-rate")

	ds, err := dataset.Synthesize(opts)
	if err != nil {
		return err
	}

	out, _ := flags.GetString("out")
	if out == "" {
		return dataset.Encode(cmd.OutOrStdout(), ds, dataset.FormatJSON)
	}
	if err := dataset.Save(out, ds); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d references to %s\n", len(ds), out)
	return nil
}

func init() {
	d := dataset.DefaultSynthOptions()
	synthCmd.Flags().Int("count", d.Count, "number of references")
	synthCmd.Flags().Int("docs", d.Docs, "number of distinct cited documents")
	synthCmd.Flags().Int64("seed", d.Seed, "random seed")
	synthCmd.Flags().Float64("no-link-rate", d.CorrectNoLinkRate, "share of references with no link on either side")
	synthCmd.Flags().Float64("wrong-link-rate", d.IncorrectLinkRate, "share of references linked to the wrong document")
	synthCmd.Flags().Float64("spurious-link-rate", d.IncorrectExistsRate, "share of links without ground truth")
	synthCmd.Flags().Float64("missing-link-rate", d.IncorrectMissingRate, "share of ground-truth links the linker missed")
	synthCmd.Flags().String("out", "", "output file (.json, .yaml or .yml)")

	rootCmd.AddCommand(synthCmd)
}
