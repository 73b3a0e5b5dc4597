// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pdiddy/citation-eval/internal/dataset"
	"github.com/pdiddy/citation-eval/internal/evaluation"
	"github.com/pdiddy/citation-eval/internal/logging"
	"github.com/pdiddy/citation-eval/internal/report"
	"github.com/pdiddy/citation-eval/internal/store"
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate <dataset>",
	Short: "Score a linked dataset against its ground truth",
	Long: `Evaluate reads a JSON or YAML dataset in which every record carries a
ground-truth target (target_gt) and the linker's target (target_test), and
prints reference-based and link-based metrics.

References are grouped into documents by the ground-truth value of
--split-attr; per-document precision, recall and F1 are averaged without
weighting. Use --save to keep the run in the store and --export to write
the summary to a .yaml, .json or .xlsx file.`,
	Args: cobra.ExactArgs(1),
	RunE: runEvaluate,
}

func runEvaluate(cmd *cobra.Command, args []string) error {
	log := logging.New("evaluate")
	path := args[0]

	format, err := report.ParseFormat(cfg.Evaluation.Format)
	if err != nil {
		return err
	}
	opts, err := evaluationOptions(cmd)
	if err != nil {
		return err
	}

	ds, err := dataset.Load(path)
	if err != nil {
		return err
	}
	if len(ds) == 0 {
		return fmt.Errorf("%s: %w", path, evaluation.ErrEmptyDataset)
	}
	log.Debugw("dataset loaded", "path", path, "references", len(ds))

	res, err := evaluation.Evaluate(cmd.Context(), ds, opts)
	if err != nil {
		return err
	}

	name, _ := cmd.Flags().GetString("name")
	if name == "" {
		name = filepath.Base(path)
	}
	run := res.Run(name)

	if save, _ := cmd.Flags().GetBool("save"); save {
		st, err := store.NewStore(cfg.Store)
		if err != nil {
			return err
		}
		defer st.Close()
		if err := st.SaveRun(cmd.Context(), &run); err != nil {
			return err
		}
		log.Infow("run saved", "id", run.ID)
	}

	if err := report.Write(cmd.OutOrStdout(), res, format, &run); err != nil {
		return err
	}

	if out, _ := cmd.Flags().GetString("export"); out != "" {
		s, err := report.Summarize(res)
		if err != nil {
			return err
		}
		s.RunID, s.Dataset = run.ID, run.Dataset
		if err := report.Export(out, s); err != nil {
			return err
		}
		log.Infow("summary exported", "path", out)
	}
	return nil
}

// evaluationOptions builds evaluation options from the configuration;
// --no-split overrides evaluation.split_by_doc.
func evaluationOptions(cmd *cobra.Command) (evaluation.Options, error) {
	opts, err := evaluation.OptionsFromConfig(cfg.Evaluation)
	if err != nil {
		return evaluation.Options{}, err
	}
	if noSplit, _ := cmd.Flags().GetBool("no-split"); noSplit {
		opts.SplitByDoc = false
	}
	return opts, nil
}

func init() {
	evaluateCmd.Flags().String("format", "text", "output format: text, table, markdown, json, yaml")
	evaluateCmd.Flags().String("split-attr", "DOI", "attribute grouping references into documents: DOI, ISSN, container-title, year")
	evaluateCmd.Flags().Bool("no-split", false, "skip per-document metrics")
	evaluateCmd.Flags().Int("workers", 1, "documents scored concurrently")
	evaluateCmd.Flags().Bool("save", false, "save the run to the store")
	evaluateCmd.Flags().String("name", "", "run name (default: dataset file name)")
	evaluateCmd.Flags().String("export", "", "also write the summary to a .yaml, .json or .xlsx file")

	bindFlag("evaluation.format", evaluateCmd, "format")
	bindFlag("evaluation.split_attr", evaluateCmd, "split-attr")
	bindFlag("evaluation.workers", evaluateCmd, "workers")

	rootCmd.AddCommand(evaluateCmd)
}
