// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/citation-eval/internal/evaluation"
	"github.com/pdiddy/citation-eval/internal/report"
	"github.com/pdiddy/citation-eval/internal/store"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Manage saved evaluation runs (list, show, export, delete)",
	Long: `Runs manages evaluations saved with evaluate --save or the HTTP API.
Stored runs keep counts only; metrics are recomputed when shown.`,
}

// --- list subcommand ---

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved runs, newest first",
	Args:  cobra.NoArgs,
	RunE:  runRunsList,
}

func runRunsList(cmd *cobra.Command, args []string) error {
	format, err := runsFormat(cmd)
	if err != nil {
		return err
	}
	limit, _ := cmd.Flags().GetInt("limit")

	st, err := store.NewStore(cfg.Store)
	if err != nil {
		return err
	}
	defer st.Close()

	runs, err := st.ListRuns(cmd.Context(), limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 && format != report.FormatJSON && format != report.FormatYAML {
		fmt.Fprintln(cmd.OutOrStdout(), "No runs saved.")
		return nil
	}
	return report.WriteRuns(cmd.OutOrStdout(), runs, format)
}

// --- show subcommand ---

var runsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print the metrics of a saved run",
	Args:  cobra.ExactArgs(1),
	RunE:  runRunsShow,
}

func runRunsShow(cmd *cobra.Command, args []string) error {
	format, err := runsFormat(cmd)
	if err != nil {
		return err
	}

	st, err := store.NewStore(cfg.Store)
	if err != nil {
		return err
	}
	defer st.Close()

	run, err := st.GetRun(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	return report.Write(cmd.OutOrStdout(), evaluation.FromRun(run), format, &run)
}

// --- export subcommand ---

var runsExportCmd = &cobra.Command{
	Use:   "export <id>",
	Short: "Export a saved run to YAML, JSON or XLSX",
	Long: `Export writes the summary of a saved run to --out. The file extension
selects the format: .yaml, .json or .xlsx.`,
	Args: cobra.ExactArgs(1),
	RunE: runRunsExport,
}

func runRunsExport(cmd *cobra.Command, args []string) error {
	out, _ := cmd.Flags().GetString("out")
	if out == "" {
		out = args[0] + ".yaml"
	}

	st, err := store.NewStore(cfg.Store)
	if err != nil {
		return err
	}
	defer st.Close()

	run, err := st.GetRun(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	s, err := report.Summarize(evaluation.FromRun(run))
	if err != nil {
		return err
	}
	s.RunID, s.Dataset = run.ID, run.Dataset
	if err := report.Export(out, s); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Exported run %s to %s\n", run.ID, out)
	return nil
}

// --- delete subcommand ---

var runsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a saved run",
	Args:  cobra.ExactArgs(1),
	RunE:  runRunsDelete,
}

func runRunsDelete(cmd *cobra.Command, args []string) error {
	st, err := store.NewStore(cfg.Store)
	if err != nil {
		return err
	}
	defer st.Close()

	if err := st.DeleteRun(cmd.Context(), args[0]); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted run %s\n", args[0])
	return nil
}

// --- shared helpers ---

// runsFormat reads --format, falling back to evaluation.format.
func runsFormat(cmd *cobra.Command) (report.Format, error) {
	name := cfg.Evaluation.Format
	if cmd.Flags().Changed("format") {
		name, _ = cmd.Flags().GetString("format")
	}
	return report.ParseFormat(name)
}

func init() {
	runsListCmd.Flags().Int("limit", 0, "maximum runs listed (0 = store.max_results)")
	runsListCmd.Flags().String("format", "table", "output format: table, markdown, json, yaml")
	runsShowCmd.Flags().String("format", "text", "output format: text, table, markdown, json, yaml")
	runsExportCmd.Flags().String("out", "", "output file (default: <id>.yaml)")

	runsCmd.AddCommand(runsListCmd)
	runsCmd.AddCommand(runsShowCmd)
	runsCmd.AddCommand(runsExportCmd)
	runsCmd.AddCommand(runsDeleteCmd)

	rootCmd.AddCommand(runsCmd)
}
