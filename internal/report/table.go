// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package report

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/citation-eval/internal/evaluation"
	"github.com/pdiddy/citation-eval/pkg/types"
)

// Mode controls how tables are rendered.
type Mode int

const (
	ASCII    Mode = iota // Fixed-width terminal tables
	Markdown             // GitHub-flavoured Markdown tables
)

func newTable(title string, m Mode) table.Writer {
	w := table.NewWriter()
	if m == ASCII {
		w.SetStyle(table.StyleLight)
		w.SetTitle(title)
	}
	return w
}

func render(w io.Writer, t table.Writer, title string, m Mode) {
	if m == Markdown {
		fmt.Fprintf(w, "### %s\n\n%s\n\n", title, t.RenderMarkdown())
		return
	}
	fmt.Fprintf(w, "%s\n\n", t.Render())
}

func ratio(v float64) string { return fmt.Sprintf("%.4f", v) }

// writeTables renders s as an overview table, an outcome table and, when
// present, a per-document table.
func writeTables(w io.Writer, s Summary, m Mode) error {
	rightAligned := func(cols ...int) []table.ColumnConfig {
		cfgs := make([]table.ColumnConfig, len(cols))
		for i, c := range cols {
			cfgs[i] = table.ColumnConfig{Number: c, Align: text.AlignRight}
		}
		return cfgs
	}

	overview := newTable("Overview", m)
	overview.AppendHeader(table.Row{"Metric", "Value"})
	if s.RunID != "" {
		overview.AppendRow(table.Row{"Run", s.RunID})
	}
	if s.Dataset != "" {
		overview.AppendRow(table.Row{"Dataset", s.Dataset})
	}
	overview.AppendRows([]table.Row{
		{"References", s.Total},
		{"Accuracy", ratio(s.Accuracy)},
		{"Precision", ratio(s.Precision)},
		{"Recall", ratio(s.Recall)},
		{"F1", ratio(s.F1)},
	})
	if a := s.DocumentAverages; a != nil {
		overview.AppendRows([]table.Row{
			{"Documents", len(s.Documents)},
			{"Average precision", ratio(a.Precision)},
			{"Average recall", ratio(a.Recall)},
			{"Average F1", ratio(a.F1)},
			{"Unassigned references", s.Unassigned},
		})
	}
	overview.SetColumnConfigs(rightAligned(2))
	render(w, overview, "Overview", m)

	outcomes := newTable("Reference outcomes", m)
	outcomes.AppendHeader(table.Row{"Outcome", "Count", "Fraction"})
	for _, o := range s.Outcomes {
		outcomes.AppendRow(table.Row{o.Outcome, o.Count, ratio(o.Fraction)})
	}
	outcomes.AppendFooter(table.Row{"total", s.Total, ratio(1)})
	outcomes.SetColumnConfigs(rightAligned(2, 3))
	render(w, outcomes, "Reference outcomes", m)

	if len(s.Documents) == 0 {
		return nil
	}
	docs := newTable(fmt.Sprintf("Documents by %s", s.SplitAttr), m)
	docs.AppendHeader(table.Row{"Document", "Correct", "GT", "Test", "Precision", "Recall", "F1"})
	for _, d := range s.Documents {
		docs.AppendRow(table.Row{d.Doc, d.Correct, d.GT, d.Test, ratio(d.Precision), ratio(d.Recall), ratio(d.F1)})
	}
	docs.SetColumnConfigs(append(rightAligned(2, 3, 4, 5, 6, 7),
		table.ColumnConfig{Number: 1, WidthMax: 48}))
	render(w, docs, fmt.Sprintf("Documents by %s", s.SplitAttr), m)
	return nil
}

// WriteRuns lists stored runs with their headline metrics. FormatText
// renders the same table as FormatTable.
func WriteRuns(w io.Writer, runs []types.Run, format Format) error {
	rows := make([]RunRow, 0, len(runs))
	for _, run := range runs {
		rows = append(rows, runRow(run))
	}

	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(rows)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		defer enc.Close()
		return enc.Encode(rows)
	}

	m := ASCII
	if format == FormatMarkdown {
		m = Markdown
	}
	t := newTable("Runs", m)
	t.AppendHeader(table.Row{"ID", "Created", "Dataset", "References", "Accuracy", "F1", "Split"})
	for _, r := range rows {
		t.AppendRow(table.Row{r.ID, r.CreatedAt.Format(time.DateTime), r.Dataset, r.Total, ratio(r.Accuracy), ratio(r.F1), r.SplitAttr})
	}
	render(w, t, "Runs", m)
	return nil
}

// RunRow is one line of a run listing.
type RunRow struct {
	ID        string     `json:"id" yaml:"id"`
	CreatedAt time.Time  `json:"created_at" yaml:"created_at"`
	Dataset   string     `json:"dataset" yaml:"dataset"`
	SplitAttr types.Attr `json:"split_attr,omitempty" yaml:"split_attr,omitempty"`
	Total     int        `json:"total" yaml:"total"`
	Accuracy  float64    `json:"accuracy" yaml:"accuracy"`
	F1        float64    `json:"f1" yaml:"f1"`
}

func runRow(run types.Run) RunRow {
	res := evaluation.FromRun(run)
	// An empty run has no accuracy; it is listed as zero.
	acc, _ := res.Reference.Accuracy()
	return RunRow{
		ID:        run.ID,
		CreatedAt: run.CreatedAt,
		Dataset:   run.Dataset,
		SplitAttr: run.SplitAttr,
		Total:     run.Total,
		Accuracy:  acc,
		F1:        res.Link.F1(),
	}
}
