// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package report renders evaluation results for people and programs:
// plain text, terminal and Markdown tables, JSON, YAML, and exported files.
package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/citation-eval/internal/evaluation"
	"github.com/pdiddy/citation-eval/pkg/types"
)

// Format selects how Write renders results.
type Format string

const (
	FormatText     Format = "text"
	FormatTable    Format = "table"
	FormatMarkdown Format = "markdown"
	FormatJSON     Format = "json"
	FormatYAML     Format = "yaml"
)

// ParseFormat validates a user-supplied format name. An empty name selects
// FormatText.
func ParseFormat(name string) (Format, error) {
	switch f := Format(name); f {
	case "":
		return FormatText, nil
	case FormatText, FormatTable, FormatMarkdown, FormatJSON, FormatYAML:
		return f, nil
	}
	return "", fmt.Errorf("unsupported format %q: use text, table, markdown, json or yaml", name)
}

// OutcomeRow is one outcome category with its count and share.
type OutcomeRow struct {
	Outcome  types.Outcome `json:"outcome" yaml:"outcome"`
	Count    int           `json:"count" yaml:"count"`
	Fraction float64       `json:"fraction" yaml:"fraction"`
}

// DocumentRow holds the link metrics of one document.
type DocumentRow struct {
	Doc       string  `json:"doc" yaml:"doc"`
	Correct   int     `json:"correct" yaml:"correct"`
	GT        int     `json:"gt" yaml:"gt"`
	Test      int     `json:"test" yaml:"test"`
	Precision float64 `json:"precision" yaml:"precision"`
	Recall    float64 `json:"recall" yaml:"recall"`
	F1        float64 `json:"f1" yaml:"f1"`
}

// Averages holds the document-averaged link metrics.
type Averages struct {
	Precision float64 `json:"precision" yaml:"precision"`
	Recall    float64 `json:"recall" yaml:"recall"`
	F1        float64 `json:"f1" yaml:"f1"`
}

// Summary is the serializable form of evaluation results.
type Summary struct {
	RunID     string           `json:"run_id,omitempty" yaml:"run_id,omitempty"`
	Dataset   string           `json:"dataset,omitempty" yaml:"dataset,omitempty"`
	SplitAttr types.Attr       `json:"split_attr,omitempty" yaml:"split_attr,omitempty"`
	Total     int              `json:"total" yaml:"total"`
	Accuracy  float64          `json:"accuracy" yaml:"accuracy"`
	Outcomes  []OutcomeRow     `json:"outcomes" yaml:"outcomes"`
	Links     types.LinkCounts `json:"links" yaml:"links"`
	Precision float64          `json:"precision" yaml:"precision"`
	Recall    float64          `json:"recall" yaml:"recall"`
	F1        float64          `json:"f1" yaml:"f1"`

	// DocumentAverages is nil when the results were not split by document
	// or no document exists.
	DocumentAverages *Averages     `json:"document_averages,omitempty" yaml:"document_averages,omitempty"`
	Documents        []DocumentRow `json:"documents,omitempty" yaml:"documents,omitempty"`
	Unassigned       int           `json:"unassigned" yaml:"unassigned"`
}

// Summarize collects every metric of res. It fails with
// evaluation.ErrEmptyDataset when res covers no references.
func Summarize(res *evaluation.Results) (Summary, error) {
	acc, err := res.Reference.Accuracy()
	if err != nil {
		return Summary{}, err
	}

	s := Summary{
		SplitAttr:  res.SplitAttr(),
		Total:      res.Reference.Total(),
		Accuracy:   acc,
		Links:      res.Link.Counts(),
		Precision:  res.Link.Precision(),
		Recall:     res.Link.Recall(),
		F1:         res.Link.F1(),
		Unassigned: res.Link.Unassigned(),
	}
	for _, o := range types.Outcomes {
		frac, err := res.Reference.Fraction(o)
		if err != nil {
			return Summary{}, err
		}
		s.Outcomes = append(s.Outcomes, OutcomeRow{Outcome: o, Count: res.Reference.Count(o), Fraction: frac})
	}

	for _, doc := range res.Link.Documents() {
		d, _ := res.Link.Document(doc)
		c := d.Counts()
		s.Documents = append(s.Documents, DocumentRow{
			Doc:       doc,
			Correct:   c.Correct,
			GT:        c.GT,
			Test:      c.Test,
			Precision: d.Precision(),
			Recall:    d.Recall(),
			F1:        d.F1(),
		})
	}

	avg, err := averages(res.Link)
	switch {
	case errors.Is(err, evaluation.ErrNoDocuments):
	case err != nil:
		return Summary{}, err
	default:
		s.DocumentAverages = &avg
	}
	return s, nil
}

func averages(m *evaluation.LinkMetrics) (Averages, error) {
	var a Averages
	var err error
	if a.Precision, err = m.AveragePrecisionByDoc(); err != nil {
		return a, err
	}
	if a.Recall, err = m.AverageRecallByDoc(); err != nil {
		return a, err
	}
	if a.F1, err = m.AverageF1ByDoc(); err != nil {
		return a, err
	}
	return a, nil
}

// Write renders res to w in format. Run metadata (ID, dataset) is taken
// from meta when non-nil.
func Write(w io.Writer, res *evaluation.Results, format Format, meta *types.Run) error {
	if format == FormatText {
		return res.Summary(w)
	}

	s, err := Summarize(res)
	if err != nil {
		return err
	}
	if meta != nil {
		s.RunID = meta.ID
		s.Dataset = meta.Dataset
	}

	switch format {
	case FormatTable:
		return writeTables(w, s, ASCII)
	case FormatMarkdown:
		return writeTables(w, s, Markdown)
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(s)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		defer enc.Close()
		return enc.Encode(s)
	}
	return fmt.Errorf("unsupported format %q", format)
}
