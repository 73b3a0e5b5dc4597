// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package evaluation scores a reference linker against ground truth.
// It classifies each reference into an outcome category (ReferenceMetrics)
// and computes link precision, recall and F1 globally and per document
// (LinkMetrics). All results are immutable snapshots of one dataset.
package evaluation

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/pdiddy/citation-eval/pkg/types"
)

var (
	// ErrEmptyDataset is returned by fraction and accuracy computations on
	// a dataset with no references.
	ErrEmptyDataset = errors.New("empty dataset")

	// ErrNoDocuments is returned by per-document averages when no document
	// results exist.
	ErrNoDocuments = errors.New("no documents")
)

// Options controls Evaluate.
type Options struct {
	// SplitByDoc enables per-document link metrics.
	SplitByDoc bool

	// SplitAttr selects the grouping attribute (types.AttrDOI when empty).
	SplitAttr types.Attr

	// Workers bounds how many documents are scored concurrently.
	Workers int
}

// DefaultOptions splits by DOI using a single worker.
func DefaultOptions() Options {
	return Options{SplitByDoc: true, SplitAttr: types.AttrDOI, Workers: 1}
}

// OptionsFromConfig overlays cfg on DefaultOptions. A non-positive worker
// count keeps the default.
func OptionsFromConfig(cfg types.EvaluationConfig) (Options, error) {
	opts := DefaultOptions()
	attr, err := types.ParseAttr(cfg.SplitAttr)
	if err != nil {
		return Options{}, err
	}
	opts.SplitAttr = attr
	opts.SplitByDoc = cfg.SplitByDoc
	if cfg.Workers > 0 {
		opts.Workers = cfg.Workers
	}
	return opts, nil
}

// Results bundles the reference-level and link-level metrics of one dataset.
type Results struct {
	Reference *ReferenceMetrics
	Link      *LinkMetrics

	splitAttr types.Attr
}

// NewResults evaluates ds with the default options.
func NewResults(ds types.Dataset) *Results {
	return &Results{
		Reference: NewReferenceMetrics(ds),
		Link:      NewLinkMetrics(ds, true),
		splitAttr: types.AttrDOI,
	}
}

// Evaluate evaluates ds with opts. Per-document scoring honours ctx
// cancellation; the metrics are identical to NewResults for the same
// attribute.
func Evaluate(ctx context.Context, ds types.Dataset, opts Options) (*Results, error) {
	res := &Results{Reference: NewReferenceMetrics(ds)}
	if !opts.SplitByDoc {
		res.Link = NewLinkMetrics(ds, false)
		return res, nil
	}

	attr := opts.SplitAttr
	if attr == "" {
		attr = types.AttrDOI
	}
	link, err := newSplitLinkMetrics(ctx, ds, attr, opts.Workers)
	if err != nil {
		return nil, err
	}
	res.Link = link
	res.splitAttr = attr
	return res, nil
}

// SplitAttr returns the document grouping attribute, or "" when the results
// were not split by document.
func (r *Results) SplitAttr() types.Attr { return r.splitAttr }

// Summary writes the reference-level summary followed by the link-level
// summary.
func (r *Results) Summary(w io.Writer) error {
	if err := r.Reference.Summary(w); err != nil {
		return fmt.Errorf("reference metrics: %w", err)
	}
	if err := r.Link.Summary(w); err != nil {
		return fmt.Errorf("link metrics: %w", err)
	}
	return nil
}

// Run snapshots the counts behind r so they can be persisted. The ID is
// left empty for the store to assign.
func (r *Results) Run(dataset string) types.Run {
	run := types.Run{
		Dataset:    dataset,
		SplitAttr:  r.splitAttr,
		CreatedAt:  time.Now().UTC(),
		Total:      r.Reference.Total(),
		Outcomes:   r.Reference.Counts(),
		Links:      r.Link.Counts(),
		Unassigned: r.Link.Unassigned(),
	}
	for _, doc := range r.Link.Documents() {
		d, _ := r.Link.Document(doc)
		run.Documents = append(run.Documents, types.DocumentCounts{Doc: doc, LinkCounts: d.Counts()})
	}
	return run
}

// FromRun rebuilds results from a persisted run. Every metric of the
// returned results equals the metric of the results the run was taken from.
func FromRun(run types.Run) *Results {
	counts := make(map[types.Outcome]int, len(types.Outcomes))
	for _, o := range types.Outcomes {
		counts[o] = run.Outcomes[o]
	}

	link := &LinkMetrics{counts: run.Links, unassigned: run.Unassigned}
	if run.SplitAttr != "" {
		link.byDoc = make(map[string]*LinkMetrics, len(run.Documents))
		for _, d := range run.Documents {
			link.byDoc[d.Doc] = &LinkMetrics{counts: d.LinkCounts}
		}
	}

	return &Results{
		Reference: &ReferenceMetrics{total: run.Total, counts: counts},
		Link:      link,
		splitAttr: run.SplitAttr,
	}
}
