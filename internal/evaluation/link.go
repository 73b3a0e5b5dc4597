// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package evaluation

import (
	"context"
	"fmt"
	"io"
	"maps"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/citation-eval/pkg/types"
)

// LinkMetrics scores DOI assignment as a retrieval task: precision over the
// links the linker produced and recall over the links the ground truth has.
// When built with document splitting it also holds one nested LinkMetrics
// per document; nested results are never split further.
type LinkMetrics struct {
	counts     types.LinkCounts
	byDoc      map[string]*LinkMetrics
	unassigned int
}

// NewLinkMetrics counts correct, ground-truth and test links in ds. When
// splitByDoc is true, ds is grouped by ground-truth DOI (SplitByDocAttr)
// and every group gets its own unsplit LinkMetrics.
func NewLinkMetrics(ds types.Dataset, splitByDoc bool) *LinkMetrics {
	m := &LinkMetrics{counts: countLinks(ds)}
	if !splitByDoc {
		return m
	}

	split := SplitByDocAttr(ds, types.AttrDOI)
	m.byDoc = make(map[string]*LinkMetrics, len(split))
	for doc, sub := range split {
		m.byDoc[doc] = NewLinkMetrics(sub, false)
	}
	m.unassigned = len(Unassigned(ds, types.AttrDOI))
	return m
}

// newSplitLinkMetrics is NewLinkMetrics with a configurable split attribute
// and at most workers documents scored concurrently.
func newSplitLinkMetrics(ctx context.Context, ds types.Dataset, attr types.Attr, workers int) (*LinkMetrics, error) {
	m := &LinkMetrics{counts: countLinks(ds)}

	split := SplitByDocAttr(ds, attr)
	docs := DocKeys(split)
	scored := make([]*LinkMetrics, len(docs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(workers, 1))
	for i, doc := range docs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			scored[i] = NewLinkMetrics(split[doc], false)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("scoring documents: %w", err)
	}

	m.byDoc = make(map[string]*LinkMetrics, len(docs))
	for i, doc := range docs {
		m.byDoc[doc] = scored[i]
	}
	m.unassigned = len(Unassigned(ds, attr))
	return m, nil
}

func countLinks(ds types.Dataset) types.LinkCounts {
	var c types.LinkCounts
	for _, ref := range ds {
		gt, test := ref.GroundTruthDOI(), ref.TestDOI()
		if gt != "" && gt == test {
			c.Correct++
		}
		if gt != "" {
			c.GT++
		}
		if test != "" {
			c.Test++
		}
	}
	return c
}

// Counts returns the raw link counts.
func (m *LinkMetrics) Counts() types.LinkCounts { return m.counts }

// Correct returns the number of references linked to their ground-truth DOI.
func (m *LinkMetrics) Correct() int { return m.counts.Correct }

// GT returns the number of references with a ground-truth DOI.
func (m *LinkMetrics) GT() int { return m.counts.GT }

// Test returns the number of references the linker assigned a DOI to.
func (m *LinkMetrics) Test() int { return m.counts.Test }

// Unassigned returns the number of references that fell into no document.
func (m *LinkMetrics) Unassigned() int { return m.unassigned }

// Precision is correct/test, or 1 when the linker produced no links.
func (m *LinkMetrics) Precision() float64 {
	if m.counts.Test == 0 {
		return 1.
	}
	return float64(m.counts.Correct) / float64(m.counts.Test)
}

// Recall is correct/gt, or 1 when the ground truth has no links.
func (m *LinkMetrics) Recall() float64 {
	if m.counts.GT == 0 {
		return 1.
	}
	return float64(m.counts.Correct) / float64(m.counts.GT)
}

// F1 is the harmonic mean of precision and recall, or 0 when either is 0.
func (m *LinkMetrics) F1() float64 {
	precision := m.Precision()
	recall := m.Recall()
	if precision == 0 || recall == 0 {
		return 0.
	}
	return 2 * precision * recall / (precision + recall)
}

// Documents returns the document keys in sorted order. It is empty when the
// metrics were not split by document.
func (m *LinkMetrics) Documents() []string {
	return slices.Sorted(maps.Keys(m.byDoc))
}

// Document returns the nested metrics of one document.
func (m *LinkMetrics) Document(doc string) (*LinkMetrics, bool) {
	d, ok := m.byDoc[doc]
	return d, ok
}

func (m *LinkMetrics) byDocFunc(fn func(*LinkMetrics) float64) map[string]float64 {
	out := make(map[string]float64, len(m.byDoc))
	for doc, d := range m.byDoc {
		out[doc] = fn(d)
	}
	return out
}

// PrecisionByDoc maps every document to its precision.
func (m *LinkMetrics) PrecisionByDoc() map[string]float64 {
	return m.byDocFunc((*LinkMetrics).Precision)
}

// RecallByDoc maps every document to its recall.
func (m *LinkMetrics) RecallByDoc() map[string]float64 {
	return m.byDocFunc((*LinkMetrics).Recall)
}

// F1ByDoc maps every document to its F1.
func (m *LinkMetrics) F1ByDoc() map[string]float64 {
	return m.byDocFunc((*LinkMetrics).F1)
}

// averageByDoc returns the unweighted mean of fn over all documents.
func (m *LinkMetrics) averageByDoc(fn func(*LinkMetrics) float64) (float64, error) {
	if len(m.byDoc) == 0 {
		return 0, ErrNoDocuments
	}
	var sum float64
	for _, doc := range m.Documents() {
		sum += fn(m.byDoc[doc])
	}
	return sum / float64(len(m.byDoc)), nil
}

// AveragePrecisionByDoc returns the mean per-document precision. It returns
// ErrNoDocuments when there are no documents.
func (m *LinkMetrics) AveragePrecisionByDoc() (float64, error) {
	return m.averageByDoc((*LinkMetrics).Precision)
}

// AverageRecallByDoc returns the mean per-document recall. It returns
// ErrNoDocuments when there are no documents.
func (m *LinkMetrics) AverageRecallByDoc() (float64, error) {
	return m.averageByDoc((*LinkMetrics).Recall)
}

// AverageF1ByDoc returns the mean per-document F1. It returns
// ErrNoDocuments when there are no documents.
func (m *LinkMetrics) AverageF1ByDoc() (float64, error) {
	return m.averageByDoc((*LinkMetrics).F1)
}

// Summary writes global precision, recall and F1 to w, followed by the
// document averages when per-document results exist.
func (m *LinkMetrics) Summary(w io.Writer) error {
	fmt.Fprintln(w, "Link-based metrics:")
	fmt.Fprintf(w, "  Precision: %.4f\n", m.Precision())
	fmt.Fprintf(w, "  Recall: %.4f\n", m.Recall())
	fmt.Fprintf(w, "  F1: %.4f\n", m.F1())
	if len(m.byDoc) == 0 {
		return nil
	}

	precision, err := m.AveragePrecisionByDoc()
	if err != nil {
		return err
	}
	recall, err := m.AverageRecallByDoc()
	if err != nil {
		return err
	}
	f1, err := m.AverageF1ByDoc()
	if err != nil {
		return err
	}
	fmt.Fprintln(w, "Document-level metrics:")
	fmt.Fprintf(w, "  Average precision: %.4f\n", precision)
	fmt.Fprintf(w, "  Average recall: %.4f\n", recall)
	fmt.Fprintf(w, "  Average F1: %.4f\n", f1)
	if m.unassigned > 0 {
		fmt.Fprintf(w, "  Unassigned references: %d\n", m.unassigned)
	}
	return nil
}
