// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package evaluation

import (
	"fmt"
	"io"

	"github.com/pdiddy/citation-eval/pkg/types"
)

// ReferenceMetrics classifies every reference of a dataset into one of the
// five outcome categories and reports the resulting fractions.
type ReferenceMetrics struct {
	total  int
	counts map[types.Outcome]int
}

// NewReferenceMetrics classifies each reference of ds.
func NewReferenceMetrics(ds types.Dataset) *ReferenceMetrics {
	counts := make(map[types.Outcome]int, len(types.Outcomes))
	for _, o := range types.Outcomes {
		counts[o] = 0
	}
	for _, ref := range ds {
		counts[Classify(ref)]++
	}
	return &ReferenceMetrics{total: len(ds), counts: counts}
}

// Classify returns the outcome category of a single reference. The
// categories are disjoint: gt != test rules out both being absent, so at
// most one of the last two cases applies.
func Classify(ref types.Reference) types.Outcome {
	gt, test := ref.GroundTruthDOI(), ref.TestDOI()
	switch {
	case gt == test && gt != "":
		return types.OutcomeCorrectLink
	case gt == test:
		return types.OutcomeCorrectNoLink
	case gt != "" && test != "":
		return types.OutcomeIncorrectLink
	case gt == "":
		return types.OutcomeIncorrectExists
	default:
		return types.OutcomeIncorrectMissing
	}
}

// Total returns the number of classified references.
func (m *ReferenceMetrics) Total() int { return m.total }

// Count returns the number of references in category o.
func (m *ReferenceMetrics) Count(o types.Outcome) int { return m.counts[o] }

// Counts returns a copy of the per-category counts.
func (m *ReferenceMetrics) Counts() map[types.Outcome]int {
	out := make(map[types.Outcome]int, len(m.counts))
	for o, n := range m.counts {
		out[o] = n
	}
	return out
}

// Fraction returns the share of references in category o. The dataset must
// be non-empty; otherwise ErrEmptyDataset is returned.
func (m *ReferenceMetrics) Fraction(o types.Outcome) (float64, error) {
	if m.total == 0 {
		return 0, ErrEmptyDataset
	}
	return float64(m.counts[o]) / float64(m.total), nil
}

// Accuracy returns the share of correct outcomes (correct link plus correct
// no-link). The dataset must be non-empty; otherwise ErrEmptyDataset is
// returned.
func (m *ReferenceMetrics) Accuracy() (float64, error) {
	if m.total == 0 {
		return 0, ErrEmptyDataset
	}
	correct := m.counts[types.OutcomeCorrectLink] + m.counts[types.OutcomeCorrectNoLink]
	return float64(correct) / float64(m.total), nil
}

// Summary writes the accuracy and every category fraction to w.
func (m *ReferenceMetrics) Summary(w io.Writer) error {
	acc, err := m.Accuracy()
	if err != nil {
		return err
	}
	fmt.Fprintln(w, "Reference-based metrics:")
	fmt.Fprintf(w, "  Accuracy: %.4f\n", acc)
	fmt.Fprintln(w, "  Fractions of references:")
	for _, o := range types.Outcomes {
		frac, err := m.Fraction(o)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "    - %s: %.4f (%d)\n", o, frac, m.counts[o])
	}
	return nil
}
