// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package evaluation

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/citation-eval/pkg/types"
)

func TestLinkMetricsScenarios(t *testing.T) {
	tests := []struct {
		name          string
		ds            types.Dataset
		wantPrecision float64
		wantRecall    float64
		wantF1        float64
	}{
		{"A correct link", types.Dataset{ref("10.1/a", "10.1/a")}, 1, 1, 1},
		{"B nothing to link", types.Dataset{ref("", "")}, 1, 1, 1},
		{"C incorrect link", types.Dataset{ref("10.1/a", "10.1/b")}, 0, 0, 0},
		{"D missing link", types.Dataset{ref("10.1/a", "")}, 1, 0, 0},
		{"E spurious link", types.Dataset{ref("", "10.1/x")}, 0, 1, 0},
		{"empty dataset", types.Dataset{}, 1, 1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewLinkMetrics(tt.ds, false)
			assert.Equal(t, tt.wantPrecision, m.Precision(), "precision")
			assert.Equal(t, tt.wantRecall, m.Recall(), "recall")
			assert.Equal(t, tt.wantF1, m.F1(), "f1")
		})
	}
}

func TestLinkMetricsCounts(t *testing.T) {
	m := NewLinkMetrics(mixedDataset(), false)
	want := types.LinkCounts{Correct: 3, GT: 6, Test: 5}
	if diff := cmp.Diff(want, m.Counts()); diff != "" {
		t.Errorf("Counts() mismatch (-want +got):\n%s", diff)
	}
	assert.InDelta(t, 3.0/5, m.Precision(), 1e-12)
	assert.InDelta(t, 3.0/6, m.Recall(), 1e-12)

	p, r := 3.0/5, 3.0/6
	assert.InDelta(t, 2*p*r/(p+r), m.F1(), 1e-9)
}

func TestPrecisionRecallConventions(t *testing.T) {
	tests := []struct {
		name   string
		counts types.LinkCounts
	}{
		{"no test links with ground truth", types.LinkCounts{GT: 4}},
		{"no ground truth links with test", types.LinkCounts{Test: 3}},
		{"nothing at all", types.LinkCounts{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &LinkMetrics{counts: tt.counts}
			if tt.counts.Test == 0 {
				assert.Equal(t, 1.0, m.Precision())
			}
			if tt.counts.GT == 0 {
				assert.Equal(t, 1.0, m.Recall())
			}
			if m.Precision() == 0 || m.Recall() == 0 {
				assert.Equal(t, 0.0, m.F1())
			}
		})
	}
}

func TestLinkMetricsSplitByDoc(t *testing.T) {
	m := NewLinkMetrics(mixedDataset(), true)

	want := []string{"10.1/a", "10.1/b", "10.1/c", "10.1/d"}
	if diff := cmp.Diff(want, m.Documents()); diff != "" {
		t.Fatalf("Documents() mismatch (-want +got):\n%s", diff)
	}

	wantCounts := map[string]types.LinkCounts{
		// two correct, plus the 10.1/c reference the linker assigned to 10.1/a
		"10.1/a": {Correct: 2, GT: 3, Test: 3},
		// one correct, plus the spurious 10.1/b link with no ground truth
		"10.1/b": {Correct: 1, GT: 1, Test: 2},
		"10.1/c": {Correct: 0, GT: 1, Test: 1},
		"10.1/d": {Correct: 0, GT: 2, Test: 0},
	}
	for doc, wc := range wantCounts {
		d, ok := m.Document(doc)
		require.True(t, ok, "document %s", doc)
		assert.Equal(t, wc, d.Counts(), "document %s", doc)
		assert.Empty(t, d.Documents(), "nested results must not split further")
	}

	// The both-absent reference matches no bucket.
	assert.Equal(t, 1, m.Unassigned())

	precision := m.PrecisionByDoc()
	assert.InDelta(t, 2.0/3, precision["10.1/a"], 1e-12)
	assert.Equal(t, 1.0, precision["10.1/d"])
	assert.Equal(t, 0.0, m.RecallByDoc()["10.1/d"])
	assert.Equal(t, 0.0, m.F1ByDoc()["10.1/c"])

	avgP, err := m.AveragePrecisionByDoc()
	require.NoError(t, err)
	assert.InDelta(t, (2.0/3+1.0/2+0+1)/4, avgP, 1e-12)

	avgR, err := m.AverageRecallByDoc()
	require.NoError(t, err)
	assert.InDelta(t, (2.0/3+1+0+0)/4, avgR, 1e-12)

	avgF1, err := m.AverageF1ByDoc()
	require.NoError(t, err)
	f1a := 2.0 / 3
	f1b := 2 * 0.5 * 1 / 1.5
	assert.InDelta(t, (f1a+f1b)/4, avgF1, 1e-9)
}

func TestAverageByDocNoDocuments(t *testing.T) {
	for _, m := range []*LinkMetrics{
		NewLinkMetrics(mixedDataset(), false),
		NewLinkMetrics(types.Dataset{}, true),
		NewLinkMetrics(types.Dataset{ref("", "10.1/x")}, true),
	} {
		if _, err := m.AveragePrecisionByDoc(); !errors.Is(err, ErrNoDocuments) {
			t.Errorf("AveragePrecisionByDoc error = %v, want ErrNoDocuments", err)
		}
		if _, err := m.AverageRecallByDoc(); !errors.Is(err, ErrNoDocuments) {
			t.Errorf("AverageRecallByDoc error = %v, want ErrNoDocuments", err)
		}
		if _, err := m.AverageF1ByDoc(); !errors.Is(err, ErrNoDocuments) {
			t.Errorf("AverageF1ByDoc error = %v, want ErrNoDocuments", err)
		}
	}
}

func TestLinkMetricsSummary(t *testing.T) {
	t.Run("without documents", func(t *testing.T) {
		var buf strings.Builder
		require.NoError(t, NewLinkMetrics(types.Dataset{ref("10.1/a", "")}, false).Summary(&buf))
		want := "Link-based metrics:\n  Precision: 1.0000\n  Recall: 0.0000\n  F1: 0.0000\n"
		assert.Equal(t, want, buf.String())
	})

	t.Run("with documents", func(t *testing.T) {
		var buf strings.Builder
		ds := types.Dataset{ref("10.1/a", "10.1/a"), ref("", "")}
		require.NoError(t, NewLinkMetrics(ds, true).Summary(&buf))
		out := buf.String()
		assert.Contains(t, out, "Document-level metrics:")
		assert.Contains(t, out, "  Average precision: 1.0000")
		assert.Contains(t, out, "  Average F1: 1.0000")
		assert.Contains(t, out, "  Unassigned references: 1")
	})
}
