// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package dataset

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/citation-eval/internal/evaluation"
	"github.com/pdiddy/citation-eval/pkg/types"
)

func TestSynthesizeDeterministic(t *testing.T) {
	opts := DefaultSynthOptions()
	a, err := Synthesize(opts)
	require.NoError(t, err)
	b, err := Synthesize(opts)
	require.NoError(t, err)

	if diff := cmp.Diff(a, b); diff != "" {
		t.Errorf("same seed produced different datasets (-a +b):\n%s", diff)
	}
	assert.Len(t, a, opts.Count)
}

func TestSynthesizeSingleOutcome(t *testing.T) {
	tests := []struct {
		name string
		opts SynthOptions
		want types.Outcome
	}{
		{"correct links", SynthOptions{Count: 50, Docs: 5}, types.OutcomeCorrectLink},
		{"no links", SynthOptions{Count: 50, Docs: 5, CorrectNoLinkRate: 1}, types.OutcomeCorrectNoLink},
		{"wrong links", SynthOptions{Count: 50, Docs: 1, IncorrectLinkRate: 1}, types.OutcomeIncorrectLink},
		{"spurious links", SynthOptions{Count: 50, Docs: 5, IncorrectExistsRate: 1}, types.OutcomeIncorrectExists},
		{"missing links", SynthOptions{Count: 50, Docs: 5, IncorrectMissingRate: 1}, types.OutcomeIncorrectMissing},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ds, err := Synthesize(tt.opts)
			require.NoError(t, err)
			m := evaluation.NewReferenceMetrics(ds)
			assert.Equal(t, tt.opts.Count, m.Count(tt.want))
		})
	}
}

func TestSynthesizeDocuments(t *testing.T) {
	ds, err := Synthesize(SynthOptions{Count: 300, Docs: 4, Seed: 7})
	require.NoError(t, err)

	docs := evaluation.DocKeys(evaluation.SplitByDocAttr(ds, types.AttrDOI))
	assert.LessOrEqual(t, len(docs), 4)
	assert.NotEmpty(t, docs)
}

func TestSynthesizeInvalidOptions(t *testing.T) {
	tests := []struct {
		name string
		opts SynthOptions
	}{
		{"negative count", SynthOptions{Count: -1, Docs: 1}},
		{"no documents", SynthOptions{Count: 10}},
		{"rate above one", SynthOptions{Count: 10, Docs: 1, IncorrectLinkRate: 1.5}},
		{"negative rate", SynthOptions{Count: 10, Docs: 1, IncorrectLinkRate: -0.1}},
		{"rates sum above one", SynthOptions{Count: 10, Docs: 1, IncorrectLinkRate: 0.6, IncorrectMissingRate: 0.6}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Synthesize(tt.opts)
			assert.Error(t, err)
		})
	}
}
