// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package dataset

import (
	"fmt"
	"strconv"

	"github.com/brianvoe/gofakeit/v6"

	"github.com/pdiddy/citation-eval/pkg/types"
)

// SynthOptions controls Synthesize. Rates are probabilities per reference;
// whatever they leave over becomes correct links.
type SynthOptions struct {
	// Count is the number of references to generate.
	Count int

	// Docs is the number of distinct cited documents.
	Docs int

	// Seed makes the output reproducible.
	Seed int64

	CorrectNoLinkRate    float64
	IncorrectLinkRate    float64
	IncorrectExistsRate  float64
	IncorrectMissingRate float64
}

// DefaultSynthOptions returns a small dataset with every outcome present.
func DefaultSynthOptions() SynthOptions {
	return SynthOptions{
		Count:                200,
		Docs:                 25,
		Seed:                 1,
		CorrectNoLinkRate:    0.10,
		IncorrectLinkRate:    0.10,
		IncorrectExistsRate:  0.05,
		IncorrectMissingRate: 0.15,
	}
}

func (o SynthOptions) validate() error {
	if o.Count < 0 {
		return fmt.Errorf("count must not be negative, got %d", o.Count)
	}
	if o.Docs < 1 {
		return fmt.Errorf("docs must be at least 1, got %d", o.Docs)
	}
	rates := []float64{o.CorrectNoLinkRate, o.IncorrectLinkRate, o.IncorrectExistsRate, o.IncorrectMissingRate}
	var sum float64
	for _, r := range rates {
		if r < 0 || r > 1 {
			return fmt.Errorf("rate %v out of range [0, 1]", r)
		}
		sum += r
	}
	if sum > 1 {
		return fmt.Errorf("outcome rates sum to %.3f, more than 1", sum)
	}
	return nil
}

// Synthesize generates a dataset of fake references with a controlled mix
// of outcomes. The same options always produce the same dataset.
func Synthesize(opts SynthOptions) (types.Dataset, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}

	f := gofakeit.New(opts.Seed)
	docs := make([]types.Target, opts.Docs)
	seen := make(map[string]bool, opts.Docs)
	for i := range docs {
		docs[i] = fakeTarget(f, seen)
	}

	ds := make(types.Dataset, opts.Count)
	for i := range ds {
		gt := docs[f.Number(0, opts.Docs-1)]
		ref := types.Reference{
			ID:   fmt.Sprintf("ref-%d", i+1),
			Text: fakeReferenceText(f, gt),
		}

		switch pickOutcome(f.Float64Range(0, 1), opts) {
		case types.OutcomeCorrectLink:
			ref.GT, ref.Test = gt, scored(f, gt)
		case types.OutcomeCorrectNoLink:
		case types.OutcomeIncorrectLink:
			wrong := docs[f.Number(0, opts.Docs-1)]
			if wrong.DOI == gt.DOI {
				wrong = fakeTarget(f, seen)
			}
			ref.GT, ref.Test = gt, scored(f, wrong)
		case types.OutcomeIncorrectExists:
			ref.Test = scored(f, gt)
		case types.OutcomeIncorrectMissing:
			ref.GT = gt
		}
		ds[i] = ref
	}
	return ds, nil
}

func pickOutcome(p float64, opts SynthOptions) types.Outcome {
	steps := []struct {
		rate    float64
		outcome types.Outcome
	}{
		{opts.CorrectNoLinkRate, types.OutcomeCorrectNoLink},
		{opts.IncorrectLinkRate, types.OutcomeIncorrectLink},
		{opts.IncorrectExistsRate, types.OutcomeIncorrectExists},
		{opts.IncorrectMissingRate, types.OutcomeIncorrectMissing},
	}
	var cum float64
	for _, s := range steps {
		cum += s.rate
		if p < cum {
			return s.outcome
		}
	}
	return types.OutcomeCorrectLink
}

// fakeTarget returns a target whose DOI is not yet in seen.
func fakeTarget(f *gofakeit.Faker, seen map[string]bool) types.Target {
	doi := f.Numerify("10.####/#######")
	for seen[doi] {
		doi = f.Numerify("10.####/#######")
	}
	seen[doi] = true
	return types.Target{
		DOI:            doi,
		Title:          f.Sentence(6),
		ContainerTitle: "Journal of " + f.Company(),
		ISSN:           f.Numerify("####-####"),
		Year:           strconv.Itoa(f.Number(1990, 2025)),
	}
}

func scored(f *gofakeit.Faker, t types.Target) types.Target {
	t.Score = f.Float64Range(40, 100)
	return t
}

func fakeReferenceText(f *gofakeit.Faker, t types.Target) string {
	return fmt.Sprintf("%s, %s. %s %s, %s.", f.LastName(), f.Letter(), t.Title, t.ContainerTitle, t.Year)
}
