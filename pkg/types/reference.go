// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for citation-eval.
// It holds the evaluated references, the grouping attributes, the outcome
// categories and the persisted run snapshots.
package types

import "fmt"

// Attr names a bibliographic attribute read from either side of a reference.
// It is the key used to group references into documents.
type Attr string

const (
	AttrDOI            Attr = "DOI"
	AttrISSN           Attr = "ISSN"
	AttrContainerTitle Attr = "container-title"
	AttrYear           Attr = "year"
)

// Attrs lists every supported grouping attribute.
var Attrs = []Attr{AttrDOI, AttrISSN, AttrContainerTitle, AttrYear}

// ParseAttr converts a user-supplied attribute name into an Attr. An empty
// name selects AttrDOI.
func ParseAttr(name string) (Attr, error) {
	if name == "" {
		return AttrDOI, nil
	}
	for _, a := range Attrs {
		if string(a) == name {
			return a, nil
		}
	}
	return "", fmt.Errorf("unsupported attribute %q: use one of %v", name, Attrs)
}

// Target is one side of a reference: the record the reference points to.
// The empty string means the field is absent.
type Target struct {
	// DOI is the identifier being matched.
	DOI string `json:"DOI,omitempty" yaml:"DOI,omitempty"`

	Title          string `json:"title,omitempty" yaml:"title,omitempty"`
	ContainerTitle string `json:"container-title,omitempty" yaml:"container-title,omitempty"`
	ISSN           string `json:"ISSN,omitempty" yaml:"ISSN,omitempty"`
	Year           string `json:"year,omitempty" yaml:"year,omitempty"`

	// Score is the linker's confidence for a test-side target. Unused by the
	// metrics.
	Score float64 `json:"score,omitempty" yaml:"score,omitempty"`
}

// Attr returns the value of attribute a, or "" when absent or unknown.
func (t Target) Attr(a Attr) string {
	switch a {
	case AttrDOI:
		return t.DOI
	case AttrISSN:
		return t.ISSN
	case AttrContainerTitle:
		return t.ContainerTitle
	case AttrYear:
		return t.Year
	}
	return ""
}

// Reference is a single evaluated bibliographic reference. It pairs the
// ground-truth target with the target produced by the linker under test.
// Reference is comparable: two references are equal when all fields are.
type Reference struct {
	// ID identifies the reference within its dataset.
	ID string `json:"id" yaml:"id"`

	// Text is the raw reference string as it appeared in the citing paper.
	Text string `json:"reference,omitempty" yaml:"reference,omitempty"`

	GT   Target `json:"target_gt" yaml:"target_gt"`
	Test Target `json:"target_test" yaml:"target_test"`
}

// GroundTruthDOI returns the ground-truth identifier ("" when absent).
func (r Reference) GroundTruthDOI() string { return r.GT.DOI }

// TestDOI returns the identifier produced by the linker ("" when absent).
func (r Reference) TestDOI() string { return r.Test.DOI }

// Dataset is an ordered collection of references.
type Dataset []Reference

// Outcome classifies how the linker handled one reference.
type Outcome string

const (
	OutcomeCorrectLink      Outcome = "correct_link"
	OutcomeCorrectNoLink    Outcome = "correct_no_link"
	OutcomeIncorrectLink    Outcome = "incorrect_link"
	OutcomeIncorrectExists  Outcome = "incorrect_exists"
	OutcomeIncorrectMissing Outcome = "incorrect_missing"
)

// Outcomes lists the outcome categories in reporting order.
var Outcomes = []Outcome{
	OutcomeCorrectLink,
	OutcomeCorrectNoLink,
	OutcomeIncorrectLink,
	OutcomeIncorrectExists,
	OutcomeIncorrectMissing,
}
