// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// LinkCounts holds the three counts link metrics are derived from.
type LinkCounts struct {
	// Correct counts references whose ground-truth and test DOIs are present and equal.
	Correct int `json:"correct" yaml:"correct"`

	// GT counts references with a ground-truth DOI.
	GT int `json:"gt" yaml:"gt"`

	// Test counts references with a test DOI.
	Test int `json:"test" yaml:"test"`
}

// DocumentCounts holds the link counts of one document bucket.
type DocumentCounts struct {
	Doc        string `json:"doc" yaml:"doc"`
	LinkCounts `yaml:",inline"`
}

// Run is a persisted snapshot of one evaluation. Metrics are not stored;
// they are recomputed from the counts.
type Run struct {
	// ID is a UUID assigned when the run is saved.
	ID string `json:"id" yaml:"id"`

	// Dataset names the evaluated dataset (usually its file name).
	Dataset string `json:"dataset" yaml:"dataset"`

	// SplitAttr is the attribute used for document grouping. Empty when
	// the run was not split by document.
	SplitAttr Attr `json:"split_attr,omitempty" yaml:"split_attr,omitempty"`

	CreatedAt time.Time `json:"created_at" yaml:"created_at"`

	// Total is the number of references evaluated.
	Total int `json:"total" yaml:"total"`

	// Outcomes maps each outcome category to its count.
	Outcomes map[Outcome]int `json:"outcomes" yaml:"outcomes"`

	Links LinkCounts `json:"links" yaml:"links"`

	// Documents lists per-document counts sorted by document key.
	Documents []DocumentCounts `json:"documents,omitempty" yaml:"documents,omitempty"`

	// Unassigned counts references that fell into no document bucket.
	Unassigned int `json:"unassigned" yaml:"unassigned"`
}
