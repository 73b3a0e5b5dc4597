// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package evaluation

import (
	"maps"
	"slices"

	"github.com/pdiddy/citation-eval/pkg/types"
)

// SplitByDocAttr groups the references of ds into documents keyed by the
// ground-truth value of attr (types.AttrDOI when attr is empty).
//
// A reference is placed in the bucket of its ground-truth value. It is also
// placed in the bucket named by its test-side value when that bucket exists
// and does not already hold an equal reference, so a document's bucket
// contains both the references that belong to it and the ones the linker
// assigned to it. References matching no bucket are left out; see
// Unassigned.
func SplitByDocAttr(ds types.Dataset, attr types.Attr) map[string]types.Dataset {
	if attr == "" {
		attr = types.AttrDOI
	}

	split := make(map[string]types.Dataset)
	for _, ref := range ds {
		if v := ref.GT.Attr(attr); v != "" {
			split[v] = nil
		}
	}

	for _, ref := range ds {
		if v := ref.GT.Attr(attr); v != "" {
			split[v] = append(split[v], ref)
		}
		v := ref.Test.Attr(attr)
		if bucket, ok := split[v]; ok && !slices.Contains(bucket, ref) {
			split[v] = append(bucket, ref)
		}
	}
	return split
}

// Unassigned returns the references SplitByDocAttr drops: those with no
// ground-truth value for attr whose test-side value names no bucket.
func Unassigned(ds types.Dataset, attr types.Attr) types.Dataset {
	if attr == "" {
		attr = types.AttrDOI
	}

	keys := make(map[string]bool)
	for _, ref := range ds {
		if v := ref.GT.Attr(attr); v != "" {
			keys[v] = true
		}
	}

	var out types.Dataset
	for _, ref := range ds {
		if ref.GT.Attr(attr) != "" {
			continue
		}
		if keys[ref.Test.Attr(attr)] {
			continue
		}
		out = append(out, ref)
	}
	return out
}

// DocKeys returns the document keys of split in sorted order.
func DocKeys(split map[string]types.Dataset) []string {
	return slices.Sorted(maps.Keys(split))
}
