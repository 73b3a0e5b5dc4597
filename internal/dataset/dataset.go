// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package dataset reads and writes evaluation datasets and converts their
// records into types.Reference values. Validation happens here, at
// ingestion, so the evaluation package never sees a malformed reference.
package dataset

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/hashicorp/go-multierror"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/citation-eval/pkg/types"
)

// ErrMissingAttribute reports a record without one of its target sides.
var ErrMissingAttribute = errors.New("missing attribute")

// Format identifies a dataset file encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFromPath picks the format from the file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("unsupported dataset extension %q: use .json, .yaml or .yml", filepath.Ext(path))
}

// Record is the on-disk form of one reference. Target sides use CSL-JSON
// field names so records exported from reference managers and Crossref
// can be evaluated directly.
type Record struct {
	ID         string   `json:"id,omitempty" yaml:"id,omitempty"`
	Reference  string   `json:"reference,omitempty" yaml:"reference,omitempty"`
	TargetGT   *CSLItem `json:"target_gt" yaml:"target_gt"`
	TargetTest *CSLItem `json:"target_test" yaml:"target_test"`
}

// CSLItem is the subset of a CSL item that evaluation reads. A null or
// missing DOI means the side has no link.
type CSLItem struct {
	DOI            string   `json:"DOI,omitempty" yaml:"DOI,omitempty"`
	Title          string   `json:"title,omitempty" yaml:"title,omitempty"`
	ContainerTitle string   `json:"container-title,omitempty" yaml:"container-title,omitempty"`
	ISSN           string   `json:"ISSN,omitempty" yaml:"ISSN,omitempty"`
	Issued         *CSLDate `json:"issued,omitempty" yaml:"issued,omitempty"`
	Score          float64  `json:"score,omitempty" yaml:"score,omitempty"`
}

// CSLDate represents a date in CSL format using date-parts.
type CSLDate struct {
	DateParts [][]int `json:"date-parts" yaml:"date-parts"`
}

func (c *CSLItem) target() types.Target {
	t := types.Target{
		DOI:            c.DOI,
		Title:          c.Title,
		ContainerTitle: c.ContainerTitle,
		ISSN:           c.ISSN,
		Score:          c.Score,
	}
	if c.Issued != nil && len(c.Issued.DateParts) > 0 && len(c.Issued.DateParts[0]) > 0 {
		t.Year = strconv.Itoa(c.Issued.DateParts[0][0])
	}
	return t
}

func fromTarget(t types.Target) *CSLItem {
	item := &CSLItem{
		DOI:            t.DOI,
		Title:          t.Title,
		ContainerTitle: t.ContainerTitle,
		ISSN:           t.ISSN,
		Score:          t.Score,
	}
	if y, err := strconv.Atoi(t.Year); err == nil {
		item.Issued = &CSLDate{DateParts: [][]int{{y}}}
	}
	return item
}

// Validate checks that every record carries both target sides. All
// problems are reported together.
func Validate(records []Record) error {
	var result *multierror.Error
	for i, r := range records {
		if r.TargetGT == nil {
			result = multierror.Append(result, fmt.Errorf("record %d (%s): target_gt: %w", i, recordID(r, i), ErrMissingAttribute))
		}
		if r.TargetTest == nil {
			result = multierror.Append(result, fmt.Errorf("record %d (%s): target_test: %w", i, recordID(r, i), ErrMissingAttribute))
		}
	}
	return result.ErrorOrNil()
}

func recordID(r Record, i int) string {
	if r.ID != "" {
		return r.ID
	}
	return "ref-" + strconv.Itoa(i+1)
}

// FromRecords validates records and converts them into a dataset. A record
// without an ID keeps an empty ID, so identical records stay equal as
// values; ref-<n> names them in validation errors only.
func FromRecords(records []Record) (types.Dataset, error) {
	if err := Validate(records); err != nil {
		return nil, err
	}
	ds := make(types.Dataset, len(records))
	for i, r := range records {
		ds[i] = types.Reference{
			ID:   r.ID,
			Text: r.Reference,
			GT:   r.TargetGT.target(),
			Test: r.TargetTest.target(),
		}
	}
	return ds, nil
}

// ToRecords converts a dataset back into its on-disk form.
func ToRecords(ds types.Dataset) []Record {
	records := make([]Record, len(ds))
	for i, ref := range ds {
		records[i] = Record{
			ID:         ref.ID,
			Reference:  ref.Text,
			TargetGT:   fromTarget(ref.GT),
			TargetTest: fromTarget(ref.Test),
		}
	}
	return records
}

// Decode reads a dataset encoded in format from r.
func Decode(r io.Reader, format Format) (types.Dataset, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading dataset: %w", err)
	}

	var records []Record
	switch format {
	case FormatJSON:
		err = json.Unmarshal(data, &records)
	case FormatYAML:
		err = yaml.Unmarshal(data, &records)
	default:
		return nil, fmt.Errorf("unsupported dataset format %q", format)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing dataset: %w", err)
	}
	return FromRecords(records)
}

// Load reads the dataset file at path; the extension selects the format.
func Load(path string) (types.Dataset, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening dataset: %w", err)
	}
	defer f.Close()

	ds, err := Decode(f, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return ds, nil
}

// Encode writes ds to w in format.
func Encode(w io.Writer, ds types.Dataset, format Format) error {
	records := ToRecords(ds)
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		defer enc.Close()
		return enc.Encode(records)
	}
	return fmt.Errorf("unsupported dataset format %q", format)
}

// Save writes ds to path; the extension selects the format.
func Save(path string, ds types.Dataset) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := Encode(&buf, ds, format); err != nil {
		return fmt.Errorf("encoding dataset: %w", err)
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}
