// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/citation-eval/internal/report"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestCLIWorkflow(t *testing.T) {
	dir := t.TempDir()
	dsPath := filepath.Join(dir, "synthetic.json")
	storeDir := filepath.Join(dir, "runs")

	out, err := execute(t, "synth", "--count", "40", "--docs", "5", "--seed", "3", "--out", dsPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote 40 references")

	out, err = execute(t, "evaluate", dsPath, "--format", "json", "--save", "--store-dir", storeDir)
	require.NoError(t, err)
	var s report.Summary
	require.NoError(t, json.Unmarshal([]byte(out), &s))
	assert.Equal(t, 40, s.Total)
	assert.Equal(t, "synthetic.json", s.Dataset)
	require.NotEmpty(t, s.RunID)

	out, err = execute(t, "runs", "list", "--format", "json", "--store-dir", storeDir)
	require.NoError(t, err)
	var rows []report.RunRow
	require.NoError(t, json.Unmarshal([]byte(out), &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, s.RunID, rows[0].ID)
	assert.InDelta(t, s.Accuracy, rows[0].Accuracy, 1e-9)

	xlsx := filepath.Join(dir, "run.xlsx")
	_, err = execute(t, "runs", "export", s.RunID, "--out", xlsx, "--store-dir", storeDir)
	require.NoError(t, err)
	_, err = os.Stat(xlsx)
	assert.NoError(t, err)

	out, err = execute(t, "runs", "delete", s.RunID, "--store-dir", storeDir)
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted run")

	_, err = execute(t, "runs", "show", s.RunID, "--store-dir", storeDir)
	assert.Error(t, err)
}

func TestEvaluateRejectsMissingDataset(t *testing.T) {
	_, err := execute(t, "evaluate", filepath.Join(t.TempDir(), "absent.json"))
	assert.Error(t, err)
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "citation-eval dev\n", out)
}
