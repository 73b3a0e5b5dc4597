// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/citation-eval/internal/evaluation"
	"github.com/pdiddy/citation-eval/pkg/types"
)

// --- test helpers ---

func ref(gt, test string) types.Reference {
	return types.Reference{GT: types.Target{DOI: gt}, Test: types.Target{DOI: test}}
}

func sampleRun(dataset string) types.Run {
	return evaluation.NewResults(types.Dataset{
		ref("10.1/a", "10.1/a"),
		ref("10.1/b", "10.1/b"),
		ref("", ""),
		ref("10.1/c", "10.1/a"),
		ref("", "10.1/b"),
		ref("10.1/d", ""),
	}).Run(dataset)
}

func openStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(types.StoreConfig{Dir: t.TempDir()})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

// --- sqlite tests ---

func TestNewStoreCreatesDatabase(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "runs")
	s, err := NewStore(types.StoreConfig{Dir: dir})
	require.NoError(t, err)
	defer s.Close()

	_, err = os.Stat(filepath.Join(dir, dbFile))
	assert.NoError(t, err)
	assert.Equal(t, 20, s.maxResults)
}

func TestSaveAndGetRun(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	run := sampleRun("sample.json")
	require.NoError(t, s.SaveRun(ctx, &run))
	require.NotEmpty(t, run.ID)

	got, err := s.GetRun(ctx, run.ID)
	require.NoError(t, err)
	if diff := cmp.Diff(run, got); diff != "" {
		t.Errorf("GetRun mismatch (-saved +got):\n%s", diff)
	}
}

func TestSavedRunReproducesMetrics(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	ds := types.Dataset{
		ref("10.1/a", "10.1/a"),
		ref("10.1/c", "10.1/a"),
		ref("10.1/d", ""),
	}
	want := evaluation.NewResults(ds)
	run := want.Run("three.json")
	require.NoError(t, s.SaveRun(ctx, &run))

	stored, err := s.GetRun(ctx, run.ID)
	require.NoError(t, err)
	got := evaluation.FromRun(stored)

	wantAcc, err := want.Reference.Accuracy()
	require.NoError(t, err)
	gotAcc, err := got.Reference.Accuracy()
	require.NoError(t, err)
	assert.Equal(t, wantAcc, gotAcc)
	assert.Equal(t, want.Link.F1(), got.Link.F1())
	assert.Equal(t, want.Link.F1ByDoc(), got.Link.F1ByDoc())
}

func TestSaveRunKeepsGivenID(t *testing.T) {
	s := openStore(t)
	run := sampleRun("x")
	run.ID = "fixed-id"
	require.NoError(t, s.SaveRun(context.Background(), &run))
	assert.Equal(t, "fixed-id", run.ID)

	dup := sampleRun("y")
	dup.ID = "fixed-id"
	assert.Error(t, s.SaveRun(context.Background(), &dup))
}

func TestSaveRunWithoutDocuments(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	res, err := evaluation.Evaluate(ctx, types.Dataset{ref("10.1/a", "")}, evaluation.Options{})
	require.NoError(t, err)
	run := res.Run("unsplit")
	require.NoError(t, s.SaveRun(ctx, &run))

	got, err := s.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Empty(t, got.SplitAttr)
	assert.Empty(t, got.Documents)
	assert.Equal(t, 1, got.Outcomes[types.OutcomeIncorrectMissing])
}

func TestGetRunNotFound(t *testing.T) {
	s := openStore(t)
	_, err := s.GetRun(context.Background(), "missing")
	if !errors.Is(err, ErrRunNotFound) {
		t.Fatalf("GetRun(missing) error = %v, want ErrRunNotFound", err)
	}
}

func TestListRuns(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	for i, name := range []string{"first", "second", "third"} {
		run := sampleRun(name)
		run.CreatedAt = base.Add(time.Duration(i) * time.Second)
		require.NoError(t, s.SaveRun(ctx, &run))
	}

	runs, err := s.ListRuns(ctx, 0)
	require.NoError(t, err)
	require.Len(t, runs, 3)
	assert.Equal(t, "third", runs[0].Dataset)
	assert.Equal(t, "first", runs[2].Dataset)
	for _, r := range runs {
		assert.Nil(t, r.Documents)
	}

	runs, err = s.ListRuns(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, runs, 2)
}

func TestDeleteRun(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	run := sampleRun("gone")
	require.NoError(t, s.SaveRun(ctx, &run))
	require.NoError(t, s.DeleteRun(ctx, run.ID))

	_, err := s.GetRun(ctx, run.ID)
	assert.ErrorIs(t, err, ErrRunNotFound)

	var docs int
	require.NoError(t, s.db.QueryRow(`SELECT count(*) FROM run_documents WHERE run_id = ?`, run.ID).Scan(&docs))
	assert.Zero(t, docs)

	assert.ErrorIs(t, s.DeleteRun(ctx, run.ID), ErrRunNotFound)
}

// --- failure paths ---

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return newStore(db, 0), mock
}

func TestSaveRunBeginError(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectBegin().WillReturnError(errors.New("database is locked"))

	run := sampleRun("x")
	err := s.SaveRun(context.Background(), &run)
	assert.ErrorContains(t, err, "beginning transaction")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveRunRollsBackOnDocumentError(t *testing.T) {
	s, mock := newMockStore(t)
	run := sampleRun("x")

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO runs").WillReturnResult(sqlmock.NewResult(1, 1))
	prep := mock.ExpectPrepare("INSERT INTO run_documents")
	prep.ExpectExec().WillReturnError(errors.New("disk I/O error"))
	mock.ExpectRollback()

	err := s.SaveRun(context.Background(), &run)
	assert.ErrorContains(t, err, "inserting document")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListRunsQueryError(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectQuery("SELECT .* FROM runs ORDER BY").
		WithArgs(20).
		WillReturnError(errors.New("no such table: runs"))

	_, err := s.ListRuns(context.Background(), 0)
	assert.ErrorContains(t, err, "querying runs")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetRunCorruptOutcomes(t *testing.T) {
	s, mock := newMockStore(t)
	rows := sqlmock.NewRows([]string{"id", "dataset", "split_attr", "created_at", "total", "outcomes", "correct", "gt", "test", "unassigned"}).
		AddRow("r1", "d", "DOI", "2026-03-01T12:00:00.000000000Z", 1, "{not json", 0, 0, 0, 0)
	mock.ExpectQuery("SELECT .* FROM runs WHERE id").WithArgs("r1").WillReturnRows(rows)

	_, err := s.GetRun(context.Background(), "r1")
	assert.ErrorContains(t, err, "decoding outcomes")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteRunMissingRollsBack(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM run_documents").WithArgs("nope").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("DELETE FROM runs").WithArgs("nope").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := s.DeleteRun(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrRunNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
