//go:build sqlite

package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fuzzevo/internal/model"
)

func TestSQLiteStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "fuzzevo.db")

	store := NewSQLiteStore(dbPath)
	require.NoError(t, store.Init(ctx))
	t.Cleanup(func() {
		_ = store.Close()
	})

	older := newRun("run-a", time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	newer := newRun("run-b", time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC))
	for _, run := range []model.Run{older, newer} {
		require.NoError(t, store.SaveRun(ctx, run))
	}
	loaded, ok, err := store.GetRun(ctx, "run-a")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 1.0, loaded.Config.Operators["add_rule"])
	assert.Equal(t, 10, loaded.TestRows)

	runs, err := store.ListRuns(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "run-b", runs[0].ID)

	trials := []model.Trial{{VersionedRecord: CurrentVersion(), Trial: 0, Seed: 42, Improvement: 0.1}}
	require.NoError(t, store.SaveTrials(ctx, "run-a", trials))
	require.NoError(t, store.SaveFitnessHistory(ctx, "run-a", 0, []float64{0.2, 0.4}))
	require.NoError(t, store.SaveFitnessHistory(ctx, "run-a", 0, []float64{0.2, 0.4, 0.5}), "overwrite history")
	require.NoError(t, store.SaveGenerationDiagnostics(ctx, "run-a", 0, []model.GenerationDiagnostics{{Generation: 0, BestFitness: 0.2}}))

	loadedTrials, ok, err := store.GetTrials(ctx, "run-a")
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, loadedTrials, 1)
	assert.Equal(t, int64(42), loadedTrials[0].Seed)

	history, ok, err := store.GetFitnessHistory(ctx, "run-a", 0)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Len(t, history, 3)

	diagnostics, ok, err := store.GetGenerationDiagnostics(ctx, "run-a", 0)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Len(t, diagnostics, 1)

	require.NoError(t, store.DeleteRun(ctx, "run-a"))
	_, ok, err = store.GetRun(ctx, "run-a")
	require.NoError(t, err)
	assert.False(t, ok)
	_, ok, err = store.GetFitnessHistory(ctx, "run-a", 0)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSQLiteStoreRequiresPath(t *testing.T) {
	assert.Error(t, NewSQLiteStore("").Init(context.Background()))
}

func TestSQLiteStoreRequiresInit(t *testing.T) {
	store := NewSQLiteStore(filepath.Join(t.TempDir(), "x.db"))
	_, err := store.ListRuns(context.Background())
	assert.Error(t, err)
}

func TestOpenSQLite(t *testing.T) {
	store, err := Open(KindSQLite, filepath.Join(t.TempDir(), "open.db"))
	require.NoError(t, err)
	require.NoError(t, store.Init(context.Background()))
	assert.NoError(t, Close(store))
}
