package db

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunLedger(t *testing.T) {
	store := NewTestStore(t)
	ctx := context.Background()

	t.Run("create, progress, complete", func(t *testing.T) {
		run, err := store.CreateRun(ctx, CreateRunParams{
			RawPath:    "data/raw.json",
			OutputPath: "data/processed.json",
			TotalPosts: 10,
		})
		require.NoError(t, err)
		assert.Len(t, run.ID, 26)
		assert.Equal(t, RunRunning, run.Status)
		assert.Equal(t, int64(10), run.TotalPosts)
		assert.False(t, run.CompletedAt.Valid)
		assert.WithinDuration(t, time.Now(), run.StartedAt, time.Minute)

		require.NoError(t, store.UpdateRunProgress(ctx, UpdateRunProgressParams{
			ID:                 run.ID,
			TotalPosts:         10,
			ProcessedPosts:     4,
			ExtractionFailures: 1,
		}))

		got, err := store.GetRun(ctx, run.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(4), got.ProcessedPosts)
		assert.Equal(t, int64(1), got.ExtractionFailures)

		require.NoError(t, store.CompleteRun(ctx, CompleteRunParams{
			ID:                 run.ID,
			TotalPosts:         10,
			ExtractionFailures: 2,
			RawTags:            15,
			CanonicalTags:      6,
			DroppedTags:        3,
		}))

		got, err = store.GetRun(ctx, run.ID)
		require.NoError(t, err)
		assert.Equal(t, RunCompleted, got.Status)
		assert.Equal(t, int64(10), got.ProcessedPosts)
		assert.Equal(t, int64(6), got.CanonicalTags)
		assert.Equal(t, int64(3), got.DroppedTags)
		assert.True(t, got.CompletedAt.Valid)
		assert.GreaterOrEqual(t, got.Duration(time.Now()), time.Duration(0))
	})

	t.Run("progress ignored after completion", func(t *testing.T) {
		run, err := store.CreateRun(ctx, CreateRunParams{RawPath: "a", OutputPath: "b"})
		require.NoError(t, err)
		require.NoError(t, store.CompleteRun(ctx, CompleteRunParams{ID: run.ID, TotalPosts: 2}))
		require.NoError(t, store.UpdateRunProgress(ctx, UpdateRunProgressParams{ID: run.ID, ProcessedPosts: 1}))

		got, err := store.GetRun(ctx, run.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(2), got.ProcessedPosts)
	})

	t.Run("fail", func(t *testing.T) {
		run, err := store.CreateRun(ctx, CreateRunParams{RawPath: "a", OutputPath: "b"})
		require.NoError(t, err)
		require.NoError(t, store.FailRun(ctx, FailRunParams{ID: run.ID, ErrorMessage: "context canceled"}))

		got, err := store.GetRun(ctx, run.ID)
		require.NoError(t, err)
		assert.Equal(t, RunFailed, got.Status)
		assert.Equal(t, sql.NullString{String: "context canceled", Valid: true}, got.ErrorMessage)
	})

	t.Run("missing run", func(t *testing.T) {
		_, err := store.GetRun(ctx, "01HZZZZZZZZZZZZZZZZZZZZZZZ")
		assert.ErrorIs(t, err, sql.ErrNoRows)
	})

	t.Run("list newest first", func(t *testing.T) {
		runs, err := store.ListRuns(ctx, 100)
		require.NoError(t, err)
		require.Len(t, runs, 3)
		for i := 1; i < len(runs); i++ {
			assert.Greater(t, runs[i-1].ID, runs[i].ID)
		}
		assert.Equal(t, RunFailed, runs[0].Status)

		limited, err := store.ListRuns(ctx, 1)
		require.NoError(t, err)
		assert.Len(t, limited, 1)
	})
}

func TestEmbeddedCorpora(t *testing.T) {
	store := NewTestStore(t)
	ctx := context.Background()

	_, err := store.GetEmbeddedCorpus(ctx, "data/processed.json")
	assert.ErrorIs(t, err, sql.ErrNoRows)

	require.NoError(t, store.UpsertEmbeddedCorpus(ctx, UpsertEmbeddedCorpusParams{
		CorpusPath:  "data/processed.json",
		VecLitePath: "data/posts.veclite",
		Posts:       5,
	}))
	require.NoError(t, store.UpsertEmbeddedCorpus(ctx, UpsertEmbeddedCorpusParams{
		CorpusPath:  "data/processed.json",
		VecLitePath: "data/posts.veclite",
		Posts:       8,
	}))

	got, err := store.GetEmbeddedCorpus(ctx, "data/processed.json")
	require.NoError(t, err)
	assert.Equal(t, int64(8), got.Posts)
	assert.Equal(t, "data/posts.veclite", got.VecLitePath)
	assert.False(t, got.EmbeddedAt.IsZero())
}
