package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcmexdev/storefront/internal/cart/mergelog"
)

func newRepo(t *testing.T) *Repository {
	t.Helper()
	repo, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func TestLatestReturnsMostRecentEntry(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	base := time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC)
	entries := []mergelog.Entry{
		{MergeID: "m-1", Status: mergelog.StatusStarted, Payload: `[{"product_id":"x","quantity":1}]`, ErrorMessages: "[]", TraceID: "t1", SpanID: "s1", UpdatedAt: base},
		{MergeID: "m-1", Status: mergelog.StatusStepDone, CurrentStep: "create:x", ErrorMessages: "[]", TraceID: "t1", SpanID: "s1", UpdatedAt: base.Add(time.Second)},
		{MergeID: "m-1", Status: mergelog.StatusComplete, ErrorMessages: "[]", TraceID: "t1", SpanID: "s1", UpdatedAt: base.Add(2 * time.Second)},
	}
	for i := range entries {
		require.NoError(t, repo.Save(ctx, &entries[i]))
	}

	got, err := repo.Latest(ctx, "m-1")
	require.NoError(t, err)
	assert.Equal(t, mergelog.StatusComplete, got.Status)
	assert.Equal(t, "t1", got.TraceID)
	assert.Equal(t, "s1", got.SpanID)
	assert.True(t, got.UpdatedAt.Equal(base.Add(2*time.Second)))
}

func TestLatestPicksHighestRowAtEqualTimestamps(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	at := time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC)
	first := mergelog.Entry{MergeID: "m-2", Status: mergelog.StatusStarted, ErrorMessages: "[]", UpdatedAt: at}
	second := mergelog.Entry{MergeID: "m-2", Status: mergelog.StatusFailed, ErrorMessages: `["boom"]`, UpdatedAt: at}
	require.NoError(t, repo.Save(ctx, &first))
	require.NoError(t, repo.Save(ctx, &second))

	got, err := repo.Latest(ctx, "m-2")
	require.NoError(t, err)
	assert.Equal(t, mergelog.StatusFailed, got.Status)
	assert.Equal(t, `["boom"]`, got.ErrorMessages)
}

func TestLatestForUnknownMergeFails(t *testing.T) {
	repo := newRepo(t)

	_, err := repo.Latest(context.Background(), "never-started")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestEmptyPayloadRoundtrips(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	// Only STARTED rows carry a payload; later rows store NULL.
	entry := mergelog.Entry{
		MergeID:       "m-3",
		Status:        mergelog.StatusStepDone,
		CurrentStep:   "bump:prod-42",
		ErrorMessages: "[]",
		UpdatedAt:     time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC),
	}
	require.NoError(t, repo.Save(ctx, &entry))

	got, err := repo.Latest(ctx, "m-3")
	require.NoError(t, err)
	assert.Empty(t, got.Payload)
	assert.Equal(t, "bump:prod-42", got.CurrentStep)
}
