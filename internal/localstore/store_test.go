package localstore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestCartLineRoundtrip(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	added := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	require.NoError(t, s.UpsertCartLine(ctx, CartLine{
		ProductID:    "p1",
		Name:         "Desk Lamp",
		Description:  "warm white",
		Price:        19.99,
		CategoryID:   "c1",
		CategoryName: "Lighting",
		ImageURL:     "https://img.example/p1.jpg",
		Quantity:     2,
		AddedAt:      added,
	}))

	lines, err := s.CartLines(ctx)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, "p1", lines[0].ProductID)
	assert.Equal(t, "Desk Lamp", lines[0].Name)
	assert.InDelta(t, 19.99, lines[0].Price, 1e-9)
	assert.Equal(t, 2, lines[0].Quantity)
	assert.True(t, lines[0].AddedAt.Equal(added))
}

func TestUpsertReplacesExistingLine(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	require.NoError(t, s.UpsertCartLine(ctx, CartLine{ProductID: "p1", Name: "old", Price: 10, Quantity: 1}))
	require.NoError(t, s.UpsertCartLine(ctx, CartLine{ProductID: "p1", Name: "new", Price: 12, Quantity: 5}))

	lines, err := s.CartLines(ctx)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, "new", lines[0].Name)
	assert.InDelta(t, 12, lines[0].Price, 1e-9)
	assert.Equal(t, 5, lines[0].Quantity)
}

func TestCartLinesOrderedByAddedAt(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	base := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	require.NoError(t, s.UpsertCartLine(ctx, CartLine{ProductID: "later", Name: "b", Price: 1, Quantity: 1, AddedAt: base.Add(time.Minute)}))
	require.NoError(t, s.UpsertCartLine(ctx, CartLine{ProductID: "earlier", Name: "a", Price: 1, Quantity: 1, AddedAt: base}))

	lines, err := s.CartLines(ctx)
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.Equal(t, "earlier", lines[0].ProductID)
	assert.Equal(t, "later", lines[1].ProductID)
}

func TestDeleteAndClearCart(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	require.NoError(t, s.UpsertCartLine(ctx, CartLine{ProductID: "p1", Name: "a", Price: 1, Quantity: 1}))
	require.NoError(t, s.UpsertCartLine(ctx, CartLine{ProductID: "p2", Name: "b", Price: 2, Quantity: 1}))

	require.NoError(t, s.DeleteCartLine(ctx, "p1"))
	require.NoError(t, s.DeleteCartLine(ctx, "missing"))

	lines, err := s.CartLines(ctx)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, "p2", lines[0].ProductID)

	require.NoError(t, s.ClearCart(ctx))
	lines, err = s.CartLines(ctx)
	require.NoError(t, err)
	assert.Empty(t, lines)
}

func TestCredentialRoundtrip(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	cred, err := s.Credential(ctx)
	require.NoError(t, err)
	assert.Nil(t, cred, "fresh store holds no credential")

	require.NoError(t, s.SaveCredential(ctx, Credential{AccessToken: "tok-1", UserID: "u1"}))
	cred, err = s.Credential(ctx)
	require.NoError(t, err)
	require.NotNil(t, cred)
	assert.Equal(t, "tok-1", cred.AccessToken)
	assert.Equal(t, "u1", cred.UserID)
	assert.False(t, cred.SavedAt.IsZero())

	// Saving again replaces the single row.
	require.NoError(t, s.SaveCredential(ctx, Credential{AccessToken: "tok-2", UserID: "u1"}))
	cred, err = s.Credential(ctx)
	require.NoError(t, err)
	require.NotNil(t, cred)
	assert.Equal(t, "tok-2", cred.AccessToken)

	require.NoError(t, s.DeleteCredential(ctx))
	cred, err = s.Credential(ctx)
	require.NoError(t, err)
	assert.Nil(t, cred)

	require.NoError(t, s.DeleteCredential(ctx), "delete is a no-op when absent")
}

func TestStaleSchemaVersionResetsState(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	require.NoError(t, s.UpsertCartLine(ctx, CartLine{ProductID: "p1", Name: "a", Price: 1, Quantity: 1}))
	require.NoError(t, s.SaveCredential(ctx, Credential{AccessToken: "tok"}))

	// Simulate a database written by a different build.
	_, err := s.db.Exec(`UPDATE schema_version SET version = 99`)
	require.NoError(t, err)

	require.NoError(t, prepare(s.db))

	lines, err := s.CartLines(ctx)
	require.NoError(t, err)
	assert.Empty(t, lines)

	cred, err := s.Credential(ctx)
	require.NoError(t, err)
	assert.Nil(t, cred)

	var version int
	require.NoError(t, s.db.QueryRow(`SELECT version FROM schema_version`).Scan(&version))
	assert.Equal(t, schemaVersion, version)
}
