package memory

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"catatkas/backend/internal/domain"
	"catatkas/backend/internal/store"
)

func TestCommitAppliesPutsAndDeletesPerTenant(t *testing.T) {
	ctx := context.Background()
	s := New()

	var batch store.Batch
	require.NoError(t, batch.Put(store.Products, "p1", map[string]any{"name": "Kopi"}))
	require.NoError(t, batch.Put(store.Products, "p2", map[string]any{"name": "Teh"}))
	require.NoError(t, s.Commit(ctx, "tenant-a", batch))

	var second store.Batch
	second.Delete(store.Products, "p1")
	require.NoError(t, s.Commit(ctx, "tenant-a", second))

	docs, err := s.Load(ctx, "tenant-a")
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "p2", docs[0].ID)
	assert.JSONEq(t, `{"name":"Teh"}`, string(docs[0].Data))

	other, err := s.Load(ctx, "tenant-b")
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestCommitRejectsInvalidBatchWithoutPartialWrites(t *testing.T) {
	ctx := context.Background()
	s := New()

	batch := store.Batch{Writes: []store.Write{
		{Collection: store.Products, ID: "p1", Data: json.RawMessage(`{"name":"ok"}`)},
		{Collection: store.Products, ID: "", Data: json.RawMessage(`{}`)},
	}}
	require.Error(t, s.Commit(ctx, "tenant-a", batch))

	docs, err := s.Load(ctx, "tenant-a")
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestReplaceSwapsTenantDocuments(t *testing.T) {
	ctx := context.Background()
	s := New()

	var batch store.Batch
	require.NoError(t, batch.Put(store.Contacts, "c1", map[string]any{"name": "Budi"}))
	require.NoError(t, s.Commit(ctx, "tenant-a", batch))

	require.NoError(t, s.Replace(ctx, "tenant-a", []store.Document{
		{Collection: store.Expenses, ID: "e1", Data: json.RawMessage(`{"amount":5000}`)},
	}))

	docs, err := s.Load(ctx, "tenant-a")
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, store.Expenses, docs[0].Collection)
}

func TestUsersAreUniqueByUsername(t *testing.T) {
	ctx := context.Background()
	s := New()

	require.NoError(t, s.CreateUser(ctx, domain.UserAccount{ID: "usr_1", Username: "Sari", Password: "hash", Active: true}))
	err := s.CreateUser(ctx, domain.UserAccount{ID: "usr_2", Username: "sari", Password: "hash"})
	assert.ErrorIs(t, err, store.ErrConflict)

	user, err := s.GetUserByUsername(ctx, " SARI ")
	require.NoError(t, err)
	assert.Equal(t, "usr_1", user.ID)

	_, err = s.GetUserByUsername(ctx, "nobody")
	assert.ErrorIs(t, err, store.ErrNotFound)
}
