package sqlstore

import (
	"context"
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"catatkas/backend/internal/domain"
	"catatkas/backend/internal/store"
	"catatkas/backend/internal/xid"
)

func openSQLite(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), DriverSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = s.Close()
	})
	return s
}

func TestSQLiteCommitAndLoad(t *testing.T) {
	ctx := context.Background()
	s := openSQLite(t)

	var batch store.Batch
	require.NoError(t, batch.Put(store.Products, "p1", map[string]any{"name": "Gula", "stock": 10}))
	require.NoError(t, batch.Put(store.Transactions, "t1", map[string]any{"totalAmount": 9000}))
	require.NoError(t, s.Commit(ctx, "tenant-a", batch))

	var update store.Batch
	require.NoError(t, update.Put(store.Products, "p1", map[string]any{"name": "Gula", "stock": 7}))
	update.Delete(store.Transactions, "t1")
	require.NoError(t, s.Commit(ctx, "tenant-a", update))

	docs, err := s.Load(ctx, "tenant-a")
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, store.Products, docs[0].Collection)
	assert.JSONEq(t, `{"name":"Gula","stock":7}`, string(docs[0].Data))

	empty, err := s.Load(ctx, "tenant-b")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestSQLiteCommitRollsBackOnBadWrite(t *testing.T) {
	ctx := context.Background()
	s := openSQLite(t)

	batch := store.Batch{Writes: []store.Write{
		{Collection: store.Products, ID: "p1", Data: json.RawMessage(`{"name":"Kopi"}`)},
		{Collection: store.Products, ID: "", Data: json.RawMessage(`{}`)},
	}}
	require.Error(t, s.Commit(ctx, "tenant-a", batch))

	docs, err := s.Load(ctx, "tenant-a")
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestSQLiteReplace(t *testing.T) {
	ctx := context.Background()
	s := openSQLite(t)

	var batch store.Batch
	require.NoError(t, batch.Put(store.Contacts, "c1", map[string]any{"name": "Budi"}))
	require.NoError(t, s.Commit(ctx, "tenant-a", batch))

	require.NoError(t, s.Replace(ctx, "tenant-a", []store.Document{
		{Collection: store.Expenses, ID: "e1", Data: json.RawMessage(`{"amount":1500}`)},
		{Collection: store.CompanyInfo, ID: store.ProfileDocID, Data: json.RawMessage(`{"name":"Toko Maju"}`)},
	}))

	docs, err := s.Load(ctx, "tenant-a")
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, store.CompanyInfo, docs[0].Collection)
	assert.Equal(t, store.Expenses, docs[1].Collection)
}

func TestSQLiteUsers(t *testing.T) {
	ctx := context.Background()
	s := openSQLite(t)

	user := domain.UserAccount{ID: xid.New("usr"), Username: "Sari", Password: "hash", Active: true, CreatedAt: time.Now().UTC()}
	require.NoError(t, s.CreateUser(ctx, user))

	err := s.CreateUser(ctx, domain.UserAccount{ID: xid.New("usr"), Username: "sari", Password: "x", CreatedAt: time.Now().UTC()})
	assert.ErrorIs(t, err, store.ErrConflict)

	got, err := s.GetUserByUsername(ctx, "SARI")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
	assert.True(t, got.Active)

	_, err = s.GetUserByUsername(ctx, "nobody")
	assert.ErrorIs(t, err, store.ErrNotFound)

	users, err := s.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestPostgresRoundTrip(t *testing.T) {
	databaseURL := os.Getenv("CATATKAS_TEST_DATABASE_URL")
	if databaseURL == "" {
		t.Skip("set CATATKAS_TEST_DATABASE_URL to run postgres integration test")
	}

	ctx := context.Background()
	s, err := Open(ctx, DriverPostgres, databaseURL)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = s.Close()
	})

	tenantID := xid.New("it")
	t.Cleanup(func() {
		_, _ = s.db.ExecContext(ctx, `DELETE FROM documents WHERE tenant_id = $1`, tenantID)
	})

	var batch store.Batch
	require.NoError(t, batch.Put(store.Products, "p1", map[string]any{"name": "Beras", "stock": 4}))
	require.NoError(t, s.Commit(ctx, tenantID, batch))

	docs, err := s.Load(ctx, tenantID)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.JSONEq(t, `{"name":"Beras","stock":4}`, string(docs[0].Data))
}
