package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"catatkas/backend/internal/apperr"
	"catatkas/backend/internal/domain"
	"catatkas/backend/internal/store"
	"catatkas/backend/internal/store/memory"
)

// flakyStore counts loads and can be told to fail commits.
type flakyStore struct {
	*memory.Store
	loads      int
	failCommit bool
}

func (f *flakyStore) Load(ctx context.Context, tenantID string) ([]store.Document, error) {
	f.loads++
	return f.Store.Load(ctx, tenantID)
}

func (f *flakyStore) Commit(ctx context.Context, tenantID string, batch store.Batch) error {
	if f.failCommit {
		return errors.New("network unreachable")
	}
	return f.Store.Commit(ctx, tenantID, batch)
}

func stockOf(t *testing.T, repo *Repository, tenantID, productID string) int {
	t.Helper()
	var stock int
	require.NoError(t, repo.View(context.Background(), tenantID, func(st *domain.State, _ string) error {
		stock = st.Products[productID].Stock
		return nil
	}))
	return stock
}

func TestUpdateWritesThroughAndLoadsOnce(t *testing.T) {
	ctx := context.Background()
	docs := &flakyStore{Store: memory.New()}
	repo := New(docs)

	require.NoError(t, repo.Update(ctx, "tenant-a", func(tx *Tx) error {
		tx.PutProduct(domain.Product{ID: "p1", Name: "Kopi", Stock: 10})
		return nil
	}))
	assert.Equal(t, 10, stockOf(t, repo, "tenant-a", "p1"))
	assert.Equal(t, 1, docs.loads)

	fresh := New(docs)
	assert.Equal(t, 10, stockOf(t, fresh, "tenant-a", "p1"))
}

func TestFailedCommitKeepsPreviousState(t *testing.T) {
	ctx := context.Background()
	docs := &flakyStore{Store: memory.New()}
	repo := New(docs)

	require.NoError(t, repo.Update(ctx, "tenant-a", func(tx *Tx) error {
		tx.PutProduct(domain.Product{ID: "p1", Name: "Kopi", Stock: 10})
		return nil
	}))

	var before string
	require.NoError(t, repo.View(ctx, "tenant-a", func(_ *domain.State, rev string) error {
		before = rev
		return nil
	}))

	docs.failCommit = true
	err := repo.Update(ctx, "tenant-a", func(tx *Tx) error {
		p := tx.State().Products["p1"]
		p.Stock = 3
		tx.PutProduct(p)
		return nil
	})
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindPersistence))
	assert.Equal(t, 10, stockOf(t, repo, "tenant-a", "p1"))

	require.NoError(t, repo.View(ctx, "tenant-a", func(_ *domain.State, rev string) error {
		assert.Equal(t, before, rev)
		return nil
	}))
}

func TestUpdateCallbackErrorCommitsNothing(t *testing.T) {
	ctx := context.Background()
	repo := New(memory.New())

	err := repo.Update(ctx, "tenant-a", func(tx *Tx) error {
		tx.PutContact(domain.Contact{ID: "c1", Name: "Budi"})
		return apperr.Validation("nope")
	})
	require.Error(t, err)

	require.NoError(t, repo.View(ctx, "tenant-a", func(st *domain.State, _ string) error {
		assert.Empty(t, st.Contacts)
		return nil
	}))
}

func TestReplaceSwapsStateAndBumpsRevision(t *testing.T) {
	ctx := context.Background()
	repo := New(memory.New())

	require.NoError(t, repo.Update(ctx, "tenant-a", func(tx *Tx) error {
		tx.PutExpense(domain.Expense{ID: "e1", Amount: 1000})
		return nil
	}))

	next := domain.NewState()
	next.Preferences.Theme = "dark"
	next.Contacts["c1"] = domain.Contact{ID: "c1", Name: "Ani", NextInvoiceNumber: 4}
	require.NoError(t, repo.Replace(ctx, "tenant-a", next))

	reloaded := New(repo.docs)
	require.NoError(t, reloaded.View(ctx, "tenant-a", func(st *domain.State, _ string) error {
		assert.Empty(t, st.Expenses)
		assert.Equal(t, "dark", st.Preferences.Theme)
		assert.Equal(t, 4, st.Contacts["c1"].NextInvoiceNumber)
		return nil
	}))
}
