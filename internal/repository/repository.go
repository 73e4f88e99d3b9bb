// Package repository keeps one in-memory State per tenant in front of a
// store.DocumentStore. Reads load the tenant on first use; writes are
// computed on a clone, committed as one batch and only then swapped in.
package repository

import (
	"context"
	"strconv"
	"sync"

	"catatkas/backend/internal/apperr"
	"catatkas/backend/internal/domain"
	"catatkas/backend/internal/logger"
	"catatkas/backend/internal/store"
	"catatkas/backend/internal/xid"
)

type Repository struct {
	docs store.DocumentStore

	mu      sync.Mutex
	tenants map[string]*mirror
}

type mirror struct {
	mu    sync.Mutex
	state *domain.State
	epoch string
	seq   int64
}

func (m *mirror) revision() string {
	return m.epoch + "." + strconv.FormatInt(m.seq, 10)
}

func New(docs store.DocumentStore) *Repository {
	return &Repository{
		docs:    docs,
		tenants: make(map[string]*mirror),
	}
}

func (r *Repository) mirrorFor(tenantID string) *mirror {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.tenants[tenantID]
	if !ok {
		m = &mirror{}
		r.tenants[tenantID] = m
	}
	return m
}

// load must be called with m.mu held.
func (r *Repository) load(ctx context.Context, tenantID string, m *mirror) error {
	if m.state != nil {
		return nil
	}
	docs, err := r.docs.Load(ctx, tenantID)
	if err != nil {
		return apperr.Persistence("load tenant data", err)
	}
	state, err := decodeState(ctx, docs)
	if err != nil {
		return apperr.Persistence("decode tenant data", err)
	}
	m.state = state
	// a fresh epoch keeps revisions from an earlier process from colliding
	m.epoch = xid.Short(xid.New("rev"))
	m.seq = 0
	return nil
}

// View runs fn against the tenant's current state. fn must not modify or
// retain st; rev changes on every committed write.
func (r *Repository) View(ctx context.Context, tenantID string, fn func(st *domain.State, rev string) error) error {
	m := r.mirrorFor(tenantID)
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := r.load(ctx, tenantID, m); err != nil {
		return err
	}
	return fn(m.state, m.revision())
}

// Update runs fn on a clone of the tenant's state. The writes fn records are
// committed as one batch; the mirror is replaced only if the commit succeeds.
func (r *Repository) Update(ctx context.Context, tenantID string, fn func(tx *Tx) error) error {
	m := r.mirrorFor(tenantID)
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := r.load(ctx, tenantID, m); err != nil {
		return err
	}

	tx := &Tx{state: m.state.Clone()}
	if err := fn(tx); err != nil {
		return err
	}
	if tx.err != nil {
		return apperr.Persistence("encode documents", tx.err)
	}
	if tx.batch.Empty() {
		return nil
	}

	if err := r.docs.Commit(ctx, tenantID, tx.batch); err != nil {
		logger.Warn(ctx, "commit failed, keeping previous state", "tenant", tenantID, "writes", len(tx.batch.Writes), "error", err)
		return apperr.Persistence("save changes", err)
	}
	m.state = tx.state
	m.seq++
	return nil
}

// Replace swaps the whole tenant for st in one store call.
func (r *Repository) Replace(ctx context.Context, tenantID string, st *domain.State) error {
	docs, err := encodeState(st)
	if err != nil {
		return apperr.Persistence("encode documents", err)
	}

	m := r.mirrorFor(tenantID)
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := r.docs.Replace(ctx, tenantID, docs); err != nil {
		logger.Warn(ctx, "replace failed, keeping previous state", "tenant", tenantID, "error", err)
		return apperr.Persistence("replace data", err)
	}
	m.state = st.Clone()
	if m.epoch == "" {
		m.epoch = xid.Short(xid.New("rev"))
	}
	m.seq++
	return nil
}
