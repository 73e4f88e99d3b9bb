package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"catatkas/backend/internal/domain"
)

var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("conflict")
)

type Collection string

const (
	Products       Collection = "products"
	Transactions   Collection = "transactions"
	Expenses       Collection = "expenses"
	Contacts       Collection = "contacts"
	StockInEntries Collection = "stock_in_entries"
	CompanyInfo    Collection = "company_info"
)

// Fixed document ids inside the company_info collection.
const (
	ProfileDocID     = "profile"
	PreferencesDocID = "preferences"
)

func Collections() []Collection {
	return []Collection{Products, Transactions, Expenses, Contacts, StockInEntries, CompanyInfo}
}

type Document struct {
	Collection Collection
	ID         string
	Data       json.RawMessage
	UpdatedAt  time.Time
}

// Write is one put (Data set) or delete (Delete true) inside a Batch.
type Write struct {
	Collection Collection
	ID         string
	Data       json.RawMessage
	Delete     bool
}

type Batch struct {
	Writes []Write
}

func (b *Batch) Put(collection Collection, id string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	b.Writes = append(b.Writes, Write{Collection: collection, ID: id, Data: data})
	return nil
}

func (b *Batch) Delete(collection Collection, id string) {
	b.Writes = append(b.Writes, Write{Collection: collection, ID: id, Delete: true})
}

func (b *Batch) Empty() bool {
	return len(b.Writes) == 0
}

// DocumentStore is a tenant-keyed document database. Commit and Replace apply
// all-or-nothing.
type DocumentStore interface {
	Load(ctx context.Context, tenantID string) ([]Document, error)
	Commit(ctx context.Context, tenantID string, batch Batch) error
	Replace(ctx context.Context, tenantID string, docs []Document) error
	Close() error
}

// UserStore holds login accounts, outside any tenant.
type UserStore interface {
	CreateUser(ctx context.Context, user domain.UserAccount) error
	GetUserByUsername(ctx context.Context, username string) (domain.UserAccount, error)
	ListUsers(ctx context.Context) ([]domain.UserAccount, error)
}
