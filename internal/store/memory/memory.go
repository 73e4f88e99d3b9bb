package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"catatkas/backend/internal/domain"
	"catatkas/backend/internal/store"
)

type docKey struct {
	collection store.Collection
	id         string
}

type storedDoc struct {
	data      json.RawMessage
	updatedAt time.Time
}

// Store keeps every tenant's documents in process memory.
type Store struct {
	mu      sync.RWMutex
	tenants map[string]map[docKey]storedDoc
	users   map[string]domain.UserAccount
}

func New() *Store {
	return &Store{
		tenants: make(map[string]map[docKey]storedDoc),
		users:   make(map[string]domain.UserAccount),
	}
}

func (s *Store) Close() error {
	return nil
}

func (s *Store) Load(_ context.Context, tenantID string) ([]store.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	docs := s.tenants[tenantID]
	out := make([]store.Document, 0, len(docs))
	for key, doc := range docs {
		out = append(out, store.Document{
			Collection: key.collection,
			ID:         key.id,
			Data:       cloneRaw(doc.data),
			UpdatedAt:  doc.updatedAt,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Collection != out[j].Collection {
			return out[i].Collection < out[j].Collection
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *Store) Commit(_ context.Context, tenantID string, batch store.Batch) error {
	for _, w := range batch.Writes {
		if err := validateWrite(w); err != nil {
			return err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	docs, ok := s.tenants[tenantID]
	if !ok {
		docs = make(map[docKey]storedDoc)
		s.tenants[tenantID] = docs
	}
	now := time.Now().UTC()
	for _, w := range batch.Writes {
		key := docKey{collection: w.Collection, id: w.ID}
		if w.Delete {
			delete(docs, key)
			continue
		}
		docs[key] = storedDoc{data: cloneRaw(w.Data), updatedAt: now}
	}
	return nil
}

func (s *Store) Replace(_ context.Context, tenantID string, docs []store.Document) error {
	fresh := make(map[docKey]storedDoc, len(docs))
	now := time.Now().UTC()
	for _, doc := range docs {
		if err := validateWrite(store.Write{Collection: doc.Collection, ID: doc.ID, Data: doc.Data}); err != nil {
			return err
		}
		fresh[docKey{collection: doc.Collection, id: doc.ID}] = storedDoc{data: cloneRaw(doc.Data), updatedAt: now}
	}

	s.mu.Lock()
	s.tenants[tenantID] = fresh
	s.mu.Unlock()
	return nil
}

func (s *Store) CreateUser(_ context.Context, user domain.UserAccount) error {
	username := strings.ToLower(strings.TrimSpace(user.Username))
	if username == "" || user.ID == "" {
		return fmt.Errorf("user id and username required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.users[username]; exists {
		return store.ErrConflict
	}
	user.Username = username
	s.users[username] = user
	return nil
}

func (s *Store) GetUserByUsername(_ context.Context, username string) (domain.UserAccount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[strings.ToLower(strings.TrimSpace(username))]
	if !ok {
		return domain.UserAccount{}, store.ErrNotFound
	}
	return user, nil
}

func (s *Store) ListUsers(_ context.Context) ([]domain.UserAccount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.UserAccount, 0, len(s.users))
	for _, user := range s.users {
		out = append(out, user)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}

func validateWrite(w store.Write) error {
	if w.Collection == "" || w.ID == "" {
		return fmt.Errorf("document collection and id required")
	}
	if !w.Delete && !json.Valid(w.Data) {
		return fmt.Errorf("document %s/%s is not valid json", w.Collection, w.ID)
	}
	return nil
}

func cloneRaw(raw json.RawMessage) json.RawMessage {
	return append(json.RawMessage(nil), raw...)
}
