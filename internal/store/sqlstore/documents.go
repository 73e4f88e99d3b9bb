package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/sqlscan"

	"catatkas/backend/internal/store"
)

const upsertDocumentSuffix = "ON CONFLICT (tenant_id, collection, id) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at"

type documentRow struct {
	Collection string    `db:"collection"`
	ID         string    `db:"id"`
	Data       []byte    `db:"data"`
	UpdatedAt  time.Time `db:"updated_at"`
}

func (s *Store) Load(ctx context.Context, tenantID string) ([]store.Document, error) {
	query, args, err := s.builder.
		Select("collection", "id", "data", "updated_at").
		From("documents").
		Where(squirrel.Eq{"tenant_id": tenantID}).
		OrderBy("collection", "id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build load: %w", err)
	}

	var rows []documentRow
	if err := sqlscan.Select(ctx, s.db, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("load documents: %w", err)
	}

	docs := make([]store.Document, 0, len(rows))
	for _, row := range rows {
		docs = append(docs, store.Document{
			Collection: store.Collection(row.Collection),
			ID:         row.ID,
			Data:       json.RawMessage(row.Data),
			UpdatedAt:  row.UpdatedAt,
		})
	}
	return docs, nil
}

func (s *Store) Commit(ctx context.Context, tenantID string, batch store.Batch) error {
	if batch.Empty() {
		return nil
	}
	now := time.Now().UTC()
	return s.inTx(ctx, func(tx *sql.Tx) error {
		for _, w := range batch.Writes {
			if w.Delete {
				if err := s.deleteDocument(ctx, tx, tenantID, w.Collection, w.ID); err != nil {
					return err
				}
				continue
			}
			if err := s.putDocument(ctx, tx, tenantID, w.Collection, w.ID, w.Data, now); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Store) Replace(ctx context.Context, tenantID string, docs []store.Document) error {
	now := time.Now().UTC()
	return s.inTx(ctx, func(tx *sql.Tx) error {
		query, args, err := s.builder.Delete("documents").Where(squirrel.Eq{"tenant_id": tenantID}).ToSql()
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("clear tenant: %w", err)
		}
		for _, doc := range docs {
			if err := s.putDocument(ctx, tx, tenantID, doc.Collection, doc.ID, doc.Data, now); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Store) putDocument(ctx context.Context, tx *sql.Tx, tenantID string, collection store.Collection, id string, data json.RawMessage, at time.Time) error {
	if collection == "" || id == "" {
		return fmt.Errorf("document collection and id required")
	}
	query, args, err := s.builder.
		Insert("documents").
		Columns("tenant_id", "collection", "id", "data", "updated_at").
		Values(tenantID, string(collection), id, string(data), at).
		Suffix(upsertDocumentSuffix).
		ToSql()
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("put %s/%s: %w", collection, id, err)
	}
	return nil
}

func (s *Store) deleteDocument(ctx context.Context, tx *sql.Tx, tenantID string, collection store.Collection, id string) error {
	query, args, err := s.builder.
		Delete("documents").
		Where(squirrel.Eq{"tenant_id": tenantID, "collection": string(collection), "id": id}).
		ToSql()
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete %s/%s: %w", collection, id, err)
	}
	return nil
}
