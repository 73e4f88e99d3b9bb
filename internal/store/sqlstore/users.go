package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/sqlscan"

	"catatkas/backend/internal/domain"
	"catatkas/backend/internal/store"
)

var userColumns = []string{"id", "username", "password", "active", "created_at"}

type userRow struct {
	ID        string    `db:"id"`
	Username  string    `db:"username"`
	Password  string    `db:"password"`
	Active    bool      `db:"active"`
	CreatedAt time.Time `db:"created_at"`
}

func (r userRow) toDomain() domain.UserAccount {
	return domain.UserAccount{
		ID:        r.ID,
		Username:  r.Username,
		Password:  r.Password,
		Active:    r.Active,
		CreatedAt: r.CreatedAt,
	}
}

func (s *Store) CreateUser(ctx context.Context, user domain.UserAccount) error {
	username := strings.ToLower(strings.TrimSpace(user.Username))
	if username == "" || user.ID == "" {
		return fmt.Errorf("user id and username required")
	}
	query, args, err := s.builder.
		Insert("users").
		Columns(userColumns...).
		Values(user.ID, username, user.Password, user.Active, user.CreatedAt.UTC()).
		ToSql()
	if err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return mapError(err)
	}
	return nil
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (domain.UserAccount, error) {
	query, args, err := s.builder.
		Select(userColumns...).
		From("users").
		Where(squirrel.Eq{"username": strings.ToLower(strings.TrimSpace(username))}).
		ToSql()
	if err != nil {
		return domain.UserAccount{}, err
	}

	var row userRow
	if err := sqlscan.Get(ctx, s.db, &row, query, args...); err != nil {
		if sqlscan.NotFound(err) || errors.Is(err, sql.ErrNoRows) {
			return domain.UserAccount{}, store.ErrNotFound
		}
		return domain.UserAccount{}, err
	}
	return row.toDomain(), nil
}

func (s *Store) ListUsers(ctx context.Context) ([]domain.UserAccount, error) {
	query, args, err := s.builder.Select(userColumns...).From("users").OrderBy("username").ToSql()
	if err != nil {
		return nil, err
	}

	var rows []userRow
	if err := sqlscan.Select(ctx, s.db, &rows, query, args...); err != nil {
		return nil, err
	}
	out := make([]domain.UserAccount, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}
