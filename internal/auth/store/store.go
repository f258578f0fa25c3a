package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/tiammomo/mamoji/internal/auth"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

const selectUserColumns = `
	u.id, u.username, u.nickname, u.password_hash, u.created_at, u.updated_at
`

func (s *Store) CreateUser(ctx context.Context, u *auth.User) error {
	query := `
		INSERT INTO users (username, nickname, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`

	err := s.db.QueryRowContext(ctx, query, u.Username, u.Nickname, u.PasswordHash).
		Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return fmt.Errorf("creating user: %w", err)
	}

	return nil
}

func (s *Store) GetUser(ctx context.Context, id uuid.UUID) (*auth.User, error) {
	query := `SELECT ` + selectUserColumns + `
		FROM users u
		WHERE u.id = $1`

	return s.scanUser(s.db.QueryRowContext(ctx, query, id))
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (*auth.User, error) {
	query := `SELECT ` + selectUserColumns + `
		FROM users u
		WHERE u.username = $1`

	return s.scanUser(s.db.QueryRowContext(ctx, query, username))
}

func (s *Store) scanUser(row *sql.Row) (*auth.User, error) {
	var u auth.User

	err := row.Scan(&u.ID, &u.Username, &u.Nickname, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, auth.ErrNotFound
		}

		return nil, fmt.Errorf("getting user: %w", err)
	}

	return &u, nil
}
