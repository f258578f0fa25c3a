package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/tiammomo/mamoji/internal/category"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

const selectCategoryColumns = `
	c.id, c.owner_id, c.name, c.kind, c.icon, c.status, c.created_at
`

func scanCategory(s scanner) (*category.Category, error) {
	var cat category.Category

	var kindStr string

	var status int

	if err := s.Scan(
		&cat.ID, &cat.OwnerID, &cat.Name, &kindStr, &cat.Icon, &status, &cat.CreatedAt,
	); err != nil {
		return nil, err
	}

	cat.Kind = category.Kind(kindStr)
	cat.Active = status == 1

	return &cat, nil
}

func (s *Store) CreateCategory(ctx context.Context, cat *category.Category) error {
	query := `
		INSERT INTO categories (owner_id, name, kind, icon, status, created_at)
		VALUES ($1, $2, $3, $4, 1, NOW())
		RETURNING id, created_at
	`

	err := s.db.QueryRowContext(ctx, query,
		cat.OwnerID,
		cat.Name,
		cat.Kind,
		cat.Icon,
	).Scan(&cat.ID, &cat.CreatedAt)
	if err != nil {
		return fmt.Errorf("creating category: %w", err)
	}

	return nil
}

func (s *Store) GetCategory(ctx context.Context, id uuid.UUID) (*category.Category, error) {
	query := `SELECT ` + selectCategoryColumns + `
		FROM categories c
		WHERE c.id = $1`

	cat, err := scanCategory(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, category.ErrNotFound
		}

		return nil, fmt.Errorf("getting category: %w", err)
	}

	return cat, nil
}

func (s *Store) ListCategories(ctx context.Context, ownerID uuid.UUID, kind *category.Kind) ([]*category.Category, error) {
	query := `SELECT ` + selectCategoryColumns + `
		FROM categories c
		WHERE c.status = 1 AND (c.owner_id IS NULL OR c.owner_id = $1)`

	args := []any{ownerID}

	if kind != nil {
		query += " AND c.kind = $2"

		args = append(args, *kind)
	}

	query += " ORDER BY c.kind ASC, c.created_at ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}
	defer rows.Close()

	var cats []*category.Category

	for rows.Next() {
		cat, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning category: %w", err)
		}

		cats = append(cats, cat)
	}

	return cats, rows.Err()
}

func (s *Store) UpdateCategory(ctx context.Context, cat *category.Category) error {
	query := `
		UPDATE categories
		SET name = $1, icon = $2
		WHERE id = $3 AND status = 1
	`

	_, err := s.db.ExecContext(ctx, query, cat.Name, cat.Icon, cat.ID)
	if err != nil {
		return fmt.Errorf("updating category: %w", err)
	}

	return nil
}

func (s *Store) DeactivateCategory(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE categories
		SET status = 0
		WHERE id = $1
	`

	_, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("deactivating category: %w", err)
	}

	return nil
}

func (s *Store) CountByName(ctx context.Context, ownerID uuid.UUID, kind category.Kind, name string, excludeID *uuid.UUID) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM categories
		WHERE owner_id = $1 AND kind = $2 AND name = $3 AND status = 1
	`

	args := []any{ownerID, kind, name}

	if excludeID != nil {
		query += " AND id <> $4"

		args = append(args, *excludeID)
	}

	var count int
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting categories by name: %w", err)
	}

	return count, nil
}
