package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tiammomo/mamoji/internal/account"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

const selectAccountColumns = `
	a.id, a.owner_id, a.name, a.type, a.balance, a.currency,
	a.include_in_total, a.status, a.created_at, a.updated_at
`

func scanAccount(s scanner) (*account.Account, error) {
	var acc account.Account

	var typeStr string

	var status int

	if err := s.Scan(
		&acc.ID, &acc.OwnerID, &acc.Name, &typeStr, &acc.Balance, &acc.Currency,
		&acc.IncludeInTotal, &status, &acc.CreatedAt, &acc.UpdatedAt,
	); err != nil {
		return nil, err
	}

	acc.Type = account.Type(typeStr)
	acc.Active = status == 1

	return &acc, nil
}

func (s *Store) CreateAccount(ctx context.Context, acc *account.Account) error {
	query := `
		INSERT INTO accounts (owner_id, name, type, balance, currency, include_in_total, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, 1, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`

	err := s.db.QueryRowContext(ctx, query,
		acc.OwnerID,
		acc.Name,
		acc.Type,
		acc.Balance,
		acc.Currency,
		acc.IncludeInTotal,
	).Scan(&acc.ID, &acc.CreatedAt, &acc.UpdatedAt)
	if err != nil {
		return fmt.Errorf("creating account: %w", err)
	}

	return nil
}

func (s *Store) GetAccount(ctx context.Context, id uuid.UUID) (*account.Account, error) {
	query := `SELECT ` + selectAccountColumns + `
		FROM accounts a
		WHERE a.id = $1`

	acc, err := scanAccount(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, account.ErrNotFound
		}

		return nil, fmt.Errorf("getting account: %w", err)
	}

	return acc, nil
}

func (s *Store) ListAccounts(ctx context.Context, ownerID uuid.UUID) ([]*account.Account, error) {
	query := `SELECT ` + selectAccountColumns + `
		FROM accounts a
		WHERE a.owner_id = $1 AND a.status = 1
		ORDER BY a.created_at DESC`

	rows, err := s.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("listing accounts: %w", err)
	}
	defer rows.Close()

	var accounts []*account.Account

	for rows.Next() {
		acc, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning account: %w", err)
		}

		accounts = append(accounts, acc)
	}

	return accounts, rows.Err()
}

func (s *Store) UpdateAccount(ctx context.Context, acc *account.Account) error {
	query := `
		UPDATE accounts
		SET name = $1, type = $2, currency = $3, include_in_total = $4, updated_at = NOW()
		WHERE id = $5 AND status = 1
	`

	_, err := s.db.ExecContext(ctx, query,
		acc.Name,
		acc.Type,
		acc.Currency,
		acc.IncludeInTotal,
		acc.ID,
	)
	if err != nil {
		return fmt.Errorf("updating account: %w", err)
	}

	return nil
}

// SetBalance overwrites the stored balance. Only used for an explicit
// stated-balance edit; every other balance change goes through ApplyDelta.
func (s *Store) SetBalance(ctx context.Context, id uuid.UUID, balance decimal.Decimal) error {
	query := `
		UPDATE accounts
		SET balance = $1, updated_at = NOW()
		WHERE id = $2 AND status = 1
	`

	_, err := s.db.ExecContext(ctx, query, balance, id)
	if err != nil {
		return fmt.Errorf("setting balance: %w", err)
	}

	return nil
}

// ApplyDelta increments the balance in a single statement so that
// concurrent deltas on the same account never lose updates.
func (s *Store) ApplyDelta(ctx context.Context, id uuid.UUID, delta decimal.Decimal) error {
	query := `
		UPDATE accounts
		SET balance = balance + $1, updated_at = NOW()
		WHERE id = $2 AND status = 1
	`

	res, err := s.db.ExecContext(ctx, query, delta, id)
	if err != nil {
		return fmt.Errorf("applying balance delta: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("applying balance delta: %w", err)
	}

	if affected == 0 {
		return account.ErrNotFound
	}

	return nil
}

func (s *Store) DeactivateAccount(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE accounts
		SET status = 0, updated_at = NOW()
		WHERE id = $1
	`

	_, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("deactivating account: %w", err)
	}

	return nil
}

func (s *Store) CountByName(ctx context.Context, ownerID uuid.UUID, name string, excludeID *uuid.UUID) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM accounts
		WHERE owner_id = $1 AND name = $2 AND status = 1
	`

	args := []any{ownerID, name}

	if excludeID != nil {
		query += " AND id <> $3"

		args = append(args, *excludeID)
	}

	var count int
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting accounts by name: %w", err)
	}

	return count, nil
}
