package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tiammomo/mamoji/internal/account"
	"github.com/tiammomo/mamoji/internal/refund"
	"github.com/tiammomo/mamoji/internal/transaction"
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

const selectRefundColumns = `
	r.id, r.owner_id, r.transaction_id, r.account_id, r.amount, r.reason,
	r.occurred_at, r.status, r.created_at, r.updated_at
`

func scanRefund(s scanner) (*refund.Refund, error) {
	var r refund.Refund

	var status int

	if err := s.Scan(
		&r.ID, &r.OwnerID, &r.TransactionID, &r.AccountID, &r.Amount, &r.Reason,
		&r.OccurredAt, &status, &r.CreatedAt, &r.UpdatedAt,
	); err != nil {
		return nil, err
	}

	r.Active = status == 1

	return &r, nil
}

func (s *Store) GetRefund(ctx context.Context, id uuid.UUID) (*refund.Refund, error) {
	query := `SELECT ` + selectRefundColumns + `
		FROM refunds r
		WHERE r.id = $1`

	r, err := scanRefund(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, refund.ErrNotFound
		}

		return nil, fmt.Errorf("getting refund: %w", err)
	}

	return r, nil
}

func (s *Store) ListRefunds(ctx context.Context, transactionID uuid.UUID) ([]*refund.Refund, error) {
	query := `SELECT ` + selectRefundColumns + `
		FROM refunds r
		WHERE r.transaction_id = $1
		ORDER BY r.created_at`

	rows, err := s.db.QueryContext(ctx, query, transactionID)
	if err != nil {
		return nil, fmt.Errorf("listing refunds: %w", err)
	}
	defer rows.Close()

	var refunds []*refund.Refund

	for rows.Next() {
		r, err := scanRefund(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning refund: %w", err)
		}

		refunds = append(refunds, r)
	}

	return refunds, rows.Err()
}

// BeginRefund opens a database transaction and takes a row lock on the
// parent transaction. Concurrent refunds against the same transaction queue
// behind the lock, so the remaining-refundable amount each one sees is
// final.
func (s *Store) BeginRefund(ctx context.Context, transactionID uuid.UUID) (refund.RefundTx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning refund: %w", err)
	}

	query := `
		SELECT t.id, t.owner_id, t.ledger_id, t.account_id, t.category_id, t.budget_id,
		       t.type, t.amount, t.currency, t.note, t.occurred_at, t.status,
		       t.created_at, t.updated_at
		FROM transactions t
		WHERE t.id = $1
		FOR UPDATE
	`

	var parent transaction.Transaction

	var typeStr string

	var status int

	err = tx.QueryRowContext(ctx, query, transactionID).Scan(
		&parent.ID, &parent.OwnerID, &parent.LedgerID, &parent.AccountID, &parent.CategoryID, &parent.BudgetID,
		&typeStr, &parent.Amount, &parent.Currency, &parent.Note, &parent.OccurredAt, &status,
		&parent.CreatedAt, &parent.UpdatedAt,
	)
	if err != nil {
		tx.Rollback()

		if err == sql.ErrNoRows {
			return nil, transaction.ErrNotFound
		}

		return nil, fmt.Errorf("locking parent transaction: %w", err)
	}

	parent.Type = transaction.Type(typeStr)
	parent.Active = status == 1

	return &refundTx{tx: tx, parent: &parent}, nil
}

type refundTx struct {
	tx     *sql.Tx
	parent *transaction.Transaction
}

func (r *refundTx) Parent() *transaction.Transaction {
	return r.parent
}

func (r *refundTx) SumActiveRefunds(ctx context.Context, transactionID uuid.UUID) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(amount), 0)
		FROM refunds
		WHERE transaction_id = $1 AND status = 1
	`

	var refunded decimal.Decimal
	if err := r.tx.QueryRowContext(ctx, query, transactionID).Scan(&refunded); err != nil {
		return decimal.Zero, fmt.Errorf("summing refunds: %w", err)
	}

	return refunded, nil
}

func (r *refundTx) InsertRefund(ctx context.Context, ref *refund.Refund) error {
	query := `
		INSERT INTO refunds (owner_id, transaction_id, account_id, amount, reason, occurred_at, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, 1, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`

	err := r.tx.QueryRowContext(ctx, query,
		ref.OwnerID,
		ref.TransactionID,
		ref.AccountID,
		ref.Amount,
		ref.Reason,
		ref.OccurredAt,
	).Scan(&ref.ID, &ref.CreatedAt, &ref.UpdatedAt)
	if err != nil {
		return fmt.Errorf("inserting refund: %w", err)
	}

	return nil
}

func (r *refundTx) MarkCancelled(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE refunds
		SET status = 0, updated_at = NOW()
		WHERE id = $1 AND status = 1
	`

	res, err := r.tx.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("cancelling refund: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("cancelling refund: %w", err)
	}

	if affected == 0 {
		return refund.ErrNotFound
	}

	return nil
}

func (r *refundTx) ApplyBalanceDelta(ctx context.Context, accountID uuid.UUID, delta decimal.Decimal) error {
	query := `
		UPDATE accounts
		SET balance = balance + $1, updated_at = NOW()
		WHERE id = $2 AND status = 1
	`

	res, err := r.tx.ExecContext(ctx, query, delta, accountID)
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

func (r *refundTx) Commit() error {
	return r.tx.Commit()
}

func (r *refundTx) Rollback() error {
	return r.tx.Rollback()
}
