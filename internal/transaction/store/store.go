package store

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tiammomo/mamoji/internal/account"
	"github.com/tiammomo/mamoji/internal/budget"
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

const selectTransactionColumns = `
	t.id, t.owner_id, t.ledger_id, t.account_id, t.category_id, t.budget_id,
	t.type, t.amount, t.currency, t.note, t.occurred_at, t.status,
	t.created_at, t.updated_at
`

func scanTransaction(s scanner) (*transaction.Transaction, error) {
	var tx transaction.Transaction

	var typeStr string

	var status int

	if err := s.Scan(
		&tx.ID, &tx.OwnerID, &tx.LedgerID, &tx.AccountID, &tx.CategoryID, &tx.BudgetID,
		&typeStr, &tx.Amount, &tx.Currency, &tx.Note, &tx.OccurredAt, &status,
		&tx.CreatedAt, &tx.UpdatedAt,
	); err != nil {
		return nil, err
	}

	tx.Type = transaction.Type(typeStr)
	tx.Active = status == 1

	return &tx, nil
}

func (s *Store) GetTransaction(ctx context.Context, id uuid.UUID) (*transaction.Transaction, error) {
	query := `SELECT ` + selectTransactionColumns + `
		FROM transactions t
		WHERE t.id = $1`

	tx, err := scanTransaction(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, transaction.ErrNotFound
		}

		return nil, fmt.Errorf("getting transaction: %w", err)
	}

	return tx, nil
}

func (s *Store) ListTransactions(ctx context.Context, ownerID uuid.UUID, filter transaction.ListFilter) ([]*transaction.Transaction, error) {
	query := `SELECT ` + selectTransactionColumns + `
		FROM transactions t
		WHERE t.owner_id = $1 AND t.status = 1`

	args := []any{ownerID}

	addArg := func(clause string, value any) {
		args = append(args, value)
		query += " AND " + clause + "$" + strconv.Itoa(len(args))
	}

	if filter.LedgerID != nil {
		addArg("t.ledger_id = ", *filter.LedgerID)
	}

	if filter.Type != nil {
		addArg("t.type = ", string(*filter.Type))
	}

	if filter.AccountID != nil {
		addArg("t.account_id = ", *filter.AccountID)
	}

	if filter.CategoryID != nil {
		addArg("t.category_id = ", *filter.CategoryID)
	}

	if filter.BudgetID != nil {
		addArg("t.budget_id = ", *filter.BudgetID)
	}

	if filter.From != nil {
		addArg("t.occurred_at >= ", *filter.From)
	}

	if filter.To != nil {
		addArg("t.occurred_at <= ", *filter.To)
	}

	query += " ORDER BY t.occurred_at DESC, t.created_at DESC"

	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += " LIMIT $" + strconv.Itoa(len(args))
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing transactions: %w", err)
	}
	defer rows.Close()

	var transactions []*transaction.Transaction

	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning transaction: %w", err)
		}

		transactions = append(transactions, tx)
	}

	return transactions, rows.Err()
}

// BeginMutation opens a database transaction scoping one atomic mutation:
// the row write, the balance change and any budget recalculation either all
// commit or all roll back.
func (s *Store) BeginMutation(ctx context.Context) (transaction.MutationTx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning mutation: %w", err)
	}

	return &mutationTx{tx: tx}, nil
}

type mutationTx struct {
	tx *sql.Tx
}

func (m *mutationTx) InsertTransaction(ctx context.Context, tx *transaction.Transaction) error {
	query := `
		INSERT INTO transactions (owner_id, ledger_id, account_id, category_id, budget_id, type, amount, currency, note, occurred_at, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, 1, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`

	err := m.tx.QueryRowContext(ctx, query,
		tx.OwnerID,
		tx.LedgerID,
		tx.AccountID,
		tx.CategoryID,
		tx.BudgetID,
		string(tx.Type),
		tx.Amount,
		tx.Currency,
		tx.Note,
		tx.OccurredAt,
	).Scan(&tx.ID, &tx.CreatedAt, &tx.UpdatedAt)
	if err != nil {
		return fmt.Errorf("inserting transaction: %w", err)
	}

	return nil
}

func (m *mutationTx) UpdateTransaction(ctx context.Context, tx *transaction.Transaction) error {
	query := `
		UPDATE transactions
		SET account_id = $1, category_id = $2, budget_id = $3, type = $4,
		    amount = $5, note = $6, occurred_at = $7, updated_at = NOW()
		WHERE id = $8 AND status = 1
	`

	res, err := m.tx.ExecContext(ctx, query,
		tx.AccountID,
		tx.CategoryID,
		tx.BudgetID,
		string(tx.Type),
		tx.Amount,
		tx.Note,
		tx.OccurredAt,
		tx.ID,
	)
	if err != nil {
		return fmt.Errorf("updating transaction: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating transaction: %w", err)
	}

	if affected == 0 {
		return transaction.ErrNotFound
	}

	return nil
}

func (m *mutationTx) MarkDeleted(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE transactions
		SET status = 0, updated_at = NOW()
		WHERE id = $1 AND status = 1
	`

	res, err := m.tx.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("marking transaction deleted: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("marking transaction deleted: %w", err)
	}

	if affected == 0 {
		return transaction.ErrNotFound
	}

	return nil
}

func (m *mutationTx) ApplyBalanceDelta(ctx context.Context, accountID uuid.UUID, delta decimal.Decimal) error {
	query := `
		UPDATE accounts
		SET balance = balance + $1, updated_at = NOW()
		WHERE id = $2 AND status = 1
	`

	res, err := m.tx.ExecContext(ctx, query, delta, accountID)
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

func (m *mutationTx) GetBudget(ctx context.Context, budgetID uuid.UUID) (*budget.Budget, error) {
	query := `
		SELECT b.id, b.owner_id, b.name, b.amount, b.spent, b.start_date, b.end_date,
		       b.status, b.created_at, b.updated_at
		FROM budgets b
		WHERE b.id = $1
	`

	var b budget.Budget

	var status int

	err := m.tx.QueryRowContext(ctx, query, budgetID).Scan(
		&b.ID, &b.OwnerID, &b.Name, &b.Amount, &b.Spent, &b.StartDate, &b.EndDate,
		&status, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, budget.ErrNotFound
		}

		return nil, fmt.Errorf("getting budget: %w", err)
	}

	b.Status = budget.Status(status)

	return &b, nil
}

func (m *mutationTx) SumBudgetExpenses(ctx context.Context, budgetID uuid.UUID, start, end time.Time) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(amount), 0)
		FROM transactions
		WHERE budget_id = $1 AND type = 'expense' AND status = 1
		  AND occurred_at >= $2 AND occurred_at <= $3
	`

	var spent decimal.Decimal
	if err := m.tx.QueryRowContext(ctx, query, budgetID, start, end).Scan(&spent); err != nil {
		return decimal.Zero, fmt.Errorf("summing budget expenses: %w", err)
	}

	return spent, nil
}

func (m *mutationTx) UpdateBudgetProgress(ctx context.Context, budgetID uuid.UUID, spent decimal.Decimal, status budget.Status) error {
	query := `
		UPDATE budgets
		SET spent = $1, status = $2, updated_at = NOW()
		WHERE id = $3
	`

	_, err := m.tx.ExecContext(ctx, query, spent, int(status), budgetID)
	if err != nil {
		return fmt.Errorf("updating budget progress: %w", err)
	}

	return nil
}

func (m *mutationTx) Commit() error {
	return m.tx.Commit()
}

func (m *mutationTx) Rollback() error {
	return m.tx.Rollback()
}
