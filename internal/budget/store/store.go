package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tiammomo/mamoji/internal/budget"
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

const selectBudgetColumns = `
	b.id, b.owner_id, b.name, b.amount, b.spent, b.start_date, b.end_date,
	b.status, b.created_at, b.updated_at
`

func scanBudget(s scanner) (*budget.Budget, error) {
	var b budget.Budget

	var status int

	if err := s.Scan(
		&b.ID, &b.OwnerID, &b.Name, &b.Amount, &b.Spent, &b.StartDate, &b.EndDate,
		&status, &b.CreatedAt, &b.UpdatedAt,
	); err != nil {
		return nil, err
	}

	b.Status = budget.Status(status)

	return &b, nil
}

func (s *Store) CreateBudget(ctx context.Context, b *budget.Budget) error {
	query := `
		INSERT INTO budgets (owner_id, name, amount, spent, start_date, end_date, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`

	err := s.db.QueryRowContext(ctx, query,
		b.OwnerID,
		b.Name,
		b.Amount,
		b.Spent,
		b.StartDate,
		b.EndDate,
		int(b.Status),
	).Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return fmt.Errorf("creating budget: %w", err)
	}

	return nil
}

func (s *Store) GetBudget(ctx context.Context, id uuid.UUID) (*budget.Budget, error) {
	query := `SELECT ` + selectBudgetColumns + `
		FROM budgets b
		WHERE b.id = $1`

	b, err := scanBudget(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, budget.ErrNotFound
		}

		return nil, fmt.Errorf("getting budget: %w", err)
	}

	return b, nil
}

func (s *Store) ListBudgets(ctx context.Context, ownerID uuid.UUID, activeOnly bool) ([]*budget.Budget, error) {
	query := `SELECT ` + selectBudgetColumns + `
		FROM budgets b
		WHERE b.owner_id = $1`

	if activeOnly {
		query += " AND b.status = 1"
	} else {
		query += " AND b.status <> 0"
	}

	query += " ORDER BY b.created_at DESC"

	rows, err := s.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("listing budgets: %w", err)
	}
	defer rows.Close()

	var budgets []*budget.Budget

	for rows.Next() {
		b, err := scanBudget(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning budget: %w", err)
		}

		budgets = append(budgets, b)
	}

	return budgets, rows.Err()
}

func (s *Store) UpdateBudget(ctx context.Context, b *budget.Budget) error {
	query := `
		UPDATE budgets
		SET name = $1, amount = $2, start_date = $3, end_date = $4, status = $5, updated_at = NOW()
		WHERE id = $6
	`

	_, err := s.db.ExecContext(ctx, query,
		b.Name,
		b.Amount,
		b.StartDate,
		b.EndDate,
		int(b.Status),
		b.ID,
	)
	if err != nil {
		return fmt.Errorf("updating budget: %w", err)
	}

	return nil
}

func (s *Store) DeleteBudget(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM budgets WHERE id = $1`

	_, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("deleting budget: %w", err)
	}

	return nil
}

// SumExpenses totals the active expense transactions linked to the budget
// whose occurred_at falls within [start, end].
func (s *Store) SumExpenses(ctx context.Context, budgetID uuid.UUID, start, end time.Time) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(amount), 0)
		FROM transactions
		WHERE budget_id = $1 AND type = 'expense' AND status = 1
		  AND occurred_at >= $2 AND occurred_at <= $3
	`

	var spent decimal.Decimal
	if err := s.db.QueryRowContext(ctx, query, budgetID, start, end).Scan(&spent); err != nil {
		return decimal.Zero, fmt.Errorf("summing budget expenses: %w", err)
	}

	return spent, nil
}

func (s *Store) UpdateProgress(ctx context.Context, id uuid.UUID, spent decimal.Decimal, status budget.Status) error {
	query := `
		UPDATE budgets
		SET spent = $1, status = $2, updated_at = NOW()
		WHERE id = $3
	`

	_, err := s.db.ExecContext(ctx, query, spent, int(status), id)
	if err != nil {
		return fmt.Errorf("updating budget progress: %w", err)
	}

	return nil
}
