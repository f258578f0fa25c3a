package transaction

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Type represents the direction of a transaction (income or expense).
// Amounts are always stored positive; the sign of the balance effect is
// derived from the type, never from the amount.
type Type string

const (
	TypeIncome  Type = "income"
	TypeExpense Type = "expense"
)

// Transaction is a single bookkeeping entry against an account, optionally
// scoped to a shared ledger and linked to a budget. Deleted transactions
// are kept as inactive rows.
type Transaction struct {
	ID         uuid.UUID
	OwnerID    uuid.UUID
	LedgerID   *uuid.UUID
	AccountID  uuid.UUID
	CategoryID uuid.UUID
	BudgetID   *uuid.UUID
	Type       Type
	Amount     decimal.Decimal
	Currency   string
	Note       string
	OccurredAt time.Time
	Active     bool
	CreatedAt  time.Time
	UpdatedAt  *time.Time
}

// ErrNotFound covers missing transactions and transactions owned by another
// user alike.
var ErrNotFound = errors.New("transaction not found")
