package refund

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Refund returns part of an expense to the account it was paid from. A
// transaction may carry several refunds as long as their active total never
// exceeds the original amount. Cancelled refunds stay as inactive rows.
type Refund struct {
	ID            uuid.UUID
	OwnerID       uuid.UUID
	TransactionID uuid.UUID
	AccountID     uuid.UUID
	Amount        decimal.Decimal
	Reason        string
	OccurredAt    time.Time
	Active        bool
	CreatedAt     time.Time
	UpdatedAt     *time.Time
}

var ErrNotFound = errors.New("refund not found")
