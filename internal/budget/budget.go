package budget

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Status tracks where a budget stands against its ceiling. Cancelled is a
// manual state set by the owner; the other three are always derived from
// spent vs amount and never trusted as independently-mutated fields.
type Status int

const (
	StatusCancelled Status = 0
	StatusActive    Status = 1
	StatusCompleted Status = 2
	StatusOver      Status = 3
)

type Budget struct {
	ID        uuid.UUID
	OwnerID   uuid.UUID
	Name      string
	Amount    decimal.Decimal
	Spent     decimal.Decimal // derived; overwritten by every recalculation
	StartDate time.Time
	EndDate   time.Time
	Status    Status
	CreatedAt time.Time
	UpdatedAt *time.Time
}

func (b *Budget) Remaining() decimal.Decimal {
	return b.Amount.Sub(b.Spent)
}

var ErrNotFound = errors.New("budget not found")

var oneHundred = decimal.NewFromInt(100)

// DetermineStatus derives the budget status from spent vs amount.
// Recalculation never produces StatusCancelled.
func DetermineStatus(spent, amount decimal.Decimal) Status {
	switch spent.Cmp(amount) {
	case 1:
		return StatusOver
	case 0:
		return StatusCompleted
	default:
		return StatusActive
	}
}

// Progress is spent as a percentage of amount, rounded half-up to two
// decimal places. A non-positive amount reads as zero progress.
func Progress(spent, amount decimal.Decimal) float64 {
	if amount.Sign() <= 0 {
		return 0.0
	}

	progress, _ := spent.Mul(oneHundred).DivRound(amount, 2).Float64()

	return progress
}
