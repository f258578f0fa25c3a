package bill

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/tiammomo/mamoji/internal/transaction"
)

// Record is one parsed bill row, not yet bound to an account or category.
type Record struct {
	Type       transaction.Type
	Amount     decimal.Decimal
	Category   string // raw category label from the bill
	Note       string
	OccurredAt time.Time
}
