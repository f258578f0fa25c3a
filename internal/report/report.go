package report

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tiammomo/mamoji/internal/errs"
)

// Period selects the granularity transactions are bucketed by.
type Period string

const (
	PeriodDaily   Period = "daily"
	PeriodWeekly  Period = "weekly"
	PeriodMonthly Period = "monthly"
)

// PeriodKey buckets a point in time. Weekly keys number weeks as
// dayOfYear/7 + 1, so week boundaries drift from ISO weeks; this keeps the
// keys stable across the data already aggregated under them.
func PeriodKey(p Period, t time.Time) (string, error) {
	switch p {
	case PeriodDaily:
		return t.Format("2006-01-02"), nil
	case PeriodWeekly:
		return fmt.Sprintf("%d-W%02d", t.Year(), t.YearDay()/7+1), nil
	case PeriodMonthly:
		return t.Format("2006-01"), nil
	default:
		return "", errs.Validation("unsupported period: %s", p)
	}
}

// Totals holds income and expense sums and their difference.
type Totals struct {
	Income  decimal.Decimal
	Expense decimal.Decimal
	Net     decimal.Decimal
}

// PeriodTotals is the totals of one period bucket.
type PeriodTotals struct {
	Key string
	Totals
}

// CategoryShare is one category's slice of a total.
type CategoryShare struct {
	CategoryID uuid.UUID
	Amount     decimal.Decimal
	Percent    float64
}

var oneHundred = decimal.NewFromInt(100)

// percent is part/total as a percentage rounded half-up to two decimals, 0
// when the total is not positive.
func percent(part, total decimal.Decimal) float64 {
	if total.Sign() <= 0 {
		return 0
	}

	p, _ := part.Mul(oneHundred).DivRound(total, 2).Float64()

	return p
}
