package report_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tiammomo/mamoji/internal/account"
	"github.com/tiammomo/mamoji/internal/errs"
	"github.com/tiammomo/mamoji/internal/report"
	"github.com/tiammomo/mamoji/internal/transaction"
)

func TestPeriodKey(t *testing.T) {
	tests := []struct {
		name   string
		period report.Period
		at     time.Time
		want   string
	}{
		{"Daily", report.PeriodDaily, time.Date(2024, 5, 15, 23, 0, 0, 0, time.UTC), "2024-05-15"},
		{"Monthly", report.PeriodMonthly, time.Date(2024, 5, 15, 0, 0, 0, 0, time.UTC), "2024-05"},
		// Week numbers count floor(dayOfYear/7)+1, not ISO weeks.
		{"WeeklyJanFirst", report.PeriodWeekly, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), "2024-W01"},
		{"WeeklyJanSeventh", report.PeriodWeekly, time.Date(2024, 1, 7, 0, 0, 0, 0, time.UTC), "2024-W02"},
		{"WeeklyYearEnd", report.PeriodWeekly, time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC), "2023-W53"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := report.PeriodKey(tt.period, tt.at)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := report.PeriodKey(report.Period("hourly"), time.Now())
	assert.True(t, errs.IsValidation(err))
}

type fakeLister struct {
	txs []*transaction.Transaction
}

func (f *fakeLister) List(_ context.Context, _ uuid.UUID, filter transaction.ListFilter) ([]*transaction.Transaction, error) {
	var out []*transaction.Transaction

	for _, tx := range f.txs {
		if filter.Type != nil && tx.Type != *filter.Type {
			continue
		}

		out = append(out, tx)
	}

	return out, nil
}

type fakeSummarizer struct {
	summary *account.Summary
}

func (f *fakeSummarizer) Summarize(_ context.Context, _ uuid.UUID) (*account.Summary, error) {
	return f.summary, nil
}

func tx(typ transaction.Type, amount string, at time.Time, categoryID uuid.UUID) *transaction.Transaction {
	return &transaction.Transaction{
		ID:         uuid.New(),
		Type:       typ,
		Amount:     decimal.RequireFromString(amount),
		OccurredAt: at,
		CategoryID: categoryID,
		Active:     true,
	}
}

func TestService_Totals(t *testing.T) {
	cat := uuid.New()
	may := time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC)

	svc := report.NewService(&fakeLister{txs: []*transaction.Transaction{
		tx(transaction.TypeIncome, "1000", may, cat),
		tx(transaction.TypeExpense, "300", may, cat),
		tx(transaction.TypeExpense, "150.50", may, cat),
	}}, nil)

	totals, err := svc.Totals(context.Background(), uuid.New(), transaction.ListFilter{})
	require.NoError(t, err)

	assert.True(t, totals.Income.Equal(decimal.NewFromInt(1000)))
	assert.True(t, totals.Expense.Equal(decimal.RequireFromString("450.50")))
	assert.True(t, totals.Net.Equal(decimal.RequireFromString("549.50")))
}

func TestService_ByPeriod(t *testing.T) {
	cat := uuid.New()

	svc := report.NewService(&fakeLister{txs: []*transaction.Transaction{
		tx(transaction.TypeExpense, "100", time.Date(2024, 4, 28, 0, 0, 0, 0, time.UTC), cat),
		tx(transaction.TypeExpense, "50", time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC), cat),
		tx(transaction.TypeIncome, "900", time.Date(2024, 5, 20, 0, 0, 0, 0, time.UTC), cat),
	}}, nil)

	buckets, err := svc.ByPeriod(context.Background(), uuid.New(), report.PeriodMonthly, transaction.ListFilter{})
	require.NoError(t, err)
	require.Len(t, buckets, 2)

	assert.Equal(t, "2024-04", buckets[0].Key)
	assert.True(t, buckets[0].Expense.Equal(decimal.NewFromInt(100)))

	assert.Equal(t, "2024-05", buckets[1].Key)
	assert.True(t, buckets[1].Income.Equal(decimal.NewFromInt(900)))
	assert.True(t, buckets[1].Net.Equal(decimal.NewFromInt(850)))

	_, err = svc.ByPeriod(context.Background(), uuid.New(), report.Period("hourly"), transaction.ListFilter{})
	assert.True(t, errs.IsValidation(err))
}

func TestService_CategoryShares(t *testing.T) {
	dining := uuid.New()
	transport := uuid.New()
	salary := uuid.New()
	may := time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC)

	svc := report.NewService(&fakeLister{txs: []*transaction.Transaction{
		tx(transaction.TypeExpense, "200", may, dining),
		tx(transaction.TypeExpense, "100", may, transport),
		// Income must not leak into expense shares.
		tx(transaction.TypeIncome, "5000", may, salary),
	}}, nil)

	shares, err := svc.CategoryShares(context.Background(), uuid.New(), transaction.TypeExpense, transaction.ListFilter{})
	require.NoError(t, err)
	require.Len(t, shares, 2)

	assert.Equal(t, dining, shares[0].CategoryID)
	assert.InDelta(t, 66.67, shares[0].Percent, 1e-9)

	assert.Equal(t, transport, shares[1].CategoryID)
	assert.InDelta(t, 33.33, shares[1].Percent, 1e-9)
}

func TestService_CategoryShares_Empty(t *testing.T) {
	svc := report.NewService(&fakeLister{}, nil)

	shares, err := svc.CategoryShares(context.Background(), uuid.New(), transaction.TypeExpense, transaction.ListFilter{})
	require.NoError(t, err)
	assert.Empty(t, shares)
}

func TestService_NetWorth(t *testing.T) {
	summary := &account.Summary{
		TotalAssets:      decimal.NewFromInt(620),
		TotalLiabilities: decimal.NewFromInt(200),
		NetAssets:        decimal.NewFromInt(420),
		AccountCount:     3,
	}

	svc := report.NewService(&fakeLister{}, &fakeSummarizer{summary: summary})

	got, err := svc.NetWorth(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Equal(t, summary, got)
}
