package report

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tiammomo/mamoji/internal/account"
	"github.com/tiammomo/mamoji/internal/transaction"
)

// TransactionLister provides the active transactions reports aggregate
// over.
type TransactionLister interface {
	List(ctx context.Context, ownerID uuid.UUID, filter transaction.ListFilter) ([]*transaction.Transaction, error)
}

// AccountSummarizer provides the balance summary behind the net worth
// report.
type AccountSummarizer interface {
	Summarize(ctx context.Context, ownerID uuid.UUID) (*account.Summary, error)
}

type Service struct {
	transactions TransactionLister
	accounts     AccountSummarizer
}

func NewService(transactions TransactionLister, accounts AccountSummarizer) *Service {
	return &Service{transactions: transactions, accounts: accounts}
}

// Totals sums income and expense over the filtered transactions.
func (s *Service) Totals(ctx context.Context, ownerID uuid.UUID, filter transaction.ListFilter) (*Totals, error) {
	txs, err := s.transactions.List(ctx, ownerID, filter)
	if err != nil {
		return nil, err
	}

	return sumTotals(txs), nil
}

// ByPeriod buckets the filtered transactions by period key and totals each
// bucket. Buckets come back sorted by key, which for all three period
// formats is chronological order.
func (s *Service) ByPeriod(ctx context.Context, ownerID uuid.UUID, period Period, filter transaction.ListFilter) ([]PeriodTotals, error) {
	// Reject bad periods before touching the store.
	if _, err := PeriodKey(period, time.Time{}); err != nil {
		return nil, err
	}

	txs, err := s.transactions.List(ctx, ownerID, filter)
	if err != nil {
		return nil, err
	}

	buckets := make(map[string][]*transaction.Transaction)

	for _, tx := range txs {
		key, err := PeriodKey(period, tx.OccurredAt)
		if err != nil {
			return nil, err
		}

		buckets[key] = append(buckets[key], tx)
	}

	out := make([]PeriodTotals, 0, len(buckets))

	for key, bucket := range buckets {
		out = append(out, PeriodTotals{Key: key, Totals: *sumTotals(bucket)})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })

	return out, nil
}

// CategoryShares breaks the filtered transactions of one type down by
// category, with each share as a half-up two-decimal percentage of the
// type's total. Shares come back largest first.
func (s *Service) CategoryShares(ctx context.Context, ownerID uuid.UUID, typ transaction.Type, filter transaction.ListFilter) ([]CategoryShare, error) {
	filter.Type = &typ

	txs, err := s.transactions.List(ctx, ownerID, filter)
	if err != nil {
		return nil, err
	}

	total := decimal.Zero
	byCategory := make(map[uuid.UUID]decimal.Decimal)

	for _, tx := range txs {
		total = total.Add(tx.Amount)
		byCategory[tx.CategoryID] = byCategory[tx.CategoryID].Add(tx.Amount)
	}

	out := make([]CategoryShare, 0, len(byCategory))

	for id, amount := range byCategory {
		out = append(out, CategoryShare{
			CategoryID: id,
			Amount:     amount,
			Percent:    percent(amount, total),
		})
	}

	sort.Slice(out, func(i, j int) bool {
		if !out[i].Amount.Equal(out[j].Amount) {
			return out[i].Amount.GreaterThan(out[j].Amount)
		}

		return out[i].CategoryID.String() < out[j].CategoryID.String()
	})

	return out, nil
}

// NetWorth reports the assets/liabilities position across all accounts
// included in totals.
func (s *Service) NetWorth(ctx context.Context, ownerID uuid.UUID) (*account.Summary, error) {
	return s.accounts.Summarize(ctx, ownerID)
}

func sumTotals(txs []*transaction.Transaction) *Totals {
	t := &Totals{
		Income:  decimal.Zero,
		Expense: decimal.Zero,
	}

	for _, tx := range txs {
		switch tx.Type {
		case transaction.TypeIncome:
			t.Income = t.Income.Add(tx.Amount)
		case transaction.TypeExpense:
			t.Expense = t.Expense.Add(tx.Amount)
		}
	}

	t.Net = t.Income.Sub(t.Expense)

	return t
}
