package refund

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tiammomo/mamoji/internal/account"
	"github.com/tiammomo/mamoji/internal/errs"
	"github.com/tiammomo/mamoji/internal/transaction"
)

type Repository interface {
	GetRefund(ctx context.Context, id uuid.UUID) (*Refund, error)
	ListRefunds(ctx context.Context, transactionID uuid.UUID) ([]*Refund, error)

	// BeginRefund opens an atomic scope holding an exclusive lock on the
	// parent transaction row, so two refunds against the same transaction
	// serialize and the remaining-refundable check cannot race.
	BeginRefund(ctx context.Context, transactionID uuid.UUID) (RefundTx, error)
}

// RefundTx is the capability surface available while the parent transaction
// row is locked.
type RefundTx interface {
	// Parent is the locked parent transaction.
	Parent() *transaction.Transaction

	SumActiveRefunds(ctx context.Context, transactionID uuid.UUID) (decimal.Decimal, error)
	InsertRefund(ctx context.Context, r *Refund) error
	MarkCancelled(ctx context.Context, id uuid.UUID) error
	ApplyBalanceDelta(ctx context.Context, accountID uuid.UUID, delta decimal.Decimal) error

	Commit() error
	Rollback() error
}

// TransactionGetter resolves a transaction scoped to its owner.
type TransactionGetter interface {
	Get(ctx context.Context, ownerID, id uuid.UUID) (*transaction.Transaction, error)
}

// AccountGetter resolves an account scoped to its owner.
type AccountGetter interface {
	Get(ctx context.Context, ownerID, id uuid.UUID) (*account.Account, error)
}

type Service struct {
	repo         Repository
	transactions TransactionGetter
	accounts     AccountGetter
}

func NewService(repo Repository, transactions TransactionGetter, accounts AccountGetter) *Service {
	return &Service{repo: repo, transactions: transactions, accounts: accounts}
}

type CreateParams struct {
	TransactionID uuid.UUID
	Amount        decimal.Decimal
	Reason        string
	OccurredAt    time.Time
}

// Create records a partial or full refund of an expense and returns the
// money to the account the expense was paid from. The refund amount is
// capped by what is still refundable on the parent transaction, checked
// under the parent row lock.
func (s *Service) Create(ctx context.Context, ownerID uuid.UUID, params CreateParams) (*Refund, error) {
	if params.Amount.Sign() <= 0 {
		return nil, errs.Validation("refund amount must be positive")
	}

	rtx, err := s.repo.BeginRefund(ctx, params.TransactionID)
	if err != nil {
		return nil, err
	}
	defer rtx.Rollback()

	parent := rtx.Parent()
	if parent.OwnerID != ownerID || !parent.Active {
		return nil, transaction.ErrNotFound
	}

	if parent.Type != transaction.TypeExpense {
		return nil, errs.Validation("only expenses can be refunded")
	}

	// The account the money goes back to must still be the owner's and
	// active.
	if _, err := s.accounts.Get(ctx, ownerID, parent.AccountID); err != nil {
		return nil, err
	}

	refunded, err := rtx.SumActiveRefunds(ctx, parent.ID)
	if err != nil {
		return nil, err
	}

	remaining := parent.Amount.Sub(refunded)
	if params.Amount.GreaterThan(remaining) {
		return nil, errs.Validation("refund of %s exceeds remaining refundable amount %s",
			params.Amount, remaining)
	}

	occurredAt := params.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = time.Now()
	}

	r := &Refund{
		OwnerID:       ownerID,
		TransactionID: parent.ID,
		AccountID:     parent.AccountID,
		Amount:        params.Amount,
		Reason:        params.Reason,
		OccurredAt:    occurredAt,
		Active:        true,
	}

	if err := rtx.InsertRefund(ctx, r); err != nil {
		return nil, err
	}

	// A refund undoes part of the original balance effect.
	delta, err := transaction.BalanceDelta(parent.Type, params.Amount)
	if err != nil {
		return nil, err
	}

	if err := rtx.ApplyBalanceDelta(ctx, parent.AccountID, delta.Neg()); err != nil {
		return nil, err
	}

	if err := rtx.Commit(); err != nil {
		return nil, err
	}

	return r, nil
}

// Cancel voids a refund, re-applies the original balance effect for its
// amount as if the refund had never happened, and returns the parent
// transaction's recomputed refund position.
func (s *Service) Cancel(ctx context.Context, ownerID, id uuid.UUID) (*Summary, error) {
	r, err := s.repo.GetRefund(ctx, id)
	if err != nil {
		return nil, err
	}

	if r.OwnerID != ownerID || !r.Active {
		return nil, ErrNotFound
	}

	rtx, err := s.repo.BeginRefund(ctx, r.TransactionID)
	if err != nil {
		return nil, err
	}
	defer rtx.Rollback()

	if err := rtx.MarkCancelled(ctx, r.ID); err != nil {
		return nil, err
	}

	parent := rtx.Parent()

	delta, err := transaction.BalanceDelta(parent.Type, r.Amount)
	if err != nil {
		return nil, err
	}

	if err := rtx.ApplyBalanceDelta(ctx, r.AccountID, delta); err != nil {
		return nil, err
	}

	if err := rtx.Commit(); err != nil {
		return nil, err
	}

	return s.Summarize(ctx, ownerID, r.TransactionID)
}

// Summary describes the refund position of one transaction. Refunds holds
// the active refunds only; cancelled rows count for nothing.
type Summary struct {
	TransactionID  uuid.UUID
	OriginalAmount decimal.Decimal
	Refunded       decimal.Decimal
	Remaining      decimal.Decimal
	HasRefund      bool
	RefundCount    int
	Refunds        []*Refund
}

// Summarize reports the refunded and still-refundable amounts of a
// transaction. A transaction the caller cannot see yields an all-zero
// summary rather than an error.
func (s *Service) Summarize(ctx context.Context, ownerID, transactionID uuid.UUID) (*Summary, error) {
	summary := &Summary{
		TransactionID:  transactionID,
		OriginalAmount: decimal.Zero,
		Refunded:       decimal.Zero,
		Remaining:      decimal.Zero,
	}

	parent, err := s.transactions.Get(ctx, ownerID, transactionID)
	if err != nil {
		if err == transaction.ErrNotFound {
			return summary, nil
		}

		return nil, err
	}

	refunds, err := s.repo.ListRefunds(ctx, transactionID)
	if err != nil {
		return nil, err
	}

	refunded := decimal.Zero

	var active []*Refund

	for _, r := range refunds {
		if r.Active {
			refunded = refunded.Add(r.Amount)
			active = append(active, r)
		}
	}

	summary.OriginalAmount = parent.Amount
	summary.Refunded = refunded
	summary.Remaining = parent.Amount.Sub(refunded)
	summary.HasRefund = len(active) > 0
	summary.RefundCount = len(active)
	summary.Refunds = active

	return summary, nil
}
