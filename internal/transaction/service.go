package transaction

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tiammomo/mamoji/internal/account"
	"github.com/tiammomo/mamoji/internal/budget"
	"github.com/tiammomo/mamoji/internal/category"
	"github.com/tiammomo/mamoji/internal/errs"
)

type Repository interface {
	GetTransaction(ctx context.Context, id uuid.UUID) (*Transaction, error)
	ListTransactions(ctx context.Context, ownerID uuid.UUID, filter ListFilter) ([]*Transaction, error)

	// BeginMutation opens the all-or-nothing scope every transaction
	// mutation runs in: the row write, the balance delta and any budget
	// recalculation commit together or not at all.
	BeginMutation(ctx context.Context) (MutationTx, error)
}

// MutationTx is the capability surface available inside one atomic
// transaction mutation.
type MutationTx interface {
	InsertTransaction(ctx context.Context, tx *Transaction) error
	UpdateTransaction(ctx context.Context, tx *Transaction) error
	MarkDeleted(ctx context.Context, id uuid.UUID) error

	// ApplyBalanceDelta increments the account balance by a signed delta
	// as a single atomic statement.
	ApplyBalanceDelta(ctx context.Context, accountID uuid.UUID, delta decimal.Decimal) error

	GetBudget(ctx context.Context, budgetID uuid.UUID) (*budget.Budget, error)
	SumBudgetExpenses(ctx context.Context, budgetID uuid.UUID, start, end time.Time) (decimal.Decimal, error)
	UpdateBudgetProgress(ctx context.Context, budgetID uuid.UUID, spent decimal.Decimal, status budget.Status) error

	Commit() error
	Rollback() error
}

// AccountGetter resolves an account scoped to its owner; ownership
// violations surface as not-found.
type AccountGetter interface {
	Get(ctx context.Context, ownerID, id uuid.UUID) (*account.Account, error)
}

// CategoryGetter resolves a category visible to the owner.
type CategoryGetter interface {
	Get(ctx context.Context, ownerID, id uuid.UUID) (*category.Category, error)
}

type Service struct {
	repo       Repository
	accounts   AccountGetter
	categories CategoryGetter
}

func NewService(repo Repository, accounts AccountGetter, categories CategoryGetter) *Service {
	return &Service{repo: repo, accounts: accounts, categories: categories}
}

type CreateParams struct {
	LedgerID   *uuid.UUID
	AccountID  uuid.UUID
	CategoryID uuid.UUID
	BudgetID   *uuid.UUID
	Type       Type
	Amount     decimal.Decimal
	Currency   string
	Note       string
	OccurredAt time.Time
}

type ListFilter struct {
	LedgerID   *uuid.UUID
	Type       *Type
	AccountID  *uuid.UUID
	CategoryID *uuid.UUID
	BudgetID   *uuid.UUID
	From       *time.Time
	To         *time.Time
	Limit      int
}

func (s *Service) Create(ctx context.Context, ownerID uuid.UUID, params CreateParams) (*Transaction, error) {
	if params.Amount.Sign() <= 0 {
		return nil, errs.Validation("amount must be positive")
	}

	delta, err := BalanceDelta(params.Type, params.Amount)
	if err != nil {
		return nil, err
	}

	if err := s.validateReferences(ctx, ownerID, params.AccountID, params.CategoryID); err != nil {
		return nil, err
	}

	currency := params.Currency
	if currency == "" {
		currency = "CNY"
	}

	occurredAt := params.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = time.Now()
	}

	tx := &Transaction{
		OwnerID:    ownerID,
		LedgerID:   params.LedgerID,
		AccountID:  params.AccountID,
		CategoryID: params.CategoryID,
		BudgetID:   params.BudgetID,
		Type:       params.Type,
		Amount:     params.Amount,
		Currency:   currency,
		Note:       params.Note,
		OccurredAt: occurredAt,
		Active:     true,
	}

	mtx, err := s.repo.BeginMutation(ctx)
	if err != nil {
		return nil, err
	}
	defer mtx.Rollback()

	if err := mtx.InsertTransaction(ctx, tx); err != nil {
		return nil, err
	}

	if err := mtx.ApplyBalanceDelta(ctx, tx.AccountID, delta); err != nil {
		return nil, err
	}

	if AffectsBudget(tx.Type) && tx.BudgetID != nil {
		if err := recalculateBudget(ctx, mtx, *tx.BudgetID); err != nil {
			return nil, err
		}
	}

	if err := mtx.Commit(); err != nil {
		return nil, err
	}

	return tx, nil
}

func (s *Service) Get(ctx context.Context, ownerID, id uuid.UUID) (*Transaction, error) {
	tx, err := s.repo.GetTransaction(ctx, id)
	if err != nil {
		return nil, err
	}

	if tx.OwnerID != ownerID || !tx.Active {
		return nil, ErrNotFound
	}

	return tx, nil
}

func (s *Service) List(ctx context.Context, ownerID uuid.UUID, filter ListFilter) ([]*Transaction, error) {
	return s.repo.ListTransactions(ctx, ownerID, filter)
}

type UpdateParams struct {
	AccountID  uuid.UUID
	CategoryID uuid.UUID
	BudgetID   *uuid.UUID
	Type       Type
	Amount     decimal.Decimal
	Note       string
	OccurredAt time.Time // zero keeps the existing value
}

// Update edits an active transaction in place and keeps every dependent
// figure consistent. Moving the transaction to another account reverses the
// old balance effect and applies the new one; changing only amount or type
// applies the single net difference so no incorrect intermediate balance is
// ever observable.
func (s *Service) Update(ctx context.Context, ownerID, id uuid.UUID, params UpdateParams) (*Transaction, error) {
	existing, err := s.Get(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	if params.Amount.Sign() <= 0 {
		return nil, errs.Validation("amount must be positive")
	}

	oldDelta, err := BalanceDelta(existing.Type, existing.Amount)
	if err != nil {
		return nil, err
	}

	newDelta, err := BalanceDelta(params.Type, params.Amount)
	if err != nil {
		return nil, err
	}

	if err := s.validateReferences(ctx, ownerID, params.AccountID, params.CategoryID); err != nil {
		return nil, err
	}

	mtx, err := s.repo.BeginMutation(ctx)
	if err != nil {
		return nil, err
	}
	defer mtx.Rollback()

	switch {
	case params.AccountID != existing.AccountID:
		if err := mtx.ApplyBalanceDelta(ctx, existing.AccountID, oldDelta.Neg()); err != nil {
			return nil, err
		}

		if err := mtx.ApplyBalanceDelta(ctx, params.AccountID, newDelta); err != nil {
			return nil, err
		}
	case !newDelta.Equal(oldDelta):
		if err := mtx.ApplyBalanceDelta(ctx, existing.AccountID, newDelta.Sub(oldDelta)); err != nil {
			return nil, err
		}
	}

	updated := *existing
	updated.AccountID = params.AccountID
	updated.CategoryID = params.CategoryID
	updated.BudgetID = params.BudgetID
	updated.Type = params.Type
	updated.Amount = params.Amount
	updated.Note = params.Note

	if !params.OccurredAt.IsZero() {
		updated.OccurredAt = params.OccurredAt
	}

	if err := mtx.UpdateTransaction(ctx, &updated); err != nil {
		return nil, err
	}

	// Both recomputes run after the row rewrite so the sums see the final
	// row: the old budget no longer counts the moved transaction, the new
	// one picks it up.
	oldBudget := existing.BudgetID
	if !AffectsBudget(existing.Type) {
		oldBudget = nil
	}

	if oldBudget != nil {
		if err := recalculateBudget(ctx, mtx, *oldBudget); err != nil {
			return nil, err
		}
	}

	if AffectsBudget(updated.Type) && updated.BudgetID != nil &&
		(oldBudget == nil || *oldBudget != *updated.BudgetID) {
		if err := recalculateBudget(ctx, mtx, *updated.BudgetID); err != nil {
			return nil, err
		}
	}

	if err := mtx.Commit(); err != nil {
		return nil, err
	}

	return &updated, nil
}

// Delete soft-deletes the transaction and reverses its balance effect. The
// linked budget, if any, is recomputed without the deleted row.
func (s *Service) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	existing, err := s.Get(ctx, ownerID, id)
	if err != nil {
		return err
	}

	delta, err := BalanceDelta(existing.Type, existing.Amount)
	if err != nil {
		return err
	}

	mtx, err := s.repo.BeginMutation(ctx)
	if err != nil {
		return err
	}
	defer mtx.Rollback()

	if err := mtx.ApplyBalanceDelta(ctx, existing.AccountID, delta.Neg()); err != nil {
		return err
	}

	if err := mtx.MarkDeleted(ctx, id); err != nil {
		return err
	}

	if AffectsBudget(existing.Type) && existing.BudgetID != nil {
		if err := recalculateBudget(ctx, mtx, *existing.BudgetID); err != nil {
			return err
		}
	}

	return mtx.Commit()
}

func (s *Service) validateReferences(ctx context.Context, ownerID, accountID, categoryID uuid.UUID) error {
	if _, err := s.accounts.Get(ctx, ownerID, accountID); err != nil {
		return err
	}

	cat, err := s.categories.Get(ctx, ownerID, categoryID)
	if err != nil {
		return err
	}

	if !cat.Active {
		return category.ErrNotFound
	}

	return nil
}

// recalculateBudget recomputes a budget's spent and status from its linked
// active expense transactions, inside the surrounding mutation scope. A
// budget that no longer exists leaves nothing to keep consistent.
func recalculateBudget(ctx context.Context, mtx MutationTx, budgetID uuid.UUID) error {
	b, err := mtx.GetBudget(ctx, budgetID)
	if err != nil {
		if errors.Is(err, budget.ErrNotFound) {
			return nil
		}

		return err
	}

	spent, err := mtx.SumBudgetExpenses(ctx, budgetID, b.StartDate, b.EndDate)
	if err != nil {
		return err
	}

	return mtx.UpdateBudgetProgress(ctx, budgetID, spent, budget.DetermineStatus(spent, b.Amount))
}
