package budget

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tiammomo/mamoji/internal/errs"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=budget
type Repository interface {
	CreateBudget(ctx context.Context, b *Budget) error
	GetBudget(ctx context.Context, id uuid.UUID) (*Budget, error)
	ListBudgets(ctx context.Context, ownerID uuid.UUID, activeOnly bool) ([]*Budget, error)
	UpdateBudget(ctx context.Context, b *Budget) error
	DeleteBudget(ctx context.Context, id uuid.UUID) error
	SumExpenses(ctx context.Context, budgetID uuid.UUID, start, end time.Time) (decimal.Decimal, error)
	UpdateProgress(ctx context.Context, id uuid.UUID, spent decimal.Decimal, status Status) error
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

type CreateParams struct {
	Name      string
	Amount    decimal.Decimal
	StartDate time.Time
	EndDate   time.Time
}

func (s *Service) Create(ctx context.Context, ownerID uuid.UUID, params CreateParams) (*Budget, error) {
	if params.Name == "" {
		return nil, errs.Validation("budget name is required")
	}

	if params.EndDate.Before(params.StartDate) {
		return nil, errs.Validation("end date must not be before start date")
	}

	b := &Budget{
		OwnerID:   ownerID,
		Name:      params.Name,
		Amount:    params.Amount,
		Spent:     decimal.Zero,
		StartDate: params.StartDate,
		EndDate:   params.EndDate,
		Status:    StatusActive,
	}
	if err := s.repo.CreateBudget(ctx, b); err != nil {
		return nil, err
	}

	return b, nil
}

func (s *Service) Get(ctx context.Context, ownerID, id uuid.UUID) (*Budget, error) {
	b, err := s.repo.GetBudget(ctx, id)
	if err != nil {
		return nil, err
	}

	if b.OwnerID != ownerID {
		return nil, ErrNotFound
	}

	return b, nil
}

// List returns the owner's budgets, excluding cancelled ones. With
// activeOnly set, only budgets still in progress are returned.
func (s *Service) List(ctx context.Context, ownerID uuid.UUID, activeOnly bool) ([]*Budget, error) {
	return s.repo.ListBudgets(ctx, ownerID, activeOnly)
}

type UpdateParams struct {
	Name      *string
	Amount    *decimal.Decimal
	StartDate *time.Time
	EndDate   *time.Time
}

// Update edits budget fields and re-derives the status against the new
// ceiling using the current spent figure.
func (s *Service) Update(ctx context.Context, ownerID, id uuid.UUID, params UpdateParams) (*Budget, error) {
	b, err := s.Get(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	if params.Name != nil {
		b.Name = *params.Name
	}

	if params.Amount != nil {
		b.Amount = *params.Amount
	}

	if params.StartDate != nil {
		b.StartDate = *params.StartDate
	}

	if params.EndDate != nil {
		b.EndDate = *params.EndDate
	}

	if b.EndDate.Before(b.StartDate) {
		return nil, errs.Validation("end date must not be before start date")
	}

	b.Status = DetermineStatus(b.Spent, b.Amount)

	if err := s.repo.UpdateBudget(ctx, b); err != nil {
		return nil, err
	}

	return b, nil
}

// Cancel flips the budget to the manual cancelled state.
func (s *Service) Cancel(ctx context.Context, ownerID, id uuid.UUID) error {
	b, err := s.Get(ctx, ownerID, id)
	if err != nil {
		return err
	}

	if b.Status == StatusCancelled {
		return errs.Validation("budget already cancelled")
	}

	b.Status = StatusCancelled

	return s.repo.UpdateBudget(ctx, b)
}

// Delete removes the budget row. Budgets are the one entity that is hard
// deleted; transactions keep their budget link as a dangling reference,
// which recalculation treats as no budget.
func (s *Service) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	if _, err := s.Get(ctx, ownerID, id); err != nil {
		return err
	}

	return s.repo.DeleteBudget(ctx, id)
}

// Recalculate recomputes spent from the active expense transactions linked
// to the budget within its date range and re-derives the status. The budget
// having vanished is not an error: the triggering transaction event already
// happened and there is nothing left to keep consistent.
func (s *Service) Recalculate(ctx context.Context, budgetID uuid.UUID) error {
	b, err := s.repo.GetBudget(ctx, budgetID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil
		}

		return err
	}

	spent, err := s.repo.SumExpenses(ctx, budgetID, b.StartDate, b.EndDate)
	if err != nil {
		return err
	}

	return s.repo.UpdateProgress(ctx, budgetID, spent, DetermineStatus(spent, b.Amount))
}
