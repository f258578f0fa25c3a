package account

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tiammomo/mamoji/internal/errs"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=account
type Repository interface {
	CreateAccount(ctx context.Context, acc *Account) error
	GetAccount(ctx context.Context, id uuid.UUID) (*Account, error)
	ListAccounts(ctx context.Context, ownerID uuid.UUID) ([]*Account, error)
	UpdateAccount(ctx context.Context, acc *Account) error
	SetBalance(ctx context.Context, id uuid.UUID, balance decimal.Decimal) error
	ApplyDelta(ctx context.Context, id uuid.UUID, delta decimal.Decimal) error
	DeactivateAccount(ctx context.Context, id uuid.UUID) error
	CountByName(ctx context.Context, ownerID uuid.UUID, name string, excludeID *uuid.UUID) (int, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

type CreateParams struct {
	Name           string
	Type           Type
	Balance        decimal.Decimal
	Currency       string
	IncludeInTotal bool
}

func (s *Service) Create(ctx context.Context, ownerID uuid.UUID, params CreateParams) (*Account, error) {
	if params.Name == "" {
		return nil, errs.Validation("account name is required")
	}

	if !params.Type.Valid() {
		return nil, errs.Validation("unknown account type: %s", params.Type)
	}

	count, err := s.repo.CountByName(ctx, ownerID, params.Name, nil)
	if err != nil {
		return nil, err
	}

	if count > 0 {
		return nil, errs.Validation("account name already exists")
	}

	currency := params.Currency
	if currency == "" {
		currency = "CNY"
	}

	acc := &Account{
		OwnerID:        ownerID,
		Name:           params.Name,
		Type:           params.Type,
		Balance:        params.Balance,
		Currency:       currency,
		IncludeInTotal: params.IncludeInTotal,
		Active:         true,
	}
	if err := s.repo.CreateAccount(ctx, acc); err != nil {
		return nil, err
	}

	return acc, nil
}

// Get loads an account owned by ownerID. Accounts owned by someone else are
// reported as not found.
func (s *Service) Get(ctx context.Context, ownerID, id uuid.UUID) (*Account, error) {
	acc, err := s.repo.GetAccount(ctx, id)
	if err != nil {
		return nil, err
	}

	if acc.OwnerID != ownerID || !acc.Active {
		return nil, ErrNotFound
	}

	return acc, nil
}

func (s *Service) List(ctx context.Context, ownerID uuid.UUID) ([]*Account, error) {
	return s.repo.ListAccounts(ctx, ownerID)
}

type UpdateParams struct {
	Name           *string
	Type           *Type
	Currency       *string
	IncludeInTotal *bool
	Balance        *decimal.Decimal
}

// Update edits account metadata. A non-nil Balance is a stated-balance edit:
// the one case where the balance is overwritten instead of incremented.
func (s *Service) Update(ctx context.Context, ownerID, id uuid.UUID, params UpdateParams) (*Account, error) {
	acc, err := s.Get(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	if params.Name != nil && *params.Name != acc.Name {
		count, err := s.repo.CountByName(ctx, ownerID, *params.Name, &id)
		if err != nil {
			return nil, err
		}

		if count > 0 {
			return nil, errs.Validation("account name already exists")
		}

		acc.Name = *params.Name
	}

	if params.Type != nil {
		if !params.Type.Valid() {
			return nil, errs.Validation("unknown account type: %s", *params.Type)
		}

		acc.Type = *params.Type
	}

	if params.Currency != nil {
		acc.Currency = *params.Currency
	}

	if params.IncludeInTotal != nil {
		acc.IncludeInTotal = *params.IncludeInTotal
	}

	if err := s.repo.UpdateAccount(ctx, acc); err != nil {
		return nil, err
	}

	if params.Balance != nil {
		if err := s.repo.SetBalance(ctx, id, *params.Balance); err != nil {
			return nil, err
		}

		acc.Balance = *params.Balance
	}

	return acc, nil
}

// Delete deactivates the account. Rows are never physically removed.
func (s *Service) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	if _, err := s.Get(ctx, ownerID, id); err != nil {
		return err
	}

	return s.repo.DeactivateAccount(ctx, id)
}

// ApplyDelta adds a signed delta to the stored balance. The store performs
// this as a single atomic increment, never read-modify-write.
func (s *Service) ApplyDelta(ctx context.Context, id uuid.UUID, delta decimal.Decimal) error {
	return s.repo.ApplyDelta(ctx, id, delta)
}

// Summarize splits the owner's active accounts into assets and liabilities.
// Credit and debt balances count as liabilities; all balances contribute by
// absolute magnitude, and net = assets - liabilities.
func (s *Service) Summarize(ctx context.Context, ownerID uuid.UUID) (*Summary, error) {
	accounts, err := s.repo.ListAccounts(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	summary := &Summary{
		TotalAssets:      decimal.Zero,
		TotalLiabilities: decimal.Zero,
		AccountCount:     len(accounts),
	}

	for _, acc := range accounts {
		if !acc.IncludeInTotal {
			continue
		}

		balance := acc.Balance.Abs()
		if acc.Type.Liability() {
			summary.TotalLiabilities = summary.TotalLiabilities.Add(balance)
		} else {
			summary.TotalAssets = summary.TotalAssets.Add(balance)
		}
	}

	summary.NetAssets = summary.TotalAssets.Sub(summary.TotalLiabilities)

	return summary, nil
}
