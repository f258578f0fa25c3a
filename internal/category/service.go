package category

import (
	"context"

	"github.com/google/uuid"

	"github.com/tiammomo/mamoji/internal/errs"
)

type Repository interface {
	CreateCategory(ctx context.Context, cat *Category) error
	GetCategory(ctx context.Context, id uuid.UUID) (*Category, error)
	ListCategories(ctx context.Context, ownerID uuid.UUID, kind *Kind) ([]*Category, error)
	UpdateCategory(ctx context.Context, cat *Category) error
	DeactivateCategory(ctx context.Context, id uuid.UUID) error
	CountByName(ctx context.Context, ownerID uuid.UUID, kind Kind, name string, excludeID *uuid.UUID) (int, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// List returns system categories plus the owner's, active only.
func (s *Service) List(ctx context.Context, ownerID uuid.UUID, kind *Kind) ([]*Category, error) {
	return s.repo.ListCategories(ctx, ownerID, kind)
}

// Get resolves a category visible to ownerID: the owner's own, or a system
// category. Someone else's category reads as not found.
func (s *Service) Get(ctx context.Context, ownerID, id uuid.UUID) (*Category, error) {
	cat, err := s.repo.GetCategory(ctx, id)
	if err != nil {
		return nil, err
	}

	if !cat.System() && *cat.OwnerID != ownerID {
		return nil, ErrNotFound
	}

	return cat, nil
}

type CreateParams struct {
	Name string
	Kind Kind
	Icon string
}

func (s *Service) Create(ctx context.Context, ownerID uuid.UUID, params CreateParams) (*Category, error) {
	if params.Name == "" {
		return nil, errs.Validation("category name is required")
	}

	if params.Kind != KindIncome && params.Kind != KindExpense {
		return nil, errs.Validation("unknown category kind: %s", params.Kind)
	}

	count, err := s.repo.CountByName(ctx, ownerID, params.Kind, params.Name, nil)
	if err != nil {
		return nil, err
	}

	if count > 0 {
		return nil, errs.Validation("category name already exists")
	}

	owner := ownerID
	cat := &Category{
		OwnerID: &owner,
		Name:    params.Name,
		Kind:    params.Kind,
		Icon:    params.Icon,
		Active:  true,
	}
	if err := s.repo.CreateCategory(ctx, cat); err != nil {
		return nil, err
	}

	return cat, nil
}

type UpdateParams struct {
	Name *string
	Icon *string
}

func (s *Service) Update(ctx context.Context, ownerID, id uuid.UUID, params UpdateParams) (*Category, error) {
	cat, err := s.Get(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	// System categories are shared; owners cannot edit them.
	if cat.System() {
		return nil, ErrNotFound
	}

	if params.Name != nil && *params.Name != cat.Name {
		count, err := s.repo.CountByName(ctx, ownerID, cat.Kind, *params.Name, &id)
		if err != nil {
			return nil, err
		}

		if count > 0 {
			return nil, errs.Validation("category name already exists")
		}

		cat.Name = *params.Name
	}

	if params.Icon != nil {
		cat.Icon = *params.Icon
	}

	if err := s.repo.UpdateCategory(ctx, cat); err != nil {
		return nil, err
	}

	return cat, nil
}

func (s *Service) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	cat, err := s.Get(ctx, ownerID, id)
	if err != nil {
		return err
	}

	if cat.System() {
		return ErrNotFound
	}

	return s.repo.DeactivateCategory(ctx, id)
}
