package category_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tiammomo/mamoji/internal/category"
	"github.com/tiammomo/mamoji/internal/errs"
)

type fakeRepo struct {
	categories map[uuid.UUID]*category.Category
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{categories: map[uuid.UUID]*category.Category{}}
}

func (f *fakeRepo) addSystem(name string, kind category.Kind) *category.Category {
	cat := &category.Category{ID: uuid.New(), Name: name, Kind: kind, Active: true}
	f.categories[cat.ID] = cat

	return cat
}

func (f *fakeRepo) CreateCategory(_ context.Context, cat *category.Category) error {
	cat.ID = uuid.New()
	f.categories[cat.ID] = cat

	return nil
}

func (f *fakeRepo) GetCategory(_ context.Context, id uuid.UUID) (*category.Category, error) {
	cat, ok := f.categories[id]
	if !ok || !cat.Active {
		return nil, category.ErrNotFound
	}

	copied := *cat

	return &copied, nil
}

func (f *fakeRepo) ListCategories(_ context.Context, ownerID uuid.UUID, kind *category.Kind) ([]*category.Category, error) {
	var out []*category.Category

	for _, cat := range f.categories {
		if !cat.Active {
			continue
		}

		if !cat.System() && *cat.OwnerID != ownerID {
			continue
		}

		if kind != nil && cat.Kind != *kind {
			continue
		}

		copied := *cat
		out = append(out, &copied)
	}

	return out, nil
}

func (f *fakeRepo) UpdateCategory(_ context.Context, cat *category.Category) error {
	stored, ok := f.categories[cat.ID]
	if !ok {
		return category.ErrNotFound
	}

	*stored = *cat

	return nil
}

func (f *fakeRepo) DeactivateCategory(_ context.Context, id uuid.UUID) error {
	cat, ok := f.categories[id]
	if !ok {
		return category.ErrNotFound
	}

	cat.Active = false

	return nil
}

func (f *fakeRepo) CountByName(_ context.Context, ownerID uuid.UUID, kind category.Kind, name string, excludeID *uuid.UUID) (int, error) {
	count := 0

	for _, cat := range f.categories {
		if !cat.Active || cat.Kind != kind || cat.Name != name {
			continue
		}

		if !cat.System() && *cat.OwnerID != ownerID {
			continue
		}

		if excludeID != nil && cat.ID == *excludeID {
			continue
		}

		count++
	}

	return count, nil
}

func TestService_Create(t *testing.T) {
	repo := newFakeRepo()
	svc := category.NewService(repo)
	owner := uuid.New()

	cat, err := svc.Create(context.Background(), owner, category.CreateParams{
		Name: "Dining",
		Kind: category.KindExpense,
		Icon: "🍜",
	})
	require.NoError(t, err)

	assert.Equal(t, owner, *cat.OwnerID)
	assert.True(t, cat.Active)

	_, err = svc.Create(context.Background(), owner, category.CreateParams{
		Name: "Dining",
		Kind: category.KindExpense,
	})
	assert.True(t, errs.IsValidation(err), "duplicate name for the same kind must be rejected")

	// Same name under the other kind is a different category.
	_, err = svc.Create(context.Background(), owner, category.CreateParams{
		Name: "Dining",
		Kind: category.KindIncome,
	})
	assert.NoError(t, err)
}

func TestService_Create_Validation(t *testing.T) {
	svc := category.NewService(newFakeRepo())

	_, err := svc.Create(context.Background(), uuid.New(), category.CreateParams{Kind: category.KindExpense})
	assert.True(t, errs.IsValidation(err))

	_, err = svc.Create(context.Background(), uuid.New(), category.CreateParams{Name: "Misc", Kind: "transfer"})
	assert.True(t, errs.IsValidation(err))
}

func TestService_Get_Visibility(t *testing.T) {
	repo := newFakeRepo()
	svc := category.NewService(repo)
	owner := uuid.New()
	stranger := uuid.New()

	system := repo.addSystem("Salary", category.KindIncome)

	mine, err := svc.Create(context.Background(), owner, category.CreateParams{
		Name: "Dining",
		Kind: category.KindExpense,
	})
	require.NoError(t, err)

	got, err := svc.Get(context.Background(), stranger, system.ID)
	require.NoError(t, err)
	assert.True(t, got.System())

	_, err = svc.Get(context.Background(), stranger, mine.ID)
	assert.ErrorIs(t, err, category.ErrNotFound)
}

func TestService_List_IncludesSystem(t *testing.T) {
	repo := newFakeRepo()
	svc := category.NewService(repo)
	owner := uuid.New()

	repo.addSystem("Salary", category.KindIncome)

	_, err := svc.Create(context.Background(), owner, category.CreateParams{
		Name: "Dining",
		Kind: category.KindExpense,
	})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), uuid.New(), category.CreateParams{
		Name: "Other's",
		Kind: category.KindExpense,
	})
	require.NoError(t, err)

	all, err := svc.List(context.Background(), owner, nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	kind := category.KindExpense
	expenses, err := svc.List(context.Background(), owner, &kind)
	require.NoError(t, err)
	require.Len(t, expenses, 1)
	assert.Equal(t, "Dining", expenses[0].Name)
}

func TestService_Update(t *testing.T) {
	repo := newFakeRepo()
	svc := category.NewService(repo)
	owner := uuid.New()

	cat, err := svc.Create(context.Background(), owner, category.CreateParams{
		Name: "Dining",
		Kind: category.KindExpense,
	})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), owner, category.CreateParams{
		Name: "Groceries",
		Kind: category.KindExpense,
	})
	require.NoError(t, err)

	name := "Groceries"
	_, err = svc.Update(context.Background(), owner, cat.ID, category.UpdateParams{Name: &name})
	assert.True(t, errs.IsValidation(err), "rename onto an existing name must be rejected")

	name = "Takeout"
	icon := "🥡"
	updated, err := svc.Update(context.Background(), owner, cat.ID, category.UpdateParams{Name: &name, Icon: &icon})
	require.NoError(t, err)
	assert.Equal(t, "Takeout", updated.Name)
	assert.Equal(t, "🥡", updated.Icon)
}

func TestService_SystemCategoriesReadOnly(t *testing.T) {
	repo := newFakeRepo()
	svc := category.NewService(repo)
	system := repo.addSystem("Salary", category.KindIncome)

	name := "Wages"
	_, err := svc.Update(context.Background(), uuid.New(), system.ID, category.UpdateParams{Name: &name})
	assert.ErrorIs(t, err, category.ErrNotFound)

	err = svc.Delete(context.Background(), uuid.New(), system.ID)
	assert.ErrorIs(t, err, category.ErrNotFound)
}

func TestService_Delete(t *testing.T) {
	repo := newFakeRepo()
	svc := category.NewService(repo)
	owner := uuid.New()

	cat, err := svc.Create(context.Background(), owner, category.CreateParams{
		Name: "Dining",
		Kind: category.KindExpense,
	})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), owner, cat.ID))

	_, err = svc.Get(context.Background(), owner, cat.ID)
	assert.ErrorIs(t, err, category.ErrNotFound)

	// The name is free again once the old category is inactive.
	_, err = svc.Create(context.Background(), owner, category.CreateParams{
		Name: "Dining",
		Kind: category.KindExpense,
	})
	assert.NoError(t, err)
}
