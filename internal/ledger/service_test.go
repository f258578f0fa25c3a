package ledger_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tiammomo/mamoji/internal/errs"
	"github.com/tiammomo/mamoji/internal/ledger"
)

type memberKey struct {
	ledgerID uuid.UUID
	userID   uuid.UUID
}

type fakeRepo struct {
	ledgers map[uuid.UUID]*ledger.Ledger
	members map[memberKey]*ledger.Member
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		ledgers: make(map[uuid.UUID]*ledger.Ledger),
		members: make(map[memberKey]*ledger.Member),
	}
}

func (r *fakeRepo) CreateLedger(_ context.Context, l *ledger.Ledger) error {
	l.ID = uuid.New()
	r.ledgers[l.ID] = l
	r.members[memberKey{l.ID, l.CreatedBy}] = &ledger.Member{
		LedgerID: l.ID,
		UserID:   l.CreatedBy,
		Role:     ledger.RoleOwner,
	}

	return nil
}

func (r *fakeRepo) GetLedger(_ context.Context, id uuid.UUID) (*ledger.Ledger, error) {
	l, ok := r.ledgers[id]
	if !ok {
		return nil, ledger.ErrNotFound
	}

	return l, nil
}

func (r *fakeRepo) ListLedgers(_ context.Context, userID uuid.UUID) ([]*ledger.Ledger, error) {
	var out []*ledger.Ledger

	for key, m := range r.members {
		if m.UserID == userID {
			out = append(out, r.ledgers[key.ledgerID])
		}
	}

	return out, nil
}

func (r *fakeRepo) DeleteLedger(_ context.Context, id uuid.UUID) error {
	delete(r.ledgers, id)

	for key := range r.members {
		if key.ledgerID == id {
			delete(r.members, key)
		}
	}

	return nil
}

func (r *fakeRepo) GetMember(_ context.Context, ledgerID, userID uuid.UUID) (*ledger.Member, error) {
	m, ok := r.members[memberKey{ledgerID, userID}]
	if !ok {
		return nil, ledger.ErrMemberNotFound
	}

	return m, nil
}

func (r *fakeRepo) ListMembers(_ context.Context, ledgerID uuid.UUID) ([]*ledger.Member, error) {
	var out []*ledger.Member

	for key, m := range r.members {
		if key.ledgerID == ledgerID {
			out = append(out, m)
		}
	}

	return out, nil
}

func (r *fakeRepo) AddMember(_ context.Context, m *ledger.Member) error {
	r.members[memberKey{m.LedgerID, m.UserID}] = m
	return nil
}

func (r *fakeRepo) UpdateMemberRole(_ context.Context, ledgerID, userID uuid.UUID, role ledger.Role) error {
	m, ok := r.members[memberKey{ledgerID, userID}]
	if !ok {
		return ledger.ErrMemberNotFound
	}

	m.Role = role

	return nil
}

func (r *fakeRepo) RemoveMember(_ context.Context, ledgerID, userID uuid.UUID) error {
	key := memberKey{ledgerID, userID}
	if _, ok := r.members[key]; !ok {
		return ledger.ErrMemberNotFound
	}

	delete(r.members, key)

	return nil
}

func TestService_Create(t *testing.T) {
	repo := newFakeRepo()
	svc := ledger.NewService(repo)
	owner := uuid.New()

	l, err := svc.Create(context.Background(), owner, "Household", "shared bills")
	require.NoError(t, err)

	role, err := svc.Authorize(context.Background(), owner, l.ID)
	require.NoError(t, err)
	assert.Equal(t, ledger.RoleOwner, role)

	_, err = svc.Create(context.Background(), owner, "   ", "")
	assert.True(t, errs.IsValidation(err))
}

func TestService_Authorize_NonMember(t *testing.T) {
	repo := newFakeRepo()
	svc := ledger.NewService(repo)
	owner := uuid.New()

	l, err := svc.Create(context.Background(), owner, "Household", "")
	require.NoError(t, err)

	_, err = svc.Authorize(context.Background(), uuid.New(), l.ID)
	assert.ErrorIs(t, err, ledger.ErrNotFound)
}

func TestService_AddMember(t *testing.T) {
	repo := newFakeRepo()
	svc := ledger.NewService(repo)
	owner := uuid.New()
	editor := uuid.New()
	outsider := uuid.New()

	l, err := svc.Create(context.Background(), owner, "Household", "")
	require.NoError(t, err)

	require.NoError(t, svc.AddMember(context.Background(), owner, l.ID, editor, ledger.RoleEditor))

	role, err := svc.Authorize(context.Background(), editor, l.ID)
	require.NoError(t, err)
	assert.Equal(t, ledger.RoleEditor, role)

	// Editors cannot manage members.
	err = svc.AddMember(context.Background(), editor, l.ID, outsider, ledger.RoleEditor)
	assert.True(t, errs.IsValidation(err))

	// There is only ever one owner.
	err = svc.AddMember(context.Background(), owner, l.ID, outsider, ledger.RoleOwner)
	assert.True(t, errs.IsValidation(err))

	err = svc.AddMember(context.Background(), owner, l.ID, editor, ledger.RoleEditor)
	assert.ErrorIs(t, err, errs.ErrConflict)
}

func TestService_UpdateRole(t *testing.T) {
	repo := newFakeRepo()
	svc := ledger.NewService(repo)
	owner := uuid.New()
	member := uuid.New()

	l, err := svc.Create(context.Background(), owner, "Household", "")
	require.NoError(t, err)
	require.NoError(t, svc.AddMember(context.Background(), owner, l.ID, member, ledger.RoleEditor))

	require.NoError(t, svc.UpdateRole(context.Background(), owner, l.ID, member, ledger.RoleAdmin))

	role, err := svc.Authorize(context.Background(), member, l.ID)
	require.NoError(t, err)
	assert.Equal(t, ledger.RoleAdmin, role)

	// The promoted admin can manage members, but nobody touches the owner.
	err = svc.UpdateRole(context.Background(), member, l.ID, owner, ledger.RoleEditor)
	assert.True(t, errs.IsValidation(err))
}

func TestService_RemoveMember(t *testing.T) {
	repo := newFakeRepo()
	svc := ledger.NewService(repo)
	owner := uuid.New()
	first := uuid.New()
	second := uuid.New()

	l, err := svc.Create(context.Background(), owner, "Household", "")
	require.NoError(t, err)
	require.NoError(t, svc.AddMember(context.Background(), owner, l.ID, first, ledger.RoleEditor))
	require.NoError(t, svc.AddMember(context.Background(), owner, l.ID, second, ledger.RoleEditor))

	// Editors cannot remove others, but may leave.
	err = svc.RemoveMember(context.Background(), first, l.ID, second)
	assert.True(t, errs.IsValidation(err))

	require.NoError(t, svc.RemoveMember(context.Background(), first, l.ID, first))

	_, err = svc.Authorize(context.Background(), first, l.ID)
	assert.ErrorIs(t, err, ledger.ErrNotFound)

	// The owner stays.
	err = svc.RemoveMember(context.Background(), owner, l.ID, owner)
	assert.True(t, errs.IsValidation(err))
}

func TestService_Delete(t *testing.T) {
	repo := newFakeRepo()
	svc := ledger.NewService(repo)
	owner := uuid.New()
	admin := uuid.New()

	l, err := svc.Create(context.Background(), owner, "Household", "")
	require.NoError(t, err)
	require.NoError(t, svc.AddMember(context.Background(), owner, l.ID, admin, ledger.RoleAdmin))

	err = svc.Delete(context.Background(), admin, l.ID)
	assert.ErrorIs(t, err, ledger.ErrNotFound)

	require.NoError(t, svc.Delete(context.Background(), owner, l.ID))

	_, err = svc.Get(context.Background(), owner, l.ID)
	assert.ErrorIs(t, err, ledger.ErrNotFound)
}
