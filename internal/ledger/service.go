package ledger

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/tiammomo/mamoji/internal/errs"
)

type Repository interface {
	// CreateLedger persists the ledger and enrolls its creator as owner in
	// one atomic step.
	CreateLedger(ctx context.Context, l *Ledger) error

	GetLedger(ctx context.Context, id uuid.UUID) (*Ledger, error)
	ListLedgers(ctx context.Context, userID uuid.UUID) ([]*Ledger, error)
	DeleteLedger(ctx context.Context, id uuid.UUID) error

	GetMember(ctx context.Context, ledgerID, userID uuid.UUID) (*Member, error)
	ListMembers(ctx context.Context, ledgerID uuid.UUID) ([]*Member, error)
	AddMember(ctx context.Context, m *Member) error
	UpdateMemberRole(ctx context.Context, ledgerID, userID uuid.UUID, role Role) error
	RemoveMember(ctx context.Context, ledgerID, userID uuid.UUID) error
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Create(ctx context.Context, userID uuid.UUID, name, description string) (*Ledger, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errs.Validation("ledger name is required")
	}

	l := &Ledger{
		Name:        name,
		Description: description,
		CreatedBy:   userID,
	}

	if err := s.repo.CreateLedger(ctx, l); err != nil {
		return nil, err
	}

	return l, nil
}

// Get returns the ledger if the user is a member of it.
func (s *Service) Get(ctx context.Context, userID, ledgerID uuid.UUID) (*Ledger, error) {
	if _, err := s.member(ctx, ledgerID, userID); err != nil {
		return nil, err
	}

	return s.repo.GetLedger(ctx, ledgerID)
}

func (s *Service) List(ctx context.Context, userID uuid.UUID) ([]*Ledger, error) {
	return s.repo.ListLedgers(ctx, userID)
}

// Delete removes a ledger and its memberships. Only the owner may do this.
func (s *Service) Delete(ctx context.Context, userID, ledgerID uuid.UUID) error {
	m, err := s.member(ctx, ledgerID, userID)
	if err != nil {
		return err
	}

	if m.Role != RoleOwner {
		return ErrNotFound
	}

	return s.repo.DeleteLedger(ctx, ledgerID)
}

// Authorize resolves the caller's role in the ledger; non-members get
// not-found.
func (s *Service) Authorize(ctx context.Context, userID, ledgerID uuid.UUID) (Role, error) {
	m, err := s.member(ctx, ledgerID, userID)
	if err != nil {
		return "", err
	}

	return m.Role, nil
}

func (s *Service) Members(ctx context.Context, userID, ledgerID uuid.UUID) ([]*Member, error) {
	if _, err := s.member(ctx, ledgerID, userID); err != nil {
		return nil, err
	}

	return s.repo.ListMembers(ctx, ledgerID)
}

// AddMember enrolls a user with the given role. Only owner and admin may
// add members, and there is never more than one owner.
func (s *Service) AddMember(ctx context.Context, actorID, ledgerID, userID uuid.UUID, role Role) error {
	actor, err := s.member(ctx, ledgerID, actorID)
	if err != nil {
		return err
	}

	if !actor.Role.CanManageMembers() {
		return errs.Validation("only the owner or an admin can manage members")
	}

	if !role.Valid() || role == RoleOwner {
		return errs.Validation("role must be admin or editor")
	}

	if _, err := s.repo.GetMember(ctx, ledgerID, userID); err == nil {
		return errs.ErrConflict
	} else if !errors.Is(err, ErrMemberNotFound) {
		return err
	}

	return s.repo.AddMember(ctx, &Member{
		LedgerID: ledgerID,
		UserID:   userID,
		Role:     role,
	})
}

// UpdateRole changes a member's role. The owner's role is fixed.
func (s *Service) UpdateRole(ctx context.Context, actorID, ledgerID, userID uuid.UUID, role Role) error {
	actor, err := s.member(ctx, ledgerID, actorID)
	if err != nil {
		return err
	}

	if !actor.Role.CanManageMembers() {
		return errs.Validation("only the owner or an admin can manage members")
	}

	if !role.Valid() || role == RoleOwner {
		return errs.Validation("role must be admin or editor")
	}

	target, err := s.repo.GetMember(ctx, ledgerID, userID)
	if err != nil {
		return err
	}

	if target.Role == RoleOwner {
		return errs.Validation("the owner's role cannot be changed")
	}

	return s.repo.UpdateMemberRole(ctx, ledgerID, userID, role)
}

// RemoveMember drops a member. Owner and admin may remove others; any
// member may leave on their own. The owner can do neither.
func (s *Service) RemoveMember(ctx context.Context, actorID, ledgerID, userID uuid.UUID) error {
	actor, err := s.member(ctx, ledgerID, actorID)
	if err != nil {
		return err
	}

	if actorID != userID && !actor.Role.CanManageMembers() {
		return errs.Validation("only the owner or an admin can manage members")
	}

	target, err := s.repo.GetMember(ctx, ledgerID, userID)
	if err != nil {
		return err
	}

	if target.Role == RoleOwner {
		return errs.Validation("the owner cannot be removed")
	}

	return s.repo.RemoveMember(ctx, ledgerID, userID)
}

func (s *Service) member(ctx context.Context, ledgerID, userID uuid.UUID) (*Member, error) {
	m, err := s.repo.GetMember(ctx, ledgerID, userID)
	if err != nil {
		if errors.Is(err, ErrMemberNotFound) {
			return nil, ErrNotFound
		}

		return nil, err
	}

	return m, nil
}
