package ledger

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Role orders what a member may do inside a shared ledger. Every role may
// record transactions; owner and admin also manage members.
type Role string

const (
	RoleOwner  Role = "owner"
	RoleAdmin  Role = "admin"
	RoleEditor Role = "editor"
)

func (r Role) Valid() bool {
	switch r {
	case RoleOwner, RoleAdmin, RoleEditor:
		return true
	}

	return false
}

// CanManageMembers reports whether the role may add, remove or re-role
// other members.
func (r Role) CanManageMembers() bool {
	return r == RoleOwner || r == RoleAdmin
}

// Ledger is a bookkeeping space shared between members. Its creator is the
// single owner.
type Ledger struct {
	ID          uuid.UUID
	Name        string
	Description string
	CreatedBy   uuid.UUID
	CreatedAt   time.Time
	UpdatedAt   *time.Time
}

// Member ties a user to a ledger with a role.
type Member struct {
	LedgerID uuid.UUID
	UserID   uuid.UUID
	Role     Role
	JoinedAt time.Time
}

var (
	ErrNotFound       = errors.New("ledger not found")
	ErrMemberNotFound = errors.New("ledger member not found")
)
