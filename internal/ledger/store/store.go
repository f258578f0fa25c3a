package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/tiammomo/mamoji/internal/ledger"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// CreateLedger inserts the ledger and its owner membership in one database
// transaction.
func (s *Store) CreateLedger(ctx context.Context, l *ledger.Ledger) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("creating ledger: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO ledgers (name, description, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`

	err = tx.QueryRowContext(ctx, query, l.Name, l.Description, l.CreatedBy).
		Scan(&l.ID, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return fmt.Errorf("creating ledger: %w", err)
	}

	memberQuery := `
		INSERT INTO ledger_members (ledger_id, user_id, role, joined_at)
		VALUES ($1, $2, $3, NOW())
	`

	if _, err := tx.ExecContext(ctx, memberQuery, l.ID, l.CreatedBy, string(ledger.RoleOwner)); err != nil {
		return fmt.Errorf("enrolling ledger owner: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("creating ledger: %w", err)
	}

	return nil
}

func (s *Store) GetLedger(ctx context.Context, id uuid.UUID) (*ledger.Ledger, error) {
	query := `
		SELECT l.id, l.name, l.description, l.created_by, l.created_at, l.updated_at
		FROM ledgers l
		WHERE l.id = $1
	`

	var l ledger.Ledger

	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&l.ID, &l.Name, &l.Description, &l.CreatedBy, &l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ledger.ErrNotFound
		}

		return nil, fmt.Errorf("getting ledger: %w", err)
	}

	return &l, nil
}

func (s *Store) ListLedgers(ctx context.Context, userID uuid.UUID) ([]*ledger.Ledger, error) {
	query := `
		SELECT l.id, l.name, l.description, l.created_by, l.created_at, l.updated_at
		FROM ledgers l
		JOIN ledger_members m ON m.ledger_id = l.id
		WHERE m.user_id = $1
		ORDER BY l.created_at DESC
	`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("listing ledgers: %w", err)
	}
	defer rows.Close()

	var ledgers []*ledger.Ledger

	for rows.Next() {
		var l ledger.Ledger

		if err := rows.Scan(&l.ID, &l.Name, &l.Description, &l.CreatedBy, &l.CreatedAt, &l.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning ledger: %w", err)
		}

		ledgers = append(ledgers, &l)
	}

	return ledgers, rows.Err()
}

// DeleteLedger removes the ledger; memberships go with it via the foreign
// key cascade.
func (s *Store) DeleteLedger(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM ledgers WHERE id = $1`

	if _, err := s.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("deleting ledger: %w", err)
	}

	return nil
}

func (s *Store) GetMember(ctx context.Context, ledgerID, userID uuid.UUID) (*ledger.Member, error) {
	query := `
		SELECT m.ledger_id, m.user_id, m.role, m.joined_at
		FROM ledger_members m
		WHERE m.ledger_id = $1 AND m.user_id = $2
	`

	var m ledger.Member

	var role string

	err := s.db.QueryRowContext(ctx, query, ledgerID, userID).Scan(
		&m.LedgerID, &m.UserID, &role, &m.JoinedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ledger.ErrMemberNotFound
		}

		return nil, fmt.Errorf("getting ledger member: %w", err)
	}

	m.Role = ledger.Role(role)

	return &m, nil
}

func (s *Store) ListMembers(ctx context.Context, ledgerID uuid.UUID) ([]*ledger.Member, error) {
	query := `
		SELECT m.ledger_id, m.user_id, m.role, m.joined_at
		FROM ledger_members m
		WHERE m.ledger_id = $1
		ORDER BY m.joined_at
	`

	rows, err := s.db.QueryContext(ctx, query, ledgerID)
	if err != nil {
		return nil, fmt.Errorf("listing ledger members: %w", err)
	}
	defer rows.Close()

	var members []*ledger.Member

	for rows.Next() {
		var m ledger.Member

		var role string

		if err := rows.Scan(&m.LedgerID, &m.UserID, &role, &m.JoinedAt); err != nil {
			return nil, fmt.Errorf("scanning ledger member: %w", err)
		}

		m.Role = ledger.Role(role)

		members = append(members, &m)
	}

	return members, rows.Err()
}

func (s *Store) AddMember(ctx context.Context, m *ledger.Member) error {
	query := `
		INSERT INTO ledger_members (ledger_id, user_id, role, joined_at)
		VALUES ($1, $2, $3, NOW())
		RETURNING joined_at
	`

	err := s.db.QueryRowContext(ctx, query, m.LedgerID, m.UserID, string(m.Role)).Scan(&m.JoinedAt)
	if err != nil {
		return fmt.Errorf("adding ledger member: %w", err)
	}

	return nil
}

func (s *Store) UpdateMemberRole(ctx context.Context, ledgerID, userID uuid.UUID, role ledger.Role) error {
	query := `
		UPDATE ledger_members
		SET role = $1
		WHERE ledger_id = $2 AND user_id = $3
	`

	res, err := s.db.ExecContext(ctx, query, string(role), ledgerID, userID)
	if err != nil {
		return fmt.Errorf("updating member role: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating member role: %w", err)
	}

	if affected == 0 {
		return ledger.ErrMemberNotFound
	}

	return nil
}

func (s *Store) RemoveMember(ctx context.Context, ledgerID, userID uuid.UUID) error {
	query := `DELETE FROM ledger_members WHERE ledger_id = $1 AND user_id = $2`

	res, err := s.db.ExecContext(ctx, query, ledgerID, userID)
	if err != nil {
		return fmt.Errorf("removing ledger member: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("removing ledger member: %w", err)
	}

	if affected == 0 {
		return ledger.ErrMemberNotFound
	}

	return nil
}
