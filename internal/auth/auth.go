package auth

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// User is a registered account holder. The password is only ever stored as
// a bcrypt hash.
type User struct {
	ID           uuid.UUID
	Username     string
	Nickname     string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    *time.Time
}

var (
	ErrNotFound = errors.New("user not found")

	// ErrInvalidCredentials covers both unknown usernames and wrong
	// passwords, so login failures leak nothing about which it was.
	ErrInvalidCredentials = errors.New("invalid username or password")
)
