package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/tiammomo/mamoji/internal/errs"
)

type Repository interface {
	CreateUser(ctx context.Context, u *User) error
	GetUser(ctx context.Context, id uuid.UUID) (*User, error)
	GetUserByUsername(ctx context.Context, username string) (*User, error)
}

type Service struct {
	repo   Repository
	tokens *TokenIssuer
}

func NewService(repo Repository, tokens *TokenIssuer) *Service {
	return &Service{repo: repo, tokens: tokens}
}

type RegisterParams struct {
	Username string
	Password string
	Nickname string
}

func (s *Service) Register(ctx context.Context, params RegisterParams) (*User, error) {
	username := strings.TrimSpace(params.Username)
	if username == "" {
		return nil, errs.Validation("username is required")
	}

	if len(params.Password) < 6 {
		return nil, errs.Validation("password must be at least 6 characters")
	}

	if _, err := s.repo.GetUserByUsername(ctx, username); err == nil {
		return nil, errs.ErrConflict
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(params.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	nickname := params.Nickname
	if nickname == "" {
		nickname = username
	}

	u := &User{
		Username:     username,
		Nickname:     nickname,
		PasswordHash: string(hash),
	}

	if err := s.repo.CreateUser(ctx, u); err != nil {
		return nil, err
	}

	return u, nil
}

// Login checks the credentials and returns a signed token for the user.
func (s *Service) Login(ctx context.Context, username, password string) (string, *User, error) {
	u, err := s.repo.GetUserByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", nil, ErrInvalidCredentials
		}

		return "", nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(u.ID)
	if err != nil {
		return "", nil, err
	}

	return token, u, nil
}

// Authenticate resolves a bearer token to its user.
func (s *Service) Authenticate(ctx context.Context, token string) (*User, error) {
	userID, err := s.tokens.Verify(token)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	u, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidCredentials
		}

		return nil, err
	}

	return u, nil
}
