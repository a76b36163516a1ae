package identity

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/talentledger/talentledger/internal/apperr"
)

const minPasswordLength = 8

var errInvalidCredentials = apperr.New(apperr.KindUnauthorized, "invalid email or password")

// Service manages identity lifecycle.
type Service struct {
	repo Repository
}

// NewService creates a new identity service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Register creates a user with the default role and a bcrypt password hash.
func (s *Service) Register(ctx context.Context, creds Credentials) (User, error) {
	email := normalizeEmail(creds.Email)
	if email == "" || !strings.Contains(email, "@") {
		return User{}, apperr.New(apperr.KindValidation, "a valid email is required")
	}
	if len(creds.Password) < minPasswordLength {
		return User{}, apperr.New(apperr.KindValidation, "password must be at least 8 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(creds.Password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, apperr.Internal(err)
	}

	user := User{
		ID:           uuid.New().String(),
		Email:        email,
		Role:         RoleUser,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, apperr.ErrConflict) {
			return User{}, apperr.New(apperr.KindConflict, "email already registered")
		}
		return User{}, apperr.Internal(err)
	}

	return user, nil
}

// Authenticate verifies credentials. Unknown emails and wrong passwords are
// indistinguishable to the caller.
func (s *Service) Authenticate(ctx context.Context, creds Credentials) (User, error) {
	user, err := s.repo.FindByEmail(ctx, normalizeEmail(creds.Email))
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return User{}, errInvalidCredentials
		}
		return User{}, apperr.Internal(err)
	}

	if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(creds.Password)); err != nil {
		return User{}, errInvalidCredentials
	}

	return user, nil
}

// Get loads a user by id.
func (s *Service) Get(ctx context.Context, id string) (User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return User{}, apperr.New(apperr.KindNotFound, "user not found")
		}
		return User{}, apperr.Internal(err)
	}
	return user, nil
}

// RevokeTokens invalidates every token issued to the user so far.
func (s *Service) RevokeTokens(ctx context.Context, id string) error {
	if _, err := s.repo.IncrementTokenVersion(ctx, id); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return apperr.New(apperr.KindNotFound, "user not found")
		}
		return apperr.Internal(err)
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
