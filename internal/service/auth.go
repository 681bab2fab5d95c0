package service

import (
	"context"
	"errors"

	"accounthub/internal/domain/user"
	"accounthub/internal/security"
)

// Burned when the email lookup misses, so an unknown email and a wrong
// password take a comparable amount of time.
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

type AuthService struct {
	store UserStore
}

func NewAuthService(store UserStore) *AuthService {
	return &AuthService{store: store}
}

// CreateUser hashes the password and inserts the row. The store's unique
// index on email is the single source of truth for duplicates.
func (s *AuthService) CreateUser(ctx context.Context, name, email, password, role string) (user.User, error) {
	if role == "" {
		role = user.RoleUser
	}

	hash, err := security.HashPassword(password)

	if err != nil {
		return user.User{}, err
	}

	return s.store.Create(ctx, name, user.NormalizeEmail(email), hash, role)
}

// SignIn returns ErrInvalidCredentials for both an unknown email and a
// wrong password; callers cannot tell which check failed.
func (s *AuthService) SignIn(ctx context.Context, email, password string) (user.User, error) {
	u, err := s.store.GetByEmail(ctx, user.NormalizeEmail(email))

	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			_ = security.CheckPassword(dummyHash, password)
			return user.User{}, user.ErrInvalidCredentials
		}

		return user.User{}, err
	}

	err = security.CheckPassword(u.PasswordHash, password)

	if err != nil {
		return user.User{}, user.ErrInvalidCredentials
	}

	return u, nil
}
