package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/gatewarden/gatewarden/internal/store"
)

// PasswordHasher derives the stored hash for a raw password.
type PasswordHasher interface {
	Hash(ctx context.Context, password string) (string, error)
}

// Service handles user account use cases.
type Service struct {
	repo   Repository
	hasher PasswordHasher
}

// NewService constructs a Service.
func NewService(repo Repository, hasher PasswordHasher) *Service {
	return &Service{repo: repo, hasher: hasher}
}

// Create hashes the password and stores the new account. A taken username
// passes through as store.ErrAlreadyExists.
func (s *Service) Create(ctx context.Context, username, password string) (User, error) {
	hash, err := s.hasher.Hash(ctx, password)
	if err != nil {
		return User{}, err
	}
	user, err := s.repo.Insert(ctx, username, hash)
	if err != nil {
		return User{}, passThrough(err, store.ErrAlreadyExists)
	}
	return user, nil
}

// Get fetches a user by id.
func (s *Service) Get(ctx context.Context, id int64) (User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return User{}, passThrough(err, store.ErrNotFound)
	}
	return user, nil
}

// Disable soft-deletes the user. Callers treat store.ErrNotFound as success.
func (s *Service) Disable(ctx context.Context, id int64) error {
	if err := s.repo.DisableByID(ctx, id); err != nil {
		return passThrough(err, store.ErrNotFound)
	}
	return nil
}

// passThrough keeps the named outcome and temporary faults intact and
// collapses everything else to fatal.
func passThrough(err error, keep error) error {
	if errors.Is(err, keep) || errors.Is(err, store.ErrTemporary) {
		return err
	}
	return fmt.Errorf("users: %w", store.ErrFatal)
}
