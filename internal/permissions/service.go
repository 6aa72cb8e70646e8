package permissions

import (
	"context"
	"errors"
	"fmt"

	"github.com/gatewarden/gatewarden/internal/store"
)

// Service handles permission use cases.
type Service struct {
	repo Repository
}

// NewService constructs a Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create stores a new permission.
func (s *Service) Create(ctx context.Context, name string) (Permission, error) {
	permission, err := s.repo.Insert(ctx, name)
	if err != nil {
		return Permission{}, passThrough(err, store.ErrAlreadyExists)
	}
	return permission, nil
}

// Get fetches a permission by id.
func (s *Service) Get(ctx context.Context, id int64) (Permission, error) {
	permission, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return Permission{}, passThrough(err, store.ErrNotFound)
	}
	return permission, nil
}

// Disable soft-deletes the permission. Grants referencing it stay in place;
// aggregation filters them out at read time.
func (s *Service) Disable(ctx context.Context, id int64) error {
	if err := s.repo.DisableByID(ctx, id); err != nil {
		return passThrough(err, store.ErrNotFound)
	}
	return nil
}

// ListFilter narrows and pages the permission listing. A zero RoleID means
// no role filter; an empty Name means no name filter.
type ListFilter struct {
	Name   string
	RoleID int64
	Offset int64
	Limit  int64
}

const (
	defaultListLimit = 50
	maxListLimit     = 500
)

// List returns a page of active permissions matching the filter, plus the
// total match count across all pages.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]Permission, int64, error) {
	if filter.Limit <= 0 {
		filter.Limit = defaultListLimit
	}
	if filter.Limit > maxListLimit {
		filter.Limit = maxListLimit
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	perms, total, err := s.repo.List(ctx, filter)
	if err != nil {
		if errors.Is(err, store.ErrTemporary) {
			return nil, 0, err
		}
		return nil, 0, fmt.Errorf("permissions: %w", store.ErrFatal)
	}
	return perms, total, nil
}

func passThrough(err error, keep error) error {
	if errors.Is(err, keep) || errors.Is(err, store.ErrTemporary) {
		return err
	}
	return fmt.Errorf("permissions: %w", store.ErrFatal)
}
