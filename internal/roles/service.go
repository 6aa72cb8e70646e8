package roles

import (
	"context"
	"errors"
	"fmt"

	"github.com/gatewarden/gatewarden/internal/binding"
	"github.com/gatewarden/gatewarden/internal/store"
)

// Service handles role use cases. Grant state changes go through the two
// reconcilers; the repository only touches the catalog row.
type Service struct {
	repo        Repository
	permissions *binding.Reconciler
	members     *binding.Reconciler
}

// NewService constructs a Service.
func NewService(repo Repository, permissions, members *binding.Reconciler) *Service {
	return &Service{repo: repo, permissions: permissions, members: members}
}

// Create stores a new role. Duplicate names pass through as
// store.ErrAlreadyExists.
func (s *Service) Create(ctx context.Context, name string) (Role, error) {
	role, err := s.repo.Insert(ctx, name)
	if err != nil {
		return Role{}, passThrough(err, store.ErrAlreadyExists)
	}
	return role, nil
}

// Get fetches a role by id.
func (s *Service) Get(ctx context.Context, id int64) (Role, error) {
	role, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return Role{}, passThrough(err, store.ErrNotFound)
	}
	return role, nil
}

// Disable soft-deletes the role. Callers treat store.ErrNotFound as success.
func (s *Service) Disable(ctx context.Context, id int64) error {
	if err := s.repo.DisableByID(ctx, id); err != nil {
		return passThrough(err, store.ErrNotFound)
	}
	return nil
}

// BindPermission grants a permission to the role, re-enabling a previously
// removed grant when one exists.
func (s *Service) BindPermission(ctx context.Context, roleID, permissionID int64) (binding.Binding, error) {
	return s.permissions.Bind(ctx, roleID, permissionID)
}

// UnbindPermission removes a permission grant from the role.
func (s *Service) UnbindPermission(ctx context.Context, roleID, permissionID int64) (binding.Binding, error) {
	return s.permissions.Unbind(ctx, roleID, permissionID)
}

// BindMember adds a user to the role.
func (s *Service) BindMember(ctx context.Context, roleID, userID int64) (binding.Binding, error) {
	return s.members.Bind(ctx, roleID, userID)
}

// UnbindMember removes a user from the role.
func (s *Service) UnbindMember(ctx context.Context, roleID, userID int64) (binding.Binding, error) {
	return s.members.Unbind(ctx, roleID, userID)
}

func passThrough(err error, keep error) error {
	if errors.Is(err, keep) || errors.Is(err, store.ErrTemporary) {
		return err
	}
	return fmt.Errorf("roles: %w", store.ErrFatal)
}
