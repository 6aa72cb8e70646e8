package groups

import (
	"context"
	"errors"
	"fmt"

	"github.com/gatewarden/gatewarden/internal/binding"
	"github.com/gatewarden/gatewarden/internal/store"
)

// Service handles group use cases.
type Service struct {
	repo        Repository
	permissions *binding.Reconciler
	members     *binding.Reconciler
}

// NewService constructs a Service.
func NewService(repo Repository, permissions, members *binding.Reconciler) *Service {
	return &Service{repo: repo, permissions: permissions, members: members}
}

// Create stores a new group.
func (s *Service) Create(ctx context.Context, name string) (Group, error) {
	group, err := s.repo.Insert(ctx, name)
	if err != nil {
		return Group{}, passThrough(err, store.ErrAlreadyExists)
	}
	return group, nil
}

// Get fetches a group by id.
func (s *Service) Get(ctx context.Context, id int64) (Group, error) {
	group, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return Group{}, passThrough(err, store.ErrNotFound)
	}
	return group, nil
}

// Disable soft-deletes the group.
func (s *Service) Disable(ctx context.Context, id int64) error {
	if err := s.repo.DisableByID(ctx, id); err != nil {
		return passThrough(err, store.ErrNotFound)
	}
	return nil
}

// BindPermission grants a permission to the group.
func (s *Service) BindPermission(ctx context.Context, groupID, permissionID int64) (binding.Binding, error) {
	return s.permissions.Bind(ctx, groupID, permissionID)
}

// UnbindPermission removes a permission grant from the group.
func (s *Service) UnbindPermission(ctx context.Context, groupID, permissionID int64) (binding.Binding, error) {
	return s.permissions.Unbind(ctx, groupID, permissionID)
}

// BindMember adds a user to the group.
func (s *Service) BindMember(ctx context.Context, groupID, userID int64) (binding.Binding, error) {
	return s.members.Bind(ctx, groupID, userID)
}

// UnbindMember removes a user from the group.
func (s *Service) UnbindMember(ctx context.Context, groupID, userID int64) (binding.Binding, error) {
	return s.members.Unbind(ctx, groupID, userID)
}

func passThrough(err error, keep error) error {
	if errors.Is(err, keep) || errors.Is(err, store.ErrTemporary) {
		return err
	}
	return fmt.Errorf("groups: %w", store.ErrFatal)
}
