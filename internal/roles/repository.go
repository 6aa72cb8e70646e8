package roles

import (
	"context"

	"github.com/gatewarden/gatewarden/internal/entity"
	"github.com/gatewarden/gatewarden/internal/store"
)

// Repository defines persistence operations for the role catalog.
type Repository interface {
	Insert(ctx context.Context, name string) (Role, error)
	FindByID(ctx context.Context, id int64) (Role, error)
	DisableByID(ctx context.Context, id int64) error
}

// PGRepository implements Repository over the shared catalog repo.
type PGRepository struct {
	repo *entity.Repo
}

// NewRepository constructs a PGRepository.
func NewRepository(db *store.DB) *PGRepository {
	return &PGRepository{repo: entity.NewRepo(db, "roles", "role_id", "role_name")}
}

// Insert creates a role.
func (r *PGRepository) Insert(ctx context.Context, name string) (Role, error) {
	record, err := r.repo.Insert(ctx, name)
	if err != nil {
		return Role{}, err
	}
	return toRole(record), nil
}

// FindByID fetches a role by id.
func (r *PGRepository) FindByID(ctx context.Context, id int64) (Role, error) {
	record, err := r.repo.FindByID(ctx, id)
	if err != nil {
		return Role{}, err
	}
	return toRole(record), nil
}

// DisableByID soft-deletes a role. Bindings are left untouched.
func (r *PGRepository) DisableByID(ctx context.Context, id int64) error {
	return r.repo.DisableByID(ctx, id)
}

func toRole(record entity.Record) Role {
	return Role{
		ID:        record.ID,
		Name:      record.Name,
		CreatedAt: record.CreatedAt,
		UpdatedAt: record.UpdatedAt,
		Deleted:   record.Deleted,
	}
}

var _ Repository = (*PGRepository)(nil)
