package groups

import (
	"context"

	"github.com/gatewarden/gatewarden/internal/entity"
	"github.com/gatewarden/gatewarden/internal/store"
)

// Repository defines persistence operations for the group catalog.
type Repository interface {
	Insert(ctx context.Context, name string) (Group, error)
	FindByID(ctx context.Context, id int64) (Group, error)
	DisableByID(ctx context.Context, id int64) error
}

// PGRepository implements Repository over the shared catalog repo.
type PGRepository struct {
	repo *entity.Repo
}

// NewRepository constructs a PGRepository.
func NewRepository(db *store.DB) *PGRepository {
	return &PGRepository{repo: entity.NewRepo(db, "groups", "group_id", "group_name")}
}

// Insert creates a group.
func (r *PGRepository) Insert(ctx context.Context, name string) (Group, error) {
	record, err := r.repo.Insert(ctx, name)
	if err != nil {
		return Group{}, err
	}
	return toGroup(record), nil
}

// FindByID fetches a group by id.
func (r *PGRepository) FindByID(ctx context.Context, id int64) (Group, error) {
	record, err := r.repo.FindByID(ctx, id)
	if err != nil {
		return Group{}, err
	}
	return toGroup(record), nil
}

// DisableByID soft-deletes a group without cascading to its bindings.
func (r *PGRepository) DisableByID(ctx context.Context, id int64) error {
	return r.repo.DisableByID(ctx, id)
}

func toGroup(record entity.Record) Group {
	return Group{
		ID:        record.ID,
		Name:      record.Name,
		CreatedAt: record.CreatedAt,
		UpdatedAt: record.UpdatedAt,
		Deleted:   record.Deleted,
	}
}

var _ Repository = (*PGRepository)(nil)
