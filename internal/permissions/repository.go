package permissions

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/gatewarden/gatewarden/internal/entity"
	"github.com/gatewarden/gatewarden/internal/store"
)

// Repository defines persistence operations for the permission catalog.
type Repository interface {
	Insert(ctx context.Context, name string) (Permission, error)
	FindByID(ctx context.Context, id int64) (Permission, error)
	DisableByID(ctx context.Context, id int64) error
	List(ctx context.Context, filter ListFilter) ([]Permission, int64, error)
}

// PGRepository implements Repository over the shared catalog repo. The
// filtered listing needs a role join, so it carries its own queries.
type PGRepository struct {
	db   *store.DB
	repo *entity.Repo
}

// NewRepository constructs a PGRepository.
func NewRepository(db *store.DB) *PGRepository {
	return &PGRepository{db: db, repo: entity.NewRepo(db, "permissions", "permission_id", "permission_name")}
}

// Insert creates a permission.
func (r *PGRepository) Insert(ctx context.Context, name string) (Permission, error) {
	record, err := r.repo.Insert(ctx, name)
	if err != nil {
		return Permission{}, err
	}
	return toPermission(record), nil
}

// FindByID fetches a permission by id.
func (r *PGRepository) FindByID(ctx context.Context, id int64) (Permission, error) {
	record, err := r.repo.FindByID(ctx, id)
	if err != nil {
		return Permission{}, err
	}
	return toPermission(record), nil
}

// DisableByID soft-deletes a permission.
func (r *PGRepository) DisableByID(ctx context.Context, id int64) error {
	return r.repo.DisableByID(ctx, id)
}

type permissionRow struct {
	ID        int64
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
	IsDeleted bool
}

// List returns a page of active permissions matching the filter and the
// total match count. A role filter joins the grant table and only follows
// active grants.
func (r *PGRepository) List(ctx context.Context, filter ListFilter) ([]Permission, int64, error) {
	where, args := listConditions(filter)

	listQuery := "SELECT p.permission_id, p.permission_name, p.created_at, p.updated_at, p.is_deleted FROM permissions p" +
		where +
		fmt.Sprintf(" ORDER BY p.permission_id OFFSET $%d LIMIT $%d", len(args)+1, len(args)+2)
	rows, err := store.ListItems(ctx, r.db, listQuery, pgx.RowToStructByPos[permissionRow],
		append(args, filter.Offset, filter.Limit)...)
	if err != nil {
		return nil, 0, err
	}

	countQuery := "SELECT count(1) FROM permissions p" + where
	total, err := store.GetItem(ctx, r.db, countQuery, pgx.RowTo[int64], args...)
	if err != nil {
		return nil, 0, err
	}

	perms := make([]Permission, len(rows))
	for i, row := range rows {
		perms[i] = Permission{
			ID:        row.ID,
			Name:      row.Name,
			CreatedAt: row.CreatedAt,
			UpdatedAt: row.UpdatedAt,
			Deleted:   row.IsDeleted,
		}
	}
	return perms, total, nil
}

func listConditions(filter ListFilter) (string, []any) {
	var (
		clause strings.Builder
		args   []any
	)
	if filter.RoleID > 0 {
		args = append(args, filter.RoleID)
		clause.WriteString(" LEFT JOIN role_permissions rp USING (permission_id) WHERE rp.role_id=$1 AND rp.is_deleted=FALSE")
	} else {
		clause.WriteString(" WHERE TRUE")
	}
	clause.WriteString(" AND p.is_deleted=FALSE")
	if filter.Name != "" {
		args = append(args, filter.Name)
		clause.WriteString(fmt.Sprintf(" AND p.permission_name=$%d", len(args)))
	}
	return clause.String(), args
}

func toPermission(record entity.Record) Permission {
	return Permission{
		ID:        record.ID,
		Name:      record.Name,
		CreatedAt: record.CreatedAt,
		UpdatedAt: record.UpdatedAt,
		Deleted:   record.Deleted,
	}
}

var _ Repository = (*PGRepository)(nil)
