package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/moneta-app/moneta-backend/internal/domain"
)

// CategoryRepository implements domain.CategoryRepository using PostgreSQL
type CategoryRepository struct {
	pool *pgxpool.Pool
}

// NewCategoryRepository creates a new CategoryRepository
func NewCategoryRepository(pool *pgxpool.Pool) *CategoryRepository {
	return &CategoryRepository{pool: pool}
}

const categoryColumns = `id, user_id, name, type, parent_id, icon, color, is_system, created_at, updated_at`

// Create inserts a category row
func (r *CategoryRepository) Create(category *domain.Category) (*domain.Category, error) {
	ctx := context.Background()

	row := r.pool.QueryRow(ctx, `
		insert into categories (id, user_id, name, type, parent_id, icon, color, is_system)
		values ($1, $2, $3, $4, $5, $6, $7, $8)
		returning `+categoryColumns,
		uuid.New(), category.OwnerID, category.Name, string(category.Type),
		category.ParentID, category.Icon, category.Color, category.IsSystem)

	created, err := scanCategory(row)
	if err != nil {
		return nil, storageErr(err)
	}
	return created, nil
}

// GetByID retrieves a category by ID
func (r *CategoryRepository) GetByID(id uuid.UUID) (*domain.Category, error) {
	ctx := context.Background()

	row := r.pool.QueryRow(ctx, `select `+categoryColumns+` from categories where id = $1`, id)
	category, err := scanCategory(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCategoryNotFound
		}
		return nil, storageErr(err)
	}
	return category, nil
}

// ListRootsForOwner returns system roots plus the owner's roots with child
// counts, optionally filtered by type
func (r *CategoryRepository) ListRootsForOwner(ownerID uuid.UUID, filters *domain.CategoryFilters) ([]*domain.CategoryWithChildCount, error) {
	ctx := context.Background()

	query := `
		select c.id, c.user_id, c.name, c.type, c.parent_id, c.icon, c.color, c.is_system, c.created_at, c.updated_at,
		       (select count(*) from categories ch where ch.parent_id = c.id) as child_count
		from categories c
		where c.parent_id is null
		  and (c.is_system = true or c.user_id = $1)`
	args := []any{ownerID}
	if filters != nil && filters.Type != nil {
		query += ` and c.type = $2`
		args = append(args, string(*filters.Type))
	}
	query += ` order by c.name asc`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, storageErr(err)
	}
	defer rows.Close()

	var out []*domain.CategoryWithChildCount
	for rows.Next() {
		var c domain.Category
		var typ string
		var childCount int
		if err := rows.Scan(&c.ID, &c.OwnerID, &c.Name, &typ, &c.ParentID, &c.Icon, &c.Color, &c.IsSystem, &c.CreatedAt, &c.UpdatedAt, &childCount); err != nil {
			return nil, storageErr(err)
		}
		c.Type = domain.CategoryType(typ)
		out = append(out, &domain.CategoryWithChildCount{Category: c, ChildCount: childCount})
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr(err)
	}
	return out, nil
}

// ListChildren returns the subcategories of a parent
func (r *CategoryRepository) ListChildren(parentID uuid.UUID) ([]*domain.Category, error) {
	ctx := context.Background()

	rows, err := r.pool.Query(ctx, `
		select `+categoryColumns+`
		from categories
		where parent_id = $1
		order by name asc`, parentID)
	if err != nil {
		return nil, storageErr(err)
	}
	defer rows.Close()

	var out []*domain.Category
	for rows.Next() {
		category, err := scanCategory(rows)
		if err != nil {
			return nil, storageErr(err)
		}
		out = append(out, category)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr(err)
	}
	return out, nil
}

// Update persists name, parent, icon and color. Owner, type and the system
// flag never change after creation.
func (r *CategoryRepository) Update(category *domain.Category) error {
	ctx := context.Background()

	ct, err := r.pool.Exec(ctx, `
		update categories
		set name = $1, parent_id = $2, icon = $3, color = $4, updated_at = now()
		where id = $5`,
		category.Name, category.ParentID, category.Icon, category.Color, category.ID)
	if err != nil {
		return storageErr(err)
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrCategoryNotFound
	}
	return nil
}

// Delete removes a category row
func (r *CategoryRepository) Delete(id uuid.UUID) error {
	ctx := context.Background()

	ct, err := r.pool.Exec(ctx, `delete from categories where id = $1`, id)
	if err != nil {
		return storageErr(err)
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrCategoryNotFound
	}
	return nil
}

// HasChildren reports whether any category references id as its parent
func (r *CategoryRepository) HasChildren(id uuid.UUID) (bool, error) {
	ctx := context.Background()

	var exists bool
	err := r.pool.QueryRow(ctx, `select exists(select 1 from categories where parent_id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, storageErr(err)
	}
	return exists, nil
}

// HasTransactions reports whether any transaction references the category
func (r *CategoryRepository) HasTransactions(id uuid.UUID) (bool, error) {
	ctx := context.Background()

	var exists bool
	err := r.pool.QueryRow(ctx, `select exists(select 1 from transactions where category_id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, storageErr(err)
	}
	return exists, nil
}

func scanCategory(row pgx.Row) (*domain.Category, error) {
	var c domain.Category
	var typ string
	if err := row.Scan(&c.ID, &c.OwnerID, &c.Name, &typ, &c.ParentID, &c.Icon, &c.Color, &c.IsSystem, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	c.Type = domain.CategoryType(typ)
	return &c, nil
}
