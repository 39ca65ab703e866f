package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/joralabs/jora-api/internal/domain/catalog"
)

var _ catalog.CategoryRepository = (*CategoryRepository)(nil)

// CategoryRepository implements catalog.CategoryRepository backed by PostgreSQL.
type CategoryRepository struct {
	pool *pgxpool.Pool
}

// NewCategoryRepository returns a CategoryRepository that uses the given pool.
func NewCategoryRepository(pool *pgxpool.Pool) *CategoryRepository {
	return &CategoryRepository{pool: pool}
}

// List returns all categories ordered by display order.
func (r *CategoryRepository) List(ctx context.Context) ([]catalog.Category, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, slug, parent_id, description, image_url, display_order
		FROM categories ORDER BY display_order, id`)
	if err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}
	return pgx.CollectRows(rows, scanCategory)
}

// Create persists a new category and fills in its generated ID.
func (r *CategoryRepository) Create(ctx context.Context, c *catalog.Category) error {
	err := r.pool.QueryRow(ctx, `INSERT INTO categories
		(name, slug, parent_id, description, image_url, display_order)
		VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
		c.Name, c.Slug, c.ParentID, c.Description, c.ImageURL, c.DisplayOrder,
	).Scan(&c.ID)
	if err != nil {
		if uniqueViolation(err, "categories_slug_key") {
			return catalog.ErrCategorySlugTaken
		}
		return fmt.Errorf("creating category %q: %w", c.Slug, err)
	}
	return nil
}

func scanCategory(row pgx.CollectableRow) (catalog.Category, error) {
	var c catalog.Category
	err := row.Scan(&c.ID, &c.Name, &c.Slug, &c.ParentID, &c.Description, &c.ImageURL, &c.DisplayOrder)
	return c, err
}
