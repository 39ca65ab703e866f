package catalog

import (
	"context"

	"github.com/go-faster/errors"
)

// ErrCategorySlugTaken is returned when creating a category with a slug that
// is already in use.
var ErrCategorySlugTaken = errors.New("category slug already exists")

// Category groups products; a nil ParentID marks a top-level category.
type Category struct {
	ID           int64
	Name         string
	Slug         string
	ParentID     *int64
	Description  string
	ImageURL     string
	DisplayOrder int
}

// CategoryRepository defines persistence operations for categories.
type CategoryRepository interface {
	// List returns all categories ordered by display order.
	List(ctx context.Context) ([]Category, error)
	Create(ctx context.Context, c *Category) error
}
