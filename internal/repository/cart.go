package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/joralabs/jora-api/internal/domain/cart"
)

const cartItemSQL = `SELECT c.id, c.user_id, c.variant_id, c.quantity, c.created_at,
		v.sku, p.id, p.name, v.size, v.color,
		COALESCE(v.price_override, p.base_price) AS unit_price
	FROM cart_items c
	JOIN product_variants v ON v.id = c.variant_id
	JOIN products p ON p.id = v.product_id`

var _ cart.Repository = (*CartRepository)(nil)

// CartRepository implements cart.Repository backed by PostgreSQL.
type CartRepository struct {
	pool *pgxpool.Pool
}

// NewCartRepository returns a CartRepository that uses the given pool.
func NewCartRepository(pool *pgxpool.Pool) *CartRepository {
	return &CartRepository{pool: pool}
}

// ListByUser returns the user's cart items joined with product details.
func (r *CartRepository) ListByUser(ctx context.Context, userID string) ([]cart.Item, error) {
	rows, err := r.pool.Query(ctx, cartItemSQL+` WHERE c.user_id = $1 ORDER BY c.id`, userID)
	if err != nil {
		return nil, fmt.Errorf("listing cart for user %q: %w", userID, err)
	}
	return pgx.CollectRows(rows, scanCartItem)
}

// Get returns one cart item scoped to its owner.
func (r *CartRepository) Get(ctx context.Context, id int64, userID string) (*cart.Item, error) {
	rows, err := r.pool.Query(ctx, cartItemSQL+` WHERE c.id = $1 AND c.user_id = $2`, id, userID)
	if err != nil {
		return nil, fmt.Errorf("getting cart item %d: %w", id, err)
	}
	return collectCartItem(rows, id)
}

// FindByVariant returns the user's cart item for a given variant, if any.
func (r *CartRepository) FindByVariant(ctx context.Context, userID string, variantID int64) (*cart.Item, error) {
	rows, err := r.pool.Query(ctx, cartItemSQL+` WHERE c.user_id = $1 AND c.variant_id = $2`, userID, variantID)
	if err != nil {
		return nil, fmt.Errorf("finding cart item for variant %d: %w", variantID, err)
	}
	return collectCartItem(rows, variantID)
}

// Create inserts a new cart item and fills in its generated ID.
func (r *CartRepository) Create(ctx context.Context, item *cart.Item) error {
	err := r.pool.QueryRow(ctx, `INSERT INTO cart_items (user_id, variant_id, quantity)
		VALUES ($1, $2, $3) RETURNING id, created_at`,
		item.UserID, item.VariantID, item.Quantity,
	).Scan(&item.ID, &item.CreatedAt)
	if err != nil {
		return fmt.Errorf("creating cart item: %w", err)
	}
	return nil
}

// UpdateQuantity replaces a cart item's quantity and returns the fresh view.
func (r *CartRepository) UpdateQuantity(ctx context.Context, id int64, userID string, quantity int) (*cart.Item, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE cart_items SET quantity = $3 WHERE id = $1 AND user_id = $2`, id, userID, quantity)
	if err != nil {
		return nil, fmt.Errorf("updating cart item %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return nil, cart.ErrItemNotFound
	}
	return r.Get(ctx, id, userID)
}

// Delete removes one cart item scoped to its owner.
func (r *CartRepository) Delete(ctx context.Context, id int64, userID string) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM cart_items WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("deleting cart item %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return cart.ErrItemNotFound
	}
	return nil
}

// Clear removes all of the user's cart items.
func (r *CartRepository) Clear(ctx context.Context, userID string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM cart_items WHERE user_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("clearing cart for user %q: %w", userID, err)
	}
	return nil
}

func collectCartItem(rows pgx.Rows, id int64) (*cart.Item, error) {
	item, err := pgx.CollectExactlyOneRow(rows, scanCartItem)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, cart.ErrItemNotFound
		}
		return nil, fmt.Errorf("collecting cart item %d: %w", id, err)
	}
	return &item, nil
}

func scanCartItem(row pgx.CollectableRow) (cart.Item, error) {
	var it cart.Item
	err := row.Scan(
		&it.ID, &it.UserID, &it.VariantID, &it.Quantity, &it.CreatedAt,
		&it.SKU, &it.ProductID, &it.ProductName, &it.Size, &it.Color, &it.UnitPrice,
	)
	return it, err
}
