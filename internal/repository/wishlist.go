package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/joralabs/jora-api/internal/domain/cart"
)

const wishlistItemSQL = `SELECT w.id, w.user_id, w.product_id, w.created_at,
		p.name, p.slug, p.base_price
	FROM wishlist_items w
	JOIN products p ON p.id = w.product_id`

var _ cart.WishlistRepository = (*WishlistRepository)(nil)

// WishlistRepository implements cart.WishlistRepository backed by PostgreSQL.
type WishlistRepository struct {
	pool *pgxpool.Pool
}

// NewWishlistRepository returns a WishlistRepository that uses the given pool.
func NewWishlistRepository(pool *pgxpool.Pool) *WishlistRepository {
	return &WishlistRepository{pool: pool}
}

// ListByUser returns the user's wishlist with product details.
func (r *WishlistRepository) ListByUser(ctx context.Context, userID string) ([]cart.WishlistItem, error) {
	rows, err := r.pool.Query(ctx, wishlistItemSQL+` WHERE w.user_id = $1 ORDER BY w.id`, userID)
	if err != nil {
		return nil, fmt.Errorf("listing wishlist for user %q: %w", userID, err)
	}
	return pgx.CollectRows(rows, scanWishlistItem)
}

// Add upserts a wishlist entry; re-adding a product is a no-op.
func (r *WishlistRepository) Add(ctx context.Context, userID, productID string) (*cart.WishlistItem, error) {
	_, err := r.pool.Exec(ctx, `INSERT INTO wishlist_items (user_id, product_id)
		VALUES ($1, $2) ON CONFLICT (user_id, product_id) DO NOTHING`, userID, productID)
	if err != nil {
		return nil, fmt.Errorf("adding product %q to wishlist: %w", productID, err)
	}

	rows, err := r.pool.Query(ctx, wishlistItemSQL+` WHERE w.user_id = $1 AND w.product_id = $2`, userID, productID)
	if err != nil {
		return nil, fmt.Errorf("reading wishlist entry for %q: %w", productID, err)
	}
	item, err := pgx.CollectExactlyOneRow(rows, scanWishlistItem)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, cart.ErrItemNotFound
		}
		return nil, fmt.Errorf("reading wishlist entry for %q: %w", productID, err)
	}
	return &item, nil
}

// Remove deletes one wishlist entry scoped to its owner.
func (r *WishlistRepository) Remove(ctx context.Context, id int64, userID string) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM wishlist_items WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("removing wishlist item %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return cart.ErrItemNotFound
	}
	return nil
}

func scanWishlistItem(row pgx.CollectableRow) (cart.WishlistItem, error) {
	var it cart.WishlistItem
	err := row.Scan(
		&it.ID, &it.UserID, &it.ProductID, &it.CreatedAt,
		&it.ProductName, &it.ProductSlug, &it.BasePrice,
	)
	return it, err
}
