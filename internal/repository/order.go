package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/joralabs/jora-api/internal/domain/order"
	"github.com/joralabs/jora-api/internal/domain/pricing"
)

const (
	orderColumns = `id, order_number, user_id, status, payment_status, payment_method,
		subtotal, shipping_cost, tax_amount, discount_amount, total_amount, coupon_code,
		shipping_address_id, billing_address_id, tracking_number, notes, created_at, updated_at`

	orderItemColumns = `id, variant_id, product_name, variant_details, quantity, unit_price, total_price`

	// Conditional decrement: matches zero rows when remaining stock is too
	// low, which fails the whole order transaction. This closes the
	// check-then-decrement race without holding row locks across the
	// pricing computation.
	decrementStockSQL = `UPDATE product_variants
		SET stock_quantity = stock_quantity - $2
		WHERE id = $1 AND stock_quantity >= $2`

	restockSQL = `UPDATE product_variants
		SET stock_quantity = stock_quantity + $2
		WHERE id = $1`
)

var _ order.Repository = (*OrderRepository)(nil)

// OrderRepository implements order.Repository backed by PostgreSQL.
type OrderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository returns an OrderRepository that uses the given pool.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// Create persists the order, its items, and the stock decrements atomically.
func (r *OrderRepository) Create(ctx context.Context, o *order.Order, decrements []pricing.StockDecrement) error {
	return inTx(ctx, r.pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `INSERT INTO orders
			(id, order_number, user_id, status, payment_status, subtotal, shipping_cost,
			 tax_amount, discount_amount, total_amount, coupon_code,
			 shipping_address_id, billing_address_id, notes)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
			o.ID, o.OrderNumber, o.UserID, o.Status, o.PaymentStatus,
			o.Subtotal, o.ShippingCost, o.TaxAmount, o.DiscountAmount, o.TotalAmount,
			o.CouponCode, o.ShippingAddressID, o.BillingAddressID, o.Notes,
		)
		if err != nil {
			return fmt.Errorf("creating order %q: %w", o.ID, err)
		}

		for i := range o.Items {
			it := &o.Items[i]
			err := tx.QueryRow(ctx, `INSERT INTO order_items
				(order_id, variant_id, product_name, variant_details, quantity, unit_price, total_price)
				VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`,
				o.ID, it.VariantID, it.ProductName, it.VariantDetails,
				it.Quantity, it.UnitPrice, it.TotalPrice,
			).Scan(&it.ID)
			if err != nil {
				return fmt.Errorf("creating order item for %q: %w", o.ID, err)
			}
		}

		for _, d := range decrements {
			tag, err := tx.Exec(ctx, decrementStockSQL, d.VariantID, d.Quantity)
			if err != nil {
				return fmt.Errorf("decrementing stock for variant %d: %w", d.VariantID, err)
			}
			if tag.RowsAffected() == 0 {
				return &pricing.InsufficientStockError{SKU: d.SKU}
			}
		}
		return nil
	})
}

// Get returns one order with items, scoped to its owner.
func (r *OrderRepository) Get(ctx context.Context, id, userID string) (*order.Order, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return nil, fmt.Errorf("getting order %q: %w", id, err)
	}
	o, err := pgx.CollectExactlyOneRow(rows, scanOrder)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrNotFound
		}
		return nil, fmt.Errorf("getting order %q: %w", id, err)
	}

	items, err := r.loadItems(ctx, o.ID)
	if err != nil {
		return nil, err
	}
	o.Items = items
	return &o, nil
}

// ListByUser returns the user's orders with items, newest first.
func (r *OrderRepository) ListByUser(ctx context.Context, userID string) ([]order.Order, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("listing orders for user %q: %w", userID, err)
	}
	orders, err := pgx.CollectRows(rows, scanOrder)
	if err != nil {
		return nil, fmt.Errorf("listing orders for user %q: %w", userID, err)
	}

	if err := r.attachItems(ctx, orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// CancelAndRestock marks the order cancelled and restores each item's stock
// in one transaction. The status guard is re-checked inside the transaction
// so concurrent cancellations or shipments cannot double-restock.
func (r *OrderRepository) CancelAndRestock(ctx context.Context, o *order.Order) error {
	return inTx(ctx, r.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `UPDATE orders
			SET status = 'cancelled', updated_at = now()
			WHERE id = $1 AND status IN ('pending', 'confirmed')`, o.ID)
		if err != nil {
			return fmt.Errorf("cancelling order %q: %w", o.ID, err)
		}
		if tag.RowsAffected() == 0 {
			return order.ErrNotCancellable
		}

		for _, it := range o.Items {
			if it.VariantID == nil {
				continue
			}
			if _, err := tx.Exec(ctx, restockSQL, *it.VariantID, it.Quantity); err != nil {
				return fmt.Errorf("restocking variant %d: %w", *it.VariantID, err)
			}
		}
		return nil
	})
}

// UpdateStatus transitions an order's status and optionally sets a tracking
// number, returning the updated order.
func (r *OrderRepository) UpdateStatus(ctx context.Context, id string, status order.Status, trackingNumber string) (*order.Order, error) {
	sql := `UPDATE orders SET status = $2, updated_at = now() WHERE id = $1`
	args := []any{id, status}
	if trackingNumber != "" {
		sql = `UPDATE orders SET status = $2, tracking_number = $3, updated_at = now() WHERE id = $1`
		args = append(args, trackingNumber)
	}

	tag, err := r.pool.Exec(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("updating status of order %q: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return nil, order.ErrNotFound
	}

	rows, err := r.pool.Query(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("getting order %q: %w", id, err)
	}
	o, err := pgx.CollectExactlyOneRow(rows, scanOrder)
	if err != nil {
		return nil, fmt.Errorf("getting order %q: %w", id, err)
	}
	items, err := r.loadItems(ctx, o.ID)
	if err != nil {
		return nil, err
	}
	o.Items = items
	return &o, nil
}

func (r *OrderRepository) loadItems(ctx context.Context, orderID string) ([]order.Item, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+orderItemColumns+` FROM order_items WHERE order_id = $1 ORDER BY id`, orderID)
	if err != nil {
		return nil, fmt.Errorf("loading items of order %q: %w", orderID, err)
	}
	return pgx.CollectRows(rows, scanOrderItem)
}

// attachItems loads items for all given orders in a single query.
func (r *OrderRepository) attachItems(ctx context.Context, orders []order.Order) error {
	if len(orders) == 0 {
		return nil
	}
	ids := make([]string, len(orders))
	index := make(map[string]int, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
		index[o.ID] = i
	}

	rows, err := r.pool.Query(ctx,
		`SELECT order_id, `+orderItemColumns+` FROM order_items WHERE order_id = ANY($1) ORDER BY id`, ids)
	if err != nil {
		return fmt.Errorf("loading order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			orderID string
			it      order.Item
		)
		if err := rows.Scan(
			&orderID, &it.ID, &it.VariantID, &it.ProductName, &it.VariantDetails,
			&it.Quantity, &it.UnitPrice, &it.TotalPrice,
		); err != nil {
			return fmt.Errorf("scanning order item: %w", err)
		}
		i := index[orderID]
		orders[i].Items = append(orders[i].Items, it)
	}
	return rows.Err()
}

func scanOrder(row pgx.CollectableRow) (order.Order, error) {
	var o order.Order
	err := row.Scan(
		&o.ID, &o.OrderNumber, &o.UserID, &o.Status, &o.PaymentStatus, &o.PaymentMethod,
		&o.Subtotal, &o.ShippingCost, &o.TaxAmount, &o.DiscountAmount, &o.TotalAmount,
		&o.CouponCode, &o.ShippingAddressID, &o.BillingAddressID,
		&o.TrackingNumber, &o.Notes, &o.CreatedAt, &o.UpdatedAt,
	)
	return o, err
}

func scanOrderItem(row pgx.CollectableRow) (order.Item, error) {
	var it order.Item
	err := row.Scan(
		&it.ID, &it.VariantID, &it.ProductName, &it.VariantDetails,
		&it.Quantity, &it.UnitPrice, &it.TotalPrice,
	)
	return it, err
}
