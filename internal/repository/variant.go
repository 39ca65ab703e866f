package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/joralabs/jora-api/internal/domain/catalog"
	"github.com/joralabs/jora-api/internal/domain/pricing"
)

const snapshotSQL = `SELECT v.id, v.sku, v.product_id, p.name,
		v.size || ' / ' || v.color AS details,
		p.base_price, v.price_override, v.stock_quantity
	FROM product_variants v
	JOIN products p ON p.id = v.product_id
	WHERE v.id = ANY($1)`

var _ catalog.VariantRepository = (*VariantRepository)(nil)

// VariantRepository implements catalog.VariantRepository backed by PostgreSQL.
type VariantRepository struct {
	pool *pgxpool.Pool
}

// NewVariantRepository returns a VariantRepository that uses the given pool.
func NewVariantRepository(pool *pgxpool.Pool) *VariantRepository {
	return &VariantRepository{pool: pool}
}

// Snapshots returns pricing snapshots for the given variant IDs. IDs without
// a matching variant are absent from the result map.
func (r *VariantRepository) Snapshots(ctx context.Context, ids []int64) (map[int64]pricing.VariantSnapshot, error) {
	rows, err := r.pool.Query(ctx, snapshotSQL, ids)
	if err != nil {
		return nil, fmt.Errorf("snapshotting variants: %w", err)
	}
	snaps, err := pgx.CollectRows(rows, scanSnapshot)
	if err != nil {
		return nil, fmt.Errorf("snapshotting variants: %w", err)
	}

	out := make(map[int64]pricing.VariantSnapshot, len(snaps))
	for _, s := range snaps {
		out[s.VariantID] = s
	}
	return out, nil
}

// Get returns a single variant.
func (r *VariantRepository) Get(ctx context.Context, id int64) (*catalog.Variant, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+variantColumns+` FROM product_variants WHERE id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("getting variant %d: %w", id, err)
	}
	v, err := pgx.CollectExactlyOneRow(rows, scanVariant)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, catalog.ErrNotFound
		}
		return nil, fmt.Errorf("getting variant %d: %w", id, err)
	}
	return &v, nil
}

func scanSnapshot(row pgx.CollectableRow) (pricing.VariantSnapshot, error) {
	var s pricing.VariantSnapshot
	err := row.Scan(
		&s.VariantID, &s.SKU, &s.ProductID, &s.ProductName, &s.VariantDetails,
		&s.BasePrice, &s.PriceOverride, &s.Stock,
	)
	return s, err
}
