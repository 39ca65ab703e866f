package repository

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/joralabs/jora-api/internal/domain/catalog"
)

const productColumns = `id, category_id, name, slug, description, fabric_details,
	care_instructions, base_price, discount_percentage, is_active, created_at, updated_at`

const variantColumns = `id, product_id, sku, size, color, stock_quantity, price_override, images`

var _ catalog.ProductRepository = (*ProductRepository)(nil)

// ProductRepository implements catalog.ProductRepository backed by PostgreSQL.
type ProductRepository struct {
	pool *pgxpool.Pool
}

// NewProductRepository returns a ProductRepository that uses the given pool.
func NewProductRepository(pool *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{pool: pool}
}

// List returns active products matching the filter, with their variants.
func (r *ProductRepository) List(ctx context.Context, f catalog.ProductFilter) ([]catalog.Product, error) {
	var (
		sb   strings.Builder
		args []any
	)
	sb.WriteString(`SELECT ` + productColumns + ` FROM products WHERE is_active = TRUE`)

	arg := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	if f.CategoryID != nil {
		sb.WriteString(` AND category_id = ` + arg(*f.CategoryID))
	}
	if f.Search != "" {
		p := arg("%" + f.Search + "%")
		sb.WriteString(` AND (name ILIKE ` + p + ` OR description ILIKE ` + p + `)`)
	}
	if f.MinPrice != nil {
		sb.WriteString(` AND base_price >= ` + arg(*f.MinPrice))
	}
	if f.MaxPrice != nil {
		sb.WriteString(` AND base_price <= ` + arg(*f.MaxPrice))
	}

	sb.WriteString(` ORDER BY created_at DESC, id`)
	if f.Limit > 0 {
		sb.WriteString(` LIMIT ` + arg(f.Limit))
	}
	if f.Offset > 0 {
		sb.WriteString(` OFFSET ` + arg(f.Offset))
	}

	rows, err := r.pool.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}
	products, err := pgx.CollectRows(rows, scanProduct)
	if err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}

	if err := r.attachVariants(ctx, products); err != nil {
		return nil, err
	}
	return products, nil
}

// GetBySlug returns a single product with its variants.
func (r *ProductRepository) GetBySlug(ctx context.Context, slug string) (*catalog.Product, error) {
	return r.getOne(ctx, `SELECT `+productColumns+` FROM products WHERE slug = $1`, slug)
}

// GetByID returns a single product with its variants.
func (r *ProductRepository) GetByID(ctx context.Context, id string) (*catalog.Product, error) {
	return r.getOne(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id)
}

func (r *ProductRepository) getOne(ctx context.Context, sql string, arg any) (*catalog.Product, error) {
	rows, err := r.pool.Query(ctx, sql, arg)
	if err != nil {
		return nil, fmt.Errorf("getting product: %w", err)
	}
	p, err := pgx.CollectExactlyOneRow(rows, scanProduct)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, catalog.ErrNotFound
		}
		return nil, fmt.Errorf("getting product: %w", err)
	}

	products := []catalog.Product{p}
	if err := r.attachVariants(ctx, products); err != nil {
		return nil, err
	}
	return &products[0], nil
}

// Create persists the product and its variants in one transaction.
func (r *ProductRepository) Create(ctx context.Context, p *catalog.Product) error {
	return inTx(ctx, r.pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `INSERT INTO products
			(id, category_id, name, slug, description, fabric_details, care_instructions,
			 base_price, discount_percentage, is_active)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
			p.ID, p.CategoryID, p.Name, p.Slug, p.Description, p.FabricDetails,
			p.CareInstructions, p.BasePrice, p.DiscountPercentage, p.IsActive,
		)
		if err != nil {
			if uniqueViolation(err, "products_slug_key") {
				return catalog.ErrSlugTaken
			}
			return fmt.Errorf("creating product %q: %w", p.Slug, err)
		}

		for i := range p.Variants {
			v := &p.Variants[i]
			v.ProductID = p.ID
			err := tx.QueryRow(ctx, `INSERT INTO product_variants
				(product_id, sku, size, color, stock_quantity, price_override, images)
				VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`,
				v.ProductID, v.SKU, v.Size, v.Color, v.StockQuantity, v.PriceOverride, v.Images,
			).Scan(&v.ID)
			if err != nil {
				if uniqueViolation(err, "product_variants_sku_key") {
					return catalog.ErrSKUTaken
				}
				return fmt.Errorf("creating variant %q: %w", v.SKU, err)
			}
		}
		return nil
	})
}

// Update applies the non-nil fields of upd and returns the updated product.
func (r *ProductRepository) Update(ctx context.Context, id string, upd catalog.ProductUpdate) (*catalog.Product, error) {
	var (
		sets []string
		args []any
	)
	set := func(column string, v any) {
		args = append(args, v)
		sets = append(sets, column+" = $"+strconv.Itoa(len(args)))
	}

	if upd.Name != nil {
		set("name", *upd.Name)
	}
	if upd.Description != nil {
		set("description", *upd.Description)
	}
	if upd.FabricDetails != nil {
		set("fabric_details", *upd.FabricDetails)
	}
	if upd.CareInstructions != nil {
		set("care_instructions", *upd.CareInstructions)
	}
	if upd.BasePrice != nil {
		set("base_price", *upd.BasePrice)
	}
	if upd.DiscountPercentage != nil {
		set("discount_percentage", *upd.DiscountPercentage)
	}
	if upd.CategoryID != nil {
		set("category_id", *upd.CategoryID)
	}
	if upd.IsActive != nil {
		set("is_active", *upd.IsActive)
	}
	if len(sets) == 0 {
		return r.GetByID(ctx, id)
	}
	sets = append(sets, "updated_at = now()")

	args = append(args, id)
	sql := `UPDATE products SET ` + strings.Join(sets, ", ") +
		` WHERE id = $` + strconv.Itoa(len(args))

	tag, err := r.pool.Exec(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("updating product %q: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return nil, catalog.ErrNotFound
	}
	return r.GetByID(ctx, id)
}

// Delete removes the product and its variants with explicit ordered deletes.
func (r *ProductRepository) Delete(ctx context.Context, id string) error {
	return inTx(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM product_variants WHERE product_id = $1`, id); err != nil {
			return fmt.Errorf("deleting variants of product %q: %w", id, err)
		}
		tag, err := tx.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("deleting product %q: %w", id, err)
		}
		if tag.RowsAffected() == 0 {
			return catalog.ErrNotFound
		}
		return nil
	})
}

// attachVariants loads and attaches variants for all given products.
func (r *ProductRepository) attachVariants(ctx context.Context, products []catalog.Product) error {
	if len(products) == 0 {
		return nil
	}
	ids := make([]string, len(products))
	index := make(map[string]int, len(products))
	for i, p := range products {
		ids[i] = p.ID
		index[p.ID] = i
	}

	rows, err := r.pool.Query(ctx,
		`SELECT `+variantColumns+` FROM product_variants WHERE product_id = ANY($1) ORDER BY id`, ids)
	if err != nil {
		return fmt.Errorf("loading variants: %w", err)
	}
	variants, err := pgx.CollectRows(rows, scanVariant)
	if err != nil {
		return fmt.Errorf("loading variants: %w", err)
	}

	for _, v := range variants {
		i := index[v.ProductID]
		products[i].Variants = append(products[i].Variants, v)
	}
	return nil
}

func scanProduct(row pgx.CollectableRow) (catalog.Product, error) {
	var p catalog.Product
	err := row.Scan(
		&p.ID, &p.CategoryID, &p.Name, &p.Slug, &p.Description, &p.FabricDetails,
		&p.CareInstructions, &p.BasePrice, &p.DiscountPercentage, &p.IsActive,
		&p.CreatedAt, &p.UpdatedAt,
	)
	return p, err
}

func scanVariant(row pgx.CollectableRow) (catalog.Variant, error) {
	var v catalog.Variant
	err := row.Scan(
		&v.ID, &v.ProductID, &v.SKU, &v.Size, &v.Color,
		&v.StockQuantity, &v.PriceOverride, &v.Images,
	)
	return v, err
}
