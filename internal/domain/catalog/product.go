package catalog

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/joralabs/jora-api/internal/domain/pricing"
)

var (
	// ErrNotFound is returned when a requested product or variant does not exist.
	ErrNotFound = errors.New("product not found")
	// ErrSlugTaken is returned when creating a product with a slug that is
	// already in use.
	ErrSlugTaken = errors.New("product slug already exists")
	// ErrSKUTaken is returned when creating a variant with a duplicate SKU.
	ErrSKUTaken = errors.New("variant sku already exists")
)

// Product is a catalog item. Purchasable configurations (size/color with
// their own stock) live in Variants.
type Product struct {
	ID                 string
	CategoryID         *int64
	Name               string
	Slug               string
	Description        string
	FabricDetails      string
	CareInstructions   string
	BasePrice          decimal.Decimal
	DiscountPercentage decimal.Decimal
	IsActive           bool
	Variants           []Variant
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// Variant is a specific purchasable configuration of a product with its own
// stock count and optional price override.
type Variant struct {
	ID            int64
	ProductID     string
	SKU           string
	Size          string
	Color         string
	StockQuantity int
	PriceOverride *decimal.Decimal
	Images        []string
}

// ProductFilter narrows a product listing.
type ProductFilter struct {
	CategoryID *int64
	// Search matches a substring of the product name or description.
	Search   string
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
	Offset   int
	Limit    int
}

// ProductUpdate carries optional field changes; nil fields are left untouched.
type ProductUpdate struct {
	Name               *string
	Description        *string
	FabricDetails      *string
	CareInstructions   *string
	BasePrice          *decimal.Decimal
	DiscountPercentage *decimal.Decimal
	CategoryID         *int64
	IsActive           *bool
}

// ProductRepository defines persistence operations for the product catalog.
type ProductRepository interface {
	List(ctx context.Context, filter ProductFilter) ([]Product, error)
	GetBySlug(ctx context.Context, slug string) (*Product, error)
	GetByID(ctx context.Context, id string) (*Product, error)
	// Create persists the product and its variants in one transaction.
	Create(ctx context.Context, p *Product) error
	Update(ctx context.Context, id string, upd ProductUpdate) (*Product, error)
	// Delete removes the product and its variants with explicit, ordered
	// deletes inside one transaction.
	Delete(ctx context.Context, id string) error
}

// VariantRepository provides inventory reads for pricing and cart checks.
type VariantRepository interface {
	// Snapshots returns pricing snapshots for the given variant IDs. Missing
	// IDs are simply absent from the result map.
	Snapshots(ctx context.Context, ids []int64) (map[int64]pricing.VariantSnapshot, error)
	Get(ctx context.Context, id int64) (*Variant, error)
}
