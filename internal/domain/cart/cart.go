package cart

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

var (
	// ErrItemNotFound is returned when a cart item does not exist or belongs
	// to another user.
	ErrItemNotFound = errors.New("cart item not found")
	// ErrInsufficientStock is returned when the requested quantity exceeds
	// the variant's available stock.
	ErrInsufficientStock = errors.New("insufficient stock")
)

// Item is one (variant, quantity) pair in a user's cart.
type Item struct {
	ID        int64
	UserID    string
	VariantID int64
	Quantity  int
	CreatedAt time.Time

	// Denormalized view fields populated on reads.
	SKU         string
	ProductID   string
	ProductName string
	Size        string
	Color       string
	UnitPrice   decimal.Decimal
}

// Repository defines persistence operations for cart items.
type Repository interface {
	ListByUser(ctx context.Context, userID string) ([]Item, error)
	Get(ctx context.Context, id int64, userID string) (*Item, error)
	FindByVariant(ctx context.Context, userID string, variantID int64) (*Item, error)
	Create(ctx context.Context, item *Item) error
	UpdateQuantity(ctx context.Context, id int64, userID string, quantity int) (*Item, error)
	Delete(ctx context.Context, id int64, userID string) error
	Clear(ctx context.Context, userID string) error
}

// WishlistItem marks a product a user wants to keep an eye on.
type WishlistItem struct {
	ID        int64
	UserID    string
	ProductID string
	CreatedAt time.Time

	ProductName string
	ProductSlug string
	BasePrice   decimal.Decimal
}

// WishlistRepository defines persistence operations for wishlist entries.
type WishlistRepository interface {
	ListByUser(ctx context.Context, userID string) ([]WishlistItem, error)
	Add(ctx context.Context, userID, productID string) (*WishlistItem, error)
	Remove(ctx context.Context, id int64, userID string) error
}
