package cart

import (
	"context"

	"github.com/go-faster/errors"

	"github.com/joralabs/jora-api/internal/domain/catalog"
)

// Service implements cart operations with stock validation against the
// current inventory.
type Service struct {
	items    Repository
	variants catalog.VariantRepository
}

// NewService creates a cart Service.
func NewService(items Repository, variants catalog.VariantRepository) *Service {
	return &Service{items: items, variants: variants}
}

// List returns the user's cart items with product details.
func (s *Service) List(ctx context.Context, userID string) ([]Item, error) {
	return s.items.ListByUser(ctx, userID)
}

// Add puts a variant into the user's cart. Adding a variant already in the
// cart merges quantities instead of creating a duplicate row.
func (s *Service) Add(ctx context.Context, userID string, variantID int64, quantity int) (*Item, error) {
	if quantity <= 0 {
		return nil, errors.New("quantity must be greater than 0")
	}

	v, err := s.variants.Get(ctx, variantID)
	if err != nil {
		return nil, err
	}
	if v.StockQuantity < quantity {
		return nil, ErrInsufficientStock
	}

	existing, err := s.items.FindByVariant(ctx, userID, variantID)
	if err != nil && !errors.Is(err, ErrItemNotFound) {
		return nil, errors.Wrap(err, "find cart item")
	}
	if existing != nil {
		merged := existing.Quantity + quantity
		if v.StockQuantity < merged {
			return nil, ErrInsufficientStock
		}
		return s.items.UpdateQuantity(ctx, existing.ID, userID, merged)
	}

	item := &Item{
		UserID:    userID,
		VariantID: variantID,
		Quantity:  quantity,
	}
	if err := s.items.Create(ctx, item); err != nil {
		return nil, errors.Wrap(err, "create cart item")
	}
	return item, nil
}

// UpdateQuantity replaces a cart item's quantity after a stock check.
func (s *Service) UpdateQuantity(ctx context.Context, userID string, itemID int64, quantity int) (*Item, error) {
	if quantity <= 0 {
		return nil, errors.New("quantity must be greater than 0")
	}

	item, err := s.items.Get(ctx, itemID, userID)
	if err != nil {
		return nil, err
	}

	v, err := s.variants.Get(ctx, item.VariantID)
	if err != nil {
		return nil, err
	}
	if v.StockQuantity < quantity {
		return nil, ErrInsufficientStock
	}

	return s.items.UpdateQuantity(ctx, itemID, userID, quantity)
}

// Remove deletes one cart item.
func (s *Service) Remove(ctx context.Context, userID string, itemID int64) error {
	return s.items.Delete(ctx, itemID, userID)
}

// Clear empties the user's cart.
func (s *Service) Clear(ctx context.Context, userID string) error {
	return s.items.Clear(ctx, userID)
}
