// Package pricing computes the full price breakdown of an order (subtotal,
// coupon discount, tax, shipping, total) as a pure function over inventory
// snapshots. It performs no I/O; callers fetch variant snapshots and coupon
// rules up front and apply the emitted stock decrements inside the same
// database transaction that persists the order.
package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Sentinel errors for order pricing.
var (
	ErrEmptyItems = fmt.Errorf("items required")
)

// VariantNotFoundError indicates a requested variant does not exist.
type VariantNotFoundError struct {
	VariantID int64
}

func (e *VariantNotFoundError) Error() string {
	return fmt.Sprintf("variant %d not found", e.VariantID)
}

// InsufficientStockError indicates a line item requests more units than the
// variant has in stock.
type InsufficientStockError struct {
	SKU string
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s", e.SKU)
}

// InvalidQuantityError indicates a line item has a non-positive quantity.
type InvalidQuantityError struct {
	VariantID int64
}

func (e *InvalidQuantityError) Error() string {
	return fmt.Sprintf("quantity must be greater than 0 for variant %d", e.VariantID)
}

// LineItemRequest is one (variant, quantity) pair requested by the buyer.
type LineItemRequest struct {
	VariantID int64
	Quantity  int
}

// VariantSnapshot is a read-only view of a purchasable variant at pricing
// time. PriceOverride, when set, takes precedence over the parent product's
// BasePrice.
type VariantSnapshot struct {
	VariantID      int64
	SKU            string
	ProductID      string
	ProductName    string
	VariantDetails string
	BasePrice      decimal.Decimal
	PriceOverride  *decimal.Decimal
	Stock          int
}

// UnitPrice resolves the effective unit price of the variant.
func (v VariantSnapshot) UnitPrice() decimal.Decimal {
	if v.PriceOverride != nil {
		return *v.PriceOverride
	}
	return v.BasePrice
}

// PricedLineItem captures a line item's price at purchase time. It is a
// historical snapshot, immutable once the order is placed.
type PricedLineItem struct {
	VariantID      int64
	ProductName    string
	VariantDetails string
	Quantity       int
	UnitPrice      decimal.Decimal
	TotalPrice     decimal.Decimal
}

// StockDecrement instructs the persistence layer to reduce a variant's stock.
// All decrements for an order must be applied atomically with the order row.
// SKU is carried along for error reporting.
type StockDecrement struct {
	VariantID int64
	SKU       string
	Quantity  int
}

// PricedOrder is the fully computed price breakdown of an order.
// TotalAmount = Subtotal + TaxAmount + ShippingCost - DiscountAmount,
// clamped at zero.
type PricedOrder struct {
	Items          []PricedLineItem
	Subtotal       decimal.Decimal
	DiscountAmount decimal.Decimal
	TaxAmount      decimal.Decimal
	ShippingCost   decimal.Decimal
	TotalAmount    decimal.Decimal
	Decrements     []StockDecrement
}
