package order

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/joralabs/jora-api/internal/domain/pricing"
)

// Status is the fulfilment state of an order.
type Status string

const (
	StatusPending    Status = "pending"
	StatusConfirmed  Status = "confirmed"
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusDelivered  Status = "delivered"
	StatusCancelled  Status = "cancelled"
	StatusRefunded   Status = "refunded"
)

// Valid reports whether s is a known order status.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusProcessing, StatusShipped,
		StatusDelivered, StatusCancelled, StatusRefunded:
		return true
	}
	return false
}

// PaymentStatus is the payment state of an order. Payment itself is handled
// by an external gateway; only the state is recorded here.
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
	PaymentRefunded  PaymentStatus = "refunded"
)

var (
	// ErrNotFound is returned when an order does not exist or belongs to
	// another user.
	ErrNotFound = errors.New("order not found")
	// ErrNotCancellable is returned when cancelling an order that is past
	// the pending/confirmed stages.
	ErrNotCancellable = errors.New("order cannot be cancelled")
)

// Order is a placed customer order with its full price breakdown.
type Order struct {
	ID                string
	OrderNumber       string
	UserID            string
	Status            Status
	PaymentStatus     PaymentStatus
	PaymentMethod     string
	Subtotal          decimal.Decimal
	ShippingCost      decimal.Decimal
	TaxAmount         decimal.Decimal
	DiscountAmount    decimal.Decimal
	TotalAmount       decimal.Decimal
	CouponCode        string
	ShippingAddressID *int64
	BillingAddressID  *int64
	TrackingNumber    string
	Notes             string
	Items             []Item
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Item is one line of an order. Product name, variant details, and unit price
// are captured at purchase time and never change afterwards.
type Item struct {
	ID             int64
	VariantID      *int64
	ProductName    string
	VariantDetails string
	Quantity       int
	UnitPrice      decimal.Decimal
	TotalPrice     decimal.Decimal
}

// Cancellable reports whether the order may still be cancelled by the buyer.
func (o *Order) Cancellable() bool {
	return o.Status == StatusPending || o.Status == StatusConfirmed
}

// NewOrderNumber generates a human-readable order number of the form
// JORA<YYYYMMDD><6 random digits>.
func NewOrderNumber(now time.Time) string {
	return fmt.Sprintf("JORA%s%06d", now.Format("20060102"), rand.IntN(1_000_000))
}

// Repository defines persistence operations for orders.
type Repository interface {
	// Create persists the order, its items, and the stock decrements in one
	// transaction. A decrement that would drive stock negative fails the
	// whole transaction with pricing.InsufficientStockError.
	Create(ctx context.Context, o *Order, decrements []pricing.StockDecrement) error
	Get(ctx context.Context, id, userID string) (*Order, error)
	ListByUser(ctx context.Context, userID string) ([]Order, error)
	// CancelAndRestock marks the order cancelled and re-adds each item's
	// quantity to its variant's stock in one transaction.
	CancelAndRestock(ctx context.Context, o *Order) error
	UpdateStatus(ctx context.Context, id string, status Status, trackingNumber string) (*Order, error)
}
