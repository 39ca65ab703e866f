package coupon

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// DiscountType enumerates the supported coupon discount strategies.
type DiscountType string

const (
	// DiscountPercentage applies a percentage of the order subtotal,
	// optionally capped by MaxDiscount.
	DiscountPercentage DiscountType = "percentage"
	// DiscountFixed subtracts a flat amount from the order.
	DiscountFixed DiscountType = "fixed"
)

// ErrNotFound is returned by repositories when no coupon matches a code.
// Callers implementing the silent-miss policy treat it as a zero discount
// rather than a request failure.
var ErrNotFound = errors.New("coupon not found")

// Rule defines a coupon's discount behaviour and eligibility constraints.
type Rule struct {
	Code          string
	DiscountType  DiscountType
	Value         decimal.Decimal
	MinOrderValue decimal.Decimal
	// MaxDiscount caps percentage discounts. Nil means uncapped.
	// Ignored for fixed discounts.
	MaxDiscount *decimal.Decimal
	ValidFrom   time.Time
	ValidUntil  time.Time
	// UsageLimit is the maximum number of redemptions. Zero means unlimited.
	UsageLimit int
	UsedCount  int
	Active     bool
}

// ApplicableTo reports whether the rule can discount an order with the given
// subtotal at the given time.
func (r *Rule) ApplicableTo(subtotal decimal.Decimal, now time.Time) bool {
	if r == nil || !r.Active {
		return false
	}
	if now.Before(r.ValidFrom) || now.After(r.ValidUntil) {
		return false
	}
	if r.UsageLimit > 0 && r.UsedCount >= r.UsageLimit {
		return false
	}
	return subtotal.GreaterThanOrEqual(r.MinOrderValue)
}

// Repository provides lookup and mutation of coupon rules.
type Repository interface {
	FindByCode(ctx context.Context, code string) (*Rule, error)
	IncrementUses(ctx context.Context, code string) error
}
