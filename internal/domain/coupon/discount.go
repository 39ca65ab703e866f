package coupon

import (
	"time"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// DiscountFor computes the discount a rule grants on the given subtotal.
//
// A nil or inapplicable rule (inactive, outside its validity window, usage
// limit exhausted, or subtotal below the minimum order value) yields a zero
// discount with no error: an unknown or expired coupon code is
// indistinguishable from no coupon at all.
func DiscountFor(r *Rule, subtotal decimal.Decimal, now time.Time) decimal.Decimal {
	if !r.ApplicableTo(subtotal, now) {
		return decimal.Zero
	}

	switch r.DiscountType {
	case DiscountPercentage:
		amount := subtotal.Mul(r.Value).Div(hundred)
		if r.MaxDiscount != nil {
			amount = decimal.Min(amount, *r.MaxDiscount)
		}
		return floorAtZero(amount).Round(2)
	case DiscountFixed:
		return floorAtZero(r.Value).Round(2)
	default:
		return decimal.Zero
	}
}

// floorAtZero clamps negative values to zero.
func floorAtZero(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}
