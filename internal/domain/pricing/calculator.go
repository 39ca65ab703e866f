package pricing

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/joralabs/jora-api/internal/domain/coupon"
)

// Fixed pricing policy. GST at a flat 18%, free shipping strictly above the
// threshold, flat shipping fee otherwise.
var (
	taxRate           = decimal.RequireFromString("0.18")
	shippingThreshold = decimal.NewFromInt(1000)
	flatShippingCost  = decimal.NewFromInt(100)
)

// PriceOrder prices the requested line items against the given variant
// snapshots and optional coupon rule (nil means no coupon).
//
// Validation happens per item in request order and the first violation
// short-circuits the whole computation: a missing variant yields
// VariantNotFoundError, a quantity above available stock yields
// InsufficientStockError. An inapplicable coupon is silently ignored.
func PriceOrder(
	items []LineItemRequest,
	variants map[int64]VariantSnapshot,
	rule *coupon.Rule,
	now time.Time,
) (*PricedOrder, error) {
	if len(items) == 0 {
		return nil, ErrEmptyItems
	}

	priced := make([]PricedLineItem, 0, len(items))
	decrements := make([]StockDecrement, 0, len(items))
	subtotal := decimal.Zero

	for _, item := range items {
		if item.Quantity <= 0 {
			return nil, &InvalidQuantityError{VariantID: item.VariantID}
		}

		v, ok := variants[item.VariantID]
		if !ok {
			return nil, &VariantNotFoundError{VariantID: item.VariantID}
		}
		if v.Stock < item.Quantity {
			return nil, &InsufficientStockError{SKU: v.SKU}
		}

		unit := v.UnitPrice()
		line := unit.Mul(decimal.NewFromInt(int64(item.Quantity)))
		subtotal = subtotal.Add(line)

		priced = append(priced, PricedLineItem{
			VariantID:      v.VariantID,
			ProductName:    v.ProductName,
			VariantDetails: v.VariantDetails,
			Quantity:       item.Quantity,
			UnitPrice:      unit,
			TotalPrice:     line,
		})
		decrements = append(decrements, StockDecrement{
			VariantID: v.VariantID,
			SKU:       v.SKU,
			Quantity:  item.Quantity,
		})
	}

	discount := decimal.Zero
	if rule != nil {
		discount = coupon.DiscountFor(rule, subtotal, now)
	}

	tax := subtotal.Sub(discount).Mul(taxRate).Round(2)

	shipping := flatShippingCost
	if subtotal.GreaterThan(shippingThreshold) {
		shipping = decimal.Zero
	}

	// Clamp at zero: a fixed coupon larger than a small order must not
	// produce a negative total.
	total := subtotal.Add(tax).Add(shipping).Sub(discount)
	if total.IsNegative() {
		total = decimal.Zero
	}

	return &PricedOrder{
		Items:          priced,
		Subtotal:       subtotal.Round(2),
		DiscountAmount: discount.Round(2),
		TaxAmount:      tax,
		ShippingCost:   shipping,
		TotalAmount:    total.Round(2),
		Decrements:     decrements,
	}, nil
}
