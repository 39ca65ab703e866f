package coupon

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestDiscountFor(t *testing.T) {
	fixedNow := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	pastTime := fixedNow.Add(-24 * time.Hour)
	futureTime := fixedNow.Add(24 * time.Hour)

	maxFifty := decimal.NewFromInt(50)

	activeWindow := func(r Rule) *Rule {
		r.Active = true
		r.ValidFrom = pastTime
		r.ValidUntil = futureTime
		return &r
	}

	tests := []struct {
		name     string
		rule     *Rule
		subtotal decimal.Decimal
		want     string
	}{
		{
			name: "percentage discount",
			rule: activeWindow(Rule{
				Code:         "SAVE10",
				DiscountType: DiscountPercentage,
				Value:        decimal.NewFromInt(10),
			}),
			subtotal: decimal.NewFromInt(1000),
			want:     "100",
		},
		{
			name: "percentage capped by max discount",
			rule: activeWindow(Rule{
				Code:         "SAVE10",
				DiscountType: DiscountPercentage,
				Value:        decimal.NewFromInt(10),
				MaxDiscount:  &maxFifty,
			}),
			subtotal: decimal.NewFromInt(1000),
			want:     "50",
		},
		{
			name: "fixed discount",
			rule: activeWindow(Rule{
				Code:         "FLAT200",
				DiscountType: DiscountFixed,
				Value:        decimal.NewFromInt(200),
			}),
			subtotal: decimal.NewFromInt(1500),
			want:     "200",
		},
		{
			name: "fixed discount may exceed subtotal",
			rule: activeWindow(Rule{
				Code:         "FLAT200",
				DiscountType: DiscountFixed,
				Value:        decimal.NewFromInt(200),
			}),
			subtotal: decimal.NewFromInt(50),
			want:     "200",
		},
		{
			name: "subtotal below minimum order value",
			rule: activeWindow(Rule{
				Code:          "SAVE10",
				DiscountType:  DiscountPercentage,
				Value:         decimal.NewFromInt(10),
				MinOrderValue: decimal.NewFromInt(500),
			}),
			subtotal: decimal.NewFromInt(499),
			want:     "0",
		},
		{
			name: "subtotal exactly at minimum order value",
			rule: activeWindow(Rule{
				Code:          "SAVE10",
				DiscountType:  DiscountPercentage,
				Value:         decimal.NewFromInt(10),
				MinOrderValue: decimal.NewFromInt(500),
			}),
			subtotal: decimal.NewFromInt(500),
			want:     "50",
		},
		{
			name: "expired coupon",
			rule: &Rule{
				Code:         "OLD",
				DiscountType: DiscountPercentage,
				Value:        decimal.NewFromInt(10),
				Active:       true,
				ValidFrom:    fixedNow.Add(-48 * time.Hour),
				ValidUntil:   pastTime,
			},
			subtotal: decimal.NewFromInt(1000),
			want:     "0",
		},
		{
			name: "not yet valid coupon",
			rule: &Rule{
				Code:         "SOON",
				DiscountType: DiscountPercentage,
				Value:        decimal.NewFromInt(10),
				Active:       true,
				ValidFrom:    futureTime,
				ValidUntil:   fixedNow.Add(48 * time.Hour),
			},
			subtotal: decimal.NewFromInt(1000),
			want:     "0",
		},
		{
			name: "inactive coupon",
			rule: &Rule{
				Code:         "OFF",
				DiscountType: DiscountPercentage,
				Value:        decimal.NewFromInt(10),
				Active:       false,
				ValidFrom:    pastTime,
				ValidUntil:   futureTime,
			},
			subtotal: decimal.NewFromInt(1000),
			want:     "0",
		},
		{
			name: "usage limit exhausted",
			rule: activeWindow(Rule{
				Code:         "LIMITED",
				DiscountType: DiscountPercentage,
				Value:        decimal.NewFromInt(10),
				UsageLimit:   5,
				UsedCount:    5,
			}),
			subtotal: decimal.NewFromInt(1000),
			want:     "0",
		},
		{
			name: "zero usage limit means unlimited",
			rule: activeWindow(Rule{
				Code:         "FOREVER",
				DiscountType: DiscountPercentage,
				Value:        decimal.NewFromInt(10),
				UsageLimit:   0,
				UsedCount:    1_000_000,
			}),
			subtotal: decimal.NewFromInt(1000),
			want:     "100",
		},
		{
			name: "negative fixed value clamps to zero",
			rule: activeWindow(Rule{
				Code:         "BROKEN",
				DiscountType: DiscountFixed,
				Value:        decimal.NewFromInt(-50),
			}),
			subtotal: decimal.NewFromInt(1000),
			want:     "0",
		},
		{
			name: "unknown discount type",
			rule: activeWindow(Rule{
				Code:         "WEIRD",
				DiscountType: DiscountType("bogo"),
				Value:        decimal.NewFromInt(10),
			}),
			subtotal: decimal.NewFromInt(1000),
			want:     "0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DiscountFor(tt.rule, tt.subtotal, fixedNow)
			assert.True(t, got.Equal(decimal.RequireFromString(tt.want)),
				"got %s, want %s", got, tt.want)
		})
	}
}

func TestDiscountFor_NilRule(t *testing.T) {
	got := DiscountFor(nil, decimal.NewFromInt(1000), time.Now())
	assert.True(t, got.IsZero())
}

func TestDiscountFor_RoundsToTwoPlaces(t *testing.T) {
	fixedNow := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	rule := &Rule{
		Code:         "ODD",
		DiscountType: DiscountPercentage,
		Value:        decimal.RequireFromString("7.5"),
		Active:       true,
		ValidFrom:    fixedNow.Add(-time.Hour),
		ValidUntil:   fixedNow.Add(time.Hour),
	}

	got := DiscountFor(rule, decimal.RequireFromString("333.33"), fixedNow)
	assert.Equal(t, "25", got.String())
}
