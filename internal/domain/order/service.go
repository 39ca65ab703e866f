package order

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/joralabs/jora-api/internal/domain/catalog"
	"github.com/joralabs/jora-api/internal/domain/coupon"
	"github.com/joralabs/jora-api/internal/domain/pricing"
)

// PlaceOrderRequest holds the input for placing an order.
type PlaceOrderRequest struct {
	UserID            string
	Items             []pricing.LineItemRequest
	CouponCode        string
	ShippingAddressID *int64
	BillingAddressID  *int64
	Notes             string
}

// Service encapsulates order placement, cancellation, and status transitions.
type Service struct {
	variants catalog.VariantRepository
	coupons  coupon.Repository
	orders   Repository
	now      func() time.Time
}

// NewService creates an order Service with the required domain dependencies.
func NewService(
	variants catalog.VariantRepository,
	coupons coupon.Repository,
	orders Repository,
) *Service {
	return &Service{
		variants: variants,
		coupons:  coupons,
		orders:   orders,
		now:      time.Now,
	}
}

// PlaceOrder snapshots inventory, prices the order (applying the coupon when
// one is supplied and applicable), and persists the order together with its
// stock decrements in a single transaction.
//
// An unknown coupon code is ignored: the no-coupon and invalid-coupon paths
// are indistinguishable to the caller.
func (s *Service) PlaceOrder(ctx context.Context, req PlaceOrderRequest) (*Order, error) {
	if len(req.Items) == 0 {
		return nil, pricing.ErrEmptyItems
	}

	ids := make([]int64, len(req.Items))
	for i, item := range req.Items {
		ids[i] = item.VariantID
	}

	snapshots, err := s.variants.Snapshots(ctx, ids)
	if err != nil {
		return nil, errors.Wrap(err, "snapshot variants")
	}

	var rule *coupon.Rule
	if req.CouponCode != "" {
		rule, err = s.coupons.FindByCode(ctx, req.CouponCode)
		if err != nil {
			if !errors.Is(err, coupon.ErrNotFound) {
				return nil, errors.Wrap(err, "lookup coupon")
			}
			rule = nil
		}
	}

	now := s.now()

	priced, err := pricing.PriceOrder(req.Items, snapshots, rule, now)
	if err != nil {
		return nil, err
	}

	o := &Order{
		ID:                uuid.New().String(),
		OrderNumber:       NewOrderNumber(now),
		UserID:            req.UserID,
		Status:            StatusPending,
		PaymentStatus:     PaymentPending,
		Subtotal:          priced.Subtotal,
		ShippingCost:      priced.ShippingCost,
		TaxAmount:         priced.TaxAmount,
		DiscountAmount:    priced.DiscountAmount,
		TotalAmount:       priced.TotalAmount,
		ShippingAddressID: req.ShippingAddressID,
		BillingAddressID:  req.BillingAddressID,
		Notes:             req.Notes,
	}
	if priced.DiscountAmount.IsPositive() && rule != nil {
		o.CouponCode = rule.Code
	}
	o.Items = make([]Item, len(priced.Items))
	for i, li := range priced.Items {
		variantID := li.VariantID
		o.Items[i] = Item{
			VariantID:      &variantID,
			ProductName:    li.ProductName,
			VariantDetails: li.VariantDetails,
			Quantity:       li.Quantity,
			UnitPrice:      li.UnitPrice,
			TotalPrice:     li.TotalPrice,
		}
	}

	if err := s.orders.Create(ctx, o, priced.Decrements); err != nil {
		return nil, errors.Wrap(err, "create order")
	}

	if o.CouponCode != "" {
		if err := s.coupons.IncrementUses(ctx, o.CouponCode); err != nil {
			return nil, errors.Wrap(err, "increment coupon uses")
		}
	}

	return o, nil
}

// Get returns an order owned by the given user.
func (s *Service) Get(ctx context.Context, id, userID string) (*Order, error) {
	return s.orders.Get(ctx, id, userID)
}

// ListByUser returns the user's orders, newest first.
func (s *Service) ListByUser(ctx context.Context, userID string) ([]Order, error) {
	return s.orders.ListByUser(ctx, userID)
}

// Cancel cancels a pending or confirmed order and restores each variant's
// stock by exactly the quantities originally decremented.
func (s *Service) Cancel(ctx context.Context, id, userID string) (*Order, error) {
	o, err := s.orders.Get(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if !o.Cancellable() {
		return nil, ErrNotCancellable
	}

	if err := s.orders.CancelAndRestock(ctx, o); err != nil {
		return nil, errors.Wrap(err, "cancel order")
	}

	o.Status = StatusCancelled
	return o, nil
}

// UpdateStatus transitions an order to the given status, optionally recording
// a tracking number. Role enforcement happens at the handler layer.
func (s *Service) UpdateStatus(ctx context.Context, id string, status Status, trackingNumber string) (*Order, error) {
	if !status.Valid() {
		return nil, errors.Errorf("unknown order status %q", status)
	}
	return s.orders.UpdateStatus(ctx, id, status, trackingNumber)
}
