package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"

	"github.com/joralabs/jora-api/internal/domain/order"
	"github.com/joralabs/jora-api/internal/domain/pricing"
)

type orderLineRequest struct {
	VariantID int64 `json:"variant_id"`
	Quantity  int   `json:"quantity"`
}

type placeOrderRequest struct {
	Items             []orderLineRequest `json:"items"`
	CouponCode        string             `json:"coupon_code,omitempty"`
	ShippingAddressID *int64             `json:"shipping_address_id,omitempty"`
	BillingAddressID  *int64             `json:"billing_address_id,omitempty"`
	Notes             string             `json:"notes,omitempty"`
}

type updateOrderStatusRequest struct {
	Status         string `json:"status"`
	TrackingNumber string `json:"tracking_number,omitempty"`
}

type orderItemResponse struct {
	ID             int64   `json:"id"`
	VariantID      *int64  `json:"variant_id,omitempty"`
	ProductName    string  `json:"product_name"`
	VariantDetails string  `json:"variant_details,omitempty"`
	Quantity       int     `json:"quantity"`
	UnitPrice      float64 `json:"unit_price"`
	TotalPrice     float64 `json:"total_price"`
}

type orderResponse struct {
	ID             string              `json:"id"`
	OrderNumber    string              `json:"order_number"`
	Status         order.Status        `json:"status"`
	PaymentStatus  order.PaymentStatus `json:"payment_status"`
	Subtotal       float64             `json:"subtotal"`
	DiscountAmount float64             `json:"discount_amount"`
	TaxAmount      float64             `json:"tax_amount"`
	ShippingCost   float64             `json:"shipping_cost"`
	TotalAmount    float64             `json:"total_amount"`
	CouponCode     string              `json:"coupon_code,omitempty"`
	TrackingNumber string              `json:"tracking_number,omitempty"`
	Notes          string              `json:"notes,omitempty"`
	Items          []orderItemResponse `json:"items"`
	CreatedAt      time.Time           `json:"created_at"`
}

func (h *Handler) placeOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, _ := IdentityFromContext(ctx)

	var req placeOrderRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(ctx, w, "invalid_request", err.Error(), http.StatusBadRequest)
		return
	}

	items := make([]pricing.LineItemRequest, len(req.Items))
	for i, it := range req.Items {
		items[i] = pricing.LineItemRequest{VariantID: it.VariantID, Quantity: it.Quantity}
	}

	o, err := h.orders.PlaceOrder(ctx, order.PlaceOrderRequest{
		UserID:            id.UserID,
		Items:             items,
		CouponCode:        req.CouponCode,
		ShippingAddressID: req.ShippingAddressID,
		BillingAddressID:  req.BillingAddressID,
		Notes:             req.Notes,
	})
	if err != nil {
		writeOrderError(ctx, w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toOrderResponse(o))
}

func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, _ := IdentityFromContext(ctx)

	orders, err := h.orders.ListByUser(ctx, id.UserID)
	if err != nil {
		writeError(ctx, w, "internal", err.Error(), http.StatusInternalServerError)
		return
	}

	resp := make([]orderResponse, len(orders))
	for i := range orders {
		resp[i] = toOrderResponse(&orders[i])
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, _ := IdentityFromContext(ctx)

	o, err := h.orders.Get(ctx, chi.URLParam(r, "id"), id.UserID)
	if err != nil {
		if errors.Is(err, order.ErrNotFound) {
			writeError(ctx, w, "not_found", "order not found", http.StatusNotFound)
			return
		}
		writeError(ctx, w, "internal", err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(o))
}

func (h *Handler) cancelOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, _ := IdentityFromContext(ctx)

	o, err := h.orders.Cancel(ctx, chi.URLParam(r, "id"), id.UserID)
	if err != nil {
		switch {
		case errors.Is(err, order.ErrNotFound):
			writeError(ctx, w, "not_found", "order not found", http.StatusNotFound)
		case errors.Is(err, order.ErrNotCancellable):
			writeError(ctx, w, "not_cancellable", "order cannot be cancelled", http.StatusBadRequest)
		default:
			writeError(ctx, w, "internal", err.Error(), http.StatusInternalServerError)
		}
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(o))
}

func (h *Handler) updateOrderStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req updateOrderStatusRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(ctx, w, "invalid_request", err.Error(), http.StatusBadRequest)
		return
	}

	status := order.Status(req.Status)
	if !status.Valid() {
		writeError(ctx, w, "invalid_request", "unknown order status", http.StatusBadRequest)
		return
	}

	o, err := h.orders.UpdateStatus(ctx, chi.URLParam(r, "id"), status, req.TrackingNumber)
	if err != nil {
		if errors.Is(err, order.ErrNotFound) {
			writeError(ctx, w, "not_found", "order not found", http.StatusNotFound)
			return
		}
		writeError(ctx, w, "internal", err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(o))
}

func writeOrderError(ctx context.Context, w http.ResponseWriter, err error) {
	var (
		notFound    *pricing.VariantNotFoundError
		noStock     *pricing.InsufficientStockError
		badQuantity *pricing.InvalidQuantityError
	)
	switch {
	case errors.Is(err, pricing.ErrEmptyItems):
		writeError(ctx, w, "invalid_request", "items required", http.StatusBadRequest)
	case errors.As(err, &badQuantity):
		writeError(ctx, w, "invalid_request", badQuantity.Error(), http.StatusBadRequest)
	case errors.As(err, &notFound):
		writeError(ctx, w, "variant_not_found", notFound.Error(), http.StatusUnprocessableEntity)
	case errors.As(err, &noStock):
		writeError(ctx, w, "insufficient_stock", noStock.Error(), http.StatusUnprocessableEntity)
	default:
		writeError(ctx, w, "internal", err.Error(), http.StatusInternalServerError)
	}
}

func toOrderResponse(o *order.Order) orderResponse {
	resp := orderResponse{
		ID:             o.ID,
		OrderNumber:    o.OrderNumber,
		Status:         o.Status,
		PaymentStatus:  o.PaymentStatus,
		Subtotal:       o.Subtotal.InexactFloat64(),
		DiscountAmount: o.DiscountAmount.InexactFloat64(),
		TaxAmount:      o.TaxAmount.InexactFloat64(),
		ShippingCost:   o.ShippingCost.InexactFloat64(),
		TotalAmount:    o.TotalAmount.InexactFloat64(),
		CouponCode:     o.CouponCode,
		TrackingNumber: o.TrackingNumber,
		Notes:          o.Notes,
		Items:          make([]orderItemResponse, len(o.Items)),
		CreatedAt:      o.CreatedAt,
	}
	for i, it := range o.Items {
		resp.Items[i] = orderItemResponse{
			ID:             it.ID,
			VariantID:      it.VariantID,
			ProductName:    it.ProductName,
			VariantDetails: it.VariantDetails,
			Quantity:       it.Quantity,
			UnitPrice:      it.UnitPrice.InexactFloat64(),
			TotalPrice:     it.TotalPrice.InexactFloat64(),
		}
	}
	return resp
}
