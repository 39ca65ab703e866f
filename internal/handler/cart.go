package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/joralabs/jora-api/internal/domain/cart"
	"github.com/joralabs/jora-api/internal/domain/catalog"
)

type addToCartRequest struct {
	VariantID int64 `json:"variant_id"`
	Quantity  int   `json:"quantity"`
}

type updateCartItemRequest struct {
	Quantity int `json:"quantity"`
}

type cartItemResponse struct {
	ID          int64   `json:"id"`
	VariantID   int64   `json:"variant_id"`
	SKU         string  `json:"sku,omitempty"`
	ProductID   string  `json:"product_id,omitempty"`
	ProductName string  `json:"product_name,omitempty"`
	Size        string  `json:"size,omitempty"`
	Color       string  `json:"color,omitempty"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
	LineTotal   float64 `json:"line_total"`
}

type cartResponse struct {
	Items []cartItemResponse `json:"items"`
	Total float64            `json:"total"`
}

func (h *Handler) getCart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, _ := IdentityFromContext(ctx)

	items, err := h.carts.List(ctx, id.UserID)
	if err != nil {
		writeError(ctx, w, "internal", err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, toCartResponse(items))
}

func (h *Handler) addToCart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, _ := IdentityFromContext(ctx)

	var req addToCartRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(ctx, w, "invalid_request", err.Error(), http.StatusBadRequest)
		return
	}

	item, err := h.carts.Add(ctx, id.UserID, req.VariantID, req.Quantity)
	if err != nil {
		writeCartError(ctx, w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toCartItemResponse(item))
}

func (h *Handler) updateCartItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, _ := IdentityFromContext(ctx)

	itemID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(ctx, w, "invalid_request", "item id must be an integer", http.StatusBadRequest)
		return
	}

	var req updateCartItemRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(ctx, w, "invalid_request", err.Error(), http.StatusBadRequest)
		return
	}

	item, err := h.carts.UpdateQuantity(ctx, id.UserID, itemID, req.Quantity)
	if err != nil {
		writeCartError(ctx, w, err)
		return
	}
	writeJSON(w, http.StatusOK, toCartItemResponse(item))
}

func (h *Handler) removeFromCart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, _ := IdentityFromContext(ctx)

	itemID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(ctx, w, "invalid_request", "item id must be an integer", http.StatusBadRequest)
		return
	}

	if err := h.carts.Remove(ctx, id.UserID, itemID); err != nil {
		writeCartError(ctx, w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) clearCart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, _ := IdentityFromContext(ctx)

	if err := h.carts.Clear(ctx, id.UserID); err != nil {
		writeError(ctx, w, "internal", err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeCartError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, cart.ErrItemNotFound):
		writeError(ctx, w, "not_found", "cart item not found", http.StatusNotFound)
	case errors.Is(err, cart.ErrInsufficientStock):
		writeError(ctx, w, "insufficient_stock", "insufficient stock", http.StatusBadRequest)
	case errors.Is(err, catalog.ErrNotFound):
		writeError(ctx, w, "not_found", "variant not found", http.StatusNotFound)
	default:
		writeError(ctx, w, "internal", err.Error(), http.StatusInternalServerError)
	}
}

func toCartItemResponse(item *cart.Item) cartItemResponse {
	return cartItemResponse{
		ID:          item.ID,
		VariantID:   item.VariantID,
		SKU:         item.SKU,
		ProductID:   item.ProductID,
		ProductName: item.ProductName,
		Size:        item.Size,
		Color:       item.Color,
		Quantity:    item.Quantity,
		UnitPrice:   item.UnitPrice.InexactFloat64(),
		LineTotal:   item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))).InexactFloat64(),
	}
}

func toCartResponse(items []cart.Item) cartResponse {
	resp := cartResponse{Items: make([]cartItemResponse, len(items))}
	total := decimal.Zero
	for i := range items {
		resp.Items[i] = toCartItemResponse(&items[i])
		total = total.Add(items[i].UnitPrice.Mul(decimal.NewFromInt(int64(items[i].Quantity))))
	}
	resp.Total = total.InexactFloat64()
	return resp
}
