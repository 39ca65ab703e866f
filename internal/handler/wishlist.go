package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"

	"github.com/joralabs/jora-api/internal/domain/cart"
	"github.com/joralabs/jora-api/internal/domain/catalog"
)

type addToWishlistRequest struct {
	ProductID string `json:"product_id"`
}

type wishlistItemResponse struct {
	ID          int64     `json:"id"`
	ProductID   string    `json:"product_id"`
	ProductName string    `json:"product_name,omitempty"`
	ProductSlug string    `json:"product_slug,omitempty"`
	BasePrice   float64   `json:"base_price"`
	CreatedAt   time.Time `json:"created_at"`
}

func (h *Handler) listWishlist(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, _ := IdentityFromContext(ctx)

	items, err := h.wishlists.ListByUser(ctx, id.UserID)
	if err != nil {
		writeError(ctx, w, "internal", err.Error(), http.StatusInternalServerError)
		return
	}

	resp := make([]wishlistItemResponse, len(items))
	for i := range items {
		resp[i] = toWishlistItemResponse(&items[i])
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) addToWishlist(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, _ := IdentityFromContext(ctx)

	var req addToWishlistRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(ctx, w, "invalid_request", err.Error(), http.StatusBadRequest)
		return
	}
	if req.ProductID == "" {
		writeError(ctx, w, "invalid_request", "product_id is required", http.StatusBadRequest)
		return
	}

	item, err := h.wishlists.Add(ctx, id.UserID, req.ProductID)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			writeError(ctx, w, "not_found", "product not found", http.StatusNotFound)
			return
		}
		writeError(ctx, w, "internal", err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, toWishlistItemResponse(item))
}

func (h *Handler) removeFromWishlist(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, _ := IdentityFromContext(ctx)

	itemID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(ctx, w, "invalid_request", "item id must be an integer", http.StatusBadRequest)
		return
	}

	if err := h.wishlists.Remove(ctx, itemID, id.UserID); err != nil {
		if errors.Is(err, cart.ErrItemNotFound) {
			writeError(ctx, w, "not_found", "wishlist item not found", http.StatusNotFound)
			return
		}
		writeError(ctx, w, "internal", err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func toWishlistItemResponse(item *cart.WishlistItem) wishlistItemResponse {
	return wishlistItemResponse{
		ID:          item.ID,
		ProductID:   item.ProductID,
		ProductName: item.ProductName,
		ProductSlug: item.ProductSlug,
		BasePrice:   item.BasePrice.InexactFloat64(),
		CreatedAt:   item.CreatedAt,
	}
}
