package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/joralabs/jora-api/internal/domain/b2b"
)

type registerB2BRequest struct {
	BusinessName string `json:"business_name"`
	GSTNumber    string `json:"gst_number"`
}

type approveB2BRequest struct {
	DiscountTier float64 `json:"discount_tier"`
}

type b2bProfileResponse struct {
	ID             int64    `json:"id"`
	BusinessName   string   `json:"business_name"`
	GSTNumber      string   `json:"gst_number"`
	ApprovalStatus string   `json:"approval_status"`
	DiscountTier   float64  `json:"discount_tier"`
	MOQRequirement int      `json:"moq_requirement"`
	CreditLimit    *float64 `json:"credit_limit,omitempty"`
}

func (h *Handler) registerB2B(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, _ := IdentityFromContext(ctx)

	var req registerB2BRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(ctx, w, "invalid_request", err.Error(), http.StatusBadRequest)
		return
	}
	if req.BusinessName == "" || req.GSTNumber == "" {
		writeError(ctx, w, "invalid_request", "business_name and gst_number are required", http.StatusBadRequest)
		return
	}

	c, err := h.b2b.Register(ctx, id.UserID, req.BusinessName, req.GSTNumber)
	if err != nil {
		switch {
		case errors.Is(err, b2b.ErrAlreadyRegistered):
			writeError(ctx, w, "conflict", "already registered as b2b customer", http.StatusConflict)
		case errors.Is(err, b2b.ErrGSTTaken):
			writeError(ctx, w, "conflict", "gst number already registered", http.StatusConflict)
		default:
			writeError(ctx, w, "internal", err.Error(), http.StatusInternalServerError)
		}
		return
	}
	writeJSON(w, http.StatusCreated, toB2BProfileResponse(c))
}

func (h *Handler) getB2BProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, _ := IdentityFromContext(ctx)

	c, err := h.b2b.Profile(ctx, id.UserID)
	if err != nil {
		if errors.Is(err, b2b.ErrNotFound) {
			writeError(ctx, w, "not_found", "b2b profile not found", http.StatusNotFound)
			return
		}
		writeError(ctx, w, "internal", err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, toB2BProfileResponse(c))
}

func (h *Handler) approveB2B(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	profileID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(ctx, w, "invalid_request", "profile id must be an integer", http.StatusBadRequest)
		return
	}

	var req approveB2BRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(ctx, w, "invalid_request", err.Error(), http.StatusBadRequest)
		return
	}

	c, err := h.b2b.Approve(ctx, profileID, decimal.NewFromFloat(req.DiscountTier))
	if err != nil {
		if errors.Is(err, b2b.ErrNotFound) {
			writeError(ctx, w, "not_found", "b2b profile not found", http.StatusNotFound)
			return
		}
		writeError(ctx, w, "internal", err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, toB2BProfileResponse(c))
}

func toB2BProfileResponse(c *b2b.Customer) b2bProfileResponse {
	resp := b2bProfileResponse{
		ID:             c.ID,
		BusinessName:   c.BusinessName,
		GSTNumber:      c.GSTNumber,
		ApprovalStatus: string(c.ApprovalStatus),
		DiscountTier:   c.DiscountTier.InexactFloat64(),
		MOQRequirement: c.MOQRequirement,
	}
	if c.CreditLimit != nil {
		f := c.CreditLimit.InexactFloat64()
		resp.CreditLimit = &f
	}
	return resp
}
