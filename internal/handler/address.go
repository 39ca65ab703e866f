package handler

import (
	"net/http"

	"github.com/joralabs/jora-api/internal/domain/user"
)

type createAddressRequest struct {
	Type         string `json:"type"`
	AddressLine1 string `json:"address_line1"`
	AddressLine2 string `json:"address_line2"`
	City         string `json:"city"`
	State        string `json:"state"`
	Pincode      string `json:"pincode"`
	Country      string `json:"country"`
	IsDefault    bool   `json:"is_default"`
}

type addressResponse struct {
	ID           int64  `json:"id"`
	Type         string `json:"type"`
	AddressLine1 string `json:"address_line1"`
	AddressLine2 string `json:"address_line2,omitempty"`
	City         string `json:"city"`
	State        string `json:"state"`
	Pincode      string `json:"pincode"`
	Country      string `json:"country"`
	IsDefault    bool   `json:"is_default"`
}

func (h *Handler) listAddresses(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, _ := IdentityFromContext(ctx)

	addresses, err := h.addresses.ListByUser(ctx, id.UserID)
	if err != nil {
		writeError(ctx, w, "internal", err.Error(), http.StatusInternalServerError)
		return
	}

	resp := make([]addressResponse, len(addresses))
	for i, a := range addresses {
		resp[i] = toAddressResponse(&a)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) createAddress(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, _ := IdentityFromContext(ctx)

	var req createAddressRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(ctx, w, "invalid_request", err.Error(), http.StatusBadRequest)
		return
	}

	addrType := user.AddressType(req.Type)
	if addrType != user.AddressShipping && addrType != user.AddressBilling {
		writeError(ctx, w, "invalid_request", "type must be shipping or billing", http.StatusBadRequest)
		return
	}
	if req.AddressLine1 == "" || req.City == "" || req.State == "" || req.Pincode == "" {
		writeError(ctx, w, "invalid_request", "address_line1, city, state, and pincode are required", http.StatusBadRequest)
		return
	}
	if req.Country == "" {
		req.Country = "India"
	}

	a := &user.Address{
		UserID:       id.UserID,
		Type:         addrType,
		AddressLine1: req.AddressLine1,
		AddressLine2: req.AddressLine2,
		City:         req.City,
		State:        req.State,
		Pincode:      req.Pincode,
		Country:      req.Country,
		IsDefault:    req.IsDefault,
	}
	if err := h.addresses.Create(ctx, a); err != nil {
		writeError(ctx, w, "internal", err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, toAddressResponse(a))
}

func toAddressResponse(a *user.Address) addressResponse {
	return addressResponse{
		ID:           a.ID,
		Type:         string(a.Type),
		AddressLine1: a.AddressLine1,
		AddressLine2: a.AddressLine2,
		City:         a.City,
		State:        a.State,
		Pincode:      a.Pincode,
		Country:      a.Country,
		IsDefault:    a.IsDefault,
	}
}
