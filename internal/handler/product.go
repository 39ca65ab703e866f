package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/joralabs/jora-api/internal/domain/catalog"
)

type variantPayload struct {
	SKU           string   `json:"sku"`
	Size          string   `json:"size"`
	Color         string   `json:"color"`
	StockQuantity int      `json:"stock_quantity"`
	PriceOverride *float64 `json:"price_override,omitempty"`
	Images        []string `json:"images,omitempty"`
}

type createProductRequest struct {
	Name               string           `json:"name"`
	Slug               string           `json:"slug"`
	Description        string           `json:"description"`
	FabricDetails      string           `json:"fabric_details"`
	CareInstructions   string           `json:"care_instructions"`
	BasePrice          float64          `json:"base_price"`
	DiscountPercentage float64          `json:"discount_percentage"`
	CategoryID         *int64           `json:"category_id,omitempty"`
	Variants           []variantPayload `json:"variants"`
}

type updateProductRequest struct {
	Name               *string  `json:"name,omitempty"`
	Description        *string  `json:"description,omitempty"`
	FabricDetails      *string  `json:"fabric_details,omitempty"`
	CareInstructions   *string  `json:"care_instructions,omitempty"`
	BasePrice          *float64 `json:"base_price,omitempty"`
	DiscountPercentage *float64 `json:"discount_percentage,omitempty"`
	CategoryID         *int64   `json:"category_id,omitempty"`
	IsActive           *bool    `json:"is_active,omitempty"`
}

type variantResponse struct {
	ID            int64    `json:"id"`
	SKU           string   `json:"sku"`
	Size          string   `json:"size"`
	Color         string   `json:"color"`
	StockQuantity int      `json:"stock_quantity"`
	PriceOverride *float64 `json:"price_override,omitempty"`
	Images        []string `json:"images,omitempty"`
}

type productResponse struct {
	ID                 string            `json:"id"`
	CategoryID         *int64            `json:"category_id,omitempty"`
	Name               string            `json:"name"`
	Slug               string            `json:"slug"`
	Description        string            `json:"description,omitempty"`
	FabricDetails      string            `json:"fabric_details,omitempty"`
	CareInstructions   string            `json:"care_instructions,omitempty"`
	BasePrice          float64           `json:"base_price"`
	DiscountPercentage float64           `json:"discount_percentage"`
	IsActive           bool              `json:"is_active"`
	Variants           []variantResponse `json:"variants"`
}

type productListResponse struct {
	Products []productResponse `json:"products"`
	Offset   int               `json:"offset"`
	Limit    int               `json:"limit"`
}

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	filter, err := parseProductFilter(r)
	if err != nil {
		writeError(ctx, w, "invalid_request", err.Error(), http.StatusBadRequest)
		return
	}

	products, err := h.products.List(ctx, filter)
	if err != nil {
		writeError(ctx, w, "internal", err.Error(), http.StatusInternalServerError)
		return
	}

	resp := productListResponse{
		Products: make([]productResponse, len(products)),
		Offset:   filter.Offset,
		Limit:    filter.Limit,
	}
	for i := range products {
		resp.Products[i] = toProductResponse(&products[i])
	}
	writeJSON(w, http.StatusOK, resp)
}

func parseProductFilter(r *http.Request) (catalog.ProductFilter, error) {
	q := r.URL.Query()
	filter := catalog.ProductFilter{
		Search: q.Get("search"),
		Limit:  20,
	}

	if s := q.Get("category_id"); s != "" {
		id, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return filter, errors.New("category_id must be an integer")
		}
		filter.CategoryID = &id
	}
	if s := q.Get("min_price"); s != "" {
		d, err := decimal.NewFromString(s)
		if err != nil {
			return filter, errors.New("min_price must be a number")
		}
		filter.MinPrice = &d
	}
	if s := q.Get("max_price"); s != "" {
		d, err := decimal.NewFromString(s)
		if err != nil {
			return filter, errors.New("max_price must be a number")
		}
		filter.MaxPrice = &d
	}
	if s := q.Get("offset"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			return filter, errors.New("offset must be a non-negative integer")
		}
		filter.Offset = n
	}
	if s := q.Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 || n > 100 {
			return filter, errors.New("limit must be between 1 and 100")
		}
		filter.Limit = n
	}
	return filter, nil
}

func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	p, err := h.products.GetBySlug(ctx, chi.URLParam(r, "slug"))
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			writeError(ctx, w, "not_found", "product not found", http.StatusNotFound)
			return
		}
		writeError(ctx, w, "internal", err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, toProductResponse(p))
}

func (h *Handler) createProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req createProductRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(ctx, w, "invalid_request", err.Error(), http.StatusBadRequest)
		return
	}
	if req.Name == "" || req.Slug == "" || req.BasePrice <= 0 {
		writeError(ctx, w, "invalid_request", "name, slug, and a positive base_price are required", http.StatusBadRequest)
		return
	}

	p := &catalog.Product{
		ID:                 uuid.New().String(),
		CategoryID:         req.CategoryID,
		Name:               req.Name,
		Slug:               req.Slug,
		Description:        req.Description,
		FabricDetails:      req.FabricDetails,
		CareInstructions:   req.CareInstructions,
		BasePrice:          decimal.NewFromFloat(req.BasePrice),
		DiscountPercentage: decimal.NewFromFloat(req.DiscountPercentage),
		IsActive:           true,
		Variants:           make([]catalog.Variant, len(req.Variants)),
	}
	for i, v := range req.Variants {
		p.Variants[i] = catalog.Variant{
			SKU:           v.SKU,
			Size:          v.Size,
			Color:         v.Color,
			StockQuantity: v.StockQuantity,
			Images:        v.Images,
		}
		if v.PriceOverride != nil {
			d := decimal.NewFromFloat(*v.PriceOverride)
			p.Variants[i].PriceOverride = &d
		}
	}

	if err := h.products.Create(ctx, p); err != nil {
		switch {
		case errors.Is(err, catalog.ErrSlugTaken):
			writeError(ctx, w, "conflict", "product slug already exists", http.StatusConflict)
		case errors.Is(err, catalog.ErrSKUTaken):
			writeError(ctx, w, "conflict", "variant sku already exists", http.StatusConflict)
		default:
			writeError(ctx, w, "internal", err.Error(), http.StatusInternalServerError)
		}
		return
	}
	writeJSON(w, http.StatusCreated, toProductResponse(p))
}

func (h *Handler) updateProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req updateProductRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(ctx, w, "invalid_request", err.Error(), http.StatusBadRequest)
		return
	}

	upd := catalog.ProductUpdate{
		Name:             req.Name,
		Description:      req.Description,
		FabricDetails:    req.FabricDetails,
		CareInstructions: req.CareInstructions,
		CategoryID:       req.CategoryID,
		IsActive:         req.IsActive,
	}
	if req.BasePrice != nil {
		d := decimal.NewFromFloat(*req.BasePrice)
		upd.BasePrice = &d
	}
	if req.DiscountPercentage != nil {
		d := decimal.NewFromFloat(*req.DiscountPercentage)
		upd.DiscountPercentage = &d
	}

	p, err := h.products.Update(ctx, chi.URLParam(r, "id"), upd)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			writeError(ctx, w, "not_found", "product not found", http.StatusNotFound)
			return
		}
		writeError(ctx, w, "internal", err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, toProductResponse(p))
}

func (h *Handler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := h.products.Delete(ctx, chi.URLParam(r, "id")); err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			writeError(ctx, w, "not_found", "product not found", http.StatusNotFound)
			return
		}
		writeError(ctx, w, "internal", err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func toProductResponse(p *catalog.Product) productResponse {
	resp := productResponse{
		ID:                 p.ID,
		CategoryID:         p.CategoryID,
		Name:               p.Name,
		Slug:               p.Slug,
		Description:        p.Description,
		FabricDetails:      p.FabricDetails,
		CareInstructions:   p.CareInstructions,
		BasePrice:          p.BasePrice.InexactFloat64(),
		DiscountPercentage: p.DiscountPercentage.InexactFloat64(),
		IsActive:           p.IsActive,
		Variants:           make([]variantResponse, len(p.Variants)),
	}
	for i, v := range p.Variants {
		resp.Variants[i] = variantResponse{
			ID:            v.ID,
			SKU:           v.SKU,
			Size:          v.Size,
			Color:         v.Color,
			StockQuantity: v.StockQuantity,
			Images:        v.Images,
		}
		if v.PriceOverride != nil {
			f := v.PriceOverride.InexactFloat64()
			resp.Variants[i].PriceOverride = &f
		}
	}
	return resp
}
