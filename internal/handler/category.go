package handler

import (
	"net/http"

	"github.com/go-faster/errors"

	"github.com/joralabs/jora-api/internal/domain/catalog"
)

type createCategoryRequest struct {
	Name         string `json:"name"`
	Slug         string `json:"slug"`
	ParentID     *int64 `json:"parent_id,omitempty"`
	Description  string `json:"description"`
	ImageURL     string `json:"image_url"`
	DisplayOrder int    `json:"display_order"`
}

type categoryResponse struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Slug         string `json:"slug"`
	ParentID     *int64 `json:"parent_id,omitempty"`
	Description  string `json:"description,omitempty"`
	ImageURL     string `json:"image_url,omitempty"`
	DisplayOrder int    `json:"display_order"`
}

func (h *Handler) listCategories(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	categories, err := h.categories.List(ctx)
	if err != nil {
		writeError(ctx, w, "internal", err.Error(), http.StatusInternalServerError)
		return
	}

	resp := make([]categoryResponse, len(categories))
	for i, c := range categories {
		resp[i] = toCategoryResponse(&c)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) createCategory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req createCategoryRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(ctx, w, "invalid_request", err.Error(), http.StatusBadRequest)
		return
	}
	if req.Name == "" || req.Slug == "" {
		writeError(ctx, w, "invalid_request", "name and slug are required", http.StatusBadRequest)
		return
	}

	c := &catalog.Category{
		Name:         req.Name,
		Slug:         req.Slug,
		ParentID:     req.ParentID,
		Description:  req.Description,
		ImageURL:     req.ImageURL,
		DisplayOrder: req.DisplayOrder,
	}
	if err := h.categories.Create(ctx, c); err != nil {
		if errors.Is(err, catalog.ErrCategorySlugTaken) {
			writeError(ctx, w, "conflict", "category slug already exists", http.StatusConflict)
			return
		}
		writeError(ctx, w, "internal", err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, toCategoryResponse(c))
}

func toCategoryResponse(c *catalog.Category) categoryResponse {
	return categoryResponse{
		ID:           c.ID,
		Name:         c.Name,
		Slug:         c.Slug,
		ParentID:     c.ParentID,
		Description:  c.Description,
		ImageURL:     c.ImageURL,
		DisplayOrder: c.DisplayOrder,
	}
}
