package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/joralabs/jora-api/internal/auth"
	"github.com/joralabs/jora-api/internal/domain/user"
)

type registerRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
}

type userResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Phone     string    `json:"phone,omitempty"`
	Role      user.Role `json:"role"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResponse struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	ExpiresIn   int          `json:"expires_in"`
	User        userResponse `json:"user"`
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req registerRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(ctx, w, "invalid_request", err.Error(), http.StatusBadRequest)
		return
	}
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Email == "" || len(req.Password) < 8 || req.FirstName == "" || req.LastName == "" {
		writeError(ctx, w, "invalid_request",
			"email, first_name, last_name, and a password of at least 8 characters are required",
			http.StatusBadRequest)
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		writeError(ctx, w, "internal", err.Error(), http.StatusInternalServerError)
		return
	}

	u := &user.User{
		ID:           uuid.New().String(),
		Email:        req.Email,
		PasswordHash: hash,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Phone:        req.Phone,
		Role:         user.RoleCustomer,
	}
	if err := h.users.Create(ctx, u); err != nil {
		if errors.Is(err, user.ErrEmailTaken) {
			writeError(ctx, w, "conflict", "email already registered", http.StatusConflict)
			return
		}
		writeError(ctx, w, "internal", err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, toUserResponse(u))
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req loginRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(ctx, w, "invalid_request", err.Error(), http.StatusBadRequest)
		return
	}

	u, err := h.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			writeError(ctx, w, "unauthorized", "invalid credentials", http.StatusUnauthorized)
			return
		}
		writeError(ctx, w, "internal", err.Error(), http.StatusInternalServerError)
		return
	}
	if err := auth.CheckPassword(u.PasswordHash, req.Password); err != nil {
		writeError(ctx, w, "unauthorized", "invalid credentials", http.StatusUnauthorized)
		return
	}

	token, err := h.tokens.Issue(u.ID, u.Role)
	if err != nil {
		writeError(ctx, w, "internal", err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, tokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int(h.tokens.TTL() / time.Second),
		User:        toUserResponse(u),
	})
}

func toUserResponse(u *user.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Phone:     u.Phone,
		Role:      u.Role,
	}
}
