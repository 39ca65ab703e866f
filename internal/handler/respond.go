package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/joralabs/jora-api/pkg/httpmiddleware"
)

// errorBody is the canonical JSON error envelope returned by the API.
type errorBody struct {
	Error     string `json:"error"`
	Message   string `json:"message"`
	Status    int    `json:"status"`
	RequestID string `json:"request_id,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(ctx context.Context, w http.ResponseWriter, code, message string, status int) {
	if status >= http.StatusInternalServerError {
		zctx.From(ctx).Error("request failed",
			zap.String("code", code),
			zap.String("error", message),
		)
		// Never leak internals in 5xx responses.
		message = "internal server error"
	}
	writeJSON(w, status, errorBody{
		Error:     code,
		Message:   message,
		Status:    status,
		RequestID: httpmiddleware.RequestIDFromContext(ctx),
	})
}

// decodeBody decodes a JSON request body into v, rejecting unknown fields.
func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
