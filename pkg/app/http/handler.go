// Package http provides HTTP utilities including chi-compatible error handling
package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	apperrors "github.com/chainsafe/wallet-settlement/pkg/app/errors"
)

// HandlerFunc defines a function that returns an error for clean error handling
type HandlerFunc func(http.ResponseWriter, *http.Request) error

// ErrorResponse is the body written for every failed request.
type ErrorResponse struct {
	Code       int    `json:"code"`
	Message    string `json:"message"`
	TraceID    string `json:"trace_id,omitempty"`
	Suggestion string `json:"suggestion,omitempty"`
}

// HandleError wraps an error-returning HandlerFunc into a standard http.HandlerFunc
//
// Usage with chi:
//
//	r.Post("/wallets/unlock", http.HandleError(logger, handler.unlock))
func HandleError(logger *zap.Logger, h HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h(w, r); err != nil {
			DefaultErrorHandler(w, r, logger, err)
		}
	}
}

// DefaultErrorHandler handles errors returned from HTTP handlers.
// Internal errors are logged with the request trace id and never leak their cause.
func DefaultErrorHandler(w http.ResponseWriter, r *http.Request, logger *zap.Logger, err error) {
	traceID := middleware.GetReqID(r.Context())

	resp := ErrorResponse{
		Code:    http.StatusInternalServerError,
		Message: "Internal Server Error",
		TraceID: traceID,
	}

	var svcErr *apperrors.ServiceError
	if errors.As(err, &svcErr) {
		resp.Code = svcErr.StatusCode()
		resp.Message = svcErr.Message
		resp.Suggestion = svcErr.Suggestion
	}

	if apperrors.IsInternalError(err) && logger != nil {
		logger.Error("request failed",
			zap.String("trace_id", traceID),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", resp.Code),
			zap.Error(err),
		)
	}

	WriteJSON(w, resp.Code, &resp)
}

// WriteJSON writes data as a JSON response with the given status code
func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
