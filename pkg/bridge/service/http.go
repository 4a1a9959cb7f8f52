package service

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	apperrors "github.com/chainsafe/wallet-settlement/pkg/app/errors"
	apphttp "github.com/chainsafe/wallet-settlement/pkg/app/http"
	"github.com/chainsafe/wallet-settlement/pkg/auth"
	"github.com/chainsafe/wallet-settlement/pkg/bridge"
	"github.com/chainsafe/wallet-settlement/pkg/unlock"
)

// HTTP wraps the Service to provide HTTP endpoints
type HTTP struct {
	service Service
	logger  *zap.Logger
}

// RegisterRoutes registers the bridge endpoints on the given chi router
func RegisterRoutes(r chi.Router, service Service, logger *zap.Logger) {
	h := &HTTP{
		service: service,
		logger:  logger,
	}

	r.Post("/bridge/create-enhanced", apphttp.HandleError(logger, h.create))
	r.Get("/bridge/{id}/status-enhanced", apphttp.HandleError(logger, h.status))
	r.Post("/bridge/{id}/cancel", apphttp.HandleError(logger, h.cancel))
}

func (h *HTTP) create(w http.ResponseWriter, r *http.Request) error {
	caller, err := auth.RequireAuthInfo(r.Context())
	if err != nil {
		return err
	}

	var req bridge.CreateRequest
	if err := apphttp.DecodeJSON(r, &req); err != nil {
		return err
	}
	if req.WalletUnlockToken == "" {
		req.WalletUnlockToken = r.Header.Get(unlock.TokenHeader)
	}

	resp, err := h.service.Create(r.Context(), caller, &req)
	if err != nil {
		return err
	}

	apphttp.WriteJSON(w, http.StatusCreated, resp)
	return nil
}

func (h *HTTP) status(w http.ResponseWriter, r *http.Request) error {
	caller, id, err := h.target(r)
	if err != nil {
		return err
	}

	resp, err := h.service.Status(r.Context(), caller, id)
	if err != nil {
		return err
	}

	apphttp.WriteJSON(w, http.StatusOK, resp)
	return nil
}

func (h *HTTP) cancel(w http.ResponseWriter, r *http.Request) error {
	caller, id, err := h.target(r)
	if err != nil {
		return err
	}

	resp, err := h.service.Cancel(r.Context(), caller, id)
	if err != nil {
		return err
	}

	apphttp.WriteJSON(w, http.StatusOK, resp)
	return nil
}

func (h *HTTP) target(r *http.Request) (*auth.AuthInfo, uuid.UUID, error) {
	caller, err := auth.RequireAuthInfo(r.Context())
	if err != nil {
		return nil, uuid.Nil, err
	}
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return nil, uuid.Nil, apperrors.BadRequestError(err, "invalid bridge id")
	}
	return caller, id, nil
}
