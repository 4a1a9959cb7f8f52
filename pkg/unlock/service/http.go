package service

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	apperrors "github.com/chainsafe/wallet-settlement/pkg/app/errors"
	apphttp "github.com/chainsafe/wallet-settlement/pkg/app/http"
	"github.com/chainsafe/wallet-settlement/pkg/auth"
	"github.com/chainsafe/wallet-settlement/pkg/unlock"
)

// HTTP wraps the Service to provide HTTP endpoints
type HTTP struct {
	service Service
	logger  *zap.Logger
}

// RegisterRoutes registers the wallet lock endpoints on the given chi router.
// The router must already authenticate the caller.
func RegisterRoutes(r chi.Router, service Service, logger *zap.Logger) {
	h := &HTTP{
		service: service,
		logger:  logger,
	}

	r.Post("/wallets/unlock", apphttp.HandleError(logger, h.unlock))
	r.Post("/wallets/lock", apphttp.HandleError(logger, h.lock))
	r.Get("/wallets/{wallet_id}/unlock-status", apphttp.HandleError(logger, h.status))
}

func (h *HTTP) unlock(w http.ResponseWriter, r *http.Request) error {
	caller, err := auth.RequireAuthInfo(r.Context())
	if err != nil {
		return err
	}

	var req unlock.UnlockRequest
	if err := apphttp.DecodeJSON(r, &req); err != nil {
		return err
	}

	resp, err := h.service.Unlock(r.Context(), caller.UserID, &req)
	if err != nil {
		return err
	}

	apphttp.WriteJSON(w, http.StatusOK, resp)
	return nil
}

func (h *HTTP) lock(w http.ResponseWriter, r *http.Request) error {
	caller, err := auth.RequireAuthInfo(r.Context())
	if err != nil {
		return err
	}

	var req unlock.LockRequest
	if err := apphttp.DecodeJSON(r, &req); err != nil {
		return err
	}

	resp, err := h.service.LockWallet(r.Context(), caller.UserID, &req)
	if err != nil {
		return err
	}

	apphttp.WriteJSON(w, http.StatusOK, resp)
	return nil
}

func (h *HTTP) status(w http.ResponseWriter, r *http.Request) error {
	caller, err := auth.RequireAuthInfo(r.Context())
	if err != nil {
		return err
	}

	walletID, err := uuid.Parse(chi.URLParam(r, "wallet_id"))
	if err != nil {
		return apperrors.BadRequestError(err, "invalid wallet_id")
	}

	resp, err := h.service.Status(r.Context(), caller.UserID, walletID)
	if err != nil {
		return err
	}

	apphttp.WriteJSON(w, http.StatusOK, resp)
	return nil
}
