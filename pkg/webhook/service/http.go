package service

import (
	"bytes"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/chainsafe/wallet-settlement/internal/metrics"
	apperrors "github.com/chainsafe/wallet-settlement/pkg/app/errors"
	apphttp "github.com/chainsafe/wallet-settlement/pkg/app/http"
	"github.com/chainsafe/wallet-settlement/pkg/order"
	"github.com/chainsafe/wallet-settlement/pkg/webhook"
)

const maxWebhookBody = 64 << 10

// HTTP wraps the Service to provide the provider callback endpoints
type HTTP struct {
	service Service
	bridge  *webhook.Verifier
	fiat    *webhook.Verifier
	logger  *zap.Logger
}

// Ack is the body returned for an accepted event
type Ack struct {
	OperationID string       `json:"operation_id"`
	Status      order.Status `json:"status"`
}

// RegisterRoutes registers the webhook endpoints. They authenticate with the
// provider signature and must be mounted outside the JWT group.
func RegisterRoutes(r chi.Router, service Service, bridge, fiat *webhook.Verifier, logger *zap.Logger) {
	h := &HTTP{
		service: service,
		bridge:  bridge,
		fiat:    fiat,
		logger:  logger,
	}

	r.Post("/webhooks/bridge", apphttp.HandleError(logger, h.observe("bridge", h.bridgeEvent)))
	r.Post("/webhooks/fiat", apphttp.HandleError(logger, h.observe("fiat", h.fiatEvent)))
}

func (h *HTTP) bridgeEvent(w http.ResponseWriter, r *http.Request) error {
	if err := h.authenticate(r, h.bridge); err != nil {
		return err
	}

	var evt webhook.BridgeEvent
	if err := apphttp.DecodeJSON(r, &evt); err != nil {
		return err
	}

	op, err := h.service.HandleBridgeEvent(r.Context(), &evt)
	if err != nil {
		return err
	}

	apphttp.WriteJSON(w, http.StatusOK, &Ack{OperationID: op.ID.String(), Status: op.Status})
	return nil
}

func (h *HTTP) fiatEvent(w http.ResponseWriter, r *http.Request) error {
	if err := h.authenticate(r, h.fiat); err != nil {
		return err
	}

	var evt webhook.FiatEvent
	if err := apphttp.DecodeJSON(r, &evt); err != nil {
		return err
	}

	op, err := h.service.HandleFiatEvent(r.Context(), &evt)
	if err != nil {
		return err
	}

	apphttp.WriteJSON(w, http.StatusOK, &Ack{OperationID: op.ID.String(), Status: op.Status})
	return nil
}

// authenticate verifies the signature and leaves the body readable for decoding
func (h *HTTP) authenticate(r *http.Request, v *webhook.Verifier) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		return apperrors.BadRequestError(err, "failed to read request")
	}
	r.Body = io.NopCloser(bytes.NewReader(body))

	err = v.Verify(r.Header.Get(webhook.HeaderTimestamp), r.Header.Get(webhook.HeaderSignature), body)
	if err != nil {
		h.logger.Warn("Rejected webhook", zap.String("path", r.URL.Path), zap.Error(err))
		return apperrors.UnAuthorizedError(err, "invalid webhook signature")
	}
	return nil
}

func (h *HTTP) observe(source string, next apphttp.HandlerFunc) apphttp.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) error {
		err := next(w, r)
		result := "accepted"
		switch {
		case err == nil:
		case apperrors.Is(err, apperrors.CategoryUnauthorized):
			result = "unauthorized"
		case apperrors.Is(err, apperrors.CategoryDataConflict):
			result = "conflict"
		default:
			result = "error"
		}
		metrics.WebhooksReceived.WithLabelValues(source, result).Inc()
		return err
	}
}
