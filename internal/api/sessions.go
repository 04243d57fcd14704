package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/powerofaum/payments/internal/billing"
	apperrors "github.com/powerofaum/payments/internal/errors"
	"github.com/powerofaum/payments/internal/logger"
)

// createSubscriptionSession handles POST /api/create-subscription-session
func (h *Handler) createSubscriptionSession(w http.ResponseWriter, r *http.Request) {
	var req billing.SessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeErrorResponse(w, r, http.StatusBadRequest, "invalid json")
		return
	}

	result, err := h.billing.CreateSubscriptionSession(r.Context(), req)
	if err != nil {
		h.writeSessionError(w, r, err)
		return
	}

	h.writeJSONResponse(w, http.StatusOK, map[string]interface{}{
		"success":   true,
		"sessionId": result.SessionID,
		"url":       result.URL,
	})
}

// createAddonSession handles POST /api/create-addon-session
func (h *Handler) createAddonSession(w http.ResponseWriter, r *http.Request) {
	var req billing.SessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeErrorResponse(w, r, http.StatusBadRequest, "invalid json")
		return
	}

	result, err := h.billing.CreateAddonSession(r.Context(), req)
	if err != nil {
		h.writeSessionError(w, r, err)
		return
	}

	h.writeJSONResponse(w, http.StatusOK, map[string]interface{}{
		"success":                   true,
		"sessionId":                 result.SessionID,
		"url":                       result.URL,
		"applicationFeeAmountCents": result.ApplicationFeeAmountCents,
	})
}

// writeSessionError maps session-creation failures onto HTTP statuses.
// Validation problems carry their message to the caller; everything else
// stays generic so internals do not leak.
func (h *Handler) writeSessionError(w http.ResponseWriter, r *http.Request, err error) {
	ctx := r.Context()

	switch {
	case apperrors.IsValidation(err):
		h.writeErrorResponse(w, r, http.StatusBadRequest, err.Error())
	case apperrors.IsConfiguration(err):
		logger.WithContext(ctx).Error("Session creation misconfigured", "error", err)
		h.writeErrorResponse(w, r, http.StatusInternalServerError, "service misconfigured")
	default:
		var pe apperrors.ProcessorError
		if errors.As(err, &pe) {
			logger.WithContext(ctx).Error("Payment processor call failed", "error", err)
			h.writeErrorResponse(w, r, http.StatusInternalServerError, "payment processor error")
			return
		}
		logger.WithContext(ctx).Error("Session creation failed", "error", err)
		h.writeErrorResponse(w, r, http.StatusInternalServerError, "Internal server error")
	}
}
