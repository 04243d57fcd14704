package api

import (
	"fmt"
	"io"
	"net/http"

	"github.com/powerofaum/payments/internal/billing"
	apperrors "github.com/powerofaum/payments/internal/errors"
	"github.com/powerofaum/payments/internal/logger"
	"github.com/powerofaum/payments/internal/metrics"
)

// verifyWebhook reads the raw body and authenticates the signature
// header. On failure it writes the 400 itself and reports ok=false; a
// non-2xx response is what makes the processor redeliver.
func (h *Handler) verifyWebhook(w http.ResponseWriter, r *http.Request) (billing.Event, string, bool) {
	payload, err := io.ReadAll(r.Body)
	if err != nil {
		h.writeErrorResponse(w, r, http.StatusBadRequest, "unreadable body")
		return nil, "", false
	}

	event, err := h.billing.VerifyEvent(payload, r.Header.Get("Stripe-Signature"))
	if err != nil {
		if apperrors.IsAuthentication(err) {
			logger.WithContext(r.Context()).Warn("Webhook signature rejected", "error", err)
			metrics.RecordWebhookEvent("unknown", "auth_failed")
		}
		h.writeErrorResponse(w, r, http.StatusBadRequest, "invalid signature")
		return nil, "", false
	}

	classified, err := billing.Classify(event)
	if err != nil {
		logger.WithContext(r.Context()).Error("Webhook payload undecodable", "event_id", event.ID, "error", err)
		h.writeErrorResponse(w, r, http.StatusBadRequest, "invalid payload")
		return nil, "", false
	}

	return classified, event.ID, true
}

// seenBefore consults the dedup cache. Redis failures count as unseen so
// a cache outage never blocks reconciliation; the ledger stays idempotent
// on its own. Keys are scoped per endpoint because the processor delivers
// each event to every registered endpoint; id-less events skip the cache
// entirely rather than sharing one key.
func (h *Handler) seenBefore(r *http.Request, endpoint, eventID string) bool {
	if h.dedup == nil || eventID == "" {
		return false
	}
	seen, err := h.dedup.Seen(r.Context(), endpoint+":"+eventID)
	if err != nil {
		logger.WithContext(r.Context()).Warn("Event dedup check failed", "event_id", eventID, "error", err)
		return false
	}
	return seen
}

func (h *Handler) rememberEvent(r *http.Request, endpoint, eventID string) {
	if h.dedup == nil || eventID == "" {
		return
	}
	if _, err := h.dedup.MarkProcessed(r.Context(), endpoint+":"+eventID); err != nil {
		logger.WithContext(r.Context()).Warn("Event dedup mark failed", "event_id", eventID, "error", err)
	}
}

// stripeWebhook handles POST /api/webhook-stripe. It records completed
// subscription checkouts; everything else is acknowledged so the
// processor does not build a retry backlog.
func (h *Handler) stripeWebhook(w http.ResponseWriter, r *http.Request) {
	event, eventID, ok := h.verifyWebhook(w, r)
	if !ok {
		return
	}
	if h.seenBefore(r, "stripe", eventID) {
		metrics.RecordWebhookEvent("checkout.session.completed", "redelivered")
		h.writeJSONResponse(w, http.StatusOK, map[string]interface{}{"success": true})
		return
	}

	switch ev := event.(type) {
	case billing.SubscriptionCompleted:
		if err := h.billing.RecordSubscription(r.Context(), ev); err != nil {
			logger.WithContext(r.Context()).Error("Subscription reconciliation failed", "error", err)
			h.writeErrorResponse(w, r, http.StatusInternalServerError, "Internal server error")
			return
		}

	case billing.AddonCompleted:
		// Add-on completion is reconciled by the addon webhook; this
		// endpoint only acknowledges it.
		logger.WithContext(r.Context()).Debug("Add-on completion acknowledged", "session_id", ev.SessionID)

	case billing.PaymentFailed:
		h.billing.NotePaymentFailure(r.Context(), ev)

	case billing.Unhandled:
		logger.WithContext(r.Context()).Debug("Unhandled event type", "type", ev.Type)
		metrics.RecordWebhookEvent(ev.Type, "ignored")
	}

	h.rememberEvent(r, "stripe", eventID)
	h.writeJSONResponse(w, http.StatusOK, map[string]interface{}{"success": true})
}

// addonWebhook handles POST /api/addon-webhook. A completed add-on
// checkout transitions the pending ledger record; an unknown session id
// is a 404 so the delivery is visibly unmatched, while any other event
// type is acknowledged.
func (h *Handler) addonWebhook(w http.ResponseWriter, r *http.Request) {
	event, eventID, ok := h.verifyWebhook(w, r)
	if !ok {
		return
	}
	if h.seenBefore(r, "addon", eventID) {
		metrics.RecordWebhookEvent("checkout.session.completed", "redelivered")
		h.writeJSONResponse(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"message": "Event already processed",
		})
		return
	}

	switch ev := event.(type) {
	case billing.AddonCompleted:
		rec, found, err := h.billing.CompleteAddon(r.Context(), ev)
		if err != nil {
			logger.WithContext(r.Context()).Error("Add-on reconciliation failed", "error", err)
			h.writeErrorResponse(w, r, http.StatusInternalServerError, "Internal server error")
			return
		}
		if !found {
			h.writeErrorResponse(w, r, http.StatusNotFound, "Add-on purchase not found")
			return
		}

		h.rememberEvent(r, "addon", eventID)
		h.writeJSONResponse(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"message": "Blessing PDF purchased",
			"pdfUrl":  rec.PDFURL,
		})
		return

	case billing.SubscriptionCompleted:
		logger.WithContext(r.Context()).Debug("Non-addon purchase acknowledged", "session_id", ev.SessionID)
		h.rememberEvent(r, "addon", eventID)
		h.writeJSONResponse(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"message": "Non-addon purchase completed",
		})
		return

	case billing.PaymentFailed:
		h.billing.NotePaymentFailure(r.Context(), ev)
		h.rememberEvent(r, "addon", eventID)
		h.writeJSONResponse(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"message": "Payment failure recorded",
		})
		return

	case billing.Unhandled:
		logger.WithContext(r.Context()).Debug("Unhandled event type", "type", ev.Type)
		metrics.RecordWebhookEvent(ev.Type, "ignored")
		h.rememberEvent(r, "addon", eventID)
		h.writeJSONResponse(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"message": fmt.Sprintf("Event %s processed", ev.Type),
		})
		return
	}
}
