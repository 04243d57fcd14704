package api

import (
	"net/http"

	"github.com/powerofaum/payments/internal/logger"
)

// vendorSalesStatus handles GET /api/vendor-sales-status
func (h *Handler) vendorSalesStatus(w http.ResponseWriter, r *http.Request) {
	vendorID := r.URL.Query().Get("vendorAccountId")
	if vendorID == "" {
		h.writeErrorResponse(w, r, http.StatusBadRequest, "vendorAccountId parameter is required")
		return
	}

	status, err := h.aggregator.VendorSales(r.Context(), vendorID)
	if err != nil {
		logger.WithContext(r.Context()).Error("Vendor sales aggregation failed", "vendor_account_id", vendorID, "error", err)
		h.writeErrorResponse(w, r, http.StatusInternalServerError, "Internal server error")
		return
	}

	h.writeJSONResponse(w, http.StatusOK, status)
}

// addonPurchaseStatus handles GET /api/addon-purchase-status
func (h *Handler) addonPurchaseStatus(w http.ResponseWriter, r *http.Request) {
	vendorID := r.URL.Query().Get("vendorAccountId")
	if vendorID == "" {
		h.writeErrorResponse(w, r, http.StatusBadRequest, "vendorAccountId parameter is required")
		return
	}

	status, err := h.aggregator.VendorAddonSales(r.Context(), vendorID)
	if err != nil {
		logger.WithContext(r.Context()).Error("Add-on sales aggregation failed", "vendor_account_id", vendorID, "error", err)
		h.writeErrorResponse(w, r, http.StatusInternalServerError, "Internal server error")
		return
	}

	h.writeJSONResponse(w, http.StatusOK, status)
}
