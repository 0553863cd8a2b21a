package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/garyjia/order-intake/internal/application/port"
)

// AddVendorQuote handles POST /api/material-requests/:id/vendors
func (h *Handlers) AddVendorQuote(c *gin.Context) {
	materialRequestID, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req port.VendorQuoteRequest
	if !h.bindJSON(c, &req) {
		return
	}

	quote, err := h.services.Vendors.AddQuote(c.Request.Context(), materialRequestID, req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, gin.H{"vendorQuoteId": quote.ID})
}

// ListVendorQuotes handles GET /api/material-requests/:id/vendors
func (h *Handlers) ListVendorQuotes(c *gin.Context) {
	materialRequestID, ok := parseID(c, "id")
	if !ok {
		return
	}

	quotes, err := h.services.Vendors.ListQuotes(c.Request.Context(), materialRequestID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, quotes)
}

// SelectVendor handles POST /api/material-requests/:id/select-vendor. A
// vendor without a quote leaves the request with no selection and reports
// selected=false.
func (h *Handlers) SelectVendor(c *gin.Context) {
	materialRequestID, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req port.SelectVendorRequest
	if !h.bindJSON(c, &req) {
		return
	}
	if !h.validateBody(c, &req) {
		return
	}

	ctx := c.Request.Context()
	selected, err := h.services.Vendors.SelectVendor(ctx, materialRequestID, req.VendorID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	quotes, err := h.services.Vendors.ListQuotes(ctx, materialRequestID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"selected": selected, "vendors": quotes})
}
