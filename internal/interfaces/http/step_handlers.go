package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// stepKey strips the leading slash gin keeps on catch-all parameters
func stepKey(c *gin.Context) string {
	return strings.TrimPrefix(c.Param("stepKey"), "/")
}

// SaveStep handles POST /api/steps/:orderId/*stepKey. The body is stored as is.
func (h *Handlers) SaveStep(c *gin.Context) {
	orderID, ok := parseID(c, "orderId")
	if !ok {
		return
	}
	body, err := c.GetRawData()
	if err != nil {
		respondFail(c, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	key := stepKey(c)
	if err := h.services.Steps.Save(c.Request.Context(), orderID, key, body); err != nil {
		h.respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"orderId": orderID, "stepKey": key})
}

// GetStep handles GET /api/steps/:orderId/*stepKey
func (h *Handlers) GetStep(c *gin.Context) {
	orderID, ok := parseID(c, "orderId")
	if !ok {
		return
	}

	record, err := h.services.Steps.Get(c.Request.Context(), orderID, stepKey(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, record)
}

// ListSteps handles GET /api/orders/:id/steps
func (h *Handlers) ListSteps(c *gin.Context) {
	orderID, ok := parseID(c, "id")
	if !ok {
		return
	}

	records, err := h.services.Steps.List(c.Request.Context(), orderID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, records)
}
