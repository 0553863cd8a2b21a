package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/garyjia/order-intake/internal/application/port"
	"github.com/garyjia/order-intake/internal/domain/order"
)

// CreateOrder handles POST /api/orders
func (h *Handlers) CreateOrder(c *gin.Context) {
	var summary order.Summary
	if !h.bindJSON(c, &summary) {
		return
	}

	created, err := h.services.Orders.Create(c.Request.Context(), summary)
	if err != nil {
		h.respondError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, gin.H{"order": created})
}

// GetOrder handles GET /api/orders/:id
func (h *Handlers) GetOrder(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	found, err := h.services.Orders.Get(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, found)
}

// UpdateOrder handles PUT /api/orders/:id
func (h *Handlers) UpdateOrder(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var summary order.Summary
	if !h.bindJSON(c, &summary) {
		return
	}

	updated, err := h.services.Orders.Update(c.Request.Context(), id, summary)
	if err != nil {
		h.respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"order": updated})
}

// AssignOrder handles POST /api/orders/:id/assign
func (h *Handlers) AssignOrder(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req port.AssignRequest
	if !h.bindJSON(c, &req) {
		return
	}

	assigned, err := h.services.Orders.Assign(c.Request.Context(), id, req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"order": assigned})
}
