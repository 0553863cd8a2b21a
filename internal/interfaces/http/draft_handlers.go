package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/garyjia/order-intake/internal/application/port"
)

// CreateDraft handles POST /api/drafts
func (h *Handlers) CreateDraft(c *gin.Context) {
	var req port.DraftRequest
	if !h.bindJSON(c, &req) {
		return
	}

	draft, err := h.services.Drafts.Create(c.Request.Context(), req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, gin.H{"id": draft.ID})
}

// GetDraft handles GET /api/drafts/:id
func (h *Handlers) GetDraft(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	draft, err := h.services.Drafts.Get(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, draft)
}

// UpdateDraft handles PUT /api/drafts/:id
func (h *Handlers) UpdateDraft(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req port.DraftRequest
	if !h.bindJSON(c, &req) {
		return
	}

	if err := h.services.Drafts.Update(c.Request.Context(), id, req); err != nil {
		h.respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"id": id})
}

// DeleteDraft handles DELETE /api/drafts/:id
func (h *Handlers) DeleteDraft(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := h.services.Drafts.Delete(c.Request.Context(), id); err != nil {
		h.respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"id": id})
}
