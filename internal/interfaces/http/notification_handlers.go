package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/garyjia/order-intake/internal/application/port"
)

const (
	defaultNotificationLimit = 50
	maxNotificationLimit     = 200
)

// SendNotification handles POST /api/notifications
func (h *Handlers) SendNotification(c *gin.Context) {
	var req port.NotificationRequest
	if !h.bindJSON(c, &req) {
		return
	}

	n, err := h.services.Notifications.Send(c.Request.Context(), req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, n)
}

// ListNotifications handles GET /api/notifications?userId=&limit=
func (h *Handlers) ListNotifications(c *gin.Context) {
	userID := c.Query("userId")
	if userID == "" {
		respondFail(c, http.StatusBadRequest, "userId is required")
		return
	}

	limit := defaultNotificationLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			respondFail(c, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = min(n, maxNotificationLimit)
	}

	list, err := h.services.Notifications.ListForUser(c.Request.Context(), userID, limit)
	if err != nil {
		h.respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, list)
}

// MarkNotificationRead handles POST /api/notifications/:id/read
func (h *Handlers) MarkNotificationRead(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := h.services.Notifications.MarkRead(c.Request.Context(), id); err != nil {
		h.respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"id": id})
}
