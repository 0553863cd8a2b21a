package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/garyjia/order-intake/internal/application/port"
	"github.com/garyjia/order-intake/internal/application/service"
	"github.com/garyjia/order-intake/pkg/utils"
)

// Response is the envelope of every API response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Details []string    `json:"details,omitempty"`
}

// Handlers contains HTTP request handlers
type Handlers struct {
	services    Services
	logger      Logger
	validate    *validator.Validate
	healthCheck func(ctx context.Context) error
}

// NewHandlers creates a new Handlers instance
func NewHandlers(services Services, logger Logger, healthCheck func(ctx context.Context) error) *Handlers {
	return &Handlers{
		services:    services,
		logger:      logger,
		validate:    utils.NewValidator(),
		healthCheck: healthCheck,
	}
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	if h.healthCheck != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := h.healthCheck(ctx); err != nil {
			h.logger.Error("Health check failed", "error", err)
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": err.Error()})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

func respondOK(c *gin.Context, status int, data interface{}) {
	c.JSON(status, Response{Success: true, Data: data})
}

func respondFail(c *gin.Context, status int, msg string, details ...string) {
	c.JSON(status, Response{Success: false, Error: msg, Details: details})
}

// respondError maps service errors onto status codes. Unexpected errors are
// logged and reported without their text.
func (h *Handlers) respondError(c *gin.Context, err error) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		respondFail(c, http.StatusBadRequest, verr.Error(), verr.Messages...)
	case errors.Is(err, service.ErrDraftNotFound),
		errors.Is(err, service.ErrOrderNotFound),
		errors.Is(err, service.ErrStepNotFound),
		errors.Is(err, service.ErrNotificationNotFound),
		errors.Is(err, service.ErrUnknownStep):
		respondFail(c, http.StatusNotFound, err.Error())
	case errors.Is(err, port.ErrConflict):
		respondFail(c, http.StatusConflict, err.Error())
	default:
		h.logger.Error("Request failed", "error", err,
			"method", c.Request.Method, "path", c.FullPath(), "request_id", c.GetString(requestIDKey))
		respondFail(c, http.StatusInternalServerError, "internal server error")
	}
}

// bindJSON decodes the body into req; false means a response was written
func (h *Handlers) bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		respondFail(c, http.StatusBadRequest, "invalid request body", err.Error())
		return false
	}
	return true
}

// validateBody runs struct tags on req; false means a response was written
func (h *Handlers) validateBody(c *gin.Context, req interface{}) bool {
	if err := h.validate.Struct(req); err != nil {
		msgs := utils.ValidationMessages(err)
		respondFail(c, http.StatusBadRequest, msgs[0], msgs...)
		return false
	}
	return true
}

// parseID reads a positive integer path parameter; false means a response was written
func parseID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		respondFail(c, http.StatusBadRequest, "invalid "+name)
		return 0, false
	}
	return id, true
}
