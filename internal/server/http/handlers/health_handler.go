package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const healthTimeout = 3 * time.Second

// HealthHandler reports service readiness.
type HealthHandler struct {
	facade HealthFacade
}

// NewHealthHandler constructs HealthHandler.
func NewHealthHandler(facade HealthFacade) *HealthHandler {
	return &HealthHandler{facade: facade}
}

// Check handles GET /api/health.
func (h *HealthHandler) Check(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
	defer cancel()

	if err := h.facade.Health(ctx); err != nil {
		_ = c.Error(err)
		respondFailure(c, http.StatusServiceUnavailable, "UNAVAILABLE", "dependencies are not ready")
		return
	}
	respond(c, http.StatusOK, gin.H{"status": "ok"})
}
