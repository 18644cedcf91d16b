package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tierworks/sellertiers/internal/shared/utils"
	"github.com/tierworks/sellertiers/internal/shared/version"
)

// Pinger is satisfied by the database and Redis health checks.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingerFunc adapts a function to Pinger.
type PingerFunc func(ctx context.Context) error

func (f PingerFunc) Ping(ctx context.Context) error {
	return f(ctx)
}

type HealthResponse struct {
	Checks map[string]string `json:"checks"`
	Build  version.Info      `json:"build"`
}

type HealthHandler struct {
	checks map[string]Pinger
}

func NewHealthHandler(checks map[string]Pinger) *HealthHandler {
	return &HealthHandler{checks: checks}
}

// Health handles GET /health.
func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := make(map[string]string, len(h.checks))
	healthy := true
	for name, check := range h.checks {
		if err := check.Ping(ctx); err != nil {
			status[name] = "down"
			healthy = false
			continue
		}
		status[name] = "up"
	}

	resp := HealthResponse{Checks: status, Build: version.Current()}
	if !healthy {
		c.JSON(http.StatusServiceUnavailable, utils.APIResponse{
			Success: false,
			Data:    resp,
			Error:   &utils.ErrorInfo{Type: "unhealthy", Message: "dependency check failed"},
		})
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "ok", resp)
}
