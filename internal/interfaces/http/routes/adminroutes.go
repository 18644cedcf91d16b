package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/tierworks/sellertiers/internal/interfaces/http/handlers"
	"github.com/tierworks/sellertiers/internal/interfaces/http/middleware"
	"github.com/tierworks/sellertiers/internal/shared/constants"
)

// AdminRouteConfig holds dependencies for admin routes.
type AdminRouteConfig struct {
	TransactionHandler *handlers.TransactionHandler
	AuthMiddleware     *middleware.AuthMiddleware
}

// SetupAdminRoutes configures admin routes.
func SetupAdminRoutes(engine *gin.Engine, cfg *AdminRouteConfig) {
	admin := engine.Group("/admin")
	admin.Use(cfg.AuthMiddleware.RequireAuth(), cfg.AuthMiddleware.RequireRole(constants.RoleAdmin))
	{
		admin.POST("/transactions/:id/refund", cfg.TransactionHandler.RefundTransaction)
	}
}
