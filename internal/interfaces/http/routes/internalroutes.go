package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/tierworks/sellertiers/internal/interfaces/http/handlers"
	"github.com/tierworks/sellertiers/internal/interfaces/http/middleware"
)

// InternalRouteConfig holds dependencies for service-to-service routes.
type InternalRouteConfig struct {
	SubscriptionHandler *handlers.SubscriptionHandler
	EntitlementHandler  *handlers.EntitlementHandler
	AuthMiddleware      *middleware.AuthMiddleware
}

// SetupInternalRoutes configures /internal/sellers/:seller_id/*, used by the
// profile and listing services.
func SetupInternalRoutes(engine *gin.Engine, cfg *InternalRouteConfig) {
	sellers := engine.Group("/internal/sellers/:seller_id")
	sellers.Use(cfg.AuthMiddleware.RequireInternalToken())
	{
		sellers.POST("/provision", cfg.SubscriptionHandler.ProvisionSeller)
		sellers.POST("/entitlements/authorize", cfg.EntitlementHandler.AuthorizeSeller)
		sellers.POST("/usage", cfg.EntitlementHandler.RecordUsage)
	}
}
