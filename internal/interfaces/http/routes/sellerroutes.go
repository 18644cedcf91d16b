// Package routes provides HTTP route configurations.
package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/tierworks/sellertiers/internal/interfaces/http/handlers"
	"github.com/tierworks/sellertiers/internal/interfaces/http/middleware"
)

// SellerRouteConfig holds dependencies for the public and seller routes.
type SellerRouteConfig struct {
	CatalogHandler      *handlers.CatalogHandler
	OrderHandler        *handlers.OrderHandler
	PaymentHandler      *handlers.PaymentHandler
	TransactionHandler  *handlers.TransactionHandler
	SubscriptionHandler *handlers.SubscriptionHandler
	EntitlementHandler  *handlers.EntitlementHandler
	AuthMiddleware      *middleware.AuthMiddleware
	VerifyRateLimit     *middleware.RateLimitMiddleware
}

// SetupSellerRoutes configures /packages and the seller-authenticated routes.
func SetupSellerRoutes(engine *gin.Engine, cfg *SellerRouteConfig) {
	engine.GET("/packages", cfg.CatalogHandler.ListPackages)

	seller := engine.Group("")
	seller.Use(cfg.AuthMiddleware.RequireAuth())
	{
		seller.POST("/orders", cfg.OrderHandler.CreateOrder)
		seller.POST("/payments/verify", cfg.VerifyRateLimit.PerSeller(), cfg.PaymentHandler.VerifyPayment)
		seller.GET("/transactions", cfg.TransactionHandler.ListTransactions)
		seller.GET("/subscription", cfg.SubscriptionHandler.GetSubscription)
		seller.POST("/entitlements/authorize", cfg.EntitlementHandler.Authorize)
	}
}
