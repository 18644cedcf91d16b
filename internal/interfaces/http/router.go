package http

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tierworks/sellertiers/internal/interfaces/http/middleware"
	"github.com/tierworks/sellertiers/internal/interfaces/http/routes"
)

// Router represents the HTTP router configuration
type Router struct {
	engine    *gin.Engine
	container *Container
}

func NewRouter(container *Container) *Router {
	return &Router{
		engine:    gin.New(),
		container: container,
	}
}

// SetupRoutes installs the global middleware and every route group.
func (r *Router) SetupRoutes() {
	c := r.container

	r.engine.Use(
		middleware.Recovery(c.log),
		middleware.Logger(c.log),
		middleware.CORS(c.cfg.Server.AllowedOrigins),
	)

	r.engine.GET("/health", c.healthHandler.Health)
	r.engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})))

	routes.SetupSellerRoutes(r.engine, &routes.SellerRouteConfig{
		CatalogHandler:      c.catalogHandler,
		OrderHandler:        c.orderHandler,
		PaymentHandler:      c.paymentHandler,
		TransactionHandler:  c.transactionHandler,
		SubscriptionHandler: c.subscriptionHandler,
		EntitlementHandler:  c.entitlementHandler,
		AuthMiddleware:      c.authMiddleware,
		VerifyRateLimit:     c.verifyRateLimit,
	})

	routes.SetupInternalRoutes(r.engine, &routes.InternalRouteConfig{
		SubscriptionHandler: c.subscriptionHandler,
		EntitlementHandler:  c.entitlementHandler,
		AuthMiddleware:      c.authMiddleware,
	})

	routes.SetupAdminRoutes(r.engine, &routes.AdminRouteConfig{
		TransactionHandler: c.transactionHandler,
		AuthMiddleware:     c.authMiddleware,
	})
}

func (r *Router) GetEngine() *gin.Engine {
	return r.engine
}
