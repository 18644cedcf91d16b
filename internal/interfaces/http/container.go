package http

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	catalogUsecases "github.com/tierworks/sellertiers/internal/application/catalog/usecases"
	entitlementUsecases "github.com/tierworks/sellertiers/internal/application/entitlement/usecases"
	ledgerUsecases "github.com/tierworks/sellertiers/internal/application/ledger/usecases"
	orderUsecases "github.com/tierworks/sellertiers/internal/application/order/usecases"
	paymentUsecases "github.com/tierworks/sellertiers/internal/application/payment/usecases"
	subscriptionApp "github.com/tierworks/sellertiers/internal/application/subscription"
	"github.com/tierworks/sellertiers/internal/domain/catalog"
	"github.com/tierworks/sellertiers/internal/infrastructure/auth"
	"github.com/tierworks/sellertiers/internal/infrastructure/cache"
	"github.com/tierworks/sellertiers/internal/infrastructure/config"
	"github.com/tierworks/sellertiers/internal/infrastructure/metrics"
	infraPayment "github.com/tierworks/sellertiers/internal/infrastructure/payment"
	"github.com/tierworks/sellertiers/internal/infrastructure/ratelimit"
	"github.com/tierworks/sellertiers/internal/infrastructure/repository"
	"github.com/tierworks/sellertiers/internal/interfaces/http/handlers"
	"github.com/tierworks/sellertiers/internal/interfaces/http/middleware"
	"github.com/tierworks/sellertiers/internal/shared/db"
	"github.com/tierworks/sellertiers/internal/shared/logger"
)

const processorRetryInterval = 200 * time.Millisecond

// Container wires infrastructure, use cases, handlers and middleware.
type Container struct {
	db       *gorm.DB
	redis    *redis.Client
	cfg      *config.Config
	log      logger.Interface
	registry *prometheus.Registry

	catalog      *catalog.Catalog
	stateMachine *subscriptionApp.StateMachine

	catalogHandler      *handlers.CatalogHandler
	orderHandler        *handlers.OrderHandler
	paymentHandler      *handlers.PaymentHandler
	transactionHandler  *handlers.TransactionHandler
	subscriptionHandler *handlers.SubscriptionHandler
	entitlementHandler  *handlers.EntitlementHandler
	healthHandler       *handlers.HealthHandler

	authMiddleware  *middleware.AuthMiddleware
	verifyRateLimit *middleware.RateLimitMiddleware
}

// NewContainer builds the object graph. The database must already be
// migrated and the Redis client connected.
func NewContainer(gormDB *gorm.DB, redisClient *redis.Client, cfg *config.Config, log logger.Interface) (*Container, error) {
	if err := validateSecrets(cfg); err != nil {
		return nil, err
	}

	c := &Container{
		db:       gormDB,
		redis:    redisClient,
		cfg:      cfg,
		log:      log,
		registry: prometheus.NewRegistry(),
	}

	c.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	cat, err := config.BuildCatalog(cfg.Catalog)
	if err != nil {
		return nil, fmt.Errorf("failed to build package catalog: %w", err)
	}
	c.catalog = cat
	log.Infow("package catalog loaded", "version", cat.Version(), "packages", len(cat.List()))

	c.initUseCasesAndHandlers()
	c.initMiddleware()

	return c, nil
}

// validateSecrets refuses to start with an empty signing key. An empty HMAC
// or JWT key is public knowledge, so anyone could forge a payment
// confirmation or a seller token.
func validateSecrets(cfg *config.Config) error {
	if strings.TrimSpace(cfg.Processor.SignatureSecret) == "" {
		return errors.New("processor.signature_secret must be set")
	}
	if strings.TrimSpace(cfg.Auth.JWT.Secret) == "" {
		return errors.New("auth.jwt.secret must be set")
	}
	return nil
}

func (c *Container) initUseCasesAndHandlers() {
	log := c.log
	appMetrics := metrics.NewPrometheusMetrics(c.registry)
	txManager := db.NewTransactionManager(c.db)

	subscriptionRepo := repository.NewSubscriptionRepository(c.db, log)
	transactionRepo := repository.NewTransactionRepository(c.db, log)

	processor := infraPayment.NewRetryingProcessor(
		infraPayment.NewProcessorClient(c.cfg.Processor, log),
		c.cfg.Processor.MaxRetries,
		processorRetryInterval,
		log,
	)

	c.stateMachine = subscriptionApp.NewStateMachine(subscriptionRepo, c.catalog, txManager, log)
	c.stateMachine.SetMetrics(appMetrics)

	createOrderUC := orderUsecases.NewCreateOrderUseCase(c.catalog, transactionRepo, c.stateMachine, processor, log)
	createOrderUC.SetMetrics(appMetrics)

	verifyPaymentUC := paymentUsecases.NewVerifyPaymentUseCase(
		c.catalog, transactionRepo, c.stateMachine, processor, c.cfg.Processor.SignatureSecret, log,
	)
	verifyPaymentUC.SetMetrics(appMetrics)

	refundUC := ledgerUsecases.NewRefundTransactionUseCase(transactionRepo, txManager, log)
	refundUC.SetMetrics(appMetrics)

	usageCounter := cache.NewRedisUsageCounter(c.redis, log)
	authorizeUC := entitlementUsecases.NewAuthorizeUseCase(c.stateMachine, usageCounter, log)
	authorizeUC.SetMetrics(appMetrics)

	c.catalogHandler = handlers.NewCatalogHandler(catalogUsecases.NewGetPriceTableUseCase(c.catalog))
	c.orderHandler = handlers.NewOrderHandler(createOrderUC, log)
	c.paymentHandler = handlers.NewPaymentHandler(verifyPaymentUC, log)
	c.transactionHandler = handlers.NewTransactionHandler(
		ledgerUsecases.NewListTransactionsUseCase(transactionRepo, log),
		refundUC,
		log,
	)
	c.subscriptionHandler = handlers.NewSubscriptionHandler(c.stateMachine, log)
	c.entitlementHandler = handlers.NewEntitlementHandler(
		authorizeUC,
		entitlementUsecases.NewRecordUsageUseCase(usageCounter, log),
		log,
	)
	c.healthHandler = handlers.NewHealthHandler(map[string]handlers.Pinger{
		"database": handlers.PingerFunc(c.pingDatabase),
		"redis": handlers.PingerFunc(func(ctx context.Context) error {
			return c.redis.Ping(ctx).Err()
		}),
	})
}

func (c *Container) initMiddleware() {
	jwtService := auth.NewJWTService(c.cfg.Auth.JWT.Secret, c.cfg.Auth.JWT.AccessExpMinutes)
	c.authMiddleware = middleware.NewAuthMiddleware(jwtService, c.cfg.Auth.InternalToken, c.log)

	perMinute := c.cfg.RateLimit.VerifyPerMinute
	if perMinute <= 0 {
		perMinute = 10
	}
	limiter := ratelimit.NewRedisRateLimiter(c.redis, "verify", perMinute, time.Minute)
	c.verifyRateLimit = middleware.NewRateLimitMiddleware(limiter, c.log)
}

func (c *Container) pingDatabase(ctx context.Context) error {
	sqlDB, err := c.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// NewRedisClient creates the Redis client and checks the connection.
func NewRedisClient(ctx context.Context, cfg *config.Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.GetAddr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return client, nil
}
