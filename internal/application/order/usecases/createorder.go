package usecases

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tierworks/sellertiers/internal/application/common"
	"github.com/tierworks/sellertiers/internal/application/payment"
	"github.com/tierworks/sellertiers/internal/application/payment/paymentgateway"
	subscriptionapp "github.com/tierworks/sellertiers/internal/application/subscription"
	"github.com/tierworks/sellertiers/internal/domain/catalog"
	"github.com/tierworks/sellertiers/internal/domain/ledger"
	"github.com/tierworks/sellertiers/internal/domain/subscription"
	"github.com/tierworks/sellertiers/internal/shared/biztime"
	apperrors "github.com/tierworks/sellertiers/internal/shared/errors"
	"github.com/tierworks/sellertiers/internal/shared/logger"
)

type CreateOrderCommand struct {
	SellerID    string
	PackageName string
}

// CreateOrderResult is the order handle returned to the seller. Amount and
// Currency always come from the catalog. For a free package AlreadyActive is
// set, OrderRef is empty and Subscription carries the activated row.
type CreateOrderResult struct {
	OrderRef      string
	Amount        int64
	Currency      string
	AlreadyActive bool
	Subscription  *subscription.Subscription
}

type CreateOrderUseCase struct {
	catalog      *catalog.Catalog
	ledgerRepo   ledger.Repository
	stateMachine *subscriptionapp.StateMachine
	processor    paymentgateway.Processor
	metrics      common.Metrics
	clock        biztime.Clock
	logger       logger.Interface
}

func NewCreateOrderUseCase(
	catalog *catalog.Catalog,
	ledgerRepo ledger.Repository,
	stateMachine *subscriptionapp.StateMachine,
	processor paymentgateway.Processor,
	logger logger.Interface,
) *CreateOrderUseCase {
	return &CreateOrderUseCase{
		catalog:      catalog,
		ledgerRepo:   ledgerRepo,
		stateMachine: stateMachine,
		processor:    processor,
		metrics:      common.NopMetrics{},
		clock:        biztime.NowUTC,
		logger:       logger,
	}
}

func (uc *CreateOrderUseCase) SetMetrics(m common.Metrics) {
	uc.metrics = m
}

func (uc *CreateOrderUseCase) SetClock(clock biztime.Clock) {
	uc.clock = clock
}

func (uc *CreateOrderUseCase) Execute(ctx context.Context, cmd CreateOrderCommand) (*CreateOrderResult, error) {
	if strings.TrimSpace(cmd.SellerID) == "" {
		return nil, apperrors.NewValidationError("seller id is required")
	}
	if strings.TrimSpace(cmd.PackageName) == "" {
		return nil, apperrors.NewValidationError("package name is required")
	}

	pkg, err := uc.catalog.Get(cmd.PackageName)
	if err != nil {
		uc.logger.Warnw("order for unknown package", "seller_id", cmd.SellerID, "package", cmd.PackageName)
		return nil, common.ToAppError(err)
	}

	if pkg.IsFree() {
		return uc.activateFree(ctx, cmd.SellerID, pkg)
	}
	return uc.createPaidOrder(ctx, cmd.SellerID, pkg)
}

// activateFree activates a zero-price package without the processor and
// records a completed zero-amount entry in the same transaction. Repeating
// the call while already active on the package changes nothing.
func (uc *CreateOrderUseCase) activateFree(ctx context.Context, sellerID string, pkg *catalog.Package) (*CreateOrderResult, error) {
	recorded := false

	sub, err := uc.stateMachine.Activate(ctx, sellerID, pkg, pkg.DurationDays(),
		subscriptionapp.WithPrecheck(func(current *subscription.Subscription, now time.Time) (bool, error) {
			if !current.IsActiveAt(now) {
				return false, nil
			}
			if current.PackageName() == pkg.Name() {
				return true, nil
			}
			return false, fmt.Errorf("%w: seller is on %s until %s",
				subscription.ErrActiveSubscriptionExists, current.PackageName(), current.EndDate().Format(time.RFC3339))
		}),
		subscriptionapp.WithRecord(func(txCtx context.Context, activated *subscription.Subscription) error {
			entry, err := ledger.NewFreeActivation(uuid.NewString(), sellerID, pkg, uc.catalog.Version(), activated.UpdatedAt())
			if err != nil {
				return err
			}
			if err := uc.ledgerRepo.Create(txCtx, entry); err != nil {
				return fmt.Errorf("failed to record free activation: %w", err)
			}
			recorded = true
			return nil
		}),
	)
	if err != nil {
		if !errors.Is(err, subscription.ErrActiveSubscriptionExists) {
			uc.logger.Errorw("free activation failed", "seller_id", sellerID, "package", pkg.Name(), "error", err)
		}
		return nil, common.ToAppError(err)
	}

	if recorded {
		uc.metrics.OrderCreated(pkg.Name(), true)
		uc.logger.Infow("free package activated",
			"seller_id", sellerID,
			"package", pkg.Name(),
			"valid_until", sub.EndDate(),
		)
	}

	return &CreateOrderResult{
		Amount:        pkg.Price().Amount(),
		Currency:      pkg.Price().Currency(),
		AlreadyActive: true,
		Subscription:  sub,
	}, nil
}

// createPaidOrder asks the processor for an order at the catalog price and
// records it as a pending purchase keyed by the processor's order ref.
func (uc *CreateOrderUseCase) createPaidOrder(ctx context.Context, sellerID string, pkg *catalog.Package) (*CreateOrderResult, error) {
	now := uc.clock()
	price := pkg.Price()
	receipt := fmt.Sprintf("%s:%d", sellerID, now.UnixNano())

	order, err := uc.processor.CreateOrder(ctx, paymentgateway.CreateOrderRequest{
		Amount:   price.Amount(),
		Currency: price.Currency(),
		Receipt:  receipt,
		Notes: map[string]string{
			"seller_id": sellerID,
			"package":   pkg.Name(),
		},
	})
	if err != nil {
		uc.logger.Errorw("processor order creation failed",
			"seller_id", sellerID,
			"package", pkg.Name(),
			"error", err,
		)
		if errors.Is(err, paymentgateway.ErrUnavailable) {
			return nil, common.ToAppError(payment.ErrProcessorUnavailable)
		}
		return nil, fmt.Errorf("failed to create processor order: %w", err)
	}

	if order.Amount != price.Amount() || !strings.EqualFold(order.Currency, price.Currency()) {
		uc.logger.Errorw("processor order does not match catalog price",
			"seller_id", sellerID,
			"order_ref", order.OrderRef,
			"expected_amount", price.Amount(),
			"order_amount", order.Amount,
			"expected_currency", price.Currency(),
			"order_currency", order.Currency,
		)
		return nil, apperrors.NewInternalError("payment order could not be created")
	}

	entry, err := ledger.NewPurchase(uuid.NewString(), sellerID, pkg, order.OrderRef, receipt, uc.catalog.Version(), now)
	if err != nil {
		return nil, err
	}
	if err := uc.ledgerRepo.Create(ctx, entry); err != nil {
		uc.logger.Errorw("failed to record pending purchase",
			"seller_id", sellerID,
			"order_ref", order.OrderRef,
			"error", err,
		)
		return nil, fmt.Errorf("failed to record purchase: %w", err)
	}

	uc.metrics.OrderCreated(pkg.Name(), false)
	uc.logger.Infow("paid order created",
		"seller_id", sellerID,
		"package", pkg.Name(),
		"order_ref", order.OrderRef,
		"amount", price.String(),
	)

	return &CreateOrderResult{
		OrderRef: order.OrderRef,
		Amount:   price.Amount(),
		Currency: price.Currency(),
	}, nil
}
