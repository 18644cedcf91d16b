package handlers

import (
	"context"

	catalogUsecases "github.com/tierworks/sellertiers/internal/application/catalog/usecases"
	entitlementUsecases "github.com/tierworks/sellertiers/internal/application/entitlement/usecases"
	ledgerUsecases "github.com/tierworks/sellertiers/internal/application/ledger/usecases"
	orderUsecases "github.com/tierworks/sellertiers/internal/application/order/usecases"
	paymentUsecases "github.com/tierworks/sellertiers/internal/application/payment/usecases"
	"github.com/tierworks/sellertiers/internal/domain/subscription"
)

// Narrow use case interfaces so handlers can be tested with small fakes.

type getPriceTableUseCase interface {
	Execute() *catalogUsecases.PriceTable
}

type createOrderUseCase interface {
	Execute(ctx context.Context, cmd orderUsecases.CreateOrderCommand) (*orderUsecases.CreateOrderResult, error)
}

type verifyPaymentUseCase interface {
	Execute(ctx context.Context, cmd paymentUsecases.VerifyPaymentCommand) (*paymentUsecases.VerifyPaymentResult, error)
}

type listTransactionsUseCase interface {
	Execute(ctx context.Context, query ledgerUsecases.ListTransactionsQuery) (*ledgerUsecases.ListTransactionsResult, error)
}

type refundTransactionUseCase interface {
	Execute(ctx context.Context, cmd ledgerUsecases.RefundTransactionCommand) (*ledgerUsecases.RefundTransactionResult, error)
}

type authorizeUseCase interface {
	Execute(ctx context.Context, cmd entitlementUsecases.AuthorizeCommand) (*entitlementUsecases.AuthorizeResult, error)
}

type recordUsageUseCase interface {
	Execute(ctx context.Context, cmd entitlementUsecases.RecordUsageCommand) error
}

// subscriptionStore is the slice of the state machine the HTTP layer reads
// and provisions through.
type subscriptionStore interface {
	Current(ctx context.Context, sellerID string) (*subscription.Subscription, error)
	Provision(ctx context.Context, sellerID string) (*subscription.Subscription, error)
}
