package handlers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	catalogUsecases "github.com/tierworks/sellertiers/internal/application/catalog/usecases"
	entitlementUsecases "github.com/tierworks/sellertiers/internal/application/entitlement/usecases"
	ledgerUsecases "github.com/tierworks/sellertiers/internal/application/ledger/usecases"
	orderUsecases "github.com/tierworks/sellertiers/internal/application/order/usecases"
	paymentUsecases "github.com/tierworks/sellertiers/internal/application/payment/usecases"
	apptestutil "github.com/tierworks/sellertiers/internal/application/testutil"
	"github.com/tierworks/sellertiers/internal/domain/ledger"
	"github.com/tierworks/sellertiers/internal/domain/subscription"
)

// =====================================================================
// Mock use cases
// =====================================================================

type mockGetPriceTableUC struct {
	result *catalogUsecases.PriceTable
}

func (m *mockGetPriceTableUC) Execute() *catalogUsecases.PriceTable {
	return m.result
}

type mockCreateOrderUC struct {
	result *orderUsecases.CreateOrderResult
	err    error
	cmd    orderUsecases.CreateOrderCommand
	called bool
}

func (m *mockCreateOrderUC) Execute(ctx context.Context, cmd orderUsecases.CreateOrderCommand) (*orderUsecases.CreateOrderResult, error) {
	m.called = true
	m.cmd = cmd
	return m.result, m.err
}

type mockVerifyPaymentUC struct {
	result *paymentUsecases.VerifyPaymentResult
	err    error
	cmd    paymentUsecases.VerifyPaymentCommand
	called bool
}

func (m *mockVerifyPaymentUC) Execute(ctx context.Context, cmd paymentUsecases.VerifyPaymentCommand) (*paymentUsecases.VerifyPaymentResult, error) {
	m.called = true
	m.cmd = cmd
	return m.result, m.err
}

type mockListTransactionsUC struct {
	result *ledgerUsecases.ListTransactionsResult
	err    error
	query  ledgerUsecases.ListTransactionsQuery
}

func (m *mockListTransactionsUC) Execute(ctx context.Context, query ledgerUsecases.ListTransactionsQuery) (*ledgerUsecases.ListTransactionsResult, error) {
	m.query = query
	return m.result, m.err
}

type mockRefundTransactionUC struct {
	result *ledgerUsecases.RefundTransactionResult
	err    error
	cmd    ledgerUsecases.RefundTransactionCommand
}

func (m *mockRefundTransactionUC) Execute(ctx context.Context, cmd ledgerUsecases.RefundTransactionCommand) (*ledgerUsecases.RefundTransactionResult, error) {
	m.cmd = cmd
	return m.result, m.err
}

type mockAuthorizeUC struct {
	result *entitlementUsecases.AuthorizeResult
	err    error
	cmd    entitlementUsecases.AuthorizeCommand
}

func (m *mockAuthorizeUC) Execute(ctx context.Context, cmd entitlementUsecases.AuthorizeCommand) (*entitlementUsecases.AuthorizeResult, error) {
	m.cmd = cmd
	return m.result, m.err
}

type mockRecordUsageUC struct {
	err    error
	cmd    entitlementUsecases.RecordUsageCommand
	called bool
}

func (m *mockRecordUsageUC) Execute(ctx context.Context, cmd entitlementUsecases.RecordUsageCommand) error {
	m.called = true
	m.cmd = cmd
	return m.err
}

type mockSubscriptionStore struct {
	sub *subscription.Subscription
	err error
}

func (m *mockSubscriptionStore) Current(ctx context.Context, sellerID string) (*subscription.Subscription, error) {
	return m.sub, m.err
}

func (m *mockSubscriptionStore) Provision(ctx context.Context, sellerID string) (*subscription.Subscription, error) {
	return m.sub, m.err
}

// =====================================================================
// Test helpers
// =====================================================================

func gallopSubscription(t *testing.T, sellerID string) *subscription.Subscription {
	t.Helper()

	gallop, err := apptestutil.NewTestCatalog(t).Get("gallop")
	require.NoError(t, err)
	sub, err := subscription.NewProvisioned(sellerID, apptestutil.BaseTime)
	require.NoError(t, err)
	require.NoError(t, sub.Activate(gallop, 30, apptestutil.BaseTime))
	return sub
}

func pendingPurchase(t *testing.T, sellerID, orderRef string) *ledger.Transaction {
	t.Helper()

	trot, err := apptestutil.NewTestCatalog(t).Get("trot")
	require.NoError(t, err)
	tx, err := ledger.NewPurchase("tx-1", sellerID, trot, orderRef, sellerID+":1", "v1", apptestutil.BaseTime)
	require.NoError(t, err)
	return tx
}
