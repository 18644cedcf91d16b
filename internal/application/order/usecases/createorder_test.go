package usecases

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tierworks/sellertiers/internal/application/payment/paymentgateway"
	subscriptionapp "github.com/tierworks/sellertiers/internal/application/subscription"
	"github.com/tierworks/sellertiers/internal/application/testutil"
	ledgervo "github.com/tierworks/sellertiers/internal/domain/ledger/valueobjects"
	"github.com/tierworks/sellertiers/internal/shared/biztime"
	apperrors "github.com/tierworks/sellertiers/internal/shared/errors"
	"github.com/tierworks/sellertiers/internal/shared/logger"
)

type orderFixture struct {
	uc        *CreateOrderUseCase
	subs      *testutil.MockSubscriptionRepository
	ledger    *testutil.MockTransactionRepository
	processor *testutil.MockProcessor
	sm        *subscriptionapp.StateMachine
	clock     *testutil.Clock
}

func newOrderFixture(t *testing.T) *orderFixture {
	t.Helper()

	cat := testutil.NewTestCatalog(t)
	f := &orderFixture{
		subs:      testutil.NewMockSubscriptionRepository(),
		ledger:    testutil.NewMockTransactionRepository(),
		processor: &testutil.MockProcessor{},
		clock:     testutil.NewClock(testutil.BaseTime),
	}
	f.sm = subscriptionapp.NewStateMachine(f.subs, cat, &testutil.MockTxRunner{}, logger.NewNop())
	f.sm.SetClock(f.clock.Now)

	f.uc = NewCreateOrderUseCase(cat, f.ledger, f.sm, f.processor, logger.NewNop())
	f.uc.SetClock(f.clock.Now)
	return f
}

func TestCreateOrder_PaidUsesCatalogPrice(t *testing.T) {
	f := newOrderFixture(t)
	f.processor.CreateOrderFunc = func(_ context.Context, req paymentgateway.CreateOrderRequest) (*paymentgateway.Order, error) {
		return &paymentgateway.Order{OrderRef: "order_gallop_1", Amount: req.Amount, Currency: req.Currency}, nil
	}

	result, err := f.uc.Execute(context.Background(), CreateOrderCommand{SellerID: "seller-1", PackageName: "gallop"})
	require.NoError(t, err)

	assert.Equal(t, "order_gallop_1", result.OrderRef)
	assert.Equal(t, int64(499900), result.Amount)
	assert.Equal(t, "INR", result.Currency)
	assert.False(t, result.AlreadyActive)

	require.Len(t, f.processor.CreateOrderRequests, 1)
	req := f.processor.CreateOrderRequests[0]
	assert.Equal(t, int64(499900), req.Amount)
	assert.Equal(t, "INR", req.Currency)
	assert.True(t, strings.HasPrefix(req.Receipt, "seller-1:"))
	assert.Equal(t, fmt.Sprintf("seller-1:%d", testutil.BaseTime.UnixNano()), req.Receipt)

	entry, err := f.ledger.GetByOrderRef(context.Background(), "order_gallop_1")
	require.NoError(t, err)
	assert.Equal(t, ledgervo.KindPurchase, entry.Kind())
	assert.Equal(t, ledgervo.StatusPending, entry.Status())
	assert.Equal(t, int64(499900), entry.Amount().Amount())
	assert.Equal(t, "v1", entry.CatalogVersion())
}

func TestCreateOrder_UnknownPackage(t *testing.T) {
	f := newOrderFixture(t)

	_, err := f.uc.Execute(context.Background(), CreateOrderCommand{SellerID: "seller-1", PackageName: "platinum"})
	appErr := apperrors.GetAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, apperrors.ErrorTypeUnknownPackage, appErr.Type)
	assert.Zero(t, f.processor.TotalCalls())
}

func TestCreateOrder_Validation(t *testing.T) {
	f := newOrderFixture(t)

	_, err := f.uc.Execute(context.Background(), CreateOrderCommand{PackageName: "gallop"})
	assert.Equal(t, apperrors.ErrorTypeValidation, apperrors.GetAppError(err).Type)

	_, err = f.uc.Execute(context.Background(), CreateOrderCommand{SellerID: "seller-1"})
	assert.Equal(t, apperrors.ErrorTypeValidation, apperrors.GetAppError(err).Type)
}

func TestCreateOrder_FreeNeverCallsProcessor(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()

	result, err := f.uc.Execute(ctx, CreateOrderCommand{SellerID: "seller-1", PackageName: "starter"})
	require.NoError(t, err)

	assert.True(t, result.AlreadyActive)
	assert.Empty(t, result.OrderRef)
	assert.Zero(t, result.Amount)
	require.NotNil(t, result.Subscription)
	assert.Equal(t, "starter", result.Subscription.PackageName())
	assert.Equal(t, biztime.AddDays(testutil.BaseTime, 3650), result.Subscription.EndDate())
	assert.Zero(t, f.processor.TotalCalls())

	entries := f.ledger.All("seller-1")
	require.Len(t, entries, 1)
	assert.Equal(t, ledgervo.KindFreeActivation, entries[0].Kind())
	assert.Equal(t, ledgervo.StatusCompleted, entries[0].Status())
	assert.True(t, entries[0].Amount().IsZero())
	assert.Equal(t, 3, entries[0].Features().MaxListings)
}

func TestCreateOrder_FreeIsIdempotent(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()

	first, err := f.uc.Execute(ctx, CreateOrderCommand{SellerID: "seller-1", PackageName: "starter"})
	require.NoError(t, err)

	second, err := f.uc.Execute(ctx, CreateOrderCommand{SellerID: "seller-1", PackageName: "starter"})
	require.NoError(t, err)

	assert.Equal(t, first.Subscription.Revision(), second.Subscription.Revision())
	assert.Equal(t, first.Subscription.EndDate(), second.Subscription.EndDate())
	assert.Len(t, f.ledger.All("seller-1"), 1)
}

func TestCreateOrder_FreeRejectedWhilePaidActive(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()
	gallop, err := testutil.NewTestCatalog(t).Get("gallop")
	require.NoError(t, err)
	_, err = f.sm.Activate(ctx, "seller-1", gallop, 30)
	require.NoError(t, err)

	_, err = f.uc.Execute(ctx, CreateOrderCommand{SellerID: "seller-1", PackageName: "starter"})
	appErr := apperrors.GetAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, apperrors.ErrorTypeActiveSubscription, appErr.Type)

	current, err := f.sm.Current(ctx, "seller-1")
	require.NoError(t, err)
	assert.Equal(t, "gallop", current.PackageName())
	assert.Empty(t, f.ledger.All("seller-1"))
}

func TestCreateOrder_ProcessorUnavailable(t *testing.T) {
	f := newOrderFixture(t)
	f.processor.CreateOrderFunc = func(context.Context, paymentgateway.CreateOrderRequest) (*paymentgateway.Order, error) {
		return nil, fmt.Errorf("timeout: %w", paymentgateway.ErrUnavailable)
	}

	_, err := f.uc.Execute(context.Background(), CreateOrderCommand{SellerID: "seller-1", PackageName: "trot"})
	appErr := apperrors.GetAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, apperrors.ErrorTypeProcessorUnavailable, appErr.Type)
	assert.Empty(t, f.ledger.All("seller-1"))
}

func TestCreateOrder_ProcessorAmountDisagrees(t *testing.T) {
	f := newOrderFixture(t)
	f.processor.CreateOrderFunc = func(_ context.Context, req paymentgateway.CreateOrderRequest) (*paymentgateway.Order, error) {
		return &paymentgateway.Order{OrderRef: "order_x", Amount: req.Amount - 1, Currency: req.Currency}, nil
	}

	_, err := f.uc.Execute(context.Background(), CreateOrderCommand{SellerID: "seller-1", PackageName: "trot"})
	appErr := apperrors.GetAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, apperrors.ErrorTypeInternal, appErr.Type)
	assert.Empty(t, f.ledger.All("seller-1"))
}

func TestCreateOrder_LedgerFailure(t *testing.T) {
	f := newOrderFixture(t)
	f.ledger.CreateError = errors.New("db down")

	_, err := f.uc.Execute(context.Background(), CreateOrderCommand{SellerID: "seller-1", PackageName: "trot"})
	require.Error(t, err)
	assert.False(t, apperrors.IsAppError(err))
}
