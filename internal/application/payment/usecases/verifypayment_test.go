package usecases

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tierworks/sellertiers/internal/application/common"
	"github.com/tierworks/sellertiers/internal/application/payment"
	"github.com/tierworks/sellertiers/internal/application/payment/paymentgateway"
	subscriptionapp "github.com/tierworks/sellertiers/internal/application/subscription"
	"github.com/tierworks/sellertiers/internal/application/testutil"
	"github.com/tierworks/sellertiers/internal/domain/catalog"
	catalogvo "github.com/tierworks/sellertiers/internal/domain/catalog/valueobjects"
	"github.com/tierworks/sellertiers/internal/domain/ledger"
	vo "github.com/tierworks/sellertiers/internal/domain/ledger/valueobjects"
	"github.com/tierworks/sellertiers/internal/shared/biztime"
	apperrors "github.com/tierworks/sellertiers/internal/shared/errors"
	"github.com/tierworks/sellertiers/internal/shared/logger"
)

const testSecret = "verify-secret"

type verifyFixture struct {
	uc        *VerifyPaymentUseCase
	catalog   *catalog.Catalog
	subs      *testutil.MockSubscriptionRepository
	ledger    *testutil.MockTransactionRepository
	processor *testutil.MockProcessor
	sm        *subscriptionapp.StateMachine
	metrics   *testutil.MockMetrics
	clock     *testutil.Clock
}

func newVerifyFixture(t *testing.T) *verifyFixture {
	t.Helper()

	f := &verifyFixture{
		catalog:   testutil.NewTestCatalog(t),
		subs:      testutil.NewMockSubscriptionRepository(),
		ledger:    testutil.NewMockTransactionRepository(),
		processor: &testutil.MockProcessor{},
		metrics:   testutil.NewMockMetrics(),
		clock:     testutil.NewClock(testutil.BaseTime),
	}
	f.sm = subscriptionapp.NewStateMachine(f.subs, f.catalog, &testutil.MockTxRunner{}, logger.NewNop())
	f.sm.SetClock(f.clock.Now)

	f.uc = NewVerifyPaymentUseCase(f.catalog, f.ledger, f.sm, f.processor, testSecret, logger.NewNop())
	f.uc.SetClock(f.clock.Now)
	f.uc.SetMetrics(f.metrics)

	_, err := f.sm.Provision(context.Background(), "seller-1")
	require.NoError(t, err)
	return f
}

// order stores a pending purchase of pkgName for seller-1 under orderRef.
func (f *verifyFixture) order(t *testing.T, pkgName, orderRef string) {
	t.Helper()
	pkg, err := f.catalog.Get(pkgName)
	require.NoError(t, err)
	entry, err := ledger.NewPurchase("tx-"+orderRef, "seller-1", pkg, orderRef, "seller-1:1", f.catalog.Version(), f.clock.Now())
	require.NoError(t, err)
	require.NoError(t, f.ledger.Create(context.Background(), entry))
}

func (f *verifyFixture) pays(amount int64, currency string, status paymentgateway.PaymentStatus, orderRef string) {
	f.processor.FetchPaymentFunc = func(_ context.Context, paymentRef string) (*paymentgateway.Payment, error) {
		return &paymentgateway.Payment{
			PaymentRef: paymentRef,
			OrderRef:   orderRef,
			Amount:     amount,
			Currency:   currency,
			Status:     status,
		}, nil
	}
}

func command(orderRef, paymentRef, pkgName string) VerifyPaymentCommand {
	return VerifyPaymentCommand{
		SellerID:    "seller-1",
		OrderRef:    orderRef,
		PaymentRef:  paymentRef,
		Signature:   payment.Sign(testSecret, orderRef, paymentRef),
		PackageName: pkgName,
	}
}

func assertVerificationFailed(t *testing.T, err error) {
	t.Helper()
	appErr := apperrors.GetAppError(err)
	require.NotNil(t, appErr, "expected AppError, got %v", err)
	assert.Equal(t, apperrors.ErrorTypeVerificationFailed, appErr.Type)
}

func (f *verifyFixture) entry(t *testing.T, orderRef string) *ledger.Transaction {
	t.Helper()
	entry, err := f.ledger.GetByOrderRef(context.Background(), orderRef)
	require.NoError(t, err)
	return entry
}

func TestVerifyPayment_GallopScenario(t *testing.T) {
	f := newVerifyFixture(t)
	f.order(t, "gallop", "order_1")
	f.pays(499900, "INR", paymentgateway.PaymentStatusCaptured, "order_1")

	result, err := f.uc.Execute(context.Background(), command("order_1", "pay_1", "gallop"))
	require.NoError(t, err)

	sub := result.Subscription
	assert.False(t, result.AlreadyVerified)
	assert.Equal(t, "gallop", sub.PackageName())
	assert.Equal(t, testutil.BaseTime, sub.StartDate())
	assert.Equal(t, biztime.AddDays(testutil.BaseTime, 30), sub.EndDate())
	assert.Equal(t, 50, sub.Features().MaxListings)

	entry := f.entry(t, "order_1")
	assert.Equal(t, vo.StatusCompleted, entry.Status())
	assert.Equal(t, "pay_1", entry.ProcessorPaymentRef())
	assert.Equal(t, payment.Sign(testSecret, "order_1", "pay_1"), entry.Signature())
	assert.Equal(t, 50, entry.Features().MaxListings)
	assert.Equal(t, 1, f.metrics.Outcomes[common.OutcomeVerified])
}

func TestVerifyPayment_AmountMismatchScenario(t *testing.T) {
	f := newVerifyFixture(t)
	f.order(t, "gallop", "order_1")
	f.pays(399900, "INR", paymentgateway.PaymentStatusCaptured, "order_1")
	before, err := f.sm.Current(context.Background(), "seller-1")
	require.NoError(t, err)

	_, err = f.uc.Execute(context.Background(), command("order_1", "pay_1", "gallop"))
	assertVerificationFailed(t, err)

	entry := f.entry(t, "order_1")
	assert.Equal(t, vo.StatusFailed, entry.Status())
	assert.Contains(t, entry.FailureReason(), "399900")

	after, err := f.sm.Current(context.Background(), "seller-1")
	require.NoError(t, err)
	assert.Equal(t, before.Revision(), after.Revision())
	assert.False(t, after.HasPackage())
	assert.Equal(t, 1, f.metrics.Outcomes[common.OutcomeAmountMismatch])
}

func TestVerifyPayment_CurrencyMismatch(t *testing.T) {
	f := newVerifyFixture(t)
	f.order(t, "trot", "order_1")
	f.pays(199900, "USD", paymentgateway.PaymentStatusCaptured, "order_1")

	_, err := f.uc.Execute(context.Background(), command("order_1", "pay_1", "trot"))
	assertVerificationFailed(t, err)
	assert.Equal(t, vo.StatusFailed, f.entry(t, "order_1").Status())
}

func TestVerifyPayment_PackageSwapIsPriceMismatch(t *testing.T) {
	f := newVerifyFixture(t)
	f.order(t, "trot", "order_1")
	f.pays(199900, "INR", paymentgateway.PaymentStatusCaptured, "order_1")

	_, err := f.uc.Execute(context.Background(), command("order_1", "pay_1", "gallop"))
	assertVerificationFailed(t, err)

	assert.Equal(t, vo.StatusFailed, f.entry(t, "order_1").Status())
	assert.Equal(t, 1, f.metrics.Outcomes[common.OutcomePriceMismatch])
	current, err := f.sm.Current(context.Background(), "seller-1")
	require.NoError(t, err)
	assert.False(t, current.HasPackage())
}

func assertUnknownPackage(t *testing.T, err error) {
	t.Helper()
	appErr := apperrors.GetAppError(err)
	require.NotNil(t, appErr, "expected AppError, got %v", err)
	assert.Equal(t, apperrors.ErrorTypeUnknownPackage, appErr.Type)
}

func TestVerifyPayment_UnknownPackageNameLeavesOrderPending(t *testing.T) {
	f := newVerifyFixture(t)
	f.order(t, "gallop", "order_1")
	f.pays(499900, "INR", paymentgateway.PaymentStatusCaptured, "order_1")
	ctx := context.Background()

	_, err := f.uc.Execute(ctx, command("order_1", "pay_1", "Gallop"))
	assertUnknownPackage(t, err)
	assert.Equal(t, vo.StatusPending, f.entry(t, "order_1").Status())
	assert.Zero(t, f.processor.FetchPaymentCalls)
	assert.Equal(t, 1, f.metrics.Outcomes[common.OutcomeUnknownPackage])

	result, err := f.uc.Execute(ctx, command("order_1", "pay_1", "gallop"))
	require.NoError(t, err)
	assert.Equal(t, "gallop", result.Subscription.PackageName())
	assert.Equal(t, vo.StatusCompleted, f.entry(t, "order_1").Status())
}

func TestVerifyPayment_OrderedPackageRetiredLeavesOrderPending(t *testing.T) {
	f := newVerifyFixture(t)
	retired, err := catalog.NewPackage("canter", catalogvo.NewMoney(299900, "INR"), catalogvo.FeatureBundle{
		MaxListings:  25,
		MaxPhotos:    15,
		DurationDays: 30,
	})
	require.NoError(t, err)
	entry, err := ledger.NewPurchase("tx-order_1", "seller-1", retired, "order_1", "seller-1:1", "old", f.clock.Now())
	require.NoError(t, err)
	require.NoError(t, f.ledger.Create(context.Background(), entry))
	f.pays(299900, "INR", paymentgateway.PaymentStatusCaptured, "order_1")

	_, err = f.uc.Execute(context.Background(), command("order_1", "pay_1", "gallop"))
	assertUnknownPackage(t, err)
	assert.Equal(t, vo.StatusPending, f.entry(t, "order_1").Status())
	assert.Zero(t, f.processor.FetchPaymentCalls)
}

func TestVerifyPayment_SignatureSingleByteFlips(t *testing.T) {
	f := newVerifyFixture(t)
	f.order(t, "gallop", "order_1")
	f.pays(499900, "INR", paymentgateway.PaymentStatusCaptured, "order_1")
	valid := payment.Sign(testSecret, "order_1", "pay_1")

	for i := 0; i < len(valid); i++ {
		tampered := []byte(valid)
		tampered[i] ^= 0x01
		cmd := command("order_1", "pay_1", "gallop")
		cmd.Signature = string(tampered)

		_, err := f.uc.Execute(context.Background(), cmd)
		assertVerificationFailed(t, err)
	}

	assert.Zero(t, f.processor.FetchPaymentCalls)
	assert.Equal(t, vo.StatusPending, f.entry(t, "order_1").Status(), "signature failures leave the order untouched")
}

func TestVerifyPayment_Idempotent(t *testing.T) {
	f := newVerifyFixture(t)
	f.order(t, "gallop", "order_1")
	f.pays(499900, "INR", paymentgateway.PaymentStatusCaptured, "order_1")
	ctx := context.Background()

	first, err := f.uc.Execute(ctx, command("order_1", "pay_1", "gallop"))
	require.NoError(t, err)

	f.clock.Advance(time.Hour)
	second, err := f.uc.Execute(ctx, command("order_1", "pay_1", "gallop"))
	require.NoError(t, err)

	assert.True(t, second.AlreadyVerified)
	assert.Equal(t, first.Subscription.Revision(), second.Subscription.Revision())
	assert.Equal(t, first.Subscription.EndDate(), second.Subscription.EndDate())
	assert.Len(t, f.ledger.All("seller-1"), 1)
	assert.Equal(t, 1, f.processor.FetchPaymentCalls)
}

func TestVerifyPayment_CompletedWithOtherPaymentRef(t *testing.T) {
	f := newVerifyFixture(t)
	f.order(t, "gallop", "order_1")
	f.pays(499900, "INR", paymentgateway.PaymentStatusCaptured, "order_1")
	ctx := context.Background()

	_, err := f.uc.Execute(ctx, command("order_1", "pay_1", "gallop"))
	require.NoError(t, err)

	_, err = f.uc.Execute(ctx, command("order_1", "pay_2", "gallop"))
	assertVerificationFailed(t, err)
}

func TestVerifyPayment_FailedOrderStaysFailed(t *testing.T) {
	f := newVerifyFixture(t)
	f.order(t, "gallop", "order_1")
	f.pays(399900, "INR", paymentgateway.PaymentStatusCaptured, "order_1")
	ctx := context.Background()

	_, err := f.uc.Execute(ctx, command("order_1", "pay_1", "gallop"))
	assertVerificationFailed(t, err)

	f.pays(499900, "INR", paymentgateway.PaymentStatusCaptured, "order_1")
	_, err = f.uc.Execute(ctx, command("order_1", "pay_1", "gallop"))
	assertVerificationFailed(t, err)
	assert.Equal(t, vo.StatusFailed, f.entry(t, "order_1").Status())
}

func TestVerifyPayment_ProcessorUnavailableLeavesPending(t *testing.T) {
	f := newVerifyFixture(t)
	f.order(t, "gallop", "order_1")
	f.processor.FetchPaymentFunc = func(context.Context, string) (*paymentgateway.Payment, error) {
		return nil, fmt.Errorf("timeout: %w", paymentgateway.ErrUnavailable)
	}

	_, err := f.uc.Execute(context.Background(), command("order_1", "pay_1", "gallop"))
	appErr := apperrors.GetAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, apperrors.ErrorTypeProcessorUnavailable, appErr.Type)
	assert.Equal(t, vo.StatusPending, f.entry(t, "order_1").Status())
}

func TestVerifyPayment_NotCapturedLeavesPending(t *testing.T) {
	f := newVerifyFixture(t)
	f.order(t, "gallop", "order_1")
	f.pays(499900, "INR", paymentgateway.PaymentStatusAuthorized, "order_1")

	_, err := f.uc.Execute(context.Background(), command("order_1", "pay_1", "gallop"))
	appErr := apperrors.GetAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, apperrors.ErrorTypePaymentNotCaptured, appErr.Type)
	assert.Equal(t, vo.StatusPending, f.entry(t, "order_1").Status())

	f.pays(499900, "INR", paymentgateway.PaymentStatusCaptured, "order_1")
	result, err := f.uc.Execute(context.Background(), command("order_1", "pay_1", "gallop"))
	require.NoError(t, err)
	assert.Equal(t, "gallop", result.Subscription.PackageName())
}

func TestVerifyPayment_ProcessorFailedMarksFailed(t *testing.T) {
	f := newVerifyFixture(t)
	f.order(t, "gallop", "order_1")
	f.pays(499900, "INR", paymentgateway.PaymentStatusFailed, "order_1")

	_, err := f.uc.Execute(context.Background(), command("order_1", "pay_1", "gallop"))
	assertVerificationFailed(t, err)
	assert.Equal(t, vo.StatusFailed, f.entry(t, "order_1").Status())
}

func TestVerifyPayment_PaymentForAnotherOrder(t *testing.T) {
	f := newVerifyFixture(t)
	f.order(t, "gallop", "order_1")
	f.pays(499900, "INR", paymentgateway.PaymentStatusCaptured, "order_other")

	_, err := f.uc.Execute(context.Background(), command("order_1", "pay_1", "gallop"))
	assertVerificationFailed(t, err)
	assert.Equal(t, vo.StatusPending, f.entry(t, "order_1").Status())
}

func TestVerifyPayment_UnknownOrderAndForeignSeller(t *testing.T) {
	f := newVerifyFixture(t)
	f.order(t, "gallop", "order_1")
	f.pays(499900, "INR", paymentgateway.PaymentStatusCaptured, "order_1")

	_, err := f.uc.Execute(context.Background(), command("order_missing", "pay_1", "gallop"))
	assertVerificationFailed(t, err)

	cmd := command("order_1", "pay_1", "gallop")
	cmd.SellerID = "seller-2"
	_, err = f.uc.Execute(context.Background(), cmd)
	assertVerificationFailed(t, err)

	assert.Zero(t, f.processor.FetchPaymentCalls)
	assert.Equal(t, vo.StatusPending, f.entry(t, "order_1").Status())
}

func TestVerifyPayment_Validation(t *testing.T) {
	f := newVerifyFixture(t)

	cmd := command("order_1", "pay_1", "gallop")
	cmd.PackageName = ""
	_, err := f.uc.Execute(context.Background(), cmd)
	appErr := apperrors.GetAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, apperrors.ErrorTypeValidation, appErr.Type)
}
