package usecases

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tierworks/sellertiers/internal/application/common"
	"github.com/tierworks/sellertiers/internal/application/payment"
	"github.com/tierworks/sellertiers/internal/application/payment/paymentgateway"
	subscriptionapp "github.com/tierworks/sellertiers/internal/application/subscription"
	"github.com/tierworks/sellertiers/internal/domain/catalog"
	"github.com/tierworks/sellertiers/internal/domain/ledger"
	vo "github.com/tierworks/sellertiers/internal/domain/ledger/valueobjects"
	"github.com/tierworks/sellertiers/internal/domain/subscription"
	"github.com/tierworks/sellertiers/internal/shared/biztime"
	apperrors "github.com/tierworks/sellertiers/internal/shared/errors"
	"github.com/tierworks/sellertiers/internal/shared/logger"
)

type VerifyPaymentCommand struct {
	SellerID    string
	OrderRef    string
	PaymentRef  string
	Signature   string
	PackageName string
}

type VerifyPaymentResult struct {
	Subscription    *subscription.Subscription
	AlreadyVerified bool
}

var errAlreadySettled = errors.New("ledger entry already settled")

// VerifyPaymentUseCase turns a signed checkout result into an active
// subscription. The price is always re-read from the catalog; nothing the
// client sends is trusted except as a lookup key.
type VerifyPaymentUseCase struct {
	catalog         *catalog.Catalog
	ledgerRepo      ledger.Repository
	stateMachine    *subscriptionapp.StateMachine
	processor       paymentgateway.Processor
	signatureSecret string
	metrics         common.Metrics
	clock           biztime.Clock
	logger          logger.Interface
}

func NewVerifyPaymentUseCase(
	catalog *catalog.Catalog,
	ledgerRepo ledger.Repository,
	stateMachine *subscriptionapp.StateMachine,
	processor paymentgateway.Processor,
	signatureSecret string,
	logger logger.Interface,
) *VerifyPaymentUseCase {
	return &VerifyPaymentUseCase{
		catalog:         catalog,
		ledgerRepo:      ledgerRepo,
		stateMachine:    stateMachine,
		processor:       processor,
		signatureSecret: signatureSecret,
		metrics:         common.NopMetrics{},
		clock:           biztime.NowUTC,
		logger:          logger,
	}
}

func (uc *VerifyPaymentUseCase) SetMetrics(m common.Metrics) {
	uc.metrics = m
}

func (uc *VerifyPaymentUseCase) SetClock(clock biztime.Clock) {
	uc.clock = clock
}

func (uc *VerifyPaymentUseCase) Execute(ctx context.Context, cmd VerifyPaymentCommand) (*VerifyPaymentResult, error) {
	if err := validateVerifyCommand(cmd); err != nil {
		return nil, err
	}

	if !payment.VerifySignature(uc.signatureSecret, cmd.OrderRef, cmd.PaymentRef, cmd.Signature) {
		uc.logger.Warnw("payment signature mismatch",
			"seller_id", cmd.SellerID,
			"order_ref", cmd.OrderRef,
			"payment_ref", cmd.PaymentRef,
		)
		return nil, uc.reject(payment.ErrSignatureMismatch, common.OutcomeSignatureMismatch)
	}

	// An unknown name is bad input and never settles the order; the seller
	// may have paid already and must be able to retry with the right name.
	requested, err := uc.catalog.Get(cmd.PackageName)
	if err != nil {
		return nil, uc.reject(err, common.OutcomeUnknownPackage)
	}

	entry, err := uc.ledgerRepo.GetByOrderRef(ctx, cmd.OrderRef)
	if err != nil {
		if errors.Is(err, ledger.ErrTransactionNotFound) {
			uc.logger.Warnw("verification for unknown order", "seller_id", cmd.SellerID, "order_ref", cmd.OrderRef)
			return nil, uc.reject(payment.ErrSignatureMismatch, common.OutcomeSignatureMismatch)
		}
		return nil, fmt.Errorf("failed to load order: %w", err)
	}
	if entry.OwnerID() != cmd.SellerID {
		uc.logger.Warnw("verification for another seller's order",
			"seller_id", cmd.SellerID,
			"order_ref", cmd.OrderRef,
		)
		return nil, uc.reject(payment.ErrSignatureMismatch, common.OutcomeSignatureMismatch)
	}

	if entry.Status() != vo.StatusPending {
		return uc.settled(ctx, cmd, entry)
	}

	pkg, err := uc.catalog.Get(entry.PackageName())
	if err != nil {
		uc.logger.Errorw("ordered package no longer in catalog, order left pending",
			"order_ref", cmd.OrderRef,
			"package", entry.PackageName(),
			"catalog_version", uc.catalog.Version(),
		)
		return nil, uc.reject(err, common.OutcomeUnknownPackage)
	}

	paid, err := uc.processor.FetchPayment(ctx, cmd.PaymentRef)
	if err != nil {
		if errors.Is(err, paymentgateway.ErrUnavailable) || errors.Is(err, context.DeadlineExceeded) {
			uc.logger.Warnw("processor unavailable during verification, order left pending",
				"order_ref", cmd.OrderRef,
				"error", err,
			)
			return nil, uc.reject(payment.ErrProcessorUnavailable, common.OutcomeProcessorUnavailable)
		}
		uc.logger.Warnw("processor payment lookup failed",
			"order_ref", cmd.OrderRef,
			"payment_ref", cmd.PaymentRef,
			"error", err,
		)
		return nil, uc.reject(payment.ErrSignatureMismatch, common.OutcomeSignatureMismatch)
	}

	if paid.OrderRef != cmd.OrderRef {
		uc.logger.Warnw("payment belongs to a different order",
			"order_ref", cmd.OrderRef,
			"payment_ref", cmd.PaymentRef,
			"payment_order_ref", paid.OrderRef,
		)
		return nil, uc.reject(payment.ErrSignatureMismatch, common.OutcomeSignatureMismatch)
	}

	if requested.Name() != pkg.Name() {
		reason := fmt.Sprintf("package %q does not match ordered package %q", requested.Name(), pkg.Name())
		return nil, uc.markFailed(ctx, entry, cmd.PaymentRef, reason, payment.ErrPriceMismatch, common.OutcomePriceMismatch)
	}

	price := pkg.Price()
	if paid.Amount != price.Amount() || !strings.EqualFold(paid.Currency, price.Currency()) {
		reason := fmt.Sprintf("paid %d %s, catalog price %s", paid.Amount, paid.Currency, price.String())
		return nil, uc.markFailed(ctx, entry, cmd.PaymentRef, reason, payment.ErrAmountMismatch, common.OutcomeAmountMismatch)
	}

	switch paid.Status {
	case paymentgateway.PaymentStatusCaptured:
	case paymentgateway.PaymentStatusFailed:
		return nil, uc.markFailed(ctx, entry, cmd.PaymentRef, "payment failed at processor", payment.ErrPaymentFailed, common.OutcomePaymentFailed)
	default:
		uc.logger.Infow("payment not captured yet, order left pending",
			"order_ref", cmd.OrderRef,
			"payment_ref", cmd.PaymentRef,
			"processor_status", paid.Status,
		)
		return nil, uc.reject(payment.ErrPaymentNotCaptured, common.OutcomeNotCaptured)
	}

	return uc.complete(ctx, cmd, pkg)
}

// complete marks the entry paid and activates the package in one database
// transaction. The entry is re-read inside the transaction so a retried
// attempt never works on a stale copy.
func (uc *VerifyPaymentUseCase) complete(ctx context.Context, cmd VerifyPaymentCommand, pkg *catalog.Package) (*VerifyPaymentResult, error) {
	sub, err := uc.stateMachine.Activate(ctx, cmd.SellerID, pkg, pkg.DurationDays(),
		subscriptionapp.WithRecord(func(txCtx context.Context, activated *subscription.Subscription) error {
			entry, err := uc.ledgerRepo.GetByOrderRef(txCtx, cmd.OrderRef)
			if err != nil {
				return err
			}
			if entry.Status() != vo.StatusPending {
				return errAlreadySettled
			}
			if err := entry.Complete(cmd.PaymentRef, cmd.Signature, activated.Features(), activated.UpdatedAt()); err != nil {
				return err
			}
			return uc.ledgerRepo.UpdateStatus(txCtx, entry, vo.StatusPending)
		}),
	)
	if err != nil {
		if errors.Is(err, errAlreadySettled) || errors.Is(err, ledger.ErrInvalidStatusTransition) {
			entry, getErr := uc.ledgerRepo.GetByOrderRef(ctx, cmd.OrderRef)
			if getErr != nil {
				return nil, fmt.Errorf("failed to reload order: %w", getErr)
			}
			return uc.settled(ctx, cmd, entry)
		}
		uc.logger.Errorw("failed to activate verified payment",
			"seller_id", cmd.SellerID,
			"order_ref", cmd.OrderRef,
			"error", err,
		)
		return nil, common.ToAppError(err)
	}

	uc.metrics.VerificationOutcome(common.OutcomeVerified)
	uc.logger.Infow("payment verified, subscription activated",
		"seller_id", cmd.SellerID,
		"order_ref", cmd.OrderRef,
		"payment_ref", cmd.PaymentRef,
		"package", pkg.Name(),
		"valid_until", sub.EndDate(),
	)
	return &VerifyPaymentResult{Subscription: sub}, nil
}

// settled answers for an entry that is no longer pending. Only a repeat of
// the verification that completed it succeeds.
func (uc *VerifyPaymentUseCase) settled(ctx context.Context, cmd VerifyPaymentCommand, entry *ledger.Transaction) (*VerifyPaymentResult, error) {
	if entry.Status() == vo.StatusCompleted && entry.ProcessorPaymentRef() == cmd.PaymentRef {
		sub, err := uc.stateMachine.Current(ctx, cmd.SellerID)
		if err != nil {
			return nil, common.ToAppError(err)
		}
		uc.metrics.VerificationOutcome(common.OutcomeAlreadyVerified)
		uc.logger.Infow("payment already verified", "order_ref", cmd.OrderRef, "payment_ref", cmd.PaymentRef)
		return &VerifyPaymentResult{Subscription: sub, AlreadyVerified: true}, nil
	}

	uc.logger.Warnw("verification for settled order",
		"order_ref", cmd.OrderRef,
		"payment_ref", cmd.PaymentRef,
		"status", entry.Status(),
	)
	return nil, uc.reject(payment.ErrSignatureMismatch, common.OutcomeSignatureMismatch)
}

func (uc *VerifyPaymentUseCase) markFailed(
	ctx context.Context,
	entry *ledger.Transaction,
	paymentRef, reason string,
	cause error,
	outcome string,
) error {
	uc.logger.Warnw("payment verification failed, marking order failed",
		"order_ref", entry.ProcessorOrderRef(),
		"payment_ref", paymentRef,
		"reason", reason,
	)

	if err := entry.Fail(paymentRef, reason, uc.clock()); err != nil {
		return err
	}
	if err := uc.ledgerRepo.UpdateStatus(ctx, entry, vo.StatusPending); err != nil {
		if !errors.Is(err, ledger.ErrInvalidStatusTransition) {
			return fmt.Errorf("failed to mark order failed: %w", err)
		}
		uc.logger.Infow("order settled concurrently, failure not recorded", "order_ref", entry.ProcessorOrderRef())
	}
	return uc.reject(cause, outcome)
}

func (uc *VerifyPaymentUseCase) reject(cause error, outcome string) error {
	uc.metrics.VerificationOutcome(outcome)
	return common.ToAppError(cause)
}

func validateVerifyCommand(cmd VerifyPaymentCommand) error {
	switch {
	case strings.TrimSpace(cmd.SellerID) == "":
		return apperrors.NewValidationError("seller id is required")
	case strings.TrimSpace(cmd.OrderRef) == "":
		return apperrors.NewValidationError("order_ref is required")
	case strings.TrimSpace(cmd.PaymentRef) == "":
		return apperrors.NewValidationError("payment_ref is required")
	case strings.TrimSpace(cmd.Signature) == "":
		return apperrors.NewValidationError("signature is required")
	case strings.TrimSpace(cmd.PackageName) == "":
		return apperrors.NewValidationError("package_name is required")
	}
	return nil
}
