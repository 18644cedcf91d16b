package common

import (
	"errors"
	"strings"

	"github.com/tierworks/sellertiers/internal/application/payment"
	"github.com/tierworks/sellertiers/internal/domain/catalog"
	"github.com/tierworks/sellertiers/internal/domain/ledger"
	"github.com/tierworks/sellertiers/internal/domain/subscription"
	apperrors "github.com/tierworks/sellertiers/internal/shared/errors"
)

// ToAppError maps domain and verification sentinels to client-facing
// errors. Anything unrecognised is returned as is and rendered as a generic
// internal error.
func ToAppError(err error) error {
	if err == nil || apperrors.IsAppError(err) {
		return err
	}

	switch {
	case errors.Is(err, catalog.ErrUnknownPackage):
		name := strings.TrimPrefix(err.Error(), catalog.ErrUnknownPackage.Error()+": ")
		return apperrors.NewUnknownPackageError(name)
	case errors.Is(err, payment.ErrSignatureMismatch),
		errors.Is(err, payment.ErrAmountMismatch),
		errors.Is(err, payment.ErrPriceMismatch),
		errors.Is(err, payment.ErrPaymentFailed):
		return apperrors.NewVerificationFailedError()
	case errors.Is(err, payment.ErrPaymentNotCaptured):
		return apperrors.NewPaymentNotCapturedError()
	case errors.Is(err, payment.ErrProcessorUnavailable):
		return apperrors.NewProcessorUnavailableError()
	case errors.Is(err, subscription.ErrActiveSubscriptionExists):
		return apperrors.NewActiveSubscriptionError()
	case errors.Is(err, subscription.ErrSubscriptionExpired):
		return apperrors.NewForbiddenError("subscription expired")
	case errors.Is(err, subscription.ErrSubscriptionNotFound):
		return apperrors.NewNotFoundError("subscription not found")
	case errors.Is(err, subscription.ErrConcurrentModification):
		// Only reached once the bounded retries are spent; render it like any
		// other internal failure.
		return apperrors.NewInternalError("Internal server error occurred")
	case errors.Is(err, ledger.ErrTransactionNotFound):
		return apperrors.NewNotFoundError("transaction not found")
	case errors.Is(err, ledger.ErrNotRefundable), errors.Is(err, ledger.ErrInvalidStatusTransition):
		return apperrors.NewConflictError("transaction cannot be changed in its current state")
	}
	return err
}
