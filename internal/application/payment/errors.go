// Package payment holds the verification outcomes shared by the payment use
// cases and the error mapping.
package payment

import "errors"

var (
	ErrSignatureMismatch    = errors.New("payment signature mismatch")
	ErrAmountMismatch       = errors.New("paid amount does not match package price")
	ErrPriceMismatch        = errors.New("package does not match the ordered package")
	ErrPaymentNotCaptured   = errors.New("payment not captured yet")
	ErrPaymentFailed        = errors.New("payment failed at processor")
	ErrProcessorUnavailable = errors.New("payment processor unavailable")
)
