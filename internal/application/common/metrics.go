package common

// Metrics receives business events from the use cases. Implementations must
// be safe for concurrent use.
type Metrics interface {
	OrderCreated(packageName string, free bool)
	VerificationOutcome(outcome string)
	SubscriptionDowngraded(fromPackage string)
	GateDecision(action string, allowed bool, reason string)
	RefundRecorded(packageName string)
}

// Verification outcomes reported through Metrics.VerificationOutcome.
const (
	OutcomeVerified             = "verified"
	OutcomeAlreadyVerified      = "already_verified"
	OutcomeSignatureMismatch    = "signature_mismatch"
	OutcomeAmountMismatch       = "amount_mismatch"
	OutcomePriceMismatch        = "price_mismatch"
	OutcomeUnknownPackage       = "unknown_package"
	OutcomePaymentFailed        = "payment_failed"
	OutcomeNotCaptured          = "not_captured"
	OutcomeProcessorUnavailable = "processor_unavailable"
)

type NopMetrics struct{}

func (NopMetrics) OrderCreated(string, bool)         {}
func (NopMetrics) VerificationOutcome(string)        {}
func (NopMetrics) SubscriptionDowngraded(string)     {}
func (NopMetrics) GateDecision(string, bool, string) {}
func (NopMetrics) RefundRecorded(string)             {}
