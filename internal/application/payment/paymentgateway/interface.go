// Package paymentgateway describes the external payment processor as seen
// by the order and verification use cases.
package paymentgateway

import (
	"context"
	"errors"
)

var (
	// ErrUnavailable covers timeouts, 5xx answers and an open breaker. The
	// operation may be retried later.
	ErrUnavailable = errors.New("payment processor unavailable")
	// ErrPaymentNotFound is returned when the processor has no such payment.
	ErrPaymentNotFound = errors.New("payment not found at processor")
	// ErrRejected is a non-retryable 4xx answer.
	ErrRejected = errors.New("payment processor rejected the request")
)

type PaymentStatus string

const (
	PaymentStatusCreated    PaymentStatus = "created"
	PaymentStatusAuthorized PaymentStatus = "authorized"
	PaymentStatusCaptured   PaymentStatus = "captured"
	PaymentStatusFailed     PaymentStatus = "failed"
	PaymentStatusRefunded   PaymentStatus = "refunded"
)

// Processor is the order-creation and payment-lookup API of the processor.
// Amounts are in minor currency units.
type Processor interface {
	CreateOrder(ctx context.Context, req CreateOrderRequest) (*Order, error)
	FetchPayment(ctx context.Context, paymentRef string) (*Payment, error)
}

type CreateOrderRequest struct {
	Amount   int64
	Currency string
	// Receipt is an audit label, not an idempotency key.
	Receipt string
	Notes   map[string]string
}

type Order struct {
	OrderRef string
	Amount   int64
	Currency string
}

type Payment struct {
	PaymentRef string
	OrderRef   string
	Amount     int64
	Currency   string
	Status     PaymentStatus
}
