package payment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/tierworks/sellertiers/internal/application/payment/paymentgateway"
	"github.com/tierworks/sellertiers/internal/shared/logger"
)

// RetryingProcessor retries calls that failed with ErrUnavailable using
// exponential backoff. Any other error is returned at once.
type RetryingProcessor struct {
	next            paymentgateway.Processor
	maxRetries      uint64
	initialInterval time.Duration
	logger          logger.Interface
}

func NewRetryingProcessor(next paymentgateway.Processor, maxRetries int, initialInterval time.Duration, log logger.Interface) *RetryingProcessor {
	if maxRetries < 0 {
		maxRetries = 0
	}
	return &RetryingProcessor{
		next:            next,
		maxRetries:      uint64(maxRetries),
		initialInterval: initialInterval,
		logger:          log.With("component", "payment.retry"),
	}
}

// CreateOrder may leave an orphan unpaid order at the processor when a
// response is lost; nothing references it.
func (p *RetryingProcessor) CreateOrder(ctx context.Context, req paymentgateway.CreateOrderRequest) (*paymentgateway.Order, error) {
	var out *paymentgateway.Order
	err := p.retry(ctx, "create_order", func() error {
		var err error
		out, err = p.next.CreateOrder(ctx, req)
		return err
	})
	return out, err
}

func (p *RetryingProcessor) FetchPayment(ctx context.Context, paymentRef string) (*paymentgateway.Payment, error) {
	var out *paymentgateway.Payment
	err := p.retry(ctx, "fetch_payment", func() error {
		var err error
		out, err = p.next.FetchPayment(ctx, paymentRef)
		return err
	})
	return out, err
}

func (p *RetryingProcessor) retry(ctx context.Context, op string, call func() error) error {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = p.initialInterval
	bo.MaxInterval = 2 * time.Second
	bo.MaxElapsedTime = 10 * time.Second

	attempt := 0
	operation := func() error {
		attempt++
		err := call()
		if err == nil {
			return nil
		}
		if !errors.Is(err, paymentgateway.ErrUnavailable) {
			return backoff.Permanent(err)
		}
		p.logger.Warnw("retryable processor error", "op", op, "attempt", attempt, "error", err)
		return err
	}

	err := backoff.Retry(operation, backoff.WithContext(backoff.WithMaxRetries(bo, p.maxRetries), ctx))
	if err != nil && ctx.Err() != nil && !errors.Is(err, paymentgateway.ErrUnavailable) {
		return fmt.Errorf("%w: %v", paymentgateway.ErrUnavailable, err)
	}
	return err
}
