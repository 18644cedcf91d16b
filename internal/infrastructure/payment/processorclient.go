// Package payment talks to the external payment processor over REST.
package payment

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sony/gobreaker"

	"github.com/tierworks/sellertiers/internal/application/payment/paymentgateway"
	"github.com/tierworks/sellertiers/internal/shared/config"
	"github.com/tierworks/sellertiers/internal/shared/logger"
)

type createOrderBody struct {
	Amount   int64             `json:"amount"`
	Currency string            `json:"currency"`
	Receipt  string            `json:"receipt"`
	Notes    map[string]string `json:"notes,omitempty"`
}

type orderResponse struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Status   string `json:"status"`
}

type paymentResponse struct {
	ID       string `json:"id"`
	OrderID  string `json:"order_id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Status   string `json:"status"`
}

type errorResponse struct {
	Error struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"error"`
}

// ProcessorClient calls the processor REST API behind a circuit breaker.
// Every attempt is bounded by the configured timeout.
type ProcessorClient struct {
	http    *resty.Client
	breaker *gobreaker.CircuitBreaker
	logger  logger.Interface
}

func NewProcessorClient(cfg config.ProcessorConfig, log logger.Interface) *ProcessorClient {
	log = log.With("component", "payment.processor")

	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout()).
		SetBasicAuth(cfg.KeyID, cfg.KeySecret).
		SetHeader("Content-Type", "application/json")

	threshold := cfg.BreakerThreshold
	if threshold == 0 {
		threshold = 5
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "payment-processor",
		MaxRequests: 1,
		Timeout:     time.Duration(cfg.BreakerCooldown) * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		// only outages trip the breaker; a 4xx is the caller's problem
		IsSuccessful: func(err error) bool {
			return err == nil || !errors.Is(err, paymentgateway.ErrUnavailable)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warnw("circuit breaker state changed", "name", name, "from", from.String(), "to", to.String())
		},
	})

	return &ProcessorClient{http: client, breaker: breaker, logger: log}
}

func (c *ProcessorClient) CreateOrder(ctx context.Context, req paymentgateway.CreateOrderRequest) (*paymentgateway.Order, error) {
	var out orderResponse
	err := c.do(ctx, func() (*resty.Response, error) {
		return c.http.R().
			SetContext(ctx).
			SetBody(createOrderBody{
				Amount:   req.Amount,
				Currency: req.Currency,
				Receipt:  req.Receipt,
				Notes:    req.Notes,
			}).
			SetResult(&out).
			SetError(&errorResponse{}).
			Post("/v1/orders")
	})
	if err != nil {
		return nil, err
	}
	if out.ID == "" {
		return nil, fmt.Errorf("%w: order response without id", paymentgateway.ErrUnavailable)
	}

	return &paymentgateway.Order{OrderRef: out.ID, Amount: out.Amount, Currency: out.Currency}, nil
}

func (c *ProcessorClient) FetchPayment(ctx context.Context, paymentRef string) (*paymentgateway.Payment, error) {
	var out paymentResponse
	err := c.do(ctx, func() (*resty.Response, error) {
		return c.http.R().
			SetContext(ctx).
			SetPathParam("id", paymentRef).
			SetResult(&out).
			SetError(&errorResponse{}).
			Get("/v1/payments/{id}")
	})
	if err != nil {
		return nil, err
	}

	return &paymentgateway.Payment{
		PaymentRef: out.ID,
		OrderRef:   out.OrderID,
		Amount:     out.Amount,
		Currency:   out.Currency,
		Status:     paymentgateway.PaymentStatus(out.Status),
	}, nil
}

// do runs call through the breaker and classifies the outcome.
func (c *ProcessorClient) do(ctx context.Context, call func() (*resty.Response, error)) error {
	_, err := c.breaker.Execute(func() (any, error) {
		resp, err := call()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", paymentgateway.ErrUnavailable, err)
		}
		return nil, classify(resp)
	})

	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%w: %v", paymentgateway.ErrUnavailable, err)
	}
	if err != nil && errors.Is(err, paymentgateway.ErrUnavailable) {
		c.logger.Warnw("processor call failed", "error", err)
	}
	return err
}

func classify(resp *resty.Response) error {
	status := resp.StatusCode()
	switch {
	case status >= 200 && status < 300:
		return nil
	case status == http.StatusNotFound:
		return paymentgateway.ErrPaymentNotFound
	case status == http.StatusTooManyRequests || status >= 500:
		return fmt.Errorf("%w: status %d", paymentgateway.ErrUnavailable, status)
	}

	detail := ""
	if e, ok := resp.Error().(*errorResponse); ok && e != nil {
		detail = e.Error.Code
	}
	return fmt.Errorf("%w: status %d %s", paymentgateway.ErrRejected, status, detail)
}
