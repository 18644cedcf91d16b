package handlers

import (
	"time"

	catalogUsecases "github.com/tierworks/sellertiers/internal/application/catalog/usecases"
	entitlementUsecases "github.com/tierworks/sellertiers/internal/application/entitlement/usecases"
	catalogvo "github.com/tierworks/sellertiers/internal/domain/catalog/valueobjects"
	"github.com/tierworks/sellertiers/internal/domain/ledger"
	"github.com/tierworks/sellertiers/internal/domain/subscription"
)

type PackageResponse struct {
	Price    int64                   `json:"price"`
	Currency string                  `json:"currency"`
	IsFree   bool                    `json:"is_free"`
	Features catalogvo.FeatureBundle `json:"features"`
}

type PriceTableResponse struct {
	Version  string                     `json:"version"`
	Starter  string                     `json:"starter"`
	Order    []string                   `json:"order"`
	Packages map[string]PackageResponse `json:"packages"`
}

type SubscriptionResponse struct {
	SellerID    string                  `json:"seller_id"`
	PackageName string                  `json:"package_name,omitempty"`
	Status      string                  `json:"status"`
	StartDate   *time.Time              `json:"start_date,omitempty"`
	EndDate     *time.Time              `json:"end_date,omitempty"`
	Features    catalogvo.FeatureBundle `json:"features"`
	UpdatedAt   time.Time               `json:"updated_at"`
}

type TransactionResponse struct {
	ID             string    `json:"id"`
	Kind           string    `json:"kind"`
	PackageName    string    `json:"package_name"`
	Amount         int64     `json:"amount"`
	Currency       string    `json:"currency"`
	Status         string    `json:"status"`
	OrderRef       string    `json:"order_ref,omitempty"`
	PaymentRef     string    `json:"payment_ref,omitempty"`
	CatalogVersion string    `json:"catalog_version,omitempty"`
	FailureReason  string    `json:"failure_reason,omitempty"`
	RefundOf       string    `json:"refund_of,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type OrderResponse struct {
	OrderRef      string                `json:"order_ref,omitempty"`
	Amount        int64                 `json:"amount"`
	Currency      string                `json:"currency"`
	AlreadyActive bool                  `json:"already_active"`
	Subscription  *SubscriptionResponse `json:"subscription,omitempty"`
}

type VerifyPaymentResponse struct {
	Subscription    *SubscriptionResponse `json:"subscription"`
	AlreadyVerified bool                  `json:"already_verified"`
}

type AuthorizeResponse struct {
	Allowed     bool   `json:"allowed"`
	Reason      string `json:"reason,omitempty"`
	PackageName string `json:"package_name,omitempty"`
	Limit       int    `json:"limit,omitempty"`
	Used        int64  `json:"used,omitempty"`
}

type RefundResponse struct {
	Original *TransactionResponse `json:"original"`
	Refund   *TransactionResponse `json:"refund"`
}

func toPriceTableResponse(t *catalogUsecases.PriceTable) *PriceTableResponse {
	resp := &PriceTableResponse{
		Version:  t.Version,
		Starter:  t.Starter,
		Order:    make([]string, 0, len(t.Packages)),
		Packages: make(map[string]PackageResponse, len(t.Packages)),
	}
	for _, p := range t.Packages {
		resp.Order = append(resp.Order, p.Name)
		resp.Packages[p.Name] = PackageResponse{
			Price:    p.Price.Amount(),
			Currency: p.Price.Currency(),
			IsFree:   p.IsFree,
			Features: p.Features,
		}
	}
	return resp
}

func toSubscriptionResponse(s *subscription.Subscription) *SubscriptionResponse {
	if s == nil {
		return nil
	}
	resp := &SubscriptionResponse{
		SellerID:    s.OwnerID(),
		PackageName: s.PackageName(),
		Status:      s.Status().String(),
		Features:    s.Features(),
		UpdatedAt:   s.UpdatedAt(),
	}
	if s.HasPackage() {
		start, end := s.StartDate(), s.EndDate()
		resp.StartDate = &start
		resp.EndDate = &end
	}
	return resp
}

func toTransactionResponse(t *ledger.Transaction) *TransactionResponse {
	if t == nil {
		return nil
	}
	return &TransactionResponse{
		ID:             t.ID(),
		Kind:           t.Kind().String(),
		PackageName:    t.PackageName(),
		Amount:         t.Amount().Amount(),
		Currency:       t.Amount().Currency(),
		Status:         t.Status().String(),
		OrderRef:       t.ProcessorOrderRef(),
		PaymentRef:     t.ProcessorPaymentRef(),
		CatalogVersion: t.CatalogVersion(),
		FailureReason:  t.FailureReason(),
		RefundOf:       t.RefundOf(),
		CreatedAt:      t.CreatedAt(),
		UpdatedAt:      t.UpdatedAt(),
	}
}

func toTransactionResponses(txs []*ledger.Transaction) []*TransactionResponse {
	out := make([]*TransactionResponse, 0, len(txs))
	for _, t := range txs {
		out = append(out, toTransactionResponse(t))
	}
	return out
}

func toAuthorizeResponse(r *entitlementUsecases.AuthorizeResult) *AuthorizeResponse {
	return &AuthorizeResponse{
		Allowed:     r.Allowed,
		Reason:      string(r.Reason),
		PackageName: r.PackageName,
		Limit:       r.Limit,
		Used:        r.Used,
	}
}
