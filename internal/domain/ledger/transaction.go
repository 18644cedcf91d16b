// Package ledger records every purchase, free activation and refund. Entries
// are append-only; only their status moves, and only forward.
package ledger

import (
	"fmt"
	"strings"
	"time"

	"github.com/tierworks/sellertiers/internal/domain/catalog"
	catalogvo "github.com/tierworks/sellertiers/internal/domain/catalog/valueobjects"
	vo "github.com/tierworks/sellertiers/internal/domain/ledger/valueobjects"
)

type Transaction struct {
	id                  string
	ownerID             string
	kind                vo.TransactionKind
	packageName         string
	amount              catalogvo.Money
	status              vo.TransactionStatus
	processorOrderRef   string
	processorPaymentRef string
	signature           string
	receipt             string
	catalogVersion      string
	features            catalogvo.FeatureBundle
	failureReason       string
	refundOf            string
	createdAt           time.Time
	updatedAt           time.Time
}

// NewPurchase records a pending paid order. The amount is the catalog price
// at order time.
func NewPurchase(id, ownerID string, pkg *catalog.Package, orderRef, receipt, catalogVersion string, now time.Time) (*Transaction, error) {
	if pkg == nil {
		return nil, fmt.Errorf("%w: package is required", ErrInvalidTransaction)
	}
	if strings.TrimSpace(orderRef) == "" {
		return nil, fmt.Errorf("%w: processor order ref is required", ErrInvalidTransaction)
	}
	if pkg.IsFree() {
		return nil, fmt.Errorf("%w: free package %s cannot be purchased", ErrInvalidTransaction, pkg.Name())
	}
	t, err := newTransaction(id, ownerID, vo.KindPurchase, pkg, now)
	if err != nil {
		return nil, err
	}
	t.processorOrderRef = orderRef
	t.receipt = receipt
	t.catalogVersion = catalogVersion
	return t, nil
}

// NewFreeActivation records a completed zero-amount activation together
// with the bundle it granted.
func NewFreeActivation(id, ownerID string, pkg *catalog.Package, catalogVersion string, now time.Time) (*Transaction, error) {
	if pkg == nil {
		return nil, fmt.Errorf("%w: package is required", ErrInvalidTransaction)
	}
	if !pkg.IsFree() {
		return nil, fmt.Errorf("%w: package %s is not free", ErrInvalidTransaction, pkg.Name())
	}
	t, err := newTransaction(id, ownerID, vo.KindFreeActivation, pkg, now)
	if err != nil {
		return nil, err
	}
	t.status = vo.StatusCompleted
	t.catalogVersion = catalogVersion
	t.features = pkg.Features()
	return t, nil
}

// NewRefund records money returned for a completed purchase. The amount is
// the original amount; Kind gives the direction.
// NewRefund records money returned for original. The refund points at the
// purchase through refundOf and carries no order ref of its own; order refs
// identify exactly one purchase.
func NewRefund(id string, original *Transaction, reason string, now time.Time) (*Transaction, error) {
	if original == nil || original.kind != vo.KindPurchase {
		return nil, ErrNotRefundable
	}
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("%w: id is required", ErrInvalidTransaction)
	}
	return &Transaction{
		id:                  id,
		ownerID:             original.ownerID,
		kind:                vo.KindRefund,
		packageName:         original.packageName,
		amount:              original.amount,
		status:              vo.StatusCompleted,
		processorPaymentRef: original.processorPaymentRef,
		catalogVersion:      original.catalogVersion,
		features:            catalogvo.FeatureBundle{Badges: []string{}},
		failureReason:       reason,
		refundOf:            original.id,
		createdAt:           now,
		updatedAt:           now,
	}, nil
}

func newTransaction(id, ownerID string, kind vo.TransactionKind, pkg *catalog.Package, now time.Time) (*Transaction, error) {
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("%w: id is required", ErrInvalidTransaction)
	}
	if strings.TrimSpace(ownerID) == "" {
		return nil, fmt.Errorf("%w: owner id is required", ErrInvalidTransaction)
	}
	return &Transaction{
		id:          id,
		ownerID:     ownerID,
		kind:        kind,
		packageName: pkg.Name(),
		amount:      pkg.Price(),
		status:      vo.StatusPending,
		features:    catalogvo.FeatureBundle{Badges: []string{}},
		createdAt:   now,
		updatedAt:   now,
	}, nil
}

// ReconstructTransaction rebuilds a ledger entry from storage.
func ReconstructTransaction(
	id, ownerID string,
	kind vo.TransactionKind,
	packageName string,
	amount catalogvo.Money,
	status vo.TransactionStatus,
	processorOrderRef, processorPaymentRef, signature, receipt, catalogVersion string,
	features catalogvo.FeatureBundle,
	failureReason, refundOf string,
	createdAt, updatedAt time.Time,
) (*Transaction, error) {
	if id == "" || ownerID == "" {
		return nil, fmt.Errorf("%w: id and owner id are required", ErrInvalidTransaction)
	}
	if !kind.IsValid() {
		return nil, fmt.Errorf("%w: kind %q", ErrInvalidTransaction, kind)
	}
	if !status.IsValid() {
		return nil, fmt.Errorf("%w: status %q", ErrInvalidTransaction, status)
	}
	return &Transaction{
		id:                  id,
		ownerID:             ownerID,
		kind:                kind,
		packageName:         packageName,
		amount:              amount,
		status:              status,
		processorOrderRef:   processorOrderRef,
		processorPaymentRef: processorPaymentRef,
		signature:           signature,
		receipt:             receipt,
		catalogVersion:      catalogVersion,
		features:            features.Clone(),
		failureReason:       failureReason,
		refundOf:            refundOf,
		createdAt:           createdAt,
		updatedAt:           updatedAt,
	}, nil
}

// Complete marks a pending purchase paid and stores the bundle granted.
func (t *Transaction) Complete(paymentRef, signature string, granted catalogvo.FeatureBundle, now time.Time) error {
	if !t.status.CanTransitionTo(vo.StatusCompleted) {
		return errTransition(t.status, vo.StatusCompleted)
	}
	t.status = vo.StatusCompleted
	t.processorPaymentRef = paymentRef
	t.signature = signature
	t.features = granted.Clone()
	t.updatedAt = now
	return nil
}

// Fail marks a pending purchase failed with a reason kept for audit.
func (t *Transaction) Fail(paymentRef, reason string, now time.Time) error {
	if !t.status.CanTransitionTo(vo.StatusFailed) {
		return errTransition(t.status, vo.StatusFailed)
	}
	t.status = vo.StatusFailed
	if paymentRef != "" {
		t.processorPaymentRef = paymentRef
	}
	t.failureReason = reason
	t.updatedAt = now
	return nil
}

// MarkRefunded flags a completed purchase as refunded.
func (t *Transaction) MarkRefunded(now time.Time) error {
	if t.kind != vo.KindPurchase {
		return ErrNotRefundable
	}
	if !t.status.CanTransitionTo(vo.StatusRefunded) {
		return errTransition(t.status, vo.StatusRefunded)
	}
	t.status = vo.StatusRefunded
	t.updatedAt = now
	return nil
}

func (t *Transaction) ID() string {
	return t.id
}

func (t *Transaction) OwnerID() string {
	return t.ownerID
}

func (t *Transaction) Kind() vo.TransactionKind {
	return t.kind
}

func (t *Transaction) PackageName() string {
	return t.packageName
}

func (t *Transaction) Amount() catalogvo.Money {
	return t.amount
}

func (t *Transaction) Status() vo.TransactionStatus {
	return t.status
}

func (t *Transaction) ProcessorOrderRef() string {
	return t.processorOrderRef
}

func (t *Transaction) ProcessorPaymentRef() string {
	return t.processorPaymentRef
}

func (t *Transaction) Signature() string {
	return t.signature
}

func (t *Transaction) Receipt() string {
	return t.receipt
}

func (t *Transaction) CatalogVersion() string {
	return t.catalogVersion
}

func (t *Transaction) Features() catalogvo.FeatureBundle {
	return t.features.Clone()
}

func (t *Transaction) FailureReason() string {
	return t.failureReason
}

func (t *Transaction) RefundOf() string {
	return t.refundOf
}

func (t *Transaction) CreatedAt() time.Time {
	return t.createdAt
}

func (t *Transaction) UpdatedAt() time.Time {
	return t.updatedAt
}
