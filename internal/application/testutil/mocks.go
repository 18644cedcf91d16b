// Package testutil provides in-memory doubles for testing the application layer.
package testutil

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tierworks/sellertiers/internal/application/payment/paymentgateway"
	"github.com/tierworks/sellertiers/internal/domain/catalog"
	catalogvo "github.com/tierworks/sellertiers/internal/domain/catalog/valueobjects"
	"github.com/tierworks/sellertiers/internal/domain/ledger"
	ledgervo "github.com/tierworks/sellertiers/internal/domain/ledger/valueobjects"
	"github.com/tierworks/sellertiers/internal/domain/subscription"
)

// BaseTime is the fixed "now" used across application tests.
var BaseTime = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

// NewTestCatalog returns starter (free), trot and gallop, priced in paise.
func NewTestCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()

	starter, err := catalog.NewPackage("starter", catalogvo.NewMoney(0, "INR"), catalogvo.FeatureBundle{
		MaxListings:  3,
		MaxPhotos:    5,
		DurationDays: 3650,
	})
	require.NoError(t, err)

	trot, err := catalog.NewPackage("trot", catalogvo.NewMoney(199900, "INR"), catalogvo.FeatureBundle{
		MaxListings:         15,
		MaxPhotos:           10,
		DurationDays:        30,
		BoostCount:          2,
		BoostDurationDays:   3,
		SearchPlacementTier: 1,
		Badges:              []string{"verified"},
	})
	require.NoError(t, err)

	gallop, err := catalog.NewPackage("gallop", catalogvo.NewMoney(499900, "INR"), catalogvo.FeatureBundle{
		MaxListings:         50,
		MaxPhotos:           20,
		DurationDays:        30,
		BoostCount:          10,
		BoostDurationDays:   7,
		SearchPlacementTier: 2,
		Badges:              []string{"verified", "top_seller"},
		Analytics:           true,
	})
	require.NoError(t, err)

	c, err := catalog.New("v1", "starter", 3650, []*catalog.Package{starter, trot, gallop})
	require.NoError(t, err)
	return c
}

// Clock is a settable clock safe for concurrent reads.
type Clock struct {
	mu  sync.RWMutex
	now time.Time
}

func NewClock(now time.Time) *Clock {
	return &Clock{now: now}
}

func (c *Clock) Now() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.now
}

func (c *Clock) Set(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
}

func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// MockSubscriptionRepository stores copies of subscriptions and enforces the
// revision compare-and-swap like the SQL repository does.
type MockSubscriptionRepository struct {
	mu   sync.Mutex
	rows map[string]*subscription.Subscription

	// BeforeUpdate, when set, runs before the compare-and-swap. Tests use
	// it to slip a concurrent writer in.
	BeforeUpdate func(s *subscription.Subscription)

	GetError    error
	UpdateCalls int
	Writes      int
}

func NewMockSubscriptionRepository() *MockSubscriptionRepository {
	return &MockSubscriptionRepository{rows: make(map[string]*subscription.Subscription)}
}

func (m *MockSubscriptionRepository) Create(ctx context.Context, s *subscription.Subscription) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.rows[s.OwnerID()]; exists {
		return subscription.ErrConcurrentModification
	}
	m.rows[s.OwnerID()] = copySubscription(s)
	m.Writes++
	return nil
}

func (m *MockSubscriptionRepository) GetByOwner(ctx context.Context, ownerID string) (*subscription.Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.GetError != nil {
		return nil, m.GetError
	}
	row, ok := m.rows[ownerID]
	if !ok {
		return nil, subscription.ErrSubscriptionNotFound
	}
	return copySubscription(row), nil
}

func (m *MockSubscriptionRepository) Update(ctx context.Context, s *subscription.Subscription) error {
	if hook := m.BeforeUpdate; hook != nil {
		m.BeforeUpdate = nil
		hook(s)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.UpdateCalls++
	row, ok := m.rows[s.OwnerID()]
	if !ok || row.Revision() != s.Revision()-1 {
		return subscription.ErrConcurrentModification
	}
	m.rows[s.OwnerID()] = copySubscription(s)
	m.Writes++
	return nil
}

// Put stores s directly, bypassing the revision check.
func (m *MockSubscriptionRepository) Put(s *subscription.Subscription) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[s.OwnerID()] = copySubscription(s)
}

func (m *MockSubscriptionRepository) WriteCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Writes
}

func copySubscription(s *subscription.Subscription) *subscription.Subscription {
	c, err := subscription.ReconstructSubscription(
		s.OwnerID(), s.PackageName(), s.Status(),
		s.StartDate(), s.EndDate(), s.Features(), s.Revision(),
		s.CreatedAt(), s.UpdatedAt(),
	)
	if err != nil {
		panic(err)
	}
	return c
}

// MockTransactionRepository is an in-memory ledger with the same status
// compare-and-swap and order-ref uniqueness as the SQL repository.
type MockTransactionRepository struct {
	mu   sync.Mutex
	rows map[string]*ledger.Transaction

	CreateError error
}

func NewMockTransactionRepository() *MockTransactionRepository {
	return &MockTransactionRepository{rows: make(map[string]*ledger.Transaction)}
}

func (m *MockTransactionRepository) Create(ctx context.Context, tx *ledger.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.CreateError != nil {
		return m.CreateError
	}
	if tx.ProcessorOrderRef() != "" {
		for _, row := range m.rows {
			if row.ProcessorOrderRef() == tx.ProcessorOrderRef() {
				return ledger.ErrInvalidTransaction
			}
		}
	}
	m.rows[tx.ID()] = copyTransaction(tx)
	return nil
}

func (m *MockTransactionRepository) GetByID(ctx context.Context, id string) (*ledger.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	row, ok := m.rows[id]
	if !ok {
		return nil, ledger.ErrTransactionNotFound
	}
	return copyTransaction(row), nil
}

func (m *MockTransactionRepository) GetByOrderRef(ctx context.Context, orderRef string) (*ledger.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, row := range m.rows {
		if row.Kind() == ledgervo.KindPurchase && row.ProcessorOrderRef() == orderRef {
			return copyTransaction(row), nil
		}
	}
	return nil, ledger.ErrTransactionNotFound
}

func (m *MockTransactionRepository) ListByOwner(ctx context.Context, ownerID string, offset, limit int) ([]*ledger.Transaction, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var owned []*ledger.Transaction
	for _, row := range m.rows {
		if row.OwnerID() == ownerID {
			owned = append(owned, copyTransaction(row))
		}
	}
	sort.Slice(owned, func(i, j int) bool {
		if owned[i].CreatedAt().Equal(owned[j].CreatedAt()) {
			return owned[i].ID() > owned[j].ID()
		}
		return owned[i].CreatedAt().After(owned[j].CreatedAt())
	})

	total := int64(len(owned))
	if offset >= len(owned) {
		return []*ledger.Transaction{}, total, nil
	}
	end := offset + limit
	if end > len(owned) {
		end = len(owned)
	}
	return owned[offset:end], total, nil
}

func (m *MockTransactionRepository) UpdateStatus(ctx context.Context, tx *ledger.Transaction, from ledgervo.TransactionStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	row, ok := m.rows[tx.ID()]
	if !ok {
		return ledger.ErrTransactionNotFound
	}
	if row.Status() != from {
		return ledger.ErrInvalidStatusTransition
	}
	m.rows[tx.ID()] = copyTransaction(tx)
	return nil
}

// All returns every stored entry for ownerID, in no particular order.
func (m *MockTransactionRepository) All(ownerID string) []*ledger.Transaction {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []*ledger.Transaction
	for _, row := range m.rows {
		if row.OwnerID() == ownerID {
			out = append(out, copyTransaction(row))
		}
	}
	return out
}

func copyTransaction(t *ledger.Transaction) *ledger.Transaction {
	c, err := ledger.ReconstructTransaction(
		t.ID(), t.OwnerID(), t.Kind(), t.PackageName(), t.Amount(), t.Status(),
		t.ProcessorOrderRef(), t.ProcessorPaymentRef(), t.Signature(), t.Receipt(), t.CatalogVersion(),
		t.Features(), t.FailureReason(), t.RefundOf(),
		t.CreatedAt(), t.UpdatedAt(),
	)
	if err != nil {
		panic(err)
	}
	return c
}

// MockTxRunner runs fn directly. In-memory repositories have nothing to
// roll back.
type MockTxRunner struct {
	mu    sync.Mutex
	Calls int
}

func (m *MockTxRunner) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	m.mu.Lock()
	m.Calls++
	m.mu.Unlock()
	return fn(ctx)
}

// MockProcessor records calls and answers from the configured funcs.
type MockProcessor struct {
	mu sync.Mutex

	CreateOrderFunc  func(ctx context.Context, req paymentgateway.CreateOrderRequest) (*paymentgateway.Order, error)
	FetchPaymentFunc func(ctx context.Context, paymentRef string) (*paymentgateway.Payment, error)

	CreateOrderRequests []paymentgateway.CreateOrderRequest
	FetchPaymentCalls   int
}

func (m *MockProcessor) CreateOrder(ctx context.Context, req paymentgateway.CreateOrderRequest) (*paymentgateway.Order, error) {
	m.mu.Lock()
	m.CreateOrderRequests = append(m.CreateOrderRequests, req)
	m.mu.Unlock()

	if m.CreateOrderFunc != nil {
		return m.CreateOrderFunc(ctx, req)
	}
	return &paymentgateway.Order{OrderRef: "order_test", Amount: req.Amount, Currency: req.Currency}, nil
}

func (m *MockProcessor) FetchPayment(ctx context.Context, paymentRef string) (*paymentgateway.Payment, error) {
	m.mu.Lock()
	m.FetchPaymentCalls++
	m.mu.Unlock()

	if m.FetchPaymentFunc != nil {
		return m.FetchPaymentFunc(ctx, paymentRef)
	}
	return nil, paymentgateway.ErrPaymentNotFound
}

func (m *MockProcessor) TotalCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.CreateOrderRequests) + m.FetchPaymentCalls
}

// MockUsageProvider returns fixed counters.
type MockUsageProvider struct {
	Listings      int64
	Photos        map[string]int64
	Boosts        int64
	BoostsSinceAt time.Time
	Err           error
}

func (m *MockUsageProvider) ActiveListings(ctx context.Context, sellerID string) (int64, error) {
	return m.Listings, m.Err
}

func (m *MockUsageProvider) ListingPhotos(ctx context.Context, sellerID, listingID string) (int64, error) {
	return m.Photos[listingID], m.Err
}

func (m *MockUsageProvider) BoostsSince(ctx context.Context, sellerID string, since time.Time) (int64, error) {
	m.BoostsSinceAt = since
	return m.Boosts, m.Err
}

// MockMetrics counts events by name.
type MockMetrics struct {
	mu       sync.Mutex
	Orders   int
	Outcomes map[string]int
	Downs    int
	Allowed  int
	Denied   int
	Refunds  int
}

func NewMockMetrics() *MockMetrics {
	return &MockMetrics{Outcomes: make(map[string]int)}
}

func (m *MockMetrics) OrderCreated(string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Orders++
}

func (m *MockMetrics) VerificationOutcome(outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Outcomes[outcome]++
}

func (m *MockMetrics) SubscriptionDowngraded(string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Downs++
}

func (m *MockMetrics) GateDecision(_ string, allowed bool, _ string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if allowed {
		m.Allowed++
	} else {
		m.Denied++
	}
}

func (m *MockMetrics) RefundRecorded(string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Refunds++
}

func (m *MockMetrics) Downgrades() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Downs
}
