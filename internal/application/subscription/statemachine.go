// Package subscription owns every write to a seller's subscription row.
// Writes are optimistic: each one is a compare-and-swap on the revision the
// row was read at, retried a bounded number of times.
package subscription

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tierworks/sellertiers/internal/application/common"
	"github.com/tierworks/sellertiers/internal/domain/catalog"
	"github.com/tierworks/sellertiers/internal/domain/subscription"
	"github.com/tierworks/sellertiers/internal/shared/biztime"
	"github.com/tierworks/sellertiers/internal/shared/db"
	"github.com/tierworks/sellertiers/internal/shared/logger"
)

const maxWriteAttempts = 5

type DenyReason string

const (
	ReasonSubscriptionExpired  DenyReason = "subscription_expired"
	ReasonNoActiveSubscription DenyReason = "no_active_subscription"
)

// Decision is the outcome of CheckAndEnforce. Subscription is the row the
// decision was made on, nil when the seller has none.
type Decision struct {
	Allowed      bool
	Reason       DenyReason
	Subscription *subscription.Subscription
}

// Err returns the sentinel behind a denial, nil when allowed.
func (d Decision) Err() error {
	switch {
	case d.Allowed:
		return nil
	case d.Reason == ReasonSubscriptionExpired:
		return subscription.ErrSubscriptionExpired
	default:
		return subscription.ErrSubscriptionNotFound
	}
}

func allow(sub *subscription.Subscription) Decision {
	return Decision{Allowed: true, Subscription: sub}
}

func deny(reason DenyReason, sub *subscription.Subscription) Decision {
	return Decision{Reason: reason, Subscription: sub}
}

// ActivateOption customises a single Activate call.
type ActivateOption func(*activateOptions)

type activateOptions struct {
	precheck func(current *subscription.Subscription, now time.Time) (skip bool, err error)
	record   func(ctx context.Context, activated *subscription.Subscription) error
}

// WithPrecheck inspects the row as read inside the activation transaction.
// Returning skip ends the activation without a write; an error aborts it.
func WithPrecheck(fn func(current *subscription.Subscription, now time.Time) (skip bool, err error)) ActivateOption {
	return func(o *activateOptions) {
		o.precheck = fn
	}
}

// WithRecord runs fn in the same database transaction, after the row is
// written. An error rolls the activation back.
func WithRecord(fn func(ctx context.Context, activated *subscription.Subscription) error) ActivateOption {
	return func(o *activateOptions) {
		o.record = fn
	}
}

type StateMachine struct {
	repo      subscription.Repository
	catalog   *catalog.Catalog
	txManager db.Runner
	metrics   common.Metrics
	clock     biztime.Clock
	logger    logger.Interface
}

func NewStateMachine(
	repo subscription.Repository,
	catalog *catalog.Catalog,
	txManager db.Runner,
	logger logger.Interface,
) *StateMachine {
	return &StateMachine{
		repo:      repo,
		catalog:   catalog,
		txManager: txManager,
		metrics:   common.NopMetrics{},
		clock:     biztime.NowUTC,
		logger:    logger,
	}
}

func (sm *StateMachine) SetMetrics(m common.Metrics) {
	sm.metrics = m
}

func (sm *StateMachine) SetClock(clock biztime.Clock) {
	sm.clock = clock
}

// Provision creates the expired, package-less row for a new seller. Calling
// it again returns the existing row unchanged.
func (sm *StateMachine) Provision(ctx context.Context, sellerID string) (*subscription.Subscription, error) {
	existing, err := sm.repo.GetByOwner(ctx, sellerID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, subscription.ErrSubscriptionNotFound) {
		return nil, err
	}

	sub, err := subscription.NewProvisioned(sellerID, sm.clock())
	if err != nil {
		return nil, err
	}
	if err := sm.repo.Create(ctx, sub); err != nil {
		if errors.Is(err, subscription.ErrConcurrentModification) {
			return sm.repo.GetByOwner(ctx, sellerID)
		}
		return nil, err
	}

	sm.logger.Infow("seller subscription provisioned", "seller_id", sellerID)
	return sub, nil
}

// Current returns the seller's row without enforcing expiry.
func (sm *StateMachine) Current(ctx context.Context, sellerID string) (*subscription.Subscription, error) {
	return sm.repo.GetByOwner(ctx, sellerID)
}

// Activate puts the seller on pkg for durationDays from now. A seller that
// was never provisioned gets a row. Each attempt is its own transaction;
// a lost revision race re-reads and tries again.
func (sm *StateMachine) Activate(
	ctx context.Context,
	sellerID string,
	pkg *catalog.Package,
	durationDays int,
	opts ...ActivateOption,
) (*subscription.Subscription, error) {
	var o activateOptions
	for _, opt := range opts {
		opt(&o)
	}

	for attempt := 1; attempt <= maxWriteAttempts; attempt++ {
		var result *subscription.Subscription

		err := sm.txManager.RunInTransaction(ctx, func(txCtx context.Context) error {
			now := sm.clock()

			sub, created, err := sm.loadOrNew(txCtx, sellerID, now)
			if err != nil {
				return err
			}

			if o.precheck != nil {
				skip, err := o.precheck(sub, now)
				if err != nil {
					return err
				}
				if skip {
					result = sub
					return nil
				}
			}

			if err := sub.Activate(pkg, durationDays, now); err != nil {
				return err
			}
			if created {
				err = sm.repo.Create(txCtx, sub)
			} else {
				err = sm.repo.Update(txCtx, sub)
			}
			if err != nil {
				return err
			}

			if o.record != nil {
				if err := o.record(txCtx, sub); err != nil {
					return err
				}
			}
			result = sub
			return nil
		})

		if err == nil {
			return result, nil
		}
		if !errors.Is(err, subscription.ErrConcurrentModification) {
			return nil, err
		}
		sm.logger.Debugw("activation lost revision race, retrying",
			"seller_id", sellerID,
			"package", pkg.Name(),
			"attempt", attempt,
		)
	}

	sm.logger.Warnw("activation retries exhausted", "seller_id", sellerID, "package", pkg.Name())
	return nil, fmt.Errorf("activate %s for seller %s: %w", pkg.Name(), sellerID, subscription.ErrConcurrentModification)
}

func (sm *StateMachine) loadOrNew(ctx context.Context, sellerID string, now time.Time) (*subscription.Subscription, bool, error) {
	sub, err := sm.repo.GetByOwner(ctx, sellerID)
	if err == nil {
		return sub, false, nil
	}
	if !errors.Is(err, subscription.ErrSubscriptionNotFound) {
		return nil, false, err
	}
	sub, err = subscription.NewProvisioned(sellerID, now)
	if err != nil {
		return nil, false, err
	}
	return sub, true, nil
}

// CheckAndEnforce decides whether the seller is currently covered. A lapsed
// paid subscription is moved onto the starter package and the current
// request is denied; the next request is allowed on the starter bundle.
func (sm *StateMachine) CheckAndEnforce(ctx context.Context, sellerID string) (Decision, error) {
	now := sm.clock()

	sub, err := sm.repo.GetByOwner(ctx, sellerID)
	if errors.Is(err, subscription.ErrSubscriptionNotFound) {
		return deny(ReasonNoActiveSubscription, nil), nil
	}
	if err != nil {
		return Decision{}, err
	}

	if !sub.HasPackage() {
		return deny(ReasonNoActiveSubscription, sub), nil
	}
	if sm.catalog.IsStarter(sub.PackageName()) || sub.IsActiveAt(now) {
		return allow(sub), nil
	}
	if !sub.IsLapsedAt(now) {
		return deny(ReasonSubscriptionExpired, sub), nil
	}

	lapsedPackage := sub.PackageName()
	if err := sub.DowngradeToStarter(sm.catalog.Starter(), sm.catalog.StarterValidityDays(), now); err != nil {
		return Decision{}, err
	}

	err = sm.repo.Update(ctx, sub)
	if errors.Is(err, subscription.ErrConcurrentModification) {
		return sm.afterLostDowngrade(ctx, sellerID, now)
	}
	if err != nil {
		return Decision{}, err
	}

	sm.metrics.SubscriptionDowngraded(lapsedPackage)
	sm.logger.Infow("lapsed subscription downgraded to starter",
		"seller_id", sellerID,
		"from_package", lapsedPackage,
		"valid_until", sub.EndDate(),
	)
	return deny(ReasonSubscriptionExpired, sub), nil
}

// afterLostDowngrade handles a request that raced another writer. Whatever
// that writer did, the fresh row is judged without a further write.
func (sm *StateMachine) afterLostDowngrade(ctx context.Context, sellerID string, now time.Time) (Decision, error) {
	fresh, err := sm.repo.GetByOwner(ctx, sellerID)
	if err != nil {
		return Decision{}, err
	}
	if sm.catalog.IsStarter(fresh.PackageName()) || fresh.IsActiveAt(now) {
		return allow(fresh), nil
	}
	return deny(ReasonSubscriptionExpired, fresh), nil
}
