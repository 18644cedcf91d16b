package subscription

import (
	"fmt"
	"strings"
	"time"

	"github.com/tierworks/sellertiers/internal/domain/catalog"
	catalogvo "github.com/tierworks/sellertiers/internal/domain/catalog/valueobjects"
	vo "github.com/tierworks/sellertiers/internal/domain/subscription/valueobjects"
	"github.com/tierworks/sellertiers/internal/shared/biztime"
)

// Subscription is the single entitlement record of a seller. Every mutation
// bumps revision by one.
type Subscription struct {
	ownerID     string
	packageName string
	status      vo.SubscriptionStatus
	startDate   time.Time
	endDate     time.Time
	features    catalogvo.FeatureBundle
	revision    int
	createdAt   time.Time
	updatedAt   time.Time
}

// NewProvisioned returns the package-less, expired row created together
// with the seller profile.
func NewProvisioned(ownerID string, now time.Time) (*Subscription, error) {
	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return nil, fmt.Errorf("%w: owner id is required", ErrInvalidSubscription)
	}
	return &Subscription{
		ownerID:   ownerID,
		status:    vo.StatusExpired,
		startDate: now,
		endDate:   now,
		features:  catalogvo.FeatureBundle{Badges: []string{}},
		revision:  1,
		createdAt: now,
		updatedAt: now,
	}, nil
}

// ReconstructSubscription rebuilds the aggregate from storage.
func ReconstructSubscription(
	ownerID, packageName string,
	status vo.SubscriptionStatus,
	startDate, endDate time.Time,
	features catalogvo.FeatureBundle,
	revision int,
	createdAt, updatedAt time.Time,
) (*Subscription, error) {
	if ownerID == "" {
		return nil, fmt.Errorf("%w: owner id is required", ErrInvalidSubscription)
	}
	if !status.IsValid() {
		return nil, fmt.Errorf("%w: status %q", ErrInvalidSubscription, status)
	}
	if endDate.Before(startDate) {
		return nil, fmt.Errorf("%w: end date before start date", ErrInvalidSubscription)
	}
	return &Subscription{
		ownerID:     ownerID,
		packageName: packageName,
		status:      status,
		startDate:   startDate,
		endDate:     endDate,
		features:    features.Clone(),
		revision:    revision,
		createdAt:   createdAt,
		updatedAt:   updatedAt,
	}, nil
}

func (s *Subscription) OwnerID() string {
	return s.ownerID
}

func (s *Subscription) PackageName() string {
	return s.packageName
}

func (s *Subscription) Status() vo.SubscriptionStatus {
	return s.status
}

func (s *Subscription) StartDate() time.Time {
	return s.startDate
}

func (s *Subscription) EndDate() time.Time {
	return s.endDate
}

// Features returns a copy of the snapshot granted at activation.
func (s *Subscription) Features() catalogvo.FeatureBundle {
	return s.features.Clone()
}

func (s *Subscription) Revision() int {
	return s.revision
}

func (s *Subscription) CreatedAt() time.Time {
	return s.createdAt
}

func (s *Subscription) UpdatedAt() time.Time {
	return s.updatedAt
}

// HasPackage is false for a provisioned seller that never activated.
func (s *Subscription) HasPackage() bool {
	return s.packageName != ""
}

// IsActiveAt reports whether the seller is covered at now. The end instant
// itself is still covered.
func (s *Subscription) IsActiveAt(now time.Time) bool {
	return s.HasPackage() && s.status == vo.StatusActive && !now.After(s.endDate)
}

// IsLapsedAt reports an active subscription whose window has passed.
func (s *Subscription) IsLapsedAt(now time.Time) bool {
	return s.HasPackage() && s.status == vo.StatusActive && now.After(s.endDate)
}

// Activate puts the seller on pkg for durationDays starting now. Any
// remaining time on the previous window is discarded.
func (s *Subscription) Activate(pkg *catalog.Package, durationDays int, now time.Time) error {
	if pkg == nil {
		return fmt.Errorf("%w: package is required", ErrInvalidSubscription)
	}
	if durationDays <= 0 {
		return fmt.Errorf("%w: duration must be positive", ErrInvalidSubscription)
	}
	s.packageName = pkg.Name()
	s.features = pkg.Features()
	s.status = vo.StatusActive
	s.startDate = now
	s.endDate = biztime.AddDays(now, durationDays)
	s.touch(now)
	return nil
}

// DowngradeToStarter moves a lapsed subscription onto the free starter
// package for validityDays.
func (s *Subscription) DowngradeToStarter(starter *catalog.Package, validityDays int, now time.Time) error {
	if !s.IsLapsedAt(now) {
		return fmt.Errorf("%w: only a lapsed subscription can be downgraded", ErrInvalidSubscription)
	}
	return s.Activate(starter, validityDays, now)
}

func (s *Subscription) touch(now time.Time) {
	s.revision++
	s.updatedAt = now
}
