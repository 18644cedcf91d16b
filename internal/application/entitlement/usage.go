package entitlement

import (
	"context"
	"time"
)

// Action is a protected seller operation checked by the gate.
type Action string

const (
	ActionCreateListing Action = "create_listing"
	ActionUploadPhoto   Action = "upload_photo"
	ActionUseBoost      Action = "use_boost"
	ActionViewAnalytics Action = "view_analytics"
)

func (a Action) IsValid() bool {
	switch a {
	case ActionCreateListing, ActionUploadPhoto, ActionUseBoost, ActionViewAnalytics:
		return true
	}
	return false
}

// MaxUsageDelta bounds a single usage report in either direction.
const MaxUsageDelta = 1000

// UsageMetric names a counter reported by the listing collaborators.
type UsageMetric string

const (
	MetricActiveListings UsageMetric = "active_listings"
	MetricListingPhotos  UsageMetric = "listing_photos"
	MetricBoosts         UsageMetric = "boosts"
)

func (m UsageMetric) IsValid() bool {
	switch m {
	case MetricActiveListings, MetricListingPhotos, MetricBoosts:
		return true
	}
	return false
}

// UsageProvider reads the counters the gate compares against quotas.
type UsageProvider interface {
	ActiveListings(ctx context.Context, sellerID string) (int64, error)
	ListingPhotos(ctx context.Context, sellerID, listingID string) (int64, error)
	BoostsSince(ctx context.Context, sellerID string, since time.Time) (int64, error)
}

// UsageRecorder applies a delta reported by a collaborator. Counters never
// go below zero.
type UsageRecorder interface {
	Record(ctx context.Context, sellerID string, metric UsageMetric, listingID string, delta int64, at time.Time) error
}
