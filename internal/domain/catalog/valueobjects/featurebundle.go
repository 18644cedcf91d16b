package valueobjects

import (
	"fmt"
	"slices"
)

// FeatureBundle is the set of limits a package grants. Subscriptions and
// ledger entries hold their own copy so later catalog edits never reach them.
type FeatureBundle struct {
	MaxListings         int      `json:"max_listings"`
	MaxPhotos           int      `json:"max_photos"`
	DurationDays        int      `json:"duration_days"`
	BoostCount          int      `json:"boost_count"`
	BoostDurationDays   int      `json:"boost_duration_days"`
	SearchPlacementTier int      `json:"search_placement_tier"`
	Badges              []string `json:"badges"`
	Analytics           bool     `json:"analytics"`
}

// Clone returns a deep copy.
func (f FeatureBundle) Clone() FeatureBundle {
	c := f
	c.Badges = slices.Clone(f.Badges)
	if c.Badges == nil {
		c.Badges = []string{}
	}
	return c
}

func (f FeatureBundle) HasBadge(badge string) bool {
	return slices.Contains(f.Badges, badge)
}

func (f FeatureBundle) Validate() error {
	if f.DurationDays <= 0 {
		return fmt.Errorf("duration_days must be positive, got %d", f.DurationDays)
	}
	if f.MaxListings < 0 || f.MaxPhotos < 0 || f.BoostCount < 0 || f.BoostDurationDays < 0 || f.SearchPlacementTier < 0 {
		return fmt.Errorf("feature limits must not be negative")
	}
	return nil
}
