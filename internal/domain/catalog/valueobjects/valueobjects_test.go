package valueobjects

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMoney(t *testing.T) {
	m := NewMoney(499900, "inr")

	assert.Equal(t, int64(499900), m.Amount())
	assert.Equal(t, "INR", m.Currency())
	assert.Equal(t, "4999.00 INR", m.String())
	assert.True(t, m.Equals(NewMoney(499900, "INR")))
	assert.False(t, m.Equals(NewMoney(399900, "INR")))
	assert.False(t, m.Equals(NewMoney(499900, "USD")))
	assert.True(t, NewMoney(0, "INR").IsZero())
	assert.Equal(t, "-0.05 INR", NewMoney(-5, "INR").String())
}

func TestFeatureBundle_CloneIsIndependent(t *testing.T) {
	orig := FeatureBundle{MaxListings: 50, DurationDays: 30, Badges: []string{"verified"}}
	c := orig.Clone()

	c.Badges[0] = "tampered"
	c.MaxListings = 1

	assert.Equal(t, "verified", orig.Badges[0])
	assert.Equal(t, 50, orig.MaxListings)
	assert.True(t, orig.HasBadge("verified"))
}

func TestFeatureBundle_CloneNilBadges(t *testing.T) {
	assert.NotNil(t, FeatureBundle{DurationDays: 1}.Clone().Badges)
}

func TestFeatureBundle_Validate(t *testing.T) {
	assert.NoError(t, FeatureBundle{DurationDays: 30}.Validate())
	assert.Error(t, FeatureBundle{DurationDays: 0}.Validate())
	assert.Error(t, FeatureBundle{DurationDays: 30, MaxPhotos: -1}.Validate())
}
