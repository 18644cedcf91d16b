package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tierworks/sellertiers/internal/domain/catalog"
	sharedConfig "github.com/tierworks/sellertiers/internal/shared/config"
)

func TestBuildCatalog_FromLoadedConfig(t *testing.T) {
	cfg, err := Load("", writeConfig(t))
	require.NoError(t, err)

	c, err := BuildCatalog(cfg.Catalog)
	require.NoError(t, err)

	assert.Equal(t, "v7", c.Version())
	assert.Equal(t, "starter", c.Starter().Name())

	gallop, err := c.Get("gallop")
	require.NoError(t, err)
	assert.Equal(t, int64(499900), gallop.Price().Amount())
	assert.Equal(t, 30, gallop.DurationDays())
	assert.True(t, gallop.Features().Analytics)
}

func TestBuildCatalog_Invalid(t *testing.T) {
	_, err := BuildCatalog(sharedConfig.CatalogConfig{
		StarterPackage:      "starter",
		StarterValidityDays: 10,
		Packages: []sharedConfig.PackageConfig{
			{Name: "gallop", Price: 100, Currency: "INR", DurationDays: 30},
		},
	})
	assert.ErrorIs(t, err, catalog.ErrInvalidCatalog)

	_, err = BuildCatalog(sharedConfig.CatalogConfig{
		StarterPackage:      "starter",
		StarterValidityDays: 10,
		Packages: []sharedConfig.PackageConfig{
			{Name: "starter", Price: 0, Currency: "INR", DurationDays: 0},
		},
	})
	assert.ErrorIs(t, err, catalog.ErrInvalidCatalog)
}
