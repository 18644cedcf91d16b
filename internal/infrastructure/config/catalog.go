package config

import (
	"fmt"

	"github.com/tierworks/sellertiers/internal/domain/catalog"
	catalogvo "github.com/tierworks/sellertiers/internal/domain/catalog/valueobjects"
	sharedConfig "github.com/tierworks/sellertiers/internal/shared/config"
)

// BuildCatalog turns the catalog section into the immutable price table.
func BuildCatalog(cfg sharedConfig.CatalogConfig) (*catalog.Catalog, error) {
	pkgs := make([]*catalog.Package, 0, len(cfg.Packages))
	for _, pc := range cfg.Packages {
		p, err := catalog.NewPackage(pc.Name, catalogvo.NewMoney(pc.Price, pc.Currency), catalogvo.FeatureBundle{
			MaxListings:         pc.MaxListings,
			MaxPhotos:           pc.MaxPhotos,
			DurationDays:        pc.DurationDays,
			BoostCount:          pc.BoostCount,
			BoostDurationDays:   pc.BoostDurationDays,
			SearchPlacementTier: pc.SearchPlacement,
			Badges:              pc.Badges,
			Analytics:           pc.Analytics,
		})
		if err != nil {
			return nil, err
		}
		pkgs = append(pkgs, p)
	}

	c, err := catalog.New(cfg.Version, cfg.StarterPackage, cfg.StarterValidityDays, pkgs)
	if err != nil {
		return nil, fmt.Errorf("failed to build catalog: %w", err)
	}
	return c, nil
}
