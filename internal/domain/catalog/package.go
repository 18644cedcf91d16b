package catalog

import (
	"fmt"
	"strings"

	vo "github.com/tierworks/sellertiers/internal/domain/catalog/valueobjects"
)

// Package is an immutable purchasable tier.
type Package struct {
	name     string
	price    vo.Money
	features vo.FeatureBundle
}

func NewPackage(name string, price vo.Money, features vo.FeatureBundle) (*Package, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: package name is required", ErrInvalidCatalog)
	}
	if price.IsNegative() {
		return nil, fmt.Errorf("%w: package %s has negative price", ErrInvalidCatalog, name)
	}
	if price.Currency() == "" {
		return nil, fmt.Errorf("%w: package %s has no currency", ErrInvalidCatalog, name)
	}
	if err := features.Validate(); err != nil {
		return nil, fmt.Errorf("%w: package %s: %v", ErrInvalidCatalog, name, err)
	}
	return &Package{name: name, price: price, features: features.Clone()}, nil
}

func (p *Package) Name() string {
	return p.name
}

func (p *Package) Price() vo.Money {
	return p.price
}

// Features returns a copy of the bundle.
func (p *Package) Features() vo.FeatureBundle {
	return p.features.Clone()
}

func (p *Package) DurationDays() int {
	return p.features.DurationDays
}

func (p *Package) IsFree() bool {
	return p.price.IsZero()
}
