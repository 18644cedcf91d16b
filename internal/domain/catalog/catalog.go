// Package catalog holds the price table. A Catalog is built once at start-up
// and never changes for the life of the process.
package catalog

import (
	"fmt"
)

type Catalog struct {
	version             string
	starter             string
	starterValidityDays int
	packages            []*Package
	byName              map[string]*Package
}

// New validates pkgs and returns the catalog. The starter package must be
// present and free.
func New(version, starter string, starterValidityDays int, pkgs []*Package) (*Catalog, error) {
	if len(pkgs) == 0 {
		return nil, fmt.Errorf("%w: no packages configured", ErrInvalidCatalog)
	}
	if starterValidityDays <= 0 {
		return nil, fmt.Errorf("%w: starter validity must be positive", ErrInvalidCatalog)
	}

	byName := make(map[string]*Package, len(pkgs))
	for _, p := range pkgs {
		if _, dup := byName[p.Name()]; dup {
			return nil, fmt.Errorf("%w: duplicate package %q", ErrInvalidCatalog, p.Name())
		}
		byName[p.Name()] = p
	}

	sp, ok := byName[starter]
	if !ok {
		return nil, fmt.Errorf("%w: starter package %q not defined", ErrInvalidCatalog, starter)
	}
	if !sp.IsFree() {
		return nil, fmt.Errorf("%w: starter package %q must be free", ErrInvalidCatalog, starter)
	}

	return &Catalog{
		version:             version,
		starter:             starter,
		starterValidityDays: starterValidityDays,
		packages:            append([]*Package(nil), pkgs...),
		byName:              byName,
	}, nil
}

// Get returns the package called name or ErrUnknownPackage.
func (c *Catalog) Get(name string) (*Package, error) {
	p, ok := c.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPackage, name)
	}
	return p, nil
}

// List returns packages in configuration order.
func (c *Catalog) List() []*Package {
	return append([]*Package(nil), c.packages...)
}

func (c *Catalog) Starter() *Package {
	return c.byName[c.starter]
}

func (c *Catalog) IsStarter(name string) bool {
	return name == c.starter
}

func (c *Catalog) StarterValidityDays() int {
	return c.starterValidityDays
}

func (c *Catalog) Version() string {
	return c.version
}
