package usecases

import (
	"github.com/tierworks/sellertiers/internal/domain/catalog"
	catalogvo "github.com/tierworks/sellertiers/internal/domain/catalog/valueobjects"
)

type PriceTableEntry struct {
	Name     string
	Price    catalogvo.Money
	Features catalogvo.FeatureBundle
	IsFree   bool
}

type PriceTable struct {
	Version  string
	Starter  string
	Packages []PriceTableEntry
}

// GetPriceTableUseCase exposes the catalog to the presentation layer and
// other collaborators. The catalog is immutable, so the table is built once.
type GetPriceTableUseCase struct {
	table *PriceTable
}

func NewGetPriceTableUseCase(c *catalog.Catalog) *GetPriceTableUseCase {
	table := &PriceTable{
		Version: c.Version(),
		Starter: c.Starter().Name(),
	}
	for _, p := range c.List() {
		table.Packages = append(table.Packages, PriceTableEntry{
			Name:     p.Name(),
			Price:    p.Price(),
			Features: p.Features(),
			IsFree:   p.IsFree(),
		})
	}
	return &GetPriceTableUseCase{table: table}
}

// Execute returns a copy the caller may modify.
func (uc *GetPriceTableUseCase) Execute() *PriceTable {
	out := &PriceTable{
		Version:  uc.table.Version,
		Starter:  uc.table.Starter,
		Packages: make([]PriceTableEntry, len(uc.table.Packages)),
	}
	for i, e := range uc.table.Packages {
		e.Features = e.Features.Clone()
		out.Packages[i] = e
	}
	return out
}
