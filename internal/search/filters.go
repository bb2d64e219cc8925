// Package search selects subsets of materials, centers and invoices.
// Filters never mutate their input and keep input order.
package search

import (
	"strings"

	"recytoken-up-go/internal/models"

	"github.com/shopspring/decimal"
)

// Match-all filter values
const (
	All           = "Todas"
	AllCategories = "Todas las categorías"
	AllLocations  = "Todas las ubicaciones"
	AllStatuses   = "all"
)

// MaterialCriteria are the marketplace filters. MaxPrice is kept as entered:
// blank or non-numeric means unconstrained.
type MaterialCriteria struct {
	Category string
	MaxPrice string
	Location string
}

// CenterCriteria are the map-search filters
type CenterCriteria struct {
	Location string
	Category string
}

// IsAll reports whether a filter value matches everything
func IsAll(value string) bool {
	switch strings.TrimSpace(value) {
	case "", All, AllCategories, AllLocations, AllStatuses:
		return true
	}
	return false
}

// ParseMaxPrice returns the inclusive price bound, or false when unconstrained
func ParseMaxPrice(value string) (decimal.Decimal, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return decimal.Zero, false
	}
	bound, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, false
	}
	return bound, true
}

// FilterMaterials keeps materials matching every set criterion.
func FilterMaterials(materials []models.Material, criteria MaterialCriteria) []models.Material {
	maxPrice, bounded := ParseMaxPrice(criteria.MaxPrice)

	out := make([]models.Material, 0, len(materials))
	for _, m := range materials {
		if !IsAll(criteria.Category) && string(m.Category) != criteria.Category {
			continue
		}
		if bounded && m.PricePerKg.GreaterThan(maxPrice) {
			continue
		}
		if !IsAll(criteria.Location) && m.Location != criteria.Location {
			continue
		}
		out = append(out, m)
	}
	return out
}

// FilterCenters keeps centers in the requested city that hold at least one
// material of the requested category. A material belongs to a center by
// CenterId; materials without one fall back to matching city names.
func FilterCenters(centers []models.Center, materials []models.Material, criteria CenterCriteria) []models.Center {
	var stocked map[string]bool
	var stockedCities map[string]bool
	if !IsAll(criteria.Category) {
		stocked = make(map[string]bool)
		stockedCities = make(map[string]bool)
		for _, m := range materials {
			if string(m.Category) != criteria.Category {
				continue
			}
			if m.CenterId != "" {
				stocked[m.CenterId] = true
			} else {
				stockedCities[m.Location] = true
			}
		}
	}

	out := make([]models.Center, 0, len(centers))
	for _, c := range centers {
		if !IsAll(criteria.Location) && c.City != criteria.Location {
			continue
		}
		if stocked != nil && !stocked[c.Id] && !stockedCities[c.City] {
			continue
		}
		out = append(out, c)
	}
	return out
}

// Locations returns the distinct material cities in first-seen order
func Locations(materials []models.Material) []string {
	seen := make(map[string]bool)
	var out []string
	for _, m := range materials {
		if m.Location != "" && !seen[m.Location] {
			seen[m.Location] = true
			out = append(out, m.Location)
		}
	}
	return out
}
