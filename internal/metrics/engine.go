// Package metrics computes the dashboard aggregates. Every function is pure
// and total: empty input yields zero or empty output, never an error.
package metrics

import (
	"cmp"
	"slices"
	"time"

	"recytoken-up-go/internal/models"
	"recytoken-up-go/internal/store"

	"github.com/shopspring/decimal"
)

// DefaultDays is the window of the daily activity chart
const DefaultDays = 7

// RecentActivityLimit caps the recent activity list
const RecentActivityLimit = 10

// DefaultTopCenters is the number of bars in the processed-weight chart
const DefaultTopCenters = 5

var kgPerTonne = decimal.NewFromInt(1000)

// CO2Factors are tonnes of CO2 avoided per tonne processed, per category
var CO2Factors = map[models.Category]decimal.Decimal{
	models.CategoryPlastic:    decimal.RequireFromString("1.5"),
	models.CategoryPaper:      decimal.RequireFromString("0.9"),
	models.CategoryGlass:      decimal.RequireFromString("0.3"),
	models.CategoryMetal:      decimal.RequireFromString("5.0"),
	models.CategoryOrganic:    decimal.RequireFromString("0.1"),
	models.CategoryElectronic: decimal.RequireFromString("10.0"),
}

// CountDistinctTokens counts unique material tokens across transactions.
func CountDistinctTokens(transactions []models.Transaction) int {
	seen := make(map[string]struct{}, len(transactions))
	for _, tx := range transactions {
		seen[tx.MaterialTokenId] = struct{}{}
	}
	return len(seen)
}

// SumCollectedWeight returns total transacted weight in tonnes, rounded to 2 places.
func SumCollectedWeight(transactions []models.Transaction) decimal.Decimal {
	total := decimal.Zero
	for _, tx := range transactions {
		total = total.Add(tx.QuantityKg)
	}
	return total.Div(kgPerTonne).Round(2)
}

// EstimateCO2Saved returns tonnes of CO2 avoided by the transacted material.
// A transaction whose material cannot be resolved to a category contributes nothing.
func EstimateCO2Saved(materials []models.Material, transactions []models.Transaction) decimal.Decimal {
	byId := make(map[string]models.Category, len(materials))
	byToken := make(map[string]models.Category, len(materials))
	for _, m := range materials {
		byId[m.Id] = m.Category
		if _, seen := byToken[m.TokenId]; !seen {
			byToken[m.TokenId] = m.Category
		}
	}

	total := decimal.Zero
	for _, tx := range transactions {
		category, ok := byId[tx.MaterialId]
		if !ok {
			category, ok = byToken[tx.MaterialTokenId]
		}
		if !ok {
			continue
		}
		factor, ok := CO2Factors[category]
		if !ok {
			continue
		}
		total = total.Add(tx.QuantityKg.Mul(factor))
	}
	return total.Div(kgPerTonne)
}

// CountActiveCenters counts centers with active status.
func CountActiveCenters(centers []models.Center) int {
	var count int
	for _, c := range centers {
		if c.Status == models.CenterActive {
			count++
		}
	}
	return count
}

// TopCentersByProcessedWeight ranks centers by processed weight, heaviest
// first, and keeps the first n. Equal weights keep storage order.
func TopCentersByProcessedWeight(centers []models.Center, n int) []models.CenterWeight {
	ranked := slices.Clone(centers)
	slices.SortStableFunc(ranked, func(a, b models.Center) int {
		return b.ProcessedMaterials.Cmp(a.ProcessedMaterials)
	})
	return FirstCenters(ranked, n)
}

// FirstCenters keeps the first n centers in the given order.
func FirstCenters(centers []models.Center, n int) []models.CenterWeight {
	if n < 0 {
		n = 0
	}
	n = min(n, len(centers))
	out := make([]models.CenterWeight, n)
	for i, c := range centers[:n] {
		out[i] = models.CenterWeight{CenterId: c.Id, City: c.City, Processed: c.ProcessedMaterials}
	}
	return out
}

// CategoryWeightDistribution sums inventory per category in the fixed
// category order, listing only categories that have materials.
func CategoryWeightDistribution(materials []models.Material) []models.CategoryWeight {
	sums := make(map[models.Category]decimal.Decimal)
	for _, m := range materials {
		sums[m.Category] = sums[m.Category].Add(m.InventoryKg)
	}

	out := make([]models.CategoryWeight, 0, len(sums))
	for _, category := range models.Categories {
		if weight, ok := sums[category]; ok {
			out = append(out, models.CategoryWeight{Category: category, WeightKg: weight})
		}
	}
	return out
}

// DailyTransactionCounts counts transactions per UTC calendar day over the
// last days days ending today, oldest first.
func DailyTransactionCounts(transactions []models.Transaction, days int, now time.Time) []models.DailyCount {
	if days <= 0 {
		days = DefaultDays
	}

	today := now.UTC()
	out := make([]models.DailyCount, days)
	position := make(map[string]int, days)
	for i := 0; i < days; i++ {
		date := today.AddDate(0, 0, i-days+1).Format(time.DateOnly)
		out[i] = models.DailyCount{Date: date}
		position[date] = i
	}

	for _, tx := range transactions {
		if i, ok := position[tx.Date.UTC().Format(time.DateOnly)]; ok {
			out[i].Count++
		}
	}
	return out
}

// RecentTransactions returns up to limit transactions, newest first.
func RecentTransactions(transactions []models.Transaction, limit int) []models.Transaction {
	recent := slices.Clone(transactions)
	slices.SortStableFunc(recent, func(a, b models.Transaction) int {
		return cmp.Compare(b.Date.UnixNano(), a.Date.UnixNano())
	})
	if limit >= 0 && len(recent) > limit {
		recent = recent[:limit]
	}
	return recent
}

// Dashboard bundles every aggregate for snap at time now.
func Dashboard(snap models.Snapshot, now time.Time, topN int) models.DashboardSummary {
	lookup := store.NewLookup(snap)
	return models.DashboardSummary{
		TotalTokens:          CountDistinctTokens(snap.Transactions),
		ActiveMaterials:      len(snap.Materials),
		CollectedTonnes:      SumCollectedWeight(snap.Transactions),
		TransactionCount:     len(snap.Transactions),
		CO2SavedTonnes:       EstimateCO2Saved(snap.Materials, snap.Transactions),
		ActiveCenters:        CountActiveCenters(snap.Centers),
		TopCenters:           TopCentersByProcessedWeight(snap.Centers, topN),
		CategoryDistribution: CategoryWeightDistribution(snap.Materials),
		DailyActivity:        DailyTransactionCounts(snap.Transactions, DefaultDays, now),
		RecentActivity:       lookup.ResolveTransactions(RecentTransactions(snap.Transactions, RecentActivityLimit)),
		GeneratedAt:          now.UTC(),
	}
}
