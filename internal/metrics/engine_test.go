package metrics

import (
	"testing"
	"time"

	"recytoken-up-go/internal/models"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

var testNow = time.Date(2025, 3, 10, 15, 30, 0, 0, time.UTC)

func TestEmptyInputs(t *testing.T) {
	if got := CountDistinctTokens(nil); got != 0 {
		t.Errorf("CountDistinctTokens(nil) = %d, want 0", got)
	}
	if got := SumCollectedWeight(nil); !got.IsZero() {
		t.Errorf("SumCollectedWeight(nil) = %s, want 0", got)
	}
	if got := EstimateCO2Saved(nil, nil); !got.IsZero() {
		t.Errorf("EstimateCO2Saved(nil, nil) = %s, want 0", got)
	}
	if got := CountActiveCenters(nil); got != 0 {
		t.Errorf("CountActiveCenters(nil) = %d, want 0", got)
	}
	if got := TopCentersByProcessedWeight(nil, 5); len(got) != 0 {
		t.Errorf("TopCentersByProcessedWeight(nil) = %v, want empty", got)
	}
	if got := CategoryWeightDistribution(nil); len(got) != 0 {
		t.Errorf("CategoryWeightDistribution(nil) = %v, want empty", got)
	}

	days := DailyTransactionCounts(nil, 7, testNow)
	if len(days) != 7 {
		t.Fatalf("Expected 7 days, got %d", len(days))
	}
	for _, d := range days {
		if d.Count != 0 {
			t.Errorf("Expected zero count for %s, got %d", d.Date, d.Count)
		}
	}

	summary := Dashboard(models.Snapshot{}, testNow, 5)
	if summary.TotalTokens != 0 || !summary.CollectedTonnes.IsZero() || len(summary.RecentActivity) != 0 {
		t.Errorf("Expected zero dashboard, got %+v", summary)
	}
}

func TestCountDistinctTokens(t *testing.T) {
	txs := []models.Transaction{
		{Id: "T1", MaterialTokenId: "TKN-PET-001X"},
		{Id: "T2", MaterialTokenId: "TKN-PAP-002Y"},
		{Id: "T3", MaterialTokenId: "TKN-PET-001X"},
		{Id: "T4", MaterialTokenId: "TKN-PET-001X"},
	}
	if got := CountDistinctTokens(txs); got != 2 {
		t.Errorf("Expected 2 distinct tokens, got %d", got)
	}
}

func TestSumCollectedWeight(t *testing.T) {
	tests := []struct {
		name string
		kg   []string
		want string
	}{
		{"whole tonnes", []string{"1000", "2000"}, "3"},
		{"mock data", []string{"250", "1200", "500", "100", "300"}, "2.35"},
		{"rounds to two places", []string{"1234.567"}, "1.23"},
		{"rounds half up", []string{"1235"}, "1.24"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var txs []models.Transaction
			for _, kg := range tt.kg {
				txs = append(txs, models.Transaction{QuantityKg: dec(kg)})
			}
			if got := SumCollectedWeight(txs); !got.Equal(dec(tt.want)) {
				t.Errorf("SumCollectedWeight = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestEstimateCO2SavedSingleMaterial(t *testing.T) {
	materials := []models.Material{{Id: "M001", Name: "Botellas PET", Category: models.CategoryPlastic, InventoryKg: dec("100"), TokenId: "TKN-PET-001X"}}
	txs := []models.Transaction{{MaterialId: "M001", MaterialTokenId: "TKN-PET-001X", QuantityKg: dec("100")}}

	if got := EstimateCO2Saved(materials, txs); !got.Equal(dec("0.15")) {
		t.Errorf("EstimateCO2Saved = %s, want 0.15", got)
	}
}

func TestEstimateCO2SavedFactors(t *testing.T) {
	var materials []models.Material
	var txs []models.Transaction
	for i, category := range models.Categories {
		id := string(rune('A' + i))
		materials = append(materials, models.Material{Id: id, Category: category})
		txs = append(txs, models.Transaction{MaterialId: id, QuantityKg: dec("1000")})
	}

	// 1.5 + 0.9 + 0.3 + 5.0 + 0.1 + 10.0
	if got := EstimateCO2Saved(materials, txs); !got.Equal(dec("17.8")) {
		t.Errorf("EstimateCO2Saved = %s, want 17.8", got)
	}
}

func TestEstimateCO2SavedSkipsUnresolved(t *testing.T) {
	materials := []models.Material{{Id: "M001", Category: models.CategoryMetal, TokenId: "TKN-MET-004A"}}
	txs := []models.Transaction{
		{MaterialId: "M001", QuantityKg: dec("200")},
		{MaterialId: "M404", MaterialTokenId: "TKN-UNKNOWN", QuantityKg: dec("999")},
		{MaterialId: "", MaterialTokenId: "TKN-MET-004A", QuantityKg: dec("100")},
	}

	// Only the resolvable 300 kg of metal count: 300 * 5.0 / 1000.
	if got := EstimateCO2Saved(materials, txs); !got.Equal(dec("1.5")) {
		t.Errorf("EstimateCO2Saved = %s, want 1.5", got)
	}
}

func TestEstimateCO2SavedIsLinear(t *testing.T) {
	materials := []models.Material{
		{Id: "M1", Category: models.CategoryPlastic},
		{Id: "M2", Category: models.CategoryGlass},
		{Id: "M3", Category: models.CategoryElectronic},
	}
	txs := []models.Transaction{
		{MaterialId: "M1", QuantityKg: dec("250")},
		{MaterialId: "M2", QuantityKg: dec("33.3")},
		{MaterialId: "M3", QuantityKg: dec("7")},
		{MaterialId: "missing", QuantityKg: dec("50")},
	}
	doubled := make([]models.Transaction, len(txs))
	for i, tx := range txs {
		tx.QuantityKg = tx.QuantityKg.Mul(decimal.NewFromInt(2))
		doubled[i] = tx
	}

	base := EstimateCO2Saved(materials, txs)
	if got := EstimateCO2Saved(materials, doubled); !got.Equal(base.Mul(decimal.NewFromInt(2))) {
		t.Errorf("Doubling quantities gave %s, want %s", got, base.Mul(decimal.NewFromInt(2)))
	}
}

func TestCountActiveCenters(t *testing.T) {
	centers := []models.Center{
		{City: "Managua", Status: models.CenterActive},
		{City: "León", Status: models.CenterInactive},
	}
	if got := CountActiveCenters(centers); got != 1 {
		t.Errorf("CountActiveCenters = %d, want 1", got)
	}
}

// The ranking sorts by processed weight before truncating. FirstCenters
// keeps the plain storage-order behavior for callers that want it.
func TestTopCentersSortsByProcessedWeight(t *testing.T) {
	centers := []models.Center{
		{Id: "C01", City: "Managua", ProcessedMaterials: dec("15000")},
		{Id: "C02", City: "León", ProcessedMaterials: dec("8000")},
		{Id: "C03", City: "Granada", ProcessedMaterials: dec("5500")},
		{Id: "C04", City: "Masaya", ProcessedMaterials: dec("12000")},
		{Id: "C05", City: "Estelí", ProcessedMaterials: dec("8000")},
	}

	top := TopCentersByProcessedWeight(centers, 3)
	want := []string{"C01", "C04", "C02"}
	if len(top) != len(want) {
		t.Fatalf("Expected %d centers, got %d", len(want), len(top))
	}
	for i, id := range want {
		if top[i].CenterId != id {
			t.Errorf("top[%d] = %s, want %s", i, top[i].CenterId, id)
		}
	}

	// Tied weights keep storage order.
	top = TopCentersByProcessedWeight(centers, 4)
	if top[2].CenterId != "C02" || top[3].CenterId != "C05" {
		t.Errorf("Expected tie C02 before C05, got %s, %s", top[2].CenterId, top[3].CenterId)
	}

	first := FirstCenters(centers, 2)
	if first[0].CenterId != "C01" || first[1].CenterId != "C02" {
		t.Errorf("FirstCenters should keep storage order, got %v", first)
	}

	if got := TopCentersByProcessedWeight(centers, 10); len(got) != 5 {
		t.Errorf("Expected n larger than input to return all 5, got %d", len(got))
	}
	if got := TopCentersByProcessedWeight(centers, -1); len(got) != 0 {
		t.Errorf("Expected negative n to return none, got %d", len(got))
	}
}

func TestTopCentersDoesNotMutateInput(t *testing.T) {
	centers := []models.Center{
		{Id: "C01", ProcessedMaterials: dec("1")},
		{Id: "C02", ProcessedMaterials: dec("2")},
	}
	TopCentersByProcessedWeight(centers, 2)
	if centers[0].Id != "C01" {
		t.Error("Expected input order to be preserved")
	}
}

func TestCategoryWeightDistribution(t *testing.T) {
	materials := []models.Material{
		{Category: models.CategoryPaper, InventoryKg: dec("3500")},
		{Category: models.CategoryPlastic, InventoryKg: dec("1200")},
		{Category: models.CategoryPaper, InventoryKg: dec("900")},
		{Category: models.CategoryGlass, InventoryKg: dec("0")},
	}

	got := CategoryWeightDistribution(materials)
	want := []models.CategoryWeight{
		{Category: models.CategoryPlastic, WeightKg: dec("1200")},
		{Category: models.CategoryPaper, WeightKg: dec("4400")},
		{Category: models.CategoryGlass, WeightKg: dec("0")},
	}
	if len(got) != len(want) {
		t.Fatalf("Expected %d categories, got %d: %v", len(want), len(got), got)
	}
	for i := range want {
		if got[i].Category != want[i].Category || !got[i].WeightKg.Equal(want[i].WeightKg) {
			t.Errorf("got[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestDailyTransactionCounts(t *testing.T) {
	txs := []models.Transaction{
		{Date: testNow},
		{Date: time.Date(2025, 3, 10, 0, 0, 1, 0, time.UTC)},
		{Date: time.Date(2025, 3, 9, 23, 59, 59, 0, time.UTC)},
		{Date: time.Date(2025, 3, 4, 8, 0, 0, 0, time.UTC)},
		{Date: time.Date(2025, 3, 3, 8, 0, 0, 0, time.UTC)},  // outside the window
		{Date: time.Date(2025, 3, 11, 8, 0, 0, 0, time.UTC)}, // future
	}

	got := DailyTransactionCounts(txs, 7, testNow)
	want := []models.DailyCount{
		{Date: "2025-03-04", Count: 1},
		{Date: "2025-03-05"},
		{Date: "2025-03-06"},
		{Date: "2025-03-07"},
		{Date: "2025-03-08"},
		{Date: "2025-03-09", Count: 1},
		{Date: "2025-03-10", Count: 2},
	}
	if len(got) != len(want) {
		t.Fatalf("Expected %d days, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("day %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestDailyTransactionCountsDefaultsWindow(t *testing.T) {
	if got := DailyTransactionCounts(nil, 0, testNow); len(got) != DefaultDays {
		t.Errorf("Expected %d days, got %d", DefaultDays, len(got))
	}
	if got := DailyTransactionCounts(nil, 30, testNow); len(got) != 30 || got[29].Date != "2025-03-10" {
		t.Errorf("Expected 30 days ending today, got %d", len(got))
	}
}

func TestDashboard(t *testing.T) {
	snap := models.Snapshot{
		Materials: []models.Material{
			{Id: "M001", Name: "Botellas PET", Category: models.CategoryPlastic, InventoryKg: dec("1200"), TokenId: "TKN-PET-001X"},
		},
		Centers: []models.Center{
			{Id: "C01", CompanyName: "Recicladora del Norte S.A.", City: "Managua", Status: models.CenterActive, ProcessedMaterials: dec("15000")},
		},
		Transactions: []models.Transaction{
			{Id: "T1", MaterialId: "M001", MaterialTokenId: "TKN-PET-001X", QuantityKg: dec("500"), CenterId: "C01", Date: testNow.Add(-48 * time.Hour)},
			{Id: "T2", MaterialId: "M001", MaterialTokenId: "TKN-PET-001X", QuantityKg: dec("250"), CenterId: "C01", Date: testNow.Add(-24 * time.Hour)},
		},
	}

	summary := Dashboard(snap, testNow, 5)

	if summary.TotalTokens != 1 || summary.TransactionCount != 2 || summary.ActiveMaterials != 1 || summary.ActiveCenters != 1 {
		t.Errorf("Unexpected counts: %+v", summary)
	}
	if !summary.CollectedTonnes.Equal(dec("0.75")) {
		t.Errorf("CollectedTonnes = %s, want 0.75", summary.CollectedTonnes)
	}
	if !summary.CO2SavedTonnes.Equal(dec("1.125")) {
		t.Errorf("CO2SavedTonnes = %s, want 1.125", summary.CO2SavedTonnes)
	}
	if len(summary.RecentActivity) != 2 || summary.RecentActivity[0].Id != "T2" {
		t.Fatalf("Expected newest transaction first, got %+v", summary.RecentActivity)
	}
	if summary.RecentActivity[0].MaterialName != "Botellas PET" || summary.RecentActivity[0].CenterName != "Recicladora del Norte S.A." {
		t.Errorf("Expected resolved names, got %+v", summary.RecentActivity[0])
	}
}
