package marketplace

import (
	"context"
	"errors"
	"testing"
	"time"

	"recytoken-up-go/internal/ledger"
	"recytoken-up-go/internal/models"
	"recytoken-up-go/internal/payments"
	"recytoken-up-go/internal/search"
	"recytoken-up-go/internal/seed"
	"recytoken-up-go/internal/store"

	"github.com/shopspring/decimal"
)

var testNow = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

type failingProcessor struct{}

func (failingProcessor) Charge(context.Context, payments.ChargeRequest) (*models.PaymentReceipt, error) {
	return nil, errors.New("card declined")
}

func setupMarketplace(t *testing.T, processor payments.Processor) (*Service, *store.EntityStore, *ledger.Simulated) {
	entityStore := store.NewEntityStore(store.NewMemoryBackend(), nil)
	entityStore.SetClock(func() time.Time { return testNow })
	if err := entityStore.Load(context.Background(), seed.Defaults(testNow)); err != nil {
		t.Fatalf("Failed to load store: %v", err)
	}
	recorder := ledger.NewSimulated()
	svc := NewService(entityStore, processor, recorder)
	svc.now = func() time.Time { return testNow }
	return svc, entityStore, recorder
}

func kg(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func TestCheckoutCard(t *testing.T) {
	svc, entityStore, recorder := setupMarketplace(t, payments.NewSimulated())
	ctx := context.Background()

	result, err := svc.Checkout(ctx, CheckoutRequest{MaterialId: "M001", QuantityKg: kg(100), PaymentMethod: payments.MethodCard})
	if err != nil {
		t.Fatalf("Checkout failed: %v", err)
	}
	if !result.Success {
		t.Fatal("Expected success")
	}
	if !result.Quote.TotalNIO.Equal(kg(1500)) {
		t.Errorf("TotalNIO = %s, want 1500", result.Quote.TotalNIO)
	}
	if !result.Quote.TotalUSD.Equal(decimal.RequireFromString("40.54")) {
		t.Errorf("TotalUSD = %s, want 40.54", result.Quote.TotalUSD)
	}

	m, _ := entityStore.Material("M001")
	if !m.InventoryKg.Equal(kg(1100)) {
		t.Errorf("InventoryKg = %s, want 1100", m.InventoryKg)
	}

	snap := entityStore.Snapshot()
	first := snap.Transactions[0]
	if first.Id != result.Transaction.Id {
		t.Errorf("Expected sale to be prepended, first is %s", first.Id)
	}
	if first.Status != models.StatusSold || first.CenterId != models.MarketplaceBuyerId {
		t.Errorf("Unexpected sale %+v", first)
	}
	if first.MaterialTokenId != "TKN-PET-001X" || !first.Date.Equal(testNow) {
		t.Errorf("Unexpected sale token/date %+v", first)
	}

	entries, _ := recorder.History(ctx, "TKN-PET-001X")
	if len(entries) != 1 || entries[0].Destination != "tokens:TKN-PET-001X:sold" {
		t.Errorf("Unexpected ledger entries %+v", entries)
	}
}

func TestCheckoutCrypto(t *testing.T) {
	svc, _, _ := setupMarketplace(t, payments.NewSimulated())

	result, err := svc.Checkout(context.Background(), CheckoutRequest{
		MaterialId:    "M004",
		QuantityKg:    kg(370),
		PaymentMethod: payments.MethodCrypto,
		CryptoAsset:   "USDT",
	})
	if err != nil {
		t.Fatalf("Checkout failed: %v", err)
	}
	// 370 kg x 40 = 14800 NIO = 400 USD = 400 USDT
	if !result.Quote.CryptoAmount.Equal(kg(400)) {
		t.Errorf("CryptoAmount = %s, want 400", result.Quote.CryptoAmount)
	}
	if result.Payment.Currency != "USDT" {
		t.Errorf("Payment currency = %s", result.Payment.Currency)
	}
}

func TestCheckoutValidation(t *testing.T) {
	tests := []struct {
		name    string
		req     CheckoutRequest
		wantErr error
	}{
		{"zero quantity", CheckoutRequest{MaterialId: "M001", QuantityKg: kg(0), PaymentMethod: payments.MethodCard}, ErrInvalidQuantity},
		{"negative quantity", CheckoutRequest{MaterialId: "M001", QuantityKg: kg(-5), PaymentMethod: payments.MethodCard}, ErrInvalidQuantity},
		{"over inventory", CheckoutRequest{MaterialId: "M001", QuantityKg: kg(1201), PaymentMethod: payments.MethodCard}, store.ErrInsufficientInventory},
		{"missing method", CheckoutRequest{MaterialId: "M001", QuantityKg: kg(1)}, ErrPaymentMethodRequired},
		{"unknown method", CheckoutRequest{MaterialId: "M001", QuantityKg: kg(1), PaymentMethod: "Efectivo"}, payments.ErrUnsupportedMethod},
		{"crypto without asset", CheckoutRequest{MaterialId: "M001", QuantityKg: kg(1), PaymentMethod: payments.MethodCrypto}, ErrCryptoAssetRequired},
		{"unsupported asset", CheckoutRequest{MaterialId: "M001", QuantityKg: kg(1), PaymentMethod: payments.MethodCrypto, CryptoAsset: "Dogecoin"}, payments.ErrUnsupportedCrypto},
		{"unknown material", CheckoutRequest{MaterialId: "M999", QuantityKg: kg(1), PaymentMethod: payments.MethodCard}, store.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, entityStore, _ := setupMarketplace(t, payments.NewSimulated())
			_, err := svc.Checkout(context.Background(), tt.req)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Expected %v, got %v", tt.wantErr, err)
			}
			if n := len(entityStore.Snapshot().Transactions); n != 5 {
				t.Errorf("Expected no new transaction, have %d", n)
			}
		})
	}
}

func TestCheckoutEntireInventory(t *testing.T) {
	svc, entityStore, _ := setupMarketplace(t, payments.NewSimulated())
	if _, err := svc.Checkout(context.Background(), CheckoutRequest{MaterialId: "M006", QuantityKg: kg(150), PaymentMethod: payments.MethodBankTransfer}); err != nil {
		t.Fatalf("Checkout failed: %v", err)
	}
	m, _ := entityStore.Material("M006")
	if !m.InventoryKg.IsZero() {
		t.Errorf("InventoryKg = %s, want 0", m.InventoryKg)
	}
}

func TestCheckoutPaymentFailureReleasesInventory(t *testing.T) {
	svc, entityStore, _ := setupMarketplace(t, failingProcessor{})

	_, err := svc.Checkout(context.Background(), CheckoutRequest{MaterialId: "M002", QuantityKg: kg(500), PaymentMethod: payments.MethodCard})
	if err == nil {
		t.Fatal("Expected payment error")
	}
	m, _ := entityStore.Material("M002")
	if !m.InventoryKg.Equal(kg(3500)) {
		t.Errorf("InventoryKg = %s, want 3500", m.InventoryKg)
	}
	if n := len(entityStore.Snapshot().Transactions); n != 5 {
		t.Errorf("Expected no new transaction, have %d", n)
	}
}

func TestQuoteHasNoSideEffects(t *testing.T) {
	svc, entityStore, _ := setupMarketplace(t, payments.NewSimulated())
	quote, err := svc.Quote(CheckoutRequest{MaterialId: "M001", QuantityKg: kg(10), PaymentMethod: payments.MethodCard, CryptoAsset: "Bitcoin"})
	if err != nil {
		t.Fatalf("Quote failed: %v", err)
	}
	if quote.CryptoAsset != "" {
		t.Errorf("Expected non-crypto quote, got asset %q", quote.CryptoAsset)
	}
	m, _ := entityStore.Material("M001")
	if !m.InventoryKg.Equal(kg(1200)) {
		t.Error("Quote changed inventory")
	}
}

func TestSeller(t *testing.T) {
	svc, _, _ := setupMarketplace(t, payments.NewSimulated())
	tests := []struct {
		name     string
		material models.Material
		wantId   string
		wantOk   bool
	}{
		{"by center id", models.Material{CenterId: "C03", Location: "Managua"}, "C03", true},
		{"falls back to city", models.Material{Location: "León"}, "C02", true},
		{"dangling center id uses city", models.Material{CenterId: "C99", Location: "Masaya"}, "C04", true},
		{"no match", models.Material{Location: "Bluefields"}, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, ok := svc.Seller(tt.material)
			if ok != tt.wantOk || c.Id != tt.wantId {
				t.Errorf("Seller = (%s, %v), want (%s, %v)", c.Id, ok, tt.wantId, tt.wantOk)
			}
		})
	}
}

func TestListing(t *testing.T) {
	svc, _, _ := setupMarketplace(t, payments.NewSimulated())
	got := svc.Listing(search.MaterialCriteria{Category: string(models.CategoryPaper), MaxPrice: "8"})
	if len(got) != 1 || got[0].Id != "M002" {
		t.Errorf("Unexpected listing %+v", got)
	}
}
