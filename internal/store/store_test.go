package store

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"recytoken-up-go/internal/models"

	"github.com/shopspring/decimal"
)

type recordingPublisher struct {
	events []models.ChangeEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, event models.ChangeEvent) error {
	p.events = append(p.events, event)
	return p.err
}

func testSeed() models.Snapshot {
	return models.Snapshot{
		Materials: []models.Material{
			{Id: "M001", Name: "Botellas PET", Category: models.CategoryPlastic, InventoryKg: decimal.NewFromInt(1200), PricePerKg: decimal.NewFromInt(15), Location: "Managua", TokenId: "TKN-PET-001X", CenterId: "C01"},
			{Id: "M002", Name: "Cartón Corrugado", Category: models.CategoryPaper, InventoryKg: decimal.NewFromInt(3500), PricePerKg: decimal.NewFromInt(8), Location: "León", TokenId: "TKN-PAP-002Y", CenterId: "C02"},
		},
		Centers: []models.Center{
			{Id: "C01", CompanyName: "Recicladora del Norte S.A.", City: "Managua", Status: models.CenterActive, Rating: 4.5},
			{Id: "C02", CompanyName: "Vidrios y Plásticos de León", City: "León", Status: models.CenterActive, Rating: 4.2},
		},
		Transactions: []models.Transaction{
			{Id: "T001", MaterialId: "M001", MaterialTokenId: "TKN-PET-001X", QuantityKg: decimal.NewFromInt(250), CenterId: "C01", Status: models.StatusProcessed},
		},
	}
}

func setupTestStore(t *testing.T) (*EntityStore, *MemoryBackend, *recordingPublisher) {
	backend := NewMemoryBackend()
	publisher := &recordingPublisher{}
	s := NewEntityStore(backend, publisher)
	s.SetClock(func() time.Time { return time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC) })
	if err := s.Load(context.Background(), testSeed()); err != nil {
		t.Fatalf("Failed to load store: %v", err)
	}
	return s, backend, publisher
}

func TestLoadSeedsAndPersists(t *testing.T) {
	s, backend, _ := setupTestStore(t)

	snap := s.Snapshot()
	if len(snap.Materials) != 2 || len(snap.Centers) != 2 || len(snap.Transactions) != 1 {
		t.Fatalf("Unexpected snapshot sizes: %d/%d/%d", len(snap.Materials), len(snap.Centers), len(snap.Transactions))
	}

	for _, key := range CollectionKeys {
		if _, err := backend.Load(context.Background(), key); err != nil {
			t.Errorf("Expected seeded collection %s to be persisted: %v", key, err)
		}
	}

	data, _ := backend.Load(context.Background(), models.EntityInvoices)
	if string(data) != "[]" {
		t.Errorf("Expected empty invoice collection to persist as [], got %s", data)
	}
}

func TestLoadPrefersStoredSnapshot(t *testing.T) {
	backend := NewMemoryBackend()
	stored := []models.Center{{Id: "C99", CompanyName: "Stored Center", Status: models.CenterActive}}
	data, err := json.Marshal(stored)
	if err != nil {
		t.Fatalf("Failed to marshal: %v", err)
	}
	if err := backend.Save(context.Background(), models.EntityCenters, data); err != nil {
		t.Fatalf("Failed to save: %v", err)
	}

	s := NewEntityStore(backend, nil)
	if err := s.Load(context.Background(), testSeed()); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	snap := s.Snapshot()
	if len(snap.Centers) != 1 || snap.Centers[0].Id != "C99" {
		t.Errorf("Expected stored centers to win over seed, got %+v", snap.Centers)
	}
	if len(snap.Materials) != 2 {
		t.Errorf("Expected seeded materials, got %d", len(snap.Materials))
	}
}

func TestLoadCorruptSnapshot(t *testing.T) {
	backend := NewMemoryBackend()
	_ = backend.Save(context.Background(), models.EntityMaterials, []byte("{not json"))

	s := NewEntityStore(backend, nil)
	if err := s.Load(context.Background(), testSeed()); err == nil {
		t.Fatal("Expected error for corrupt snapshot")
	}
}

func TestCreateMaterialPrependsAndDefaults(t *testing.T) {
	s, backend, publisher := setupTestStore(t)
	ctx := context.Background()
	savesBefore := backend.Saves()

	created, err := s.CreateMaterial(ctx, models.Material{
		Name:        "Vidrio Ámbar",
		Category:    models.CategoryGlass,
		InventoryKg: decimal.NewFromInt(850),
		PricePerKg:  decimal.NewFromInt(5),
		Location:    "Managua",
	})
	if err != nil {
		t.Fatalf("CreateMaterial failed: %v", err)
	}

	if !strings.HasPrefix(created.Id, MaterialPrefix+"-") {
		t.Errorf("Expected generated id with prefix %s, got %s", MaterialPrefix, created.Id)
	}
	if !strings.HasPrefix(created.TokenId, "TKN") || len(created.TokenId) != 9 {
		t.Errorf("Expected generated token TKN + 6 digits, got %s", created.TokenId)
	}
	if !strings.HasPrefix(created.WalletAddress, "0x") || !strings.HasSuffix(created.WalletAddress, "...") {
		t.Errorf("Unexpected wallet address %s", created.WalletAddress)
	}

	snap := s.Snapshot()
	if snap.Materials[0].Id != created.Id {
		t.Errorf("Expected new material first, got %s", snap.Materials[0].Id)
	}
	if backend.Saves() != savesBefore+1 {
		t.Errorf("Expected one write-through, got %d", backend.Saves()-savesBefore)
	}

	last := publisher.events[len(publisher.events)-1]
	if last.Type() != "materials.created" || last.Id != created.Id {
		t.Errorf("Unexpected change event %+v", last)
	}

	// Index must follow the shifted positions.
	m, err := s.Material("M002")
	if err != nil || m.Name != "Cartón Corrugado" {
		t.Errorf("Expected M002 lookup after prepend, got %+v, %v", m, err)
	}
}

func TestCreateMaterialValidation(t *testing.T) {
	s, _, _ := setupTestStore(t)
	ctx := context.Background()

	tests := []struct {
		name string
		m    models.Material
	}{
		{"missing name", models.Material{Category: models.CategoryPlastic}},
		{"unknown category", models.Material{Name: "Madera", Category: "Madera"}},
		{"negative inventory", models.Material{Name: "PET", Category: models.CategoryPlastic, InventoryKg: decimal.NewFromInt(-1)}},
		{"negative price", models.Material{Name: "PET", Category: models.CategoryPlastic, PricePerKg: decimal.NewFromInt(-1)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := s.CreateMaterial(ctx, tt.m); !errors.Is(err, ErrInvalidEntity) {
				t.Errorf("Expected ErrInvalidEntity, got %v", err)
			}
		})
	}
}

func TestCreateDuplicateId(t *testing.T) {
	s, _, _ := setupTestStore(t)

	_, err := s.CreateMaterial(context.Background(), models.Material{Id: "M001", Name: "PET", Category: models.CategoryPlastic})
	if !errors.Is(err, ErrDuplicateId) {
		t.Errorf("Expected ErrDuplicateId, got %v", err)
	}
}

func TestUpdateAndDeleteMaterial(t *testing.T) {
	s, _, _ := setupTestStore(t)
	ctx := context.Background()

	m, _ := s.Material("M001")
	m.Name = "Botellas PET Premium"
	if err := s.UpdateMaterial(ctx, m); err != nil {
		t.Fatalf("UpdateMaterial failed: %v", err)
	}

	// Names are resolved at read time, so existing transactions follow the rename.
	view := s.Lookup().ResolveTransaction(s.Snapshot().Transactions[0])
	if view.MaterialName != "Botellas PET Premium" {
		t.Errorf("Expected renamed material in transaction view, got %s", view.MaterialName)
	}

	if err := s.DeleteMaterial(ctx, "M001"); err != nil {
		t.Fatalf("DeleteMaterial failed: %v", err)
	}
	if _, err := s.Material("M001"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound after delete, got %v", err)
	}
	if err := s.DeleteMaterial(ctx, "M001"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound on second delete, got %v", err)
	}
	if err := s.UpdateMaterial(ctx, m); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound updating deleted material, got %v", err)
	}
}

func TestAdjustInventory(t *testing.T) {
	s, _, _ := setupTestStore(t)
	ctx := context.Background()

	m, err := s.AdjustInventory(ctx, "M001", decimal.NewFromInt(-200))
	if err != nil {
		t.Fatalf("AdjustInventory failed: %v", err)
	}
	if !m.InventoryKg.Equal(decimal.NewFromInt(1000)) {
		t.Errorf("Expected 1000 kg, got %s", m.InventoryKg)
	}

	_, err = s.AdjustInventory(ctx, "M001", decimal.NewFromInt(-1001))
	if !errors.Is(err, ErrInsufficientInventory) {
		t.Errorf("Expected ErrInsufficientInventory, got %v", err)
	}

	stored, _ := s.Material("M001")
	if !stored.InventoryKg.Equal(decimal.NewFromInt(1000)) {
		t.Errorf("Expected inventory unchanged after rejected adjustment, got %s", stored.InventoryKg)
	}
}

func TestCreateCenterAppendsWithDefaults(t *testing.T) {
	s, _, _ := setupTestStore(t)

	created, err := s.CreateCenter(context.Background(), models.Center{CompanyName: "Centro de Acopio Masaya", City: "Masaya"})
	if err != nil {
		t.Fatalf("CreateCenter failed: %v", err)
	}
	if created.Status != models.CenterActive {
		t.Errorf("Expected default status %s, got %s", models.CenterActive, created.Status)
	}
	if created.Rating < 3 || created.Rating > 5 {
		t.Errorf("Expected random rating in [3,5], got %v", created.Rating)
	}
	if created.Reviews < 0 || created.Reviews > 49 {
		t.Errorf("Expected random reviews in [0,49], got %d", created.Reviews)
	}

	snap := s.Snapshot()
	if snap.Centers[len(snap.Centers)-1].Id != created.Id {
		t.Error("Expected new center to be appended")
	}
}

func TestCreateTransactionDefaults(t *testing.T) {
	s, _, _ := setupTestStore(t)

	tx, err := s.CreateTransaction(context.Background(), models.Transaction{
		MaterialId: "M002",
		QuantityKg: decimal.NewFromInt(100),
		CenterId:   "C02",
	})
	if err != nil {
		t.Fatalf("CreateTransaction failed: %v", err)
	}
	if tx.MaterialTokenId != "TKN-PAP-002Y" {
		t.Errorf("Expected token copied from material, got %s", tx.MaterialTokenId)
	}
	if tx.Status != models.StatusCollected {
		t.Errorf("Expected default status %s, got %s", models.StatusCollected, tx.Status)
	}
	if !tx.Date.Equal(time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)) {
		t.Errorf("Expected clock date, got %v", tx.Date)
	}
	if s.Snapshot().Transactions[0].Id != tx.Id {
		t.Error("Expected new transaction to be prepended")
	}

	if _, err := s.CreateTransaction(context.Background(), models.Transaction{MaterialId: "M404"}); !errors.Is(err, ErrInvalidEntity) {
		t.Errorf("Expected ErrInvalidEntity without material or token, got %v", err)
	}
}

func TestPersistFailureKeepsMemoryState(t *testing.T) {
	s, backend, _ := setupTestStore(t)
	backend.SaveErr = errors.New("disk full")

	if err := s.DeleteTransaction(context.Background(), "T001"); err != nil {
		t.Fatalf("Expected mutation to succeed despite persistence failure, got %v", err)
	}
	if len(s.Snapshot().Transactions) != 0 {
		t.Error("Expected in-memory delete to stand")
	}
}

func TestPublishFailureDoesNotFailMutation(t *testing.T) {
	s, _, publisher := setupTestStore(t)
	publisher.err = errors.New("broker unavailable")

	if _, err := s.CreateCenter(context.Background(), models.Center{CompanyName: "Nuevo", Rating: 4}); err != nil {
		t.Fatalf("Expected mutation to succeed despite publish failure, got %v", err)
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	s, _, _ := setupTestStore(t)

	snap := s.Snapshot()
	snap.Materials[0].Name = "mutated"

	m, _ := s.Material(snap.Materials[0].Id)
	if m.Name == "mutated" {
		t.Error("Expected Snapshot to return an independent copy")
	}
}

func TestInvoiceLifecycle(t *testing.T) {
	s, _, _ := setupTestStore(t)
	ctx := context.Background()

	inv, err := s.CreateInvoice(ctx, models.Invoice{
		InvoiceNumber: "FAC-2025-001",
		CenterId:      "C01",
		Items:         []models.InvoiceItem{{MaterialId: "M001", QuantityKg: decimal.NewFromInt(10), PricePerKg: decimal.NewFromInt(15), Total: decimal.NewFromInt(150)}},
		Subtotal:      decimal.NewFromInt(150),
	})
	if err != nil {
		t.Fatalf("CreateInvoice failed: %v", err)
	}
	if inv.Status != models.InvoicePending {
		t.Errorf("Expected default status %s, got %s", models.InvoicePending, inv.Status)
	}

	view := s.Lookup().ResolveInvoice(inv)
	if view.CenterName != "Recicladora del Norte S.A." || view.Items[0].MaterialName != "Botellas PET" {
		t.Errorf("Unexpected resolved invoice %+v", view)
	}

	if err := s.TransitionInvoiceStatus(ctx, inv.Id, models.InvoicePaid, models.InvoicePending); err != nil {
		t.Fatalf("TransitionInvoiceStatus failed: %v", err)
	}
	stored, _ := s.Invoice(inv.Id)
	if stored.Status != models.InvoicePaid {
		t.Errorf("Expected paid, got %s", stored.Status)
	}

	err = s.TransitionInvoiceStatus(ctx, inv.Id, models.InvoiceOverdue, models.InvoicePending)
	if !errors.Is(err, ErrStatusConflict) {
		t.Fatalf("Expected ErrStatusConflict, got %v", err)
	}
	stored, _ = s.Invoice(inv.Id)
	if stored.Status != models.InvoicePaid {
		t.Errorf("Conflicting transition overwrote status to %s", stored.Status)
	}
	if err := s.TransitionInvoiceStatus(ctx, "INV-missing", models.InvoicePaid, models.InvoicePending); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}

	if err := s.DeleteInvoice(ctx, inv.Id); err != nil {
		t.Fatalf("DeleteInvoice failed: %v", err)
	}
}

func TestReplace(t *testing.T) {
	s, backend, publisher := setupTestStore(t)
	savesBefore := backend.Saves()

	err := s.Replace(context.Background(), models.Snapshot{
		Centers: []models.Center{{Id: "C77", CompanyName: "Restored"}},
	})
	if err != nil {
		t.Fatalf("Replace failed: %v", err)
	}

	snap := s.Snapshot()
	if len(snap.Materials) != 0 || len(snap.Centers) != 1 {
		t.Errorf("Unexpected snapshot after replace: %+v", snap)
	}
	if _, err := s.Center("C77"); err != nil {
		t.Errorf("Expected restored center to be indexed: %v", err)
	}
	if backend.Saves() != savesBefore+len(CollectionKeys) {
		t.Errorf("Expected all collections written, got %d writes", backend.Saves()-savesBefore)
	}
	if last := publisher.events[len(publisher.events)-1]; last.Action != models.ActionRestored {
		t.Errorf("Expected restored event, got %+v", last)
	}
}

func TestMarketplaceBuyerResolves(t *testing.T) {
	l := NewLookup(testSeed())
	view := l.ResolveTransaction(models.Transaction{MaterialId: "M001", CenterId: models.MarketplaceBuyerId})
	if view.CenterName != models.MarketplaceBuyerName {
		t.Errorf("Expected %s, got %s", models.MarketplaceBuyerName, view.CenterName)
	}
}
