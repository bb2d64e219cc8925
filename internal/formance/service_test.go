package formance

import (
	"context"
	"math/big"
	"strings"
	"testing"
	"time"

	"recytoken-up-go/internal/models"

	"github.com/formancehq/formance-sdk-go/v3/pkg/models/shared"
	"github.com/shopspring/decimal"
)

// ---------- Unit tests for pure helpers (no Formance stack needed) ----------

func TestKgUnits(t *testing.T) {
	tests := []struct {
		kg   string
		want string
	}{
		{"1", "1000"},
		{"250.5", "250500"},
		{"0.001", "1"},
		{"0", "0"},
	}
	for _, tt := range tests {
		if got := kgUnits(decimal.RequireFromString(tt.kg)).String(); got != tt.want {
			t.Errorf("kgUnits(%s) = %s, want %s", tt.kg, got, tt.want)
		}
	}
}

func TestUnitsToKg(t *testing.T) {
	if got := unitsToKg(big.NewInt(250500)); !got.Equal(decimal.RequireFromString("250.5")) {
		t.Errorf("expected 250.5, got %s", got)
	}
	if got := unitsToKg(nil); !got.IsZero() {
		t.Errorf("expected 0, got %s", got)
	}
}

func TestIsConflictError(t *testing.T) {
	if isConflictError(nil) {
		t.Error("nil should not be a conflict error")
	}
}

func TestToLedgerEntry(t *testing.T) {
	ts := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)
	tx := shared.V2Transaction{
		ID:        big.NewInt(42),
		Reference: strPtr("T001"),
		Timestamp: ts,
		Metadata:  map[string]string{"event_type": "collected", "token_id": "TKN1"},
		Postings: []shared.V2Posting{
			{Source: "tokens:TKN1:inventory", Destination: "tokens:TKN1:collected", Asset: kgAsset, Amount: big.NewInt(250000)},
		},
	}

	entry := toLedgerEntry("TKN1", tx)
	if entry.Reference != "T001" {
		t.Errorf("Reference = %q, want T001", entry.Reference)
	}
	if entry.EventType != "collected" || entry.Destination != "tokens:TKN1:collected" {
		t.Errorf("Unexpected entry %+v", entry)
	}
	if !entry.QuantityKg.Equal(decimal.NewFromInt(250)) {
		t.Errorf("QuantityKg = %s, want 250", entry.QuantityKg)
	}
	if !entry.Timestamp.Equal(ts) {
		t.Errorf("Timestamp = %v, want %v", entry.Timestamp, ts)
	}

	tx.Reference = nil
	if got := toLedgerEntry("TKN1", tx).Reference; got != "42" {
		t.Errorf("Reference without reference = %q, want 42", got)
	}
}

func TestCollectHistoryFollowsCursor(t *testing.T) {
	txAt := func(id int64, status string) shared.V2Transaction {
		return shared.V2Transaction{
			ID:        big.NewInt(id),
			Metadata:  map[string]string{"event_type": status},
			Timestamp: time.Date(2025, 3, int(id), 0, 0, 0, 0, time.UTC),
		}
	}
	// newest first, split over two pages
	pages := map[string]*shared.V2TransactionsCursorResponseCursor{
		"":       {Data: []shared.V2Transaction{txAt(3, "sold"), txAt(2, "processing")}, HasMore: true, Next: strPtr("page-2")},
		"page-2": {Data: []shared.V2Transaction{txAt(1, "mint")}},
	}
	var cursors []string
	fetch := func(_ context.Context, cursor *string) (*shared.V2TransactionsCursorResponseCursor, error) {
		key := ""
		if cursor != nil {
			key = *cursor
		}
		cursors = append(cursors, key)
		return pages[key], nil
	}

	entries, err := collectHistory(context.Background(), "TKN1", fetch)
	if err != nil {
		t.Fatalf("collectHistory failed: %v", err)
	}
	if len(cursors) != 2 || cursors[1] != "page-2" {
		t.Errorf("Unexpected cursors %v", cursors)
	}
	if len(entries) != 3 {
		t.Fatalf("Expected 3 entries, got %d", len(entries))
	}
	if entries[0].EventType != "mint" || entries[2].EventType != "sold" {
		t.Errorf("Entries not oldest first: %s .. %s", entries[0].EventType, entries[2].EventType)
	}
}

func TestCollectHistoryStopsAtPageLimit(t *testing.T) {
	calls := 0
	fetch := func(context.Context, *string) (*shared.V2TransactionsCursorResponseCursor, error) {
		calls++
		return &shared.V2TransactionsCursorResponseCursor{HasMore: true, Next: strPtr("again")}, nil
	}
	if _, err := collectHistory(context.Background(), "TKN1", fetch); err != nil {
		t.Fatalf("collectHistory failed: %v", err)
	}
	if calls != maxHistoryPages {
		t.Errorf("Expected %d page reads, got %d", maxHistoryPages, calls)
	}
}

func TestCheckoutMetadata(t *testing.T) {
	cc := &models.CheckoutContext{
		PaymentReference: "PAY-1",
		PaymentMethod:    "Criptomoneda",
		CryptoAsset:      "USDT",
		CompletedAt:      time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC),
	}
	meta := checkoutMetadata(cc)
	if meta["payment_reference"] != "PAY-1" || meta["crypto_asset"] != "USDT" {
		t.Errorf("Unexpected metadata %v", meta)
	}
	if _, ok := meta["seller_center_id"]; ok {
		t.Error("Expected empty seller to be omitted")
	}
	if meta["completed_at"] != "2025-03-01T08:00:00Z" {
		t.Errorf("completed_at = %q", meta["completed_at"])
	}
}

func TestNumscriptsTagToken(t *testing.T) {
	for name, script := range map[string]string{"mint": numscriptMint, "transfer": numscriptStageTransfer} {
		if !strings.Contains(script, `set_tx_meta("token_id", $token_id)`) {
			t.Errorf("%s script does not tag the token", name)
		}
	}
}

func TestNewRecorderRequiresCredentials(t *testing.T) {
	if _, err := NewRecorder(context.Background(), models.FormanceConfig{StackURL: "http://localhost"}); err == nil {
		t.Error("Expected error for missing credentials")
	}
}
