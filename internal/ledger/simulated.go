package ledger

import (
	"context"
	"fmt"
	"sync"
	"time"

	"recytoken-up-go/internal/models"

	"go.uber.org/zap"
)

// Simulated is an in-memory Recorder. Entries are idempotent on reference.
type Simulated struct {
	mu         sync.Mutex
	entries    map[string][]models.LedgerEntry
	references map[string]bool
	now        func() time.Time
}

func NewSimulated() *Simulated {
	return &Simulated{
		entries:    make(map[string][]models.LedgerEntry),
		references: make(map[string]bool),
		now:        time.Now,
	}
}

func (s *Simulated) RecordMint(_ context.Context, material models.Material) error {
	if material.TokenId == "" {
		return fmt.Errorf("material %s has no token", material.Id)
	}
	s.append(models.LedgerEntry{
		Reference:   MintReference(material),
		TokenId:     material.TokenId,
		EventType:   EventMint,
		Source:      WorldAccount,
		Destination: InventoryAccount(material.TokenId),
		QuantityKg:  material.InventoryKg,
		Timestamp:   s.now().UTC(),
	})
	return nil
}

func (s *Simulated) RecordTransaction(ctx context.Context, tx models.Transaction, _ models.Material) error {
	if tx.MaterialTokenId == "" {
		return fmt.Errorf("transaction %s has no token", tx.Id)
	}
	source, destination := Route(tx)
	timestamp := tx.Date
	if cc := models.GetCheckoutContext(ctx); cc != nil && !cc.CompletedAt.IsZero() {
		timestamp = cc.CompletedAt
	}
	if timestamp.IsZero() {
		timestamp = s.now()
	}
	s.append(models.LedgerEntry{
		Reference:   TransactionReference(tx),
		TokenId:     tx.MaterialTokenId,
		EventType:   StageName(tx.Status),
		Source:      source,
		Destination: destination,
		QuantityKg:  tx.QuantityKg,
		Timestamp:   timestamp.UTC(),
	})
	return nil
}

// History returns the entries of tokenId in recording order
func (s *Simulated) History(_ context.Context, tokenId string) ([]models.LedgerEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.LedgerEntry, len(s.entries[tokenId]))
	copy(out, s.entries[tokenId])
	return out, nil
}

func (s *Simulated) append(entry models.LedgerEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.references[entry.Reference] {
		zap.L().Debug("Ledger entry already recorded", zap.String("reference", entry.Reference))
		return
	}
	s.references[entry.Reference] = true
	s.entries[entry.TokenId] = append(s.entries[entry.TokenId], entry)
}
