package formance

import (
	"context"
	"fmt"
	"time"

	"recytoken-up-go/internal/ledger"
	"recytoken-up-go/internal/models"

	"github.com/formancehq/formance-sdk-go/v3/pkg/models/operations"
	"github.com/formancehq/formance-sdk-go/v3/pkg/models/shared"
	"go.uber.org/zap"
)

// ---------------------------------------------------------------------------
// Numscript templates. Metadata is set inside the script so every ledger
// transaction describes itself.
// ---------------------------------------------------------------------------

const numscriptMint = `vars {
  asset $asset
  number $amount
  account $inventory
  string $token_id
  string $material_id
  string $category
  string $location
}

send [$asset $amount] (
  source = @world
  destination = $inventory
)

set_tx_meta("event_type", "mint")
set_tx_meta("token_id", $token_id)
set_tx_meta("material_id", $material_id)
set_tx_meta("category", $category)
set_tx_meta("location", $location)
`

const numscriptStageTransfer = `vars {
  asset $asset
  number $amount
  account $source
  account $destination
  string $event_type
  string $token_id
  string $material_id
  string $center_id
  string $status
}

send [$asset $amount] (
  source = $source allowing unbounded overdraft
  destination = $destination
)

set_tx_meta("event_type", $event_type)
set_tx_meta("token_id", $token_id)
set_tx_meta("material_id", $material_id)
set_tx_meta("center_id", $center_id)
set_tx_meta("status", $status)
`

// RecordMint registers the material's inventory under its token.
func (r *Recorder) RecordMint(ctx context.Context, material models.Material) error {
	if material.TokenId == "" {
		return fmt.Errorf("material %s has no token", material.Id)
	}

	postTx := shared.V2PostTransaction{
		Reference: strPtr(ledger.MintReference(material)),
		Script: &shared.V2PostTransactionScript{
			Plain: numscriptMint,
			Vars: map[string]string{
				"asset":       kgAsset,
				"amount":      kgUnits(material.InventoryKg).String(),
				"inventory":   ledger.InventoryAccount(material.TokenId),
				"token_id":    material.TokenId,
				"material_id": material.Id,
				"category":    string(material.Category),
				"location":    material.Location,
			},
		},
	}

	_, err := r.client.Ledger.V2.CreateTransaction(ctx, operations.V2CreateTransactionRequest{
		Ledger:            r.ledger,
		V2PostTransaction: postTx,
	})
	if err != nil {
		if isConflictError(err) {
			return nil // idempotent
		}
		return fmt.Errorf("error recording mint: %w", err)
	}

	zap.L().Info("Token minted in Formance",
		zap.String("token_id", material.TokenId),
		zap.String("quantity_kg", material.InventoryKg.String()))
	return nil
}

// RecordTransaction moves the transacted kilograms into the account of the
// transaction's stage. Checkout details on ctx become transaction metadata.
func (r *Recorder) RecordTransaction(ctx context.Context, tx models.Transaction, material models.Material) error {
	if tx.MaterialTokenId == "" {
		return fmt.Errorf("transaction %s has no token", tx.Id)
	}
	source, destination := ledger.Route(tx)

	postTx := shared.V2PostTransaction{
		Reference: strPtr(ledger.TransactionReference(tx)),
		Script: &shared.V2PostTransactionScript{
			Plain: numscriptStageTransfer,
			Vars: map[string]string{
				"asset":       kgAsset,
				"amount":      kgUnits(tx.QuantityKg).String(),
				"source":      source,
				"destination": destination,
				"event_type":  ledger.StageName(tx.Status),
				"token_id":    tx.MaterialTokenId,
				"material_id": material.Id,
				"center_id":   tx.CenterId,
				"status":      string(tx.Status),
			},
		},
	}
	if !tx.Date.IsZero() {
		postTx.Timestamp = &tx.Date
	}
	if cc := models.GetCheckoutContext(ctx); cc != nil {
		postTx.Metadata = checkoutMetadata(cc)
		if !cc.CompletedAt.IsZero() {
			postTx.Timestamp = &cc.CompletedAt
		}
	}

	_, err := r.client.Ledger.V2.CreateTransaction(ctx, operations.V2CreateTransactionRequest{
		Ledger:            r.ledger,
		V2PostTransaction: postTx,
	})
	if err != nil {
		if isConflictError(err) {
			return nil // idempotent
		}
		return fmt.Errorf("error recording stage transfer: %w", err)
	}

	zap.L().Info("Stage transfer recorded in Formance",
		zap.String("token_id", tx.MaterialTokenId),
		zap.String("source", source),
		zap.String("destination", destination),
		zap.String("quantity_kg", tx.QuantityKg.String()))
	return nil
}

// History lists the ledger transactions tagged with tokenId, oldest first.
// It follows the cursor until the last page.
func (r *Recorder) History(ctx context.Context, tokenId string) ([]models.LedgerEntry, error) {
	return collectHistory(ctx, tokenId, func(ctx context.Context, cursor *string) (*shared.V2TransactionsCursorResponseCursor, error) {
		req := operations.V2ListTransactionsRequest{Ledger: r.ledger, Cursor: cursor}
		if cursor == nil {
			pageSize := historyPageSize
			req.PageSize = &pageSize
			req.RequestBody = map[string]any{
				"$match": map[string]any{"metadata[token_id]": tokenId},
			}
		}
		resp, err := r.client.Ledger.V2.ListTransactions(ctx, req)
		if err != nil {
			return nil, err
		}
		if resp.V2TransactionsCursorResponse == nil {
			return nil, fmt.Errorf("empty response for ledger %s", r.ledger)
		}
		return &resp.V2TransactionsCursorResponse.Cursor, nil
	})
}

type pageFetcher func(ctx context.Context, cursor *string) (*shared.V2TransactionsCursorResponseCursor, error)

func collectHistory(ctx context.Context, tokenId string, fetch pageFetcher) ([]models.LedgerEntry, error) {
	var data []shared.V2Transaction
	var cursor *string
	for page := 0; ; page++ {
		if page == maxHistoryPages {
			zap.L().Warn("Token history truncated",
				zap.String("token_id", tokenId),
				zap.Int("pages", page))
			break
		}
		resp, err := fetch(ctx, cursor)
		if err != nil {
			return nil, fmt.Errorf("failed to list token transactions: %w", err)
		}
		data = append(data, resp.Data...)
		if !resp.HasMore || resp.Next == nil {
			break
		}
		cursor = resp.Next
	}

	entries := make([]models.LedgerEntry, 0, len(data))
	// The cursor is newest first
	for i := len(data) - 1; i >= 0; i-- {
		entries = append(entries, toLedgerEntry(tokenId, data[i]))
	}
	return entries, nil
}

func toLedgerEntry(tokenId string, tx shared.V2Transaction) models.LedgerEntry {
	entry := models.LedgerEntry{
		Reference: fmt.Sprintf("%d", tx.ID),
		TokenId:   tokenId,
		EventType: tx.Metadata["event_type"],
		Timestamp: tx.Timestamp,
	}
	if tx.Reference != nil {
		entry.Reference = *tx.Reference
	}
	for _, p := range tx.Postings {
		entry.Source = p.Source
		entry.Destination = p.Destination
		entry.QuantityKg = entry.QuantityKg.Add(unitsToKg(p.Amount))
	}
	return entry
}

func checkoutMetadata(cc *models.CheckoutContext) map[string]string {
	meta := map[string]string{}
	if cc.PaymentReference != "" {
		meta["payment_reference"] = cc.PaymentReference
	}
	if cc.PaymentMethod != "" {
		meta["payment_method"] = cc.PaymentMethod
	}
	if cc.CryptoAsset != "" {
		meta["crypto_asset"] = cc.CryptoAsset
	}
	if cc.SellerCenterId != "" {
		meta["seller_center_id"] = cc.SellerCenterId
	}
	if !cc.CompletedAt.IsZero() {
		meta["completed_at"] = cc.CompletedAt.UTC().Format(time.RFC3339)
	}
	return meta
}
