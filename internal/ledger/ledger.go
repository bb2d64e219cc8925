// Package ledger records the movement of material tokens between lifecycle
// stages. Each token owns one account per stage, tokens:<token>:<stage>,
// and every transaction moves kilograms from the previous stage's account.
package ledger

import (
	"context"
	"fmt"
	"strings"

	"recytoken-up-go/internal/models"
)

// Event types stored on ledger entries
const (
	EventMint = "mint"
)

// WorldAccount is the unbounded source of newly minted tokens
const WorldAccount = "world"

// Recorder is the token ledger capability.
type Recorder interface {
	RecordMint(ctx context.Context, material models.Material) error
	RecordTransaction(ctx context.Context, tx models.Transaction, material models.Material) error
	History(ctx context.Context, tokenId string) ([]models.LedgerEntry, error)
}

var stageNames = map[models.TransactionStatus]string{
	models.StatusCollected:  "collected",
	models.StatusProcessing: "processing",
	models.StatusProcessed:  "processed",
	models.StatusSold:       "sold",
}

// StageName returns the account segment for status
func StageName(status models.TransactionStatus) string {
	if name, ok := stageNames[status]; ok {
		return name
	}
	return strings.ToLower(strings.ReplaceAll(string(status), " ", "_"))
}

// InventoryAccount holds the minted kilograms of a token
func InventoryAccount(tokenId string) string {
	return fmt.Sprintf("tokens:%s:inventory", tokenId)
}

// StageAccount is the account a token's kilograms sit in at status
func StageAccount(tokenId string, status models.TransactionStatus) string {
	return fmt.Sprintf("tokens:%s:%s", tokenId, StageName(status))
}

// Route returns the source and destination accounts of tx. The first
// lifecycle stage draws from inventory; later stages draw from the one before.
// Sold skips straight from inventory when it comes through the marketplace.
func Route(tx models.Transaction) (source, destination string) {
	destination = StageAccount(tx.MaterialTokenId, tx.Status)
	stage := tx.Status.Stage()
	switch {
	case stage <= 0 || stage >= len(models.TransactionStatuses):
		source = InventoryAccount(tx.MaterialTokenId)
	case tx.Status == models.StatusSold && tx.CenterId == models.MarketplaceBuyerId:
		source = InventoryAccount(tx.MaterialTokenId)
	default:
		source = StageAccount(tx.MaterialTokenId, models.TransactionStatuses[stage-1])
	}
	return source, destination
}

// MintReference is the idempotency reference of a token mint
func MintReference(material models.Material) string {
	return "mint-" + material.Id
}

// TransactionReference is the idempotency reference of tx at its current
// status, so each stage a transaction moves through is recorded once.
func TransactionReference(tx models.Transaction) string {
	return tx.Id + ":" + StageName(tx.Status)
}
