package api

import (
	"context"
	"fmt"

	"recytoken-up-go/internal/models"
	"recytoken-up-go/internal/store"
	"recytoken-up-go/internal/trace"

	"go.uber.org/zap"
)

// Transactions returns resolved transactions matching term, newest first
func (c *Console) Transactions(term string) []models.TransactionView {
	snap := c.store.Snapshot()
	views := store.NewLookup(snap).ResolveTransactions(snap.Transactions)
	return trace.SearchTransactions(views, term)
}

// CreateTransaction stores tx after checking its references and records
// the stage move on the ledger.
func (c *Console) CreateTransaction(ctx context.Context, tx models.Transaction) (models.Transaction, error) {
	material, err := c.referencedMaterial(tx)
	if err != nil {
		return models.Transaction{}, err
	}
	if tx.CenterId != "" && tx.CenterId != models.MarketplaceBuyerId {
		if _, err := c.store.Center(tx.CenterId); err != nil {
			return models.Transaction{}, err
		}
	}
	if tx.MaterialId == "" {
		tx.MaterialId = material.Id
	}

	created, err := c.store.CreateTransaction(ctx, tx)
	if err != nil {
		return models.Transaction{}, err
	}
	c.recordStage(ctx, created, material)
	return created, nil
}

// UpdateTransaction replaces a stored transaction. A status change is
// recorded on the ledger as a move into the new stage.
func (c *Console) UpdateTransaction(ctx context.Context, tx models.Transaction) (models.Transaction, error) {
	previous, err := c.store.Transaction(tx.Id)
	if err != nil {
		return models.Transaction{}, err
	}
	material, err := c.referencedMaterial(tx)
	if err != nil {
		return models.Transaction{}, err
	}
	if tx.CenterId != "" && tx.CenterId != models.MarketplaceBuyerId {
		if _, err := c.store.Center(tx.CenterId); err != nil {
			return models.Transaction{}, err
		}
	}
	tx.MaterialId = material.Id
	if tx.MaterialTokenId == "" {
		tx.MaterialTokenId = material.TokenId
	}
	if tx.Date.IsZero() {
		tx.Date = previous.Date
	}
	if tx.Status == "" {
		tx.Status = previous.Status
	}

	if err := c.store.UpdateTransaction(ctx, tx); err != nil {
		return models.Transaction{}, err
	}
	if tx.Status != previous.Status {
		c.recordStage(ctx, tx, material)
	}
	return tx, nil
}

func (c *Console) DeleteTransaction(ctx context.Context, id string) error {
	return c.store.DeleteTransaction(ctx, id)
}

func (c *Console) recordStage(ctx context.Context, tx models.Transaction, material models.Material) {
	if c.ledger == nil {
		return
	}
	if err := c.ledger.RecordTransaction(ctx, tx, material); err != nil {
		zap.L().Warn("Failed to record transaction on ledger",
			zap.String("transaction_id", tx.Id),
			zap.String("token_id", tx.MaterialTokenId),
			zap.String("status", string(tx.Status)),
			zap.Error(err))
	}
}

func (c *Console) referencedMaterial(tx models.Transaction) (models.Material, error) {
	switch {
	case tx.MaterialId != "":
		return c.store.Material(tx.MaterialId)
	case tx.MaterialTokenId != "":
		return c.store.MaterialByToken(tx.MaterialTokenId)
	default:
		return models.Material{}, fmt.Errorf("%w: transaction needs a material or token", store.ErrInvalidEntity)
	}
}
