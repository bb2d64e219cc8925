// Package trace rebuilds the history of a material token from the
// transactions that reference it.
package trace

import (
	"context"
	"slices"
	"strings"

	"recytoken-up-go/internal/ledger"
	"recytoken-up-go/internal/models"
	"recytoken-up-go/internal/store"

	"go.uber.org/zap"
)

// HistoryForToken returns the transactions carrying tokenId, oldest first.
// Transactions with equal dates keep their input order.
func HistoryForToken(transactions []models.Transaction, tokenId string) []models.Transaction {
	history := make([]models.Transaction, 0)
	for _, tx := range transactions {
		if tx.MaterialTokenId == tokenId {
			history = append(history, tx)
		}
	}
	slices.SortStableFunc(history, func(a, b models.Transaction) int {
		return a.Date.Compare(b.Date)
	})
	return history
}

// SearchTransactions matches term against token id and material name.
func SearchTransactions(views []models.TransactionView, term string) []models.TransactionView {
	term = strings.ToLower(strings.TrimSpace(term))
	out := make([]models.TransactionView, 0, len(views))
	for _, v := range views {
		if term == "" ||
			strings.Contains(strings.ToLower(v.MaterialTokenId), term) ||
			strings.Contains(strings.ToLower(v.MaterialName), term) {
			out = append(out, v)
		}
	}
	return out
}

// Timeline resolves the history of tokenId against snap. When recorder is
// not nil its entries are attached; a ledger failure leaves them empty.
func Timeline(ctx context.Context, snap models.Snapshot, recorder ledger.Recorder, tokenId string) models.TraceTimeline {
	lookup := store.NewLookup(snap)
	timeline := models.TraceTimeline{
		TokenId: tokenId,
		Events:  lookup.ResolveTransactions(HistoryForToken(snap.Transactions, tokenId)),
	}
	if m, ok := lookup.MaterialByToken(tokenId); ok {
		timeline.Material = &m
	}

	if recorder != nil {
		entries, err := recorder.History(ctx, tokenId)
		if err != nil {
			zap.L().Warn("Failed to read token ledger", zap.String("token_id", tokenId), zap.Error(err))
		} else {
			timeline.Ledger = entries
		}
	}
	return timeline
}
