package store

import (
	"context"
	"errors"

	"recytoken-up-go/internal/models"
)

// Sentinel errors shared across the store and its backends.
var (
	ErrNotFound              = errors.New("entity not found")
	ErrDuplicateId           = errors.New("duplicate entity id")
	ErrSnapshotNotFound      = errors.New("no stored snapshot")
	ErrInsufficientInventory = errors.New("insufficient inventory")
	ErrInvalidEntity         = errors.New("invalid entity")
	ErrStatusConflict        = errors.New("status changed concurrently")
)

// CollectionKeys are the logical names the four collections are stored under.
var CollectionKeys = []string{
	models.EntityMaterials,
	models.EntityCenters,
	models.EntityTransactions,
	models.EntityInvoices,
}

// Backend is the key-value medium a collection snapshot is persisted to.
//
// Load returns ErrSnapshotNotFound when nothing has been stored under key.
type Backend interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, data []byte) error
	Close()
}

// ChangePublisher receives every Entity Store mutation.
type ChangePublisher interface {
	Publish(ctx context.Context, event models.ChangeEvent) error
}

// NopPublisher discards change events.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, models.ChangeEvent) error { return nil }
