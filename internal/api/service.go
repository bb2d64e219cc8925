/**
 * Copyright 2025-present Coinbase Global, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package api

import (
	"context"
	"errors"
	"fmt"
	"time"

	"recytoken-up-go/internal/billing"
	"recytoken-up-go/internal/geocode"
	"recytoken-up-go/internal/ledger"
	"recytoken-up-go/internal/marketplace"
	"recytoken-up-go/internal/metrics"
	"recytoken-up-go/internal/models"
	"recytoken-up-go/internal/store"
	"recytoken-up-go/internal/trace"

	"go.uber.org/zap"
)

// Deps are the collaborators a Console is built from. Ledger and Geocoder
// may be nil.
type Deps struct {
	Store       *store.EntityStore
	Backend     store.Backend
	Marketplace *marketplace.Service
	Billing     *billing.Service
	Ledger      ledger.Recorder
	Geocoder    geocode.Geocoder
}

// Console is the admin surface over the Entity Store
type Console struct {
	store       *store.EntityStore
	backend     store.Backend
	marketplace *marketplace.Service
	billing     *billing.Service
	ledger      ledger.Recorder
	geocoder    geocode.Geocoder
	now         func() time.Time
}

func NewConsole(deps Deps) *Console {
	return &Console{
		store:       deps.Store,
		backend:     deps.Backend,
		marketplace: deps.Marketplace,
		billing:     deps.Billing,
		ledger:      deps.Ledger,
		geocoder:    deps.Geocoder,
		now:         time.Now,
	}
}

func (c *Console) HealthCheck(ctx context.Context) error {
	if c.backend == nil {
		return nil
	}
	_, err := c.backend.Load(ctx, models.EntityMaterials)
	if err != nil && !errors.Is(err, store.ErrSnapshotNotFound) {
		return fmt.Errorf("storage health check failed: %w", err)
	}
	return nil
}

// Dashboard aggregates the current snapshot
func (c *Console) Dashboard() models.DashboardSummary {
	return metrics.Dashboard(c.store.Snapshot(), c.now(), metrics.DefaultTopCenters)
}

// Trace reconstructs the history of tokenId
func (c *Console) Trace(ctx context.Context, tokenId string) models.TraceTimeline {
	return trace.Timeline(ctx, c.store.Snapshot(), c.ledger, tokenId)
}

func (c *Console) Quote(req marketplace.CheckoutRequest) (*models.Quote, error) {
	return c.marketplace.Quote(req)
}

func (c *Console) Checkout(ctx context.Context, req marketplace.CheckoutRequest) (*models.CheckoutResult, error) {
	return c.marketplace.Checkout(ctx, req)
}

// Export returns the whole snapshot stamped with the export time
func (c *Console) Export() models.Backup {
	return models.Backup{Snapshot: c.store.Snapshot(), Timestamp: c.now().UTC()}
}

// Import replaces every collection with the backup contents. A backup
// holding an invoice whose totals break the tax rule is rejected whole.
func (c *Console) Import(ctx context.Context, backup models.Backup) error {
	for _, inv := range backup.Invoices {
		if err := billing.Verify(inv); err != nil {
			zap.L().Error("Rejected backup with inconsistent invoice",
				zap.String("invoice_id", inv.Id),
				zap.Error(err))
			return fmt.Errorf("invoice %s: %w", inv.Id, err)
		}
	}
	if err := c.store.Replace(ctx, backup.Snapshot); err != nil {
		zap.L().Error("Failed to restore backup", zap.Error(err))
		return fmt.Errorf("unable to restore backup: %w", err)
	}
	zap.L().Info("Backup restored",
		zap.Time("backup_timestamp", backup.Timestamp),
		zap.Int("materials", len(backup.Materials)),
		zap.Int("centers", len(backup.Centers)),
		zap.Int("transactions", len(backup.Transactions)),
		zap.Int("invoices", len(backup.Invoices)))
	return nil
}
