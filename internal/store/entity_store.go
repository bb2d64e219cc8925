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

package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"recytoken-up-go/internal/models"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// EntityStore holds the four collections in memory and writes each changed
// collection through to its Backend. The in-memory state is authoritative:
// a failed write is logged and never rolled back.
type EntityStore struct {
	mu        sync.RWMutex
	backend   Backend
	publisher ChangePublisher
	now       func() time.Time

	materials    []models.Material
	centers      []models.Center
	transactions []models.Transaction
	invoices     []models.Invoice

	materialIdx    map[string]int
	centerIdx      map[string]int
	transactionIdx map[string]int
	invoiceIdx     map[string]int
}

func NewEntityStore(backend Backend, publisher ChangePublisher) *EntityStore {
	if publisher == nil {
		publisher = NopPublisher{}
	}
	s := &EntityStore{
		backend:   backend,
		publisher: publisher,
		now:       time.Now,
	}
	s.reindex()
	return s
}

// SetClock replaces the time source used for defaults and events.
func (s *EntityStore) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// Load rehydrates every collection from the backend. Collections with no
// stored snapshot are taken from seed and written back.
func (s *EntityStore) Load(ctx context.Context, seed models.Snapshot) error {
	var snap models.Snapshot
	var missing []string

	for _, key := range CollectionKeys {
		data, err := s.backend.Load(ctx, key)
		if errors.Is(err, ErrSnapshotNotFound) {
			missing = append(missing, key)
			continue
		}
		if err != nil {
			return fmt.Errorf("unable to load %s: %w", key, err)
		}
		if err := decodeCollection(key, data, &snap); err != nil {
			return err
		}
	}

	seed = cloneSnapshot(seed)
	for _, key := range missing {
		zap.L().Info("No stored snapshot, using seed data", zap.String("collection", key))
		switch key {
		case models.EntityMaterials:
			snap.Materials = seed.Materials
		case models.EntityCenters:
			snap.Centers = seed.Centers
		case models.EntityTransactions:
			snap.Transactions = seed.Transactions
		case models.EntityInvoices:
			snap.Invoices = seed.Invoices
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.setLocked(snap)
	for _, key := range missing {
		s.saveLocked(ctx, key)
	}

	zap.L().Info("Entity store loaded",
		zap.Int("materials", len(s.materials)),
		zap.Int("centers", len(s.centers)),
		zap.Int("transactions", len(s.transactions)),
		zap.Int("invoices", len(s.invoices)))
	return nil
}

// Replace swaps all four collections, as a restore from backup does.
func (s *EntityStore) Replace(ctx context.Context, snap models.Snapshot) error {
	snap = cloneSnapshot(snap)
	return s.mutate(ctx, CollectionKeys, func() (models.ChangeEvent, error) {
		s.setLocked(snap)
		return models.ChangeEvent{Entity: "snapshot", Action: models.ActionRestored}, nil
	})
}

// ---------- reads ----------

// Snapshot returns a deep copy of the four collections.
func (s *EntityStore) Snapshot() models.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneSnapshot(models.Snapshot{
		Materials:    s.materials,
		Centers:      s.centers,
		Transactions: s.transactions,
		Invoices:     s.invoices,
	})
}

// Lookup returns a resolver over the current snapshot.
func (s *EntityStore) Lookup() *Lookup {
	return NewLookup(s.Snapshot())
}

func (s *EntityStore) Material(id string) (models.Material, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.materialIdx[id]
	if !ok {
		return models.Material{}, fmt.Errorf("material %s: %w", id, ErrNotFound)
	}
	return s.materials[i], nil
}

// MaterialByToken returns the first material carrying tokenId.
func (s *EntityStore) MaterialByToken(tokenId string) (models.Material, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, m := range s.materials {
		if m.TokenId == tokenId {
			return m, nil
		}
	}
	return models.Material{}, fmt.Errorf("token %s: %w", tokenId, ErrNotFound)
}

func (s *EntityStore) Center(id string) (models.Center, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.centerIdx[id]
	if !ok {
		return models.Center{}, fmt.Errorf("center %s: %w", id, ErrNotFound)
	}
	return s.centers[i], nil
}

func (s *EntityStore) Transaction(id string) (models.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.transactionIdx[id]
	if !ok {
		return models.Transaction{}, fmt.Errorf("transaction %s: %w", id, ErrNotFound)
	}
	return s.transactions[i], nil
}

func (s *EntityStore) Invoice(id string) (models.Invoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.invoiceIdx[id]
	if !ok {
		return models.Invoice{}, fmt.Errorf("invoice %s: %w", id, ErrNotFound)
	}
	return cloneInvoice(s.invoices[i]), nil
}

// ---------- materials ----------

// CreateMaterial prepends m, assigning an id, token and wallet when blank.
func (s *EntityStore) CreateMaterial(ctx context.Context, m models.Material) (models.Material, error) {
	if err := validateMaterial(m); err != nil {
		return models.Material{}, err
	}
	if m.Id == "" {
		m.Id = NewId(MaterialPrefix)
	}
	if m.TokenId == "" {
		m.TokenId = NewTokenId()
	}
	if m.WalletAddress == "" {
		m.WalletAddress = NewWalletAddress()
	}

	err := s.mutate(ctx, []string{models.EntityMaterials}, func() (models.ChangeEvent, error) {
		if _, exists := s.materialIdx[m.Id]; exists {
			return models.ChangeEvent{}, fmt.Errorf("material %s: %w", m.Id, ErrDuplicateId)
		}
		s.materials = slices.Insert(s.materials, 0, m)
		return models.ChangeEvent{Entity: models.EntityMaterials, Action: models.ActionCreated, Id: m.Id}, nil
	})
	if err != nil {
		return models.Material{}, err
	}
	return m, nil
}

func (s *EntityStore) UpdateMaterial(ctx context.Context, m models.Material) error {
	if err := validateMaterial(m); err != nil {
		return err
	}
	return s.mutate(ctx, []string{models.EntityMaterials}, func() (models.ChangeEvent, error) {
		i, ok := s.materialIdx[m.Id]
		if !ok {
			return models.ChangeEvent{}, fmt.Errorf("material %s: %w", m.Id, ErrNotFound)
		}
		s.materials[i] = m
		return models.ChangeEvent{Entity: models.EntityMaterials, Action: models.ActionUpdated, Id: m.Id}, nil
	})
}

func (s *EntityStore) DeleteMaterial(ctx context.Context, id string) error {
	return s.mutate(ctx, []string{models.EntityMaterials}, func() (models.ChangeEvent, error) {
		i, ok := s.materialIdx[id]
		if !ok {
			return models.ChangeEvent{}, fmt.Errorf("material %s: %w", id, ErrNotFound)
		}
		s.materials = slices.Delete(s.materials, i, i+1)
		return models.ChangeEvent{Entity: models.EntityMaterials, Action: models.ActionDeleted, Id: id}, nil
	})
}

// AdjustInventory adds deltaKg to the material's inventory. The result may
// not go below zero.
func (s *EntityStore) AdjustInventory(ctx context.Context, id string, deltaKg decimal.Decimal) (models.Material, error) {
	var updated models.Material
	err := s.mutate(ctx, []string{models.EntityMaterials}, func() (models.ChangeEvent, error) {
		i, ok := s.materialIdx[id]
		if !ok {
			return models.ChangeEvent{}, fmt.Errorf("material %s: %w", id, ErrNotFound)
		}
		next := s.materials[i].InventoryKg.Add(deltaKg)
		if next.IsNegative() {
			return models.ChangeEvent{}, fmt.Errorf("material %s has %s kg, requested %s: %w",
				id, s.materials[i].InventoryKg.String(), deltaKg.Neg().String(), ErrInsufficientInventory)
		}
		s.materials[i].InventoryKg = next
		updated = s.materials[i]
		return models.ChangeEvent{Entity: models.EntityMaterials, Action: models.ActionUpdated, Id: id}, nil
	})
	return updated, err
}

// ---------- centers ----------

// CreateCenter appends c. New centers start active with a random rating
// and review count unless given.
func (s *EntityStore) CreateCenter(ctx context.Context, c models.Center) (models.Center, error) {
	if err := validateCenter(c); err != nil {
		return models.Center{}, err
	}
	if c.Id == "" {
		c.Id = NewId(CenterPrefix)
	}
	if c.Status == "" {
		c.Status = models.CenterActive
	}
	if c.Rating == 0 {
		c.Rating = randomRating()
		if c.Reviews == 0 {
			c.Reviews = randomReviews()
		}
	}

	err := s.mutate(ctx, []string{models.EntityCenters}, func() (models.ChangeEvent, error) {
		if _, exists := s.centerIdx[c.Id]; exists {
			return models.ChangeEvent{}, fmt.Errorf("center %s: %w", c.Id, ErrDuplicateId)
		}
		s.centers = append(s.centers, c)
		return models.ChangeEvent{Entity: models.EntityCenters, Action: models.ActionCreated, Id: c.Id}, nil
	})
	if err != nil {
		return models.Center{}, err
	}
	return c, nil
}

func (s *EntityStore) UpdateCenter(ctx context.Context, c models.Center) error {
	if err := validateCenter(c); err != nil {
		return err
	}
	return s.mutate(ctx, []string{models.EntityCenters}, func() (models.ChangeEvent, error) {
		i, ok := s.centerIdx[c.Id]
		if !ok {
			return models.ChangeEvent{}, fmt.Errorf("center %s: %w", c.Id, ErrNotFound)
		}
		s.centers[i] = c
		return models.ChangeEvent{Entity: models.EntityCenters, Action: models.ActionUpdated, Id: c.Id}, nil
	})
}

func (s *EntityStore) DeleteCenter(ctx context.Context, id string) error {
	return s.mutate(ctx, []string{models.EntityCenters}, func() (models.ChangeEvent, error) {
		i, ok := s.centerIdx[id]
		if !ok {
			return models.ChangeEvent{}, fmt.Errorf("center %s: %w", id, ErrNotFound)
		}
		s.centers = slices.Delete(s.centers, i, i+1)
		return models.ChangeEvent{Entity: models.EntityCenters, Action: models.ActionDeleted, Id: id}, nil
	})
}

// ---------- transactions ----------

// CreateTransaction prepends tx. The token is copied from the referenced
// material when blank.
func (s *EntityStore) CreateTransaction(ctx context.Context, tx models.Transaction) (models.Transaction, error) {
	if tx.QuantityKg.IsNegative() {
		return models.Transaction{}, fmt.Errorf("%w: negative quantity", ErrInvalidEntity)
	}
	if tx.Id == "" {
		tx.Id = NewId(TransactionPrefix)
	}
	if tx.Status == "" {
		tx.Status = models.StatusCollected
	}

	err := s.mutate(ctx, []string{models.EntityTransactions}, func() (models.ChangeEvent, error) {
		if _, exists := s.transactionIdx[tx.Id]; exists {
			return models.ChangeEvent{}, fmt.Errorf("transaction %s: %w", tx.Id, ErrDuplicateId)
		}
		if tx.MaterialTokenId == "" {
			i, ok := s.materialIdx[tx.MaterialId]
			if !ok {
				return models.ChangeEvent{}, fmt.Errorf("%w: transaction needs a material or token", ErrInvalidEntity)
			}
			tx.MaterialTokenId = s.materials[i].TokenId
		}
		if tx.Date.IsZero() {
			tx.Date = s.now().UTC()
		}
		s.transactions = slices.Insert(s.transactions, 0, tx)
		return models.ChangeEvent{Entity: models.EntityTransactions, Action: models.ActionCreated, Id: tx.Id}, nil
	})
	if err != nil {
		return models.Transaction{}, err
	}
	return tx, nil
}

func (s *EntityStore) UpdateTransaction(ctx context.Context, tx models.Transaction) error {
	if tx.QuantityKg.IsNegative() {
		return fmt.Errorf("%w: negative quantity", ErrInvalidEntity)
	}
	return s.mutate(ctx, []string{models.EntityTransactions}, func() (models.ChangeEvent, error) {
		i, ok := s.transactionIdx[tx.Id]
		if !ok {
			return models.ChangeEvent{}, fmt.Errorf("transaction %s: %w", tx.Id, ErrNotFound)
		}
		s.transactions[i] = tx
		return models.ChangeEvent{Entity: models.EntityTransactions, Action: models.ActionUpdated, Id: tx.Id}, nil
	})
}

func (s *EntityStore) DeleteTransaction(ctx context.Context, id string) error {
	return s.mutate(ctx, []string{models.EntityTransactions}, func() (models.ChangeEvent, error) {
		i, ok := s.transactionIdx[id]
		if !ok {
			return models.ChangeEvent{}, fmt.Errorf("transaction %s: %w", id, ErrNotFound)
		}
		s.transactions = slices.Delete(s.transactions, i, i+1)
		return models.ChangeEvent{Entity: models.EntityTransactions, Action: models.ActionDeleted, Id: id}, nil
	})
}

// ---------- invoices ----------

func (s *EntityStore) CreateInvoice(ctx context.Context, inv models.Invoice) (models.Invoice, error) {
	if inv.InvoiceNumber == "" {
		return models.Invoice{}, fmt.Errorf("%w: invoice number is required", ErrInvalidEntity)
	}
	if inv.Id == "" {
		inv.Id = NewId(InvoicePrefix)
	}
	if inv.Status == "" {
		inv.Status = models.InvoicePending
	}
	inv = cloneInvoice(inv)

	err := s.mutate(ctx, []string{models.EntityInvoices}, func() (models.ChangeEvent, error) {
		if _, exists := s.invoiceIdx[inv.Id]; exists {
			return models.ChangeEvent{}, fmt.Errorf("invoice %s: %w", inv.Id, ErrDuplicateId)
		}
		if inv.IssueDate.IsZero() {
			inv.IssueDate = s.now().UTC()
		}
		s.invoices = slices.Insert(s.invoices, 0, inv)
		return models.ChangeEvent{Entity: models.EntityInvoices, Action: models.ActionCreated, Id: inv.Id}, nil
	})
	if err != nil {
		return models.Invoice{}, err
	}
	return cloneInvoice(inv), nil
}

func (s *EntityStore) UpdateInvoice(ctx context.Context, inv models.Invoice) error {
	inv = cloneInvoice(inv)
	return s.mutate(ctx, []string{models.EntityInvoices}, func() (models.ChangeEvent, error) {
		i, ok := s.invoiceIdx[inv.Id]
		if !ok {
			return models.ChangeEvent{}, fmt.Errorf("invoice %s: %w", inv.Id, ErrNotFound)
		}
		s.invoices[i] = inv
		return models.ChangeEvent{Entity: models.EntityInvoices, Action: models.ActionUpdated, Id: inv.Id}, nil
	})
}

// TransitionInvoiceStatus moves an invoice to status to, provided its current
// status is one of from. Otherwise it returns ErrStatusConflict and leaves the
// invoice untouched.
func (s *EntityStore) TransitionInvoiceStatus(ctx context.Context, id string, to models.InvoiceStatus, from ...models.InvoiceStatus) error {
	return s.mutate(ctx, []string{models.EntityInvoices}, func() (models.ChangeEvent, error) {
		i, ok := s.invoiceIdx[id]
		if !ok {
			return models.ChangeEvent{}, fmt.Errorf("invoice %s: %w", id, ErrNotFound)
		}
		current := s.invoices[i].Status
		if !slices.Contains(from, current) {
			return models.ChangeEvent{}, fmt.Errorf("invoice %s is %s, not %v: %w", id, current, from, ErrStatusConflict)
		}
		s.invoices[i].Status = to
		return models.ChangeEvent{Entity: models.EntityInvoices, Action: models.ActionUpdated, Id: id}, nil
	})
}

func (s *EntityStore) DeleteInvoice(ctx context.Context, id string) error {
	return s.mutate(ctx, []string{models.EntityInvoices}, func() (models.ChangeEvent, error) {
		i, ok := s.invoiceIdx[id]
		if !ok {
			return models.ChangeEvent{}, fmt.Errorf("invoice %s: %w", id, ErrNotFound)
		}
		s.invoices = slices.Delete(s.invoices, i, i+1)
		return models.ChangeEvent{Entity: models.EntityInvoices, Action: models.ActionDeleted, Id: id}, nil
	})
}

// ---------- internals ----------

// mutate applies fn under the write lock, writes the touched collections
// through to the backend and publishes the resulting event.
func (s *EntityStore) mutate(ctx context.Context, keys []string, fn func() (models.ChangeEvent, error)) error {
	s.mu.Lock()
	event, err := fn()
	if err != nil {
		s.mu.Unlock()
		return err
	}
	s.reindex()
	for _, key := range keys {
		s.saveLocked(ctx, key)
	}
	event.Timestamp = s.now().UTC()
	s.mu.Unlock()

	if err := s.publisher.Publish(ctx, event); err != nil {
		zap.L().Warn("Failed to publish change event",
			zap.String("event_type", event.Type()),
			zap.String("id", event.Id),
			zap.Error(err))
	}
	return nil
}

func (s *EntityStore) saveLocked(ctx context.Context, key string) {
	var data []byte
	var err error
	switch key {
	case models.EntityMaterials:
		data, err = json.Marshal(nonNil(s.materials))
	case models.EntityCenters:
		data, err = json.Marshal(nonNil(s.centers))
	case models.EntityTransactions:
		data, err = json.Marshal(nonNil(s.transactions))
	case models.EntityInvoices:
		data, err = json.Marshal(nonNil(s.invoices))
	default:
		err = fmt.Errorf("unknown collection %q", key)
	}
	if err != nil {
		zap.L().Warn("Failed to encode collection", zap.String("collection", key), zap.Error(err))
		return
	}

	if err := s.backend.Save(ctx, key, data); err != nil {
		zap.L().Warn("Failed to persist collection",
			zap.String("collection", key),
			zap.Int("bytes", len(data)),
			zap.Error(err))
	}
}

func (s *EntityStore) setLocked(snap models.Snapshot) {
	s.materials = snap.Materials
	s.centers = snap.Centers
	s.transactions = snap.Transactions
	s.invoices = snap.Invoices
	s.reindex()
}

func (s *EntityStore) reindex() {
	s.materialIdx = indexBy(s.materials, func(m models.Material) string { return m.Id })
	s.centerIdx = indexBy(s.centers, func(c models.Center) string { return c.Id })
	s.transactionIdx = indexBy(s.transactions, func(t models.Transaction) string { return t.Id })
	s.invoiceIdx = indexBy(s.invoices, func(i models.Invoice) string { return i.Id })
}

// indexBy maps each id to its first position.
func indexBy[T any](items []T, id func(T) string) map[string]int {
	idx := make(map[string]int, len(items))
	for i, item := range items {
		if _, seen := idx[id(item)]; !seen {
			idx[id(item)] = i
		}
	}
	return idx
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}

func decodeCollection(key string, data []byte, snap *models.Snapshot) error {
	var err error
	switch key {
	case models.EntityMaterials:
		err = json.Unmarshal(data, &snap.Materials)
	case models.EntityCenters:
		err = json.Unmarshal(data, &snap.Centers)
	case models.EntityTransactions:
		err = json.Unmarshal(data, &snap.Transactions)
	case models.EntityInvoices:
		err = json.Unmarshal(data, &snap.Invoices)
	default:
		err = fmt.Errorf("unknown collection %q", key)
	}
	if err != nil {
		return fmt.Errorf("unable to decode %s: %w", key, err)
	}
	return nil
}

func cloneSnapshot(snap models.Snapshot) models.Snapshot {
	out := models.Snapshot{
		Materials:    slices.Clone(snap.Materials),
		Centers:      slices.Clone(snap.Centers),
		Transactions: slices.Clone(snap.Transactions),
		Invoices:     make([]models.Invoice, len(snap.Invoices)),
	}
	for i, inv := range snap.Invoices {
		out.Invoices[i] = cloneInvoice(inv)
	}
	return out
}

func cloneInvoice(inv models.Invoice) models.Invoice {
	inv.Items = slices.Clone(inv.Items)
	return inv
}

func validateMaterial(m models.Material) error {
	switch {
	case m.Name == "":
		return fmt.Errorf("%w: material name is required", ErrInvalidEntity)
	case !m.Category.Valid():
		return fmt.Errorf("%w: unknown category %q", ErrInvalidEntity, m.Category)
	case m.InventoryKg.IsNegative():
		return fmt.Errorf("%w: inventory cannot be negative", ErrInvalidEntity)
	case m.PricePerKg.IsNegative():
		return fmt.Errorf("%w: price cannot be negative", ErrInvalidEntity)
	}
	return nil
}

func validateCenter(c models.Center) error {
	switch {
	case c.CompanyName == "":
		return fmt.Errorf("%w: company name is required", ErrInvalidEntity)
	case c.Rating < 0 || c.Rating > 5:
		return fmt.Errorf("%w: rating must be between 1 and 5", ErrInvalidEntity)
	case c.Status != "" && c.Status != models.CenterActive && c.Status != models.CenterInactive:
		return fmt.Errorf("%w: unknown status %q", ErrInvalidEntity, c.Status)
	}
	return nil
}
