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

package sweeper

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// OverdueMarker flips past-due invoices to overdue
type OverdueMarker interface {
	MarkOverdue(ctx context.Context, now time.Time) (int, error)
}

// InvoiceSweeper periodically marks pending invoices past their due date
type InvoiceSweeper struct {
	marker   OverdueMarker
	interval time.Duration
	now      func() time.Time

	stopChan chan struct{}
	doneChan chan struct{}
	stopOnce sync.Once
}

func New(marker OverdueMarker, interval time.Duration) (*InvoiceSweeper, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("sweep interval must be positive, got %s", interval)
	}
	return &InvoiceSweeper{
		marker:   marker,
		interval: interval,
		now:      time.Now,
		stopChan: make(chan struct{}),
		doneChan: make(chan struct{}),
	}, nil
}

// Start runs one sweep immediately, then one per interval until Stop or ctx ends
func (s *InvoiceSweeper) Start(ctx context.Context) {
	zap.L().Info("Starting invoice sweeper", zap.Duration("interval", s.interval))
	go s.loop(ctx)
}

// Stop waits for the running sweep to finish
func (s *InvoiceSweeper) Stop() {
	s.stopOnce.Do(func() {
		zap.L().Info("Stopping invoice sweeper")
		close(s.stopChan)
		<-s.doneChan
		zap.L().Info("Invoice sweeper stopped")
	})
}

func (s *InvoiceSweeper) loop(ctx context.Context) {
	defer close(s.doneChan)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.sweep(ctx)

	for {
		select {
		case <-ticker.C:
			s.sweep(ctx)
		case <-s.stopChan:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (s *InvoiceSweeper) sweep(ctx context.Context) {
	changed, err := s.marker.MarkOverdue(ctx, s.now())
	if err != nil {
		zap.L().Error("Invoice sweep failed", zap.Int("changed", changed), zap.Error(err))
		return
	}
	if changed > 0 {
		zap.L().Info("Invoice sweep completed", zap.Int("marked_overdue", changed))
	}
}
