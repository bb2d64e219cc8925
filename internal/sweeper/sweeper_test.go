package sweeper

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"recytoken-up-go/internal/billing"
	"recytoken-up-go/internal/models"
	"recytoken-up-go/internal/payments"
	"recytoken-up-go/internal/seed"
	"recytoken-up-go/internal/store"
)

type countingMarker struct {
	calls atomic.Int32
	err   error
}

func (m *countingMarker) MarkOverdue(context.Context, time.Time) (int, error) {
	m.calls.Add(1)
	return 0, m.err
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("Condition not met before deadline")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestNewRejectsNonPositiveInterval(t *testing.T) {
	if _, err := New(&countingMarker{}, 0); err == nil {
		t.Error("Expected error for zero interval")
	}
}

func TestSweepsRepeatedly(t *testing.T) {
	marker := &countingMarker{}
	s, err := New(marker, 10*time.Millisecond)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	s.Start(context.Background())
	waitFor(t, func() bool { return marker.calls.Load() >= 3 })
	s.Stop()

	after := marker.calls.Load()
	time.Sleep(30 * time.Millisecond)
	if marker.calls.Load() != after {
		t.Error("Sweeper kept running after Stop")
	}
	s.Stop()
}

func TestSweepErrorKeepsRunning(t *testing.T) {
	marker := &countingMarker{err: errors.New("store unavailable")}
	s, _ := New(marker, 10*time.Millisecond)
	s.Start(context.Background())
	waitFor(t, func() bool { return marker.calls.Load() >= 2 })
	s.Stop()
}

func TestContextCancelStops(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s, _ := New(&countingMarker{}, time.Hour)
	s.Start(ctx)
	cancel()

	select {
	case <-s.doneChan:
	case <-time.After(2 * time.Second):
		t.Fatal("Sweeper did not stop on context cancel")
	}
}

func TestSweepMarksSeededInvoices(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	entityStore := store.NewEntityStore(store.NewMemoryBackend(), nil)
	if err := entityStore.Load(context.Background(), seed.Defaults(now)); err != nil {
		t.Fatalf("Failed to load store: %v", err)
	}
	svc := billing.NewService(entityStore, payments.NewSimulated())

	s, _ := New(svc, time.Hour)
	// INV002 falls due five days after the seed date
	s.now = func() time.Time { return now.Add(6 * 24 * time.Hour) }
	s.sweep(context.Background())

	inv, err := entityStore.Invoice("INV002")
	if err != nil {
		t.Fatalf("Invoice lookup failed: %v", err)
	}
	if inv.Status != models.InvoiceOverdue {
		t.Errorf("Status = %s, want overdue", inv.Status)
	}
}
