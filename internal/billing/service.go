package billing

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"recytoken-up-go/internal/models"
	"recytoken-up-go/internal/payments"
	"recytoken-up-go/internal/store"

	"go.uber.org/zap"
)

const invoiceCurrency = "NIO"

// Service issues invoices and settles them through a payment processor
type Service struct {
	store    *store.EntityStore
	payments payments.Processor

	mu     sync.Mutex
	paying map[string]bool
}

func NewService(entityStore *store.EntityStore, processor payments.Processor) *Service {
	return &Service{
		store:    entityStore,
		payments: processor,
		paying:   make(map[string]bool),
	}
}

// Create computes the invoice totals and stores it
func (s *Service) Create(ctx context.Context, params InvoiceParams) (models.Invoice, error) {
	if _, err := s.store.Center(params.CenterId); err != nil {
		return models.Invoice{}, err
	}

	inv, err := NewInvoice(params)
	if err != nil {
		return models.Invoice{}, err
	}

	created, err := s.store.CreateInvoice(ctx, inv)
	if err != nil {
		return models.Invoice{}, fmt.Errorf("unable to store invoice: %w", err)
	}

	zap.L().Info("Invoice created",
		zap.String("invoice_id", created.Id),
		zap.String("invoice_number", created.InvoiceNumber),
		zap.String("total", created.Total.String()))
	return created, nil
}

// Pay charges the invoice total and marks the invoice paid. Crypto payments
// need cryptoAsset and are charged the quoted amount in that asset.
func (s *Service) Pay(ctx context.Context, invoiceId, method, cryptoAsset string) (*models.PaymentReceipt, error) {
	if !s.reserve(invoiceId) {
		return nil, fmt.Errorf("invoice %s: %w", invoiceId, ErrPaymentInProgress)
	}
	defer s.release(invoiceId)

	inv, err := s.store.Invoice(invoiceId)
	if err != nil {
		return nil, err
	}
	if inv.Status == models.InvoicePaid {
		return nil, fmt.Errorf("invoice %s: %w", inv.InvoiceNumber, ErrAlreadyPaid)
	}
	if method == "" {
		method = payments.MethodBankTransfer
	}

	req := payments.ChargeRequest{
		Reference:   inv.Id,
		Method:      method,
		Amount:      inv.Total,
		Currency:    invoiceCurrency,
		Description: "Invoice " + inv.InvoiceNumber,
	}
	if method == payments.MethodCrypto {
		if cryptoAsset == "" {
			return nil, payments.ErrCryptoAssetRequired
		}
		quote, err := payments.Quote(inv.Total, cryptoAsset)
		if err != nil {
			return nil, err
		}
		req.CryptoAsset = quote.CryptoAsset
		req.CryptoAmount = quote.CryptoAmount
	}

	receipt, err := s.payments.Charge(ctx, req)
	if err != nil {
		zap.L().Error("Invoice payment failed",
			zap.String("invoice_id", inv.Id),
			zap.String("method", method),
			zap.Error(err))
		return nil, fmt.Errorf("unable to charge invoice: %w", err)
	}

	err = s.store.TransitionInvoiceStatus(ctx, inv.Id, models.InvoicePaid, models.InvoicePending, models.InvoiceOverdue)
	if err != nil {
		zap.L().Error("Charged invoice could not be marked paid",
			zap.String("invoice_id", inv.Id),
			zap.String("payment_reference", receipt.Reference),
			zap.Error(err))
		return nil, err
	}

	zap.L().Info("Invoice paid",
		zap.String("invoice_id", inv.Id),
		zap.String("payment_reference", receipt.Reference),
		zap.String("total", inv.Total.String()))
	return receipt, nil
}

func (s *Service) reserve(invoiceId string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.paying[invoiceId] {
		return false
	}
	s.paying[invoiceId] = true
	return true
}

func (s *Service) release(invoiceId string) {
	s.mu.Lock()
	delete(s.paying, invoiceId)
	s.mu.Unlock()
}

// MarkOverdue flips every pending invoice past its due date to overdue and
// returns how many changed. Invoices settled since the scan are left alone.
func (s *Service) MarkOverdue(ctx context.Context, now time.Time) (int, error) {
	var changed int
	for _, inv := range s.store.Snapshot().Invoices {
		if !IsOverdue(inv, now) {
			continue
		}
		err := s.store.TransitionInvoiceStatus(ctx, inv.Id, models.InvoiceOverdue, models.InvoicePending)
		if errors.Is(err, store.ErrStatusConflict) || errors.Is(err, store.ErrNotFound) {
			continue
		}
		if err != nil {
			return changed, fmt.Errorf("unable to mark invoice %s overdue: %w", inv.Id, err)
		}
		changed++
		zap.L().Info("Invoice marked overdue",
			zap.String("invoice_id", inv.Id),
			zap.Time("due_date", inv.DueDate))
	}
	return changed, nil
}

// ReceiptFor resolves the invoice and returns its receipt payload
func (s *Service) ReceiptFor(invoiceId string) (models.ReceiptPayload, error) {
	inv, err := s.store.Invoice(invoiceId)
	if err != nil {
		return models.ReceiptPayload{}, err
	}
	return Receipt(s.store.Lookup().ResolveInvoice(inv)), nil
}
