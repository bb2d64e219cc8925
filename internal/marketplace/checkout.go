// Package marketplace sells material inventory to external buyers.
package marketplace

import (
	"context"
	"errors"
	"fmt"
	"time"

	"recytoken-up-go/internal/ledger"
	"recytoken-up-go/internal/models"
	"recytoken-up-go/internal/payments"
	"recytoken-up-go/internal/search"
	"recytoken-up-go/internal/store"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var (
	ErrInvalidQuantity       = errors.New("quantity must be greater than zero")
	ErrPaymentMethodRequired = errors.New("payment method is required")
	ErrCryptoAssetRequired   = payments.ErrCryptoAssetRequired
)

const checkoutCurrency = "NIO"

var checkoutsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "recytoken_checkouts_total",
	Help: "Marketplace checkouts by payment method and outcome.",
}, []string{"method", "outcome"})

var checkoutKg = promauto.NewCounter(prometheus.CounterOpts{
	Name: "recytoken_checkout_kilograms_total",
	Help: "Kilograms sold through the marketplace.",
})

// CheckoutRequest is a buyer's purchase of part of a material lot
type CheckoutRequest struct {
	MaterialId    string          `json:"materialId"`
	QuantityKg    decimal.Decimal `json:"quantityKg"`
	PaymentMethod string          `json:"paymentMethod"`
	CryptoAsset   string          `json:"cryptoAsset,omitempty"`
}

// Service runs marketplace checkouts against the Entity Store.
type Service struct {
	store    *store.EntityStore
	payments payments.Processor
	ledger   ledger.Recorder
	now      func() time.Time
}

// NewService wires a marketplace. recorder may be nil.
func NewService(entityStore *store.EntityStore, processor payments.Processor, recorder ledger.Recorder) *Service {
	return &Service{
		store:    entityStore,
		payments: processor,
		ledger:   recorder,
		now:      time.Now,
	}
}

// Listing returns the materials on sale that match criteria.
func (s *Service) Listing(criteria search.MaterialCriteria) []models.Material {
	return search.FilterMaterials(s.store.Snapshot().Materials, criteria)
}

// Seller returns the center offering material: the one it is assigned to,
// or else the first center in the material's city.
func (s *Service) Seller(material models.Material) (models.Center, bool) {
	snap := s.store.Snapshot()
	if material.CenterId != "" {
		if c, ok := store.NewLookup(snap).Center(material.CenterId); ok {
			return c, true
		}
	}
	for _, c := range snap.Centers {
		if c.City == material.Location {
			return c, true
		}
	}
	return models.Center{}, false
}

// Quote prices a purchase without side effects.
func (s *Service) Quote(req CheckoutRequest) (*models.Quote, error) {
	material, err := s.validate(req)
	if err != nil {
		return nil, err
	}
	return payments.Quote(req.QuantityKg.Mul(material.PricePerKg), quotedAsset(req))
}

// quotedAsset drops a crypto asset sent along with a non-crypto method
func quotedAsset(req CheckoutRequest) string {
	if req.PaymentMethod != payments.MethodCrypto {
		return ""
	}
	return req.CryptoAsset
}

// Checkout reserves the inventory, charges the buyer and records a sold
// transaction. A failed charge releases the reservation.
func (s *Service) Checkout(ctx context.Context, req CheckoutRequest) (*models.CheckoutResult, error) {
	material, err := s.validate(req)
	if err != nil {
		return nil, err
	}
	quote, err := payments.Quote(req.QuantityKg.Mul(material.PricePerKg), quotedAsset(req))
	if err != nil {
		return nil, err
	}

	if _, err := s.store.AdjustInventory(ctx, material.Id, req.QuantityKg.Neg()); err != nil {
		checkoutsTotal.WithLabelValues(req.PaymentMethod, "rejected").Inc()
		return nil, err
	}

	receipt, err := s.payments.Charge(ctx, payments.ChargeRequest{
		Method:       req.PaymentMethod,
		Amount:       quote.TotalNIO,
		Currency:     checkoutCurrency,
		CryptoAsset:  quote.CryptoAsset,
		CryptoAmount: quote.CryptoAmount,
		Description:  fmt.Sprintf("%s kg of %s", req.QuantityKg.String(), material.Name),
	})
	if err != nil {
		checkoutsTotal.WithLabelValues(req.PaymentMethod, "failed").Inc()
		if _, restoreErr := s.store.AdjustInventory(ctx, material.Id, req.QuantityKg); restoreErr != nil {
			zap.L().Error("Failed to release reserved inventory",
				zap.String("material_id", material.Id),
				zap.String("quantity_kg", req.QuantityKg.String()),
				zap.Error(restoreErr))
		}
		return nil, fmt.Errorf("payment failed: %w", err)
	}

	completedAt := s.now().UTC()
	tx, err := s.store.CreateTransaction(ctx, models.Transaction{
		MaterialId:      material.Id,
		MaterialTokenId: material.TokenId,
		QuantityKg:      req.QuantityKg,
		Date:            completedAt,
		CenterId:        models.MarketplaceBuyerId,
		Status:          models.StatusSold,
	})
	if err != nil {
		return nil, fmt.Errorf("unable to record sale: %w", err)
	}

	s.recordOnLedger(ctx, tx, material, receipt, quote.CryptoAsset, completedAt)

	checkoutsTotal.WithLabelValues(req.PaymentMethod, "completed").Inc()
	checkoutKg.Add(req.QuantityKg.InexactFloat64())

	zap.L().Info("Marketplace checkout completed",
		zap.String("transaction_id", tx.Id),
		zap.String("material_id", material.Id),
		zap.String("quantity_kg", req.QuantityKg.String()),
		zap.String("total_nio", quote.TotalNIO.String()),
		zap.String("payment_reference", receipt.Reference),
		zap.String("payment_status", receipt.Status))

	return &models.CheckoutResult{
		Success:     true,
		Transaction: &tx,
		Quote:       quote,
		Payment:     receipt,
	}, nil
}

func (s *Service) recordOnLedger(ctx context.Context, tx models.Transaction, material models.Material, receipt *models.PaymentReceipt, cryptoAsset string, completedAt time.Time) {
	if s.ledger == nil {
		return
	}
	cc := &models.CheckoutContext{
		PaymentReference: receipt.Reference,
		PaymentMethod:    receipt.Method,
		CryptoAsset:      cryptoAsset,
		CompletedAt:      completedAt,
	}
	if seller, ok := s.Seller(material); ok {
		cc.SellerCenterId = seller.Id
	}
	if err := s.ledger.RecordTransaction(models.WithCheckoutContext(ctx, cc), tx, material); err != nil {
		zap.L().Warn("Failed to record sale on ledger",
			zap.String("transaction_id", tx.Id),
			zap.String("token_id", tx.MaterialTokenId),
			zap.Error(err))
	}
}

func (s *Service) validate(req CheckoutRequest) (models.Material, error) {
	if !req.QuantityKg.IsPositive() {
		return models.Material{}, ErrInvalidQuantity
	}
	if req.PaymentMethod == "" {
		return models.Material{}, ErrPaymentMethodRequired
	}
	if !payments.ValidMethod(req.PaymentMethod) {
		return models.Material{}, fmt.Errorf("%w: %q", payments.ErrUnsupportedMethod, req.PaymentMethod)
	}
	if req.PaymentMethod == payments.MethodCrypto && req.CryptoAsset == "" {
		return models.Material{}, ErrCryptoAssetRequired
	}

	material, err := s.store.Material(req.MaterialId)
	if err != nil {
		return models.Material{}, err
	}
	if req.QuantityKg.GreaterThan(material.InventoryKg) {
		return models.Material{}, fmt.Errorf("material %s has %s kg, requested %s: %w",
			material.Id, material.InventoryKg.String(), req.QuantityKg.String(), store.ErrInsufficientInventory)
	}
	return material, nil
}
