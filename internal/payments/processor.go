package payments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"recytoken-up-go/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Payment methods offered at checkout
const (
	MethodCard         = "Tarjeta Crédito/Débito"
	MethodBankTransfer = "Transferencia Bancaria"
	MethodCrypto       = "Criptomoneda"
)

// Receipt statuses
const (
	StatusApproved = "approved"
	StatusPending  = "pending"
)

var (
	ErrUnsupportedMethod   = errors.New("unsupported payment method")
	ErrInvalidAmount       = errors.New("payment amount must be positive")
	ErrCryptoAssetRequired = errors.New("crypto payments require an asset")
)

// Methods lists the accepted payment methods in display order
var Methods = []string{MethodCard, MethodBankTransfer, MethodCrypto}

// ValidMethod reports whether method is an accepted payment method
func ValidMethod(method string) bool {
	for _, m := range Methods {
		if m == method {
			return true
		}
	}
	return false
}

// ChargeRequest describes a single charge. Amount is in Currency; crypto
// charges also carry the converted CryptoAmount.
type ChargeRequest struct {
	Reference    string
	Method       string
	Amount       decimal.Decimal
	Currency     string
	CryptoAsset  string
	CryptoAmount decimal.Decimal
	Description  string
}

// Processor charges a buyer for a purchase or an invoice.
type Processor interface {
	Charge(ctx context.Context, req ChargeRequest) (*models.PaymentReceipt, error)
}

// Compile-time check: *Simulated must satisfy Processor.
var _ Processor = (*Simulated)(nil)

// Simulated approves every well-formed charge without contacting anyone.
type Simulated struct {
	now func() time.Time
}

func NewSimulated() *Simulated {
	return &Simulated{now: time.Now}
}

func (s *Simulated) Charge(ctx context.Context, req ChargeRequest) (*models.PaymentReceipt, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	reference := req.Reference
	if reference == "" {
		reference = uuid.New().String()
	}

	receipt := &models.PaymentReceipt{
		Reference:   reference,
		Method:      req.Method,
		Status:      StatusApproved,
		Amount:      req.Amount,
		Currency:    req.Currency,
		ProcessedAt: s.now().UTC(),
	}
	if req.Method == MethodCrypto {
		receipt.Amount = req.CryptoAmount
		receipt.Currency = req.CryptoAsset
	}

	zap.L().Info("Simulated payment approved",
		zap.String("reference", receipt.Reference),
		zap.String("method", req.Method),
		zap.String("amount", receipt.Amount.String()),
		zap.String("currency", receipt.Currency))
	return receipt, nil
}

func validate(req ChargeRequest) error {
	if !ValidMethod(req.Method) {
		return fmt.Errorf("%w: %q", ErrUnsupportedMethod, req.Method)
	}
	if !req.Amount.IsPositive() {
		return fmt.Errorf("%w: %s", ErrInvalidAmount, req.Amount.String())
	}
	if req.Method == MethodCrypto {
		if _, ok := CryptoRates[req.CryptoAsset]; !ok {
			return fmt.Errorf("%w: %q", ErrUnsupportedCrypto, req.CryptoAsset)
		}
	}
	return nil
}
