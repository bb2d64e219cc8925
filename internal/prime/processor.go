package prime

import (
	"context"
	"fmt"
	"sync"
	"time"

	"recytoken-up-go/internal/models"
	"recytoken-up-go/internal/payments"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var _ payments.Processor = (*Processor)(nil)

// walletAPI is the part of Service the processor needs
type walletAPI interface {
	FindDefaultPortfolio(ctx context.Context) (*models.Portfolio, error)
	FindTradingWallet(ctx context.Context, portfolioId, symbol string) (*models.Wallet, error)
	CreateDepositAddress(ctx context.Context, portfolioId string, wallet models.Wallet) (*models.DepositAddress, error)
}

// Processor takes crypto payments into a Prime trading wallet. Each charge
// gets a fresh deposit address and stays pending until funds arrive.
// Other methods go to the fallback processor.
type Processor struct {
	api      walletAPI
	fallback payments.Processor
	now      func() time.Time

	mu          sync.Mutex
	portfolioId string
}

func NewProcessor(service *Service, fallback payments.Processor) *Processor {
	return newProcessor(service, fallback)
}

func newProcessor(api walletAPI, fallback payments.Processor) *Processor {
	if fallback == nil {
		fallback = payments.NewSimulated()
	}
	return &Processor{api: api, fallback: fallback, now: time.Now}
}

func (p *Processor) Charge(ctx context.Context, req payments.ChargeRequest) (*models.PaymentReceipt, error) {
	if req.Method != payments.MethodCrypto {
		return p.fallback.Charge(ctx, req)
	}
	if !req.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: %s", payments.ErrInvalidAmount, req.Amount.String())
	}
	symbol, ok := payments.CryptoSymbols[req.CryptoAsset]
	if !ok {
		return nil, fmt.Errorf("%w: %q", payments.ErrUnsupportedCrypto, req.CryptoAsset)
	}

	portfolioId, err := p.defaultPortfolio(ctx)
	if err != nil {
		return nil, err
	}

	wallet, err := p.api.FindTradingWallet(ctx, portfolioId, symbol)
	if err != nil {
		return nil, err
	}
	address, err := p.api.CreateDepositAddress(ctx, portfolioId, *wallet)
	if err != nil {
		return nil, err
	}

	reference := req.Reference
	if reference == "" {
		reference = uuid.New().String()
	}

	zap.L().Info("Crypto payment awaiting deposit",
		zap.String("reference", reference),
		zap.String("asset", symbol),
		zap.String("amount", req.CryptoAmount.String()),
		zap.String("address", address.Address),
		zap.String("network", address.Network))

	return &models.PaymentReceipt{
		Reference:      reference,
		Method:         req.Method,
		Status:         payments.StatusPending,
		Amount:         req.CryptoAmount,
		Currency:       symbol,
		DepositAddress: address.Address,
		Network:        address.Network,
		ProcessedAt:    p.now().UTC(),
	}, nil
}

// defaultPortfolio resolves the portfolio once and caches it
func (p *Processor) defaultPortfolio(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.portfolioId != "" {
		return p.portfolioId, nil
	}
	portfolio, err := p.api.FindDefaultPortfolio(ctx)
	if err != nil {
		return "", fmt.Errorf("unable to resolve default portfolio: %w", err)
	}
	p.portfolioId = portfolio.Id
	zap.L().Info("Using Prime portfolio", zap.String("portfolio_id", portfolio.Id), zap.String("name", portfolio.Name))
	return p.portfolioId, nil
}
