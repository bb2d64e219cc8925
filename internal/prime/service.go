package prime

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"recytoken-up-go/internal/models"

	"github.com/coinbase-samples/prime-sdk-go/client"
	"github.com/coinbase-samples/prime-sdk-go/credentials"
	"github.com/coinbase-samples/prime-sdk-go/model"
	"github.com/coinbase-samples/prime-sdk-go/portfolios"
	"github.com/coinbase-samples/prime-sdk-go/wallets"
	"golang.org/x/net/http2"
)

const (
	defaultPortfolioName = "Default Portfolio"
	tradingWalletType    = "TRADING"
)

var (
	ErrPortfolioNotFound = errors.New("default portfolio not found")
	ErrWalletNotFound    = errors.New("no trading wallet for asset")
)

// Networks deposit addresses are created on, per ticker
var Networks = map[string]string{
	"BTC":  "bitcoin-mainnet",
	"ETH":  "ethereum-mainnet",
	"USDT": "ethereum-mainnet",
}

// Service wraps the Prime REST endpoints used to receive crypto payments.
type Service struct {
	client        client.RestClient
	portfoliosSvc portfolios.PortfoliosService
	walletsSvc    wallets.WalletsService
}

func NewService(creds *credentials.Credentials) (*Service, error) {
	httpClient, err := NewHttpClient()
	if err != nil {
		return nil, fmt.Errorf("unable to create custom http client: %w", err)
	}

	restClient := client.NewRestClient(creds, httpClient)

	return &Service{
		client:        restClient,
		portfoliosSvc: portfolios.NewPortfoliosService(restClient),
		walletsSvc:    wallets.NewWalletsService(restClient),
	}, nil
}

// NewHttpClient returns an HTTP/2 capable client with conservative timeouts.
// The geocoder shares it.
func NewHttpClient() (http.Client, error) {
	dialer := &net.Dialer{KeepAlive: 30 * time.Second, Timeout: 15 * time.Second}
	tr := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           dialer.DialContext,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 30 * time.Second,
		ExpectContinueTimeout: 5 * time.Second,
		MaxIdleConns:          10,
		MaxIdleConnsPerHost:   5,
		IdleConnTimeout:       90 * time.Second,
	}
	if err := http2.ConfigureTransport(tr); err != nil {
		return http.Client{}, err
	}
	return http.Client{Transport: tr, Timeout: 60 * time.Second}, nil
}

// FindDefaultPortfolio returns the portfolio crypto payments are received into
func (s *Service) FindDefaultPortfolio(ctx context.Context) (*models.Portfolio, error) {
	response, err := s.portfoliosSvc.ListPortfolios(ctx, &portfolios.ListPortfoliosRequest{})
	if err != nil {
		return nil, fmt.Errorf("unable to list portfolios: %w", err)
	}
	for _, p := range response.Portfolios {
		if p != nil && p.Name == defaultPortfolioName {
			return &models.Portfolio{Id: p.Id, Name: p.Name}, nil
		}
	}
	return nil, fmt.Errorf("%w: %q among %d portfolios", ErrPortfolioNotFound, defaultPortfolioName, len(response.Portfolios))
}

// FindTradingWallet returns the TRADING wallet holding symbol in portfolioId
func (s *Service) FindTradingWallet(ctx context.Context, portfolioId, symbol string) (*models.Wallet, error) {
	response, err := s.walletsSvc.ListWallets(ctx, &wallets.ListWalletsRequest{
		PortfolioId: portfolioId,
		Type:        tradingWalletType,
		Symbols:     []string{symbol},
	})
	if err != nil {
		return nil, fmt.Errorf("unable to list %s wallets: %w", symbol, err)
	}
	return pickTradingWallet(toWallets(response.Wallets), symbol)
}

func toWallets(in []*model.Wallet) []models.Wallet {
	out := make([]models.Wallet, 0, len(in))
	for _, w := range in {
		if w == nil {
			continue
		}
		out = append(out, models.Wallet{Id: w.Id, Name: w.Name, Symbol: w.Symbol, Type: w.Type})
	}
	return out
}

// pickTradingWallet returns the first TRADING wallet whose symbol matches
func pickTradingWallet(list []models.Wallet, symbol string) (*models.Wallet, error) {
	for _, w := range list {
		if strings.EqualFold(w.Symbol, symbol) && (w.Type == "" || w.Type == tradingWalletType) {
			return &w, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrWalletNotFound, symbol)
}

// CreateDepositAddress opens a fresh address on wallet for one incoming payment
func (s *Service) CreateDepositAddress(ctx context.Context, portfolioId string, wallet models.Wallet) (*models.DepositAddress, error) {
	symbol := strings.ToUpper(wallet.Symbol)
	network, ok := Networks[symbol]
	if !ok {
		return nil, fmt.Errorf("no deposit network for %s", symbol)
	}
	response, err := s.walletsSvc.CreateWalletAddress(ctx, &wallets.CreateWalletAddressRequest{
		PortfolioId: portfolioId,
		WalletId:    wallet.Id,
		NetworkId:   network,
	})
	if err != nil {
		return nil, fmt.Errorf("unable to create %s deposit address: %w", symbol, err)
	}
	return &models.DepositAddress{
		Id:      response.AccountIdentifier,
		Address: response.Address,
		Network: network,
		Asset:   symbol,
	}, nil
}
