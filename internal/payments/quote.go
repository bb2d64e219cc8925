package payments

import (
	"errors"
	"fmt"

	"recytoken-up-go/internal/models"

	"github.com/shopspring/decimal"
)

var ErrUnsupportedCrypto = errors.New("unsupported crypto asset")

// NIOPerUSD is the fixed córdoba to dollar conversion used for quotes
var NIOPerUSD = decimal.NewFromInt(37)

// CryptoRates are USD prices per unit of each accepted asset
var CryptoRates = map[string]decimal.Decimal{
	"Bitcoin":  decimal.NewFromInt(65000),
	"Ethereum": decimal.NewFromInt(3500),
	"USDT":     decimal.NewFromInt(1),
}

// CryptoSymbols maps accepted assets to their ticker symbols
var CryptoSymbols = map[string]string{
	"Bitcoin":  "BTC",
	"Ethereum": "ETH",
	"USDT":     "USDT",
}

const cryptoPlaces = 8

// Quote prices totalNIO in USD and, when asset is set, in that crypto asset.
func Quote(totalNIO decimal.Decimal, asset string) (*models.Quote, error) {
	quote := &models.Quote{
		TotalNIO:     totalNIO,
		TotalUSD:     totalNIO.Div(NIOPerUSD).Round(2),
		CryptoAmount: decimal.Zero,
	}
	if asset == "" {
		return quote, nil
	}

	rate, ok := CryptoRates[asset]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedCrypto, asset)
	}
	quote.CryptoAsset = asset
	quote.CryptoAmount = totalNIO.Div(NIOPerUSD).Div(rate).Round(cryptoPlaces)
	return quote, nil
}
