package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Portfolio represents a Prime portfolio
type Portfolio struct {
	Id   string
	Name string
}

// Wallet represents a Prime wallet
type Wallet struct {
	Id     string
	Name   string
	Symbol string
	Type   string
}

// DepositAddress represents a Prime deposit address
type DepositAddress struct {
	Id      string
	Address string
	Network string
	Asset   string
}

// PaymentReceipt is the outcome of a charge against a payment processor
type PaymentReceipt struct {
	Reference      string          `json:"reference"`
	Method         string          `json:"method"`
	Status         string          `json:"status"`
	Amount         decimal.Decimal `json:"amount"`
	Currency       string          `json:"currency"`
	DepositAddress string          `json:"depositAddress,omitempty"`
	Network        string          `json:"network,omitempty"`
	ProcessedAt    time.Time       `json:"processedAt"`
}

// LedgerEntry is one recorded movement of a material token
type LedgerEntry struct {
	Reference   string          `json:"reference"`
	TokenId     string          `json:"tokenId"`
	EventType   string          `json:"eventType"`
	Source      string          `json:"source"`
	Destination string          `json:"destination"`
	QuantityKg  decimal.Decimal `json:"quantityKg"`
	Timestamp   time.Time       `json:"timestamp"`
}

// GeoPoint is a latitude/longitude pair kept as decimal strings
type GeoPoint struct {
	Latitude  string `json:"latitude"`
	Longitude string `json:"longitude"`
}
