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

package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionView is a transaction with its references resolved to names
type TransactionView struct {
	Transaction
	MaterialName string `json:"materialName"`
	CenterName   string `json:"centerName"`
}

// InvoiceItemView is an invoice line with the material name resolved
type InvoiceItemView struct {
	InvoiceItem
	MaterialName string `json:"materialName"`
}

// InvoiceView is an invoice with the center and material names resolved
type InvoiceView struct {
	Invoice
	CenterName string            `json:"centerName"`
	Items      []InvoiceItemView `json:"items"`
}

// CenterWeight is one bar of the processed-weight chart
type CenterWeight struct {
	CenterId  string          `json:"centerId"`
	City      string          `json:"city"`
	Processed decimal.Decimal `json:"processed"`
}

// CategoryWeight is one slice of the inventory distribution chart
type CategoryWeight struct {
	Category Category        `json:"category"`
	WeightKg decimal.Decimal `json:"weightKg"`
}

// DailyCount is one point of the daily activity line chart
type DailyCount struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// DashboardSummary bundles every dashboard aggregate
type DashboardSummary struct {
	TotalTokens          int               `json:"totalTokens"`
	ActiveMaterials      int               `json:"activeMaterials"`
	CollectedTonnes      decimal.Decimal   `json:"collectedTonnes"`
	TransactionCount     int               `json:"transactionCount"`
	CO2SavedTonnes       decimal.Decimal   `json:"co2SavedTonnes"`
	ActiveCenters        int               `json:"activeCenters"`
	TopCenters           []CenterWeight    `json:"topCenters"`
	CategoryDistribution []CategoryWeight  `json:"categoryDistribution"`
	DailyActivity        []DailyCount      `json:"dailyActivity"`
	RecentActivity       []TransactionView `json:"recentActivity"`
	GeneratedAt          time.Time         `json:"generatedAt"`
}

// TraceTimeline is the reconstructed history of a material token
type TraceTimeline struct {
	TokenId  string            `json:"tokenId"`
	Material *Material         `json:"material,omitempty"`
	Events   []TransactionView `json:"events"`
	Ledger   []LedgerEntry     `json:"ledger,omitempty"`
}

// CheckoutResult is returned by a completed marketplace purchase
type CheckoutResult struct {
	Success     bool            `json:"success"`
	Transaction *Transaction    `json:"transaction,omitempty"`
	Quote       *Quote          `json:"quote,omitempty"`
	Payment     *PaymentReceipt `json:"payment,omitempty"`
	Error       string          `json:"error,omitempty"`
}

// Quote prices a purchase in local currency, USD and optionally crypto
type Quote struct {
	TotalNIO     decimal.Decimal `json:"totalNio"`
	TotalUSD     decimal.Decimal `json:"totalUsd"`
	CryptoAsset  string          `json:"cryptoAsset,omitempty"`
	CryptoAmount decimal.Decimal `json:"cryptoAmount"`
}

// ReceiptPayload is the data encoded in an invoice receipt QR code
type ReceiptPayload struct {
	InvoiceNumber string          `json:"invoiceNumber"`
	Client        string          `json:"client"`
	Total         decimal.Decimal `json:"total"`
	Date          time.Time       `json:"date"`
}
