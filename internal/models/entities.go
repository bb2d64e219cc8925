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

// Category is one of the six fixed material categories
type Category string

const (
	CategoryPlastic    Category = "Plástico"
	CategoryPaper      Category = "Papel y Cartón"
	CategoryGlass      Category = "Vidrio"
	CategoryMetal      Category = "Metales"
	CategoryOrganic    Category = "Orgánico"
	CategoryElectronic Category = "Electrónicos"
)

// Categories lists every category in display order
var Categories = []Category{
	CategoryPlastic,
	CategoryPaper,
	CategoryGlass,
	CategoryMetal,
	CategoryOrganic,
	CategoryElectronic,
}

// Valid reports whether c is one of the fixed categories
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// TransactionStatus follows Collected -> Processing -> Processed -> Sold.
// Transitions are not enforced.
type TransactionStatus string

const (
	StatusCollected  TransactionStatus = "Recolectado"
	StatusProcessing TransactionStatus = "En Proceso"
	StatusProcessed  TransactionStatus = "Procesado"
	StatusSold       TransactionStatus = "Vendido"
)

// TransactionStatuses lists the lifecycle in order
var TransactionStatuses = []TransactionStatus{
	StatusCollected,
	StatusProcessing,
	StatusProcessed,
	StatusSold,
}

var transactionStages = map[TransactionStatus]int{
	StatusCollected:  0,
	StatusProcessing: 1,
	StatusProcessed:  2,
	StatusSold:       3,
}

// Stage returns the lifecycle position of s, or -1 when s is unknown
func (s TransactionStatus) Stage() int {
	if stage, ok := transactionStages[s]; ok {
		return stage
	}
	return -1
}

type InvoiceStatus string

const (
	InvoicePending InvoiceStatus = "Pendiente"
	InvoicePaid    InvoiceStatus = "Pagada"
	InvoiceOverdue InvoiceStatus = "Vencida"
)

type CenterStatus string

const (
	CenterActive   CenterStatus = "Activo"
	CenterInactive CenterStatus = "Inactivo"
)

type PersonType string

const (
	PersonNatural  PersonType = "Persona Natural"
	PersonJuridica PersonType = "Persona Jurídica"
)

type Classification string

const (
	ClassificationClient   Classification = "Cliente"
	ClassificationSupplier Classification = "Proveedor"
)

// MarketplaceBuyerId is the reserved center id for marketplace purchases
const (
	MarketplaceBuyerId   = "marketplace-buyer"
	MarketplaceBuyerName = "Marketplace Buyer"
)

// Material represents a tokenized lot of recyclable material
type Material struct {
	Id            string          `json:"id"`
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	Category      Category        `json:"category"`
	Subcategory   string          `json:"subcategory"`
	InventoryKg   decimal.Decimal `json:"inventoryKg"`
	PricePerKg    decimal.Decimal `json:"pricePerKg"`
	Location      string          `json:"location"`
	Quality       string          `json:"quality"`
	TokenId       string          `json:"tokenId"`
	WalletAddress string          `json:"walletAddress"`
	ImageUrl      string          `json:"imageUrl,omitempty"`
	CenterId      string          `json:"centerId,omitempty"`
}

// Center represents a collection center in the directory
type Center struct {
	Id                 string          `json:"id"`
	ClientId           string          `json:"clientId"`
	CompanyName        string          `json:"companyName"`
	PersonType         PersonType      `json:"personType"`
	Classification     Classification  `json:"classification"`
	TaxId              string          `json:"taxId"`
	Phone              string          `json:"phone"`
	Email              string          `json:"email"`
	Website            string          `json:"website"`
	Country            string          `json:"country"`
	City               string          `json:"city"`
	FullAddress        string          `json:"fullAddress"`
	Latitude           string          `json:"latitude"`
	Longitude          string          `json:"longitude"`
	ProcessedMaterials decimal.Decimal `json:"processedMaterials"`
	Rating             float64         `json:"rating"`
	Reviews            int             `json:"reviews"`
	Status             CenterStatus    `json:"status"`
}

// Transaction is one movement of a material token. Names are resolved
// from MaterialId and CenterId at read time.
type Transaction struct {
	Id              string            `json:"id"`
	MaterialId      string            `json:"materialId"`
	MaterialTokenId string            `json:"materialTokenId"`
	QuantityKg      decimal.Decimal   `json:"quantityKg"`
	Date            time.Time         `json:"date"`
	CenterId        string            `json:"centerId"`
	Status          TransactionStatus `json:"status"`
}

// InvoiceItem is a single billed line
type InvoiceItem struct {
	MaterialId string          `json:"materialId"`
	QuantityKg decimal.Decimal `json:"quantityKg"`
	PricePerKg decimal.Decimal `json:"pricePerKg"`
	Total      decimal.Decimal `json:"total"`
}

type Invoice struct {
	Id            string          `json:"id"`
	InvoiceNumber string          `json:"invoiceNumber"`
	CenterId      string          `json:"centerId"`
	IssueDate     time.Time       `json:"issueDate"`
	DueDate       time.Time       `json:"dueDate"`
	Items         []InvoiceItem   `json:"items"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	Tax           decimal.Decimal `json:"tax"`
	Total         decimal.Decimal `json:"total"`
	Status        InvoiceStatus   `json:"status"`
}

// Snapshot holds the four collections at a point in time
type Snapshot struct {
	Materials    []Material    `json:"materials"`
	Centers      []Center      `json:"centers"`
	Transactions []Transaction `json:"transactions"`
	Invoices     []Invoice     `json:"invoices"`
}

// Backup is the export format of a snapshot
type Backup struct {
	Snapshot
	Timestamp time.Time `json:"timestamp"`
}
