package seed

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"recytoken-up-go/internal/billing"
	"recytoken-up-go/internal/models"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v2"
)

type MaterialSeed struct {
	Id            string  `yaml:"id"`
	Name          string  `yaml:"name"`
	Description   string  `yaml:"description"`
	Category      string  `yaml:"category"`
	Subcategory   string  `yaml:"subcategory"`
	InventoryKg   float64 `yaml:"inventory_kg"`
	PricePerKg    float64 `yaml:"price_per_kg"`
	Location      string  `yaml:"location"`
	Quality       string  `yaml:"quality"`
	TokenId       string  `yaml:"token_id"`
	WalletAddress string  `yaml:"wallet_address"`
	CenterId      string  `yaml:"center_id"`
}

type CenterSeed struct {
	Id                 string  `yaml:"id"`
	ClientId           string  `yaml:"client_id"`
	CompanyName        string  `yaml:"company_name"`
	PersonType         string  `yaml:"person_type"`
	Classification     string  `yaml:"classification"`
	TaxId              string  `yaml:"tax_id"`
	Phone              string  `yaml:"phone"`
	Email              string  `yaml:"email"`
	Website            string  `yaml:"website"`
	Country            string  `yaml:"country"`
	City               string  `yaml:"city"`
	FullAddress        string  `yaml:"full_address"`
	Latitude           string  `yaml:"latitude"`
	Longitude          string  `yaml:"longitude"`
	ProcessedMaterials float64 `yaml:"processed_kg"`
	Rating             float64 `yaml:"rating"`
	Reviews            int     `yaml:"reviews"`
	Status             string  `yaml:"status"`
}

// TransactionSeed dates are given as whole days before load time
type TransactionSeed struct {
	Id         string  `yaml:"id"`
	MaterialId string  `yaml:"material_id"`
	TokenId    string  `yaml:"token_id"`
	QuantityKg float64 `yaml:"quantity_kg"`
	DaysAgo    int     `yaml:"days_ago"`
	CenterId   string  `yaml:"center_id"`
	Status     string  `yaml:"status"`
}

type InvoiceItemSeed struct {
	MaterialId string  `yaml:"material_id"`
	QuantityKg float64 `yaml:"quantity_kg"`
	PricePerKg float64 `yaml:"price_per_kg"`
}

// InvoiceSeed totals are always recomputed from the items
type InvoiceSeed struct {
	Id            string            `yaml:"id"`
	InvoiceNumber string            `yaml:"invoice_number"`
	CenterId      string            `yaml:"center_id"`
	IssuedDaysAgo int               `yaml:"issued_days_ago"`
	DueInDays     int               `yaml:"due_in_days"`
	Status        string            `yaml:"status"`
	Items         []InvoiceItemSeed `yaml:"items"`
}

type SeedFile struct {
	Materials    []MaterialSeed    `yaml:"materials"`
	Centers      []CenterSeed      `yaml:"centers"`
	Transactions []TransactionSeed `yaml:"transactions"`
	Invoices     []InvoiceSeed     `yaml:"invoices"`
}

// Load returns the snapshot described by seedFile, or the built-in defaults
// when seedFile is empty.
func Load(seedFile string, now time.Time) (models.Snapshot, error) {
	if seedFile == "" {
		return Defaults(now), nil
	}

	var seedPath string
	if filepath.IsAbs(seedFile) {
		seedPath = seedFile
	} else {
		wd, err := os.Getwd()
		if err != nil {
			return models.Snapshot{}, fmt.Errorf("failed to get working directory: %w", err)
		}
		seedPath = filepath.Join(wd, seedFile)
	}

	data, err := os.ReadFile(seedPath)
	if err != nil {
		return models.Snapshot{}, fmt.Errorf("unable to read %s: %w", seedFile, err)
	}

	return Parse(data, now)
}

// Parse decodes a YAML seed document into a snapshot.
func Parse(data []byte, now time.Time) (models.Snapshot, error) {
	var file SeedFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return models.Snapshot{}, fmt.Errorf("unable to parse seed file: %w", err)
	}

	now = now.UTC()
	var snap models.Snapshot

	for i, m := range file.Materials {
		if m.Id == "" || m.Name == "" {
			return models.Snapshot{}, fmt.Errorf("material at index %d missing id or name", i)
		}
		if !models.Category(m.Category).Valid() {
			return models.Snapshot{}, fmt.Errorf("material %s has unknown category %q", m.Id, m.Category)
		}
		snap.Materials = append(snap.Materials, models.Material{
			Id:            m.Id,
			Name:          m.Name,
			Description:   m.Description,
			Category:      models.Category(m.Category),
			Subcategory:   m.Subcategory,
			InventoryKg:   decimal.NewFromFloat(m.InventoryKg),
			PricePerKg:    decimal.NewFromFloat(m.PricePerKg),
			Location:      m.Location,
			Quality:       m.Quality,
			TokenId:       m.TokenId,
			WalletAddress: m.WalletAddress,
			CenterId:      m.CenterId,
		})
	}

	for i, c := range file.Centers {
		if c.Id == "" || c.CompanyName == "" {
			return models.Snapshot{}, fmt.Errorf("center at index %d missing id or company name", i)
		}
		status := models.CenterStatus(c.Status)
		if status == "" {
			status = models.CenterActive
		}
		snap.Centers = append(snap.Centers, models.Center{
			Id:                 c.Id,
			ClientId:           c.ClientId,
			CompanyName:        c.CompanyName,
			PersonType:         models.PersonType(c.PersonType),
			Classification:     models.Classification(c.Classification),
			TaxId:              c.TaxId,
			Phone:              c.Phone,
			Email:              c.Email,
			Website:            c.Website,
			Country:            c.Country,
			City:               c.City,
			FullAddress:        c.FullAddress,
			Latitude:           c.Latitude,
			Longitude:          c.Longitude,
			ProcessedMaterials: decimal.NewFromFloat(c.ProcessedMaterials),
			Rating:             c.Rating,
			Reviews:            c.Reviews,
			Status:             status,
		})
	}

	for i, t := range file.Transactions {
		if t.Id == "" || t.TokenId == "" {
			return models.Snapshot{}, fmt.Errorf("transaction at index %d missing id or token_id", i)
		}
		snap.Transactions = append(snap.Transactions, models.Transaction{
			Id:              t.Id,
			MaterialId:      t.MaterialId,
			MaterialTokenId: t.TokenId,
			QuantityKg:      decimal.NewFromFloat(t.QuantityKg),
			Date:            now.Add(-time.Duration(t.DaysAgo) * day),
			CenterId:        t.CenterId,
			Status:          models.TransactionStatus(t.Status),
		})
	}

	for _, inv := range file.Invoices {
		params := billing.InvoiceParams{
			Id:            inv.Id,
			InvoiceNumber: inv.InvoiceNumber,
			CenterId:      inv.CenterId,
			IssueDate:     now.Add(-time.Duration(inv.IssuedDaysAgo) * day),
			DueDate:       now.Add(time.Duration(inv.DueInDays) * day),
			Status:        models.InvoiceStatus(inv.Status),
		}
		for _, item := range inv.Items {
			params.Items = append(params.Items, billing.ItemParams{
				MaterialId: item.MaterialId,
				QuantityKg: decimal.NewFromFloat(item.QuantityKg),
				PricePerKg: decimal.NewFromFloat(item.PricePerKg),
			})
		}
		built, err := billing.NewInvoice(params)
		if err != nil {
			return models.Snapshot{}, fmt.Errorf("invoice %s: %w", inv.Id, err)
		}
		snap.Invoices = append(snap.Invoices, built)
	}

	return snap, nil
}
