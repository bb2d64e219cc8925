package seed

import (
	"time"

	"recytoken-up-go/internal/billing"
	"recytoken-up-go/internal/models"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const day = 24 * time.Hour

func d(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

// Defaults returns the built-in mock data set with dates relative to now.
func Defaults(now time.Time) models.Snapshot {
	now = now.UTC()
	return models.Snapshot{
		Materials:    defaultMaterials(),
		Centers:      defaultCenters(),
		Transactions: defaultTransactions(now),
		Invoices:     defaultInvoices(now),
	}
}

func defaultMaterials() []models.Material {
	return []models.Material{
		{Id: "M001", Name: "Botellas PET", Description: "Plástico PET transparente de botellas de bebidas.", Category: models.CategoryPlastic, Subcategory: "PET", InventoryKg: d(1200), PricePerKg: d(15), Location: "Managua", Quality: "Grado A", TokenId: "TKN-PET-001X", WalletAddress: "0x1A...a2B", CenterId: "C01"},
		{Id: "M002", Name: "Cartón Corrugado", Description: "Cajas de cartón de embalaje.", Category: models.CategoryPaper, Subcategory: "Cartón", InventoryKg: d(3500), PricePerKg: d(8), Location: "León", Quality: "Grado B", TokenId: "TKN-PAP-002Y", WalletAddress: "0x2B...b3C", CenterId: "C02"},
		{Id: "M003", Name: "Vidrio Ámbar", Description: "Botellas de vidrio color ámbar, principalmente de cerveza.", Category: models.CategoryGlass, Subcategory: "Ámbar", InventoryKg: d(850), PricePerKg: d(5), Location: "Managua", Quality: "Grado A", TokenId: "TKN-GLS-003Z", WalletAddress: "0x3C...c4D", CenterId: "C01"},
		{Id: "M004", Name: "Latas de Aluminio", Description: "Latas de bebidas de aluminio.", Category: models.CategoryMetal, Subcategory: "Aluminio", InventoryKg: d(500), PricePerKg: d(40), Location: "Granada", Quality: "Grado A", TokenId: "TKN-MET-004A", WalletAddress: "0x4D...d5E", CenterId: "C03"},
		{Id: "M005", Name: "Residuos Orgánicos", Description: "Composta de residuos de alimentos y jardín.", Category: models.CategoryOrganic, Subcategory: "Compostables", InventoryKg: d(5000), PricePerKg: d(2), Location: "Masaya", Quality: "N/A", TokenId: "TKN-ORG-005B", WalletAddress: "0x5E...e6F", CenterId: "C04"},
		{Id: "M006", Name: "Placas de Circuito", Description: "Placas base de computadoras y otros electrónicos.", Category: models.CategoryElectronic, Subcategory: "Placas Base", InventoryKg: d(150), PricePerKg: d(150), Location: "Managua", Quality: "Mixta", TokenId: "TKN-ELE-006C", WalletAddress: "0x6F...f7G", CenterId: "C01"},
		{Id: "M007", Name: "Papel de Oficina", Description: "Papel bond blanco, usado.", Category: models.CategoryPaper, Subcategory: "Oficina", InventoryKg: d(900), PricePerKg: d(9), Location: "León", Quality: "Grado A", TokenId: "TKN-PAP-007D", WalletAddress: "0x7G...g8H", CenterId: "C02"},
	}
}

func defaultCenters() []models.Center {
	return []models.Center{
		{Id: "C01", ClientId: "CLI1001", CompanyName: "Recicladora del Norte S.A.", PersonType: models.PersonJuridica, Classification: models.ClassificationSupplier, TaxId: "J0310000123456", Phone: "+505 2278 1234", Email: "contacto@recinorte.com.ni", Website: "https://recinorte.com.ni", Country: "Nicaragua", City: "Managua", FullAddress: "Km 8 Carretera Norte", Latitude: "12.1645", Longitude: "-86.2712", ProcessedMaterials: d(15000), Rating: 4.5, Reviews: 34, Status: models.CenterActive},
		{Id: "C02", ClientId: "CLI1002", CompanyName: "Vidrios y Plásticos de León", PersonType: models.PersonJuridica, Classification: models.ClassificationClient, TaxId: "J0310000654321", Phone: "+505 2311 5678", Email: "ventas@vipleon.com", Website: "https://vipleon.com", Country: "Nicaragua", City: "León", FullAddress: "Zona Franca, Lote 12", Latitude: "12.4352", Longitude: "-86.8810", ProcessedMaterials: d(8000), Rating: 4.2, Reviews: 21, Status: models.CenterActive},
		{Id: "C03", ClientId: "CLI1003", CompanyName: "Comercial Granada Verde", PersonType: models.PersonNatural, Classification: models.ClassificationSupplier, TaxId: "201-100580-0001A", Phone: "+505 8888 9999", Email: "verdegranada@gmail.com", Country: "Nicaragua", City: "Granada", FullAddress: "Calle La Calzada, de la iglesia 2c al lago", Latitude: "11.9298", Longitude: "-85.9520", ProcessedMaterials: d(5500), Rating: 4.8, Reviews: 45, Status: models.CenterActive},
		{Id: "C04", ClientId: "CLI1004", CompanyName: "Centro de Acopio Masaya", PersonType: models.PersonNatural, Classification: models.ClassificationSupplier, TaxId: "441-251275-0002B", Phone: "+505 8765 4321", Email: "acopio.masaya@yahoo.com", Country: "Nicaragua", City: "Masaya", FullAddress: "Del mercado de artesanías 1c arriba", Latitude: "11.9744", Longitude: "-86.0984", ProcessedMaterials: d(12000), Rating: 4.0, Reviews: 15, Status: models.CenterActive},
	}
}

func defaultTransactions(now time.Time) []models.Transaction {
	return []models.Transaction{
		{Id: "T001", MaterialId: "M001", MaterialTokenId: "TKN-PET-001X", QuantityKg: d(250), Date: now.Add(-1 * day), CenterId: "C01", Status: models.StatusProcessed},
		{Id: "T002", MaterialId: "M002", MaterialTokenId: "TKN-PAP-002Y", QuantityKg: d(1200), Date: now.Add(-2 * day), CenterId: "C02", Status: models.StatusProcessing},
		{Id: "T003", MaterialId: "M001", MaterialTokenId: "TKN-PET-001X", QuantityKg: d(500), Date: now.Add(-3 * day), CenterId: "C03", Status: models.StatusCollected},
		{Id: "T004", MaterialId: "M004", MaterialTokenId: "TKN-MET-004A", QuantityKg: d(100), Date: now.Add(-4 * day), CenterId: "C01", Status: models.StatusSold},
		{Id: "T005", MaterialId: "M003", MaterialTokenId: "TKN-GLS-003Z", QuantityKg: d(300), Date: now.Add(-5 * day), CenterId: "C04", Status: models.StatusProcessed},
	}
}

func defaultInvoices(now time.Time) []models.Invoice {
	params := []billing.InvoiceParams{
		{Id: "INV001", InvoiceNumber: "FAC-2024-001", CenterId: "C02", IssueDate: now.Add(-30 * day), DueDate: now.Add(-15 * day), Status: models.InvoicePaid,
			Items: []billing.ItemParams{{MaterialId: "M002", QuantityKg: d(1200), PricePerKg: d(8)}}},
		{Id: "INV002", InvoiceNumber: "FAC-2024-002", CenterId: "C01", IssueDate: now.Add(-10 * day), DueDate: now.Add(5 * day), Status: models.InvoicePending,
			Items: []billing.ItemParams{{MaterialId: "M001", QuantityKg: d(250), PricePerKg: d(15)}}},
		{Id: "INV003", InvoiceNumber: "FAC-2024-003", CenterId: "C03", IssueDate: now.Add(-45 * day), DueDate: now.Add(-30 * day), Status: models.InvoiceOverdue,
			Items: []billing.ItemParams{{MaterialId: "M004", QuantityKg: d(50), PricePerKg: d(40)}}},
	}

	invoices := make([]models.Invoice, 0, len(params))
	for _, p := range params {
		inv, err := billing.NewInvoice(p)
		if err != nil {
			zap.L().Error("Skipping invalid default invoice", zap.String("invoice_id", p.Id), zap.Error(err))
			continue
		}
		invoices = append(invoices, inv)
	}
	return invoices
}
