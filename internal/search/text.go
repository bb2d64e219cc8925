package search

import (
	"strings"

	"recytoken-up-go/internal/models"
)

func containsFold(field, term string) bool {
	return strings.Contains(strings.ToLower(field), term)
}

func normalize(term string) string {
	return strings.ToLower(strings.TrimSpace(term))
}

// SearchMaterials matches term against name, category and location.
func SearchMaterials(materials []models.Material, term string) []models.Material {
	term = normalize(term)
	out := make([]models.Material, 0, len(materials))
	for _, m := range materials {
		if term == "" ||
			containsFold(m.Name, term) ||
			containsFold(string(m.Category), term) ||
			containsFold(m.Location, term) {
			out = append(out, m)
		}
	}
	return out
}

// SearchCenters matches term against company name, city and client id.
func SearchCenters(centers []models.Center, term string) []models.Center {
	term = normalize(term)
	out := make([]models.Center, 0, len(centers))
	for _, c := range centers {
		if term == "" ||
			containsFold(c.CompanyName, term) ||
			containsFold(c.City, term) ||
			containsFold(c.ClientId, term) {
			out = append(out, c)
		}
	}
	return out
}

// SearchInvoices matches term against invoice number and center name, then
// keeps only status unless status is a match-all value.
func SearchInvoices(invoices []models.InvoiceView, term, status string) []models.InvoiceView {
	term = normalize(term)
	out := make([]models.InvoiceView, 0, len(invoices))
	for _, inv := range invoices {
		if term != "" && !containsFold(inv.InvoiceNumber, term) && !containsFold(inv.CenterName, term) {
			continue
		}
		if !IsAll(status) && string(inv.Status) != status {
			continue
		}
		out = append(out, inv)
	}
	return out
}
