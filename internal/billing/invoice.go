package billing

import (
	"errors"
	"fmt"
	"time"

	"recytoken-up-go/internal/models"

	"github.com/shopspring/decimal"
)

var (
	ErrNoItems           = errors.New("invoice has no items")
	ErrTotalsMismatch    = errors.New("invoice totals do not satisfy tax rule")
	ErrAlreadyPaid       = errors.New("invoice already paid")
	ErrPaymentInProgress = errors.New("invoice payment already in progress")
)

// TaxRate is the fixed sales tax applied to every invoice subtotal
var TaxRate = decimal.RequireFromString("0.15")

const moneyPlaces = 2

// ItemParams describes one line of a new invoice
type ItemParams struct {
	MaterialId string
	QuantityKg decimal.Decimal
	PricePerKg decimal.Decimal
}

// InvoiceParams contains the caller-supplied fields of a new invoice
type InvoiceParams struct {
	Id            string
	InvoiceNumber string
	CenterId      string
	IssueDate     time.Time
	DueDate       time.Time
	Status        models.InvoiceStatus
	Items         []ItemParams
}

// LineTotal is quantity times unit price, rounded to cents
func LineTotal(quantityKg, pricePerKg decimal.Decimal) decimal.Decimal {
	return quantityKg.Mul(pricePerKg).Round(moneyPlaces)
}

// Totals returns subtotal, tax and total for the given line totals
func Totals(lineTotals []decimal.Decimal) (subtotal, tax, total decimal.Decimal) {
	subtotal = decimal.Sum(decimal.Zero, lineTotals...)
	tax = subtotal.Mul(TaxRate).Round(moneyPlaces)
	total = subtotal.Add(tax)
	return subtotal, tax, total
}

// NewInvoice builds an invoice whose line totals, subtotal, tax and total
// are derived from the items.
func NewInvoice(params InvoiceParams) (models.Invoice, error) {
	if len(params.Items) == 0 {
		return models.Invoice{}, ErrNoItems
	}

	items := make([]models.InvoiceItem, len(params.Items))
	lineTotals := make([]decimal.Decimal, len(params.Items))
	for i, p := range params.Items {
		if !p.QuantityKg.IsPositive() || p.PricePerKg.IsNegative() {
			return models.Invoice{}, fmt.Errorf("invalid item %d: quantity %s, price %s",
				i, p.QuantityKg.String(), p.PricePerKg.String())
		}
		lineTotals[i] = LineTotal(p.QuantityKg, p.PricePerKg)
		items[i] = models.InvoiceItem{
			MaterialId: p.MaterialId,
			QuantityKg: p.QuantityKg,
			PricePerKg: p.PricePerKg,
			Total:      lineTotals[i],
		}
	}

	subtotal, tax, total := Totals(lineTotals)
	status := params.Status
	if status == "" {
		status = models.InvoicePending
	}

	return models.Invoice{
		Id:            params.Id,
		InvoiceNumber: params.InvoiceNumber,
		CenterId:      params.CenterId,
		IssueDate:     params.IssueDate,
		DueDate:       params.DueDate,
		Items:         items,
		Subtotal:      subtotal,
		Tax:           tax,
		Total:         total,
		Status:        status,
	}, nil
}

// Verify checks that the stored totals follow the tax rule
func Verify(inv models.Invoice) error {
	wantTax := inv.Subtotal.Mul(TaxRate).Round(moneyPlaces)
	if !inv.Tax.Equal(wantTax) {
		return fmt.Errorf("%w: tax %s, expected %s", ErrTotalsMismatch, inv.Tax.String(), wantTax.String())
	}
	if wantTotal := inv.Subtotal.Add(inv.Tax); !inv.Total.Equal(wantTotal) {
		return fmt.Errorf("%w: total %s, expected %s", ErrTotalsMismatch, inv.Total.String(), wantTotal.String())
	}
	return nil
}

// IsOverdue reports whether a pending invoice is past its due date at now
func IsOverdue(inv models.Invoice, now time.Time) bool {
	return inv.Status == models.InvoicePending && !inv.DueDate.IsZero() && now.After(inv.DueDate)
}

// Receipt returns the data a receipt QR code encodes
func Receipt(view models.InvoiceView) models.ReceiptPayload {
	return models.ReceiptPayload{
		InvoiceNumber: view.InvoiceNumber,
		Client:        view.CenterName,
		Total:         view.Total,
		Date:          view.IssueDate,
	}
}
