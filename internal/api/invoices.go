package api

import (
	"context"

	"recytoken-up-go/internal/billing"
	"recytoken-up-go/internal/models"
	"recytoken-up-go/internal/search"
	"recytoken-up-go/internal/store"
)

// Invoices returns resolved invoices matching term and status
func (c *Console) Invoices(term, status string) []models.InvoiceView {
	snap := c.store.Snapshot()
	views := store.NewLookup(snap).ResolveInvoices(snap.Invoices)
	return search.SearchInvoices(views, term, status)
}

func (c *Console) Invoice(id string) (models.InvoiceView, error) {
	inv, err := c.store.Invoice(id)
	if err != nil {
		return models.InvoiceView{}, err
	}
	return c.store.Lookup().ResolveInvoice(inv), nil
}

func (c *Console) CreateInvoice(ctx context.Context, params billing.InvoiceParams) (models.Invoice, error) {
	return c.billing.Create(ctx, params)
}

// PayInvoice settles an invoice; cryptoAsset is only read for crypto payments
func (c *Console) PayInvoice(ctx context.Context, id, method, cryptoAsset string) (*models.PaymentReceipt, error) {
	return c.billing.Pay(ctx, id, method, cryptoAsset)
}

func (c *Console) Receipt(id string) (models.ReceiptPayload, error) {
	return c.billing.ReceiptFor(id)
}

func (c *Console) DeleteInvoice(ctx context.Context, id string) error {
	return c.store.DeleteInvoice(ctx, id)
}
