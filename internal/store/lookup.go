package store

import (
	"recytoken-up-go/internal/models"
)

// Lookup resolves foreign keys in a snapshot to the referenced entities.
type Lookup struct {
	materials        map[string]models.Material
	materialsByToken map[string]models.Material
	centers          map[string]models.Center
}

// NewLookup indexes the materials and centers of snap.
func NewLookup(snap models.Snapshot) *Lookup {
	l := &Lookup{
		materials:        make(map[string]models.Material, len(snap.Materials)),
		materialsByToken: make(map[string]models.Material, len(snap.Materials)),
		centers:          make(map[string]models.Center, len(snap.Centers)),
	}
	for _, m := range snap.Materials {
		l.materials[m.Id] = m
		if _, seen := l.materialsByToken[m.TokenId]; !seen && m.TokenId != "" {
			l.materialsByToken[m.TokenId] = m
		}
	}
	for _, c := range snap.Centers {
		l.centers[c.Id] = c
	}
	return l
}

func (l *Lookup) Material(id string) (models.Material, bool) {
	m, ok := l.materials[id]
	return m, ok
}

// MaterialByToken returns the first material carrying tokenId.
func (l *Lookup) MaterialByToken(tokenId string) (models.Material, bool) {
	m, ok := l.materialsByToken[tokenId]
	return m, ok
}

func (l *Lookup) Center(id string) (models.Center, bool) {
	c, ok := l.centers[id]
	return c, ok
}

// MaterialName returns the current name of the material, or "" when it no longer exists.
func (l *Lookup) MaterialName(id string) string {
	return l.materials[id].Name
}

// CenterName returns the current company name of the center.
func (l *Lookup) CenterName(id string) string {
	if id == models.MarketplaceBuyerId {
		return models.MarketplaceBuyerName
	}
	return l.centers[id].CompanyName
}

// ResolveTransaction attaches the current material and center names.
func (l *Lookup) ResolveTransaction(tx models.Transaction) models.TransactionView {
	name := l.MaterialName(tx.MaterialId)
	if name == "" {
		if m, ok := l.MaterialByToken(tx.MaterialTokenId); ok {
			name = m.Name
		}
	}
	return models.TransactionView{
		Transaction:  tx,
		MaterialName: name,
		CenterName:   l.CenterName(tx.CenterId),
	}
}

func (l *Lookup) ResolveTransactions(txs []models.Transaction) []models.TransactionView {
	views := make([]models.TransactionView, len(txs))
	for i, tx := range txs {
		views[i] = l.ResolveTransaction(tx)
	}
	return views
}

// ResolveInvoice attaches the current center and material names.
func (l *Lookup) ResolveInvoice(inv models.Invoice) models.InvoiceView {
	items := make([]models.InvoiceItemView, len(inv.Items))
	for i, item := range inv.Items {
		items[i] = models.InvoiceItemView{
			InvoiceItem:  item,
			MaterialName: l.MaterialName(item.MaterialId),
		}
	}
	return models.InvoiceView{
		Invoice:    inv,
		CenterName: l.CenterName(inv.CenterId),
		Items:      items,
	}
}

func (l *Lookup) ResolveInvoices(invs []models.Invoice) []models.InvoiceView {
	views := make([]models.InvoiceView, len(invs))
	for i, inv := range invs {
		views[i] = l.ResolveInvoice(inv)
	}
	return views
}
