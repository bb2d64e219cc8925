package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	"recytoken-up-go/internal/api"
	"recytoken-up-go/internal/billing"
	"recytoken-up-go/internal/marketplace"
	"recytoken-up-go/internal/models"
	"recytoken-up-go/internal/search"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
)

type Handler struct {
	console *api.Console
}

func NewHandler(console *api.Console) *Handler {
	return &Handler{console: console}
}

func (h *Handler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/health", h.HealthCheck).Methods(http.MethodGet)
	router.HandleFunc("/dashboard", h.Dashboard).Methods(http.MethodGet)

	router.HandleFunc("/materials", h.ListMaterials).Methods(http.MethodGet)
	router.HandleFunc("/materials", h.CreateMaterial).Methods(http.MethodPost)
	router.HandleFunc("/materials/{id}", h.GetMaterial).Methods(http.MethodGet)
	router.HandleFunc("/materials/{id}", h.UpdateMaterial).Methods(http.MethodPut)
	router.HandleFunc("/materials/{id}", h.DeleteMaterial).Methods(http.MethodDelete)
	router.HandleFunc("/locations", h.Locations).Methods(http.MethodGet)

	router.HandleFunc("/centers", h.ListCenters).Methods(http.MethodGet)
	router.HandleFunc("/centers", h.CreateCenter).Methods(http.MethodPost)
	router.HandleFunc("/centers/{id}", h.GetCenter).Methods(http.MethodGet)
	router.HandleFunc("/centers/{id}", h.UpdateCenter).Methods(http.MethodPut)
	router.HandleFunc("/centers/{id}", h.DeleteCenter).Methods(http.MethodDelete)

	router.HandleFunc("/transactions", h.ListTransactions).Methods(http.MethodGet)
	router.HandleFunc("/transactions", h.CreateTransaction).Methods(http.MethodPost)
	router.HandleFunc("/transactions/{id}", h.UpdateTransaction).Methods(http.MethodPut)
	router.HandleFunc("/transactions/{id}", h.DeleteTransaction).Methods(http.MethodDelete)
	router.HandleFunc("/trace/{token}", h.Trace).Methods(http.MethodGet)

	router.HandleFunc("/marketplace/quote", h.Quote).Methods(http.MethodPost)
	router.HandleFunc("/marketplace/checkout", h.Checkout).Methods(http.MethodPost)

	router.HandleFunc("/invoices", h.ListInvoices).Methods(http.MethodGet)
	router.HandleFunc("/invoices", h.CreateInvoice).Methods(http.MethodPost)
	router.HandleFunc("/invoices/{id}", h.GetInvoice).Methods(http.MethodGet)
	router.HandleFunc("/invoices/{id}", h.DeleteInvoice).Methods(http.MethodDelete)
	router.HandleFunc("/invoices/{id}/pay", h.PayInvoice).Methods(http.MethodPost)
	router.HandleFunc("/invoices/{id}/receipt", h.Receipt).Methods(http.MethodGet)

	router.HandleFunc("/backup", h.ExportBackup).Methods(http.MethodGet)
	router.HandleFunc("/backup", h.ImportBackup).Methods(http.MethodPut)
}

func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	if err := h.console.HealthCheck(r.Context()); err != nil {
		respondWithError(w, http.StatusServiceUnavailable, "unhealthy")
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, h.console.Dashboard())
}

// ---------- materials ----------

func (h *Handler) ListMaterials(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	criteria := search.MaterialCriteria{
		Category: q.Get("category"),
		MaxPrice: q.Get("maxPrice"),
		Location: q.Get("location"),
	}
	respondWithJSON(w, http.StatusOK, h.console.Materials(criteria, q.Get("q")))
}

func (h *Handler) GetMaterial(w http.ResponseWriter, r *http.Request) {
	m, err := h.console.Material(mux.Vars(r)["id"])
	if err != nil {
		respondWithDomainError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, m)
}

func (h *Handler) CreateMaterial(w http.ResponseWriter, r *http.Request) {
	var m models.Material
	if err := json.NewDecoder(r.Body).Decode(&m); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	created, err := h.console.CreateMaterial(r.Context(), m)
	if err != nil {
		respondWithDomainError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, created)
}

func (h *Handler) UpdateMaterial(w http.ResponseWriter, r *http.Request) {
	var m models.Material
	if err := json.NewDecoder(r.Body).Decode(&m); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	m.Id = mux.Vars(r)["id"]
	if err := h.console.UpdateMaterial(r.Context(), m); err != nil {
		respondWithDomainError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, m)
}

func (h *Handler) DeleteMaterial(w http.ResponseWriter, r *http.Request) {
	if err := h.console.DeleteMaterial(r.Context(), mux.Vars(r)["id"]); err != nil {
		respondWithDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Locations(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, h.console.Locations())
}

// ---------- centers ----------

func (h *Handler) ListCenters(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	criteria := search.CenterCriteria{
		Location: q.Get("location"),
		Category: q.Get("category"),
	}
	respondWithJSON(w, http.StatusOK, h.console.Centers(criteria, q.Get("q")))
}

func (h *Handler) GetCenter(w http.ResponseWriter, r *http.Request) {
	c, err := h.console.Center(mux.Vars(r)["id"])
	if err != nil {
		respondWithDomainError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, c)
}

func (h *Handler) CreateCenter(w http.ResponseWriter, r *http.Request) {
	var c models.Center
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	created, err := h.console.CreateCenter(r.Context(), c)
	if err != nil {
		respondWithDomainError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, created)
}

func (h *Handler) UpdateCenter(w http.ResponseWriter, r *http.Request) {
	var c models.Center
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	c.Id = mux.Vars(r)["id"]
	if err := h.console.UpdateCenter(r.Context(), c); err != nil {
		respondWithDomainError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, c)
}

func (h *Handler) DeleteCenter(w http.ResponseWriter, r *http.Request) {
	if err := h.console.DeleteCenter(r.Context(), mux.Vars(r)["id"]); err != nil {
		respondWithDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ---------- transactions ----------

func (h *Handler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, h.console.Transactions(r.URL.Query().Get("q")))
}

func (h *Handler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	var tx models.Transaction
	if err := json.NewDecoder(r.Body).Decode(&tx); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	created, err := h.console.CreateTransaction(r.Context(), tx)
	if err != nil {
		respondWithDomainError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, created)
}

func (h *Handler) UpdateTransaction(w http.ResponseWriter, r *http.Request) {
	var tx models.Transaction
	if err := json.NewDecoder(r.Body).Decode(&tx); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	tx.Id = mux.Vars(r)["id"]
	updated, err := h.console.UpdateTransaction(r.Context(), tx)
	if err != nil {
		respondWithDomainError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, updated)
}

func (h *Handler) DeleteTransaction(w http.ResponseWriter, r *http.Request) {
	if err := h.console.DeleteTransaction(r.Context(), mux.Vars(r)["id"]); err != nil {
		respondWithDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Trace(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, h.console.Trace(r.Context(), mux.Vars(r)["token"]))
}

// ---------- marketplace ----------

func (h *Handler) Quote(w http.ResponseWriter, r *http.Request) {
	var req marketplace.CheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	quote, err := h.console.Quote(req)
	if err != nil {
		respondWithDomainError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, quote)
}

func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	var req marketplace.CheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	result, err := h.console.Checkout(r.Context(), req)
	if err != nil {
		respondWithDomainError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, result)
}

// ---------- invoices ----------

type invoiceItemRequest struct {
	MaterialId string          `json:"materialId"`
	QuantityKg decimal.Decimal `json:"quantityKg"`
	PricePerKg decimal.Decimal `json:"pricePerKg"`
}

type invoiceRequest struct {
	InvoiceNumber string               `json:"invoiceNumber"`
	CenterId      string               `json:"centerId"`
	IssueDate     time.Time            `json:"issueDate"`
	DueDate       time.Time            `json:"dueDate"`
	Items         []invoiceItemRequest `json:"items"`
}

func (req invoiceRequest) params() billing.InvoiceParams {
	params := billing.InvoiceParams{
		InvoiceNumber: req.InvoiceNumber,
		CenterId:      req.CenterId,
		IssueDate:     req.IssueDate,
		DueDate:       req.DueDate,
		Items:         make([]billing.ItemParams, 0, len(req.Items)),
	}
	for _, item := range req.Items {
		params.Items = append(params.Items, billing.ItemParams{
			MaterialId: item.MaterialId,
			QuantityKg: item.QuantityKg,
			PricePerKg: item.PricePerKg,
		})
	}
	return params
}

type payRequest struct {
	PaymentMethod string `json:"paymentMethod"`
	CryptoAsset   string `json:"cryptoAsset,omitempty"`
}

func (h *Handler) ListInvoices(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	respondWithJSON(w, http.StatusOK, h.console.Invoices(q.Get("q"), q.Get("status")))
}

func (h *Handler) GetInvoice(w http.ResponseWriter, r *http.Request) {
	inv, err := h.console.Invoice(mux.Vars(r)["id"])
	if err != nil {
		respondWithDomainError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, inv)
}

func (h *Handler) DeleteInvoice(w http.ResponseWriter, r *http.Request) {
	if err := h.console.DeleteInvoice(r.Context(), mux.Vars(r)["id"]); err != nil {
		respondWithDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) CreateInvoice(w http.ResponseWriter, r *http.Request) {
	var req invoiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	inv, err := h.console.CreateInvoice(r.Context(), req.params())
	if err != nil {
		respondWithDomainError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, inv)
}

func (h *Handler) PayInvoice(w http.ResponseWriter, r *http.Request) {
	var req payRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	receipt, err := h.console.PayInvoice(r.Context(), mux.Vars(r)["id"], req.PaymentMethod, req.CryptoAsset)
	if err != nil {
		respondWithDomainError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, receipt)
}

func (h *Handler) Receipt(w http.ResponseWriter, r *http.Request) {
	receipt, err := h.console.Receipt(mux.Vars(r)["id"])
	if err != nil {
		respondWithDomainError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, receipt)
}

// ---------- backup ----------

func (h *Handler) ExportBackup(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, h.console.Export())
}

func (h *Handler) ImportBackup(w http.ResponseWriter, r *http.Request) {
	var backup models.Backup
	if err := json.NewDecoder(r.Body).Decode(&backup); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if err := h.console.Import(r.Context(), backup); err != nil {
		respondWithDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
