package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"recytoken-up-go/internal/billing"
	"recytoken-up-go/internal/marketplace"
	"recytoken-up-go/internal/payments"
	"recytoken-up-go/internal/store"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

var requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "recytoken_http_requests_total",
	Help: "HTTP requests by route, method and status code.",
}, []string{"route", "method", "code"})

// statusFor maps domain errors to HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, store.ErrInsufficientInventory),
		errors.Is(err, store.ErrDuplicateId),
		errors.Is(err, store.ErrStatusConflict),
		errors.Is(err, billing.ErrAlreadyPaid),
		errors.Is(err, billing.ErrPaymentInProgress):
		return http.StatusConflict
	case errors.Is(err, store.ErrInvalidEntity),
		errors.Is(err, marketplace.ErrInvalidQuantity),
		errors.Is(err, marketplace.ErrPaymentMethodRequired),
		errors.Is(err, payments.ErrCryptoAssetRequired),
		errors.Is(err, payments.ErrUnsupportedMethod),
		errors.Is(err, payments.ErrUnsupportedCrypto),
		errors.Is(err, billing.ErrNoItems),
		errors.Is(err, billing.ErrTotalsMismatch):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// respondWithDomainError hides internal failures behind a generic message
func respondWithDomainError(w http.ResponseWriter, r *http.Request, err error) {
	code := statusFor(err)
	if code == http.StatusInternalServerError {
		zap.L().Error("Request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err))
		respondWithError(w, code, "internal error")
		return
	}
	respondWithError(w, code, err.Error())
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		zap.L().Error("Failed to encode response", zap.Error(err))
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(response)
}

type statusRecorder struct {
	http.ResponseWriter
	code int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.code = code
	s.ResponseWriter.WriteHeader(code)
}

func instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, code: http.StatusOK}
		next.ServeHTTP(rec, r)

		route := r.URL.Path
		if current := mux.CurrentRoute(r); current != nil {
			if tmpl, err := current.GetPathTemplate(); err == nil {
				route = tmpl
			}
		}
		requestsTotal.WithLabelValues(route, r.Method, strconv.Itoa(rec.code)).Inc()
	})
}
