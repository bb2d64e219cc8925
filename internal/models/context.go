package models

import (
	"context"
	"time"
)

type checkoutContextKey struct{}

// CheckoutContext carries checkout details through context so the ledger
// backends can store them as transaction metadata without changing the
// Recorder interface.
type CheckoutContext struct {
	PaymentReference string
	PaymentMethod    string
	CryptoAsset      string
	SellerCenterId   string
	CompletedAt      time.Time
}

// WithCheckoutContext attaches checkout data to a context.
func WithCheckoutContext(ctx context.Context, cc *CheckoutContext) context.Context {
	return context.WithValue(ctx, checkoutContextKey{}, cc)
}

// GetCheckoutContext retrieves checkout data from context, or nil if absent.
func GetCheckoutContext(ctx context.Context) *CheckoutContext {
	cc, _ := ctx.Value(checkoutContextKey{}).(*CheckoutContext)
	return cc
}
