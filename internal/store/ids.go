package store

import (
	"fmt"
	"math"
	"math/rand/v2"
	"strings"

	"github.com/google/uuid"
)

// Id prefixes per collection
const (
	MaterialPrefix    = "M"
	CenterPrefix      = "C"
	TransactionPrefix = "T"
	InvoicePrefix     = "INV"
)

// NewId returns a prefixed identifier, e.g. "M-3f2a...".
func NewId(prefix string) string {
	return prefix + "-" + uuid.New().String()
}

// NewTokenId returns a simulated token identifier: "TKN" plus six digits.
func NewTokenId() string {
	return fmt.Sprintf("TKN%d", 100000+rand.IntN(900000))
}

// NewWalletAddress returns a simulated, abbreviated wallet address.
func NewWalletAddress() string {
	hex := strings.ReplaceAll(uuid.New().String(), "-", "")
	return "0x" + hex[:10] + "..."
}

// randomRating returns a rating between 3.0 and 5.0 with one decimal.
func randomRating() float64 {
	return math.Round((3+rand.Float64()*2)*10) / 10
}

func randomReviews() int {
	return rand.IntN(50)
}
