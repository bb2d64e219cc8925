package common

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

const (
	DefaultWidth = 80
	WideWidth    = 100
)

// PrintHeader prints a title between two rules of '='
func PrintHeader(title string, width int) {
	fmt.Println("\n" + strings.Repeat("=", width))
	fmt.Println(title)
	fmt.Println(strings.Repeat("=", width))
}

func PrintFooter(message string, width int) {
	fmt.Println("\n" + strings.Repeat("=", width))
	fmt.Println(message)
	fmt.Println(strings.Repeat("=", width) + "\n")
}

// PrintSection opens a boxed sub-section
func PrintSection(title string, width int) {
	fmt.Printf("\n┌─ %s\n", title)
	fmt.Println("├" + strings.Repeat("─", width-2))
}

// BoxPrefix returns the box-drawing prefix for list items
func BoxPrefix(isLast bool) string {
	if isLast {
		return "└  "
	}
	return "│  "
}

// FormatKg renders a weight with thousands separators, e.g. "1,250.5 kg"
func FormatKg(kg decimal.Decimal) string {
	return message.NewPrinter(language.English).Sprint(number.Decimal(kg.InexactFloat64())) + " kg"
}

// FormatNIO renders a córdoba amount with two decimals, e.g. "C$ 1,725.00"
func FormatNIO(amount decimal.Decimal) string {
	rounded := amount.Round(2).InexactFloat64()
	return "C$ " + message.NewPrinter(language.English).Sprint(number.Decimal(rounded, number.Scale(2)))
}
