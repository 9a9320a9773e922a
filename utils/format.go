package utils

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// FormatCount renders n with thousands separators.
func FormatCount(n int) string {
	return printer.Sprintf("%d", n)
}

// FormatAmount renders f with thousands separators and two decimals.
func FormatAmount(f float64) string {
	return printer.Sprintf("%.2f", f)
}

// FormatMoney is FormatAmount for decimal values.
func FormatMoney(d decimal.Decimal) string {
	f, _ := d.Round(2).Float64()
	return FormatAmount(f)
}
