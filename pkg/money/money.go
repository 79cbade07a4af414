// Package money formats amounts for display. The storefront prices
// everything in a single currency (ETB by default, see CURRENCY).
package money

import (
	"fmt"
	"math"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/mestawet/gebeya/config"
)

var printer = message.NewPrinter(language.English)

// Format renders amount in the configured currency with two fraction
// digits, e.g. "ETB 1,250.00".
func Format(amount float64) string {
	return FormatIn(config.Currency(), amount)
}

// FormatIn renders amount in the given ISO 4217 code. Invalid numbers are
// coerced to zero; an unknown code falls back to "<CODE> <amount>".
func FormatIn(code string, amount float64) string {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		amount = 0
	}

	unit, err := currency.ParseISO(code)
	if err != nil {
		return fallback(code, amount)
	}
	return printer.Sprintf("%v", currency.Symbol(unit.Amount(amount)))
}

func fallback(code string, amount float64) string {
	return fmt.Sprintf("%s %.2f", code, amount)
}
