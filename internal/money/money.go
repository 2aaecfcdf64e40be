// Package money formats ledger amounts for people to read.
package money

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Format renders amount with the symbol of the ISO 4217 code, e.g. "£ 12.50".
// Unknown codes fall back to "12.50 XYZ".
func Format(amount decimal.Decimal, code string) string {
	unit, err := currency.ParseISO(code)
	if err != nil {
		return amount.StringFixed(2) + " " + code
	}

	p := message.NewPrinter(language.BritishEnglish)

	return p.Sprint(currency.Symbol(unit.Amount(amount.InexactFloat64())))
}

// Plain renders amount with two decimals and no symbol.
func Plain(amount decimal.Decimal) string {
	return amount.StringFixed(2)
}
