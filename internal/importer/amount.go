package importer

import (
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

// parseAmount accepts both European ("1.234,56", "12,50") and plain
// ("1,234.56", "12.50") notation. With both separators present, whichever
// comes last is the decimal separator. Currency symbols and spaces are ignored.
func parseAmount(s string) (decimal.Decimal, error) {
	clean := strings.Map(func(r rune) rune {
		switch {
		case unicode.IsSpace(r), r == '£', r == '€', r == '$':
			return -1
		}

		return r
	}, s)

	comma, dot := strings.LastIndex(clean, ","), strings.LastIndex(clean, ".")

	switch {
	case comma >= 0 && dot >= 0 && comma > dot:
		clean = strings.ReplaceAll(clean, ".", "")
		clean = strings.Replace(clean, ",", ".", 1)
	case comma >= 0 && dot >= 0:
		clean = strings.ReplaceAll(clean, ",", "")
	case comma >= 0:
		clean = singleSeparator(clean, ",")
	case dot >= 0:
		clean = singleSeparator(clean, ".")
	}

	return decimal.NewFromString(clean)
}

// singleSeparator resolves an amount written with one kind of separator.
// Repeated, or followed by exactly three digits, it groups thousands: every
// accepted currency has two minor units. Otherwise it marks the decimals.
func singleSeparator(s, sep string) string {
	last := strings.LastIndex(s, sep)
	if strings.Count(s, sep) > 1 || len(s)-last-1 == 3 {
		return strings.ReplaceAll(s, sep, "")
	}

	return strings.Replace(s, sep, ".", 1)
}
