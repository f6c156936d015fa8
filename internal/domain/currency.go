package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// FormatKRW renders an amount as whole won with thousands separators.
func FormatKRW(amount decimal.Decimal) string {
	s := amount.Round(0).String()
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}

	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}

	out := b.String() + " KRW"
	if neg {
		return "-" + out
	}
	return out
}
