package importer

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// parseAmount accepts both "1.234,56" and "1,234.56" styles plus a trailing
// or leading currency marker. When both separators appear the last one is the
// decimal point. A lone separator is a thousands separator when it repeats or
// is followed by exactly three digits. Negative amounts are rejected.
func parseAmount(s string) (decimal.Decimal, error) {
	clean := strings.NewReplacer("€", "", "$", "", "EUR", "", "USD", "", " ", "", "\u00a0", "").Replace(s)
	if clean == "" {
		return decimal.Decimal{}, fmt.Errorf("missing")
	}

	comma := strings.LastIndex(clean, ",")
	dot := strings.LastIndex(clean, ".")

	switch {
	case comma >= 0 && dot >= 0:
		if comma > dot {
			clean = strings.ReplaceAll(clean, ".", "")
			clean = strings.Replace(clean, ",", ".", 1)
		} else {
			clean = strings.ReplaceAll(clean, ",", "")
		}
	case comma >= 0:
		clean = normalizeSingle(clean, ",")
	case dot >= 0:
		clean = normalizeSingle(clean, ".")
	}

	d, err := decimal.NewFromString(clean)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("parse %q: %w", s, err)
	}

	if d.IsNegative() {
		return decimal.Decimal{}, fmt.Errorf("negative value %q", s)
	}

	return d.Round(2), nil
}

// normalizeSingle rewrites a number that uses only sep so that it parses
// with '.' as the decimal point.
func normalizeSingle(s, sep string) string {
	idx := strings.LastIndex(s, sep)
	if strings.Count(s, sep) > 1 || len(s)-idx-1 == 3 {
		return strings.ReplaceAll(s, sep, "")
	}

	return strings.Replace(s, sep, ".", 1)
}
