package dataprocessing

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// groupedThousands matches an integer written with dot thousands
// separators and no decimal part, such as "1.500" or "1.234.567".
var groupedThousands = regexp.MustCompile(`^[+-]?[1-9]\d{0,2}(\.\d{3})+$`)

// CoerceAmount converts a spreadsheet or export value into a decimal.
// Empty or non-numeric input yields zero: a missing amount is immaterial,
// not an error. Besides plain decimals it understands the Italian layout
// used by the exports ("1.234,56", "1.500") and the SAP trailing minus
// ("12,50-"). Dots that split an integer into groups of three are
// thousands separators: "1.500" is 1500 while "1.50" and "0.125" stay
// decimals.
func CoerceAmount(raw string) decimal.Decimal {
	d, ok := ParseAmount(raw)
	if !ok {
		return decimal.Zero
	}
	return d
}

// ParseAmount is CoerceAmount reporting whether raw was numeric.
func ParseAmount(raw string) (decimal.Decimal, bool) {
	s := strings.Map(func(r rune) rune {
		if r == ' ' || r == ' ' || r == '\t' {
			return -1
		}
		return r
	}, raw)
	if s == "" {
		return decimal.Zero, false
	}

	negative := false
	if len(s) > 1 && strings.HasSuffix(s, "-") {
		negative = true
		s = strings.TrimSuffix(s, "-")
	}

	switch {
	case strings.Contains(s, ","):
		if strings.LastIndex(s, ".") > strings.LastIndex(s, ",") {
			// 1,234.56
			s = strings.ReplaceAll(s, ",", "")
		} else {
			// 1.234,56
			s = strings.ReplaceAll(s, ".", "")
			s = strings.Replace(s, ",", ".", 1)
		}
	case groupedThousands.MatchString(s):
		s = strings.ReplaceAll(s, ".", "")
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	if negative {
		d = d.Neg()
	}
	return d, true
}
