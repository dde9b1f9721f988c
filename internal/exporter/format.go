package exporter

import (
	"github.com/shopspring/decimal"

	"github.com/Ang3l-dev/Ang3l-Dash/pkg/contracts/domain"
)

// dateNumFmt is the cell format of history dates.
const dateNumFmt = "yyyy-mm-dd"

// formatDecimal formats an amount for CSV output without exponent or
// trailing zeros.
func formatDecimal(d decimal.Decimal) string {
	return d.String()
}

// formatDay formats a calendar day for CSV output
func formatDay(d domain.Day) string {
	return d.String()
}

// cellNumber converts an amount to a numeric cell value.
func cellNumber(d decimal.Decimal) float64 {
	return d.InexactFloat64()
}
