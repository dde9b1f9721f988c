package dataprocessing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestCoerceAmount(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		numeric bool
	}{
		{"100", "100", true},
		{"  150.25 ", "150.25", true},
		{"-42.5", "-42.5", true},
		{"1.234,56", "1234.56", true},
		{"1.234.567,00", "1234567", true},
		{"1.234.567", "1234567", true},
		{"1.500", "1500", true},
		{"-1.500", "-1500", true},
		{"1.500-", "-1500", true},
		{"1.50", "1.5", true},
		{"0.125", "0.125", true},
		{"1234.567", "1234.567", true},
		{"12,50-", "-12.5", true},
		{"1,234.56", "1234.56", true},
		{"0,5", "0.5", true},
		{"", "0", false},
		{"   ", "0", false},
		{"n/a", "0", false},
		{"12abc", "0", false},
		{"1,2,3", "0", false},
		{"1.234.56", "0", false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseAmount(tt.in)
			assert.Equal(t, tt.numeric, ok)
			assert.True(t, decimal.RequireFromString(tt.want).Equal(got), "got %s", got)
			assert.True(t, CoerceAmount(tt.in).Equal(got))
		})
	}
}
