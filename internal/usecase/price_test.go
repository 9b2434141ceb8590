package usecase

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestFormatPrice(t *testing.T) {
	cases := map[string]string{
		"0":          "0",
		"950":        "950",
		"1000":       "1 000",
		"250000":     "250 000",
		"1250000":    "1 250 000",
		"99999.5":    "99 999.50",
		"-15000":     "-15 000",
		"100000.00":  "100 000",
		"1234567.89": "1 234 567.89",
	}
	for in, want := range cases {
		assert.Equal(t, want, FormatPrice(decimal.RequireFromString(in)), in)
	}
}
