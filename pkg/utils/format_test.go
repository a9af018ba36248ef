package utils

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMoney(t *testing.T) {
	tests := []struct {
		name     string
		value    float64
		expected string
	}{
		{"Deve formatar milhar com duas casas", 1234.5, "$1,234.50"},
		{"Deve formatar zero", 0, "$0.00"},
		{"Deve formatar valor negativo", -2500, "-$2,500.00"},
		{"Deve tratar NaN como zero", math.NaN(), "$0.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Money(tt.value))
		})
	}
}

func TestMoney0(t *testing.T) {
	assert.Equal(t, "$1,234,568", Money0(1234567.8))
	assert.Equal(t, "$0", Money0(0))
}

func TestPercentAndRatio(t *testing.T) {
	assert.Equal(t, "12.35%", Percent(0.12345, 2))
	assert.Equal(t, "45.0%", Pct(45, 1))
	assert.Equal(t, "2.50x", Ratio(2.5))
	assert.Equal(t, "1,235", Int(1234.6))
}
