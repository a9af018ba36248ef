package ingest

import (
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanCurrency(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		want   float64
		wantOK bool
	}{
		{"Deve remover cifrão e milhar", "$1,234.50", 1234.5, true},
		{"Deve remover aspas e espaços", `" $ 12,000 "`, 12000, true},
		{"Deve tratar vazio como zero", "", 0, true},
		{"Deve tratar traço como zero", " - ", 0, true},
		{"Deve aceitar negativo contábil", "($250.00)", -250, true},
		{"Deve aceitar negativo com sinal", "-$10", -10, true},
		{"Deve devolver zero para texto inválido", "n/a", 0, false},
		{"Deve aceitar número já limpo", "987.65", 987.65, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := CleanCurrency(tt.raw)
			assert.Equal(t, tt.wantOK, ok)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestCleanInt(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		want   int64
		wantOK bool
	}{
		{"Deve remover milhar", "1,234", 1234, true},
		{"Deve truncar decimais", "12.9", 12, true},
		{"Deve remover aspas", `"77"`, 77, true},
		{"Deve devolver zero para inválido", "abc", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := CleanInt(tt.raw)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCleaningIsIdempotent(t *testing.T) {
	inputs := []string{"$1,234.50", `" 9,999 "`, "", "0", "12", "$0.99", "n/a", "(5)", "1 000"}

	for _, raw := range inputs {
		t.Run(raw, func(t *testing.T) {
			once := CleanString(raw)
			assert.Equal(t, once, CleanString(once))

			v1, ok1 := CleanCurrency(raw)
			v2, ok2 := CleanCurrency(once)
			assert.Equal(t, ok1, ok2)
			assert.Equal(t, v1, v2)

			if ok1 {
				v3, ok3 := CleanCurrency(strconv.FormatFloat(v1, 'f', -1, 64))
				assert.True(t, ok3)
				assert.Equal(t, v1, v3)
			}
		})
	}
}

func TestParseMonth(t *testing.T) {
	tests := []struct {
		raw  string
		want time.Time
	}{
		{"1/1/2024 0:00", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
		{"12/01/2024 00:00", time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC)},
		{"2025-03-15", time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)},
		{"2025-06", time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := ParseMonth(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseMonth("janeiro")
	assert.Error(t, err)
}

func TestParseDate(t *testing.T) {
	got, err := ParseDate("7/13/2025")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 7, 13, 0, 0, 0, 0, time.UTC), got)

	got, err = ParseDate("2025-07-13")
	require.NoError(t, err)
	assert.Equal(t, 13, got.Day())
}
