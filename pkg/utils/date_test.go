package utils

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStartOfWeek(t *testing.T) {
	tests := []struct {
		name     string
		date     time.Time
		expected time.Time
	}{
		{"Deve manter a segunda-feira", time.Date(2025, 7, 7, 0, 0, 0, 0, time.UTC), time.Date(2025, 7, 7, 0, 0, 0, 0, time.UTC)},
		{"Deve voltar do domingo para a segunda anterior", time.Date(2025, 7, 13, 15, 0, 0, 0, time.UTC), time.Date(2025, 7, 7, 0, 0, 0, 0, time.UTC)},
		{"Deve atravessar o mês", time.Date(2025, 7, 2, 0, 0, 0, 0, time.UTC), time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, StartOfWeek(tt.date))
		})
	}
}

func TestWeekAndMonthKeys(t *testing.T) {
	d := time.Date(2025, 7, 9, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "2025-07-07/2025-07-13", WeekKey(d))
	assert.Equal(t, "2025-07", MonthKey(d))
	assert.Equal(t, time.Date(2025, 7, 31, 0, 0, 0, 0, time.UTC), EndOfMonth(d))
}

func TestSafeDivAndRound(t *testing.T) {
	assert.Equal(t, 0.0, SafeDiv(10, 0))
	assert.Equal(t, 2.5, SafeDiv(10, 4))
	assert.Equal(t, 1.235, Round(1.23456, 3))
	assert.Equal(t, 1.23, RoundWithTwoDecimalPlace(1.2349))
	assert.Equal(t, -2.5, RoundWithTwoDecimalPlace(-2.499))
	assert.Equal(t, 0.0, RoundWithTwoDecimalPlace(math.NaN()))
	assert.Equal(t, 0.0, RoundWithTwoDecimalPlace(math.Inf(1)))
}
