package utils

import (
	"fmt"
	"time"
)

// MonthKey formata a data como "yyyy-mm"
func MonthKey(t time.Time) string {
	return fmt.Sprintf("%04d-%02d", t.Year(), int(t.Month()))
}

// StartOfWeek retorna a segunda-feira da semana de t (semana de segunda a domingo)
func StartOfWeek(t time.Time) time.Time {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}

// WeekKey formata a semana de t como "yyyy-mm-dd/yyyy-mm-dd" (segunda/domingo)
func WeekKey(t time.Time) string {
	start := StartOfWeek(t)
	return start.Format(time.DateOnly) + "/" + start.AddDate(0, 0, 6).Format(time.DateOnly)
}

// StartOfMonth retorna o primeiro dia do mês de t
func StartOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

// EndOfMonth retorna o último dia do mês de t
func EndOfMonth(t time.Time) time.Time {
	return StartOfMonth(t).AddDate(0, 1, -1)
}

// InRange indica se t está entre start e end, inclusive, comparando apenas a data
func InRange(t, start, end time.Time) bool {
	return !t.Before(start) && !t.After(end)
}
