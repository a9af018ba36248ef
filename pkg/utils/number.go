package utils

import "math"

// RoundWithTwoDecimalPlace arredonda valores monetários; NaN e infinitos viram zero
func RoundWithTwoDecimalPlace(f float64) float64 {
	return Round(f, 2)
}

// Round arredonda f para a quantidade de casas informada
func Round(f float64, places int) float64 {
	if f == 0 || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}

	pow := math.Pow(10, float64(places))
	return math.Round(f*pow) / pow
}

// SafeDiv retorna a/b ou 0 quando b é zero
func SafeDiv(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	return a / b
}

// Finite troca NaN e infinitos por zero antes da serialização em JSON
func Finite(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}
