// Package stats reúne as estatísticas descritivas usadas pelos relatórios
package stats

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

func Sum(xs []float64) float64 {
	return floats.Sum(xs)
}

// Mean retorna 0 para séries vazias
func Mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	return stat.Mean(xs, nil)
}

// StdDev é o desvio padrão amostral (n-1); 0 com menos de dois pontos
func StdDev(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	return stat.StdDev(xs, nil)
}

// CoefficientOfVariation é desvio padrão / média
func CoefficientOfVariation(xs []float64) float64 {
	m := Mean(xs)
	if m == 0 {
		return 0
	}
	return StdDev(xs) / m
}

// Quantile usa interpolação linear entre as posições vizinhas de q*(n-1)
func Quantile(xs []float64, q float64) float64 {
	if len(xs) == 0 {
		return math.NaN()
	}

	sorted := append([]float64(nil), xs...)
	sort.Float64s(sorted)

	pos := q * float64(len(sorted)-1)
	lower := int(math.Floor(pos))
	upper := int(math.Ceil(pos))
	if lower == upper {
		return sorted[lower]
	}
	frac := pos - float64(lower)
	return sorted[lower] + (sorted[upper]-sorted[lower])*frac
}

// PctChange calcula a variação fracionária entre pontos consecutivos.
// O primeiro ponto, e pontos com base zero, ficam NaN.
func PctChange(series []float64) []float64 {
	out := make([]float64, len(series))
	for i := range series {
		if i == 0 || series[i-1] == 0 {
			out[i] = math.NaN()
			continue
		}
		out[i] = (series[i] - series[i-1]) / series[i-1]
	}
	return out
}

// Max e Min retornam o índice e o valor extremo; índice -1 para séries vazias
func Max(xs []float64) (int, float64) {
	if len(xs) == 0 {
		return -1, math.NaN()
	}
	i := floats.MaxIdx(xs)
	return i, xs[i]
}

func Min(xs []float64) (int, float64) {
	if len(xs) == 0 {
		return -1, math.NaN()
	}
	i := floats.MinIdx(xs)
	return i, xs[i]
}
