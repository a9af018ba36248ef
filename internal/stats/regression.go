package stats

import "gonum.org/v1/gonum/stat"

// LinearTrend ajusta y = intercept + slope*x com x = 0..n-1
func LinearTrend(y []float64) (slope, intercept float64) {
	switch len(y) {
	case 0:
		return 0, 0
	case 1:
		return 0, y[0]
	}

	x := make([]float64, len(y))
	for i := range x {
		x[i] = float64(i)
	}
	intercept, slope = stat.LinearRegression(x, y, nil, false)
	return slope, intercept
}

// Forecast projeta a tendência linear de y para os próximos periods pontos
func Forecast(y []float64, periods int) []float64 {
	slope, intercept := LinearTrend(y)
	out := make([]float64, periods)
	for i := range out {
		out[i] = intercept + slope*float64(len(y)+i)
	}
	return out
}
