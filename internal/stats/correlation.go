package stats

import (
	"math"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

const (
	// MinCorrelationPoints é o mínimo de pares das correlações entre canais
	MinCorrelationPoints = 4
	// MinMergedPoints é o mínimo de meses mesclados nas correlações com novos membros
	MinMergedPoints = 3
)

type Correlation struct {
	R float64 `json:"r"`
	P float64 `json:"p_value"`
	N int     `json:"n"`
}

// Significant indica p < alpha
func (c Correlation) Significant(alpha float64) bool {
	return c.P < alpha
}

// Pearson calcula o coeficiente de Pearson e o p-valor bicaudal (t de Student, n-2 graus de liberdade).
// Retorna ok=false com menos de MinCorrelationPoints pares ou variância nula.
func Pearson(x, y []float64) (Correlation, bool) {
	return PearsonMin(x, y, MinCorrelationPoints)
}

// PearsonMin é Pearson com outro mínimo de pares; abaixo de 3 não há grau de liberdade para o p-valor
func PearsonMin(x, y []float64, minPoints int) (Correlation, bool) {
	if minPoints < 3 {
		minPoints = 3
	}
	n := len(x)
	if n != len(y) || n < minPoints {
		return Correlation{N: n}, false
	}
	if StdDev(x) == 0 || StdDev(y) == 0 {
		return Correlation{N: n}, false
	}

	r := stat.Correlation(x, y, nil)
	return Correlation{R: r, P: pValue(r, n), N: n}, true
}

func pValue(r float64, n int) float64 {
	if math.Abs(r) >= 1 {
		return 0
	}
	dof := float64(n - 2)
	t := r * math.Sqrt(dof/(1-r*r))
	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: dof}
	return 2 * (1 - dist.CDF(math.Abs(t)))
}

// Stars devolve a marcação de significância usada nos relatórios
func Stars(p float64) string {
	switch {
	case p < 0.001:
		return "***"
	case p < 0.01:
		return "**"
	case p < 0.05:
		return "*"
	default:
		return ""
	}
}

// Strength classifica a correlação com os mesmos limites do resumo executivo
func Strength(c Correlation) string {
	switch {
	case c.R > 0.7 && c.P < 0.05:
		return "strong"
	case c.R > 0.3 && c.P < 0.1:
		return "moderate"
	default:
		return "weak"
	}
}
