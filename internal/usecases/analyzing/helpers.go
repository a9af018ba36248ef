package analyzing

import (
	"math"
	"sort"
	"strings"

	"github.com/vfg2006/marketing-reports/internal/domain"
	"github.com/vfg2006/marketing-reports/internal/stats"
	"github.com/vfg2006/marketing-reports/pkg/utils"
)

type metricFunc func(domain.MarketingRecord) (float64, bool)

func roasOf(r domain.MarketingRecord) (float64, bool)         { return r.ROAS() }
func cpaOf(r domain.MarketingRecord) (float64, bool)          { return r.CPA() }
func conversionOf(r domain.MarketingRecord) (float64, bool)   { return r.ConversionRate() }
func emailCaptureOf(r domain.MarketingRecord) (float64, bool) { return r.EmailCaptureRate() }
func spendOf(r domain.MarketingRecord) (float64, bool)        { return r.Spend, true }
func revenueOf(r domain.MarketingRecord) (float64, bool)      { return r.Revenue, true }
func visitorsOf(r domain.MarketingRecord) (float64, bool)     { return float64(r.Visitors), true }
func ordersOf(r domain.MarketingRecord) (float64, bool)       { return float64(r.Orders), true }
func costPerVisitorOf(r domain.MarketingRecord) (float64, bool) {
	return domain.CostPerVisitor(r.Spend, float64(r.Visitors))
}
func email30Of(r domain.MarketingRecord) (float64, bool) {
	return domain.ConversionRate(float64(r.EmailConversions30), float64(r.EmailCaptures))
}
func email60Of(r domain.MarketingRecord) (float64, bool) {
	return domain.ConversionRate(float64(r.EmailConversions60), float64(r.EmailCaptures))
}

// values extrai a métrica das linhas, descartando valores indefinidos
func values(records []domain.MarketingRecord, metric metricFunc) []float64 {
	out := make([]float64, 0, len(records))
	for _, r := range records {
		if v, ok := metric(r); ok && !math.IsNaN(v) && !math.IsInf(v, 0) {
			out = append(out, v)
		}
	}
	return out
}

// meanOf é a média da métrica nas linhas onde ela é definida
func meanOf(records []domain.MarketingRecord, metric metricFunc) float64 {
	return stats.Mean(values(records, metric))
}

// rank ordena as linhas pela métrica e devolve até n linhas; linhas sem métrica ficam de fora
func rank(records []domain.MarketingRecord, metric metricFunc, desc bool, n int) []domain.MarketingRecord {
	type scored struct {
		rec   domain.MarketingRecord
		value float64
	}
	var rows []scored
	for _, r := range records {
		if v, ok := metric(r); ok {
			rows = append(rows, scored{r, v})
		}
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if desc {
			return rows[i].value > rows[j].value
		}
		return rows[i].value < rows[j].value
	})
	if n > 0 && len(rows) > n {
		rows = rows[:n]
	}
	out := make([]domain.MarketingRecord, len(rows))
	for i, s := range rows {
		out[i] = s.rec
	}
	return out
}

func withSpend(records []domain.MarketingRecord) []domain.MarketingRecord {
	out := make([]domain.MarketingRecord, 0, len(records))
	for _, r := range records {
		if r.Spend > 0 {
			out = append(out, r)
		}
	}
	return out
}

func round2(v float64) float64 {
	return utils.RoundWithTwoDecimalPlace(v)
}

func pct(frac float64) float64 {
	return frac * 100
}

var monthNames = [...]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

func monthName(m int) string {
	if m < 1 || m > 12 {
		return ""
	}
	return monthNames[m-1]
}

func upper(ch domain.Channel) string {
	return strings.ToUpper(ch.String())
}
