package analyzing

import (
	"strings"

	"github.com/vfg2006/marketing-reports/internal/domain"
	"github.com/vfg2006/marketing-reports/internal/stats"
	"github.com/vfg2006/marketing-reports/pkg/utils"
)

const (
	underperformFactor     = 0.7
	lowConversionFactor    = 0.8
	reallocationMinAdvance = 1.5
	reallocationShare      = 0.3
	reallocationMonths     = 3
	organicPeakFactor      = 1.2
)

// TacticalReport aponta meses abaixo da média, oportunidades de conversão e realocações rápidas de verba
type TacticalReport struct{}

type RowFlag struct {
	Channel string  `json:"channel"`
	Month   string  `json:"month"`
	ROAS    float64 `json:"roas"`
	Spend   float64 `json:"spend"`
	Revenue float64 `json:"revenue"`
}

type ChannelUnderperformance struct {
	Channel string    `json:"channel"`
	AvgROAS float64   `json:"avg_roas"`
	Rows    []RowFlag `json:"rows"`
}

type ConversionOpportunity struct {
	Channel              string  `json:"channel"`
	Month                string  `json:"month"`
	Visitors             int64   `json:"visitors"`
	ConversionRatePct    float64 `json:"conversion_rate_pct"`
	AvgConversionRatePct float64 `json:"avg_conversion_rate_pct"`
	MissedOrders         float64 `json:"missed_orders"`
	MissedRevenue        float64 `json:"missed_revenue"`
}

type Reallocation struct {
	Month             string  `json:"month"`
	From              string  `json:"from"`
	FromROAS          float64 `json:"from_roas"`
	To                string  `json:"to"`
	ToROAS            float64 `json:"to_roas"`
	Amount            float64 `json:"amount"`
	AdditionalRevenue float64 `json:"additional_revenue"`
}

type SeasonalExtremes struct {
	Channel    string  `json:"channel"`
	BestMonth  string  `json:"best_month"`
	BestROAS   float64 `json:"best_roas"`
	WorstMonth string  `json:"worst_month"`
	WorstROAS  float64 `json:"worst_roas"`
}

type TacticalData struct {
	Underperforming         []ChannelUnderperformance `json:"underperforming"`
	HighSpendLowROAS        []RowFlag                 `json:"high_spend_low_roas"`
	HighSpendThreshold      float64                   `json:"high_spend_threshold"`
	LowROASThreshold        float64                   `json:"low_roas_threshold"`
	ConversionOpportunities []ConversionOpportunity   `json:"conversion_opportunities"`
	Reallocations           []Reallocation            `json:"reallocations"`
	OrganicBestMonths       []string                  `json:"organic_best_months"`
	SeasonalExtremes        []SeasonalExtremes        `json:"seasonal_extremes"`
}

func (TacticalReport) Name() string           { return "tactical" }
func (TacticalReport) Title() string          { return "Tactical Opportunities Analysis" }
func (TacticalReport) Sources() domain.Source { return domain.SourceMarketing }

func (r TacticalReport) Build(ds *domain.Dataset) (*domain.ReportResult, error) {
	paid := ds.PaidRecords()
	if len(paid) == 0 {
		return nil, NewReportError(ErrNoData, r.Name(), "no paid channel rows")
	}

	result := domain.NewReportResult(r.Name(), r.Title())
	data := &TacticalData{}
	byChannel := domain.RecordsByChannel(paid)
	channels := domain.ChannelsOf(paid)

	under := result.Section("UNDERPERFORMING INSTANCES TO INVESTIGATE")
	for _, ch := range channels {
		rows := byChannel[ch]
		avg := meanOf(rows, roasOf)
		threshold := avg * underperformFactor
		cu := ChannelUnderperformance{Channel: ch.String(), AvgROAS: round2(avg)}
		for _, rec := range rows {
			if roas, ok := rec.ROAS(); ok && roas < threshold {
				cu.Rows = append(cu.Rows, flagRow(rec))
			}
		}
		if len(cu.Rows) == 0 {
			continue
		}
		data.Underperforming = append(data.Underperforming, cu)
		under.Printf("%s - Avg ROAS: %.2f", cu.Channel, avg)
		under.Printf("Underperforming months (30%%+ below average):")
		for _, f := range cu.Rows {
			under.Printf("  %s: ROAS %.2f, Spend %s, Revenue %s", f.Month, f.ROAS, utils.Money0(f.Spend), utils.Money0(f.Revenue))
		}
	}

	highSpend := stats.Quantile(values(paid, spendOf), 0.75)
	lowROAS := stats.Quantile(values(paid, roasOf), 0.25)
	data.HighSpendThreshold = round2(highSpend)
	data.LowROASThreshold = round2(lowROAS)
	hs := result.Section("HIGH SPEND / LOW PERFORMANCE MONTHS")
	for _, rec := range paid {
		if roas, ok := rec.ROAS(); ok && rec.Spend > highSpend && roas < lowROAS {
			f := flagRow(rec)
			data.HighSpendLowROAS = append(data.HighSpendLowROAS, f)
			hs.Printf("%s %s: Spend %s, ROAS %.2f", f.Channel, f.Month, utils.Money0(f.Spend), f.ROAS)
		}
	}
	if len(data.HighSpendLowROAS) == 0 {
		hs.Printf("No high spend + low ROAS combinations found")
	}

	conv := result.Section("CONVERSION RATE OPPORTUNITIES")
	for _, ch := range channels {
		rows := byChannel[ch]
		avgConv := meanOf(rows, conversionOf)
		highTraffic := stats.Quantile(values(rows, visitorsOf), 0.75)

		var found []ConversionOpportunity
		for _, rec := range rows {
			cr, ok := rec.ConversionRate()
			if !ok || float64(rec.Visitors) <= highTraffic || cr >= avgConv*lowConversionFactor {
				continue
			}
			missed := float64(rec.Visitors)*avgConv - float64(rec.Orders)
			aov := domain.OrZero(rec.AOV())
			found = append(found, ConversionOpportunity{
				Channel:              ch.String(),
				Month:                rec.MonthKey(),
				Visitors:             rec.Visitors,
				ConversionRatePct:    utils.Round(pct(cr), 3),
				AvgConversionRatePct: utils.Round(pct(avgConv), 3),
				MissedOrders:         utils.Round(missed, 0),
				MissedRevenue:        utils.Round(missed*aov, 0),
			})
		}
		if len(found) == 0 {
			continue
		}
		data.ConversionOpportunities = append(data.ConversionOpportunities, found...)
		conv.Printf("%s - Avg Conv Rate: %.3f%%", ch, pct(avgConv))
		conv.Printf("High traffic + Low conversion opportunities:")
		for _, o := range found {
			conv.Printf("  %s: %s visitors, %.3f%% conv rate", o.Month, utils.Int(float64(o.Visitors)), o.ConversionRatePct)
			conv.Printf("    Potential missed orders: %.0f, Missed revenue: %s", o.MissedOrders, utils.Money0(o.MissedRevenue))
		}
	}

	realloc := result.Section("QUICK WIN BUDGET REALLOCATION")
	data.Reallocations = reallocations(paid, reallocationMonths, reallocationShare, reallocationMinAdvance)
	for _, re := range data.Reallocations {
		realloc.Printf("%s Reallocation Opportunity:", re.Month)
		realloc.Printf("  Move %s from %s (ROAS: %.2f)", utils.Money0(re.Amount), re.From, re.FromROAS)
		realloc.Printf("  To %s (ROAS: %.2f)", re.To, re.ToROAS)
		realloc.Printf("  Estimated additional revenue: %s", utils.Money0(re.AdditionalRevenue))
	}
	if len(data.Reallocations) == 0 {
		realloc.Printf("No month with a best channel 50%%+ ahead of the worst")
	}

	season := result.Section("SEASONAL BUDGET PLANNING")
	organic := ds.MarketingWhere(func(rec domain.MarketingRecord) bool { return !rec.Channel.IsPaid() })
	orgByMonth := domain.GroupByCalendarMonth(organic)
	months := calendarMonths(orgByMonth)
	var monthlyRevenue []float64
	for _, m := range months {
		monthlyRevenue = append(monthlyRevenue, utils.Round(meanOf(orgByMonth[m], revenueOf), 0))
	}
	peak := stats.Mean(monthlyRevenue) * organicPeakFactor
	season.Printf("Organic traffic patterns (monthly averages):")
	for i, m := range months {
		season.Printf("%s: %s revenue, %.0f orders", monthName(int(m)), utils.Money0(monthlyRevenue[i]), meanOf(orgByMonth[m], ordersOf))
		if monthlyRevenue[i] > peak {
			data.OrganicBestMonths = append(data.OrganicBestMonths, monthName(int(m)))
		}
	}
	season.Printf("")
	season.Printf("Best performing months for budget increases: %s", strings.Join(data.OrganicBestMonths, ", "))

	season.Printf("")
	season.Printf("Paid channel seasonal ROAS patterns:")
	for _, ch := range channels {
		byCal := domain.GroupByCalendarMonth(byChannel[ch])
		var ms []int
		var roas []float64
		for _, m := range calendarMonths(byCal) {
			ms = append(ms, int(m))
			roas = append(roas, round2(meanOf(byCal[m], roasOf)))
		}
		bi, best := stats.Max(roas)
		wi, worst := stats.Min(roas)
		if bi < 0 {
			continue
		}
		ext := SeasonalExtremes{
			Channel:    ch.String(),
			BestMonth:  monthName(ms[bi]),
			BestROAS:   best,
			WorstMonth: monthName(ms[wi]),
			WorstROAS:  worst,
		}
		data.SeasonalExtremes = append(data.SeasonalExtremes, ext)
		season.Printf("%s: Best %s (%.2f), Worst %s (%.2f)", ext.Channel, ext.BestMonth, ext.BestROAS, ext.WorstMonth, ext.WorstROAS)
	}

	result.Data = data
	return result, nil
}

func flagRow(rec domain.MarketingRecord) RowFlag {
	roas, _ := rec.ROAS()
	return RowFlag{
		Channel: rec.Channel.String(),
		Month:   rec.MonthKey(),
		ROAS:    round2(roas),
		Spend:   rec.Spend,
		Revenue: rec.Revenue,
	}
}

// reallocations compara, nos últimos meses, o canal de maior ROAS com o de menor e sugere mover
// share do investimento do pior quando o melhor supera o pior por minAdvance vezes
func reallocations(paid []domain.MarketingRecord, lastMonths int, share, minAdvance float64) []Reallocation {
	keys, _ := domain.GroupByMonth(paid)
	if len(keys) > lastMonths {
		keys = keys[len(keys)-lastMonths:]
	}

	byMonth := map[string][]domain.MarketingRecord{}
	for _, rec := range paid {
		byMonth[rec.MonthKey()] = append(byMonth[rec.MonthKey()], rec)
	}

	var out []Reallocation
	for _, month := range keys {
		rows := rank(byMonth[month], roasOf, true, 0)
		if len(rows) < 2 {
			continue
		}
		best, worst := rows[0], rows[len(rows)-1]
		bestROAS, _ := best.ROAS()
		worstROAS, _ := worst.ROAS()
		if bestROAS <= worstROAS*minAdvance {
			continue
		}
		amount := worst.Spend * share
		out = append(out, Reallocation{
			Month:             month,
			From:              worst.Channel.String(),
			FromROAS:          round2(worstROAS),
			To:                best.Channel.String(),
			ToROAS:            round2(bestROAS),
			Amount:            round2(amount),
			AdditionalRevenue: round2(amount * (bestROAS - worstROAS)),
		})
	}
	return out
}
