package analyzing

import (
	"sort"
	"time"

	"github.com/vfg2006/marketing-reports/internal/domain"
	"github.com/vfg2006/marketing-reports/pkg/utils"
)

// EstimatedEmailAOV é o ticket médio usado para estimar receita de capturas de e-mail adicionais
const EstimatedEmailAOV = 4500

// SeasonalityReport analisa padrões por mês do ano e o impacto de realocar verba para o canal benchmark
type SeasonalityReport struct{}

type CalendarMonthMetric struct {
	Month    int     `json:"month"`
	Name     string  `json:"name"`
	AvgROAS  float64 `json:"avg_roas"`
	AvgSpend float64 `json:"avg_spend"`
}

type OrganicMonth struct {
	Month                int     `json:"month"`
	Name                 string  `json:"name"`
	AvgRevenue           float64 `json:"avg_revenue"`
	AvgOrders            float64 `json:"avg_orders"`
	AvgConversionRatePct float64 `json:"avg_conversion_rate_pct"`
}

type ChannelEfficiency struct {
	Channel              string  `json:"channel"`
	AvgROAS              float64 `json:"avg_roas"`
	AvgCostPerOrder      float64 `json:"avg_cost_per_order"`
	AvgConversionRatePct float64 `json:"avg_conversion_rate_pct"`
	TotalSpend           float64 `json:"total_spend"`
	TotalRevenue         float64 `json:"total_revenue"`
}

type BudgetShift struct {
	From              string  `json:"from"`
	To                string  `json:"to"`
	Spend             float64 `json:"spend"`
	FromROAS          float64 `json:"from_roas"`
	ToROAS            float64 `json:"to_roas"`
	AdditionalRevenue float64 `json:"additional_revenue"`
}

type EmailOpportunity struct {
	Channel              string  `json:"channel"`
	CurrentCaptureRate   float64 `json:"current_capture_rate_pct"`
	TargetCaptureRate    float64 `json:"target_capture_rate_pct"`
	AdditionalCaptures   float64 `json:"additional_captures"`
	AdditionalOrders     float64 `json:"additional_orders"`
	EstimatedRevenueGain float64 `json:"estimated_revenue_gain"`
}

type SeasonalityData struct {
	PaidByMonth        []CalendarMonthMetric `json:"paid_by_month"`
	Organic            []OrganicMonth        `json:"organic_by_month"`
	Ranking            []ChannelEfficiency   `json:"ranking"`
	BudgetShifts       []BudgetShift         `json:"budget_shifts"`
	EmailOpportunities []EmailOpportunity    `json:"email_opportunities"`
}

func (SeasonalityReport) Name() string           { return "seasonality" }
func (SeasonalityReport) Title() string          { return "Seasonality Analysis" }
func (SeasonalityReport) Sources() domain.Source { return domain.SourceMarketing }

func (r SeasonalityReport) Build(ds *domain.Dataset) (*domain.ReportResult, error) {
	paid := ds.PaidRecords()
	if len(paid) == 0 {
		return nil, NewReportError(ErrNoData, r.Name(), "no paid channel rows")
	}

	result := domain.NewReportResult(r.Name(), r.Title())
	data := &SeasonalityData{}

	byMonth := domain.GroupByCalendarMonth(paid)
	roasSec := result.Section("AVERAGE ROAS BY MONTH (All Paid Channels)")
	spendSec := result.Section("AVERAGE SPEND BY MONTH (All Paid Channels)")
	for _, m := range calendarMonths(byMonth) {
		rows := byMonth[m]
		metric := CalendarMonthMetric{
			Month:    int(m),
			Name:     m.String(),
			AvgROAS:  round2(meanOf(rows, roasOf)),
			AvgSpend: utils.Round(meanOf(rows, spendOf), 0),
		}
		data.PaidByMonth = append(data.PaidByMonth, metric)
		roasSec.Printf("%s: %.2f", metric.Name, metric.AvgROAS)
		spendSec.Printf("%s: %s", metric.Name, utils.Money0(metric.AvgSpend))
	}

	organic := ds.MarketingWhere(func(rec domain.MarketingRecord) bool { return !rec.Channel.IsPaid() })
	orgSec := result.Section("ORGANIC + DIRECT SEASONALITY")
	orgByMonth := domain.GroupByCalendarMonth(organic)
	for _, m := range calendarMonths(orgByMonth) {
		rows := orgByMonth[m]
		om := OrganicMonth{
			Month:                int(m),
			Name:                 m.String(),
			AvgRevenue:           round2(meanOf(rows, revenueOf)),
			AvgOrders:            round2(meanOf(rows, ordersOf)),
			AvgConversionRatePct: round2(pct(meanOf(rows, conversionOf))),
		}
		data.Organic = append(data.Organic, om)
		orgSec.Printf("%s: Revenue=%s, Orders=%.0f, Conv Rate=%.2f%%", om.Name, utils.Money0(om.AvgRevenue), om.AvgOrders, om.AvgConversionRatePct)
	}

	data.Ranking = channelEfficiency(paid)
	rankSec := result.Section("CHANNEL EFFICIENCY COMPARISON")
	rankSec.Printf("Channel Performance Ranking by ROAS:")
	for i, c := range data.Ranking {
		rankSec.Printf("%d. %s: ROAS %.2f, Cost/Order %s, Conv Rate %.3f%%", i+1, c.Channel, c.AvgROAS, utils.Money0(c.AvgCostPerOrder), c.AvgConversionRatePct)
	}

	impact := result.Section("FINANCIAL IMPACT CALCULATIONS")
	if benchmark, ok := findEfficiency(data.Ranking, domain.GoogleAds); ok {
		for _, c := range data.Ranking {
			if c.Channel == benchmark.Channel {
				continue
			}
			shift := BudgetShift{
				From:              c.Channel,
				To:                benchmark.Channel,
				Spend:             c.TotalSpend,
				FromROAS:          c.AvgROAS,
				ToROAS:            benchmark.AvgROAS,
				AdditionalRevenue: round2(c.TotalSpend * (benchmark.AvgROAS - c.AvgROAS)),
			}
			data.BudgetShifts = append(data.BudgetShifts, shift)
			impact.Printf("%s Total Spend: %s", c.Channel, utils.Money0(c.TotalSpend))
			impact.Printf("%s ROAS: %.2f | %s ROAS: %.2f", c.Channel, c.AvgROAS, benchmark.Channel, benchmark.AvgROAS)
			impact.Printf("Potential additional revenue from moving %s budget to %s: %s", c.Channel, benchmark.Channel, utils.Money0(shift.AdditionalRevenue))
			impact.Printf("")
		}
	} else {
		impact.Printf("Google Ads not present; no benchmark for budget shift")
	}

	data.EmailOpportunities = emailOpportunities(paid, domain.GoogleAds)
	emailSec := result.Section("EMAIL OPTIMIZATION OPPORTUNITIES")
	for _, o := range data.EmailOpportunities {
		emailSec.Printf("%s Email Optimization Opportunity:", o.Channel)
		emailSec.Printf("  Current capture rate: %.2f%%", o.CurrentCaptureRate)
		emailSec.Printf("  Target capture rate: %.2f%%", o.TargetCaptureRate)
		emailSec.Printf("  Additional email captures: %s", utils.Int(o.AdditionalCaptures))
		emailSec.Printf("  Estimated additional revenue: %s", utils.Money0(o.EstimatedRevenueGain))
	}

	result.Data = data
	return result, nil
}

func calendarMonths(m map[time.Month][]domain.MarketingRecord) []time.Month {
	out := make([]time.Month, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// channelEfficiency calcula médias por canal e ordena por ROAS médio decrescente
func channelEfficiency(records []domain.MarketingRecord) []ChannelEfficiency {
	byChannel := domain.RecordsByChannel(records)
	var out []ChannelEfficiency
	for _, ch := range domain.ChannelsOf(records) {
		rows := byChannel[ch]
		t := domain.SumMarketing(rows)
		out = append(out, ChannelEfficiency{
			Channel:              ch.String(),
			AvgROAS:              round2(meanOf(rows, roasOf)),
			AvgCostPerOrder:      round2(meanOf(rows, cpaOf)),
			AvgConversionRatePct: utils.Round(pct(meanOf(rows, conversionOf)), 3),
			TotalSpend:           round2(t.Spend),
			TotalRevenue:         round2(t.Revenue),
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].AvgROAS > out[j].AvgROAS })
	return out
}

func findEfficiency(list []ChannelEfficiency, ch domain.Channel) (ChannelEfficiency, bool) {
	for _, c := range list {
		if c.Channel == ch.String() {
			return c, true
		}
	}
	return ChannelEfficiency{}, false
}

// emailOpportunities estima capturas e receita adicionais se cada canal igualasse a taxa de captura do benchmark
func emailOpportunities(records []domain.MarketingRecord, benchmark domain.Channel) []EmailOpportunity {
	totals := domain.GroupByChannel(records)
	bench, ok := totals[benchmark]
	if !ok {
		return nil
	}
	targetRate := utils.Round(pct(domain.OrZero(bench.EmailCaptureRate())), 2)
	benchConv := utils.Round(pct(domain.OrZero(domain.ConversionRate(bench.EmailConversions30, bench.EmailCaptures))), 2) / 100

	var out []EmailOpportunity
	for _, ch := range domain.ChannelsOf(records) {
		if ch == benchmark {
			continue
		}
		t := totals[ch]
		potential := t.Visitors * targetRate / 100
		additional := potential - t.EmailCaptures
		orders := additional * benchConv
		out = append(out, EmailOpportunity{
			Channel:              ch.String(),
			CurrentCaptureRate:   utils.Round(pct(domain.OrZero(t.EmailCaptureRate())), 2),
			TargetCaptureRate:    targetRate,
			AdditionalCaptures:   utils.Round(additional, 0),
			AdditionalOrders:     round2(orders),
			EstimatedRevenueGain: round2(orders * EstimatedEmailAOV),
		})
	}
	return out
}
