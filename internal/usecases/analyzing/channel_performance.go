package analyzing

import (
	"github.com/vfg2006/marketing-reports/internal/domain"
	"github.com/vfg2006/marketing-reports/pkg/utils"
)

// ChannelPerformanceReport resume totais e médias por canal, tendências mensais e melhores/piores meses por ROAS
type ChannelPerformanceReport struct{}

type ChannelSummary struct {
	Channel                string  `json:"channel"`
	TotalSpend             float64 `json:"total_spend"`
	TotalRevenue           float64 `json:"total_revenue"`
	TotalOrders            float64 `json:"total_orders"`
	AvgROAS                float64 `json:"avg_roas"`
	AvgCostPerOrder        float64 `json:"avg_cost_per_order"`
	AvgCostPerVisitor      float64 `json:"avg_cost_per_visitor"`
	AvgConversionRatePct   float64 `json:"avg_conversion_rate_pct"`
	AvgEmailCaptureRatePct float64 `json:"avg_email_capture_rate_pct"`
	AvgEmail30dConvPct     float64 `json:"avg_email_30d_conv_pct"`
	AvgEmail60dConvPct     float64 `json:"avg_email_60d_conv_pct"`
	TotalEmailCaptures     float64 `json:"total_email_captures"`
}

type ChannelMonth struct {
	Channel              string  `json:"channel"`
	Month                string  `json:"month"`
	Spend                float64 `json:"spend"`
	Revenue              float64 `json:"revenue"`
	Orders               float64 `json:"orders"`
	AvgROAS              float64 `json:"avg_roas"`
	AvgConversionRatePct float64 `json:"avg_conversion_rate_pct"`
}

type RowROAS struct {
	Channel string  `json:"channel"`
	Month   string  `json:"month"`
	ROAS    float64 `json:"roas"`
	Spend   float64 `json:"spend"`
	Revenue float64 `json:"revenue"`
	Orders  int64   `json:"orders"`
}

type ChannelPerformanceData struct {
	Paid          []ChannelSummary `json:"paid_channels"`
	Organic       *ChannelSummary  `json:"organic,omitempty"`
	MonthlyTrends []ChannelMonth   `json:"monthly_trends"`
	TopROAS       []RowROAS        `json:"top_roas"`
	WorstROAS     []RowROAS        `json:"worst_roas"`
}

func (ChannelPerformanceReport) Name() string           { return "channel-performance" }
func (ChannelPerformanceReport) Title() string          { return "Channel Performance Summary" }
func (ChannelPerformanceReport) Sources() domain.Source { return domain.SourceMarketing }

func (r ChannelPerformanceReport) Build(ds *domain.Dataset) (*domain.ReportResult, error) {
	if !ds.HasMarketing() {
		return nil, NewReportError(ErrNoData, r.Name(), "marketing data is empty")
	}

	result := domain.NewReportResult(r.Name(), r.Title())
	data := &ChannelPerformanceData{}
	byChannel := domain.RecordsByChannel(ds.Marketing)

	sec := result.Section("CHANNEL PERFORMANCE SUMMARY")
	for _, ch := range ds.Channels() {
		summary := summarizeChannel(ch, byChannel[ch])
		if !ch.IsPaid() {
			data.Organic = &summary
			continue
		}
		data.Paid = append(data.Paid, summary)

		sec.Printf("")
		sec.Printf("%s", upper(ch))
		sec.Printf("Total Spend: %s", utils.Money0(summary.TotalSpend))
		sec.Printf("Total Revenue: %s", utils.Money0(summary.TotalRevenue))
		sec.Printf("Total Orders: %s", utils.Int(summary.TotalOrders))
		sec.Printf("Average ROAS: %.2f", summary.AvgROAS)
		sec.Printf("Average Cost per Order: %s", utils.Money0(summary.AvgCostPerOrder))
		sec.Printf("Average Conversion Rate: %.2f%%", summary.AvgConversionRatePct)
		sec.Printf("Average Email Capture Rate: %.2f%%", summary.AvgEmailCaptureRatePct)
		sec.Printf("Average Email 30d Conv Rate: %.2f%%", summary.AvgEmail30dConvPct)
	}

	if o := data.Organic; o != nil {
		sec.Printf("")
		sec.Printf("%s", upper(domain.OrganicDirect))
		sec.Printf("Total Revenue: %s", utils.Money0(o.TotalRevenue))
		sec.Printf("Total Orders: %s", utils.Int(o.TotalOrders))
		sec.Printf("Average Conversion Rate: %.2f%%", o.AvgConversionRatePct)
		sec.Printf("Average Email Capture Rate: %.2f%%", o.AvgEmailCaptureRatePct)
	}

	trends := result.Section("MONTHLY TRENDS BY CHANNEL")
	table := trends.Table("Monthly trends", "Channel", "Month", "Spend", "Revenue", "Orders", "ROAS", "Conversion %")
	for _, ch := range ds.Channels() {
		keys, months := domain.GroupByMonth(byChannel[ch])
		rowsByMonth := map[string][]domain.MarketingRecord{}
		for _, rec := range byChannel[ch] {
			rowsByMonth[rec.MonthKey()] = append(rowsByMonth[rec.MonthKey()], rec)
		}
		for _, key := range keys {
			t := months[key]
			m := ChannelMonth{
				Channel:              ch.String(),
				Month:                key,
				Spend:                round2(t.Spend),
				Revenue:              round2(t.Revenue),
				Orders:               t.Orders,
				AvgROAS:              round2(meanOf(rowsByMonth[key], roasOf)),
				AvgConversionRatePct: round2(pct(meanOf(rowsByMonth[key], conversionOf))),
			}
			data.MonthlyTrends = append(data.MonthlyTrends, m)
			table.Add(m.Channel, m.Month, utils.Money(m.Spend), utils.Money(m.Revenue), utils.Int(m.Orders),
				utils.Ratio(m.AvgROAS), utils.Pct(m.AvgConversionRatePct, 2))
		}
	}

	paid := ds.PaidRecords()
	data.TopROAS = roasRows(rank(paid, roasOf, true, 10))
	data.WorstROAS = roasRows(rank(paid, roasOf, false, 10))
	roasTable(result.Section("TOP PERFORMING MONTHS BY ROAS"), data.TopROAS)
	roasTable(result.Section("WORST PERFORMING MONTHS BY ROAS"), data.WorstROAS)

	email := result.Section("EMAIL CAPTURE ANALYSIS")
	et := email.Table("Email capture", "Channel", "Capture Rate %", "30d Conv %", "60d Conv %", "Total Captures")
	for _, s := range data.Paid {
		et.Add(s.Channel, utils.Pct(s.AvgEmailCaptureRatePct, 2), utils.Pct(s.AvgEmail30dConvPct, 2),
			utils.Pct(s.AvgEmail60dConvPct, 2), utils.Int(s.TotalEmailCaptures))
	}

	result.Data = data
	return result, nil
}

func summarizeChannel(ch domain.Channel, rows []domain.MarketingRecord) ChannelSummary {
	t := domain.SumMarketing(rows)
	return ChannelSummary{
		Channel:                ch.String(),
		TotalSpend:             round2(t.Spend),
		TotalRevenue:           round2(t.Revenue),
		TotalOrders:            t.Orders,
		AvgROAS:                round2(meanOf(rows, roasOf)),
		AvgCostPerOrder:        round2(meanOf(rows, cpaOf)),
		AvgCostPerVisitor:      round2(meanOf(rows, costPerVisitorOf)),
		AvgConversionRatePct:   round2(pct(meanOf(rows, conversionOf))),
		AvgEmailCaptureRatePct: round2(pct(meanOf(rows, emailCaptureOf))),
		AvgEmail30dConvPct:     round2(pct(meanOf(rows, email30Of))),
		AvgEmail60dConvPct:     round2(pct(meanOf(rows, email60Of))),
		TotalEmailCaptures:     t.EmailCaptures,
	}
}

func roasRows(records []domain.MarketingRecord) []RowROAS {
	out := make([]RowROAS, 0, len(records))
	for _, r := range records {
		roas, _ := r.ROAS()
		out = append(out, RowROAS{
			Channel: r.Channel.String(),
			Month:   r.MonthKey(),
			ROAS:    round2(roas),
			Spend:   r.Spend,
			Revenue: r.Revenue,
			Orders:  r.Orders,
		})
	}
	return out
}

func roasTable(sec *domain.Section, rows []RowROAS) {
	t := sec.Table(sec.Title, "Channel", "Month", "ROAS", "Spend", "Revenue", "Orders")
	for _, r := range rows {
		t.Add(r.Channel, r.Month, utils.Ratio(r.ROAS), utils.Money0(r.Spend), utils.Money0(r.Revenue), utils.Int(float64(r.Orders)))
	}
}
