package analyzing

import (
	"fmt"
	"sort"
	"time"

	"github.com/vfg2006/marketing-reports/internal/domain"
	"github.com/vfg2006/marketing-reports/internal/stats"
	"github.com/vfg2006/marketing-reports/pkg/utils"
)

const (
	usConcentrationLimit    = 70
	seasonalCVLimit         = 0.3
	executiveRealloShare    = 0.25
	executiveGapFactor      = 2
	cacBenchmarkLow         = 400
	cacBenchmarkHigh        = 800
	topRegions              = 5
	maxExecutiveInsights    = 5
	maxExecutiveRecommended = 3

	spendRevenueCorrelation      = "Marketing Spend vs New Member Revenue"
	dailySpendRevenueCorrelation = "Daily Spend vs New Member Revenue"
)

// ExecutiveReport resume eficiência de marketing, correlação com novos membros e concentração regional
type ExecutiveReport struct{}

type ExecutiveKPIs struct {
	PeriodStart           string  `json:"period_start"`
	PeriodEnd             string  `json:"period_end"`
	Days                  int     `json:"days"`
	TotalDailySpend       float64 `json:"total_daily_spend"`
	TotalMarketingSpend   float64 `json:"total_marketing_spend"`
	TotalBookings         float64 `json:"total_bookings"`
	NewMemberRevenue      float64 `json:"new_member_revenue"`
	NewMemberRevenueShare float64 `json:"new_member_revenue_share_pct"`
	NewMemberOrders       float64 `json:"new_member_orders"`
	NewMemberAOV          float64 `json:"new_member_aov"`
	CostPerOrder          float64 `json:"cost_per_order"`
	ROAS                  float64 `json:"roas"`
	AttributionPct        float64 `json:"attribution_pct"`
}

type MonthlyMerge struct {
	Month             string  `json:"month"`
	DailySpend        float64 `json:"daily_spend"`
	DailyOrders       float64 `json:"daily_orders"`
	DailyBookings     float64 `json:"daily_bookings"`
	MarketingSpend    float64 `json:"marketing_spend"`
	MarketingOrders   float64 `json:"marketing_orders"`
	MarketingRevenue  float64 `json:"marketing_revenue"`
	MarketingVisitors float64 `json:"marketing_visitors"`
	NewMemberBookings float64 `json:"new_member_bookings"`
	NewMemberOrders   float64 `json:"new_member_orders"`
}

type NamedCorrelation struct {
	Name     string  `json:"name"`
	R        float64 `json:"r"`
	P        float64 `json:"p_value"`
	N        int     `json:"n"`
	Strength string  `json:"strength"`
}

type ChannelROAS struct {
	Channel      string  `json:"channel"`
	Spend        float64 `json:"spend"`
	Orders       float64 `json:"orders"`
	Revenue      float64 `json:"revenue"`
	ROAS         float64 `json:"roas"`
	CostPerOrder float64 `json:"cost_per_order"`
}

type RegionPerformance struct {
	Region          string  `json:"region"`
	Bookings        float64 `json:"bookings"`
	Orders          float64 `json:"orders"`
	AOV             float64 `json:"aov"`
	RevenueSharePct float64 `json:"revenue_share_pct"`
}

type ExecutiveData struct {
	KPIs                ExecutiveKPIs       `json:"kpis"`
	Monthly             []MonthlyMerge      `json:"monthly"`
	Correlations        []NamedCorrelation  `json:"correlations"`
	Channels            []ChannelROAS       `json:"channels"`
	Regions             []RegionPerformance `json:"regions"`
	USSharePct          float64             `json:"us_share_pct"`
	SeasonalCV          float64             `json:"seasonal_cv"`
	ReallocationRevenue float64             `json:"reallocation_revenue"`
	ROIImprovementPct   float64             `json:"roi_improvement_pct"`
	WithinCACBenchmark  bool                `json:"within_cac_benchmark"`
	Insights            []string            `json:"insights"`
	Recommendations     []string            `json:"recommendations"`
}

func (ExecutiveReport) Name() string  { return "executive" }
func (ExecutiveReport) Title() string { return "Marketing Effectiveness Analysis - Executive Summary" }
func (ExecutiveReport) Sources() domain.Source {
	return domain.SourceMarketing | domain.SourceDailySales | domain.SourceRegionalSales
}

func (r ExecutiveReport) Build(ds *domain.Dataset) (*domain.ReportResult, error) {
	if !ds.HasDaily() || !ds.HasRegional() || !ds.HasMarketing() {
		return nil, NewReportError(ErrNoData, r.Name(), "requires marketing, daily and regional sales")
	}

	result := domain.NewReportResult(r.Name(), r.Title())
	data := &ExecutiveData{}
	newMembers := domain.RegionalWhere(ds.Regional, domain.RegionalSale.IsNewMember)

	r.kpis(result, ds, newMembers, data)
	r.correlations(result, ds, newMembers, data)
	r.channels(result, ds, data)
	r.regions(result, newMembers, data)
	r.insights(result, ds, data)

	result.Data = data
	return result, nil
}

func (ExecutiveReport) kpis(result *domain.ReportResult, ds *domain.Dataset, newMembers []domain.RegionalSale, data *ExecutiveData) {
	var daily, members domain.SalesTotals
	first, last := ds.Daily[0].Date, ds.Daily[0].Date
	for _, s := range ds.Daily {
		daily.AddDaily(s)
		if s.Date.Before(first) {
			first = s.Date
		}
		if s.Date.After(last) {
			last = s.Date
		}
	}
	for _, s := range newMembers {
		members.AddRegional(s)
	}
	marketing := domain.SumMarketing(ds.Marketing)

	k := ExecutiveKPIs{
		PeriodStart:           first.Format("January 2006"),
		PeriodEnd:             last.Format("January 2006"),
		Days:                  daily.Days,
		TotalDailySpend:       round2(daily.Spend),
		TotalMarketingSpend:   round2(marketing.Spend),
		TotalBookings:         round2(daily.Bookings),
		NewMemberRevenue:      round2(members.Bookings),
		NewMemberRevenueShare: utils.Round(pct(utils.SafeDiv(members.Bookings, daily.Bookings)), 1),
		NewMemberOrders:       members.Orders,
		NewMemberAOV:          round2(utils.SafeDiv(members.Bookings, members.Orders)),
		CostPerOrder:          round2(utils.SafeDiv(marketing.Spend, marketing.Orders)),
		ROAS:                  round2(utils.SafeDiv(marketing.Revenue, marketing.Spend)),
		AttributionPct:        utils.Round(pct(utils.SafeDiv(marketing.Orders, members.Orders)), 1),
	}
	data.KPIs = k

	sec := result.Section("KEY PERFORMANCE METRICS")
	sec.Printf("Analysis Period: %s to %s", k.PeriodStart, k.PeriodEnd)
	sec.Printf("Total Days Analyzed: %d", k.Days)
	sec.Printf("Total Daily Spend: %s", utils.Money0(k.TotalDailySpend))
	sec.Printf("Total Marketing Spend: %s", utils.Money0(k.TotalMarketingSpend))
	sec.Printf("Total Bookings Revenue: %s", utils.Money0(k.TotalBookings))
	sec.Printf("New Member Revenue: %s (%.1f%% of total)", utils.Money0(k.NewMemberRevenue), k.NewMemberRevenueShare)
	sec.Printf("New Member Orders: %s", utils.Int(k.NewMemberOrders))
	sec.Printf("Average New Member Order Value: %s", utils.Money0(k.NewMemberAOV))

	eff := result.Section("MARKETING EFFICIENCY")
	eff.Printf("Marketing Cost per Order: %s", utils.Money0(k.CostPerOrder))
	eff.Printf("Marketing ROAS: %.1fx", k.ROAS)
	eff.Printf("Marketing Attribution: %.1f%% of new member orders", k.AttributionPct)
}

// monthlyMerge junta vendas diárias, marketing e novos membros nos meses presentes nas três fontes
func monthlyMerge(ds *domain.Dataset, newMembers []domain.RegionalSale) []MonthlyMerge {
	_, daily := domain.DailyByMonth(ds.Daily)
	_, marketing := domain.GroupByMonth(ds.Marketing)
	_, members := domain.RegionalByKey(newMembers, func(s domain.RegionalSale) string { return utils.MonthKey(s.Date) })

	var out []MonthlyMerge
	for _, month := range domain.SortedKeys(daily) {
		m, okM := marketing[month]
		n, okN := members[month]
		if !okM || !okN {
			continue
		}
		d := daily[month]
		out = append(out, MonthlyMerge{
			Month:             month,
			DailySpend:        round2(d.Spend),
			DailyOrders:       d.Orders,
			DailyBookings:     round2(d.Bookings),
			MarketingSpend:    round2(m.Spend),
			MarketingOrders:   m.Orders,
			MarketingRevenue:  round2(m.Revenue),
			MarketingVisitors: m.Visitors,
			NewMemberBookings: round2(n.Bookings),
			NewMemberOrders:   n.Orders,
		})
	}
	return out
}

func (ExecutiveReport) correlations(result *domain.ReportResult, ds *domain.Dataset, newMembers []domain.RegionalSale, data *ExecutiveData) {
	data.Monthly = monthlyMerge(ds, newMembers)

	var spend, dailySpend, bookings []float64
	for _, m := range data.Monthly {
		spend = append(spend, m.MarketingSpend)
		dailySpend = append(dailySpend, m.DailySpend)
		bookings = append(bookings, m.NewMemberBookings)
	}

	sec := result.Section("CORRELATION ANALYSIS")
	pairs := []struct {
		name string
		x    []float64
	}{
		{spendRevenueCorrelation, spend},
		{dailySpendRevenueCorrelation, dailySpend},
	}
	for _, p := range pairs {
		c, ok := stats.PearsonMin(p.x, bookings, stats.MinMergedPoints)
		if !ok {
			sec.Printf("%s: not enough data (%d months)", p.name, len(bookings))
			continue
		}
		nc := NamedCorrelation{Name: p.name, R: utils.Round(c.R, 3), P: utils.Round(c.P, 3), N: c.N, Strength: stats.Strength(c)}
		data.Correlations = append(data.Correlations, nc)
		sec.Printf("%s: r=%.3f (p=%.3f)", nc.Name, c.R, c.P)
	}

	if c, ok := correlationNamed(data.Correlations, spendRevenueCorrelation); ok {
		switch c.Strength {
		case "strong":
			sec.Printf("FINDING: STRONG positive correlation between marketing spend and new customer acquisition")
		case "moderate":
			sec.Printf("FINDING: MODERATE positive correlation between marketing spend and new customer acquisition")
		default:
			sec.Printf("FINDING: WEAK correlation between marketing spend and new customer acquisition")
		}
	}
}

func (ExecutiveReport) channels(result *domain.ReportResult, ds *domain.Dataset, data *ExecutiveData) {
	totals := domain.GroupByChannel(ds.Marketing)
	for _, ch := range ds.Channels() {
		t := totals[ch]
		if t.Orders <= 0 {
			continue
		}
		data.Channels = append(data.Channels, ChannelROAS{
			Channel:      ch.String(),
			Spend:        round2(t.Spend),
			Orders:       t.Orders,
			Revenue:      round2(t.Revenue),
			ROAS:         round2(domain.OrZero(t.ROAS())),
			CostPerOrder: round2(domain.OrZero(t.CPA())),
		})
	}
	sort.SliceStable(data.Channels, func(i, j int) bool { return data.Channels[i].ROAS > data.Channels[j].ROAS })

	sec := result.Section("CHANNEL PERFORMANCE")
	for _, c := range data.Channels {
		sec.Printf("%-16s | ROAS: %5.1fx | Cost/Order: %7s | Spend: %11s", c.Channel, c.ROAS, utils.Money0(c.CostPerOrder), utils.Money0(c.Spend))
	}
}

func (ExecutiveReport) regions(result *domain.ReportResult, newMembers []domain.RegionalSale, data *ExecutiveData) {
	keys, regions := domain.RegionalByKey(newMembers, func(s domain.RegionalSale) string { return s.Region })
	var total float64
	for _, t := range regions {
		total += t.Bookings
	}
	for _, region := range keys {
		t := regions[region]
		data.Regions = append(data.Regions, RegionPerformance{
			Region:          region,
			Bookings:        round2(t.Bookings),
			Orders:          t.Orders,
			AOV:             round2(utils.SafeDiv(t.Bookings, t.Orders)),
			RevenueSharePct: utils.Round(pct(utils.SafeDiv(t.Bookings, total)), 1),
		})
		if region == "US" {
			data.USSharePct = utils.Round(pct(utils.SafeDiv(t.Bookings, total)), 1)
		}
	}
	sort.SliceStable(data.Regions, func(i, j int) bool { return data.Regions[i].Bookings > data.Regions[j].Bookings })

	sec := result.Section("REGIONAL NEW MEMBER PERFORMANCE")
	for i, rp := range data.Regions {
		if i == topRegions {
			break
		}
		sec.Printf("%-6s | Revenue: %11s (%4.1f%%) | AOV: %7s | Orders: %5.0f", rp.Region, utils.Money0(rp.Bookings), rp.RevenueSharePct, utils.Money0(rp.AOV), rp.Orders)
	}
}

func (ExecutiveReport) insights(result *domain.ReportResult, ds *domain.Dataset, data *ExecutiveData) {
	if c, ok := correlationNamed(data.Correlations, spendRevenueCorrelation); ok && c.R > 0.7 {
		data.Insights = append(data.Insights,
			fmt.Sprintf("STRONG correlation (r=%.2f) between marketing spend and new customer acquisition", c.R),
			"  - Marketing investments are clearly driving new customer growth")
	}

	var best, worst ChannelROAS
	if len(data.Channels) > 1 {
		best, worst = data.Channels[0], data.Channels[len(data.Channels)-1]
		data.Insights = append(data.Insights,
			"Significant channel performance gaps identified:",
			fmt.Sprintf("  - Best: %s (ROAS: %.1fx)", best.Channel, best.ROAS),
			fmt.Sprintf("  - Worst: %s (ROAS: %.1fx)", worst.Channel, worst.ROAS))
		if best.ROAS > worst.ROAS*executiveGapFactor {
			moved := worst.Spend * executiveRealloShare
			data.Recommendations = append(data.Recommendations,
				fmt.Sprintf("1. IMMEDIATE: Reallocate 20-30%% of %s budget to %s", worst.Channel, best.Channel),
				fmt.Sprintf("   - Potential annual savings: ~%s", utils.Money0(moved)),
				fmt.Sprintf("   - Expected revenue increase: ~%s", utils.Money0(moved*best.ROAS)))
		}
	}

	if data.USSharePct > usConcentrationLimit {
		data.Insights = append(data.Insights, fmt.Sprintf("WARNING: Heavy US market concentration (%.0f%% of new member revenue)", data.USSharePct))
		data.Recommendations = append(data.Recommendations,
			"2. STRATEGIC: Develop international market expansion plan",
			"   - Focus on high-AOV regions (AU, CA, EU) for growth")
	}

	byCalendar := map[time.Month][]float64{}
	for _, s := range ds.Daily {
		byCalendar[s.Date.Month()] = append(byCalendar[s.Date.Month()], s.Spend)
	}
	var monthlyMeans []float64
	for m := time.January; m <= time.December; m++ {
		if spend, ok := byCalendar[m]; ok {
			monthlyMeans = append(monthlyMeans, stats.Mean(spend))
		}
	}
	data.SeasonalCV = utils.Round(stats.CoefficientOfVariation(monthlyMeans), 3)
	if data.SeasonalCV > seasonalCVLimit {
		data.Insights = append(data.Insights, fmt.Sprintf("WARNING: High seasonal variation detected in spend patterns (%.0f%% coefficient of variation)", data.SeasonalCV*100))
		data.Recommendations = append(data.Recommendations,
			"3. OPERATIONAL: Implement seasonal budget optimization",
			"   - Increase spend during peak conversion months",
			"   - Reduce spend during historically low-performance periods")
	}

	sec := result.Section("KEY INSIGHTS & EXECUTIVE RECOMMENDATIONS")
	sec.Printf("KEY INSIGHTS:")
	for i, insight := range data.Insights {
		if i == maxExecutiveInsights {
			break
		}
		sec.Printf("%s", insight)
	}
	sec.Printf("")
	sec.Printf("ACTIONABLE RECOMMENDATIONS:")
	for i, rec := range data.Recommendations {
		if i == maxExecutiveRecommended {
			break
		}
		sec.Printf("%s", rec)
	}

	bottom := result.Section("BOTTOM LINE IMPACT")
	if len(data.Channels) > 1 {
		data.ReallocationRevenue = round2(worst.Spend * executiveRealloShare * (best.ROAS - worst.ROAS))
		data.ROIImprovementPct = utils.Round(pct(utils.SafeDiv(best.ROAS, worst.ROAS)-1), 0)
		bottom.Printf("Immediate budget reallocation opportunity: %s additional revenue", utils.Money0(data.ReallocationRevenue))
		bottom.Printf("ROI improvement potential: %.0f%%", data.ROIImprovementPct)
	}
	cpo := data.KPIs.CostPerOrder
	data.WithinCACBenchmark = cpo >= cacBenchmarkLow && cpo <= cacBenchmarkHigh
	within := "OUTSIDE"
	if data.WithinCACBenchmark {
		within = "WITHIN"
	}
	bottom.Printf("Current marketing efficiency: %s cost per new customer", utils.Money0(cpo))
	bottom.Printf("Industry benchmark range: $400-800 (%s range)", within)
}
