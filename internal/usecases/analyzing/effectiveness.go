package analyzing

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/vfg2006/marketing-reports/internal/domain"
	"github.com/vfg2006/marketing-reports/internal/stats"
	"github.com/vfg2006/marketing-reports/pkg/utils"
)

const (
	wasteSpendQuantile       = 0.8
	wasteAcquisitionQuantile = 0.2
	inefficientDayQuantile   = 0.9
	seasonalVariationLimit   = 0.3
	robustMonths             = 12
	shortPeriodMonths        = 6
	roasRangeLimit           = 2
	inefficientDaysLimit     = 20
	regionalMonthlySample    = 10
	wasteDaysSample          = 5

	spendBookingsCorrelation      = "Marketing Spend vs New Member Bookings"
	dailySpendBookingsCorrelation = "Daily Spend vs New Member Bookings"
)

// EffectivenessReport cruza investimento diário e mensal com a aquisição de novos membros
type EffectivenessReport struct{}

type RegionMonth struct {
	Month    string  `json:"month"`
	Region   string  `json:"region"`
	Bookings float64 `json:"bookings"`
	Orders   float64 `json:"orders"`
	Units    float64 `json:"units"`
}

type DailyAcquisition struct {
	Date              string  `json:"date"`
	Spend             float64 `json:"spend"`
	NewMemberBookings float64 `json:"new_member_bookings"`
	NewMemberOrders   float64 `json:"new_member_orders"`
	SpendPerNewOrder  float64 `json:"spend_per_new_order"`
}

type ChannelSpend struct {
	Channel      string  `json:"channel"`
	Spend        float64 `json:"spend"`
	Visitors     float64 `json:"visitors"`
	Orders       float64 `json:"orders"`
	Revenue      float64 `json:"revenue"`
	CostPerOrder float64 `json:"cost_per_order"`
	ROAS         float64 `json:"roas"`
}

type EffectivenessData struct {
	Monthly             []MonthlyMerge      `json:"monthly"`
	NewMembersByRegion  []RegionMonth       `json:"new_members_by_region"`
	Channels            []ChannelSpend      `json:"channels"`
	MonthlyCorrelations []NamedCorrelation  `json:"monthly_correlations"`
	DailyCorrelations   []NamedCorrelation  `json:"daily_correlations"`
	WasteDays           []DailyAcquisition  `json:"waste_days"`
	HighSpendThreshold  float64             `json:"high_spend_threshold"`
	LowAcquisitionLimit float64             `json:"low_acquisition_threshold"`
	Regions             []RegionPerformance `json:"regions"`
	MonthlyDataPoints   int                 `json:"monthly_data_points"`
	DailyDataPoints     int                 `json:"daily_data_points"`
	SeasonalVariation   float64             `json:"seasonal_variation"`
	ROASRange           float64             `json:"roas_range"`
	InefficientDaysPct  float64             `json:"inefficient_days_pct"`
	Findings            []string            `json:"findings"`
	Recommendations     []string            `json:"recommendations"`
}

func (EffectivenessReport) Name() string  { return "effectiveness" }
func (EffectivenessReport) Title() string { return "Marketing Effectiveness Analysis" }
func (EffectivenessReport) Sources() domain.Source {
	return domain.SourceMarketing | domain.SourceDailySales | domain.SourceRegionalSales
}

func (r EffectivenessReport) Build(ds *domain.Dataset) (*domain.ReportResult, error) {
	if !ds.HasDaily() || !ds.HasRegional() || !ds.HasMarketing() {
		return nil, NewReportError(ErrNoData, r.Name(), "requires marketing, daily and regional sales")
	}

	result := domain.NewReportResult(r.Name(), r.Title())
	data := &EffectivenessData{}
	newMembers := domain.RegionalWhere(ds.Regional, domain.RegionalSale.IsNewMember)

	r.monthly(result, ds, newMembers, data)
	days := r.daily(result, ds, newMembers, data)
	r.regional(result, newMembers, data)
	r.critical(result, ds, days, data)

	result.Data = data
	return result, nil
}

func (EffectivenessReport) monthly(result *domain.ReportResult, ds *domain.Dataset, newMembers []domain.RegionalSale, data *EffectivenessData) {
	keys, byRegion := domain.RegionalByKey(newMembers, func(s domain.RegionalSale) string {
		return utils.MonthKey(s.Date) + "|" + s.Region
	})
	for _, key := range keys {
		t := byRegion[key]
		month, region := splitKey(key)
		data.NewMembersByRegion = append(data.NewMembersByRegion, RegionMonth{
			Month:    month,
			Region:   region,
			Bookings: round2(t.Bookings),
			Orders:   t.Orders,
			Units:    t.Units,
		})
	}

	totals := domain.GroupByChannel(ds.Marketing)
	for _, ch := range ds.Channels() {
		t := totals[ch]
		data.Channels = append(data.Channels, ChannelSpend{
			Channel:      ch.String(),
			Spend:        round2(t.Spend),
			Visitors:     t.Visitors,
			Orders:       t.Orders,
			Revenue:      round2(t.Revenue),
			CostPerOrder: round2(domain.OrZero(t.CPA())),
			ROAS:         round2(domain.OrZero(t.ROAS())),
		})
	}
	sort.SliceStable(data.Channels, func(i, j int) bool { return data.Channels[i].Spend > data.Channels[j].Spend })

	spend := result.Section("MARKETING SPEND ANALYSIS")
	table := spend.Table("Channel effectiveness analysis", "Channel", "Spend", "Visitors", "Orders", "Revenue", "Cost/Order", "ROAS")
	for _, c := range data.Channels {
		table.Add(c.Channel, utils.Money0(c.Spend), utils.Int(c.Visitors), utils.Int(c.Orders), utils.Money0(c.Revenue),
			utils.Money0(c.CostPerOrder), fmt.Sprintf("%.2f", c.ROAS))
	}

	data.Monthly = monthlyMerge(ds, newMembers)
	data.MonthlyDataPoints = len(data.Monthly)
	trend := result.Section("TREND COMPARISON ANALYSIS")
	merged := trend.Table("Combined monthly data", "Month", "Daily Spend", "Marketing Spend", "New Member Bookings", "New Member Orders")
	var mSpend, dSpend, visitors, bookings, orders []float64
	for _, m := range data.Monthly {
		merged.Add(m.Month, utils.Money0(m.DailySpend), utils.Money0(m.MarketingSpend), utils.Money0(m.NewMemberBookings), utils.Int(m.NewMemberOrders))
		mSpend = append(mSpend, m.MarketingSpend)
		dSpend = append(dSpend, m.DailySpend)
		visitors = append(visitors, m.MarketingVisitors)
		bookings = append(bookings, m.NewMemberBookings)
		orders = append(orders, m.NewMemberOrders)
	}

	if data.MonthlyDataPoints < stats.MinMergedPoints {
		trend.Printf("WARNING: Insufficient data points for meaningful correlation analysis")
		return
	}
	data.MonthlyCorrelations = namedCorrelations(trend, []correlationInput{
		{spendBookingsCorrelation, mSpend, bookings},
		{"Daily Spend vs New Member Orders", dSpend, orders},
		{"Marketing Visitors vs New Member Orders", visitors, orders},
	})
}

type correlationInput struct {
	name string
	x, y []float64
}

func namedCorrelations(sec *domain.Section, inputs []correlationInput) []NamedCorrelation {
	var out []NamedCorrelation
	for _, in := range inputs {
		c, ok := stats.PearsonMin(in.x, in.y, stats.MinMergedPoints)
		if !ok {
			continue
		}
		out = append(out, NamedCorrelation{Name: in.name, R: utils.Round(c.R, 3), P: utils.Round(c.P, 3), N: c.N, Strength: stats.Strength(c)})
		sec.Printf("%s: r=%.3f, p=%.3f", in.name, c.R, c.P)
	}
	return out
}

// correlationNamed busca a correlação pelo nome; pares sem variância não entram na lista
func correlationNamed(cs []NamedCorrelation, name string) (NamedCorrelation, bool) {
	for _, c := range cs {
		if c.Name == name {
			return c, true
		}
	}
	return NamedCorrelation{}, false
}

func (EffectivenessReport) daily(result *domain.ReportResult, ds *domain.Dataset, newMembers []domain.RegionalSale, data *EffectivenessData) []DailyAcquisition {
	_, byDate := domain.RegionalByKey(newMembers, func(s domain.RegionalSale) string { return s.Date.Format(time.DateOnly) })

	days := make([]DailyAcquisition, 0, len(ds.Daily))
	var spend, nmBookings, nmOrders []float64
	for _, s := range ds.Daily {
		nm := byDate[s.Date.Format(time.DateOnly)]
		days = append(days, DailyAcquisition{
			Date:              s.Date.Format(time.DateOnly),
			Spend:             s.Spend,
			NewMemberBookings: nm.Bookings,
			NewMemberOrders:   nm.Orders,
			SpendPerNewOrder:  round2(s.Spend / (nm.Orders + 1)),
		})
		spend = append(spend, s.Spend)
		nmBookings = append(nmBookings, nm.Bookings)
		nmOrders = append(nmOrders, nm.Orders)
	}
	data.DailyDataPoints = len(days)

	sec := result.Section("DAILY PATTERN ANALYSIS")
	data.DailyCorrelations = namedCorrelations(sec, []correlationInput{
		{dailySpendBookingsCorrelation, spend, nmBookings},
		{"Daily Spend vs New Member Orders", spend, nmOrders},
	})

	highSpend := stats.Quantile(spend, wasteSpendQuantile)
	lowAcquisition := stats.Quantile(nmOrders, wasteAcquisitionQuantile)
	data.HighSpendThreshold = round2(highSpend)
	data.LowAcquisitionLimit = round2(lowAcquisition)
	for _, d := range days {
		if d.Spend >= highSpend && d.NewMemberOrders <= lowAcquisition {
			data.WasteDays = append(data.WasteDays, d)
		}
	}

	sec.Printf("Potential waste days (high spend, low new customer acquisition): %d days", len(data.WasteDays))
	if len(data.WasteDays) > 0 {
		sample := sec.Table("Sample waste days", "Date", "Daily Spend", "New Member Orders", "Spend per New Order")
		for i, d := range data.WasteDays {
			if i == wasteDaysSample {
				break
			}
			sample.Add(d.Date, utils.Money0(d.Spend), utils.Int(d.NewMemberOrders), utils.Money0(d.SpendPerNewOrder))
		}
	}
	return days
}

func (EffectivenessReport) regional(result *domain.ReportResult, newMembers []domain.RegionalSale, data *EffectivenessData) {
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
	}
	sort.SliceStable(data.Regions, func(i, j int) bool { return data.Regions[i].Bookings > data.Regions[j].Bookings })

	sec := result.Section("REGIONAL PATTERN ANALYSIS")
	table := sec.Table("Regional new member performance", "Region", "Bookings", "Orders", "Avg Order Value")
	for _, rp := range data.Regions {
		table.Add(rp.Region, utils.Money0(rp.Bookings), utils.Int(rp.Orders), utils.Money0(rp.AOV))
	}
	sample := sec.Table("Regional monthly trends (sample)", "Month", "Region", "Bookings", "Orders")
	for i, rm := range data.NewMembersByRegion {
		if i == regionalMonthlySample {
			break
		}
		sample.Add(rm.Month, rm.Region, utils.Money0(rm.Bookings), utils.Int(rm.Orders))
	}
}

func (EffectivenessReport) critical(result *domain.ReportResult, ds *domain.Dataset, days []DailyAcquisition, data *EffectivenessData) {
	sec := result.Section("CRITICAL ANALYSIS - EXECUTIVE SUMMARY")
	sec.Printf("Data availability:")
	sec.Printf("- Monthly data points: %d", data.MonthlyDataPoints)
	sec.Printf("- Daily data points: %d", data.DailyDataPoints)
	if data.MonthlyDataPoints < robustMonths {
		sec.Printf("WARNING: Only %d months of data available. Results may not be statistically robust.", data.MonthlyDataPoints)
	}

	byCalendar := map[time.Month][]float64{}
	for _, s := range ds.Daily {
		byCalendar[s.Date.Month()] = append(byCalendar[s.Date.Month()], s.Spend)
	}
	var means []float64
	for m := time.January; m <= time.December; m++ {
		if spend, ok := byCalendar[m]; ok {
			means = append(means, stats.Mean(spend))
		}
	}
	_, maxMean := stats.Max(means)
	_, minMean := stats.Min(means)
	data.SeasonalVariation = utils.Round(utils.SafeDiv(maxMean-minMean, stats.Mean(means)), 3)
	sec.Printf("Seasonal variation in daily spend: %.1f%%", pct(data.SeasonalVariation))
	if data.SeasonalVariation > seasonalVariationLimit {
		sec.Printf("WARNING: High seasonal variation detected. This may confound marketing effectiveness analysis.")
	}

	var spend, orders float64
	var withOrders []ChannelSpend
	for _, c := range data.Channels {
		spend += c.Spend
		orders += c.Orders
		if c.Orders > 0 {
			withOrders = append(withOrders, c)
		}
	}
	sec.Printf("Marketing Channel Efficiency:")
	sec.Printf("- Total marketing spend: %s", utils.Money0(spend))
	sec.Printf("- Total orders from marketing: %s", utils.Int(orders))
	sec.Printf("- Average cost per order: %s", utils.Money0(utils.SafeDiv(spend, orders)))

	var best, worst ChannelSpend
	if len(withOrders) > 0 {
		best, worst = withOrders[0], withOrders[0]
		for _, c := range withOrders {
			if c.ROAS > best.ROAS {
				best = c
			}
			if c.ROAS < worst.ROAS {
				worst = c
			}
		}
		sec.Printf("- Best ROAS channel: %s (ROAS: %.1fx)", best.Channel, best.ROAS)
		sec.Printf("- Worst ROAS channel: %s (ROAS: %.1fx)", worst.Channel, worst.ROAS)
	}

	if c, ok := correlationNamed(data.MonthlyCorrelations, spendBookingsCorrelation); ok {
		label := "WEAK/NONE"
		switch {
		case math.Abs(c.R) > 0.7 && c.P < 0.05:
			label = "STRONG"
		case math.Abs(c.R) > 0.3 && c.P < 0.10:
			label = "MODERATE"
		}
		data.Findings = append(data.Findings, fmt.Sprintf("[%s] correlation between marketing spend and new customer acquisition (r=%.3f, p=%.3f)", label, c.R, c.P))
	}
	if c, ok := correlationNamed(data.DailyCorrelations, dailySpendBookingsCorrelation); ok {
		if math.Abs(c.R) > 0.3 && c.P < 0.05 {
			data.Findings = append(data.Findings, fmt.Sprintf("[YES] Daily spend shows meaningful correlation with new customer acquisition (r=%.3f)", c.R))
		} else {
			data.Findings = append(data.Findings, fmt.Sprintf("[NO] Daily spend shows weak correlation with new customer acquisition (r=%.3f)", c.R))
		}
	}
	if len(withOrders) > 1 {
		data.ROASRange = round2(best.ROAS - worst.ROAS)
		if data.ROASRange > roasRangeLimit {
			data.Findings = append(data.Findings,
				fmt.Sprintf("[SIGNIFICANT] channel performance differences detected (ROAS range: %.1fx)", data.ROASRange),
				"  -> Opportunity to reallocate budget from underperforming to high-performing channels")
		} else {
			data.Findings = append(data.Findings, fmt.Sprintf("[LIMITED] channel performance differences (ROAS range: %.1fx)", data.ROASRange))
		}
	}

	perOrder := make([]float64, len(days))
	for i, d := range days {
		perOrder[i] = d.SpendPerNewOrder
	}
	cut := stats.Quantile(perOrder, inefficientDayQuantile)
	var inefficient int
	for _, v := range perOrder {
		if v > cut {
			inefficient++
		}
	}
	data.InefficientDaysPct = utils.Round(pct(utils.SafeDiv(float64(inefficient), float64(len(days)))), 1)
	data.Findings = append(data.Findings, fmt.Sprintf("WASTE: %.1f%% of days show potentially inefficient spend patterns", data.InefficientDaysPct))

	sec.Printf("")
	sec.Printf("KEY FINDINGS:")
	for _, f := range data.Findings {
		sec.Printf("%s", f)
	}

	if data.MonthlyDataPoints < shortPeriodMonths {
		data.Recommendations = append(data.Recommendations,
			"EXTEND ANALYSIS PERIOD: Current data period is too short for robust conclusions. Collect 12+ months of data for reliable insights.")
	}
	if len(withOrders) > 1 && best.ROAS > worst.ROAS*2 {
		data.Recommendations = append(data.Recommendations, fmt.Sprintf(
			"BUDGET REALLOCATION: Shift budget from %s (ROAS: %.1fx) to %s (ROAS: %.1fx)", worst.Channel, worst.ROAS, best.Channel, best.ROAS))
	}
	if data.InefficientDaysPct > inefficientDaysLimit {
		data.Recommendations = append(data.Recommendations, fmt.Sprintf(
			"OPTIMIZE SPEND TIMING: %.1f%% of days show inefficient patterns. Analyze day-of-week and seasonal effects.", data.InefficientDaysPct))
	}
	data.Recommendations = append(data.Recommendations,
		"IMPLEMENT ATTRIBUTION MODELING: Current analysis uses last-click attribution. Consider view-through and multi-touch attribution for complete picture.")

	rec := result.Section("RECOMMENDATIONS")
	for i, r := range data.Recommendations {
		rec.Printf("%d. %s", i+1, r)
	}
}

func splitKey(key string) (string, string) {
	month, region, _ := strings.Cut(key, "|")
	return month, region
}
