package analyzing

import (
	"fmt"
	"sort"
	"time"

	"github.com/vfg2006/marketing-reports/internal/domain"
	"github.com/vfg2006/marketing-reports/pkg/utils"
)

const (
	WBRFile             = "wbr_data_corrected.json"
	recentWeeks         = 8
	recentMonths        = 12
	lifecycleWindowDays = 30
	cacElasticity       = 0.15
	projectionWeeks     = 4
	projectionIncrease  = 20
	projectionStep      = 0.02
	wbrAnalysisNote     = "CAC trends show seasonal patterns with Q4 efficiency gains"
)

var spendScenarios = []float64{10, 20, 30, 50, 100}

// WBRReport monta os dados do Weekly Business Review para uma semana e um mês de referência
type WBRReport struct {
	// WeekStart é a segunda-feira da semana de referência
	WeekStart time.Time
	// Month é qualquer dia do mês de referência
	Month time.Time
}

type PeriodMetrics struct {
	Period   string  `json:"period"`
	Spend    float64 `json:"spend"`
	Orders   int64   `json:"orders"`
	Bookings float64 `json:"bookings"`
	Visitors int64   `json:"visitors"`
	CAC      float64 `json:"cac"`
}

type WeeklyCAC struct {
	Week      string  `json:"week"`
	Spend     float64 `json:"spend"`
	Orders    int64   `json:"orders"`
	Bookings  float64 `json:"bookings"`
	CAC       float64 `json:"cac"`
	WoWChange float64 `json:"wow_change"`
}

type MonthlyCAC struct {
	Month     string  `json:"month"`
	Spend     float64 `json:"spend"`
	Orders    int64   `json:"orders"`
	Bookings  float64 `json:"bookings"`
	CAC       float64 `json:"cac"`
	MoMChange float64 `json:"mom_change"`
}

type RegionalOrders struct {
	Regions []string `json:"regions"`
	Orders  []int64  `json:"orders"`
}

type RegionalGrowth struct {
	Region         string  `json:"region"`
	Growth         float64 `json:"growth"`
	CurrentOrders  int64   `json:"current_orders"`
	PreviousOrders int64   `json:"previous_orders"`
}

type CACScenario struct {
	SpendIncreasePct float64 `json:"spend_increase_pct"`
	NewCAC           float64 `json:"new_cac"`
	CACIncreasePct   float64 `json:"cac_increase_pct"`
}

type WeeklyProjection struct {
	Week           int     `json:"week"`
	ProjectedSpend float64 `json:"projected_spend"`
	ProjectedCAC   float64 `json:"projected_cac"`
	CACVsCurrent   float64 `json:"cac_vs_current"`
}

type RecentSummary struct {
	CurrentWeekPeriod   string `json:"current_week_period"`
	CurrentMonthName    string `json:"current_month_name"`
	ComparisonMonthName string `json:"comparison_month_name"`
	LatestCompleteWeek  string `json:"latest_complete_week"`
	AnalysisNote        string `json:"analysis_note"`
}

type LifecycleDay struct {
	Date     string  `json:"date"`
	Orders   int64   `json:"orders"`
	Bookings float64 `json:"bookings"`
}

type UpgradesRenewals struct {
	Upgrades []LifecycleDay `json:"upgrades"`
	Renewals []LifecycleDay `json:"renewals"`
}

// CACCorrection compara o CAC calculado só com novos membros ao CAC com todos os pedidos
type CACCorrection struct {
	CurrentWeekNewOrders  int64   `json:"current_week_new_orders"`
	PreviousWeekNewOrders int64   `json:"previous_week_new_orders"`
	CurrentWeekSpend      float64 `json:"current_week_spend"`
	PreviousWeekSpend     float64 `json:"previous_week_spend"`
	CurrentWeekCAC        float64 `json:"current_week_cac"`
	PreviousWeekCAC       float64 `json:"previous_week_cac"`
	CurrentWeekAllOrders  int64   `json:"current_week_all_orders"`
	AllOrdersCAC          float64 `json:"all_orders_cac"`
	DifferencePct         float64 `json:"difference_pct"`
}

type WBRData struct {
	CurrentWeek       PeriodMetrics      `json:"current_week"`
	PreviousWeek      PeriodMetrics      `json:"previous_week"`
	CurrentMonth      PeriodMetrics      `json:"current_month"`
	PreviousMonth     PeriodMetrics      `json:"previous_month"`
	RecentWeeklyCAC   []WeeklyCAC        `json:"recent_weekly_cac"`
	MonthlyCAC        []MonthlyCAC       `json:"monthly_cac"`
	RegionalOrders    RegionalOrders     `json:"regional_orders"`
	RegionalGrowth    []RegionalGrowth   `json:"regional_growth"`
	ForecastScenarios []CACScenario      `json:"forecast_scenarios"`
	WeeklyProjection  []WeeklyProjection `json:"weekly_projection"`
	RecentSummary     RecentSummary      `json:"recent_summary"`
	UpgradesRenewals  UpgradesRenewals   `json:"upgrades_renewals"`
	CACCorrection     CACCorrection      `json:"cac_correction"`
}

func (WBRReport) Name() string       { return "wbr" }
func (WBRReport) Title() string      { return "Weekly Business Review" }
func (WBRReport) OutputFile() string { return WBRFile }
func (WBRReport) Sources() domain.Source {
	return domain.SourceDailySales | domain.SourceRegionalSales
}

func (r WBRReport) weekBounds() (start, end time.Time) {
	start = utils.StartOfWeek(r.WeekStart)
	return start, start.AddDate(0, 0, 6)
}

func (r WBRReport) monthBounds() (start, end time.Time) {
	start = utils.StartOfMonth(r.Month)
	return start, utils.EndOfMonth(start)
}

func (r WBRReport) Build(ds *domain.Dataset) (*domain.ReportResult, error) {
	if !ds.HasDaily() {
		return nil, NewReportError(ErrNoData, r.Name(), "daily sales data is empty")
	}
	if r.WeekStart.IsZero() || r.Month.IsZero() {
		return nil, NewReportError(ErrBuildReport, r.Name(), "reference week and month are required")
	}

	weekStart, weekEnd := r.weekBounds()
	prevWeekStart, prevWeekEnd := weekStart.AddDate(0, 0, -7), weekStart.AddDate(0, 0, -1)
	monthStart, monthEnd := r.monthBounds()
	prevMonthStart := monthStart.AddDate(0, -1, 0)
	prevMonthEnd := utils.EndOfMonth(prevMonthStart)

	data := &WBRData{
		CurrentWeek:   periodMetrics(weekStart.Format("01/02")+" - "+weekEnd.Format("01/02"), domain.DailyBetween(ds.Daily, weekStart, weekEnd)),
		PreviousWeek:  periodMetrics(prevWeekStart.Format("01/02")+" - "+prevWeekEnd.Format("01/02"), domain.DailyBetween(ds.Daily, prevWeekStart, prevWeekEnd)),
		CurrentMonth:  periodMetrics(monthStart.Format("January 2006"), domain.DailyBetween(ds.Daily, monthStart, monthEnd)),
		PreviousMonth: periodMetrics(prevMonthStart.Format("January 2006"), domain.DailyBetween(ds.Daily, prevMonthStart, prevMonthEnd)),
		RecentSummary: RecentSummary{
			CurrentWeekPeriod:   weekStart.Format("January 02") + " - " + weekEnd.Format("January 02, 2006"),
			CurrentMonthName:    monthStart.Format("January 2006"),
			ComparisonMonthName: prevMonthStart.Format("January 2006"),
			LatestCompleteWeek:  weekEnd.Format(time.DateOnly),
			AnalysisNote:        wbrAnalysisNote,
		},
		RegionalGrowth: []RegionalGrowth{},
		UpgradesRenewals: UpgradesRenewals{
			Upgrades: []LifecycleDay{},
			Renewals: []LifecycleDay{},
		},
	}
	data.RecentWeeklyCAC = weeklyCAC(ds.Daily)
	data.MonthlyCAC = monthlyCAC(ds.Daily)
	data.ForecastScenarios, data.WeeklyProjection = cacForecast(data.CurrentWeek.CAC, data.CurrentWeek.Spend)

	if ds.HasRegional() {
		newMembers := domain.RegionalWhere(ds.Regional, domain.RegionalSale.IsNewMember)
		data.RegionalOrders = regionalOrders(newMembers)
		data.RegionalGrowth = regionalGrowth(newMembers, monthStart, monthEnd, prevMonthStart, prevMonthEnd)

		windowEnd := weekEnd.AddDate(0, 0, 1)
		windowStart := windowEnd.AddDate(0, 0, -(lifecycleWindowDays - 1))
		data.UpgradesRenewals.Upgrades = lifecycleDays(ds.Regional, domain.MemberUpgrades, windowStart, windowEnd)
		data.UpgradesRenewals.Renewals = lifecycleDays(ds.Regional, domain.SubscriptionRenewals, windowStart, windowEnd)

		data.CACCorrection = cacCorrection(ds, weekStart, weekEnd, prevWeekStart, prevWeekEnd)
	}

	result := domain.NewReportResult(r.Name(), r.Title())
	r.print(result, data)
	result.Data = data
	return result, nil
}

func periodMetrics(period string, t domain.SalesTotals) PeriodMetrics {
	return PeriodMetrics{
		Period:   period,
		Spend:    t.Spend,
		Orders:   int64(t.Orders),
		Bookings: t.Bookings,
		Visitors: int64(t.Visitors),
		CAC:      domain.OrZero(t.CAC()),
	}
}

// changes calcula a variação percentual da série; o primeiro ponto e bases sem valor ficam em 0
func changes(series []float64) []float64 {
	out := make([]float64, len(series))
	for i := 1; i < len(series); i++ {
		out[i] = domain.OrZero(domain.PctChange(series[i-1], series[i]))
	}
	return out
}

func weeklyCAC(sales []domain.DailySale) []WeeklyCAC {
	keys, weeks := domain.DailyByWeek(sales)
	cacs := make([]float64, len(keys))
	for i, k := range keys {
		cacs[i] = domain.OrZero(weeks[k].CAC())
	}
	wow := changes(cacs)

	first := max(0, len(keys)-recentWeeks)
	out := make([]WeeklyCAC, 0, len(keys)-first)
	for i := first; i < len(keys); i++ {
		t := weeks[keys[i]]
		out = append(out, WeeklyCAC{
			Week:      keys[i],
			Spend:     t.Spend,
			Orders:    int64(t.Orders),
			Bookings:  t.Bookings,
			CAC:       cacs[i],
			WoWChange: wow[i],
		})
	}
	return out
}

func monthlyCAC(sales []domain.DailySale) []MonthlyCAC {
	keys, months := domain.DailyByMonth(sales)
	cacs := make([]float64, len(keys))
	for i, k := range keys {
		cacs[i] = domain.OrZero(months[k].CAC())
	}
	mom := changes(cacs)

	first := max(0, len(keys)-recentMonths)
	out := make([]MonthlyCAC, 0, len(keys)-first)
	for i := first; i < len(keys); i++ {
		t := months[keys[i]]
		out = append(out, MonthlyCAC{
			Month:     keys[i],
			Spend:     t.Spend,
			Orders:    int64(t.Orders),
			Bookings:  t.Bookings,
			CAC:       cacs[i],
			MoMChange: mom[i],
		})
	}
	return out
}

func regionalOrders(newMembers []domain.RegionalSale) RegionalOrders {
	regions, totals := domain.RegionalByKey(newMembers, func(s domain.RegionalSale) string { return s.Region })
	sort.SliceStable(regions, func(i, j int) bool {
		return totals[regions[i]].Orders > totals[regions[j]].Orders
	})

	out := RegionalOrders{Regions: regions, Orders: make([]int64, len(regions))}
	for i, region := range regions {
		out.Orders[i] = int64(totals[region].Orders)
	}
	return out
}

func regionalGrowth(newMembers []domain.RegionalSale, curStart, curEnd, prevStart, prevEnd time.Time) []RegionalGrowth {
	byRegion := func(start, end time.Time) map[string]domain.SalesTotals {
		_, totals := domain.RegionalByKey(
			domain.RegionalWhere(newMembers, func(s domain.RegionalSale) bool { return utils.InRange(s.Date, start, end) }),
			func(s domain.RegionalSale) string { return s.Region },
		)
		return totals
	}
	current, previous := byRegion(curStart, curEnd), byRegion(prevStart, prevEnd)

	regions := map[string]struct{}{}
	for region := range current {
		regions[region] = struct{}{}
	}
	for region := range previous {
		regions[region] = struct{}{}
	}

	out := make([]RegionalGrowth, 0, len(regions))
	for _, region := range domain.SortedKeys(regions) {
		cur, prev := current[region].Orders, previous[region].Orders
		var growth float64
		switch {
		case prev > 0:
			growth = (cur - prev) / prev * 100
		case cur > 0:
			growth = 100
		}
		out = append(out, RegionalGrowth{
			Region:         region,
			Growth:         round2(growth),
			CurrentOrders:  int64(cur),
			PreviousOrders: int64(prev),
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Growth > out[j].Growth })
	return out
}

func lifecycleDays(sales []domain.RegionalSale, customerType domain.CustomerType, start, end time.Time) []LifecycleDay {
	days, totals := domain.RegionalByKey(
		domain.RegionalWhere(sales, func(s domain.RegionalSale) bool {
			return s.CustomerType == customerType && utils.InRange(s.Date, start, end)
		}),
		func(s domain.RegionalSale) string { return s.Date.Format(time.DateOnly) },
	)

	out := make([]LifecycleDay, 0, len(days))
	for _, day := range days {
		out = append(out, LifecycleDay{Date: day, Orders: int64(totals[day].Orders), Bookings: totals[day].Bookings})
	}
	return out
}

// cacForecast projeta o CAC assumindo que cada 1% a mais de investimento encarece o CAC em 0,15%
func cacForecast(currentCAC, currentSpend float64) ([]CACScenario, []WeeklyProjection) {
	scenarios := make([]CACScenario, 0, len(spendScenarios))
	for _, increase := range spendScenarios {
		cacIncrease := increase * cacElasticity
		scenarios = append(scenarios, CACScenario{
			SpendIncreasePct: increase,
			NewCAC:           round2(currentCAC * (1 + cacIncrease/100)),
			CACIncreasePct:   round2(cacIncrease),
		})
	}

	projection := make([]WeeklyProjection, 0, projectionWeeks)
	for week := 1; week <= projectionWeeks; week++ {
		elasticity := cacElasticity + float64(week)*projectionStep
		projected := currentCAC * (1 + projectionIncrease*elasticity/100)
		projection = append(projection, WeeklyProjection{
			Week:           week,
			ProjectedSpend: utils.Round(currentSpend*(1+projectionIncrease/100.0), 0),
			ProjectedCAC:   round2(projected),
			CACVsCurrent:   round2(projectionIncrease * elasticity),
		})
	}
	return scenarios, projection
}

func cacCorrection(ds *domain.Dataset, weekStart, weekEnd, prevStart, prevEnd time.Time) CACCorrection {
	ordersBetween := func(start, end time.Time, keep func(domain.RegionalSale) bool) int64 {
		var total int64
		for _, s := range ds.Regional {
			if keep(s) && utils.InRange(s.Date, start, end) {
				total += s.Orders
			}
		}
		return total
	}
	all := func(domain.RegionalSale) bool { return true }

	c := CACCorrection{
		CurrentWeekNewOrders:  ordersBetween(weekStart, weekEnd, domain.RegionalSale.IsNewMember),
		PreviousWeekNewOrders: ordersBetween(prevStart, prevEnd, domain.RegionalSale.IsNewMember),
		CurrentWeekSpend:      domain.DailyBetween(ds.Daily, weekStart, weekEnd).Spend,
		PreviousWeekSpend:     domain.DailyBetween(ds.Daily, prevStart, prevEnd).Spend,
		CurrentWeekAllOrders:  ordersBetween(weekStart, weekEnd, all),
	}
	c.CurrentWeekCAC = round2(domain.OrZero(domain.CAC(c.CurrentWeekSpend, float64(c.CurrentWeekNewOrders))))
	c.PreviousWeekCAC = round2(domain.OrZero(domain.CAC(c.PreviousWeekSpend, float64(c.PreviousWeekNewOrders))))
	c.AllOrdersCAC = round2(domain.OrZero(domain.CAC(c.CurrentWeekSpend, float64(c.CurrentWeekAllOrders))))
	c.DifferencePct = utils.Round(domain.OrZero(domain.PctChange(c.AllOrdersCAC, c.CurrentWeekCAC)), 1)
	return c
}

func (WBRReport) print(result *domain.ReportResult, data *WBRData) {
	periods := result.Section("PERIOD SUMMARY")
	table := periods.Table("", "Period", "Spend", "Orders", "Bookings", "Visitors", "CAC")
	for _, p := range []PeriodMetrics{data.CurrentWeek, data.PreviousWeek, data.CurrentMonth, data.PreviousMonth} {
		table.Add(p.Period, utils.Money0(p.Spend), utils.Int(float64(p.Orders)), utils.Money0(p.Bookings),
			utils.Int(float64(p.Visitors)), utils.Money(p.CAC))
	}

	weekly := result.Section("WEEKLY CAC TREND")
	wt := weekly.Table("", "Week", "Spend", "Orders", "CAC", "WoW %")
	for _, w := range data.RecentWeeklyCAC {
		wt.Add(w.Week, utils.Money0(w.Spend), utils.Int(float64(w.Orders)), utils.Money(w.CAC), fmt.Sprintf("%.1f%%", w.WoWChange))
	}

	monthly := result.Section("MONTHLY CAC TREND")
	mt := monthly.Table("", "Month", "Spend", "Orders", "CAC", "MoM %")
	for _, m := range data.MonthlyCAC {
		mt.Add(m.Month, utils.Money0(m.Spend), utils.Int(float64(m.Orders)), utils.Money(m.CAC), fmt.Sprintf("%.1f%%", m.MoMChange))
	}

	if len(data.RegionalGrowth) > 0 {
		growth := result.Section("REGIONAL GROWTH (NEW MEMBERS)")
		gt := growth.Table("", "Region", data.RecentSummary.CurrentMonthName, data.RecentSummary.ComparisonMonthName, "Growth %")
		for _, g := range data.RegionalGrowth {
			gt.Add(g.Region, utils.Int(float64(g.CurrentOrders)), utils.Int(float64(g.PreviousOrders)), fmt.Sprintf("%.2f", g.Growth))
		}
	}

	forecast := result.Section("CAC FORECAST")
	for _, s := range data.ForecastScenarios {
		forecast.Printf("+%.0f%% spend: CAC %s (+%.2f%%)", s.SpendIncreasePct, utils.Money(s.NewCAC), s.CACIncreasePct)
	}
	for _, p := range data.WeeklyProjection {
		forecast.Printf("Week %d: spend %s, CAC %s (%+.2f%% vs current)", p.Week, utils.Money0(p.ProjectedSpend), utils.Money(p.ProjectedCAC), p.CACVsCurrent)
	}

	c := data.CACCorrection
	if c.CurrentWeekAllOrders > 0 {
		correction := result.Section("NEW MEMBER CAC CORRECTION")
		correction.Printf("Current week CAC: %s (%s / %d new customers)", utils.Money(c.CurrentWeekCAC), utils.Money0(c.CurrentWeekSpend), c.CurrentWeekNewOrders)
		correction.Printf("Previous week CAC: %s (%s / %d new customers)", utils.Money(c.PreviousWeekCAC), utils.Money0(c.PreviousWeekSpend), c.PreviousWeekNewOrders)
		correction.Printf("All-orders CAC: %s (%d total orders)", utils.Money(c.AllOrdersCAC), c.CurrentWeekAllOrders)
		correction.Printf("Difference: %.1f%%", c.DifferencePct)
	}
}
