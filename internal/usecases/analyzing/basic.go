package analyzing

import (
	"sort"

	"github.com/vfg2006/marketing-reports/internal/domain"
	"github.com/vfg2006/marketing-reports/pkg/utils"
)

// BasicComparisonReport compara investimento mensal de marketing com receita de novos membros,
// sem inferir causalidade
type BasicComparisonReport struct{}

type DailyOverview struct {
	Days             int     `json:"days"`
	FirstDate        string  `json:"first_date"`
	LastDate         string  `json:"last_date"`
	AvgDailySpend    float64 `json:"avg_daily_spend"`
	AvgDailyOrders   float64 `json:"avg_daily_orders"`
	AvgDailyBookings float64 `json:"avg_daily_bookings"`
	AvgDailyVisitors float64 `json:"avg_daily_visitors"`
}

type MonthValue struct {
	Month string  `json:"month"`
	Value float64 `json:"value"`
}

type ChannelValue struct {
	Channel string  `json:"channel"`
	Value   float64 `json:"value"`
}

type MonthComparison struct {
	Month             string  `json:"month"`
	MarketingSpend    float64 `json:"marketing_spend"`
	NewMemberBookings float64 `json:"new_member_bookings"`
	Ratio             float64 `json:"ratio"`
}

type BasicComparisonData struct {
	Daily             DailyOverview     `json:"daily_overview"`
	NewMemberBookings []MonthValue      `json:"new_member_bookings"`
	MarketingSpend    []MonthValue      `json:"marketing_spend"`
	ChannelSpend      []ChannelValue    `json:"channel_spend"`
	Comparison        []MonthComparison `json:"comparison"`
}

func (BasicComparisonReport) Name() string  { return "basic" }
func (BasicComparisonReport) Title() string { return "Simple Marketing Analysis" }
func (BasicComparisonReport) Sources() domain.Source {
	return domain.SourceMarketing | domain.SourceDailySales | domain.SourceRegionalSales
}

func (r BasicComparisonReport) Build(ds *domain.Dataset) (*domain.ReportResult, error) {
	if !ds.HasDaily() || !ds.HasRegional() || !ds.HasMarketing() {
		return nil, NewReportError(ErrNoData, r.Name(), "requires marketing, daily and regional sales")
	}

	result := domain.NewReportResult(r.Name(), r.Title())
	data := &BasicComparisonData{}

	var total domain.SalesTotals
	for _, s := range ds.Daily {
		total.AddDaily(s)
	}
	first, last := ds.Daily[0].Date, ds.Daily[0].Date
	for _, s := range ds.Daily {
		if s.Date.Before(first) {
			first = s.Date
		}
		if s.Date.After(last) {
			last = s.Date
		}
	}
	days := float64(total.Days)
	data.Daily = DailyOverview{
		Days:             total.Days,
		FirstDate:        first.Format("2006-01-02"),
		LastDate:         last.Format("2006-01-02"),
		AvgDailySpend:    round2(total.Spend / days),
		AvgDailyOrders:   round2(total.Orders / days),
		AvgDailyBookings: round2(total.Bookings / days),
		AvgDailyVisitors: round2(total.Visitors / days),
	}

	sec := result.Section("1. DAILY SALES DATA OVERVIEW")
	sec.Printf("Total days analyzed: %d (%s to %s)", data.Daily.Days, data.Daily.FirstDate, data.Daily.LastDate)
	sec.Printf("Average daily spend: %s", utils.Money0(data.Daily.AvgDailySpend))
	sec.Printf("Average daily orders: %.0f", data.Daily.AvgDailyOrders)
	sec.Printf("Average daily bookings: %s", utils.Money0(data.Daily.AvgDailyBookings))
	sec.Printf("Average daily visitors: %s", utils.Int(data.Daily.AvgDailyVisitors))

	newMembers := domain.RegionalWhere(ds.Regional, domain.RegionalSale.IsNewMember)
	months, nmByMonth := domain.RegionalByKey(newMembers, func(s domain.RegionalSale) string { return utils.MonthKey(s.Date) })
	shown := months
	if len(shown) > 12 {
		shown = shown[:12]
	}

	nm := result.Section("2. NEW MEMBER BOOKINGS BY MONTH")
	nmTable := nm.Table("New member bookings", "Month", "New Member Bookings")
	for _, m := range shown {
		data.NewMemberBookings = append(data.NewMemberBookings, MonthValue{m, round2(nmByMonth[m].Bookings)})
		nmTable.Add(m, utils.Money0(nmByMonth[m].Bookings))
	}

	spendByMonth := map[string]float64{}
	spendByChannel := map[domain.Channel]float64{}
	for _, rec := range withSpend(ds.Marketing) {
		spendByMonth[rec.MonthKey()] += rec.Spend
		spendByChannel[rec.Channel] += rec.Spend
	}

	ms := result.Section("3. MARKETING SPEND BY MONTH")
	msTable := ms.Table("Marketing spend", "Month", "Marketing Spend")
	for _, m := range shown {
		data.MarketingSpend = append(data.MarketingSpend, MonthValue{m, round2(spendByMonth[m])})
		msTable.Add(m, utils.Money0(spendByMonth[m]))
	}

	for ch, v := range spendByChannel {
		data.ChannelSpend = append(data.ChannelSpend, ChannelValue{ch.String(), round2(v)})
	}
	sort.Slice(data.ChannelSpend, func(i, j int) bool { return data.ChannelSpend[i].Value > data.ChannelSpend[j].Value })

	cs := result.Section("4. CHANNEL SPEND TOTALS")
	for _, c := range data.ChannelSpend {
		cs.Printf("%s: %s", c.Channel, utils.Money0(c.Value))
	}

	cmp := result.Section("5. BASIC COMPARISON (Selected Months)")
	cmpTable := cmp.Table("Marketing vs new members", "Month", "Marketing", "New Members", "Ratio")
	firstSix := months
	if len(firstSix) > 6 {
		firstSix = firstSix[:6]
	}
	for _, m := range firstSix {
		c := MonthComparison{
			Month:             m,
			MarketingSpend:    round2(spendByMonth[m]),
			NewMemberBookings: round2(nmByMonth[m].Bookings),
			Ratio:             round2(utils.SafeDiv(nmByMonth[m].Bookings, spendByMonth[m])),
		}
		data.Comparison = append(data.Comparison, c)
		cmpTable.Add(m, utils.Money0(c.MarketingSpend), utils.Money0(c.NewMemberBookings), utils.Ratio(c.Ratio))
	}

	obs := result.Section("CONSERVATIVE OBSERVATIONS")
	obs.Printf("• Marketing spend varies significantly by month")
	obs.Printf("• New member bookings also vary by month")
	obs.Printf("• Would need proper statistical analysis to determine correlation")
	if len(data.ChannelSpend) > 0 {
		obs.Printf("• %s represents largest marketing investment", data.ChannelSpend[0].Channel)
	}

	limits := result.Section("WHAT WE CANNOT CONCLUDE")
	limits.Printf("• Cannot prove causation without controlled testing")
	limits.Printf("• Attribution between channels unclear")
	limits.Printf("• External factors (economy, competition) not controlled")
	limits.Printf("• Sample size may be insufficient for robust conclusions")

	result.Data = data
	return result, nil
}
