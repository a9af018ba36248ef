package analyzing

import (
	"fmt"
	"math"

	"github.com/vfg2006/marketing-reports/internal/domain"
	"github.com/vfg2006/marketing-reports/internal/stats"
	"github.com/vfg2006/marketing-reports/pkg/utils"
)

const (
	maxAttributionLag      = 3
	fallbackAOV            = 4250
	emailCaptureMultiplier = 2
	directOrdersRetention  = 0.5
	organicAnomalyExamples = 5
	insightCorrelation     = 0.3
)

// AttributionReport mede a relação entre os canais de awareness e os canais de conversão
type AttributionReport struct{}

var (
	awarenessChannels  = []domain.Channel{domain.YouTubeAds, domain.FacebookAds}
	conversionChannels = []domain.Channel{domain.GoogleAds, domain.OrganicDirect}
	pivotChannels      = []domain.Channel{domain.YouTubeAds, domain.FacebookAds, domain.GoogleAds, domain.OrganicDirect}
	attributionMetrics = []string{"Visitors", "Orders", "Revenue"}
)

// monthPivot guarda, para cada mês, a primeira linha de cada canal (zeros quando o canal não aparece)
type monthPivot struct {
	months []string
	values map[domain.Channel]map[string][]float64
}

func newMonthPivot(records []domain.MarketingRecord) *monthPivot {
	months, _ := domain.GroupByMonth(records)
	first := map[string]map[domain.Channel]domain.MarketingRecord{}
	for _, rec := range records {
		key := rec.MonthKey()
		if first[key] == nil {
			first[key] = map[domain.Channel]domain.MarketingRecord{}
		}
		if _, seen := first[key][rec.Channel]; !seen {
			first[key][rec.Channel] = rec
		}
	}

	p := &monthPivot{months: months, values: map[domain.Channel]map[string][]float64{}}
	for _, ch := range pivotChannels {
		series := map[string][]float64{}
		for _, month := range months {
			rec := first[month][ch]
			series["Spend"] = append(series["Spend"], rec.Spend)
			series["Visitors"] = append(series["Visitors"], float64(rec.Visitors))
			series["Orders"] = append(series["Orders"], float64(rec.Orders))
			series["Revenue"] = append(series["Revenue"], rec.Revenue)
			series["EmailCaptures"] = append(series["EmailCaptures"], float64(rec.EmailCaptures))
		}
		p.values[ch] = series
	}
	return p
}

func (p *monthPivot) series(ch domain.Channel, metric string) []float64 {
	return p.values[ch][metric]
}

// lagged alinha o investimento do mês t com a métrica do mês t+lag, ignorando meses sem investimento
func lagged(spend, metric []float64, lag int) ([]float64, []float64) {
	var x, y []float64
	for i := range spend {
		if spend[i] == 0 || i+lag >= len(metric) {
			continue
		}
		x = append(x, spend[i])
		y = append(y, metric[i+lag])
	}
	return x, y
}

type AttributionCorrelation struct {
	Awareness  string  `json:"awareness"`
	Conversion string  `json:"conversion"`
	Metric     string  `json:"metric"`
	Lag        int     `json:"lag"`
	R          float64 `json:"r"`
	P          float64 `json:"p_value"`
	N          int     `json:"n"`
	Stars      string  `json:"significance"`
}

// Key identifica o par no mapa de significância, ex. "YouTube Ads_spend_vs_Google Ads_Orders_lag1"
func (c AttributionCorrelation) Key() string {
	key := fmt.Sprintf("%s_spend_vs_%s_%s", c.Awareness, c.Conversion, c.Metric)
	if c.Lag > 0 {
		key += fmt.Sprintf("_lag%d", c.Lag)
	}
	return key
}

type ChannelQuality struct {
	Channel              string   `json:"channel"`
	Records              int      `json:"records"`
	AnomalyCount         int      `json:"anomaly_count"`
	AnomalyRatePct       float64  `json:"anomaly_rate_pct"`
	OrdersVsCarts        *float64 `json:"orders_vs_carts_ratio"`
	VisitorToCartPct     float64  `json:"visitor_to_cart_rate_pct"`
	CartToOrderPct       *float64 `json:"cart_to_order_rate_pct"`
	OverallConversionPct float64  `json:"overall_conversion_rate_pct"`
}

type CartAnomaly struct {
	Month  string `json:"month"`
	Carts  int64  `json:"carts"`
	Orders int64  `json:"orders"`
}

type EmailStrategy struct {
	Spend                float64 `json:"spend"`
	Visitors             float64 `json:"visitors"`
	DirectOrders         float64 `json:"direct_orders"`
	DirectRevenue        float64 `json:"direct_revenue"`
	EmailCaptures        float64 `json:"email_captures"`
	EmailOrders30        float64 `json:"email_orders_30d"`
	EmailOrders60        float64 `json:"email_orders_60d"`
	EmailCaptureRatePct  float64 `json:"email_capture_rate_pct"`
	DirectConversionPct  float64 `json:"direct_conversion_rate_pct"`
	Email30ConversionPct float64 `json:"email_30d_conversion_pct"`
	Email60ConversionPct float64 `json:"email_60d_conversion_pct"`
	AOV                  float64 `json:"aov"`
	DirectROAS           float64 `json:"direct_roas"`
	CurrentCPA           float64 `json:"current_cpa"`
	CurrentRevenue       float64 `json:"current_total_revenue"`
	CurrentBlendedROAS   float64 `json:"current_blended_roas"`
	PotentialEmails      float64 `json:"potential_emails"`
	PotentialEmailOrders float64 `json:"potential_email_orders_60d"`
	AdjustedDirectOrders float64 `json:"adjusted_direct_orders"`
	ProjectedRevenue     float64 `json:"projected_revenue"`
	ProjectedROAS        float64 `json:"projected_roas"`
	RevenueDifference    float64 `json:"revenue_difference"`
	RevenueDifferencePct float64 `json:"revenue_difference_pct"`
}

type ControllableChannel struct {
	Channel             string  `json:"channel"`
	Spend               float64 `json:"spend"`
	Visitors            float64 `json:"visitors"`
	Orders              float64 `json:"orders"`
	Revenue             float64 `json:"revenue"`
	EmailCaptures       float64 `json:"email_captures"`
	ROAS                float64 `json:"roas"`
	CPA                 float64 `json:"cpa"`
	CostPerVisitor      float64 `json:"cost_per_visitor"`
	EmailCaptureRatePct float64 `json:"email_capture_rate_pct"`
	EmailCost           float64 `json:"email_cost"`
	SpendSharePct       float64 `json:"spend_share_pct"`
}

type AttributionData struct {
	Months                 []string                 `json:"months"`
	SameMonth              []AttributionCorrelation `json:"same_month_correlations"`
	Lagged                 []AttributionCorrelation `json:"lagged_correlations"`
	Significance           map[string]float64       `json:"statistical_significance"`
	Quality                []ChannelQuality         `json:"data_quality"`
	OrganicRecords         int                      `json:"organic_records"`
	OrganicAnomalies       []CartAnomaly            `json:"organic_anomalies"`
	YouTubeEmail           *EmailStrategy           `json:"youtube_email_strategy,omitempty"`
	Controllable           []ControllableChannel    `json:"controllable_channels"`
	StrongestYouTubeGoogle float64                  `json:"strongest_youtube_google_correlation"`
	Insights               []string                 `json:"insights"`
}

func (AttributionReport) Name() string           { return "attribution" }
func (AttributionReport) Title() string          { return "Advanced Attribution Analysis" }
func (AttributionReport) Sources() domain.Source { return domain.SourceMarketing }

func (r AttributionReport) Build(ds *domain.Dataset) (*domain.ReportResult, error) {
	if !ds.HasMarketing() {
		return nil, NewReportError(ErrNoData, r.Name(), "marketing data is empty")
	}

	result := domain.NewReportResult(r.Name(), r.Title())
	pivot := newMonthPivot(ds.Marketing)
	data := &AttributionData{Months: pivot.months, Significance: map[string]float64{}}

	r.correlations(result, pivot, data)
	r.dataQuality(result, ds, data)
	r.youTubeEmail(result, ds, data)
	r.controllable(result, ds, data)
	r.insights(result, ds, data)

	result.Data = data
	return result, nil
}

func (AttributionReport) correlations(result *domain.ReportResult, pivot *monthPivot, data *AttributionData) {
	same := result.Section("SAME-MONTH CORRELATIONS")
	lag := result.Section("TIME-LAGGED CORRELATIONS")

	for l := 0; l <= maxAttributionLag; l++ {
		if l > 0 {
			lag.Printf("%d-Month Lag Effects:", l)
		}
		for _, aw := range awarenessChannels {
			for _, cv := range conversionChannels {
				for _, metric := range attributionMetrics {
					x, y := lagged(pivot.series(aw, "Spend"), pivot.series(cv, metric), l)
					c, ok := stats.Pearson(x, y)
					if !ok {
						continue
					}
					ac := AttributionCorrelation{
						Awareness:  aw.String(),
						Conversion: cv.String(),
						Metric:     metric,
						Lag:        l,
						R:          utils.Round(c.R, 3),
						P:          utils.Round(c.P, 3),
						N:          c.N,
						Stars:      stats.Stars(c.P),
					}
					data.Significance[ac.Key()] = ac.P
					if l == 0 {
						data.SameMonth = append(data.SameMonth, ac)
						same.Printf("%s Spend -> %s %s: %.3f (p=%.3f) %s", aw, cv, metric, c.R, c.P, ac.Stars)
						continue
					}
					data.Lagged = append(data.Lagged, ac)
					lag.Printf("  %s Spend (t) -> %s %s (t+%d): %.3f (p=%.3f) %s", aw, cv, metric, l, c.R, c.P, ac.Stars)
				}
			}
		}
	}

	if len(data.SameMonth) == 0 {
		same.Printf("Not enough months with awareness spend for correlations")
	}
}

func (AttributionReport) dataQuality(result *domain.ReportResult, ds *domain.Dataset, data *AttributionData) {
	sec := result.Section("DATA QUALITY ANALYSIS BY CHANNEL")
	anomalies := sec.Table("Cart/Order anomalies by channel", "Channel", "Anomaly Count", "Anomaly Rate %", "Orders vs Carts")
	funnel := sec.Table("Conversion patterns by channel", "Channel", "Visitor to Cart %", "Cart to Order %", "Overall CR %")

	byChannel := domain.RecordsByChannel(ds.Marketing)
	for _, ch := range ds.Channels() {
		rows := byChannel[ch]
		var carts, orders, visitors float64
		q := ChannelQuality{Channel: ch.String(), Records: len(rows)}
		for _, rec := range rows {
			if rec.HasCartAnomaly() {
				q.AnomalyCount++
			}
			carts += float64(rec.AddToCart)
			orders += float64(rec.Orders)
			visitors += float64(rec.Visitors)
		}
		q.AnomalyRatePct = utils.Round(pct(utils.SafeDiv(float64(q.AnomalyCount), float64(q.Records))), 1)
		q.VisitorToCartPct = utils.Round(pct(utils.SafeDiv(carts, visitors)), 3)
		q.OverallConversionPct = utils.Round(pct(utils.SafeDiv(orders, visitors)), 3)
		ratioText, cartText := "n/a", "n/a"
		if v, ok := domain.CartConversionRate(orders, carts); ok {
			ratio := round2(v)
			cartRate := utils.Round(pct(v), 1)
			q.OrdersVsCarts, q.CartToOrderPct = &ratio, &cartRate
			ratioText, cartText = fmt.Sprintf("%.2f", ratio), fmt.Sprintf("%.1f", cartRate)
		}
		data.Quality = append(data.Quality, q)

		anomalies.Add(q.Channel, fmt.Sprint(q.AnomalyCount), fmt.Sprintf("%.1f", q.AnomalyRatePct), ratioText)
		funnel.Add(q.Channel, fmt.Sprintf("%.3f", q.VisitorToCartPct), cartText, fmt.Sprintf("%.3f", q.OverallConversionPct))
	}

	organic := byChannel[domain.OrganicDirect]
	data.OrganicRecords = len(organic)
	for _, rec := range organic {
		if rec.HasCartAnomaly() {
			data.OrganicAnomalies = append(data.OrganicAnomalies, CartAnomaly{Month: rec.MonthKey(), Carts: rec.AddToCart, Orders: rec.Orders})
		}
	}

	deep := result.Section("ORGANIC + DIRECT DEEP DIVE")
	deep.Printf("Total Organic records: %d", data.OrganicRecords)
	deep.Printf("Anomaly records: %d (%.1f%%)", len(data.OrganicAnomalies),
		pct(utils.SafeDiv(float64(len(data.OrganicAnomalies)), float64(data.OrganicRecords))))
	for i, a := range data.OrganicAnomalies {
		if i == 0 {
			deep.Printf("Organic Anomaly Examples (Orders > Carts):")
		}
		if i == organicAnomalyExamples {
			break
		}
		deep.Printf("  %s: %d orders > %d carts", a.Month, a.Orders, a.Carts)
	}
}

func (AttributionReport) youTubeEmail(result *domain.ReportResult, ds *domain.Dataset, data *AttributionData) {
	youtube := ds.MarketingWhere(func(rec domain.MarketingRecord) bool { return rec.Channel == domain.YouTubeAds })
	if len(youtube) == 0 {
		return
	}

	var spend, visitors, orders, revenue, emails, conv30, conv60 float64
	for _, rec := range youtube {
		spend += rec.Spend
		visitors += float64(rec.Visitors)
		orders += float64(rec.Orders)
		revenue += rec.Revenue
		emails += float64(rec.EmailCaptures)
		conv30 += float64(rec.EmailConversions30)
		conv60 += float64(rec.EmailConversions60)
	}

	aov, ok := domain.AOV(revenue, orders)
	if !ok {
		aov = fallbackAOV
	}
	email60Rate := utils.SafeDiv(conv60, emails)

	s := &EmailStrategy{
		Spend:                spend,
		Visitors:             visitors,
		DirectOrders:         orders,
		DirectRevenue:        revenue,
		EmailCaptures:        emails,
		EmailOrders30:        conv30,
		EmailOrders60:        conv60,
		EmailCaptureRatePct:  round2(pct(utils.SafeDiv(emails, visitors))),
		DirectConversionPct:  utils.Round(pct(utils.SafeDiv(orders, visitors)), 3),
		Email30ConversionPct: round2(pct(utils.SafeDiv(conv30, emails))),
		Email60ConversionPct: round2(pct(email60Rate)),
		AOV:                  round2(aov),
		DirectROAS:           round2(utils.SafeDiv(revenue, spend)),
		CurrentCPA:           round2(utils.SafeDiv(spend, orders)),
	}

	currentRevenue := revenue + conv60*aov
	s.CurrentRevenue = round2(currentRevenue)
	s.CurrentBlendedROAS = round2(utils.SafeDiv(currentRevenue, spend))

	s.PotentialEmails = emails * emailCaptureMultiplier
	s.PotentialEmailOrders = round2(s.PotentialEmails * email60Rate)
	s.AdjustedDirectOrders = orders * directOrdersRetention
	projected := s.AdjustedDirectOrders*aov + s.PotentialEmails*email60Rate*aov
	s.ProjectedRevenue = round2(projected)
	s.ProjectedROAS = round2(utils.SafeDiv(projected, spend))
	s.RevenueDifference = round2(projected - currentRevenue)
	s.RevenueDifferencePct = utils.Round(pct(utils.SafeDiv(projected-currentRevenue, currentRevenue)), 1)
	data.YouTubeEmail = s

	sec := result.Section("YOUTUBE EMAIL CAPTURE vs DIRECT CONVERSION ANALYSIS")
	sec.Printf("Current YouTube performance:")
	sec.Printf("  Total Spend: %s", utils.Money0(spend))
	sec.Printf("  Total Visitors: %s", utils.Int(visitors))
	sec.Printf("  Direct Orders: %s", utils.Int(orders))
	sec.Printf("  Direct Revenue: %s", utils.Money0(revenue))
	sec.Printf("  Email Captures: %s", utils.Int(emails))
	sec.Printf("  Email -> Orders (30d): %s", utils.Int(conv30))
	sec.Printf("  Email -> Orders (60d): %s", utils.Int(conv60))
	sec.Printf("Conversion rates:")
	sec.Printf("  Email Capture Rate: %.2f%%", s.EmailCaptureRatePct)
	sec.Printf("  Direct Conversion Rate: %.3f%%", s.DirectConversionPct)
	sec.Printf("  Email -> Sale (30d): %.2f%%", s.Email30ConversionPct)
	sec.Printf("  Email -> Sale (60d): %.2f%%", s.Email60ConversionPct)
	sec.Printf("ROI analysis:")
	sec.Printf("  Average Order Value: %s", utils.Money0(aov))
	sec.Printf("  Direct ROAS: %s", utils.Ratio(s.DirectROAS))
	sec.Printf("  Email Revenue (30d): %s", utils.Money0(conv30*aov))
	sec.Printf("  Email Revenue (60d): %s", utils.Money0(conv60*aov))
	sec.Printf("Current strategy (direct focus):")
	sec.Printf("  CPA: %s", utils.Money0(s.CurrentCPA))
	sec.Printf("  Blended ROAS (incl. email): %s", utils.Ratio(s.CurrentBlendedROAS))
	sec.Printf("  Total Revenue: %s", utils.Money0(s.CurrentRevenue))
	sec.Printf("Email-focused strategy (simulation):")
	sec.Printf("  Potential Emails: %s (2x current)", utils.Int(s.PotentialEmails))
	sec.Printf("  Email -> Orders (60d): %s", utils.Int(s.PotentialEmailOrders))
	sec.Printf("  Adjusted Direct Orders: %s (50%% of current)", utils.Int(s.AdjustedDirectOrders))
	sec.Printf("  Total Projected Revenue: %s", utils.Money0(s.ProjectedRevenue))
	sec.Printf("  Projected ROAS: %s", utils.Ratio(s.ProjectedROAS))
	sign := ""
	if s.RevenueDifference > 0 {
		sign = "+"
	}
	sec.Printf("Strategy Impact: %s%s (%+.1f%%)", sign, utils.Money0(s.RevenueDifference), s.RevenueDifferencePct)
}

func (AttributionReport) controllable(result *domain.ReportResult, ds *domain.Dataset, data *AttributionData) {
	totals := domain.GroupByChannel(ds.Marketing)
	var controllableSpend float64
	for _, ch := range awarenessChannels {
		controllableSpend += totals[ch].Spend
	}

	sec := result.Section("CONTROLLABLE CHANNEL STRATEGY (YOUTUBE & FB)")
	table := sec.Table("Controllable channel performance", "Channel", "Spend", "ROAS", "CPA", "Cost/Visitor", "Email Capture %", "Email Cost")
	for _, ch := range awarenessChannels {
		t, ok := totals[ch]
		if !ok {
			continue
		}
		c := ControllableChannel{
			Channel:             ch.String(),
			Spend:               round2(t.Spend),
			Visitors:            t.Visitors,
			Orders:              t.Orders,
			Revenue:             round2(t.Revenue),
			EmailCaptures:       t.EmailCaptures,
			ROAS:                round2(domain.OrZero(t.ROAS())),
			CPA:                 round2(domain.OrZero(t.CPA())),
			CostPerVisitor:      round2(domain.OrZero(domain.CostPerVisitor(t.Spend, t.Visitors))),
			EmailCaptureRatePct: round2(pct(domain.OrZero(t.EmailCaptureRate()))),
			EmailCost:           round2(utils.SafeDiv(t.Spend, t.EmailCaptures)),
			SpendSharePct:       utils.Round(pct(utils.SafeDiv(t.Spend, controllableSpend)), 0),
		}
		data.Controllable = append(data.Controllable, c)
		table.Add(c.Channel, utils.Money0(c.Spend), fmt.Sprintf("%.2f", c.ROAS), utils.Money0(c.CPA),
			utils.Money(c.CostPerVisitor), fmt.Sprintf("%.2f", c.EmailCaptureRatePct), utils.Money(c.EmailCost))
	}

	for _, c := range data.SameMonth {
		if c.Awareness == domain.YouTubeAds.String() && c.Conversion == domain.GoogleAds.String() &&
			math.Abs(c.R) > math.Abs(data.StrongestYouTubeGoogle) {
			data.StrongestYouTubeGoogle = c.R
		}
	}

	for _, c := range data.Controllable {
		switch c.Channel {
		case domain.YouTubeAds.String():
			sec.Printf("YouTube Ads Analysis:")
			sec.Printf("  Direct ROAS: %s", utils.Ratio(c.ROAS))
			sec.Printf("  Traffic Volume: %s visitors (awareness)", utils.Int(c.Visitors))
			sec.Printf("  Strongest correlation with Google: %.3f", data.StrongestYouTubeGoogle)
			sec.Printf("  Strategic Role: Awareness + Email Capture")
		case domain.FacebookAds.String():
			sec.Printf("FB Ads Analysis:")
			sec.Printf("  Direct ROAS: %s", utils.Ratio(c.ROAS))
			sec.Printf("  Conversion Rate: %.3f%%", pct(utils.SafeDiv(c.Orders, c.Visitors)))
			sec.Printf("  Strategic Role: Direct Response + Retargeting")
		}
	}

	if len(data.Controllable) == 2 {
		sec.Printf("Budget allocation:")
		sec.Printf("  Current: YouTube %.0f%% / FB %.0f%%", data.Controllable[0].SpendSharePct, data.Controllable[1].SpendSharePct)
		sec.Printf("  Recommended: YouTube 70%% (awareness) / FB 30%% (conversion)")
	}
}

func (AttributionReport) insights(result *domain.ReportResult, ds *domain.Dataset, data *AttributionData) {
	for _, c := range data.SameMonth {
		if math.Abs(c.R) > insightCorrelation && c.Awareness == domain.YouTubeAds.String() {
			data.Insights = append(data.Insights,
				"Attribution Discovery: YouTube Ads shows measurable correlation with Google/Organic performance - challenging simple ROAS comparison")
			break
		}
	}

	if len(data.OrganicAnomalies) > 0 {
		data.Insights = append(data.Insights, fmt.Sprintf(
			"Data Quality: %d/%d Organic+Direct records show orders>carts - likely subscription renewals/direct checkout",
			len(data.OrganicAnomalies), data.OrganicRecords))
	}

	if data.YouTubeEmail != nil {
		data.Insights = append(data.Insights, fmt.Sprintf(
			"YouTube Opportunity: %.1f%% email capture rate suggests pivot to lead generation vs direct conversion",
			data.YouTubeEmail.EmailCaptureRatePct))
	}

	total := domain.SumMarketing(ds.Marketing).Spend
	var controllable float64
	for _, c := range data.Controllable {
		controllable += c.Spend
	}
	data.Insights = append(data.Insights, fmt.Sprintf(
		"Strategic Focus: Only %.0f%% of spend is truly controllable (YouTube + FB) - these channels need attribution-aware optimization",
		pct(utils.SafeDiv(controllable, total))))

	sec := result.Section("EXECUTIVE INSIGHTS - ATTRIBUTION ANALYSIS")
	for i, insight := range data.Insights {
		sec.Printf("%d. %s", i+1, insight)
	}
	sec.Printf("")
	sec.Printf("Focus recommendations on YouTube (awareness) and FB (conversion) optimization.")
}
