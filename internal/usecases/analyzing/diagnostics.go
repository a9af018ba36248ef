package analyzing

import (
	"fmt"

	"github.com/vfg2006/marketing-reports/internal/domain"
	"github.com/vfg2006/marketing-reports/pkg/utils"
)

const (
	poorROASThreshold      = 2.0
	highCPAThreshold       = 1000
	lowConversionThreshold = 0.001
	worstRowsLimit         = 10
)

// DiagnosticsReport levanta problemas por canal pago e a oportunidade de e-mail do YouTube
type DiagnosticsReport struct{}

type ChannelDiagnostic struct {
	Channel            string  `json:"channel"`
	Spend              float64 `json:"spend"`
	Revenue            float64 `json:"revenue"`
	Orders             float64 `json:"orders"`
	Visitors           float64 `json:"visitors"`
	EmailCaptures      float64 `json:"email_captures"`
	EmailConversions30 float64 `json:"email_conversions_30d"`
	EmailConversions60 float64 `json:"email_conversions_60d"`
	ROAS               float64 `json:"roas"`
	CPA                float64 `json:"cpa"`
	ConversionRate     float64 `json:"conversion_rate"`
	EmailCaptureRate   float64 `json:"email_capture_rate"`
	PoorROAS           bool    `json:"poor_roas"`
	HighCPA            bool    `json:"high_cpa"`
	LowConversion      bool    `json:"low_conversion"`
}

type YouTubeEmailDiagnostic struct {
	Visitors            float64 `json:"visitors"`
	EmailCaptures       float64 `json:"email_captures"`
	EmailCaptureRatePct float64 `json:"email_capture_rate_pct"`
	EmailConversions30  float64 `json:"email_conversions_30d"`
	EmailConversions60  float64 `json:"email_conversions_60d"`
	DirectOrders        float64 `json:"direct_orders"`
	Spend               float64 `json:"spend"`
	ROAS                float64 `json:"roas"`
	Email30RatePct      float64 `json:"email_30d_rate_pct"`
	Email60RatePct      float64 `json:"email_60d_rate_pct"`
	AttributedOrders    float64 `json:"attributed_orders"`
	DirectSharePct      float64 `json:"direct_share_pct"`
	EmailSharePct       float64 `json:"email_share_pct"`
}

type MonthDiagnostic struct {
	Channel string  `json:"channel"`
	Month   string  `json:"month"`
	ROAS    float64 `json:"roas"`
	CPA     float64 `json:"cpa"`
	Spend   float64 `json:"spend"`
}

type WorstRow struct {
	Channel string  `json:"channel"`
	Month   string  `json:"month"`
	ROAS    float64 `json:"roas"`
	CPA     float64 `json:"cpa"`
	Spend   float64 `json:"spend"`
	Orders  int64   `json:"orders"`
}

type DiagnosticsData struct {
	Channels []ChannelDiagnostic     `json:"channels"`
	YouTube  *YouTubeEmailDiagnostic `json:"youtube_email,omitempty"`
	Monthly  []MonthDiagnostic       `json:"monthly"`
	Worst    []WorstRow              `json:"worst_rows"`
}

func (DiagnosticsReport) Name() string           { return "diagnostics" }
func (DiagnosticsReport) Title() string          { return "Marketing Data Analysis" }
func (DiagnosticsReport) Sources() domain.Source { return domain.SourceMarketing }

func (r DiagnosticsReport) Build(ds *domain.Dataset) (*domain.ReportResult, error) {
	paid := withSpend(ds.Marketing)
	if len(paid) == 0 {
		return nil, NewReportError(ErrNoData, r.Name(), "no rows with spend")
	}

	result := domain.NewReportResult(r.Name(), r.Title())
	data := &DiagnosticsData{}
	totals := domain.GroupByChannel(paid)
	channels := domain.ChannelsOf(paid)

	overall := result.Section("1. OVERALL CHANNEL PERFORMANCE")
	table := overall.Table("", "Channel", "Spend", "Revenue", "Orders", "Visitors", "ROAS", "CPA", "Conv Rate", "Email Capture Rate")
	for _, ch := range channels {
		t := totals[ch]
		d := ChannelDiagnostic{
			Channel:            ch.String(),
			Spend:              round2(t.Spend),
			Revenue:            round2(t.Revenue),
			Orders:             t.Orders,
			Visitors:           t.Visitors,
			EmailCaptures:      t.EmailCaptures,
			EmailConversions30: t.EmailConversions30,
			EmailConversions60: t.EmailConversions60,
			ROAS:               utils.Round(domain.OrZero(t.ROAS()), 4),
			CPA:                round2(domain.OrZero(t.CPA())),
			ConversionRate:     utils.Round(domain.OrZero(t.ConversionRate()), 6),
			EmailCaptureRate:   utils.Round(domain.OrZero(t.EmailCaptureRate()), 6),
		}
		_, hasOrders := t.CPA()
		_, hasVisitors := t.ConversionRate()
		d.PoorROAS = d.ROAS < poorROASThreshold
		d.HighCPA = hasOrders && d.CPA > highCPAThreshold
		d.LowConversion = hasVisitors && d.ConversionRate < lowConversionThreshold
		data.Channels = append(data.Channels, d)

		table.Add(d.Channel, utils.Money0(d.Spend), utils.Money0(d.Revenue), utils.Int(d.Orders), utils.Int(d.Visitors),
			fmt.Sprintf("%.2f", d.ROAS), utils.Money0(d.CPA), utils.Percent(d.ConversionRate, 3), utils.Percent(d.EmailCaptureRate, 2))
	}

	problems := result.Section("2. CHANNEL PERFORMANCE PROBLEMS")
	problems.Printf("Channels with ROAS < 2.0:")
	for _, d := range data.Channels {
		if d.PoorROAS {
			problems.Printf("  %s: ROAS %.2f, Total Spend %s", d.Channel, d.ROAS, utils.Money0(d.Spend))
		}
	}
	problems.Printf("Channels with CPA > $1000:")
	for _, d := range data.Channels {
		if d.HighCPA {
			problems.Printf("  %s: CPA %s, Total Spend %s", d.Channel, utils.Money0(d.CPA), utils.Money0(d.Spend))
		}
	}
	problems.Printf("Channels with conversion rate < 0.1%%:")
	for _, d := range data.Channels {
		if d.LowConversion {
			problems.Printf("  %s: Conversion %s", d.Channel, utils.Percent(d.ConversionRate, 3))
		}
	}

	if t, ok := totals[domain.YouTubeAds]; ok {
		data.YouTube = youTubeDiagnostic(t)
		r.printYouTube(result, data)
	}

	monthly := result.Section("4. MONTHLY PERFORMANCE TRENDS")
	monthly.Printf("Monthly ROAS by Channel:")
	byChannel := domain.RecordsByChannel(paid)
	for _, ch := range channels {
		monthly.Printf("%s:", ch)
		keys, months := domain.GroupByMonth(byChannel[ch])
		for _, key := range keys {
			rows := monthRows(byChannel[ch], key)
			m := MonthDiagnostic{
				Channel: ch.String(),
				Month:   key,
				ROAS:    round2(meanOf(rows, roasOf)),
				CPA:     round2(meanOf(rows, cpaOf)),
				Spend:   round2(months[key].Spend),
			}
			data.Monthly = append(data.Monthly, m)
			monthly.Printf("  %s: ROAS %.2f, CPA %s, Spend %s", m.Month, m.ROAS, utils.Money0(m.CPA), utils.Money0(m.Spend))
		}
	}

	worst := result.Section("5. WORST PERFORMING MONTHS")
	worst.Printf("Top 10 worst ROAS performances:")
	for _, rec := range rank(paid, roasOf, false, worstRowsLimit) {
		roas, _ := rec.ROAS()
		w := WorstRow{
			Channel: rec.Channel.String(),
			Month:   rec.MonthKey(),
			ROAS:    round2(roas),
			CPA:     round2(domain.OrZero(rec.CPA())),
			Spend:   rec.Spend,
			Orders:  rec.Orders,
		}
		data.Worst = append(data.Worst, w)
		worst.Printf("%s %s: ROAS %.2f, Spend %s, Orders %d", w.Channel, w.Month, w.ROAS, utils.Money0(w.Spend), w.Orders)
	}

	result.Data = data
	return result, nil
}

func youTubeDiagnostic(t domain.Totals) *YouTubeEmailDiagnostic {
	attributed := t.Orders + t.EmailConversions60
	return &YouTubeEmailDiagnostic{
		Visitors:            t.Visitors,
		EmailCaptures:       t.EmailCaptures,
		EmailCaptureRatePct: round2(pct(utils.SafeDiv(t.EmailCaptures, t.Visitors))),
		EmailConversions30:  t.EmailConversions30,
		EmailConversions60:  t.EmailConversions60,
		DirectOrders:        t.Orders,
		Spend:               round2(t.Spend),
		ROAS:                round2(utils.SafeDiv(t.Revenue, t.Spend)),
		Email30RatePct:      round2(pct(utils.SafeDiv(t.EmailConversions30, t.EmailCaptures))),
		Email60RatePct:      round2(pct(utils.SafeDiv(t.EmailConversions60, t.EmailCaptures))),
		AttributedOrders:    attributed,
		DirectSharePct:      utils.Round(pct(utils.SafeDiv(t.Orders, attributed)), 1),
		EmailSharePct:       utils.Round(pct(utils.SafeDiv(t.EmailConversions60, attributed)), 1),
	}
}

func (DiagnosticsReport) printYouTube(result *domain.ReportResult, data *DiagnosticsData) {
	yt := data.YouTube
	sec := result.Section("3. YOUTUBE EMAIL OPPORTUNITY ANALYSIS")
	sec.Printf("YouTube Ads Current Performance:")
	sec.Printf("Total Visitors: %s", utils.Int(yt.Visitors))
	sec.Printf("Total Email Captures: %s", utils.Int(yt.EmailCaptures))
	sec.Printf("Email Capture Rate: %.2f%%", yt.EmailCaptureRatePct)
	sec.Printf("30-day Email Conversions: %s", utils.Int(yt.EmailConversions30))
	sec.Printf("60-day Email Conversions: %s", utils.Int(yt.EmailConversions60))
	sec.Printf("Direct Orders: %s", utils.Int(yt.DirectOrders))
	sec.Printf("Total Spend: %s", utils.Money0(yt.Spend))
	sec.Printf("Current ROAS: %.2f", yt.ROAS)
	sec.Printf("")
	sec.Printf("Email Performance:")
	sec.Printf("30-day conversion rate from emails: %.2f%%", yt.Email30RatePct)
	sec.Printf("60-day conversion rate from emails: %.2f%%", yt.Email60RatePct)
	sec.Printf("")
	sec.Printf("Email Capture Rate Comparison:")
	for _, d := range data.Channels {
		sec.Printf("%s: %s", d.Channel, utils.Percent(d.EmailCaptureRate, 2))
	}
	sec.Printf("")
	sec.Printf("Total YouTube attributed orders (direct + 60d email): %s", utils.Int(yt.AttributedOrders))
	sec.Printf("Direct orders represent %.1f%% of total", yt.DirectSharePct)
	sec.Printf("Email orders represent %.1f%% of total", yt.EmailSharePct)
}

func monthRows(records []domain.MarketingRecord, month string) []domain.MarketingRecord {
	var out []domain.MarketingRecord
	for _, rec := range records {
		if rec.MonthKey() == month {
			out = append(out, rec)
		}
	}
	return out
}
