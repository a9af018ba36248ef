package analyzing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vfg2006/marketing-reports/internal/domain"
)

func monthOf2025(m time.Month) time.Time {
	return time.Date(2025, m, 1, 0, 0, 0, 0, time.UTC)
}

// tacticalDataset tem quatro meses (jan a abr/2025) em que abril derruba o ROAS de Google e FB
func tacticalDataset() *domain.Dataset {
	ds := &domain.Dataset{}
	googleRevenue := []float64{5000, 5000, 5000, 1000}
	googleVisitors := []int64{1000, 1000, 1000, 4000}
	fbSpend := []float64{500, 500, 500, 4000}
	fbRevenue := []float64{1000, 1000, 1000, 2000}
	organicRevenue := []float64{1000, 1000, 1000, 5000}

	for i := 0; i < 4; i++ {
		m := monthOf2025(time.January + time.Month(i))
		ds.Marketing = append(ds.Marketing,
			domain.MarketingRecord{
				Channel: domain.GoogleAds, Month: m, Spend: 1000, Revenue: googleRevenue[i],
				Visitors: googleVisitors[i], AddToCart: 40, Orders: 20, EmailCaptures: 70, EmailConversions30: 7, EmailConversions60: 9,
			},
			domain.MarketingRecord{
				Channel: domain.FacebookAds, Month: m, Spend: fbSpend[i], Revenue: fbRevenue[i],
				Visitors: 1000, AddToCart: 20, Orders: 10, EmailCaptures: 10, EmailConversions30: 1, EmailConversions60: 1,
			},
			domain.MarketingRecord{
				Channel: domain.OrganicDirect, Month: m, Revenue: organicRevenue[i],
				Visitors: 2000, AddToCart: 20, Orders: 10,
			},
		)
	}
	return ds
}

func TestTacticalReport(t *testing.T) {
	result, err := TacticalReport{}.Build(tacticalDataset())
	require.NoError(t, err)
	data := result.Data.(*TacticalData)

	t.Run("Deve sinalizar meses abaixo de 70% do ROAS médio do canal", func(t *testing.T) {
		require.Len(t, data.Underperforming, 2)

		google := data.Underperforming[0]
		assert.Equal(t, "Google Ads", google.Channel)
		assert.Equal(t, 4.0, google.AvgROAS)
		require.Len(t, google.Rows, 1)
		assert.Equal(t, RowFlag{Channel: "Google Ads", Month: "2025-04", ROAS: 1, Spend: 1000, Revenue: 1000}, google.Rows[0])

		fb := data.Underperforming[1]
		assert.Equal(t, "FB Ads", fb.Channel)
		assert.Equal(t, 1.63, fb.AvgROAS)
		require.Len(t, fb.Rows, 1)
		assert.Equal(t, "2025-04", fb.Rows[0].Month)
	})

	t.Run("Deve cruzar o percentil 75 do investimento com o percentil 25 do ROAS", func(t *testing.T) {
		assert.Equal(t, 1000.0, data.HighSpendThreshold)
		assert.Equal(t, 1.75, data.LowROASThreshold)
		require.Len(t, data.HighSpendLowROAS, 1, "Google em abril não passa do limite de investimento")
		assert.Equal(t, RowFlag{Channel: "FB Ads", Month: "2025-04", ROAS: 0.5, Spend: 4000, Revenue: 2000}, data.HighSpendLowROAS[0])
	})

	t.Run("Deve estimar pedidos perdidos em meses de tráfego alto e conversão baixa", func(t *testing.T) {
		require.Len(t, data.ConversionOpportunities, 1)
		o := data.ConversionOpportunities[0]
		assert.Equal(t, "Google Ads", o.Channel)
		assert.Equal(t, "2025-04", o.Month)
		assert.Equal(t, int64(4000), o.Visitors)
		assert.InDelta(t, 0.5, o.ConversionRatePct, 1e-9)
		assert.InDelta(t, 1.625, o.AvgConversionRatePct, 1e-9)
		assert.Equal(t, 45.0, o.MissedOrders)
		assert.Equal(t, 2250.0, o.MissedRevenue)
	})

	t.Run("Deve realocar 30% da verba do pior canal nos últimos três meses", func(t *testing.T) {
		require.Len(t, data.Reallocations, 3, "janeiro fica fora da janela")
		assert.Equal(t, Reallocation{
			Month: "2025-02", From: "FB Ads", FromROAS: 2, To: "Google Ads", ToROAS: 5, Amount: 150, AdditionalRevenue: 450,
		}, data.Reallocations[0])
		assert.Equal(t, Reallocation{
			Month: "2025-04", From: "FB Ads", FromROAS: 0.5, To: "Google Ads", ToROAS: 1, Amount: 1200, AdditionalRevenue: 600,
		}, data.Reallocations[2])
	})

	t.Run("Deve apontar meses orgânicos 20% acima da média", func(t *testing.T) {
		assert.Equal(t, []string{"Apr"}, data.OrganicBestMonths)
	})
}

func TestReallocations(t *testing.T) {
	rows := func(best, worst float64) []domain.MarketingRecord {
		m := monthOf2025(time.May)
		return []domain.MarketingRecord{
			{Channel: domain.GoogleAds, Month: m, Spend: 100, Revenue: 100 * best},
			{Channel: domain.YouTubeAds, Month: m, Spend: 1000, Revenue: 1000 * worst},
		}
	}

	tests := []struct {
		name string
		rows []domain.MarketingRecord
		want int
	}{
		{"Deve sugerir realocação quando o melhor supera 1.5x o pior", rows(3.1, 2), 1},
		{"Deve ignorar vantagem de exatamente 1.5x", rows(3, 2), 0},
		{"Deve ignorar meses com um único canal", rows(3, 2)[:1], 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Len(t, reallocations(tt.rows, reallocationMonths, reallocationShare, reallocationMinAdvance), tt.want)
		})
	}
}

func TestSeasonalityReport(t *testing.T) {
	result, err := SeasonalityReport{}.Build(tacticalDataset())
	require.NoError(t, err)
	data := result.Data.(*SeasonalityData)

	require.Len(t, data.PaidByMonth, 4)
	assert.Equal(t, CalendarMonthMetric{Month: 1, Name: "January", AvgROAS: 3.5, AvgSpend: 750}, data.PaidByMonth[0])
	assert.Equal(t, CalendarMonthMetric{Month: 4, Name: "April", AvgROAS: 0.75, AvgSpend: 2500}, data.PaidByMonth[3])

	require.Len(t, data.Ranking, 2)
	assert.Equal(t, "Google Ads", data.Ranking[0].Channel)
	assert.Equal(t, 4.0, data.Ranking[0].AvgROAS)

	require.Len(t, data.BudgetShifts, 1)
	shift := data.BudgetShifts[0]
	assert.Equal(t, "FB Ads", shift.From)
	assert.Equal(t, "Google Ads", shift.To)
	assert.Equal(t, 5500.0, shift.Spend)
	assert.InDelta(t, 5500*(4-1.63), shift.AdditionalRevenue, 0.01, "investimento total x diferença de ROAS médio")

	require.Len(t, data.EmailOpportunities, 1)
	email := data.EmailOpportunities[0]
	assert.Equal(t, 1.0, email.CurrentCaptureRate)
	assert.Equal(t, 4.0, email.TargetCaptureRate)
	assert.Equal(t, 120.0, email.AdditionalCaptures)
	assert.InDelta(t, 12, email.AdditionalOrders, 0.01)
	assert.InDelta(t, 12*EstimatedEmailAOV, email.EstimatedRevenueGain, 0.01)
}

func TestSeasonalityWithoutGoogle(t *testing.T) {
	ds := tacticalDataset()
	ds.Marketing = ds.MarketingWhere(func(r domain.MarketingRecord) bool { return r.Channel != domain.GoogleAds })

	result, err := SeasonalityReport{}.Build(ds)
	require.NoError(t, err)
	data := result.Data.(*SeasonalityData)
	assert.Empty(t, data.BudgetShifts)
	assert.Empty(t, data.EmailOpportunities)
}

func TestChannelPerformanceReport(t *testing.T) {
	result, err := ChannelPerformanceReport{}.Build(tacticalDataset())
	require.NoError(t, err)
	data := result.Data.(*ChannelPerformanceData)

	require.Len(t, data.Paid, 2)
	google := data.Paid[0]
	assert.Equal(t, "Google Ads", google.Channel)
	assert.Equal(t, 4000.0, google.TotalSpend)
	assert.Equal(t, 16000.0, google.TotalRevenue)
	assert.Equal(t, 80.0, google.TotalOrders)
	assert.Equal(t, 4.0, google.AvgROAS)
	assert.Equal(t, 50.0, google.AvgCostPerOrder)
	assert.InDelta(t, 1.625, google.AvgConversionRatePct, 0.006)

	fb := data.Paid[1]
	assert.Equal(t, 1.63, fb.AvgROAS, "média das linhas, não receita total / investimento total")
	assert.Equal(t, 137.5, fb.AvgCostPerOrder)

	require.NotNil(t, data.Organic)
	assert.Equal(t, 8000.0, data.Organic.TotalRevenue)
	assert.Len(t, data.MonthlyTrends, 12)

	require.Len(t, data.TopROAS, 8, "orgânico fica fora do ranking")
	assert.Equal(t, RowROAS{Channel: "Google Ads", Month: "2025-01", ROAS: 5, Spend: 1000, Revenue: 5000, Orders: 20}, data.TopROAS[0])
	assert.Equal(t, RowROAS{Channel: "FB Ads", Month: "2025-04", ROAS: 0.5, Spend: 4000, Revenue: 2000, Orders: 10}, data.WorstROAS[0])
}

func TestDiagnosticsReport(t *testing.T) {
	m := monthOf2025(time.January)
	ds := &domain.Dataset{Marketing: []domain.MarketingRecord{
		{Channel: domain.GoogleAds, Month: m, Spend: 10000, Revenue: 50000, Orders: 20, Visitors: 5000},
		{Channel: domain.YouTubeAds, Month: m, Spend: 6000, Revenue: 6000, Orders: 4, Visitors: 10000, EmailCaptures: 500, EmailConversions30: 10, EmailConversions60: 20},
		{Channel: domain.FacebookAds, Month: m, Spend: 3000, Revenue: 5700, Orders: 3, Visitors: 4000},
		{Channel: domain.OrganicDirect, Month: m, Revenue: 9000, Orders: 3, Visitors: 8000},
	}}

	result, err := DiagnosticsReport{}.Build(ds)
	require.NoError(t, err)
	data := result.Data.(*DiagnosticsData)
	require.Len(t, data.Channels, 3, "linhas sem investimento ficam de fora")

	tests := []struct {
		name                             string
		channel                          ChannelDiagnostic
		poorROAS, highCPA, lowConversion bool
	}{
		{"Deve manter Google sem alertas", data.Channels[0], false, false, false},
		{"Deve sinalizar ROAS, CPA e conversão do YouTube", data.Channels[1], true, true, true},
		{"Deve tratar CPA de exatamente 1000 como aceitável", data.Channels[2], true, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.poorROAS, tt.channel.PoorROAS, "ROAS %.2f", tt.channel.ROAS)
			assert.Equal(t, tt.highCPA, tt.channel.HighCPA, "CPA %.2f", tt.channel.CPA)
			assert.Equal(t, tt.lowConversion, tt.channel.LowConversion, "conversão %.6f", tt.channel.ConversionRate)
		})
	}

	t.Run("Deve somar pedidos diretos e conversões de e-mail em 60 dias", func(t *testing.T) {
		require.NotNil(t, data.YouTube)
		assert.Equal(t, 5.0, data.YouTube.EmailCaptureRatePct)
		assert.Equal(t, 2.0, data.YouTube.Email30RatePct)
		assert.Equal(t, 4.0, data.YouTube.Email60RatePct)
		assert.Equal(t, 24.0, data.YouTube.AttributedOrders)
		assert.Equal(t, 16.7, data.YouTube.DirectSharePct)
		assert.Equal(t, 83.3, data.YouTube.EmailSharePct)
	})

	t.Run("Deve ordenar os piores meses por ROAS crescente", func(t *testing.T) {
		require.Len(t, data.Worst, 3)
		assert.Equal(t, "YouTube Ads", data.Worst[0].Channel)
		assert.Equal(t, 1.9, data.Worst[1].ROAS)
		assert.Equal(t, "Google Ads", data.Worst[2].Channel)
	})
}

func TestLagged(t *testing.T) {
	spend := []float64{0, 100, 200, 0, 300}
	metric := []float64{1, 2, 3, 4, 5}

	tests := []struct {
		name  string
		lag   int
		wantX []float64
		wantY []float64
	}{
		{"Deve ignorar meses sem investimento", 0, []float64{100, 200, 300}, []float64{2, 3, 5}},
		{"Deve parear com o mês seguinte e descartar o final da série", 1, []float64{100, 200}, []float64{3, 4}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x, y := lagged(spend, metric, tt.lag)
			assert.Equal(t, tt.wantX, x)
			assert.Equal(t, tt.wantY, y)
		})
	}
}

// attributionDataset tem cinco meses em que o investimento do YouTube acompanha os pedidos do Google
// e o YouTube não gera pedidos diretos
func attributionDataset() *domain.Dataset {
	ds := &domain.Dataset{}
	for i := 0; i < 5; i++ {
		m := monthOf2025(time.January + time.Month(i))
		ds.Marketing = append(ds.Marketing,
			domain.MarketingRecord{Channel: domain.GoogleAds, Month: m, Spend: 1000, Revenue: 50000, Visitors: 1000, AddToCart: 100, Orders: int64(10 * (i + 1))},
			domain.MarketingRecord{
				Channel: domain.YouTubeAds, Month: m, Spend: 1000 * float64(i+1), Visitors: 1000,
				EmailCaptures: 100, EmailConversions30: 5, EmailConversions60: 10,
			},
		)
	}
	return ds
}

func TestAttributionReport(t *testing.T) {
	result, err := AttributionReport{}.Build(attributionDataset())
	require.NoError(t, err)
	data := result.Data.(*AttributionData)

	t.Run("Deve exigir quatro meses pareados por defasagem", func(t *testing.T) {
		require.Len(t, data.SameMonth, 1)
		assert.Equal(t, "Orders", data.SameMonth[0].Metric)
		assert.Equal(t, 5, data.SameMonth[0].N)
		require.Len(t, data.Lagged, 1, "defasagens de 2 e 3 meses têm menos de quatro pares")
		assert.Equal(t, 1, data.Lagged[0].Lag)
		assert.Equal(t, 4, data.Lagged[0].N)
		assert.InDelta(t, 1, data.StrongestYouTubeGoogle, 1e-3)
	})

	t.Run("Deve indexar os p-valores pela chave do par", func(t *testing.T) {
		require.Len(t, data.Significance, 2)
		assert.Contains(t, data.Significance, "YouTube Ads_spend_vs_Google Ads_Orders")
		assert.Contains(t, data.Significance, "YouTube Ads_spend_vs_Google Ads_Orders_lag1")
		assert.InDelta(t, 0, data.Significance["YouTube Ads_spend_vs_Google Ads_Orders"], 1e-3)
	})

	t.Run("Deve usar ticket de 4250 quando o YouTube não tem pedidos diretos", func(t *testing.T) {
		s := data.YouTubeEmail
		require.NotNil(t, s)
		assert.Equal(t, 4250.0, s.AOV)
		assert.Equal(t, 10.0, s.Email60ConversionPct)
		assert.Equal(t, 212500.0, s.CurrentRevenue, "50 conversões x 4250")
		assert.Equal(t, 1000.0, s.PotentialEmails)
		assert.Equal(t, 100.0, s.PotentialEmailOrders)
		assert.Equal(t, 0.0, s.AdjustedDirectOrders)
		assert.Equal(t, 425000.0, s.ProjectedRevenue)
		assert.Equal(t, 28.33, s.ProjectedROAS)
		assert.Equal(t, 212500.0, s.RevenueDifference)
		assert.Equal(t, 100.0, s.RevenueDifferencePct)
	})
}

func TestAttributionCorrelationKey(t *testing.T) {
	c := AttributionCorrelation{Awareness: "FB Ads", Conversion: "Organic + Direct", Metric: "Revenue"}
	assert.Equal(t, "FB Ads_spend_vs_Organic + Direct_Revenue", c.Key())

	c.Lag = 2
	assert.Equal(t, "FB Ads_spend_vs_Organic + Direct_Revenue_lag2", c.Key())
}
