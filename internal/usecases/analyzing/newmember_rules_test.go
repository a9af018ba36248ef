package analyzing

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vfg2006/marketing-reports/internal/domain"
)

// newMemberDataset tem três meses (jan a mar/2025) com investimento e receita de novos membros
// crescendo juntos; EUA concentram 80% da receita de novos membros
func newMemberDataset() *domain.Dataset {
	ds := &domain.Dataset{}
	for i := 0; i < 3; i++ {
		n := float64(i + 1)
		m := monthOf2025(time.January + time.Month(i))
		mid := m.AddDate(0, 0, 14)

		ds.Marketing = append(ds.Marketing,
			domain.MarketingRecord{Channel: domain.GoogleAds, Month: m, Spend: 1000 * n, Revenue: 10000 * n, Orders: int64(2 * n), Visitors: int64(1000 * n)},
			domain.MarketingRecord{Channel: domain.FacebookAds, Month: m, Spend: 1000, Revenue: 1000, Orders: 1, Visitors: 500},
		)
		ds.Daily = append(ds.Daily, domain.DailySale{Date: mid, Spend: 100 * n, Orders: 1, Bookings: 1000, Visitors: 100})
		ds.Regional = append(ds.Regional,
			domain.RegionalSale{Date: mid, Region: "US", CustomerType: domain.NewMembers, Bookings: 8000 * n, Orders: int64(2 * n)},
			domain.RegionalSale{Date: mid, Region: "CA", CustomerType: domain.NewMembers, Bookings: 2000 * n, Orders: 1},
		)
	}
	ds.Regional = append(ds.Regional,
		domain.RegionalSale{Date: day(2025, time.January, 15), Region: "US", CustomerType: domain.MemberUpgrades, Bookings: 50000, Orders: 9},
	)
	return ds
}

// flatMarketingSpend deixa o investimento mensal de marketing constante (4000) mantendo o gasto diário variável
func flatMarketingSpend(ds *domain.Dataset) {
	for i, rec := range ds.Marketing {
		if rec.Channel == domain.FacebookAds {
			ds.Marketing[i].Spend = 4000 - 1000*float64(rec.Month.Month())
		}
	}
}

// swapFebMar troca as datas das vendas de novos membros de fevereiro e março
func swapFebMar(ds *domain.Dataset) {
	for i, s := range ds.Regional {
		if !s.IsNewMember() {
			continue
		}
		switch s.Date.Month() {
		case time.February:
			ds.Regional[i].Date = day(2025, time.March, 15)
		case time.March:
			ds.Regional[i].Date = day(2025, time.February, 15)
		}
	}
}

func sectionLines(result *domain.ReportResult, title string) []string {
	for _, s := range result.Sections {
		if s.Title == title {
			return s.Lines
		}
	}
	return nil
}

func containsText(lines []string, text string) bool {
	for _, l := range lines {
		if strings.Contains(l, text) {
			return true
		}
	}
	return false
}

func TestExecutiveReport(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(ds *domain.Dataset)
		check  func(t *testing.T, result *domain.ReportResult, data *ExecutiveData)
	}{
		{
			name: "Deve correlacionar três meses mesclados",
			check: func(t *testing.T, result *domain.ReportResult, data *ExecutiveData) {
				require.Len(t, data.Monthly, 3)
				require.Len(t, data.Correlations, 2)
				c := data.Correlations[0]
				assert.Equal(t, spendRevenueCorrelation, c.Name)
				assert.Equal(t, 3, c.N)
				assert.InDelta(t, 1, c.R, 1e-3)
				assert.Equal(t, "strong", c.Strength)
				assert.Contains(t, sectionLines(result, "CORRELATION ANALYSIS"),
					"FINDING: STRONG positive correlation between marketing spend and new customer acquisition")
				assert.True(t, containsText(data.Insights, "STRONG correlation (r=1.00)"))
			},
		},
		{
			name:   "Deve classificar correlação de 0.5 com três meses como fraca",
			mutate: swapFebMar,
			check: func(t *testing.T, result *domain.ReportResult, data *ExecutiveData) {
				require.Len(t, data.Correlations, 2)
				c := data.Correlations[0]
				assert.InDelta(t, 0.5, c.R, 1e-3)
				assert.InDelta(t, 0.667, c.P, 1e-3, "t de Student com 1 grau de liberdade")
				assert.Equal(t, "weak", c.Strength)
				assert.Contains(t, sectionLines(result, "CORRELATION ANALYSIS"),
					"FINDING: WEAK correlation between marketing spend and new customer acquisition")
			},
		},
		{
			name:   "Deve omitir a conclusão quando só o gasto diário correlaciona",
			mutate: flatMarketingSpend,
			check: func(t *testing.T, result *domain.ReportResult, data *ExecutiveData) {
				require.Len(t, data.Correlations, 1)
				assert.Equal(t, dailySpendRevenueCorrelation, data.Correlations[0].Name)
				assert.False(t, containsText(sectionLines(result, "CORRELATION ANALYSIS"), "FINDING"))
				assert.False(t, containsText(data.Insights, "STRONG correlation"))
			},
		},
		{
			name: "Deve medir CAC dentro da faixa de 400 a 800 e concentração nos EUA",
			check: func(t *testing.T, result *domain.ReportResult, data *ExecutiveData) {
				assert.Equal(t, 9000.0, data.KPIs.TotalMarketingSpend)
				assert.Equal(t, 600.0, data.KPIs.CostPerOrder)
				assert.Equal(t, 7.0, data.KPIs.ROAS)
				assert.Equal(t, 60000.0, data.KPIs.NewMemberRevenue, "upgrades ficam de fora")
				assert.Equal(t, 15.0, data.KPIs.NewMemberOrders)
				assert.True(t, data.WithinCACBenchmark)
				assert.Contains(t, sectionLines(result, "BOTTOM LINE IMPACT"), "Industry benchmark range: $400-800 (WITHIN range)")

				assert.Equal(t, 80.0, data.USSharePct)
				assert.Contains(t, data.Insights, "WARNING: Heavy US market concentration (80% of new member revenue)")
				assert.Equal(t, 0.5, data.SeasonalCV)
			},
		},
		{
			name: "Deve sinalizar CAC abaixo da faixa de referência",
			mutate: func(ds *domain.Dataset) {
				for i, rec := range ds.Marketing {
					if rec.Channel == domain.GoogleAds {
						ds.Marketing[i].Orders *= 10
					}
				}
			},
			check: func(t *testing.T, result *domain.ReportResult, data *ExecutiveData) {
				assert.Equal(t, 73.17, data.KPIs.CostPerOrder)
				assert.False(t, data.WithinCACBenchmark)
			},
		},
		{
			name: "Deve dispensar o alerta de concentração com EUA em 20%",
			mutate: func(ds *domain.Dataset) {
				for i, s := range ds.Regional {
					if s.Region == "US" {
						ds.Regional[i].Region = "CA"
					} else {
						ds.Regional[i].Region = "US"
					}
				}
			},
			check: func(t *testing.T, result *domain.ReportResult, data *ExecutiveData) {
				assert.Equal(t, 20.0, data.USSharePct)
				assert.False(t, containsText(data.Insights, "US market concentration"))
			},
		},
		{
			name: "Deve estimar o ganho de mover 25% da verba do pior canal",
			check: func(t *testing.T, result *domain.ReportResult, data *ExecutiveData) {
				require.Len(t, data.Channels, 2)
				assert.Equal(t, "Google Ads", data.Channels[0].Channel)
				assert.Equal(t, 10.0, data.Channels[0].ROAS)
				assert.Equal(t, 1.0, data.Channels[1].ROAS)
				assert.Equal(t, 6750.0, data.ReallocationRevenue)
				assert.Equal(t, 900.0, data.ROIImprovementPct)
				assert.Contains(t, data.Recommendations, "1. IMMEDIATE: Reallocate 20-30% of FB Ads budget to Google Ads")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ds := newMemberDataset()
			if tt.mutate != nil {
				tt.mutate(ds)
			}

			result, err := ExecutiveReport{}.Build(ds)
			require.NoError(t, err)
			tt.check(t, result, result.Data.(*ExecutiveData))
		})
	}
}

func TestEffectivenessReport(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(ds *domain.Dataset)
		check  func(t *testing.T, result *domain.ReportResult, data *EffectivenessData)
	}{
		{
			name: "Deve correlacionar três meses mesclados",
			check: func(t *testing.T, result *domain.ReportResult, data *EffectivenessData) {
				assert.Equal(t, 3, data.MonthlyDataPoints)
				require.Len(t, data.MonthlyCorrelations, 3)
				assert.Equal(t, spendBookingsCorrelation, data.MonthlyCorrelations[0].Name)
				require.Len(t, data.DailyCorrelations, 2)
				assert.False(t, containsText(sectionLines(result, "TREND COMPARISON ANALYSIS"), "Insufficient data points"))

				require.NotEmpty(t, data.Findings)
				assert.True(t, strings.HasPrefix(data.Findings[0], "[STRONG] correlation between marketing spend"), data.Findings[0])
				assert.True(t, containsText(data.Findings, "[YES] Daily spend"))
				assert.True(t, containsText(data.Recommendations, "EXTEND ANALYSIS PERIOD"))
			},
		},
		{
			name:   "Deve buscar a correlação de investimento pelo nome",
			mutate: flatMarketingSpend,
			check: func(t *testing.T, result *domain.ReportResult, data *EffectivenessData) {
				require.Len(t, data.MonthlyCorrelations, 2)
				for _, c := range data.MonthlyCorrelations {
					assert.NotEqual(t, spendBookingsCorrelation, c.Name)
				}
				assert.False(t, containsText(data.Findings, "correlation between marketing spend"))
				assert.True(t, containsText(data.Findings, "[YES] Daily spend"))
			},
		},
		{
			name: "Deve apontar a diferença de ROAS entre canais",
			check: func(t *testing.T, result *domain.ReportResult, data *EffectivenessData) {
				require.Len(t, data.Channels, 2)
				assert.Equal(t, "Google Ads", data.Channels[0].Channel, "ordenado por investimento")
				assert.Equal(t, 9.0, data.ROASRange)
				assert.True(t, containsText(data.Findings, "[SIGNIFICANT] channel performance differences detected (ROAS range: 9.0x)"))
				assert.True(t, containsText(data.Recommendations, "BUDGET REALLOCATION: Shift budget from FB Ads (ROAS: 1.0x) to Google Ads (ROAS: 10.0x)"))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ds := newMemberDataset()
			if tt.mutate != nil {
				tt.mutate(ds)
			}

			result, err := EffectivenessReport{}.Build(ds)
			require.NoError(t, err)
			tt.check(t, result, result.Data.(*EffectivenessData))
		})
	}
}

func TestEffectivenessWasteDays(t *testing.T) {
	ds := &domain.Dataset{Marketing: []domain.MarketingRecord{
		{Channel: domain.GoogleAds, Month: monthOf2025(time.January), Spend: 1500, Revenue: 6000, Orders: 5, Visitors: 500},
	}}
	newMemberOrders := []int64{5, 4, 3, 2}
	for i := 0; i < 5; i++ {
		d := day(2025, time.January, i+1)
		ds.Daily = append(ds.Daily, domain.DailySale{Date: d, Spend: 100 * float64(i+1), Orders: 1, Bookings: 1000})
		if i < len(newMemberOrders) {
			ds.Regional = append(ds.Regional, domain.RegionalSale{
				Date: d, Region: "US", CustomerType: domain.NewMembers, Orders: newMemberOrders[i], Bookings: 1000 * float64(newMemberOrders[i]),
			})
		}
	}

	result, err := EffectivenessReport{}.Build(ds)
	require.NoError(t, err)
	data := result.Data.(*EffectivenessData)

	t.Run("Deve cruzar o percentil 80 do investimento com o percentil 20 dos novos pedidos", func(t *testing.T) {
		assert.Equal(t, 420.0, data.HighSpendThreshold)
		assert.Equal(t, 1.6, data.LowAcquisitionLimit)
		require.Len(t, data.WasteDays, 1)
		assert.Equal(t, DailyAcquisition{Date: "2025-01-05", Spend: 500, SpendPerNewOrder: 500}, data.WasteDays[0])
	})

	t.Run("Deve dividir o investimento por novos pedidos mais um", func(t *testing.T) {
		assert.Equal(t, 20.0, data.InefficientDaysPct, "só o último dia passa do percentil 90")
		assert.False(t, containsText(data.Recommendations, "OPTIMIZE SPEND TIMING"))
	})

	t.Run("Deve pular as correlações mensais com um único mês", func(t *testing.T) {
		assert.Equal(t, 1, data.MonthlyDataPoints)
		assert.Empty(t, data.MonthlyCorrelations)
		assert.Contains(t, sectionLines(result, "TREND COMPARISON ANALYSIS"), "WARNING: Insufficient data points for meaningful correlation analysis")
		require.Len(t, data.DailyCorrelations, 2)
		assert.Less(t, data.DailyCorrelations[1].R, 0.0)
	})
}

func TestBasicComparisonReport(t *testing.T) {
	ds := &domain.Dataset{
		Daily: []domain.DailySale{
			{Date: day(2025, time.January, 2), Spend: 300, Orders: 2, Bookings: 3000, Visitors: 30},
			{Date: day(2025, time.January, 1), Spend: 100, Orders: 1, Bookings: 1000, Visitors: 10},
		},
	}
	for i := 0; i < 7; i++ {
		m := monthOf2025(time.January + time.Month(i))
		spend := 500.0
		if m.Month() == time.March {
			spend = 0
		}
		ds.Marketing = append(ds.Marketing, domain.MarketingRecord{Channel: domain.GoogleAds, Month: m, Spend: spend})
		ds.Regional = append(ds.Regional,
			domain.RegionalSale{Date: m, Region: "US", CustomerType: domain.NewMembers, Bookings: 1000 * float64(i+1), Orders: 1},
			domain.RegionalSale{Date: m, Region: "US", CustomerType: domain.MemberUpgrades, Bookings: 99999, Orders: 1},
		)
	}

	result, err := BasicComparisonReport{}.Build(ds)
	require.NoError(t, err)
	data := result.Data.(*BasicComparisonData)

	assert.Equal(t, DailyOverview{
		Days: 2, FirstDate: "2025-01-01", LastDate: "2025-01-02",
		AvgDailySpend: 200, AvgDailyOrders: 1.5, AvgDailyBookings: 2000, AvgDailyVisitors: 20,
	}, data.Daily)
	assert.Len(t, data.NewMemberBookings, 7)

	tests := []struct {
		name string
		row  int
		want MonthComparison
	}{
		{"Deve dividir novos membros pelo investimento", 0, MonthComparison{Month: "2025-01", MarketingSpend: 500, NewMemberBookings: 1000, Ratio: 2}},
		{"Deve zerar a razão em mês sem investimento", 2, MonthComparison{Month: "2025-03", NewMemberBookings: 3000}},
		{"Deve parar no sexto mês", 5, MonthComparison{Month: "2025-06", MarketingSpend: 500, NewMemberBookings: 6000, Ratio: 12}},
	}

	require.Len(t, data.Comparison, 6)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, data.Comparison[tt.row])
		})
	}

	require.Len(t, data.ChannelSpend, 1)
	assert.Equal(t, ChannelValue{Channel: "Google Ads", Value: 3000}, data.ChannelSpend[0])
}
