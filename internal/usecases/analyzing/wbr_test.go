package analyzing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vfg2006/marketing-reports/internal/domain"
)

// wbrDataset tem gasto e pedidos constantes por dia (CAC 350) de 01/05 a 13/07/2025
func wbrDataset() *domain.Dataset {
	ds := &domain.Dataset{}
	for d := day(2025, time.May, 1); !d.After(day(2025, time.July, 13)); d = d.AddDate(0, 0, 1) {
		ds.Daily = append(ds.Daily, domain.DailySale{Date: d, Spend: 700, Orders: 2, Bookings: 6000, Visitors: 100})

		switch {
		case d.Month() == time.May:
			ds.Regional = append(ds.Regional,
				domain.RegionalSale{Date: d, Region: "US", CustomerType: domain.NewMembers, Orders: 2},
				domain.RegionalSale{Date: d, Region: "MX", CustomerType: domain.NewMembers, Orders: 1},
			)
		case d.Month() == time.June:
			ds.Regional = append(ds.Regional,
				domain.RegionalSale{Date: d, Region: "US", CustomerType: domain.NewMembers, Orders: 3},
				domain.RegionalSale{Date: d, Region: "CA", CustomerType: domain.NewMembers, Orders: 1},
			)
			if d.Day() >= 10 && d.Day() <= 20 {
				ds.Regional = append(ds.Regional,
					domain.RegionalSale{Date: d, Region: "US", CustomerType: domain.MemberUpgrades, Orders: 1, Bookings: 500},
				)
			}
		case !d.Before(day(2025, time.July, 7)):
			ds.Regional = append(ds.Regional,
				domain.RegionalSale{Date: d, Region: "US", CustomerType: domain.NewMembers, Orders: 2},
				domain.RegionalSale{Date: d, Region: "US", CustomerType: domain.SubscriptionRenewals, Orders: 1, Bookings: 200},
			)
		}
	}
	return ds
}

func TestWBRReport(t *testing.T) {
	report := WBRReport{WeekStart: day(2025, time.July, 7), Month: day(2025, time.June, 1)}

	result, err := report.Build(wbrDataset())
	require.NoError(t, err)
	data := result.Data.(*WBRData)

	t.Run("Deve calcular semanas e meses de referência", func(t *testing.T) {
		assert.Equal(t, PeriodMetrics{Period: "07/07 - 07/13", Spend: 4900, Orders: 14, Bookings: 42000, Visitors: 700, CAC: 350}, data.CurrentWeek)
		assert.Equal(t, "06/30 - 07/06", data.PreviousWeek.Period)
		assert.Equal(t, "June 2025", data.CurrentMonth.Period)
		assert.Equal(t, 21000.0, data.CurrentMonth.Spend)
		assert.Equal(t, int64(60), data.CurrentMonth.Orders)
		assert.Equal(t, "May 2025", data.PreviousMonth.Period)
		assert.Equal(t, int64(62), data.PreviousMonth.Orders)
	})

	t.Run("Deve limitar as tendências de CAC", func(t *testing.T) {
		require.Len(t, data.RecentWeeklyCAC, 8)
		assert.Equal(t, "2025-07-07/2025-07-13", data.RecentWeeklyCAC[7].Week)
		for _, w := range data.RecentWeeklyCAC {
			assert.InDelta(t, 350, w.CAC, 1e-9)
			assert.InDelta(t, 0, w.WoWChange, 1e-9)
		}

		require.Len(t, data.MonthlyCAC, 3)
		assert.Equal(t, "2025-05", data.MonthlyCAC[0].Month)
		assert.Equal(t, 0.0, data.MonthlyCAC[0].MoMChange)
	})

	t.Run("Deve ordenar pedidos e crescimento regional", func(t *testing.T) {
		assert.Equal(t, []string{"US", "MX", "CA"}, data.RegionalOrders.Regions)
		assert.Equal(t, []int64{166, 31, 30}, data.RegionalOrders.Orders)

		require.Len(t, data.RegionalGrowth, 3)
		assert.Equal(t, RegionalGrowth{Region: "CA", Growth: 100, CurrentOrders: 30}, data.RegionalGrowth[0])
		assert.Equal(t, RegionalGrowth{Region: "US", Growth: 45.16, CurrentOrders: 90, PreviousOrders: 62}, data.RegionalGrowth[1])
		assert.Equal(t, RegionalGrowth{Region: "MX", Growth: -100, PreviousOrders: 31}, data.RegionalGrowth[2])
	})

	t.Run("Deve nomear os pedidos pelo papel do mês, não pelo nome do mês", func(t *testing.T) {
		raw, err := json.Marshal(data.RegionalGrowth[1])
		require.NoError(t, err)
		assert.JSONEq(t, `{"region":"US","growth":45.16,"current_orders":90,"previous_orders":62}`, string(raw))
	})

	t.Run("Deve filtrar upgrades e renovações na janela de 30 dias", func(t *testing.T) {
		upgrades := data.UpgradesRenewals.Upgrades
		require.Len(t, upgrades, 6)
		assert.Equal(t, LifecycleDay{Date: "2025-06-15", Orders: 1, Bookings: 500}, upgrades[0])
		assert.Equal(t, "2025-06-20", upgrades[5].Date)
		assert.Len(t, data.UpgradesRenewals.Renewals, 7)
	})

	t.Run("Deve projetar o CAC com elasticidade", func(t *testing.T) {
		require.Len(t, data.ForecastScenarios, 5)
		assert.Equal(t, CACScenario{SpendIncreasePct: 10, NewCAC: 355.25, CACIncreasePct: 1.5}, data.ForecastScenarios[0])
		assert.Equal(t, CACScenario{SpendIncreasePct: 100, NewCAC: 402.5, CACIncreasePct: 15}, data.ForecastScenarios[4])

		require.Len(t, data.WeeklyProjection, 4)
		assert.Equal(t, WeeklyProjection{Week: 1, ProjectedSpend: 5880, ProjectedCAC: 361.9, CACVsCurrent: 3.4}, data.WeeklyProjection[0])
		assert.Equal(t, WeeklyProjection{Week: 4, ProjectedSpend: 5880, ProjectedCAC: 366.1, CACVsCurrent: 4.6}, data.WeeklyProjection[3])
	})

	t.Run("Deve corrigir o CAC usando apenas novos membros", func(t *testing.T) {
		c := data.CACCorrection
		assert.Equal(t, int64(14), c.CurrentWeekNewOrders)
		assert.Equal(t, int64(4), c.PreviousWeekNewOrders, "30/06 tem US e CA")
		assert.Equal(t, int64(21), c.CurrentWeekAllOrders)
		assert.Equal(t, 350.0, c.CurrentWeekCAC)
		assert.Equal(t, 1225.0, c.PreviousWeekCAC)
		assert.Equal(t, 233.33, c.AllOrdersCAC)
		assert.Equal(t, 50.0, c.DifferencePct)
	})

	t.Run("Deve preencher o resumo", func(t *testing.T) {
		assert.Equal(t, RecentSummary{
			CurrentWeekPeriod:   "July 07 - July 13, 2025",
			CurrentMonthName:    "June 2025",
			ComparisonMonthName: "May 2025",
			LatestCompleteWeek:  "2025-07-13",
			AnalysisNote:        wbrAnalysisNote,
		}, data.RecentSummary)
	})
}

func TestWBRReportRequiresReferenceDates(t *testing.T) {
	_, err := WBRReport{}.Build(wbrDataset())
	assert.ErrorIs(t, err, ErrBuildReport)
}
