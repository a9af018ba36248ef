package analyzing

import (
	"time"

	"github.com/vfg2006/marketing-reports/internal/domain"
)

func month(i int) time.Time {
	return time.Date(2024, time.July, 1, 0, 0, 0, 0, time.UTC).AddDate(0, i, 0)
}

func day(year int, m time.Month, d int) time.Time {
	return time.Date(year, m, d, 0, 0, 0, 0, time.UTC)
}

// fixtureDataset gera doze meses de marketing (jul/2024 a jun/2025) e vendas diárias e regionais
// de jan/2025 a jul/2025 com valores determinísticos
func fixtureDataset() *domain.Dataset {
	ds := &domain.Dataset{Fingerprint: "fixture"}

	for i := 0; i < 12; i++ {
		google := domain.MarketingRecord{
			Channel:            domain.GoogleAds,
			Month:              month(i),
			Spend:              10000 + 500*float64(i),
			Visitors:           int64(5000 + 100*i),
			AddToCart:          int64(60 + i),
			Orders:             int64(20 + i),
			EmailCaptures:      int64(400 + 5*i),
			EmailConversions30: int64(20 + i%4),
			EmailConversions60: int64(30 + i%4),
		}
		google.Revenue = float64(google.Orders)*4500 + 1000*float64(i%3)

		youtube := domain.MarketingRecord{
			Channel:            domain.YouTubeAds,
			Month:              month(i),
			Spend:              8000 + 300*float64(i%4),
			Visitors:           int64(4000 + 50*i),
			AddToCart:          10,
			Orders:             int64(3 + i%2),
			EmailCaptures:      int64(200 + 10*i),
			EmailConversions30: int64(5 + i%3),
			EmailConversions60: int64(9 + i%3),
		}
		youtube.Revenue = float64(youtube.Orders) * 3000

		facebook := domain.MarketingRecord{
			Channel:            domain.FacebookAds,
			Month:              month(i),
			Spend:              6000 + 200*float64(i),
			Visitors:           int64(3000 + 80*i),
			AddToCart:          8,
			Orders:             int64(2 + i%3),
			EmailCaptures:      150,
			EmailConversions30: 4,
			EmailConversions60: 6,
		}
		facebook.Revenue = float64(facebook.Orders) * 2500

		organic := domain.MarketingRecord{
			Channel:            domain.OrganicDirect,
			Month:              month(i),
			Visitors:           int64(20000 + 500*i),
			AddToCart:          int64(100 + i),
			Orders:             int64(50 + 2*i),
			EmailCaptures:      900,
			EmailConversions30: 30,
			EmailConversions60: 45,
		}
		organic.Revenue = float64(organic.Orders) * 4000
		if i == 5 {
			organic.AddToCart = 10
		}

		ds.Marketing = append(ds.Marketing, google, youtube, facebook, organic)
	}

	start := day(2025, time.January, 1)
	end := day(2025, time.July, 20)
	for d, n := start, 0; !d.After(end); d, n = d.AddDate(0, 0, 1), n+1 {
		orders := int64(4 + n%3)
		ds.Daily = append(ds.Daily, domain.DailySale{
			Date:     d,
			Spend:    1000 + 10*float64(n%7),
			Orders:   orders,
			Bookings: float64(orders) * 3000,
			Visitors: 3000,
		})

		ds.Regional = append(ds.Regional,
			domain.RegionalSale{Date: d, Region: "US", CustomerType: domain.NewMembers, Orders: 3, Units: 3, Bookings: 9000},
			domain.RegionalSale{Date: d, Region: "US", CustomerType: domain.MemberUpgrades, Orders: 1, Units: 1, Bookings: 800},
			domain.RegionalSale{Date: d, Region: "US", CustomerType: domain.SubscriptionRenewals, Orders: 2, Units: 2, Bookings: 600},
		)
		if n%2 == 0 {
			ds.Regional = append(ds.Regional,
				domain.RegionalSale{Date: d, Region: "CA", CustomerType: domain.NewMembers, Orders: 1, Units: 1, Bookings: 2800},
			)
		}
	}

	return ds
}
