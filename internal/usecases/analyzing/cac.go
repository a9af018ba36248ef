package analyzing

import (
	"github.com/vfg2006/marketing-reports/internal/domain"
	"github.com/vfg2006/marketing-reports/pkg/utils"
)

// Faixas de ticket médio usadas para estimar quantos pedidos são de novos clientes
const (
	newCustomerAOV   = 3000
	mixedCustomerAOV = 1000
	mixedNewShare    = 0.5
	lowAOVNewShare   = 0.1
)

// EstimateNewCustomers estima novos clientes de uma linha pelo ticket médio:
// acima de $3,000 todos os pedidos, acima de $1,000 metade, abaixo disso 10%
func EstimateNewCustomers(r domain.MarketingRecord) float64 {
	aov := domain.OrZero(r.AOV())
	orders := float64(r.Orders)
	switch {
	case aov > newCustomerAOV:
		return orders
	case aov > mixedCustomerAOV:
		return orders * mixedNewShare
	default:
		return orders * lowAOVNewShare
	}
}

// CACReport estima o custo de aquisição por canal e por mês
type CACReport struct{}

type ChannelCAC struct {
	Channel      string   `json:"channel"`
	Spend        float64  `json:"spend"`
	Orders       float64  `json:"orders"`
	Revenue      float64  `json:"revenue"`
	NewCustomers float64  `json:"estimated_new_customers"`
	AOV          float64  `json:"aov"`
	CAC          *float64 `json:"cac"`
}

type MonthCAC struct {
	Month        string  `json:"month"`
	Spend        float64 `json:"spend"`
	NewCustomers float64 `json:"estimated_new_customers"`
	CAC          float64 `json:"cac"`
}

type CACData struct {
	Channels          []ChannelCAC `json:"channels"`
	Monthly           []MonthCAC   `json:"monthly"`
	TotalSpend        float64      `json:"total_spend"`
	TotalNewCustomers float64      `json:"total_new_customers"`
	BlendedCAC        float64      `json:"blended_cac"`
}

func (CACReport) Name() string           { return "cac" }
func (CACReport) Title() string          { return "CAC Analysis" }
func (CACReport) Sources() domain.Source { return domain.SourceMarketing }

func (r CACReport) Build(ds *domain.Dataset) (*domain.ReportResult, error) {
	if !ds.HasMarketing() {
		return nil, NewReportError(ErrNoData, r.Name(), "marketing data is empty")
	}

	result := domain.NewReportResult(r.Name(), r.Title())
	data := &CACData{}

	newByChannel := map[domain.Channel]float64{}
	newByMonth := map[string]float64{}
	for _, rec := range ds.Marketing {
		n := EstimateNewCustomers(rec)
		newByChannel[rec.Channel] += n
		newByMonth[rec.MonthKey()] += n
		data.TotalSpend += rec.Spend
		data.TotalNewCustomers += n
	}

	totals := domain.GroupByChannel(ds.Marketing)
	sec := result.Section("CAC ANALYSIS BY CHANNEL")
	sec.Printf("Channel Performance:")
	for _, ch := range ds.Channels() {
		if !ch.IsPaid() {
			continue
		}
		t := totals[ch]
		c := ChannelCAC{
			Channel:      ch.String(),
			Spend:        round2(t.Spend),
			Orders:       t.Orders,
			Revenue:      round2(t.Revenue),
			NewCustomers: round2(newByChannel[ch]),
			AOV:          round2(domain.OrZero(t.AOV())),
		}
		cacText := "n/a"
		if cac, ok := domain.CAC(t.Spend, newByChannel[ch]); ok {
			v := round2(cac)
			c.CAC = &v
			cacText = utils.Money0(cac)
		}
		data.Channels = append(data.Channels, c)

		sec.Printf("")
		sec.Printf("%s:", c.Channel)
		sec.Printf("  Total Spend: %s", utils.Money0(c.Spend))
		sec.Printf("  Est. New Customers: %.0f", c.NewCustomers)
		sec.Printf("  CAC: %s", cacText)
		sec.Printf("  AOV: %s", utils.Money0(c.AOV))
	}

	keys, months := domain.GroupByMonth(ds.Marketing)
	trend := result.Section("MONTHLY CAC TREND")
	for _, key := range keys {
		cac, ok := domain.CAC(months[key].Spend, newByMonth[key])
		if !ok {
			continue
		}
		m := MonthCAC{Month: key, Spend: round2(months[key].Spend), NewCustomers: round2(newByMonth[key]), CAC: round2(cac)}
		data.Monthly = append(data.Monthly, m)
		trend.Printf("%s: CAC = %s (%.0f new customers)", m.Month, utils.Money0(m.CAC), m.NewCustomers)
	}

	data.BlendedCAC = round2(utils.SafeDiv(data.TotalSpend, data.TotalNewCustomers))
	data.TotalSpend = round2(data.TotalSpend)
	data.TotalNewCustomers = round2(data.TotalNewCustomers)

	overall := result.Section("OVERALL METRICS")
	overall.Printf("Total Marketing Spend: %s", utils.Money0(data.TotalSpend))
	overall.Printf("Estimated New Customers: %.0f", data.TotalNewCustomers)
	overall.Printf("Overall Blended CAC: %s", utils.Money0(data.BlendedCAC))

	result.Data = data
	return result, nil
}
