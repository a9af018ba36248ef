package domain

import (
	"time"

	"github.com/vfg2006/marketing-reports/pkg/utils"
)

// MarketingRecord é uma linha canal/mês do CSV de marketing
type MarketingRecord struct {
	Channel            Channel   `json:"channel"`
	Month              time.Time `json:"month"`
	Spend              float64   `json:"spend"`
	Visitors           int64     `json:"visitors"`
	AddToCart          int64     `json:"add_to_cart"`
	Orders             int64     `json:"orders"`
	Revenue            float64   `json:"revenue"`
	EmailCaptures      int64     `json:"email_captures"`
	EmailConversions30 int64     `json:"email_conversions_30d"`
	EmailConversions60 int64     `json:"email_conversions_60d"`
}

// MonthKey retorna o mês no formato yyyy-mm
func (r MarketingRecord) MonthKey() string {
	return utils.MonthKey(r.Month)
}

func (r MarketingRecord) ROAS() (float64, bool) {
	return ROAS(r.Revenue, r.Spend)
}

func (r MarketingRecord) CPA() (float64, bool) {
	return CPA(r.Spend, float64(r.Orders))
}

func (r MarketingRecord) ConversionRate() (float64, bool) {
	return ConversionRate(float64(r.Orders), float64(r.Visitors))
}

func (r MarketingRecord) EmailCaptureRate() (float64, bool) {
	return EmailCaptureRate(float64(r.EmailCaptures), float64(r.Visitors))
}

func (r MarketingRecord) AOV() (float64, bool) {
	return AOV(r.Revenue, float64(r.Orders))
}

// HasCartAnomaly indica mais pedidos do que adições ao carrinho, sinal de falha de rastreamento
func (r MarketingRecord) HasCartAnomaly() bool {
	return r.Orders > r.AddToCart
}

// DailySale é uma linha do CSV de vendas diárias
type DailySale struct {
	Date     time.Time `json:"date"`
	Spend    float64   `json:"spend"`
	Orders   int64     `json:"orders"`
	Bookings float64   `json:"bookings"`
	Visitors int64     `json:"visitors"`
}

// RegionalSale é uma linha do CSV de vendas por região e tipo de cliente
type RegionalSale struct {
	Date         time.Time    `json:"date"`
	Region       string       `json:"region"`
	CustomerType CustomerType `json:"customer_type"`
	Bookings     float64      `json:"bookings"`
	Orders       int64        `json:"orders"`
	Units        int64        `json:"units"`
}

// IsNewMember indica vendas para novos membros
func (r RegionalSale) IsNewMember() bool {
	return r.CustomerType == NewMembers
}
