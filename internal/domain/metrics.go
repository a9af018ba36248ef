package domain

// As funções abaixo retornam ok=false quando o denominador é zero,
// deixando a cargo do relatório decidir entre omitir o valor ou usar 0.

func ratio(numerator, denominator float64) (float64, bool) {
	if denominator == 0 {
		return 0, false
	}
	return numerator / denominator, true
}

// ROAS é receita / investimento
func ROAS(revenue, spend float64) (float64, bool) {
	if spend <= 0 {
		return 0, false
	}
	return revenue / spend, true
}

// CPA é investimento / pedidos
func CPA(spend, orders float64) (float64, bool) {
	return ratio(spend, orders)
}

// ConversionRate é pedidos / visitantes, como fração
func ConversionRate(orders, visitors float64) (float64, bool) {
	return ratio(orders, visitors)
}

// EmailCaptureRate é capturas de e-mail / visitantes, como fração
func EmailCaptureRate(captures, visitors float64) (float64, bool) {
	return ratio(captures, visitors)
}

// CartConversionRate é pedidos / adições ao carrinho
func CartConversionRate(orders, carts float64) (float64, bool) {
	return ratio(orders, carts)
}

// AOV é o ticket médio, receita / pedidos
func AOV(revenue, orders float64) (float64, bool) {
	return ratio(revenue, orders)
}

// CAC é investimento / novos clientes
func CAC(spend, newCustomers float64) (float64, bool) {
	return ratio(spend, newCustomers)
}

func CostPerVisitor(spend, visitors float64) (float64, bool) {
	return ratio(spend, visitors)
}

// OrZero descarta o indicador ok devolvendo 0 quando a métrica é indefinida
func OrZero(v float64, ok bool) float64 {
	if !ok {
		return 0
	}
	return v
}

// PctChange é a variação percentual de previous para current
func PctChange(previous, current float64) (float64, bool) {
	if previous == 0 {
		return 0, false
	}
	return (current - previous) / previous * 100, true
}

// Totals acumula somas de linhas de marketing
type Totals struct {
	Rows               int     `json:"rows"`
	Spend              float64 `json:"spend"`
	Visitors           float64 `json:"visitors"`
	AddToCart          float64 `json:"add_to_cart"`
	Orders             float64 `json:"orders"`
	Revenue            float64 `json:"revenue"`
	EmailCaptures      float64 `json:"email_captures"`
	EmailConversions30 float64 `json:"email_conversions_30d"`
	EmailConversions60 float64 `json:"email_conversions_60d"`
}

func (t *Totals) Add(r MarketingRecord) {
	t.Rows++
	t.Spend += r.Spend
	t.Visitors += float64(r.Visitors)
	t.AddToCart += float64(r.AddToCart)
	t.Orders += float64(r.Orders)
	t.Revenue += r.Revenue
	t.EmailCaptures += float64(r.EmailCaptures)
	t.EmailConversions30 += float64(r.EmailConversions30)
	t.EmailConversions60 += float64(r.EmailConversions60)
}

func (t Totals) ROAS() (float64, bool)           { return ROAS(t.Revenue, t.Spend) }
func (t Totals) CPA() (float64, bool)            { return CPA(t.Spend, t.Orders) }
func (t Totals) ConversionRate() (float64, bool) { return ConversionRate(t.Orders, t.Visitors) }
func (t Totals) AOV() (float64, bool)            { return AOV(t.Revenue, t.Orders) }
func (t Totals) EmailCaptureRate() (float64, bool) {
	return EmailCaptureRate(t.EmailCaptures, t.Visitors)
}

// SumMarketing soma um conjunto de linhas
func SumMarketing(records []MarketingRecord) Totals {
	var t Totals
	for _, r := range records {
		t.Add(r)
	}
	return t
}

// SalesTotals acumula somas de vendas diárias ou regionais
type SalesTotals struct {
	Days     int     `json:"days"`
	Spend    float64 `json:"spend"`
	Orders   float64 `json:"orders"`
	Bookings float64 `json:"bookings"`
	Visitors float64 `json:"visitors"`
	Units    float64 `json:"units"`
}

func (t *SalesTotals) AddDaily(s DailySale) {
	t.Days++
	t.Spend += s.Spend
	t.Orders += float64(s.Orders)
	t.Bookings += s.Bookings
	t.Visitors += float64(s.Visitors)
}

func (t *SalesTotals) AddRegional(s RegionalSale) {
	t.Days++
	t.Orders += float64(s.Orders)
	t.Bookings += s.Bookings
	t.Units += float64(s.Units)
}

// CAC das vendas diárias usa todos os pedidos do período
func (t SalesTotals) CAC() (float64, bool) {
	return CAC(t.Spend, t.Orders)
}
