package domain

import (
	"sort"
	"time"

	"github.com/vfg2006/marketing-reports/pkg/utils"
)

// Dataset reúne as três fontes de dados de uma execução
type Dataset struct {
	Marketing   []MarketingRecord
	Daily       []DailySale
	Regional    []RegionalSale
	Fingerprint string
	LoadedAt    time.Time
}

// HasMarketing, HasDaily e HasRegional indicam quais arquivos foram carregados
func (d *Dataset) HasMarketing() bool { return len(d.Marketing) > 0 }
func (d *Dataset) HasDaily() bool     { return len(d.Daily) > 0 }
func (d *Dataset) HasRegional() bool  { return len(d.Regional) > 0 }

// MarketingWhere filtra as linhas de marketing
func (d *Dataset) MarketingWhere(keep func(MarketingRecord) bool) []MarketingRecord {
	out := make([]MarketingRecord, 0, len(d.Marketing))
	for _, r := range d.Marketing {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}

// PaidRecords retorna as linhas de canais pagos
func (d *Dataset) PaidRecords() []MarketingRecord {
	return d.MarketingWhere(func(r MarketingRecord) bool { return r.Channel.IsPaid() })
}

// Channels retorna os canais presentes, na ordem padrão
func (d *Dataset) Channels() []Channel {
	return ChannelsOf(d.Marketing)
}

// ChannelsOf retorna os canais distintos de records, na ordem padrão
func ChannelsOf(records []MarketingRecord) []Channel {
	seen := map[Channel]bool{}
	var out []Channel
	for _, r := range records {
		if !seen[r.Channel] {
			seen[r.Channel] = true
			out = append(out, r.Channel)
		}
	}
	SortChannels(out)
	return out
}

// GroupByChannel soma as linhas por canal
func GroupByChannel(records []MarketingRecord) map[Channel]Totals {
	out := map[Channel]Totals{}
	for _, r := range records {
		t := out[r.Channel]
		t.Add(r)
		out[r.Channel] = t
	}
	return out
}

// RecordsByChannel agrupa as linhas por canal preservando a ordem por mês
func RecordsByChannel(records []MarketingRecord) map[Channel][]MarketingRecord {
	out := map[Channel][]MarketingRecord{}
	for _, r := range records {
		out[r.Channel] = append(out[r.Channel], r)
	}
	for ch := range out {
		rows := out[ch]
		sort.SliceStable(rows, func(i, j int) bool { return rows[i].Month.Before(rows[j].Month) })
	}
	return out
}

// GroupByMonth soma as linhas por mês (yyyy-mm) e retorna as chaves ordenadas
func GroupByMonth(records []MarketingRecord) ([]string, map[string]Totals) {
	out := map[string]Totals{}
	for _, r := range records {
		key := r.MonthKey()
		t := out[key]
		t.Add(r)
		out[key] = t
	}
	return SortedKeys(out), out
}

// GroupByCalendarMonth agrupa as linhas pelo número do mês (1-12)
func GroupByCalendarMonth(records []MarketingRecord) map[time.Month][]MarketingRecord {
	out := map[time.Month][]MarketingRecord{}
	for _, r := range records {
		out[r.Month.Month()] = append(out[r.Month.Month()], r)
	}
	return out
}

// DailyByMonth soma as vendas diárias por mês
func DailyByMonth(sales []DailySale) ([]string, map[string]SalesTotals) {
	out := map[string]SalesTotals{}
	for _, s := range sales {
		key := utils.MonthKey(s.Date)
		t := out[key]
		t.AddDaily(s)
		out[key] = t
	}
	return SortedKeys(out), out
}

// DailyByWeek soma as vendas diárias por semana de segunda a domingo
func DailyByWeek(sales []DailySale) ([]string, map[string]SalesTotals) {
	out := map[string]SalesTotals{}
	for _, s := range sales {
		key := utils.WeekKey(s.Date)
		t := out[key]
		t.AddDaily(s)
		out[key] = t
	}
	return SortedKeys(out), out
}

// DailyBetween soma as vendas diárias entre start e end, inclusive
func DailyBetween(sales []DailySale, start, end time.Time) SalesTotals {
	var t SalesTotals
	for _, s := range sales {
		if utils.InRange(s.Date, start, end) {
			t.AddDaily(s)
		}
	}
	return t
}

// RegionalWhere filtra as vendas regionais
func RegionalWhere(sales []RegionalSale, keep func(RegionalSale) bool) []RegionalSale {
	out := make([]RegionalSale, 0, len(sales))
	for _, s := range sales {
		if keep(s) {
			out = append(out, s)
		}
	}
	return out
}

// RegionalByKey soma as vendas regionais por uma chave arbitrária
func RegionalByKey(sales []RegionalSale, key func(RegionalSale) string) ([]string, map[string]SalesTotals) {
	out := map[string]SalesTotals{}
	for _, s := range sales {
		k := key(s)
		t := out[k]
		t.AddRegional(s)
		out[k] = t
	}
	return SortedKeys(out), out
}

// SortedKeys retorna as chaves de m em ordem crescente
func SortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Source identifica um dos arquivos de entrada
type Source int

const (
	SourceMarketing Source = 1 << iota
	SourceDailySales
	SourceRegionalSales
)

// Has indica se s inclui other
func (s Source) Has(other Source) bool {
	return s&other != 0
}

// Names lista as fontes incluídas, na ordem marketing, daily_sales, regional_sales
func (s Source) Names() []string {
	var names []string
	if s.Has(SourceMarketing) {
		names = append(names, "marketing")
	}
	if s.Has(SourceDailySales) {
		names = append(names, "daily_sales")
	}
	if s.Has(SourceRegionalSales) {
		names = append(names, "regional_sales")
	}
	return names
}
