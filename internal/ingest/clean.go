package ingest

import (
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

var currencyReplacer = strings.NewReplacer("$", "", ",", "", `"`, "", " ", "", "\u00a0", "")

// CleanString remove símbolo de moeda, separador de milhar, aspas e espaços.
// Aplicar duas vezes produz o mesmo resultado que aplicar uma.
func CleanString(raw string) string {
	return currencyReplacer.Replace(strings.TrimSpace(raw))
}

// CleanCurrency converte "$1,234.50" em 1234.5.
// Vazio e "-" valem 0; valores malformados retornam (0, false).
func CleanCurrency(raw string) (float64, bool) {
	d, ok := cleanDecimal(raw)
	if !ok {
		return 0, false
	}
	f, _ := d.Float64()
	return f, true
}

// CleanInt converte contagens como "1,234" ou "12.0", truncando casas decimais
func CleanInt(raw string) (int64, bool) {
	d, ok := cleanDecimal(raw)
	if !ok {
		return 0, false
	}
	return d.IntPart(), true
}

func cleanDecimal(raw string) (decimal.Decimal, bool) {
	s := CleanString(raw)
	if s == "" || s == "-" {
		return decimal.Zero, true
	}

	// contabilidade: (123.45) é negativo
	negative := strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")")
	if negative {
		s = strings.TrimSuffix(strings.TrimPrefix(s, "("), ")")
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	if negative {
		d = d.Neg()
	}
	return d, true
}

var monthLayouts = []string{
	"1/2/2006 15:04",
	"1/2/2006 15:04:05",
	"1/2/2006",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"2006-01",
}

var dateLayouts = []string{
	"1/2/2006",
	"2006-01-02",
	"1/2/2006 15:04",
	"1/2/2006 15:04:05",
	"2006-01-02 15:04:05",
}

// ParseMonth interpreta a coluna Month do CSV de marketing e retorna o primeiro dia do mês
func ParseMonth(raw string) (time.Time, error) {
	t, err := parseWithLayouts(raw, monthLayouts)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC), nil
}

// ParseDate interpreta as colunas Date dos CSVs de vendas, descartando o horário
func ParseDate(raw string) (time.Time, error) {
	t, err := parseWithLayouts(raw, dateLayouts)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
}

func parseWithLayouts(raw string, layouts []string) (time.Time, error) {
	s := strings.TrimSpace(raw)
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, errors.Errorf("data em formato desconhecido: %q", raw)
}
