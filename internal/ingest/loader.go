package ingest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/vfg2006/marketing-reports/internal/domain"
	"github.com/vfg2006/marketing-reports/pkg/log"
)

// Colunas dos CSVs de entrada
const (
	ColChannel            = "Channel"
	ColMonth              = "Month"
	ColSpend              = "Spend"
	ColVisitors           = "Visitors"
	ColAddToCart          = "Last Click Add To Cart"
	ColOrders             = "Last Click Orders"
	ColRevenue            = "Last Click Revenue"
	ColEmailCaptures      = "Last Click Email Captures"
	ColEmailConversions30 = "Email capture conversions 30 day window"
	ColEmailConversions60 = "Email capture conversions 60 day window"

	ColDate         = "Date"
	ColDailySpend   = "Daily Spend"
	ColSalesOrders  = "Orders"
	ColBookings     = "Bookings"
	ColRegion       = "Region"
	ColCustomerType = "Customer Type"
	ColUnits        = "Units"
)

// Paths aponta para os três CSVs; caminhos vazios não são carregados
type Paths struct {
	Marketing     string
	DailySales    string
	RegionalSales string
}

// Loader lê e limpa os CSVs de marketing e vendas
type Loader struct {
	logger log.Logger
}

func NewLoader(logger log.Logger) *Loader {
	if logger == nil {
		logger = log.L
	}
	return &Loader{logger: logger}
}

// LoadDataset carrega em paralelo os arquivos informados em paths
func (l *Loader) LoadDataset(ctx context.Context, paths Paths) (*domain.Dataset, error) {
	ds := &domain.Dataset{LoadedAt: time.Now()}
	var hashes [3]string

	g, ctx := errgroup.WithContext(ctx)

	if paths.Marketing != "" {
		g.Go(func() error {
			return l.loadFile(ctx, paths.Marketing, &hashes[0], func(r io.Reader) error {
				records, err := l.ReadMarketing(r, paths.Marketing)
				ds.Marketing = records
				return err
			})
		})
	}

	if paths.DailySales != "" {
		g.Go(func() error {
			return l.loadFile(ctx, paths.DailySales, &hashes[1], func(r io.Reader) error {
				sales, err := l.ReadDailySales(r, paths.DailySales)
				ds.Daily = sales
				return err
			})
		})
	}

	if paths.RegionalSales != "" {
		g.Go(func() error {
			return l.loadFile(ctx, paths.RegionalSales, &hashes[2], func(r io.Reader) error {
				sales, err := l.ReadRegionalSales(r, paths.RegionalSales)
				ds.Regional = sales
				return err
			})
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	sum := sha256.New()
	for _, h := range hashes {
		sum.Write([]byte(h))
	}
	ds.Fingerprint = hex.EncodeToString(sum.Sum(nil))[:16]

	l.logger.WithFields(log.Fields{
		"report_marketing_rows": len(ds.Marketing),
		"report_daily_rows":     len(ds.Daily),
		"report_regional_rows":  len(ds.Regional),
	}).Info("Dados carregados")

	return ds, nil
}

func (l *Loader) loadFile(ctx context.Context, path string, hash *string, read func(io.Reader) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	f, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(err, "erro ao abrir %s", path)
	}
	defer f.Close()

	h := sha256.New()
	if err := read(io.TeeReader(f, h)); err != nil {
		return err
	}
	*hash = hex.EncodeToString(h.Sum(nil))
	return nil
}

// ReadMarketing lê o CSV mensal por canal
func (l *Loader) ReadMarketing(r io.Reader, name string) ([]domain.MarketingRecord, error) {
	t, err := ReadTable(r, name)
	if err != nil {
		return nil, err
	}
	if err := t.RequireColumns(ColChannel, ColMonth, ColSpend, ColVisitors, ColOrders, ColRevenue); err != nil {
		return nil, err
	}

	records := make([]domain.MarketingRecord, 0, len(t.Rows))
	for i, row := range t.Rows {
		p := l.rowParser(t, row, i)

		month, err := ParseMonth(t.Value(row, ColMonth))
		if err != nil {
			p.skip(ColMonth, err)
			continue
		}

		records = append(records, domain.MarketingRecord{
			Channel:            domain.Channel(t.Value(row, ColChannel)),
			Month:              month,
			Spend:              p.money(ColSpend),
			Visitors:           p.count(ColVisitors),
			AddToCart:          p.count(ColAddToCart),
			Orders:             p.count(ColOrders),
			Revenue:            p.money(ColRevenue),
			EmailCaptures:      p.count(ColEmailCaptures),
			EmailConversions30: p.count(ColEmailConversions30),
			EmailConversions60: p.count(ColEmailConversions60),
		})
	}

	return records, nil
}

// ReadDailySales lê o CSV de vendas diárias
func (l *Loader) ReadDailySales(r io.Reader, name string) ([]domain.DailySale, error) {
	t, err := ReadTable(r, name)
	if err != nil {
		return nil, err
	}
	if err := t.RequireColumns(ColDate, ColDailySpend, ColSalesOrders, ColBookings); err != nil {
		return nil, err
	}

	sales := make([]domain.DailySale, 0, len(t.Rows))
	for i, row := range t.Rows {
		p := l.rowParser(t, row, i)

		date, err := ParseDate(t.Value(row, ColDate))
		if err != nil {
			p.skip(ColDate, err)
			continue
		}

		sales = append(sales, domain.DailySale{
			Date:     date,
			Spend:    p.money(ColDailySpend),
			Orders:   p.count(ColSalesOrders),
			Bookings: p.money(ColBookings),
			Visitors: p.count(ColVisitors),
		})
	}

	return sales, nil
}

// ReadRegionalSales lê o CSV de vendas por região e tipo de cliente
func (l *Loader) ReadRegionalSales(r io.Reader, name string) ([]domain.RegionalSale, error) {
	t, err := ReadTable(r, name)
	if err != nil {
		return nil, err
	}
	if err := t.RequireColumns(ColDate, ColRegion, ColCustomerType, ColBookings, ColSalesOrders); err != nil {
		return nil, err
	}

	sales := make([]domain.RegionalSale, 0, len(t.Rows))
	for i, row := range t.Rows {
		p := l.rowParser(t, row, i)

		date, err := ParseDate(t.Value(row, ColDate))
		if err != nil {
			p.skip(ColDate, err)
			continue
		}

		sales = append(sales, domain.RegionalSale{
			Date:         date,
			Region:       t.Value(row, ColRegion),
			CustomerType: domain.CustomerType(t.Value(row, ColCustomerType)),
			Bookings:     p.money(ColBookings),
			Orders:       p.count(ColSalesOrders),
			Units:        p.count(ColUnits),
		})
	}

	return sales, nil
}

type rowParser struct {
	logger log.Logger
	table  *Table
	row    []string
	line   int
}

func (l *Loader) rowParser(t *Table, row []string, index int) *rowParser {
	// linha 1 é o cabeçalho
	return &rowParser{logger: l.logger, table: t, row: row, line: index + 2}
}

func (p *rowParser) money(column string) float64 {
	raw := p.table.Value(p.row, column)
	v, ok := CleanCurrency(raw)
	if !ok {
		p.warn(column, raw)
	}
	return v
}

func (p *rowParser) count(column string) int64 {
	raw := p.table.Value(p.row, column)
	v, ok := CleanInt(raw)
	if !ok {
		p.warn(column, raw)
	}
	return v
}

func (p *rowParser) warn(column, raw string) {
	p.logger.WithFields(log.Fields{
		"file":   p.table.Name,
		"row":    p.line,
		"column": column,
	}).Warnf("Valor numérico inválido %q, usando 0", raw)
}

func (p *rowParser) skip(column string, err error) {
	p.logger.WithFields(log.Fields{
		"file":   p.table.Name,
		"row":    p.line,
		"column": column,
	}).WithError(err).Warn("Linha ignorada")
}
