package ingest

import (
	"context"

	"github.com/vfg2006/marketing-reports/internal/config"
	"github.com/vfg2006/marketing-reports/internal/domain"
)

// PathsFromConfig monta os caminhos dos CSVs a partir da configuração
func PathsFromConfig(cfg config.Data) Paths {
	return Paths{
		Marketing:     cfg.MarketingPath(),
		DailySales:    cfg.DailySalesPath(),
		RegionalSales: cfg.RegionalSalesPath(),
	}
}

// SourceLoader lê somente os arquivos das fontes pedidas
type SourceLoader struct {
	loader *Loader
	paths  Paths
}

func NewSourceLoader(loader *Loader, paths Paths) *SourceLoader {
	return &SourceLoader{loader: loader, paths: paths}
}

func (s *SourceLoader) Load(ctx context.Context, sources domain.Source) (*domain.Dataset, error) {
	var paths Paths
	if sources.Has(domain.SourceMarketing) {
		paths.Marketing = s.paths.Marketing
	}
	if sources.Has(domain.SourceDailySales) {
		paths.DailySales = s.paths.DailySales
	}
	if sources.Has(domain.SourceRegionalSales) {
		paths.RegionalSales = s.paths.RegionalSales
	}
	return s.loader.LoadDataset(ctx, paths)
}
