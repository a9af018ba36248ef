package analyzing

import (
	"context"

	"github.com/vfg2006/marketing-reports/internal/domain"
)

// Report é um relatório calculado sobre um Dataset já carregado
type Report interface {
	// Name é o identificador usado na CLI, na API e nos snapshots
	Name() string
	Title() string
	// Sources indica quais CSVs o relatório precisa
	Sources() domain.Source
	Build(ds *domain.Dataset) (*domain.ReportResult, error)
}

// FileReport é implementado por relatórios com nome de arquivo JSON fixo
type FileReport interface {
	OutputFile() string
}

//go:generate mockgen -source=interfaces.go -destination=mocks/interfaces.go -package=mocks

// DatasetLoader carrega os CSVs necessários para um conjunto de fontes
type DatasetLoader interface {
	Load(ctx context.Context, sources domain.Source) (*domain.Dataset, error)
}

// Writer grava o resultado de um relatório em um formato de saída
type Writer interface {
	Format() string
	Write(ctx context.Context, result *domain.ReportResult, fileName string) (string, error)
}

// Runner é a interface usada pela API e pelo agendador
type Runner interface {
	Reports() []Report
	Run(ctx context.Context, names []string, opts RunOptions) ([]*RunOutcome, error)
}
