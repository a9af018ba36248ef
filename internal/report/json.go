package report

import (
	"context"

	"github.com/pkg/errors"

	"github.com/vfg2006/marketing-reports/internal/domain"
)

// JSONWriter grava result.Data; relatórios sem Data gravam as seções
type JSONWriter struct {
	dir string
}

func NewJSONWriter(dir string) *JSONWriter {
	return &JSONWriter{dir: dir}
}

func (w *JSONWriter) Format() string { return FormatJSON }

func (w *JSONWriter) Write(_ context.Context, result *domain.ReportResult, fileName string) (string, error) {
	var payload any = result
	if result.Data != nil {
		payload = result.Data
	}

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return "", errors.Wrapf(err, "erro ao serializar relatório %s", result.Name)
	}

	return writeFile(w.dir, fileName, FormatJSON, data)
}
