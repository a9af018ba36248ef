package report

import (
	"os"
	"path/filepath"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"

	"github.com/vfg2006/marketing-reports/internal/config"
	"github.com/vfg2006/marketing-reports/internal/usecases/analyzing"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	FormatJSON = "json"
	FormatXLSX = "xlsx"
	FormatHTML = "html"
	FormatPDF  = "pdf"
)

// NewWriters cria um gravador para cada formato suportado, todos no mesmo diretório de saída
func NewWriters(output config.Output, pdf config.PDF) []analyzing.Writer {
	return []analyzing.Writer{
		NewJSONWriter(output.Dir),
		NewXLSXWriter(output.Dir),
		NewHTMLWriter(output.Dir),
		NewPDFWriter(output.Dir, pdf),
	}
}

func writeFile(dir, fileName, ext string, data []byte) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", errors.Wrapf(err, "erro ao criar diretório %s", dir)
	}

	path := filepath.Join(dir, fileName+"."+ext)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", errors.Wrapf(err, "erro ao gravar %s", path)
	}
	return path, nil
}
