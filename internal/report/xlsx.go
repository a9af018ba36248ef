package report

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"

	"github.com/vfg2006/marketing-reports/internal/domain"
)

const (
	overviewSheet = "Overview"
	maxSheetName  = 31
)

var sheetNameReplacer = strings.NewReplacer(
	":", " ", "\\", " ", "/", " ", "?", " ", "*", " ", "[", "(", "]", ")",
)

// XLSXWriter grava uma planilha com uma aba de visão geral e uma aba por tabela.
// Tabelas sem título usam o título da seção como nome da aba.
type XLSXWriter struct {
	dir string
}

func NewXLSXWriter(dir string) *XLSXWriter {
	return &XLSXWriter{dir: dir}
}

func (w *XLSXWriter) Format() string { return FormatXLSX }

func (w *XLSXWriter) Write(_ context.Context, result *domain.ReportResult, fileName string) (string, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := buildWorkbook(f, result); err != nil {
		return "", errors.Wrapf(err, "erro ao montar planilha do relatório %s", result.Name)
	}

	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return "", errors.Wrapf(err, "erro ao criar diretório %s", w.dir)
	}

	path := filepath.Join(w.dir, fileName+"."+FormatXLSX)
	if err := f.SaveAs(path); err != nil {
		return "", errors.Wrapf(err, "erro ao gravar %s", path)
	}
	return path, nil
}

func buildWorkbook(f *excelize.File, result *domain.ReportResult) error {
	if err := f.SetSheetName("Sheet1", overviewSheet); err != nil {
		return err
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}

	row := 1
	if err := f.SetCellValue(overviewSheet, "A1", result.Title); err != nil {
		return err
	}
	if err := f.SetCellStyle(overviewSheet, "A1", "A1", bold); err != nil {
		return err
	}
	row++
	if err := f.SetCellValue(overviewSheet, "A2", "Generated "+result.GeneratedAt.Format("2006-01-02 15:04")); err != nil {
		return err
	}
	row += 2

	for _, s := range result.Sections {
		cell, _ := excelize.CoordinatesToCellName(1, row)
		if err := f.SetCellValue(overviewSheet, cell, s.Title); err != nil {
			return err
		}
		if err := f.SetCellStyle(overviewSheet, cell, cell, bold); err != nil {
			return err
		}
		row++
		for _, line := range s.Lines {
			cell, _ := excelize.CoordinatesToCellName(1, row)
			if err := f.SetCellValue(overviewSheet, cell, strings.TrimSpace(line)); err != nil {
				return err
			}
			row++
		}
		row++
	}
	if err := f.SetColWidth(overviewSheet, "A", "A", 100); err != nil {
		return err
	}

	used := map[string]bool{overviewSheet: true}
	n := 0
	for _, s := range result.Sections {
		for _, t := range s.Tables {
			n++
			title := t.Title
			if title == "" {
				title = s.Title
			}
			name := sheetName(title, n, used)
			if _, err := f.NewSheet(name); err != nil {
				return err
			}
			if err := writeSheet(f, name, t, bold); err != nil {
				return err
			}
		}
	}

	f.SetActiveSheet(0)
	return nil
}

func writeSheet(f *excelize.File, sheet string, t *domain.Table, headerStyle int) error {
	header := make([]any, len(t.Headers))
	for i, h := range t.Headers {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}

	if len(t.Headers) > 0 {
		last, _ := excelize.CoordinatesToCellName(len(t.Headers), 1)
		if err := f.SetCellStyle(sheet, "A1", last, headerStyle); err != nil {
			return err
		}
		lastCol, _ := excelize.ColumnNumberToName(len(t.Headers))
		if err := f.SetColWidth(sheet, "A", lastCol, 18); err != nil {
			return err
		}
	}

	for r, row := range t.Rows {
		values := make([]any, len(row))
		for i, cell := range row {
			values[i] = cellValue(cell)
		}
		start, _ := excelize.CoordinatesToCellName(1, r+2)
		if err := f.SetSheetRow(sheet, start, &values); err != nil {
			return err
		}
	}
	return nil
}

// cellValue grava como número as células que são números puros e mantém o texto formatado nas demais
func cellValue(cell string) any {
	if v, err := strconv.ParseFloat(cell, 64); err == nil {
		return v
	}
	return cell
}

// sheetName respeita o limite de 31 caracteres do Excel e evita nomes repetidos
func sheetName(title string, n int, used map[string]bool) string {
	name := strings.TrimSpace(sheetNameReplacer.Replace(title))
	if name == "" {
		name = fmt.Sprintf("Table %d", n)
	}
	name = truncateRunes(name, maxSheetName)

	candidate := name
	for i := 2; used[candidate]; i++ {
		suffix := fmt.Sprintf(" %d", i)
		candidate = truncateRunes(name, maxSheetName-len(suffix)) + suffix
	}
	used[candidate] = true
	return candidate
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
