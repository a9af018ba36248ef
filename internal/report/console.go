package report

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/vfg2006/marketing-reports/internal/domain"
)

const ruleWidth = 80

// Print escreve o relatório como texto, com as tabelas alinhadas por coluna
func Print(w io.Writer, result *domain.ReportResult) error {
	_, err := io.WriteString(w, Text(result))
	return err
}

// Text é a versão em texto do relatório, usada pela CLI e por ?format=text
func Text(result *domain.ReportResult) string {
	var b strings.Builder

	rule := strings.Repeat("=", ruleWidth)
	fmt.Fprintln(&b, rule)
	fmt.Fprintln(&b, strings.ToUpper(result.Title))
	fmt.Fprintln(&b, rule)

	for _, s := range result.Sections {
		fmt.Fprintln(&b)
		if s.Title != "" {
			fmt.Fprintln(&b, strings.ToUpper(s.Title))
			fmt.Fprintln(&b, strings.Repeat("-", utf8.RuneCountInString(s.Title)))
		}
		for _, line := range s.Lines {
			fmt.Fprintln(&b, line)
		}
		for _, t := range s.Tables {
			writeTable(&b, t)
		}
	}

	return b.String()
}

func writeTable(b *strings.Builder, t *domain.Table) {
	fmt.Fprintln(b)
	if t.Title != "" {
		fmt.Fprintln(b, t.Title+":")
	}

	widths := make([]int, len(t.Headers))
	for i, h := range t.Headers {
		widths[i] = utf8.RuneCountInString(h)
	}
	for _, row := range t.Rows {
		for i, cell := range row {
			if i >= len(widths) {
				widths = append(widths, 0)
			}
			widths[i] = max(widths[i], utf8.RuneCountInString(cell))
		}
	}

	writeRow(b, t.Headers, widths)
	sep := make([]string, len(widths))
	for i, w := range widths {
		sep[i] = strings.Repeat("-", w)
	}
	writeRow(b, sep, widths)
	for _, row := range t.Rows {
		writeRow(b, row, widths)
	}
}

// writeRow alinha a primeira coluna à esquerda e as demais à direita
func writeRow(b *strings.Builder, cells []string, widths []int) {
	parts := make([]string, len(widths))
	for i, w := range widths {
		cell := ""
		if i < len(cells) {
			cell = cells[i]
		}
		pad := strings.Repeat(" ", w-utf8.RuneCountInString(cell))
		if i == 0 {
			parts[i] = cell + pad
		} else {
			parts[i] = pad + cell
		}
	}
	fmt.Fprintln(b, strings.TrimRight(strings.Join(parts, "  "), " "))
}
