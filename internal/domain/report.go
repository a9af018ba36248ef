package domain

import (
	"fmt"
	"time"
)

// ReportResult é a saída de um relatório: seções para impressão e Data para exportação em JSON
type ReportResult struct {
	Name        string     `json:"name"`
	Title       string     `json:"title"`
	GeneratedAt time.Time  `json:"generated_at"`
	Sections    []*Section `json:"sections"`
	Data        any        `json:"data,omitempty"`
}

func NewReportResult(name, title string) *ReportResult {
	return &ReportResult{Name: name, Title: title, GeneratedAt: time.Now()}
}

// Section adiciona uma nova seção ao resultado
func (r *ReportResult) Section(title string) *Section {
	s := &Section{Title: title}
	r.Sections = append(r.Sections, s)
	return s
}

// Tables retorna todas as tabelas do resultado, na ordem das seções
func (r *ReportResult) Tables() []*Table {
	var out []*Table
	for _, s := range r.Sections {
		out = append(out, s.Tables...)
	}
	return out
}

type Section struct {
	Title  string   `json:"title"`
	Lines  []string `json:"lines,omitempty"`
	Tables []*Table `json:"tables,omitempty"`
}

// Printf adiciona uma linha de texto à seção
func (s *Section) Printf(format string, args ...any) {
	s.Lines = append(s.Lines, fmt.Sprintf(format, args...))
}

// Table adiciona uma tabela à seção
func (s *Section) Table(title string, headers ...string) *Table {
	t := &Table{Title: title, Headers: headers}
	s.Tables = append(s.Tables, t)
	return t
}

type Table struct {
	Title   string     `json:"title,omitempty"`
	Headers []string   `json:"headers"`
	Rows    [][]string `json:"rows"`
}

func (t *Table) Add(cells ...string) {
	t.Rows = append(t.Rows, cells)
}
