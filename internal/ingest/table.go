package ingest

import (
	"encoding/csv"
	"io"
	"strings"

	"github.com/pkg/errors"
)

// ErrMissingColumn indica que o CSV não possui uma coluna obrigatória
var ErrMissingColumn = errors.New("coluna obrigatória ausente")

// Table é um CSV carregado em memória com acesso às colunas pelo nome do cabeçalho
type Table struct {
	Name    string
	Columns []string
	Rows    [][]string
	index   map[string]int
}

// ReadTable lê um CSV com cabeçalho. Remove BOM e espaços dos nomes de coluna.
func ReadTable(r io.Reader, name string) (*Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, errors.Errorf("%s: arquivo vazio", name)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "%s: erro ao ler cabeçalho", name)
	}

	t := &Table{Name: name, index: make(map[string]int, len(header))}
	for i, col := range header {
		col = normalizeColumn(col)
		t.Columns = append(t.Columns, col)
		t.index[strings.ToLower(col)] = i
	}

	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrapf(err, "%s: erro ao ler linha %d", name, len(t.Rows)+2)
		}
		if isBlank(row) {
			continue
		}
		t.Rows = append(t.Rows, row)
	}

	return t, nil
}

func normalizeColumn(col string) string {
	return strings.TrimSpace(strings.TrimPrefix(col, "\ufeff"))
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// RequireColumns falha com ErrMissingColumn se alguma coluna não existir
func (t *Table) RequireColumns(columns ...string) error {
	var missing []string
	for _, col := range columns {
		if !t.Has(col) {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return errors.Wrapf(ErrMissingColumn, "%s: %s", t.Name, strings.Join(missing, ", "))
	}
	return nil
}

// Has indica se a coluna existe, ignorando maiúsculas/minúsculas
func (t *Table) Has(column string) bool {
	_, ok := t.index[strings.ToLower(column)]
	return ok
}

// Value retorna a célula da coluna na linha, ou "" se ausente
func (t *Table) Value(row []string, column string) string {
	i, ok := t.index[strings.ToLower(column)]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}
