package report

import (
	"bytes"
	"context"
	"html/template"

	"github.com/pkg/errors"

	"github.com/vfg2006/marketing-reports/internal/domain"
)

var pageTemplate = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
@page { size: A4 portrait; margin: 14mm 12mm 18mm 12mm; }
body { font-family: Helvetica, Arial, sans-serif; font-size: 11px; color: #222; margin: 0; }
h1 { font-size: 20px; border-bottom: 2px solid #333; padding-bottom: 4px; margin-bottom: 2px; }
h2 { font-size: 15px; margin: 18px 0 6px; page-break-after: avoid; }
h3 { font-size: 12px; margin: 10px 0 4px; page-break-after: avoid; }
p.meta { color: #666; margin-top: 0; }
p.line { margin: 2px 0; white-space: pre-wrap; }
table { border-collapse: collapse; width: 100%; margin: 4px 0 12px; }
thead { display: table-header-group; }
tr { page-break-inside: avoid; }
th, td { border: 1px solid #ccc; padding: 3px 6px; text-align: right; }
th:first-child, td:first-child { text-align: left; }
th { background: #f0f0f0; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
<p class="meta">Generated {{.GeneratedAt.Format "2006-01-02 15:04"}}</p>
{{- range .Sections}}
<section>
{{- if .Title}}
<h2>{{.Title}}</h2>
{{- end}}
{{- range .Lines}}
<p class="line">{{.}}</p>
{{- end}}
{{- range .Tables}}
{{- if .Title}}
<h3>{{.Title}}</h3>
{{- end}}
<table>
<thead><tr>{{range .Headers}}<th>{{.}}</th>{{end}}</tr></thead>
<tbody>
{{- range .Rows}}
<tr>{{range .}}<td>{{.}}</td>{{end}}</tr>
{{- end}}
</tbody>
</table>
{{- end}}
</section>
{{- end}}
</body>
</html>
`))

// RenderHTML gera a página do relatório, preparada para impressão em A4 retrato
func RenderHTML(result *domain.ReportResult) ([]byte, error) {
	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, result); err != nil {
		return nil, errors.Wrapf(err, "erro ao renderizar HTML do relatório %s", result.Name)
	}
	return buf.Bytes(), nil
}

type HTMLWriter struct {
	dir string
}

func NewHTMLWriter(dir string) *HTMLWriter {
	return &HTMLWriter{dir: dir}
}

func (w *HTMLWriter) Format() string { return FormatHTML }

func (w *HTMLWriter) Write(_ context.Context, result *domain.ReportResult, fileName string) (string, error) {
	page, err := RenderHTML(result)
	if err != nil {
		return "", err
	}
	return writeFile(w.dir, fileName, FormatHTML, page)
}
