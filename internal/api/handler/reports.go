package handler

import (
	"errors"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"github.com/vfg2006/marketing-reports/internal/report"
	"github.com/vfg2006/marketing-reports/internal/usecases/analyzing"
	"github.com/vfg2006/marketing-reports/pkg/apiErrors"
	"github.com/vfg2006/marketing-reports/pkg/log"
)

const (
	formatJSON = "json"
	formatText = "text"
)

type ReportInfo struct {
	Name       string   `json:"name"`
	Title      string   `json:"title"`
	Sources    []string `json:"sources"`
	OutputFile string   `json:"output_file,omitempty"`
}

// ListReports lista os relatórios disponíveis na ordem do registro
func ListReports(runner analyzing.Runner) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		reports := runner.Reports()

		infos := make([]ReportInfo, 0, len(reports))
		for _, rep := range reports {
			info := ReportInfo{
				Name:    rep.Name(),
				Title:   rep.Title(),
				Sources: rep.Sources().Names(),
			}
			if fr, ok := rep.(analyzing.FileReport); ok {
				info.OutputFile = fr.OutputFile()
			}
			infos = append(infos, info)
		}

		writeJSON(w, r, http.StatusOK, map[string]any{"reports": infos})
	}
}

// GetReport gera o relatório na hora; ?format=text devolve o texto do console
func GetReport(runner analyzing.Runner) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := httprouter.ParamsFromContext(r.Context()).ByName("name")

		format := r.URL.Query().Get("format")
		if format == "" {
			format = formatJSON
		}
		if format != formatJSON && format != formatText {
			apiErrors.WriteError(w, apiErrors.ErrInvalidFormat, "Formato inválido. Valores aceitos: json, text", nil)
			return
		}

		outcomes, err := runner.Run(r.Context(), []string{name}, analyzing.RunOptions{})
		if len(outcomes) == 0 {
			writeReportError(w, r, name, err)
			return
		}

		outcome := outcomes[0]
		if outcome.Err != nil {
			writeReportError(w, r, name, outcome.Err)
			return
		}

		if format == formatText {
			w.Header().Set("Content-Type", "text/plain; charset=utf-8")
			if err := report.Print(w, outcome.Result); err != nil {
				log.ForContext(r.Context()).WithError(err).Error("Erro ao enviar relatório em texto")
			}
			return
		}

		var body any = outcome.Result
		if outcome.Result.Data != nil {
			body = outcome.Result.Data
		}
		writeJSON(w, r, http.StatusOK, body)
	}
}

func writeReportError(w http.ResponseWriter, r *http.Request, name string, err error) {
	details := map[string]string{"report": name}

	switch {
	case err == nil:
		apiErrors.WriteError(w, apiErrors.ErrInternalServer, "Nenhum resultado gerado", details)
	case errors.Is(err, analyzing.ErrReportNotFound):
		apiErrors.WriteError(w, apiErrors.ErrReportNotFound, "Relatório não encontrado", details)
	case errors.Is(err, analyzing.ErrNoData):
		apiErrors.WriteError(w, apiErrors.ErrNoData, err.Error(), details)
	default:
		log.ForContext(r.Context()).WithError(err).WithField("report", name).Error("Erro ao gerar relatório")
		apiErrors.WriteError(w, apiErrors.ErrInternalServer, "Erro ao gerar relatório", details)
	}
}
