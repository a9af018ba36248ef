package handler

import (
	"net/http"
	"strconv"

	"github.com/julienschmidt/httprouter"

	"github.com/vfg2006/marketing-reports/infrastructure/repository"
	"github.com/vfg2006/marketing-reports/internal/domain"
	"github.com/vfg2006/marketing-reports/pkg/apiErrors"
	"github.com/vfg2006/marketing-reports/pkg/log"
)

const maxSnapshotLimit = 100

// GetLatestSnapshot retorna o snapshot mais recente de um relatório
func GetLatestSnapshot(repo repository.SnapshotRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if repo == nil {
			apiErrors.WriteError(w, apiErrors.ErrSnapshotsDisabled, "Snapshots desabilitados (SNAPSHOTS_ENABLED=false)", nil)
			return
		}

		name := httprouter.ParamsFromContext(r.Context()).ByName("name")
		snapshot, err := repo.GetLatest(r.Context(), name)
		if err != nil {
			log.ForContext(r.Context()).WithError(err).WithField("report", name).Error("Erro ao buscar snapshot")
			apiErrors.WriteError(w, apiErrors.ErrDatabaseOperation, "Erro ao buscar snapshot", nil)
			return
		}
		if snapshot == nil {
			apiErrors.WriteError(w, apiErrors.ErrSnapshotNotFound, "Nenhum snapshot salvo para o relatório", map[string]string{"report": name})
			return
		}

		writeJSON(w, r, http.StatusOK, snapshot)
	}
}

// ListSnapshots lista os snapshots de um relatório, do mais recente para o mais antigo
func ListSnapshots(repo repository.SnapshotRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if repo == nil {
			apiErrors.WriteError(w, apiErrors.ErrSnapshotsDisabled, "Snapshots desabilitados (SNAPSHOTS_ENABLED=false)", nil)
			return
		}

		limit := 0
		if raw := r.URL.Query().Get("limit"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil || parsed < 1 || parsed > maxSnapshotLimit {
				apiErrors.WriteError(w, apiErrors.ErrInvalidFormat, "limit deve estar entre 1 e 100", nil)
				return
			}
			limit = parsed
		}

		name := httprouter.ParamsFromContext(r.Context()).ByName("name")
		snapshots, err := repo.List(r.Context(), name, limit)
		if err != nil {
			log.ForContext(r.Context()).WithError(err).WithField("report", name).Error("Erro ao listar snapshots")
			apiErrors.WriteError(w, apiErrors.ErrDatabaseOperation, "Erro ao listar snapshots", nil)
			return
		}

		if snapshots == nil {
			snapshots = []*domain.ReportSnapshot{}
		}
		writeJSON(w, r, http.StatusOK, map[string]any{"snapshots": snapshots})
	}
}
