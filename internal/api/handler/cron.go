package handler

import (
	"context"
	"net/http"

	"github.com/vfg2006/marketing-reports/pkg/apiErrors"
	"github.com/vfg2006/marketing-reports/pkg/log"
)

//go:generate mockgen -source=cron.go -destination=mocks/cron.go -package=mocks

// WBRRefresher é o agendador de atualização do WBR visto pela API
type WBRRefresher interface {
	TriggerManualSync(ctx context.Context) bool
	GetStatus() map[string]any
}

// RunWBRRefresh dispara a atualização do WBR em segundo plano
func RunWBRRefresh(refresher WBRRefresher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !refresher.TriggerManualSync(r.Context()) {
			apiErrors.WriteError(w, apiErrors.ErrSyncRunning, "Atualização do WBR já em andamento", nil)
			return
		}

		log.ForContext(r.Context()).Info("Atualização manual do WBR solicitada")
		writeJSON(w, r, http.StatusAccepted, map[string]any{
			"message": "Atualização do WBR iniciada com sucesso",
			"type":    "wbr",
		})
	}
}

// GetCronStatus retorna o status das rotinas agendadas
func GetCronStatus(refresher WBRRefresher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, r, http.StatusOK, map[string]any{
			"wbr": refresher.GetStatus(),
		})
	}
}
