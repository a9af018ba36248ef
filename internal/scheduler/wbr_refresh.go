package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/vfg2006/marketing-reports/internal/config"
	"github.com/vfg2006/marketing-reports/internal/usecases/analyzing"
	"github.com/vfg2006/marketing-reports/pkg/log"
)

// WBRRefreshConfig representa a configuração do agendador de atualização do WBR
type WBRRefreshConfig struct {
	CronSchedule      string
	Reports           []string
	Formats           []string
	MaxConcurrentJobs int
	SaveSnapshots     bool
	SyncEnabled       bool
}

// RefreshResult resume um relatório gerado na última atualização
type RefreshResult struct {
	Report     string   `json:"report"`
	Files      []string `json:"files,omitempty"`
	SnapshotID string   `json:"snapshot_id,omitempty"`
	DurationMs int64    `json:"duration_ms"`
	Error      string   `json:"error,omitempty"`
}

// WBRRefreshService recarrega os CSVs e regenera os relatórios semanais no horário configurado
type WBRRefreshService struct {
	scheduler           *gocron.Scheduler
	config              WBRRefreshConfig
	runner              analyzing.Runner
	syncRunning         bool
	syncMutex           sync.Mutex
	lastSyncStartedAt   time.Time
	lastSyncCompletedAt time.Time
	lastResults         []RefreshResult
	lastError           string
}

// NewWBRRefreshService cria uma nova instância do serviço de atualização do WBR
func NewWBRRefreshService(runner analyzing.Runner, appConfig *config.Config) *WBRRefreshService {
	refreshConfig := WBRRefreshConfig{
		CronSchedule:      appConfig.WBRRefresh.CronSchedule,
		Reports:           appConfig.WBRRefresh.Reports,
		Formats:           appConfig.Output.Formats,
		MaxConcurrentJobs: appConfig.WBRRefresh.MaxConcurrentJobs,
		SaveSnapshots:     appConfig.Database.Enabled,
		SyncEnabled:       appConfig.WBRRefresh.Enabled,
	}

	log.L.WithFields(log.Fields{
		"cron_schedule":       refreshConfig.CronSchedule,
		"report_names":        refreshConfig.Reports,
		"max_concurrent_jobs": refreshConfig.MaxConcurrentJobs,
		"sync_enabled":        refreshConfig.SyncEnabled,
	}).Info("Configuração do agendador do WBR carregada")

	return &WBRRefreshService{
		scheduler: gocron.NewScheduler(time.Local),
		config:    refreshConfig,
		runner:    runner,
	}
}

// Start inicia o agendador
func (s *WBRRefreshService) Start(ctx context.Context) error {
	if !s.config.SyncEnabled {
		log.L.Info("Atualização agendada do WBR desabilitada por configuração")
		return nil
	}

	log.L.WithField("cron", s.config.CronSchedule).Info("Iniciando agendador de atualização do WBR")

	_, err := s.scheduler.Cron(s.config.CronSchedule).Do(func() {
		s.refresh(ctx)
	})
	if err != nil {
		return fmt.Errorf("erro ao agendar atualização do WBR: %w", err)
	}

	s.scheduler.StartAsync()

	go func() {
		<-ctx.Done()
		log.L.Info("Parando agendador de atualização do WBR")
		s.scheduler.Stop()
	}()

	return nil
}

// refresh executa os relatórios configurados; uma execução por vez
func (s *WBRRefreshService) refresh(ctx context.Context) {
	s.syncMutex.Lock()
	if s.syncRunning {
		s.syncMutex.Unlock()
		log.L.Info("Atualização do WBR já em andamento, ignorando")
		return
	}
	s.syncRunning = true
	s.lastSyncStartedAt = time.Now()
	s.syncMutex.Unlock()

	defer func() {
		s.syncMutex.Lock()
		s.syncRunning = false
		s.syncMutex.Unlock()
	}()

	ctx, correlationID := log.WithCorrelationID(ctx)
	logger := log.ForContext(ctx)
	logger.WithField("report_names", s.config.Reports).Info("Iniciando atualização do WBR")

	startTime := time.Now()
	outcomes, err := s.runner.Run(ctx, s.config.Reports, analyzing.RunOptions{
		Formats:      s.config.Formats,
		SaveSnapshot: s.config.SaveSnapshots,
	})

	results := make([]RefreshResult, 0, len(outcomes))
	for _, o := range outcomes {
		result := RefreshResult{
			Report:     o.Report,
			Files:      o.Files,
			SnapshotID: o.SnapshotID,
			DurationMs: o.Duration.Milliseconds(),
		}
		if o.Err != nil {
			result.Error = o.Err.Error()
		}
		results = append(results, result)
	}

	s.syncMutex.Lock()
	s.lastResults = results
	s.lastError = ""
	if err != nil {
		s.lastError = err.Error()
	}
	s.lastSyncCompletedAt = time.Now()
	s.syncMutex.Unlock()

	if err != nil {
		logger.WithError(err).Error("Atualização do WBR concluída com erros")
		return
	}

	logger.WithFields(log.Fields{
		"duration_ms":    time.Since(startTime).Milliseconds(),
		"report_count":   len(results),
		"correlation_id": correlationID,
	}).Info("Atualização do WBR concluída")
}

// TriggerManualSync inicia manualmente uma atualização do WBR.
// Retorna false quando já existe uma atualização em andamento.
func (s *WBRRefreshService) TriggerManualSync(ctx context.Context) bool {
	s.syncMutex.Lock()
	if s.syncRunning {
		s.syncMutex.Unlock()
		log.L.Info("Atualização do WBR já em andamento, ignorando solicitação manual")
		return false
	}
	s.syncMutex.Unlock()

	log.L.Info("Iniciando atualização manual do WBR")
	go s.refresh(context.WithoutCancel(ctx))
	return true
}

// GetStatus retorna o status atual da atualização
func (s *WBRRefreshService) GetStatus() map[string]any {
	s.syncMutex.Lock()
	defer s.syncMutex.Unlock()

	return map[string]any{
		"sync_running":           s.syncRunning,
		"sync_cron":              s.config.CronSchedule,
		"sync_enabled":           s.config.SyncEnabled,
		"reports":                s.config.Reports,
		"last_sync_started_at":   s.lastSyncStartedAt,
		"last_sync_completed_at": s.lastSyncCompletedAt,
		"last_results":           s.lastResults,
		"last_error":             s.lastError,
	}
}
