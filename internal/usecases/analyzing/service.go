package analyzing

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	pkgerrors "github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/sync/errgroup"

	"github.com/vfg2006/marketing-reports/infrastructure/repository"
	"github.com/vfg2006/marketing-reports/internal/domain"
	"github.com/vfg2006/marketing-reports/pkg/log"
	"github.com/vfg2006/marketing-reports/pkg/utils"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var (
	reportDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "marketing_report_duration_seconds",
		Help:    "Tempo de geração de cada relatório",
		Buckets: prometheus.DefBuckets,
	}, []string{"report", "status"})

	reportRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "marketing_report_runs_total",
		Help: "Execuções de relatórios por resultado",
	}, []string{"report", "status"})
)

// RunOptions controla o que acontece com o resultado de cada relatório
type RunOptions struct {
	// Formats lista os formatos de arquivo a gravar (json, xlsx, html, pdf); vazio não grava arquivos
	Formats      []string
	SaveSnapshot bool
}

// RunOutcome é o resultado de um relatório dentro de uma execução
type RunOutcome struct {
	Report     string               `json:"report"`
	Result     *domain.ReportResult `json:"-"`
	Files      []string             `json:"files,omitempty"`
	SnapshotID string               `json:"snapshot_id,omitempty"`
	Duration   time.Duration        `json:"duration"`
	Err        error                `json:"-"`
}

type Service struct {
	registry      *Registry
	loader        DatasetLoader
	writers       map[string]Writer
	snapshots     repository.SnapshotRepository
	maxConcurrent int
}

func NewService(registry *Registry, loader DatasetLoader, maxConcurrent int) *Service {
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	return &Service{
		registry:      registry,
		loader:        loader,
		writers:       map[string]Writer{},
		maxConcurrent: maxConcurrent,
	}
}

// WithWriters registra os gravadores de arquivo pelo formato
func (s *Service) WithWriters(writers ...Writer) *Service {
	for _, w := range writers {
		s.writers[w.Format()] = w
	}
	return s
}

// WithSnapshots habilita a gravação de snapshots
func (s *Service) WithSnapshots(repo repository.SnapshotRepository) *Service {
	s.snapshots = repo
	return s
}

func (s *Service) Reports() []Report {
	return s.registry.All()
}

// Run carrega uma única vez as fontes necessárias e executa os relatórios em paralelo.
// Falhas individuais ficam em RunOutcome.Err; o erro retornado junta todas elas.
func (s *Service) Run(ctx context.Context, names []string, opts RunOptions) ([]*RunOutcome, error) {
	reports, err := s.registry.Resolve(names)
	if err != nil {
		return nil, err
	}

	for _, format := range opts.Formats {
		if _, ok := s.writers[format]; !ok {
			return nil, pkgerrors.Errorf("formato de saída não suportado: %s", format)
		}
	}

	var sources domain.Source
	for _, r := range reports {
		sources |= r.Sources()
	}

	ds, err := s.loader.Load(ctx, sources)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "erro ao carregar os dados")
	}

	outcomes := make([]*RunOutcome, len(reports))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.maxConcurrent)

	for i, r := range reports {
		i, r := i, r
		g.Go(func() error {
			outcomes[i] = s.runOne(gctx, r, ds, opts)
			return nil
		})
	}
	_ = g.Wait()

	var errs []error
	for _, o := range outcomes {
		if o.Err != nil {
			errs = append(errs, o.Err)
		}
	}
	return outcomes, errors.Join(errs...)
}

func (s *Service) runOne(ctx context.Context, r Report, ds *domain.Dataset, opts RunOptions) *RunOutcome {
	logger := log.ForContext(ctx).WithField("report", r.Name())
	outcome := &RunOutcome{Report: r.Name()}
	start := time.Now()

	defer func() {
		outcome.Duration = time.Since(start)
		status := "success"
		if outcome.Err != nil {
			status = "error"
		}
		reportDuration.WithLabelValues(r.Name(), status).Observe(outcome.Duration.Seconds())
		reportRuns.WithLabelValues(r.Name(), status).Inc()
	}()

	if err := ctx.Err(); err != nil {
		outcome.Err = err
		return outcome
	}

	result, err := r.Build(ds)
	if err != nil {
		logger.WithError(err).Warn("Erro ao gerar relatório")
		outcome.Err = wrapReportError(err, ErrBuildReport, r.Name())
		return outcome
	}
	outcome.Result = result

	base := FileBase(r)
	for _, format := range opts.Formats {
		path, err := s.writers[format].Write(ctx, result, base)
		if err != nil {
			logger.WithError(err).WithField("file", base+"."+format).Error("Erro ao gravar saída do relatório")
			outcome.Err = NewReportError(ErrWriteOutput, r.Name(), err.Error())
			return outcome
		}
		outcome.Files = append(outcome.Files, path)
	}

	if opts.SaveSnapshot && s.snapshots != nil {
		id, err := s.saveSnapshot(ctx, result, ds.Fingerprint)
		if err != nil {
			logger.WithError(err).Error("Erro ao salvar snapshot")
			outcome.Err = NewReportError(ErrSaveSnapshot, r.Name(), err.Error())
			return outcome
		}
		outcome.SnapshotID = id
	}

	logger.WithFields(log.Fields{
		"report_files":    len(outcome.Files),
		"report_snapshot": outcome.SnapshotID,
	}).Info("Relatório gerado")

	return outcome
}

func (s *Service) saveSnapshot(ctx context.Context, result *domain.ReportResult, fingerprint string) (string, error) {
	payload, err := json.Marshal(result.Data)
	if err != nil {
		return "", pkgerrors.Wrap(err, "erro ao serializar dados do relatório")
	}

	id, err := utils.GenerateSnapshotID()
	if err != nil {
		return "", err
	}

	snapshot := &domain.ReportSnapshot{
		ID:              id,
		Report:          result.Name,
		DataFingerprint: fingerprint,
		Payload:         payload,
		CreatedAt:       time.Now().UTC(),
	}
	if err := s.snapshots.Save(ctx, snapshot); err != nil {
		return "", err
	}
	return id, nil
}

// FileBase é o nome de arquivo do relatório sem extensão
func FileBase(r Report) string {
	if fr, ok := r.(FileReport); ok {
		name := fr.OutputFile()
		return strings.TrimSuffix(name, filepath.Ext(name))
	}
	return r.Name()
}

func wrapReportError(err, kind error, report string) error {
	var re *ReportError
	if errors.As(err, &re) {
		return re
	}
	return NewReportError(kind, report, err.Error())
}
