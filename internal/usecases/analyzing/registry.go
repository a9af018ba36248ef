package analyzing

import (
	"fmt"
	"time"

	"github.com/vfg2006/marketing-reports/internal/config"
)

// Options parametriza relatórios que dependem de datas de referência
type Options struct {
	WBRWeekStart time.Time
	WBRMonth     time.Time
}

// OptionsFromConfig converte a configuração WBR em Options
func OptionsFromConfig(cfg config.WBR) (Options, error) {
	week, err := cfg.WeekStart()
	if err != nil {
		return Options{}, fmt.Errorf("WBR_CURRENT_WEEK_START inválido: %w", err)
	}

	month, err := cfg.Month()
	if err != nil {
		return Options{}, fmt.Errorf("WBR_CURRENT_MONTH inválido: %w", err)
	}

	return Options{WBRWeekStart: week, WBRMonth: month}, nil
}

// Registry mantém os relatórios disponíveis na ordem de execução
type Registry struct {
	reports []Report
	byName  map[string]Report
}

func NewRegistry(opts Options) *Registry {
	reports := []Report{
		ChannelPerformanceReport{},
		BasicComparisonReport{},
		SeasonalityReport{},
		TacticalReport{},
		CACReport{},
		AttributionReport{},
		DiagnosticsReport{},
		ExecutiveReport{},
		EffectivenessReport{},
		SummaryReport{},
		WBRReport{WeekStart: opts.WBRWeekStart, Month: opts.WBRMonth},
	}

	byName := make(map[string]Report, len(reports))
	for _, r := range reports {
		byName[r.Name()] = r
	}

	return &Registry{reports: reports, byName: byName}
}

func (r *Registry) All() []Report {
	return r.reports
}

func (r *Registry) Names() []string {
	names := make([]string, len(r.reports))
	for i, rep := range r.reports {
		names[i] = rep.Name()
	}
	return names
}

func (r *Registry) Get(name string) (Report, error) {
	rep, ok := r.byName[name]
	if !ok {
		return nil, NewReportError(ErrReportNotFound, name, "")
	}
	return rep, nil
}

// Resolve retorna os relatórios pedidos mantendo a ordem do registro; sem nomes, retorna todos
func (r *Registry) Resolve(names []string) ([]Report, error) {
	if len(names) == 0 {
		return r.reports, nil
	}

	wanted := make(map[string]bool, len(names))
	for _, name := range names {
		if _, err := r.Get(name); err != nil {
			return nil, err
		}
		wanted[name] = true
	}

	out := make([]Report, 0, len(wanted))
	for _, rep := range r.reports {
		if wanted[rep.Name()] {
			out = append(out, rep)
		}
	}
	return out, nil
}
