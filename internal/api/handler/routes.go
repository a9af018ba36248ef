package handler

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vfg2006/marketing-reports/infrastructure/repository"
	"github.com/vfg2006/marketing-reports/internal/api/handler/router"
	"github.com/vfg2006/marketing-reports/internal/usecases/analyzing"
	"github.com/vfg2006/marketing-reports/internal/usecases/authenticating"
	"github.com/vfg2006/marketing-reports/pkg/middleware"
)

func Healthcheck() []router.Route {
	return []router.Route{
		{
			Path:    "/healthcheck",
			Method:  http.MethodGet,
			Handler: HealthcheckHandler(),
		},
		{
			Path:    "/metrics",
			Method:  http.MethodGet,
			Handler: promhttp.Handler(),
		},
	}
}

func Reports(runner analyzing.Runner) []router.Route {
	return []router.Route{
		{
			Path:    "/v1/reports",
			Method:  http.MethodGet,
			Handler: ListReports(runner),
		},
		{
			Path:    "/v1/reports/:name",
			Method:  http.MethodGet,
			Handler: GetReport(runner),
		},
	}
}

// Snapshots aceita repo nil quando o banco está desabilitado; as rotas respondem 503
func Snapshots(repo repository.SnapshotRepository) []router.Route {
	return []router.Route{
		{
			Path:    "/v1/snapshots/:name/latest",
			Method:  http.MethodGet,
			Handler: GetLatestSnapshot(repo),
		},
		{
			Path:    "/v1/snapshots/:name",
			Method:  http.MethodGet,
			Handler: ListSnapshots(repo),
		},
	}
}

func Authentication(service authenticating.Authenticator) []router.Route {
	return []router.Route{
		{
			Path:    "/v1/auth/token",
			Method:  http.MethodPost,
			Handler: IssueToken(service),
		},
	}
}

func CronJobs(refresher WBRRefresher, auth authenticating.Authenticator) []router.Route {
	return []router.Route{
		{
			Path:    "/v1/cron/wbr/run",
			Method:  http.MethodPost,
			Handler: RunWBRRefresh(refresher),
			Middlewares: []func(http.Handler) http.Handler{
				middleware.AuthMiddleware(auth),
				middleware.AdminOnly(),
			},
		},
		{
			Path:    "/v1/cron/status",
			Method:  http.MethodGet,
			Handler: GetCronStatus(refresher),
		},
	}
}
