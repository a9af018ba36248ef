package handler

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	repomocks "github.com/vfg2006/marketing-reports/infrastructure/repository/mocks"
	"github.com/vfg2006/marketing-reports/internal/api/handler/mocks"
	"github.com/vfg2006/marketing-reports/internal/api/handler/router"
	"github.com/vfg2006/marketing-reports/internal/domain"
	"github.com/vfg2006/marketing-reports/internal/usecases/analyzing"
	analyzingmocks "github.com/vfg2006/marketing-reports/internal/usecases/analyzing/mocks"
	"github.com/vfg2006/marketing-reports/internal/usecases/authenticating"
	authmocks "github.com/vfg2006/marketing-reports/internal/usecases/authenticating/mocks"
	"github.com/vfg2006/marketing-reports/pkg/apiErrors"
	"github.com/vfg2006/marketing-reports/pkg/log"
)

type testDeps struct {
	runner    *analyzingmocks.MockRunner
	repo      *repomocks.MockSnapshotRepository
	auth      *authmocks.MockAuthenticator
	refresher *mocks.MockWBRRefresher
}

func newTestRouter(ctrl *gomock.Controller) (router.Router, testDeps) {
	deps := testDeps{
		runner:    analyzingmocks.NewMockRunner(ctrl),
		repo:      repomocks.NewMockSnapshotRepository(ctrl),
		auth:      authmocks.NewMockAuthenticator(ctrl),
		refresher: mocks.NewMockWBRRefresher(ctrl),
	}

	rt := router.New(
		router.WithRoutes(Healthcheck()...),
		router.WithRoutes(Reports(deps.runner)...),
		router.WithRoutes(Snapshots(deps.repo)...),
		router.WithRoutes(Authentication(deps.auth)...),
		router.WithRoutes(CronJobs(deps.refresher, deps.auth)...),
	)
	return rt, deps
}

func sampleResult() *domain.ReportResult {
	result := domain.NewReportResult("cac", "CAC Analysis")
	result.Section("Overview").Printf("Blended CAC: $1,250.00")
	result.Data = map[string]float64{"blended_cac": 1250}
	return result
}

func TestHandlers(t *testing.T) {
	log.SetupTestLogger()

	tests := []struct {
		name       string
		method     string
		path       string
		body       string
		header     map[string]string
		setup      func(deps testDeps)
		wantStatus int
		validate   func(t *testing.T, rec *httptest.ResponseRecorder)
	}{
		{
			name:       "Deve responder o healthcheck",
			method:     http.MethodGet,
			path:       "/healthcheck",
			setup:      func(testDeps) {},
			wantStatus: http.StatusOK,
			validate: func(t *testing.T, rec *httptest.ResponseRecorder) {
				assert.Contains(t, rec.Body.String(), `"status":"ok"`)
			},
		},
		{
			name:       "Deve expor métricas do Prometheus",
			method:     http.MethodGet,
			path:       "/metrics",
			setup:      func(testDeps) {},
			wantStatus: http.StatusOK,
			validate: func(t *testing.T, rec *httptest.ResponseRecorder) {
				assert.Contains(t, rec.Body.String(), "go_goroutines")
			},
		},
		{
			name:   "Deve listar relatórios com fontes e arquivo de saída",
			method: http.MethodGet,
			path:   "/v1/reports",
			setup: func(deps testDeps) {
				deps.runner.EXPECT().Reports().Return([]analyzing.Report{analyzing.CACReport{}, analyzing.WBRReport{}})
			},
			wantStatus: http.StatusOK,
			validate: func(t *testing.T, rec *httptest.ResponseRecorder) {
				assert.JSONEq(t, `{"reports":[
					{"name":"cac","title":"CAC Analysis","sources":["marketing"]},
					{"name":"wbr","title":"Weekly Business Review","sources":["daily_sales","regional_sales"],"output_file":"wbr_data_corrected.json"}
				]}`, rec.Body.String())
			},
		},
		{
			name:   "Deve gerar relatório e devolver Data",
			method: http.MethodGet,
			path:   "/v1/reports/cac",
			setup: func(deps testDeps) {
				deps.runner.EXPECT().
					Run(gomock.Any(), []string{"cac"}, analyzing.RunOptions{}).
					Return([]*analyzing.RunOutcome{{Report: "cac", Result: sampleResult()}}, nil)
			},
			wantStatus: http.StatusOK,
			validate: func(t *testing.T, rec *httptest.ResponseRecorder) {
				assert.JSONEq(t, `{"blended_cac":1250}`, rec.Body.String())
			},
		},
		{
			name:   "Deve devolver texto do console",
			method: http.MethodGet,
			path:   "/v1/reports/cac?format=text",
			setup: func(deps testDeps) {
				deps.runner.EXPECT().
					Run(gomock.Any(), []string{"cac"}, gomock.Any()).
					Return([]*analyzing.RunOutcome{{Report: "cac", Result: sampleResult()}}, nil)
			},
			wantStatus: http.StatusOK,
			validate: func(t *testing.T, rec *httptest.ResponseRecorder) {
				assert.Equal(t, "text/plain; charset=utf-8", rec.Header().Get("Content-Type"))
				assert.Contains(t, rec.Body.String(), "CAC ANALYSIS")
				assert.Contains(t, rec.Body.String(), "Blended CAC: $1,250.00")
			},
		},
		{
			name:       "Deve rejeitar formato desconhecido",
			method:     http.MethodGet,
			path:       "/v1/reports/cac?format=pdf",
			setup:      func(testDeps) {},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:   "Deve responder 404 para relatório desconhecido",
			method: http.MethodGet,
			path:   "/v1/reports/nao-existe",
			setup: func(deps testDeps) {
				deps.runner.EXPECT().
					Run(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(nil, analyzing.NewReportError(analyzing.ErrReportNotFound, "nao-existe", ""))
			},
			wantStatus: http.StatusNotFound,
			validate: func(t *testing.T, rec *httptest.ResponseRecorder) {
				assert.Contains(t, rec.Body.String(), apiErrors.ErrReportNotFound)
			},
		},
		{
			name:   "Deve responder 422 quando faltam dados",
			method: http.MethodGet,
			path:   "/v1/reports/wbr",
			setup: func(deps testDeps) {
				failure := analyzing.NewReportError(analyzing.ErrNoData, "wbr", "sem vendas diárias")
				deps.runner.EXPECT().
					Run(gomock.Any(), gomock.Any(), gomock.Any()).
					Return([]*analyzing.RunOutcome{{Report: "wbr", Err: failure}}, errors.Join(failure))
			},
			wantStatus: http.StatusUnprocessableEntity,
		},
		{
			name:   "Deve responder 500 quando os dados não carregam",
			method: http.MethodGet,
			path:   "/v1/reports/cac",
			setup: func(deps testDeps) {
				deps.runner.EXPECT().
					Run(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(nil, errors.New("erro ao carregar os dados: arquivo não encontrado"))
			},
			wantStatus: http.StatusInternalServerError,
		},
		{
			name:   "Deve retornar o snapshot mais recente",
			method: http.MethodGet,
			path:   "/v1/snapshots/wbr/latest",
			setup: func(deps testDeps) {
				deps.repo.EXPECT().GetLatest(gomock.Any(), "wbr").Return(&domain.ReportSnapshot{
					ID:              "snap1",
					Report:          "wbr",
					DataFingerprint: "abc",
					Payload:         []byte(`{"current_week":{}}`),
					CreatedAt:       time.Date(2025, time.July, 14, 6, 0, 0, 0, time.UTC),
				}, nil)
			},
			wantStatus: http.StatusOK,
			validate: func(t *testing.T, rec *httptest.ResponseRecorder) {
				assert.JSONEq(t, `{"id":"snap1","report":"wbr","data_fingerprint":"abc",
					"payload":{"current_week":{}},"created_at":"2025-07-14T06:00:00Z"}`, rec.Body.String())
			},
		},
		{
			name:   "Deve responder 404 sem snapshot salvo",
			method: http.MethodGet,
			path:   "/v1/snapshots/wbr/latest",
			setup: func(deps testDeps) {
				deps.repo.EXPECT().GetLatest(gomock.Any(), "wbr").Return(nil, nil)
			},
			wantStatus: http.StatusNotFound,
		},
		{
			name:   "Deve listar snapshots com limite",
			method: http.MethodGet,
			path:   "/v1/snapshots/summary?limit=5",
			setup: func(deps testDeps) {
				deps.repo.EXPECT().List(gomock.Any(), "summary", 5).Return(nil, nil)
			},
			wantStatus: http.StatusOK,
			validate: func(t *testing.T, rec *httptest.ResponseRecorder) {
				assert.JSONEq(t, `{"snapshots":[]}`, rec.Body.String())
			},
		},
		{
			name:       "Deve rejeitar limite inválido",
			method:     http.MethodGet,
			path:       "/v1/snapshots/summary?limit=0",
			setup:      func(testDeps) {},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:   "Deve emitir token com a senha do administrador",
			method: http.MethodPost,
			path:   "/v1/auth/token",
			body:   `{"password":"s3nha"}`,
			setup: func(deps testDeps) {
				deps.auth.EXPECT().Login("s3nha").Return("jwt", time.Date(2025, time.July, 15, 0, 0, 0, 0, time.UTC), nil)
			},
			wantStatus: http.StatusOK,
			validate: func(t *testing.T, rec *httptest.ResponseRecorder) {
				assert.JSONEq(t, `{"token":"jwt","expires_at":"2025-07-15T00:00:00Z"}`, rec.Body.String())
			},
		},
		{
			name:   "Deve rejeitar senha incorreta",
			method: http.MethodPost,
			path:   "/v1/auth/token",
			body:   `{"password":"errada"}`,
			setup: func(deps testDeps) {
				deps.auth.EXPECT().Login("errada").
					Return("", time.Time{}, authenticating.NewAuthError(authenticating.ErrInvalidCredentials, apiErrors.ErrInvalidCredentials, "senha incorreta"))
			},
			wantStatus: http.StatusUnauthorized,
			validate: func(t *testing.T, rec *httptest.ResponseRecorder) {
				assert.Contains(t, rec.Body.String(), apiErrors.ErrInvalidCredentials)
			},
		},
		{
			name:       "Deve rejeitar corpo inválido no token",
			method:     http.MethodPost,
			path:       "/v1/auth/token",
			body:       `{`,
			setup:      func(testDeps) {},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "Deve exigir token para disparar o WBR",
			method:     http.MethodPost,
			path:       "/v1/cron/wbr/run",
			setup:      func(testDeps) {},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:   "Deve exigir perfil de administrador para disparar o WBR",
			method: http.MethodPost,
			path:   "/v1/cron/wbr/run",
			header: map[string]string{"Authorization": "Bearer leitor"},
			setup: func(deps testDeps) {
				deps.auth.EXPECT().ValidateToken("leitor").Return(&domain.Claims{Role: domain.RoleViewer}, nil)
			},
			wantStatus: http.StatusForbidden,
		},
		{
			name:   "Deve disparar o WBR com token de administrador",
			method: http.MethodPost,
			path:   "/v1/cron/wbr/run",
			header: map[string]string{"Authorization": "Bearer admin"},
			setup: func(deps testDeps) {
				deps.auth.EXPECT().ValidateToken("admin").Return(&domain.Claims{Role: domain.RoleAdmin}, nil)
				deps.refresher.EXPECT().TriggerManualSync(gomock.Any()).Return(true)
			},
			wantStatus: http.StatusAccepted,
		},
		{
			name:   "Deve responder 409 com atualização em andamento",
			method: http.MethodPost,
			path:   "/v1/cron/wbr/run",
			header: map[string]string{"Authorization": "Bearer admin"},
			setup: func(deps testDeps) {
				deps.auth.EXPECT().ValidateToken("admin").Return(&domain.Claims{Role: domain.RoleAdmin}, nil)
				deps.refresher.EXPECT().TriggerManualSync(gomock.Any()).Return(false)
			},
			wantStatus: http.StatusConflict,
		},
		{
			name:   "Deve retornar o status das rotinas",
			method: http.MethodGet,
			path:   "/v1/cron/status",
			setup: func(deps testDeps) {
				deps.refresher.EXPECT().GetStatus().Return(map[string]any{"sync_running": false})
			},
			wantStatus: http.StatusOK,
			validate: func(t *testing.T, rec *httptest.ResponseRecorder) {
				assert.JSONEq(t, `{"wbr":{"sync_running":false}}`, rec.Body.String())
			},
		},
		{
			name:       "Deve responder 404 para rota inexistente",
			method:     http.MethodGet,
			path:       "/v2/nada",
			setup:      func(testDeps) {},
			wantStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			rt, deps := newTestRouter(ctrl)
			tt.setup(deps)

			req := httptest.NewRequest(tt.method, tt.path, bytes.NewBufferString(tt.body))
			for k, v := range tt.header {
				req.Header.Set(k, v)
			}
			rec := httptest.NewRecorder()

			rt.ServeHTTP(rec, req)

			require.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			if tt.validate != nil {
				tt.validate(t, rec)
			}
		})
	}
}

func TestSnapshotsDisabled(t *testing.T) {
	rt := router.New(router.WithRoutes(Snapshots(nil)...))

	rec := httptest.NewRecorder()
	rt.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/snapshots/wbr/latest", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), apiErrors.ErrSnapshotsDisabled)
}
