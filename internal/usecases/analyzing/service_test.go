package analyzing_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	repomocks "github.com/vfg2006/marketing-reports/infrastructure/repository/mocks"
	"github.com/vfg2006/marketing-reports/internal/domain"
	"github.com/vfg2006/marketing-reports/internal/usecases/analyzing"
	"github.com/vfg2006/marketing-reports/internal/usecases/analyzing/mocks"
	"github.com/vfg2006/marketing-reports/pkg/log"
)

func marketingDataset() *domain.Dataset {
	ds := &domain.Dataset{Fingerprint: "abc"}
	for i := 0; i < 6; i++ {
		month := time.Date(2025, time.Month(i+1), 1, 0, 0, 0, 0, time.UTC)
		ds.Marketing = append(ds.Marketing,
			domain.MarketingRecord{
				Channel:       domain.GoogleAds,
				Month:         month,
				Spend:         1000,
				Visitors:      500,
				AddToCart:     20,
				Orders:        5,
				Revenue:       20000,
				EmailCaptures: 40,
			},
			domain.MarketingRecord{
				Channel:       domain.OrganicDirect,
				Month:         month,
				Visitors:      3000,
				AddToCart:     40,
				Orders:        12,
				Revenue:       48000,
				EmailCaptures: 100,
			},
		)
	}
	return ds
}

func newRegistry() *analyzing.Registry {
	return analyzing.NewRegistry(analyzing.Options{
		WBRWeekStart: time.Date(2025, time.July, 7, 0, 0, 0, 0, time.UTC),
		WBRMonth:     time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC),
	})
}

func TestService_Run(t *testing.T) {
	log.SetupTestLogger()
	ctx := context.Background()

	tests := []struct {
		name     string
		names    []string
		opts     analyzing.RunOptions
		setup    func(loader *mocks.MockDatasetLoader, writer *mocks.MockWriter, repo *repomocks.MockSnapshotRepository)
		wantErr  error
		errMsg   string
		validate func(t *testing.T, outcomes []*analyzing.RunOutcome)
	}{
		{
			name:  "Deve carregar apenas as fontes dos relatórios pedidos",
			names: []string{"cac", "summary"},
			setup: func(loader *mocks.MockDatasetLoader, writer *mocks.MockWriter, repo *repomocks.MockSnapshotRepository) {
				loader.EXPECT().Load(gomock.Any(), domain.SourceMarketing).Return(marketingDataset(), nil)
			},
			validate: func(t *testing.T, outcomes []*analyzing.RunOutcome) {
				require.Len(t, outcomes, 2)
				assert.Equal(t, "cac", outcomes[0].Report)
				assert.Equal(t, "summary", outcomes[1].Report)
				for _, o := range outcomes {
					assert.NoError(t, o.Err)
					assert.NotNil(t, o.Result)
					assert.Empty(t, o.Files)
				}
			},
		},
		{
			name:  "Deve gravar arquivos com o nome fixo do relatório",
			names: []string{"summary"},
			opts:  analyzing.RunOptions{Formats: []string{"json"}},
			setup: func(loader *mocks.MockDatasetLoader, writer *mocks.MockWriter, repo *repomocks.MockSnapshotRepository) {
				loader.EXPECT().Load(gomock.Any(), domain.SourceMarketing).Return(marketingDataset(), nil)
				writer.EXPECT().Write(gomock.Any(), gomock.Any(), "analysis_summary").Return("out/analysis_summary.json", nil)
			},
			validate: func(t *testing.T, outcomes []*analyzing.RunOutcome) {
				require.Len(t, outcomes, 1)
				assert.Equal(t, []string{"out/analysis_summary.json"}, outcomes[0].Files)
			},
		},
		{
			name:  "Deve salvar snapshot com a impressão digital dos dados",
			names: []string{"cac"},
			opts:  analyzing.RunOptions{SaveSnapshot: true},
			setup: func(loader *mocks.MockDatasetLoader, writer *mocks.MockWriter, repo *repomocks.MockSnapshotRepository) {
				loader.EXPECT().Load(gomock.Any(), domain.SourceMarketing).Return(marketingDataset(), nil)
				repo.EXPECT().Save(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, s *domain.ReportSnapshot) error {
					assert.Equal(t, "cac", s.Report)
					assert.Equal(t, "abc", s.DataFingerprint)
					assert.NotEmpty(t, s.ID)
					assert.Contains(t, string(s.Payload), "blended_cac")
					return nil
				})
			},
			validate: func(t *testing.T, outcomes []*analyzing.RunOutcome) {
				require.Len(t, outcomes, 1)
				assert.NoError(t, outcomes[0].Err)
				assert.NotEmpty(t, outcomes[0].SnapshotID)
			},
		},
		{
			name:  "Deve registrar falha de um relatório sem interromper os demais",
			names: []string{"cac", "wbr"},
			setup: func(loader *mocks.MockDatasetLoader, writer *mocks.MockWriter, repo *repomocks.MockSnapshotRepository) {
				loader.EXPECT().
					Load(gomock.Any(), domain.SourceMarketing|domain.SourceDailySales|domain.SourceRegionalSales).
					Return(marketingDataset(), nil)
			},
			wantErr: analyzing.ErrNoData,
			validate: func(t *testing.T, outcomes []*analyzing.RunOutcome) {
				require.Len(t, outcomes, 2)
				assert.NoError(t, outcomes[0].Err)
				assert.ErrorIs(t, outcomes[1].Err, analyzing.ErrNoData)
				assert.Nil(t, outcomes[1].Result)
			},
		},
		{
			name:  "Deve propagar erro de gravação",
			names: []string{"cac"},
			opts:  analyzing.RunOptions{Formats: []string{"json"}},
			setup: func(loader *mocks.MockDatasetLoader, writer *mocks.MockWriter, repo *repomocks.MockSnapshotRepository) {
				loader.EXPECT().Load(gomock.Any(), domain.SourceMarketing).Return(marketingDataset(), nil)
				writer.EXPECT().Write(gomock.Any(), gomock.Any(), "cac").Return("", errors.New("disco cheio"))
			},
			wantErr: analyzing.ErrWriteOutput,
			validate: func(t *testing.T, outcomes []*analyzing.RunOutcome) {
				require.Len(t, outcomes, 1)
				assert.ErrorIs(t, outcomes[0].Err, analyzing.ErrWriteOutput)
			},
		},
		{
			name:    "Deve rejeitar relatório desconhecido antes de carregar dados",
			names:   []string{"nao-existe"},
			setup:   func(*mocks.MockDatasetLoader, *mocks.MockWriter, *repomocks.MockSnapshotRepository) {},
			wantErr: analyzing.ErrReportNotFound,
		},
		{
			name:   "Deve rejeitar formato sem gravador",
			names:  []string{"cac"},
			opts:   analyzing.RunOptions{Formats: []string{"pdf"}},
			setup:  func(*mocks.MockDatasetLoader, *mocks.MockWriter, *repomocks.MockSnapshotRepository) {},
			errMsg: "formato de saída não suportado: pdf",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			loader := mocks.NewMockDatasetLoader(ctrl)
			writer := mocks.NewMockWriter(ctrl)
			repo := repomocks.NewMockSnapshotRepository(ctrl)
			writer.EXPECT().Format().Return("json").AnyTimes()
			tt.setup(loader, writer, repo)

			service := analyzing.NewService(newRegistry(), loader, 2).
				WithWriters(writer).
				WithSnapshots(repo)

			outcomes, err := service.Run(ctx, tt.names, tt.opts)

			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			case tt.errMsg != "":
				assert.EqualError(t, err, tt.errMsg)
			default:
				assert.NoError(t, err)
			}

			if tt.validate != nil {
				tt.validate(t, outcomes)
			}
		})
	}
}

func TestService_RunLoaderError(t *testing.T) {
	log.SetupTestLogger()
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	loader := mocks.NewMockDatasetLoader(ctrl)
	loader.EXPECT().Load(gomock.Any(), gomock.Any()).Return(nil, errors.New("arquivo não encontrado"))

	_, err := analyzing.NewService(newRegistry(), loader, 1).Run(context.Background(), []string{"cac"}, analyzing.RunOptions{})

	assert.ErrorContains(t, err, "arquivo não encontrado")
}
