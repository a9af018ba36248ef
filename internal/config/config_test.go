package config

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig(t *testing.T) {
	tests := []struct {
		name     string
		env      map[string]string
		wantErr  bool
		validate func(t *testing.T, cfg *Config)
	}{
		{
			name: "Deve carregar os valores padrão",
			env:  map[string]string{},
			validate: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "Raw Data", cfg.Data.Dir)
				assert.Equal(t, "sqlite", cfg.Database.Driver)
				assert.Equal(t, "reports.db", cfg.Database.DSN)
				assert.Equal(t, []string{"json"}, cfg.Output.Formats)
				assert.Equal(t, []string{"wbr", "summary"}, cfg.WBRRefresh.Reports)
				assert.Equal(t, 2, cfg.WBRRefresh.MaxConcurrentJobs)
				assert.Equal(t, []string{"http://localhost:3000"}, cfg.Server.AllowedOrigins)
			},
		},
		{
			name: "Deve montar o DSN do postgres e normalizar formatos",
			env: map[string]string{
				"DATABASE_DRIVER":   "postgres",
				"DATABASE_USER":     "reports",
				"DATABASE_PASSWORD": "secret",
				"DATABASE_URL":      "db:5432/reports",
				"OUTPUT_FORMATS":    "JSON, xlsx",
			},
			validate: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "postgres://reports:secret@db:5432/reports", cfg.Database.DSN)
				assert.Equal(t, []string{"json", "xlsx"}, cfg.Output.Formats)
			},
		},
		{
			name:    "Deve rejeitar formato de saída desconhecido",
			env:     map[string]string{"OUTPUT_FORMATS": "docx"},
			wantErr: true,
		},
		{
			name:    "Deve rejeitar semana de referência inválida",
			env:     map[string]string{"WBR_CURRENT_WEEK_START": "07/07/2025"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			viper.Reset()
			t.Cleanup(viper.Reset)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			cfg, err := NewConfig()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			tt.validate(t, cfg)
		})
	}
}

func TestDataPaths(t *testing.T) {
	d := Data{Dir: "raw", MarketingFile: "m.csv", DailySalesFile: "/abs/d.csv", RegionalSalesFile: "r.csv"}

	assert.Equal(t, "raw/m.csv", d.MarketingPath())
	assert.Equal(t, "/abs/d.csv", d.DailySalesPath())
	assert.Equal(t, "raw/r.csv", d.RegionalSalesPath())
}

func TestWBRDates(t *testing.T) {
	w := WBR{CurrentWeekStart: "2025-07-07", CurrentMonth: "2025-06"}

	start, err := w.WeekStart()
	require.NoError(t, err)
	assert.Equal(t, 7, start.Day())

	month, err := w.Month()
	require.NoError(t, err)
	assert.Equal(t, 6, int(month.Month()))
}
