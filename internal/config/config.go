package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Config struct {
	App        App        `mapstructure:",squash"`
	Data       Data       `mapstructure:",squash"`
	Output     Output     `mapstructure:",squash"`
	Server     Server     `mapstructure:",squash"`
	Database   Database   `mapstructure:",squash"`
	Auth       Auth       `mapstructure:",squash"`
	RateLimit  RateLimit  `mapstructure:",squash"`
	WBR        WBR        `mapstructure:",squash"`
	WBRRefresh WBRRefresh `mapstructure:",squash"`
	PDF        PDF        `mapstructure:",squash"`
}

type App struct {
	LogLevel string `mapstructure:"log_level" validate:"oneof=trace debug info warn warning error fatal panic"`
}

type Data struct {
	Dir               string `mapstructure:"data_dir" validate:"required"`
	MarketingFile     string `mapstructure:"marketing_file" validate:"required"`
	DailySalesFile    string `mapstructure:"daily_sales_file" validate:"required"`
	RegionalSalesFile string `mapstructure:"regional_sales_file" validate:"required"`
}

// MarketingPath retorna o caminho completo do CSV de marketing
func (d Data) MarketingPath() string { return d.resolve(d.MarketingFile) }

// DailySalesPath retorna o caminho completo do CSV de vendas diárias
func (d Data) DailySalesPath() string { return d.resolve(d.DailySalesFile) }

// RegionalSalesPath retorna o caminho completo do CSV de vendas regionais
func (d Data) RegionalSalesPath() string { return d.resolve(d.RegionalSalesFile) }

func (d Data) resolve(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(d.Dir, name)
}

type Output struct {
	Dir     string   `mapstructure:"output_dir" validate:"required"`
	Formats []string `mapstructure:"output_formats" validate:"dive,oneof=json xlsx html pdf"`
}

type Server struct {
	Host           string   `mapstructure:"host"`
	Port           string   `mapstructure:"port" validate:"required"`
	AllowedOrigins []string `mapstructure:"cors_allowed_origins"`
}

type Database struct {
	DSN      string `mapstructure:"-"`
	Driver   string `mapstructure:"database_driver" validate:"oneof=sqlite postgres"`
	Password string `mapstructure:"database_password"`
	URL      string `mapstructure:"database_url"`
	User     string `mapstructure:"database_user"`
	Path     string `mapstructure:"database_path"`
	Enabled  bool   `mapstructure:"snapshots_enabled"`
}

type Auth struct {
	Secret            string        `mapstructure:"auth_secret"`
	AdminPasswordHash string        `mapstructure:"auth_admin_password_hash"`
	TokenTTL          time.Duration `mapstructure:"auth_token_ttl"`
}

type RateLimit struct {
	RPS   float64 `mapstructure:"rate_limit_rps" validate:"gte=0"`
	Burst int     `mapstructure:"rate_limit_burst" validate:"gte=0"`
}

// WBR define a semana e o mês de referência do relatório semanal
type WBR struct {
	CurrentWeekStart string `mapstructure:"wbr_current_week_start" validate:"datetime=2006-01-02"`
	CurrentMonth     string `mapstructure:"wbr_current_month" validate:"datetime=2006-01"`
}

// WeekStart converte WBR_CURRENT_WEEK_START para time.Time
func (w WBR) WeekStart() (time.Time, error) {
	return time.Parse(time.DateOnly, w.CurrentWeekStart)
}

// Month converte WBR_CURRENT_MONTH para o primeiro dia do mês
func (w WBR) Month() (time.Time, error) {
	return time.Parse("2006-01", w.CurrentMonth)
}

type WBRRefresh struct {
	CronSchedule      string   `mapstructure:"wbr_refresh_cron"`
	Enabled           bool     `mapstructure:"wbr_refresh_enabled"`
	Reports           []string `mapstructure:"wbr_refresh_reports"`
	MaxConcurrentJobs int      `mapstructure:"wbr_refresh_max_concurrent" validate:"gte=1"`
}

type PDF struct {
	ChromePath string        `mapstructure:"pdf_chrome_path"`
	Timeout    time.Duration `mapstructure:"pdf_timeout"`
}

func SetDefaults() {
	viper.SetDefault("LOG_LEVEL", "info")

	viper.SetDefault("DATA_DIR", "Raw Data")
	viper.SetDefault("MARKETING_FILE", "monthly_marketing_channel_level.csv")
	viper.SetDefault("DAILY_SALES_FILE", "daily_sales.csv")
	viper.SetDefault("REGIONAL_SALES_FILE", "regional_sales.csv")

	viper.SetDefault("OUTPUT_DIR", ".")
	viper.SetDefault("OUTPUT_FORMATS", "json")

	viper.SetDefault("HOST", "localhost")
	viper.SetDefault("PORT", "8000")
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")

	viper.SetDefault("DATABASE_DRIVER", "sqlite")
	viper.SetDefault("DATABASE_PATH", "reports.db")
	viper.SetDefault("DATABASE_URL", "localhost:5432/reports?sslmode=disable")
	viper.SetDefault("DATABASE_USER", "postgres")
	viper.SetDefault("DATABASE_PASSWORD", "")
	viper.SetDefault("SNAPSHOTS_ENABLED", false)

	viper.SetDefault("AUTH_SECRET", "")
	viper.SetDefault("AUTH_ADMIN_PASSWORD_HASH", "")
	viper.SetDefault("AUTH_TOKEN_TTL", "24h")

	viper.SetDefault("RATE_LIMIT_RPS", 10)
	viper.SetDefault("RATE_LIMIT_BURST", 20)

	viper.SetDefault("WBR_CURRENT_WEEK_START", "2025-07-07")
	viper.SetDefault("WBR_CURRENT_MONTH", "2025-06")

	viper.SetDefault("WBR_REFRESH_CRON", "0 6 * * 1") // Toda segunda-feira às 6h da manhã
	viper.SetDefault("WBR_REFRESH_ENABLED", false)
	viper.SetDefault("WBR_REFRESH_REPORTS", "wbr,summary")
	viper.SetDefault("WBR_REFRESH_MAX_CONCURRENT", 2)

	viper.SetDefault("PDF_CHROME_PATH", "")
	viper.SetDefault("PDF_TIMEOUT", "60s")
}

// BindFlags associa as flags da linha de comando às chaves do Viper
func BindFlags(flags *pflag.FlagSet) error {
	bindings := map[string]string{
		"data-dir":   "DATA_DIR",
		"output-dir": "OUTPUT_DIR",
		"format":     "OUTPUT_FORMATS",
		"log-level":  "LOG_LEVEL",
		"port":       "PORT",
	}

	for flag, key := range bindings {
		f := flags.Lookup(flag)
		if f == nil {
			continue
		}
		if err := viper.BindPFlag(key, f); err != nil {
			return fmt.Errorf("erro ao associar flag %s: %w", flag, err)
		}
	}
	return nil
}

func NewConfig() (*Config, error) {
	loadEnvFile()

	config := &Config{}

	SetDefaults()

	viper.SetConfigType("env")
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		logrus.Debug("Usando variáveis carregadas pelo godotenv (viper não conseguiu ler .env): ", err)
	}

	err := viper.Unmarshal(&config, viper.DecodeHook(
		mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	))
	if err != nil {
		return nil, err
	}

	config.Output.Formats = normalizeList(config.Output.Formats)
	config.WBRRefresh.Reports = normalizeList(config.WBRRefresh.Reports)
	config.Server.AllowedOrigins = normalizeList(config.Server.AllowedOrigins)
	config.Database.DSN = buildDSN(config.Database)

	if err := Validate(config); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate verifica as restrições declaradas nas tags validate
func Validate(cfg *Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		return fmt.Errorf("configuração inválida: %w", err)
	}
	return nil
}

func buildDSN(db Database) string {
	if db.Driver == "sqlite" {
		return db.Path
	}

	return fmt.Sprintf(
		"%s://%s:%s@%s",
		db.Driver,
		db.User,
		db.Password,
		db.URL,
	)
}

func normalizeList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, item := range in {
		for _, part := range strings.Split(item, ",") {
			part = strings.ToLower(strings.TrimSpace(part))
			if part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// Função auxiliar para carregar o arquivo .env usando godotenv
func loadEnvFile() {
	cwd, err := os.Getwd()
	if err != nil {
		logrus.Warn("Não foi possível obter o diretório atual: ", err)
		return
	}

	locations := []string{
		filepath.Join(cwd, ".env"),
		filepath.Join(filepath.Dir(cwd), ".env"),
		filepath.Join(cwd, "../../.env"),
	}

	for _, location := range locations {
		if err := godotenv.Load(location); err == nil {
			logrus.Debug("Arquivo .env carregado de: ", location)
			return
		}
	}

	logrus.Debug("Nenhum arquivo .env encontrado, usando variáveis de ambiente e padrões")
}
