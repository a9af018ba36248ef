package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/pflag"

	"github.com/vfg2006/marketing-reports/infrastructure/database"
	"github.com/vfg2006/marketing-reports/infrastructure/repository"
	"github.com/vfg2006/marketing-reports/internal/api"
	"github.com/vfg2006/marketing-reports/internal/config"
	"github.com/vfg2006/marketing-reports/internal/domain"
	"github.com/vfg2006/marketing-reports/internal/ingest"
	"github.com/vfg2006/marketing-reports/internal/report"
	"github.com/vfg2006/marketing-reports/internal/scheduler"
	"github.com/vfg2006/marketing-reports/internal/usecases/analyzing"
	"github.com/vfg2006/marketing-reports/internal/usecases/authenticating"
	"github.com/vfg2006/marketing-reports/pkg/log"
)

const usage = `Usage: reports <command> [flags]

Commands:
  list                  list available reports
  run [name...]         run reports (all when no name is given)
  serve                 start the HTTP API and the WBR refresh scheduler
  token                 print a signed API token

Run "reports <command> --help" for the command flags.
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	command, args := os.Args[1], os.Args[2:]

	var err error
	switch command {
	case "list":
		err = listCommand(args)
	case "run":
		err = runCommand(args)
	case "serve":
		err = serveCommand(args)
	case "token":
		err = tokenCommand(args)
	case "-h", "--help", "help":
		fmt.Fprint(os.Stdout, usage)
		return
	default:
		fmt.Fprintf(os.Stderr, "comando desconhecido: %s\n\n%s", command, usage)
		os.Exit(2)
	}

	if err != nil {
		log.L.WithError(err).Error("Execução finalizada com erro")
		os.Exit(1)
	}
}

// newFlagSet cria as flags comuns a todos os comandos
func newFlagSet(name string) *pflag.FlagSet {
	flags := pflag.NewFlagSet("reports "+name, pflag.ExitOnError)
	flags.String("log-level", "", "log level (trace, debug, info, warn, error)")
	flags.String("data-dir", "", "directory with the source CSV files")
	return flags
}

// loadConfig aplica as flags sobre .env e variáveis de ambiente e configura o logger
func loadConfig(flags *pflag.FlagSet) (*config.Config, error) {
	if err := config.BindFlags(flags); err != nil {
		return nil, err
	}

	cfg, err := config.NewConfig()
	if err != nil {
		return nil, err
	}

	log.Configure(cfg.App.LogLevel, os.Stderr)
	return cfg, nil
}

func newService(cfg *config.Config) (*analyzing.Service, error) {
	opts, err := analyzing.OptionsFromConfig(cfg.WBR)
	if err != nil {
		return nil, err
	}

	loader := ingest.NewSourceLoader(ingest.NewLoader(log.L), ingest.PathsFromConfig(cfg.Data))

	return analyzing.NewService(analyzing.NewRegistry(opts), loader, cfg.WBRRefresh.MaxConcurrentJobs).
		WithWriters(report.NewWriters(cfg.Output, cfg.PDF)...), nil
}

// openSnapshots conecta ao banco quando SNAPSHOTS_ENABLED=true; sem banco retorna nil
func openSnapshots(ctx context.Context, cfg config.Database) (repository.SnapshotRepository, func(), error) {
	if !cfg.Enabled {
		return nil, func() {}, nil
	}

	conn, err := database.NewConnection(ctx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("erro ao conectar ao banco %s: %w", cfg.Driver, err)
	}

	log.L.WithField("driver", conn.Driver()).Info("Conexão com o banco de snapshots estabelecida")
	return repository.NewSnapshotRepository(conn), func() { conn.Close() }, nil
}

func listCommand(args []string) error {
	flags := newFlagSet("list")
	if err := flags.Parse(args); err != nil {
		return err
	}

	cfg, err := loadConfig(flags)
	if err != nil {
		return err
	}

	service, err := newService(cfg)
	if err != nil {
		return err
	}

	return printReportList(os.Stdout, service.Reports())
}

func printReportList(w io.Writer, reports []analyzing.Report) error {
	for _, r := range reports {
		line := fmt.Sprintf("%-22s %-36s %s", r.Name(), r.Title(), strings.Join(r.Sources().Names(), ","))
		if fr, ok := r.(analyzing.FileReport); ok {
			line += " -> " + fr.OutputFile()
		}
		if _, err := fmt.Fprintln(w, strings.TrimRight(line, " ")); err != nil {
			return err
		}
	}
	return nil
}

func runCommand(args []string) error {
	flags := newFlagSet("run")
	flags.String("output-dir", "", "directory for the written files")
	flags.String("format", "", "comma list of output formats (json, xlsx, html, pdf)")
	flags.Bool("quiet", false, "do not print console reports")
	if err := flags.Parse(args); err != nil {
		return err
	}
	quiet, _ := flags.GetBool("quiet")

	cfg, err := loadConfig(flags)
	if err != nil {
		return err
	}

	ctx, _ := log.WithCorrelationID(context.Background())

	service, err := newService(cfg)
	if err != nil {
		return err
	}

	snapshots, closeDB, err := openSnapshots(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer closeDB()
	if snapshots != nil {
		service.WithSnapshots(snapshots)
	}

	outcomes, runErr := service.Run(ctx, flags.Args(), analyzing.RunOptions{
		Formats:      cfg.Output.Formats,
		SaveSnapshot: snapshots != nil,
	})

	for _, outcome := range outcomes {
		if outcome.Result != nil && !quiet {
			if err := report.Print(os.Stdout, outcome.Result); err != nil {
				return err
			}
			fmt.Fprintln(os.Stdout)
		}
		for _, file := range outcome.Files {
			log.L.WithFields(log.Fields{"report": outcome.Report, "file": file}).Info("Arquivo gravado")
		}
	}

	return runErr
}

func serveCommand(args []string) error {
	flags := newFlagSet("serve")
	flags.String("port", "", "HTTP port")
	if err := flags.Parse(args); err != nil {
		return err
	}

	cfg, err := loadConfig(flags)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	service, err := newService(cfg)
	if err != nil {
		return err
	}

	snapshots, closeDB, err := openSnapshots(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer closeDB()
	if snapshots != nil {
		service.WithSnapshots(snapshots)
	}

	authenticator := authenticating.NewService(cfg.Auth)

	refresher := scheduler.NewWBRRefreshService(service, cfg)
	if err := refresher.Start(ctx); err != nil {
		return fmt.Errorf("erro ao iniciar o agendador do WBR: %w", err)
	}

	server, err := api.New(cfg, service, snapshots, authenticator, refresher)
	if err != nil {
		return err
	}

	return server.Run(ctx)
}

func tokenCommand(args []string) error {
	flags := newFlagSet("token")
	role := flags.String("role", domain.RoleAdmin, "token role (admin or viewer)")
	if err := flags.Parse(args); err != nil {
		return err
	}

	cfg, err := loadConfig(flags)
	if err != nil {
		return err
	}

	token, expiresAt, err := authenticating.NewService(cfg.Auth).GenerateToken(*role)
	if err != nil {
		return err
	}

	log.L.WithFields(log.Fields{"role": *role, "expires_at": expiresAt}).Info("Token gerado")
	_, err = fmt.Fprintln(os.Stdout, token)
	return err
}
