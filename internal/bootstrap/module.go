package bootstrap

import (
	"context"
	"log/slog"
	"time"

	"go.uber.org/fx"
	"gorm.io/gorm"

	"github.com/UOR-Foundation/stone/internal/bootstrap/config"
	"github.com/UOR-Foundation/stone/internal/bootstrap/database"
	"github.com/UOR-Foundation/stone/internal/bootstrap/logging"
	cacheinfra "github.com/UOR-Foundation/stone/internal/infrastructure/cache"
	"github.com/UOR-Foundation/stone/internal/infrastructure/execrunner"
	sqliterepo "github.com/UOR-Foundation/stone/internal/infrastructure/persistence/sqlite/repository"
	sqliteuow "github.com/UOR-Foundation/stone/internal/infrastructure/persistence/sqlite/uow"
	githubtracker "github.com/UOR-Foundation/stone/internal/infrastructure/tracker/github"
	"github.com/UOR-Foundation/stone/internal/infrastructure/workflowfile"
	"github.com/UOR-Foundation/stone/internal/ports"
	"github.com/UOR-Foundation/stone/internal/usecase/orchestrator"
)

var Module = fx.Options(
	fx.Provide(provideConfig),
	fx.Provide(provideDatabase),
	fx.Provide(provideApp),
	fx.Provide(
		fx.Annotate(
			sqliterepo.NewRunRepository,
			fx.As(new(ports.RunRepository)),
		),
	),
	fx.Provide(
		fx.Annotate(
			sqliteuow.NewUnitOfWork,
			fx.As(new(ports.UnitOfWork)),
		),
	),
	fx.Provide(
		fx.Annotate(
			cacheinfra.NewSQLiteCache,
			fx.As(new(ports.Cache)),
		),
	),
	fx.Provide(provideTracker),
	fx.Provide(provideRunner),
	fx.Provide(provideWriter),
	fx.Provide(provideOrchestrator),
)

type configParams struct {
	fx.In

	Ctx        context.Context
	ConfigFile string `name:"configFile"`
}

func provideConfig(p configParams) (config.Config, error) {
	ctx := logging.WithAttrs(p.Ctx, slog.String("component", "bootstrap.fx"))
	return config.Load(ctx, p.ConfigFile)
}

func provideDatabase(lc fx.Lifecycle, ctx context.Context, cfg config.Config) (*gorm.DB, error) {
	logCtx := logging.WithAttrs(ctx, slog.String("component", "bootstrap.fx"))

	db, err := database.Open(logCtx, cfg.Database)
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		},
	})

	return db, nil
}

func provideApp(cfg config.Config, db *gorm.DB) *App {
	return &App{
		Config: cfg,
		DB:     db,
	}
}

func provideTracker(ctx context.Context, cfg config.Config) (ports.IssueTracker, error) {
	logCtx := logging.WithAttrs(ctx, slog.String("component", "bootstrap.fx"))

	hasToken := cfg.GitHub.Token != ""
	hasApp := cfg.GitHub.App.ID != 0 && cfg.GitHub.App.InstallationID != 0
	if !hasToken && !hasApp {
		logging.Warn(logCtx, "no github credentials configured, tracker calls will fail")
		return githubtracker.Unconfigured{}, nil
	}

	return githubtracker.NewClient(ctx, cfg.GitHub)
}

func provideRunner(cfg config.Config) ports.CommandRunner {
	return execrunner.New(time.Duration(cfg.Pipeline.TimeoutMinutes) * time.Minute)
}

func provideWriter(cfg config.Config) ports.WorkflowWriter {
	return workflowfile.New(cfg.Workflow.Dir)
}

func provideOrchestrator(
	cfg config.Config,
	tracker ports.IssueTracker,
	runner ports.CommandRunner,
	writer ports.WorkflowWriter,
	repo ports.RunRepository,
	uow ports.UnitOfWork,
	cache ports.Cache,
) (*orchestrator.Orchestrator, error) {
	profile, err := orchestrator.LoadProfile(cfg.Pipeline.ProfileFile)
	if err != nil {
		return nil, err
	}

	return orchestrator.New(
		orchestrator.Deps{
			Tracker: tracker,
			Runner:  runner,
			Writer:  writer,
			Repo:    repo,
			UOW:     uow,
			Cache:   cache,
		},
		profile,
		orchestrator.Commands{
			Test:   cfg.Pipeline.TestCommand,
			Build:  cfg.Pipeline.BuildCommand,
			Deploy: cfg.Pipeline.DeployCommands,
		},
	), nil
}
