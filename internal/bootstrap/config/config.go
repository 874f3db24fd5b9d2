package config

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/spf13/viper"

	"github.com/UOR-Foundation/stone/internal/bootstrap/logging"
	"github.com/UOR-Foundation/stone/internal/errs"
)

type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Database DatabaseConfig `mapstructure:"database"`
	GitHub   GitHubConfig   `mapstructure:"github"`
	Pipeline PipelineConfig `mapstructure:"pipeline"`
	Workflow WorkflowConfig `mapstructure:"workflow"`
}

type AppConfig struct {
	Name string `mapstructure:"name"`
	Env  string `mapstructure:"env"`
}

type DatabaseConfig struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
}

// GitHubConfig selects the tracker auth mode: a personal token, or a GitHub
// App installation when app.id and app.installation_id are set.
type GitHubConfig struct {
	Owner         string          `mapstructure:"owner"`
	Repo          string          `mapstructure:"repo"`
	Token         string          `mapstructure:"token"`
	WebhookSecret string          `mapstructure:"webhook_secret"`
	App           GitHubAppConfig `mapstructure:"app"`
}

type GitHubAppConfig struct {
	ID             int64  `mapstructure:"id"`
	InstallationID int64  `mapstructure:"installation_id"`
	PrivateKeyFile string `mapstructure:"private_key_file"`
}

type PipelineConfig struct {
	ProfileFile    string            `mapstructure:"profile_file"`
	TestCommand    string            `mapstructure:"test_command"`
	BuildCommand   string            `mapstructure:"build_command"`
	DeployCommands map[string]string `mapstructure:"deploy_commands"`
	TimeoutMinutes int               `mapstructure:"timeout_minutes"`
}

type WorkflowConfig struct {
	Dir string `mapstructure:"dir"`
}

func Load(ctx context.Context, configFile string) (Config, error) {
	if ctx == nil {
		return Config{}, errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return Config{}, errs.Wrap(err, "check context")
	}

	logCtx := logging.WithAttrs(ctx, slog.String("component", "bootstrap.config"))

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("STONE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile == "" && errors.As(err, &notFound) {
			// Keep default and env-backed config when no file is provided.
			logging.Warn(logCtx, "config file not found, fallback to defaults and env")
		} else {
			return Config{}, errs.Wrap(err, "read config")
		}
	} else {
		logging.Info(logCtx, "using config file", slog.String("path", v.ConfigFileUsed()))
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, errs.Wrap(err, "unmarshal config")
	}

	if cfg.Database.DSN == "" {
		return Config{}, errors.New("database.dsn is required")
	}
	if cfg.Pipeline.TimeoutMinutes <= 0 {
		cfg.Pipeline.TimeoutMinutes = 30
	}

	logging.Info(
		logCtx,
		"config loaded",
		slog.String("app", cfg.App.Name),
		slog.String("env", cfg.App.Env),
		slog.String("repository", cfg.GitHub.Owner+"/"+cfg.GitHub.Repo),
		slog.String("database_driver", cfg.Database.Driver),
	)

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "stone")
	v.SetDefault("app.env", "local")
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", ".stone/state/stone.sqlite")
	v.SetDefault("pipeline.profile_file", "pipeline.toml")
	v.SetDefault("pipeline.test_command", "go test ./...")
	v.SetDefault("pipeline.build_command", "go build ./...")
	v.SetDefault("pipeline.timeout_minutes", 30)
	v.SetDefault("workflow.dir", ".github/workflows")
}
