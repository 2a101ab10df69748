package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/losebird/lifelog-ai/internal/cli"
	"github.com/losebird/lifelog-ai/internal/cli/backups"
	"github.com/losebird/lifelog-ai/internal/cli/habits"
	"github.com/losebird/lifelog-ai/internal/cli/insights"
	"github.com/losebird/lifelog-ai/internal/cli/records"
	"github.com/losebird/lifelog-ai/internal/cli/system"
	"github.com/losebird/lifelog-ai/internal/cli/todos"
	"github.com/losebird/lifelog-ai/internal/config"
	"github.com/losebird/lifelog-ai/internal/constants"
	"github.com/losebird/lifelog-ai/internal/datastore"
	"github.com/losebird/lifelog-ai/internal/enrich"
	"github.com/losebird/lifelog-ai/internal/errors"
	"github.com/losebird/lifelog-ai/internal/keyring"
	"github.com/losebird/lifelog-ai/internal/logger"
	"github.com/losebird/lifelog-ai/internal/storage"
)

type CLI struct {
	Version   kong.VersionFlag
	ConfigDir string `help:"Directory holding config, data, logs and backups." type:"path" env:"LIFELOG_CONFIG_DIR" default:"${config_dir}"`
	Config    string `help:"Explicit config file path." type:"path" env:"LIFELOG_CONFIG"`
	Debug     bool   `help:"Log debug output to stderr."`

	Init    system.InitCmd       `cmd:"" help:"Initialize lifelog storage and write a default config."`
	Tui     system.TuiCmd        `cmd:"" help:"Launch the interactive dashboard." default:"1"`
	Record  records.RecordCmd    `cmd:"" help:"Manage journal records."`
	Todo    todos.TodoCmd        `cmd:"" help:"Manage todos."`
	Habit   habits.HabitCmd      `cmd:"" help:"Manage habits and habit logs."`
	Review  insights.ReviewCmd   `cmd:"" help:"Review journaling activity."`
	Insight insights.InsightsCmd `cmd:"" name:"insights" help:"AI suggestions and reports."`
	Backup  struct {
		Create  backups.BackupCreateCmd  `cmd:"" help:"Create a manual backup." default:"1"`
		List    backups.BackupListCmd    `cmd:"" help:"List available backups."`
		Restore backups.BackupRestoreCmd `cmd:"" help:"Restore from a backup."`
	} `cmd:"" help:"Manage data backups."`
	Keyring struct {
		Set    system.KeyringSetCmd    `cmd:"" help:"Store a secret in the OS keyring."`
		Delete system.KeyringDeleteCmd `cmd:"" help:"Delete a secret from the OS keyring."`
		Status system.KeyringStatusCmd `cmd:"" help:"Check the OS keyring and stored secrets."`
	} `cmd:"" help:"Manage secrets in the OS keyring."`
}

func main() {
	os.Exit(run())
}

func run() int {
	var app CLI
	parser, err := kong.New(&app,
		kong.Name(constants.AppName),
		kong.Description("AI-assisted journal, todo board and habit tracker"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{
			"version":    constants.Version,
			"config_dir": constants.DefaultConfigDir,
		},
	)
	errors.Fatal(err)
	kctx, err := parser.Parse(os.Args[1:])
	if err != nil {
		parser.FatalIfErrorf(err)
		return 2
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	appCtx, cleanup, err := setup(ctx, &app, kctx.Command())
	if err != nil {
		fmt.Fprintln(os.Stderr, errors.Formatf("failed to start %s: %v", constants.AppName, err))
		return 1
	}
	defer cleanup()

	if err := kctx.Run(appCtx); err != nil {
		logger.Error("Command execution failed", "command", kctx.Command(), "error", err)
		fmt.Fprintln(os.Stderr, errors.Format(err))
		return 1
	}
	return 0
}

// setup resolves config and secrets, opens the backend and, for every
// command except init and keyring, loads the data store.
func setup(ctx context.Context, app *CLI, command string) (*cli.Context, func(), error) {
	cfg, err := config.Load(config.Options{Dir: app.ConfigDir, File: app.Config})
	if err != nil {
		return nil, nil, err
	}
	if err := logger.Init(logger.Config{Debug: app.Debug || cfg.Log.Debug, ConfigDir: cfg.Dir}); err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	var password string
	if cfg.Storage.Backend == string(storage.BackendPostgres) {
		password = secret(config.DBPasswordFromEnv(), keyring.DBPassword)
	}
	backend, err := storage.Open(cfg.StorageSpec(password))
	if err != nil {
		return nil, nil, err
	}

	enricher := newEnricher(cfg)
	store := datastore.New(storage.NewCollections(backend), enricher, datastore.Options{
		MinRecords:        cfg.Insights.MinRecords,
		Window:            cfg.Insights.Window,
		SuggestionTimeout: 2 * cfg.AI.Timeout,
	})

	appCtx := &cli.Context{
		Ctx:      ctx,
		Config:   cfg,
		Backend:  backend,
		Store:    store,
		Enricher: enricher,
	}
	cleanup := func() {
		if err := store.Close(); err != nil {
			logger.Warn("Failed to close data store", "error", err)
		}
		if err := backend.Close(); err != nil {
			logger.Warn("Failed to close storage", "error", err)
		}
	}

	if strings.HasPrefix(command, "init") || strings.HasPrefix(command, "keyring") {
		return appCtx, cleanup, nil
	}
	if err := backend.Load(); err != nil {
		cleanup()
		return nil, nil, err
	}
	if err := store.Load(ctx); err != nil {
		cleanup()
		return nil, nil, err
	}
	return appCtx, cleanup, nil
}

// secret prefers the environment over the OS keyring.
func secret(env string, s keyring.Secret) string {
	if env != "" {
		return env
	}
	return keyring.Lookup(s)
}

// newEnricher picks the AI client. Without a key, or with AI disabled, every
// enrichment falls back to neutral defaults.
func newEnricher(cfg *config.Config) *enrich.Safe {
	if !cfg.AI.Enabled {
		return enrich.NewSafe(nil)
	}
	key := secret(config.APIKeyFromEnv(), keyring.APIKey)
	if key == "" {
		logger.Debug("No AI API key configured, enrichment disabled")
		return enrich.NewSafe(nil)
	}
	client, err := enrich.NewOpenAIClient(cfg.EnrichConfig(key), nil)
	if err != nil {
		logger.Warn("AI client unavailable, enrichment disabled", "error", err)
		return enrich.NewSafe(nil)
	}
	return enrich.NewSafe(client)
}
