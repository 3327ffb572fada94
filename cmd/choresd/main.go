package main

import (
	"database/sql"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/sandeepkv93/choresd/internal/scheduler"
	"github.com/sandeepkv93/choresd/internal/service"
	"github.com/sandeepkv93/choresd/internal/storage"
	"github.com/sandeepkv93/choresd/internal/update"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "choresd: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := update.RuntimeConfigFromEnv(update.DefaultRuntimeConfig())

	logger, err := newLogger(cfg.LogFile)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync()

	db, err := sql.Open("sqlite3", cfg.DBPath+"?_foreign_keys=on")
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	if err := storage.MigrateUp(db); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	repo, err := storage.NewSQLiteRepository(db)
	if err != nil {
		return fmt.Errorf("init repository: %w", err)
	}
	svc := service.New(repo, logger)

	engine := scheduler.NewEngine(cfg.SchedulerBuffer)
	engine.Start()
	defer engine.Stop()

	now := time.Now()
	if err := engine.Schedule(scheduler.DueEvent{TriggerAt: scheduler.NextCheckTime(cfg.DueCheckHour, now)}); err != nil {
		return fmt.Errorf("schedule due check: %w", err)
	}
	// Catch anything already due rather than waiting for tomorrow's slot.
	if err := engine.Schedule(scheduler.DueEvent{TriggerAt: now.Add(2 * time.Second)}); err != nil {
		return fmt.Errorf("schedule startup check: %w", err)
	}

	var notifier update.DesktopNotifier = update.NoopDesktopNotifier{}
	if cfg.DesktopNotifications {
		notifier = update.ExecDesktopNotifier{}
	}

	logger.Info("starting choresd",
		zap.String("db_path", cfg.DBPath),
		zap.Int("due_check_hour", cfg.DueCheckHour))

	model := update.NewModelWithConfig(svc, engine, notifier, cfg)
	program := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("run program: %w", err)
	}
	return nil
}

// newLogger writes JSON logs to the configured file. Logging to stdout would
// corrupt the terminal UI, so without a file everything is discarded.
func newLogger(path string) (*zap.Logger, error) {
	if path == "" {
		return zap.NewNop(), nil
	}
	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{path}
	cfg.ErrorOutputPaths = []string{path}
	return cfg.Build()
}
