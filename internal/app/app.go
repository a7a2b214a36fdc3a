package app

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/dori/devtasks/internal/config"
	"github.com/dori/devtasks/internal/db"
	"github.com/dori/devtasks/internal/export"
	"github.com/dori/devtasks/internal/logging"
	"github.com/dori/devtasks/internal/notify"
	"github.com/gofrs/flock"
)

// App holds the application state and dependencies
type App struct {
	DB       *db.DB
	Notifier *notify.Notifier
	Logger   *slog.Logger
	Config   *config.Config
	DataDir  string

	logFile  io.Closer
	lockFile *flock.Flock
}

// New creates a new application instance. It takes the single-instance
// lock, so only one board runs per data directory.
func New(cfg *config.Config) (*App, error) {
	if cfg == nil {
		cfg = config.Default()
	}

	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	logger, logFile, err := logging.OpenFile(cfg.LogPath(), cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config:   cfg,
		DataDir:  cfg.DataDir,
		Logger:   logger,
		Notifier: notify.NewNotifier(cfg.Notify),
		logFile:  logFile,
	}

	if err := app.acquireLock(cfg.LockPath()); err != nil {
		logFile.Close()
		return nil, err
	}

	database, err := db.Open(cfg.DBPath, logger)
	if err != nil {
		app.releaseLock()
		logFile.Close()
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	app.DB = database

	logger.Info("started", "data_dir", cfg.DataDir, "db", cfg.DBPath)
	return app, nil
}

// acquireLock acquires an exclusive file lock to prevent multiple instances
func (a *App) acquireLock(path string) error {
	a.lockFile = flock.New(path)

	locked, err := a.lockFile.TryLock()
	if err != nil {
		return fmt.Errorf("failed to acquire lock: %w", err)
	}

	if !locked {
		return fmt.Errorf("another instance of devtasks is already running")
	}

	return nil
}

// releaseLock releases the file lock
func (a *App) releaseLock() {
	if a.lockFile != nil {
		a.lockFile.Unlock()
	}
}

// Export writes all tasks to a timestamped YAML file in the data directory
// and returns its path
func (a *App) Export(now time.Time) (string, error) {
	tasks, err := a.DB.ListTasks()
	if err != nil {
		return "", err
	}

	path := filepath.Join(a.DataDir, export.FileName(now))
	if err := export.WriteFile(path, tasks, now); err != nil {
		return "", err
	}

	a.Logger.Info("exported tasks", "path", path, "count", len(tasks))
	return path, nil
}

// Close cleans up application resources
func (a *App) Close() error {
	var errs []error

	if a.DB != nil {
		if err := a.DB.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		}
	}

	a.releaseLock()

	if a.Logger != nil {
		a.Logger.Info("stopped")
	}
	if a.logFile != nil {
		if err := a.logFile.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close log file: %w", err))
		}
	}

	if len(errs) > 0 {
		return errs[0]
	}
	return nil
}
