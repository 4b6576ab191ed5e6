package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/xvierd/pomoflow/internal/adapters/git"
	"github.com/xvierd/pomoflow/internal/adapters/notification"
	"github.com/xvierd/pomoflow/internal/adapters/storage"
	"github.com/xvierd/pomoflow/internal/config"
	"github.com/xvierd/pomoflow/internal/logging"
	"github.com/xvierd/pomoflow/internal/ports"
	"github.com/xvierd/pomoflow/internal/services"
)

// appDeps groups all service-layer dependencies initialized at startup.
type appDeps struct {
	storage  ports.Storage
	tasks    *services.TaskService
	session  *services.SessionService
	git      ports.GitDetector
	notifier *notification.Notifier
	config   *config.Config
	logger   *slog.Logger
}

// app holds all initialized service dependencies.
// Populated by initializeServices() and accessible to all commands.
var app appDeps

// initializeServices sets up all the required services and adapters.
func initializeServices() error {
	var err error
	app.config, err = config.Load()
	if err != nil {
		// If config loading fails, use defaults
		app.config = config.DefaultConfig()
	}

	// Logs go to stderr so stdout stays clean for --json and the MCP stdio transport.
	app.logger, err = logging.New(app.config.Log, os.Stderr)
	if err != nil {
		return fmt.Errorf("invalid log configuration: %w", err)
	}
	slog.SetDefault(app.logger)

	app.notifier = notification.New(&app.config.Notifications)

	path := dbPath
	if path == "" {
		path = config.GetDBPath(app.config)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return fmt.Errorf("failed to create database directory: %w", err)
	}

	app.storage, err = storage.New(path)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}

	app.git = git.NewDetector()

	app.tasks = services.NewTaskService(app.storage)
	app.tasks.SetLogger(app.logger)
	app.tasks.SetNotifier(app.notifier)

	app.session = services.NewSessionService(app.storage)
	app.session.SetLogger(app.logger)
	app.session.SetNotifier(app.notifier)

	return nil
}

// cleanupServices closes all resources.
func cleanupServices() error {
	if app.storage != nil {
		err := app.storage.Close()
		app.storage = nil
		return err
	}
	return nil
}

// setupSignalHandler returns a context that is cancelled on interrupt signals.
func setupSignalHandler(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
}
