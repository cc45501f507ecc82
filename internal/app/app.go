// Package app wires configuration, storage, clients, and services into the
// shared application core used by cmd/checklisten-server.
package app

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/HiFromAjay/checklistenserver/internal/clients/authprovider"
	"github.com/HiFromAjay/checklistenserver/internal/common"
	"github.com/HiFromAjay/checklistenserver/internal/interfaces"
	"github.com/HiFromAjay/checklistenserver/internal/metrics"
	"github.com/HiFromAjay/checklistenserver/internal/services/checklist"
	"github.com/HiFromAjay/checklistenserver/internal/services/session"
	"github.com/HiFromAjay/checklistenserver/internal/storage"
)

// App holds all initialized services and clients.
type App struct {
	Config           *common.Config
	Logger           *common.Logger
	Storage          interfaces.StorageManager
	Metrics          *metrics.Collector
	AuthProvider     interfaces.AuthProviderClient
	ChecklistService interfaces.ChecklistService
	SessionService   interfaces.SessionService
	StartupTime      time.Time
}

// getBinaryDir returns the directory containing the executable.
func getBinaryDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

// NewApp initializes configuration, storage, the auth provider client, and
// the services. configPath may be empty, in which case the CHECKLISTEN_CONFIG
// environment variable and the binary directory are consulted.
func NewApp(configPath string) (*App, error) {
	binDir := getBinaryDir()

	if configPath == "" {
		configPath = os.Getenv("CHECKLISTEN_CONFIG")
	}
	if configPath == "" {
		configPath = filepath.Join(binDir, "checklisten.toml")
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			configPath = "config/checklisten.toml" // fallback for development
		}
	}

	config, err := common.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// Resolve relative storage paths to the binary directory
	if config.Storage.Checklists.Path != "" && !filepath.IsAbs(config.Storage.Checklists.Path) {
		config.Storage.Checklists.Path = filepath.Join(binDir, config.Storage.Checklists.Path)
	}
	if config.Storage.Sessions.Path != "" && !filepath.IsAbs(config.Storage.Sessions.Path) {
		config.Storage.Sessions.Path = filepath.Join(binDir, config.Storage.Sessions.Path)
	}

	logger := common.NewLogger(config.Logging.Level)

	storageManager, err := storage.NewManager(logger, config)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	collector := metrics.New()

	authClient := authprovider.NewClient(&config.Auth, authprovider.WithLogger(logger))

	app := &App{
		Config:           config,
		Logger:           logger,
		Storage:          storageManager,
		Metrics:          collector,
		AuthProvider:     authClient,
		ChecklistService: checklist.NewService(storageManager.Checklists(), logger),
		SessionService:   session.NewService(config, storageManager.Sessions(), logger),
		StartupTime:      time.Now(),
	}

	logger.Info().
		Str("stage", config.Stage).
		Str("version", common.GetVersion()).
		Msg("Application initialized")

	return app, nil
}

// Close releases application resources.
func (a *App) Close() {
	if a.Storage != nil {
		if err := a.Storage.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to close storage")
		}
	}
}
