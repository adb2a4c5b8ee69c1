// Package cli provides the shared initialization used by cmd/financas:
// environment loading, logging, configuration and storage setup.
package cli

import (
	"os"

	"github.com/joho/godotenv"

	"financas/internal/auth"
	"financas/internal/cache"
	"financas/internal/config"
	"financas/internal/core"
	"financas/internal/log"
	"financas/internal/services"
	"financas/internal/storage"
)

// App bundles the constructed services for a command invocation.
type App struct {
	Config *config.Config
	Logger *log.Logger
	Repo   *storage.SQLiteRepository
	Users  *services.UserService
	Ledger *services.LedgerService
	Auth   *services.AuthService
}

// LoadEnvFile loads the .env file for local development. Errors are
// ignored; the file is optional.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// SetupLogger initializes structured logging and installs it as the
// process default.
func SetupLogger(level string) *log.Logger {
	logger := log.New(log.Config{Level: log.ParseLevel(level), Component: "financas"})
	log.SetDefault(logger)
	return logger
}

// Bootstrap loads configuration, opens storage and wires the services.
// It exits the process on configuration or storage failure, logging the
// reason first.
func Bootstrap() *App {
	LoadEnvFile()

	cfg, err := config.Load()
	if err != nil {
		SetupLogger("info").Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	logger := SetupLogger(cfg.LogLevel)
	if err := cfg.Validate(); err != nil {
		logger.Error("configuration validation failed", "error", err)
		os.Exit(1)
	}

	repo, err := storage.NewSQLiteRepository(cfg.DBPath)
	if err != nil {
		logger.Error("failed to open database", "error", err, "path", cfg.DBPath)
		os.Exit(1)
	}

	credOpts := []auth.Option{
		auth.WithIterations(cfg.PBKDF2Iterations),
		auth.WithLogger(logger.Logger),
	}
	if cfg.AllowLegacyPlaintext {
		credOpts = append(credOpts, auth.WithLegacyPlaintext())
	}
	creds := auth.NewCredentialStore(credOpts...)
	tokens := auth.NewTokenIssuer(cfg.SessionSecret, cfg.TokenTTL)
	reports := cache.NewLRUCache[core.MonthlySummary](cfg.ReportCacheSize, cfg.ReportCacheTTL)

	return &App{
		Config: cfg,
		Logger: logger,
		Repo:   repo,
		Users:  services.NewUserService(repo, creds, logger),
		Ledger: services.NewLedgerService(repo, reports, logger),
		Auth:   services.NewAuthService(repo, creds, tokens, logger),
	}
}

// Close releases the app's resources.
func (a *App) Close() {
	if a.Repo != nil {
		if err := a.Repo.Close(); err != nil {
			a.Logger.Error("failed to close database", "error", err)
		}
	}
}
