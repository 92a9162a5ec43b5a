// Package bootstrap loads the configuration and assembles the application
// for the CLI commands.
package bootstrap

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"meeting-summarizer/internal/app"
	"meeting-summarizer/internal/config"
)

// Flags shared across all commands, bound by the root command.
var (
	ConfigFile string
	Verbose    bool
)

// Load reads the configuration and resolves data paths against the working
// directory.
func Load() (*config.Config, error) {
	if ConfigFile == "" {
		ConfigFile = os.Getenv("MSUM_CONFIG")
	}

	cfg, err := config.Load(ConfigFile)
	if err != nil {
		return nil, err
	}

	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("resolve working directory: %w", err)
	}
	cfg.ResolveDataPaths(wd)
	return cfg, nil
}

// NewLogger builds the application logger for the configured environment.
func NewLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.Environment == "production" && !Verbose {
		return zap.NewProduction()
	}
	zcfg := zap.NewDevelopmentConfig()
	if !Verbose {
		zcfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	return zcfg.Build()
}

// App loads the configuration and wires the full application. The returned
// cleanup closes the store and flushes the logger.
func App() (*app.App, func(), error) {
	cfg, err := Load()
	if err != nil {
		return nil, nil, err
	}

	logger, err := NewLogger(cfg)
	if err != nil {
		return nil, nil, err
	}

	a, err := app.InitializeApp(cfg, logger)
	if err != nil {
		logger.Sync()
		return nil, nil, err
	}

	cleanup := func() {
		a.Close()
		logger.Sync()
	}
	return a, cleanup, nil
}
