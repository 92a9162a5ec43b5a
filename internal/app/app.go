// Package app assembles the application from its configuration.
package app

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"meeting-summarizer/internal/api/server"
	"meeting-summarizer/internal/api/v1/services"
	"meeting-summarizer/internal/app/audio"
	"meeting-summarizer/internal/app/metrics"
	"meeting-summarizer/internal/app/ollama"
	"meeting-summarizer/internal/app/pipeline"
	"meeting-summarizer/internal/app/repository"
	"meeting-summarizer/internal/app/repository/pg"
	"meeting-summarizer/internal/app/repository/sqlite"
	"meeting-summarizer/internal/app/summarize"
	"meeting-summarizer/internal/app/util/files"
	"meeting-summarizer/internal/app/whisper"
	"meeting-summarizer/internal/config"
)

// App bundles the wired components a command needs.
type App struct {
	Config   *config.Config
	DAO      repository.HistoryDAO
	Pipeline *pipeline.Pipeline
	Metrics  *metrics.Metrics
	Ollama   *ollama.Client
	Service  services.SummaryService
	Server   *server.Server
	Logger   *zap.Logger
}

// Close releases the store connection.
func (a *App) Close() error {
	return a.DAO.Close()
}

func provideDAO(cfg *config.Config) (repository.HistoryDAO, error) {
	switch cfg.DatabaseDriver {
	case "postgres":
		return pg.New(cfg.DatabaseDSN)
	default:
		if err := files.EnsureDir(filepath.Dir(cfg.DatabasePath)); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
		return sqlite.New(cfg.DatabasePath)
	}
}

func provideNormalizer(cfg *config.Config) *audio.Normalizer {
	return audio.NewNormalizer(cfg.FFmpegPath, cfg.FFprobePath)
}

func provideTranscriber(cfg *config.Config, logger *zap.Logger) *whisper.Transcriber {
	return whisper.NewTranscriber(cfg.WhisperBinary, cfg.WhisperModelDir, logger)
}

func provideOllamaClient(cfg *config.Config) *ollama.Client {
	return ollama.NewClient(cfg.OllamaURL, cfg.ServiceTimeout)
}

func provideSummarizer(cfg *config.Config, client *ollama.Client) summarize.Summarizer {
	if cfg.SummarizerBackend == "openai" {
		return summarize.NewOpenAISummarizer(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL)
	}
	return summarize.NewOllamaSummarizer(client)
}

func providePipeline(cfg *config.Config, normalizer *audio.Normalizer, transcriber *whisper.Transcriber,
	summarizer summarize.Summarizer, dao repository.HistoryDAO, m *metrics.Metrics, logger *zap.Logger) (*pipeline.Pipeline, error) {
	if err := files.EnsureDir(cfg.WorkDir); err != nil {
		return nil, fmt.Errorf("create work directory: %w", err)
	}
	return pipeline.New(normalizer, transcriber, summarizer, dao, m, cfg.WorkDir, logger), nil
}

func provideSummaryService(cfg *config.Config, p *pipeline.Pipeline, dao repository.HistoryDAO,
	client *ollama.Client, logger *zap.Logger) services.SummaryService {
	return services.NewSummaryService(p, dao, cfg.WhisperModelDir, client, cfg.UploadDir, logger)
}

func provideHTTPLogger(cfg *config.Config) *slog.Logger {
	if cfg.Environment == "production" {
		return slog.New(slog.NewJSONHandler(os.Stdout, nil))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, nil))
}

func provideServer(cfg *config.Config, service services.SummaryService, m *metrics.Metrics, httpLogger *slog.Logger) *server.Server {
	return server.NewServer(server.Config{
		Host:        cfg.HTTPHost,
		Port:        cfg.HTTPPort,
		IdleTimeout: cfg.ServiceTimeout,
		Environment: cfg.Environment,
	}, service, m, httpLogger)
}

func newApp(cfg *config.Config, dao repository.HistoryDAO, p *pipeline.Pipeline, m *metrics.Metrics,
	client *ollama.Client, service services.SummaryService, srv *server.Server, logger *zap.Logger) *App {
	return &App{
		Config:   cfg,
		DAO:      dao,
		Pipeline: p,
		Metrics:  m,
		Ollama:   client,
		Service:  service,
		Server:   srv,
		Logger:   logger,
	}
}
