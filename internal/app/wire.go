//go:build wireinject
// +build wireinject

package app

import (
	"github.com/google/wire"
	"go.uber.org/zap"

	"meeting-summarizer/internal/app/metrics"
	"meeting-summarizer/internal/config"
)

// InitializeApp builds the full application graph from its configuration.
func InitializeApp(cfg *config.Config, logger *zap.Logger) (*App, error) {
	wire.Build(
		metrics.New,
		provideDAO,
		provideNormalizer,
		provideTranscriber,
		provideOllamaClient,
		provideSummarizer,
		providePipeline,
		provideSummaryService,
		provideHTTPLogger,
		provideServer,
		newApp,
	)
	return nil, nil
}
