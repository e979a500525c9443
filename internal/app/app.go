package app

import (
	"fmt"

	"github.com/riskibarqy/nfl-data-pipeline/external/nflverse"
	"github.com/riskibarqy/nfl-data-pipeline/external/supabase"
	"github.com/riskibarqy/nfl-data-pipeline/internal/config"
	"github.com/riskibarqy/nfl-data-pipeline/internal/infrastructure/storage/jsonfile"
	"github.com/riskibarqy/nfl-data-pipeline/internal/observability"
	"github.com/riskibarqy/nfl-data-pipeline/internal/platform/cache"
	"github.com/riskibarqy/nfl-data-pipeline/internal/platform/logging"
	"github.com/riskibarqy/nfl-data-pipeline/internal/platform/resilience"
	"github.com/riskibarqy/nfl-data-pipeline/internal/usecase"
)

// NewPipeline wires the nflverse provider, the JSON file store and the remote uploader into a
// pipeline service.
func NewPipeline(cfg config.Config, logger *logging.Logger) (*usecase.PipelineService, error) {
	if logger == nil {
		logger = logging.Default()
	}

	store, err := jsonfile.NewStore(cfg.OutputDir)
	if err != nil {
		return nil, fmt.Errorf("build dataset store: %w", err)
	}

	provider := nflverse.NewClient(nflverse.ClientConfig{
		HTTPClient: observability.NewHTTPClient(cfg.NFLVerseTimeout),
		BaseURL:    cfg.NFLVerseBaseURL,
		UserAgent:  cfg.ServiceName + "/" + cfg.ServiceVersion,
		Logger:     logger,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.NFLVerseCircuitEnabled,
			FailureThreshold: cfg.NFLVerseCircuitFailureCount,
			OpenTimeout:      cfg.NFLVerseCircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.NFLVerseCircuitHalfOpenMax,
		},
		Cache: cache.NewStore[[]byte](),
	})

	uploader := supabase.NewUploader(supabase.UploaderConfig{
		HTTPClient: observability.NewHTTPClient(cfg.SupabaseTimeout),
		BaseURL:    cfg.SupabaseURL,
		Key:        cfg.SupabaseKey,
		BatchSize:  cfg.SupabaseBatchSize,
		Logger:     logger,
	})
	if !cfg.UploadConfigured() {
		logger.Info("remote upload disabled", "reason", "SUPABASE_URL or SUPABASE_KEY empty")
		if cfg.UploadAfterFetch {
			logger.Warn("PIPELINE_UPLOAD is set but remote upload is disabled; uploads will be skipped")
		}
	}

	svc := usecase.NewPipelineService(provider, store, uploader, usecase.PipelineConfig{
		CurrentSeason:      cfg.CurrentSeason,
		HistoryStartSeason: cfg.HistoryStartSeason,
		UploadAfterFetch:   cfg.UploadAfterFetch,
	}, logger)

	return svc, nil
}
