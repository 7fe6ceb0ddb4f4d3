package pipeline

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/statementlab/bankparse/internal/config"
	"github.com/statementlab/bankparse/internal/gemini"
	infraBQ "github.com/statementlab/bankparse/internal/infra/bigquery"
	"github.com/statementlab/bankparse/internal/ocr"
	"github.com/statementlab/bankparse/internal/orientation"
)

// FromConfig builds the standard parsing pipeline from application
// configuration. The returned cleanup closes the BigQuery client when one was
// configured; it is safe to call even on a partial build.
func FromConfig(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Pipeline, func(), error) {
	cleanup := func() {}

	if err := cfg.Validate(); err != nil {
		return nil, cleanup, err
	}

	client, err := gemini.NewClient(ctx, gemini.Config{
		APIKey:          cfg.Gemini.APIKey,
		ExtractionModel: cfg.Gemini.ExtractionModel,
		InsightModel:    cfg.Gemini.InsightModel,
		VisionModel:     cfg.Gemini.VisionModel,
	}, log)
	if err != nil {
		return nil, cleanup, fmt.Errorf("FromConfig: creating gemini client: %w", err)
	}

	engine := orientation.NewTesseractEngine(cfg.Tesseract)
	var corrector ocr.Corrector
	if engine.Available() {
		corrector = orientation.NewResolver(engine, engine, log)
	} else {
		log.Warn().Str("binary", cfg.Tesseract).Msg("Tesseract not found, skipping rotation correction")
	}

	deps := Deps{
		Fetcher:  NewSourceFetcher(cfg.SpoolDir),
		Loader:   DocumentLoader{},
		OCR:      ocr.NewReader(corrector, client, log),
		Extract:  client,
		Insights: client,
		Log:      log,
	}

	if cfg.BigQuery.ProjectID != "" {
		repo, err := infraBQ.NewRepository(ctx, cfg.BigQuery.ProjectID, cfg.BigQuery.DatasetID)
		if err != nil {
			return nil, cleanup, fmt.Errorf("FromConfig: %w", err)
		}
		deps.Sink = repo
		cleanup = func() { repo.Close() }
	}

	return NewStatementPipeline(deps), cleanup, nil
}
