package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/statementlab/bankparse/internal/api/handlers"
	"github.com/statementlab/bankparse/internal/api/middleware"
	"github.com/statementlab/bankparse/internal/config"
	"github.com/statementlab/bankparse/internal/jobs"
	"github.com/statementlab/bankparse/internal/jobs/inmemory"
	"github.com/statementlab/bankparse/internal/logger"
	"github.com/statementlab/bankparse/internal/pipeline"
)

func main() {
	log := logger.New()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	ctx := context.Background()

	pl, cleanup, err := pipeline.FromConfig(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to build parsing pipeline")
	}
	defer cleanup()

	// Job infrastructure. The in-memory queue keeps the API and worker in one
	// process; swap for Cloud Tasks or Pub/Sub to scale out.
	jobStore := inmemory.NewStore()
	jobQueue := inmemory.NewQueue(cfg.QueueBuffer, cfg.Workers, jobStore)

	workerCtx, cancelWorker := context.WithCancel(ctx)
	defer cancelWorker()

	jobHandler := func(ctx context.Context, job jobs.Job) error {
		parseJob, ok := job.(*jobs.ParseStatementJob)
		if !ok {
			return fmt.Errorf("unexpected job type: %T", job)
		}

		log.Info().
			Str("job_id", parseJob.JobID).
			Str("source", parseJob.SourceURI).
			Msg("Processing parse job")

		result, err := pl.Run(ctx, parseJob.SourceURI)
		if err != nil {
			log.Error().Err(err).Str("job_id", parseJob.JobID).Msg("Parse job failed")
			return err
		}

		parseJob.Result = result
		log.Info().Str("job_id", parseJob.JobID).Msg("Parse job completed")
		return nil
	}

	go func() {
		log.Info().Int("workers", cfg.Workers).Msg("Starting job workers")
		if err := jobQueue.Start(workerCtx, jobHandler); err != nil {
			log.Error().Err(err).Msg("Job workers stopped with error")
		}
	}()

	// Handlers and router.
	statementsHandler := handlers.NewStatementsHandler(jobQueue, cfg.SpoolDir, log)
	jobsHandler := handlers.NewJobsHandler(jobStore, log)
	mux := handlers.NewRouter(statementsHandler, jobsHandler)

	handler := middleware.Recovery(log)(
		middleware.Logger(log)(
			middleware.RequestID(
				middleware.CORS(mux),
			),
		),
	)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("Starting API server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	cancelWorker()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	if err := jobQueue.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error stopping job queue")
	}

	log.Info().Msg("Server exited")
}
