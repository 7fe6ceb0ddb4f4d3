package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/statementlab/bankparse/internal/config"
	"github.com/statementlab/bankparse/internal/gcs"
	infraBQ "github.com/statementlab/bankparse/internal/infra/bigquery"
	"github.com/statementlab/bankparse/internal/logger"
	"github.com/statementlab/bankparse/internal/model"
	"github.com/statementlab/bankparse/internal/pipeline"
)

func main() {
	log := logger.New()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "parse":
		runParse(log)
	case "upload":
		runUpload(log)
	case "runs":
		runRuns(log)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Bankparse CLI")
	fmt.Println("\nUsage:")
	fmt.Println("  cli <command> [options]")
	fmt.Println("\nCommands:")
	fmt.Println("  parse     Parse a bank statement (local file or gs:// URI)")
	fmt.Println("  upload    Upload a statement file to GCS")
	fmt.Println("  runs      List recent parse runs from BigQuery")
	fmt.Println("  help      Show this help message")
	fmt.Println("\nRun 'cli <command> -h' for more information on a command.")
}

func runParse(log zerolog.Logger) {
	fs := flag.NewFlagSet("parse", flag.ExitOnError)
	source := fs.String("source", "", "Statement source: local file path or gs:// URI")
	sample := fs.Bool("sample", false, "Print a canned sample result instead of calling the model")
	fs.Parse(os.Args[2:])

	if *sample {
		printJSON(model.SampleResult())
		return
	}

	if *source == "" {
		log.Fatal().Msg("Error: --source is required")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	pl, cleanup, err := pipeline.FromConfig(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to build parsing pipeline")
	}
	defer cleanup()

	log.Info().Str("source", *source).Msg("Starting parse")

	result, err := pl.Run(ctx, *source)
	if err != nil {
		log.Fatal().Err(err).Msg("Parse failed")
	}

	printJSON(result)
}

func runUpload(log zerolog.Logger) {
	fs := flag.NewFlagSet("upload", flag.ExitOnError)
	file := fs.String("file", "", "Local statement file to upload")
	bucket := fs.String("bucket", "", "Destination bucket (defaults to GCS_BUCKET)")
	fs.Parse(os.Args[2:])

	if *file == "" {
		log.Fatal().Msg("Error: --file is required")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	if *bucket == "" {
		*bucket = cfg.GCS.Bucket
	}
	if *bucket == "" {
		log.Fatal().Msg("Error: no bucket given and GCS_BUCKET is not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	object := fmt.Sprintf("uploads/%s/%s", time.Now().Format("2006/01/02"), filepath.Base(*file))
	uri, err := gcs.Upload(ctx, *bucket, object, *file)
	if err != nil {
		log.Fatal().Err(err).Msg("Upload failed")
	}

	fmt.Println(uri)
}

func runRuns(log zerolog.Logger) {
	fs := flag.NewFlagSet("runs", flag.ExitOnError)
	limit := fs.Int("limit", 20, "Maximum number of runs to list")
	fs.Parse(os.Args[2:])

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	if cfg.BigQuery.ProjectID == "" {
		log.Fatal().Msg("Error: BIGQUERY_PROJECT is not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	repo, err := infraBQ.NewRepository(ctx, cfg.BigQuery.ProjectID, cfg.BigQuery.DatasetID)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create BigQuery client")
	}
	defer repo.Close()

	runs, err := repo.ListParseRuns(ctx, *limit)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to list parse runs")
	}

	for _, run := range runs {
		fmt.Printf("%s  %s  %s  %s\n",
			run.CreatedTS.Format(time.RFC3339), run.RunID, run.BankName, run.StatementMonth)
	}
	if len(runs) == 0 {
		fmt.Println("No parse runs found.")
	}
}

func printJSON(v interface{}) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to encode result: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(string(out))
}
