// Package config loads application configuration from environment variables
// and an optional .env file.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config represents the application configuration.
type Config struct {
	Gemini   GeminiConfig
	GCS      GCSConfig
	BigQuery BigQueryConfig

	Port      string
	SpoolDir  string
	Tesseract string

	QueueBuffer int
	Workers     int
}

// GeminiConfig holds the Gemini API key and the model names used by the
// extraction, insight and vision calls.
type GeminiConfig struct {
	APIKey          string
	ExtractionModel string
	InsightModel    string
	VisionModel     string
}

// GCSConfig holds the upload bucket name.
type GCSConfig struct {
	Bucket string
}

// BigQueryConfig holds the destination for persisted parse runs. Persistence
// is disabled when ProjectID is empty.
type BigQueryConfig struct {
	ProjectID string
	DatasetID string
}

// Load reads configuration from the environment. A .env file in the current
// directory is loaded first when present; a custom path can be given.
func Load(envPath ...string) (*Config, error) {
	if len(envPath) > 0 && envPath[0] != "" {
		if err := godotenv.Load(envPath[0]); err != nil {
			return nil, fmt.Errorf("failed to load .env file: %w", err)
		}
	} else {
		_ = godotenv.Load()
	}

	queueBuffer, err := parseIntEnv("QUEUE_BUFFER", 100)
	if err != nil {
		return nil, err
	}
	workers, err := parseIntEnv("WORKERS", 3)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Gemini: GeminiConfig{
			APIKey:          os.Getenv("GEMINI_API_KEY"),
			ExtractionModel: os.Getenv("GEMINI_EXTRACTION_MODEL"),
			InsightModel:    os.Getenv("GEMINI_INSIGHT_MODEL"),
			VisionModel:     os.Getenv("GEMINI_VISION_MODEL"),
		},
		GCS: GCSConfig{
			Bucket: os.Getenv("GCS_BUCKET"),
		},
		BigQuery: BigQueryConfig{
			ProjectID: os.Getenv("BIGQUERY_PROJECT"),
			DatasetID: getEnvOrDefault("BIGQUERY_DATASET", "bankparse"),
		},
		Port:        getEnvOrDefault("PORT", "8080"),
		SpoolDir:    getEnvOrDefault("SPOOL_DIR", os.TempDir()),
		Tesseract:   getEnvOrDefault("TESSERACT_PATH", "tesseract"),
		QueueBuffer: queueBuffer,
		Workers:     workers,
	}

	return cfg, nil
}

// Validate checks that the fields required for parsing are set.
func (c *Config) Validate() error {
	if c.Gemini.APIKey == "" {
		return fmt.Errorf("missing required configuration: GEMINI_API_KEY\nPlease check your .env file or environment variables")
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseIntEnv(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid integer value for %s: %s", key, value)
	}
	return parsed, nil
}
