package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "test-key")
	t.Setenv("QUEUE_BUFFER", "")
	t.Setenv("WORKERS", "")
	t.Setenv("PORT", "")
	t.Setenv("BIGQUERY_DATASET", "")

	cfg, err := Load("/nonexistent-so-skip-dotenv")
	require.Error(t, err, "explicit missing .env path should fail")

	cfg, err = Load()
	require.NoError(t, err)
	assert.Equal(t, "test-key", cfg.Gemini.APIKey)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 100, cfg.QueueBuffer)
	assert.Equal(t, 3, cfg.Workers)
	assert.Equal(t, "bankparse", cfg.BigQuery.DatasetID)
	assert.Equal(t, "tesseract", cfg.Tesseract)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "k")
	t.Setenv("PORT", "9090")
	t.Setenv("WORKERS", "7")
	t.Setenv("BIGQUERY_PROJECT", "my-project")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 7, cfg.Workers)
	assert.Equal(t, "my-project", cfg.BigQuery.ProjectID)
}

func TestLoadRejectsBadInt(t *testing.T) {
	t.Setenv("WORKERS", "many")
	_, err := Load()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := &Config{}
	assert.Error(t, cfg.Validate())

	cfg.Gemini.APIKey = "k"
	assert.NoError(t, cfg.Validate())
}
