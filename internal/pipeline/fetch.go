package pipeline

import (
	"context"
	"fmt"
	"image"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/statementlab/bankparse/internal/document"
	"github.com/statementlab/bankparse/internal/gcs"
)

// SourceFetcher stages statement sources for the pipeline. Local paths are
// used in place; gs:// URIs are downloaded into the spool directory.
type SourceFetcher struct {
	spoolDir string
}

func NewSourceFetcher(spoolDir string) *SourceFetcher {
	if spoolDir == "" {
		spoolDir = os.TempDir()
	}
	return &SourceFetcher{spoolDir: spoolDir}
}

// Stage implements Fetcher.
func (f *SourceFetcher) Stage(ctx context.Context, sourceURI string) (string, error) {
	if !gcs.IsURI(sourceURI) {
		if _, err := os.Stat(sourceURI); err != nil {
			return "", fmt.Errorf("stage source %q: %w", sourceURI, err)
		}
		return sourceURI, nil
	}

	data, err := gcs.Fetch(ctx, sourceURI)
	if err != nil {
		return "", fmt.Errorf("stage source: %w", err)
	}

	if err := os.MkdirAll(f.spoolDir, 0o755); err != nil {
		return "", fmt.Errorf("stage source: create spool dir: %w", err)
	}
	path := filepath.Join(f.spoolDir, uuid.NewString()+"-"+gcs.Filename(sourceURI))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("stage source: write spool file: %w", err)
	}
	return path, nil
}

// DocumentLoader adapts the document package to the Loader interface.
type DocumentLoader struct{}

func (DocumentLoader) Load(path string) ([]image.Image, string, bool, error) {
	return document.Load(path)
}
