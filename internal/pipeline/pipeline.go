// Package pipeline orchestrates one statement parsing run: fetch, load,
// recognize, extract, reconcile, generate insights, persist, assemble.
package pipeline

import (
	"context"
	"fmt"
	"image"

	"github.com/rs/zerolog"

	"github.com/statementlab/bankparse/internal/model"
)

// TextSource values reported in the result's quality block.
const (
	TextSourcePDF = "PDF Extracted Text"
	TextSourceOCR = "OCR (Gemini Vision)"
)

// Extractor structures raw statement text.
type Extractor interface {
	ExtractStatement(ctx context.Context, text string) (model.Statement, error)
}

// InsightGenerator writes natural-language observations about a statement.
// Implementations degrade internally and always return something to show.
type InsightGenerator interface {
	GenerateInsights(ctx context.Context, st model.Statement) []string
}

// PageReader OCRs scanned pages into text plus per-page metadata.
type PageReader interface {
	ReadPages(ctx context.Context, pages []image.Image) (string, []model.PageMeta)
}

// Fetcher stages a remote source (e.g. a gs:// URI) as a local file. Local
// paths pass through unchanged.
type Fetcher interface {
	Stage(ctx context.Context, sourceURI string) (localPath string, err error)
}

// Loader splits a local file into OCR pages or selectable text.
type Loader interface {
	Load(path string) (pages []image.Image, text string, needsOCR bool, err error)
}

// Sink persists a finished run. Persistence is best-effort: a sink error is
// logged, not returned to the caller.
type Sink interface {
	SaveResult(ctx context.Context, sourceURI string, res *model.Result) error
}

// Deps wires the pipeline's collaborators. Fetcher, Extractor and Loader are
// required; OCR is required only when scanned input is expected; Insights and
// Sink may be nil.
type Deps struct {
	Fetcher  Fetcher
	Loader   Loader
	OCR      PageReader
	Extract  Extractor
	Insights InsightGenerator
	Sink     Sink
	Log      zerolog.Logger
}

// State is the shared scratch space the steps read and write.
type State struct {
	SourceURI string
	LocalPath string

	Pages    []image.Image
	Text     string
	NeedsOCR bool

	TextSource string
	PageMetas  []model.PageMeta

	Statement model.Statement
	Warnings  []string
	Insights  []string

	Result *model.Result
}

// Step is a single stage of the parsing run.
type Step interface {
	Name() string
	Execute(ctx context.Context, st *State) error
}

// Pipeline executes steps in order, stopping at the first error.
type Pipeline struct {
	steps []Step
	log   zerolog.Logger
}

func New(log zerolog.Logger, steps ...Step) *Pipeline {
	return &Pipeline{steps: steps, log: log}
}

// NewStatementPipeline builds the standard parsing run.
func NewStatementPipeline(deps Deps) *Pipeline {
	return New(deps.Log,
		&FetchStep{fetcher: deps.Fetcher},
		&LoadStep{loader: deps.Loader},
		&RecognizeStep{reader: deps.OCR},
		&ExtractStep{extractor: deps.Extract},
		&ReconcileStep{},
		&InsightsStep{generator: deps.Insights},
		&AssembleStep{},
		&PersistStep{sink: deps.Sink, log: deps.Log},
	)
}

// Run processes one statement source and returns the assembled result.
func (p *Pipeline) Run(ctx context.Context, sourceURI string) (*model.Result, error) {
	st := &State{SourceURI: sourceURI}
	for _, step := range p.steps {
		p.log.Debug().Str("step", step.Name()).Str("source", sourceURI).Msg("Running pipeline step")
		if err := step.Execute(ctx, st); err != nil {
			return nil, fmt.Errorf("pipeline step %s: %w", step.Name(), err)
		}
	}
	return st.Result, nil
}
