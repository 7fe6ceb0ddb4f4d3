package pipeline

import (
	"context"
	"errors"
	"image"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/statementlab/bankparse/internal/model"
)

type fakeFetcher struct{ path string }

func (f *fakeFetcher) Stage(ctx context.Context, sourceURI string) (string, error) {
	return f.path, nil
}

type fakeLoader struct {
	pages    []image.Image
	text     string
	needsOCR bool
	err      error
}

func (f *fakeLoader) Load(path string) ([]image.Image, string, bool, error) {
	return f.pages, f.text, f.needsOCR, f.err
}

type fakeReader struct {
	text  string
	metas []model.PageMeta
	calls int
}

func (f *fakeReader) ReadPages(ctx context.Context, pages []image.Image) (string, []model.PageMeta) {
	f.calls++
	return f.text, f.metas
}

type fakeExtractor struct {
	statement model.Statement
	err       error
	gotText   string
}

func (f *fakeExtractor) ExtractStatement(ctx context.Context, text string) (model.Statement, error) {
	f.gotText = text
	return f.statement, f.err
}

type fakeInsights struct{ insights []string }

func (f *fakeInsights) GenerateInsights(ctx context.Context, st model.Statement) []string {
	return f.insights
}

type fakeSink struct {
	saved *model.Result
	err   error
}

func (f *fakeSink) SaveResult(ctx context.Context, sourceURI string, res *model.Result) error {
	f.saved = res
	return f.err
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func extractedStatement() model.Statement {
	bal1 := dec("72000")
	bal2 := dec("38500")
	return model.Statement{
		Fields: model.Fields{
			BankName:            "State Bank of India",
			AccountNumberMasked: "123456789272",
			Currency:            "INR",
		},
		Summary: model.Summary{
			OpeningBalance: dec("42000"),
			ClosingBalance: dec("38500"),
			TotalCredits:   dec("30000"),
			TotalDebits:    dec("33500"),
		},
		Transactions: []model.Transaction{
			{Date: "2025-09-01", Description: "SALARY CREDIT", Amount: dec("30000"), Balance: &bal1},
			{Date: "2025-09-10", Description: "ATM WITHDRAWAL", Amount: dec("-33500"), Balance: &bal2},
		},
	}
}

func textDeps(extractor *fakeExtractor) Deps {
	return Deps{
		Fetcher:  &fakeFetcher{path: "/tmp/statement.pdf"},
		Loader:   &fakeLoader{text: "statement text with plenty of selectable words in it already", needsOCR: false},
		Extract:  extractor,
		Insights: &fakeInsights{insights: []string{"looks healthy"}},
		Log:      zerolog.Nop(),
	}
}

func TestPipeline_TextPath(t *testing.T) {
	extractor := &fakeExtractor{statement: extractedStatement()}
	sink := &fakeSink{}
	deps := textDeps(extractor)
	deps.Sink = sink

	res, err := NewStatementPipeline(deps).Run(context.Background(), "/tmp/statement.pdf")
	require.NoError(t, err)
	require.NotNil(t, res)

	assert.Equal(t, TextSourcePDF, res.Quality.TextSource)
	assert.Empty(t, res.Quality.Warnings, "consistent summary should not warn")
	assert.Equal(t, []string{"looks healthy"}, res.Insights)

	// Missing ADB was filled in: (72000*9 + 38500) / 10.
	require.NotNil(t, res.Fields.Summary.AverageDailyBalance)
	assert.True(t, res.Fields.Summary.AverageDailyBalance.Equal(dec("68650")),
		"got %s", res.Fields.Summary.AverageDailyBalance)

	// Account number was masked.
	assert.Equal(t, "********9272", res.Fields.Fields.AccountNumberMasked)

	// Result was persisted.
	assert.Same(t, res, sink.saved)
}

func TestPipeline_BalanceMismatchAndDuplicatesWarn(t *testing.T) {
	st := extractedStatement()
	st.Summary.ClosingBalance = dec("38000")
	st.Transactions = append(st.Transactions, st.Transactions[1])

	extractor := &fakeExtractor{statement: st}
	res, err := NewStatementPipeline(textDeps(extractor)).Run(context.Background(), "x")
	require.NoError(t, err)

	require.Len(t, res.Quality.Warnings, 2)
	assert.Contains(t, res.Quality.Warnings[0], "Balance mismatch")
	assert.Contains(t, res.Quality.Warnings[1], "1 duplicates found")
}

func TestPipeline_OCRPath(t *testing.T) {
	reader := &fakeReader{
		text:  "recognized page text",
		metas: []model.PageMeta{{Page: 1, Source: "test-vision", RotationApplied: true, RotationAngle: 90}},
	}
	extractor := &fakeExtractor{statement: extractedStatement()}

	deps := textDeps(extractor)
	deps.Loader = &fakeLoader{
		pages:    []image.Image{image.NewRGBA(image.Rect(0, 0, 2, 2))},
		needsOCR: true,
	}
	deps.OCR = reader

	res, err := NewStatementPipeline(deps).Run(context.Background(), "scan.png")
	require.NoError(t, err)

	assert.Equal(t, 1, reader.calls)
	assert.Equal(t, "recognized page text", extractor.gotText)
	assert.Equal(t, TextSourceOCR, res.Quality.TextSource)
	require.Len(t, res.Quality.Pages, 1)
	assert.Equal(t, 90, res.Quality.Pages[0].RotationAngle)
}

func TestPipeline_ExtractionFailureAborts(t *testing.T) {
	extractor := &fakeExtractor{err: errors.New("model refused")}
	_, err := NewStatementPipeline(textDeps(extractor)).Run(context.Background(), "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "extract")
}

func TestPipeline_SinkFailureIsSwallowed(t *testing.T) {
	extractor := &fakeExtractor{statement: extractedStatement()}
	deps := textDeps(extractor)
	deps.Sink = &fakeSink{err: errors.New("dataset missing")}

	res, err := NewStatementPipeline(deps).Run(context.Background(), "x")
	require.NoError(t, err)
	assert.NotNil(t, res)
}

func TestPipeline_NoInsightGenerator(t *testing.T) {
	extractor := &fakeExtractor{statement: extractedStatement()}
	deps := textDeps(extractor)
	deps.Insights = nil

	res, err := NewStatementPipeline(deps).Run(context.Background(), "x")
	require.NoError(t, err)
	assert.NotNil(t, res.Insights)
	assert.Empty(t, res.Insights)
}

func TestPipeline_ScannedInputWithoutReaderFails(t *testing.T) {
	extractor := &fakeExtractor{statement: extractedStatement()}
	deps := textDeps(extractor)
	deps.Loader = &fakeLoader{pages: []image.Image{image.NewRGBA(image.Rect(0, 0, 2, 2))}, needsOCR: true}
	deps.OCR = nil

	_, err := NewStatementPipeline(deps).Run(context.Background(), "scan.png")
	assert.Error(t, err)
}
