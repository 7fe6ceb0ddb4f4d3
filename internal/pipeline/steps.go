package pipeline

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/statementlab/bankparse/internal/model"
	"github.com/statementlab/bankparse/internal/recon"
)

// FetchStep stages the source as a local file.
type FetchStep struct {
	fetcher Fetcher
}

func (s *FetchStep) Name() string { return "fetch" }

func (s *FetchStep) Execute(ctx context.Context, st *State) error {
	path, err := s.fetcher.Stage(ctx, st.SourceURI)
	if err != nil {
		return err
	}
	st.LocalPath = path
	return nil
}

// LoadStep decides between the text path and the OCR path.
type LoadStep struct {
	loader Loader
}

func (s *LoadStep) Name() string { return "load" }

func (s *LoadStep) Execute(ctx context.Context, st *State) error {
	pages, text, needsOCR, err := s.loader.Load(st.LocalPath)
	if err != nil {
		return err
	}
	st.Pages = pages
	st.Text = text
	st.NeedsOCR = needsOCR

	if needsOCR {
		st.TextSource = TextSourceOCR
	} else {
		st.TextSource = TextSourcePDF
		st.PageMetas = []model.PageMeta{{Page: 1, Source: "PDF text"}}
	}
	return nil
}

// RecognizeStep OCRs scanned pages. It is a no-op on the text path.
type RecognizeStep struct {
	reader PageReader
}

func (s *RecognizeStep) Name() string { return "recognize" }

func (s *RecognizeStep) Execute(ctx context.Context, st *State) error {
	if !st.NeedsOCR {
		return nil
	}
	if s.reader == nil {
		return fmt.Errorf("scanned input but no OCR reader configured")
	}
	text, metas := s.reader.ReadPages(ctx, st.Pages)
	st.Text = text
	st.PageMetas = metas
	return nil
}

// ExtractStep structures the statement text via the extraction collaborator.
type ExtractStep struct {
	extractor Extractor
}

func (s *ExtractStep) Name() string { return "extract" }

func (s *ExtractStep) Execute(ctx context.Context, st *State) error {
	statement, err := s.extractor.ExtractStatement(ctx, st.Text)
	if err != nil {
		return err
	}
	st.Statement = statement
	return nil
}

// ReconcileStep runs the deterministic checks over the extracted statement:
// fills a missing average daily balance, masks the account number, validates
// balance arithmetic and counts duplicate transactions.
type ReconcileStep struct{}

func (s *ReconcileStep) Name() string { return "reconcile" }

func (s *ReconcileStep) Execute(ctx context.Context, st *State) error {
	sum := &st.Statement.Summary

	if sum.AverageDailyBalance == nil || sum.AverageDailyBalance.IsZero() {
		adb := recon.AverageDailyBalance(st.Statement.Transactions, sum.OpeningBalance)
		sum.AverageDailyBalance = &adb
	}

	st.Statement.Fields.AccountNumberMasked = model.MaskAccountNumber(st.Statement.Fields.AccountNumberMasked)

	st.Warnings = recon.ValidateBalances(*sum)
	if dups := recon.CountDuplicates(st.Statement.Transactions); dups > 0 {
		st.Warnings = append(st.Warnings, fmt.Sprintf("Duplicate entries detected: %d duplicates found.", dups))
	}
	return nil
}

// InsightsStep asks the insight collaborator for commentary. A nil generator
// simply produces no insights.
type InsightsStep struct {
	generator InsightGenerator
}

func (s *InsightsStep) Name() string { return "insights" }

func (s *InsightsStep) Execute(ctx context.Context, st *State) error {
	if s.generator == nil {
		st.Insights = []string{}
		return nil
	}
	st.Insights = s.generator.GenerateInsights(ctx, st.Statement)
	return nil
}

// AssembleStep builds the final result object.
type AssembleStep struct{}

func (s *AssembleStep) Name() string { return "assemble" }

func (s *AssembleStep) Execute(ctx context.Context, st *State) error {
	warnings := st.Warnings
	if warnings == nil {
		warnings = []string{}
	}
	st.Result = &model.Result{
		Fields:   st.Statement,
		Insights: st.Insights,
		Quality: model.Quality{
			Pages:      st.PageMetas,
			Warnings:   warnings,
			TextSource: st.TextSource,
		},
	}
	return nil
}

// PersistStep hands the finished result to the sink. Persistence failures are
// logged and swallowed; the run already succeeded from the caller's point of
// view.
type PersistStep struct {
	sink Sink
	log  zerolog.Logger
}

func (s *PersistStep) Name() string { return "persist" }

func (s *PersistStep) Execute(ctx context.Context, st *State) error {
	if s.sink == nil || st.Result == nil {
		return nil
	}
	if err := s.sink.SaveResult(ctx, st.SourceURI, st.Result); err != nil {
		s.log.Error().Err(err).Str("source", st.SourceURI).Msg("Failed to persist parsing result")
	}
	return nil
}
