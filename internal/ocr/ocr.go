// Package ocr runs the per-page recognition loop for scanned statements:
// orientation correction, JPEG encoding, vision OCR. A failing page is
// reported in its metadata and skipped; it never aborts the document.
package ocr

import (
	"context"
	"image"
	"strings"

	"github.com/rs/zerolog"

	"github.com/statementlab/bankparse/internal/document"
	"github.com/statementlab/bankparse/internal/model"
)

// PageBreak separates page texts in the combined document text.
const PageBreak = "\n\n---PAGE_BREAK---\n\n"

// Corrector makes a page image upright, returning the corrected image and
// the rotation angle that was applied.
type Corrector interface {
	Resolve(ctx context.Context, img image.Image) (image.Image, int)
}

// Recognizer transcribes one JPEG-encoded page.
type Recognizer interface {
	RecognizePage(ctx context.Context, jpegBytes []byte) (string, error)
	VisionModel() string
}

// Reader OCRs a sequence of page images.
type Reader struct {
	corrector  Corrector
	recognizer Recognizer
	log        zerolog.Logger
}

func NewReader(corrector Corrector, recognizer Recognizer, log zerolog.Logger) *Reader {
	return &Reader{corrector: corrector, recognizer: recognizer, log: log}
}

// ReadPages recognizes every page and returns the combined text plus per-page
// metadata. Page numbering starts at 1. A failed page contributes empty text
// and an errored PageMeta.
func (r *Reader) ReadPages(ctx context.Context, pages []image.Image) (string, []model.PageMeta) {
	texts := make([]string, 0, len(pages))
	metas := make([]model.PageMeta, 0, len(pages))

	for i, page := range pages {
		pageNum := i + 1
		text, meta := r.readPage(ctx, pageNum, page)
		texts = append(texts, text)
		metas = append(metas, meta)
	}

	return strings.Join(texts, PageBreak), metas
}

func (r *Reader) readPage(ctx context.Context, pageNum int, page image.Image) (string, model.PageMeta) {
	meta := model.PageMeta{Page: pageNum, Source: r.recognizer.VisionModel()}

	corrected := page
	if r.corrector != nil {
		var angle int
		corrected, angle = r.corrector.Resolve(ctx, page)
		meta.RotationApplied = true
		meta.RotationAngle = angle
	}

	jpegBytes, err := document.EncodeJPEG(corrected)
	if err != nil {
		r.log.Error().Err(err).Int("page", pageNum).Msg("Page encoding failed")
		meta.Error = err.Error()
		return "", meta
	}

	text, err := r.recognizer.RecognizePage(ctx, jpegBytes)
	if err != nil {
		r.log.Error().Err(err).Int("page", pageNum).Msg("Page OCR failed")
		meta.Error = err.Error()
		return "", meta
	}
	return strings.TrimSpace(text), meta
}
