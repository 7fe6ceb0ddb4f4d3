// Package document turns an input file into material the pipeline can work
// with: either selectable PDF text, or decoded page images for the OCR path.
package document

import (
	"fmt"
	"image"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/ledongthuc/pdf"
)

// minSelectableWords is the threshold below which PDF text is considered
// unusable and the scanned-page OCR path is taken instead.
const minSelectableWords = 10

// rasterDPI is the resolution used when rasterizing scanned PDF pages.
const rasterDPI = "300"

// Load reads a statement file and decides how it should be processed.
// For a PDF with a usable text layer it returns the text and needsOCR=false.
// For a scanned PDF it rasterizes every page; for an image file it decodes
// the single image. In both of those cases needsOCR is true.
func Load(path string) (pages []image.Image, text string, needsOCR bool, err error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, "", false, fmt.Errorf("load document: resolve path %q: %w", path, err)
	}

	if strings.EqualFold(filepath.Ext(abs), ".pdf") {
		if pdfText := extractPDFText(abs); hasSelectableText(pdfText) {
			return nil, pdfText, false, nil
		}
		pages, err := rasterizePDF(abs)
		if err != nil {
			return nil, "", false, fmt.Errorf("load document: %w", err)
		}
		return pages, "", true, nil
	}

	img, err := decodeImageFile(abs)
	if err != nil {
		return nil, "", false, fmt.Errorf("load document: %w", err)
	}
	return []image.Image{img}, "", true, nil
}

// hasSelectableText reports whether extracted PDF text is substantial enough
// to skip OCR.
func hasSelectableText(text string) bool {
	return len(strings.Fields(text)) > minSelectableWords
}

// extractPDFText pulls the text layer out of a PDF. The library is known to
// panic on malformed files, so failures of any kind yield an empty string and
// the caller falls back to OCR.
func extractPDFText(path string) (text string) {
	defer func() {
		if r := recover(); r != nil {
			text = ""
		}
	}()

	f, r, err := pdf.Open(path)
	if err != nil {
		return ""
	}
	defer f.Close()

	var sb strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		rows, err := page.GetTextByRow()
		if err != nil {
			continue
		}
		for _, row := range rows {
			for _, word := range row.Content {
				sb.WriteString(word.S)
				sb.WriteByte(' ')
			}
			sb.WriteByte('\n')
		}
	}
	return strings.TrimSpace(sb.String())
}

// rasterizePDF converts PDF pages into page images via the external pdftoppm
// tool (poppler-utils), then decodes them in page order.
func rasterizePDF(path string) ([]image.Image, error) {
	if _, err := exec.LookPath("pdftoppm"); err != nil {
		return nil, fmt.Errorf("pdftoppm not available (install poppler-utils): %w", err)
	}

	tmpDir, err := os.MkdirTemp("", "statement-pages-*")
	if err != nil {
		return nil, fmt.Errorf("create raster dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	prefix := filepath.Join(tmpDir, "page")
	cmd := exec.Command("pdftoppm", "-r", rasterDPI, "-png", path, prefix)
	if out, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("pdftoppm: %w (output: %s)", err, strings.TrimSpace(string(out)))
	}

	entries, err := os.ReadDir(tmpDir)
	if err != nil {
		return nil, fmt.Errorf("read raster dir: %w", err)
	}
	var files []string
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".png") {
			files = append(files, filepath.Join(tmpDir, e.Name()))
		}
	}
	sort.Strings(files)
	if len(files) == 0 {
		return nil, fmt.Errorf("pdftoppm produced no page images for %s", path)
	}

	pages := make([]image.Image, 0, len(files))
	for _, f := range files {
		img, err := decodeImageFile(f)
		if err != nil {
			return nil, fmt.Errorf("decode raster page %s: %w", filepath.Base(f), err)
		}
		pages = append(pages, img)
	}
	return pages, nil
}

func decodeImageFile(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open image %q: %w", path, err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode image %q: %w", path, err)
	}
	return img, nil
}
