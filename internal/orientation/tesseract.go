package orientation

import (
	"context"
	"fmt"
	"image"
	"image/png"
	"os"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
)

// TesseractEngine implements Detector and Recognizer by shelling out to the
// tesseract binary. Orientation detection uses the OSD pass (--psm 0) and
// confidence scoring the TSV output of a block-of-text pass (--psm 6).
// Requires tesseract-ocr to be installed.
type TesseractEngine struct {
	binary string
}

// NewTesseractEngine creates an engine using "tesseract" from PATH, or the
// given binary path when non-empty.
func NewTesseractEngine(binary string) *TesseractEngine {
	if binary == "" {
		binary = "tesseract"
	}
	return &TesseractEngine{binary: binary}
}

// Available reports whether the tesseract binary can be found. Callers use it
// to skip the primary detector and the confidence fallback entirely.
func (t *TesseractEngine) Available() bool {
	_, err := exec.LookPath(t.binary)
	return err == nil
}

var osdRotatePattern = regexp.MustCompile(`(?m)^Rotate:\s*(\d+)`)

// DetectAngle implements Detector via tesseract orientation-and-script
// detection. The reported "Rotate" value is the correction angle.
func (t *TesseractEngine) DetectAngle(ctx context.Context, img image.Image) (int, error) {
	path, cleanup, err := writeTempPNG(img)
	if err != nil {
		return 0, err
	}
	defer cleanup()

	out, err := exec.CommandContext(ctx, t.binary, path, "stdout", "--psm", "0").CombinedOutput()
	if err != nil {
		return 0, fmt.Errorf("tesseract osd: %w (output: %s)", err, strings.TrimSpace(string(out)))
	}

	m := osdRotatePattern.FindSubmatch(out)
	if m == nil {
		return 0, fmt.Errorf("tesseract osd: no rotate value in output")
	}
	angle, err := strconv.Atoi(string(m[1]))
	if err != nil {
		return 0, fmt.Errorf("tesseract osd: parse rotate value: %w", err)
	}
	switch angle {
	case 0, 90, 180, 270:
		return angle, nil
	}
	return 0, fmt.Errorf("tesseract osd: unexpected angle %d", angle)
}

// MeanConfidence implements Recognizer. It averages the per-token confidence
// column of the TSV output, skipping the -1 sentinel rows (page/block/line
// records and unrecognized tokens). No recognized tokens at all scores
// ConfidenceUnavailable.
func (t *TesseractEngine) MeanConfidence(ctx context.Context, img image.Image) (float64, error) {
	path, cleanup, err := writeTempPNG(img)
	if err != nil {
		return ConfidenceUnavailable, err
	}
	defer cleanup()

	out, err := exec.CommandContext(ctx, t.binary, path, "stdout", "--psm", "6", "tsv").Output()
	if err != nil {
		return ConfidenceUnavailable, fmt.Errorf("tesseract tsv: %w", err)
	}

	return meanTSVConfidence(string(out)), nil
}

// meanTSVConfidence parses tesseract TSV output and averages the conf column.
func meanTSVConfidence(tsv string) float64 {
	const confColumn = 10

	var sum float64
	var count int
	lines := strings.Split(tsv, "\n")
	for i, line := range lines {
		if i == 0 { // header row
			continue
		}
		cols := strings.Split(line, "\t")
		if len(cols) <= confColumn {
			continue
		}
		conf, err := strconv.ParseFloat(strings.TrimSpace(cols[confColumn]), 64)
		if err != nil || conf < 0 {
			continue
		}
		sum += conf
		count++
	}
	if count == 0 {
		return ConfidenceUnavailable
	}
	return sum / float64(count)
}

// writeTempPNG stores the image in a temp file for the tesseract process.
func writeTempPNG(img image.Image) (string, func(), error) {
	f, err := os.CreateTemp("", "osd-page-*.png")
	if err != nil {
		return "", nil, fmt.Errorf("create temp page image: %w", err)
	}
	cleanup := func() { os.Remove(f.Name()) }

	if err := png.Encode(f, img); err != nil {
		f.Close()
		cleanup()
		return "", nil, fmt.Errorf("encode temp page image: %w", err)
	}
	if err := f.Close(); err != nil {
		cleanup()
		return "", nil, fmt.Errorf("close temp page image: %w", err)
	}
	return f.Name(), cleanup, nil
}
