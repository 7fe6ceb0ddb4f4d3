package document

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHasSelectableText(t *testing.T) {
	tests := []struct {
		name string
		text string
		want bool
	}{
		{"empty", "", false},
		{"few words", "Bank Statement September", false},
		{"exactly threshold", strings.Repeat("word ", minSelectableWords), false},
		{"above threshold", strings.Repeat("word ", minSelectableWords+1), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, hasSelectableText(tt.text))
		})
	}
}

func TestLoad_ImageFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "statement.png")

	img := image.NewRGBA(image.Rect(0, 0, 8, 4))
	for x := 0; x < 8; x++ {
		img.Set(x, 0, color.White)
	}
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())

	pages, text, needsOCR, err := Load(path)
	require.NoError(t, err)

	assert.True(t, needsOCR)
	assert.Empty(t, text)
	require.Len(t, pages, 1)
	assert.Equal(t, 8, pages[0].Bounds().Dx())
}

func TestLoad_MissingFile(t *testing.T) {
	_, _, _, err := Load(filepath.Join(t.TempDir(), "nope.png"))
	assert.Error(t, err)
}

func TestExtractPDFText_BadFileIsEmpty(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "broken.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4 not really a pdf"), 0o644))

	assert.Empty(t, extractPDFText(path))
}

func TestEncodeJPEG(t *testing.T) {
	small := image.NewRGBA(image.Rect(0, 0, 16, 16))
	data, err := EncodeJPEG(small)
	require.NoError(t, err)
	assert.NotEmpty(t, data)
	// JPEG SOI marker
	assert.Equal(t, []byte{0xFF, 0xD8}, data[:2])
}

func TestCapSize(t *testing.T) {
	small := image.NewRGBA(image.Rect(0, 0, 100, 50))
	assert.Same(t, image.Image(small), capSize(small, 2400))

	big := image.NewRGBA(image.Rect(0, 0, 4800, 2400))
	scaled := capSize(big, 2400)
	assert.Equal(t, 2400, scaled.Bounds().Dx())
	assert.Equal(t, 1200, scaled.Bounds().Dy())
}
