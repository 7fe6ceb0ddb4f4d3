package document

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"

	"golang.org/x/image/draw"
)

const (
	// jpegQuality balances vision-model accuracy against payload size.
	jpegQuality = 90

	// maxPageEdge caps the longest page edge before sending to the vision
	// model; 300 DPI A4 scans comfortably exceed request size limits.
	maxPageEdge = 2400
)

// EncodeJPEG serializes a page image as JPEG bytes for the vision model,
// downscaling oversized pages first.
func EncodeJPEG(img image.Image) ([]byte, error) {
	img = capSize(img, maxPageEdge)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("encode page jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

// capSize scales the image down so that its longest edge is at most maxEdge,
// preserving aspect ratio. Smaller images pass through untouched.
func capSize(img image.Image, maxEdge int) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	longest := w
	if h > longest {
		longest = h
	}
	if longest <= maxEdge {
		return img
	}

	scale := float64(maxEdge) / float64(longest)
	dw := int(float64(w) * scale)
	dh := int(float64(h) * scale)
	if dw < 1 {
		dw = 1
	}
	if dh < 1 {
		dh = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, dw, dh))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, b, draw.Over, nil)
	return dst
}
