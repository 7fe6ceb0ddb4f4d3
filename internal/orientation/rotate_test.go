package orientation

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
)

var (
	red   = color.RGBA{R: 255, A: 255}
	green = color.RGBA{G: 255, A: 255}
	blue  = color.RGBA{B: 255, A: 255}
	white = color.RGBA{R: 255, G: 255, B: 255, A: 255}
)

// 2x1 image: [red green]
func twoByOne() image.Image {
	img := image.NewRGBA(image.Rect(0, 0, 2, 1))
	img.Set(0, 0, red)
	img.Set(1, 0, green)
	return img
}

func colorAt(img image.Image, x, y int) color.RGBA {
	r, g, b, a := img.At(x, y).RGBA()
	return color.RGBA{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8), A: uint8(a >> 8)}
}

func TestRotate90CCW(t *testing.T) {
	out := Rotate(twoByOne(), 90)

	// [red green] turned counter-clockwise ends with green on top.
	assert.Equal(t, 1, out.Bounds().Dx())
	assert.Equal(t, 2, out.Bounds().Dy())
	assert.Equal(t, green, colorAt(out, 0, 0))
	assert.Equal(t, red, colorAt(out, 0, 1))
}

func TestRotate90CW(t *testing.T) {
	out := Rotate(twoByOne(), 270)

	// Clockwise quarter turn puts red on top.
	assert.Equal(t, 1, out.Bounds().Dx())
	assert.Equal(t, 2, out.Bounds().Dy())
	assert.Equal(t, red, colorAt(out, 0, 0))
	assert.Equal(t, green, colorAt(out, 0, 1))
}

func TestRotate180(t *testing.T) {
	out := Rotate(twoByOne(), 180)

	assert.Equal(t, 2, out.Bounds().Dx())
	assert.Equal(t, 1, out.Bounds().Dy())
	assert.Equal(t, green, colorAt(out, 0, 0))
	assert.Equal(t, red, colorAt(out, 1, 0))
}

func TestRotate_ZeroAndUnknownAngles(t *testing.T) {
	img := twoByOne()
	assert.Same(t, img, Rotate(img, 0))
	assert.Same(t, img, Rotate(img, 45))
	assert.Same(t, img, Rotate(img, 360))
}

func TestRotate_FullCircle(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 2, 2))
	src.Set(0, 0, red)
	src.Set(1, 0, green)
	src.Set(0, 1, blue)
	src.Set(1, 1, white)

	// Four quarter turns in the same direction restore the original.
	out := image.Image(src)
	for i := 0; i < 4; i++ {
		out = Rotate(out, 90)
	}
	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			assert.Equal(t, colorAt(src, x, y), colorAt(out, x, y), "pixel (%d,%d)", x, y)
		}
	}

	// CCW then CW is also the identity.
	back := Rotate(Rotate(src, 90), 270)
	assert.Equal(t, colorAt(src, 1, 0), colorAt(back, 1, 0))
}

func TestMeanTSVConfidence(t *testing.T) {
	header := "level\tpage_num\tblock_num\tpar_num\tline_num\tword_num\tleft\ttop\twidth\theight\tconf\ttext"

	tsv := header + "\n" +
		"1\t1\t0\t0\t0\t0\t0\t0\t100\t100\t-1\t\n" +
		"5\t1\t1\t1\t1\t1\t5\t5\t20\t10\t91\tOpening\n" +
		"5\t1\t1\t1\t1\t2\t30\t5\t20\t10\t87\tBalance\n"
	assert.InDelta(t, 89.0, meanTSVConfidence(tsv), 1e-9)

	// Only sentinel rows: unavailable.
	blank := header + "\n1\t1\t0\t0\t0\t0\t0\t0\t100\t100\t-1\t\n"
	assert.Equal(t, ConfidenceUnavailable, meanTSVConfidence(blank))

	assert.Equal(t, ConfidenceUnavailable, meanTSVConfidence(""))
}
