package imaging

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"

	"github.com/mkadlec/facematch/internal/matcher"
)

var (
	matchedColor = color.RGBA{0, 200, 0, 255}
	unknownColor = color.RGBA{255, 0, 0, 255}
)

// Annotate draws a rectangle around every match result: green for
// recognized identities, red for unknown faces.
func Annotate(img image.Image, results []matcher.MatchResult, lineWidth, padding int) image.Image {
	bounds := img.Bounds()
	dst := image.NewRGBA(bounds)
	draw.Draw(dst, bounds, img, bounds.Min, draw.Src)

	for _, r := range results {
		c := unknownColor
		if r.Matched() {
			c = matchedColor
		}
		drawBox(dst, r.Box, lineWidth, padding, c)
	}
	return dst
}

// drawBox draws a rectangle outline at the given pixel coordinates.
func drawBox(dst *image.RGBA, box matcher.Box, lineWidth, padding int, c color.RGBA) {
	x1 := int(box.Left) - padding
	y1 := int(box.Top) - padding
	x2 := int(box.Right) + padding
	y2 := int(box.Bottom) + padding

	for w := 0; w < lineWidth; w++ {
		drawHLine(dst, x1, x2, y1+w, c)
		drawHLine(dst, x1, x2, y2-w, c)
		drawVLine(dst, y1, y2, x1+w, c)
		drawVLine(dst, y1, y2, x2-w, c)
	}
}

// drawHLine draws a horizontal line on the image.
func drawHLine(dst *image.RGBA, x1, x2, y int, c color.RGBA) {
	bounds := dst.Bounds()
	if y < 0 || y >= bounds.Dy() {
		return
	}
	for x := x1; x <= x2; x++ {
		if x >= 0 && x < bounds.Dx() {
			dst.Set(x, y, c)
		}
	}
}

// drawVLine draws a vertical line on the image.
func drawVLine(dst *image.RGBA, y1, y2, x int, c color.RGBA) {
	bounds := dst.Bounds()
	if x < 0 || x >= bounds.Dx() {
		return
	}
	for y := y1; y <= y2; y++ {
		if y >= 0 && y < bounds.Dy() {
			dst.Set(x, y, c)
		}
	}
}
