// Package imaging provides the image plumbing around the matcher core:
// decoding, face crops, resizing, and annotated output. The matching
// logic itself never touches pixels.
package imaging

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"

	"github.com/mkadlec/facematch/internal/matcher"
)

// Decode decodes JPEG, PNG, GIF, or BMP image data.
func Decode(data []byte) (image.Image, error) {
	return DecodeReader(bytes.NewReader(data))
}

// DecodeReader decodes an image from a stream, e.g. an upload body.
func DecodeReader(r io.Reader) (image.Image, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return img, nil
}

// EncodeJPEG encodes an image as JPEG bytes.
func EncodeJPEG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 85}); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return buf.Bytes(), nil
}

// Crop cuts the face region out of the source image. The box is clamped
// to the image bounds, so detector boxes that stick out past an edge
// still produce a valid crop.
func Crop(img image.Image, box matcher.Box) image.Image {
	bounds := img.Bounds()

	x1 := clamp(int(box.Left), bounds.Min.X, bounds.Max.X)
	y1 := clamp(int(box.Top), bounds.Min.Y, bounds.Max.Y)
	x2 := clamp(int(box.Right), bounds.Min.X, bounds.Max.X)
	y2 := clamp(int(box.Bottom), bounds.Min.Y, bounds.Max.Y)
	if x2 <= x1 || y2 <= y1 {
		return image.NewRGBA(image.Rect(0, 0, 1, 1))
	}

	dst := image.NewRGBA(image.Rect(0, 0, x2-x1, y2-y1))
	draw.Draw(dst, dst.Bounds(), img, image.Pt(x1, y1), draw.Src)
	return dst
}

// ResizeMax resizes an image to fit within maxSize while keeping aspect
// ratio. Images already within the limit are returned unchanged.
func ResizeMax(img image.Image, maxSize int) image.Image {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	var newWidth, newHeight int
	if width > height {
		if width <= maxSize {
			return img
		}
		newWidth = maxSize
		newHeight = height * maxSize / width
	} else {
		if height <= maxSize {
			return img
		}
		newHeight = maxSize
		newWidth = width * maxSize / height
	}

	dst := image.NewRGBA(image.Rect(0, 0, newWidth, newHeight))
	draw.BiLinear.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
	return dst
}

// clamp restricts v to the range [lo, hi].
func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
