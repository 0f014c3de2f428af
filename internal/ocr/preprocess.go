package ocr

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"io"
	"math"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"golang.org/x/image/draw"
)

// MinWidth is the width below which images are upscaled before
// recognition; tesseract accuracy drops sharply on small glyphs.
const MinWidth = 1000

// MaxPixels bounds the size of an image after Prepare's upscale.
const MaxPixels = 25_000_000

// ErrUnsupportedImage is returned when an upload is not a decodable image
// or is too large to process.
var ErrUnsupportedImage = errors.New("unsupported image format")

// Decode reads a PNG, JPEG, GIF, BMP, TIFF or WebP image. The header is
// checked first so oversized images are rejected before any pixel
// buffer is allocated.
func Decode(r io.Reader) (image.Image, error) {
	var head bytes.Buffer
	cfg, _, err := image.DecodeConfig(io.TeeReader(r, &head))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedImage, err)
	}
	if px := preparedPixels(cfg.Width, cfg.Height); px > MaxPixels {
		return nil, fmt.Errorf("%w: %dx%d is %d pixels after scaling, limit %d",
			ErrUnsupportedImage, cfg.Width, cfg.Height, px, MaxPixels)
	}

	img, _, err := image.Decode(io.MultiReader(&head, r))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedImage, err)
	}
	return img, nil
}

// preparedPixels returns the pixel count Prepare will work on for an
// image of the given size.
func preparedPixels(w, h int) int64 {
	px := int64(w) * int64(h)
	if w < MinWidth {
		px *= 4
	}
	return px
}

// Prepare converts img to grayscale, doubles its size when it is narrower
// than MinWidth, and applies an unsharp mask (sigma 2, amount 150%,
// threshold 3) to crisp up glyph edges.
func Prepare(img image.Image) *image.Gray {
	b := img.Bounds()
	gray := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(gray, gray.Bounds(), img, b.Min, draw.Src)

	if gray.Bounds().Dx() < MinWidth {
		scaled := image.NewGray(image.Rect(0, 0, b.Dx()*2, b.Dy()*2))
		draw.CatmullRom.Scale(scaled, scaled.Bounds(), gray, gray.Bounds(), draw.Src, nil)
		gray = scaled
	}

	return unsharpMask(gray, 2, 1.5, 3)
}

// unsharpMask sharpens g by adding back amount times the difference
// between each pixel and its Gaussian blur, skipping differences below
// threshold so flat regions keep their noise level.
func unsharpMask(g *image.Gray, sigma, amount float64, threshold int) *image.Gray {
	blurred := gaussianBlur(g, sigma)
	out := image.NewGray(g.Rect)
	for i, p := range g.Pix {
		diff := int(p) - int(blurred.Pix[i])
		if diff < threshold && -diff < threshold {
			out.Pix[i] = p
			continue
		}
		v := float64(p) + amount*float64(diff)
		out.Pix[i] = uint8(math.Max(0, math.Min(255, math.Round(v))))
	}
	return out
}

// gaussianBlur applies a separable Gaussian kernel of radius 3*sigma,
// clamping samples at the image edges.
func gaussianBlur(g *image.Gray, sigma float64) *image.Gray {
	radius := int(math.Ceil(3 * sigma))
	kernel := make([]float64, 2*radius+1)
	var sum float64
	for i := range kernel {
		x := float64(i - radius)
		kernel[i] = math.Exp(-x * x / (2 * sigma * sigma))
		sum += kernel[i]
	}
	for i := range kernel {
		kernel[i] /= sum
	}

	w, h := g.Rect.Dx(), g.Rect.Dy()
	clamp := func(v, hi int) int {
		if v < 0 {
			return 0
		}
		if v > hi {
			return hi
		}
		return v
	}

	tmp := make([]float32, w*h)
	for y := 0; y < h; y++ {
		row := g.Pix[y*g.Stride:]
		for x := 0; x < w; x++ {
			var acc float64
			for k, kv := range kernel {
				acc += kv * float64(row[clamp(x+k-radius, w-1)])
			}
			tmp[y*w+x] = float32(acc)
		}
	}

	out := image.NewGray(g.Rect)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var acc float64
			for k, kv := range kernel {
				acc += kv * float64(tmp[clamp(y+k-radius, h-1)*w+x])
			}
			out.Pix[y*out.Stride+x] = uint8(math.Round(acc))
		}
	}
	return out
}
