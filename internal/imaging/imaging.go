// Package imaging loads an image from disk and scales it to fit the display
// box. Scaling preserves aspect ratio and never enlarges.
package imaging

import (
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"imglabel/internal/errors"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Image is a decoded, display-sized image.
type Image struct {
	image.Image
	Format string
	// Original dimensions before scaling.
	Width  int
	Height int
	Size   int64 // File size in bytes
}

// Load decodes path and scales it to fit maxW x maxH. Any failure to open
// or decode is reported as a DecodeFailed error.
func Load(path string, maxW, maxH int) (*Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.NewFileError("cannot open image", path, errors.DecodeFailed, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, errors.NewFileError("cannot stat image", path, errors.DecodeFailed, err)
	}

	img, format, err := image.Decode(f)
	if err != nil {
		return nil, errors.NewFileError("cannot decode image", path, errors.DecodeFailed, err)
	}

	b := img.Bounds()
	return &Image{
		Image:  Thumbnail(img, maxW, maxH),
		Format: format,
		Width:  b.Dx(),
		Height: b.Dy(),
		Size:   info.Size(),
	}, nil
}

// Fit returns the largest size no bigger than w x h that fits in maxW x maxH
// with the same aspect ratio. Non-positive bounds leave the size unchanged.
func Fit(w, h, maxW, maxH int) (int, int) {
	if maxW <= 0 || maxH <= 0 || w <= 0 || h <= 0 {
		return w, h
	}
	if w <= maxW && h <= maxH {
		return w, h
	}
	// Compare w/maxW with h/maxH without floating point.
	if w*maxH >= h*maxW {
		nh := h * maxW / w
		return maxW, max(nh, 1)
	}
	nw := w * maxH / h
	return max(nw, 1), maxH
}

// Thumbnail scales img down to fit maxW x maxH. Images that already fit are
// returned as is.
func Thumbnail(img image.Image, maxW, maxH int) image.Image {
	b := img.Bounds()
	w, h := Fit(b.Dx(), b.Dy(), maxW, maxH)
	if w == b.Dx() && h == b.Dy() {
		return img
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Over, nil)
	return dst
}

// Placeholder is a neutral grey w x h image shown when decoding fails.
func Placeholder(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, max(w, 1), max(h, 1)))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: color.RGBA{R: 64, G: 64, B: 64, A: 255}}, image.Point{}, draw.Src)
	return img
}
