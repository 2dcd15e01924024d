// Package asset loads the source image and fits it to the model's input size.
package asset

import (
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/nfnt/resize"
	"github.com/rs/zerolog/log"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

var (
	ErrNotFound = errors.New("asset not found")
	ErrDecode   = errors.New("asset decode failed")
)

var filters = map[string]resize.InterpolationFunction{
	"nearest":  resize.NearestNeighbor,
	"bilinear": resize.Bilinear,
	"bicubic":  resize.Bicubic,
	"mitchell": resize.MitchellNetravali,
	"lanczos2": resize.Lanczos2,
	"lanczos3": resize.Lanczos3,
}

// ParseFilter maps a filter name from configuration to a resize interpolation.
func ParseFilter(name string) (resize.InterpolationFunction, error) {
	f, ok := filters[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return 0, fmt.Errorf("unknown resize filter %q", name)
	}
	return f, nil
}

// Load opens and decodes the image file at path.
func Load(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("%w: %s: %w", ErrNotFound, path, err)
	}
	defer f.Close()

	img, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return img, nil
}

// Decode reads any registered image format from r.
func Decode(r io.Reader) (image.Image, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}

	log.Debug().
		Str("format", format).
		Int("width", img.Bounds().Dx()).
		Int("height", img.Bounds().Dy()).
		Msg("decoded image")

	return img, nil
}

// Fit scales img to exactly width x height. Images already at that size are returned as is.
func Fit(img image.Image, width, height int, filter resize.InterpolationFunction) image.Image {
	b := img.Bounds()
	if b.Dx() == width && b.Dy() == height {
		return img
	}
	if width == 0 || height == 0 || b.Empty() {
		return image.NewNRGBA(image.Rect(0, 0, width, height))
	}

	log.Debug().
		Int("fromWidth", b.Dx()).
		Int("fromHeight", b.Dy()).
		Int("toWidth", width).
		Int("toHeight", height).
		Msg("resizing image")

	return resize.Resize(uint(width), uint(height), img, filter)
}
