// Package display provides the surfaces the original and transformed images are shown on.
package display

import (
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog/log"
)

type Region string

const (
	Original Region = "original"
	Result   Region = "result"
)

type Sink interface {
	// Show presents img in the given region, replacing whatever was there.
	Show(region Region, img image.Image) error
}

// FileSink writes each region to <dir>/<region>.<format>.
type FileSink struct {
	dir    string
	format string
}

func NewFileSink(dir, format string) (*FileSink, error) {
	switch format {
	case "png", "jpg", "jpeg":
	default:
		return nil, fmt.Errorf("unsupported output format %q", format)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("error creating output directory %w", err)
	}

	return &FileSink{dir: dir, format: format}, nil
}

// Path returns the file a region is written to.
func (s *FileSink) Path(region Region) string {
	return filepath.Join(s.dir, fmt.Sprintf("%s.%s", region, s.format))
}

func (s *FileSink) Show(region Region, img image.Image) error {
	if img == nil {
		return errors.New("nothing to show")
	}

	path := s.Path(region)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("error creating %s: %w", path, err)
	}
	defer f.Close()

	if s.format == "png" {
		err = png.Encode(f, img)
	} else {
		err = jpeg.Encode(f, img, &jpeg.Options{Quality: 95})
	}
	if err != nil {
		return fmt.Errorf("error encoding %s: %w", path, err)
	}

	log.Info().Str("region", string(region)).Str("path", path).Msg("image written")

	return f.Close()
}

// MemorySink keeps the last image shown in each region.
type MemorySink struct {
	mu     sync.Mutex
	images map[Region]image.Image
}

func NewMemorySink() *MemorySink {
	return &MemorySink{images: make(map[Region]image.Image)}
}

func (s *MemorySink) Show(region Region, img image.Image) error {
	if img == nil {
		return errors.New("nothing to show")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.images[region] = img
	return nil
}

// Get returns the image in region, or nil if nothing was shown there.
func (s *MemorySink) Get(region Region) image.Image {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.images[region]
}
