package io

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"  // register decoder
	_ "image/jpeg" // register decoder
	_ "image/png"  // register decoder
	"io"
	"os"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"  // register decoder
	_ "golang.org/x/image/tiff" // register decoder
	_ "golang.org/x/image/webp" // register decoder

	"github.com/matzehuels/photosheet/pkg/cache"
	"github.com/matzehuels/photosheet/pkg/errors"
)

// MaxPixels is the largest source image accepted (about 100 megapixels).
const MaxPixels = 100_000_000

// Source is a decoded photo together with facts about its encoded form.
type Source struct {
	Image  image.Image
	Hash   string // hex SHA-256 of the encoded bytes
	Format string // decoder name, e.g. "jpeg"
	Size   int    // encoded size in bytes
}

// ReadImage reads and decodes a photo from r. A positive limit caps the
// number of bytes read; larger inputs fail with INVALID_INPUT. ReadImage does
// not close r.
func ReadImage(r io.Reader, limit int64) (*Source, error) {
	if limit > 0 {
		r = io.LimitReader(r, limit+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read image")
	}
	if limit > 0 && int64(len(data)) > limit {
		return nil, errors.New(errors.ErrCodeInvalidInput, "image exceeds %d bytes", limit)
	}
	return DecodeImage(data)
}

// DecodeImage decodes an encoded photo held in memory.
func DecodeImage(data []byte) (*Source, error) {
	if len(data) == 0 {
		return nil, errors.InvalidImage("image is empty")
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidImage, err, "unrecognized image data")
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, errors.InvalidImage("image has zero dimension (%dx%d)", cfg.Width, cfg.Height)
	}
	if int64(cfg.Width)*int64(cfg.Height) > MaxPixels {
		return nil, errors.InvalidImage("image is %dx%d, larger than %d pixels", cfg.Width, cfg.Height, MaxPixels)
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidImage, err, "decode %s", format)
	}
	return &Source{
		Image:  img,
		Hash:   cache.Hash(data),
		Format: format,
		Size:   len(data),
	}, nil
}

// ImportImage reads and decodes the photo at path.
func ImportImage(path string) (*Source, error) {
	if err := errors.ValidatePath(path); err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadImage(f, 0)
}
