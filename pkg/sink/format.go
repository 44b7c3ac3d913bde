package sink

import (
	"image"
	"strings"

	"github.com/matzehuels/photosheet/pkg/errors"
)

// Format identifies an output encoding.
type Format string

// Supported output formats.
const (
	PNG  Format = "png"
	JPEG Format = "jpeg"
	TIFF Format = "tiff"
	BMP  Format = "bmp"
	GIF  Format = "gif"
	PDF  Format = "pdf"
)

// DefaultFormat is used when no format is given.
const DefaultFormat = PNG

var formats = map[Format]struct {
	contentType string
	ext         string
}{
	PNG:  {"image/png", ".png"},
	JPEG: {"image/jpeg", ".jpg"},
	TIFF: {"image/tiff", ".tiff"},
	BMP:  {"image/bmp", ".bmp"},
	GIF:  {"image/gif", ".gif"},
	PDF:  {"application/pdf", ".pdf"},
}

var aliases = map[string]Format{
	"jpg": JPEG,
	"tif": TIFF,
}

// Formats lists the supported formats in a stable order.
func Formats() []Format {
	return []Format{PNG, JPEG, TIFF, BMP, GIF, PDF}
}

// ParseFormat normalizes s to a supported Format. Empty means PNG.
func ParseFormat(s string) (Format, error) {
	s = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), "."))
	if s == "" {
		return DefaultFormat, nil
	}
	if f, ok := aliases[s]; ok {
		return f, nil
	}
	if _, ok := formats[Format(s)]; !ok {
		return "", errors.UnsupportedFormat(s)
	}
	return Format(s), nil
}

// ValidateFormat reports whether s names a supported format.
func ValidateFormat(s string) error {
	_, err := ParseFormat(s)
	return err
}

// ContentType returns the MIME type of f.
func (f Format) ContentType() string { return formats[f].contentType }

// Extension returns the file extension of f, including the dot.
func (f Format) Extension() string { return formats[f].ext }

// Artifact is an encoded output file.
type Artifact struct {
	Data        []byte `json:"-"`
	ContentType string `json:"content_type"`
	Format      Format `json:"format"`
	Extension   string `json:"extension"`
}

// Option configures encoding.
type Option func(*encoder)

type encoder struct {
	jpegQuality int
	pageW       float64
	pageH       float64
	title       string
}

// WithJPEGQuality sets the JPEG quality, 1 to 100 (default 95).
func WithJPEGQuality(q int) Option {
	return func(e *encoder) { e.jpegQuality = q }
}

// WithPageSize sets the PDF page size in millimetres. Without it the page
// matches the image's physical size.
func WithPageSize(widthMM, heightMM float64) Option {
	return func(e *encoder) { e.pageW, e.pageH = widthMM, heightMM }
}

// WithTitle sets the PDF document title.
func WithTitle(title string) Option {
	return func(e *encoder) { e.title = title }
}

// DefaultJPEGQuality is the JPEG quality used when none is set.
const DefaultJPEGQuality = 95

// Encode writes img in format f. dpi is recorded in the file so the image
// keeps its physical size.
func Encode(img image.Image, dpi int, f Format, opts ...Option) (*Artifact, error) {
	e := encoder{jpegQuality: DefaultJPEGQuality}
	for _, opt := range opts {
		opt(&e)
	}

	if img == nil {
		return nil, errors.InvalidImage("nothing to encode")
	}
	if b := img.Bounds(); b.Dx() < 1 || b.Dy() < 1 {
		return nil, errors.InvalidImage("image has zero dimension (%dx%d)", b.Dx(), b.Dy())
	}
	if err := errors.ValidateDPI(dpi); err != nil {
		return nil, err
	}
	if e.jpegQuality < 1 || e.jpegQuality > 100 {
		return nil, errors.Validation("jpeg quality must be between 1 and 100, got %d", e.jpegQuality)
	}

	var (
		data []byte
		err  error
	)
	switch f {
	case PNG:
		data, err = encodePNG(img, dpi)
	case JPEG:
		data, err = encodeJPEG(img, dpi, e.jpegQuality)
	case TIFF:
		data, err = encodeTIFF(img)
	case BMP:
		data, err = encodeBMP(img)
	case GIF:
		data, err = encodeGIF(img)
	case PDF:
		data, err = encodePDF(img, dpi, e)
	default:
		return nil, errors.UnsupportedFormat(string(f))
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode %s", f)
	}

	return &Artifact{
		Data:        data,
		ContentType: f.ContentType(),
		Format:      f,
		Extension:   f.Extension(),
	}, nil
}
