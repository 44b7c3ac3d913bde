// Package fit maps an arbitrary source image onto an exact target pixel size.
//
// Three policies are available:
//
//   - [Cover] (default): uniform scale until the target is filled, then a
//     centered crop. When the excess is odd, the extra pixel is trimmed from
//     the right/bottom edge.
//   - [Contain]: uniform scale until the image fits, centered on a fill color.
//   - [Stretch]: independent scale per axis; aspect ratio is not preserved.
//
// The result always has exactly the requested dimensions. Upscaling beyond
// [DefaultUpscaleLimit] is allowed but attaches a quality warning.
package fit

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"strings"

	"github.com/disintegration/imaging"

	"github.com/matzehuels/photosheet/pkg/dims"
	"github.com/matzehuels/photosheet/pkg/errors"
)

// Policy selects how the source aspect ratio maps into the target rectangle.
type Policy string

// Supported fit policies.
const (
	Cover   Policy = "cover"
	Contain Policy = "contain"
	Stretch Policy = "stretch"
)

// DefaultPolicy is used when no policy is given.
const DefaultPolicy = Cover

// DefaultUpscaleLimit is the largest upscale factor accepted without a warning.
const DefaultUpscaleLimit = 4.0

// WarnUpscale is the QualityWarning kind for large upscale factors.
const WarnUpscale = "upscale"

// ParsePolicy converts a user-supplied string to a Policy. Empty means Cover.
func ParsePolicy(s string) (Policy, error) {
	switch p := Policy(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return DefaultPolicy, nil
	case Cover, Contain, Stretch:
		return p, nil
	default:
		return "", errors.Validation("invalid fit policy %q (must be cover, contain or stretch)", s)
	}
}

// Filter names a resampling kernel.
type Filter string

// Supported resampling filters.
const (
	Lanczos    Filter = "lanczos"
	CatmullRom Filter = "catmullrom"
	Linear     Filter = "linear"
	Nearest    Filter = "nearest"
)

var filters = map[Filter]imaging.ResampleFilter{
	Lanczos:    imaging.Lanczos,
	CatmullRom: imaging.CatmullRom,
	Linear:     imaging.Linear,
	Nearest:    imaging.NearestNeighbor,
}

// ParseFilter converts a user-supplied string to a Filter. Empty means Lanczos.
func ParseFilter(s string) (Filter, error) {
	f := Filter(strings.ToLower(strings.TrimSpace(s)))
	if f == "" {
		return Lanczos, nil
	}
	if _, ok := filters[f]; !ok {
		return "", errors.Validation("invalid resampling filter %q (must be lanczos, catmullrom, linear or nearest)", s)
	}
	return f, nil
}

// Photo is a source image fitted to an exact target size.
type Photo struct {
	Image    *image.NRGBA
	Target   dims.Target
	Policy   Policy
	Scale    float64 // largest per-axis scale factor applied to the source
	Warnings []errors.QualityWarning
}

// Size returns the photo's pixel dimensions.
func (p *Photo) Size() (int, int) {
	b := p.Image.Bounds()
	return b.Dx(), b.Dy()
}

// Option configures Fit.
type Option func(*fitter)

type fitter struct {
	policy       Policy
	fill         color.Color
	filter       Filter
	upscaleLimit float64
}

// WithPolicy sets the fit policy (default Cover).
func WithPolicy(p Policy) Option {
	return func(f *fitter) { f.policy = p }
}

// WithFill sets the padding color used by Contain (default white).
func WithFill(c color.Color) Option {
	return func(f *fitter) { f.fill = c }
}

// WithFilter sets the resampling filter (default Lanczos).
func WithFilter(name Filter) Option {
	return func(f *fitter) { f.filter = name }
}

// WithUpscaleLimit sets the upscale factor above which a warning is attached.
func WithUpscaleLimit(limit float64) Option {
	return func(f *fitter) { f.upscaleLimit = limit }
}

// Fit scales src onto target according to the configured policy.
func Fit(src image.Image, target dims.Target, opts ...Option) (*Photo, error) {
	f := fitter{
		policy:       DefaultPolicy,
		fill:         color.White,
		filter:       Lanczos,
		upscaleLimit: DefaultUpscaleLimit,
	}
	for _, opt := range opts {
		opt(&f)
	}

	if src == nil {
		return nil, errors.InvalidImage("source image is nil")
	}
	b := src.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, errors.InvalidImage("source image has zero dimension (%dx%d)", b.Dx(), b.Dy())
	}
	if target.Width < 1 || target.Height < 1 {
		return nil, errors.Validation("target dimensions must be positive, got %dx%d", target.Width, target.Height)
	}
	kernel, ok := filters[f.filter]
	if !ok {
		return nil, errors.Validation("invalid resampling filter %q", f.filter)
	}

	var (
		img   *image.NRGBA
		scale float64
	)
	switch f.policy {
	case Cover, "":
		img, scale = cover(src, target.Width, target.Height, kernel)
	case Contain:
		img, scale = contain(src, target.Width, target.Height, kernel, f.fill)
	case Stretch:
		img, scale = stretch(src, target.Width, target.Height, kernel)
	default:
		return nil, errors.Validation("invalid fit policy %q", f.policy)
	}

	p := &Photo{Image: img, Target: target, Policy: f.policy, Scale: scale}
	if p.Policy == "" {
		p.Policy = Cover
	}
	if scale > f.upscaleLimit {
		p.Warnings = append(p.Warnings, errors.QualityWarning{
			Kind:    WarnUpscale,
			Message: fmt.Sprintf("source upscaled %.1fx (limit %.1fx); print may look soft", scale, f.upscaleLimit),
			Factor:  scale,
		})
	}
	return p, nil
}

// cover crops the source to the target aspect ratio first and then resamples
// the crop, so extreme aspect ratios never allocate an oversized intermediate.
func cover(src image.Image, tw, th int, kernel imaging.ResampleFilter) (*image.NRGBA, float64) {
	b := src.Bounds()
	sw, sh := b.Dx(), b.Dy()

	cw, ch := sw, sh
	if sw*th > tw*sh {
		cw = clamp(int(math.Round(float64(sh)*float64(tw)/float64(th))), 1, sw)
	} else {
		ch = clamp(int(math.Round(float64(sw)*float64(th)/float64(tw))), 1, sh)
	}

	// Integer division puts an odd leftover pixel on the right/bottom.
	x0 := b.Min.X + (sw-cw)/2
	y0 := b.Min.Y + (sh-ch)/2
	cropped := imaging.Crop(src, image.Rect(x0, y0, x0+cw, y0+ch))

	scale := math.Max(float64(tw)/float64(cw), float64(th)/float64(ch))
	return resize(cropped, tw, th, kernel), scale
}

func clamp(v, lo, hi int) int {
	return min(hi, max(lo, v))
}

func contain(src image.Image, tw, th int, kernel imaging.ResampleFilter, fill color.Color) (*image.NRGBA, float64) {
	b := src.Bounds()
	sw, sh := b.Dx(), b.Dy()
	scale := math.Min(float64(tw)/float64(sw), float64(th)/float64(sh))

	w := min(tw, max(1, int(math.Round(float64(sw)*scale))))
	h := min(th, max(1, int(math.Round(float64(sh)*scale))))

	scaled := resize(src, w, h, kernel)
	canvas := imaging.New(tw, th, fill)
	return imaging.Paste(canvas, scaled, image.Pt((tw-w)/2, (th-h)/2)), scale
}

func stretch(src image.Image, tw, th int, kernel imaging.ResampleFilter) (*image.NRGBA, float64) {
	b := src.Bounds()
	scale := math.Max(float64(tw)/float64(b.Dx()), float64(th)/float64(b.Dy()))
	return resize(src, tw, th, kernel), scale
}

// resize returns src at w×h anchored at the origin, skipping resampling when
// the size already matches.
func resize(src image.Image, w, h int, kernel imaging.ResampleFilter) *image.NRGBA {
	b := src.Bounds()
	if b.Dx() == w && b.Dy() == h {
		return imaging.Clone(src)
	}
	return imaging.Resize(src, w, h, kernel)
}
