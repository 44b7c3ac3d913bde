// Package dims converts physical millimetre dimensions to pixel dimensions.
//
// Every conversion uses the same rule:
//
//	px = round(mm / 25.4 × dpi)
//
// and is a pure function of its inputs.
package dims

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/matzehuels/photosheet/pkg/catalog"
	"github.com/matzehuels/photosheet/pkg/errors"
)

// MMPerInch is the number of millimetres in one inch.
const MMPerInch = 25.4

// DefaultDPI is used when a request leaves the DPI unset.
const DefaultDPI = 300

// DPI presets accepted by ParseDPI.
var Presets = map[string]int{
	"screen": 96,
	"draft":  150,
	"print":  300,
	"photo":  600,
}

// Target is a resolved pixel size at a given DPI.
type Target struct {
	Width  int `json:"pixel_width"`
	Height int `json:"pixel_height"`
	DPI    int `json:"dpi"`
}

// String implements fmt.Stringer.
func (t Target) String() string {
	return fmt.Sprintf("%dx%d px @ %d dpi", t.Width, t.Height, t.DPI)
}

// WidthMM returns the physical width represented by the pixel width.
func (t Target) WidthMM() float64 { return PxToMM(t.Width, t.DPI) }

// HeightMM returns the physical height represented by the pixel height.
func (t Target) HeightMM() float64 { return PxToMM(t.Height, t.DPI) }

// Override is an explicit physical size that bypasses the catalog.
type Override struct {
	WidthMM  float64 `json:"width_mm"`
	HeightMM float64 `json:"height_mm"`
}

// Request asks for the pixel size of a photo standard.
// Override, when non-nil, takes precedence over Code.
type Request struct {
	Code     string    `json:"code,omitempty"`
	Override *Override `json:"override,omitempty"`
	DPI      int       `json:"dpi,omitempty"`
}

// MMToPx converts millimetres to pixels, never returning less than 1.
func MMToPx(mm float64, dpi int) int {
	px := int(math.Round(mm / MMPerInch * float64(dpi)))
	if px < 1 {
		return 1
	}
	return px
}

// MMToPxAllowZero converts millimetres to pixels for spacing values such as
// margins and gutters, where zero is meaningful. Negative results clamp to 0.
func MMToPxAllowZero(mm float64, dpi int) int {
	px := int(math.Round(mm / MMPerInch * float64(dpi)))
	if px < 0 {
		return 0
	}
	return px
}

// PxToMM converts a pixel count back to millimetres.
func PxToMM(px, dpi int) float64 {
	return float64(px) / float64(dpi) * MMPerInch
}

// Physical converts a physical width/height to a Target after validating both.
func Physical(widthMM, heightMM float64, dpi int) (Target, error) {
	if dpi == 0 {
		dpi = DefaultDPI
	}
	if err := errors.ValidateDPI(dpi); err != nil {
		return Target{}, err
	}
	if err := errors.ValidatePositive("width_mm", widthMM); err != nil {
		return Target{}, err
	}
	if err := errors.ValidatePositive("height_mm", heightMM); err != nil {
		return Target{}, err
	}
	return Target{
		Width:  MMToPx(widthMM, dpi),
		Height: MMToPx(heightMM, dpi),
		DPI:    dpi,
	}, nil
}

// Resolve computes the target pixel size for a photo request.
func Resolve(cat *catalog.Catalog, req Request) (Target, error) {
	if req.Override != nil {
		return Physical(req.Override.WidthMM, req.Override.HeightMM, req.DPI)
	}
	std, err := cat.Size(req.Code)
	if err != nil {
		return Target{}, err
	}
	return Physical(std.WidthMM, std.HeightMM, req.DPI)
}

// ResolvePaper computes the pixel size of a paper standard.
func ResolvePaper(cat *catalog.Catalog, code string, dpi int) (Target, error) {
	p, err := cat.Paper(code)
	if err != nil {
		return Target{}, err
	}
	return Physical(p.WidthMM, p.HeightMM, dpi)
}

// HeadRange is the permitted head height in pixels for a standard at a DPI.
type HeadRange struct {
	Min int `json:"min_px"`
	Max int `json:"max_px"`
}

// Head returns the pixel head-height range of std at dpi. ok is false when the
// standard does not constrain head height.
func Head(std catalog.SizeStandard, dpi int) (r HeadRange, ok bool) {
	if !std.HasHeadBounds() {
		return HeadRange{}, false
	}
	return HeadRange{Min: MMToPx(std.MinHeadMM, dpi), Max: MMToPx(std.MaxHeadMM, dpi)}, true
}

// ParseDPI accepts a preset name ("print") or an integer ("300").
// The empty string yields DefaultDPI.
func ParseDPI(s string) (int, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" {
		return DefaultDPI, nil
	}
	if v, ok := Presets[s]; ok {
		return v, nil
	}
	v, err := strconv.Atoi(strings.TrimSuffix(s, "dpi"))
	if err != nil {
		return 0, errors.Validation("invalid dpi %q (use an integer or one of screen, draft, print, photo)", s)
	}
	if err := errors.ValidateDPI(v); err != nil {
		return 0, err
	}
	return v, nil
}
