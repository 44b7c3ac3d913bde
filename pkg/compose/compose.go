// Package compose renders a layout plan into a sheet image.
//
// The canvas is filled with the background, each copy is stamped at its
// planned origin, and cut guides are stroked last so they stay visible. The
// package performs no I/O.
package compose

import (
	"image"
	"image/color"
	"strings"

	"github.com/fogleman/gg"
	"golang.org/x/image/draw"

	"github.com/matzehuels/photosheet/pkg/errors"
	"github.com/matzehuels/photosheet/pkg/layout"
)

// GuideStyle selects how cut guides are drawn.
type GuideStyle string

const (
	// GuideNone draws nothing.
	GuideNone GuideStyle = "none"
	// GuideLines outlines every cell half a gutter outside its edges.
	GuideLines GuideStyle = "lines"
	// GuideCorners draws short marks extending outward from each cell corner.
	GuideCorners GuideStyle = "corners"
)

// DefaultMarkLength is the corner mark length in pixels at 300 dpi.
const DefaultMarkLength = 20

// MarkLength returns the corner mark length for dpi, scaled from
// DefaultMarkLength so marks keep the same physical size. It is at least 1.
func MarkLength(dpi int) int {
	if dpi <= 0 {
		return DefaultMarkLength
	}
	return max(1, (DefaultMarkLength*dpi+150)/300)
}

// ParseGuideStyle converts a user-supplied string. Empty means GuideLines.
func ParseGuideStyle(s string) (GuideStyle, error) {
	switch g := GuideStyle(strings.ToLower(strings.TrimSpace(s))); g {
	case "":
		return GuideLines, nil
	case GuideNone, GuideLines, GuideCorners:
		return g, nil
	default:
		return "", errors.Validation("invalid cut guide style %q (must be lines, corners or none)", s)
	}
}

// Sheet is a composed print sheet.
type Sheet struct {
	Image *image.RGBA
	Plan  layout.Plan
	DPI   int
}

// Option configures a composition.
type Option func(*composer)

type composer struct {
	background color.Color
	guide      GuideStyle
	guideColor color.Color
	guideWidth float64
	markLength int
}

// WithBackground sets the sheet fill color (default white).
func WithBackground(col color.Color) Option {
	return func(c *composer) { c.background = col }
}

// WithGuides enables cut guides in the given style (default none).
func WithGuides(style GuideStyle) Option {
	return func(c *composer) { c.guide = style }
}

// WithGuideColor sets the cut guide color (default #999999).
func WithGuideColor(col color.Color) Option {
	return func(c *composer) { c.guideColor = col }
}

// WithGuideWidth sets the cut guide stroke width in pixels (default 1).
func WithGuideWidth(px float64) Option {
	return func(c *composer) { c.guideWidth = px }
}

// WithMarkLength sets the corner mark length in pixels (default scaled from
// the plan DPI). Marks between copies are still shortened to half the gutter.
func WithMarkLength(px int) Option {
	return func(c *composer) { c.markLength = px }
}

func newComposer(opts []Option) composer {
	c := composer{
		background: color.White,
		guide:      GuideNone,
		guideColor: DefaultGuideColor,
		guideWidth: 1,
	}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// Compose stamps photo at every origin of plan.
func Compose(plan layout.Plan, photo image.Image, opts ...Option) (*Sheet, error) {
	if photo == nil {
		return nil, errors.InvalidImage("photo is nil")
	}
	photos := make([]image.Image, plan.ActualCopies)
	for i := range photos {
		photos[i] = photo
	}
	return ComposeEach(plan, photos, opts...)
}

// ComposeEach stamps photos[i] at origin i. It lets one sheet carry distinct
// photos of the same size; len(photos) must equal plan.ActualCopies.
func ComposeEach(plan layout.Plan, photos []image.Image, opts ...Option) (*Sheet, error) {
	c := newComposer(opts)
	if err := c.validate(plan, photos); err != nil {
		return nil, err
	}

	canvas := image.NewRGBA(plan.Bounds())
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(c.background), image.Point{}, draw.Src)

	for i, cell := range plan.Cells() {
		src := photos[i]
		draw.Draw(canvas, cell, src, src.Bounds().Min, draw.Over)
	}

	switch c.guide {
	case GuideLines:
		c.drawLines(canvas, plan.CutLines())
	case GuideCorners:
		c.drawCorners(canvas, plan)
	}

	return &Sheet{Image: canvas, Plan: plan, DPI: plan.DPI}, nil
}

func (c composer) validate(plan layout.Plan, photos []image.Image) error {
	if plan.PaperWidth < 1 || plan.PaperHeight < 1 {
		return errors.Validation("plan has no paper size")
	}
	if len(photos) != plan.ActualCopies || len(photos) != len(plan.Origins) {
		return errors.Validation("got %d photos for %d planned copies", len(photos), plan.ActualCopies)
	}
	for i, p := range photos {
		if p == nil {
			return errors.InvalidImage("photo %d is nil", i)
		}
		b := p.Bounds()
		if b.Dx() != plan.CellWidth || b.Dy() != plan.CellHeight {
			return errors.Validation("photo %d is %dx%d px, plan cell is %dx%d px",
				i, b.Dx(), b.Dy(), plan.CellWidth, plan.CellHeight)
		}
	}
	switch c.guide {
	case GuideNone, GuideLines, GuideCorners:
	default:
		return errors.Validation("invalid cut guide style %q", c.guide)
	}
	if c.guideWidth <= 0 {
		return errors.Validation("cut guide width must be positive, got %v", c.guideWidth)
	}
	return nil
}

func (c composer) context(canvas *image.RGBA) *gg.Context {
	dc := gg.NewContextForRGBA(canvas)
	dc.SetColor(c.guideColor)
	dc.SetLineWidth(c.guideWidth)
	dc.SetLineCapButt()
	return dc
}

func (c composer) drawLines(canvas *image.RGBA, rects []image.Rectangle) {
	dc := c.context(canvas)
	w, h := canvas.Bounds().Dx(), canvas.Bounds().Dy()
	for _, r := range rects {
		x0, x1 := clamp(r.Min.X, w), clamp(r.Max.X, w)
		y0, y1 := clamp(r.Min.Y, h), clamp(r.Max.Y, h)
		vline(dc, x0, y0, y1+1)
		vline(dc, x1, y0, y1+1)
		hline(dc, y0, x0, x1+1)
		hline(dc, y1, x0, x1+1)
	}
	dc.Stroke()
}

// drawCorners draws L marks outward from every cell corner. A mark facing a
// neighbouring copy stops at the middle of the gutter so it never reaches the
// neighbour's pixels.
func (c composer) drawCorners(canvas *image.RGBA, plan layout.Plan) {
	dc := c.context(canvas)
	l := c.markLength
	if l <= 0 {
		l = MarkLength(plan.DPI)
	}
	between := min(l, plan.GutterPx/2)

	cells := plan.Cells()
	n, cols := len(cells), max(1, plan.UsedCols)
	for i, r := range cells {
		row, col := i/cols, i%cols
		west, east, north, south := l, l, l, l
		if col > 0 {
			west = between
		}
		if col < cols-1 && i+1 < n {
			east = between
		}
		if row > 0 {
			north = between
		}
		if i+cols < n {
			south = between
		}

		left, top := r.Min.X, r.Min.Y
		right, bottom := r.Max.X-1, r.Max.Y-1

		hline(dc, top, left-west, left)
		vline(dc, left, top-north, top)

		hline(dc, top, right+1, right+1+east)
		vline(dc, right, top-north, top)

		hline(dc, bottom, left-west, left)
		vline(dc, left, bottom+1, bottom+1+south)

		hline(dc, bottom, right+1, right+1+east)
		vline(dc, right, bottom+1, bottom+1+south)
	}
	dc.Stroke()
}

// vline strokes column x over rows [y0, y1). The stroke runs through the pixel
// center so a 1px guide covers exactly one column.
func vline(dc *gg.Context, x, y0, y1 int) {
	dc.DrawLine(float64(x)+0.5, float64(y0), float64(x)+0.5, float64(y1))
}

// hline strokes row y over columns [x0, x1).
func hline(dc *gg.Context, y, x0, x1 int) {
	dc.DrawLine(float64(x0), float64(y)+0.5, float64(x1), float64(y)+0.5)
}

func clamp(v, size int) int {
	return min(size-1, max(0, v))
}
