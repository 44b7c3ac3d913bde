// Package layout computes grid plans that pack copies of a photo onto a sheet.
//
// Given paper and cell sizes in pixels, an outer margin and an inner gutter,
// the planner finds the largest grid that fits:
//
//	usable_w = paper_w - 2*margin
//	cols     = floor((usable_w + gutter) / (cell_w + gutter))
//
// (and likewise for rows), then places min(requested, rows*cols) copies
// row-major. The occupied block is centered in the usable area; when the
// leftover space is odd the extra pixel ends up on the right/bottom.
//
// Planning is deterministic and never rotates the cell.
package layout

import (
	"fmt"
	"image"

	"github.com/matzehuels/photosheet/pkg/errors"
)

// Request holds the pixel inputs of a plan.
type Request struct {
	PaperWidth  int
	PaperHeight int
	CellWidth   int
	CellHeight  int
	Margin      int
	Gutter      int
	Copies      int
	DPI         int
}

// Validate checks the request before planning.
func (r Request) Validate() error {
	if r.PaperWidth < 1 || r.PaperHeight < 1 {
		return errors.Validation("paper size must be positive, got %dx%d px", r.PaperWidth, r.PaperHeight)
	}
	if r.CellWidth < 1 || r.CellHeight < 1 {
		return errors.Validation("cell size must be positive, got %dx%d px", r.CellWidth, r.CellHeight)
	}
	if r.Margin < 0 || r.Gutter < 0 {
		return errors.Validation("margin and gutter must not be negative, got %d/%d px", r.Margin, r.Gutter)
	}
	if r.Copies < 1 {
		return errors.Validation("requested copies must be positive, got %d", r.Copies)
	}
	return nil
}

// Plan is the computed placement of copies on a sheet.
type Plan struct {
	Rows            int             `json:"rows"`
	Cols            int             `json:"cols"`
	Capacity        int             `json:"capacity"`
	RequestedCopies int             `json:"requested_copies"`
	ActualCopies    int             `json:"actual_copies"`
	UsedRows        int             `json:"used_rows"`
	UsedCols        int             `json:"used_cols"`
	CellWidth       int             `json:"cell_width_px"`
	CellHeight      int             `json:"cell_height_px"`
	PaperWidth      int             `json:"paper_width_px"`
	PaperHeight     int             `json:"paper_height_px"`
	MarginPx        int             `json:"margin_px"`
	GutterPx        int             `json:"gutter_px"`
	UsableWidth     int             `json:"usable_width_px"`
	UsableHeight    int             `json:"usable_height_px"`
	Block           image.Rectangle `json:"block"`
	Origins         []image.Point   `json:"cell_origins"`
	DPI             int             `json:"dpi,omitempty"`
}

// Build computes the plan for r.
func Build(r Request) (Plan, error) {
	if err := r.Validate(); err != nil {
		return Plan{}, err
	}

	usableW := r.PaperWidth - 2*r.Margin
	usableH := r.PaperHeight - 2*r.Margin

	cols := fitCount(usableW, r.CellWidth, r.Gutter)
	rows := fitCount(usableH, r.CellHeight, r.Gutter)
	capacity := rows * cols
	if capacity == 0 {
		return Plan{}, errors.SheetTooSmall(max(0, usableW), max(0, usableH), r.CellWidth, r.CellHeight)
	}

	actual := min(r.Copies, capacity)
	usedCols := min(cols, actual)
	usedRows := (actual + usedCols - 1) / usedCols

	blockW := usedCols*r.CellWidth + (usedCols-1)*r.Gutter
	blockH := usedRows*r.CellHeight + (usedRows-1)*r.Gutter
	ox := r.Margin + (usableW-blockW)/2
	oy := r.Margin + (usableH-blockH)/2

	origins := make([]image.Point, actual)
	for i := range origins {
		row, col := i/usedCols, i%usedCols
		origins[i] = image.Pt(
			ox+col*(r.CellWidth+r.Gutter),
			oy+row*(r.CellHeight+r.Gutter),
		)
	}

	return Plan{
		Rows:            rows,
		Cols:            cols,
		Capacity:        capacity,
		RequestedCopies: r.Copies,
		ActualCopies:    actual,
		UsedRows:        usedRows,
		UsedCols:        usedCols,
		CellWidth:       r.CellWidth,
		CellHeight:      r.CellHeight,
		PaperWidth:      r.PaperWidth,
		PaperHeight:     r.PaperHeight,
		MarginPx:        r.Margin,
		GutterPx:        r.Gutter,
		UsableWidth:     usableW,
		UsableHeight:    usableH,
		Block:           image.Rect(ox, oy, ox+blockW, oy+blockH),
		Origins:         origins,
		DPI:             r.DPI,
	}, nil
}

// fitCount returns how many cells of size cell, separated by gutter, fit in
// usable pixels.
func fitCount(usable, cell, gutter int) int {
	n := (usable + gutter) / (cell + gutter)
	if usable+gutter < 0 || n < 0 {
		return 0
	}
	return n
}

// Cells returns the rectangle each copy occupies, in placement order.
func (p Plan) Cells() []image.Rectangle {
	cells := make([]image.Rectangle, len(p.Origins))
	for i, o := range p.Origins {
		cells[i] = image.Rect(o.X, o.Y, o.X+p.CellWidth, o.Y+p.CellHeight)
	}
	return cells
}

// CutLines returns, per cell, the rectangle on which a cut guide runs: the
// cell pushed outward by half the gutter on every side. Adjacent cells share
// their guide lines. Min and Max are both guide pixels, so with any gutter
// the guide columns and rows fall inside the gap; with an odd gutter the
// extra pixel goes before the cell. With no gutter the guide lies on the
// cell's first column and row and on the neighbour's first pixel past Max.
func (p Plan) CutLines() []image.Rectangle {
	hi := p.GutterPx / 2
	lo := p.GutterPx - hi
	cells := p.Cells()
	for i, c := range cells {
		cells[i] = image.Rect(c.Min.X-lo, c.Min.Y-lo, c.Max.X+hi, c.Max.Y+hi)
	}
	return cells
}

// Bounds returns the paper rectangle.
func (p Plan) Bounds() image.Rectangle {
	return image.Rect(0, 0, p.PaperWidth, p.PaperHeight)
}

// Summary is a compact description of a plan for previews.
type Summary struct {
	Layout          string `json:"layout"`
	RequestedCopies int    `json:"requested_copies"`
	ActualCopies    int    `json:"actual_copies"`
	Capacity        int    `json:"capacity"`
	Cell            string `json:"cell"`
	Sheet           string `json:"sheet"`
}

// Summary describes the plan the way the print preview shows it.
func (p Plan) Summary() Summary {
	return Summary{
		Layout:          fmt.Sprintf("%d × %d", p.Cols, p.Rows),
		RequestedCopies: p.RequestedCopies,
		ActualCopies:    p.ActualCopies,
		Capacity:        p.Capacity,
		Cell:            fmt.Sprintf("%dx%dpx", p.CellWidth, p.CellHeight),
		Sheet:           fmt.Sprintf("%dx%dpx", p.PaperWidth, p.PaperHeight),
	}
}
