package layout

import (
	"image"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/photosheet/pkg/errors"
)

// a4 is A4 at 300 dpi with 5 mm margin and 2 mm gutter, holding 2x2in cells.
func a4(copies int) Request {
	return Request{
		PaperWidth:  2480,
		PaperHeight: 3508,
		CellWidth:   600,
		CellHeight:  600,
		Margin:      59,
		Gutter:      24,
		Copies:      copies,
		DPI:         300,
	}
}

func TestBuildA4TwelveCopies(t *testing.T) {
	p, err := Build(a4(12))
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}

	if p.Cols != 3 || p.Rows != 5 {
		t.Errorf("grid = %dx%d, want 3x5", p.Cols, p.Rows)
	}
	if p.Capacity != 15 {
		t.Errorf("Capacity = %d, want 15", p.Capacity)
	}
	if p.ActualCopies != 12 {
		t.Errorf("ActualCopies = %d, want 12", p.ActualCopies)
	}
	if p.UsedCols != 3 || p.UsedRows != 4 {
		t.Errorf("used = %dx%d, want 3x4", p.UsedCols, p.UsedRows)
	}

	want := []image.Point{
		{316, 518}, {940, 518}, {1564, 518},
		{316, 1142}, {940, 1142}, {1564, 1142},
		{316, 1766}, {940, 1766}, {1564, 1766},
		{316, 2390}, {940, 2390}, {1564, 2390},
	}
	if diff := cmp.Diff(want, p.Origins); diff != "" {
		t.Errorf("Origins mismatch (-want +got):\n%s", diff)
	}
	if want := image.Rect(316, 518, 2164, 2990); p.Block != want {
		t.Errorf("Block = %v, want %v", p.Block, want)
	}
}

func TestBuildSheetTooSmall(t *testing.T) {
	r := Request{
		PaperWidth:  700,
		PaperHeight: 700,
		CellWidth:   600,
		CellHeight:  600,
		Margin:      59,
		Gutter:      24,
		Copies:      1,
	}
	p, err := Build(r)
	if !errors.Is(err, errors.ErrCodeSheetTooSmall) {
		t.Fatalf("Build() error = %v, want SHEET_TOO_SMALL", err)
	}
	if p.Capacity != 0 || len(p.Origins) != 0 {
		t.Errorf("Build() returned partial plan %+v", p)
	}

	want := map[string]any{
		"usable_width":  582,
		"usable_height": 582,
		"cell_width":    600,
		"cell_height":   600,
	}
	if diff := cmp.Diff(want, errors.GetDetails(err)); diff != "" {
		t.Errorf("details mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildMarginsExceedPaper(t *testing.T) {
	r := Request{PaperWidth: 100, PaperHeight: 100, CellWidth: 10, CellHeight: 10, Margin: 80, Gutter: 5, Copies: 1}
	_, err := Build(r)
	if !errors.Is(err, errors.ErrCodeSheetTooSmall) {
		t.Fatalf("Build() error = %v, want SHEET_TOO_SMALL", err)
	}
	if d := errors.GetDetails(err); d["usable_width"] != 0 {
		t.Errorf("usable_width = %v, want clamped to 0", d["usable_width"])
	}
}

func TestBuildRejectsInvalidRequest(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Request)
	}{
		{"zero copies", func(r *Request) { r.Copies = 0 }},
		{"negative copies", func(r *Request) { r.Copies = -3 }},
		{"zero cell", func(r *Request) { r.CellWidth = 0 }},
		{"zero paper", func(r *Request) { r.PaperHeight = 0 }},
		{"negative margin", func(r *Request) { r.Margin = -1 }},
		{"negative gutter", func(r *Request) { r.Gutter = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := a4(1)
			tt.mutate(&r)
			if _, err := Build(r); !errors.Is(err, errors.ErrCodeValidation) {
				t.Errorf("Build() error = %v, want VALIDATION", err)
			}
		})
	}
}

func TestBuildInvariants(t *testing.T) {
	papers := [][2]int{{2480, 3508}, {2550, 3300}, {1800, 1200}, {2100, 1500}, {1240, 1748}}
	cells := [][2]int{{600, 600}, {413, 531}, {591, 827}, {413, 413}, {390, 567}}
	spacing := [][2]int{{0, 0}, {59, 24}, {30, 0}, {90, 47}}
	copies := []int{1, 2, 5, 12, 40, 1000}

	for _, paper := range papers {
		for _, cell := range cells {
			for _, sp := range spacing {
				for _, n := range copies {
					r := Request{
						PaperWidth: paper[0], PaperHeight: paper[1],
						CellWidth: cell[0], CellHeight: cell[1],
						Margin: sp[0], Gutter: sp[1],
						Copies: n,
					}
					p, err := Build(r)
					if errors.Is(err, errors.ErrCodeSheetTooSmall) {
						continue
					}
					if err != nil {
						t.Fatalf("Build(%+v) error: %v", r, err)
					}
					checkInvariants(t, r, p)
				}
			}
		}
	}
}

func checkInvariants(t *testing.T, r Request, p Plan) {
	t.Helper()

	if p.Rows*p.Cols < p.ActualCopies {
		t.Errorf("%+v: rows*cols %d < actual %d", r, p.Rows*p.Cols, p.ActualCopies)
	}
	if p.ActualCopies > r.Copies {
		t.Errorf("%+v: actual %d > requested %d", r, p.ActualCopies, r.Copies)
	}
	if p.ActualCopies != min(r.Copies, p.Rows*p.Cols) {
		t.Errorf("%+v: actual %d != min(requested, capacity)", r, p.ActualCopies)
	}
	if len(p.Origins) != p.ActualCopies {
		t.Errorf("%+v: %d origins for %d copies", r, len(p.Origins), p.ActualCopies)
	}

	usable := image.Rect(r.Margin, r.Margin, r.PaperWidth-r.Margin, r.PaperHeight-r.Margin)
	cells := p.Cells()
	for i, c := range cells {
		if !c.In(usable) {
			t.Errorf("%+v: cell %d %v outside usable area %v", r, i, c, usable)
		}
		for j := i + 1; j < len(cells); j++ {
			if c.Overlaps(cells[j]) {
				t.Errorf("%+v: cells %d and %d overlap", r, i, j)
			}
		}
	}

	// One more column or row must not fit.
	if (p.Cols+1)*r.CellWidth+p.Cols*r.Gutter <= usable.Dx() {
		t.Errorf("%+v: cols %d not maximal", r, p.Cols)
	}
	if (p.Rows+1)*r.CellHeight+p.Rows*r.Gutter <= usable.Dy() {
		t.Errorf("%+v: rows %d not maximal", r, p.Rows)
	}
}

func TestBuildRowMajorOrder(t *testing.T) {
	p, err := Build(a4(7))
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	for i := 1; i < len(p.Origins); i++ {
		prev, cur := p.Origins[i-1], p.Origins[i]
		sameRow := cur.Y == prev.Y && cur.X > prev.X
		nextRow := cur.Y > prev.Y && cur.X == p.Origins[0].X
		if !sameRow && !nextRow {
			t.Errorf("origin %d %v does not follow %v in row-major order", i, cur, prev)
		}
	}
}

func TestBuildLeftoverPixelGoesBottomRight(t *testing.T) {
	p, err := Build(Request{PaperWidth: 103, PaperHeight: 53, CellWidth: 50, CellHeight: 50, Copies: 2})
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	left := p.Block.Min.X
	right := p.PaperWidth - p.Block.Max.X
	if left != 1 || right != 2 {
		t.Errorf("horizontal gaps = %d/%d, want 1/2", left, right)
	}
	top := p.Block.Min.Y
	bottom := p.PaperHeight - p.Block.Max.Y
	if top != 1 || bottom != 2 {
		t.Errorf("vertical gaps = %d/%d, want 1/2", top, bottom)
	}
}

func TestBuildCentersPartialRow(t *testing.T) {
	p, err := Build(a4(2))
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	if p.UsedCols != 2 || p.UsedRows != 1 {
		t.Fatalf("used = %dx%d, want 2x1", p.UsedCols, p.UsedRows)
	}
	left := p.Block.Min.X
	right := p.PaperWidth - p.Block.Max.X
	if right-left < 0 || right-left > 1 {
		t.Errorf("block not centered: left %d right %d", left, right)
	}
}

func TestBuildDeterministic(t *testing.T) {
	first, err := Build(a4(11))
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	for range 5 {
		again, _ := Build(a4(11))
		if diff := cmp.Diff(first, again); diff != "" {
			t.Fatalf("Build not deterministic (-first +again):\n%s", diff)
		}
	}
}

func TestCutLines(t *testing.T) {
	p, err := Build(a4(2))
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	lines := p.CutLines()
	if len(lines) != 2 {
		t.Fatalf("got %d cut rects, want 2", len(lines))
	}
	cells := p.Cells()
	if want := cells[0].Inset(-12); lines[0] != want {
		t.Errorf("cut rect = %v, want %v", lines[0], want)
	}
	// Adjacent cells share the line in the middle of the gutter.
	if lines[0].Max.X != lines[1].Min.X {
		t.Errorf("shared line differs: %d vs %d", lines[0].Max.X, lines[1].Min.X)
	}
}

func TestCutLinesOddGutter(t *testing.T) {
	r := a4(2)
	r.Gutter = 23
	p, err := Build(r)
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	lines := p.CutLines()
	if lines[0].Max.X != lines[1].Min.X {
		t.Errorf("odd gutter shared line differs: %d vs %d", lines[0].Max.X, lines[1].Min.X)
	}
}

func TestCutLinesStayInGap(t *testing.T) {
	for _, gutter := range []int{1, 2, 3, 23, 24} {
		r := a4(4)
		r.Gutter = gutter
		p, err := Build(r)
		if err != nil {
			t.Fatalf("gutter %d: Build() error: %v", gutter, err)
		}
		cells := p.Cells()
		for i, g := range p.CutLines() {
			c := cells[i]
			if g.Min.X >= c.Min.X || g.Min.X < c.Min.X-gutter {
				t.Errorf("gutter %d cell %d: left guide x=%d outside gap before %d", gutter, i, g.Min.X, c.Min.X)
			}
			if g.Max.X < c.Max.X || g.Max.X >= c.Max.X+gutter {
				t.Errorf("gutter %d cell %d: right guide x=%d outside gap after %d", gutter, i, g.Max.X, c.Max.X)
			}
			if g.Min.Y >= c.Min.Y || g.Max.Y < c.Max.Y || g.Max.Y >= c.Max.Y+gutter {
				t.Errorf("gutter %d cell %d: guide rows %d..%d outside gap around %v", gutter, i, g.Min.Y, g.Max.Y, c)
			}
		}
		lines := p.CutLines()
		if lines[0].Max.X != lines[1].Min.X {
			t.Errorf("gutter %d: shared line differs: %d vs %d", gutter, lines[0].Max.X, lines[1].Min.X)
		}
	}
}

func TestSummary(t *testing.T) {
	p, err := Build(a4(12))
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	want := Summary{
		Layout:          "3 × 5",
		RequestedCopies: 12,
		ActualCopies:    12,
		Capacity:        15,
		Cell:            "600x600px",
		Sheet:           "2480x3508px",
	}
	if diff := cmp.Diff(want, p.Summary()); diff != "" {
		t.Errorf("Summary mismatch (-want +got):\n%s", diff)
	}
}
