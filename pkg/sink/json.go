package sink

import (
	"encoding/json"
	"math"

	"github.com/matzehuels/photosheet/pkg/dims"
	"github.com/matzehuels/photosheet/pkg/errors"
	"github.com/matzehuels/photosheet/pkg/layout"
)

// JSONOption configures JSON rendering via [RenderPlanJSON].
type JSONOption func(*jsonRenderer)

type jsonRenderer struct {
	paper    string
	standard string
	warnings []errors.QualityWarning
}

// WithJSONPaper records the paper code in the output.
func WithJSONPaper(code string) JSONOption { return func(r *jsonRenderer) { r.paper = code } }

// WithJSONStandard records the photo standard code in the output.
func WithJSONStandard(code string) JSONOption { return func(r *jsonRenderer) { r.standard = code } }

// WithJSONWarnings includes quality warnings raised while fitting the photo.
func WithJSONWarnings(w []errors.QualityWarning) JSONOption {
	return func(r *jsonRenderer) { r.warnings = w }
}

type jsonOutput struct {
	Paper    string        `json:"paper,omitempty"`
	Standard string        `json:"standard,omitempty"`
	Layout   string        `json:"layout"`
	DPI      int           `json:"dpi,omitempty"`
	Sheet    jsonSize      `json:"sheet"`
	Cell     jsonSize      `json:"cell"`
	Margin   int           `json:"margin_px"`
	Gutter   int           `json:"gutter_px"`
	Rows     int           `json:"rows"`
	Cols     int           `json:"cols"`
	Capacity int           `json:"capacity"`
	Copies   jsonCopies    `json:"copies"`
	Cells    []jsonCell    `json:"cells"`
	Warnings []jsonWarning `json:"warnings,omitempty"`
}

type jsonSize struct {
	Width    int     `json:"width_px"`
	Height   int     `json:"height_px"`
	WidthMM  float64 `json:"width_mm,omitempty"`
	HeightMM float64 `json:"height_mm,omitempty"`
}

type jsonCopies struct {
	Requested int `json:"requested"`
	Actual    int `json:"actual"`
}

type jsonCell struct {
	Index int `json:"index"`
	Row   int `json:"row"`
	Col   int `json:"col"`
	X     int `json:"x"`
	Y     int `json:"y"`
}

type jsonWarning struct {
	Kind    string  `json:"kind"`
	Message string  `json:"message"`
	Factor  float64 `json:"factor,omitempty"`
}

// RenderPlanJSON exports a layout plan as a pretty-printed JSON document:
// grid counts, sheet and cell sizes (with millimetres when the plan carries a
// DPI) and every cell origin in placement order.
//
// It does not modify p and is safe to call concurrently.
func RenderPlanJSON(p layout.Plan, opts ...JSONOption) ([]byte, error) {
	r := jsonRenderer{}
	for _, opt := range opts {
		opt(&r)
	}

	out := jsonOutput{
		Paper:    r.paper,
		Standard: r.standard,
		Layout:   p.Summary().Layout,
		DPI:      p.DPI,
		Sheet:    size(p.PaperWidth, p.PaperHeight, p.DPI),
		Cell:     size(p.CellWidth, p.CellHeight, p.DPI),
		Margin:   p.MarginPx,
		Gutter:   p.GutterPx,
		Rows:     p.Rows,
		Cols:     p.Cols,
		Capacity: p.Capacity,
		Copies:   jsonCopies{Requested: p.RequestedCopies, Actual: p.ActualCopies},
		Cells:    buildJSONCells(p),
	}
	for _, w := range r.warnings {
		out.Warnings = append(out.Warnings, jsonWarning{Kind: w.Kind, Message: w.Message, Factor: w.Factor})
	}

	return json.MarshalIndent(out, "", "  ")
}

func size(w, h, dpi int) jsonSize {
	s := jsonSize{Width: w, Height: h}
	if dpi > 0 {
		s.WidthMM = round1(dims.PxToMM(w, dpi))
		s.HeightMM = round1(dims.PxToMM(h, dpi))
	}
	return s
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func buildJSONCells(p layout.Plan) []jsonCell {
	cells := make([]jsonCell, len(p.Origins))
	for i, o := range p.Origins {
		cells[i] = jsonCell{
			Index: i,
			Row:   i / max(1, p.UsedCols),
			Col:   i % max(1, p.UsedCols),
			X:     o.X,
			Y:     o.Y,
		}
	}
	return cells
}
