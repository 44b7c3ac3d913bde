// Package pipeline turns a decoded photo into a print-ready sheet.
//
// The CLI and the HTTP server both run the same five stages through a
// [Runner], so defaults and caching behave identically on every surface:
//
//  1. Resolve: physical standard and paper to pixel targets at the sheet DPI
//  2. Fit: scale and crop the source onto the photo target
//  3. Plan: pack as many copies as fit inside the paper margins
//  4. Compose: stamp the copies and cut guides onto the sheet canvas
//  5. Encode: write the sheet in the requested format
//
// # Usage
//
//	runner := pipeline.NewRunner(c, nil, logger)
//	result, err := runner.Execute(ctx, src, pipeline.Options{
//	    Standard: "US-2x2",
//	    Paper:    "4x6",
//	    Copies:   6,
//	    Format:   "pdf",
//	})
//	if err != nil {
//	    return err
//	}
//	os.WriteFile("sheet.pdf", result.Artifact.Data, 0o644)
//
// [Runner.Preview] stops after the plan stage, and [Runner.FitPhoto] stops
// after fitting, for hosts that only need the single compliant photo.
package pipeline

import (
	"fmt"
	"image/color"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/photosheet/pkg/cache"
	"github.com/matzehuels/photosheet/pkg/catalog"
	"github.com/matzehuels/photosheet/pkg/compose"
	"github.com/matzehuels/photosheet/pkg/dims"
	"github.com/matzehuels/photosheet/pkg/errors"
	"github.com/matzehuels/photosheet/pkg/fit"
	"github.com/matzehuels/photosheet/pkg/layout"
	"github.com/matzehuels/photosheet/pkg/sink"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

const (
	// DefaultPaper is the paper code used when none is given.
	DefaultPaper = "A4"

	// DefaultMarginMM is the space kept clear along every paper edge.
	DefaultMarginMM = 5.0

	// DefaultGutterMM is the space between adjacent copies.
	DefaultGutterMM = 2.0

	// DefaultGuideStyle is the cut guide drawn when guides are enabled.
	DefaultGuideStyle = compose.GuideLines
)

// MarginPresets are the named margins accepted by Options.Margin.
var MarginPresets = map[string]float64{
	"small":  2.5,
	"normal": 5.0,
	"large":  7.5,
}

// Float returns a pointer to v, for the optional numeric fields of Options.
func Float(v float64) *float64 { return &v }

// Bool returns a pointer to v, for Options.CutGuide.
func Bool(v bool) *bool { return &v }

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options configures one pipeline run. It decodes directly from API requests.
// Pointer fields distinguish "unset" from an explicit zero.
type Options struct {
	// Photo options
	Standard     string  `json:"standard,omitempty"`
	WidthMM      float64 `json:"width_mm,omitempty"`  // with HeightMM, overrides Standard
	HeightMM     float64 `json:"height_mm,omitempty"` // with WidthMM, overrides Standard
	DPI          int     `json:"dpi,omitempty"`
	FitPolicy    string  `json:"fit,omitempty"`
	Filter       string  `json:"filter,omitempty"`
	Background   string  `json:"background,omitempty"`
	UpscaleLimit float64 `json:"upscale_limit,omitempty"`

	// Sheet options
	Paper         string   `json:"paper,omitempty"`
	Margin        string   `json:"margin,omitempty"` // preset name, used when MarginMM is nil
	MarginMM      *float64 `json:"margin_mm,omitempty"`
	GutterMM      *float64 `json:"gutter_mm,omitempty"`
	Copies        int      `json:"copies"`
	CutGuide      *bool    `json:"cut_guide,omitempty"`
	CutGuideStyle string   `json:"cut_guide_style,omitempty"`
	GuideColor    string   `json:"guide_color,omitempty"`

	// Output options
	Format  string `json:"format,omitempty"`
	Quality int    `json:"quality,omitempty"`
	Title   string `json:"title,omitempty"`

	// SourceHash identifies the source image for caching. Empty disables
	// caching for the run.
	SourceHash string `json:"-"`
	Refresh    bool   `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Catalog *catalog.Catalog `json:"-"`
	Logger  *log.Logger      `json:"-"`

	// Parsed forms, filled by validation.
	policy     fit.Policy
	filter     fit.Filter
	background color.NRGBA
	guideStyle compose.GuideStyle
	guideColor color.NRGBA
	format     sink.Format

	photoValidated bool
	validated      bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Target is the resolved photo size.
	Target dims.Target

	// Paper is the resolved sheet size.
	Paper dims.Target

	// Photo is the fitted photo. Nil when the photo stage was skipped.
	Photo *fit.Photo

	// Plan is the sheet layout.
	Plan layout.Plan

	// Artifact is the encoded sheet (or photo, for FitPhoto).
	Artifact *sink.Artifact

	// Warnings are non-fatal quality warnings raised while fitting.
	Warnings []errors.QualityWarning

	// Stats contains timing information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains per-stage durations.
type Stats struct {
	ResolveTime time.Duration
	FitTime     time.Duration
	PlanTime    time.Duration
	ComposeTime time.Duration
	EncodeTime  time.Duration
}

// Total returns the summed stage durations.
func (s Stats) Total() time.Duration {
	return s.ResolveTime + s.FitTime + s.PlanTime + s.ComposeTime + s.EncodeTime
}

// CacheInfo tracks cache hits for each cached stage.
type CacheInfo struct {
	PhotoHit    bool // fitted photo came from cache
	ArtifactHit bool // encoded output came from cache
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks every field and applies defaults for a full
// sheet run. The output format is checked first so an unsupported format is
// rejected before any other work. It is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.validateFormat(); err != nil {
		return err
	}
	if err := o.ValidateForFit(); err != nil {
		return err
	}
	if err := o.ValidateForPlan(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

func (o *Options) validateFormat() error {
	f, err := sink.ParseFormat(o.Format)
	if err != nil {
		return err
	}
	o.format = f
	o.Format = string(f)
	if o.Quality == 0 {
		o.Quality = sink.DefaultJPEGQuality
	}
	if o.Quality < 1 || o.Quality > 100 {
		return errors.Validation("quality must be between 1 and 100, got %d", o.Quality)
	}
	return nil
}

// ValidateForFit checks the photo options and applies their defaults.
func (o *Options) ValidateForFit() error {
	if o.photoValidated {
		return nil
	}
	o.setRuntimeDefaults()

	switch {
	case o.WidthMM != 0 || o.HeightMM != 0:
		if err := errors.ValidatePositive("width_mm", o.WidthMM); err != nil {
			return err
		}
		if err := errors.ValidatePositive("height_mm", o.HeightMM); err != nil {
			return err
		}
	case o.Standard == "":
		return errors.Validation("standard is required (or both width_mm and height_mm)")
	}

	if o.DPI == 0 {
		o.DPI = dims.DefaultDPI
	}
	if err := errors.ValidateDPI(o.DPI); err != nil {
		return err
	}

	var err error
	if o.policy, err = fit.ParsePolicy(o.FitPolicy); err != nil {
		return err
	}
	o.FitPolicy = string(o.policy)
	if o.filter, err = fit.ParseFilter(o.Filter); err != nil {
		return err
	}
	o.Filter = string(o.filter)
	if o.background, err = compose.ParseColor(o.Background); err != nil {
		return err
	}
	o.Background = compose.Hex(o.background)
	if o.UpscaleLimit == 0 {
		o.UpscaleLimit = fit.DefaultUpscaleLimit
	}
	if err := errors.ValidatePositive("upscale_limit", o.UpscaleLimit); err != nil {
		return err
	}

	o.photoValidated = true
	return nil
}

// ValidateForPlan checks the sheet options and applies their defaults.
func (o *Options) ValidateForPlan() error {
	if err := o.ValidateForFit(); err != nil {
		return err
	}
	if o.Paper == "" {
		o.Paper = DefaultPaper
	}

	if o.MarginMM == nil {
		m := DefaultMarginMM
		if o.Margin != "" {
			preset, ok := MarginPresets[strings.ToLower(o.Margin)]
			if !ok {
				return errors.Validation("unknown margin preset %q (must be small, normal or large)", o.Margin)
			}
			m = preset
		}
		o.MarginMM = Float(m)
	}
	if err := errors.ValidateNonNegative("margin_mm", *o.MarginMM); err != nil {
		return err
	}
	if o.GutterMM == nil {
		o.GutterMM = Float(DefaultGutterMM)
	}
	if err := errors.ValidateNonNegative("gutter_mm", *o.GutterMM); err != nil {
		return err
	}

	if o.Copies < 1 {
		return errors.Validation("copies must be at least 1, got %d", o.Copies)
	}

	if o.CutGuide == nil {
		o.CutGuide = Bool(true)
	}
	o.guideStyle = compose.GuideNone
	if *o.CutGuide {
		style, err := compose.ParseGuideStyle(o.CutGuideStyle)
		if err != nil {
			return err
		}
		o.guideStyle = style
	}
	o.CutGuideStyle = string(o.guideStyle)

	o.guideColor = compose.DefaultGuideColor
	if o.GuideColor != "" {
		c, err := compose.ParseColor(o.GuideColor)
		if err != nil {
			return err
		}
		o.guideColor = c
	}
	o.GuideColor = compose.Hex(o.guideColor)
	return nil
}

func (o *Options) setRuntimeDefaults() {
	if o.Catalog == nil {
		o.Catalog = catalog.Default()
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// DimsRequest returns the photo size request for the resolve stage.
func (o *Options) DimsRequest() dims.Request {
	req := dims.Request{Code: o.Standard, DPI: o.DPI}
	if o.WidthMM != 0 || o.HeightMM != 0 {
		req.Override = &dims.Override{WidthMM: o.WidthMM, HeightMM: o.HeightMM}
	}
	return req
}

// FitOptions returns the fit stage options.
func (o *Options) FitOptions() []fit.Option {
	return []fit.Option{
		fit.WithPolicy(o.policy),
		fit.WithFilter(o.filter),
		fit.WithFill(o.background),
		fit.WithUpscaleLimit(o.UpscaleLimit),
	}
}

// ComposeOptions returns the compose stage options.
func (o *Options) ComposeOptions() []compose.Option {
	return []compose.Option{
		compose.WithBackground(o.background),
		compose.WithGuides(o.guideStyle),
		compose.WithGuideColor(o.guideColor),
		compose.WithMarkLength(compose.MarkLength(o.DPI)),
	}
}

// PhotoKeyOpts returns cache key options for the fitted photo.
func (o *Options) PhotoKeyOpts(t dims.Target) cache.PhotoKeyOpts {
	return cache.PhotoKeyOpts{
		Width:      t.Width,
		Height:     t.Height,
		DPI:        t.DPI,
		Policy:     o.FitPolicy,
		Filter:     o.Filter,
		Background: o.Background,
	}
}

// ArtifactKeyOpts returns cache key options for the encoded output of plan
// printed on paper.
func (o *Options) ArtifactKeyOpts(plan layout.Plan, paper catalog.PaperStandard) cache.ArtifactKeyOpts {
	k := cache.ArtifactKeyOpts{
		CellWidth:    plan.CellWidth,
		CellHeight:   plan.CellHeight,
		PaperWidth:   plan.PaperWidth,
		PaperHeight:  plan.PaperHeight,
		MarginPx:     plan.MarginPx,
		GutterPx:     plan.GutterPx,
		PageWidthMM:  paper.WidthMM,
		PageHeightMM: paper.HeightMM,
		Title:        o.SheetTitle(),

		Format:     o.Format,
		Standard:   strings.ToUpper(o.Standard),
		WidthMM:    o.WidthMM,
		HeightMM:   o.HeightMM,
		Paper:      strings.ToUpper(o.Paper),
		DPI:        o.DPI,
		Copies:     o.Copies,
		CutGuide:   o.CutGuideStyle,
		GuideColor: o.GuideColor,
		Policy:     o.FitPolicy,
		Filter:     o.Filter,
		Background: o.Background,
	}
	if o.MarginMM != nil {
		k.MarginMM = *o.MarginMM
	}
	if o.GutterMM != nil {
		k.GutterMM = *o.GutterMM
	}
	if o.format == sink.JPEG {
		k.Quality = o.Quality
	}
	return k
}

// SheetTitle returns the document title embedded in PDF sheets.
func (o *Options) SheetTitle() string {
	if o.Title != "" {
		return o.Title
	}
	code := o.Standard
	if o.WidthMM != 0 || o.HeightMM != 0 {
		code = fmt.Sprintf("%gx%gmm", o.WidthMM, o.HeightMM)
	}
	return fmt.Sprintf("%s photos on %s", code, o.Paper)
}

// OutputFormat returns the parsed output format. Valid after
// ValidateAndSetDefaults.
func (o *Options) OutputFormat() sink.Format { return o.format }
