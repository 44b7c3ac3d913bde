package cli

import (
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/matzehuels/photosheet/pkg/dims"
	"github.com/matzehuels/photosheet/pkg/errors"
	"github.com/matzehuels/photosheet/pkg/pipeline"
)

// photoFlags are the flags shared by every command that sizes a photo.
type photoFlags struct {
	standard   string
	widthMM    float64
	heightMM   float64
	dpi        string
	fit        string
	filter     string
	background string
}

// sheetFlags are the flags for commands that lay out a sheet.
type sheetFlags struct {
	paper  string
	margin string // preset name or millimetres
	gutter float64
	copies int
	guides string // lines, corners or none
	color  string
}

// outputFlags choose how a result is encoded and where it goes.
type outputFlags struct {
	output  string
	format  string
	quality int
	noCache bool
	refresh bool
}

func (f *photoFlags) register(fs *pflag.FlagSet) {
	fs.StringVarP(&f.standard, "standard", "s", "", "photo size standard, e.g. US-2x2, EU, IN (see 'photosheet catalog')")
	fs.Float64Var(&f.widthMM, "width-mm", 0, "custom photo width in mm (with --height-mm, overrides --standard)")
	fs.Float64Var(&f.heightMM, "height-mm", 0, "custom photo height in mm")
	fs.StringVarP(&f.dpi, "dpi", "d", "", "resolution: integer or screen, draft, print, photo (default 300)")
	fs.StringVar(&f.fit, "fit", "", "fit policy: cover (default), contain, stretch")
	fs.StringVar(&f.filter, "filter", "", "resampling filter: lanczos (default), catmullrom, linear, nearest")
	fs.StringVarP(&f.background, "background", "b", "", "background color: preset name or #rrggbb (default white)")
}

func (f *sheetFlags) register(fs *pflag.FlagSet) {
	fs.StringVarP(&f.paper, "paper", "p", "", "paper standard, e.g. A4, LETTER, 4x6 (default A4)")
	fs.StringVarP(&f.margin, "margin", "m", "", "paper margin: small, normal, large, or millimetres (default 5)")
	fs.Float64VarP(&f.gutter, "gutter", "g", pipeline.DefaultGutterMM, "space between copies in mm")
	fs.IntVarP(&f.copies, "copies", "n", 0, "number of copies to place (default from config)")
	fs.StringVar(&f.guides, "guides", "", "cut guides: lines (default), corners, none")
	fs.StringVar(&f.color, "guide-color", "", "cut guide color (default #999999)")
}

func (f *outputFlags) register(fs *pflag.FlagSet, formats string) {
	fs.StringVarP(&f.output, "output", "o", "", "output file (default: derived from the input name)")
	fs.StringVarP(&f.format, "format", "f", "", "output format: "+formats)
	fs.IntVarP(&f.quality, "quality", "q", 0, "JPEG quality 1-100 (default 95)")
	fs.BoolVar(&f.noCache, "no-cache", false, "disable caching")
	fs.BoolVar(&f.refresh, "refresh", false, "ignore cached results and recompute")
}

// apply copies every flag the user set onto opts; unset flags keep the
// config defaults already in opts.
func (f *photoFlags) apply(cmd *cobra.Command, opts *pipeline.Options) error {
	fs := cmd.Flags()
	if fs.Changed("standard") {
		opts.Standard = f.standard
	}
	if fs.Changed("width-mm") || fs.Changed("height-mm") {
		opts.WidthMM, opts.HeightMM = f.widthMM, f.heightMM
	}
	if fs.Changed("dpi") {
		dpi, err := dims.ParseDPI(f.dpi)
		if err != nil {
			return err
		}
		opts.DPI = dpi
	}
	if fs.Changed("fit") {
		opts.FitPolicy = f.fit
	}
	if fs.Changed("filter") {
		opts.Filter = f.filter
	}
	if fs.Changed("background") {
		opts.Background = f.background
	}
	return nil
}

func (f *sheetFlags) apply(cmd *cobra.Command, opts *pipeline.Options) error {
	fs := cmd.Flags()
	if fs.Changed("paper") {
		opts.Paper = f.paper
	}
	if fs.Changed("margin") {
		if err := applyMargin(f.margin, opts); err != nil {
			return err
		}
	}
	if fs.Changed("gutter") {
		opts.GutterMM = pipeline.Float(f.gutter)
	}
	if fs.Changed("copies") {
		opts.Copies = f.copies
	}
	if fs.Changed("guides") {
		if strings.EqualFold(f.guides, "none") {
			opts.CutGuide = pipeline.Bool(false)
		} else {
			opts.CutGuide = pipeline.Bool(true)
			opts.CutGuideStyle = f.guides
		}
	}
	if fs.Changed("guide-color") {
		opts.GuideColor = f.color
	}
	return nil
}

func (f *outputFlags) apply(cmd *cobra.Command, opts *pipeline.Options) {
	fs := cmd.Flags()
	if fs.Changed("format") {
		opts.Format = f.format
	}
	if fs.Changed("quality") {
		opts.Quality = f.quality
	}
	opts.Refresh = f.refresh
}

// applyMargin accepts a preset name or a number of millimetres.
func applyMargin(s string, opts *pipeline.Options) error {
	s = strings.TrimSpace(strings.TrimSuffix(strings.ToLower(s), "mm"))
	if _, ok := pipeline.MarginPresets[s]; ok {
		opts.Margin = s
		opts.MarginMM = nil
		return nil
	}
	mm, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return errors.Validation("invalid margin %q (use small, normal, large or a number of mm)", s)
	}
	opts.MarginMM = pipeline.Float(mm)
	return nil
}
