package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"time"

	"github.com/charmbracelet/log"
	"github.com/disintegration/imaging"

	"github.com/matzehuels/photosheet/pkg/cache"
	"github.com/matzehuels/photosheet/pkg/catalog"
	"github.com/matzehuels/photosheet/pkg/compose"
	"github.com/matzehuels/photosheet/pkg/dims"
	"github.com/matzehuels/photosheet/pkg/errors"
	"github.com/matzehuels/photosheet/pkg/fit"
	"github.com/matzehuels/photosheet/pkg/layout"
	"github.com/matzehuels/photosheet/pkg/observability"
	"github.com/matzehuels/photosheet/pkg/sink"
)

// Runner encapsulates pipeline execution with caching.
//
// The Runner is stateless except for the cache and logger; it doesn't store
// pipeline results. Multiple goroutines can safely use the same Runner with
// different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete resolve → fit → plan → compose → encode pipeline.
// The context is checked between stages; a cancelled run returns ctx.Err().
func (r *Runner) Execute(ctx context.Context, src image.Image, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	r.applyLogger(&opts)
	result := &Result{}

	// Stage 1: Resolve
	photoTarget, paper, paperStd, err := r.resolve(ctx, opts, result)
	if err != nil {
		return nil, err
	}

	// Stage 2: Fit
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	start := r.begin(ctx, observability.StageFit)
	photo, hit, err := r.Fit(ctx, src, photoTarget, opts)
	result.Stats.FitTime = r.end(ctx, observability.StageFit, start, err)
	if err != nil {
		return nil, fmt.Errorf("fit: %w", err)
	}
	result.Photo = photo
	result.Warnings = photo.Warnings
	result.CacheInfo.PhotoHit = hit
	r.reportWarnings(ctx, photo.Warnings)

	r.Logger.Info("fitted photo",
		"size", fmt.Sprintf("%dx%d", photoTarget.Width, photoTarget.Height),
		"policy", photo.Policy,
		"cached", hit,
		"duration", result.Stats.FitTime)

	// Stage 3: Plan
	if err := r.plan(ctx, photoTarget, paper, opts, result); err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	artifactKey := ""
	if opts.SourceHash != "" {
		artifactKey = r.Keyer.ArtifactKey(opts.SourceHash, opts.ArtifactKeyOpts(result.Plan, paperStd))
		if art, ok := r.cachedArtifact(ctx, artifactKey, opts); ok {
			result.Artifact = art
			result.CacheInfo.ArtifactHit = true
			r.Logger.Info("loaded sheet from cache", "format", art.Format, "bytes", len(art.Data))
			observability.Pipeline().OnSheet(ctx, opts.Format, result.Plan.ActualCopies, len(art.Data))
			return result, nil
		}
	}

	// Stage 4: Compose
	start = r.begin(ctx, observability.StageCompose)
	sheet, err := compose.Compose(result.Plan, photo.Image, opts.ComposeOptions()...)
	result.Stats.ComposeTime = r.end(ctx, observability.StageCompose, start, err)
	if err != nil {
		return nil, fmt.Errorf("compose: %w", err)
	}

	r.Logger.Info("composed sheet",
		"guides", opts.CutGuideStyle,
		"duration", result.Stats.ComposeTime)

	// Stage 5: Encode
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	start = r.begin(ctx, observability.StageEncode)
	art, err := sink.Encode(sheet.Image, sheet.DPI, opts.OutputFormat(),
		sink.WithJPEGQuality(opts.Quality),
		sink.WithPageSize(paperStd.WidthMM, paperStd.HeightMM),
		sink.WithTitle(opts.SheetTitle()))
	result.Stats.EncodeTime = r.end(ctx, observability.StageEncode, start, err)
	if err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}
	result.Artifact = art
	r.storeArtifact(ctx, artifactKey, art.Data)
	observability.Pipeline().OnSheet(ctx, opts.Format, result.Plan.ActualCopies, len(art.Data))

	r.Logger.Info("encoded sheet",
		"format", art.Format,
		"bytes", len(art.Data),
		"duration", result.Stats.EncodeTime)

	return result, nil
}

// Preview resolves and plans a sheet without fitting or drawing anything.
func (r *Runner) Preview(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateForPlan(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	r.applyLogger(&opts)
	result := &Result{}

	photoTarget, paper, _, err := r.resolve(ctx, opts, result)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := r.plan(ctx, photoTarget, paper, opts, result); err != nil {
		return nil, err
	}
	return result, nil
}

// FitPhoto produces the single compliant photo, encoded in the requested
// format at the target DPI. Sheet options are ignored.
func (r *Runner) FitPhoto(ctx context.Context, src image.Image, opts Options) (*Result, error) {
	if err := opts.validateFormat(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	if err := opts.ValidateForFit(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	r.applyLogger(&opts)
	result := &Result{}

	start := r.begin(ctx, observability.StageResolve)
	target, err := dims.Resolve(opts.Catalog, opts.DimsRequest())
	result.Stats.ResolveTime = r.end(ctx, observability.StageResolve, start, err)
	if err != nil {
		return nil, fmt.Errorf("resolve: %w", err)
	}
	result.Target = target

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	start = r.begin(ctx, observability.StageFit)
	photo, hit, err := r.Fit(ctx, src, target, opts)
	result.Stats.FitTime = r.end(ctx, observability.StageFit, start, err)
	if err != nil {
		return nil, fmt.Errorf("fit: %w", err)
	}
	result.Photo = photo
	result.Warnings = photo.Warnings
	result.CacheInfo.PhotoHit = hit
	r.reportWarnings(ctx, photo.Warnings)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	start = r.begin(ctx, observability.StageEncode)
	art, err := sink.Encode(photo.Image, target.DPI, opts.OutputFormat(), sink.WithJPEGQuality(opts.Quality))
	result.Stats.EncodeTime = r.end(ctx, observability.StageEncode, start, err)
	if err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}
	result.Artifact = art

	r.Logger.Info("fitted photo",
		"size", fmt.Sprintf("%dx%d", target.Width, target.Height),
		"format", art.Format,
		"duration", result.Stats.Total())
	return result, nil
}

// Fit scales src onto target, consulting the photo cache when the options
// carry a source hash. It returns whether the photo came from the cache.
func (r *Runner) Fit(ctx context.Context, src image.Image, target dims.Target, opts Options) (*fit.Photo, bool, error) {
	if err := opts.ValidateForFit(); err != nil {
		return nil, false, err
	}

	key := ""
	if opts.SourceHash != "" {
		key = r.Keyer.PhotoKey(opts.SourceHash, opts.PhotoKeyOpts(target))
		if !opts.Refresh {
			if p, ok := r.cachedPhoto(ctx, key, target, opts); ok {
				return p, true, nil
			}
		}
	}

	photo, err := fit.Fit(src, target, opts.FitOptions()...)
	if err != nil {
		return nil, false, err
	}
	if key != "" {
		r.storePhoto(ctx, key, photo)
	}
	return photo, false, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// =============================================================================
// Stages
// =============================================================================

func (r *Runner) resolve(ctx context.Context, opts Options, result *Result) (photo, paper dims.Target, std catalog.PaperStandard, err error) {
	start := r.begin(ctx, observability.StageResolve)
	defer func() {
		result.Stats.ResolveTime = r.end(ctx, observability.StageResolve, start, err)
	}()

	if photo, err = dims.Resolve(opts.Catalog, opts.DimsRequest()); err != nil {
		return photo, paper, std, fmt.Errorf("resolve: %w", err)
	}
	if std, err = opts.Catalog.Paper(opts.Paper); err != nil {
		return photo, paper, std, fmt.Errorf("resolve: %w", err)
	}
	if paper, err = dims.Physical(std.WidthMM, std.HeightMM, opts.DPI); err != nil {
		return photo, paper, std, fmt.Errorf("resolve: %w", err)
	}
	result.Target = photo
	result.Paper = paper

	r.Logger.Debug("resolved dimensions",
		"photo", photo.String(),
		"paper", std.Code,
		"sheet", fmt.Sprintf("%dx%d", paper.Width, paper.Height))
	return photo, paper, std, nil
}

func (r *Runner) plan(ctx context.Context, photo, paper dims.Target, opts Options, result *Result) error {
	start := r.begin(ctx, observability.StagePlan)
	p, err := layout.Build(layout.Request{
		PaperWidth:  paper.Width,
		PaperHeight: paper.Height,
		CellWidth:   photo.Width,
		CellHeight:  photo.Height,
		Margin:      dims.MMToPxAllowZero(*opts.MarginMM, opts.DPI),
		Gutter:      dims.MMToPxAllowZero(*opts.GutterMM, opts.DPI),
		Copies:      opts.Copies,
		DPI:         opts.DPI,
	})
	result.Stats.PlanTime = r.end(ctx, observability.StagePlan, start, err)
	if err != nil {
		return fmt.Errorf("plan: %w", err)
	}
	result.Plan = p

	s := p.Summary()
	r.Logger.Info("planned sheet",
		"layout", s.Layout,
		"copies", s.ActualCopies,
		"capacity", s.Capacity,
		"duration", result.Stats.PlanTime)
	if p.ActualCopies < p.RequestedCopies {
		r.Logger.Warn("sheet holds fewer copies than requested",
			"requested", p.RequestedCopies, "placed", p.ActualCopies)
	}
	return nil
}

func (r *Runner) begin(ctx context.Context, stage observability.Stage) time.Time {
	observability.Pipeline().OnStageStart(ctx, stage)
	return time.Now()
}

func (r *Runner) end(ctx context.Context, stage observability.Stage, start time.Time, err error) time.Duration {
	d := time.Since(start)
	observability.Pipeline().OnStageComplete(ctx, stage, d, err)
	return d
}

func (r *Runner) reportWarnings(ctx context.Context, warnings []errors.QualityWarning) {
	for _, w := range warnings {
		observability.Pipeline().OnQualityWarning(ctx, w.Kind)
		r.Logger.Warn(w.Message, "kind", w.Kind)
	}
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

// =============================================================================
// Cache Entries
// =============================================================================

// photoEntry is the cached form of a fitted photo. The image is stored as PNG.
type photoEntry struct {
	Image    []byte                  `json:"image"`
	Scale    float64                 `json:"scale"`
	Warnings []errors.QualityWarning `json:"warnings,omitempty"`
}

func (r *Runner) cachedPhoto(ctx context.Context, key string, target dims.Target, opts Options) (*fit.Photo, bool) {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil || !hit {
		observability.Cache().OnCacheMiss(ctx, "photo")
		return nil, false
	}
	var e photoEntry
	if err := json.Unmarshal(data, &e); err != nil {
		observability.Cache().OnCacheMiss(ctx, "photo")
		return nil, false
	}
	img, err := imaging.Decode(bytes.NewReader(e.Image))
	if err != nil {
		observability.Cache().OnCacheMiss(ctx, "photo")
		return nil, false
	}
	nrgba := imaging.Clone(img)
	if b := nrgba.Bounds(); b.Dx() != target.Width || b.Dy() != target.Height {
		observability.Cache().OnCacheMiss(ctx, "photo")
		return nil, false
	}
	observability.Cache().OnCacheHit(ctx, "photo")
	return &fit.Photo{
		Image:    nrgba,
		Target:   target,
		Policy:   fit.Policy(opts.FitPolicy),
		Scale:    e.Scale,
		Warnings: e.Warnings,
	}, true
}

func (r *Runner) storePhoto(ctx context.Context, key string, p *fit.Photo) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, p.Image, imaging.PNG, imaging.PNGCompressionLevel(png.BestSpeed)); err != nil {
		return
	}
	data, err := json.Marshal(photoEntry{Image: buf.Bytes(), Scale: p.Scale, Warnings: p.Warnings})
	if err != nil {
		return
	}
	if err := r.Cache.Set(ctx, key, data, cache.TTLPhoto); err != nil {
		r.Logger.Debug("cache write failed", "key", key, "error", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, "photo", len(data))
}

func (r *Runner) cachedArtifact(ctx context.Context, key string, opts Options) (*sink.Artifact, bool) {
	if opts.Refresh {
		return nil, false
	}
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil || !hit || len(data) == 0 {
		observability.Cache().OnCacheMiss(ctx, "artifact")
		return nil, false
	}
	observability.Cache().OnCacheHit(ctx, "artifact")
	f := opts.OutputFormat()
	return &sink.Artifact{
		Data:        data,
		ContentType: f.ContentType(),
		Format:      f,
		Extension:   f.Extension(),
	}, true
}

func (r *Runner) storeArtifact(ctx context.Context, key string, data []byte) {
	if key == "" {
		return
	}
	if err := r.Cache.Set(ctx, key, data, cache.TTLArtifact); err != nil {
		r.Logger.Debug("cache write failed", "key", key, "error", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, "artifact", len(data))
}
