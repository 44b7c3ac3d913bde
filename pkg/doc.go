// Package pkg provides the core libraries for Photosheet.
//
// # Overview
//
// Photosheet turns a portrait into identity photos that meet a country's
// passport or visa size standard, and packs as many copies as fit onto a
// sheet of paper ready to print at true physical scale. The pkg directory is
// organized into three areas:
//
//  1. Geometry - catalog lookups and millimetre to pixel conversion
//  2. Imaging - fitting, sheet layout, drawing and encoding
//  3. Infrastructure - pipeline orchestration, caching, config, metrics
//
// # Architecture
//
// The data flow through a sheet run:
//
//	Size standard + paper + DPI
//	         ↓
//	    [dims] package (resolve pixel sizes)
//	         ↓
//	    [fit] package (scale and crop the photo)
//	         ↓
//	    [layout] package (grid plan: rows, columns, origins)
//	         ↓
//	    [compose] package (draw copies and cut guides)
//	         ↓
//	    [sink] package (PNG/JPEG/TIFF/BMP/GIF/PDF with DPI metadata)
//
// # Quick Start
//
//	cat := catalog.Default()
//	photo, _ := dims.Resolve(cat, dims.Request{Code: "US-2x2", DPI: 300})
//	paper, _ := dims.ResolvePaper(cat, "A4", 300)
//
//	fitted, _ := fit.Fit(src, photo)
//	plan, _ := layout.Build(layout.Request{
//	    PaperWidth: paper.Width, PaperHeight: paper.Height,
//	    CellWidth: photo.Width, CellHeight: photo.Height,
//	    Margin: dims.MMToPxAllowZero(5, 300), Gutter: dims.MMToPxAllowZero(2, 300),
//	    Copies: 6, DPI: 300,
//	})
//	sheet, _ := compose.Compose(plan, fitted.Image, compose.WithGuides(compose.GuideLines))
//	art, _ := sink.Encode(sheet.Image, 300, sink.PDF, sink.WithPageSize(210, 297))
//
// Most callers use [pipeline.Runner] instead, which runs the same stages with
// validation, caching and metrics hooks.
//
// # Main Packages
//
// ## Geometry
//
// [catalog] - Immutable registry of size standards and paper sizes, loaded
// from embedded or user-supplied TOML.
//
// [dims] - Millimetre and pixel conversion, standard resolution, head-height
// ranges and DPI presets.
//
// ## Imaging
//
// [fit] - Fits a source image to an exact pixel size (cover, contain or
// stretch) and reports upscale warnings.
//
// [layout] - Pure grid planning: capacity, centering and cell origins.
//
// [compose] - Draws a plan onto a canvas with optional cut guides.
//
// [sink] - Encoders with embedded physical density, plus the JSON plan export.
//
// ## Infrastructure
//
// [pipeline] - The resolve → fit → plan → compose → encode pipeline used by
// the CLI and the HTTP API. Ensures consistent behavior across entry points.
//
// [cache] - File, Redis and MongoDB caches for fitted photos and artifacts.
//
// [config] - TOML config file with environment overrides.
//
// [observability] - Metric hooks; [observability/prom] backs them with
// Prometheus.
//
// [errors] - Structured errors with codes that hosts map to exit or HTTP
// status codes.
//
// [io] - Reading source photos and writing artifacts.
//
// # Testing
//
//	go test ./pkg/...                    # All tests
//	go test ./pkg/layout/...             # Specific package
//
// [catalog]: https://pkg.go.dev/github.com/matzehuels/photosheet/pkg/catalog
// [dims]: https://pkg.go.dev/github.com/matzehuels/photosheet/pkg/dims
// [fit]: https://pkg.go.dev/github.com/matzehuels/photosheet/pkg/fit
// [layout]: https://pkg.go.dev/github.com/matzehuels/photosheet/pkg/layout
// [compose]: https://pkg.go.dev/github.com/matzehuels/photosheet/pkg/compose
// [sink]: https://pkg.go.dev/github.com/matzehuels/photosheet/pkg/sink
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/photosheet/pkg/pipeline
// [pipeline.Runner]: https://pkg.go.dev/github.com/matzehuels/photosheet/pkg/pipeline#Runner
// [cache]: https://pkg.go.dev/github.com/matzehuels/photosheet/pkg/cache
// [config]: https://pkg.go.dev/github.com/matzehuels/photosheet/pkg/config
// [observability]: https://pkg.go.dev/github.com/matzehuels/photosheet/pkg/observability
// [observability/prom]: https://pkg.go.dev/github.com/matzehuels/photosheet/pkg/observability/prom
// [errors]: https://pkg.go.dev/github.com/matzehuels/photosheet/pkg/errors
// [io]: https://pkg.go.dev/github.com/matzehuels/photosheet/pkg/io
package pkg
