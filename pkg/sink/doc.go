// Package sink encodes composed sheets and fitted photos into output files.
//
// # Overview
//
// A "sink" turns pixels into bytes. Every encoder keeps the physical size of
// the image intact, so a 300 dpi sheet prints at the size of its paper:
//
//   - PNG: lossless, with a pHYs chunk recording the DPI
//   - JPEG: quality 95 by default, with a JFIF density header
//   - TIFF: deflate-compressed
//   - BMP and GIF: for legacy consumers
//   - PDF: a single page sized in millimetres with the image at true scale
//
// Formats are validated with [ParseFormat] before any composition happens, so
// an unsupported request fails fast with an UNSUPPORTED_FORMAT error.
//
// # Usage
//
//	art, err := sink.Encode(sheet.Image, sheet.DPI, sink.PDF,
//	    sink.WithPageSize(210, 297),
//	)
//	os.WriteFile("sheet"+art.Extension, art.Data, 0o644)
//
// [PageSize] reads the page box of a PDF back, which is how tests verify the
// physical size of the output.
//
// # JSON
//
// [RenderPlanJSON] exports a layout plan as JSON for previews and scripting.
package sink
