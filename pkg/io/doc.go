// Package io reads source photos and writes finished outputs for the host
// surfaces (CLI and HTTP server).
//
// The core packages only see a decoded [image.Image]; decoding, hashing and
// file naming happen here so the pipeline stays free of I/O.
//
// # Import
//
// Use [ImportImage] to read a photo from a file path, or [ReadImage] to read
// from any io.Reader:
//
//	src, err := io.ImportImage("portrait.jpg")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result, err := runner.Execute(ctx, src.Image, pipeline.Options{SourceHash: src.Hash, ...})
//
// JPEG, PNG, GIF, BMP, TIFF and WEBP inputs are accepted. EXIF orientation is
// applied while decoding, so phone photos come out upright. [Source.Hash] is
// the SHA-256 of the raw bytes and keys the pipeline cache.
//
// Decoding checks the header first and refuses images larger than
// [MaxPixels] before allocating the full bitmap.
//
// # Export
//
// Use [ExportArtifact] to write an encoded artifact to a file, or
// [WriteArtifact] to write to any io.Writer. File writes go through a
// temporary file and a rename, so a crash never leaves a truncated sheet
// behind. [OutputName] builds the default file name:
//
//	portrait_sheet_a4_6copies_1f0c2a9b.png
package io
