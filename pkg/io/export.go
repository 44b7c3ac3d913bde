package io

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/matzehuels/photosheet/pkg/sink"
)

// WriteArtifact writes the artifact's bytes to w.
func WriteArtifact(art *sink.Artifact, w io.Writer) error {
	if _, err := w.Write(art.Data); err != nil {
		return fmt.Errorf("write %s: %w", art.Format, err)
	}
	return nil
}

// ExportArtifact writes the artifact to path, creating parent directories.
func ExportArtifact(art *sink.Artifact, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, ".photosheet-*")
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer os.Remove(tmp.Name())

	if err := WriteArtifact(art, tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename %s: %w", path, err)
	}
	return nil
}

var unsafeName = regexp.MustCompile(`[^a-z0-9._-]+`)

// OutputName returns "<base>_sheet_<paper>_<n>copies_<id>.<ext>" where base
// is the input file name without its extension and id is the first eight
// characters of a random UUID. ext may include the leading dot.
func OutputName(input, paper string, copies int, ext string) string {
	base := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	if base == "" || base == "." {
		base = "photo"
	}
	id := uuid.NewString()[:8]
	return fmt.Sprintf("%s_sheet_%s_%dcopies_%s.%s",
		base, slug(paper), copies, id, strings.TrimPrefix(ext, "."))
}

// PhotoName returns "<base>_<standard>.<ext>" for single fitted photos.
func PhotoName(input, standard, ext string) string {
	base := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	if base == "" || base == "." {
		base = "photo"
	}
	return fmt.Sprintf("%s_%s.%s", base, slug(standard), strings.TrimPrefix(ext, "."))
}

func slug(s string) string {
	s = unsafeName.ReplaceAllString(strings.ToLower(s), "-")
	if s = strings.Trim(s, "-"); s == "" {
		return "custom"
	}
	return s
}
