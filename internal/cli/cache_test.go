package cli

import (
	"path/filepath"
	"testing"
)

func TestFileCacheFromConfig(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "cache")
	c := newTestCLI(t, "[cache]\ndir = \""+filepath.ToSlash(dir)+"\"\n")

	fc, err := c.fileCache()
	if err != nil {
		t.Fatalf("fileCache() error: %v", err)
	}
	if fc.Dir() != filepath.ToSlash(dir) && fc.Dir() != dir {
		t.Errorf("Dir() = %q, want %q", fc.Dir(), dir)
	}
}

func TestFileCacheDefaultDir(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	c := newTestCLI(t, "")

	fc, err := c.fileCache()
	if err != nil {
		t.Fatalf("fileCache() error: %v", err)
	}
	if filepath.Base(fc.Dir()) != appName {
		t.Errorf("Dir() = %q, should end with %q", fc.Dir(), appName)
	}
}

func TestFileCacheRejectsRemoteBackend(t *testing.T) {
	c := newTestCLI(t, "[cache]\nbackend = \"redis\"\n")
	if _, err := c.fileCache(); err == nil {
		t.Error("fileCache() should refuse to manage a redis backend")
	}
}
