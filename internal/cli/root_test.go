package cli

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
)

func newTestCLI(t *testing.T, config string) *CLI {
	t.Helper()
	c := New(io.Discard, log.InfoLevel)
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(config), 0o644); err != nil {
		t.Fatal(err)
	}
	c.configPath = path
	return c
}

func TestRootCommandSubcommands(t *testing.T) {
	root := New(io.Discard, log.InfoLevel).RootCommand()

	want := []string{"resolve", "fit", "plan", "sheet", "catalog", "cache", "serve", "completion"}
	for _, name := range want {
		cmd, _, err := root.Find([]string{name})
		if err != nil || cmd == root {
			t.Errorf("subcommand %q not registered", name)
		}
	}
	for _, flag := range []string{"config", "catalog"} {
		if root.PersistentFlags().Lookup(flag) == nil {
			t.Errorf("missing persistent flag --%s", flag)
		}
	}
}

func TestBaseOptionsFromConfig(t *testing.T) {
	c := newTestCLI(t, `
[sheet]
standard = "EU"
paper = "LETTER"
copies = 8
`)
	opts, err := c.baseOptions()
	if err != nil {
		t.Fatalf("baseOptions() error: %v", err)
	}
	if opts.Standard != "EU" || opts.Paper != "LETTER" || opts.Copies != 8 {
		t.Errorf("options = %s/%s/%d", opts.Standard, opts.Paper, opts.Copies)
	}
	if opts.Catalog == nil || opts.Logger != c.Logger {
		t.Error("baseOptions should attach the catalog and logger")
	}
}

func TestCatalogPrecedence(t *testing.T) {
	custom := filepath.Join(t.TempDir(), "catalog.toml")
	if err := os.WriteFile(custom, []byte(`
[[size]]
code = "TEST"
name = "Test size"
width_mm = 30
height_mm = 40

[[paper]]
code = "CARD"
name = "Card"
width_mm = 100
height_mm = 150
`), 0o644); err != nil {
		t.Fatal(err)
	}

	c := newTestCLI(t, "")
	cat, err := c.catalog()
	if err != nil {
		t.Fatalf("catalog() error: %v", err)
	}
	if _, err := cat.Size("US-2x2"); err != nil {
		t.Errorf("built-in catalog should be the default: %v", err)
	}

	c = newTestCLI(t, "")
	c.catalogPath = custom
	cat, err = c.catalog()
	if err != nil {
		t.Fatalf("catalog() error: %v", err)
	}
	if _, err := cat.Size("TEST"); err != nil {
		t.Errorf("--catalog should replace the built-in catalog: %v", err)
	}

	c = newTestCLI(t, "")
	c.catalogPath = filepath.Join(t.TempDir(), "missing.toml")
	if _, err := c.catalog(); err == nil {
		t.Error("missing catalog file should fail")
	}
}

func TestNewCacheFallsBack(t *testing.T) {
	c := newTestCLI(t, `
[cache]
backend = "memcached"
`)
	ch, err := c.newCache(t.Context(), false)
	if err != nil {
		t.Fatalf("newCache() error: %v", err)
	}
	if ch == nil {
		t.Fatal("newCache() returned nil")
	}
	if _, hit, _ := ch.Get(t.Context(), "k"); hit {
		t.Error("fallback cache should always miss")
	}
}
