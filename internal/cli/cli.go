// Package cli implements the photosheet command-line interface.
package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/photosheet/pkg/cache"
	"github.com/matzehuels/photosheet/pkg/catalog"
	"github.com/matzehuels/photosheet/pkg/config"
	"github.com/matzehuels/photosheet/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "photosheet"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// Persistent flags.
	configPath  string
	catalogPath string

	cfg *config.Config
	cat *catalog.Catalog
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// =============================================================================
// Configuration
// =============================================================================

// config loads the configuration once per process.
func (c *CLI) config() (*config.Config, error) {
	if c.cfg != nil {
		return c.cfg, nil
	}
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return nil, err
	}
	c.cfg = cfg
	return cfg, nil
}

// catalog returns the catalog named by --catalog, the config file, or the
// built-in one, in that order.
func (c *CLI) catalog() (*catalog.Catalog, error) {
	if c.cat != nil {
		return c.cat, nil
	}
	path := c.catalogPath
	if path == "" {
		cfg, err := c.config()
		if err != nil {
			return nil, err
		}
		path = cfg.Catalog
	}
	if path == "" {
		c.cat = catalog.Default()
		return c.cat, nil
	}
	cat, err := catalog.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load catalog %s: %w", path, err)
	}
	c.Logger.Debug("loaded catalog", "path", path, "sizes", len(cat.Sizes()), "papers", len(cat.Papers()))
	c.cat = cat
	return cat, nil
}

// baseOptions returns pipeline options seeded from the config's sheet
// defaults, with the CLI's catalog and logger attached.
func (c *CLI) baseOptions() (pipeline.Options, error) {
	cfg, err := c.config()
	if err != nil {
		return pipeline.Options{}, err
	}
	cat, err := c.catalog()
	if err != nil {
		return pipeline.Options{}, err
	}
	opts := cfg.Sheet.Options()
	opts.Catalog = cat
	opts.Logger = c.Logger
	return opts, nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	ch, err := c.newCache(ctx, noCache)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(ch, nil, c.Logger), nil
}

func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	cfg, err := c.config()
	if err != nil {
		return nil, err
	}
	ch, err := cache.Open(ctx, cfg.Cache.CacheOptions())
	if err != nil {
		// A missing cache only costs speed.
		c.Logger.Warn("cache unavailable, continuing without it", "backend", cfg.Cache.Backend, "error", err)
		return cache.NewNullCache(), nil
	}
	return ch, nil
}
