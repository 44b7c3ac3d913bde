// Package config loads application settings for the CLI and the server.
//
// Settings come from, in increasing precedence: built-in defaults, the TOML
// file at $XDG_CONFIG_HOME/photosheet/config.toml (or an explicit path), and
// PHOTOSHEET_* environment variables. Nested keys map to environment names by
// replacing dots with underscores, so cache.redis_url is read from
// PHOTOSHEET_CACHE_REDIS_URL.
package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/matzehuels/photosheet/pkg/cache"
	perrors "github.com/matzehuels/photosheet/pkg/errors"
	"github.com/matzehuels/photosheet/pkg/pipeline"
)

const (
	appName   = "photosheet"
	envPrefix = "PHOTOSHEET"
)

// Config is the full application configuration.
type Config struct {
	// Catalog is an optional TOML file replacing the built-in catalog.
	Catalog string       `mapstructure:"catalog"`
	Cache   CacheConfig  `mapstructure:"cache"`
	Server  ServerConfig `mapstructure:"server"`
	Sheet   SheetConfig  `mapstructure:"sheet"`
}

// CacheConfig selects the cache backend.
type CacheConfig struct {
	Backend       string `mapstructure:"backend"`
	Dir           string `mapstructure:"dir"`
	RedisURL      string `mapstructure:"redis_url"`
	MongoURI      string `mapstructure:"mongo_uri"`
	MongoDatabase string `mapstructure:"mongo_database"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr         string        `mapstructure:"addr"`
	MaxUploadMB  int64         `mapstructure:"max_upload_mb"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Metrics      bool          `mapstructure:"metrics"`
}

// SheetConfig holds the defaults applied to every sheet request.
type SheetConfig struct {
	Standard      string  `mapstructure:"standard"`
	Paper         string  `mapstructure:"paper"`
	DPI           int     `mapstructure:"dpi"`
	MarginMM      float64 `mapstructure:"margin_mm"`
	GutterMM      float64 `mapstructure:"gutter_mm"`
	Copies        int     `mapstructure:"copies"`
	CutGuide      bool    `mapstructure:"cut_guide"`
	CutGuideStyle string  `mapstructure:"cut_guide_style"`
	Fit           string  `mapstructure:"fit"`
	Background    string  `mapstructure:"background"`
	Format        string  `mapstructure:"format"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("catalog", "")

	v.SetDefault("cache.backend", cache.BackendFile)
	v.SetDefault("cache.dir", "")
	v.SetDefault("cache.redis_url", "redis://localhost:6379/0")
	v.SetDefault("cache.mongo_uri", "mongodb://localhost:27017")
	v.SetDefault("cache.mongo_database", appName)

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.max_upload_mb", 20)
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 2*time.Minute)
	v.SetDefault("server.metrics", true)

	v.SetDefault("sheet.standard", "US-2x2")
	v.SetDefault("sheet.paper", pipeline.DefaultPaper)
	v.SetDefault("sheet.dpi", 300)
	v.SetDefault("sheet.margin_mm", pipeline.DefaultMarginMM)
	v.SetDefault("sheet.gutter_mm", pipeline.DefaultGutterMM)
	v.SetDefault("sheet.copies", 6)
	v.SetDefault("sheet.cut_guide", true)
	v.SetDefault("sheet.cut_guide_style", string(pipeline.DefaultGuideStyle))
	v.SetDefault("sheet.fit", "cover")
	v.SetDefault("sheet.background", "white")
	v.SetDefault("sheet.format", "png")
}

// Load reads the configuration. An empty path searches the default config
// directory and tolerates a missing file; an explicit path must exist.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetConfigType("toml")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		if dir, err := Dir(); err == nil {
			v.AddConfigPath(dir)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, perrors.Wrap(perrors.ErrCodeInvalidInput, err, "read config")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, perrors.Wrap(perrors.ErrCodeInvalidInput, err, "decode config")
	}
	return &cfg, nil
}

// Dir returns the configuration directory, honouring XDG_CONFIG_HOME.
func Dir() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, appName), nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, appName), nil
}

// CacheOptions converts the cache section for cache.Open.
func (c CacheConfig) CacheOptions() cache.Config {
	return cache.Config{
		Backend:       c.Backend,
		Dir:           c.Dir,
		RedisURL:      c.RedisURL,
		MongoURI:      c.MongoURI,
		MongoDatabase: c.MongoDatabase,
	}
}

// Options returns pipeline options seeded with the sheet defaults. Callers
// override individual fields from flags or request parameters.
func (s SheetConfig) Options() pipeline.Options {
	return pipeline.Options{
		Standard:      s.Standard,
		Paper:         s.Paper,
		DPI:           s.DPI,
		MarginMM:      pipeline.Float(s.MarginMM),
		GutterMM:      pipeline.Float(s.GutterMM),
		Copies:        s.Copies,
		CutGuide:      pipeline.Bool(s.CutGuide),
		CutGuideStyle: s.CutGuideStyle,
		FitPolicy:     s.Fit,
		Background:    s.Background,
		Format:        s.Format,
	}
}

// MaxUploadBytes returns the upload limit in bytes.
func (s ServerConfig) MaxUploadBytes() int64 {
	return s.MaxUploadMB << 20
}
