package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// PhotoKeyOpts are the inputs that determine a fitted photo.
type PhotoKeyOpts struct {
	Width      int    `json:"w"`
	Height     int    `json:"h"`
	DPI        int    `json:"dpi"`
	Policy     string `json:"policy"`
	Filter     string `json:"filter"`
	Background string `json:"bg"`
}

// ArtifactKeyOpts are the inputs that determine an encoded output.
type ArtifactKeyOpts struct {
	Format     string  `json:"format"`
	Standard   string  `json:"standard"`
	WidthMM    float64 `json:"w_mm,omitempty"`
	HeightMM   float64 `json:"h_mm,omitempty"`
	Paper      string  `json:"paper"`
	DPI        int     `json:"dpi"`
	MarginMM   float64 `json:"margin"`
	GutterMM   float64 `json:"gutter"`
	Copies     int     `json:"copies"`
	CutGuide   string  `json:"guide"`
	GuideColor string  `json:"guide_color,omitempty"`
	Policy     string  `json:"policy"`
	Filter     string  `json:"filter"`
	Background string  `json:"bg"`
	Quality    int     `json:"quality,omitempty"`

	// Resolved geometry. Codes alone are not enough: the same code can name
	// different sizes in different catalogs.
	CellWidth    int     `json:"cell_w"`
	CellHeight   int     `json:"cell_h"`
	PaperWidth   int     `json:"paper_w"`
	PaperHeight  int     `json:"paper_h"`
	MarginPx     int     `json:"margin_px"`
	GutterPx     int     `json:"gutter_px"`
	PageWidthMM  float64 `json:"page_w_mm"`
	PageHeightMM float64 `json:"page_h_mm"`
	Title        string  `json:"title,omitempty"`
}

// Keyer builds cache keys. Implementations must be deterministic.
type Keyer interface {
	// PhotoKey identifies a source image fitted to a target size.
	PhotoKey(sourceHash string, opts PhotoKeyOpts) string
	// ArtifactKey identifies an encoded sheet or photo.
	ArtifactKey(sourceHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer hashes every option into the key.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// PhotoKey implements Keyer.
func (DefaultKeyer) PhotoKey(sourceHash string, opts PhotoKeyOpts) string {
	return hashKey("photo", sourceHash, opts)
}

// ArtifactKey implements Keyer.
func (DefaultKeyer) ArtifactKey(sourceHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", sourceHash, opts)
}

// ScopedKeyer prefixes every key, giving tenants or environments separate
// namespaces in a shared backend.
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer wraps inner (DefaultKeyer when nil) with prefix.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// PhotoKey implements Keyer.
func (k *ScopedKeyer) PhotoKey(sourceHash string, opts PhotoKeyOpts) string {
	return k.prefix + k.inner.PhotoKey(sourceHash, opts)
}

// ArtifactKey implements Keyer.
func (k *ScopedKeyer) ArtifactKey(sourceHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(sourceHash, opts)
}

// hashKey returns prefix:sha256(json(parts)).
func hashKey(prefix string, parts ...any) string {
	data, _ := json.Marshal(parts)
	sum := sha256.Sum256(data)
	return fmt.Sprintf("%s:%s", prefix, hex.EncodeToString(sum[:]))
}

// Hash returns the hex SHA-256 of data. Hosts use it to identify source files.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
