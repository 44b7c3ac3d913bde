// Package catalog holds the registry of identity photo sizes and print paper
// sizes.
//
// A [Catalog] is built once from TOML data (the embedded default, or a file
// supplied at startup), validated record by record, and never mutated
// afterwards. It is safe for any number of concurrent readers.
//
//	cat := catalog.Default()
//	std, err := cat.Size("US-2x2")
//	paper, err := cat.Paper("A4")
//
// Lookups are case-insensitive and resolve aliases ("US" → "US-2x2").
package catalog

import (
	_ "embed"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/photosheet/pkg/errors"
)

//go:embed default.toml
var defaultTOML string

// SizeStandard is the physical specification for a compliant identity photo.
type SizeStandard struct {
	Code      string   `toml:"code" json:"code"`
	Name      string   `toml:"name" json:"name"`
	WidthMM   float64  `toml:"width_mm" json:"width_mm"`
	HeightMM  float64  `toml:"height_mm" json:"height_mm"`
	MinHeadMM float64  `toml:"min_head_mm" json:"min_head_mm,omitempty"`
	MaxHeadMM float64  `toml:"max_head_mm" json:"max_head_mm,omitempty"`
	Aliases   []string `toml:"aliases" json:"aliases,omitempty"`
}

// HasHeadBounds reports whether the standard constrains head height.
func (s SizeStandard) HasHeadBounds() bool {
	return s.MinHeadMM > 0 && s.MaxHeadMM > 0
}

// Validate checks the record's invariants.
func (s SizeStandard) Validate() error {
	if err := errors.ValidateCode(s.Code); err != nil {
		return err
	}
	if err := errors.ValidatePositive(s.Code+".width_mm", s.WidthMM); err != nil {
		return err
	}
	if err := errors.ValidatePositive(s.Code+".height_mm", s.HeightMM); err != nil {
		return err
	}
	if err := errors.ValidateNonNegative(s.Code+".min_head_mm", s.MinHeadMM); err != nil {
		return err
	}
	if err := errors.ValidateNonNegative(s.Code+".max_head_mm", s.MaxHeadMM); err != nil {
		return err
	}
	if s.HasHeadBounds() && (s.MinHeadMM > s.MaxHeadMM || s.MaxHeadMM > s.HeightMM) {
		return errors.Validation("%s: head bounds %.1f-%.1f mm do not fit height %.1f mm",
			s.Code, s.MinHeadMM, s.MaxHeadMM, s.HeightMM)
	}
	return nil
}

// PaperStandard is the physical specification for a print sheet.
type PaperStandard struct {
	Code     string   `toml:"code" json:"code"`
	Name     string   `toml:"name" json:"name"`
	WidthMM  float64  `toml:"width_mm" json:"width_mm"`
	HeightMM float64  `toml:"height_mm" json:"height_mm"`
	Aliases  []string `toml:"aliases" json:"aliases,omitempty"`
}

// Validate checks the record's invariants.
func (p PaperStandard) Validate() error {
	if err := errors.ValidateCode(p.Code); err != nil {
		return err
	}
	if err := errors.ValidatePositive(p.Code+".width_mm", p.WidthMM); err != nil {
		return err
	}
	return errors.ValidatePositive(p.Code+".height_mm", p.HeightMM)
}

// file is the on-disk TOML layout.
type file struct {
	Sizes  []SizeStandard  `toml:"size"`
	Papers []PaperStandard `toml:"paper"`
}

// Catalog is an immutable, validated registry of sizes and papers.
type Catalog struct {
	sizes  map[string]SizeStandard
	papers map[string]PaperStandard
}

// Load parses TOML catalog data from r.
func Load(r io.Reader) (*Catalog, error) {
	var f file
	if _, err := toml.NewDecoder(r).Decode(&f); err != nil {
		return nil, errors.Wrap(errors.ErrCodeValidation, err, "parse catalog")
	}
	return build(f)
}

// LoadFile parses a TOML catalog file.
func LoadFile(path string) (*Catalog, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNotFound, err, "open catalog %s", path)
	}
	defer fh.Close()
	return Load(fh)
}

var loadDefault = sync.OnceValues(func() (*Catalog, error) {
	return Load(strings.NewReader(defaultTOML))
})

// Default returns the built-in catalog. It is parsed on first use and shared
// afterwards.
func Default() *Catalog {
	c, err := loadDefault()
	if err != nil {
		panic(fmt.Sprintf("catalog: embedded default is invalid: %v", err))
	}
	return c
}

func build(f file) (*Catalog, error) {
	c := &Catalog{
		sizes:  make(map[string]SizeStandard),
		papers: make(map[string]PaperStandard),
	}
	for _, s := range f.Sizes {
		if err := s.Validate(); err != nil {
			return nil, err
		}
		for _, k := range keys(s.Code, s.Aliases) {
			if _, dup := c.sizes[k]; dup {
				return nil, errors.Validation("duplicate size code or alias %q", k)
			}
			c.sizes[k] = s
		}
	}
	for _, p := range f.Papers {
		if err := p.Validate(); err != nil {
			return nil, err
		}
		for _, k := range keys(p.Code, p.Aliases) {
			if _, dup := c.papers[k]; dup {
				return nil, errors.Validation("duplicate paper code or alias %q", k)
			}
			c.papers[k] = p
		}
	}
	return c, nil
}

func keys(code string, aliases []string) []string {
	out := make([]string, 0, len(aliases)+1)
	out = append(out, normalize(code))
	for _, a := range aliases {
		out = append(out, normalize(a))
	}
	return out
}

func normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Size looks up a size standard by code or alias.
func (c *Catalog) Size(code string) (SizeStandard, error) {
	s, ok := c.sizes[normalize(code)]
	if !ok {
		return SizeStandard{}, errors.Validation("unknown size standard %q", code)
	}
	return s, nil
}

// Paper looks up a paper standard by code or alias.
func (c *Catalog) Paper(code string) (PaperStandard, error) {
	p, ok := c.papers[normalize(code)]
	if !ok {
		return PaperStandard{}, errors.Validation("unknown paper standard %q", code)
	}
	return p, nil
}

// Sizes returns every size standard once, sorted by code.
func (c *Catalog) Sizes() []SizeStandard {
	seen := make(map[string]bool)
	var out []SizeStandard
	for _, s := range c.sizes {
		if !seen[s.Code] {
			seen[s.Code] = true
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

// Papers returns every paper standard once, sorted by code.
func (c *Catalog) Papers() []PaperStandard {
	seen := make(map[string]bool)
	var out []PaperStandard
	for _, p := range c.papers {
		if !seen[p.Code] {
			seen[p.Code] = true
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}
