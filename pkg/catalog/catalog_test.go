package catalog

import (
	"strings"
	"testing"

	"github.com/matzehuels/photosheet/pkg/errors"
)

func TestDefaultSizes(t *testing.T) {
	cat := Default()

	tests := []struct {
		code     string
		wantCode string
		wantW    float64
		wantH    float64
	}{
		{"US-2x2", "US-2x2", 50.8, 50.8},
		{"us", "US-2x2", 50.8, 50.8},
		{"EU", "EU", 35, 45},
		{"INDIA", "IN", 35, 35},
		{"china", "CN", 33, 48},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			s, err := cat.Size(tt.code)
			if err != nil {
				t.Fatalf("Size(%q) error: %v", tt.code, err)
			}
			if s.Code != tt.wantCode || s.WidthMM != tt.wantW || s.HeightMM != tt.wantH {
				t.Errorf("Size(%q) = %+v, want %s %vx%v", tt.code, s, tt.wantCode, tt.wantW, tt.wantH)
			}
		})
	}
}

func TestDefaultPapers(t *testing.T) {
	cat := Default()

	p, err := cat.Paper("a4")
	if err != nil {
		t.Fatalf("Paper(a4) error: %v", err)
	}
	if p.WidthMM != 210 || p.HeightMM != 297 {
		t.Errorf("A4 = %vx%v, want 210x297", p.WidthMM, p.HeightMM)
	}

	if _, err := cat.Paper("4R"); err != nil {
		t.Errorf("alias 4R should resolve: %v", err)
	}
}

func TestUnknownCode(t *testing.T) {
	cat := Default()

	_, err := cat.Size("ZZ-unknown")
	if !errors.Is(err, errors.ErrCodeValidation) {
		t.Errorf("Size(ZZ-unknown) error = %v, want VALIDATION", err)
	}

	_, err = cat.Paper("B0")
	if !errors.Is(err, errors.ErrCodeValidation) {
		t.Errorf("Paper(B0) error = %v, want VALIDATION", err)
	}
}

func TestListingsAreUniqueAndSorted(t *testing.T) {
	cat := Default()

	sizes := cat.Sizes()
	if len(sizes) != 10 {
		t.Errorf("Sizes() returned %d entries, want 10", len(sizes))
	}
	for i := 1; i < len(sizes); i++ {
		if sizes[i-1].Code >= sizes[i].Code {
			t.Errorf("Sizes() not sorted at %d: %s >= %s", i, sizes[i-1].Code, sizes[i].Code)
		}
	}

	if got := len(cat.Papers()); got != 6 {
		t.Errorf("Papers() returned %d entries, want 6", got)
	}
}

func TestLoadRejectsInvalidRecords(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{
			name: "zero width",
			data: `[[size]]
code = "X"
width_mm = 0
height_mm = 10`,
		},
		{
			name: "head larger than photo",
			data: `[[size]]
code = "X"
width_mm = 10
height_mm = 10
min_head_mm = 5
max_head_mm = 12`,
		},
		{
			name: "duplicate alias",
			data: `[[paper]]
code = "P1"
width_mm = 10
height_mm = 10
aliases = ["P2"]

[[paper]]
code = "P2"
width_mm = 10
height_mm = 10`,
		},
		{
			name: "malformed toml",
			data: `[[paper]`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(strings.NewReader(tt.data))
			if !errors.Is(err, errors.ErrCodeValidation) {
				t.Errorf("Load() error = %v, want VALIDATION", err)
			}
		})
	}
}

func TestLoadCustomCatalog(t *testing.T) {
	data := `[[size]]
code = "BADGE"
width_mm = 54
height_mm = 86

[[paper]]
code = "ROLL"
width_mm = 100
height_mm = 300`

	cat, err := Load(strings.NewReader(data))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if _, err := cat.Size("badge"); err != nil {
		t.Errorf("custom size not found: %v", err)
	}
	if _, err := cat.Size("US-2x2"); err == nil {
		t.Error("custom catalog should not include defaults")
	}
}
