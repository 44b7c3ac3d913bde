package dims

import (
	"math"
	"testing"

	"github.com/matzehuels/photosheet/pkg/catalog"
	"github.com/matzehuels/photosheet/pkg/errors"
)

func TestResolveUS2x2(t *testing.T) {
	got, err := Resolve(catalog.Default(), Request{Code: "US-2x2", DPI: 300})
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	want := Target{Width: 600, Height: 600, DPI: 300}
	if got != want {
		t.Errorf("Resolve(US-2x2, 300) = %v, want %v", got, want)
	}
}

func TestResolveDefaultsDPI(t *testing.T) {
	got, err := Resolve(catalog.Default(), Request{Code: "EU"})
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	// 35mm and 45mm at 300 dpi
	if got.DPI != DefaultDPI || got.Width != 413 || got.Height != 531 {
		t.Errorf("Resolve(EU) = %v, want 413x531 @ 300", got)
	}
}

func TestResolvePaperA4(t *testing.T) {
	got, err := ResolvePaper(catalog.Default(), "A4", 300)
	if err != nil {
		t.Fatalf("ResolvePaper() error: %v", err)
	}
	if got.Width != 2480 || got.Height != 3508 {
		t.Errorf("A4 @ 300 = %v, want 2480x3508", got)
	}
}

func TestResolveUnknownCode(t *testing.T) {
	got, err := Resolve(catalog.Default(), Request{Code: "ZZ-unknown", DPI: 300})
	if !errors.Is(err, errors.ErrCodeValidation) {
		t.Fatalf("Resolve(ZZ-unknown) error = %v, want VALIDATION", err)
	}
	if got != (Target{}) {
		t.Errorf("Resolve(ZZ-unknown) returned partial output %v", got)
	}
}

func TestResolveOverrideTakesPrecedence(t *testing.T) {
	got, err := Resolve(catalog.Default(), Request{
		Code:     "ZZ-unknown",
		Override: &Override{WidthMM: 25.4, HeightMM: 50.8},
		DPI:      100,
	})
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	if got.Width != 100 || got.Height != 200 {
		t.Errorf("override = %v, want 100x200", got)
	}
}

func TestResolveRejects(t *testing.T) {
	tests := []struct {
		name string
		req  Request
	}{
		{"dpi too low", Request{Code: "EU", DPI: 71}},
		{"dpi too high", Request{Code: "EU", DPI: 1201}},
		{"negative dpi", Request{Code: "EU", DPI: -1}},
		{"zero override width", Request{Override: &Override{WidthMM: 0, HeightMM: 10}}},
		{"negative override height", Request{Override: &Override{WidthMM: 10, HeightMM: -5}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Resolve(catalog.Default(), tt.req)
			if !errors.Is(err, errors.ErrCodeValidation) {
				t.Errorf("Resolve() error = %v, want VALIDATION", err)
			}
		})
	}
}

func TestResolveMatchesFormulaForAllStandards(t *testing.T) {
	cat := catalog.Default()
	for _, std := range cat.Sizes() {
		for _, dpi := range []int{72, 96, 150, 300, 600, 1200} {
			got, err := Resolve(cat, Request{Code: std.Code, DPI: dpi})
			if err != nil {
				t.Fatalf("Resolve(%s, %d) error: %v", std.Code, dpi, err)
			}
			wantW := int(math.Round(std.WidthMM / 25.4 * float64(dpi)))
			wantH := int(math.Round(std.HeightMM / 25.4 * float64(dpi)))
			if got.Width != wantW || got.Height != wantH {
				t.Errorf("Resolve(%s, %d) = %v, want %dx%d", std.Code, dpi, got, wantW, wantH)
			}
			if got.Width < 1 || got.Height < 1 {
				t.Errorf("Resolve(%s, %d) produced non-positive size %v", std.Code, dpi, got)
			}
			again, _ := Resolve(cat, Request{Code: std.Code, DPI: dpi})
			if again != got {
				t.Errorf("Resolve(%s, %d) not deterministic: %v vs %v", std.Code, dpi, got, again)
			}
		}
	}
}

func TestMMToPx(t *testing.T) {
	tests := []struct {
		mm   float64
		dpi  int
		want int
	}{
		{5, 300, 59},
		{2, 300, 24},
		{25.4, 72, 72},
		{0.01, 72, 1},
	}

	for _, tt := range tests {
		if got := MMToPx(tt.mm, tt.dpi); got != tt.want {
			t.Errorf("MMToPx(%v, %d) = %d, want %d", tt.mm, tt.dpi, got, tt.want)
		}
	}

	if got := MMToPxAllowZero(0, 300); got != 0 {
		t.Errorf("MMToPxAllowZero(0) = %d, want 0", got)
	}
}

func TestHead(t *testing.T) {
	std, _ := catalog.Default().Size("EU")
	r, ok := Head(std, 300)
	if !ok {
		t.Fatal("EU should define head bounds")
	}
	if r.Min != 378 || r.Max != 425 {
		t.Errorf("Head(EU, 300) = %+v, want 378-425", r)
	}

	in, _ := catalog.Default().Size("IN")
	if _, ok := Head(in, 300); ok {
		t.Error("IN has no head bounds")
	}
}

func TestParseDPI(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"", 300, false},
		{"print", 300, false},
		{"Photo", 600, false},
		{"150", 150, false},
		{"600dpi", 600, false},
		{"71", 0, true},
		{"abc", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseDPI(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseDPI(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseDPI(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
