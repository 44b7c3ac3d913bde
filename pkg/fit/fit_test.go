package fit

import (
	"image"
	"image/color"
	"testing"

	"github.com/matzehuels/photosheet/pkg/dims"
	"github.com/matzehuels/photosheet/pkg/errors"
)

func solid(w, h int, c color.Color) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

// columns builds an image whose column x has red channel x*10.
func columns(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x * 10), G: uint8(y * 10), A: 255})
		}
	}
	return img
}

func TestCoverExactDimensions(t *testing.T) {
	target := dims.Target{Width: 600, Height: 600, DPI: 300}
	sources := []struct {
		name string
		w, h int
	}{
		{"square", 800, 800},
		{"landscape", 1200, 800},
		{"portrait", 800, 1200},
		{"extreme wide", 3000, 17},
		{"extreme tall", 13, 2900},
		{"tiny", 3, 5},
		{"odd excess", 601, 600},
	}

	for _, s := range sources {
		t.Run(s.name, func(t *testing.T) {
			p, err := Fit(solid(s.w, s.h, color.Black), target)
			if err != nil {
				t.Fatalf("Fit() error: %v", err)
			}
			w, h := p.Size()
			if w != target.Width || h != target.Height {
				t.Errorf("Fit(%dx%d) = %dx%d, want %dx%d", s.w, s.h, w, h, target.Width, target.Height)
			}
			if p.Policy != Cover {
				t.Errorf("Policy = %q, want cover", p.Policy)
			}
		})
	}
}

func TestCoverTrimsOddPixelFromRight(t *testing.T) {
	p, err := Fit(columns(5, 2), dims.Target{Width: 4, Height: 2, DPI: 300})
	if err != nil {
		t.Fatalf("Fit() error: %v", err)
	}
	for x := 0; x < 4; x++ {
		if got := p.Image.NRGBAAt(x, 0).R; got != uint8(x*10) {
			t.Errorf("column %d red = %d, want %d (leftmost columns kept)", x, got, x*10)
		}
	}
}

func TestCoverTrimsOddPixelFromBottom(t *testing.T) {
	p, err := Fit(columns(2, 5), dims.Target{Width: 2, Height: 4, DPI: 300})
	if err != nil {
		t.Fatalf("Fit() error: %v", err)
	}
	for y := 0; y < 4; y++ {
		if got := p.Image.NRGBAAt(0, y).G; got != uint8(y*10) {
			t.Errorf("row %d green = %d, want %d (top rows kept)", y, got, y*10)
		}
	}
}

func TestCoverCentersCrop(t *testing.T) {
	p, err := Fit(columns(6, 2), dims.Target{Width: 4, Height: 2, DPI: 300})
	if err != nil {
		t.Fatalf("Fit() error: %v", err)
	}
	if got := p.Image.NRGBAAt(0, 0).R; got != 10 {
		t.Errorf("first kept column red = %d, want 10", got)
	}
}

func TestContainPadsWithFill(t *testing.T) {
	red := color.NRGBA{R: 255, A: 255}
	p, err := Fit(solid(200, 100, red), dims.Target{Width: 100, Height: 100, DPI: 300}, WithPolicy(Contain))
	if err != nil {
		t.Fatalf("Fit() error: %v", err)
	}
	w, h := p.Size()
	if w != 100 || h != 100 {
		t.Fatalf("size = %dx%d, want 100x100", w, h)
	}
	if got := p.Image.NRGBAAt(50, 0); got != (color.NRGBA{255, 255, 255, 255}) {
		t.Errorf("top padding = %v, want white", got)
	}
	if got := p.Image.NRGBAAt(50, 50); got.R != 255 || got.G != 0 {
		t.Errorf("center = %v, want red", got)
	}
}

func TestContainCustomFill(t *testing.T) {
	blue := color.NRGBA{R: 70, G: 130, B: 180, A: 255}
	p, err := Fit(solid(100, 200, color.Black), dims.Target{Width: 100, Height: 100, DPI: 300},
		WithPolicy(Contain), WithFill(blue))
	if err != nil {
		t.Fatalf("Fit() error: %v", err)
	}
	if got := p.Image.NRGBAAt(0, 50); got != blue {
		t.Errorf("side padding = %v, want %v", got, blue)
	}
}

func TestStretch(t *testing.T) {
	p, err := Fit(solid(100, 10, color.Black), dims.Target{Width: 50, Height: 50, DPI: 300}, WithPolicy(Stretch))
	if err != nil {
		t.Fatalf("Fit() error: %v", err)
	}
	w, h := p.Size()
	if w != 50 || h != 50 {
		t.Errorf("size = %dx%d, want 50x50", w, h)
	}
	if p.Scale != 5 {
		t.Errorf("Scale = %v, want 5", p.Scale)
	}
}

func TestUpscaleWarning(t *testing.T) {
	target := dims.Target{Width: 600, Height: 600, DPI: 300}

	p, err := Fit(solid(100, 100, color.Black), target)
	if err != nil {
		t.Fatalf("Fit() error: %v", err)
	}
	if len(p.Warnings) != 1 || p.Warnings[0].Kind != WarnUpscale {
		t.Errorf("6x upscale warnings = %v, want one upscale warning", p.Warnings)
	}

	p, err = Fit(solid(150, 150, color.Black), target)
	if err != nil {
		t.Fatalf("Fit() error: %v", err)
	}
	if len(p.Warnings) != 0 {
		t.Errorf("4x upscale should not warn, got %v", p.Warnings)
	}

	p, err = Fit(solid(300, 300, color.Black), target, WithUpscaleLimit(1.5))
	if err != nil {
		t.Fatalf("Fit() error: %v", err)
	}
	if len(p.Warnings) != 1 {
		t.Errorf("custom limit should warn, got %v", p.Warnings)
	}
}

func TestInvalidImage(t *testing.T) {
	target := dims.Target{Width: 10, Height: 10, DPI: 300}
	tests := []struct {
		name string
		src  image.Image
	}{
		{"nil", nil},
		{"zero width", image.NewNRGBA(image.Rect(0, 0, 0, 10))},
		{"zero height", image.NewNRGBA(image.Rect(0, 0, 10, 0))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Fit(tt.src, target)
			if !errors.Is(err, errors.ErrCodeInvalidImage) {
				t.Errorf("Fit() error = %v, want INVALID_IMAGE", err)
			}
		})
	}
}

func TestSourceWithOffsetBounds(t *testing.T) {
	src := image.NewNRGBA(image.Rect(10, 20, 110, 120))
	p, err := Fit(src, dims.Target{Width: 100, Height: 100, DPI: 300})
	if err != nil {
		t.Fatalf("Fit() error: %v", err)
	}
	if b := p.Image.Bounds(); b.Min != (image.Point{}) {
		t.Errorf("bounds min = %v, want origin", b.Min)
	}
}

func TestParsePolicy(t *testing.T) {
	tests := []struct {
		in      string
		want    Policy
		wantErr bool
	}{
		{"", Cover, false},
		{"cover", Cover, false},
		{"CONTAIN", Contain, false},
		{"stretch", Stretch, false},
		{"fill", "", true},
	}

	for _, tt := range tests {
		got, err := ParsePolicy(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParsePolicy(%q) = %q, %v; want %q, wantErr %v", tt.in, got, err, tt.want, tt.wantErr)
		}
	}
}

func TestParseFilter(t *testing.T) {
	if f, err := ParseFilter(""); err != nil || f != Lanczos {
		t.Errorf("ParseFilter(\"\") = %q, %v", f, err)
	}
	if _, err := ParseFilter("bicubic"); err == nil {
		t.Error("ParseFilter(bicubic) should fail")
	}
	if _, err := Fit(solid(4, 4, color.Black), dims.Target{Width: 2, Height: 2, DPI: 300}, WithFilter("bogus")); !errors.Is(err, errors.ErrCodeValidation) {
		t.Errorf("Fit with bogus filter error = %v, want VALIDATION", err)
	}
}
