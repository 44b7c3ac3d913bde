package cli

import (
	"testing"

	"github.com/spf13/cobra"

	"github.com/matzehuels/photosheet/pkg/errors"
	"github.com/matzehuels/photosheet/pkg/pipeline"
)

func TestApplyMargin(t *testing.T) {
	tests := []struct {
		in       string
		preset   string
		mm       float64
		explicit bool
	}{
		{"small", "small", 0, false},
		{"LARGE", "large", 0, false},
		{"0", "", 0, true},
		{"3.5", "", 3.5, true},
		{"4mm", "", 4, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			var opts pipeline.Options
			if err := applyMargin(tt.in, &opts); err != nil {
				t.Fatalf("applyMargin(%q) error: %v", tt.in, err)
			}
			if opts.Margin != tt.preset {
				t.Errorf("Margin = %q, want %q", opts.Margin, tt.preset)
			}
			if tt.explicit {
				if opts.MarginMM == nil || *opts.MarginMM != tt.mm {
					t.Errorf("MarginMM = %v, want %v", opts.MarginMM, tt.mm)
				}
			} else if opts.MarginMM != nil {
				t.Errorf("preset should clear MarginMM, got %v", *opts.MarginMM)
			}
		})
	}

	var opts pipeline.Options
	if err := applyMargin("wide", &opts); !errors.Is(err, errors.ErrCodeValidation) {
		t.Errorf("applyMargin(wide) error = %v, want VALIDATION", err)
	}
}

// parseFlags registers the flag groups on a throwaway command and parses args.
func parseFlags(t *testing.T, args ...string) (*cobra.Command, *photoFlags, *sheetFlags, *outputFlags) {
	t.Helper()
	var (
		pf photoFlags
		sf sheetFlags
		of outputFlags
	)
	cmd := &cobra.Command{Use: "test"}
	pf.register(cmd.Flags())
	sf.register(cmd.Flags())
	of.register(cmd.Flags(), "png")
	if err := cmd.ParseFlags(args); err != nil {
		t.Fatalf("ParseFlags(%v) error: %v", args, err)
	}
	return cmd, &pf, &sf, &of
}

func TestApplyOnlyChangedFlags(t *testing.T) {
	cmd, pf, sf, of := parseFlags(t, "-s", "EU", "-n", "4", "--dpi", "print", "--guides", "none")

	opts := pipeline.Options{
		Standard: "US-2x2",
		Paper:    "LETTER",
		Copies:   6,
		GutterMM: pipeline.Float(3),
		Format:   "pdf",
	}
	if err := pf.apply(cmd, &opts); err != nil {
		t.Fatal(err)
	}
	if err := sf.apply(cmd, &opts); err != nil {
		t.Fatal(err)
	}
	of.apply(cmd, &opts)

	if opts.Standard != "EU" || opts.Copies != 4 || opts.DPI != 300 {
		t.Errorf("changed flags not applied: %s/%d/%d", opts.Standard, opts.Copies, opts.DPI)
	}
	if opts.Paper != "LETTER" || *opts.GutterMM != 3 || opts.Format != "pdf" {
		t.Errorf("unset flags overrode config: %s/%v/%s", opts.Paper, *opts.GutterMM, opts.Format)
	}
	if opts.CutGuide == nil || *opts.CutGuide {
		t.Error("--guides none should disable cut guides")
	}
}

func TestApplyCustomSize(t *testing.T) {
	cmd, pf, _, _ := parseFlags(t, "--width-mm", "40", "--height-mm", "50")
	opts := pipeline.Options{Standard: "US-2x2"}
	if err := pf.apply(cmd, &opts); err != nil {
		t.Fatal(err)
	}
	if opts.WidthMM != 40 || opts.HeightMM != 50 {
		t.Errorf("custom size = %vx%v", opts.WidthMM, opts.HeightMM)
	}
}

func TestApplyBadDPI(t *testing.T) {
	cmd, pf, _, _ := parseFlags(t, "--dpi", "lots")
	var opts pipeline.Options
	if err := pf.apply(cmd, &opts); !errors.Is(err, errors.ErrCodeValidation) {
		t.Errorf("apply() error = %v, want VALIDATION", err)
	}
}
