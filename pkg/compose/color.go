package compose

import (
	"fmt"
	"image/color"
	"sort"
	"strconv"
	"strings"

	"github.com/matzehuels/photosheet/pkg/errors"
)

// Backgrounds are the named sheet and padding colors.
var Backgrounds = map[string]color.NRGBA{
	"white":      {255, 255, 255, 255},
	"blue":       {70, 130, 180, 255},
	"red":        {220, 20, 60, 255},
	"grey":       {128, 128, 128, 255},
	"light_blue": {230, 243, 255, 255},
	"light_gray": {245, 245, 245, 255},
	"light_grey": {211, 211, 211, 255},
	"cream":      {249, 246, 240, 255},
}

// DefaultGuideColor is the cut guide color (#999999).
var DefaultGuideColor = color.NRGBA{0x99, 0x99, 0x99, 0xff}

// BackgroundNames returns the preset names in sorted order.
func BackgroundNames() []string {
	names := make([]string, 0, len(Backgrounds))
	for name := range Backgrounds {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ParseColor accepts a preset name, "#rrggbb" or "#rgb". Empty means white.
func ParseColor(s string) (color.NRGBA, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return Backgrounds["white"], nil
	}
	if c, ok := Backgrounds[strings.ReplaceAll(s, "-", "_")]; ok {
		return c, nil
	}

	hex := strings.TrimPrefix(s, "#")
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return color.NRGBA{}, errors.Validation("invalid color %q (use a preset name or #rrggbb)", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.NRGBA{}, errors.Validation("invalid color %q (use a preset name or #rrggbb)", s)
	}
	return color.NRGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}, nil
}

// Hex formats c as "#rrggbb".
func Hex(c color.Color) string {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return fmt.Sprintf("#%02x%02x%02x", n.R, n.G, n.B)
}
