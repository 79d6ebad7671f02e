package raster

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

// The named colors the editor UI offers. Anything else must be 6-digit hex.
var namedColors = map[string]color.RGBA{
	"white":   {255, 255, 255, 255},
	"black":   {0, 0, 0, 255},
	"red":     {255, 0, 0, 255},
	"green":   {0, 255, 0, 255},
	"blue":    {0, 0, 255, 255},
	"yellow":  {255, 255, 0, 255},
	"cyan":    {0, 255, 255, 255},
	"magenta": {255, 0, 255, 255},
	"gray":    {128, 128, 128, 255},
	"orange":  {255, 165, 0, 255},
}

// ParseColor accepts "#RRGGBB", "RRGGBB" or a named color.
func ParseColor(s string) (color.RGBA, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if c, ok := namedColors[name]; ok {
		return c, nil
	}

	hex := strings.TrimPrefix(name, "#")
	if len(hex) != 6 {
		return color.RGBA{}, fmt.Errorf("invalid color %q: want 6-digit hex or a named color", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return color.RGBA{
		R: uint8(v >> 16),
		G: uint8(v >> 8),
		B: uint8(v),
		A: 255,
	}, nil
}

// NormalizeColor returns the ffmpeg-compatible form of a color string
// (0xRRGGBB for hex, the name itself for named colors).
func NormalizeColor(s string) (string, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if _, ok := namedColors[name]; ok {
		return name, nil
	}
	c, err := ParseColor(s)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("0x%02X%02X%02X", c.R, c.G, c.B), nil
}
