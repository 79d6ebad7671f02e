package raster

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// Alignment of text lines within the box.
type Alignment string

const (
	AlignLeft   Alignment = "left"
	AlignCenter Alignment = "center"
	AlignRight  Alignment = "right"
)

// Style describes how a text box is rendered. Zero values fall back to the
// documented defaults in ApplyDefaults.
type Style struct {
	Text        string    `json:"text" yaml:"text"`
	FontFamily  string    `json:"fontFamily" yaml:"fontFamily"`
	FontSizePx  int       `json:"fontSize" yaml:"fontSize"`
	ColorHex    string    `json:"color" yaml:"color"`
	Bold        bool      `json:"bold" yaml:"bold"`
	Italic      bool      `json:"italic" yaml:"italic"`
	StrokeWidth int       `json:"strokeWidth" yaml:"strokeWidth"`
	StrokeColor string    `json:"strokeColor" yaml:"strokeColor"`
	Align       Alignment `json:"align" yaml:"align"`
}

// Image is a rendered overlay asset: PNG bytes plus pixel dimensions. It is
// owned by the pipeline step that produced it and written to the export's
// temp directory for the encoder to consume.
type Image struct {
	W, H int
	PNG  []byte
}

const (
	// Horizontal and vertical inset of text within its box.
	Padding = 16

	lineSpacing = 1.2

	defaultFontSize = 48
)

// ApplyDefaults fills unset style fields.
func (s *Style) ApplyDefaults() {
	if s.FontSizePx <= 0 {
		s.FontSizePx = defaultFontSize
	}
	if s.ColorHex == "" {
		s.ColorHex = "white"
	}
	if s.Align == "" {
		s.Align = AlignCenter
	}
	if s.StrokeWidth > 0 && s.StrokeColor == "" {
		s.StrokeColor = "black"
	}
}

// LineHeight returns the pixel height of one text line for a style.
func (s Style) LineHeight() int {
	return int(math.Ceil(float64(s.FontSizePx) * lineSpacing))
}

// RenderText rasterizes a styled string into a fixed-width PNG, word-wrapped
// to the box. An empty string still produces a fully transparent raster of
// one line height so downstream layout stays stable.
func RenderText(style Style, boxWidth int) (Image, error) {
	style.ApplyDefaults()
	if boxWidth < 2*Padding+1 {
		boxWidth = 2*Padding + 1
	}

	face, err := loadFace(style)
	if err != nil {
		return Image{}, fmt.Errorf("font face: %w", err)
	}
	defer face.Close()

	lineH := style.LineHeight()
	lines := wrap(face, style.Text, boxWidth-2*Padding)

	height := 2*Padding + len(lines)*lineH
	img := image.NewRGBA(image.Rect(0, 0, boxWidth, height))

	if strings.TrimSpace(style.Text) != "" {
		fill, err := ParseColor(style.ColorHex)
		if err != nil {
			return Image{}, err
		}

		var stroke color.Color
		if style.StrokeWidth > 0 {
			stroke, err = ParseColor(style.StrokeColor)
			if err != nil {
				return Image{}, err
			}
		}

		ascent := face.Metrics().Ascent.Ceil()
		for i, line := range lines {
			lineW := font.MeasureString(face, line).Ceil()
			x := anchorX(style.Align, boxWidth, lineW)
			y := Padding + i*lineH + ascent

			// Outline pass before the fill pass
			if stroke != nil {
				drawStroke(img, face, line, x, y, style.StrokeWidth, stroke)
			}
			drawLine(img, face, line, x, y, fill)
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return Image{}, fmt.Errorf("png encode: %w", err)
	}
	return Image{W: boxWidth, H: height, PNG: buf.Bytes()}, nil
}

// loadFace resolves a style to an opentype face. All families map onto the Go
// font set; anything unrecognized falls back to the default sans.
func loadFace(style Style) (font.Face, error) {
	var ttf []byte
	switch {
	case style.Bold && style.Italic:
		ttf = gobolditalic.TTF
	case style.Bold:
		ttf = gobold.TTF
	case style.Italic:
		ttf = goitalic.TTF
	default:
		ttf = goregular.TTF
	}

	parsed, err := opentype.Parse(ttf)
	if err != nil {
		return nil, err
	}
	return opentype.NewFace(parsed, &opentype.FaceOptions{
		Size:    float64(style.FontSizePx),
		DPI:     72,
		Hinting: font.HintingFull,
	})
}

// wrap splits text into lines that fit maxWidth, accumulating words greedily.
// A single word wider than the box gets its own line untruncated. Empty text
// yields one blank line.
func wrap(face font.Face, text string, maxWidth int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return []string{""}
	}

	var lines []string
	current := words[0]
	for _, word := range words[1:] {
		candidate := current + " " + word
		if font.MeasureString(face, candidate).Ceil() <= maxWidth {
			current = candidate
			continue
		}
		lines = append(lines, current)
		current = word
	}
	return append(lines, current)
}

func anchorX(align Alignment, boxWidth, lineWidth int) int {
	switch align {
	case AlignLeft:
		return Padding
	case AlignRight:
		return boxWidth - Padding - lineWidth
	default:
		return (boxWidth - lineWidth) / 2
	}
}

func drawLine(dst draw.Image, face font.Face, line string, x, y int, col color.Color) {
	d := font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(col),
		Face: face,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(line)
}

// drawStroke approximates an outline by stamping the line at offsets around
// the fill position.
func drawStroke(dst draw.Image, face font.Face, line string, x, y, width int, col color.Color) {
	for dx := -width; dx <= width; dx++ {
		for dy := -width; dy <= width; dy++ {
			if dx == 0 && dy == 0 {
				continue
			}
			if dx*dx+dy*dy > width*width {
				continue
			}
			drawLine(dst, face, line, x+dx, y+dy, col)
		}
	}
}

// WrapCount reports how many lines a style's text occupies at a box width,
// using the same face and wrap rules as RenderText. With LineHeight it gives
// a raster's height without drawing anything.
func WrapCount(style Style, boxWidth int) (int, error) {
	style.ApplyDefaults()
	face, err := loadFace(style)
	if err != nil {
		return 0, err
	}
	defer face.Close()
	return len(wrap(face, style.Text, boxWidth-2*Padding)), nil
}
