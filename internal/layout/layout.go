package layout

import "fmt"

// AspectSpec names one of the supported output formats.
type AspectSpec string

const (
	AspectPortrait  AspectSpec = "9:16"
	AspectLandscape AspectSpec = "16:9"
	AspectSquare    AspectSpec = "1:1"
	AspectFourFive  AspectSpec = "4:5"
	AspectThreeFour AspectSpec = "3:4"
)

// Canvas sizes per aspect. Widths are kept at 1080 for the vertical formats
// so exports line up with what the platforms actually ingest.
var canvasSizes = map[AspectSpec][2]int{
	AspectPortrait:  {1080, 1920},
	AspectLandscape: {1920, 1080},
	AspectSquare:    {1080, 1080},
	AspectFourFive:  {1080, 1350},
	AspectThreeFour: {1080, 1440},
}

const (
	// Default bar fractions of canvas height.
	defaultTitleFrac  = 0.18
	defaultCreditFrac = 0.16

	// Source video aspect. Clips come from the downloader as 16:9.
	videoAspectW = 16
	videoAspectH = 9

	// Spacing used when a rendered title forces the top bar to grow.
	titleGap    = 24
	titleMargin = 16
)

// Rect is a pixel rectangle on the canvas.
type Rect struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"w"`
	H int `json:"h"`
}

// Layout is the derived geometry for one export: canvas size, the bars
// reserved for title and credits, and the centered video rectangle.
type Layout struct {
	CanvasW   int
	CanvasH   int
	VideoRect Rect
	TitleBarH int
	CreditBarH int
}

// ParseAspect validates an aspect string against the supported set.
func ParseAspect(s string) (AspectSpec, error) {
	spec := AspectSpec(s)
	if _, ok := canvasSizes[spec]; !ok {
		return "", fmt.Errorf("unsupported aspect ratio %q", s)
	}
	return spec, nil
}

// CanvasSize returns the output dimensions for an aspect. Unknown specs fall
// back to portrait, the most common export format.
func CanvasSize(spec AspectSpec) (int, int) {
	if size, ok := canvasSizes[spec]; ok {
		return size[0], size[1]
	}
	return canvasSizes[AspectPortrait][0], canvasSizes[AspectPortrait][1]
}

// Compute performs the default (first pass) layout for an aspect: bars at
// their default fractions and the video rect fitted between them.
func Compute(spec AspectSpec) Layout {
	w, h := CanvasSize(spec)
	titleBar := int(float64(h) * defaultTitleFrac)
	creditBar := int(float64(h) * defaultCreditFrac)
	return fit(w, h, titleBar, creditBar)
}

// Relayout is the second pass: once the title raster exists, grow the top bar
// to fit it and recompute the video rect. Text height is unknown until the
// text is rendered, but the video's vertical position depends on the final
// bar, hence the two passes.
func (l Layout) Relayout(titleRasterH int) Layout {
	titleBar := l.TitleBarH
	if needed := titleRasterH + titleGap + titleMargin; needed > titleBar {
		titleBar = needed
	}
	return fit(l.CanvasW, l.CanvasH, titleBar, l.CreditBarH)
}

// fit places a 16:9 rectangle between the bars, width-constrained first,
// height-constrained as fallback. The source aspect is never stretched.
func fit(canvasW, canvasH, titleBar, creditBar int) Layout {
	availH := canvasH - titleBar - creditBar
	if availH < 1 {
		availH = 1
	}

	videoW := canvasW
	videoH := videoW * videoAspectH / videoAspectW
	if videoH > availH {
		videoH = availH
		videoW = videoH * videoAspectW / videoAspectH
	}
	if videoW < 1 {
		videoW = 1
	}
	if videoH < 1 {
		videoH = 1
	}

	x := (canvasW - videoW) / 2
	y := titleBar + (availH-videoH)/2

	return Layout{
		CanvasW:    canvasW,
		CanvasH:    canvasH,
		VideoRect:  Rect{X: x, Y: y, W: videoW, H: videoH},
		TitleBarH:  titleBar,
		CreditBarH: creditBar,
	}
}

// CreditY returns the vertical origin of the credit bar, where the credit
// raster is anchored.
func (l Layout) CreditY() int {
	return l.CanvasH - l.CreditBarH
}
