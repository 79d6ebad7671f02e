package layout

import (
	"math"
	"testing"
)

func TestComputeAllAspects(t *testing.T) {
	specs := []AspectSpec{AspectPortrait, AspectLandscape, AspectSquare, AspectFourFive, AspectThreeFour}

	for _, spec := range specs {
		t.Run(string(spec), func(t *testing.T) {
			l := Compute(spec)

			if l.CanvasW <= 0 || l.CanvasH <= 0 {
				t.Fatalf("canvas must be positive, got %dx%d", l.CanvasW, l.CanvasH)
			}

			r := l.VideoRect
			if r.X < 0 || r.Y < 0 || r.X+r.W > l.CanvasW || r.Y+r.H > l.CanvasH {
				t.Errorf("video rect %+v escapes canvas %dx%d", r, l.CanvasW, l.CanvasH)
			}

			// Horizontal centering within 1px rounding
			leftGap := r.X
			rightGap := l.CanvasW - (r.X + r.W)
			if abs(leftGap-rightGap) > 1 {
				t.Errorf("video rect not centered: left=%d right=%d", leftGap, rightGap)
			}

			// Aspect preserved within 1% of 16:9
			ratio := float64(r.W) / float64(r.H)
			if math.Abs(ratio-16.0/9.0) > 16.0/9.0*0.01 {
				t.Errorf("video aspect %.4f deviates from 16:9 by more than 1%%", ratio)
			}

			// Video sits below the title bar and above the credit bar
			if r.Y < l.TitleBarH {
				t.Errorf("video rect y=%d overlaps title bar h=%d", r.Y, l.TitleBarH)
			}
			if r.Y+r.H > l.CanvasH-l.CreditBarH {
				t.Errorf("video rect bottom=%d overlaps credit bar", r.Y+r.H)
			}
		})
	}
}

func TestCanvasRatios(t *testing.T) {
	tests := []struct {
		spec AspectSpec
		w, h int
	}{
		{AspectPortrait, 1080, 1920},
		{AspectLandscape, 1920, 1080},
		{AspectSquare, 1080, 1080},
		{AspectFourFive, 1080, 1350},
		{AspectThreeFour, 1080, 1440},
	}

	for _, tt := range tests {
		w, h := CanvasSize(tt.spec)
		if w != tt.w || h != tt.h {
			t.Errorf("%s: expected %dx%d, got %dx%d", tt.spec, tt.w, tt.h, w, h)
		}
	}
}

func TestRelayoutGrowsTitleBar(t *testing.T) {
	l := Compute(AspectPortrait)
	tall := l.TitleBarH + 200

	grown := l.Relayout(tall)
	if grown.TitleBarH < tall {
		t.Errorf("title bar should grow to at least raster height %d, got %d", tall, grown.TitleBarH)
	}
	if grown.VideoRect.Y < grown.TitleBarH {
		t.Errorf("video rect must move below the grown bar: y=%d bar=%d", grown.VideoRect.Y, grown.TitleBarH)
	}
	if grown.VideoRect.W > l.VideoRect.W+1 {
		t.Errorf("video rect should not grow after relayout: %d -> %d", l.VideoRect.W, grown.VideoRect.W)
	}
}

func TestRelayoutShortTitleKeepsDefault(t *testing.T) {
	l := Compute(AspectPortrait)
	same := l.Relayout(10)
	if same.TitleBarH != l.TitleBarH {
		t.Errorf("small raster should keep default bar: %d -> %d", l.TitleBarH, same.TitleBarH)
	}
}

func TestDegenerateCanvasStillProducesRect(t *testing.T) {
	// Bars larger than the canvas: the rect must clamp to 1x1 minimum.
	l := fit(4, 4, 100, 100)
	if l.VideoRect.W < 1 || l.VideoRect.H < 1 {
		t.Errorf("degenerate layout must still yield a visible rect, got %+v", l.VideoRect)
	}
}

func TestParseAspect(t *testing.T) {
	if _, err := ParseAspect("9:16"); err != nil {
		t.Errorf("9:16 should parse: %v", err)
	}
	if _, err := ParseAspect("21:9"); err == nil {
		t.Error("21:9 should be rejected")
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
