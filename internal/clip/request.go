package clip

import (
	"fmt"
	"strings"

	"github.com/ivlev/clipforge/internal/layout"
	"github.com/ivlev/clipforge/internal/motion"
	"github.com/ivlev/clipforge/internal/raster"
	"github.com/ivlev/clipforge/internal/transcript"
)

// Box is a manually positioned overlay region, pixels on the canvas. Zero
// means "use the layout default" for that region.
type Box struct {
	X int `json:"x" yaml:"x"`
	Y int `json:"y" yaml:"y"`
	W int `json:"w" yaml:"w"`
}

// ExportRequest is the full document one export consumes: the clip window,
// the output format, every overlay and the camera animation. All optional
// fields have documented defaults filled by Normalize; the request is
// validated once here, never ad hoc downstream.
type ExportRequest struct {
	SourceURL string  `json:"sourceUrl" yaml:"sourceUrl"`
	StartSec  float64 `json:"startTime" yaml:"startTime"`
	EndSec    float64 `json:"endTime" yaml:"endTime"`

	Aspect          string `json:"aspectRatio" yaml:"aspectRatio"`
	BackgroundColor string `json:"backgroundColor" yaml:"backgroundColor"`

	Title   raster.Style `json:"title" yaml:"title"`
	Credit  raster.Style `json:"credit" yaml:"credit"`
	Caption raster.Style `json:"captionStyle" yaml:"captionStyle"`

	TitleBox   Box `json:"titleBox" yaml:"titleBox"`
	CreditBox  Box `json:"creditBox" yaml:"creditBox"`
	CaptionBox Box `json:"captionBox" yaml:"captionBox"`

	Base      motion.Frame     `json:"baseFrame" yaml:"baseFrame"`
	Keyframes []motion.Segment `json:"keyframes" yaml:"keyframes"`

	Captions []transcript.Record `json:"captions" yaml:"captions"`

	// AttributionURL, when set, adds a QR badge linking back to the source.
	AttributionURL string `json:"attributionUrl" yaml:"attributionUrl"`
}

// Duration returns the clip length in seconds.
func (r ExportRequest) Duration() float64 {
	return r.EndSec - r.StartSec
}

// Normalize fills defaults in place.
func (r *ExportRequest) Normalize() {
	if r.Aspect == "" {
		r.Aspect = string(layout.AspectPortrait)
	}
	if r.BackgroundColor == "" {
		r.BackgroundColor = "black"
	}
	if r.Base == (motion.Frame{}) {
		r.Base = motion.DefaultFrame
	}
	r.Title.ApplyDefaults()
	r.Credit.ApplyDefaults()
	r.Caption.ApplyDefaults()
}

// Validate checks the request once at construction time. It returns the
// first hard error, plus non-fatal authoring warnings (overlapping keyframe
// windows) the caller may surface.
func (r ExportRequest) Validate() ([]string, error) {
	if strings.TrimSpace(r.SourceURL) == "" {
		return nil, fmt.Errorf("sourceUrl is required")
	}
	if r.EndSec <= r.StartSec {
		return nil, fmt.Errorf("endTime %.3f must be after startTime %.3f", r.EndSec, r.StartSec)
	}
	if _, err := layout.ParseAspect(r.Aspect); err != nil {
		return nil, err
	}
	if _, err := raster.ParseColor(r.BackgroundColor); err != nil {
		return nil, fmt.Errorf("backgroundColor: %w", err)
	}

	for i, kf := range r.Keyframes {
		if kf.Start < 0 || kf.End < kf.Start {
			return nil, fmt.Errorf("keyframe %d: invalid window [%.3f,%.3f]", i, kf.Start, kf.End)
		}
		for _, f := range []motion.Frame{kf.From, kf.To} {
			if f.ZoomPct < 100 {
				return nil, fmt.Errorf("keyframe %d: zoom %.1f below 100", i, f.ZoomPct)
			}
			if f.OffsetXPct < 0 || f.OffsetXPct > 100 || f.OffsetYPct < 0 || f.OffsetYPct > 100 {
				return nil, fmt.Errorf("keyframe %d: offsets must be within [0,100]", i)
			}
		}
	}
	if r.Base.ZoomPct < 100 {
		return nil, fmt.Errorf("baseFrame: zoom %.1f below 100", r.Base.ZoomPct)
	}

	var warnings []string
	for _, pair := range motion.Overlaps(r.Keyframes) {
		warnings = append(warnings,
			fmt.Sprintf("keyframes %d and %d overlap; the earlier one wins while both are active", pair[0], pair[1]))
	}
	return warnings, nil
}
