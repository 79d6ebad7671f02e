package motion

// Frame is a camera state: zoom percentage (100 = native size) and pan
// offsets in percent, where 50 means centered on both axes.
type Frame struct {
	ZoomPct    float64 `json:"zoom" yaml:"zoom"`
	OffsetXPct float64 `json:"offsetX" yaml:"offsetX"`
	OffsetYPct float64 `json:"offsetY" yaml:"offsetY"`
}

// DefaultFrame is the camera at rest: no zoom, centered.
var DefaultFrame = Frame{ZoomPct: 100, OffsetXPct: 50, OffsetYPct: 50}

// Segment is a time-bounded linear animation from a start camera state to an
// end camera state. Times are seconds relative to the clip start.
type Segment struct {
	ID    string  `json:"id" yaml:"id"`
	Start float64 `json:"startTime" yaml:"startTime"`
	End   float64 `json:"endTime" yaml:"endTime"`
	From  Frame   `json:"from" yaml:"from"`
	To    Frame   `json:"to" yaml:"to"`
}

// Duration returns the segment length in seconds.
func (s Segment) Duration() float64 {
	return s.End - s.Start
}

// Midpoint returns the time at the middle of the segment window.
func (s Segment) Midpoint() float64 {
	return s.Start + s.Duration()/2
}

// At evaluates the camera state at time t. The first segment in list order
// whose window contains t wins; overlapping later segments are ignored. When
// no window matches, base is returned unchanged.
func At(segments []Segment, base Frame, t float64) Frame {
	for _, seg := range segments {
		if t >= seg.Start && t <= seg.End {
			return seg.At(t)
		}
	}
	return base
}

// At evaluates this segment's own interpolation at time t, regardless of
// other segments' windows. Factor is clamped, 0 on a zero-length window.
func (s Segment) At(t float64) Frame {
	factor := 0.0
	if d := s.Duration(); d > 0 {
		factor = clamp((t-s.Start)/d, 0, 1)
	}
	return Frame{
		ZoomPct:    lerp(s.From.ZoomPct, s.To.ZoomPct, factor),
		OffsetXPct: lerp(s.From.OffsetXPct, s.To.OffsetXPct, factor),
		OffsetYPct: lerp(s.From.OffsetYPct, s.To.OffsetYPct, factor),
	}
}

// Overlaps reports pairs of segments whose windows intersect. Overlap is not
// an error (first listed wins at lookup time) but callers surface it as an
// authoring warning.
func Overlaps(segments []Segment) [][2]int {
	var pairs [][2]int
	for i := 0; i < len(segments); i++ {
		for j := i + 1; j < len(segments); j++ {
			if segments[i].Start < segments[j].End && segments[j].Start < segments[i].End {
				pairs = append(pairs, [2]int{i, j})
			}
		}
	}
	return pairs
}

func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
