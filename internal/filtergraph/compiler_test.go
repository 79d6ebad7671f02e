package filtergraph

import (
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/ivlev/clipforge/internal/layout"
	"github.com/ivlev/clipforge/internal/motion"
)

func scaled(v int, zoom float64) int {
	return int(math.Round(float64(v) * zoom))
}

func testJob() Job {
	return Job{
		SourcePath:      "clip.mp4",
		ClipDuration:    10,
		Layout:          layout.Compute(layout.AspectPortrait),
		Base:            motion.DefaultFrame,
		BackgroundColor: "black",
	}
}

func TestCompileMinimalRoundTrip(t *testing.T) {
	g := Compile(testJob())

	if got := g.CountKind(KindBackground); got != 1 {
		t.Errorf("expected exactly 1 background op, got %d", got)
	}
	if got := g.CountKind(KindScale); got != 1 {
		t.Errorf("expected exactly 1 scale op, got %d", got)
	}
	if got := g.CountKind(KindOverlay); got != 1 {
		t.Errorf("expected exactly 1 overlay op, got %d", got)
	}
	if !g.Terminal() {
		t.Error("graph must end in the terminal label")
	}

	s := g.Serialize()
	if !strings.Contains(s, "color=c=black:s=1080x1920:d=10.000") {
		t.Errorf("background op malformed: %s", s)
	}
	if !strings.HasSuffix(s, TerminalLabel) {
		t.Errorf("serialized graph must end with %s: %s", TerminalLabel, s)
	}

	if err := Validate(g, []string{SourceLabel, "[bg]", TerminalLabel}, 0); err != nil {
		t.Errorf("minimal graph should validate: %v", err)
	}
}

func TestCompileBaseScaleCoversRect(t *testing.T) {
	job := testJob()
	job.Base = motion.Frame{ZoomPct: 150, OffsetXPct: 50, OffsetYPct: 50}
	g := Compile(job)

	rect := job.Layout.VideoRect
	want := fmt.Sprintf("scale=%d:%d:force_original_aspect_ratio=increase", scaled(rect.W, 1.5), scaled(rect.H, 1.5))
	if !strings.Contains(g.Serialize(), want) {
		t.Errorf("expected scale %q in graph:\n%s", want, g.Serialize())
	}
}

func TestCompileOffsetMapping(t *testing.T) {
	job := testJob()
	rect := job.Layout.VideoRect
	maxX := int(0.30 * float64(job.Layout.CanvasW))

	tests := []struct {
		pct   float64
		wantX int
	}{
		{0, rect.X - maxX},   // max left
		{50, rect.X},         // centered
		{100, rect.X + maxX}, // max right
	}

	for _, tt := range tests {
		job.Base = motion.Frame{ZoomPct: 100, OffsetXPct: tt.pct, OffsetYPct: 50}
		g := Compile(job)
		want := fmt.Sprintf("overlay=%d:%d", tt.wantX, rect.Y)
		if !strings.Contains(g.Serialize(), want) {
			t.Errorf("pct=%.0f: expected %q in graph:\n%s", tt.pct, want, g.Serialize())
		}
	}
}

func TestCompileSegmentsGatedAndSplit(t *testing.T) {
	job := testJob()
	job.Segments = []motion.Segment{
		{ID: "zoom-in", Start: 1, End: 4, From: motion.DefaultFrame, To: motion.Frame{ZoomPct: 150, OffsetXPct: 50, OffsetYPct: 50}},
		{ID: "pan", Start: 5, End: 8, From: motion.Frame{ZoomPct: 120, OffsetXPct: 0, OffsetYPct: 50}, To: motion.Frame{ZoomPct: 120, OffsetXPct: 100, OffsetYPct: 50}},
	}
	g := Compile(job)

	s := g.Serialize()
	if !strings.Contains(s, "split=3") {
		t.Errorf("three camera states need a 3-way source split:\n%s", s)
	}
	if !strings.Contains(s, "enable='between(t,1.000,4.000)'") {
		t.Errorf("first segment window missing:\n%s", s)
	}
	if !strings.Contains(s, "enable='between(t,5.000,8.000)'") {
		t.Errorf("second segment window missing:\n%s", s)
	}

	// Segment 1 midpoint 2.5 -> zoom 125: scaled rect * 1.25
	rect := job.Layout.VideoRect
	want := fmt.Sprintf("scale=%d:%d", scaled(rect.W, 1.25), scaled(rect.H, 1.25))
	if !strings.Contains(s, want) {
		t.Errorf("segment midpoint zoom not applied, want %q:\n%s", want, s)
	}

	if err := Validate(g, []string{SourceLabel, "[bg]", TerminalLabel}, 0); err != nil {
		t.Errorf("segment graph should validate: %v", err)
	}
}

func TestCompileOverlappingSegmentsKeepOwnFrames(t *testing.T) {
	job := testJob()
	// The second window sits entirely inside the first. At lookup time the
	// first wins, but each overlay layer must carry its own camera state:
	// during the overlap the later layer is the visible one.
	job.Segments = []motion.Segment{
		{ID: "wide", Start: 0, End: 10, From: motion.DefaultFrame, To: motion.DefaultFrame},
		{ID: "punch", Start: 3, End: 7,
			From: motion.Frame{ZoomPct: 160, OffsetXPct: 50, OffsetYPct: 50},
			To:   motion.Frame{ZoomPct: 160, OffsetXPct: 50, OffsetYPct: 50}},
	}
	g := Compile(job)

	s := g.Serialize()
	rect := job.Layout.VideoRect
	want := fmt.Sprintf("scale=%d:%d", scaled(rect.W, 1.6), scaled(rect.H, 1.6))
	if !strings.Contains(s, want) {
		t.Errorf("overlapped segment lost its own zoom, want %q:\n%s", want, s)
	}
	if !strings.Contains(s, "enable='between(t,3.000,7.000)'") {
		t.Errorf("overlapped segment window missing:\n%s", s)
	}
}

func TestCompileOverlayAssets(t *testing.T) {
	job := testJob()
	job.Title = &Asset{Path: "title.png", W: 900, H: 120, X: 90, Y: 40}
	job.Credit = &Asset{Path: "credit.png", W: 900, H: 80, X: 90, Y: 1800}
	job.Captions = []Asset{
		{Path: "cap0.png", X: 100, Y: 1500, Windowed: true, Start: 0, End: 2.5},
		{Path: "cap1.png", X: 100, Y: 1500, Windowed: true, Start: 2.5, End: 5},
	}
	job.Badge = &Asset{Path: "badge.png", X: 950, Y: 1750}

	g := Compile(job)

	if len(g.Inputs) != 5 {
		t.Fatalf("expected 5 input files (source + 4 overlays + badge), got %v", g.Inputs)
	}
	if g.Inputs[0] != "clip.mp4" || g.Inputs[1] != "title.png" {
		t.Errorf("input ordering wrong: %v", g.Inputs)
	}

	s := g.Serialize()
	for _, ref := range []string{"[1:v]", "[2:v]", "[3:v]", "[4:v]", "[5:v]"} {
		if !strings.Contains(s, ref) {
			t.Errorf("overlay input %s not referenced:\n%s", ref, s)
		}
	}
	if !strings.Contains(s, "enable='between(t,0.000,2.500)'") {
		t.Errorf("caption window missing:\n%s", s)
	}

	if err := Validate(g, []string{SourceLabel, "[bg]", TerminalLabel}, 0); err != nil {
		t.Errorf("asset graph should validate: %v", err)
	}
}

func TestCompileNoForwardReferences(t *testing.T) {
	job := testJob()
	job.Segments = []motion.Segment{
		{Start: 0, End: 10, From: motion.DefaultFrame, To: motion.Frame{ZoomPct: 140, OffsetXPct: 50, OffsetYPct: 50}},
	}
	job.Title = &Asset{Path: "t.png"}
	g := Compile(job)

	// checkReferences is the forward-reference guard; run it via Validate.
	if err := Validate(g, nil, 0); err != nil {
		t.Errorf("compiled graphs must never forward-reference: %v", err)
	}
}

func TestCompilePassthruNormalizesLabel(t *testing.T) {
	job := testJob()
	job.Title = &Asset{Path: "t.png"}
	g := Compile(job)

	if !strings.Contains(g.Serialize(), "null[vmain]") {
		t.Errorf("pass-through label normalization missing:\n%s", g.Serialize())
	}
}
