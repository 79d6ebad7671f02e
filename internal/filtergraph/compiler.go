package filtergraph

import (
	"fmt"
	"math"

	"github.com/ivlev/clipforge/internal/motion"
)

// DefaultPanRangeFrac is the fraction of the canvas dimension that a full
// pan (offset 0 or 100) travels from center. Policy, not law: overridable
// per job through the config.
const DefaultPanRangeFrac = 0.30

// Op kinds emitted by the compiler.
const (
	KindBackground = "background"
	KindSplit      = "split"
	KindScale      = "scale"
	KindOverlay    = "overlay"
	KindPassthru   = "passthru"
)

// Compile translates a job into the full preferred graph: background, scaled
// video per camera state, windowed segment overlays, title/credit, captions
// and badge, ending in the terminal label.
func Compile(job Job) Graph {
	return compile(job, true, true)
}

// compile builds a graph with optional overlay tiers. The degradation ladder
// reuses it with tiers switched off.
func compile(job Job, withText, withCaptions bool) Graph {
	g := Graph{Inputs: []string{job.SourcePath}}
	panRange := job.PanRangeFrac
	if panRange <= 0 {
		panRange = DefaultPanRangeFrac
	}

	// 1. Background fill sized to canvas for the clip duration.
	g.push(Op{
		Kind: KindBackground,
		Params: fmt.Sprintf("color=c=%s:s=%dx%d:d=%.3f",
			job.BackgroundColor, job.Layout.CanvasW, job.Layout.CanvasH, job.ClipDuration),
		Output: "[bg]",
	})

	// 2. One scaled copy of the source per camera state: the base frame plus
	// every keyframe segment. The source stream is forked first when more
	// than one consumer needs it.
	states := 1 + len(job.Segments)
	srcLabels := []string{SourceLabel}
	if states > 1 {
		srcLabels = make([]string, states)
		outs := ""
		for i := range srcLabels {
			srcLabels[i] = fmt.Sprintf("[src%d]", i)
			outs += srcLabels[i]
		}
		g.Ops = append(g.Ops, Op{
			Inputs: []string{SourceLabel},
			Kind:   KindSplit,
			Params: fmt.Sprintf("split=%d", states),
			Output: outs,
		})
	}

	g.push(scaleOp(srcLabels[0], "[vbase]", job, job.Base))
	segLabels := make([]string, len(job.Segments))
	for i, seg := range job.Segments {
		// Motion is compiled per segment, not per frame: each segment becomes
		// one statically scaled overlay gated to its window, sampled from its
		// own keyframes at the window midpoint. Own keyframes, not the
		// first-wins lookup: during an overlap the later segment draws on
		// top, so its layer must show its own camera state.
		frame := seg.At(seg.Midpoint())
		segLabels[i] = fmt.Sprintf("[vseg%d]", i)
		g.push(scaleOp(srcLabels[i+1], segLabels[i], job, frame))
	}

	// 3+4. Place the base video, then chain each segment overlay gated to its
	// own window, later segments on top of earlier results.
	bx, by := overlayOffset(job, job.Base, panRange)
	current := "[comp0]"
	g.push(Op{
		Inputs: []string{"[bg]", "[vbase]"},
		Kind:   KindOverlay,
		Params: fmt.Sprintf("overlay=%d:%d", bx, by),
		Output: current,
	})
	for i, seg := range job.Segments {
		frame := seg.At(seg.Midpoint())
		x, y := overlayOffset(job, frame, panRange)
		next := fmt.Sprintf("[comp%d]", i+1)
		g.push(Op{
			Inputs: []string{current, segLabels[i]},
			Kind:   KindOverlay,
			Params: fmt.Sprintf("overlay=%d:%d:enable='between(t,%.3f,%.3f)'", x, y, seg.Start, seg.End),
			Output: next,
		})
		current = next
	}

	// Pass-through normalizes the running label name.
	g.push(Op{
		Inputs: []string{current},
		Kind:   KindPassthru,
		Params: "null",
		Output: "[vmain]",
	})
	current = "[vmain]"

	// 5. Title and credit rasters in one combined step.
	if withText {
		current = g.overlayAsset(current, job.Title, "[vtitle]")
		current = g.overlayAsset(current, job.Credit, "[vcredit]")
	}

	// 6. Captions and the attribution badge, each gated to its window.
	if withCaptions {
		for i := range job.Captions {
			current = g.overlayAsset(current, &job.Captions[i], fmt.Sprintf("[vcap%d]", i))
		}
		current = g.overlayAsset(current, job.Badge, "[vbadge]")
	}

	// The last op's output becomes the designated terminal label.
	g.Ops[len(g.Ops)-1].Output = TerminalLabel
	return g
}

// push appends an op, defaulting Inputs to none for source filters.
func (g *Graph) push(op Op) {
	g.Ops = append(g.Ops, op)
}

// overlayAsset registers an asset as an input stream and overlays it onto the
// running composite. Nil assets are skipped and the current label returned
// unchanged.
func (g *Graph) overlayAsset(current string, a *Asset, out string) string {
	if a == nil {
		return current
	}
	idx := len(g.Inputs)
	g.Inputs = append(g.Inputs, a.Path)

	params := fmt.Sprintf("overlay=%d:%d", a.X, a.Y)
	if a.Windowed {
		params = fmt.Sprintf("overlay=%d:%d:enable='between(t,%.3f,%.3f)'", a.X, a.Y, a.Start, a.End)
	}
	g.push(Op{
		Inputs: []string{current, fmt.Sprintf("[%d:v]", idx)},
		Kind:   KindOverlay,
		Params: params,
		Output: out,
	})
	return out
}

// scaleOp scales the source stream for one camera state. The scaled video
// must cover the target rect in both dimensions; overflow is cropped by
// placement, never letterboxed.
func scaleOp(in, out string, job Job, frame motion.Frame) Op {
	zoom := frame.ZoomPct / 100
	if zoom < 1 {
		zoom = 1
	}
	w := int(math.Round(float64(job.Layout.VideoRect.W) * zoom))
	h := int(math.Round(float64(job.Layout.VideoRect.H) * zoom))
	return Op{
		Inputs: []string{in},
		Kind:   KindScale,
		Params: fmt.Sprintf("scale=%d:%d:force_original_aspect_ratio=increase", w, h),
		Output: out,
	}
}

// overlayOffset maps percent offsets to canvas pixels:
// offsetPx = round(((pct-50)/50) * panRange*canvasDim) + rect origin, so
// 0/50/100 percent land on max-left/centered/max-right.
func overlayOffset(job Job, frame motion.Frame, panRange float64) (int, int) {
	maxX := panRange * float64(job.Layout.CanvasW)
	maxY := panRange * float64(job.Layout.CanvasH)
	x := int(math.Round((frame.OffsetXPct-50)/50*maxX)) + job.Layout.VideoRect.X
	y := int(math.Round((frame.OffsetYPct-50)/50*maxY)) + job.Layout.VideoRect.Y
	return x, y
}
