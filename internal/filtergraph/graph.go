package filtergraph

import (
	"strings"

	"github.com/ivlev/clipforge/internal/layout"
	"github.com/ivlev/clipforge/internal/motion"
)

// TerminalLabel is the single named output of every compiled graph. The
// encoder maps it to the rendered video stream.
const TerminalLabel = "[vout]"

// SourceLabel is the raw clip video stream, always input index 0.
const SourceLabel = "[0:v]"

// Op is one composition operation: input stream labels, the filter body and
// the label it produces. The compiled graph is exactly the op sequence joined
// with ";".
type Op struct {
	Inputs []string
	Kind   string
	Params string
	Output string
}

// Graph is an ordered op sequence plus the external input files it consumes.
// Inputs[0] is the source media; overlay assets follow in label order.
type Graph struct {
	Ops    []Op
	Inputs []string
}

// Asset is an overlay image placed on the canvas, optionally gated to a time
// window.
type Asset struct {
	Path     string
	W, H     int
	X, Y     int
	Windowed bool
	Start    float64
	End      float64
}

// Job is one immutable composition request: everything the compiler needs to
// emit a graph. Built once per export, consumed exactly once.
type Job struct {
	SourcePath      string
	ClipDuration    float64
	Layout          layout.Layout
	Base            motion.Frame
	Segments        []motion.Segment
	BackgroundColor string
	Title           *Asset
	Credit          *Asset
	Captions        []Asset
	Badge           *Asset
	PanRangeFrac    float64
	OutputWidth     int
	OutputHeight    int
}

// Serialize renders the graph to the filter_complex string handed to the
// execution backend.
func (g Graph) Serialize() string {
	parts := make([]string, 0, len(g.Ops))
	for _, op := range g.Ops {
		var b strings.Builder
		for _, in := range op.Inputs {
			b.WriteString(in)
		}
		b.WriteString(op.Params)
		b.WriteString(op.Output)
		parts = append(parts, b.String())
	}
	return strings.Join(parts, ";")
}

// Terminal reports whether the graph ends in the terminal label.
func (g Graph) Terminal() bool {
	return len(g.Ops) > 0 && g.Ops[len(g.Ops)-1].Output == TerminalLabel
}

// CountKind returns how many ops of a kind the graph contains.
func (g Graph) CountKind(kind string) int {
	n := 0
	for _, op := range g.Ops {
		if op.Kind == kind {
			n++
		}
	}
	return n
}
