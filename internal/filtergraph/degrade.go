package filtergraph

import (
	"errors"
	"fmt"
)

// Strategy is one rung of the degradation ladder: a pure Job -> Graph build
// plus the streams its result must contain. Rungs are tried in order; each is
// strictly simpler than the previous, and a broken graph is always replaced
// wholesale by the next rung, never patched.
type Strategy struct {
	Name     string
	Build    func(Job) Graph
	Required []string
}

// Ladder is the ordered fallback policy: the preferred full graph, then the
// same graph without captions and badge, then a minimal background+video
// chain, then a bare scale of the raw stream. Guarantees an output exists
// even for pathological caption/animation combinations.
var Ladder = []Strategy{
	{
		Name:     "full",
		Build:    Compile,
		Required: []string{SourceLabel, "[bg]", TerminalLabel},
	},
	{
		Name: "no-captions",
		Build: func(job Job) Graph {
			return compile(job, true, false)
		},
		Required: []string{SourceLabel, "[bg]", TerminalLabel},
	},
	{
		Name: "minimal",
		Build: func(job Job) Graph {
			job.Segments = nil
			return compile(job, false, false)
		},
		Required: []string{SourceLabel, "[bg]", TerminalLabel},
	},
	{
		Name:     "scale-only",
		Build:    scaleOnly,
		Required: []string{SourceLabel, TerminalLabel},
	},
}

// scaleOnly is the absolute fallback: the raw stream fitted to the output
// size, no canvas, no background, no overlays.
func scaleOnly(job Job) Graph {
	return Graph{
		Inputs: []string{job.SourcePath},
		Ops: []Op{{
			Inputs: []string{SourceLabel},
			Kind:   KindScale,
			Params: fmt.Sprintf("scale=%d:%d:force_original_aspect_ratio=decrease",
				job.Layout.CanvasW, job.Layout.CanvasH),
			Output: TerminalLabel,
		}},
	}
}

// CompileValidated walks the ladder until a rung validates. Placeholder
// defects abort immediately: they signal a compiler bug, not a size problem,
// and must never be silently degraded. Returns the graph and the name of the
// rung that produced it.
func CompileValidated(job Job, maxLen int) (Graph, string, error) {
	var lastErr error
	for _, s := range Ladder {
		g := s.Build(job)
		err := Validate(g, s.Required, maxLen)
		if err == nil {
			return g, s.Name, nil
		}
		if errors.Is(err, ErrPlaceholder) {
			return Graph{}, "", fmt.Errorf("compile defect in %s graph: %w", s.Name, err)
		}
		lastErr = err
	}
	return Graph{}, "", fmt.Errorf("all degradation strategies exhausted: %w", lastErr)
}
