package filtergraph

import (
	"errors"
	"strings"
	"testing"
)

func TestValidatePlaceholderIsHardDefect(t *testing.T) {
	g := Compile(testJob())
	g.Ops[0].Params = "color=c=%!s(MISSING):s=1080x1920"

	err := Validate(g, nil, 0)
	if !errors.Is(err, ErrPlaceholder) {
		t.Errorf("expected ErrPlaceholder, got %v", err)
	}
}

func TestValidatePlaceholderMarkers(t *testing.T) {
	for _, marker := range []string{"<nil>", "NaN", "undefined", "{{width}}"} {
		g := Compile(testJob())
		g.Ops[1].Params = "scale=" + marker + ":100"
		if err := Validate(g, nil, 0); !errors.Is(err, ErrPlaceholder) {
			t.Errorf("marker %q: expected ErrPlaceholder, got %v", marker, err)
		}
	}
}

func TestValidateBracketBalance(t *testing.T) {
	g := Compile(testJob())
	g.Ops[len(g.Ops)-1].Output = "[vout"

	err := Validate(g, nil, 0)
	if !errors.Is(err, ErrMalformed) {
		t.Errorf("expected ErrMalformed for unclosed bracket, got %v", err)
	}
}

func TestValidateRequiredStreams(t *testing.T) {
	g := Compile(testJob())

	err := Validate(g, []string{"[watermark]"}, 0)
	if !errors.Is(err, ErrMalformed) || !strings.Contains(err.Error(), "[watermark]") {
		t.Errorf("expected missing-stream error, got %v", err)
	}
}

func TestValidateForwardReference(t *testing.T) {
	g := Graph{
		Inputs: []string{"clip.mp4"},
		Ops: []Op{
			{Inputs: []string{"[later]"}, Kind: KindOverlay, Params: "overlay=0:0", Output: "[x]"},
			{Inputs: []string{"[0:v]"}, Kind: KindPassthru, Params: "null", Output: "[later]"},
			{Inputs: []string{"[x]"}, Kind: KindPassthru, Params: "null", Output: TerminalLabel},
		},
	}

	if err := Validate(g, nil, 0); !errors.Is(err, ErrMalformed) {
		t.Errorf("forward reference must be rejected, got %v", err)
	}
}

func TestValidateSizeCeiling(t *testing.T) {
	g := Compile(testJob())

	if err := Validate(g, nil, 40); !errors.Is(err, ErrTooLarge) {
		t.Error("tiny ceiling should trip ErrTooLarge")
	}
	if err := Validate(g, nil, 0); err != nil {
		t.Errorf("default ceiling should pass: %v", err)
	}
}

func TestValidateMissingTerminal(t *testing.T) {
	g := Compile(testJob())
	g.Ops[len(g.Ops)-1].Output = "[not_terminal]"

	if err := Validate(g, nil, 0); !errors.Is(err, ErrMalformed) {
		t.Errorf("graph without terminal label must be rejected, got %v", err)
	}
}

func TestSplitLabels(t *testing.T) {
	labels := splitLabels("[src0][src1][src2]")
	if len(labels) != 3 || labels[0] != "[src0]" || labels[2] != "[src2]" {
		t.Errorf("unexpected labels: %v", labels)
	}
}
