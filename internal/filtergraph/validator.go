package filtergraph

import (
	"errors"
	"fmt"
	"strings"
)

// DefaultMaxGraphLen is the serialized-length ceiling the reference backend
// parses safely. Empirical; overridable through the config.
const DefaultMaxGraphLen = 30000

// ErrPlaceholder marks a compile defect: an op carries an undefined or
// garbage parameter. Never degraded, always surfaced.
var ErrPlaceholder = errors.New("graph contains placeholder parameter")

// ErrTooLarge marks a graph over the backend length ceiling. Recoverable via
// the degradation ladder.
var ErrTooLarge = errors.New("graph exceeds backend length limit")

// ErrMalformed marks structural problems: unbalanced stream references,
// missing required streams, forward references or a missing terminal.
var ErrMalformed = errors.New("graph is malformed")

// Markers that betray an uninitialized or failed parameter interpolation.
var placeholderMarkers = []string{"%!", "<nil>", "NaN", "undefined", "{{"}

// Validate runs the well-formedness checks in fixed order: placeholder scan,
// bracket balance, reference integrity, required streams, then the size
// ceiling.
func Validate(g Graph, required []string, maxLen int) error {
	if err := checkPlaceholders(g); err != nil {
		return err
	}

	serialized := g.Serialize()

	if err := checkBrackets(serialized); err != nil {
		return err
	}
	if err := checkReferences(g); err != nil {
		return err
	}
	for _, ref := range required {
		if !strings.Contains(serialized, ref) {
			return fmt.Errorf("%w: required stream %s missing", ErrMalformed, ref)
		}
	}
	if !g.Terminal() {
		return fmt.Errorf("%w: graph does not end in %s", ErrMalformed, TerminalLabel)
	}

	if maxLen <= 0 {
		maxLen = DefaultMaxGraphLen
	}
	if len(serialized) > maxLen {
		return fmt.Errorf("%w: %d > %d chars", ErrTooLarge, len(serialized), maxLen)
	}
	return nil
}

func checkPlaceholders(g Graph) error {
	for i, op := range g.Ops {
		for _, marker := range placeholderMarkers {
			if strings.Contains(op.Params, marker) || strings.Contains(op.Output, marker) {
				return fmt.Errorf("%w: op %d (%s) contains %q", ErrPlaceholder, i, op.Kind, marker)
			}
		}
		if op.Output == "" {
			return fmt.Errorf("%w: op %d (%s) has no output label", ErrPlaceholder, i, op.Kind)
		}
	}
	return nil
}

func checkBrackets(s string) error {
	depth := 0
	for _, r := range s {
		switch r {
		case '[':
			depth++
			if depth > 1 {
				return fmt.Errorf("%w: nested stream reference", ErrMalformed)
			}
		case ']':
			depth--
			if depth < 0 {
				return fmt.Errorf("%w: unopened stream reference closed", ErrMalformed)
			}
		}
	}
	if depth != 0 {
		return fmt.Errorf("%w: %d unclosed stream reference(s)", ErrMalformed, depth)
	}
	return nil
}

// checkReferences enforces ordering: every op input is either an external
// input stream ([N:v]) or the output of an earlier op. No forward references.
func checkReferences(g Graph) error {
	defined := make(map[string]bool)
	for i := range g.Inputs {
		defined[fmt.Sprintf("[%d:v]", i)] = true
	}

	for i, op := range g.Ops {
		for _, in := range op.Inputs {
			if !defined[in] {
				return fmt.Errorf("%w: op %d (%s) references undeclared stream %s", ErrMalformed, i, op.Kind, in)
			}
		}
		// Compound outputs (split) declare several labels at once.
		for _, label := range splitLabels(op.Output) {
			defined[label] = true
		}
	}
	return nil
}

func splitLabels(out string) []string {
	var labels []string
	for _, part := range strings.SplitAfter(out, "]") {
		if strings.HasPrefix(part, "[") {
			labels = append(labels, part)
		}
	}
	return labels
}
