package transcript

import (
	"fmt"
	"sort"
	"strings"
)

// Record is one timed caption span from the transcription collaborator.
// Timestamps are HH:MM:SS.mmm on the overall source timeline.
type Record struct {
	Start string `json:"startTimestamp" yaml:"startTimestamp"`
	End   string `json:"endTimestamp" yaml:"endTimestamp"`
	Text  string `json:"text" yaml:"text"`
}

// Caption is a record resolved to clip-relative seconds.
type Caption struct {
	Start float64
	End   float64
	Text  string
}

// ParseTimestamp converts HH:MM:SS.mmm to seconds.
func ParseTimestamp(ts string) (float64, error) {
	var h, m, s, ms int
	n, err := fmt.Sscanf(strings.TrimSpace(ts), "%d:%d:%d.%d", &h, &m, &s, &ms)
	if err != nil || n != 4 {
		return 0, fmt.Errorf("invalid timestamp %q: want HH:MM:SS.mmm", ts)
	}
	if m > 59 || s > 59 || h < 0 || m < 0 || s < 0 || ms < 0 {
		return 0, fmt.Errorf("invalid timestamp %q: component out of range", ts)
	}
	return float64(h)*3600 + float64(m)*60 + float64(s) + float64(ms)/1000, nil
}

// Resolve converts source-timeline records into clip-relative captions for a
// clip spanning [clipStart, clipEnd) of the source. Records outside the
// window and empty texts are dropped; windows crossing the clip edges are
// trimmed to it. Output order follows input order, which the collaborator
// guarantees to be non-decreasing.
func Resolve(records []Record, clipStart, clipEnd float64) ([]Caption, error) {
	var captions []Caption
	for i, rec := range records {
		if strings.TrimSpace(rec.Text) == "" {
			continue
		}
		start, err := ParseTimestamp(rec.Start)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		end, err := ParseTimestamp(rec.End)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		if end <= start {
			continue
		}
		if end <= clipStart || start >= clipEnd {
			continue
		}

		c := Caption{
			Start: start - clipStart,
			End:   end - clipStart,
			Text:  rec.Text,
		}
		if c.Start < 0 {
			c.Start = 0
		}
		if max := clipEnd - clipStart; c.End > max {
			c.End = max
		}
		captions = append(captions, c)
	}
	return captions, nil
}

// Sorted reports whether captions are in non-decreasing start order, which
// the transcription contract promises.
func Sorted(captions []Caption) bool {
	return sort.SliceIsSorted(captions, func(i, j int) bool {
		return captions[i].Start < captions[j].Start
	})
}
