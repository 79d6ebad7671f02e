package video

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"

	"github.com/ivlev/clipforge/internal/filtergraph"
)

// Encoder renders a compiled filter graph to a file. The invocation is a
// single blocking call per export; there is no mid-flight cancellation
// beyond the context.
type Encoder interface {
	Render(ctx context.Context, p RenderParams) error
}

// RenderParams is everything one ffmpeg invocation needs.
type RenderParams struct {
	Graph       filtergraph.Graph
	ClipStart   float64
	ClipEnd     float64
	FPS         int
	EncoderName string
	Quality     int
	OutputPath  string
}

// FFmpegEncoder runs the system ffmpeg.
type FFmpegEncoder struct{}

func (e *FFmpegEncoder) Render(ctx context.Context, p RenderParams) error {
	args := BuildArgs(p)

	cmd := exec.CommandContext(ctx, "ffmpeg", args...)
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("ffmpeg render error: %v\nLog: %s", err, out.String())
	}
	return nil
}

// BuildArgs assembles the ffmpeg argv. The clip window trims input 0 so the
// graph and the audio share the same zero point; raster inputs follow in the
// graph's declared order.
func BuildArgs(p RenderParams) []string {
	args := []string{
		"-y",
		"-nostats", "-hide_banner",
	}

	for i, input := range p.Graph.Inputs {
		if i == 0 {
			args = append(args,
				"-ss", fmt.Sprintf("%.3f", p.ClipStart),
				"-to", fmt.Sprintf("%.3f", p.ClipEnd),
			)
		}
		args = append(args, "-i", input)
	}

	args = append(args,
		"-filter_complex", p.Graph.Serialize(),
		"-map", filtergraph.TerminalLabel,
		"-map", "0:a?",
		"-t", fmt.Sprintf("%.3f", p.ClipEnd-p.ClipStart),
		"-r", fmt.Sprintf("%d", p.FPS),
		"-pix_fmt", "yuv420p",
		"-c:v", p.EncoderName,
	)
	args = append(args, qualityArgs(p.EncoderName, p.Quality)...)
	args = append(args, "-c:a", "aac", "-b:a", "128k")
	args = append(args, p.OutputPath)
	return args
}

// qualityArgs maps the quality knob onto each encoder's native parameter.
func qualityArgs(encoderName string, quality int) []string {
	if quality == 0 {
		switch encoderName {
		case "h264_videotoolbox":
			quality = 75
		case "h264_nvenc":
			quality = 28
		default:
			quality = 23
		}
	}

	switch encoderName {
	case "h264_videotoolbox":
		// VideoToolbox rejects -q:v on several versions; bitrate instead.
		return []string{"-b:v", fmt.Sprintf("%dk", quality*100)}
	case "h264_nvenc":
		return []string{"-cq", fmt.Sprintf("%d", quality)}
	default:
		return []string{"-crf", fmt.Sprintf("%d", quality), "-preset", "medium"}
	}
}
