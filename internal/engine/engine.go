package engine

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/ivlev/clipforge/internal/clip"
	"github.com/ivlev/clipforge/internal/config"
	"github.com/ivlev/clipforge/internal/filtergraph"
	"github.com/ivlev/clipforge/internal/layout"
	"github.com/ivlev/clipforge/internal/raster"
	"github.com/ivlev/clipforge/internal/source"
	"github.com/ivlev/clipforge/internal/system"
	"github.com/ivlev/clipforge/internal/video"
)

// Exporter runs export requests end to end. Requests are independent: each
// owns its temp directory, raster files and backend invocation, so two may
// run concurrently without coordination.
type Exporter struct {
	Config     *config.Config
	Downloader source.Downloader
	Encoder    video.Encoder
}

// Result is the successful export response: a path relative to the output
// directory, never a partial file.
type Result struct {
	ID         string   `json:"id"`
	VideoPath  string   `json:"videoPath"`
	Strategy   string   `json:"strategy"`
	Resolution string   `json:"resolution"`
	Warnings   []string `json:"warnings,omitempty"`
}

func NewExporter(cfg *config.Config, dl source.Downloader, enc video.Encoder) *Exporter {
	return &Exporter{Config: cfg, Downloader: dl, Encoder: enc}
}

// Run processes one export request. The temp directory is removed on every
// exit path, success or error; the finished file is the only artifact left
// behind.
func (e *Exporter) Run(ctx context.Context, req *clip.ExportRequest) (*Result, error) {
	startTime := time.Now()

	req.Normalize()
	warnings, err := req.Validate()
	if err != nil {
		return nil, fail(CategoryRequest, err)
	}
	for _, w := range warnings {
		fmt.Printf("[!] %s\n", w)
	}

	id := uuid.NewString()

	tempDir, err := os.MkdirTemp(e.Config.WorkDirBase, "clipforge_")
	if err != nil {
		return nil, fail(CategoryBackend, err)
	}
	defer os.RemoveAll(tempDir)

	// 1. Acquire the source clip.
	fmt.Printf("[*] Export %s: fetching %s\n", id, req.SourceURL)
	sourcePath := filepath.Join(tempDir, "source.mp4")
	dlStart := time.Now()
	if err := e.Downloader.Fetch(ctx, req.SourceURL, sourcePath); err != nil {
		return nil, fail(CategoryAcquisition, err)
	}
	if _, err := os.Stat(sourcePath); err != nil {
		return nil, fail(CategoryAcquisition, fmt.Errorf("downloaded file unreadable: %w", err))
	}
	dlTime := time.Since(dlStart)

	// Clamp the clip window to what the source actually contains.
	if dur, err := source.ProbeDuration(ctx, sourcePath); err == nil && req.EndSec > dur {
		req.EndSec = dur
	}
	if req.Duration() <= 0 {
		return nil, fail(CategoryRequest, fmt.Errorf("clip window empty after clamping to source duration"))
	}

	height, _ := source.ProbeHeight(ctx, sourcePath)

	// 2. Geometry first pass, then rasters, then the raster-aware second pass.
	aspect, _ := layout.ParseAspect(req.Aspect)
	lay := layout.Compute(aspect)

	assets, err := e.buildAssets(ctx, req, lay, tempDir)
	if err != nil {
		return nil, fail(CategoryRenderAsset, err)
	}

	lay = lay.Relayout(assets.titleH)
	assets.place(req, lay)

	// 3. Compile and validate, degrading when the backend limit is hit.
	bg, err := raster.NormalizeColor(req.BackgroundColor)
	if err != nil {
		return nil, fail(CategoryRequest, err)
	}

	job := filtergraph.Job{
		SourcePath:      sourcePath,
		ClipDuration:    req.Duration(),
		Layout:          lay,
		Base:            req.Base,
		Segments:        req.Keyframes,
		BackgroundColor: bg,
		Title:           assets.title,
		Credit:          assets.credit,
		Captions:        assets.captions,
		Badge:           assets.badge,
		PanRangeFrac:    e.Config.PanRangeFrac,
	}

	graph, strategy, err := filtergraph.CompileValidated(job, e.Config.MaxGraphLen)
	if err != nil {
		return nil, fail(CategoryCompile, err)
	}
	if strategy != "full" {
		fmt.Printf("[!] Export %s: degraded to %s graph\n", id, strategy)
	}

	// 4. Render. One blocking backend invocation; no mid-flight abort.
	if err := os.MkdirAll(e.Config.OutputDir, 0755); err != nil {
		return nil, fail(CategoryBackend, err)
	}
	outName := id + ".mp4"
	outPath := filepath.Join(e.Config.OutputDir, outName)

	encStart := time.Now()
	encoderName := system.GetBestH264Encoder()
	err = e.Encoder.Render(ctx, video.RenderParams{
		Graph:       graph,
		ClipStart:   req.StartSec,
		ClipEnd:     req.EndSec,
		FPS:         e.Config.FPS,
		EncoderName: encoderName,
		Quality:     e.Config.Quality,
		OutputPath:  outPath,
	})
	if err != nil {
		os.Remove(outPath)
		return nil, fail(CategoryBackend, err)
	}
	encTime := time.Since(encStart)

	if e.Config.ShowStats {
		snap := system.ReadSnapshot()
		fmt.Printf("--- [EXPORT REPORT] ---\n"+
			"Build: %s\nExport: %s\nStrategy: %s\nDownload: %.2fs\nEncode: %.2fs\nTotal: %.2fs\nSystem: %s\n"+
			"-----------------------\n",
			e.Config.BuildVersion, id, strategy,
			dlTime.Seconds(), encTime.Seconds(), time.Since(startTime).Seconds(), snap)
	}

	fmt.Printf("[+++] Export %s done: %s (%s)\n", id, outName, strategy)
	return &Result{
		ID:         id,
		VideoPath:  outName,
		Strategy:   strategy,
		Resolution: source.ResolutionLabel(height),
		Warnings:   warnings,
	}, nil
}
