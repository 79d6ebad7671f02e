package engine

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/ivlev/clipforge/internal/clip"
	"github.com/ivlev/clipforge/internal/filtergraph"
	"github.com/ivlev/clipforge/internal/layout"
	"github.com/ivlev/clipforge/internal/raster"
	"github.com/ivlev/clipforge/internal/transcript"
)

const (
	titleMarginX   = 64
	captionMarginX = 96
	captionInsetY  = 32
	badgeInset     = 32
	badgeSize      = 160
)

// overlayAssets holds the rendered rasters for one export, written to the
// export's temp directory and discarded with it.
type overlayAssets struct {
	title    *filtergraph.Asset
	credit   *filtergraph.Asset
	captions []filtergraph.Asset
	badge    *filtergraph.Asset
	titleH   int
}

// buildAssets renders every overlay raster concurrently. Title and credit
// are always rendered, even for empty text, so the layout stays stable.
func (e *Exporter) buildAssets(ctx context.Context, req *clip.ExportRequest, lay layout.Layout, tempDir string) (*overlayAssets, error) {
	assets := &overlayAssets{}

	titleWidth := req.TitleBox.W
	if titleWidth <= 0 {
		titleWidth = lay.CanvasW - 2*titleMarginX
	}
	captionWidth := req.CaptionBox.W
	if captionWidth <= 0 {
		captionWidth = lay.CanvasW - 2*captionMarginX
	}

	captions, err := transcript.Resolve(req.Captions, req.StartSec, req.EndSec)
	if err != nil {
		return nil, fmt.Errorf("captions: %w", err)
	}
	assets.captions = make([]filtergraph.Asset, len(captions))

	g, _ := errgroup.WithContext(ctx)

	g.Go(func() error {
		img, err := raster.RenderText(req.Title, titleWidth)
		if err != nil {
			return fmt.Errorf("title raster: %w", err)
		}
		path := filepath.Join(tempDir, "title.png")
		if err := os.WriteFile(path, img.PNG, 0644); err != nil {
			return err
		}
		assets.title = &filtergraph.Asset{Path: path, W: img.W, H: img.H}
		assets.titleH = img.H
		return nil
	})

	g.Go(func() error {
		img, err := raster.RenderText(req.Credit, titleWidth)
		if err != nil {
			return fmt.Errorf("credit raster: %w", err)
		}
		path := filepath.Join(tempDir, "credit.png")
		if err := os.WriteFile(path, img.PNG, 0644); err != nil {
			return err
		}
		assets.credit = &filtergraph.Asset{Path: path, W: img.W, H: img.H}
		return nil
	})

	for i, cap := range captions {
		i, cap := i, cap
		g.Go(func() error {
			style := req.Caption
			style.Text = cap.Text
			img, err := raster.RenderText(style, captionWidth)
			if err != nil {
				return fmt.Errorf("caption raster %d: %w", i, err)
			}
			path := filepath.Join(tempDir, fmt.Sprintf("cap%03d.png", i))
			if err := os.WriteFile(path, img.PNG, 0644); err != nil {
				return err
			}
			assets.captions[i] = filtergraph.Asset{
				Path:     path,
				W:        img.W,
				H:        img.H,
				Windowed: true,
				Start:    cap.Start,
				End:      cap.End,
			}
			return nil
		})
	}

	if req.AttributionURL != "" {
		g.Go(func() error {
			img, err := raster.RenderBadge(req.AttributionURL, badgeSize)
			if err != nil {
				return fmt.Errorf("badge raster: %w", err)
			}
			path := filepath.Join(tempDir, "badge.png")
			if err := os.WriteFile(path, img.PNG, 0644); err != nil {
				return err
			}
			assets.badge = &filtergraph.Asset{Path: path, W: img.W, H: img.H}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return assets, nil
}

// place assigns canvas positions after the raster-aware relayout. Manual
// boxes from the request win over the layout defaults.
func (a *overlayAssets) place(req *clip.ExportRequest, lay layout.Layout) {
	if a.title != nil {
		a.title.X, a.title.Y = boxOrDefault(req.TitleBox,
			(lay.CanvasW-a.title.W)/2,
			clampLow((lay.TitleBarH-a.title.H)/2, 0))
	}
	if a.credit != nil {
		a.credit.X, a.credit.Y = boxOrDefault(req.CreditBox,
			(lay.CanvasW-a.credit.W)/2,
			lay.CreditY()+clampLow((lay.CreditBarH-a.credit.H)/2, 0))
	}
	for i := range a.captions {
		cap := &a.captions[i]
		cap.X, cap.Y = boxOrDefault(req.CaptionBox,
			(lay.CanvasW-cap.W)/2,
			lay.VideoRect.Y+lay.VideoRect.H-cap.H-captionInsetY)
	}
	if a.badge != nil {
		a.badge.X = lay.CanvasW - a.badge.W - badgeInset
		a.badge.Y = lay.CanvasH - a.badge.H - badgeInset
	}
}

func boxOrDefault(box clip.Box, defX, defY int) (int, int) {
	if box.W > 0 {
		return box.X, box.Y
	}
	return defX, defY
}

func clampLow(v, lo int) int {
	if v < lo {
		return lo
	}
	return v
}
