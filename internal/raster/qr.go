package raster

import (
	"bytes"
	"fmt"
	"image/png"

	qrcode "github.com/skip2/go-qrcode"
)

// RenderBadge produces a QR code raster linking back to the clip's source.
// Overlaid in the credit corner when the request asks for attribution.
func RenderBadge(url string, sizePx int) (Image, error) {
	if sizePx < 64 {
		sizePx = 64
	}

	code, err := qrcode.New(url, qrcode.Medium)
	if err != nil {
		return Image{}, fmt.Errorf("qr encode: %w", err)
	}

	img := code.Image(sizePx)
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return Image{}, fmt.Errorf("qr png encode: %w", err)
	}

	b := img.Bounds()
	return Image{W: b.Dx(), H: b.Dy(), PNG: buf.Bytes()}, nil
}
