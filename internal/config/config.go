package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config carries the service-level settings every export shares. Request
// specific settings (aspect, styling, keyframes) travel in the export
// request instead.
type Config struct {
	// Addr is the HTTP listen address.
	Addr string
	// OutputDir holds finished exports, served as static files.
	OutputDir string
	// WorkDirBase is where per-export temp directories are created.
	// Empty means the system temp dir.
	WorkDirBase string
	// CookiesFile is an optional Netscape cookies file for the downloader.
	CookiesFile string
	// MaxGraphLen is the serialized filter graph ceiling before the
	// degradation ladder engages.
	MaxGraphLen int
	// PanRangeFrac is the max pan travel as a fraction of the canvas
	// dimension. 0.30 matches the editor preview.
	PanRangeFrac float64
	// Quality is the encoder quality knob (CRF for libx264, bitrate
	// derived for hardware encoders). 0 picks a per-encoder default.
	Quality int
	// FPS of the composited output.
	FPS int
	// ShowStats enables the per-export performance report.
	ShowStats    bool
	BuildVersion string
}

// Load builds the config from defaults and environment overrides. A .env
// file next to the binary is honored when present.
func Load() *Config {
	godotenv.Load()

	cfg := &Config{
		Addr:         ":8090",
		OutputDir:    "output",
		MaxGraphLen:  30000,
		PanRangeFrac: 0.30,
		FPS:          30,
	}

	if v := os.Getenv("CLIPFORGE_ADDR"); v != "" {
		cfg.Addr = v
	}
	if v := os.Getenv("CLIPFORGE_OUTPUT_DIR"); v != "" {
		cfg.OutputDir = v
	}
	if v := os.Getenv("CLIPFORGE_WORK_DIR"); v != "" {
		cfg.WorkDirBase = v
	}
	if v := os.Getenv("CLIPFORGE_COOKIES"); v != "" {
		cfg.CookiesFile = v
	}
	if v, err := strconv.Atoi(os.Getenv("CLIPFORGE_MAX_GRAPH_LEN")); err == nil && v > 0 {
		cfg.MaxGraphLen = v
	}
	if v, err := strconv.ParseFloat(os.Getenv("CLIPFORGE_PAN_RANGE"), 64); err == nil && v > 0 && v <= 0.5 {
		cfg.PanRangeFrac = v
	}
	if v, err := strconv.Atoi(os.Getenv("CLIPFORGE_QUALITY")); err == nil && v > 0 {
		cfg.Quality = v
	}
	if v, err := strconv.Atoi(os.Getenv("CLIPFORGE_FPS")); err == nil && v > 0 {
		cfg.FPS = v
	}
	if os.Getenv("CLIPFORGE_STATS") == "1" {
		cfg.ShowStats = true
	}

	return cfg
}
