package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/ivlev/clipforge/internal/clip"
	"github.com/ivlev/clipforge/internal/config"
	"github.com/ivlev/clipforge/internal/engine"
	"github.com/ivlev/clipforge/internal/source"
	"github.com/ivlev/clipforge/internal/system"
	"github.com/ivlev/clipforge/internal/video"
)

func main() {
	// Увеличиваем лимиты системы (для macOS/Linux)
	system.InitResourceLimits()

	cfg := config.Load()

	requestPtr := flag.String("request", "", "Путь к YAML-файлу запроса: рендер одного клипа без сервера")
	addrPtr := flag.String("addr", cfg.Addr, "Адрес HTTP-сервера")
	outputPtr := flag.String("output", cfg.OutputDir, "Директория готовых клипов")
	cookiesPtr := flag.String("cookies", cfg.CookiesFile, "Файл cookies (формат Netscape) для yt-dlp")
	fpsPtr := flag.Int("fps", cfg.FPS, "FPS результата")
	qualityPtr := flag.Int("quality", cfg.Quality, "Качество видео (0 - авто, x264: CRF 1-51, VideoToolbox: битрейт = Q*100кбит/с)")
	statsPtr := flag.Bool("stats", cfg.ShowStats, "Отчёт о ресурсах после экспорта")

	flag.Parse()

	cfg.Addr = *addrPtr
	cfg.OutputDir = *outputPtr
	cfg.CookiesFile = *cookiesPtr
	cfg.FPS = *fpsPtr
	cfg.Quality = *qualityPtr
	cfg.ShowStats = *statsPtr

	exporter := engine.NewExporter(cfg,
		&source.YtDlpDownloader{CookiesFile: cfg.CookiesFile},
		&video.FFmpegEncoder{})

	if *requestPtr != "" {
		runOnce(exporter, *requestPtr)
		return
	}

	srv := newServer(cfg, exporter)
	log.Fatal(srv.listen())
}

// runOnce renders a single clip from a request file and exits. Useful for
// scripting and for reproducing a failed server job locally.
func runOnce(exporter *engine.Exporter, path string) {
	req, err := clip.ReadRequest(path)
	if err != nil {
		fmt.Printf("[-] Ошибка чтения запроса: %v\n", err)
		os.Exit(1)
	}

	res, err := exporter.Run(context.Background(), req)
	if err != nil {
		fmt.Printf("[-] Ошибка экспорта: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("[+++] Клип готов: %s (стратегия %s, %s)\n", res.VideoPath, res.Strategy, res.Resolution)
}
