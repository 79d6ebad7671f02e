package source

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// Downloader acquires a playable media file covering a time range of a
// source URL. Implementations are external collaborators; failures carry the
// collaborator's message verbatim.
type Downloader interface {
	Fetch(ctx context.Context, url string, destPath string) error
}

// YtDlpDownloader shells out to yt-dlp for the highest quality progressive
// MP4 (video+audio muxed, <=1080p). Trimming to the clip window happens in
// the compositor, not here.
type YtDlpDownloader struct {
	// Binary overrides the yt-dlp executable name.
	Binary string
	// CookiesFile is passed through when it is a valid Netscape cookie jar.
	CookiesFile string
}

const minValidSize = 1000 // bytes; anything smaller is an error page, not media

func (d *YtDlpDownloader) Fetch(ctx context.Context, url string, destPath string) error {
	binary := d.Binary
	if binary == "" {
		binary = "yt-dlp"
	}

	// Stale partial files confuse yt-dlp's resume logic.
	os.Remove(destPath)

	args := []string{
		"-f", "best[ext=mp4][vcodec^=avc1]/best[ext=mp4]/mp4",
		"-o", destPath,
	}
	if d.CookiesFile != "" && validNetscapeCookies(d.CookiesFile) {
		args = append(args, "--cookies", d.CookiesFile)
	}
	args = append(args, url)

	cmd := exec.CommandContext(ctx, binary, args...)
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("download failed: %v: %s", err, lastLines(out.String(), 5))
	}

	info, err := os.Stat(destPath)
	if err != nil {
		return fmt.Errorf("download produced no file: %w", err)
	}
	if info.Size() < minValidSize {
		os.Remove(destPath)
		return fmt.Errorf("download produced an invalid file (%d bytes)", info.Size())
	}
	return nil
}

// validNetscapeCookies checks the first line marker so a random text file
// does not get passed to yt-dlp.
func validNetscapeCookies(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	if !scanner.Scan() {
		return false
	}
	return strings.HasPrefix(scanner.Text(), "# Netscape HTTP Cookie File")
}

// lastLines trims collaborator output to the tail worth surfacing.
func lastLines(s string, n int) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, " | ")
}
