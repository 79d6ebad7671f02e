package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ivlev/clipforge/internal/config"
	"github.com/ivlev/clipforge/internal/engine"
	"github.com/ivlev/clipforge/internal/video"
)

// offlineDownloader fails every fetch, so jobs finish fast and never reach
// the encoder.
type offlineDownloader struct{}

func (offlineDownloader) Fetch(ctx context.Context, url, destPath string) error {
	return errors.New("network disabled in tests")
}

func testServer(t *testing.T) *server {
	cfg := &config.Config{
		OutputDir:   t.TempDir(),
		WorkDirBase: t.TempDir(),
		MaxGraphLen: 30000,
		FPS:         30,
	}
	exp := engine.NewExporter(cfg, offlineDownloader{}, &video.FFmpegEncoder{})
	return newServer(cfg, exp)
}

const exportBody = `{"sourceUrl":"https://example.com/watch?v=abc","startTime":10,"endTime":20}`

func TestExportStatusUnderConcurrentReads(t *testing.T) {
	s := testServer(t)
	r := s.router()

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest("POST", "/api/export", strings.NewReader(exportBody)))
	if rec.Code != 202 {
		t.Fatalf("export returned %d: %s", rec.Code, rec.Body.String())
	}
	var job jobStatus
	if err := json.NewDecoder(rec.Body).Decode(&job); err != nil {
		t.Fatal(err)
	}
	if job.ID == "" || job.Status != "processing" {
		t.Fatalf("unexpected accept response: %+v", job)
	}

	// Hammer the read endpoints while the worker goroutine updates the
	// record. Readers must only ever see snapshots.
	var wg sync.WaitGroup
	stop := make(chan struct{})
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				rec := httptest.NewRecorder()
				r.ServeHTTP(rec, httptest.NewRequest("GET", "/api/status/"+job.ID, nil))
				rec = httptest.NewRecorder()
				r.ServeHTTP(rec, httptest.NewRequest("GET", "/api/jobs", nil))
			}
		}()
	}

	deadline := time.Now().Add(5 * time.Second)
	var got jobStatus
	for {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest("GET", "/api/status/"+job.ID, nil))
		if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
			t.Fatal(err)
		}
		if got.Status != "processing" {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("job never left processing")
		}
		time.Sleep(10 * time.Millisecond)
	}
	close(stop)
	wg.Wait()

	if got.Status != "failed" {
		t.Fatalf("offline downloader should fail the job, got %q", got.Status)
	}
	if got.Category != engine.CategoryAcquisition {
		t.Errorf("category = %q, want %q", got.Category, engine.CategoryAcquisition)
	}
}

func TestSnapshotIsIsolatedFromUpdates(t *testing.T) {
	s := testServer(t)
	s.jobs["a"] = &jobStatus{ID: "a", Status: "processing", Warnings: []string{"w1"}}

	snap, ok := s.snapshot("a")
	if !ok {
		t.Fatal("job not found")
	}

	s.mu.Lock()
	s.jobs["a"].Status = "failed"
	s.jobs["a"].Warnings = append(s.jobs["a"].Warnings, "w2")
	s.mu.Unlock()

	if snap.Status != "processing" {
		t.Errorf("snapshot status mutated to %q", snap.Status)
	}
	if len(snap.Warnings) != 1 {
		t.Errorf("snapshot warnings mutated: %v", snap.Warnings)
	}
}

func TestExportRejectsBadRequests(t *testing.T) {
	s := testServer(t)
	r := s.router()

	for _, body := range []string{
		`not json`,
		`{"startTime":10,"endTime":20}`,
		`{"sourceUrl":"https://example.com/v","startTime":20,"endTime":10}`,
	} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest("POST", "/api/export", strings.NewReader(body)))
		if rec.Code != 400 {
			t.Errorf("body %q: got %d, want 400", body, rec.Code)
		}
	}
}

func TestHealthReportsToolsAndFilters(t *testing.T) {
	s := testServer(t)
	rec := httptest.NewRecorder()
	s.router().ServeHTTP(rec, httptest.NewRequest("GET", "/health", nil))
	if rec.Code != 200 {
		t.Fatalf("got %d, want 200", rec.Code)
	}

	var health struct {
		Status  string          `json:"status"`
		FFmpeg  *bool           `json:"ffmpeg"`
		Filters map[string]bool `json:"filters"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&health); err != nil {
		t.Fatal(err)
	}
	if health.Status != "healthy" || health.FFmpeg == nil {
		t.Fatalf("unexpected health payload: %s", rec.Body.String())
	}
	if *health.FFmpeg {
		// A working ffmpeg must carry every filter the compiler emits.
		for _, f := range []string{"overlay", "scale", "split"} {
			if !health.Filters[f] {
				t.Errorf("filter %s reported unsupported", f)
			}
		}
	}
}

func TestStatusUnknownJob(t *testing.T) {
	s := testServer(t)
	rec := httptest.NewRecorder()
	s.router().ServeHTTP(rec, httptest.NewRequest("GET", "/api/status/nope", nil))
	if rec.Code != 404 {
		t.Errorf("got %d, want 404", rec.Code)
	}
}
