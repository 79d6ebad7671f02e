package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/ivlev/clipforge/internal/clip"
	"github.com/ivlev/clipforge/internal/config"
	"github.com/ivlev/clipforge/internal/engine"
	"github.com/ivlev/clipforge/internal/system"
)

type jobStatus struct {
	ID        string    `json:"id"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
	Error     string    `json:"error,omitempty"`
	Category  string    `json:"category,omitempty"`
	VideoURL  string    `json:"videoUrl,omitempty"`
	Strategy  string    `json:"strategy,omitempty"`
	Warnings  []string  `json:"warnings,omitempty"`
}

type server struct {
	cfg      *config.Config
	exporter *engine.Exporter

	mu   sync.RWMutex
	jobs map[string]*jobStatus
}

func newServer(cfg *config.Config, exporter *engine.Exporter) *server {
	return &server{cfg: cfg, exporter: exporter, jobs: make(map[string]*jobStatus)}
}

func (s *server) router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/api/export", s.handleExport).Methods("POST")
	r.HandleFunc("/api/status/{id}", s.handleStatus).Methods("GET")
	r.HandleFunc("/api/jobs", s.handleJobs).Methods("GET")
	r.PathPrefix("/videos/").Handler(
		http.StripPrefix("/videos/", http.FileServer(http.Dir(s.cfg.OutputDir))))
	r.HandleFunc("/health", s.handleHealth).Methods("GET")
	return r
}

func (s *server) listen() error {
	os.MkdirAll(s.cfg.OutputDir, 0755)

	fmt.Printf("[*] Сервер запущен на %s\n", s.cfg.Addr)
	return http.ListenAndServe(s.cfg.Addr, s.router())
}

func (s *server) handleExport(w http.ResponseWriter, r *http.Request) {
	var req clip.ExportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}

	// Отклоняем мусорные запросы сразу, до постановки в очередь.
	req.Normalize()
	warnings, err := req.Validate()
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	job := &jobStatus{
		ID:        uuid.NewString(),
		Status:    "processing",
		CreatedAt: time.Now(),
		Warnings:  warnings,
	}
	s.mu.Lock()
	s.jobs[job.ID] = job
	s.mu.Unlock()

	// Snapshot before the worker starts mutating the shared record.
	resp := *job
	resp.Warnings = append([]string(nil), job.Warnings...)
	go s.runJob(job.ID, &req)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(resp)
}

// snapshot copies a job record under the read lock so handlers never encode
// a struct the worker goroutine is still writing to.
func (s *server) snapshot(id string) (jobStatus, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, ok := s.jobs[id]
	if !ok {
		return jobStatus{}, false
	}
	cp := *job
	cp.Warnings = append([]string(nil), job.Warnings...)
	return cp, true
}

func (s *server) runJob(id string, req *clip.ExportRequest) {
	res, err := s.exporter.Run(context.Background(), req)

	s.mu.Lock()
	defer s.mu.Unlock()
	job := s.jobs[id]
	if err != nil {
		job.Status = "failed"
		job.Error = err.Error()
		var exp *engine.ExportError
		if errors.As(err, &exp) {
			job.Category = exp.Category
		}
		return
	}
	job.Status = "completed"
	job.VideoURL = "/videos/" + filepath.Base(res.VideoPath)
	job.Strategy = res.Strategy
	job.Warnings = append(job.Warnings, res.Warnings...)
}

func (s *server) handleStatus(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	job, ok := s.snapshot(id)
	if !ok {
		http.Error(w, "job not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(job)
}

func (s *server) handleJobs(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	list := make([]jobStatus, 0, len(s.jobs))
	for _, job := range s.jobs {
		cp := *job
		cp.Warnings = append([]string(nil), job.Warnings...)
		list = append(list, cp)
	}
	s.mu.RUnlock()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(list)
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ffmpegOK := true
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		ffmpegOK = false
	}
	ytdlpOK := true
	if _, err := exec.LookPath("yt-dlp"); err != nil {
		ytdlpOK = false
	}

	// The compiler emits nothing beyond these; a build missing one of them
	// cannot render any rung of the ladder.
	filters := map[string]bool{}
	if ffmpegOK {
		for _, f := range []string{"overlay", "scale", "split"} {
			filters[f] = system.CheckFilterSupport(f)
		}
	}

	s.mu.RLock()
	active := len(s.jobs)
	s.mu.RUnlock()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":  "healthy",
		"version": s.cfg.BuildVersion,
		"ffmpeg":  ffmpegOK,
		"ytdlp":   ytdlpOK,
		"filters": filters,
		"jobs":    active,
	})
}
