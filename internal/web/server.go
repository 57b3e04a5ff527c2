// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AddonSmith Contributors

// Package web serves the operator HTTP API: archive upload, pack
// removal, pack listing, and a minimal upload page.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/samber/oops"

	"github.com/craftops/addonsmith/internal/addon"
	"github.com/craftops/addonsmith/internal/archive"
	"github.com/craftops/addonsmith/internal/config"
	"github.com/craftops/addonsmith/internal/observability"
	"github.com/craftops/addonsmith/internal/worker"
	"github.com/craftops/addonsmith/internal/xdg"
)

// HealthResponse is returned by the /health endpoint.
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

// ErrorResponse carries a client-facing error message.
type ErrorResponse struct {
	Error string `json:"error"`
}

// RemoveRequest is the body of POST /api/remove.
type RemoveRequest struct {
	Packs     []string `json:"packs"`
	RemoveAll bool     `json:"remove_all"`
	Confirm   bool     `json:"confirm"`
}

// PackInfo is one entry in the GET /api/list response.
type PackInfo struct {
	Name     string   `json:"name"`
	Entities []string `json:"entities,omitempty"`
	Summon   []string `json:"summon,omitempty"`
}

// ListResponse is the body of GET /api/list.
type ListResponse struct {
	Packs []PackInfo `json:"packs"`
}

// Server runs the operator HTTP API.
type Server struct {
	cfg        *config.Config
	svc        *addon.Service
	runner     *worker.Runner
	metrics    *observability.Metrics
	log        *slog.Logger
	listener   net.Listener
	httpServer *http.Server
	running    atomic.Bool
}

// NewServer wires the API server. metrics may be nil in tests.
func NewServer(cfg *config.Config, svc *addon.Service, runner *worker.Runner, metrics *observability.Metrics, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		cfg:     cfg,
		svc:     svc,
		runner:  runner,
		metrics: metrics,
		log:     logger,
	}
}

// Handler returns the route table. Exposed for tests.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /api/list", s.handleList)
	mux.HandleFunc("POST /api/install", s.handleInstall)
	mux.HandleFunc("POST /api/remove", s.handleRemove)
	return mux
}

// Start begins listening on the configured address.
func (s *Server) Start() error {
	if !s.running.CompareAndSwap(false, true) {
		return oops.Errorf("web server already running")
	}

	listener, err := net.Listen("tcp", s.cfg.ListenAddr)
	if err != nil {
		s.running.Store(false)
		return oops.With("addr", s.cfg.ListenAddr).Wrap(err)
	}
	s.listener = listener

	s.httpServer = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := s.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error("web server error", "error", err)
		}
	}()

	s.log.Info("web server started", "addr", listener.Addr().String())
	return nil
}

// Stop gracefully shuts the server down.
func (s *Server) Stop(ctx context.Context) error {
	if !s.running.CompareAndSwap(true, false) {
		return nil
	}
	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			return oops.Wrapf(err, "shutdown web server")
		}
	}
	s.log.Info("web server stopped")
	return nil
}

// Addr returns the bound listen address, or "" before Start.
func (s *Server) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return ""
}

const indexPage = `<!DOCTYPE html>
<html>
<head><title>AddonSmith</title></head>
<body>
<h1>AddonSmith</h1>
<p>Upload a .mcaddon archive to install it on the server.</p>
<form action="/api/install" method="post" enctype="multipart/form-data">
<input type="file" name="file" accept=".mcaddon" required>
<button type="submit">Install</button>
</form>
</body>
</html>
`

func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	//nolint:errcheck // best-effort static page, client may disconnect
	io.WriteString(w, indexPage)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// handleInstall accepts a multipart upload, stages it in the upload
// directory, and runs the install pipeline through the serial runner.
func (s *Server) handleInstall(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			s.rejectUpload(w, http.StatusRequestEntityTooLarge, "too_large",
				fmt.Sprintf("upload exceeds %d bytes", s.cfg.MaxUploadBytes))
			return
		}
		s.rejectUpload(w, http.StatusBadRequest, "bad_request", "multipart form field 'file' is required")
		return
	}
	defer file.Close()

	name := filepath.Base(header.Filename)
	if !strings.EqualFold(filepath.Ext(name), addon.ArchiveExt) {
		s.rejectUpload(w, http.StatusBadRequest, "bad_type",
			fmt.Sprintf("only %s files are supported", addon.ArchiveExt))
		return
	}

	staged, err := s.stageUpload(name, file)
	if err != nil {
		s.log.Error("failed to stage upload", "file", name, "error", err)
		s.writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "failed to store upload"})
		return
	}

	var report *addon.InstallReport
	start := time.Now()
	_, err = s.runner.Do(r.Context(), "install", func(ctx context.Context) error {
		var jobErr error
		report, jobErr = s.svc.Install(ctx, staged)
		return jobErr
	})
	s.observeJob("install", time.Since(start), err)

	if err != nil {
		s.writeJSON(w, installErrorStatus(err), report)
		return
	}
	s.writeJSON(w, http.StatusOK, report)
}

// handleRemove validates confirmation at the transport boundary, then
// runs the removal pipeline through the serial runner.
func (s *Server) handleRemove(w http.ResponseWriter, r *http.Request) {
	var req RemoveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid JSON body"})
		return
	}
	if !req.Confirm {
		s.writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "confirmation required"})
		return
	}
	if !req.RemoveAll && len(req.Packs) == 0 {
		s.writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "no packs selected"})
		return
	}

	var report *addon.RemoveReport
	start := time.Now()
	_, err := s.runner.Do(r.Context(), "remove", func(ctx context.Context) error {
		var jobErr error
		report, jobErr = s.svc.Remove(ctx, addon.RemoveRequest{Packs: req.Packs, All: req.RemoveAll})
		return jobErr
	})
	s.observeJob("remove", time.Since(start), err)

	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, addon.ErrNoPackagesSelected) {
			status = http.StatusBadRequest
		}
		if report == nil {
			s.writeJSON(w, status, ErrorResponse{Error: "removal failed"})
			return
		}
		s.writeJSON(w, status, report)
		return
	}
	s.writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleList(w http.ResponseWriter, _ *http.Request) {
	registry := s.svc.Registry()
	names, err := registry.List()
	if err != nil {
		s.log.Error("failed to list packs", "error", err)
		s.writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "failed to list packs"})
		return
	}

	resp := ListResponse{Packs: make([]PackInfo, 0, len(names))}
	for _, name := range names {
		entities := registry.EntityIdentifiers(name)
		info := PackInfo{Name: name, Entities: entities}
		for _, id := range entities {
			info.Summon = append(info.Summon, "/summon "+id)
		}
		resp.Packs = append(resp.Packs, info)
	}
	s.writeJSON(w, http.StatusOK, resp)
}

// stageUpload copies the request body into the upload directory under
// its original base name, which later becomes the pack name.
func (s *Server) stageUpload(name string, src io.Reader) (string, error) {
	if err := xdg.EnsureDir(s.cfg.UploadDir); err != nil {
		return "", oops.With("dir", s.cfg.UploadDir).Wrapf(err, "create upload directory")
	}
	dest := filepath.Join(s.cfg.UploadDir, name)
	out, err := os.Create(dest)
	if err != nil {
		return "", oops.With("path", dest).Wrapf(err, "create staged upload")
	}
	if _, err := io.Copy(out, src); err != nil {
		out.Close()
		os.Remove(dest)
		return "", oops.With("path", dest).Wrapf(err, "write staged upload")
	}
	if err := out.Close(); err != nil {
		os.Remove(dest)
		return "", oops.With("path", dest).Wrapf(err, "close staged upload")
	}
	return dest, nil
}

func (s *Server) rejectUpload(w http.ResponseWriter, status int, reason, msg string) {
	if s.metrics != nil {
		s.metrics.UploadsRejectedTotal.WithLabelValues(reason).Inc()
	}
	s.writeJSON(w, status, ErrorResponse{Error: msg})
}

func (s *Server) observeJob(job string, elapsed time.Duration, err error) {
	if s.metrics == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	switch job {
	case "install":
		s.metrics.InstallsTotal.WithLabelValues(outcome).Inc()
	case "remove":
		s.metrics.RemovalsTotal.WithLabelValues(outcome).Inc()
	}
	s.metrics.JobDuration.WithLabelValues(job).Observe(elapsed.Seconds())
}

// installErrorStatus maps pipeline errors to HTTP status codes. Client
// mistakes (wrong file type, malformed or incomplete archive) are 4xx;
// everything else is a server error.
func installErrorStatus(err error) int {
	switch {
	case errors.Is(err, addon.ErrUnsupportedFileType),
		errors.Is(err, archive.ErrArchiveInvalid),
		errors.Is(err, archive.ErrManifestIncomplete):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Error("failed to encode response", "error", err)
	}
}
