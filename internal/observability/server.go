// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AddonSmith Contributors

// Package observability serves metrics and health probes on a separate
// listener from the operator API.
package observability

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/samber/oops"
)

// ReadinessChecker reports whether the service can accept work.
type ReadinessChecker func() bool

// consoleFailures counts console commands that could not be delivered.
// Package-level so the server controller can record failures without
// holding a Server reference.
var consoleFailures = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "addonsmith_console_failures_total",
		Help: "Total number of remote console commands that failed to send",
	},
)

// RecordConsoleFailure increments the console failure counter.
func RecordConsoleFailure() {
	consoleFailures.Inc()
}

// Metrics holds the application-level Prometheus metrics.
type Metrics struct {
	// InstallsTotal counts install jobs by outcome ("success", "error").
	InstallsTotal *prometheus.CounterVec
	// RemovalsTotal counts removal jobs by outcome.
	RemovalsTotal *prometheus.CounterVec
	// UploadsRejectedTotal counts uploads refused before any job ran,
	// by reason ("too_large", "bad_type", "bad_request").
	UploadsRejectedTotal *prometheus.CounterVec
	// JobDuration observes wall time per job type.
	JobDuration *prometheus.HistogramVec
}

// NewMetrics creates and registers the application metrics.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		InstallsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "addonsmith_installs_total",
				Help: "Total number of install jobs by outcome",
			},
			[]string{"outcome"},
		),
		RemovalsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "addonsmith_removals_total",
				Help: "Total number of removal jobs by outcome",
			},
			[]string{"outcome"},
		),
		UploadsRejectedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "addonsmith_uploads_rejected_total",
				Help: "Total number of uploads rejected before running",
			},
			[]string{"reason"},
		),
		JobDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "addonsmith_job_duration_seconds",
				Help:    "Wall time of install and removal jobs",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"job"},
		),
	}

	reg.MustRegister(m.InstallsTotal)
	reg.MustRegister(m.RemovalsTotal)
	reg.MustRegister(m.UploadsRejectedTotal)
	reg.MustRegister(m.JobDuration)
	reg.MustRegister(consoleFailures)

	return m
}

// Server exposes /metrics and health probes over its own HTTP listener.
type Server struct {
	addr       string
	listener   net.Listener
	httpServer *http.Server
	registry   *prometheus.Registry
	metrics    *Metrics
	isReady    ReadinessChecker
	running    atomic.Bool
}

// NewServer creates an observability server. A private registry keeps
// the global default registry untouched.
func NewServer(addr string, readinessChecker ReadinessChecker) *Server {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	return &Server{
		addr:     addr,
		registry: registry,
		metrics:  NewMetrics(registry),
		isReady:  readinessChecker,
	}
}

// Metrics returns the application metrics for recording events.
func (s *Server) Metrics() *Metrics {
	return s.metrics
}

// Start begins serving. The returned channel receives any serve error
// after startup and is closed on graceful shutdown.
func (s *Server) Start() (<-chan error, error) {
	if !s.running.CompareAndSwap(false, true) {
		return nil, oops.Errorf("observability server already running")
	}

	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		s.running.Store(false)
		return nil, oops.With("addr", s.addr).Wrap(err)
	}
	s.listener = listener

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	}))
	mux.HandleFunc("/healthz/liveness", s.handleLiveness)
	mux.HandleFunc("/healthz/readiness", s.handleReadiness)

	httpSrv := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.httpServer = httpSrv

	errCh := make(chan error, 1)
	go func() {
		defer close(errCh)
		if serveErr := httpSrv.Serve(listener); serveErr != nil && serveErr != http.ErrServerClosed {
			slog.Error("observability server error", "error", serveErr)
			errCh <- serveErr
		}
	}()

	slog.Info("observability server started", "addr", listener.Addr().String())
	return errCh, nil
}

// Stop gracefully shuts the server down. Safe to call without Start.
func (s *Server) Stop(ctx context.Context) error {
	if !s.running.CompareAndSwap(true, false) {
		return nil
	}

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			s.running.Store(true)
			return oops.With("operation", "shutdown_observability_server").Wrap(err)
		}
	}

	slog.Info("observability server stopped")
	return nil
}

// Addr returns the bound listen address, or "" before Start.
func (s *Server) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return ""
}

func (s *Server) handleLiveness(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	//nolint:errcheck // health check write error is acceptable, client may disconnect
	w.Write([]byte("ok\n"))
}

func (s *Server) handleReadiness(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")

	if s.isReady == nil || s.isReady() {
		w.WriteHeader(http.StatusOK)
		//nolint:errcheck // health check write error is acceptable, client may disconnect
		w.Write([]byte("ok\n"))
		return
	}

	w.WriteHeader(http.StatusServiceUnavailable)
	//nolint:errcheck // health check write error is acceptable, client may disconnect
	w.Write([]byte("not ready\n"))
}
