// Package opserver exposes the agent's operational HTTP surface:
// Kubernetes-style liveness/readiness probes and, when enabled, a
// Prometheus metrics endpoint. Adapted from the teacher's
// node/health_checker.go subsystem-aggregation pattern and rpc/server.go's
// ServeMux wiring, replacing the teacher's hand-rolled metrics registry
// with github.com/prometheus/client_golang and adding
// github.com/rs/cors for browser-facing dashboards.
package opserver

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"github.com/gasnetwork/agent/log"
)

var opLog = log.Default().Module("opserver")

// ReadinessCheck reports whether a subsystem is ready to serve traffic.
type ReadinessCheck func() (ready bool, detail string)

// Server hosts the internal probe and metrics endpoints.
type Server struct {
	mu     sync.RWMutex
	checks map[string]ReadinessCheck

	startedAt time.Time

	predictionsPublished *prometheus.CounterVec
	predictionsFailed    *prometheus.CounterVec
	blockObservations    *prometheus.CounterVec

	metricsEnabled bool
	registry       *prometheus.Registry
}

// New builds an opserver. When metricsEnabled is false, /metrics
// responds 404 rather than exposing a collector.
func New(metricsEnabled bool) *Server {
	registry := prometheus.NewRegistry()
	s := &Server{
		checks:         make(map[string]ReadinessCheck),
		startedAt:      time.Now(),
		metricsEnabled: metricsEnabled,
		registry:       registry,
		predictionsPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gasnetwork_agent_predictions_published_total",
			Help: "Predictions successfully signed and published, by chain and model.",
		}, []string{"chain", "model"}),
		predictionsFailed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gasnetwork_agent_predictions_failed_total",
			Help: "Predictions that failed computation, signing, or publishing, by chain and model.",
		}, []string{"chain", "model"}),
		blockObservations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gasnetwork_agent_blocks_observed_total",
			Help: "Blocks ingested into the distribution store, by chain.",
		}, []string{"chain"}),
	}
	registry.MustRegister(s.predictionsPublished, s.predictionsFailed, s.blockObservations)
	return s
}

// RegisterReadiness adds a named readiness check. Replaces any existing
// check registered under the same name.
func (s *Server) RegisterReadiness(name string, check ReadinessCheck) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.checks[name] = check
}

// ObservePredictionPublished increments the published-prediction counter.
func (s *Server) ObservePredictionPublished(chainKey, model string) {
	s.predictionsPublished.WithLabelValues(chainKey, model).Inc()
}

// ObservePredictionFailed increments the failed-prediction counter.
func (s *Server) ObservePredictionFailed(chainKey, model string) {
	s.predictionsFailed.WithLabelValues(chainKey, model).Inc()
}

// ObserveBlock increments the observed-block counter.
func (s *Server) ObserveBlock(chainKey string) {
	s.blockObservations.WithLabelValues(chainKey).Inc()
}

type readinessReport struct {
	OverallStatus string                     `json:"status"`
	Subsystems    map[string]subsystemReport `json:"subsystems"`
	UptimeSeconds int64                      `json:"uptime_seconds"`
}

type subsystemReport struct {
	Ready  bool   `json:"ready"`
	Detail string `json:"detail,omitempty"`
}

func (s *Server) readinessReport() readinessReport {
	s.mu.RLock()
	defer s.mu.RUnlock()

	report := readinessReport{
		OverallStatus: "healthy",
		Subsystems:    make(map[string]subsystemReport, len(s.checks)),
		UptimeSeconds: int64(time.Since(s.startedAt).Seconds()),
	}
	for name, check := range s.checks {
		ready, detail := check()
		report.Subsystems[name] = subsystemReport{Ready: ready, Detail: detail}
		if !ready {
			report.OverallStatus = "unhealthy"
		}
	}
	return report
}

// Handler builds the full mux: liveness, readiness, and (if enabled)
// metrics, wrapped in permissive CORS for dashboard consumption.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/internal/probe/liveness", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	mux.HandleFunc("/internal/probe/readiness", func(w http.ResponseWriter, r *http.Request) {
		report := s.readinessReport()
		w.Header().Set("Content-Type", "application/json")
		if report.OverallStatus != "healthy" {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		if err := json.NewEncoder(w).Encode(report); err != nil {
			opLog.Error("readiness encode failed", "err", err)
		}
	})

	if s.metricsEnabled {
		mux.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	}

	return cors.Default().Handler(mux)
}
