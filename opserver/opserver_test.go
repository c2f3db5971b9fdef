package opserver

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestLivenessAlwaysOK(t *testing.T) {
	s := New(false)
	req := httptest.NewRequest(http.MethodGet, "/internal/probe/liveness", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("got status %d, want 200", rec.Code)
	}
}

func TestReadinessHealthyWithNoChecks(t *testing.T) {
	s := New(false)
	req := httptest.NewRequest(http.MethodGet, "/internal/probe/readiness", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("got status %d, want 200", rec.Code)
	}
	var report readinessReport
	if err := json.Unmarshal(rec.Body.Bytes(), &report); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if report.OverallStatus != "healthy" {
		t.Errorf("got status %q, want healthy", report.OverallStatus)
	}
}

func TestReadinessUnhealthyWhenCheckFails(t *testing.T) {
	s := New(false)
	s.RegisterReadiness("rpc", func() (bool, string) { return false, "endpoint unreachable" })

	req := httptest.NewRequest(http.MethodGet, "/internal/probe/readiness", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("got status %d, want 503", rec.Code)
	}
}

func TestMetricsDisabledReturns404(t *testing.T) {
	s := New(false)
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("got status %d, want 404", rec.Code)
	}
}

func TestMetricsEnabledServesPrometheusFormat(t *testing.T) {
	s := New(true)
	s.ObserveBlock("ethereum/mainnet")

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("got status %d, want 200", rec.Code)
	}
}
