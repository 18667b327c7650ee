package http

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go-itad-ops-dashboard/internal/config"
)

func testConfig() config.Config {
	return config.Config{
		ListenAddr:               ":0",
		ReadTimeout:              5 * time.Second,
		WriteTimeout:             10 * time.Second,
		ShutdownTimeout:          5 * time.Second,
		DrilldownDefaultPageSize: 25,
		DrilldownMaxPageSize:     200,
	}
}

func TestNewServer_AllIntegrationsDisabled(t *testing.T) {
	srv, err := NewServer(testConfig())
	if err != nil {
		t.Fatalf("failed to create server: %v", err)
	}

	// Dashboards still answer with computed zeros when everything upstream
	// is disabled.
	req := httptest.NewRequest(http.MethodGet, "/api/v1/dashboards/summary", nil)
	rr := httptest.NewRecorder()
	srv.httpServer.Handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}
}

func TestServerRoutes(t *testing.T) {
	srv, err := NewServer(testConfig())
	if err != nil {
		t.Fatalf("failed to create server: %v", err)
	}

	cases := []struct {
		path string
		want int
	}{
		{"/health", http.StatusOK},
		{"/ready", http.StatusOK},
		{"/", http.StatusOK},
		{"/metrics", http.StatusOK},
		{"/api/v1/metrics/app", http.StatusOK},
		{"/api/v1/dashboards/esg", http.StatusOK},
		{"/api/v1/dashboards/financial", http.StatusOK},
		{"/api/v1/dashboards/compliance", http.StatusOK},
		{"/api/v1/records/raw", http.StatusOK},
		{"/api/v1/drilldown?type=processinglot", http.StatusOK},
		{"/api/v1/status/services", http.StatusOK},
		{"/api/v1/settings/conversion-factors", http.StatusOK},
		{"/api/v1/reports/vendor-mappings", http.StatusServiceUnavailable},
		{"/api/v1/reports/presets", http.StatusServiceUnavailable},
		{"/no-such-route", http.StatusNotFound},
	}

	for _, tc := range cases {
		t.Run(tc.path, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tc.path, nil)
			rr := httptest.NewRecorder()
			srv.httpServer.Handler.ServeHTTP(rr, req)

			if rr.Code != tc.want {
				t.Fatalf("expected status %d for %s, got %d", tc.want, tc.path, rr.Code)
			}
		})
	}
}
