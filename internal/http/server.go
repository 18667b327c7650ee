package http

import (
	"context"
	"encoding/json"
	"fmt"
	nethttp "net/http"
	"strconv"
	"strings"
	"time"

	"go-itad-ops-dashboard/internal/config"
	opsapistore "go-itad-ops-dashboard/internal/connectors/opsapi"
	opsdbstore "go-itad-ops-dashboard/internal/connectors/opsdb"
	"go-itad-ops-dashboard/internal/connectors/vendormap"
	"go-itad-ops-dashboard/internal/reports"
)

// Server wraps an HTTP server and route handlers.
type Server struct {
	httpServer *nethttp.Server
	opsClient  *opsapistore.Client
	opsDB      *opsdbstore.Store
	vendorMap  *vendormap.Store
}

// NewServer creates a configured HTTP server with v1 endpoints.
func NewServer(cfg config.Config) (*Server, error) {
	var opsClient *opsapistore.Client
	if cfg.OpsAPIEnabled {
		opsClient = opsapistore.NewClient(cfg.OpsAPIBaseURL, cfg.OpsAPIToken, cfg.OpsAPITimeout)
	}

	var vendorStore *vendormap.Store
	if path := strings.TrimSpace(cfg.VendorMapSQLitePath); path != "" {
		createdStore, err := vendormap.NewSQLiteStore(path)
		if err != nil {
			return nil, err
		}
		vendorStore = createdStore
	}

	var dbStore *opsdbstore.Store
	if cfg.OpsDBEnabled {
		createdStore, err := opsdbstore.NewStore(cfg, vendorStore)
		if err != nil {
			if vendorStore != nil {
				_ = vendorStore.Close()
			}
			return nil, err
		}
		dbStore = createdStore
	}

	collector := reports.NewCollector(recordSourceOrNil(opsClient))
	resolver := reports.NewResolver(summarySourceOrNil(opsClient))

	// Drill-down prefers the direct database when configured; the API
	// endpoint covers deployments without DB credentials.
	var rowSource reports.RowSource
	if dbStore != nil {
		rowSource = dbStore
	} else if opsClient != nil && opsClient.Enabled() {
		rowSource = opsClient
	}
	drilldown := reports.NewDrilldownService(rowSource, cfg.DrilldownDefaultPageSize, cfg.DrilldownMaxPageSize)

	mux := nethttp.NewServeMux()

	mux.HandleFunc("/", dashboardHandler)
	mux.HandleFunc("/favicon.ico", faviconHandler)
	mux.Handle("/metrics", metricsHandler())
	mux.HandleFunc("/api/v1/metrics/app", appMetricsSummaryHandler())
	mux.HandleFunc("/health", healthHandler)
	mux.HandleFunc("/ready", readyHandler)
	mux.HandleFunc("/api/v1/dashboards/esg", domainDashboardHandler("esg", collector, resolver))
	mux.HandleFunc("/api/v1/dashboards/financial", domainDashboardHandler("financial", collector, resolver))
	mux.HandleFunc("/api/v1/dashboards/compliance", domainDashboardHandler("compliance", collector, resolver))
	mux.HandleFunc("/api/v1/dashboards/summary", combinedDashboardHandler(collector, resolver))
	mux.HandleFunc("/api/v1/records/raw", rawRecordsHandler(collector))
	mux.HandleFunc("/api/v1/drilldown", drilldownHandler(drilldown))
	mux.HandleFunc("/api/v1/reports/vendor-mappings", vendorMappingsHandler(cfg.DrilldownMaxPageSize, vendorStore))
	mux.HandleFunc("/api/v1/reports/vendor-mappings/", vendorMappingDetailHandler(vendorStore))
	mux.HandleFunc("/api/v1/reports/presets", presetsHandler(cfg.DrilldownMaxPageSize, vendorStore))
	mux.HandleFunc("/api/v1/reports/presets/", presetDetailHandler(vendorStore))
	mux.HandleFunc("/api/v1/status/services", servicesStatusHandler(opsClient, dbStore, vendorStore))
	mux.HandleFunc("/api/v1/settings/conversion-factors", conversionFactorsHandler(cfg))

	httpServer := &nethttp.Server{
		Addr:         cfg.ListenAddr,
		Handler:      loggingMiddleware(observabilityMiddleware(mux)),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return &Server{
		httpServer: httpServer,
		opsClient:  opsClient,
		opsDB:      dbStore,
		vendorMap:  vendorStore,
	}, nil
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.opsDB != nil {
		_ = s.opsDB.Close()
	}
	if s.vendorMap != nil {
		_ = s.vendorMap.Close()
	}
	return s.httpServer.Shutdown(ctx)
}

func recordSourceOrNil(c *opsapistore.Client) reports.RecordSource {
	if c == nil || !c.Enabled() {
		return nil
	}
	return c
}

func summarySourceOrNil(c *opsapistore.Client) reports.SummarySource {
	if c == nil || !c.Enabled() {
		return nil
	}
	return c
}

func healthHandler(w nethttp.ResponseWriter, _ *nethttp.Request) {
	writeJSON(w, nethttp.StatusOK, map[string]any{
		"status": "ok",
		"time":   time.Now().UTC(),
	})
}

func readyHandler(w nethttp.ResponseWriter, _ *nethttp.Request) {
	writeJSON(w, nethttp.StatusOK, map[string]any{
		"status": "ready",
	})
}

func loggingMiddleware(next nethttp.Handler) nethttp.Handler {
	return nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: nethttp.StatusOK}
		next.ServeHTTP(rec, r)
		fmt.Printf("%s %s %s %s\n", r.Method, r.URL.Path, strconv.Itoa(rec.status), time.Since(start))
	})
}

func writeJSON(w nethttp.ResponseWriter, code int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(payload)
}
