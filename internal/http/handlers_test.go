package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"go-itad-ops-dashboard/internal/reports"
)

type staticRowSource struct {
	items     []reports.DrilldownItem
	total     int64
	lastQuery reports.DrilldownQuery
}

func (s *staticRowSource) DrilldownItems(_ context.Context, q reports.DrilldownQuery) ([]reports.DrilldownItem, int64, error) {
	s.lastQuery = q
	return s.items, s.total, nil
}

func TestHealthHandler(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rr := httptest.NewRecorder()
	healthHandler(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}

	var payload map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if payload["status"] != "ok" {
		t.Fatalf("expected status ok, got %v", payload["status"])
	}
}

func TestDomainDashboardHandler_DisabledSourcesStillRender(t *testing.T) {
	collector := reports.NewCollector(nil)
	resolver := reports.NewResolver(nil)
	h := domainDashboardHandler("esg", collector, resolver)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/dashboards/esg", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}

	var payload struct {
		Meta map[string]any     `json:"meta"`
		Data reports.ESGSummary `json:"data"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if payload.Meta["source"] != reports.SourceComputed {
		t.Fatalf("expected computed source, got %v", payload.Meta["source"])
	}
	if payload.Data.TotalProcessedWeightLbs != 0 {
		t.Fatalf("expected zero weight, got %v", payload.Data.TotalProcessedWeightLbs)
	}
	if payload.Meta["fetch_errors"] == nil {
		t.Fatalf("expected fetch_errors in meta when the record source is disabled")
	}
}

func TestDomainDashboardHandler_UnknownDomain(t *testing.T) {
	h := domainDashboardHandler("unknown", reports.NewCollector(nil), reports.NewResolver(nil))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/dashboards/unknown", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected status %d, got %d", http.StatusNotFound, rr.Code)
	}
}

func TestCombinedDashboardHandler(t *testing.T) {
	h := combinedDashboardHandler(reports.NewCollector(nil), reports.NewResolver(nil))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/dashboards/summary", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}

	var payload struct {
		Data reports.ResolvedSummaries `json:"data"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if payload.Data.ESGMeta.Source != reports.SourceComputed {
		t.Fatalf("expected computed esg source, got %q", payload.Data.ESGMeta.Source)
	}
	if payload.Data.ComplianceMeta.Source != reports.SourceComputed {
		t.Fatalf("expected computed compliance source, got %q", payload.Data.ComplianceMeta.Source)
	}
}

func TestDrilldownHandler_ReturnsRows(t *testing.T) {
	src := &staticRowSource{
		items: []reports.DrilldownItem{
			{RecordType: "processinglot", ID: "lot-1", NameOrType: "Lot 1", Status: "Pending"},
		},
		total: 1,
	}
	h := drilldownHandler(reports.NewDrilldownService(src, 25, 200))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/drilldown?type=processinglot&status=Pending&from=2024-05-01&to=2024-05-31", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}

	var payload struct {
		Data reports.DrilldownResult `json:"data"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(payload.Data.Rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(payload.Data.Rows))
	}
	if payload.Data.Rows[0].RecordType != "Processing Lot" {
		t.Fatalf("expected Processing Lot label, got %q", payload.Data.Rows[0].RecordType)
	}

	if src.lastQuery.Status != "Pending" {
		t.Fatalf("expected status filter to pass through, got %q", src.lastQuery.Status)
	}
	if src.lastQuery.From == nil || src.lastQuery.From.Format("2006-01-02") != "2024-05-01" {
		t.Fatalf("expected from date 2024-05-01, got %v", src.lastQuery.From)
	}
	// The to filter covers the named day, so the bound is the next morning.
	if src.lastQuery.To == nil || src.lastQuery.To.Format("2006-01-02") != "2024-06-01" {
		t.Fatalf("expected exclusive to bound 2024-06-01, got %v", src.lastQuery.To)
	}
}

func TestDrilldownHandler_UnknownTypeReturnsEmpty(t *testing.T) {
	h := drilldownHandler(reports.NewDrilldownService(&staticRowSource{}, 25, 200))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/drilldown?type=shipment", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}

	var payload struct {
		Data reports.DrilldownResult `json:"data"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(payload.Data.Rows) != 0 {
		t.Fatalf("expected no rows, got %d", len(payload.Data.Rows))
	}
}

func TestVendorMappingsHandler_StoreDisabled(t *testing.T) {
	h := vendorMappingsHandler(200, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/reports/vendor-mappings", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected status %d, got %d", http.StatusServiceUnavailable, rr.Code)
	}

	var payload map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if payload["error"] == nil {
		t.Fatalf("expected error field in response")
	}
}

func TestVendorMappingDetailHandler_EmptyVendorID(t *testing.T) {
	h := vendorMappingDetailHandler(nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/reports/vendor-mappings/", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected status %d, got %d", http.StatusServiceUnavailable, rr.Code)
	}
}

func TestPresetDetailHandler_InvalidID(t *testing.T) {
	h := presetDetailHandler(nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/reports/presets/abc", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected status %d, got %d", http.StatusServiceUnavailable, rr.Code)
	}
}

func TestConversionFactorsHandler(t *testing.T) {
	h := conversionFactorsHandler(testConfig())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/settings/conversion-factors", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}

	var payload struct {
		Data struct {
			Factors reports.ConversionFactors `json:"factors"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if payload.Data.Factors.CO2eLbsPerLb != 0.6 {
		t.Fatalf("expected co2e factor 0.6, got %v", payload.Data.Factors.CO2eLbsPerLb)
	}
	if payload.Data.Factors.WaterGalPerLb != 3.2 {
		t.Fatalf("expected water factor 3.2, got %v", payload.Data.Factors.WaterGalPerLb)
	}
}

func TestServicesStatusHandler_AllDisabled(t *testing.T) {
	h := servicesStatusHandler(nil, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/status/services", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}

	var payload struct {
		Services map[string]map[string]any `json:"services"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	for _, name := range []string{"operations_api", "operations_db", "vendor_mapping"} {
		svc, ok := payload.Services[name]
		if !ok {
			t.Fatalf("expected %s entry in services", name)
		}
		if svc["enabled"] != false {
			t.Fatalf("expected %s to be disabled, got %v", name, svc["enabled"])
		}
	}
}
