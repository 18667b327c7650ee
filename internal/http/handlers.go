package http

import (
	"database/sql"
	"encoding/json"
	"errors"
	nethttp "net/http"
	"strconv"
	"strings"
	"time"

	"go-itad-ops-dashboard/internal/connectors/vendormap"
	"go-itad-ops-dashboard/internal/reports"
)

type replaceStreamsRequest struct {
	Streams []string `json:"streams"`
}

type savePresetRequest struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	RecordType  string         `json:"record_type"`
	Config      map[string]any `json:"config"`
}

func domainDashboardHandler(domain string, collector *reports.Collector, resolver *reports.Resolver) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		start := time.Now()
		rec := collector.Collect(r.Context())
		recordUpstreamFetch("opsapi", "CollectRecords", time.Since(start).Seconds(), nil)

		var (
			data any
			res  reports.Resolution
		)
		resolveStart := time.Now()
		switch domain {
		case "esg":
			data, res = resolver.ResolveESG(r.Context(), rec)
		case "financial":
			data, res = resolver.ResolveFinancial(r.Context(), rec)
		case "compliance":
			data, res = resolver.ResolveCompliance(r.Context(), rec)
		default:
			writeJSON(w, nethttp.StatusNotFound, map[string]any{"error": "unknown dashboard domain"})
			return
		}
		recordSummaryResolution(domain, res.Source, time.Since(resolveStart).Seconds())

		meta := map[string]any{
			"generated_at":  time.Now().UTC(),
			"source":        res.Source,
			"record_counts": rec.Counts(),
		}
		if res.FallbackReason != "" {
			meta["fallback_reason"] = res.FallbackReason
		}
		if len(rec.Errors) > 0 {
			meta["fetch_errors"] = rec.Errors
		}

		writeJSON(w, nethttp.StatusOK, map[string]any{
			"meta": meta,
			"data": data,
		})
	}
}

func combinedDashboardHandler(collector *reports.Collector, resolver *reports.Resolver) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		start := time.Now()
		rec := collector.Collect(r.Context())
		recordUpstreamFetch("opsapi", "CollectRecords", time.Since(start).Seconds(), nil)

		resolveStart := time.Now()
		resolved := resolver.Resolve(r.Context(), rec)
		sec := time.Since(resolveStart).Seconds() / 3
		recordSummaryResolution("esg", resolved.ESGMeta.Source, sec)
		recordSummaryResolution("financial", resolved.FinancialMeta.Source, sec)
		recordSummaryResolution("compliance", resolved.ComplianceMeta.Source, sec)

		meta := map[string]any{
			"generated_at":  time.Now().UTC(),
			"record_counts": rec.Counts(),
		}
		if len(rec.Errors) > 0 {
			meta["fetch_errors"] = rec.Errors
		}

		writeJSON(w, nethttp.StatusOK, map[string]any{
			"meta": meta,
			"data": resolved,
		})
	}
}

func rawRecordsHandler(collector *reports.Collector) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		start := time.Now()
		rec := collector.Collect(r.Context())
		recordUpstreamFetch("opsapi", "CollectRecords", time.Since(start).Seconds(), nil)

		writeJSON(w, nethttp.StatusOK, map[string]any{
			"meta": map[string]any{
				"generated_at":  time.Now().UTC(),
				"record_counts": rec.Counts(),
			},
			"data": rec,
		})
	}
}

func drilldownHandler(svc *reports.DrilldownService) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		query := r.URL.Query()

		q := reports.DrilldownQuery{
			Title:      strings.TrimSpace(query.Get("title")),
			RecordType: strings.TrimSpace(query.Get("type")),
			Status:     strings.TrimSpace(query.Get("status")),
			VendorID:   strings.TrimSpace(query.Get("vendor_id")),
			Page:       parsePositiveInt(query.Get("page"), 0),
			PageSize:   parsePositiveInt(query.Get("page_size"), 0),
		}
		if from, ok := parseReportDate(query.Get("from")); ok {
			q.From = &from
		}
		if to, ok := parseReportDate(query.Get("to")); ok {
			// Exclusive upper bound covering the whole day named.
			end := to.AddDate(0, 0, 1)
			q.To = &end
		}

		start := time.Now()
		result := svc.Query(r.Context(), q)
		recordDrilldownRun(strings.ToLower(q.RecordType), time.Since(start).Seconds())

		writeJSON(w, nethttp.StatusOK, map[string]any{
			"meta": map[string]any{
				"generated_at": time.Now().UTC(),
				"count":        len(result.Rows),
			},
			"data": result,
		})
	}
}

func vendorMappingsHandler(defaultLimit int, store *vendormap.Store) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		if store == nil {
			writeJSON(w, nethttp.StatusServiceUnavailable, map[string]any{
				"error": "vendor mapping store disabled (set APP_VENDOR_MAP_SQLITE_PATH)",
			})
			return
		}
		if r.Method != nethttp.MethodGet {
			writeJSON(w, nethttp.StatusMethodNotAllowed, map[string]any{"error": "method not allowed"})
			return
		}

		limit := parseLimit(r, defaultLimit)
		start := time.Now()
		items, err := store.ListVendors(r.Context(), limit)
		recordDBQuery("appsqlite", "ListVendors", time.Since(start).Seconds(), err)
		if err != nil {
			writeJSON(w, nethttp.StatusInternalServerError, map[string]any{"error": "failed to list vendors"})
			return
		}

		writeJSON(w, nethttp.StatusOK, map[string]any{
			"meta": map[string]any{"limit": limit, "count": len(items)},
			"data": items,
		})
	}
}

func vendorMappingDetailHandler(store *vendormap.Store) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		if store == nil {
			writeJSON(w, nethttp.StatusServiceUnavailable, map[string]any{
				"error": "vendor mapping store disabled (set APP_VENDOR_MAP_SQLITE_PATH)",
			})
			return
		}

		vendorID := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/v1/reports/vendor-mappings/"), "/")
		if vendorID == "" {
			writeJSON(w, nethttp.StatusNotFound, map[string]any{"error": "not found"})
			return
		}

		switch r.Method {
		case nethttp.MethodGet:
			start := time.Now()
			streams, err := store.StreamsForVendor(r.Context(), vendorID)
			recordDBQuery("appsqlite", "StreamsForVendor", time.Since(start).Seconds(), err)
			if err != nil {
				writeJSON(w, nethttp.StatusInternalServerError, map[string]any{"error": "failed to fetch vendor mapping"})
				return
			}
			writeJSON(w, nethttp.StatusOK, map[string]any{
				"data": vendormap.Mapping{VendorID: vendorID, Streams: streams},
			})
		case nethttp.MethodPut:
			var req replaceStreamsRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				writeJSON(w, nethttp.StatusBadRequest, map[string]any{"error": "invalid JSON body"})
				return
			}
			start := time.Now()
			count, err := store.ReplaceStreams(r.Context(), vendorID, req.Streams)
			recordDBQuery("appsqlite", "ReplaceStreams", time.Since(start).Seconds(), err)
			if err != nil {
				writeJSON(w, nethttp.StatusInternalServerError, map[string]any{"error": "failed to replace vendor streams"})
				return
			}
			writeJSON(w, nethttp.StatusOK, map[string]any{
				"data": map[string]any{"vendor_id": vendorID, "stream_count": count},
			})
		case nethttp.MethodDelete:
			start := time.Now()
			removed, err := store.DeleteVendor(r.Context(), vendorID)
			recordDBQuery("appsqlite", "DeleteVendor", time.Since(start).Seconds(), err)
			if err != nil {
				writeJSON(w, nethttp.StatusInternalServerError, map[string]any{"error": "failed to delete vendor mapping"})
				return
			}
			writeJSON(w, nethttp.StatusOK, map[string]any{
				"data": map[string]any{"vendor_id": vendorID, "removed": removed},
			})
		default:
			writeJSON(w, nethttp.StatusMethodNotAllowed, map[string]any{"error": "method not allowed"})
		}
	}
}

func presetsHandler(defaultLimit int, store *vendormap.Store) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		if store == nil {
			writeJSON(w, nethttp.StatusServiceUnavailable, map[string]any{
				"error": "vendor mapping store disabled (set APP_VENDOR_MAP_SQLITE_PATH)",
			})
			return
		}

		switch r.Method {
		case nethttp.MethodGet:
			limit := parseLimit(r, defaultLimit)
			start := time.Now()
			items, err := store.ListPresets(r.Context(), limit)
			recordDBQuery("appsqlite", "ListPresets", time.Since(start).Seconds(), err)
			if err != nil {
				writeJSON(w, nethttp.StatusInternalServerError, map[string]any{"error": "failed to list presets"})
				return
			}
			writeJSON(w, nethttp.StatusOK, map[string]any{
				"meta": map[string]any{"limit": limit, "count": len(items)},
				"data": items,
			})
		case nethttp.MethodPost:
			var req savePresetRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				writeJSON(w, nethttp.StatusBadRequest, map[string]any{"error": "invalid JSON body"})
				return
			}
			configJSON, err := json.Marshal(req.Config)
			if err != nil || len(req.Config) == 0 {
				writeJSON(w, nethttp.StatusBadRequest, map[string]any{"error": "config is required"})
				return
			}
			start := time.Now()
			id, err := store.UpsertPreset(r.Context(), req.Name, req.Description, req.RecordType, string(configJSON))
			recordDBQuery("appsqlite", "UpsertPreset", time.Since(start).Seconds(), err)
			if err != nil {
				writeJSON(w, nethttp.StatusBadRequest, map[string]any{"error": err.Error()})
				return
			}
			writeJSON(w, nethttp.StatusOK, map[string]any{
				"data": map[string]any{"id": id},
			})
		default:
			writeJSON(w, nethttp.StatusMethodNotAllowed, map[string]any{"error": "method not allowed"})
		}
	}
}

func presetDetailHandler(store *vendormap.Store) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		if store == nil {
			writeJSON(w, nethttp.StatusServiceUnavailable, map[string]any{
				"error": "vendor mapping store disabled (set APP_VENDOR_MAP_SQLITE_PATH)",
			})
			return
		}

		raw := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/v1/reports/presets/"), "/")
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			writeJSON(w, nethttp.StatusNotFound, map[string]any{"error": "not found"})
			return
		}

		switch r.Method {
		case nethttp.MethodGet:
			start := time.Now()
			item, err := store.GetPreset(r.Context(), id)
			recordDBQuery("appsqlite", "GetPreset", time.Since(start).Seconds(), err)
			if err != nil {
				if errors.Is(err, sql.ErrNoRows) {
					writeJSON(w, nethttp.StatusNotFound, map[string]any{"error": "preset not found"})
					return
				}
				writeJSON(w, nethttp.StatusInternalServerError, map[string]any{"error": "failed to fetch preset"})
				return
			}
			writeJSON(w, nethttp.StatusOK, map[string]any{"data": item})
		case nethttp.MethodDelete:
			start := time.Now()
			removed, err := store.DeletePreset(r.Context(), id)
			recordDBQuery("appsqlite", "DeletePreset", time.Since(start).Seconds(), err)
			if err != nil {
				writeJSON(w, nethttp.StatusInternalServerError, map[string]any{"error": "failed to delete preset"})
				return
			}
			if removed == 0 {
				writeJSON(w, nethttp.StatusNotFound, map[string]any{"error": "preset not found"})
				return
			}
			writeJSON(w, nethttp.StatusOK, map[string]any{
				"data": map[string]any{"id": id, "removed": removed},
			})
		default:
			writeJSON(w, nethttp.StatusMethodNotAllowed, map[string]any{"error": "method not allowed"})
		}
	}
}

func parseReportDate(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	parsed, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, false
	}
	return parsed.UTC(), true
}

func parsePositiveInt(raw string, fallback int) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}

func parseLimit(r *nethttp.Request, defaultLimit int) int {
	limit := defaultLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err == nil && parsed > 0 && parsed <= 1000 {
			limit = parsed
		}
	}
	return limit
}
