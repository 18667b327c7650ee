package http

import (
	"fmt"
	"net/http"
	"runtime"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

var (
	appStartedAtUnix = time.Now().Unix()
	inFlightRequests int64
	metricsMu        sync.Mutex
	httpSeries       = map[httpMetricKey]*httpMetricSeries{}
	dbQuerySeries    = map[dbMetricKey]*dbMetricSeries{}
	upstreamSeries   = map[upstreamMetricKey]*upstreamMetricSeries{}
	summarySeries    = map[summaryMetricKey]*summaryMetricSeries{}
	drilldownSeries  = map[drilldownMetricKey]*drilldownMetricSeries{}
)

func metricsHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")

		metricsMu.Lock()
		keys := make([]httpMetricKey, 0, len(httpSeries))
		for k := range httpSeries {
			keys = append(keys, k)
		}
		sort.Slice(keys, func(i, j int) bool {
			if keys[i].Method != keys[j].Method {
				return keys[i].Method < keys[j].Method
			}
			if keys[i].Path != keys[j].Path {
				return keys[i].Path < keys[j].Path
			}
			return keys[i].Status < keys[j].Status
		})
		snapshot := make([]struct {
			Key    httpMetricKey
			Series httpMetricSeries
		}, 0, len(keys))
		for _, k := range keys {
			snapshot = append(snapshot, struct {
				Key    httpMetricKey
				Series httpMetricSeries
			}{k, *httpSeries[k]})
		}

		dbKeys := make([]dbMetricKey, 0, len(dbQuerySeries))
		for k := range dbQuerySeries {
			dbKeys = append(dbKeys, k)
		}
		sort.Slice(dbKeys, func(i, j int) bool {
			if dbKeys[i].Connector != dbKeys[j].Connector {
				return dbKeys[i].Connector < dbKeys[j].Connector
			}
			return dbKeys[i].Operation < dbKeys[j].Operation
		})
		dbSnapshot := make([]struct {
			Key    dbMetricKey
			Series dbMetricSeries
		}, 0, len(dbKeys))
		for _, k := range dbKeys {
			dbSnapshot = append(dbSnapshot, struct {
				Key    dbMetricKey
				Series dbMetricSeries
			}{k, *dbQuerySeries[k]})
		}

		upKeys := make([]upstreamMetricKey, 0, len(upstreamSeries))
		for k := range upstreamSeries {
			upKeys = append(upKeys, k)
		}
		sort.Slice(upKeys, func(i, j int) bool {
			if upKeys[i].Target != upKeys[j].Target {
				return upKeys[i].Target < upKeys[j].Target
			}
			return upKeys[i].Operation < upKeys[j].Operation
		})
		upSnapshot := make([]struct {
			Key    upstreamMetricKey
			Series upstreamMetricSeries
		}, 0, len(upKeys))
		for _, k := range upKeys {
			upSnapshot = append(upSnapshot, struct {
				Key    upstreamMetricKey
				Series upstreamMetricSeries
			}{k, *upstreamSeries[k]})
		}

		sumKeys := make([]summaryMetricKey, 0, len(summarySeries))
		for k := range summarySeries {
			sumKeys = append(sumKeys, k)
		}
		sort.Slice(sumKeys, func(i, j int) bool {
			if sumKeys[i].Domain != sumKeys[j].Domain {
				return sumKeys[i].Domain < sumKeys[j].Domain
			}
			return sumKeys[i].Source < sumKeys[j].Source
		})
		sumSnapshot := make([]struct {
			Key    summaryMetricKey
			Series summaryMetricSeries
		}, 0, len(sumKeys))
		for _, k := range sumKeys {
			sumSnapshot = append(sumSnapshot, struct {
				Key    summaryMetricKey
				Series summaryMetricSeries
			}{k, *summarySeries[k]})
		}

		ddKeys := make([]drilldownMetricKey, 0, len(drilldownSeries))
		for k := range drilldownSeries {
			ddKeys = append(ddKeys, k)
		}
		sort.Slice(ddKeys, func(i, j int) bool {
			return ddKeys[i].RecordType < ddKeys[j].RecordType
		})
		ddSnapshot := make([]struct {
			Key    drilldownMetricKey
			Series drilldownMetricSeries
		}, 0, len(ddKeys))
		for _, k := range ddKeys {
			ddSnapshot = append(ddSnapshot, struct {
				Key    drilldownMetricKey
				Series drilldownMetricSeries
			}{k, *drilldownSeries[k]})
		}
		metricsMu.Unlock()

		_, _ = fmt.Fprintln(w, "# HELP itad_dashboard_http_requests_total Total HTTP requests handled by this app.")
		_, _ = fmt.Fprintln(w, "# TYPE itad_dashboard_http_requests_total counter")
		for _, it := range snapshot {
			_, _ = fmt.Fprintf(w, "itad_dashboard_http_requests_total{method=%q,path=%q,status=%q} %d\n",
				escapeLabel(it.Key.Method), escapeLabel(it.Key.Path), escapeLabel(it.Key.Status), it.Series.Count)
		}

		_, _ = fmt.Fprintln(w, "# HELP itad_dashboard_http_request_duration_seconds_sum Total duration in seconds for observed requests.")
		_, _ = fmt.Fprintln(w, "# TYPE itad_dashboard_http_request_duration_seconds_sum counter")
		for _, it := range snapshot {
			_, _ = fmt.Fprintf(w, "itad_dashboard_http_request_duration_seconds_sum{method=%q,path=%q,status=%q} %.9f\n",
				escapeLabel(it.Key.Method), escapeLabel(it.Key.Path), escapeLabel(it.Key.Status), it.Series.DurationSecondsSum)
		}

		_, _ = fmt.Fprintln(w, "# HELP itad_dashboard_http_request_duration_seconds_count Number of observed requests in duration series.")
		_, _ = fmt.Fprintln(w, "# TYPE itad_dashboard_http_request_duration_seconds_count counter")
		for _, it := range snapshot {
			_, _ = fmt.Fprintf(w, "itad_dashboard_http_request_duration_seconds_count{method=%q,path=%q,status=%q} %d\n",
				escapeLabel(it.Key.Method), escapeLabel(it.Key.Path), escapeLabel(it.Key.Status), it.Series.Count)
		}

		_, _ = fmt.Fprintln(w, "# HELP itad_dashboard_http_in_flight_requests In-flight HTTP requests currently served by this app.")
		_, _ = fmt.Fprintln(w, "# TYPE itad_dashboard_http_in_flight_requests gauge")
		_, _ = fmt.Fprintf(w, "itad_dashboard_http_in_flight_requests %d\n", atomic.LoadInt64(&inFlightRequests))

		_, _ = fmt.Fprintln(w, "# HELP itad_dashboard_db_query_duration_seconds_sum Database query duration sum in seconds by connector/operation.")
		_, _ = fmt.Fprintln(w, "# TYPE itad_dashboard_db_query_duration_seconds_sum counter")
		for _, it := range dbSnapshot {
			_, _ = fmt.Fprintf(w, "itad_dashboard_db_query_duration_seconds_sum{connector=%q,operation=%q} %.9f\n",
				escapeLabel(it.Key.Connector), escapeLabel(it.Key.Operation), it.Series.DurationSecondsSum)
		}
		_, _ = fmt.Fprintln(w, "# HELP itad_dashboard_db_query_duration_seconds_count Database query observation count by connector/operation.")
		_, _ = fmt.Fprintln(w, "# TYPE itad_dashboard_db_query_duration_seconds_count counter")
		for _, it := range dbSnapshot {
			_, _ = fmt.Fprintf(w, "itad_dashboard_db_query_duration_seconds_count{connector=%q,operation=%q} %d\n",
				escapeLabel(it.Key.Connector), escapeLabel(it.Key.Operation), it.Series.Count)
		}
		_, _ = fmt.Fprintln(w, "# HELP itad_dashboard_db_query_errors_total Database query errors by connector/operation.")
		_, _ = fmt.Fprintln(w, "# TYPE itad_dashboard_db_query_errors_total counter")
		for _, it := range dbSnapshot {
			_, _ = fmt.Fprintf(w, "itad_dashboard_db_query_errors_total{connector=%q,operation=%q} %d\n",
				escapeLabel(it.Key.Connector), escapeLabel(it.Key.Operation), it.Series.Errors)
		}

		_, _ = fmt.Fprintln(w, "# HELP itad_dashboard_upstream_fetch_duration_seconds_sum Upstream fetch duration sum in seconds by target/operation.")
		_, _ = fmt.Fprintln(w, "# TYPE itad_dashboard_upstream_fetch_duration_seconds_sum counter")
		for _, it := range upSnapshot {
			_, _ = fmt.Fprintf(w, "itad_dashboard_upstream_fetch_duration_seconds_sum{target=%q,operation=%q} %.9f\n",
				escapeLabel(it.Key.Target), escapeLabel(it.Key.Operation), it.Series.DurationSecondsSum)
		}
		_, _ = fmt.Fprintln(w, "# HELP itad_dashboard_upstream_fetch_duration_seconds_count Upstream fetch observation count by target/operation.")
		_, _ = fmt.Fprintln(w, "# TYPE itad_dashboard_upstream_fetch_duration_seconds_count counter")
		for _, it := range upSnapshot {
			_, _ = fmt.Fprintf(w, "itad_dashboard_upstream_fetch_duration_seconds_count{target=%q,operation=%q} %d\n",
				escapeLabel(it.Key.Target), escapeLabel(it.Key.Operation), it.Series.Count)
		}
		_, _ = fmt.Fprintln(w, "# HELP itad_dashboard_upstream_fetch_errors_total Upstream fetch errors by target/operation.")
		_, _ = fmt.Fprintln(w, "# TYPE itad_dashboard_upstream_fetch_errors_total counter")
		for _, it := range upSnapshot {
			_, _ = fmt.Fprintf(w, "itad_dashboard_upstream_fetch_errors_total{target=%q,operation=%q} %d\n",
				escapeLabel(it.Key.Target), escapeLabel(it.Key.Operation), it.Series.Errors)
		}

		_, _ = fmt.Fprintln(w, "# HELP itad_dashboard_summary_resolutions_total Summary resolutions by domain and source. A rising computed share signals backend degradation.")
		_, _ = fmt.Fprintln(w, "# TYPE itad_dashboard_summary_resolutions_total counter")
		for _, it := range sumSnapshot {
			_, _ = fmt.Fprintf(w, "itad_dashboard_summary_resolutions_total{domain=%q,source=%q} %d\n",
				escapeLabel(it.Key.Domain), escapeLabel(it.Key.Source), it.Series.Count)
		}
		_, _ = fmt.Fprintln(w, "# HELP itad_dashboard_summary_resolution_duration_seconds_sum Summary resolution duration sum in seconds by domain and source.")
		_, _ = fmt.Fprintln(w, "# TYPE itad_dashboard_summary_resolution_duration_seconds_sum counter")
		for _, it := range sumSnapshot {
			_, _ = fmt.Fprintf(w, "itad_dashboard_summary_resolution_duration_seconds_sum{domain=%q,source=%q} %.9f\n",
				escapeLabel(it.Key.Domain), escapeLabel(it.Key.Source), it.Series.DurationSecondsSum)
		}

		_, _ = fmt.Fprintln(w, "# HELP itad_dashboard_drilldown_runs_total Drill-down query count by record type.")
		_, _ = fmt.Fprintln(w, "# TYPE itad_dashboard_drilldown_runs_total counter")
		for _, it := range ddSnapshot {
			_, _ = fmt.Fprintf(w, "itad_dashboard_drilldown_runs_total{record_type=%q} %d\n",
				escapeLabel(it.Key.RecordType), it.Series.Count)
		}
		_, _ = fmt.Fprintln(w, "# HELP itad_dashboard_drilldown_run_duration_seconds_sum Drill-down query duration sum in seconds by record type.")
		_, _ = fmt.Fprintln(w, "# TYPE itad_dashboard_drilldown_run_duration_seconds_sum counter")
		for _, it := range ddSnapshot {
			_, _ = fmt.Fprintf(w, "itad_dashboard_drilldown_run_duration_seconds_sum{record_type=%q} %.9f\n",
				escapeLabel(it.Key.RecordType), it.Series.DurationSecondsSum)
		}

		uptime := time.Now().Unix() - appStartedAtUnix
		_, _ = fmt.Fprintln(w, "# HELP itad_dashboard_uptime_seconds Process uptime in seconds.")
		_, _ = fmt.Fprintln(w, "# TYPE itad_dashboard_uptime_seconds gauge")
		_, _ = fmt.Fprintf(w, "itad_dashboard_uptime_seconds %d\n", uptime)

		var ms runtime.MemStats
		runtime.ReadMemStats(&ms)
		_, _ = fmt.Fprintln(w, "# HELP itad_dashboard_runtime_goroutines Number of goroutines.")
		_, _ = fmt.Fprintln(w, "# TYPE itad_dashboard_runtime_goroutines gauge")
		_, _ = fmt.Fprintf(w, "itad_dashboard_runtime_goroutines %d\n", runtime.NumGoroutine())
		_, _ = fmt.Fprintln(w, "# HELP itad_dashboard_runtime_memory_alloc_bytes Heap allocation bytes.")
		_, _ = fmt.Fprintln(w, "# TYPE itad_dashboard_runtime_memory_alloc_bytes gauge")
		_, _ = fmt.Fprintf(w, "itad_dashboard_runtime_memory_alloc_bytes %d\n", ms.Alloc)
		_, _ = fmt.Fprintln(w, "# HELP itad_dashboard_runtime_gc_total Total GC runs since process start.")
		_, _ = fmt.Fprintln(w, "# TYPE itad_dashboard_runtime_gc_total counter")
		_, _ = fmt.Fprintf(w, "itad_dashboard_runtime_gc_total %d\n", ms.NumGC)
	})
}

func appMetricsSummaryHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		type endpointRow struct {
			Method  string  `json:"method"`
			Path    string  `json:"path"`
			Status  string  `json:"status"`
			Count   uint64  `json:"count"`
			AvgMS   float64 `json:"avg_ms"`
			TotalMS float64 `json:"total_ms"`
		}
		type dbRow struct {
			Connector string  `json:"connector"`
			Operation string  `json:"operation"`
			Count     uint64  `json:"count"`
			Errors    uint64  `json:"errors"`
			AvgMS     float64 `json:"avg_ms"`
		}
		type sourceRow struct {
			Domain string `json:"domain"`
			Source string `json:"source"`
			Count  uint64 `json:"count"`
		}

		metricsMu.Lock()
		httpRows := make([]endpointRow, 0, len(httpSeries))
		for k, s := range httpSeries {
			avg := 0.0
			if s.Count > 0 {
				avg = (s.DurationSecondsSum / float64(s.Count)) * 1000.0
			}
			httpRows = append(httpRows, endpointRow{
				Method:  k.Method,
				Path:    k.Path,
				Status:  k.Status,
				Count:   s.Count,
				AvgMS:   avg,
				TotalMS: s.DurationSecondsSum * 1000.0,
			})
		}

		dbRows := make([]dbRow, 0, len(dbQuerySeries))
		totalDBErrors := uint64(0)
		for k, s := range dbQuerySeries {
			avg := 0.0
			if s.Count > 0 {
				avg = (s.DurationSecondsSum / float64(s.Count)) * 1000.0
			}
			dbRows = append(dbRows, dbRow{
				Connector: k.Connector,
				Operation: k.Operation,
				Count:     s.Count,
				Errors:    s.Errors,
				AvgMS:     avg,
			})
			totalDBErrors += s.Errors
		}

		upstreamErrors := uint64(0)
		for _, s := range upstreamSeries {
			upstreamErrors += s.Errors
		}

		sourceRows := make([]sourceRow, 0, len(summarySeries))
		for k, s := range summarySeries {
			sourceRows = append(sourceRows, sourceRow{Domain: k.Domain, Source: k.Source, Count: s.Count})
		}
		metricsMu.Unlock()

		sort.Slice(httpRows, func(i, j int) bool { return httpRows[i].AvgMS > httpRows[j].AvgMS })
		sort.Slice(dbRows, func(i, j int) bool { return dbRows[i].AvgMS > dbRows[j].AvgMS })
		sort.Slice(sourceRows, func(i, j int) bool {
			if sourceRows[i].Domain != sourceRows[j].Domain {
				return sourceRows[i].Domain < sourceRows[j].Domain
			}
			return sourceRows[i].Source < sourceRows[j].Source
		})

		topHTTP := httpRows
		if len(topHTTP) > 5 {
			topHTTP = topHTTP[:5]
		}
		topDB := dbRows
		if len(topDB) > 5 {
			topDB = topDB[:5]
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"meta": map[string]any{
				"generated_at": time.Now().UTC(),
			},
			"data": map[string]any{
				"top_http_slowest_avg_ms": topHTTP,
				"top_db_slowest_avg_ms":   topDB,
				"summary_sources":         sourceRows,
				"errors": map[string]any{
					"db_query_total":       totalDBErrors,
					"upstream_fetch_total": upstreamErrors,
				},
			},
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func observabilityMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		atomic.AddInt64(&inFlightRequests, 1)
		defer atomic.AddInt64(&inFlightRequests, -1)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		route := normalizeMetricPath(r.URL.Path)
		sec := time.Since(start).Seconds()
		recordHTTPMetric(r.Method, route, rec.status, sec)
	})
}

func normalizeMetricPath(path string) string {
	switch {
	case path == "/":
		return "/"
	case path == "/metrics":
		return "/metrics"
	case strings.HasPrefix(path, "/api/v1/reports/vendor-mappings/"):
		return "/api/v1/reports/vendor-mappings/{vendor_id}"
	case strings.HasPrefix(path, "/api/v1/reports/presets/"):
		return "/api/v1/reports/presets/{id}"
	default:
		return path
	}
}

type httpMetricKey struct {
	Method string
	Path   string
	Status string
}

type httpMetricSeries struct {
	Count              uint64
	DurationSecondsSum float64
}

type dbMetricKey struct {
	Connector string
	Operation string
}

type dbMetricSeries struct {
	Count              uint64
	Errors             uint64
	DurationSecondsSum float64
}

type upstreamMetricKey struct {
	Target    string
	Operation string
}

type upstreamMetricSeries struct {
	Count              uint64
	Errors             uint64
	DurationSecondsSum float64
}

type summaryMetricKey struct {
	Domain string
	Source string
}

type summaryMetricSeries struct {
	Count              uint64
	DurationSecondsSum float64
}

type drilldownMetricKey struct {
	RecordType string
}

type drilldownMetricSeries struct {
	Count              uint64
	DurationSecondsSum float64
}

func recordHTTPMetric(method, path string, status int, durationSeconds float64) {
	key := httpMetricKey{
		Method: method,
		Path:   path,
		Status: fmt.Sprintf("%d", status),
	}
	metricsMu.Lock()
	defer metricsMu.Unlock()
	row, ok := httpSeries[key]
	if !ok {
		row = &httpMetricSeries{}
		httpSeries[key] = row
	}
	row.Count++
	row.DurationSecondsSum += durationSeconds
}

func recordDBQuery(connector, operation string, durationSeconds float64, err error) {
	if connector == "" || operation == "" {
		return
	}
	key := dbMetricKey{Connector: connector, Operation: operation}
	metricsMu.Lock()
	defer metricsMu.Unlock()
	row, ok := dbQuerySeries[key]
	if !ok {
		row = &dbMetricSeries{}
		dbQuerySeries[key] = row
	}
	row.Count++
	row.DurationSecondsSum += durationSeconds
	if err != nil {
		row.Errors++
	}
}

func recordUpstreamFetch(target, operation string, durationSeconds float64, err error) {
	if target == "" || operation == "" {
		return
	}
	key := upstreamMetricKey{Target: target, Operation: operation}
	metricsMu.Lock()
	defer metricsMu.Unlock()
	row, ok := upstreamSeries[key]
	if !ok {
		row = &upstreamMetricSeries{}
		upstreamSeries[key] = row
	}
	row.Count++
	row.DurationSecondsSum += durationSeconds
	if err != nil {
		row.Errors++
	}
}

func recordSummaryResolution(domain, source string, durationSeconds float64) {
	domain = strings.TrimSpace(strings.ToLower(domain))
	source = strings.TrimSpace(strings.ToLower(source))
	if domain == "" {
		domain = "unknown"
	}
	if source == "" {
		source = "unknown"
	}
	key := summaryMetricKey{Domain: domain, Source: source}
	metricsMu.Lock()
	defer metricsMu.Unlock()
	row, ok := summarySeries[key]
	if !ok {
		row = &summaryMetricSeries{}
		summarySeries[key] = row
	}
	row.Count++
	row.DurationSecondsSum += durationSeconds
}

func recordDrilldownRun(recordType string, durationSeconds float64) {
	recordType = strings.TrimSpace(strings.ToLower(recordType))
	if recordType == "" {
		recordType = "unknown"
	}
	key := drilldownMetricKey{RecordType: recordType}
	metricsMu.Lock()
	defer metricsMu.Unlock()
	row, ok := drilldownSeries[key]
	if !ok {
		row = &drilldownMetricSeries{}
		drilldownSeries[key] = row
	}
	row.Count++
	row.DurationSecondsSum += durationSeconds
}

func escapeLabel(v string) string {
	v = strings.ReplaceAll(v, `\`, `\\`)
	v = strings.ReplaceAll(v, "\n", `\n`)
	v = strings.ReplaceAll(v, `"`, `\"`)
	return v
}
