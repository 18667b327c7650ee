package http

import nethttp "net/http"

func dashboardHandler(w nethttp.ResponseWriter, r *nethttp.Request) {
	if r.URL.Path != "/" {
		nethttp.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(nethttp.StatusOK)
	_, _ = w.Write([]byte(dashboardHTML))
}

func faviconHandler(w nethttp.ResponseWriter, _ *nethttp.Request) {
	w.WriteHeader(nethttp.StatusNoContent)
}

const dashboardHTML = `<!doctype html>
<html lang="en">
<head>
  <meta charset="utf-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <title>ITAD Ops Dashboard API</title>
  <style>
    body { font-family: -apple-system, "Segoe UI", sans-serif; margin: 2rem auto; max-width: 46rem; color: #1c2733; }
    h1 { font-size: 1.4rem; }
    code { background: #eef2f6; padding: 0.1rem 0.35rem; border-radius: 3px; }
    li { margin: 0.35rem 0; }
  </style>
</head>
<body>
  <h1>ITAD Ops Dashboard API</h1>
  <p>Reporting backend for ESG, financial and compliance dashboards.</p>
  <ul>
    <li><code>GET /api/v1/dashboards/esg</code></li>
    <li><code>GET /api/v1/dashboards/financial</code></li>
    <li><code>GET /api/v1/dashboards/compliance</code></li>
    <li><code>GET /api/v1/dashboards/summary</code></li>
    <li><code>GET /api/v1/drilldown?type=processinglot</code></li>
    <li><code>GET /api/v1/records/raw</code></li>
    <li><code>GET /api/v1/reports/vendor-mappings</code></li>
    <li><code>GET /api/v1/reports/presets</code></li>
    <li><code>GET /api/v1/status/services</code></li>
    <li><code>GET /api/v1/settings/conversion-factors</code></li>
    <li><code>GET /metrics</code></li>
  </ul>
</body>
</html>
`
