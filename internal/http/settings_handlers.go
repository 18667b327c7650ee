package http

import (
	nethttp "net/http"

	"go-itad-ops-dashboard/internal/config"
	"go-itad-ops-dashboard/internal/reports"
)

func conversionFactorsHandler(cfg config.Config) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, _ *nethttp.Request) {
		writeJSON(w, nethttp.StatusOK, map[string]any{
			"data": map[string]any{
				"factors":                     reports.DefaultConversionFactors(),
				"certification_due_after_sec": int64(reports.CertificationDueAfter.Seconds()),
				"drilldown_default_page_size": cfg.DrilldownDefaultPageSize,
				"drilldown_max_page_size":     cfg.DrilldownMaxPageSize,
			},
		})
	}
}
