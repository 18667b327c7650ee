package http

import (
	"context"
	nethttp "net/http"
	"time"

	opsapistore "go-itad-ops-dashboard/internal/connectors/opsapi"
	opsdbstore "go-itad-ops-dashboard/internal/connectors/opsdb"
	"go-itad-ops-dashboard/internal/connectors/vendormap"
)

func servicesStatusHandler(opsClient *opsapistore.Client, dbStore *opsdbstore.Store, vendorStore *vendormap.Store) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 8*time.Second)
		defer cancel()

		payload := map[string]any{
			"generated_at": time.Now().UTC(),
			"services":     map[string]any{},
		}
		services := payload["services"].(map[string]any)

		services["operations_api"] = opsAPIStatus(ctx, opsClient)
		services["operations_db"] = opsDBStatus(ctx, dbStore)
		services["vendor_mapping"] = vendorMapStatus(ctx, vendorStore)

		writeJSON(w, nethttp.StatusOK, payload)
	}
}

func opsAPIStatus(ctx context.Context, opsClient *opsapistore.Client) map[string]any {
	if opsClient == nil || !opsClient.Enabled() {
		return map[string]any{"enabled": false, "ok": false, "error": "operations api integration disabled"}
	}

	start := time.Now()
	stats, err := opsClient.ServiceStats(ctx)
	recordUpstreamFetch("opsapi", "ServiceStats", time.Since(start).Seconds(), err)
	if err != nil {
		return map[string]any{"enabled": true, "ok": false, "error": err.Error()}
	}
	return map[string]any{"enabled": true, "ok": true, "stats": stats}
}

func opsDBStatus(ctx context.Context, dbStore *opsdbstore.Store) map[string]any {
	if dbStore == nil {
		return map[string]any{"enabled": false, "ok": false, "error": "operations database integration disabled"}
	}

	start := time.Now()
	stats, err := dbStore.ServiceStats(ctx)
	recordDBQuery("opsdb", "ServiceStats", time.Since(start).Seconds(), err)
	if err != nil {
		return map[string]any{"enabled": true, "ok": false, "error": err.Error()}
	}
	return map[string]any{"enabled": true, "ok": true, "stats": stats}
}

func vendorMapStatus(ctx context.Context, vendorStore *vendormap.Store) map[string]any {
	if vendorStore == nil {
		return map[string]any{"enabled": false, "ok": false, "error": "vendor mapping store disabled"}
	}

	start := time.Now()
	vendors, err := vendorStore.ListVendors(ctx, 1000)
	recordDBQuery("appsqlite", "ListVendors", time.Since(start).Seconds(), err)
	if err != nil {
		return map[string]any{"enabled": true, "ok": false, "error": err.Error()}
	}
	return map[string]any{
		"enabled":     true,
		"ok":          true,
		"sqlite_path": vendorStore.Path(),
		"vendors":     len(vendors),
	}
}
