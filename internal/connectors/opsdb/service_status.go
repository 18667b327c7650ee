package opsdb

import (
	"context"
	"database/sql"
	"time"
)

// ServiceStats contains lightweight DB health and volume counters.
type ServiceStats struct {
	PingMS             int64 `json:"ping_ms"`
	UptimeSeconds      int64 `json:"uptime_seconds"`
	ProcessingLots     int64 `json:"processing_lots"`
	ProcessedMaterials int64 `json:"processed_materials"`
	LotsCompleted7d    int64 `json:"lots_completed_7d"`
}

// ServiceStats returns MySQL health and high-level record counters.
func (s *Store) ServiceStats(ctx context.Context) (*ServiceStats, error) {
	ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	start := time.Now()
	if err := s.db.PingContext(ctx); err != nil {
		return nil, err
	}

	out := &ServiceStats{
		PingMS: time.Since(start).Milliseconds(),
	}

	var statusName string
	var statusValue sql.NullString
	if err := s.db.QueryRowContext(ctx, `SHOW GLOBAL STATUS LIKE 'Uptime';`).Scan(&statusName, &statusValue); err == nil && statusValue.Valid {
		if v, err := time.ParseDuration(statusValue.String + "s"); err == nil {
			out.UptimeSeconds = int64(v.Seconds())
		}
	}

	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM processing_lots;`).Scan(&out.ProcessingLots); err != nil {
		return nil, err
	}
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM processed_materials;`).Scan(&out.ProcessedMaterials); err != nil {
		return nil, err
	}

	var completed7d sql.NullInt64
	if err := s.db.QueryRowContext(ctx, `
SELECT COUNT(*)
FROM processing_lots
WHERE completed_at IS NOT NULL
  AND completed_at >= UTC_TIMESTAMP() - INTERVAL 7 DAY;
	`).Scan(&completed7d); err != nil {
		return nil, err
	}
	if completed7d.Valid {
		out.LotsCompleted7d = completed7d.Int64
	}

	return out, nil
}
