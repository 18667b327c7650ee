package opsdb

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"go-itad-ops-dashboard/internal/reports"
)

// DrilldownItems runs one filtered drill-down query directly against the
// operations database. Supported record types map onto the processing_lots
// and processed_materials tables.
func (s *Store) DrilldownItems(ctx context.Context, q reports.DrilldownQuery) ([]reports.DrilldownItem, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	recordType := strings.ToLower(strings.TrimSpace(q.RecordType))
	switch recordType {
	case reports.RecordTypeProcessingLot:
		return s.lotDrilldown(ctx, q)
	case reports.RecordTypeProcessedMaterial:
		return s.materialDrilldown(ctx, q)
	default:
		return nil, 0, fmt.Errorf("unsupported drill-down record type: %s", q.RecordType)
	}
}

func (s *Store) lotDrilldown(ctx context.Context, q reports.DrilldownQuery) ([]reports.DrilldownItem, int64, error) {
	where := "WHERE 1 = 1"
	args := make([]any, 0, 6)

	if status := strings.TrimSpace(q.Status); status != "" {
		where += " AND LOWER(l.certification_status) = LOWER(?)"
		args = append(args, status)
	}
	if q.From != nil {
		where += " AND l.created_at >= ?"
		args = append(args, *q.From)
	}
	if q.To != nil {
		where += " AND l.created_at < ?"
		args = append(args, *q.To)
	}

	vendorClause, vendorArgs, err := s.vendorFilterClause(ctx, q.VendorID, "l.material_stream")
	if err != nil {
		return nil, 0, err
	}
	where += vendorClause
	args = append(args, vendorArgs...)

	var total sql.NullInt64
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM processing_lots l %s;`, where)
	if err := s.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit, offset := limitOffset(q)
	rowsQuery := fmt.Sprintf(`
SELECT
  l.lot_id,
  COALESCE(l.lot_name, l.lot_id) AS lot_name,
  l.created_at,
  COALESCE(NULLIF(l.total_processed_weight_lbs, 0), l.total_incoming_weight_lbs) AS weight_lbs,
  COALESCE(l.certification_status, '') AS certification_status
FROM processing_lots l
%s
ORDER BY l.created_at DESC, l.lot_id DESC
LIMIT ? OFFSET ?;
`, where)
	rowArgs := append(append([]any{}, args...), limit, offset)

	rows, err := s.db.QueryContext(ctx, rowsQuery, rowArgs...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	items := make([]reports.DrilldownItem, 0, limit)
	for rows.Next() {
		var (
			id        string
			name      string
			createdAt sql.NullTime
			weight    sql.NullFloat64
			status    string
		)
		if err := rows.Scan(&id, &name, &createdAt, &weight, &status); err != nil {
			return nil, 0, err
		}
		items = append(items, buildItem(reports.RecordTypeProcessingLot, id, name, createdAt, weight, status))
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return items, nullInt64Value(total), nil
}

func (s *Store) materialDrilldown(ctx context.Context, q reports.DrilldownQuery) ([]reports.DrilldownItem, int64, error) {
	where := "WHERE 1 = 1"
	args := make([]any, 0, 6)

	if status := strings.TrimSpace(q.Status); status != "" {
		where += " AND LOWER(m.status) = LOWER(?)"
		args = append(args, status)
	}
	if q.From != nil {
		where += " AND m.created_at >= ?"
		args = append(args, *q.From)
	}
	if q.To != nil {
		where += " AND m.created_at < ?"
		args = append(args, *q.To)
	}

	vendorClause, vendorArgs, err := s.vendorFilterClause(ctx, q.VendorID, "m.material_type")
	if err != nil {
		return nil, 0, err
	}
	where += vendorClause
	args = append(args, vendorArgs...)

	var total sql.NullInt64
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM processed_materials m %s;`, where)
	if err := s.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit, offset := limitOffset(q)
	rowsQuery := fmt.Sprintf(`
SELECT
  m.material_id,
  COALESCE(m.material_type, '') AS material_type,
  m.created_at,
  COALESCE(NULLIF(m.weight_lbs, 0), m.weight) AS weight_lbs,
  COALESCE(m.status, '') AS status
FROM processed_materials m
%s
ORDER BY m.created_at DESC, m.material_id DESC
LIMIT ? OFFSET ?;
`, where)
	rowArgs := append(append([]any{}, args...), limit, offset)

	rows, err := s.db.QueryContext(ctx, rowsQuery, rowArgs...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	items := make([]reports.DrilldownItem, 0, limit)
	for rows.Next() {
		var (
			id        string
			matType   string
			createdAt sql.NullTime
			weight    sql.NullFloat64
			status    string
		)
		if err := rows.Scan(&id, &matType, &createdAt, &weight, &status); err != nil {
			return nil, 0, err
		}
		items = append(items, buildItem(reports.RecordTypeProcessedMaterial, id, matType, createdAt, weight, status))
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return items, nullInt64Value(total), nil
}

// vendorFilterClause scopes a drill-down query to the material streams mapped
// to a downstream vendor. A vendor with no mapped streams matches nothing.
func (s *Store) vendorFilterClause(ctx context.Context, vendorID, column string) (string, []any, error) {
	trimmed := strings.TrimSpace(vendorID)
	if trimmed == "" || strings.EqualFold(trimmed, "all") {
		return "", nil, nil
	}
	if s.vendorMap == nil {
		return " AND 1 = 0", nil, nil
	}

	streams, err := s.vendorMap.StreamsForVendor(ctx, trimmed)
	if err != nil {
		return "", nil, err
	}
	if len(streams) == 0 {
		return " AND 1 = 0", nil, nil
	}

	placeholders := make([]string, 0, len(streams))
	args := make([]any, 0, len(streams))
	for _, stream := range streams {
		placeholders = append(placeholders, "?")
		args = append(args, stream)
	}
	return fmt.Sprintf(" AND %s IN (%s)", column, strings.Join(placeholders, ",")), args, nil
}

func buildItem(recordType, id, name string, createdAt sql.NullTime, weight sql.NullFloat64, status string) reports.DrilldownItem {
	item := reports.DrilldownItem{
		RecordType: recordType,
		ID:         id,
		NameOrType: name,
		Status:     status,
	}
	if createdAt.Valid {
		item.Date = reports.Timestamp{Value: createdAt.Time.UTC(), Set: true}
	}
	if weight.Valid {
		item.WeightLbs = reports.Quantity{Value: weight.Float64, Set: true}
	}
	return item
}

func limitOffset(q reports.DrilldownQuery) (int, int) {
	page := q.Page
	if page < 1 {
		page = reports.DefaultDrilldownPage
	}
	size := q.PageSize
	if size < 1 {
		size = reports.DefaultDrilldownPageSize
	}
	return size, (page - 1) * size
}

func nullInt64Value(v sql.NullInt64) int64 {
	if !v.Valid {
		return 0
	}
	return v.Int64
}

var _ reports.RowSource = (*Store)(nil)
