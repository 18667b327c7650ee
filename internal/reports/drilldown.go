package reports

import (
	"context"
	"strings"
	"time"
)

// Record type selectors accepted by drill-down queries. The set is closed;
// unknown selectors short-circuit to an empty result without issuing a
// request.
const (
	RecordTypeProcessingLot     = "processinglot"
	RecordTypeProcessedMaterial = "processedmaterial"
)

// Display labels for normalized rows.
const (
	LabelProcessingLot     = "Processing Lot"
	LabelProcessedMaterial = "Processed Material"
)

// Drill-down paging defaults applied when a query leaves them unset.
const (
	DefaultDrilldownPage     = 1
	DefaultDrilldownPageSize = 25
)

// DrilldownQuery describes one drill-down request from a summary tile.
type DrilldownQuery struct {
	Title      string
	RecordType string
	Status     string
	VendorID   string
	From       *time.Time
	To         *time.Time
	Page       int
	PageSize   int
}

// DrilldownItem is the wire shape of one underlying record as returned by
// the drill-down endpoint or the direct database source. The recordType
// discriminant decides how the item normalizes into a row.
type DrilldownItem struct {
	RecordType string    `json:"recordType"`
	ID         string    `json:"id"`
	NameOrType string    `json:"nameOrType"`
	Date       Timestamp `json:"date"`
	WeightLbs  Quantity  `json:"weightLbs"`
	Status     string    `json:"status"`
}

// DrilldownRow is the uniform projection rendered in drill-down tables.
// Weight and date may be absent; they render as placeholders downstream,
// never as errors.
type DrilldownRow struct {
	ID         string     `json:"id"`
	RecordType string     `json:"recordType"`
	Name       string     `json:"name"`
	Date       *time.Time `json:"date"`
	WeightLbs  *float64   `json:"weightLbs"`
	Status     string     `json:"status"`
}

// DrilldownResult is one page of normalized rows.
type DrilldownResult struct {
	Title      string         `json:"title"`
	Rows       []DrilldownRow `json:"rows"`
	TotalCount int64          `json:"totalCount"`
	Page       int            `json:"page"`
	PageSize   int            `json:"pageSize"`
}

// RowSource issues one filtered, paginated drill-down request. Implemented
// by the operations API client and the direct MySQL store.
type RowSource interface {
	DrilldownItems(ctx context.Context, q DrilldownQuery) ([]DrilldownItem, int64, error)
}

// DrilldownService queries a row source and normalizes the heterogeneous
// item shapes into uniform rows. Failures degrade to an empty row set.
type DrilldownService struct {
	src             RowSource
	defaultPageSize int
	maxPageSize     int
}

// NewDrilldownService creates a drill-down service. Page size bounds of zero
// fall back to the package defaults.
func NewDrilldownService(src RowSource, defaultPageSize, maxPageSize int) *DrilldownService {
	if defaultPageSize <= 0 {
		defaultPageSize = DefaultDrilldownPageSize
	}
	if maxPageSize <= 0 {
		maxPageSize = 200
	}
	return &DrilldownService{src: src, defaultPageSize: defaultPageSize, maxPageSize: maxPageSize}
}

// Query runs one drill-down request. It never returns an error: an unknown
// record type, missing source or failed fetch all yield an empty result so
// the panel renders "no data" rather than an error banner.
func (s *DrilldownService) Query(ctx context.Context, q DrilldownQuery) DrilldownResult {
	q = s.normalize(q)
	out := DrilldownResult{
		Title:      q.Title,
		Rows:       []DrilldownRow{},
		Page:       q.Page,
		PageSize:   q.PageSize,
	}

	if q.RecordType == "" || s == nil || s.src == nil {
		return out
	}

	items, total, err := s.src.DrilldownItems(ctx, q)
	if err != nil {
		return out
	}

	rows := make([]DrilldownRow, 0, len(items))
	for _, item := range items {
		rows = append(rows, NormalizeDrilldownRow(item))
	}
	out.Rows = rows
	out.TotalCount = total
	return out
}

func (s *DrilldownService) normalize(q DrilldownQuery) DrilldownQuery {
	q.RecordType = strings.ToLower(strings.TrimSpace(q.RecordType))
	switch q.RecordType {
	case RecordTypeProcessingLot, RecordTypeProcessedMaterial:
	default:
		q.RecordType = ""
	}

	q.Status = strings.TrimSpace(q.Status)
	q.VendorID = strings.TrimSpace(q.VendorID)
	if q.Page <= 0 {
		q.Page = DefaultDrilldownPage
	}
	if q.PageSize <= 0 {
		q.PageSize = s.defaultPageSize
	}
	if q.PageSize > s.maxPageSize {
		q.PageSize = s.maxPageSize
	}
	return q
}

// NormalizeDrilldownRow maps one wire item into the uniform row projection.
// Items tagged as a processing lot carry a certification-style status; every
// other tag is treated as processed-material-like.
func NormalizeDrilldownRow(item DrilldownItem) DrilldownRow {
	row := DrilldownRow{
		ID:        item.ID,
		Name:      item.NameOrType,
		Date:      item.Date.Ptr(),
		WeightLbs: item.WeightLbs.Ptr(),
		Status:    item.Status,
	}

	switch strings.ToLower(strings.TrimSpace(item.RecordType)) {
	case RecordTypeProcessingLot:
		row.RecordType = LabelProcessingLot
	default:
		row.RecordType = LabelProcessedMaterial
	}
	return row
}
