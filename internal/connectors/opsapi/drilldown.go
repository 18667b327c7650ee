package opsapi

import (
	"context"
	"net/url"
	"strconv"

	"go-itad-ops-dashboard/internal/reports"
)

type drilldownResponse struct {
	Items      []reports.DrilldownItem `json:"items"`
	TotalCount int64                   `json:"totalCount"`
	Page       int                     `json:"page"`
	PageSize   int                     `json:"pageSize"`
}

// DrilldownItems issues one filtered, paginated drill-down query.
func (c *Client) DrilldownItems(ctx context.Context, q reports.DrilldownQuery) ([]reports.DrilldownItem, int64, error) {
	params := url.Values{}
	params.Set("type", q.RecordType)
	if q.Status != "" {
		params.Set("status", q.Status)
	}
	if q.From != nil {
		params.Set("from", q.From.UTC().Format("2006-01-02"))
	}
	if q.To != nil {
		params.Set("to", q.To.UTC().Format("2006-01-02"))
	}
	params.Set("page", strconv.Itoa(q.Page))
	params.Set("pageSize", strconv.Itoa(q.PageSize))

	var out drilldownResponse
	if err := c.getJSON(ctx, "/reports/drilldown", params, &out); err != nil {
		return nil, 0, err
	}
	if out.Items == nil {
		out.Items = []reports.DrilldownItem{}
	}
	return out.Items, out.TotalCount, nil
}

// Compile-time interface checks against the reports contracts.
var (
	_ reports.RecordSource  = (*Client)(nil)
	_ reports.SummarySource = (*Client)(nil)
	_ reports.RowSource     = (*Client)(nil)
)
