package opsapi

import (
	"context"

	"go-itad-ops-dashboard/internal/reports"
)

// Pre-computed summary endpoints. Any failure here (transport, non-2xx,
// malformed body) is reported to the caller, which falls back to locally
// computed metrics.

func (c *Client) ESGSummary(ctx context.Context) (*reports.ESGSummary, error) {
	var out reports.ESGSummary
	if err := c.getJSON(ctx, "/reports/esg-summary", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) FinancialSummary(ctx context.Context) (*reports.FinancialSummary, error) {
	var out reports.FinancialSummary
	if err := c.getJSON(ctx, "/reports/financial-summary", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ComplianceSummary(ctx context.Context) (*reports.ComplianceSummary, error) {
	var out reports.ComplianceSummary
	if err := c.getJSON(ctx, "/reports/compliance-summary", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
