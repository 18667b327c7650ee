package reports

import (
	"context"
	"fmt"
	"time"
)

// Summary source labels reported in resolution metadata.
const (
	SourceBackend  = "backend"
	SourceComputed = "computed"
)

// SummarySource fetches pre-computed domain summaries from the backend.
// Implemented by the operations API client.
type SummarySource interface {
	ESGSummary(ctx context.Context) (*ESGSummary, error)
	FinancialSummary(ctx context.Context) (*FinancialSummary, error)
	ComplianceSummary(ctx context.Context) (*ComplianceSummary, error)
}

// Resolution records where a resolved summary came from. When the backend
// fetch failed the reason is kept so a systemic outage stays visible to
// operators even though the dashboard still renders.
type Resolution struct {
	Source         string `json:"source"`
	FallbackReason string `json:"fallback_reason,omitempty"`
}

// ResolvedSummaries is the unified output for one dashboard load cycle.
type ResolvedSummaries struct {
	ESG            ESGSummary        `json:"esg"`
	Financial      FinancialSummary  `json:"financial"`
	Compliance     ComplianceSummary `json:"compliance"`
	ESGMeta        Resolution        `json:"esg_meta"`
	FinancialMeta  Resolution        `json:"financial_meta"`
	ComplianceMeta Resolution        `json:"compliance_meta"`
}

// Resolver prefers backend-computed summaries and substitutes locally
// computed metrics on any failure. It never returns an error; worst case all
// three domains resolve to computed (possibly all-zero) values.
type Resolver struct {
	remote SummarySource
	now    func() time.Time
}

// NewResolver creates a resolver over an optional backend summary source.
func NewResolver(remote SummarySource) *Resolver {
	return &Resolver{remote: remote, now: time.Now}
}

// ResolveESG resolves the ESG summary for already-collected records.
func (r *Resolver) ResolveESG(ctx context.Context, rec RawRecords) (ESGSummary, Resolution) {
	if r.remote != nil {
		remote, err := r.remote.ESGSummary(ctx)
		if err == nil && remote != nil {
			return *remote, Resolution{Source: SourceBackend}
		}
		return ComputeESGSummary(rec), fallbackResolution(err)
	}
	return ComputeESGSummary(rec), Resolution{Source: SourceComputed, FallbackReason: "backend summaries disabled"}
}

// ResolveFinancial resolves the financial summary.
func (r *Resolver) ResolveFinancial(ctx context.Context, rec RawRecords) (FinancialSummary, Resolution) {
	if r.remote != nil {
		remote, err := r.remote.FinancialSummary(ctx)
		if err == nil && remote != nil {
			return *remote, Resolution{Source: SourceBackend}
		}
		return ComputeFinancialSummary(rec), fallbackResolution(err)
	}
	return ComputeFinancialSummary(rec), Resolution{Source: SourceComputed, FallbackReason: "backend summaries disabled"}
}

// ResolveCompliance resolves the compliance summary.
func (r *Resolver) ResolveCompliance(ctx context.Context, rec RawRecords) (ComplianceSummary, Resolution) {
	if r.remote != nil {
		remote, err := r.remote.ComplianceSummary(ctx)
		if err == nil && remote != nil {
			return *remote, Resolution{Source: SourceBackend}
		}
		return ComputeComplianceSummary(rec, r.now()), fallbackResolution(err)
	}
	return ComputeComplianceSummary(rec, r.now()), Resolution{Source: SourceComputed, FallbackReason: "backend summaries disabled"}
}

// Resolve resolves all three domains for one load cycle.
func (r *Resolver) Resolve(ctx context.Context, rec RawRecords) ResolvedSummaries {
	out := ResolvedSummaries{}
	out.ESG, out.ESGMeta = r.ResolveESG(ctx, rec)
	out.Financial, out.FinancialMeta = r.ResolveFinancial(ctx, rec)
	out.Compliance, out.ComplianceMeta = r.ResolveCompliance(ctx, rec)
	return out
}

func fallbackResolution(err error) Resolution {
	reason := "backend summary returned no data"
	if err != nil {
		reason = fmt.Sprintf("backend summary unavailable: %v", err)
	}
	return Resolution{Source: SourceComputed, FallbackReason: reason}
}
