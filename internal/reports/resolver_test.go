package reports

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeSummarySource struct {
	esg        *ESGSummary
	financial  *FinancialSummary
	compliance *ComplianceSummary
	err        error
}

func (f *fakeSummarySource) ESGSummary(context.Context) (*ESGSummary, error) {
	return f.esg, f.err
}

func (f *fakeSummarySource) FinancialSummary(context.Context) (*FinancialSummary, error) {
	return f.financial, f.err
}

func (f *fakeSummarySource) ComplianceSummary(context.Context) (*ComplianceSummary, error) {
	return f.compliance, f.err
}

func TestResolveESG_PrefersBackend(t *testing.T) {
	remote := &fakeSummarySource{
		esg: &ESGSummary{TotalProcessedWeightLbs: 9999, DiversionRate: 0.5},
	}
	r := NewResolver(remote)

	rec := RawRecords{Lots: []ProcessingLot{{ID: "lot-1", TotalProcessedWeight: qty(100)}}}
	got, res := r.ResolveESG(context.Background(), rec)

	// Backend values pass through verbatim, even where local computation
	// would disagree.
	assert.Equal(t, 9999.0, got.TotalProcessedWeightLbs)
	assert.Equal(t, 0.5, got.DiversionRate)
	assert.Equal(t, SourceBackend, res.Source)
	assert.Empty(t, res.FallbackReason)
}

func TestResolveESG_FallsBackOnError(t *testing.T) {
	remote := &fakeSummarySource{err: errors.New("status=500")}
	r := NewResolver(remote)

	rec := RawRecords{Lots: []ProcessingLot{{ID: "lot-1", TotalProcessedWeight: qty(100)}}}
	got, res := r.ResolveESG(context.Background(), rec)

	assert.Equal(t, 100.0, got.TotalProcessedWeightLbs)
	assert.Equal(t, SourceComputed, res.Source)
	assert.Contains(t, res.FallbackReason, "status=500")
}

func TestResolveESG_FallsBackOnNilResult(t *testing.T) {
	r := NewResolver(&fakeSummarySource{})

	got, res := r.ResolveESG(context.Background(), RawRecords{})

	assert.Zero(t, got.TotalProcessedWeightLbs)
	assert.Equal(t, SourceComputed, res.Source)
	assert.NotEmpty(t, res.FallbackReason)
}

func TestResolveESG_NilRemote(t *testing.T) {
	r := NewResolver(nil)

	rec := RawRecords{Lots: []ProcessingLot{{ID: "lot-1", TotalProcessedWeight: qty(50)}}}
	got, res := r.ResolveESG(context.Background(), rec)

	assert.Equal(t, 50.0, got.TotalProcessedWeightLbs)
	assert.Equal(t, SourceComputed, res.Source)
}

func TestResolveFinancial_FallsBackOnError(t *testing.T) {
	r := NewResolver(&fakeSummarySource{err: errors.New("timeout")})

	rec := RawRecords{Lots: []ProcessingLot{{ID: "lot-1", ActualRevenue: qty(1000), ProcessingCost: qty(200)}}}
	got, res := r.ResolveFinancial(context.Background(), rec)

	assert.Equal(t, 1000.0, got.TotalRevenue)
	assert.Equal(t, 200.0, got.TotalCost)
	assert.Equal(t, 800.0, got.NetProfit)
	assert.Equal(t, SourceComputed, res.Source)
}

func TestResolveCompliance_PrefersBackend(t *testing.T) {
	remote := &fakeSummarySource{
		compliance: &ComplianceSummary{TotalLots: 42, CertifiedLots: 40},
	}
	r := NewResolver(remote)

	got, res := r.ResolveCompliance(context.Background(), RawRecords{})

	assert.Equal(t, int64(42), got.TotalLots)
	assert.Equal(t, int64(40), got.CertifiedLots)
	assert.Equal(t, SourceBackend, res.Source)
}

func TestResolve_MixedSources(t *testing.T) {
	// One domain served remotely, the others degraded: per-domain fallback
	// never cascades.
	remote := &fakeSummarySource{
		esg: &ESGSummary{TotalProcessedWeightLbs: 1},
	}
	r := NewResolver(remote)

	out := r.Resolve(context.Background(), RawRecords{})

	assert.Equal(t, SourceBackend, out.ESGMeta.Source)
	assert.Equal(t, SourceComputed, out.FinancialMeta.Source)
	assert.Equal(t, SourceComputed, out.ComplianceMeta.Source)
}
