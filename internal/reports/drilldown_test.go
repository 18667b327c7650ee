package reports

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRowSource struct {
	items []DrilldownItem
	total int64
	err   error

	lastQuery DrilldownQuery
}

func (f *fakeRowSource) DrilldownItems(_ context.Context, q DrilldownQuery) ([]DrilldownItem, int64, error) {
	f.lastQuery = q
	return f.items, f.total, f.err
}

func TestDrilldownQuery_NormalizesRows(t *testing.T) {
	created := time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)
	src := &fakeRowSource{
		items: []DrilldownItem{
			{RecordType: "ProcessingLot", ID: "lot-1", NameOrType: "Lot 1", Date: ts(created), WeightLbs: qty(250), Status: "Pending"},
			{RecordType: "processedmaterial", ID: "m-1", NameOrType: "Copper", Status: "Processed"},
		},
		total: 2,
	}
	svc := NewDrilldownService(src, 25, 200)

	got := svc.Query(context.Background(), DrilldownQuery{Title: "Lots", RecordType: "ProcessingLot"})

	require.Len(t, got.Rows, 2)
	assert.Equal(t, "Lots", got.Title)
	assert.Equal(t, int64(2), got.TotalCount)

	first := got.Rows[0]
	assert.Equal(t, LabelProcessingLot, first.RecordType)
	assert.Equal(t, "Lot 1", first.Name)
	require.NotNil(t, first.Date)
	assert.Equal(t, created, *first.Date)
	require.NotNil(t, first.WeightLbs)
	assert.Equal(t, 250.0, *first.WeightLbs)

	second := got.Rows[1]
	assert.Equal(t, LabelProcessedMaterial, second.RecordType)
	assert.Nil(t, second.Date)
	assert.Nil(t, second.WeightLbs)
}

func TestDrilldownQuery_PagingDefaults(t *testing.T) {
	src := &fakeRowSource{}
	svc := NewDrilldownService(src, 25, 200)

	got := svc.Query(context.Background(), DrilldownQuery{RecordType: "processinglot"})

	assert.Equal(t, 1, got.Page)
	assert.Equal(t, 25, got.PageSize)
	assert.Equal(t, 1, src.lastQuery.Page)
	assert.Equal(t, 25, src.lastQuery.PageSize)
}

func TestDrilldownQuery_PageSizeClamped(t *testing.T) {
	src := &fakeRowSource{}
	svc := NewDrilldownService(src, 25, 200)

	got := svc.Query(context.Background(), DrilldownQuery{RecordType: "processinglot", Page: 3, PageSize: 9999})

	assert.Equal(t, 3, got.Page)
	assert.Equal(t, 200, got.PageSize)
}

func TestDrilldownQuery_UnknownTypeYieldsEmpty(t *testing.T) {
	src := &fakeRowSource{items: []DrilldownItem{{ID: "x"}}, total: 1}
	svc := NewDrilldownService(src, 25, 200)

	got := svc.Query(context.Background(), DrilldownQuery{RecordType: "shipment"})

	assert.Empty(t, got.Rows)
	assert.Zero(t, got.TotalCount)
	// Unknown types never reach the source.
	assert.Empty(t, src.lastQuery.RecordType)
}

func TestDrilldownQuery_SourceErrorYieldsEmpty(t *testing.T) {
	src := &fakeRowSource{err: errors.New("backend down")}
	svc := NewDrilldownService(src, 25, 200)

	got := svc.Query(context.Background(), DrilldownQuery{RecordType: "processinglot"})

	assert.NotNil(t, got.Rows)
	assert.Empty(t, got.Rows)
	assert.Zero(t, got.TotalCount)
}

func TestDrilldownQuery_NilSourceYieldsEmpty(t *testing.T) {
	svc := NewDrilldownService(nil, 25, 200)

	got := svc.Query(context.Background(), DrilldownQuery{RecordType: "processinglot"})

	assert.NotNil(t, got.Rows)
	assert.Empty(t, got.Rows)
}

func TestNormalizeDrilldownRow_Labels(t *testing.T) {
	lot := NormalizeDrilldownRow(DrilldownItem{RecordType: "processinglot"})
	assert.Equal(t, "Processing Lot", lot.RecordType)

	material := NormalizeDrilldownRow(DrilldownItem{RecordType: "processedmaterial"})
	assert.Equal(t, "Processed Material", material.RecordType)

	unknown := NormalizeDrilldownRow(DrilldownItem{RecordType: "whatever"})
	assert.Equal(t, "Processed Material", unknown.RecordType)
}
