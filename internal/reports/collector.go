package reports

import (
	"context"
	"sync"
)

// RecordSource fetches the four raw record collections. Implemented by the
// operations API client.
type RecordSource interface {
	Shipments(ctx context.Context) ([]Shipment, error)
	ProcessedMaterials(ctx context.Context) ([]ProcessedMaterial, error)
	Assets(ctx context.Context) ([]Asset, error)
	ProcessingLots(ctx context.Context) ([]ProcessingLot, error)
}

// Collector runs the four record fetches concurrently, each inside its own
// failure boundary: one domain failing leaves that collection empty and
// records the error, while the other fetches proceed untouched. No retries.
type Collector struct {
	src RecordSource
}

// NewCollector creates a collector over the given source. A nil source is
// allowed and yields all-empty collections.
func NewCollector(src RecordSource) *Collector {
	return &Collector{src: src}
}

// Collect fetches all four collections for one dashboard load cycle.
func (c *Collector) Collect(ctx context.Context) RawRecords {
	out := RawRecords{
		Shipments: []Shipment{},
		Materials: []ProcessedMaterial{},
		Assets:    []Asset{},
		Lots:      []ProcessingLot{},
		Errors:    map[string]string{},
	}
	if c == nil || c.src == nil {
		const msg = "operations api integration disabled"
		out.Errors["shipments"] = msg
		out.Errors["processed_materials"] = msg
		out.Errors["assets"] = msg
		out.Errors["processing_lots"] = msg
		return out
	}

	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	fail := func(domain string, err error) {
		mu.Lock()
		out.Errors[domain] = err.Error()
		mu.Unlock()
	}

	wg.Add(4)
	go func() {
		defer wg.Done()
		items, err := c.src.Shipments(ctx)
		if err != nil {
			fail("shipments", err)
			return
		}
		out.Shipments = items
	}()
	go func() {
		defer wg.Done()
		items, err := c.src.ProcessedMaterials(ctx)
		if err != nil {
			fail("processed_materials", err)
			return
		}
		out.Materials = items
	}()
	go func() {
		defer wg.Done()
		items, err := c.src.Assets(ctx)
		if err != nil {
			fail("assets", err)
			return
		}
		out.Assets = items
	}()
	go func() {
		defer wg.Done()
		items, err := c.src.ProcessingLots(ctx)
		if err != nil {
			fail("processing_lots", err)
			return
		}
		out.Lots = items
	}()
	wg.Wait()

	// A nil slice from a healthy source still renders as an empty collection.
	if out.Shipments == nil {
		out.Shipments = []Shipment{}
	}
	if out.Materials == nil {
		out.Materials = []ProcessedMaterial{}
	}
	if out.Assets == nil {
		out.Assets = []Asset{}
	}
	if out.Lots == nil {
		out.Lots = []ProcessingLot{}
	}
	return out
}
