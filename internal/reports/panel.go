package reports

import (
	"context"
	"sync"
)

// PanelState is the drill-down panel lifecycle state.
type PanelState string

const (
	PanelClosed  PanelState = "closed"
	PanelLoading PanelState = "loading"
	PanelLoaded  PanelState = "loaded"
	PanelEmpty   PanelState = "empty"
)

// Panel tracks the drill-down panel for one dashboard session. Opening
// always enters loading; a completed fetch enters loaded, or empty when it
// produced zero rows; closing is unconditional. Overlapping opens are not
// cancelled or de-duplicated: the later completion simply overwrites the
// earlier one, which can briefly show stale rows when responses arrive out
// of order.
type Panel struct {
	mu     sync.Mutex
	state  PanelState
	result DrilldownResult
	svc    *DrilldownService
}

// NewPanel creates a closed panel over the given drill-down service.
func NewPanel(svc *DrilldownService) *Panel {
	return &Panel{state: PanelClosed, svc: svc}
}

// Open transitions the panel to loading and starts the fetch. The returned
// channel closes when the fetch completes, which tests and callers may wait
// on; the panel itself is updated regardless.
func (p *Panel) Open(ctx context.Context, q DrilldownQuery) <-chan struct{} {
	p.mu.Lock()
	p.state = PanelLoading
	p.mu.Unlock()

	done := make(chan struct{})
	go func() {
		defer close(done)
		res := p.svc.Query(ctx, q)
		p.complete(res)
	}()
	return done
}

// Close returns the panel to closed from any state.
func (p *Panel) Close() {
	p.mu.Lock()
	p.state = PanelClosed
	p.result = DrilldownResult{}
	p.mu.Unlock()
}

// State returns the current state and result snapshot.
func (p *Panel) State() (PanelState, DrilldownResult) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state, p.result
}

func (p *Panel) complete(res DrilldownResult) {
	p.mu.Lock()
	defer p.mu.Unlock()

	// A completion landing after close stays closed.
	if p.state == PanelClosed {
		return
	}

	p.result = res
	if len(res.Rows) == 0 {
		p.state = PanelEmpty
		return
	}
	p.state = PanelLoaded
}
