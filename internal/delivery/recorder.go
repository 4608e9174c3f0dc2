package delivery

import (
	"context"
	"sync"

	"github.com/ManuGH/vidfetch/internal/service"
)

// Delivery is one hand-off captured by Recorder.
type Delivery struct {
	Descriptor service.Descriptor
	Locator    string // resolved absolute URL, empty if resolution failed
	Err        error
}

// Recorder keeps deliveries in memory instead of retrieving anything. The CLI
// uses it for --delivery=none; tests use it to observe the controller.
type Recorder struct {
	mu         sync.Mutex
	deliveries []Delivery
}

// Deliver records d together with its resolved locator.
func (r *Recorder) Deliver(_ context.Context, d service.Descriptor, fileOrigin string) {
	loc, err := Resolve(d.DownloadURL, fileOrigin)
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deliveries = append(r.deliveries, Delivery{Descriptor: d, Locator: loc, Err: err})
}

// Deliveries returns a copy of everything recorded so far.
func (r *Recorder) Deliveries() []Delivery {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Delivery, len(r.deliveries))
	copy(out, r.deliveries)
	return out
}
