package state

import (
	"sync"

	"github.com/cysense/sensor-dashboard/internal/model"
)

// View is what readers observe: the last successful snapshot, the error
// from the most recent fetch (nil after a success), and whether any
// snapshot has landed yet.
type View struct {
	Snapshot model.Snapshot
	LastErr  error
	HasData  bool
}

// Holder owns the latest snapshot. Single writer (the poller), any number
// of readers; a snapshot replaces the previous one atomically from the
// readers' perspective.
type Holder struct {
	mu       sync.RWMutex
	snapshot model.Snapshot
	hasData  bool
	lastErr  error
	subs     map[chan struct{}]struct{}
}

func NewHolder() *Holder {
	return &Holder{subs: make(map[chan struct{}]struct{})}
}

// Update replaces the snapshot and clears any prior fetch error.
func (h *Holder) Update(snapshot model.Snapshot) {
	h.mu.Lock()
	h.snapshot = snapshot
	h.hasData = true
	h.lastErr = nil
	h.mu.Unlock()
	h.notify()
}

// Fail records a fetch error. The previous snapshot stays in place so a
// transient failure never blanks the dashboard.
func (h *Holder) Fail(err error) {
	h.mu.Lock()
	h.lastErr = err
	h.mu.Unlock()
	h.notify()
}

func (h *Holder) Current() View {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return View{Snapshot: h.snapshot, LastErr: h.lastErr, HasData: h.hasData}
}

// Subscribe returns a channel that receives a tick whenever the holder
// changes. Notification is best-effort; a slow subscriber sees a single
// coalesced tick.
func (h *Holder) Subscribe() chan struct{} {
	ch := make(chan struct{}, 1)
	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()
	return ch
}

func (h *Holder) Unsubscribe(ch chan struct{}) {
	h.mu.Lock()
	delete(h.subs, ch)
	h.mu.Unlock()
}

func (h *Holder) notify() {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for ch := range h.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
