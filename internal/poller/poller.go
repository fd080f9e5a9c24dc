package poller

import (
	"context"
	"log/slog"
	"time"

	"github.com/cysense/sensor-dashboard/internal/source"
	"github.com/cysense/sensor-dashboard/internal/state"
)

// Poller drives snapshot refreshes on a fixed interval plus explicit manual
// triggers. Fetches run in the loop body, so at most one is ever in flight;
// triggers arriving mid-fetch coalesce into the size-1 channel instead of
// queueing.
type Poller struct {
	source    source.Source
	state     *state.Holder
	interval  time.Duration
	timeout   time.Duration
	refreshCh chan struct{}
	logger    *slog.Logger
}

func New(src source.Source, holder *state.Holder, interval, timeout time.Duration, logger *slog.Logger) *Poller {
	return &Poller{
		source:    src,
		state:     holder,
		interval:  interval,
		timeout:   timeout,
		refreshCh: make(chan struct{}, 1),
		logger:    logger,
	}
}

// TriggerRefresh requests a refresh without blocking the caller.
func (p *Poller) TriggerRefresh() {
	select {
	case p.refreshCh <- struct{}{}:
	default:
	}
}

// Run loops until ctx is cancelled. A failed fetch is reported through the
// state holder; the next tick is the retry, no backoff.
func (p *Poller) Run(ctx context.Context) {
	for {
		timer := time.NewTimer(p.interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-p.refreshCh:
			timer.Stop()
		case <-timer.C:
		}
		p.RefreshOnce(ctx)
	}
}

// RefreshOnce performs a single fetch under the configured timeout and
// publishes the outcome. Also used for the synchronous startup fetch.
func (p *Poller) RefreshOnce(ctx context.Context) {
	fetchCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	snapshot, err := p.source.FetchLatest(fetchCtx)
	if err != nil {
		p.state.Fail(err)
		p.logger.Warn("fetch failed; keeping previous snapshot", "err", err)
		return
	}
	p.state.Update(snapshot)
	p.logger.Debug("snapshot updated", "devices", len(snapshot.Readings), "alerts", snapshot.Stats.Alerts)
}
