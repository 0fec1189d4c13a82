package query

import (
	"context"
	"time"

	"github.com/pharmadash/pharmadash/pkg/logger"
)

// Poller re-runs a fetch on a fixed interval, for views that watch alert
// counts or reorder suggestions. It runs once immediately, then ticks, and
// stops cleanly when its context is cancelled so a dismissed view never
// receives further updates.
type Poller struct {
	name     string
	interval time.Duration
	fn       func(context.Context) error
	logger   *logger.Logger
	cancel   context.CancelFunc
	done     chan struct{}
}

// NewPoller creates a poller. fn errors are logged, not fatal; the next tick
// tries again.
func NewPoller(name string, interval time.Duration, fn func(context.Context) error, log *logger.Logger) *Poller {
	return &Poller{
		name:     name,
		interval: interval,
		fn:       fn,
		logger:   log.WithComponent("poller"),
	}
}

// Start starts the polling goroutine.
func (p *Poller) Start(ctx context.Context) {
	ctx, p.cancel = context.WithCancel(ctx)
	p.done = make(chan struct{})

	go func() {
		defer close(p.done)
		p.logger.Info().Str("name", p.name).Dur("interval", p.interval).Msg("poller started")

		p.run(ctx)

		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				p.logger.Info().Str("name", p.name).Msg("poller stopped")
				return
			case <-ticker.C:
				p.run(ctx)
			}
		}
	}()
}

// Stop cancels the poller and waits for the goroutine to exit.
func (p *Poller) Stop() {
	if p.cancel != nil {
		p.cancel()
		<-p.done
	}
}

func (p *Poller) run(ctx context.Context) {
	if err := p.fn(ctx); err != nil {
		if ctx.Err() != nil {
			return
		}
		p.logger.Error().Err(err).Str("name", p.name).Msg("poll failed")
	}
}
