package sync

import (
	"context"
	"errors"
	"sync"
	"time"
)

// POLL_INTERVAL is the fixed refresh interval every sync component uses while
// a consumer is mounted.
const POLL_INTERVAL = 5 * time.Second

var (
	ErrPollerStarted = errors.New("poller is already started")
)

// poller is a cancellable repeating task bound to a consumer's active
// lifetime. Stop is synchronous: it cancels the loop and bumps the
// generation, so an in-flight tick that resolves after Stop can never apply
// its result (update-after-teardown prevention).
type poller struct {
	interval   time.Duration
	mu         sync.Mutex
	cancel     context.CancelFunc
	running    bool
	generation uint64
}

func newPoller(interval time.Duration) *poller {
	if interval <= 0 {
		interval = POLL_INTERVAL
	}
	return &poller{interval: interval}
}

// Start runs tick immediately and then on every interval until Stop or
// context cancellation. The generation passed to tick must be handed back to
// current before any fetched result is applied to state.
func (p *poller) Start(ctx context.Context, tick func(ctx context.Context, generation uint64)) error {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return ErrPollerStarted
	}
	tick_ctx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.running = true
	generation := p.generation
	p.mu.Unlock()

	go func() {
		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()

		tick(tick_ctx, generation)
		for {
			select {
			case <-ticker.C:
				tick(tick_ctx, generation)
			case <-tick_ctx.Done():
				return
			}
		}
	}()

	return nil
}

func (p *poller) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.running {
		return
	}
	p.cancel()
	p.generation++
	p.running = false
}

// current reports whether a result tagged with generation may still be
// applied. False after Stop, even for requests that were already in flight.
func (p *poller) current(generation uint64) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.running && p.generation == generation
}

func (p *poller) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.running
}
