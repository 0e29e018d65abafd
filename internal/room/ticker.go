package room

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
)

// Ticker drives the room's countdown: one TimerFired message per second into
// the room inbox. Start and Stop are only called from the room's own loop, so
// no locking is needed. Every Start bumps the generation and cancels the
// previous goroutine; the room drops fires whose generation is stale, which
// makes restart idempotent and guarantees no stale fire mutates state after
// cancellation.
type Ticker struct {
	clock  clockwork.Clock
	gen    uint64
	cancel context.CancelFunc
}

func NewTicker(clock clockwork.Clock) *Ticker {
	return &Ticker{clock: clock}
}

// Start begins emitting ticks into out. Any previous ticker is cancelled
// first.
func (t *Ticker) Start(ctx context.Context, out chan<- Msg) {
	t.Stop()
	t.gen++
	gen := t.gen
	tctx, cancel := context.WithCancel(ctx)
	t.cancel = cancel

	// The clock ticker is created synchronously so a fake clock advanced
	// right after Start returns still delivers the first tick.
	tick := t.clock.NewTicker(time.Second)
	go func() {
		defer tick.Stop()
		for {
			select {
			case <-tctx.Done():
				return
			case <-tick.Chan():
				// Cancellation wins over a tick that raced in.
				select {
				case <-tctx.Done():
					return
				default:
				}
				select {
				case out <- TimerFired{Gen: gen}:
				case <-tctx.Done():
					return
				}
			}
		}
	}()
}

func (t *Ticker) Stop() {
	if t.cancel != nil {
		t.cancel()
		t.cancel = nil
	}
}

// Running reports whether a ticker goroutine is live.
func (t *Ticker) Running() bool { return t.cancel != nil }

// Gen is the generation of the most recent Start; fires carrying an older
// generation are stale.
func (t *Ticker) Gen() uint64 { return t.gen }
