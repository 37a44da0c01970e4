package client

import (
	"context"
	"time"

	"github.com/jpillora/backoff"

	"github.com/drandlite/drandlite/build"
	"github.com/drandlite/drandlite/chain"
	"github.com/drandlite/drandlite/common"
)

// WatchResult is one emission from Watch: a verified beacon, or the error
// that kept a round from being delivered.
type WatchResult struct {
	Beacon *common.Beacon
	Err    error
}

// watchGrace is added after a round's publication time before polling, to
// let relays catch up.
const watchGrace = 100 * time.Millisecond

// Watch polls the relays for the latest round once per chain period,
// emitting each newly verified round on the returned channel. Fetch failures
// are emitted and retried with exponential backoff; the channel closes when
// ctx is cancelled.
func (c *Client) Watch(ctx context.Context) <-chan WatchResult {
	out := make(chan WatchResult, 1)
	go c.watch(ctx, out)
	return out
}

func (c *Client) watch(ctx context.Context, out chan<- WatchResult) {
	defer close(out)

	bo := &backoff.Backoff{
		Min:    watchGrace,
		Max:    2 * c.info.Period,
		Factor: 2,
		Jitter: true,
	}

	var last uint64
	for {
		b, err := c.Latest(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			select {
			case out <- WatchResult{Err: err}:
			case <-ctx.Done():
				return
			}
			if !c.sleep(ctx, bo.Duration()) {
				return
			}
			continue
		}
		bo.Reset()

		if b.Round > last {
			last = b.Round
			select {
			case out <- WatchResult{Beacon: b}:
			case <-ctx.Done():
				return
			}
		}

		_, nextTime := chain.NextRound(c.info, build.Clock.Now())
		wait := nextTime.Sub(build.Clock.Now()) + watchGrace
		if wait < watchGrace {
			wait = watchGrace
		}
		if !c.sleep(ctx, wait) {
			return
		}
	}
}

func (c *Client) sleep(ctx context.Context, d time.Duration) bool {
	t := build.Clock.Timer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
