package client

import (
	"context"

	"github.com/srg/flossctl/internal/groutine"
)

// Action runs against live shared state on the session's single action
// worker. Deferred decisions (like answering a consent request) are
// modeled as Actions so they re-read state at execution time instead of
// trusting a snapshot captured when the triggering event arrived.
type Action func(*Context)

// Post queues fn for the action worker. It never blocks: when the queue
// is full the action is dropped and logged so event delivery stays live.
func (c *Context) Post(fn Action) {
	select {
	case c.actions <- fn:
	default:
		c.logger.Error("Action queue full, dropping deferred action")
	}
}

// Start launches the action worker. Actions run one at a time, in post
// order, and never re-enter the goroutine that posted them. The worker
// exits when ctx is cancelled.
func (c *Context) Start(ctx context.Context) {
	groutine.Go(ctx, "client-actions", func(ctx context.Context) {
		defer c.logger.Debugf("%s: exiting", groutine.GetName(ctx))

		for {
			select {
			case <-ctx.Done():
				return
			case fn := <-c.actions:
				fn(c)
			}
		}
	})
}
