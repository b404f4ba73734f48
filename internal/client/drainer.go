package client

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/srg/flossctl/internal/groutine"
)

// EventDrainer continuously drains the live notification feed to a
// writer, typically the interactive console. It runs in a background
// goroutine and provides graceful shutdown via Cancel() and Wait().
type EventDrainer struct {
	cancelOnce sync.Once      // ensures Cancel() is called at most once
	stop       chan struct{}  // signals the drainer goroutine to stop
	wg         sync.WaitGroup // tracks the drainer goroutine lifecycle
}

// Cancel signals the drainer to stop and drain the remaining events.
func (d *EventDrainer) Cancel() {
	d.cancelOnce.Do(func() {
		close(d.stop)
	})
}

// Wait blocks until the drainer goroutine has fully exited.
func (d *EventDrainer) Wait() {
	d.wg.Wait()
}

// drainEventsWithTimeout drains remaining events with a timeout.
// Returns true if the feed was closed normally, false on timeout.
func drainEventsWithTimeout(
	events <-chan Event,
	out io.Writer,
	render func(Event) string,
	timeout time.Duration,
	logger *logrus.Logger,
	reason string,
) bool {
	drainTimeout := time.After(timeout)
	drained := 0
	for {
		select {
		case e, ok := <-events:
			if !ok {
				logger.WithFields(logrus.Fields{
					"reason":  reason,
					"drained": drained,
				}).Debug("Event drainer: drain completed (feed closed)")
				return true
			}
			drained++
			if _, err := fmt.Fprintln(out, render(e)); err != nil {
				logger.WithError(err).Warn("Event drainer: write failed")
			}
		case <-drainTimeout:
			logger.WithFields(logrus.Fields{
				"reason":  reason,
				"drained": drained,
				"timeout": timeout,
			}).Debug("Event drainer: drain timeout reached")
			return false
		}
	}
}

// NewEventDrainer starts a goroutine that continuously drains events to
// the provided writer, one line per event. render formats an event for
// display; nil falls back to Event.String. It returns an EventDrainer
// you can Cancel() and Wait() on.
func NewEventDrainer(
	ctx context.Context,
	events <-chan Event,
	logger *logrus.Logger,
	out io.Writer,
	render func(Event) string,
) *EventDrainer {
	if out == nil {
		out = io.Discard
	}
	if render == nil {
		render = Event.String
	}

	drainer := &EventDrainer{
		stop: make(chan struct{}),
	}

	drainer.wg.Add(1)
	groutine.Go(ctx, "event-drainer", func(ctx context.Context) {
		defer drainer.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				logger.WithField("panic", r).Error("Event drainer: panic recovered")
			}
		}()
		defer logger.Debugf("%s: exiting", groutine.GetName(ctx))

		for {
			select {
			case e, ok := <-events:
				if !ok {
					// Feed closed by the session
					return
				}
				if _, err := fmt.Fprintln(out, render(e)); err != nil {
					logger.WithError(err).Warn("Event drainer: write failed")
				}

			case <-drainer.stop:
				// Drain the remainder with a timeout to prevent indefinite blocking
				drainEventsWithTimeout(events, out, render, 100*time.Millisecond, logger, "stop")
				return

			case <-ctx.Done():
				drainEventsWithTimeout(events, out, render, 100*time.Millisecond, logger, "context-done")
				return
			}
		}
	})

	return drainer
}
