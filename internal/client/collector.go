package client

import (
	"fmt"
	"reflect"
	"strings"
	"sync/atomic"
	"time"

	"github.com/hedzr/go-ringbuf/v2/mpmc"
)

// CollectorMetrics provides lock-free metrics tracking for EventCollector.
// All fields use atomic operations for thread-safe access.
type CollectorMetrics struct {
	EventsProcessed   int64 // Total events successfully buffered
	ErrorsOccurred    int64 // Total errors encountered
	EventsOverwritten int64 // Events lost to buffer overflow
}

// IncrementEventsProcessed atomically increments the processed counter.
func (m *CollectorMetrics) IncrementEventsProcessed() {
	atomic.AddInt64(&m.EventsProcessed, 1)
}

// IncrementErrorsOccurred atomically increments the error counter.
func (m *CollectorMetrics) IncrementErrorsOccurred() {
	atomic.AddInt64(&m.ErrorsOccurred, 1)
}

// IncrementEventsOverwritten atomically adds count to the overwrite counter.
func (m *CollectorMetrics) IncrementEventsOverwritten(count uint32) {
	atomic.AddInt64(&m.EventsOverwritten, int64(count))
}

// GetEventsProcessed atomically reads the processed counter.
func (m *CollectorMetrics) GetEventsProcessed() int64 {
	return atomic.LoadInt64(&m.EventsProcessed)
}

// GetErrorsOccurred atomically reads the error counter.
func (m *CollectorMetrics) GetErrorsOccurred() int64 {
	return atomic.LoadInt64(&m.ErrorsOccurred)
}

// GetEventsOverwritten atomically reads the overwrite counter.
func (m *CollectorMetrics) GetEventsOverwritten() int64 {
	return atomic.LoadInt64(&m.EventsOverwritten)
}

// EventCollector gathers notifications from the session feed into a
// bounded ring buffer so the console can replay recent activity on
// demand. Overflow drops the oldest entries.
//
// All methods are thread-safe.
type EventCollector struct {
	events  <-chan Event
	buffer  mpmc.RichOverlappedRingBuffer[Event]
	stop    chan struct{}
	done    chan struct{}    // signals when goroutine has stopped
	onError func(error)      // error handler, defaults to panic if nil
	metrics CollectorMetrics // lock-free metrics tracking
	state   uint32           // atomic state using CollectorState constants
}

const (
	CollectorStateNotRunning uint32 = iota // ready to start
	CollectorStateRunning                  // buffering events
	CollectorStateStopping                 // shutdown in progress

	// MaxBufferSize guards against accidental misconfiguration.
	MaxBufferSize uint32 = 1024 * 1024
)

// NewEventCollector creates a collector over the given feed.
// bufferSize sets the ring buffer size.
// onError is called on unexpected errors; if nil, the collector panics.
func NewEventCollector(events <-chan Event, bufferSize uint32, onError func(error)) (*EventCollector, error) {
	if events == nil {
		return nil, fmt.Errorf("event channel cannot be nil")
	}

	if bufferSize == 0 {
		return nil, fmt.Errorf("buffer size must be > 0")
	}

	if bufferSize > MaxBufferSize {
		return nil, fmt.Errorf("buffer size %d exceeds maximum %d", bufferSize, MaxBufferSize)
	}

	if onError == nil {
		onError = func(err error) {
			panic(fmt.Sprintf("EventCollector: %v", err))
		}
	}

	return &EventCollector{
		events:  events,
		buffer:  mpmc.NewOverlappedRingBuffer[Event](bufferSize),
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
		onError: onError,
		state:   CollectorStateNotRunning,
	}, nil
}

// Start begins buffering events.
// Blocks until the collector goroutine is running or times out.
// Returns an error if already started or if startup takes too long.
func (c *EventCollector) Start() error {
	if !atomic.CompareAndSwapUint32(&c.state, CollectorStateNotRunning, CollectorStateRunning) {
		currentState := atomic.LoadUint32(&c.state)
		switch currentState {
		case CollectorStateRunning:
			return fmt.Errorf("collector is already running")
		case CollectorStateStopping:
			return fmt.Errorf("collector is stopping, wait for it to finish")
		default:
			return fmt.Errorf("collector is in unknown state %d", currentState)
		}
	}

	// Fresh channels per start cycle to prevent "close of closed channel" panics
	c.stop = make(chan struct{})
	c.done = make(chan struct{})

	started := make(chan struct{}, 1)

	go func() {
		started <- struct{}{}

		defer func() {
			close(c.done)
			atomic.StoreUint32(&c.state, CollectorStateNotRunning)
		}()
		for {
			select {
			case <-c.stop:
				return
			case e, ok := <-c.events:
				if !ok {
					return // feed closed
				}
				// Ring buffer handles overflow by dropping the oldest
				if overwrites, err := c.buffer.EnqueueM(e); err != nil {
					c.metrics.IncrementErrorsOccurred()
					c.onError(fmt.Errorf("unexpected buffer.Enqueue error: %w", err))
					return
				} else {
					c.metrics.IncrementEventsOverwritten(overwrites)
					c.metrics.IncrementEventsProcessed()
				}
			}
		}
	}()

	select {
	case <-started:
		return nil
	case <-time.After(1 * time.Second):
		close(c.stop)
		<-c.done
		return fmt.Errorf("collector failed to start within 1s timeout")
	}
}

// Stop stops buffering.
// Returns an error if stopping takes longer than expected.
func (c *EventCollector) Stop() error {
	if !atomic.CompareAndSwapUint32(&c.state, CollectorStateRunning, CollectorStateStopping) {
		currentState := atomic.LoadUint32(&c.state)
		switch currentState {
		case CollectorStateNotRunning:
			return nil // already stopped
		case CollectorStateStopping:
			break // already stopping, wait for completion
		default:
			return fmt.Errorf("collector is in unknown state %d", currentState)
		}
	} else {
		close(c.stop)
	}

	select {
	case <-c.done:
		return nil
	case <-time.After(5 * time.Second):
		<-c.done
		return fmt.Errorf("stop completed but exceeded 5s timeout (possible slow shutdown or deadlock)")
	}
}

// GetMetrics returns a copy of the current metrics.
func (c *EventCollector) GetMetrics() CollectorMetrics {
	return CollectorMetrics{
		EventsProcessed:   c.metrics.GetEventsProcessed(),
		ErrorsOccurred:    c.metrics.GetErrorsOccurred(),
		EventsOverwritten: c.metrics.GetEventsOverwritten(),
	}
}

// GetState returns the current lifecycle state of the collector.
func (c *EventCollector) GetState() uint32 {
	return atomic.LoadUint32(&c.state)
}

// ConsumerFunc consumes buffered events during a drain.
//
// Protocol:
//   - If event != nil: process the event. Return the zero value to keep
//     consuming, or a non-zero result to stop early.
//   - If event == nil: no more events will be provided. Return the final
//     accumulated result.
//
// The function owns whatever state it accumulates across calls. See
// CollectConsumerFunc for a ready-to-use implementation.
type ConsumerFunc[T any] func(event *Event) (T, error)

// CollectConsumerFunc returns a ConsumerFunc that accumulates all
// drained events into a slice, oldest first.
func CollectConsumerFunc() ConsumerFunc[[]Event] {
	var collected []Event
	return func(event *Event) ([]Event, error) {
		if event == nil {
			return collected, nil
		}
		collected = append(collected, *event)
		return nil, nil // continue draining
	}
}

// RenderConsumerFunc returns a ConsumerFunc that renders every drained
// event on its own line.
func RenderConsumerFunc() ConsumerFunc[string] {
	var buffer strings.Builder
	return func(event *Event) (string, error) {
		if event == nil {
			return buffer.String(), nil
		}
		buffer.WriteString(event.String())
		buffer.WriteByte('\n')
		return "", nil // continue draining
	}
}

// ConsumeEvents drains all buffered events and passes them to consumer.
//
// The consumer decides when to stop and what to return. See ConsumerFunc
// for the processing protocol. Draining is destructive: consumed events
// leave the buffer.
func ConsumeEvents[T any](c *EventCollector, consumer ConsumerFunc[T]) (T, error) {
	for !c.buffer.IsEmpty() {
		e, err := c.buffer.Dequeue()
		if err != nil {
			var zero T
			return zero, fmt.Errorf("buffer dequeue error: %w", err)
		}

		result, err := consumer(&e)
		if err != nil {
			return result, err
		}

		if !isZeroValue(result) {
			return result, nil
		}
	}

	// No more data - let the consumer produce its final result
	return consumer(nil)
}

// isZeroValue checks if a value is the zero value for its type.
func isZeroValue[T any](v T) bool {
	var zero T
	return reflect.DeepEqual(v, zero)
}

// DrainAll drains the buffer and returns the events, oldest first.
func (c *EventCollector) DrainAll() ([]Event, error) {
	return ConsumeEvents(c, CollectConsumerFunc())
}
