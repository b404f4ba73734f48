package client

// RingChannel is a bounded channel with drop-oldest overflow. It
// carries the notification feeds: publishers are event handlers on
// daemon delivery goroutines and must never block, so a full buffer
// sheds its oldest entry to make room for the newest.
//
// Consumers read the underlying channel through C, which keeps the
// feed usable inside a select. With no consumer attached the buffer
// simply rotates, holding the most recent capacity entries.
type RingChannel[T any] struct {
	ch chan T
}

// NewRingChannel creates a RingChannel holding up to capacity entries.
func NewRingChannel[T any](capacity int) *RingChannel[T] {
	if capacity <= 0 {
		panic("ringchan: capacity must be > 0")
	}
	return &RingChannel[T]{ch: make(chan T, capacity)}
}

// C returns the receive side of the buffer.
func (rc *RingChannel[T]) C() <-chan T {
	return rc.ch
}

// ForceSend inserts v, discarding the oldest buffered entry if the
// buffer is full. It reports whether an entry was dropped. ForceSend
// never blocks: a concurrent publisher may steal the slot a shed frees,
// in which case the loop sheds again rather than waiting.
func (rc *RingChannel[T]) ForceSend(v T) bool {
	dropped := false
	for {
		select {
		case rc.ch <- v:
			return dropped
		default:
		}

		select {
		case <-rc.ch:
			dropped = true
		default:
			// A consumer emptied the buffer between the two selects;
			// the next send attempt will succeed.
		}
	}
}

// Len returns the number of buffered entries.
func (rc *RingChannel[T]) Len() int {
	return len(rc.ch)
}

// Cap returns the buffer capacity.
func (rc *RingChannel[T]) Cap() int {
	return cap(rc.ch)
}
