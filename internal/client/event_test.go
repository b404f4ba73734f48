package client

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventfPublishesToBothFeeds(t *testing.T) {
	ctx := NewContext(nil)

	ctx.Eventf(TagAdapter, "Found device: %s", "AA:BB")

	select {
	case e := <-ctx.Events():
		assert.Equal(t, TagAdapter, e.Tag)
		assert.Equal(t, "Found device: AA:BB", e.Message)
		assert.WithinDuration(t, time.Now(), e.Time, time.Second)
	default:
		t.Fatal("live feed is empty")
	}

	select {
	case e := <-ctx.History():
		assert.Equal(t, "Found device: AA:BB", e.Message)
	default:
		t.Fatal("history feed is empty")
	}
}

func TestEventfNeverBlocks(t *testing.T) {
	// Nobody consumes either feed here; publishing far past capacity
	// must still return promptly.
	ctx := NewContext(nil)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < eventFeedSize*3; i++ {
			ctx.Eventf(TagShell, "event %d", i)
		}
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Eventf blocked on full feeds")
	}

	// The feeds hold only the most recent entries
	require.Equal(t, eventFeedSize, len(ctx.Events()))
	first := <-ctx.Events()
	assert.Equal(t, "event 512", first.Message)
}

func TestEventString(t *testing.T) {
	e := Event{
		Time:    time.Date(2025, 6, 1, 10, 30, 45, 123e6, time.UTC),
		Tag:     TagGatt,
		Message: "MTU configured",
	}
	assert.Equal(t, "10:30:45.123 [gatt] MTU configured", e.String())
}
