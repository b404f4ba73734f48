package client

import (
	"fmt"
	"time"
)

// Event tags name the component an Event came from.
const (
	TagManager    = "manager"
	TagAdapter    = "adapter"
	TagConnection = "connection"
	TagGatt       = "gatt"
	TagShell      = "shell"
)

// Event is one operator-visible notification produced by an event
// handler or a console command.
type Event struct {
	Time    time.Time `json:"time"`
	Tag     string    `json:"tag"`
	Message string    `json:"message"`
}

func (e Event) String() string {
	return fmt.Sprintf("%s [%s] %s", e.Time.Format("15:04:05.000"), e.Tag, e.Message)
}

// Eventf publishes a formatted notification. Publication never blocks
// the caller: both feeds drop their oldest entry when full.
func (c *Context) Eventf(tag, format string, args ...any) {
	e := Event{Time: time.Now(), Tag: tag, Message: fmt.Sprintf(format, args...)}

	c.live.ForceSend(e)
	c.history.ForceSend(e)
	c.logger.WithField("tag", tag).Debug(e.Message)
}

// Events exposes the live notification feed. The interactive console
// drains it to the terminal; an unconsumed feed simply rotates.
func (c *Context) Events() <-chan Event {
	return c.live.C()
}

// History exposes the notification feed copy meant for the bounded
// history collector.
func (c *Context) History() <-chan Event {
	return c.history.C()
}
