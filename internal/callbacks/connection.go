package callbacks

import (
	"github.com/sirupsen/logrus"

	"github.com/srg/flossctl/internal/bt"
	"github.com/srg/flossctl/internal/client"
)

// Connection relays per-device link transitions. It keeps no state of
// its own.
type Connection struct {
	Identity
	ctx *client.Context
	log *logrus.Entry
}

// NewConnection creates the connection event handler exported at objpath.
func NewConnection(objpath string, ctx *client.Context, logger *logrus.Logger) *Connection {
	if logger == nil {
		logger = logrus.New()
	}

	return &Connection{
		Identity: NewIdentity(objpath),
		ctx:      ctx,
		log:      logger.WithField("callback", "connection"),
	}
}

// OnDeviceConnected reports a device-level connection.
func (c *Connection) OnDeviceConnected(d bt.Device) {
	c.ctx.Eventf(client.TagConnection, "Connected: [%s]: %s", d.Address, d.Name)
}

// OnDeviceDisconnected reports a device-level disconnection.
func (c *Connection) OnDeviceDisconnected(d bt.Device) {
	c.ctx.Eventf(client.TagConnection, "Disconnected: [%s]: %s", d.Address, d.Name)
}
