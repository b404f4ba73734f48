package callbacks

import (
	"github.com/sirupsen/logrus"

	"github.com/srg/flossctl/internal/bt"
	"github.com/srg/flossctl/internal/client"
)

// Gatt surfaces the GATT event stream. Registration is the only event
// that mutates session state; everything else is telemetry for the
// operator.
type Gatt struct {
	Identity
	ctx *client.Context
	log *logrus.Entry
}

// NewGatt creates the GATT event handler exported at objpath.
func NewGatt(objpath string, ctx *client.Context, logger *logrus.Logger) *Gatt {
	if logger == nil {
		logger = logrus.New()
	}

	return &Gatt{
		Identity: NewIdentity(objpath),
		ctx:      ctx,
		log:      logger.WithField("callback", "gatt"),
	}
}

// OnClientRegistered stores the assigned client handle. The handle is
// recorded even on a non-success status; follow-up GATT calls validate
// the status themselves.
func (g *Gatt) OnClientRegistered(status bt.GattStatus, clientID int32) {
	g.ctx.Eventf(client.TagGatt, "GATT Client registered status = %s, client_id = %d", status, clientID)
	g.ctx.SetGattClientID(clientID)
}

// OnClientConnectionState reports a GATT-level connection transition.
func (g *Gatt) OnClientConnectionState(status bt.GattStatus, clientID int32, connected bool, address string) {
	g.ctx.Eventf(client.TagGatt, "GATT Client connection state = %s, client_id = %d, connected = %t, addr = %s",
		status, clientID, connected, address)
}

// OnPhyUpdate reports a renegotiated PHY configuration.
func (g *Gatt) OnPhyUpdate(address string, txPhy, rxPhy bt.LePhy, status bt.GattStatus) {
	g.ctx.Eventf(client.TagGatt, "Phy updated: addr = %s, tx_phy = %s, rx_phy = %s, status = %s",
		address, txPhy, rxPhy, status)
}

// OnPhyRead reports the PHY configuration read back for a connection.
func (g *Gatt) OnPhyRead(address string, txPhy, rxPhy bt.LePhy, status bt.GattStatus) {
	g.ctx.Eventf(client.TagGatt, "Phy read: addr = %s, tx_phy = %s, rx_phy = %s, status = %s",
		address, txPhy, rxPhy, status)
}

// OnSearchComplete reports the end of a GATT database search.
func (g *Gatt) OnSearchComplete(address string, services []bt.GattService, status bt.GattStatus) {
	g.ctx.Eventf(client.TagGatt, "GATT DB Search complete: addr = %s, services = %d, status = %s",
		address, len(services), status)

	for _, s := range services {
		g.ctx.Eventf(client.TagGatt, "  service %s (instance %d, %d characteristics)",
			s.UUID, s.InstanceID, len(s.Characteristics))
	}
}

// OnCharacteristicRead reports a characteristic read completion.
func (g *Gatt) OnCharacteristicRead(address string, status bt.GattStatus, handle int32, value []byte) {
	g.ctx.Eventf(client.TagGatt, "GATT Characteristic read: addr = %s, status = %s, handle = %d, value = %x",
		address, status, handle, value)
}

// OnCharacteristicWrite reports a characteristic write completion.
func (g *Gatt) OnCharacteristicWrite(address string, status bt.GattStatus, handle int32) {
	g.ctx.Eventf(client.TagGatt, "GATT Characteristic write: addr = %s, status = %s, handle = %d",
		address, status, handle)
}

// OnExecuteWrite reports the outcome of a queued-write execution.
func (g *Gatt) OnExecuteWrite(address string, status bt.GattStatus) {
	g.ctx.Eventf(client.TagGatt, "GATT execute write addr = %s, status = %s", address, status)
}

// OnDescriptorRead reports a descriptor read completion.
func (g *Gatt) OnDescriptorRead(address string, status bt.GattStatus, handle int32, value []byte) {
	g.ctx.Eventf(client.TagGatt, "GATT Descriptor read: addr = %s, status = %s, handle = %d, value = %x",
		address, status, handle, value)
}

// OnDescriptorWrite reports a descriptor write completion.
func (g *Gatt) OnDescriptorWrite(address string, status bt.GattStatus, handle int32) {
	g.ctx.Eventf(client.TagGatt, "GATT Descriptor write: addr = %s, status = %s, handle = %d",
		address, status, handle)
}

// OnNotify reports a characteristic value notification.
func (g *Gatt) OnNotify(address string, handle int32, value []byte) {
	g.ctx.Eventf(client.TagGatt, "GATT Notification: addr = %s, handle = %d, value = %x",
		address, handle, value)
}

// OnReadRemoteRssi reports a remote RSSI measurement.
func (g *Gatt) OnReadRemoteRssi(address string, rssi int32, status bt.GattStatus) {
	g.ctx.Eventf(client.TagGatt, "Remote RSSI read: addr = %s, rssi = %d, status = %s",
		address, rssi, status)
}

// OnConfigureMtu reports the negotiated MTU for a connection.
func (g *Gatt) OnConfigureMtu(address string, mtu int32, status bt.GattStatus) {
	g.ctx.Eventf(client.TagGatt, "MTU configured: addr = %s, mtu = %d, status = %s",
		address, mtu, status)
}

// OnConnectionUpdated reports renegotiated connection parameters.
func (g *Gatt) OnConnectionUpdated(address string, interval, latency, timeout int32, status bt.GattStatus) {
	g.ctx.Eventf(client.TagGatt, "Connection updated: addr = %s, interval = %d, latency = %d, timeout = %d, status = %s",
		address, interval, latency, timeout, status)
}

// OnServiceChanged reports that the remote GATT database changed.
func (g *Gatt) OnServiceChanged(address string) {
	g.ctx.Eventf(client.TagGatt, "Service changed for %s", address)
}
