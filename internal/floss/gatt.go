package floss

import (
	"fmt"

	"github.com/godbus/dbus/v5"

	"github.com/srg/flossctl/internal/bt"
)

var _ bt.Gatt = (*GattClient)(nil)

// GattClient drives one adapter's GATT interface over the bus.
type GattClient struct {
	obj      dbus.BusObject
	callback dbus.ObjectPath
}

// NewGattClient wraps the GATT object of the given hci index. The
// callback path names this session's exported GATT handler; the daemon
// learns it on RegisterClient.
func NewGattClient(conn *dbus.Conn, hci int32, callback dbus.ObjectPath) *GattClient {
	return &GattClient{
		obj:      conn.Object(AdapterService, GattObject(hci)),
		callback: callback,
	}
}

// RegisterClient asks the daemon for a client handle. The handle comes
// back through OnClientRegistered on the exported callback.
func (g *GattClient) RegisterClient(appUUID string, eattSupport bool) error {
	if call := g.obj.Call(GattInterface+".RegisterClient", 0, appUUID, g.callback, eattSupport); call.Err != nil {
		return fmt.Errorf("register gatt client: %w", call.Err)
	}
	return nil
}

// UnregisterClient releases a client handle.
func (g *GattClient) UnregisterClient(clientID int32) error {
	if call := g.obj.Call(GattInterface+".UnregisterClient", 0, clientID); call.Err != nil {
		return fmt.Errorf("unregister gatt client %d: %w", clientID, call.Err)
	}
	return nil
}
