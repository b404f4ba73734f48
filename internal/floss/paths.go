package floss

import (
	"fmt"
	"strings"

	"github.com/godbus/dbus/v5"
	"github.com/google/uuid"
)

// Bus names, object paths and interfaces of the management daemon.
const (
	ManagerService   = "org.chromium.bluetooth.Manager"
	ManagerInterface = "org.chromium.bluetooth.Manager"
	ManagerObject    = dbus.ObjectPath("/org/chromium/bluetooth/Manager")

	AdapterService   = "org.chromium.bluetooth"
	AdapterInterface = "org.chromium.bluetooth.Bluetooth"
	GattInterface    = "org.chromium.bluetooth.BluetoothGatt"

	ManagerCallbackInterface    = "org.chromium.bluetooth.ManagerCallback"
	AdapterCallbackInterface    = "org.chromium.bluetooth.BluetoothCallback"
	ConnectionCallbackInterface = "org.chromium.bluetooth.BluetoothConnectionCallback"
	GattCallbackInterface       = "org.chromium.bluetooth.BluetoothGattCallback"
)

// AdapterObject returns the daemon object serving the Bluetooth
// interface of the given hci index.
func AdapterObject(hci int32) dbus.ObjectPath {
	return dbus.ObjectPath(fmt.Sprintf("/org/chromium/bluetooth/hci%d/adapter", hci))
}

// GattObject returns the daemon object serving the GATT interface of
// the given hci index.
func GattObject(hci int32) dbus.ObjectPath {
	return dbus.ObjectPath(fmt.Sprintf("/org/chromium/bluetooth/hci%d/gatt", hci))
}

// CallbackPaths are the objects one session exports for the daemon to
// call back into.
type CallbackPaths struct {
	Manager    dbus.ObjectPath
	Adapter    dbus.ObjectPath
	Connection dbus.ObjectPath
	Gatt       dbus.ObjectPath
}

// NewCallbackPaths derives the callback object paths from a client id.
func NewCallbackPaths(clientID string) CallbackPaths {
	base := "/org/chromium/bluetooth/client/" + clientID
	return CallbackPaths{
		Manager:    dbus.ObjectPath(base + "/manager_callback"),
		Adapter:    dbus.ObjectPath(base + "/bluetooth_callback"),
		Connection: dbus.ObjectPath(base + "/bluetooth_conn_callback"),
		Gatt:       dbus.ObjectPath(base + "/bluetooth_gatt_callback"),
	}
}

// NewClientID returns a bus-unique path element for one session.
// Object path elements cannot carry dashes, so the UUID is flattened
// to its hex form.
func NewClientID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
